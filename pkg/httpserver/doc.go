// Package httpserver runs an http.Server bound to a context: cancelling the
// context starts a graceful shutdown limited by the configured timeout.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		return err
//	}
//
// LivenessHandler and ReadinessHandler back the /health endpoints.
package httpserver

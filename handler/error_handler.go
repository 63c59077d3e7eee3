package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/showroom/pkg/logger"
)

// ErrorInfo is the classified form of an error.
type ErrorInfo struct {
	Status int
	Code   string
	Body   map[string]any
}

// Classify maps an error to a status code and a JSON body of the form
// {"error": CODE, ...}. Unknown errors become 500 INTERNAL_ERROR and never
// leak their message.
func Classify(err error) ErrorInfo {
	var payloadErr PayloadError
	if errors.As(err, &payloadErr) {
		body := payloadErr.Payload()
		code, _ := body["error"].(string)
		return ErrorInfo{Status: payloadErr.StatusCode(), Code: code, Body: body}
	}

	var validationErr ValidationError
	if errors.As(err, &validationErr) {
		return ErrorInfo{
			Status: ErrUnprocessableEntity.Status,
			Code:   ErrUnprocessableEntity.Code,
			Body: map[string]any{
				"error":   ErrUnprocessableEntity.Code,
				"details": map[string][]string(validationErr),
			},
		}
	}

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return ErrorInfo{
			Status: httpErr.Status,
			Code:   httpErr.Code,
			Body:   map[string]any{"error": httpErr.Code},
		}
	}

	return ErrorInfo{
		Status: ErrInternalServerError.Status,
		Code:   ErrInternalServerError.Code,
		Body:   map[string]any{"error": ErrInternalServerError.Code},
	}
}

// NewErrorHandler returns an ErrorHandler answering JSON bodies from Classify.
// Client errors are logged at WARN, server errors at ERROR.
func NewErrorHandler(log *slog.Logger) ErrorHandler[Context] {
	if log == nil {
		log = slog.Default()
	}
	return func(ctx Context, err error) {
		info := Classify(err)
		r := ctx.Request()

		level := slog.LevelError
		if info.Status < http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		log.LogAttrs(r.Context(), level, "request error",
			logger.Error(err),
			slog.Int("status_code", info.Status),
			slog.String("code", info.Code),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("error_handler"),
		)

		if renderErr := JSONError(err).Render(ctx.ResponseWriter(), r); renderErr != nil {
			log.ErrorContext(r.Context(), "failed to render error response",
				logger.Error(renderErr),
				logger.Component("error_handler"),
			)
		}
	}
}

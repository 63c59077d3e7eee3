package entitlement

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/showroom/pkg/logger"
)

type entitlementsCtxKey struct{}

// SetToContext stores resolved entitlements in the context.
func SetToContext(ctx context.Context, e Entitlements) context.Context {
	return context.WithValue(ctx, entitlementsCtxKey{}, e)
}

// FromContext returns the entitlements stored by SetToContext.
func FromContext(ctx context.Context) (Entitlements, bool) {
	e, ok := ctx.Value(entitlementsCtxKey{}).(Entitlements)
	return e, ok
}

// MustFromContext returns ErrEntitlementsNotInContext when the context carries none,
// so gated handlers fail closed.
func MustFromContext(ctx context.Context) (Entitlements, error) {
	e, ok := FromContext(ctx)
	if !ok {
		return Entitlements{}, ErrEntitlementsNotInContext
	}
	return e, nil
}

// UserIDResolver extracts the authenticated user from a request context.
type UserIDResolver func(ctx context.Context) (uuid.UUID, bool)

// Middleware resolves entitlements once per request for authenticated users.
// Anonymous requests and resolution failures pass through without entitlements,
// so browsing is never blocked by entitlement data.
func Middleware(g *Gateway, userID UserIDResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			id, ok := userID(ctx)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ent, err := g.GetEntitlements(ctx, id)
			if err != nil {
				g.logger.ErrorContext(ctx, "failed to resolve entitlements",
					logger.UserID(id),
					logger.Error(err),
					slog.String("path", r.URL.Path),
					logger.Component("entitlement.middleware"),
				)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(SetToContext(ctx, ent)))
		})
	}
}

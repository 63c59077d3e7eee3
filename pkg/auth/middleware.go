package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	HeaderUserID = "X-User-ID"
	HeaderRole   = "X-User-Role"
)

// ErrorHandler writes the response when identity extraction or a role check fails.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Option configures the middleware.
type Option func(*config)

type config struct {
	errorHandler ErrorHandler
}

// WithErrorHandler replaces the plain-text error response.
func WithErrorHandler(h ErrorHandler) Option {
	return func(c *config) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

func newConfig(opts []Option) *config {
	cfg := &config{errorHandler: defaultErrorHandler}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	if errors.Is(err, ErrForbidden) {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
}

// Middleware reads the caller identity set by the upstream gateway from the
// X-User-ID and X-User-Role headers. Requests without a user ID continue
// anonymously; malformed headers are rejected.
func Middleware(opts ...Option) func(http.Handler) http.Handler {
	cfg := newConfig(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(HeaderUserID))
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := uuid.Parse(raw)
			if err != nil || userID == uuid.Nil {
				cfg.errorHandler(w, r, errors.Join(ErrUnauthenticated, ErrInvalidUserID))
				return
			}

			role, err := ParseRole(r.Header.Get(HeaderRole))
			if err != nil {
				cfg.errorHandler(w, r, errors.Join(ErrUnauthenticated, err))
				return
			}

			ctx := WithIdentity(r.Context(), Identity{UserID: userID, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth(opts ...Option) func(http.Handler) http.Handler {
	return RequireRole(nil, opts...)
}

// RequireRole rejects requests whose identity holds none of roles.
// An empty roles list only requires authentication.
func RequireRole(roles []Role, opts ...Option) func(http.Handler) http.Handler {
	cfg := newConfig(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := FromContext(r.Context())
			if !ok {
				cfg.errorHandler(w, r, ErrUnauthenticated)
				return
			}
			if len(roles) > 0 && !id.HasRole(roles...) {
				cfg.errorHandler(w, r, ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

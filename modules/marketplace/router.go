package marketplace

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/showroom/handler"
	"github.com/dmitrymomot/showroom/pkg/auth"
	"github.com/dmitrymomot/showroom/pkg/binder"
	"github.com/dmitrymomot/showroom/pkg/entitlement"
	"github.com/dmitrymomot/showroom/pkg/gallery"
	"github.com/dmitrymomot/showroom/pkg/listing"
	"github.com/dmitrymomot/showroom/pkg/showroom"
	"github.com/dmitrymomot/showroom/pkg/subscription"
)

// DefaultMaxUploadSize bounds the multipart body of an image upload.
const DefaultMaxUploadSize int64 = 12 << 20

// Options holds the services behind the marketplace API.
type Options struct {
	Gateway       *entitlement.Gateway
	Subscriptions *subscription.Service
	Listings      *listing.Service
	Gallery       *gallery.Service
	Showrooms     *showroom.Service
	Logger        *slog.Logger
	MaxUploadSize int64
}

type api struct {
	Options
	onError handler.ErrorHandler[handler.Context]
}

// Router builds the marketplace HTTP API. The caller identity comes from the
// X-User-ID and X-User-Role headers set by the upstream gateway.
func Router(opts Options) chi.Router {
	if opts.Gateway == nil || opts.Subscriptions == nil || opts.Listings == nil ||
		opts.Gallery == nil || opts.Showrooms == nil {
		panic("marketplace: all services are required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = DefaultMaxUploadSize
	}

	base := handler.NewErrorHandler(opts.Logger)
	a := &api{
		Options: opts,
		onError: func(ctx handler.Context, err error) { base(ctx, mapError(err)) },
	}

	authErr := auth.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
		a.onError(handler.NewContext(w, r), err)
	})
	sellers := auth.RequireRole([]auth.Role{auth.RoleSeller}, authErr)

	r := chi.NewRouter()
	r.Use(auth.Middleware(authErr))
	r.Use(entitlement.Middleware(opts.Gateway, auth.UserID))

	r.Get("/listings/{id}", handle(a, a.getListing))
	r.Get("/listings/{id}/images", handle(a, a.listImages))

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(authErr))

		r.Get("/me/entitlements", handle(a, a.getEntitlements))
		r.Get("/me/quota/listings", handle(a, a.getListingQuota))
		r.Get("/me/subscription", handle(a, a.getSubscription))
		r.Post("/me/subscription/cancel", handle(a, a.cancel))
		r.Get("/me/showroom", handle(a, a.getShowroom))
	})

	r.Group(func(r chi.Router) {
		r.Use(sellers)

		r.Post("/me/subscription/upgrade", handleJSON(a, a.upgrade))
		r.Put("/me/showroom", handleJSON(a, a.updateShowroom))
		r.Post("/listings", handleJSON(a, a.createListing))
		r.Post("/listings/{id}/featured", handle(a, a.featureListing))
		r.Delete("/listings/{id}/featured", handle(a, a.unfeatureListing))
		r.Post("/listings/{id}/sold", handle(a, a.markSold))
		r.Post("/listings/{id}/images", handle(a, a.uploadImage))
		r.Delete("/images/{id}", handle(a, a.deleteImage))
		r.Get("/analytics", handle(a, a.analytics))
	})

	r.Route("/admin/users/{id}", func(r chi.Router) {
		r.Use(auth.RequireRole([]auth.Role{auth.RoleAdmin}, authErr))

		r.Get("/subscription", handle(a, a.adminGetSubscription))
		r.Put("/subscription", handleJSON(a, a.adminUpdateSubscription))
		r.Put("/listing-limit", handleJSON(a, a.adminSetListingLimit))
		r.Put("/billing", handleJSON(a, a.adminSetBilling))
	})

	return r
}

func handle[R any](a *api, h handler.HandlerFunc[handler.Context, R]) http.HandlerFunc {
	return handler.Wrap(h, handler.WithErrorHandler[handler.Context, R](a.onError))
}

func handleJSON[R any](a *api, h handler.HandlerFunc[handler.Context, R]) http.HandlerFunc {
	return handler.Wrap(h,
		handler.WithBinder[handler.Context, R](binder.JSON()),
		handler.WithErrorHandler[handler.Context, R](a.onError),
	)
}

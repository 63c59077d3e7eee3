package entitlement

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/showroom/pkg/logger"
)

// Resolver turns a stored subscription into effective entitlements.
// It never fails: anomalies are logged and resolved to FREE, the safe minimum.
type Resolver struct {
	catalog       *Catalog
	logger        *slog.Logger
	observer      Observer
	now           func() time.Time
	enforceExpiry bool
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithResolverLogger sets the logger used for fallbacks and warnings.
func WithResolverLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithResolverObserver sets the observer notified about tier fallbacks.
func WithResolverObserver(o Observer) ResolverOption {
	return func(r *Resolver) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithClock overrides the time source used for end date checks.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// WithExpiryEnforcement makes an active subscription whose end date has passed
// resolve to FREE. Disabled by default: status is the only activity signal
// until product decides otherwise.
func WithExpiryEnforcement(enabled bool) ResolverOption {
	return func(r *Resolver) {
		r.enforceExpiry = enabled
	}
}

// NewResolver creates a Resolver over the given catalog.
// Panics if catalog is nil.
func NewResolver(catalog *Catalog, opts ...ResolverOption) *Resolver {
	if catalog == nil {
		panic("entitlement: catalog is required")
	}
	r := &Resolver{
		catalog:  catalog,
		logger:   slog.Default(),
		observer: noopObserver{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve applies, in order: no subscription means FREE; a non-active status
// means FREE; otherwise the stored tier's defaults with the listing limit
// override applied when present.
func (r *Resolver) Resolve(ctx context.Context, sub *Subscription) Entitlements {
	if sub == nil || !sub.IsActive() {
		return r.free()
	}

	if sub.IsExpiredAt(r.now()) {
		if r.enforceExpiry {
			return r.free()
		}
		r.logger.WarnContext(ctx, "active subscription past its end date keeps paid capabilities",
			logger.UserID(sub.UserID),
			slog.String("tier", sub.Tier),
			slog.Time("end_date", *sub.EndDate),
			logger.Component("entitlement.resolver"),
		)
	}

	tier, err := ParseTier(sub.Tier)
	if err != nil {
		return r.fallback(ctx, sub, err)
	}

	caps, err := r.catalog.CapabilitiesFor(tier)
	if err != nil {
		return r.fallback(ctx, sub, err)
	}

	if sub.ListingLimit != nil {
		override := *sub.ListingLimit
		if override.IsUnlimited() || override > 0 {
			caps.ListingLimit = override
		} else {
			r.logger.WarnContext(ctx, "ignoring invalid listing limit override",
				logger.UserID(sub.UserID),
				slog.Int64("listing_limit", int64(override)),
				logger.Component("entitlement.resolver"),
			)
		}
	}

	return Entitlements{Tier: tier, Capabilities: caps}
}

func (r *Resolver) free() Entitlements {
	caps, err := r.catalog.CapabilitiesFor(TierFree)
	if err != nil {
		// NewCatalog and DefaultCatalog guarantee FREE exists.
		panic("entitlement: catalog has no FREE tier")
	}
	return Entitlements{Tier: TierFree, Capabilities: caps}
}

func (r *Resolver) fallback(ctx context.Context, sub *Subscription, err error) Entitlements {
	r.logger.WarnContext(ctx, "unrecognized subscription tier, falling back to FREE",
		logger.UserID(sub.UserID),
		slog.String("tier", sub.Tier),
		logger.Error(err),
		logger.Component("entitlement.resolver"),
	)
	r.observer.TierFallback(sub.Tier)
	return r.free()
}

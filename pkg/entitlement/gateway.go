package entitlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/showroom/pkg/logger"
)

// SubscriptionStore returns the single current subscription of a user.
// A nil subscription with a nil error, or ErrSubscriptionNotFound, means the
// user never had one.
type SubscriptionStore interface {
	GetCurrentSubscription(ctx context.Context, userID uuid.UUID) (*Subscription, error)
}

// ListingCounter counts every listing a user owns, sold or unsold.
type ListingCounter interface {
	CountListingsForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// SubscriptionStoreFunc adapts a function to SubscriptionStore.
type SubscriptionStoreFunc func(ctx context.Context, userID uuid.UUID) (*Subscription, error)

func (f SubscriptionStoreFunc) GetCurrentSubscription(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	return f(ctx, userID)
}

// ListingCounterFunc adapts a function to ListingCounter.
type ListingCounterFunc func(ctx context.Context, userID uuid.UUID) (int64, error)

func (f ListingCounterFunc) CountListingsForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return f(ctx, userID)
}

// Gateway is the single call surface for entitlement decisions.
// It holds no state beyond its collaborators and never caches: every call reads
// the current subscription so tier changes apply immediately.
type Gateway struct {
	subscriptions SubscriptionStore
	listings      ListingCounter
	resolver      *Resolver
	logger        *slog.Logger
	observer      Observer
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithLogger sets the gateway logger.
func WithLogger(l *slog.Logger) GatewayOption {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithObserver sets the observer notified about every quota decision.
func WithObserver(o Observer) GatewayOption {
	return func(g *Gateway) {
		if o != nil {
			g.observer = o
		}
	}
}

// NewGateway creates a Gateway. Panics if any collaborator is nil.
func NewGateway(subs SubscriptionStore, listings ListingCounter, resolver *Resolver, opts ...GatewayOption) *Gateway {
	if subs == nil || listings == nil || resolver == nil {
		panic("entitlement: subscription store, listing counter and resolver are required")
	}
	g := &Gateway{
		subscriptions: subs,
		listings:      listings,
		resolver:      resolver,
		logger:        slog.Default(),
		observer:      noopObserver{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GetEntitlements resolves the current tier and capabilities of a user.
// Store failures are returned wrapped with ErrSubscriptionUnavailable.
func (g *Gateway) GetEntitlements(ctx context.Context, userID uuid.UUID) (Entitlements, error) {
	sub, err := g.subscriptions.GetCurrentSubscription(ctx, userID)
	if err != nil && !errors.Is(err, ErrSubscriptionNotFound) {
		return Entitlements{}, errors.Join(ErrSubscriptionUnavailable, err)
	}
	if err != nil {
		sub = nil
	}
	return g.resolver.Resolve(ctx, sub), nil
}

// CanCreateListing decides whether the user may create one more listing.
// A refusal is a regular decision, not an error; use QuotaDecision.Err to turn
// it into a *QuotaExceededError.
func (g *Gateway) CanCreateListing(ctx context.Context, userID uuid.UUID) (QuotaDecision, error) {
	ent, err := g.GetEntitlements(ctx, userID)
	if err != nil {
		return QuotaDecision{}, err
	}

	count, err := g.listings.CountListingsForUser(ctx, userID)
	if err != nil {
		return QuotaDecision{}, errors.Join(ErrListingCountUnavailable, err)
	}
	if count < 0 {
		return QuotaDecision{}, fmt.Errorf("%w: listings=%d", ErrInvalidResourceCount, count)
	}

	d := CheckListingQuota(ent, count)
	g.observer.QuotaChecked(d)

	if !d.CanAddMore {
		g.logger.InfoContext(ctx, "listing quota reached",
			logger.UserID(userID),
			logger.Tier(d.Tier),
			slog.Int64("current", d.Current),
			slog.String("limit", d.Limit.String()),
			logger.Component("entitlement.gateway"),
		)
	}
	return d, nil
}

// HasFeature reports whether the user has the feature. Any failure denies.
func (g *Gateway) HasFeature(ctx context.Context, userID uuid.UUID, f Feature) bool {
	ent, err := g.GetEntitlements(ctx, userID)
	if err != nil {
		g.logger.ErrorContext(ctx, "entitlements unavailable, denying feature",
			logger.UserID(userID),
			slog.String("feature", string(f)),
			logger.Error(err),
			logger.Component("entitlement.gateway"),
		)
		return false
	}
	return ent.Allows(f)
}

// Observe reports a quota decision made outside the gateway, such as a gallery check.
func (g *Gateway) Observe(d QuotaDecision) {
	g.observer.QuotaChecked(d)
}

package subscription

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/showroom/pkg/entitlement"
	"github.com/dmitrymomot/showroom/pkg/logger"
	"github.com/dmitrymomot/showroom/pkg/validator"
)

// Service manages the subscription lifecycle. Rows are created on first use
// and never deleted; every change is a mutation of the single row per user.
type Service struct {
	store  Store
	locks  *userLocks
	logger *slog.Logger
	now    func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService panics when store is nil.
func NewService(store Store, opts ...ServiceOption) *Service {
	if store == nil {
		panic("subscription: store is required")
	}
	s := &Service{
		store:  store,
		locks:  newUserLocks(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns entitlement.ErrSubscriptionNotFound for users who never subscribed.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*entitlement.Subscription, error) {
	return s.store.Get(ctx, userID)
}

// GetCurrentSubscription satisfies entitlement.SubscriptionStore.
func (s *Service) GetCurrentSubscription(ctx context.Context, userID uuid.UUID) (*entitlement.Subscription, error) {
	return CurrentSubscriptionReader{Store: s.store}.GetCurrentSubscription(ctx, userID)
}

// Register gives a new user the implicit FREE subscription. Existing rows are
// returned unchanged.
func (s *Service) Register(ctx context.Context, userID uuid.UUID) (*entitlement.Subscription, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	sub, err := s.store.Get(ctx, userID)
	if err == nil {
		return sub, nil
	}
	if !errors.Is(err, entitlement.ErrSubscriptionNotFound) {
		return nil, err
	}

	sub = s.newFree(userID)
	if err := s.store.Save(ctx, sub); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "subscription registered",
		logger.UserID(userID),
		logger.Tier(sub.Tier),
		logger.Event("subscription.registered"),
	)
	return sub, nil
}

// ChangeTier moves the user to tier and reactivates the subscription from now.
// The listing limit override survives a tier change.
func (s *Service) ChangeTier(ctx context.Context, userID uuid.UUID, tier entitlement.Tier) (*entitlement.Subscription, error) {
	if !tier.Valid() {
		return nil, errors.Join(ErrInvalidTier, &entitlement.UnknownTierError{Value: string(tier)})
	}

	var previous string
	sub, err := s.mutate(ctx, userID, func(sub *entitlement.Subscription) error {
		previous = sub.Tier
		sub.Tier = tier.String()
		sub.Status = entitlement.StatusActive
		sub.StartDate = s.now().UTC()
		sub.EndDate = nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "subscription tier changed",
		logger.UserID(userID),
		slog.String("from", previous),
		logger.Tier(sub.Tier),
		logger.Event("subscription.tier_changed"),
	)
	return sub, nil
}

// Upgrade is the self-service tier change. Moving to a paid tier requires a
// billing subscription reference recorded by the payment flow; moving to FREE
// never does.
func (s *Service) Upgrade(ctx context.Context, userID uuid.UUID, tier entitlement.Tier) (*entitlement.Subscription, error) {
	if !tier.Valid() {
		return nil, errors.Join(ErrInvalidTier, &entitlement.UnknownTierError{Value: string(tier)})
	}

	var previous string
	sub, err := s.mutate(ctx, userID, func(sub *entitlement.Subscription) error {
		if tier != entitlement.TierFree && sub.ProviderSubID == "" {
			return ErrBillingRequired
		}
		previous = sub.Tier
		sub.Tier = tier.String()
		sub.Status = entitlement.StatusActive
		sub.StartDate = s.now().UTC()
		sub.EndDate = nil
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrBillingRequired) {
			s.logger.WarnContext(ctx, "self-service upgrade refused",
				logger.UserID(userID),
				logger.Tier(tier),
				logger.Event("subscription.upgrade_refused"),
			)
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "subscription upgraded",
		logger.UserID(userID),
		slog.String("from", previous),
		logger.Tier(sub.Tier),
		logger.Event("subscription.upgraded"),
	)
	return sub, nil
}

// Cancel returns the user to FREE. The override and the billing subscription
// reference are cleared; the customer reference is kept.
func (s *Service) Cancel(ctx context.Context, userID uuid.UUID) (*entitlement.Subscription, error) {
	sub, err := s.mutate(ctx, userID, func(sub *entitlement.Subscription) error {
		sub.Tier = entitlement.TierFree.String()
		sub.Status = entitlement.StatusActive
		sub.ListingLimit = nil
		sub.ProviderSubID = ""
		sub.StartDate = s.now().UTC()
		sub.EndDate = nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "subscription cancelled",
		logger.UserID(userID),
		logger.Event("subscription.cancelled"),
	)
	return sub, nil
}

// SetListingLimit sets or, with nil, clears the per-user listing limit override.
func (s *Service) SetListingLimit(ctx context.Context, userID uuid.UUID, limit *entitlement.Limit) (*entitlement.Subscription, error) {
	if limit != nil && !limit.IsUnlimited() && *limit <= 0 {
		return nil, ErrInvalidListingLimit
	}

	sub, err := s.mutate(ctx, userID, func(sub *entitlement.Subscription) error {
		if limit == nil {
			sub.ListingLimit = nil
			return nil
		}
		l := *limit
		sub.ListingLimit = &l
		return nil
	})
	if err != nil {
		return nil, err
	}

	attrs := []any{logger.UserID(userID), logger.Event("subscription.listing_limit_set")}
	if limit != nil {
		attrs = append(attrs, slog.String("listing_limit", limit.String()))
	}
	s.logger.InfoContext(ctx, "listing limit override updated", attrs...)
	return sub, nil
}

// SetStatus activates or suspends the subscription. Only "active" and
// "inactive" are accepted, in any case.
func (s *Service) SetStatus(ctx context.Context, userID uuid.UUID, status string) (*entitlement.Subscription, error) {
	if err := validator.Apply(
		validator.InListCaseInsensitive("status", status, []string{entitlement.StatusActive, entitlement.StatusInactive}),
	); err != nil {
		return nil, errors.Join(ErrInvalidStatus, err)
	}
	status = strings.ToLower(status)

	sub, err := s.mutate(ctx, userID, func(sub *entitlement.Subscription) error {
		sub.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "subscription status changed",
		logger.UserID(userID),
		slog.String("status", status),
		logger.Event("subscription.status_changed"),
	)
	return sub, nil
}

// SetBillingReferences stores the payment provider's customer and subscription
// identifiers. They are opaque here.
func (s *Service) SetBillingReferences(ctx context.Context, userID uuid.UUID, customerID, providerSubID string) (*entitlement.Subscription, error) {
	return s.mutate(ctx, userID, func(sub *entitlement.Subscription) error {
		sub.CustomerID = strings.TrimSpace(customerID)
		sub.ProviderSubID = strings.TrimSpace(providerSubID)
		return nil
	})
}

// mutate serialises read-modify-write per user within this process.
func (s *Service) mutate(ctx context.Context, userID uuid.UUID, fn func(*entitlement.Subscription) error) (*entitlement.Subscription, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	sub, err := s.store.Get(ctx, userID)
	switch {
	case errors.Is(err, entitlement.ErrSubscriptionNotFound):
		sub = s.newFree(userID)
	case err != nil:
		return nil, err
	}

	if err := fn(sub); err != nil {
		return nil, err
	}
	sub.UpdatedAt = s.now().UTC()

	if err := s.store.Save(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *Service) newFree(userID uuid.UUID) *entitlement.Subscription {
	now := s.now().UTC()
	return &entitlement.Subscription{
		ID:        uuid.New(),
		UserID:    userID,
		Tier:      entitlement.TierFree.String(),
		Status:    entitlement.StatusActive,
		StartDate: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// userLocks hands out one mutex per user and drops it once nobody holds or
// waits on it.
type userLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*userLock
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[uuid.UUID]*userLock)}
}

func (l *userLocks) lock(userID uuid.UUID) (unlock func()) {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()

		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}

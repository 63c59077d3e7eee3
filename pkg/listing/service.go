package listing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/showroom/pkg/entitlement"
	"github.com/dmitrymomot/showroom/pkg/logger"
)

// Gate answers entitlement questions for a seller. *entitlement.Gateway implements it.
type Gate interface {
	GetEntitlements(ctx context.Context, userID uuid.UUID) (entitlement.Entitlements, error)
	CanCreateListing(ctx context.Context, userID uuid.UUID) (entitlement.QuotaDecision, error)
}

// Locker serialises work on a key across processes. The returned function
// releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

type Service struct {
	store  Store
	gate   Gate
	locker Locker
	logger *slog.Logger
	now    func() time.Time
}

type ServiceOption func(*Service)

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLocker makes Create hold a per-seller lock across the quota check and
// the insert, so concurrent creations cannot overshoot the limit.
func WithLocker(l Locker) ServiceOption {
	return func(s *Service) {
		s.locker = l
	}
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(store Store, gate Gate, opts ...ServiceOption) *Service {
	if store == nil || gate == nil {
		panic("listing: store and gate are required")
	}
	s := &Service{
		store:  store,
		gate:   gate,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create checks the listing quota and inserts the listing. A refusal is an
// *entitlement.QuotaExceededError; a failed check is returned as is and
// nothing is inserted.
func (s *Service) Create(ctx context.Context, sellerID uuid.UUID, in CreateInput) (*Listing, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if s.locker != nil {
		release, err := s.locker.Lock(ctx, "listing:create:"+sellerID.String())
		if err != nil {
			return nil, errors.Join(ErrCreationInProgress, err)
		}
		defer release()
	}

	decision, err := s.gate.CanCreateListing(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if !decision.CanAddMore {
		return nil, decision.Err()
	}

	now := s.now().UTC()
	l := &Listing{
		ID:         uuid.New(),
		SellerID:   sellerID,
		Make:       strings.TrimSpace(in.Make),
		Model:      strings.TrimSpace(in.Model),
		Year:       in.Year,
		PriceCents: in.PriceCents,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Create(ctx, l); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "listing created",
		logger.UserID(sellerID),
		logger.ListingID(l.ID),
		slog.Int64("current", decision.Current+1),
		slog.String("limit", decision.Limit.String()),
		logger.Event("listing.created"),
	)
	return l, nil
}

// Get returns any listing; listings are public.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Listing, error) {
	return s.store.Get(ctx, id)
}

// Owned returns the listing when sellerID owns it.
func (s *Service) Owned(ctx context.Context, sellerID, id uuid.UUID) (*Listing, error) {
	l, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.SellerID != sellerID {
		return nil, ErrNotOwner
	}
	return l, nil
}

// SetFeatured toggles the featured flag. Featuring needs the featured_status
// capability; removing the flag is always allowed so a downgraded seller can
// clean up.
func (s *Service) SetFeatured(ctx context.Context, sellerID, id uuid.UUID, featured bool) (*Listing, error) {
	l, err := s.Owned(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}

	if featured {
		ent, err := s.gate.GetEntitlements(ctx, sellerID)
		if err != nil {
			return nil, err
		}
		if err := ent.Require(entitlement.FeatureFeaturedStatus); err != nil {
			return nil, err
		}
	}

	if err := s.store.SetFeatured(ctx, id, featured); err != nil {
		return nil, err
	}
	l.Featured = featured
	l.UpdatedAt = s.now().UTC()
	return l, nil
}

// MarkSold flags the listing as sold. It keeps counting towards the quota.
func (s *Service) MarkSold(ctx context.Context, sellerID, id uuid.UUID) (*Listing, error) {
	l, err := s.Owned(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.MarkSold(ctx, id); err != nil {
		return nil, err
	}
	l.Sold = true
	l.UpdatedAt = s.now().UTC()
	return l, nil
}

// Stats is the analytics view, available on paid tiers only.
func (s *Service) Stats(ctx context.Context, sellerID uuid.UUID) (Stats, error) {
	ent, err := s.gate.GetEntitlements(ctx, sellerID)
	if err != nil {
		return Stats{}, err
	}
	if err := ent.Require(entitlement.FeatureAnalytics); err != nil {
		return Stats{}, err
	}
	return s.store.Stats(ctx, sellerID)
}

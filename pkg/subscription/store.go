package subscription

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/showroom/pkg/entitlement"
)

// Store persists one subscription row per user.
type Store interface {
	// Get returns entitlement.ErrSubscriptionNotFound when the user has no row.
	Get(ctx context.Context, userID uuid.UUID) (*entitlement.Subscription, error)
	// Save inserts or updates the row keyed by UserID.
	Save(ctx context.Context, sub *entitlement.Subscription) error
}

// CurrentSubscriptionReader adapts a Store to entitlement.SubscriptionStore,
// mapping a missing row to (nil, nil).
type CurrentSubscriptionReader struct {
	Store Store
}

func (r CurrentSubscriptionReader) GetCurrentSubscription(ctx context.Context, userID uuid.UUID) (*entitlement.Subscription, error) {
	sub, err := r.Store.Get(ctx, userID)
	if errors.Is(err, entitlement.ErrSubscriptionNotFound) {
		return nil, nil
	}
	return sub, err
}

// MemoryStore keeps subscriptions in process memory. Rows are copied on the
// way in and out.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]entitlement.Subscription
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[uuid.UUID]entitlement.Subscription)}
}

func (m *MemoryStore) Get(_ context.Context, userID uuid.UUID) (*entitlement.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	row, ok := m.rows[userID]
	if !ok {
		return nil, entitlement.ErrSubscriptionNotFound
	}
	return cloneSubscription(row), nil
}

func (m *MemoryStore) Save(_ context.Context, sub *entitlement.Subscription) error {
	if sub == nil {
		return errors.Join(ErrFailedToSaveSubscription, errors.New("nil subscription"))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	row := *cloneSubscription(*sub)
	if existing, ok := m.rows[sub.UserID]; ok {
		row.ID = existing.ID
		row.CreatedAt = existing.CreatedAt
	}
	m.rows[sub.UserID] = row
	return nil
}

func cloneSubscription(s entitlement.Subscription) *entitlement.Subscription {
	if s.ListingLimit != nil {
		l := *s.ListingLimit
		s.ListingLimit = &l
	}
	if s.EndDate != nil {
		e := *s.EndDate
		s.EndDate = &e
	}
	return &s
}

package listing

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Store persists listings. CountListingsForUser counts every listing of the
// seller, sold or not, and satisfies entitlement.ListingCounter.
type Store interface {
	CountListingsForUser(ctx context.Context, sellerID uuid.UUID) (int64, error)
	Create(ctx context.Context, l *Listing) error
	Get(ctx context.Context, id uuid.UUID) (*Listing, error)
	SetFeatured(ctx context.Context, id uuid.UUID, featured bool) error
	MarkSold(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context, sellerID uuid.UUID) (Stats, error)
}

type MemoryStore struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]Listing
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[uuid.UUID]Listing)}
}

func (m *MemoryStore) CountListingsForUser(_ context.Context, sellerID uuid.UUID) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, l := range m.rows {
		if l.SellerID == sellerID {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) Create(_ context.Context, l *Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rows[l.ID] = *l
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id uuid.UUID) (*Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.rows[id]
	if !ok {
		return nil, ErrListingNotFound
	}
	return &l, nil
}

func (m *MemoryStore) SetFeatured(_ context.Context, id uuid.UUID, featured bool) error {
	return m.update(id, func(l *Listing) { l.Featured = featured })
}

func (m *MemoryStore) MarkSold(_ context.Context, id uuid.UUID) error {
	return m.update(id, func(l *Listing) { l.Sold = true })
}

func (m *MemoryStore) Stats(_ context.Context, sellerID uuid.UUID) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var s Stats
	for _, l := range m.rows {
		if l.SellerID != sellerID {
			continue
		}
		s.Total++
		if l.Sold {
			s.Sold++
		}
		if l.Featured {
			s.Featured++
		}
	}
	s.Unsold = s.Total - s.Sold
	return s, nil
}

func (m *MemoryStore) update(id uuid.UUID, fn func(*Listing)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.rows[id]
	if !ok {
		return ErrListingNotFound
	}
	fn(&l)
	m.rows[id] = l
	return nil
}

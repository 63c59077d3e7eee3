package gallery

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/showroom/pkg/pg"
)

// Image is a stored gallery image of a listing.
type Image struct {
	ID          uuid.UUID `json:"id"`
	ListingID   uuid.UUID `json:"listing_id"`
	ObjectKey   string    `json:"-"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

type Store interface {
	CountImages(ctx context.Context, listingID uuid.UUID) (int64, error)
	Add(ctx context.Context, img *Image) error
	List(ctx context.Context, listingID uuid.UUID) ([]Image, error)
	Get(ctx context.Context, id uuid.UUID) (*Image, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type MemoryStore struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]Image
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[uuid.UUID]Image)}
}

func (m *MemoryStore) CountImages(_ context.Context, listingID uuid.UUID) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, img := range m.rows {
		if img.ListingID == listingID {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) Add(_ context.Context, img *Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rows[img.ID] = *img
	return nil
}

func (m *MemoryStore) List(_ context.Context, listingID uuid.UUID) ([]Image, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Image, 0)
	for _, img := range m.rows {
		if img.ListingID == listingID {
			out = append(out, img)
		}
	}
	slices.SortFunc(out, func(a, b Image) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (m *MemoryStore) Get(_ context.Context, id uuid.UUID) (*Image, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	img, ok := m.rows[id]
	if !ok {
		return nil, ErrImageNotFound
	}
	return &img, nil
}

func (m *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rows[id]; !ok {
		return ErrImageNotFound
	}
	delete(m.rows, id)
	return nil
}

const (
	countImagesSQL = `SELECT COUNT(*) FROM listing_images WHERE listing_id = $1`
	insertImageSQL = `INSERT INTO listing_images (id, listing_id, object_key, content_type, size_bytes, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	listImagesSQL = `SELECT id, listing_id, object_key, content_type, size_bytes, created_at
FROM listing_images WHERE listing_id = $1 ORDER BY created_at`
	getImageSQL = `SELECT id, listing_id, object_key, content_type, size_bytes, created_at
FROM listing_images WHERE id = $1`
	deleteImageSQL = `DELETE FROM listing_images WHERE id = $1`
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	if db == nil {
		panic("gallery: db is required")
	}
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CountImages(ctx context.Context, listingID uuid.UUID) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, countImagesSQL, listingID).Scan(&n); err != nil {
		return 0, errors.Join(ErrFailedToLoadImage, err)
	}
	return n, nil
}

func (s *PostgresStore) Add(ctx context.Context, img *Image) error {
	_, err := s.db.ExecContext(ctx, insertImageSQL,
		img.ID, img.ListingID, img.ObjectKey, img.ContentType, img.SizeBytes, img.CreatedAt,
	)
	if err != nil {
		return errors.Join(ErrFailedToSaveImage, err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, listingID uuid.UUID) ([]Image, error) {
	rows, err := s.db.QueryContext(ctx, listImagesSQL, listingID)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadImage, err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]Image, 0)
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.ListingID, &img.ObjectKey, &img.ContentType, &img.SizeBytes, &img.CreatedAt); err != nil {
			return nil, errors.Join(ErrFailedToLoadImage, err)
		}
		out = append(out, img)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrFailedToLoadImage, err)
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*Image, error) {
	var img Image
	err := s.db.QueryRowContext(ctx, getImageSQL, id).Scan(
		&img.ID, &img.ListingID, &img.ObjectKey, &img.ContentType, &img.SizeBytes, &img.CreatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrImageNotFound
		}
		return nil, errors.Join(ErrFailedToLoadImage, err)
	}
	return &img, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, deleteImageSQL, id)
	if err != nil {
		return errors.Join(ErrFailedToSaveImage, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrImageNotFound
	}
	return nil
}

package listing

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/dmitrymomot/showroom/pkg/pg"
)

const (
	countListingsSQL = `SELECT COUNT(*) FROM listings WHERE seller_id = $1`

	insertListingSQL = `INSERT INTO listings (id, seller_id, make, model, year, price_cents, sold, featured, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	selectListingSQL = `SELECT id, seller_id, make, model, year, price_cents, sold, featured, created_at, updated_at
FROM listings WHERE id = $1`

	setFeaturedSQL = `UPDATE listings SET featured = $2, updated_at = now() WHERE id = $1`
	markSoldSQL    = `UPDATE listings SET sold = TRUE, updated_at = now() WHERE id = $1`

	statsSQL = `SELECT COUNT(*),
	COUNT(*) FILTER (WHERE sold),
	COUNT(*) FILTER (WHERE featured)
FROM listings WHERE seller_id = $1`
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	if db == nil {
		panic("listing: db is required")
	}
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CountListingsForUser(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, countListingsSQL, sellerID).Scan(&n); err != nil {
		return 0, errors.Join(ErrFailedToLoadListing, err)
	}
	return n, nil
}

func (s *PostgresStore) Create(ctx context.Context, l *Listing) error {
	_, err := s.db.ExecContext(ctx, insertListingSQL,
		l.ID, l.SellerID, l.Make, l.Model, l.Year, l.PriceCents, l.Sold, l.Featured, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return errors.Join(ErrFailedToSaveListing, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*Listing, error) {
	var l Listing
	err := s.db.QueryRowContext(ctx, selectListingSQL, id).Scan(
		&l.ID, &l.SellerID, &l.Make, &l.Model, &l.Year, &l.PriceCents, &l.Sold, &l.Featured, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrListingNotFound
		}
		return nil, errors.Join(ErrFailedToLoadListing, err)
	}
	return &l, nil
}

func (s *PostgresStore) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) error {
	return s.exec(ctx, setFeaturedSQL, id, featured)
}

func (s *PostgresStore) MarkSold(ctx context.Context, id uuid.UUID) error {
	return s.exec(ctx, markSoldSQL, id)
}

func (s *PostgresStore) Stats(ctx context.Context, sellerID uuid.UUID) (Stats, error) {
	var st Stats
	if err := s.db.QueryRowContext(ctx, statsSQL, sellerID).Scan(&st.Total, &st.Sold, &st.Featured); err != nil {
		return Stats{}, errors.Join(ErrFailedToLoadListing, err)
	}
	st.Unsold = st.Total - st.Sold
	return st, nil
}

func (s *PostgresStore) exec(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Join(ErrFailedToSaveListing, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Join(ErrFailedToSaveListing, err)
	}
	if n == 0 {
		return ErrListingNotFound
	}
	return nil
}

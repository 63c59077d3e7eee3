package subscription

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/dmitrymomot/showroom/pkg/entitlement"
	"github.com/dmitrymomot/showroom/pkg/pg"
)

const (
	selectSubscriptionSQL = `SELECT id, user_id, tier, status, listing_limit, start_date, end_date,
	customer_id, provider_subscription_id, created_at, updated_at
FROM subscriptions WHERE user_id = $1`

	upsertSubscriptionSQL = `INSERT INTO subscriptions (id, user_id, tier, status, listing_limit, start_date, end_date,
	customer_id, provider_subscription_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (user_id) DO UPDATE SET
	tier = EXCLUDED.tier,
	status = EXCLUDED.status,
	listing_limit = EXCLUDED.listing_limit,
	start_date = EXCLUDED.start_date,
	end_date = EXCLUDED.end_date,
	customer_id = EXCLUDED.customer_id,
	provider_subscription_id = EXCLUDED.provider_subscription_id,
	updated_at = EXCLUDED.updated_at`
)

// PostgresStore reads and writes the subscriptions table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	if db == nil {
		panic("subscription: db is required")
	}
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, userID uuid.UUID) (*entitlement.Subscription, error) {
	var (
		sub     entitlement.Subscription
		limit   sql.NullInt64
		endDate sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, selectSubscriptionSQL, userID).Scan(
		&sub.ID, &sub.UserID, &sub.Tier, &sub.Status, &limit, &sub.StartDate, &endDate,
		&sub.CustomerID, &sub.ProviderSubID, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, entitlement.ErrSubscriptionNotFound
		}
		return nil, errors.Join(ErrFailedToLoadSubscription, err)
	}

	if limit.Valid {
		l := entitlement.Limit(limit.Int64)
		sub.ListingLimit = &l
	}
	if endDate.Valid {
		sub.EndDate = &endDate.Time
	}
	return &sub, nil
}

func (s *PostgresStore) Save(ctx context.Context, sub *entitlement.Subscription) error {
	if sub == nil {
		return errors.Join(ErrFailedToSaveSubscription, errors.New("nil subscription"))
	}

	var limit sql.NullInt64
	if sub.ListingLimit != nil {
		limit = sql.NullInt64{Int64: int64(*sub.ListingLimit), Valid: true}
	}
	var endDate sql.NullTime
	if sub.EndDate != nil {
		endDate = sql.NullTime{Time: *sub.EndDate, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, upsertSubscriptionSQL,
		sub.ID, sub.UserID, sub.Tier, sub.Status, limit, sub.StartDate, endDate,
		sub.CustomerID, sub.ProviderSubID, sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		return errors.Join(ErrFailedToSaveSubscription, err)
	}
	return nil
}

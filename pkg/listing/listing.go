package listing

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/showroom/pkg/validator"
)

// Listing is a car offered for sale by a seller. Sold listings still count
// towards the seller's listing quota.
type Listing struct {
	ID         uuid.UUID `json:"id"`
	SellerID   uuid.UUID `json:"seller_id"`
	Make       string    `json:"make"`
	Model      string    `json:"model"`
	Year       int       `json:"year"`
	PriceCents int64     `json:"price_cents"`
	Sold       bool      `json:"sold"`
	Featured   bool      `json:"featured"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Stats is the seller analytics summary.
type Stats struct {
	Total    int64 `json:"total"`
	Sold     int64 `json:"sold"`
	Unsold   int64 `json:"unsold"`
	Featured int64 `json:"featured"`
}

// CreateInput holds the seller-supplied fields of a new listing.
type CreateInput struct {
	Make       string `json:"make"`
	Model      string `json:"model"`
	Year       int    `json:"year"`
	PriceCents int64  `json:"price_cents"`
}

const (
	minYear = 1886
	maxYear = 2100
)

// Validate reports every invalid field as validator.ValidationErrors joined
// with ErrInvalidListing.
func (in CreateInput) Validate() error {
	err := validator.Apply(
		validator.RequiredString("make", in.Make),
		validator.RequiredString("model", in.Model),
		validator.MinNum("year", in.Year, minYear),
		validator.MaxNum("year", in.Year, maxYear),
		validator.MinNum("price_cents", in.PriceCents, 1),
	)
	if err != nil {
		return errors.Join(ErrInvalidListing, err)
	}
	return nil
}

package entitlement

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// StatusActive is the only status that grants paid capabilities.
const StatusActive = "active"

// StatusInactive is written when an administrator suspends a subscription.
const StatusInactive = "inactive"

// Subscription is a user's current plan row. Each user has at most one.
// Tier and Status hold the raw stored values; the Resolver interprets them.
type Subscription struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Tier          string
	Status        string
	ListingLimit  *Limit // nil means "use tier default"
	StartDate     time.Time
	EndDate       *time.Time // nil means open-ended
	CustomerID    string     // billing provider customer reference, opaque
	ProviderSubID string     // billing provider subscription reference, opaque
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsActive reports whether the status is "active", ignoring case.
func (s *Subscription) IsActive() bool {
	return s != nil && strings.EqualFold(s.Status, StatusActive)
}

// IsExpiredAt reports whether the end date is set and not after now.
func (s *Subscription) IsExpiredAt(now time.Time) bool {
	if s == nil || s.EndDate == nil {
		return false
	}
	return !s.EndDate.After(now)
}

package entitlement

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownTier         = errors.New("unknown subscription tier")
	ErrInvalidLimit        = errors.New("invalid quota limit")
	ErrInvalidCatalog      = errors.New("invalid tier catalog")
	ErrFailedToLoadCatalog = errors.New("failed to load tier catalog")

	ErrQuotaExceeded        = errors.New("quota exceeded")
	ErrFeatureNotAvailable  = errors.New("feature not available for subscription tier")
	ErrSubscriptionNotFound = errors.New("subscription not found")

	ErrSubscriptionUnavailable  = errors.New("subscription data unavailable")
	ErrListingCountUnavailable  = errors.New("listing count unavailable")
	ErrInvalidResourceCount     = errors.New("resource count must not be negative")
	ErrEntitlementsNotInContext = errors.New("entitlements not found in context")
)

// Error codes returned to clients when an action is refused.
const (
	CodeListingLimitReached = "LISTING_LIMIT_REACHED"
	CodeGalleryLimitReached = "GALLERY_LIMIT_REACHED"
	CodeFeatureNotAvailable = "FEATURE_NOT_AVAILABLE"
)

// UnknownTierError reports a stored tier value outside the known set.
type UnknownTierError struct {
	Value string
}

func (e *UnknownTierError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownTier, e.Value)
}

func (e *UnknownTierError) Unwrap() error {
	return ErrUnknownTier
}

// QuotaExceededError is returned when a creation is refused because the quota is used up.
type QuotaExceededError struct {
	Resource Resource
	Tier     Tier
	Limit    Limit
	Current  int64
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("%s: %s %d of %s (tier %s)", ErrQuotaExceeded, e.Resource, e.Current, e.Limit, e.Tier)
}

func (e *QuotaExceededError) Unwrap() error {
	return ErrQuotaExceeded
}

// Code is the client-facing error code for the refused resource.
func (e *QuotaExceededError) Code() string {
	if e.Resource == ResourceGalleryImages {
		return CodeGalleryLimitReached
	}
	return CodeListingLimitReached
}

// FeatureNotAvailableError is returned when a capability flag gates an action off.
type FeatureNotAvailableError struct {
	Feature Feature
	Tier    Tier
}

func (e *FeatureNotAvailableError) Error() string {
	return fmt.Sprintf("%s: %s (tier %s)", ErrFeatureNotAvailable, e.Feature, e.Tier)
}

func (e *FeatureNotAvailableError) Unwrap() error {
	return ErrFeatureNotAvailable
}

package subscription

import "errors"

var (
	ErrInvalidListingLimit = errors.New("listing limit override must be positive or unlimited")
	ErrInvalidStatus       = errors.New("invalid subscription status")
	ErrInvalidTier         = errors.New("invalid subscription tier")
	ErrBillingRequired     = errors.New("paid tier requires a billing subscription")

	ErrFailedToLoadSubscription = errors.New("failed to load subscription")
	ErrFailedToSaveSubscription = errors.New("failed to save subscription")
)

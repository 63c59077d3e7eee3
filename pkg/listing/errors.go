package listing

import "errors"

var (
	ErrListingNotFound     = errors.New("listing not found")
	ErrNotOwner            = errors.New("listing belongs to another seller")
	ErrInvalidListing      = errors.New("invalid listing")
	ErrCreationInProgress  = errors.New("another listing creation is in progress")
	ErrFailedToLoadListing = errors.New("failed to load listing")
	ErrFailedToSaveListing = errors.New("failed to save listing")
)

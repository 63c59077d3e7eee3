package entitlement

// QuotaDecision is the outcome of a quota check. It is never persisted.
type QuotaDecision struct {
	Resource   Resource `json:"resource"`
	Tier       Tier     `json:"tier"`
	Current    int64    `json:"current"`
	Limit      Limit    `json:"limit"`
	CanAddMore bool     `json:"can_add_more"`
}

// Remaining returns how many more resources fit, or Unlimited.
func (d QuotaDecision) Remaining() Limit {
	if d.Limit.IsUnlimited() {
		return Unlimited
	}
	if rem := int64(d.Limit) - d.Current; rem > 0 {
		return Limit(rem)
	}
	return 0
}

// Err returns a *QuotaExceededError when the decision refuses creation, nil otherwise.
func (d QuotaDecision) Err() error {
	if d.CanAddMore {
		return nil
	}
	return &QuotaExceededError{
		Resource: d.Resource,
		Tier:     d.Tier,
		Limit:    d.Limit,
		Current:  d.Current,
	}
}

// CheckListingQuota decides whether one more listing may be created.
// current must count every listing the user owns, sold or not.
func CheckListingQuota(e Entitlements, current int64) QuotaDecision {
	return check(ResourceListings, e.Tier, e.Capabilities.ListingLimit, current)
}

// CheckGalleryQuota decides whether one more image may be attached to a listing
// that already has current images.
func CheckGalleryQuota(e Entitlements, current int64) QuotaDecision {
	limit := Limit(0)
	if e.Capabilities.CanUploadGalleryImages && e.Capabilities.MaxGalleryImages > 0 {
		limit = Limit(e.Capabilities.MaxGalleryImages)
	}
	return check(ResourceGalleryImages, e.Tier, limit, current)
}

func check(res Resource, tier Tier, limit Limit, current int64) QuotaDecision {
	current = max(current, 0)
	if !limit.Valid() {
		limit = 0
	}
	return QuotaDecision{
		Resource:   res,
		Tier:       tier,
		Current:    current,
		Limit:      limit,
		CanAddMore: limit.Allows(current),
	}
}

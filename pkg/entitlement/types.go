package entitlement

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tier is the subscription plan level. The set is closed: FREE, PREMIUM and VIP.
type Tier string

const (
	TierFree    Tier = "FREE"
	TierPremium Tier = "PREMIUM"
	TierVIP     Tier = "VIP"
)

// Tiers lists every known tier from lowest to highest.
func Tiers() []Tier {
	return []Tier{TierFree, TierPremium, TierVIP}
}

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierFree, TierPremium, TierVIP:
		return true
	default:
		return false
	}
}

func (t Tier) String() string {
	return string(t)
}

// ParseTier converts a stored tier value into a Tier.
// Matching ignores case only; surrounding whitespace makes the value unknown.
// Any other value yields an *UnknownTierError.
func ParseTier(s string) (Tier, error) {
	switch Tier(strings.ToUpper(s)) {
	case TierFree:
		return TierFree, nil
	case TierPremium:
		return TierPremium, nil
	case TierVIP:
		return TierVIP, nil
	default:
		return "", &UnknownTierError{Value: s}
	}
}

// Limit is a resource quota: a non-negative count or Unlimited.
type Limit int64

// Unlimited marks a quota without an upper bound (-1 chosen for SQL compatibility).
const Unlimited Limit = -1

const unlimitedText = "unlimited"

// IsUnlimited reports whether l is the Unlimited sentinel.
func (l Limit) IsUnlimited() bool {
	return l == Unlimited
}

// Valid reports whether l is a non-negative count or Unlimited.
func (l Limit) Valid() bool {
	return l >= 0 || l == Unlimited
}

// Allows reports whether one more resource fits when current already exist.
func (l Limit) Allows(current int64) bool {
	if l == Unlimited {
		return true
	}
	return current < int64(l)
}

func (l Limit) String() string {
	if l == Unlimited {
		return unlimitedText
	}
	return strconv.FormatInt(int64(l), 10)
}

// MarshalJSON encodes Unlimited as the string "unlimited" and counts as numbers.
func (l Limit) MarshalJSON() ([]byte, error) {
	if l == Unlimited {
		return json.Marshal(unlimitedText)
	}
	if l < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, int64(l))
	}
	return []byte(strconv.FormatInt(int64(l), 10)), nil
}

// UnmarshalJSON accepts "unlimited" or a non-negative integer.
func (l *Limit) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return l.parse(s)
	}

	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidLimit, string(data))
	}
	if n < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	}
	*l = Limit(n)
	return nil
}

// UnmarshalYAML accepts the same forms as UnmarshalJSON.
func (l *Limit) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: expected scalar at line %d", ErrInvalidLimit, node.Line)
	}
	return l.parse(node.Value)
}

func (l *Limit) parse(s string) error {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, unlimitedText) {
		*l = Unlimited
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return fmt.Errorf("%w: %q", ErrInvalidLimit, s)
	}
	*l = Limit(n)
	return nil
}

// Feature is a capability a seller-facing surface may be gated on.
type Feature string

const (
	FeatureGallery          Feature = "gallery"
	FeatureWebsite          Feature = "website"
	FeatureOpeningHours     Feature = "opening_hours"
	FeatureSocialMedia      Feature = "social_media"
	FeatureFeaturedStatus   Feature = "featured_status"
	FeaturePriorityListings Feature = "priority_listings"
	FeatureAnalytics        Feature = "analytics"
)

// Resource is a quota-limited resource type.
type Resource string

const (
	ResourceListings      Resource = "listings"
	ResourceGalleryImages Resource = "gallery_images"
)

// Capabilities is the feature set and listing quota granted to a user.
type Capabilities struct {
	CanUploadGalleryImages bool  `json:"can_upload_gallery_images" yaml:"gallery"`
	MaxGalleryImages       int   `json:"max_gallery_images" yaml:"max_gallery_images"`
	CanAddWebsite          bool  `json:"can_add_website" yaml:"website"`
	CanSetOpeningHours     bool  `json:"can_set_opening_hours" yaml:"opening_hours"`
	CanSetSocialMedia      bool  `json:"can_set_social_media" yaml:"social_media"`
	CanSetFeaturedStatus   bool  `json:"can_set_featured_status" yaml:"featured_status"`
	HasPriorityListings    bool  `json:"has_priority_listings" yaml:"priority_listings"`
	ListingLimit           Limit `json:"listing_limit" yaml:"listing_limit"`
}

// Entitlements is the resolved tier and capability set for one user.
type Entitlements struct {
	Tier         Tier         `json:"tier"`
	Capabilities Capabilities `json:"capabilities"`
}

// Allows reports whether the entitlements grant the given feature.
// Unknown features are denied.
func (e Entitlements) Allows(f Feature) bool {
	c := e.Capabilities
	switch f {
	case FeatureGallery:
		return c.CanUploadGalleryImages
	case FeatureWebsite:
		return c.CanAddWebsite
	case FeatureOpeningHours:
		return c.CanSetOpeningHours
	case FeatureSocialMedia:
		return c.CanSetSocialMedia
	case FeatureFeaturedStatus:
		return c.CanSetFeaturedStatus
	case FeaturePriorityListings:
		return c.HasPriorityListings
	case FeatureAnalytics:
		return e.Tier.Valid() && e.Tier != TierFree
	default:
		return false
	}
}

// Require returns a *FeatureNotAvailableError when f is not granted.
func (e Entitlements) Require(f Feature) error {
	if e.Allows(f) {
		return nil
	}
	return &FeatureNotAvailableError{Feature: f, Tier: e.Tier}
}

// Features lists every granted feature in a stable order.
func (e Entitlements) Features() []Feature {
	all := []Feature{
		FeatureGallery,
		FeatureWebsite,
		FeatureOpeningHours,
		FeatureSocialMedia,
		FeatureFeaturedStatus,
		FeaturePriorityListings,
		FeatureAnalytics,
	}
	granted := make([]Feature, 0, len(all))
	for _, f := range all {
		if e.Allows(f) {
			granted = append(granted, f)
		}
	}
	return granted
}

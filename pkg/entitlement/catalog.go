package entitlement

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Catalog maps each tier to its default capabilities.
// It is immutable after construction and safe for concurrent use.
type Catalog struct {
	tiers map[Tier]Capabilities
}

// DefaultCatalog returns the marketplace tier table.
func DefaultCatalog() *Catalog {
	return &Catalog{
		tiers: map[Tier]Capabilities{
			TierFree: {
				ListingLimit: 3,
			},
			TierPremium: {
				CanUploadGalleryImages: true,
				MaxGalleryImages:       10,
				CanAddWebsite:          true,
				CanSetOpeningHours:     true,
				CanSetSocialMedia:      true,
				ListingLimit:           10,
			},
			TierVIP: {
				CanUploadGalleryImages: true,
				MaxGalleryImages:       30,
				CanAddWebsite:          true,
				CanSetOpeningHours:     true,
				CanSetSocialMedia:      true,
				CanSetFeaturedStatus:   true,
				HasPriorityListings:    true,
				ListingLimit:           50,
			},
		},
	}
}

// NewCatalog builds a catalog from an explicit table.
// Every known tier must be present and every entry must be internally consistent.
func NewCatalog(tiers map[Tier]Capabilities) (*Catalog, error) {
	c := &Catalog{tiers: make(map[Tier]Capabilities, len(tiers))}
	for tier, caps := range tiers {
		if !tier.Valid() {
			return nil, errors.Join(ErrInvalidCatalog, &UnknownTierError{Value: string(tier)})
		}
		c.tiers[tier] = caps
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// catalogFile is the YAML layout accepted by LoadCatalog.
//
//	tiers:
//	  FREE:
//	    listing_limit: 3
//	  VIP:
//	    listing_limit: unlimited
//	    gallery: true
//	    max_gallery_images: 30
type catalogFile struct {
	Tiers map[string]Capabilities `yaml:"tiers"`
}

// LoadCatalog reads a catalog from YAML. Tier keys are matched like stored tier values.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, err)
	}

	tiers := make(map[Tier]Capabilities, len(f.Tiers))
	for key, caps := range f.Tiers {
		tier, err := ParseTier(key)
		if err != nil {
			return nil, errors.Join(ErrFailedToLoadCatalog, ErrInvalidCatalog, err)
		}
		if _, dup := tiers[tier]; dup {
			return nil, errors.Join(ErrFailedToLoadCatalog, ErrInvalidCatalog,
				fmt.Errorf("tier %s defined more than once", tier))
		}
		tiers[tier] = caps
	}

	c, err := NewCatalog(tiers)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, err)
	}
	return c, nil
}

// CapabilitiesFor returns the default capabilities of a tier.
func (c *Catalog) CapabilitiesFor(tier Tier) (Capabilities, error) {
	if !tier.Valid() {
		return Capabilities{}, &UnknownTierError{Value: string(tier)}
	}
	caps, ok := c.tiers[tier]
	if !ok {
		return Capabilities{}, &UnknownTierError{Value: string(tier)}
	}
	return caps, nil
}

func (c *Catalog) validate() error {
	for _, tier := range Tiers() {
		caps, ok := c.tiers[tier]
		if !ok {
			return errors.Join(ErrInvalidCatalog, fmt.Errorf("tier %s is not defined", tier))
		}
		if !caps.ListingLimit.IsUnlimited() && caps.ListingLimit <= 0 {
			return errors.Join(ErrInvalidCatalog,
				fmt.Errorf("tier %s: listing limit must be positive or unlimited, got %s", tier, caps.ListingLimit))
		}
		if caps.MaxGalleryImages < 0 {
			return errors.Join(ErrInvalidCatalog,
				fmt.Errorf("tier %s: max gallery images must not be negative", tier))
		}
		if !caps.CanUploadGalleryImages && caps.MaxGalleryImages != 0 {
			return errors.Join(ErrInvalidCatalog,
				fmt.Errorf("tier %s: max gallery images set while gallery uploads are disabled", tier))
		}
	}
	return nil
}

package entitlement_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/showroom/pkg/entitlement"
)

func entitlementsWithLimit(tier entitlement.Tier, limit entitlement.Limit) entitlement.Entitlements {
	return entitlement.Entitlements{
		Tier:         tier,
		Capabilities: entitlement.Capabilities{ListingLimit: limit},
	}
}

func TestCheckListingQuota(t *testing.T) {
	t.Parallel()

	catalog := entitlement.DefaultCatalog()
	resolve := func(tier entitlement.Tier) entitlement.Entitlements {
		caps, err := catalog.CapabilitiesFor(tier)
		require.NoError(t, err)
		return entitlement.Entitlements{Tier: tier, Capabilities: caps}
	}

	tests := []struct {
		name    string
		tier    entitlement.Tier
		current int64
		allow   bool
		limit   entitlement.Limit
	}{
		{name: "vip below limit", tier: entitlement.TierVIP, current: 49, allow: true, limit: 50},
		{name: "vip at limit", tier: entitlement.TierVIP, current: 50, allow: false, limit: 50},
		{name: "free below limit", tier: entitlement.TierFree, current: 2, allow: true, limit: 3},
		{name: "free at limit", tier: entitlement.TierFree, current: 3, allow: false, limit: 3},
		{name: "free above limit", tier: entitlement.TierFree, current: 8, allow: false, limit: 3},
		{name: "premium empty", tier: entitlement.TierPremium, current: 0, allow: true, limit: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := entitlement.CheckListingQuota(resolve(tt.tier), tt.current)
			assert.Equal(t, tt.allow, d.CanAddMore)
			assert.Equal(t, tt.limit, d.Limit)
			assert.Equal(t, tt.current, d.Current)
			assert.Equal(t, tt.tier, d.Tier)
			assert.Equal(t, entitlement.ResourceListings, d.Resource)
		})
	}

	t.Run("unlimited always allows", func(t *testing.T) {
		t.Parallel()

		e := entitlementsWithLimit(entitlement.TierVIP, entitlement.Unlimited)
		for _, n := range []int64{0, 50, 1_000_000, math.MaxInt64} {
			d := entitlement.CheckListingQuota(e, n)
			assert.True(t, d.CanAddMore)
			assert.True(t, d.Limit.IsUnlimited())
			assert.Equal(t, entitlement.Unlimited, d.Remaining())
		}
	})

	t.Run("negative count clamps to zero", func(t *testing.T) {
		t.Parallel()

		d := entitlement.CheckListingQuota(entitlementsWithLimit(entitlement.TierFree, 3), -4)
		assert.Equal(t, int64(0), d.Current)
		assert.True(t, d.CanAddMore)
	})

	t.Run("monotonic in count", func(t *testing.T) {
		t.Parallel()

		for _, limit := range []entitlement.Limit{1, 3, 10, 50} {
			e := entitlementsWithLimit(entitlement.TierPremium, limit)
			denied := false
			for n := int64(0); n <= 60; n++ {
				d := entitlement.CheckListingQuota(e, n)
				if denied {
					assert.False(t, d.CanAddMore, "limit=%d count=%d flipped back to allow", limit, n)
				}
				denied = !d.CanAddMore
			}
		}
	})

	t.Run("monotonic in limit", func(t *testing.T) {
		t.Parallel()

		for n := int64(0); n <= 20; n++ {
			denied := false
			for limit := entitlement.Limit(20); limit >= 1; limit-- {
				d := entitlement.CheckListingQuota(entitlementsWithLimit(entitlement.TierVIP, limit), n)
				if denied {
					assert.False(t, d.CanAddMore, "count=%d limit=%d flipped back to allow", n, limit)
				}
				denied = !d.CanAddMore
			}
		}
	})
}

func TestCheckGalleryQuota(t *testing.T) {
	t.Parallel()

	catalog := entitlement.DefaultCatalog()

	t.Run("free cannot upload", func(t *testing.T) {
		t.Parallel()

		caps, _ := catalog.CapabilitiesFor(entitlement.TierFree)
		d := entitlement.CheckGalleryQuota(entitlement.Entitlements{Tier: entitlement.TierFree, Capabilities: caps}, 0)
		assert.False(t, d.CanAddMore)
		assert.Equal(t, entitlement.Limit(0), d.Limit)
		assert.Equal(t, entitlement.ResourceGalleryImages, d.Resource)
	})

	t.Run("premium allows up to ten", func(t *testing.T) {
		t.Parallel()

		caps, _ := catalog.CapabilitiesFor(entitlement.TierPremium)
		e := entitlement.Entitlements{Tier: entitlement.TierPremium, Capabilities: caps}
		assert.True(t, entitlement.CheckGalleryQuota(e, 9).CanAddMore)
		assert.False(t, entitlement.CheckGalleryQuota(e, 10).CanAddMore)
	})

	t.Run("flag off overrides max", func(t *testing.T) {
		t.Parallel()

		e := entitlement.Entitlements{
			Tier:         entitlement.TierPremium,
			Capabilities: entitlement.Capabilities{MaxGalleryImages: 10},
		}
		assert.False(t, entitlement.CheckGalleryQuota(e, 0).CanAddMore)
	})
}

func TestQuotaDecision(t *testing.T) {
	t.Parallel()

	t.Run("remaining", func(t *testing.T) {
		t.Parallel()

		e := entitlementsWithLimit(entitlement.TierPremium, 10)
		assert.Equal(t, entitlement.Limit(3), entitlement.CheckListingQuota(e, 7).Remaining())
		assert.Equal(t, entitlement.Limit(0), entitlement.CheckListingQuota(e, 10).Remaining())
		assert.Equal(t, entitlement.Limit(0), entitlement.CheckListingQuota(e, 15).Remaining())
	})

	t.Run("err", func(t *testing.T) {
		t.Parallel()

		e := entitlementsWithLimit(entitlement.TierFree, 3)
		assert.NoError(t, entitlement.CheckListingQuota(e, 2).Err())

		err := entitlement.CheckListingQuota(e, 3).Err()
		require.Error(t, err)
		assert.ErrorIs(t, err, entitlement.ErrQuotaExceeded)

		var qErr *entitlement.QuotaExceededError
		require.ErrorAs(t, err, &qErr)
		assert.Equal(t, entitlement.Limit(3), qErr.Limit)
		assert.Equal(t, int64(3), qErr.Current)
		assert.Equal(t, entitlement.CodeListingLimitReached, qErr.Code())
	})

	t.Run("gallery code", func(t *testing.T) {
		t.Parallel()

		err := entitlement.CheckGalleryQuota(entitlement.Entitlements{Tier: entitlement.TierFree}, 0).Err()
		var qErr *entitlement.QuotaExceededError
		require.ErrorAs(t, err, &qErr)
		assert.Equal(t, entitlement.CodeGalleryLimitReached, qErr.Code())
	})
}

func TestQuotaDecision_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	unlimited := entitlement.CheckListingQuota(entitlementsWithLimit(entitlement.TierVIP, entitlement.Unlimited), 120)
	finite := entitlement.CheckListingQuota(entitlementsWithLimit(entitlement.TierVIP, entitlement.Limit(math.MaxInt64)), 120)

	t.Run("unlimited survives", func(t *testing.T) {
		t.Parallel()

		b, err := json.Marshal(unlimited)
		require.NoError(t, err)
		assert.JSONEq(t, `{"resource":"listings","tier":"VIP","current":120,"limit":"unlimited","can_add_more":true}`, string(b))

		var got entitlement.QuotaDecision
		require.NoError(t, json.Unmarshal(b, &got))
		assert.Equal(t, unlimited, got)
		assert.True(t, got.Limit.IsUnlimited())
	})

	t.Run("large finite limit stays finite", func(t *testing.T) {
		t.Parallel()

		b, err := json.Marshal(finite)
		require.NoError(t, err)

		var got entitlement.QuotaDecision
		require.NoError(t, json.Unmarshal(b, &got))
		assert.Equal(t, finite, got)
		assert.False(t, got.Limit.IsUnlimited())
		assert.NotEqual(t, unlimited.Limit, got.Limit)
	})

	t.Run("finite refusal", func(t *testing.T) {
		t.Parallel()

		d := entitlement.CheckListingQuota(entitlementsWithLimit(entitlement.TierFree, 3), 3)
		b, err := json.Marshal(d)
		require.NoError(t, err)
		assert.JSONEq(t, `{"resource":"listings","tier":"FREE","current":3,"limit":3,"can_add_more":false}`, string(b))

		var got entitlement.QuotaDecision
		require.NoError(t, json.Unmarshal(b, &got))
		assert.Equal(t, d, got)
	})
}

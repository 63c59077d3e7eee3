package entitlement_test

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/showroom/pkg/entitlement"
)

type recordingObserver struct {
	mu        sync.Mutex
	decisions []entitlement.QuotaDecision
	fallbacks []string
}

func (o *recordingObserver) QuotaChecked(d entitlement.QuotaDecision) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.decisions = append(o.decisions, d)
}

func (o *recordingObserver) TierFallback(raw string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fallbacks = append(o.fallbacks, raw)
}

func limitPtr(l entitlement.Limit) *entitlement.Limit {
	return &l
}

func newSubscription(tier, status string) *entitlement.Subscription {
	return &entitlement.Subscription{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Tier:      tier,
		Status:    status,
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	catalog := entitlement.DefaultCatalog()
	free, _ := catalog.CapabilitiesFor(entitlement.TierFree)
	premium, _ := catalog.CapabilitiesFor(entitlement.TierPremium)
	vip, _ := catalog.CapabilitiesFor(entitlement.TierVIP)

	t.Run("nil subscription is free", func(t *testing.T) {
		t.Parallel()

		got := entitlement.NewResolver(catalog).Resolve(ctx, nil)
		assert.Equal(t, entitlement.TierFree, got.Tier)
		assert.Equal(t, entitlement.Limit(3), got.Capabilities.ListingLimit)
		assert.Equal(t, free, got.Capabilities)
		assert.Empty(t, got.Features())
	})

	t.Run("non-active status is free regardless of tier", func(t *testing.T) {
		t.Parallel()

		r := entitlement.NewResolver(catalog)
		for _, status := range []string{"inactive", "INACTIVE", "cancelled", "past_due", "", "activated"} {
			for _, tier := range []string{"PREMIUM", "VIP", "FREE"} {
				sub := newSubscription(tier, status)
				sub.ListingLimit = limitPtr(entitlement.Unlimited)

				got := r.Resolve(ctx, sub)
				assert.Equal(t, entitlement.TierFree, got.Tier, "status=%q tier=%q", status, tier)
				assert.Equal(t, free, got.Capabilities, "status=%q tier=%q", status, tier)
			}
		}
	})

	t.Run("active status matched case-insensitively", func(t *testing.T) {
		t.Parallel()

		r := entitlement.NewResolver(catalog)
		for _, status := range []string{"active", "ACTIVE", "Active"} {
			got := r.Resolve(ctx, newSubscription("VIP", status))
			assert.Equal(t, entitlement.TierVIP, got.Tier, status)
			assert.Equal(t, vip, got.Capabilities, status)
		}
	})

	t.Run("padded values are not normalised", func(t *testing.T) {
		t.Parallel()

		r := entitlement.NewResolver(catalog)
		cases := []struct{ tier, status string }{
			{tier: " vip ", status: " Active\t"},
			{tier: "VIP", status: " active "},
			{tier: " vip ", status: "active"},
		}
		for _, c := range cases {
			got := r.Resolve(ctx, newSubscription(c.tier, c.status))
			assert.Equal(t, entitlement.TierFree, got.Tier, "status=%q tier=%q", c.status, c.tier)
			assert.Equal(t, free, got.Capabilities, "status=%q tier=%q", c.status, c.tier)
		}
	})

	t.Run("override replaces only the listing limit", func(t *testing.T) {
		t.Parallel()

		sub := newSubscription("PREMIUM", "active")
		sub.ListingLimit = limitPtr(7)

		got := entitlement.NewResolver(catalog).Resolve(ctx, sub)
		assert.Equal(t, entitlement.TierPremium, got.Tier)
		assert.Equal(t, entitlement.Limit(7), got.Capabilities.ListingLimit)

		want := premium
		want.ListingLimit = 7
		assert.Equal(t, want, got.Capabilities)
	})

	t.Run("unlimited override", func(t *testing.T) {
		t.Parallel()

		sub := newSubscription("FREE", "active")
		sub.ListingLimit = limitPtr(entitlement.Unlimited)

		got := entitlement.NewResolver(catalog).Resolve(ctx, sub)
		assert.True(t, got.Capabilities.ListingLimit.IsUnlimited())
		assert.False(t, got.Capabilities.CanUploadGalleryImages)
	})

	t.Run("invalid override is ignored", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := slog.New(slog.NewTextHandler(&buf, nil))

		for _, bad := range []entitlement.Limit{0, -3} {
			sub := newSubscription("VIP", "active")
			sub.ListingLimit = limitPtr(bad)

			got := entitlement.NewResolver(catalog, entitlement.WithResolverLogger(log)).Resolve(ctx, sub)
			assert.Equal(t, entitlement.Limit(50), got.Capabilities.ListingLimit)
		}
		assert.Contains(t, buf.String(), "ignoring invalid listing limit override")
	})

	t.Run("unknown tier falls back to free", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		obs := &recordingObserver{}
		r := entitlement.NewResolver(catalog,
			entitlement.WithResolverLogger(slog.New(slog.NewTextHandler(&buf, nil))),
			entitlement.WithResolverObserver(obs),
		)

		sub := newSubscription("GOLD", "active")
		sub.ListingLimit = limitPtr(100)

		got := r.Resolve(ctx, sub)
		assert.Equal(t, entitlement.TierFree, got.Tier)
		assert.Equal(t, free, got.Capabilities)
		assert.Equal(t, []string{"GOLD"}, obs.fallbacks)
		assert.Contains(t, buf.String(), "falling back to FREE")
	})

	t.Run("stored tier is matched case-insensitively", func(t *testing.T) {
		t.Parallel()

		got := entitlement.NewResolver(catalog).Resolve(ctx, newSubscription("premium", "active"))
		assert.Equal(t, entitlement.TierPremium, got.Tier)
	})

	t.Run("deterministic for the same input", func(t *testing.T) {
		t.Parallel()

		r := entitlement.NewResolver(catalog)
		sub := newSubscription("VIP", "active")
		sub.ListingLimit = limitPtr(12)

		first := r.Resolve(ctx, sub)
		for range 10 {
			assert.Equal(t, first, r.Resolve(ctx, sub))
		}
	})
}

func TestResolver_Expiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	t.Run("expired but active keeps paid tier by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		r := entitlement.NewResolver(entitlement.DefaultCatalog(),
			entitlement.WithClock(clock),
			entitlement.WithResolverLogger(slog.New(slog.NewTextHandler(&buf, nil))),
		)

		sub := newSubscription("VIP", "active")
		sub.EndDate = &past

		got := r.Resolve(ctx, sub)
		assert.Equal(t, entitlement.TierVIP, got.Tier)
		assert.Contains(t, buf.String(), "past its end date")
	})

	t.Run("enforcement downgrades expired subscriptions", func(t *testing.T) {
		t.Parallel()

		r := entitlement.NewResolver(entitlement.DefaultCatalog(),
			entitlement.WithClock(clock),
			entitlement.WithExpiryEnforcement(true),
		)

		expired := newSubscription("VIP", "active")
		expired.EndDate = &past
		assert.Equal(t, entitlement.TierFree, r.Resolve(ctx, expired).Tier)

		current := newSubscription("VIP", "active")
		current.EndDate = &future
		assert.Equal(t, entitlement.TierVIP, r.Resolve(ctx, current).Tier)

		openEnded := newSubscription("VIP", "active")
		assert.Equal(t, entitlement.TierVIP, r.Resolve(ctx, openEnded).Tier)
	})
}

func TestNewResolver_NilCatalog(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		entitlement.NewResolver(nil)
	})
}

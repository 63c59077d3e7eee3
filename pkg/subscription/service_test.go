package subscription_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/showroom/pkg/entitlement"
	"github.com/dmitrymomot/showroom/pkg/subscription"
	"github.com/dmitrymomot/showroom/pkg/validator"
)

var fixedNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func newService() (*subscription.Service, *subscription.MemoryStore) {
	store := subscription.NewMemoryStore()
	return subscription.NewService(store, subscription.WithClock(func() time.Time { return fixedNow })), store
}

func limitPtr(l entitlement.Limit) *entitlement.Limit {
	return &l
}

func TestService_Register(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("creates free active row", func(t *testing.T) {
		t.Parallel()

		svc, _ := newService()
		userID := uuid.New()

		sub, err := svc.Register(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "FREE", sub.Tier)
		assert.True(t, sub.IsActive())
		assert.Nil(t, sub.ListingLimit)
		assert.Equal(t, fixedNow, sub.StartDate)
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()

		svc, _ := newService()
		userID := uuid.New()

		first, err := svc.Register(ctx, userID)
		require.NoError(t, err)
		_, err = svc.ChangeTier(ctx, userID, entitlement.TierVIP)
		require.NoError(t, err)

		again, err := svc.Register(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)
		assert.Equal(t, "VIP", again.Tier)
	})
}

func TestService_Lifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("change tier creates missing row", func(t *testing.T) {
		t.Parallel()

		svc, _ := newService()
		userID := uuid.New()

		sub, err := svc.ChangeTier(ctx, userID, entitlement.TierPremium)
		require.NoError(t, err)
		assert.Equal(t, "PREMIUM", sub.Tier)
		assert.Equal(t, entitlement.StatusActive, sub.Status)
	})

	t.Run("change tier reactivates and clears end date", func(t *testing.T) {
		t.Parallel()

		svc, _ := newService()
		userID := uuid.New()

		_, err := svc.SetStatus(ctx, userID, "inactive")
		require.NoError(t, err)

		sub, err := svc.ChangeTier(ctx, userID, entitlement.TierVIP)
		require.NoError(t, err)
		assert.True(t, sub.IsActive())
		assert.Nil(t, sub.EndDate)
	})

	t.Run("invalid tier", func(t *testing.T) {
		t.Parallel()

		svc, _ := newService()
		_, err := svc.ChangeTier(ctx, uuid.New(), entitlement.Tier("GOLD"))
		assert.ErrorIs(t, err, subscription.ErrInvalidTier)
		assert.ErrorIs(t, err, entitlement.ErrUnknownTier)
	})

	t.Run("cancel returns to free and clears override", func(t *testing.T) {
		t.Parallel()

		svc, _ := newService()
		userID := uuid.New()

		_, err := svc.ChangeTier(ctx, userID, entitlement.TierVIP)
		require.NoError(t, err)
		_, err = svc.SetListingLimit(ctx, userID, limitPtr(120))
		require.NoError(t, err)
		_, err = svc.SetBillingReferences(ctx, userID, "cus_1", "sub_1")
		require.NoError(t, err)

		sub, err := svc.Cancel(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "FREE", sub.Tier)
		assert.Nil(t, sub.ListingLimit)
		assert.Equal(t, "cus_1", sub.CustomerID)
		assert.Empty(t, sub.ProviderSubID)
	})

	t.Run("listing limit override", func(t *testing.T) {
		t.Parallel()

		svc, _ := newService()
		userID := uuid.New()

		sub, err := svc.SetListingLimit(ctx, userID, limitPtr(entitlement.Unlimited))
		require.NoError(t, err)
		require.NotNil(t, sub.ListingLimit)
		assert.True(t, sub.ListingLimit.IsUnlimited())

		for _, bad := range []entitlement.Limit{0, -5} {
			_, err = svc.SetListingLimit(ctx, userID, limitPtr(bad))
			assert.ErrorIs(t, err, subscription.ErrInvalidListingLimit)
		}

		sub, err = svc.SetListingLimit(ctx, userID, nil)
		require.NoError(t, err)
		assert.Nil(t, sub.ListingLimit)
	})

	t.Run("status", func(t *testing.T) {
		t.Parallel()

		svc, _ := newService()
		userID := uuid.New()

		sub, err := svc.SetStatus(ctx, userID, "INACTIVE")
		require.NoError(t, err)
		assert.Equal(t, entitlement.StatusInactive, sub.Status)

		for _, bad := range []string{"paused", " active ", ""} {
			_, err = svc.SetStatus(ctx, userID, bad)
			assert.ErrorIs(t, err, subscription.ErrInvalidStatus, bad)

			errs, ok := validator.Extract(err)
			require.True(t, ok, bad)
			assert.True(t, errs.Has("status"), bad)
		}
	})
}

func TestService_Upgrade(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("paid tier without billing reference is refused", func(t *testing.T) {
		t.Parallel()

		svc, store := newService()
		userID := uuid.New()
		_, err := svc.Register(ctx, userID)
		require.NoError(t, err)

		_, err = svc.Upgrade(ctx, userID, entitlement.TierVIP)
		assert.ErrorIs(t, err, subscription.ErrBillingRequired)

		sub, err := store.Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "FREE", sub.Tier)
	})

	t.Run("refused for users without a row", func(t *testing.T) {
		t.Parallel()

		svc, store := newService()
		userID := uuid.New()

		_, err := svc.Upgrade(ctx, userID, entitlement.TierPremium)
		assert.ErrorIs(t, err, subscription.ErrBillingRequired)

		_, err = store.Get(ctx, userID)
		assert.ErrorIs(t, err, entitlement.ErrSubscriptionNotFound)
	})

	t.Run("customer reference alone is not enough", func(t *testing.T) {
		t.Parallel()

		svc, _ := newService()
		userID := uuid.New()
		_, err := svc.SetBillingReferences(ctx, userID, "cus_1", "")
		require.NoError(t, err)

		_, err = svc.Upgrade(ctx, userID, entitlement.TierPremium)
		assert.ErrorIs(t, err, subscription.ErrBillingRequired)
	})

	t.Run("billed subscription moves to paid tier", func(t *testing.T) {
		t.Parallel()

		svc, _ := newService()
		userID := uuid.New()
		_, err := svc.SetBillingReferences(ctx, userID, "cus_1", "sub_1")
		require.NoError(t, err)
		_, err = svc.SetStatus(ctx, userID, entitlement.StatusInactive)
		require.NoError(t, err)

		sub, err := svc.Upgrade(ctx, userID, entitlement.TierVIP)
		require.NoError(t, err)
		assert.Equal(t, "VIP", sub.Tier)
		assert.True(t, sub.IsActive())
		assert.Equal(t, "sub_1", sub.ProviderSubID)
	})

	t.Run("free never needs billing", func(t *testing.T) {
		t.Parallel()

		svc, _ := newService()
		userID := uuid.New()

		sub, err := svc.Upgrade(ctx, userID, entitlement.TierFree)
		require.NoError(t, err)
		assert.Equal(t, "FREE", sub.Tier)
	})

	t.Run("invalid tier", func(t *testing.T) {
		t.Parallel()

		svc, _ := newService()
		_, err := svc.Upgrade(ctx, uuid.New(), entitlement.Tier("GOLD"))
		assert.ErrorIs(t, err, subscription.ErrInvalidTier)
	})
}

// slowStore widens the window between read and write so unserialised
// mutations would overwrite each other.
type slowStore struct {
	*subscription.MemoryStore
}

func (s slowStore) Get(ctx context.Context, userID uuid.UUID) (*entitlement.Subscription, error) {
	sub, err := s.MemoryStore.Get(ctx, userID)
	time.Sleep(5 * time.Millisecond)
	return sub, err
}

func TestService_ConcurrentMutations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := subscription.NewMemoryStore()
	svc := subscription.NewService(slowStore{store})
	userID := uuid.New()

	_, err := svc.ChangeTier(ctx, userID, entitlement.TierVIP)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		_, err := svc.SetListingLimit(ctx, userID, limitPtr(120))
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		_, err := svc.SetBillingReferences(ctx, userID, "cus_1", "sub_1")
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		_, err := svc.SetStatus(ctx, userID, entitlement.StatusInactive)
		assert.NoError(t, err)
	}()
	wg.Wait()

	sub, err := store.Get(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, sub.ListingLimit)
	assert.Equal(t, entitlement.Limit(120), *sub.ListingLimit)
	assert.Equal(t, "cus_1", sub.CustomerID)
	assert.Equal(t, entitlement.StatusInactive, sub.Status)
	assert.Equal(t, "VIP", sub.Tier)
}

func TestService_GetCurrentSubscription(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newService()

	sub, err := svc.GetCurrentSubscription(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, sub)

	_, err = svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, entitlement.ErrSubscriptionNotFound)
}

func TestService_ResolvesThroughGateway(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newService()
	userID := uuid.New()

	gw := entitlement.NewGateway(svc,
		entitlement.ListingCounterFunc(func(context.Context, uuid.UUID) (int64, error) { return 9, nil }),
		entitlement.NewResolver(entitlement.DefaultCatalog()),
	)

	d, err := gw.CanCreateListing(ctx, userID)
	require.NoError(t, err)
	assert.False(t, d.CanAddMore)

	_, err = svc.ChangeTier(ctx, userID, entitlement.TierPremium)
	require.NoError(t, err)

	d, err = gw.CanCreateListing(ctx, userID)
	require.NoError(t, err)
	assert.True(t, d.CanAddMore)
	assert.Equal(t, entitlement.Limit(10), d.Limit)

	_, err = svc.SetStatus(ctx, userID, entitlement.StatusInactive)
	require.NoError(t, err)

	e, err := gw.GetEntitlements(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, entitlement.TierFree, e.Tier)
}

type failingStore struct{}

func (failingStore) Get(context.Context, uuid.UUID) (*entitlement.Subscription, error) {
	return nil, errors.New("db down")
}

func (failingStore) Save(context.Context, *entitlement.Subscription) error {
	return errors.New("db down")
}

func TestService_StoreFailure(t *testing.T) {
	t.Parallel()

	svc := subscription.NewService(failingStore{})
	_, err := svc.ChangeTier(context.Background(), uuid.New(), entitlement.TierVIP)
	assert.Error(t, err)

	_, err = svc.GetCurrentSubscription(context.Background(), uuid.New())
	assert.Error(t, err)
}

func TestMemoryStore_CopiesRows(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := subscription.NewMemoryStore()
	userID := uuid.New()

	sub := &entitlement.Subscription{ID: uuid.New(), UserID: userID, Tier: "VIP", Status: "active", ListingLimit: limitPtr(5)}
	require.NoError(t, store.Save(ctx, sub))
	*sub.ListingLimit = 99

	got, err := store.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, entitlement.Limit(5), *got.ListingLimit)
}

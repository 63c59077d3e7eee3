// Package entitlement maps a user's subscription to the features and quotas
// the marketplace grants, and decides whether a quota-limited resource may be
// created.
//
// The package has four parts:
//
//   - Catalog: immutable tier table (FREE, PREMIUM, VIP) built once at startup
//     with DefaultCatalog, NewCatalog or LoadCatalog.
//   - Resolver: turns a stored Subscription into Entitlements. It never fails;
//     a missing or non-active subscription, or an unknown tier, resolves to FREE.
//   - CheckListingQuota / CheckGalleryQuota: pure quota decisions.
//   - Gateway: reads the subscription and listing count through narrow store
//     interfaces and composes the above. Store failures are returned, never
//     treated as an allow.
//
// # Usage
//
//	resolver := entitlement.NewResolver(entitlement.DefaultCatalog(),
//	    entitlement.WithResolverLogger(log),
//	)
//	gw := entitlement.NewGateway(subStore, listingStore, resolver,
//	    entitlement.WithObserver(collector),
//	)
//
//	d, err := gw.CanCreateListing(ctx, sellerID)
//	if err != nil {
//	    return err // fail closed
//	}
//	if err := d.Err(); err != nil {
//	    return err // *QuotaExceededError
//	}
//
// # Limits
//
// Unlimited (-1) is a sentinel, never a large number. It is serialized as the
// string "unlimited" in JSON and YAML.
//
// Quota checks are advisory: two concurrent creations near the boundary may
// both pass. Callers that need strict enforcement serialize creation per user.
package entitlement

// Package marketplace is the HTTP surface of the showroom marketplace.
//
// Every write passes through the entitlement gateway: listing creation checks
// the listing quota, gallery uploads check the per-listing image quota, and
// showroom and listing fields are gated by tier features. Denials answer 403
// with a machine-readable code such as LISTING_LIMIT_REACHED or
// FEATURE_NOT_AVAILABLE. Failures to read subscription data answer 503 and
// never grant access.
package marketplace

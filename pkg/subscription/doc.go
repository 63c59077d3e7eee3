// Package subscription owns the per-user subscription row that the
// entitlement resolver reads.
//
// Every user implicitly starts on FREE. Service covers self-service upgrades
// and cancellation, administrator overrides of tier, status and listing limit,
// and storage of opaque billing references. Stores are provided for memory
// and Postgres.
package subscription

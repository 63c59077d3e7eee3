package entitlement

// Observer receives entitlement events, typically to export metrics.
// Implementations must be safe for concurrent use and must not block.
type Observer interface {
	// QuotaChecked is called for every quota decision made by the Gateway.
	QuotaChecked(d QuotaDecision)
	// TierFallback is called when a stored tier value could not be parsed
	// and the Resolver fell back to FREE.
	TierFallback(raw string)
}

type noopObserver struct{}

func (noopObserver) QuotaChecked(QuotaDecision) {}
func (noopObserver) TierFallback(string)        {}

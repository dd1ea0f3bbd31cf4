package lsbsteg

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
type Hooks interface {
	// A value did not fit into the carrier.
	// op ∈ {"hide", "hide_bulk", "put"}
	CapacityExceeded(op string, actual, required int)

	// Reveal could not recover a value from a carrier.
	// reason ∈ {"framing", "too_large", "envelope", "value_decode"}
	RevealFailed(reason string, err error)

	// A stored carrier was deleted on read because nothing could be revealed from it.
	SelfHeal(storageKey, reason string)

	// Provider returned ok=false on Set (backpressure/eviction).
	ProviderSetRejected(storageKey string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) CapacityExceeded(string, int, int) {}
func (NopHooks) RevealFailed(string, error)        {}
func (NopHooks) SelfHeal(string, string)           {}
func (NopHooks) ProviderSetRejected(string)        {}

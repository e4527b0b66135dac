package hairstrand

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
type Hooks interface {
	// Decoded strand count differs from the expected dataset size
	// (non-strict mode only; strict mode fails the decode instead).
	StrandCountMismatch(expected, got int)

	// Bytes remain after the last declared strand record.
	TrailingBytes(offset int64)

	// A source was rejected with a FormatError.
	FormatRejected(source string, err error)

	// A cached entry was deleted by the loader on read.
	// reason ∈ {"corrupt", "value_decode", "count_mismatch"}
	SelfHeal(storageKey, reason string)

	// Provider returned ok=false on Set (backpressure/eviction).
	ProviderSetRejected(storageKey string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) StrandCountMismatch(int, int) {}
func (NopHooks) TrailingBytes(int64)          {}
func (NopHooks) FormatRejected(string, error) {}
func (NopHooks) SelfHeal(string, string)      {}
func (NopHooks) ProviderSetRejected(string)   {}

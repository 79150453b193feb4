package attrtext

// Hooks are lightweight callbacks for high-signal events. Implementations
// MUST be cheap and non-blocking; the Mapper calls them on hot paths.
// Wrap with hooks/async to move real work off the decode path.
type Hooks interface {
	// A raw value failed to decode under the given scheme.
	// offset is the byte position of the rejected sequence.
	DecodeFailed(attr, scheme string, offset int, reason string)

	// Detect mode found no supported scheme for a value.
	DetectAmbiguous(attr string, size int)

	// A lenient decode substituted count replacement characters.
	// The resulting text does NOT round-trip to the source octets.
	ReplacementApplied(attr string, count int)

	// A corrupt or mismatched cache entry was deleted on read.
	// reason is one of {"corrupt", "mode_mismatch"}.
	SelfHeal(storageKey, reason string)

	// Provider returned ok=false on Set (backpressure/eviction).
	ProviderSetRejected(storageKey string)

	// The Reporter sink returned an error for a failure record.
	ReportDropped(attr string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) DecodeFailed(string, string, int, string) {}
func (NopHooks) DetectAmbiguous(string, int)              {}
func (NopHooks) ReplacementApplied(string, int)           {}
func (NopHooks) SelfHeal(string, string)                  {}
func (NopHooks) ProviderSetRejected(string)               {}
func (NopHooks) ReportDropped(string, error)              {}

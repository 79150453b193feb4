package attrtext

import (
	"context"
	"time"

	"github.com/nulltrope/attrtext/charset"
	pr "github.com/nulltrope/attrtext/provider"
	"github.com/nulltrope/attrtext/report"
)

// Mapper is the attribute-mapping surface. It decodes raw octet-string
// attribute values into text under the configured scheme, surfacing every
// decode failure to the caller. Safe for concurrent use; decodes are
// independent and share no per-call state.
type Mapper interface {
	// Map decodes a single raw attribute value. The error, when non-nil,
	// is a *MapError wrapping the underlying charset failure.
	Map(ctx context.Context, attr string, raw []byte) (string, error)

	// MapAll decodes many values of one attribute, fanning out across
	// Parallelism workers. Failures stay per-value: the caller decides
	// whether to abort the import or skip the offending entries.
	MapAll(ctx context.Context, attr string, values [][]byte) []Result

	Close(ctx context.Context) error
}

// Result is the outcome of one value in a MapAll batch.
type Result struct {
	Text string
	Err  error
}

// Options tune the Mapper. Only Namespace is required; the zero Scheme is
// ASCII, the narrowest supported encoding (declare UTF8 explicitly when the
// source is known to produce it).
type Options struct {
	// Required
	Namespace string // logical source namespace, e.g. "hr-ldap", "corp-ad"

	Scheme  charset.Scheme // declared encoding for this source
	Detect  bool           // infer the scheme per value instead of trusting Scheme
	Lenient bool           // opt-in: replace invalid sequences with U+FFFD instead of failing

	// MaxValueSize rejects raw values larger than this many bytes before
	// decoding. 0 disables the guard.
	MaxValueSize int

	// Provider enables memoization of successful decodes, useful for bulk
	// imports where the same octet values recur. nil disables caching.
	Provider pr.Provider
	CacheTTL time.Duration // 0 => 10m

	Parallelism int // MapAll fan-out; 0 => GOMAXPROCS

	Logger   Logger      // nil => NopLogger
	Hooks    Hooks       // nil => NopHooks
	Reporter report.Sink // optional diagnostic sink for failure records
}

func New(opts Options) (Mapper, error) {
	return newMapper(opts)
}

package attrtext

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nulltrope/attrtext/charset"
	"github.com/nulltrope/attrtext/internal/util"
	"github.com/nulltrope/attrtext/internal/wire"
	pr "github.com/nulltrope/attrtext/provider"
	"github.com/nulltrope/attrtext/report"
)

const defaultCacheTTL = 10 * time.Minute

type mapper struct {
	ns       string
	scheme   charset.Scheme
	detect   bool
	lenient  bool
	maxValue int
	provider pr.Provider
	cacheTTL time.Duration
	par      int
	log      Logger
	hooks    Hooks
	reporter report.Sink
}

func newMapper(opts Options) (*mapper, error) {
	if opts.Namespace == "" {
		return nil, fmt.Errorf("attrtext: namespace is required")
	}
	if opts.Scheme != charset.ASCII && opts.Scheme != charset.UTF8 {
		return nil, fmt.Errorf("attrtext: unsupported scheme %d", uint8(opts.Scheme))
	}

	m := &mapper{
		ns:       opts.Namespace,
		scheme:   opts.Scheme,
		detect:   opts.Detect,
		lenient:  opts.Lenient,
		maxValue: opts.MaxValueSize,
		provider: opts.Provider,
		reporter: opts.Reporter,
	}

	// defaults
	m.log = coalesce[Logger](opts.Logger, NopLogger{})
	m.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	m.cacheTTL = coalesce[time.Duration](opts.CacheTTL, defaultCacheTTL)
	m.par = opts.Parallelism
	if m.par <= 0 {
		m.par = runtime.GOMAXPROCS(0)
	}

	return m, nil
}

func (m *mapper) Close(ctx context.Context) error {
	if m.provider != nil {
		return m.provider.Close(ctx)
	}
	return nil
}

func (m *mapper) Map(ctx context.Context, attr string, raw []byte) (string, error) {
	if m.maxValue > 0 && len(raw) > m.maxValue {
		return "", &MapError{
			Attr: attr,
			Err:  fmt.Errorf("%w: %d > %d bytes", ErrValueTooLarge, len(raw), m.maxValue),
		}
	}

	var key string
	if m.provider != nil {
		key = util.ValueKey(m.ns, m.mode(), raw)
		if text, ok := m.cacheGet(ctx, key); ok {
			return text, nil
		}
	}

	text, scheme, err := m.decodeValue(ctx, attr, raw)
	if err != nil {
		return "", &MapError{Attr: attr, Err: err}
	}

	if m.provider != nil {
		m.cacheSet(ctx, key, scheme, text)
	}
	return text, nil
}

func (m *mapper) MapAll(ctx context.Context, attr string, values [][]byte) []Result {
	res := make([]Result, len(values))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.par)
	for i, raw := range values {
		i, raw := i, raw
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				res[i] = Result{Err: err}
				return nil
			}
			text, err := m.Map(ctx, attr, raw)
			res[i] = Result{Text: text, Err: err}
			return nil // decode failures stay per-value
		})
	}
	_ = g.Wait()
	return res
}

// mode names the decode configuration for cache-key purposes. Entries
// produced under one mode must never be replayed under another.
func (m *mapper) mode() string {
	mode := m.scheme.String()
	if m.detect {
		mode = "detect"
	}
	if m.lenient {
		mode += "+r"
	}
	return mode
}

func (m *mapper) decodeValue(ctx context.Context, attr string, raw []byte) (string, charset.Scheme, error) {
	scheme := m.scheme
	if m.detect {
		s, ok := charset.Detect(raw)
		if ok {
			scheme = s
		} else {
			m.hooks.DetectAmbiguous(attr, len(raw))
			if !m.lenient {
				err := fmt.Errorf("%w (%d bytes)", ErrUndetected, len(raw))
				m.reportFailure(ctx, attr, scheme, raw, err)
				return "", scheme, err
			}
			// lenient fallback decodes under the declared scheme
		}
	}

	if m.lenient {
		text, n := charset.DecodeReplace(raw, scheme)
		if n > 0 {
			m.hooks.ReplacementApplied(attr, n)
			m.log.Warn("attrtext.replacement_applied", Fields{
				"attr":   attr,
				"scheme": scheme.String(),
				"count":  n,
			})
		}
		return text, scheme, nil
	}

	text, err := charset.Decode(raw, scheme)
	if err != nil {
		m.reportFailure(ctx, attr, scheme, raw, err)
		return "", scheme, err
	}
	return text, scheme, nil
}

// reportFailure fans a decode failure out to the logger, hooks, and the
// optional diagnostic sink with the byte position and offending value.
func (m *mapper) reportFailure(ctx context.Context, attr string, scheme charset.Scheme, raw []byte, err error) {
	offset := -1
	var bad []byte
	reason := err.Error()

	var ie *charset.InvalidEncodingError
	if errors.As(err, &ie) {
		offset = ie.Offset
		bad = ie.Bytes
		reason = ie.Reason
	}

	m.hooks.DecodeFailed(attr, scheme.String(), offset, reason)
	m.log.Error("attrtext.decode_failed", Fields{
		"attr":   attr,
		"scheme": scheme.String(),
		"offset": offset,
		"bytes":  fmt.Sprintf("% x", bad),
		"reason": reason,
	})

	if m.reporter == nil {
		return
	}
	f := report.Failure{
		Namespace: m.ns,
		Attr:      attr,
		Scheme:    scheme.String(),
		Offset:    offset,
		Value:     bad,
		Reason:    reason,
	}
	if rerr := m.reporter.Emit(ctx, f); rerr != nil {
		m.hooks.ReportDropped(attr, rerr)
	}
}

func (m *mapper) cacheGet(ctx context.Context, key string) (string, bool) {
	raw, ok, err := m.provider.Get(ctx, key)
	if err != nil {
		m.log.Debug("attrtext.cache_get_error", Fields{"key": key, "err": err.Error()})
		return "", false
	}
	if !ok {
		return "", false
	}

	scheme, flags, text, derr := wire.DecodeEntry(raw)
	if derr != nil {
		_ = m.provider.Del(ctx, key) // self-heal corrupt
		m.hooks.SelfHeal(key, "corrupt")
		return "", false
	}

	// a foreign or misfiled entry must not masquerade as a decode result
	lenient := flags&wire.FlagLenient != 0
	schemeOK := m.detect || scheme == byte(m.scheme)
	if lenient != m.lenient || !schemeOK {
		_ = m.provider.Del(ctx, key)
		m.hooks.SelfHeal(key, "mode_mismatch")
		return "", false
	}

	return text, true
}

func (m *mapper) cacheSet(ctx context.Context, key string, scheme charset.Scheme, text string) {
	var flags byte
	if m.lenient {
		flags |= wire.FlagLenient
	}
	entry := wire.EncodeEntry(byte(scheme), flags, text)

	ok, err := m.provider.Set(ctx, key, entry, int64(len(entry)), m.cacheTTL)
	if err != nil {
		m.log.Debug("attrtext.cache_set_error", Fields{"key": key, "err": err.Error()})
		return
	}
	if !ok {
		m.hooks.ProviderSetRejected(key)
	}
}

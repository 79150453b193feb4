package attrtext

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nulltrope/attrtext/charset"
	"github.com/nulltrope/attrtext/internal/util"
	"github.com/nulltrope/attrtext/internal/wire"
	pr "github.com/nulltrope/attrtext/provider"
	"github.com/nulltrope/attrtext/report"
)

type memEntry struct {
	v   []byte
	exp time.Time // zero => no TTL
}

type memProvider struct {
	mu   sync.Mutex
	m    map[string]memEntry
	gets int
	sets int
}

var _ pr.Provider = (*memProvider)(nil)

func newMemProvider() *memProvider { return &memProvider{m: make(map[string]memEntry)} }

func (p *memProvider) Get(_ context.Context, key string) ([]byte, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gets++
	e, ok := p.m[key]
	if !ok {
		return nil, false, nil
	}
	if !e.exp.IsZero() && time.Now().After(e.exp) {
		delete(p.m, key)
		return nil, false, nil
	}
	return e.v, true, nil
}

func (p *memProvider) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sets++
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	p.m[key] = memEntry{v: value, exp: exp}
	return true, nil
}

func (p *memProvider) Del(_ context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.m, key)
	return nil
}

func (p *memProvider) Close(_ context.Context) error { return nil }

type recHooks struct {
	mu           sync.Mutex
	decodeFailed []string // "attr@offset:reason"
	ambiguous    []string
	replaced     []int
	selfHeal     []string // reason
	setRejected  int
	dropped      int
}

var _ Hooks = (*recHooks)(nil)

func (h *recHooks) DecodeFailed(attr, _ string, _ int, _ string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.decodeFailed = append(h.decodeFailed, attr)
}
func (h *recHooks) DetectAmbiguous(attr string, _ int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ambiguous = append(h.ambiguous, attr)
}
func (h *recHooks) ReplacementApplied(_ string, n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.replaced = append(h.replaced, n)
}
func (h *recHooks) SelfHeal(_, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.selfHeal = append(h.selfHeal, reason)
}
func (h *recHooks) ProviderSetRejected(string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.setRejected++
}
func (h *recHooks) ReportDropped(string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropped++
}

func newTestMapper(t *testing.T, opt func(*Options)) Mapper {
	t.Helper()
	opts := Options{
		Namespace: "hr-ldap",
		Scheme:    charset.UTF8,
	}
	if opt != nil {
		opt(&opts)
	}
	m, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func smartQuoted() []byte {
	return append(append([]byte{0xE2, 0x80, 0x9C}, "test@example.com"...), 0xE2, 0x80, 0x9D)
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatalf("expected error for missing namespace")
	}
	if _, err := New(Options{Namespace: "x", Scheme: charset.Scheme(9)}); err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}
}

func TestMapDeclaredScheme(t *testing.T) {
	ctx := context.Background()

	utf8m := newTestMapper(t, nil)
	got, err := utf8m.Map(ctx, "displayName", smartQuoted())
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if want := "“test@example.com”"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	asciim := newTestMapper(t, func(o *Options) { o.Scheme = charset.ASCII })
	if _, err := asciim.Map(ctx, "mail", []byte("jdoe@example.com")); err != nil {
		t.Fatalf("ascii Map: %v", err)
	}
}

func TestMapSurfacesPositionalFailure(t *testing.T) {
	ctx := context.Background()
	hooks := &recHooks{}
	m := newTestMapper(t, func(o *Options) {
		o.Scheme = charset.ASCII
		o.Hooks = hooks
	})

	_, err := m.Map(ctx, "displayName", smartQuoted())
	if err == nil {
		t.Fatalf("expected decode failure")
	}

	var me *MapError
	if !errors.As(err, &me) || me.Attr != "displayName" {
		t.Fatalf("err = %v, want *MapError for displayName", err)
	}
	var ie *charset.InvalidEncodingError
	if !errors.As(err, &ie) {
		t.Fatalf("cause is %T, want *charset.InvalidEncodingError", me.Err)
	}
	if ie.Offset != 0 || ie.Bytes[0] != 0xE2 {
		t.Fatalf("position = (%d, % x), want (0, e2)", ie.Offset, ie.Bytes)
	}
	if len(hooks.decodeFailed) != 1 {
		t.Fatalf("DecodeFailed hook fired %d times", len(hooks.decodeFailed))
	}
}

func TestMapDetect(t *testing.T) {
	ctx := context.Background()
	hooks := &recHooks{}
	m := newTestMapper(t, func(o *Options) {
		o.Detect = true
		o.Hooks = hooks
	})

	// plain ascii and smart-quoted utf-8 both map cleanly
	if got, err := m.Map(ctx, "sshPublicKey", []byte("ssh-ed25519 AAAA")); err != nil || got != "ssh-ed25519 AAAA" {
		t.Fatalf("ascii value: (%q, %v)", got, err)
	}
	if _, err := m.Map(ctx, "displayName", smartQuoted()); err != nil {
		t.Fatalf("utf-8 value: %v", err)
	}

	// binary value: no scheme matches, explicit failure
	_, err := m.Map(ctx, "jpegPhoto", []byte{0xFF, 0xD8, 0xFF, 0xE0})
	if !errors.Is(err, ErrUndetected) {
		t.Fatalf("err = %v, want ErrUndetected", err)
	}
	if len(hooks.ambiguous) != 1 {
		t.Fatalf("DetectAmbiguous hook fired %d times", len(hooks.ambiguous))
	}
}

func TestMapLenientIsOptIn(t *testing.T) {
	ctx := context.Background()
	hooks := &recHooks{}
	m := newTestMapper(t, func(o *Options) {
		o.Scheme = charset.ASCII
		o.Lenient = true
		o.Hooks = hooks
	})

	got, err := m.Map(ctx, "cn", []byte{'c', 'a', 'f', 0xE9})
	if err != nil {
		t.Fatalf("lenient Map: %v", err)
	}
	if got != "caf�" {
		t.Fatalf("got %q", got)
	}
	if len(hooks.replaced) != 1 || hooks.replaced[0] != 1 {
		t.Fatalf("ReplacementApplied = %v", hooks.replaced)
	}
}

func TestMapMaxValueSize(t *testing.T) {
	ctx := context.Background()
	m := newTestMapper(t, func(o *Options) { o.MaxValueSize = 4 })
	_, err := m.Map(ctx, "userCertificate", []byte("too large"))
	if !errors.Is(err, ErrValueTooLarge) {
		t.Fatalf("err = %v, want ErrValueTooLarge", err)
	}
}

func TestMapCacheFlow(t *testing.T) {
	ctx := context.Background()
	mp := newMemProvider()
	m := newTestMapper(t, func(o *Options) { o.Provider = mp })
	defer m.Close(ctx)

	raw := smartQuoted()
	want := "“test@example.com”"

	for i := 0; i < 3; i++ {
		got, err := m.Map(ctx, "displayName", raw)
		if err != nil || got != want {
			t.Fatalf("Map #%d: (%q, %v)", i, got, err)
		}
	}
	if mp.sets != 1 {
		t.Fatalf("provider sets = %d, want 1 (decode memoized)", mp.sets)
	}
}

func TestMapCacheSelfHealOnCorrupt(t *testing.T) {
	ctx := context.Background()
	mp := newMemProvider()
	hooks := &recHooks{}
	m := newTestMapper(t, func(o *Options) {
		o.Provider = mp
		o.Hooks = hooks
	})

	raw := []byte("plain")
	key := util.ValueKey("hr-ldap", "utf-8", raw)
	mp.m[key] = memEntry{v: []byte("garbage, not a wire entry")}

	got, err := m.Map(ctx, "uid", raw)
	if err != nil || got != "plain" {
		t.Fatalf("Map after corruption: (%q, %v)", got, err)
	}
	if len(hooks.selfHeal) != 1 || hooks.selfHeal[0] != "corrupt" {
		t.Fatalf("selfHeal = %v", hooks.selfHeal)
	}
	// the healed key must hold a fresh valid entry now
	if _, _, text, derr := wire.DecodeEntry(mp.m[key].v); derr != nil || text != "plain" {
		t.Fatalf("healed entry: (%q, %v)", text, derr)
	}
}

func TestMapCacheModeMismatchSelfHeal(t *testing.T) {
	ctx := context.Background()
	mp := newMemProvider()
	hooks := &recHooks{}
	m := newTestMapper(t, func(o *Options) {
		o.Provider = mp
		o.Hooks = hooks
	})

	// a lenient-mode entry misfiled under the strict key must not be served
	raw := []byte("plain")
	key := util.ValueKey("hr-ldap", "utf-8", raw)
	mp.m[key] = memEntry{v: wire.EncodeEntry(byte(charset.UTF8), wire.FlagLenient, "tainted")}

	got, err := m.Map(ctx, "uid", raw)
	if err != nil || got != "plain" {
		t.Fatalf("Map: (%q, %v)", got, err)
	}
	if len(hooks.selfHeal) != 1 || hooks.selfHeal[0] != "mode_mismatch" {
		t.Fatalf("selfHeal = %v", hooks.selfHeal)
	}
}

func TestMapAllKeepsOrderAndPerValueErrors(t *testing.T) {
	ctx := context.Background()
	m := newTestMapper(t, func(o *Options) {
		o.Scheme = charset.ASCII
		o.Parallelism = 4
	})

	values := [][]byte{
		[]byte("alice"),
		smartQuoted(), // fails under ascii
		[]byte("carol"),
	}
	res := m.MapAll(ctx, "uid", values)
	if len(res) != 3 {
		t.Fatalf("len(res) = %d", len(res))
	}
	if res[0].Err != nil || res[0].Text != "alice" {
		t.Fatalf("res[0] = %+v", res[0])
	}
	if res[1].Err == nil {
		t.Fatalf("res[1]: expected failure for smart-quoted value")
	}
	if res[2].Err != nil || res[2].Text != "carol" {
		t.Fatalf("res[2] = %+v", res[2])
	}
}

func TestMapAllBulkImportWithCache(t *testing.T) {
	ctx := context.Background()
	mp := newMemProvider()
	m := newTestMapper(t, func(o *Options) {
		o.Scheme = charset.ASCII
		o.Provider = mp
		o.Parallelism = 8
	})
	defer m.Close(ctx)

	// group-membership shape: the same few values repeated many times
	values := make([][]byte, 0, 300)
	for i := 0; i < 100; i++ {
		values = append(values,
			[]byte("cn=admins"), []byte("cn=staff"), []byte("cn=oncall"))
	}
	res := m.MapAll(ctx, "memberOf", values)
	for i, r := range res {
		if r.Err != nil {
			t.Fatalf("res[%d]: %v", i, r.Err)
		}
	}
	// concurrent first-decodes may each write, but only for 3 distinct values
	if len(mp.m) != 3 {
		t.Fatalf("distinct cache entries = %d, want 3", len(mp.m))
	}
}

func TestReporterReceivesFailure(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	sink := report.NewWriter(&buf, report.JSON[report.Failure]{})
	m := newTestMapper(t, func(o *Options) {
		o.Scheme = charset.ASCII
		o.Reporter = sink
	})

	if _, err := m.Map(ctx, "displayName", smartQuoted()); err == nil {
		t.Fatalf("expected decode failure")
	}

	frame, err := report.ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	f, err := report.JSON[report.Failure]{}.Decode(frame)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if f.Namespace != "hr-ldap" || f.Attr != "displayName" || f.Offset != 0 {
		t.Fatalf("failure record = %+v", f)
	}
	if len(f.Value) != 1 || f.Value[0] != 0xE2 {
		t.Fatalf("offending bytes = % x", f.Value)
	}
	if !strings.Contains(f.Reason, "ASCII") {
		t.Fatalf("reason = %q", f.Reason)
	}
}

func TestMapAllHonorsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := newTestMapper(t, nil)
	res := m.MapAll(ctx, "uid", [][]byte{[]byte("a"), []byte("b")})
	for _, r := range res {
		if r.Err == nil {
			t.Fatalf("expected context error per value, got %+v", res)
		}
	}
}

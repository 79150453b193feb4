// Package asynchook decouples hook callbacks from the decode hot path.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    DecodeFailedEvery: 1,  // log every decode failure
//	    SelfHealEvery:     10, // sample cache self-heals
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	m, _ := attrtext.New(attrtext.Options{
//	    Namespace: "hr-ldap",
//	    Scheme:    charset.UTF8,
//	    Hooks:     hooks, // or `raw` if you don't want async
//	})
//
// Events are dropped, not queued unboundedly, when the queue is full.
package asynchook

import (
	"sync"

	"github.com/nulltrope/attrtext"
)

type Hooks struct {
	inner attrtext.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ attrtext.Hooks = (*Hooks)(nil)

func New(inner attrtext.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) DecodeFailed(attr, scheme string, off int, reason string) {
	h.try(func() { h.inner.DecodeFailed(attr, scheme, off, reason) })
}
func (h *Hooks) DetectAmbiguous(attr string, size int) {
	h.try(func() { h.inner.DetectAmbiguous(attr, size) })
}
func (h *Hooks) ReplacementApplied(attr string, n int) {
	h.try(func() { h.inner.ReplacementApplied(attr, n) })
}
func (h *Hooks) SelfHeal(k, r string) { h.try(func() { h.inner.SelfHeal(k, r) }) }
func (h *Hooks) ProviderSetRejected(k string) {
	h.try(func() { h.inner.ProviderSetRejected(k) })
}
func (h *Hooks) ReportDropped(attr string, err error) {
	h.try(func() { h.inner.ReportDropped(attr, err) })
}

// Package sloghooks is a slog-backed Hooks implementation with sampling.
// Attribute names are redacted by default: a failure report already carries
// the offending bytes, so logs only need a stable handle for correlation.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/nulltrope/attrtext"
)

type Options struct {
	// Sampling to avoid floods on damaged imports; 0/1 = log all.
	DecodeFailedEvery uint64
	SelfHealEvery     uint64
	// Optional attribute-name redactor. Defaults to the identity:
	// attribute names are schema identifiers, not user data.
	Redact func(string) string
	// RedactKeys hashes cache storage keys before logging.
	RedactKeys bool
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	decodeFailCtr atomic.Uint64
	selfHealCtr   atomic.Uint64
}

var _ attrtext.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) attr(name string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(name)
	}
	return name
}

func (h *Hooks) key(k string) string {
	if !h.opts.RedactKeys {
		return k
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) DecodeFailed(attr, scheme string, offset int, reason string) {
	if h.l == nil || !sample(h.opts.DecodeFailedEvery, &h.decodeFailCtr) {
		return
	}
	h.l.Warn("attrtext.decode_failed",
		"attr", h.attr(attr),
		"scheme", scheme,
		"offset", offset,
		"reason", reason)
}

func (h *Hooks) DetectAmbiguous(attr string, size int) {
	if h.l == nil {
		return
	}
	h.l.Info("attrtext.detect_ambiguous",
		"attr", h.attr(attr),
		"size", size)
}

func (h *Hooks) ReplacementApplied(attr string, count int) {
	if h.l == nil {
		return
	}
	h.l.Warn("attrtext.replacement_applied",
		"attr", h.attr(attr),
		"count", count)
}

func (h *Hooks) SelfHeal(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("attrtext.self_heal",
		"key", h.key(storageKey),
		"reason", reason)
}

func (h *Hooks) ProviderSetRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("attrtext.provider_set_rejected",
		"key", h.key(storageKey))
}

func (h *Hooks) ReportDropped(attr string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("attrtext.report_dropped",
		"attr", h.attr(attr),
		"err", err)
}

package util

import (
	"crypto/sha256"
	"fmt"
)

// ValueKey returns a deterministic storage key for a raw octet value under a
// namespace and decode mode. Content-addressed: identical octets decoded the
// same way share an entry, and entries never need invalidation.
func ValueKey(ns, mode string, raw []byte) string {
	sum := sha256.Sum256(raw)
	return fmt.Sprintf("text:%s:%s:%x", ns, mode, sum[:8])
}

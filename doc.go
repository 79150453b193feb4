// Package attrtext maps directory-server attribute values (raw octet
// strings) into text for an identity schema. An octet string carries no
// encoding of its own; the caller declares one, or opts into inference.
// Every decode either yields exactly the text the octets encode or fails
// with a positional, inspectable error. Values are never silently coerced,
// truncated, or substituted.
//
// Components:
//   - charset: pure octet <-> text conversion for ASCII and UTF-8, with
//     byte-level failure reporting.
//   - Mapper: per-attribute decode pipeline with logging, hooks, an
//     optional diagnostic report sink, and an optional decode cache for
//     bulk imports.
//   - provider: byte store abstraction backing the decode cache
//     (Ristretto, BigCache, Redis).
//   - report: structured failure records with pluggable serialization
//     (JSON, CBOR, Msgpack, Protobuf).
//   - ldif: a minimal LDIF reader that supplies attribute values as raw
//     bytes, exactly as stored.
//
// Cache keys:
//
//	text:<ns>:<mode>:<hash16> - content-addressed over the raw octets.
//
// Entries are immutable (same bytes + same decode mode => same text), so
// there is no invalidation, only TTL expiry.
package attrtext

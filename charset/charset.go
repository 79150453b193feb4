// Package charset converts between raw octet sequences and text under a
// declared encoding scheme, and reports precisely when a sequence is not
// well-formed. Directory servers hand out octet-string attributes with no
// encoding attached; the scheme is asserted by the caller (or inferred via
// Detect), never stored with the data.
//
// Supported schemes:
//   - ASCII: one octet per character, values 0x00-0x7F.
//   - UTF8: the modern Unicode-restricted profile (1-4 byte forms, no
//     surrogates, no code points above U+10FFFF, no overlong encodings).
//
// Decoding is total: it either produces exactly the text the octets encode,
// or fails with a positional error. Silent substitution does not happen
// unless the caller opts into DecodeReplace.
package charset

import "fmt"

// Scheme identifies a supported text encoding.
type Scheme uint8

const (
	// ASCII maps each octet 0x00-0x7F to the code point of the same value.
	ASCII Scheme = iota
	// UTF8 is standard UTF-8 restricted to valid Unicode scalar values.
	UTF8
)

func (s Scheme) String() string {
	switch s {
	case ASCII:
		return "ascii"
	case UTF8:
		return "utf-8"
	default:
		return fmt.Sprintf("scheme(%d)", uint8(s))
	}
}

// ParseScheme maps a config-style name ("ascii", "utf-8", "utf8") to a Scheme.
func ParseScheme(name string) (Scheme, error) {
	switch name {
	case "ascii", "ASCII":
		return ASCII, nil
	case "utf-8", "utf8", "UTF-8", "UTF8":
		return UTF8, nil
	default:
		return 0, fmt.Errorf("charset: unknown scheme %q", name)
	}
}

package charset

import (
	"fmt"
	"strings"
)

const (
	maxRune     = 0x10FFFF
	surrMin     = 0xD800
	surrMax     = 0xDFFF
	replacement = '�'
)

// Decode interprets b under scheme s and returns the decoded text.
// Success is total: either every octet participates in a well-formed
// sequence, or Decode fails with an *InvalidEncodingError carrying the
// byte offset and the offending byte(s). No replacement characters are
// ever substituted; see DecodeReplace for the opt-in lenient mode.
//
// Re-encoding the result under the same scheme reproduces b exactly.
func Decode(b []byte, s Scheme) (string, error) {
	switch s {
	case ASCII:
		return decodeASCII(b)
	case UTF8:
		return decodeUTF8(b)
	default:
		return "", fmt.Errorf("charset: decode: unknown scheme %d", uint8(s))
	}
}

func decodeASCII(b []byte) (string, error) {
	for i, c := range b {
		if c >= 0x80 {
			return "", &InvalidEncodingError{
				Scheme: ASCII,
				Offset: i,
				Bytes:  b[i : i+1],
				Reason: "byte outside ASCII range",
			}
		}
	}
	// every byte <= 0x7F, so the string conversion is the identity decode
	return string(b), nil
}

func decodeUTF8(b []byte) (string, error) {
	var sb strings.Builder
	sb.Grow(len(b))
	for i := 0; i < len(b); {
		if c := b[i]; c < 0x80 {
			sb.WriteByte(c)
			i++
			continue
		}
		cp, size, err := decodeMulti(b, i)
		if err != nil {
			return "", err
		}
		sb.WriteRune(cp)
		i += size
	}
	return sb.String(), nil
}

// decodeMulti decodes one multi-byte UTF-8 sequence starting at b[i].
// The lead byte selects the form; continuation bytes must match 10xxxxxx.
// The assembled code point must be in the minimal-length range for its
// form and must be a Unicode scalar value.
func decodeMulti(b []byte, i int) (rune, int, error) {
	lead := b[i]

	var (
		size int
		cp   rune
		min  rune
	)
	switch {
	case lead&0xC0 == 0x80:
		return 0, 0, &InvalidEncodingError{
			Scheme: UTF8, Offset: i, Bytes: b[i : i+1],
			Reason: "unexpected continuation byte",
		}
	case lead&0xE0 == 0xC0:
		size, cp, min = 2, rune(lead&0x1F), 0x80
	case lead&0xF0 == 0xE0:
		size, cp, min = 3, rune(lead&0x0F), 0x800
	case lead&0xF8 == 0xF0:
		size, cp, min = 4, rune(lead&0x07), 0x10000
	default:
		// 0xF8-0xFF: lead bytes of the classic 5-/6-byte forms,
		// never valid under the Unicode-restricted profile.
		return 0, 0, &InvalidEncodingError{
			Scheme: UTF8, Offset: i, Bytes: b[i : i+1],
			Reason: "invalid lead byte",
		}
	}

	if i+size > len(b) {
		return 0, 0, &InvalidEncodingError{
			Scheme: UTF8, Offset: i, Bytes: b[i:],
			Reason: "truncated multi-byte sequence",
		}
	}
	for j := 1; j < size; j++ {
		cc := b[i+j]
		if cc&0xC0 != 0x80 {
			return 0, 0, &InvalidEncodingError{
				Scheme: UTF8, Offset: i + j, Bytes: b[i : i+j+1],
				Reason: "malformed continuation byte",
			}
		}
		cp = cp<<6 | rune(cc&0x3F)
	}

	seq := b[i : i+size]
	switch {
	case cp < min:
		return 0, 0, &InvalidEncodingError{
			Scheme: UTF8, Offset: i, Bytes: seq,
			Reason: "overlong encoding",
		}
	case cp >= surrMin && cp <= surrMax:
		return 0, 0, &InvalidEncodingError{
			Scheme: UTF8, Offset: i, Bytes: seq,
			Reason: "surrogate code point",
		}
	case cp > maxRune:
		return 0, 0, &InvalidEncodingError{
			Scheme: UTF8, Offset: i, Bytes: seq,
			Reason: "code point above U+10FFFF",
		}
	}
	return cp, size, nil
}

// DecodeReplace is the lenient variant of Decode: each invalid byte is
// replaced with U+FFFD instead of failing. It returns the decoded text and
// the number of replacements made. Resynchronization advances one byte per
// replacement, so a damaged multi-byte sequence may yield several markers.
//
// This is an explicit opt-in for callers that prefer damaged text over no
// text (e.g. display paths). It must never be the default decode path:
// a nonzero replacement count means the octets did NOT round-trip.
func DecodeReplace(b []byte, s Scheme) (string, int) {
	var sb strings.Builder
	sb.Grow(len(b))
	replaced := 0

	for i := 0; i < len(b); {
		c := b[i]
		if c < 0x80 {
			sb.WriteByte(c)
			i++
			continue
		}
		if s == ASCII {
			sb.WriteRune(replacement)
			replaced++
			i++
			continue
		}
		cp, size, err := decodeMulti(b, i)
		if err != nil {
			sb.WriteRune(replacement)
			replaced++
			i++
			continue
		}
		sb.WriteRune(cp)
		i += size
	}
	return sb.String(), replaced
}

package charset

import (
	"fmt"
	"unicode/utf8"
)

// Encode converts text to an octet sequence under scheme s.
//
// ASCII fails with an *UnrepresentableCharError for any rune above 0x7F.
// UTF8 is total over valid Unicode text: every scalar value has exactly one
// minimal-length form. A Go string can still carry bytes that are not valid
// UTF-8; those are rejected with an *InvalidEncodingError rather than being
// re-encoded into something the input never contained.
func Encode(text string, s Scheme) ([]byte, error) {
	switch s {
	case ASCII:
		return encodeASCII(text)
	case UTF8:
		return encodeUTF8(text)
	default:
		return nil, fmt.Errorf("charset: encode: unknown scheme %d", uint8(s))
	}
}

func encodeASCII(text string) ([]byte, error) {
	out := make([]byte, 0, len(text))
	idx := 0
	for off, r := range text {
		if r > 0x7F {
			if r == utf8.RuneError {
				if _, size := utf8.DecodeRuneInString(text[off:]); size == 1 {
					return nil, invalidTextByte(ASCII, text, off)
				}
			}
			return nil, &UnrepresentableCharError{Scheme: ASCII, Index: idx, Rune: r}
		}
		out = append(out, byte(r))
		idx++
	}
	return out, nil
}

func encodeUTF8(text string) ([]byte, error) {
	out := make([]byte, 0, len(text))
	for off, r := range text {
		if r == utf8.RuneError {
			// distinguish a genuine U+FFFD in the text from the marker
			// the range loop substitutes for an invalid byte
			if _, size := utf8.DecodeRuneInString(text[off:]); size == 1 {
				return nil, invalidTextByte(UTF8, text, off)
			}
		}
		out = appendRune(out, r)
	}
	return out, nil
}

// appendRune writes the minimal-length UTF-8 form of r.
// r must be a valid scalar value (guaranteed by the callers).
func appendRune(out []byte, r rune) []byte {
	switch {
	case r < 0x80:
		return append(out, byte(r))
	case r < 0x800:
		return append(out,
			0xC0|byte(r>>6),
			0x80|byte(r)&0x3F)
	case r < 0x10000:
		return append(out,
			0xE0|byte(r>>12),
			0x80|byte(r>>6)&0x3F,
			0x80|byte(r)&0x3F)
	default:
		return append(out,
			0xF0|byte(r>>18),
			0x80|byte(r>>12)&0x3F,
			0x80|byte(r>>6)&0x3F,
			0x80|byte(r)&0x3F)
	}
}

func invalidTextByte(s Scheme, text string, off int) error {
	return &InvalidEncodingError{
		Scheme: s,
		Offset: off,
		Bytes:  []byte{text[off]},
		Reason: "input text is not valid UTF-8",
	}
}

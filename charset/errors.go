package charset

import "fmt"

// InvalidEncodingError reports an octet sequence that is not well-formed
// under the requested scheme. Offset is the index of the first byte of the
// rejected sequence; Bytes holds the raw byte(s) that were rejected.
//
// Reason is human-readable and may evolve; branch on the error type (via
// errors.As) and its fields, not on the message.
type InvalidEncodingError struct {
	Scheme Scheme
	Offset int
	Bytes  []byte
	Reason string
}

func (e *InvalidEncodingError) Error() string {
	return fmt.Sprintf("charset: invalid %s at byte %d (% #x): %s",
		e.Scheme, e.Offset, e.Bytes, e.Reason)
}

// UnrepresentableCharError reports a code point the target scheme cannot
// encode. Index is the rune position within the input text (not a byte
// offset).
type UnrepresentableCharError struct {
	Scheme Scheme
	Index  int
	Rune   rune
}

func (e *UnrepresentableCharError) Error() string {
	return fmt.Sprintf("charset: %s cannot represent %q (U+%04X) at rune %d",
		e.Scheme, e.Rune, e.Rune, e.Index)
}

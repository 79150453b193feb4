package attrtext

import (
	"errors"
	"fmt"
)

var (
	// ErrValueTooLarge is wrapped into a *MapError when a raw value
	// exceeds Options.MaxValueSize.
	ErrValueTooLarge = errors.New("attrtext: value exceeds MaxValueSize")

	// ErrUndetected is wrapped into a *MapError when Detect mode finds no
	// supported scheme for a value.
	ErrUndetected = errors.New("attrtext: no supported scheme matches value")
)

// MapError wraps a decode failure with the attribute it came from. Unwrap
// exposes the cause; use errors.As for *charset.InvalidEncodingError to get
// the byte position and offending bytes.
type MapError struct {
	Attr string
	Err  error
}

func (e *MapError) Error() string {
	return fmt.Sprintf("attrtext: map %q: %v", e.Attr, e.Err)
}

func (e *MapError) Unwrap() error { return e.Err }

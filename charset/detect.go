package charset

// Detect reports the narrowest supported scheme under which b decodes
// cleanly. ASCII is tried first: every valid ASCII sequence is also valid
// UTF-8 with identical text, so reporting ASCII carries the stronger
// guarantee. If ASCII fails, UTF-8 is tried. ok is false when neither
// scheme fits — a normal outcome for genuinely binary values, not a fault.
//
// Detect is a diagnostic aid. An octet string's encoding is a property the
// producer must declare; a heuristic can confirm a guess, never replace one.
func Detect(b []byte) (Scheme, bool) {
	if _, err := Decode(b, ASCII); err == nil {
		return ASCII, true
	}
	if _, err := Decode(b, UTF8); err == nil {
		return UTF8, true
	}
	return 0, false
}

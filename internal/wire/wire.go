// Package wire frames decoded-text cache entries. A provider stores opaque
// bytes; the frame records which scheme produced the text and whether the
// lenient decode path was used, so a cached entry is never replayed for a
// different decode configuration.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	version byte = 1

	// FlagLenient marks text produced by the replacement-character path.
	FlagLenient byte = 1 << 0
)

var (
	ErrCorrupt = errors.New("attrtext: corrupt cache entry")
	magic4     = [...]byte{'A', 'T', 'X', 'T'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Entry: magic(4) | ver(1) | scheme(1) | flags(1) | tlen(u32 be) | text(tlen)
func EncodeEntry(scheme byte, flags byte, text string) []byte {
	var buf bytes.Buffer
	buf.Grow(4 + 1 + 1 + 1 + 4 + len(text))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(scheme)
	buf.WriteByte(flags)

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(text)))
	buf.Write(u4[:])

	buf.WriteString(text)
	return buf.Bytes()
}

func DecodeEntry(b []byte) (scheme byte, flags byte, text string, err error) {
	const hdr = 4 + 1 + 1 + 1 + 4
	if len(b) < hdr || !hasMagic(b) || b[4] != version {
		return 0, 0, "", ErrCorrupt
	}

	scheme = b[5]
	flags = b[6]

	tlen := int(binary.BigEndian.Uint32(b[7:11]))
	if tlen != len(b)-hdr { // exact length; trailing junk is corruption
		return 0, 0, "", ErrCorrupt
	}

	return scheme, flags, string(b[hdr:]), nil
}

package report

import (
	"context"
	"encoding/binary"
	"io"
	"sync"
)

// Writer is a Sink that appends codec-encoded records to an io.Writer as
// length-delimited frames (u32 big-endian prefix per record). Safe for
// concurrent use; records are written whole, never interleaved.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
	c  Codec[Failure]
}

var _ Sink = (*Writer)(nil)

func NewWriter(w io.Writer, c Codec[Failure]) *Writer {
	return &Writer{w: w, c: c}
}

func (wr *Writer) Emit(ctx context.Context, f Failure) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := wr.c.Encode(f)
	if err != nil {
		return err
	}

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(b)))

	wr.mu.Lock()
	defer wr.mu.Unlock()
	if _, err := wr.w.Write(u4[:]); err != nil {
		return err
	}
	_, err = wr.w.Write(b)
	return err
}

// ReadFrame reads one length-delimited record frame as written by Writer.
// io.EOF is returned cleanly at a frame boundary.
func ReadFrame(r io.Reader) ([]byte, error) {
	var u4 [4]byte
	if _, err := io.ReadFull(r, u4[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(u4[:])
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return b, nil
}

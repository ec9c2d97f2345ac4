package bitstream

import (
	"io"

	"github.com/calebcase/oops"
)

const flushSize = 2048

// BitWriter packs bits, most significant first, and writes them to w in
// chunks. Close must be called to write the final partial byte and the
// trailer.
type BitWriter struct {
	w io.Writer

	buf []byte
	cur byte
	n   uint8

	closed bool
}

// NewBitWriter returns a writer emitting to w.
func NewBitWriter(w io.Writer) *BitWriter {
	return &BitWriter{
		w: w,
	}
}

// Write appends a single bit.
func (bw *BitWriter) Write(bit bool) (err error) {
	if bw.closed {
		return Error.New("write after close")
	}

	if bit {
		bw.cur |= 0x80 >> bw.n
	}

	bw.n++
	if bw.n == 8 {
		bw.buf = append(bw.buf, bw.cur)
		bw.cur = 0
		bw.n = 0

		if len(bw.buf) >= flushSize {
			return bw.flush()
		}
	}

	return nil
}

// Close writes any buffered bits followed by the trailer. It does not close
// the underlying writer. Calling Close more than once is a no-op.
func (bw *BitWriter) Close() (err error) {
	if bw.closed {
		return nil
	}
	bw.closed = true

	if bw.n > 0 {
		bw.buf = append(bw.buf, bw.cur)
	}

	bw.buf = append(bw.buf, bw.n)

	return bw.flush()
}

func (bw *BitWriter) flush() (err error) {
	_, err = bw.w.Write(bw.buf)
	if err != nil {
		return oops.Trace(err)
	}

	bw.buf = bw.buf[:0]

	return nil
}

package bitstream

import (
	"errors"
	"io"

	"github.com/calebcase/oops"
	"github.com/zeebo/errs"
)

// Error is the error class for this package.
var Error = errs.Class("bitstream")

// ErrUnderflow is returned when a reader is asked for data past the end of
// its source.
var ErrUnderflow = Error.New("underflow")

// DefaultChunkSize is the chunk size used when none is given.
const DefaultChunkSize = 2048

// Source produces successive chunks of a stream. The returned chunk is only
// valid until the next call. Once more is false the source is exhausted and
// readers will not call it again.
type Source interface {
	Chunk() (chunk []byte, more bool, err error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func() (chunk []byte, more bool, err error)

// Chunk calls f.
func (f SourceFunc) Chunk() (chunk []byte, more bool, err error) {
	return f()
}

type bytesSource struct {
	b    []byte
	done bool
}

// Bytes returns a Source yielding b as a single final chunk.
func Bytes(b []byte) Source {
	return &bytesSource{
		b: b,
	}
}

func (s *bytesSource) Chunk() (chunk []byte, more bool, err error) {
	if s.done {
		return nil, false, nil
	}

	s.done = true

	return s.b, false, nil
}

type readerSource struct {
	r    io.Reader
	buf  []byte
	done bool
}

// NewReaderSource returns a Source reading chunks of up to chunkSize bytes
// from r. A short read marks the end of the stream.
func NewReaderSource(r io.Reader, chunkSize int) Source {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	return &readerSource{
		r:   r,
		buf: make([]byte, chunkSize),
	}
}

func (s *readerSource) Chunk() (chunk []byte, more bool, err error) {
	if s.done {
		return nil, false, nil
	}

	n, err := io.ReadFull(s.r, s.buf)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			s.done = true

			return s.buf[:n], false, nil
		}

		return nil, false, oops.Trace(err)
	}

	return s.buf[:n], true, nil
}

package value

import (
	"io"
	"os"

	"github.com/calebcase/oops"
	"github.com/edsrzf/mmap-go"
	"github.com/zeebo/errs"

	"github.com/calebcase/schematic/bitstream"
)

// ByteArray is a decoded byte array, held either Inline or Spilled to a file.
// The representation is fixed when the array is decoded.
type ByteArray interface {
	// Len returns the number of bytes in the array.
	Len() int64

	// Open returns a chunked source over the array and the closer that
	// releases it.
	Open(cfg Config) (src bitstream.Source, closer io.Closer, err error)

	byteArray()
}

// Inline is a byte array held in memory.
type Inline []byte

func (Inline) byteArray() {}

func (b Inline) Len() int64 {
	return int64(len(b))
}

func (b Inline) Open(cfg Config) (src bitstream.Source, closer io.Closer, err error) {
	return bitstream.Bytes(b), nopCloser{}, nil
}

// Spilled is a byte array stored in a file.
type Spilled struct {
	Path string
	Size int64
}

func (Spilled) byteArray() {}

func (s Spilled) Len() int64 {
	return s.Size
}

// Open opens the spill file read-only.
func (s Spilled) Open(cfg Config) (src bitstream.Source, closer io.Closer, err error) {
	cfg = cfg.WithDefaults()

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, nil, Error.Wrap(oops.Trace(err))
	}

	if !cfg.MapSpilled || s.Size == 0 {
		return bitstream.NewReaderSource(f, cfg.ChunkSize), f, nil
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		_ = f.Close()

		return nil, nil, Error.Wrap(oops.Trace(err))
	}

	m := &mapped{
		data: data,
		file: f,
		size: cfg.ChunkSize,
	}

	return m, m, nil
}

// Remove deletes the spill file.
func (s Spilled) Remove() (err error) {
	err = os.Remove(s.Path)
	if err != nil {
		return Error.Wrap(oops.Trace(err))
	}

	return nil
}

// ReadAll returns the full contents of b.
func ReadAll(b ByteArray, cfg Config) (data []byte, err error) {
	if inline, ok := b.(Inline); ok {
		return inline, nil
	}

	src, closer, err := b.Open(cfg)
	if err != nil {
		return nil, err
	}
	defer func() { err = errs.Combine(err, closer.Close()) }()

	data = make([]byte, 0, b.Len())
	for {
		chunk, more, err := src.Chunk()
		if err != nil {
			return nil, err
		}

		data = append(data, chunk...)

		if !more {
			return data, nil
		}
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// mapped serves a memory mapped spill file in chunks.
type mapped struct {
	data mmap.MMap
	file *os.File
	off  int
	size int
}

func (m *mapped) Chunk() (chunk []byte, more bool, err error) {
	end := m.off + m.size
	if end >= len(m.data) {
		end = len(m.data)
	}

	chunk = m.data[m.off:end]
	m.off = end

	return chunk, m.off < len(m.data), nil
}

func (m *mapped) Close() (err error) {
	if m.data == nil {
		return nil
	}

	err = errs.Combine(m.data.Unmap(), m.file.Close())
	m.data = nil

	return Error.Wrap(err)
}

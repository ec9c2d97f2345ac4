package bitstream

// ByteReader reads unsigned bytes from a Source.
type ByteReader struct {
	src  Source
	buf  []byte
	off  int
	more bool
	pos  int64

	err error
}

// NewByteReader returns a reader over src.
func NewByteReader(src Source) *ByteReader {
	return &ByteReader{
		src:  src,
		more: true,
	}
}

// Read returns the next byte. It returns ErrUnderflow once the source is
// exhausted.
func (r *ByteReader) Read() (b byte, err error) {
	if r.err != nil {
		return 0, r.err
	}

	for r.off >= len(r.buf) {
		if !r.more {
			return 0, ErrUnderflow
		}

		err = r.fill()
		if err != nil {
			r.err = err

			return 0, err
		}
	}

	b = r.buf[r.off]
	r.off++
	r.pos++

	return b, nil
}

// Pos returns the number of bytes read so far.
func (r *ByteReader) Pos() int64 {
	return r.pos
}

func (r *ByteReader) fill() (err error) {
	chunk, more, err := r.src.Chunk()
	if err != nil {
		return err
	}

	r.buf = append(r.buf[:0], r.buf[r.off:]...)
	r.buf = append(r.buf, chunk...)
	r.off = 0
	r.more = more

	return nil
}

// BitReader reads bits, most significant first, from a Source carrying a
// trailer terminated bit stream.
type BitReader struct {
	src  Source
	buf  []byte
	bit  int
	more bool
	pos  int64

	// last is the number of valid bits in the final data byte. It is only
	// meaningful once more is false.
	last int

	err error
}

// NewBitReader returns a reader over src.
func NewBitReader(src Source) *BitReader {
	return &BitReader{
		src:  src,
		more: true,
	}
}

// Read returns the next bit. It returns ErrUnderflow after the last valid
// bit.
func (r *BitReader) Read() (set bool, err error) {
	if r.err != nil {
		return false, r.err
	}

	// The byte under the cursor can only be interpreted once a byte after it
	// is buffered or the source is exhausted, since the very last byte is the
	// trailer.
	for r.more && len(r.buf) < r.bit>>3+2 {
		err = r.fill()
		if err != nil {
			r.err = err

			return false, err
		}
	}

	off := r.bit >> 3
	shift := r.bit & 7

	if !r.more {
		data := len(r.buf) - 1
		if off >= data {
			return false, ErrUnderflow
		}

		if off == data-1 && shift >= r.last {
			return false, ErrUnderflow
		}
	}

	set = r.buf[off]&(0x80>>shift) != 0
	r.bit++
	r.pos++

	return set, nil
}

// Pos returns the number of bits read so far.
func (r *BitReader) Pos() int64 {
	return r.pos
}

func (r *BitReader) fill() (err error) {
	chunk, more, err := r.src.Chunk()
	if err != nil {
		return err
	}

	r.buf = append(r.buf[:0], r.buf[r.bit>>3:]...)
	r.buf = append(r.buf, chunk...)
	r.bit &= 7
	r.more = more

	if !more && len(r.buf) > 0 {
		r.last = int(r.buf[len(r.buf)-1] & 7)
		if r.last == 0 {
			r.last = 8
		}
	}

	return nil
}

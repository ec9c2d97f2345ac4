package nbt

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"math"

	"github.com/calebcase/oops"
	"golang.org/x/exp/slices"
)

// MaxPrealloc bounds the elements allocated ahead of reading a body whose
// size comes from a length header. Larger bodies grow as they are read.
const MaxPrealloc = 1 << 16

// Prealloc returns the capacity to reserve for size elements.
func Prealloc(size int) int {
	if size > MaxPrealloc {
		return MaxPrealloc
	}

	return size
}

// Reader is a pull based tag stream reader. Every value must be consumed,
// either by the matching read call or by Skip, before the next name is read.
type Reader interface {
	// ReadName reads the next tag header of the open compound (or the top
	// level). At the compound terminator it returns End and an empty
	// name. At the end of input on the top level it returns io.EOF.
	ReadName() (name string, kind Kind, err error)

	StartCompound() (err error)
	EndCompound() (err error)
	StartList() (elem Kind, size int, err error)
	EndList() (err error)

	ReadInt8() (int8, error)
	ReadUint8() (uint8, error)
	ReadInt16() (int16, error)
	ReadInt32() (int32, error)
	ReadInt64() (int64, error)
	ReadFloat32() (float32, error)
	ReadFloat64() (float64, error)
	ReadString() (string, error)
	ReadByteArray() ([]byte, error)
	ReadInt32Array() ([]int32, error)
	ReadInt64Array() ([]int64, error)

	// PeekInt returns the next four bytes as a big-endian int without
	// consuming them. It is used to inspect array size headers.
	PeekInt() (int32, error)

	// ReadByteArrayChunks reads a byte array and hands its body to fn in
	// chunks of at most chunkSize bytes. The chunk is only valid during
	// the call.
	ReadByteArrayChunks(chunkSize int, fn func(chunk []byte) error) (n int64, err error)

	// Skip consumes a value of the given kind.
	Skip(kind Kind) (err error)

	Depth() int
	Stack() Stack
	Consumed() uint64
	Err() error
}

type reader struct {
	r *bufio.Reader

	consumed uint64

	stack *Stack

	scratch [8]byte

	err error
}

// NewReader returns a reader over r.
func NewReader(r io.Reader) Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	return &reader{
		r:     br,
		stack: newStack(),
	}
}

func (d *reader) Err() error {
	return d.err
}

func (d *reader) Depth() int {
	return d.stack.Depth()
}

func (d *reader) Stack() Stack {
	return *d.stack
}

func (d *reader) Consumed() uint64 {
	return d.consumed
}

// fail latches err so every later call reports it.
func (d *reader) fail(err *error) {
	if *err != nil && d.err == nil && !errors.Is(*err, io.EOF) {
		d.err = *err
	}
}

func (d *reader) full(buf []byte) (err error) {
	n, err := io.ReadFull(d.r, buf)
	d.consumed += uint64(n)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}

		return Error.Wrap(oops.Trace(err))
	}

	return nil
}

// seek moves past size bytes of input without keeping them.
func (d *reader) seek(size int64) (err error) {
	for size > 0 {
		step := size
		if step > math.MaxInt32 {
			step = math.MaxInt32
		}

		n, err := d.r.Discard(int(step))
		d.consumed += uint64(n)
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}

			return Error.Wrap(oops.Trace(err))
		}

		size -= step
	}

	return nil
}

func (d *reader) u8() (b byte, err error) {
	err = d.full(d.scratch[:1])

	return d.scratch[0], err
}

func (d *reader) u16() (v uint16, err error) {
	err = d.full(d.scratch[:2])

	return binary.BigEndian.Uint16(d.scratch[:2]), err
}

func (d *reader) u32() (v uint32, err error) {
	err = d.full(d.scratch[:4])

	return binary.BigEndian.Uint32(d.scratch[:4]), err
}

func (d *reader) u64() (v uint64, err error) {
	err = d.full(d.scratch[:8])

	return binary.BigEndian.Uint64(d.scratch[:8]), err
}

func (d *reader) str() (s string, err error) {
	size, err := d.u16()
	if err != nil {
		return "", err
	}

	buf := make([]byte, size)

	err = d.full(buf)
	if err != nil {
		return "", err
	}

	return string(buf), nil
}

// length reads an array or list size header.
func (d *reader) length() (size int, err error) {
	v, err := d.u32()
	if err != nil {
		return 0, err
	}

	if int32(v) < 0 {
		return 0, Error.New("negative length: %d", int32(v))
	}

	return int(int32(v)), nil
}

// start checks the reader state and records the start of a value of kind k.
func (d *reader) start(k Kind) (err error) {
	if d.err != nil {
		return d.err
	}

	return d.stack.Value(k)
}

func (d *reader) ReadName() (name string, kind Kind, err error) {
	defer d.fail(&err)

	if d.err != nil {
		return "", End, d.err
	}

	top := d.stack.Top()

	// Check before reading so a desynchronized caller is reported at the
	// offending name rather than somewhere in the payload.
	if top.Kind == List || top.Ended || top.Pending != End {
		return "", End, d.stack.Name(End)
	}

	b, err := d.r.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			if top.Kind == End {
				return "", End, io.EOF
			}

			err = io.ErrUnexpectedEOF
		}

		return "", End, Error.Wrap(oops.Trace(err))
	}
	d.consumed++

	kind, err = ParseKind(b)
	if err != nil {
		return "", End, err
	}

	err = d.stack.Name(kind)
	if err != nil {
		return "", End, err
	}

	if kind == End {
		return "", End, nil
	}

	name, err = d.str()
	if err != nil {
		return "", End, err
	}

	return name, kind, nil
}

func (d *reader) StartCompound() (err error) {
	defer d.fail(&err)

	err = d.start(Compound)
	if err != nil {
		return err
	}

	d.stack.Push(&Frame{
		Kind: Compound,
	})

	return nil
}

func (d *reader) EndCompound() (err error) {
	defer d.fail(&err)

	if d.err != nil {
		return d.err
	}

	return d.stack.Pop(Compound)
}

func (d *reader) StartList() (elem Kind, size int, err error) {
	defer d.fail(&err)

	err = d.start(List)
	if err != nil {
		return End, 0, err
	}

	b, err := d.u8()
	if err != nil {
		return End, 0, err
	}

	elem, err = ParseKind(b)
	if err != nil {
		return End, 0, err
	}

	size, err = d.length()
	if err != nil {
		return End, 0, err
	}

	if elem == End && size > 0 {
		return End, 0, Error.New("list of %d End elements", size)
	}

	d.stack.Push(&Frame{
		Kind: List,
		Elem: elem,
		Size: size,
	})

	return elem, size, nil
}

func (d *reader) EndList() (err error) {
	defer d.fail(&err)

	if d.err != nil {
		return d.err
	}

	return d.stack.Pop(List)
}

func (d *reader) ReadInt8() (v int8, err error) {
	defer d.fail(&err)

	err = d.start(Byte)
	if err != nil {
		return 0, err
	}

	b, err := d.u8()

	return int8(b), err
}

func (d *reader) ReadUint8() (v uint8, err error) {
	defer d.fail(&err)

	err = d.start(Byte)
	if err != nil {
		return 0, err
	}

	return d.u8()
}

func (d *reader) ReadInt16() (v int16, err error) {
	defer d.fail(&err)

	err = d.start(Short)
	if err != nil {
		return 0, err
	}

	u, err := d.u16()

	return int16(u), err
}

func (d *reader) ReadInt32() (v int32, err error) {
	defer d.fail(&err)

	err = d.start(Int)
	if err != nil {
		return 0, err
	}

	u, err := d.u32()

	return int32(u), err
}

func (d *reader) ReadInt64() (v int64, err error) {
	defer d.fail(&err)

	err = d.start(Long)
	if err != nil {
		return 0, err
	}

	u, err := d.u64()

	return int64(u), err
}

func (d *reader) ReadFloat32() (v float32, err error) {
	defer d.fail(&err)

	err = d.start(Float)
	if err != nil {
		return 0, err
	}

	u, err := d.u32()

	return math.Float32frombits(u), err
}

func (d *reader) ReadFloat64() (v float64, err error) {
	defer d.fail(&err)

	err = d.start(Double)
	if err != nil {
		return 0, err
	}

	u, err := d.u64()

	return math.Float64frombits(u), err
}

func (d *reader) ReadString() (s string, err error) {
	defer d.fail(&err)

	err = d.start(String)
	if err != nil {
		return "", err
	}

	return d.str()
}

func (d *reader) ReadByteArray() (data []byte, err error) {
	defer d.fail(&err)

	err = d.start(ByteArray)
	if err != nil {
		return nil, err
	}

	size, err := d.length()
	if err != nil {
		return nil, err
	}

	data = make([]byte, 0, Prealloc(size))
	for len(data) < size {
		start := len(data)
		n := Prealloc(size - start)

		data = slices.Grow(data, n)[:start+n]

		err = d.full(data[start:])
		if err != nil {
			return nil, err
		}
	}

	return data, nil
}

func (d *reader) ReadInt32Array() (values []int32, err error) {
	defer d.fail(&err)

	err = d.start(IntArray)
	if err != nil {
		return nil, err
	}

	size, err := d.length()
	if err != nil {
		return nil, err
	}

	values = make([]int32, 0, Prealloc(size))
	for i := 0; i < size; i++ {
		u, err := d.u32()
		if err != nil {
			return nil, err
		}

		values = append(values, int32(u))
	}

	return values, nil
}

func (d *reader) ReadInt64Array() (values []int64, err error) {
	defer d.fail(&err)

	err = d.start(LongArray)
	if err != nil {
		return nil, err
	}

	size, err := d.length()
	if err != nil {
		return nil, err
	}

	values = make([]int64, 0, Prealloc(size))
	for i := 0; i < size; i++ {
		u, err := d.u64()
		if err != nil {
			return nil, err
		}

		values = append(values, int64(u))
	}

	return values, nil
}

func (d *reader) PeekInt() (v int32, err error) {
	defer d.fail(&err)

	if d.err != nil {
		return 0, d.err
	}

	p, err := d.r.Peek(4)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}

		return 0, Error.Wrap(oops.Trace(err))
	}

	return int32(binary.BigEndian.Uint32(p)), nil
}

func (d *reader) ReadByteArrayChunks(chunkSize int, fn func(chunk []byte) error) (n int64, err error) {
	defer d.fail(&err)

	err = d.start(ByteArray)
	if err != nil {
		return 0, err
	}

	size, err := d.length()
	if err != nil {
		return 0, err
	}

	if chunkSize <= 0 {
		chunkSize = MaxPrealloc
	}

	if chunkSize > size {
		chunkSize = size
	}

	buf := make([]byte, chunkSize)
	for remaining := size; remaining > 0; {
		chunk := buf
		if remaining < len(chunk) {
			chunk = chunk[:remaining]
		}

		err = d.full(chunk)
		if err != nil {
			return n, err
		}

		err = fn(chunk)
		if err != nil {
			return n, err
		}

		n += int64(len(chunk))
		remaining -= len(chunk)
	}

	return n, nil
}

func (d *reader) Skip(kind Kind) (err error) {
	defer d.fail(&err)

	switch kind {
	case Byte, Short, Int, Long, Float, Double:
		err = d.start(kind)
		if err != nil {
			return err
		}

		return d.seek(int64(kind.width()))
	case String:
		err = d.start(kind)
		if err != nil {
			return err
		}

		size, err := d.u16()
		if err != nil {
			return err
		}

		return d.seek(int64(size))
	case ByteArray, IntArray, LongArray:
		err = d.start(kind)
		if err != nil {
			return err
		}

		size, err := d.length()
		if err != nil {
			return err
		}

		return d.seek(int64(size) * int64(kind.width()))
	case List:
		elem, size, err := d.StartList()
		if err != nil {
			return err
		}

		for i := 0; i < size; i++ {
			err = d.Skip(elem)
			if err != nil {
				return err
			}
		}

		return d.EndList()
	case Compound:
		err = d.StartCompound()
		if err != nil {
			return err
		}

		for {
			_, k, err := d.ReadName()
			if err != nil {
				return err
			}

			if k == End {
				break
			}

			err = d.Skip(k)
			if err != nil {
				return err
			}
		}

		return d.EndCompound()
	}

	return Error.New("cannot skip %s", kind)
}

package nbt

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/calebcase/oops"
)

// Writer emits a tag stream. It validates container structure the same way
// Reader does, so a stream it accepts is one Reader accepts.
type Writer interface {
	WriteName(kind Kind, name string) (err error)

	StartCompound() (err error)
	EndCompound() (err error)
	StartList(elem Kind, size int) (err error)
	EndList() (err error)

	WriteInt8(v int8) (err error)
	WriteInt16(v int16) (err error)
	WriteInt32(v int32) (err error)
	WriteInt64(v int64) (err error)
	WriteFloat32(v float32) (err error)
	WriteFloat64(v float64) (err error)
	WriteString(s string) (err error)
	WriteByteArray(data []byte) (err error)
	WriteInt32Array(values []int32) (err error)
	WriteInt64Array(values []int64) (err error)

	Depth() int
}

type writer struct {
	w io.Writer

	stack *Stack

	scratch [8]byte
}

// NewWriter returns a writer emitting to w.
func NewWriter(w io.Writer) Writer {
	return &writer{
		w:     w,
		stack: newStack(),
	}
}

func (e *writer) Depth() int {
	return e.stack.Depth()
}

func (e *writer) write(data []byte) (err error) {
	_, err = e.w.Write(data)
	if err != nil {
		return Error.Wrap(oops.Trace(err))
	}

	return nil
}

func (e *writer) u16(v uint16) (err error) {
	binary.BigEndian.PutUint16(e.scratch[:2], v)

	return e.write(e.scratch[:2])
}

func (e *writer) u32(v uint32) (err error) {
	binary.BigEndian.PutUint32(e.scratch[:4], v)

	return e.write(e.scratch[:4])
}

func (e *writer) u64(v uint64) (err error) {
	binary.BigEndian.PutUint64(e.scratch[:8], v)

	return e.write(e.scratch[:8])
}

func (e *writer) str(s string) (err error) {
	if len(s) > math.MaxUint16 {
		return Error.New("string too long: %d", len(s))
	}

	err = e.u16(uint16(len(s)))
	if err != nil {
		return err
	}

	return e.write([]byte(s))
}

func (e *writer) length(size int) (err error) {
	if size < 0 || size > math.MaxInt32 {
		return Error.New("invalid length: %d", size)
	}

	return e.u32(uint32(size))
}

func (e *writer) WriteName(kind Kind, name string) (err error) {
	if kind == End || !kind.Valid() {
		return Error.New("invalid named kind: %s", kind)
	}

	err = e.stack.Name(kind)
	if err != nil {
		return err
	}

	err = e.write([]byte{byte(kind)})
	if err != nil {
		return err
	}

	return e.str(name)
}

func (e *writer) StartCompound() (err error) {
	err = e.stack.Value(Compound)
	if err != nil {
		return err
	}

	e.stack.Push(&Frame{
		Kind: Compound,
	})

	return nil
}

func (e *writer) EndCompound() (err error) {
	top := e.stack.Top()
	if top.Kind != Compound {
		return Error.New("closing Compound but %s is open", top.Kind)
	}

	err = e.stack.Name(End)
	if err != nil {
		return err
	}

	err = e.write([]byte{byte(End)})
	if err != nil {
		return err
	}

	return e.stack.Pop(Compound)
}

func (e *writer) StartList(elem Kind, size int) (err error) {
	if !elem.Valid() || (elem == End && size > 0) {
		return Error.New("invalid list element kind: %s", elem)
	}

	err = e.stack.Value(List)
	if err != nil {
		return err
	}

	err = e.write([]byte{byte(elem)})
	if err != nil {
		return err
	}

	err = e.length(size)
	if err != nil {
		return err
	}

	e.stack.Push(&Frame{
		Kind: List,
		Elem: elem,
		Size: size,
	})

	return nil
}

func (e *writer) EndList() (err error) {
	return e.stack.Pop(List)
}

func (e *writer) WriteInt8(v int8) (err error) {
	err = e.stack.Value(Byte)
	if err != nil {
		return err
	}

	return e.write([]byte{byte(v)})
}

func (e *writer) WriteInt16(v int16) (err error) {
	err = e.stack.Value(Short)
	if err != nil {
		return err
	}

	return e.u16(uint16(v))
}

func (e *writer) WriteInt32(v int32) (err error) {
	err = e.stack.Value(Int)
	if err != nil {
		return err
	}

	return e.u32(uint32(v))
}

func (e *writer) WriteInt64(v int64) (err error) {
	err = e.stack.Value(Long)
	if err != nil {
		return err
	}

	return e.u64(uint64(v))
}

func (e *writer) WriteFloat32(v float32) (err error) {
	err = e.stack.Value(Float)
	if err != nil {
		return err
	}

	return e.u32(math.Float32bits(v))
}

func (e *writer) WriteFloat64(v float64) (err error) {
	err = e.stack.Value(Double)
	if err != nil {
		return err
	}

	return e.u64(math.Float64bits(v))
}

func (e *writer) WriteString(s string) (err error) {
	err = e.stack.Value(String)
	if err != nil {
		return err
	}

	return e.str(s)
}

func (e *writer) WriteByteArray(data []byte) (err error) {
	err = e.stack.Value(ByteArray)
	if err != nil {
		return err
	}

	err = e.length(len(data))
	if err != nil {
		return err
	}

	return e.write(data)
}

func (e *writer) WriteInt32Array(values []int32) (err error) {
	err = e.stack.Value(IntArray)
	if err != nil {
		return err
	}

	err = e.length(len(values))
	if err != nil {
		return err
	}

	for _, v := range values {
		err = e.u32(uint32(v))
		if err != nil {
			return err
		}
	}

	return nil
}

func (e *writer) WriteInt64Array(values []int64) (err error) {
	err = e.stack.Value(LongArray)
	if err != nil {
		return err
	}

	err = e.length(len(values))
	if err != nil {
		return err
	}

	for _, v := range values {
		err = e.u64(uint64(v))
		if err != nil {
			return err
		}
	}

	return nil
}

package value

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/calebcase/oops"
	"github.com/google/uuid"
	"github.com/zeebo/errs"

	"github.com/calebcase/schematic/nbt"
	"github.com/calebcase/schematic/schema"
)

// Decoder turns tag stream payloads into values according to their declared
// kind and compound discriminator. It remembers every spill file it creates
// so the caller can take ownership of them.
type Decoder struct {
	cfg     Config
	spilled []Spilled
}

// NewDecoder returns a decoder using cfg.
func NewDecoder(cfg Config) *Decoder {
	return &Decoder{
		cfg: cfg.WithDefaults(),
	}
}

// Config returns the effective configuration.
func (d *Decoder) Config() Config {
	return d.cfg
}

// Spilled returns the spill files created so far.
func (d *Decoder) Spilled() []Spilled {
	return d.spilled
}

// Cleanup removes every spill file created so far.
func (d *Decoder) Cleanup() error {
	var group errs.Group
	for _, s := range d.spilled {
		group.Add(s.Remove())
	}

	d.spilled = nil

	return group.Err()
}

// Decode reads the next value, of the given kind, from r. For compounds the
// discriminator selects the strategy; for lists it is passed on to the
// elements.
func (d *Decoder) Decode(r nbt.Reader, kind nbt.Kind, disc schema.Discriminator) (v Value, err error) {
	switch kind {
	case nbt.Byte:
		return r.ReadInt8()
	case nbt.Short:
		return r.ReadInt16()
	case nbt.Int:
		return r.ReadInt32()
	case nbt.Long:
		return r.ReadInt64()
	case nbt.Float:
		return r.ReadFloat32()
	case nbt.Double:
		return r.ReadFloat64()
	case nbt.String:
		return r.ReadString()
	case nbt.IntArray:
		return r.ReadInt32Array()
	case nbt.LongArray:
		return r.ReadInt64Array()
	case nbt.ByteArray:
		return d.byteArray(r)
	case nbt.List:
		return d.list(r, disc)
	case nbt.Compound:
		return d.compound(r, disc)
	}

	return nil, Error.New("cannot decode %s", kind)
}

func (d *Decoder) list(r nbt.Reader, disc schema.Discriminator) (v Value, err error) {
	elem, size, err := r.StartList()
	if err != nil {
		return nil, err
	}

	list := make(List, 0, nbt.Prealloc(size))
	for i := 0; i < size; i++ {
		item, err := d.Decode(r, elem, disc)
		if err != nil {
			return nil, err
		}

		list = append(list, item)
	}

	err = r.EndList()
	if err != nil {
		return nil, err
	}

	return list, nil
}

func (d *Decoder) compound(r nbt.Reader, disc schema.Discriminator) (v Value, err error) {
	switch disc {
	case schema.ItemMapping:
		return d.itemMapping(r)
	case schema.ItemStub:
		return d.itemStub(r)
	case schema.Generic, schema.Entity, schema.Tile:
		return d.generic(r)
	case schema.None:
	}

	return nil, ErrDiscriminator.New("%s", disc)
}

func (d *Decoder) itemMapping(r nbt.Reader) (v *ItemMapping, err error) {
	err = r.StartCompound()
	if err != nil {
		return nil, err
	}

	m := NewItemMapping()
	for {
		name, kind, err := r.ReadName()
		if err != nil {
			return nil, err
		}

		if kind == nbt.End {
			break
		}

		id, err := r.ReadInt16()
		if err != nil {
			return nil, err
		}

		m.Set(name, id)
	}

	err = r.EndCompound()
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (d *Decoder) itemStub(r nbt.Reader) (v *ItemStub, err error) {
	err = r.StartCompound()
	if err != nil {
		return nil, err
	}

	stub := &ItemStub{}
	var haveID, haveDamage, haveCount bool

	for {
		name, kind, err := r.ReadName()
		if err != nil {
			return nil, err
		}

		if kind == nbt.End {
			break
		}

		switch name {
		case "id":
			stub.Name, err = r.ReadString()
			haveID = true
		case "Damage":
			stub.Damage, err = r.ReadInt16()
			haveDamage = true
		case "Count":
			stub.Count, err = r.ReadUint8()
			haveCount = true
		case "tag":
			stub.Tag, err = d.generic(r)
		default:
			err = r.Skip(kind)
		}
		if err != nil {
			return nil, err
		}
	}

	err = r.EndCompound()
	if err != nil {
		return nil, err
	}

	missing := []string{}
	if !haveID {
		missing = append(missing, "id")
	}
	if !haveDamage {
		missing = append(missing, "Damage")
	}
	if !haveCount {
		missing = append(missing, "Count")
	}
	if len(missing) > 0 {
		return nil, ErrIncomplete.New("item stub missing %s", strings.Join(missing, ", "))
	}

	stub.ID, err = d.cfg.Items.ItemID(stub.Name)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	return stub, nil
}

func (d *Decoder) generic(r nbt.Reader) (v *Compound, err error) {
	err = r.StartCompound()
	if err != nil {
		return nil, err
	}

	c := NewCompound()
	for {
		name, kind, err := r.ReadName()
		if err != nil {
			return nil, err
		}

		if kind == nbt.End {
			break
		}

		item, err := d.Decode(r, kind, schema.Generic)
		if err != nil {
			return nil, err
		}

		c.Set(name, item)
	}

	err = r.EndCompound()
	if err != nil {
		return nil, err
	}

	return c, nil
}

func (d *Decoder) byteArray(r nbt.Reader) (v ByteArray, err error) {
	size, err := r.PeekInt()
	if err != nil {
		return nil, err
	}

	if int64(size) <= d.cfg.SpillThreshold {
		data, err := r.ReadByteArray()
		if err != nil {
			return nil, err
		}

		return Inline(data), nil
	}

	return d.spill(r)
}

// createFile creates a fresh spill file. The name is random so concurrent
// decoders sharing a directory never collide.
func (d *Decoder) createFile() (*os.File, error) {
	path := filepath.Join(d.cfg.TempDir, d.cfg.SpillPrefix+uuid.New().String())

	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
}

func (d *Decoder) spill(r nbt.Reader) (v ByteArray, err error) {
	f, err := d.createFile()
	if err != nil {
		return nil, Error.Wrap(oops.Trace(err))
	}

	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	n, err := r.ReadByteArrayChunks(d.cfg.ChunkSize, func(chunk []byte) error {
		_, err := f.Write(chunk)
		if err != nil {
			return Error.Wrap(oops.Trace(err))
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	err = f.Close()
	if err != nil {
		return nil, Error.Wrap(oops.Trace(err))
	}

	s := Spilled{
		Path: f.Name(),
		Size: n,
	}
	d.spilled = append(d.spilled, s)

	d.cfg.logf("spilled byte array: path=%s size=%d", s.Path, s.Size)

	return s, nil
}

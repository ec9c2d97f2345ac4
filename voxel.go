package schematic

import (
	"io"

	"github.com/zeebo/errs"

	"github.com/calebcase/schematic/bitstream"
	"github.com/calebcase/schematic/value"
)

// Voxel is a single placed block.
type Voxel struct {
	// ID is the block id from Blocks.
	ID   int
	Data int
	Pos  Pos

	// Add holds the AddBlocks high bits, zero when AddBlocks is empty or
	// has no recognized layout.
	Add int

	// Index is the position of the block in the storage arrays.
	Index int
}

// FullID returns the block id extended with the AddBlocks high bits.
func (v Voxel) FullID() int {
	return v.Add<<8 | v.ID
}

// Locate returns the relative position of storage index i in a schematic of
// width w and length l. X varies fastest, then Z, then Y.
func Locate(i, w, l int) Pos {
	t := i / w

	return Pos{
		X: i % w,
		Y: t / l,
		Z: t % l,
	}
}

// Index is the inverse of Locate.
func Index(p Pos, w, l int) int {
	return (p.Y*l+p.Z)*w + p.X
}

// handles tracks the closers of opened byte arrays so they are released
// exactly once.
type handles []io.Closer

func (h *handles) open(b value.ByteArray, cfg value.Config) (src bitstream.Source, err error) {
	if b == nil {
		return bitstream.Bytes(nil), nil
	}

	src, closer, err := b.Open(cfg)
	if err != nil {
		return nil, err
	}

	*h = append(*h, closer)

	return src, nil
}

func (h *handles) close() error {
	var group errs.Group
	for _, c := range *h {
		group.Add(c.Close())
	}

	*h = nil

	return group.Err()
}

// ids yields block ids and, when AddBlocks is usable, their high bits.
type ids struct {
	blocks *bitstream.ByteReader
	add    *bitstream.ByteReader
	nibble bool
	cur    byte
}

func (s *ids) next(i int) (id, add int, err error) {
	b, err := s.blocks.Read()
	if err != nil {
		return 0, 0, err
	}

	if s.add == nil {
		return int(b), 0, nil
	}

	var a byte
	switch {
	case !s.nibble:
		a, err = s.add.Read()
	case i&1 == 0:
		s.cur, err = s.add.Read()
		a = s.cur >> 4
	default:
		a = s.cur & 0x0f
	}
	if err != nil {
		return 0, 0, err
	}

	return int(b), int(a), nil
}

// openIDs opens the readers behind ids. AddBlocks is a nibble per block when
// it holds ceil(volume/2) bytes and a byte per block when it holds volume
// bytes. When both fit (a single block) the tag name decides: "Add" is the
// byte layout. Any other length is ignored.
func (d *Document) openIDs(h *handles, volume int) (s ids, err error) {
	src, err := h.open(d.Blocks(), d.cfg)
	if err != nil {
		return s, err
	}

	s.blocks = bitstream.NewByteReader(src)

	add := d.AddBlocks()
	if add == nil || add.Len() == 0 {
		return s, nil
	}

	size := add.Len()
	halves := int64(volume+1) / 2

	switch {
	case size == int64(volume) && (size != halves || d.Tag(FieldAddBlocks) == "Add"):
		s.nibble = false
	case size == halves:
		s.nibble = true
	default:
		logf(d.cfg, "ignoring %s: %d bytes for %d blocks", d.Tag(FieldAddBlocks), size, volume)

		return s, nil
	}

	src, err = h.open(add, d.cfg)
	if err != nil {
		return s, err
	}

	s.add = bitstream.NewByteReader(src)

	return s, nil
}

// Iterator walks the blocks of a document in storage order, skipping blocks
// whose presence bit is clear.
type Iterator struct {
	base      Pos
	w, l      int
	volume, i int

	ids     ids
	data    *bitstream.ByteReader
	opaque  *bitstream.BitReader
	handles handles

	cur  Voxel
	err  error
	done bool
}

// Voxels returns an iterator over the document's blocks. Positions are
// anchor minus the WorldEdit offset plus the relative position.
func (d *Document) Voxels(anchor Pos) (it *Iterator, err error) {
	defer Error.WrapP(&err)

	w, h, l := d.Dimensions()
	volume := w * h * l

	var hs handles
	defer func() {
		if err != nil {
			err = errs.Combine(err, hs.close())
		}
	}()

	s, err := d.openIDs(&hs, volume)
	if err != nil {
		return nil, err
	}

	src, err := hs.open(d.Data(), d.cfg)
	if err != nil {
		return nil, err
	}

	data := bitstream.NewByteReader(src)

	var opaque *bitstream.BitReader
	if b, ok := d.Opaque(); ok {
		src, err := hs.open(b, d.cfg)
		if err != nil {
			return nil, err
		}

		opaque = bitstream.NewBitReader(src)
	}

	return &Iterator{
		base:    anchor.Sub(d.Offset()),
		w:       w,
		l:       l,
		volume:  volume,
		ids:     s,
		data:    data,
		opaque:  opaque,
		handles: hs,
	}, nil
}

// Next advances to the next present voxel. It returns false when the blocks
// are exhausted or an error occurred; check Err.
func (it *Iterator) Next() bool {
	if it.done {
		return false
	}

	for it.i < it.volume {
		i := it.i
		it.i++

		id, add, err := it.ids.next(i)
		if err != nil {
			it.finish(err)
			return false
		}

		data, err := it.data.Read()
		if err != nil {
			it.finish(err)
			return false
		}

		if it.opaque != nil {
			set, err := it.opaque.Read()
			if err != nil {
				it.finish(err)
				return false
			}

			if !set {
				continue
			}
		}

		it.cur = Voxel{
			ID:    id,
			Add:   add,
			Data:  int(data),
			Pos:   it.base.Add(Locate(i, it.w, it.l)),
			Index: i,
		}

		return true
	}

	it.finish(nil)

	return false
}

// Voxel returns the current voxel.
func (it *Iterator) Voxel() Voxel {
	return it.cur
}

// Err returns the error that stopped iteration, if any.
func (it *Iterator) Err() error {
	return it.err
}

// Close releases the iterator's readers. It is safe to call more than once
// and after exhaustion.
func (it *Iterator) Close() error {
	if it.done {
		return nil
	}

	it.done = true

	return Error.Wrap(it.handles.close())
}

func (it *Iterator) finish(err error) {
	it.done = true
	it.err = Error.Wrap(errs.Combine(err, it.handles.close()))
}

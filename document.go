package schematic

import (
	"github.com/zeebo/errs"

	"github.com/calebcase/schematic/value"
)

// Pos is a block position.
type Pos struct {
	X, Y, Z int
}

// Add returns p+q.
func (p Pos) Add(q Pos) Pos {
	return Pos{p.X + q.X, p.Y + q.Y, p.Z + q.Z}
}

// Sub returns p-q.
func (p Pos) Sub(q Pos) Pos {
	return Pos{p.X - q.X, p.Y - q.Y, p.Z - q.Z}
}

// Document is a decoded schematic. Values are keyed by field identifier. A
// document owns the spill files created while decoding it; Close removes
// them.
type Document struct {
	cfg     value.Config
	values  map[string]value.Value
	tags    map[string]string
	spilled []value.Spilled
}

// Get returns the value stored under the field identifier id.
func (d *Document) Get(id string) (v value.Value, ok bool) {
	v, ok = d.values[id]

	return v, ok
}

// Tag returns the tag name the field id was read from. It differs from the
// declared name when a fallback matched.
func (d *Document) Tag(id string) string {
	return d.tags[id]
}

// Config returns the effective configuration the document was decoded with.
func (d *Document) Config() value.Config {
	return d.cfg
}

// Spilled returns the spill files owned by the document.
func (d *Document) Spilled() []value.Spilled {
	return d.spilled
}

// Close removes the document's spill files. Iterators over the document must
// be closed first.
func (d *Document) Close() error {
	var group errs.Group
	for _, s := range d.spilled {
		group.Add(s.Remove())
	}

	d.spilled = nil

	return Error.Wrap(group.Err())
}

func (d *Document) short(id string) (v int, ok bool) {
	s, ok := d.values[id].(int16)

	return int(s), ok
}

func (d *Document) bytes(id string) (b value.ByteArray, ok bool) {
	b, ok = d.values[id].(value.ByteArray)

	return b, ok
}

// Dimensions returns the width (x), height (y) and length (z).
func (d *Document) Dimensions() (w, h, l int) {
	w, _ = d.short(FieldXRange)
	h, _ = d.short(FieldYRange)
	l, _ = d.short(FieldZRange)

	return w, h, l
}

// Volume returns the number of blocks.
func (d *Document) Volume() int {
	w, h, l := d.Dimensions()

	return w * h * l
}

// Offset returns the WorldEdit offset. Absent components are zero.
func (d *Document) Offset() Pos {
	x, _ := d.short(FieldOffsetX)
	y, _ := d.short(FieldOffsetY)
	z, _ := d.short(FieldOffsetZ)

	return Pos{x, y, z}
}

// Origin returns the WorldEdit origin. ok is false unless all three
// components are present.
func (d *Document) Origin() (p Pos, ok bool) {
	x, okx := d.short(FieldOriginX)
	y, oky := d.short(FieldOriginY)
	z, okz := d.short(FieldOriginZ)

	return Pos{x, y, z}, okx && oky && okz
}

func (d *Document) Materials() string {
	s, _ := d.values[FieldMaterials].(string)

	return s
}

func (d *Document) Blocks() value.ByteArray {
	b, _ := d.bytes(FieldBlocks)

	return b
}

func (d *Document) Data() value.ByteArray {
	b, _ := d.bytes(FieldData)

	return b
}

func (d *Document) AddBlocks() value.ByteArray {
	b, _ := d.bytes(FieldAddBlocks)

	return b
}

// Opaque returns the presence bitmap, if any.
func (d *Document) Opaque() (b value.ByteArray, ok bool) {
	return d.bytes(FieldOpaque)
}

func (d *Document) Icon() *value.ItemStub {
	v, _ := d.values[FieldIcon].(*value.ItemStub)

	return v
}

func (d *Document) Mapping() *value.ItemMapping {
	v, _ := d.values[FieldSchematicaMapping].(*value.ItemMapping)

	return v
}

func (d *Document) Entities() value.List {
	v, _ := d.values[FieldEntities].(value.List)

	return v
}

func (d *Document) TileEntities() value.List {
	v, _ := d.values[FieldTiles].(value.List)

	return v
}

func (d *Document) Metadata() *value.Compound {
	v, _ := d.values[FieldMetadata].(*value.Compound)

	return v
}

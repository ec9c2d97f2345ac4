package value

import (
	"github.com/zeebo/errs"
)

// Error is the error class for this package.
var Error = errs.Class("value")

// ErrIncomplete is the error class for item records missing a required
// field.
var ErrIncomplete = errs.Class("incomplete record")

// ErrDiscriminator is the error class for compound bodies requested with a
// discriminator that has no decoding strategy.
var ErrDiscriminator = errs.Class("unknown discriminator")

// Value is a decoded tag payload. It holds one of int8, int16, int32, int64,
// float32, float64, string, []int32, []int64, List, *Compound, *ItemMapping,
// *ItemStub, or a ByteArray (Inline or Spilled).
type Value = interface{}

// List is a decoded list in stream order.
type List []Value

// Entry is a named value of a compound.
type Entry struct {
	Name  string
	Value Value
}

// Compound is a decoded compound preserving the order names were read in. A
// repeated name keeps its first position and its last value.
type Compound struct {
	entries []Entry
	index   map[string]int
}

// NewCompound returns an empty compound.
func NewCompound() *Compound {
	return &Compound{
		index: map[string]int{},
	}
}

// Set stores v under name.
func (c *Compound) Set(name string, v Value) {
	if i, ok := c.index[name]; ok {
		c.entries[i].Value = v

		return
	}

	c.index[name] = len(c.entries)
	c.entries = append(c.entries, Entry{
		Name:  name,
		Value: v,
	})
}

// Get returns the value stored under name.
func (c *Compound) Get(name string) (v Value, ok bool) {
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}

	return c.entries[i].Value, true
}

// Entries returns the entries in read order.
func (c *Compound) Entries() []Entry {
	return c.entries
}

// Len returns the number of distinct names.
func (c *Compound) Len() int {
	return len(c.entries)
}

// Mapping is a single item name to numeric id binding.
type Mapping struct {
	Name string
	ID   int16
}

// ItemMapping is the item name table of a schematic, in read order.
type ItemMapping struct {
	entries []Mapping
	index   map[string]int
}

// NewItemMapping returns an empty mapping.
func NewItemMapping() *ItemMapping {
	return &ItemMapping{
		index: map[string]int{},
	}
}

// Set binds name to id.
func (m *ItemMapping) Set(name string, id int16) {
	if i, ok := m.index[name]; ok {
		m.entries[i].ID = id

		return
	}

	m.index[name] = len(m.entries)
	m.entries = append(m.entries, Mapping{
		Name: name,
		ID:   id,
	})
}

// Lookup returns the id bound to name.
func (m *ItemMapping) Lookup(name string) (id int16, ok bool) {
	i, ok := m.index[name]
	if !ok {
		return 0, false
	}

	return m.entries[i].ID, true
}

// Entries returns the bindings in read order.
func (m *ItemMapping) Entries() []Mapping {
	return m.entries
}

// ItemStub is an item without an inventory slot.
type ItemStub struct {
	// Name is the item name as stored, ID the resolved numeric id.
	Name   string
	ID     int
	Damage int16
	Count  uint8

	// Tag is the optional item tag, decoded generically.
	Tag *Compound
}

// Package schema declares document field tables: which tag names a document
// accepts, their kinds, and how compound bodies are decoded.
package schema

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/zeebo/errs"
	"golang.org/x/exp/slices"

	"github.com/calebcase/schematic/nbt"
)

// Error is the error class for malformed field declarations.
var Error = errs.Class("schema")

// Discriminator selects the decoding strategy for a compound body.
type Discriminator int

// Compound Discriminators
const (
	None Discriminator = iota
	ItemMapping
	ItemStub
	Generic
	Entity
	Tile
)

var discriminators = [...]string{
	None:        "none",
	ItemMapping: "item-mapping",
	ItemStub:    "item-stub",
	Generic:     "generic",
	Entity:      "entity",
	Tile:        "tile",
}

func (d Discriminator) String() string {
	if d >= 0 && int(d) < len(discriminators) {
		return discriminators[d]
	}

	return fmt.Sprintf("Discriminator(%d)", int(d))
}

// Valid reports whether d is one of the enumerated strategies. None is not a
// strategy.
func (d Discriminator) Valid() bool {
	return d > None && int(d) < len(discriminators)
}

// FieldSpec describes a single document field.
type FieldSpec struct {
	// ID is the logical identifier the decoded value is stored under.
	ID string

	// Name is the primary tag name. Fallback is an optional alias, bound
	// only if no other field claims it.
	Name     string
	Fallback string

	Kind nbt.Kind

	// Discriminator is required for Compound fields. For List fields it
	// is propagated to compound elements.
	Discriminator Discriminator

	Optional bool
}

// Table maps tag names to field specs.
type Table struct {
	fields []FieldSpec
	byName map[string]int
}

// New builds a table from the given declarations. Primary names always win
// over fallback names; between fallbacks the first declared wins.
func New(decls ...FieldSpec) (_ *Table, err error) {
	t := &Table{
		fields: make([]FieldSpec, 0, len(decls)),
		byName: make(map[string]int, len(decls)*2),
	}

	ids := map[string]bool{}

	for _, f := range decls {
		switch {
		case f.ID == "":
			return nil, Error.New("field %q: empty id", f.Name)
		case f.Name == "":
			return nil, Error.New("field %q: empty name", f.ID)
		case ids[f.ID]:
			return nil, Error.New("field %q: duplicate id", f.ID)
		case f.Kind == nbt.End || !f.Kind.Valid():
			return nil, Error.New("field %q: invalid kind %s", f.ID, f.Kind)
		case f.Kind == nbt.Compound && f.Discriminator == None:
			return nil, Error.New("field %q: compound without discriminator", f.ID)
		case f.Discriminator != None && !f.Discriminator.Valid():
			return nil, Error.New("field %q: unknown discriminator %s", f.ID, f.Discriminator)
		}

		if _, ok := t.byName[f.Name]; ok {
			return nil, Error.New("field %q: duplicate name %q", f.ID, f.Name)
		}

		ids[f.ID] = true
		t.byName[f.Name] = len(t.fields)
		t.fields = append(t.fields, f)
	}

	for i, f := range t.fields {
		if f.Fallback == "" {
			continue
		}

		if _, ok := t.byName[f.Fallback]; ok {
			continue
		}

		t.byName[f.Fallback] = i
	}

	return t, nil
}

// Lookup returns the field bound to name.
func (t *Table) Lookup(name string) (f FieldSpec, ok bool) {
	i, ok := t.byName[name]
	if !ok {
		return f, false
	}

	return t.fields[i], true
}

// Fields returns the fields in declaration order.
func (t *Table) Fields() []FieldSpec {
	return slices.Clone(t.fields)
}

// Names returns every bound name, primary and fallback, sorted.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.byName))
	for name := range t.byName {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Lazy builds a table on first use and caches it. It must not be copied.
type Lazy struct {
	Declare func() []FieldSpec

	mu    sync.Mutex
	table atomic.Pointer[Table]
}

// Get returns the cached table, building it if needed.
func (l *Lazy) Get() (*Table, error) {
	if t := l.table.Load(); t != nil {
		return t, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if t := l.table.Load(); t != nil {
		return t, nil
	}

	return l.build()
}

// Rebuild builds the table again and replaces the cached one. A failed
// build leaves the cached table in place.
func (l *Lazy) Rebuild() (*Table, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.build()
}

func (l *Lazy) build() (*Table, error) {
	if l.Declare == nil {
		return nil, Error.New("no declarations")
	}

	t, err := New(l.Declare()...)
	if err != nil {
		return nil, err
	}

	l.table.Store(t)

	return t, nil
}

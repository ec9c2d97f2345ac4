package nbt

import (
	"fmt"

	"github.com/zeebo/errs"
)

// Error is the error class for this package.
var Error = errs.Class("nbt")

// Kind is the tag kind.
type Kind byte

// Tag Kinds
const (
	End       Kind = 0
	Byte      Kind = 1
	Short     Kind = 2
	Int       Kind = 3
	Long      Kind = 4
	Float     Kind = 5
	Double    Kind = 6
	ByteArray Kind = 7
	String    Kind = 8
	List      Kind = 9
	Compound  Kind = 10
	IntArray  Kind = 11
	LongArray Kind = 12
)

var names = [...]string{
	End:       "End",
	Byte:      "Byte",
	Short:     "Short",
	Int:       "Int",
	Long:      "Long",
	Float:     "Float",
	Double:    "Double",
	ByteArray: "ByteArray",
	String:    "String",
	List:      "List",
	Compound:  "Compound",
	IntArray:  "IntArray",
	LongArray: "LongArray",
}

// String returns the tag kind name.
func (k Kind) String() string {
	if int(k) < len(names) {
		return names[k]
	}

	return fmt.Sprintf("Kind(%d)", byte(k))
}

// Valid reports whether k is a known tag kind.
func (k Kind) Valid() bool {
	return int(k) < len(names)
}

// Scalar reports whether k is read in a single primitive call.
func (k Kind) Scalar() bool {
	switch k {
	case Byte, Short, Int, Long, Float, Double, String, IntArray, LongArray:
		return true
	}

	return false
}

// width returns the payload width of fixed size kinds and the element width
// of array kinds.
func (k Kind) width() int {
	switch k {
	case Byte, ByteArray:
		return 1
	case Short:
		return 2
	case Int, Float, IntArray:
		return 4
	case Long, Double, LongArray:
		return 8
	}

	return 0
}

// ParseKind returns the tag kind for the given id byte.
func ParseKind(b byte) (k Kind, err error) {
	k = Kind(b)
	if !k.Valid() {
		return End, Error.New("invalid tag kind: %#02x", b)
	}

	return k, nil
}

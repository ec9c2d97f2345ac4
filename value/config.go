package value

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultSpillThreshold is the largest byte array kept in memory.
const DefaultSpillThreshold = 10 << 20

// DefaultSpillPrefix prefixes spill file names.
const DefaultSpillPrefix = "psc"

// DefaultChunkSize is the chunk size for spill writes and reads.
const DefaultChunkSize = 2048

// Config holds the decode settings. The zero value is usable; zero fields
// take their defaults.
type Config struct {
	// TempDir is where spill files are created. Defaults to os.TempDir().
	TempDir string `json:"tempDirectory,omitempty"`

	// SpillThreshold is the largest byte array, in bytes, kept in memory.
	// Larger arrays are written to a spill file. Zero means
	// DefaultSpillThreshold; a negative value spills every array.
	SpillThreshold int64 `json:"spillThresholdBytes,omitempty"`

	SpillPrefix string `json:"spillPrefix,omitempty"`
	ChunkSize   int    `json:"chunkSize,omitempty"`

	// MapSpilled reads spill files through a memory map instead of chunked
	// file reads.
	MapSpilled bool `json:"mapSpilled,omitempty"`

	// Items resolves item names to numeric ids. Defaults to ItemNames(nil).
	Items ItemResolver `json:"-"`

	// Logf, if non-nil, receives diagnostic messages.
	Logf func(format string, args ...interface{}) `json:"-"`
}

// WithDefaults returns c with unset fields replaced by their defaults.
func (c Config) WithDefaults() Config {
	if c.TempDir == "" {
		c.TempDir = os.TempDir()
	}

	if c.SpillThreshold == 0 {
		c.SpillThreshold = DefaultSpillThreshold
	}

	if c.SpillPrefix == "" {
		c.SpillPrefix = DefaultSpillPrefix
	}

	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}

	if c.Items == nil {
		c.Items = ItemNames(nil)
	}

	return c
}

func (c Config) logf(format string, args ...interface{}) {
	// let `go vet` know this is printf-like
	if false {
		_ = fmt.Sprintf(format, args...)
	}

	if c.Logf != nil {
		c.Logf(format, args...)
	}
}

// ItemResolver maps an item name to its numeric id.
type ItemResolver interface {
	ItemID(name string) (int, error)
}

// ItemNames resolves item names through a table. Names are matched with and
// without the "minecraft:" namespace, case insensitively. Numeric names
// resolve to their value and unknown names resolve to zero.
type ItemNames map[string]int

const namespace = "minecraft:"

func (n ItemNames) ItemID(name string) (id int, err error) {
	key := strings.ToLower(strings.TrimSpace(name))

	if id, ok := n[key]; ok {
		return id, nil
	}

	bare := strings.TrimPrefix(key, namespace)
	if id, ok := n[bare]; ok {
		return id, nil
	}

	if id, ok := n[namespace+bare]; ok {
		return id, nil
	}

	if id, err := strconv.Atoi(bare); err == nil {
		return id, nil
	}

	return 0, nil
}

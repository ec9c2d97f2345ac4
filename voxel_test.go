package schematic_test

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/calebcase/oops"
	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"

	"github.com/calebcase/schematic"
	"github.com/calebcase/schematic/bitstream"
	"github.com/calebcase/schematic/nbt"
	"github.com/calebcase/schematic/value"
)

func collect(t *testing.T, doc *schematic.Document, anchor schematic.Pos) (voxels []schematic.Voxel, err error) {
	it, err := doc.Voxels(anchor)
	if err != nil {
		return nil, err
	}
	defer func() { require.NoError(t, it.Close()) }()

	voxels = []schematic.Voxel{}
	for it.Next() {
		voxels = append(voxels, it.Voxel())
	}

	return voxels, it.Err()
}

func TestLocate(t *testing.T) {
	dims := [][3]int{
		{1, 1, 1},
		{2, 3, 4},
		{5, 1, 3},
		{7, 2, 1},
		{16, 16, 16},
	}

	for _, d := range dims {
		w, h, l := d[0], d[1], d[2]
		seen := map[schematic.Pos]bool{}

		for i := 0; i < w*h*l; i++ {
			p := schematic.Locate(i, w, l)

			require.True(t, p.X >= 0 && p.X < w, "%v %d %v", d, i, p)
			require.True(t, p.Y >= 0 && p.Y < h, "%v %d %v", d, i, p)
			require.True(t, p.Z >= 0 && p.Z < l, "%v %d %v", d, i, p)
			require.False(t, seen[p], "%v %d %v", d, i, p)
			require.Equal(t, i, schematic.Index(p, w, l))

			seen[p] = true
		}

		require.Len(t, seen, w*h*l)
	}

	require.Equal(t, schematic.Pos{X: 1, Y: 0, Z: 0}, schematic.Locate(1, 2, 3))
	require.Equal(t, schematic.Pos{X: 0, Y: 0, Z: 1}, schematic.Locate(2, 2, 3))
	require.Equal(t, schematic.Pos{X: 0, Y: 1, Z: 0}, schematic.Locate(6, 2, 3))
}

func TestVoxels(t *testing.T) {
	type TC struct {
		Name    string
		Fixture fixture
		Anchor  schematic.Pos
		Want    []schematic.Voxel
		Mark    error
	}

	tcs := []TC{
		{
			Name: "single",
			Fixture: fixture{
				W: 1, H: 1, L: 1,
				Blocks: []byte{5},
				Data:   []byte{0},
				Add:    []byte{},
			},
			Anchor: schematic.Pos{X: 10, Y: 20, Z: 30},
			Want: []schematic.Voxel{
				{ID: 5, Data: 0, Pos: schematic.Pos{X: 10, Y: 20, Z: 30}, Index: 0},
			},
			Mark: oops.New("unexpected"),
		},
		{
			Name: "presence",
			Fixture: fixture{
				W: 4, H: 1, L: 1,
				Blocks: []byte{1, 2, 3, 4},
				Data:   []byte{9, 8, 7, 6},
				Add:    []byte{},
				Opaque: []byte{0xA0, 0x04},
			},
			Want: []schematic.Voxel{
				{ID: 1, Data: 9, Pos: schematic.Pos{X: 0}, Index: 0},
				{ID: 3, Data: 7, Pos: schematic.Pos{X: 2}, Index: 2},
			},
			Mark: oops.New("unexpected"),
		},
		{
			Name: "offset",
			Fixture: fixture{
				W: 2, H: 2, L: 1,
				Blocks: []byte{1, 2, 3, 4},
				Data:   []byte{0, 1, 2, 3},
				Add:    []byte{},
				Offset: &schematic.Pos{X: 1, Y: 2, Z: 3},
			},
			Anchor: schematic.Pos{X: 10, Y: 10, Z: 10},
			Want: []schematic.Voxel{
				{ID: 1, Data: 0, Pos: schematic.Pos{X: 9, Y: 8, Z: 7}, Index: 0},
				{ID: 2, Data: 1, Pos: schematic.Pos{X: 10, Y: 8, Z: 7}, Index: 1},
				{ID: 3, Data: 2, Pos: schematic.Pos{X: 9, Y: 9, Z: 7}, Index: 2},
				{ID: 4, Data: 3, Pos: schematic.Pos{X: 10, Y: 9, Z: 7}, Index: 3},
			},
			Mark: oops.New("unexpected"),
		},
		{
			Name: "nibble add",
			Fixture: fixture{
				W: 3, H: 1, L: 1,
				Blocks: []byte{1, 2, 3},
				Data:   []byte{0, 0, 0},
				Add:    []byte{0x12, 0x30},
			},
			Want: []schematic.Voxel{
				{ID: 1, Add: 1, Pos: schematic.Pos{X: 0}, Index: 0},
				{ID: 2, Add: 2, Pos: schematic.Pos{X: 1}, Index: 1},
				{ID: 3, Add: 3, Pos: schematic.Pos{X: 2}, Index: 2},
			},
			Mark: oops.New("unexpected"),
		},
		{
			Name: "byte add",
			Fixture: fixture{
				W: 1, H: 1, L: 2,
				Blocks:  []byte{1, 2},
				Data:    []byte{0, 0},
				Add:     []byte{0x0f, 0x10},
				AddName: "Add",
			},
			Want: []schematic.Voxel{
				{ID: 1, Add: 0x0f, Pos: schematic.Pos{}, Index: 0},
				{ID: 2, Add: 0x10, Pos: schematic.Pos{Z: 1}, Index: 1},
			},
			Mark: oops.New("unexpected"),
		},
		{
			Name: "single nibble add",
			Fixture: fixture{
				W: 1, H: 1, L: 1,
				Blocks: []byte{1},
				Data:   []byte{0},
				Add:    []byte{0x21},
			},
			Want: []schematic.Voxel{
				{ID: 1, Add: 2, Index: 0},
			},
			Mark: oops.New("unexpected"),
		},
		{
			Name: "single byte add",
			Fixture: fixture{
				W: 1, H: 1, L: 1,
				Blocks:  []byte{1},
				Data:    []byte{0},
				Add:     []byte{0x21},
				AddName: "Add",
			},
			Want: []schematic.Voxel{
				{ID: 1, Add: 0x21, Index: 0},
			},
			Mark: oops.New("unexpected"),
		},
		{
			Name: "single with add alias",
			Fixture: fixture{
				W: 1, H: 1, L: 1,
				Blocks:  []byte{5},
				Data:    []byte{0},
				Add:     []byte{1},
				AddName: "Add",
			},
			Want: []schematic.Voxel{
				{ID: 5, Add: 1, Data: 0, Index: 0},
			},
			Mark: oops.New("unexpected"),
		},
		{
			Name: "unrecognized add length",
			Fixture: fixture{
				W: 4, H: 1, L: 1,
				Blocks: []byte{1, 2, 3, 4},
				Data:   []byte{0, 0, 0, 0},
				Add:    []byte{1, 2, 3},
			},
			Want: []schematic.Voxel{
				{ID: 1, Pos: schematic.Pos{X: 0}, Index: 0},
				{ID: 2, Pos: schematic.Pos{X: 1}, Index: 1},
				{ID: 3, Pos: schematic.Pos{X: 2}, Index: 2},
				{ID: 4, Pos: schematic.Pos{X: 3}, Index: 3},
			},
			Mark: oops.New("unexpected"),
		},
		{
			Name: "empty",
			Fixture: fixture{
				W: 0, H: 5, L: 5,
				Blocks: []byte{},
				Data:   []byte{},
				Add:    []byte{},
			},
			Want: []schematic.Voxel{},
			Mark: oops.New("unexpected"),
		},
	}

	for _, tc := range tcs {
		t.Run(tc.Name, func(t *testing.T) {
			doc := tc.Fixture.decode(t, value.Config{})

			got, err := collect(t, doc, tc.Anchor)
			t.Logf("%s", spew.Sdump(got))
			require.NoError(t, err, tc.Mark)
			require.Equal(t, tc.Want, got, tc.Mark)
		})
	}
}

func TestVoxelsErrors(t *testing.T) {
	type TC struct {
		Name      string
		Fixture   fixture
		Underflow bool
		Mark      error
	}

	tcs := []TC{
		{
			Name: "short blocks",
			Fixture: fixture{
				W: 2, H: 1, L: 1,
				Blocks: []byte{1},
				Data:   []byte{0, 0},
				Add:    []byte{},
			},
			Underflow: true,
			Mark:      oops.New("unexpected"),
		},
		{
			Name: "short data",
			Fixture: fixture{
				W: 2, H: 1, L: 1,
				Blocks: []byte{1, 2},
				Data:   []byte{0},
				Add:    []byte{},
			},
			Underflow: true,
			Mark:      oops.New("unexpected"),
		},
		{
			Name: "short presence",
			Fixture: fixture{
				W: 4, H: 1, L: 1,
				Blocks: []byte{1, 2, 3, 4},
				Data:   []byte{0, 0, 0, 0},
				Add:    []byte{},
				Opaque: []byte{0xF0, 0x02},
			},
			Underflow: true,
			Mark:      oops.New("unexpected"),
		},
		{
			Name: "empty presence",
			Fixture: fixture{
				W: 1, H: 1, L: 1,
				Blocks: []byte{1},
				Data:   []byte{0},
				Add:    []byte{},
				Opaque: []byte{},
			},
			Underflow: true,
			Mark:      oops.New("unexpected"),
		},
	}

	for _, tc := range tcs {
		t.Run(tc.Name, func(t *testing.T) {
			doc := tc.Fixture.decode(t, value.Config{})

			voxels, err := collect(t, doc, schematic.Pos{})
			t.Logf("%s %+v", spew.Sdump(voxels), err)
			require.Error(t, err, tc.Mark)
			require.True(t, schematic.Error.Has(err), tc.Mark)
			require.Equal(t, tc.Underflow, errors.Is(err, bitstream.ErrUnderflow), tc.Mark)
		})
	}
}

func TestVoxelsSpilled(t *testing.T) {
	f := cube(3, 3, 3, 0)
	for i := range f.Blocks {
		f.Blocks[i] = byte(i)
		f.Data[i] = byte(i % 16)
	}
	f.Add = make([]byte, 14)
	f.Add[13] = 0x70

	bits := make([]int, 27)
	for i := range bits {
		bits[i] = i % 3
	}
	f.Opaque = presence(t, bits...)

	anchor := schematic.Pos{X: -5, Y: 60, Z: 5}

	want, err := collect(t, f.decode(t, value.Config{}), anchor)
	require.NoError(t, err)
	require.Len(t, want, 18)
	require.Equal(t, 0x1a, want[len(want)-1].ID)
	require.Equal(t, 7, want[len(want)-1].Add)
	require.Equal(t, 0x71a, want[len(want)-1].FullID())

	for _, mapped := range []bool{false, true} {
		dir := t.TempDir()

		doc := f.decode(t, value.Config{
			TempDir:        dir,
			SpillThreshold: 8,
			ChunkSize:      5,
			MapSpilled:     mapped,
		})
		require.Len(t, doc.Spilled(), 3, mapped)

		got, err := collect(t, doc, anchor)
		require.NoError(t, err, mapped)
		require.Equal(t, want, got, mapped)

		// Iteration never removes spill files.
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 3, mapped)
	}
}

func TestIteratorClose(t *testing.T) {
	f := cube(2, 2, 2, 1)
	f.Add = []byte{}

	doc := f.decode(t, value.Config{
		TempDir:        t.TempDir(),
		SpillThreshold: 4,
		MapSpilled:     true,
	})

	it, err := doc.Voxels(schematic.Pos{})
	require.NoError(t, err)

	require.True(t, it.Next())
	require.Equal(t, 1, it.Voxel().ID)

	require.NoError(t, it.Close())
	require.NoError(t, it.Close())
	require.False(t, it.Next())
	require.NoError(t, it.Err())

	// Exhaustion closes the readers; a later Close is a no-op.
	it, err = doc.Voxels(schematic.Pos{})
	require.NoError(t, err)

	n := 0
	for it.Next() {
		n++
	}
	require.Equal(t, 8, n)
	require.NoError(t, it.Err())
	require.NoError(t, it.Close())
}

func TestVoxelsOpenError(t *testing.T) {
	dir := t.TempDir()

	f := cube(2, 2, 2, 1)
	f.Add = []byte{}

	doc, err := schematic.Decode(nbt.NewReader(bytes.NewReader(f.bytes(t))), value.Config{
		TempDir:        dir,
		SpillThreshold: 4,
		MapSpilled:     true,
	})
	require.NoError(t, err)
	defer func() { require.NoError(t, doc.Close()) }()

	spilled := doc.Spilled()
	require.Len(t, spilled, 2)

	// Blocks opens, Data does not.
	data := spilled[1].Path
	moved := data + ".moved"
	require.NoError(t, os.Rename(data, moved))

	it, err := doc.Voxels(schematic.Pos{})
	t.Logf("%+v", err)
	require.Error(t, err)
	require.Nil(t, it)
	require.True(t, schematic.Error.Has(err))
	require.True(t, value.Error.Has(err))

	require.NoError(t, os.Rename(moved, data))

	voxels, err := collect(t, doc, schematic.Pos{})
	require.NoError(t, err)
	require.Len(t, voxels, 8)
}

package nbt_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/calebcase/oops"
	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"

	"github.com/calebcase/schematic/nbt"
)

func TestReader(t *testing.T) {
	t.Run("read", func(t *testing.T) {
		input := []byte{
			0x0a, 0x00, 0x01, 'r', // compound "r"
			0x02, 0x00, 0x01, 'w', 0x00, 0x05, // short "w" = 5
			0x07, 0x00, 0x01, 'b', 0x00, 0x00, 0x00, 0x02, 0x01, 0x02, // byte array "b"
			0x09, 0x00, 0x01, 'l', 0x08, 0x00, 0x00, 0x00, 0x01, // list "l" of 1 string
			0x00, 0x02, 'h', 'i',
			0x00, // end
		}

		r := nbt.NewReader(bytes.NewReader(input))

		name, kind, err := r.ReadName()
		require.NoError(t, err)
		require.Equal(t, "r", name)
		require.Equal(t, nbt.Compound, kind)

		require.NoError(t, r.StartCompound())
		require.Equal(t, 1, r.Depth())

		name, kind, err = r.ReadName()
		require.NoError(t, err)
		require.Equal(t, "w", name)
		require.Equal(t, nbt.Short, kind)

		w, err := r.ReadInt16()
		require.NoError(t, err)
		require.EqualValues(t, 5, w)

		name, kind, err = r.ReadName()
		require.NoError(t, err)
		require.Equal(t, "b", name)
		require.Equal(t, nbt.ByteArray, kind)

		size, err := r.PeekInt()
		require.NoError(t, err)
		require.EqualValues(t, 2, size)

		data, err := r.ReadByteArray()
		require.NoError(t, err)
		require.Equal(t, []byte{1, 2}, data)

		name, kind, err = r.ReadName()
		require.NoError(t, err)
		require.Equal(t, "l", name)
		require.Equal(t, nbt.List, kind)

		elem, n, err := r.StartList()
		require.NoError(t, err)
		require.Equal(t, nbt.String, elem)
		require.Equal(t, 1, n)

		s, err := r.ReadString()
		require.NoError(t, err)
		require.Equal(t, "hi", s)

		t.Logf("Stack: %s\n", spew.Sdump(r.Stack()))
		require.NoError(t, r.EndList())

		_, kind, err = r.ReadName()
		require.NoError(t, err)
		require.Equal(t, nbt.End, kind)

		require.NoError(t, r.EndCompound())
		require.Equal(t, 0, r.Depth())
		require.EqualValues(t, len(input), r.Consumed())

		_, _, err = r.ReadName()
		require.True(t, errors.Is(err, io.EOF))
		require.NoError(t, r.Err())
	})

	t.Run("errors", func(t *testing.T) {
		type TC struct {
			Name  string
			Input []byte
			Do    func(r nbt.Reader) error
			Mark  error
		}

		tcs := []TC{
			{
				Name:  "invalid kind",
				Input: []byte{0x42},
				Do: func(r nbt.Reader) error {
					_, _, err := r.ReadName()
					return err
				},
				Mark: oops.New("unexpected"),
			},
			{
				Name:  "terminator at top level",
				Input: []byte{0x00},
				Do: func(r nbt.Reader) error {
					_, _, err := r.ReadName()
					return err
				},
				Mark: oops.New("unexpected"),
			},
			{
				Name:  "truncated name",
				Input: []byte{0x02, 0x00, 0x05, 'a'},
				Do: func(r nbt.Reader) error {
					_, _, err := r.ReadName()
					return err
				},
				Mark: oops.New("unexpected"),
			},
			{
				Name:  "kind mismatch",
				Input: []byte{0x02, 0x00, 0x01, 'a', 0x00, 0x01},
				Do: func(r nbt.Reader) error {
					_, _, err := r.ReadName()
					if err != nil {
						return err
					}
					_, err = r.ReadInt32()
					return err
				},
				Mark: oops.New("unexpected"),
			},
			{
				Name:  "value not consumed",
				Input: []byte{0x02, 0x00, 0x01, 'a', 0x00, 0x01, 0x02, 0x00, 0x01, 'b', 0x00, 0x01},
				Do: func(r nbt.Reader) error {
					_, _, err := r.ReadName()
					if err != nil {
						return err
					}
					_, _, err = r.ReadName()
					return err
				},
				Mark: oops.New("unexpected"),
			},
			{
				Name:  "list ended early",
				Input: []byte{0x09, 0x00, 0x01, 'l', 0x01, 0x00, 0x00, 0x00, 0x02, 0x07, 0x08},
				Do: func(r nbt.Reader) error {
					_, _, err := r.ReadName()
					if err != nil {
						return err
					}
					_, _, err = r.StartList()
					if err != nil {
						return err
					}
					_, err = r.ReadInt8()
					if err != nil {
						return err
					}
					return r.EndList()
				},
				Mark: oops.New("unexpected"),
			},
			{
				Name:  "list overrun",
				Input: []byte{0x09, 0x00, 0x01, 'l', 0x01, 0x00, 0x00, 0x00, 0x01, 0x07, 0x08},
				Do: func(r nbt.Reader) error {
					_, _, err := r.ReadName()
					if err != nil {
						return err
					}
					_, _, err = r.StartList()
					if err != nil {
						return err
					}
					for i := 0; i < 2; i++ {
						_, err = r.ReadInt8()
						if err != nil {
							return err
						}
					}
					return nil
				},
				Mark: oops.New("unexpected"),
			},
			{
				Name:  "negative length",
				Input: []byte{0x07, 0x00, 0x01, 'b', 0xff, 0xff, 0xff, 0xff},
				Do: func(r nbt.Reader) error {
					_, _, err := r.ReadName()
					if err != nil {
						return err
					}
					_, err = r.ReadByteArray()
					return err
				},
				Mark: oops.New("unexpected"),
			},
			{
				Name:  "oversized byte array",
				Input: []byte{0x07, 0x00, 0x01, 'b', 0x7f, 0xff, 0xff, 0xff, 0x01, 0x02},
				Do: func(r nbt.Reader) error {
					_, _, err := r.ReadName()
					if err != nil {
						return err
					}
					_, err = r.ReadByteArray()
					return err
				},
				Mark: oops.New("unexpected"),
			},
			{
				Name:  "oversized int array",
				Input: []byte{0x0b, 0x00, 0x01, 'i', 0x7f, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x01},
				Do: func(r nbt.Reader) error {
					_, _, err := r.ReadName()
					if err != nil {
						return err
					}
					_, err = r.ReadInt32Array()
					return err
				},
				Mark: oops.New("unexpected"),
			},
			{
				Name:  "oversized long array",
				Input: []byte{0x0c, 0x00, 0x01, 'l', 0x7f, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x01},
				Do: func(r nbt.Reader) error {
					_, _, err := r.ReadName()
					if err != nil {
						return err
					}
					_, err = r.ReadInt64Array()
					return err
				},
				Mark: oops.New("unexpected"),
			},
			{
				Name:  "truncated array",
				Input: []byte{0x07, 0x00, 0x01, 'b', 0x00, 0x00, 0x00, 0x04, 0x01},
				Do: func(r nbt.Reader) error {
					_, _, err := r.ReadName()
					if err != nil {
						return err
					}
					_, err = r.ReadByteArray()
					return err
				},
				Mark: oops.New("unexpected"),
			},
			{
				Name:  "compound not terminated",
				Input: []byte{0x0a, 0x00, 0x00},
				Do: func(r nbt.Reader) error {
					_, _, err := r.ReadName()
					if err != nil {
						return err
					}
					err = r.StartCompound()
					if err != nil {
						return err
					}
					return r.EndCompound()
				},
				Mark: oops.New("unexpected"),
			},
		}

		for _, tc := range tcs {
			t.Run(tc.Name, func(t *testing.T) {
				r := nbt.NewReader(bytes.NewReader(tc.Input))

				err := tc.Do(r)
				require.Error(t, err, tc.Mark)
				require.True(t, nbt.Error.Has(err), tc.Mark)
				require.Error(t, r.Err(), tc.Mark)

				// Errors are latched.
				_, _, again := r.ReadName()
				require.Error(t, again, tc.Mark)

				t.Logf("Error: %v\n", err)
			})
		}
	})

	t.Run("chunks", func(t *testing.T) {
		body := []byte(strings.Repeat("abcdefg", 10))

		for _, size := range []int{0, 1, 3, 7, 69, 70, 71, 1000} {
			buf := &bytes.Buffer{}
			w := nbt.NewWriter(buf)
			require.NoError(t, w.WriteName(nbt.ByteArray, "b"))
			require.NoError(t, w.WriteByteArray(body))

			r := nbt.NewReader(buf)
			_, _, err := r.ReadName()
			require.NoError(t, err)

			got := []byte{}
			n, err := r.ReadByteArrayChunks(size, func(chunk []byte) error {
				if size > 0 {
					require.LessOrEqual(t, len(chunk), size)
				}
				got = append(got, chunk...)
				return nil
			})
			require.NoError(t, err, "size=%d", size)
			require.EqualValues(t, len(body), n)
			require.Equal(t, body, got)
		}
	})

	t.Run("chunk callback error", func(t *testing.T) {
		buf := &bytes.Buffer{}
		w := nbt.NewWriter(buf)
		require.NoError(t, w.WriteName(nbt.ByteArray, "b"))
		require.NoError(t, w.WriteByteArray([]byte{1, 2, 3}))

		r := nbt.NewReader(buf)
		_, _, err := r.ReadName()
		require.NoError(t, err)

		mark := errors.New("stop")
		_, err = r.ReadByteArrayChunks(1, func(chunk []byte) error {
			return mark
		})
		require.ErrorIs(t, err, mark)
	})
}

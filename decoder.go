package schematic

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/calebcase/oops"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/errs"

	"github.com/calebcase/schematic/nbt"
	"github.com/calebcase/schematic/value"
)

// Error is the error class for this package.
var Error = errs.Class("schematic")

// ErrMissingField is the error class for documents lacking a required field.
var ErrMissingField = errs.Class("missing field")

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

func logf(cfg value.Config, format string, args ...interface{}) {
	// let `go vet` know this is printf-like
	if false {
		_ = fmt.Sprintf(format, args...)
	}

	if cfg.Logf != nil {
		cfg.Logf(format, args...)
	}
}

// Decode reads a schematic from r, which must be positioned before the root
// compound tag. Tags the format does not declare are skipped. On failure any
// spill files created during the decode are removed.
func Decode(r nbt.Reader, cfg value.Config) (doc *Document, err error) {
	defer Error.WrapP(&err)

	table, err := Format.Get()
	if err != nil {
		return nil, err
	}

	root, kind, err := r.ReadName()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, Error.New("empty stream")
		}

		return nil, err
	}

	if kind != nbt.Compound {
		return nil, Error.New("root tag %q is %s, not Compound", root, kind)
	}

	dec := value.NewDecoder(cfg)
	cfg = dec.Config()

	defer func() {
		if err != nil {
			cerr := dec.Cleanup()
			if cerr != nil {
				logf(cfg, "spill cleanup failed: %v", cerr)
			}
		}
	}()

	err = r.StartCompound()
	if err != nil {
		return nil, err
	}

	doc = &Document{
		cfg:    cfg,
		values: map[string]value.Value{},
		tags:   map[string]string{},
	}

	for {
		name, kind, err := r.ReadName()
		if err != nil {
			return nil, err
		}

		if kind == nbt.End {
			break
		}

		field, ok := table.Lookup(name)
		if !ok {
			logf(cfg, "skipping unknown tag: name=%q kind=%s", name, kind)

			err = r.Skip(kind)
			if err != nil {
				return nil, err
			}

			continue
		}

		if kind != field.Kind {
			return nil, Error.New("tag %q is %s, want %s", name, kind, field.Kind)
		}

		v, err := dec.Decode(r, kind, field.Discriminator)
		if err != nil {
			return nil, err
		}

		doc.values[field.ID] = v
		doc.tags[field.ID] = name
	}

	err = r.EndCompound()
	if err != nil {
		return nil, err
	}

	for _, field := range table.Fields() {
		if _, ok := doc.values[field.ID]; !ok && !field.Optional {
			return nil, ErrMissingField.New("%s", field.Name)
		}
	}

	w, h, l := doc.Dimensions()
	if w < 0 || h < 0 || l < 0 {
		return nil, Error.New("negative dimensions: %dx%dx%d", w, h, l)
	}

	doc.spilled = dec.Spilled()

	return doc, nil
}

// Open returns a tag stream reader over r, transparently decompressing gzip
// and zstd input. The closer releases the decompressor; it does not close r.
func Open(r io.Reader) (nr nbt.Reader, closer io.Closer, err error) {
	br := bufio.NewReader(r)

	magic, err := br.Peek(len(zstdMagic))
	if err != nil && len(magic) == 0 {
		if errors.Is(err, io.EOF) {
			return nil, nil, Error.New("empty stream")
		}

		return nil, nil, Error.Wrap(oops.Trace(err))
	}

	switch {
	case bytes.HasPrefix(magic, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, nil, Error.Wrap(oops.Trace(err))
		}

		return nbt.NewReader(zr), zr, nil
	case bytes.HasPrefix(magic, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, nil, Error.Wrap(oops.Trace(err))
		}

		return nbt.NewReader(zr), closerFunc(func() error {
			zr.Close()
			return nil
		}), nil
	}

	return nbt.NewReader(br), closerFunc(func() error { return nil }), nil
}

// DecodeFile opens, decompresses if needed, and decodes the schematic at
// path.
func DecodeFile(path string, cfg value.Config) (doc *Document, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Error.Wrap(oops.Trace(err))
	}
	defer func() { err = errs.Combine(err, Error.Wrap(f.Close())) }()

	r, closer, err := Open(f)
	if err != nil {
		return nil, err
	}
	defer func() { err = errs.Combine(err, Error.Wrap(closer.Close())) }()

	doc, err = Decode(r, cfg)
	if err != nil {
		return nil, err
	}

	return doc, nil
}

type closerFunc func() error

func (fn closerFunc) Close() error {
	return fn()
}

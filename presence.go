package schematic

import (
	"io"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/dchest/siphash"
	"github.com/zeebo/errs"

	"github.com/calebcase/schematic/bitstream"
	"github.com/calebcase/schematic/value"
)

// MaxPresenceVolume is the largest volume Presence can index.
const MaxPresenceVolume = 1 << 32

// Presence returns the storage indices whose presence bit is set. Without a
// presence bitmap every index is present.
func (d *Document) Presence() (bm *roaring.Bitmap, err error) {
	defer Error.WrapP(&err)

	volume := d.Volume()
	if uint64(volume) > MaxPresenceVolume {
		return nil, Error.New("volume %d exceeds presence index limit %d", volume, uint64(MaxPresenceVolume))
	}

	bm = roaring.New()

	opaque, ok := d.Opaque()
	if !ok {
		bm.AddRange(0, uint64(volume))

		return bm, nil
	}

	var h handles
	defer func() { err = errs.Combine(err, h.close()) }()

	src, err := h.open(opaque, d.cfg)
	if err != nil {
		return nil, err
	}

	br := bitstream.NewBitReader(src)
	for i := 0; i < volume; i++ {
		set, err := br.Read()
		if err != nil {
			return nil, err
		}

		if set {
			bm.Add(uint32(i))
		}
	}

	return bm, nil
}

// EncodePresence writes a presence bitmap to w marking every block whose id,
// or AddBlocks high bits, are not zero.
func (d *Document) EncodePresence(w io.Writer) (err error) {
	defer Error.WrapP(&err)

	var h handles
	defer func() { err = errs.Combine(err, h.close()) }()

	volume := d.Volume()

	s, err := d.openIDs(&h, volume)
	if err != nil {
		return err
	}

	bw := bitstream.NewBitWriter(w)
	for i := 0; i < volume; i++ {
		id, add, err := s.next(i)
		if err != nil {
			return err
		}

		err = bw.Write(id != 0 || add != 0)
		if err != nil {
			return err
		}
	}

	return bw.Close()
}

// FingerprintKey is the siphash key used by Fingerprint.
var FingerprintKey = [16]byte{'s', 'c', 'h', 'e', 'm', 'a', 't', 'i', 'c'}

// Fingerprint hashes the Blocks then Data arrays. Documents with equal block
// content have equal fingerprints regardless of how the arrays are held.
func (d *Document) Fingerprint() (sum uint64, err error) {
	defer Error.WrapP(&err)

	hash := siphash.New(FingerprintKey[:])

	for _, b := range []value.ByteArray{d.Blocks(), d.Data()} {
		if b == nil {
			continue
		}

		err = feed(hash, b, d.cfg)
		if err != nil {
			return 0, err
		}
	}

	return hash.Sum64(), nil
}

func feed(w io.Writer, b value.ByteArray, cfg value.Config) (err error) {
	src, closer, err := b.Open(cfg)
	if err != nil {
		return err
	}
	defer func() { err = errs.Combine(err, closer.Close()) }()

	for {
		chunk, more, err := src.Chunk()
		if err != nil {
			return err
		}

		_, err = w.Write(chunk)
		if err != nil {
			return err
		}

		if !more {
			return nil
		}
	}
}

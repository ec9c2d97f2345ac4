// Package bitstream provides pull based byte and bit readers over chunked
// input, and the matching bit writer.
//
// Sources
//
// A Source hands out successive chunks of a stream. Each call reports whether
// more data may follow. Readers pull a new chunk only when the bytes they hold
// are not enough to answer the next read, so a Source backed by a file performs
// at most one read per chunk.
//
// Bit Streams
//
// Bits are packed most significant bit first. The final byte of the stream is
// a trailer whose low three bits give the number of valid bits in the last
// data byte. A trailer of zero means the last data byte is full:
//
//  bits:   1 0 1 1 0 0 1 0 | 1 1 1
//  bytes:  1011_0010  1110_0000  0000_0011
//          data       data       trailer (3 valid bits)
//
// A stream holding no bits is a lone zero trailer. Because the trailer is only
// recognizable once the source is exhausted, the BitReader keeps one byte of
// look ahead while more chunks are available.
package bitstream

// Package nbt reads and writes named binary tag streams.
//
// A tag stream is a tree of typed values. Values inside a compound are named,
// values inside a list are not. All integers are big-endian.
//
// Tag Kinds
//
//  | Id | Kind      | Payload                                             |
//  |----|-----------|-----------------------------------------------------|
//  |  0 | End       | none; terminates a compound                         |
//  |  1 | Byte      | 1 byte                                              |
//  |  2 | Short     | 2 bytes                                             |
//  |  3 | Int       | 4 bytes                                             |
//  |  4 | Long      | 8 bytes                                             |
//  |  5 | Float     | 4 bytes IEEE 754                                    |
//  |  6 | Double    | 8 bytes IEEE 754                                    |
//  |  7 | ByteArray | int32 size, size bytes                              |
//  |  8 | String    | uint16 size, size bytes                             |
//  |  9 | List      | element kind byte, int32 size, size payloads        |
//  | 10 | Compound  | named tags, then End                                |
//  | 11 | IntArray  | int32 size, size ints                               |
//  | 12 | LongArray | int32 size, size longs                              |
//  |----|-----------|-----------------------------------------------------|
//
// A named tag is the kind byte, a String payload holding the name, and then
// the payload. A stream is a sequence of named tags on the top level,
// normally a single Compound.
//
// Structure
//
// Reader and Writer both keep a Stack of open containers. Each frame
// remembers what may legally come next: a list knows its element kind and
// how many elements remain, a compound knows which kind its last name
// announced. Reading a value of the wrong kind, reading more list elements
// than declared, closing a list early, or reading a name before the previous
// value was consumed are all reported as errors instead of silently
// desynchronizing the stream.
//
// Byte Arrays
//
// Large byte arrays do not have to be held in memory. PeekInt exposes the
// size header without consuming it, and ReadByteArrayChunks hands the body
// out in bounded chunks.
package nbt

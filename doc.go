/*
Package schematic decodes schematic files: rectangular block volumes stored
as a single named compound tag.

# Fields

	| Tag               | Kind      | Required | Notes                          |
	|-------------------|-----------|----------|--------------------------------|
	| Width             | Short     | yes      | x extent                       |
	| Height            | Short     | yes      | y extent                       |
	| Length            | Short     | yes      | z extent                       |
	| Materials         | String    | yes      |                                |
	| Blocks            | ByteArray | yes      | low 8 bits of each block id    |
	| AddBlocks (Add)   | ByteArray | yes      | high bits, nibble or byte each |
	| Data              | ByteArray | yes      | auxiliary value per block      |
	| Entities          | List      | yes      | compounds                      |
	| TileEntities      | List      | yes      | compounds                      |
	| Icon              | Compound  | yes      | item stub                      |
	| SchematicaMapping | Compound  | yes      | item name to id                |
	| ExtendedMetadata  | Compound  | yes      |                                |
	| WEOriginX/Y/Z     | Short     | no       |                                |
	| WEOffsetX/Y/Z     | Short     | no       |                                |
	| POpaque           | ByteArray | no       | presence bit stream            |

Other tags are skipped.

# Layout

Block arrays are indexed x fastest, then z, then y:

	i = (y*Length + z)*Width + x

A voxel's world position is anchor - WEOffset + (x, y, z).

# Presence

POpaque is a bit stream (see package bitstream) with one bit per block.
Blocks whose bit is clear are not yielded by Voxels.

# Spilling

Byte arrays larger than Config.SpillThreshold are written to files in
Config.TempDir as they are read. The Document owns these files and removes
them on Close.
*/
package schematic

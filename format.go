package schematic

import (
	"github.com/calebcase/schematic/nbt"
	"github.com/calebcase/schematic/schema"
)

// Field identifiers. Decoded values are stored under these.
const (
	FieldXRange            = "xRange"
	FieldYRange            = "yRange"
	FieldZRange            = "zRange"
	FieldMaterials         = "materials"
	FieldBlocks            = "blocks"
	FieldAddBlocks         = "addBlocks"
	FieldData              = "data"
	FieldEntities          = "entities"
	FieldTiles             = "tiles"
	FieldIcon              = "icon"
	FieldSchematicaMapping = "schematicaMapping"
	FieldMetadata          = "metadata"
	FieldOriginX           = "originX"
	FieldOriginY           = "originY"
	FieldOriginZ           = "originZ"
	FieldOffsetX           = "offsetX"
	FieldOffsetY           = "offsetY"
	FieldOffsetZ           = "offsetZ"
	FieldOpaque            = "opaque"
)

// Format is the schematic field table.
var Format = &schema.Lazy{
	Declare: declare,
}

func declare() []schema.FieldSpec {
	return []schema.FieldSpec{
		// Maximum separation on each axis.
		{ID: FieldXRange, Name: "Width", Kind: nbt.Short},
		{ID: FieldYRange, Name: "Height", Kind: nbt.Short},
		{ID: FieldZRange, Name: "Length", Kind: nbt.Short},

		// Block id set: "Classic", "Pocket" or "Alpha".
		{ID: FieldMaterials, Name: "Materials", Kind: nbt.String},

		// Blocks[y*Length*Width + z*Width + x]
		{ID: FieldBlocks, Name: "Blocks", Kind: nbt.ByteArray},
		{ID: FieldAddBlocks, Name: "AddBlocks", Fallback: "Add", Kind: nbt.ByteArray},
		{ID: FieldData, Name: "Data", Kind: nbt.ByteArray},

		{ID: FieldEntities, Name: "Entities", Kind: nbt.List, Discriminator: schema.Entity},
		{ID: FieldTiles, Name: "TileEntities", Kind: nbt.List, Discriminator: schema.Tile},
		{ID: FieldIcon, Name: "Icon", Kind: nbt.Compound, Discriminator: schema.ItemStub},
		{ID: FieldSchematicaMapping, Name: "SchematicaMapping", Kind: nbt.Compound, Discriminator: schema.ItemMapping},
		{ID: FieldMetadata, Name: "ExtendedMetadata", Kind: nbt.Compound, Discriminator: schema.Generic},

		// WorldEdit copy origin, and the anchor minus the origin.
		{ID: FieldOriginX, Name: "WEOriginX", Kind: nbt.Short, Optional: true},
		{ID: FieldOriginY, Name: "WEOriginY", Kind: nbt.Short, Optional: true},
		{ID: FieldOriginZ, Name: "WEOriginZ", Kind: nbt.Short, Optional: true},
		{ID: FieldOffsetX, Name: "WEOffsetX", Kind: nbt.Short, Optional: true},
		{ID: FieldOffsetY, Name: "WEOffsetY", Kind: nbt.Short, Optional: true},
		{ID: FieldOffsetZ, Name: "WEOffsetZ", Kind: nbt.Short, Optional: true},

		// Presence bitmap, one bit per block.
		{ID: FieldOpaque, Name: "POpaque", Kind: nbt.ByteArray, Optional: true},
	}
}

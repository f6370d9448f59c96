package world

import "fmt"

// TerrainType enumerates the ground cover a single tile can carry.
type TerrainType string

const (
	TerrainGrass TerrainType = "grass"
	TerrainDirt  TerrainType = "dirt"
	TerrainSand  TerrainType = "sand"
	TerrainStone TerrainType = "stone"
	TerrainSnow  TerrainType = "snow"
	TerrainLava  TerrainType = "lava"
	TerrainWater TerrainType = "water"
)

// BiomeType enumerates the per-chunk climate classification.
type BiomeType string

const (
	BiomePlains    BiomeType = "plains"
	BiomeForest    BiomeType = "forest"
	BiomeDesert    BiomeType = "desert"
	BiomeMountains BiomeType = "mountains"
	BiomeTundra    BiomeType = "tundra"
	BiomeVolcanic  BiomeType = "volcanic"
	BiomeSwamp     BiomeType = "swamp"
)

var knownTerrains = map[TerrainType]struct{}{
	TerrainGrass: {}, TerrainDirt: {}, TerrainSand: {}, TerrainStone: {},
	TerrainSnow: {}, TerrainLava: {}, TerrainWater: {},
}

var knownBiomes = map[BiomeType]struct{}{
	BiomePlains: {}, BiomeForest: {}, BiomeDesert: {}, BiomeMountains: {},
	BiomeTundra: {}, BiomeVolcanic: {}, BiomeSwamp: {},
}

// TreeType selects the trunk/foliage silhouette. The numeric values are part
// of the serialized chunk format and must stay stable.
type TreeType int

const (
	TreeOak   TreeType = 0
	TreePine  TreeType = 1
	TreeMaple TreeType = 2
)

func (t TreeType) Valid() bool {
	return t >= TreeOak && t <= TreeMaple
}

// FeatureKind distinguishes the placed object categories within a chunk.
type FeatureKind string

const (
	FeatureTree     FeatureKind = "tree"
	FeatureRock     FeatureKind = "rock"
	FeatureResource FeatureKind = "resource"
)

// Color is an opaque RGB triple. Feature colors are chosen once at generation
// time and stored, so repeated rendering of the same feature never shifts hue.
type Color struct {
	R uint8
	G uint8
	B uint8
}

func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// triple returns the JSON-friendly [r,g,b] representation.
func (c Color) triple() []any {
	return []any{int(c.R), int(c.G), int(c.B)}
}

// Tile is one cell of the world grid.
type Tile struct {
	X         int
	Y         int
	Terrain   TerrainType
	Elevation float64
	Border    bool
}

// Feature is a placed object: a tree, a rock or a collectible resource. All
// visual attributes are fixed at creation; rendering reads them verbatim.
type Feature struct {
	Kind FeatureKind
	X    int
	Y    int

	// Tree attributes.
	Tree           TreeType
	Variant        int
	SizeModifier   float64
	DepthLayer     int
	Border         bool
	Extended       bool
	LeafColor      Color
	TrunkBase      Color
	TrunkShadow    Color
	TrunkHighlight Color

	// Resource attributes.
	Resource string
	Quantity int
}

package world

import (
	"fmt"
	"math"
)

// ChunkCoord addresses a chunk in the infinite chunk grid.
type ChunkCoord struct {
	X int
	Y int
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Chunk is one generated square of the world: its tiles, placed features and
// the biome classification the features were derived from. A chunk is
// immutable after generation.
type Chunk struct {
	Coord    ChunkCoord
	Size     int
	Biome    BiomeType
	Tiles    []Tile
	Features []Feature
}

// TileAt returns the tile at chunk-local coordinates.
func (c *Chunk) TileAt(localX, localY int) (Tile, bool) {
	if localX < 0 || localY < 0 || localX >= c.Size || localY >= c.Size {
		return Tile{}, false
	}
	idx := localY*c.Size + localX
	if idx >= len(c.Tiles) {
		return Tile{}, false
	}
	return c.Tiles[idx], true
}

// Trees returns the subset of features that are trees.
func (c *Chunk) Trees() []Feature {
	var out []Feature
	for _, f := range c.Features {
		if f.Kind == FeatureTree {
			out = append(out, f)
		}
	}
	return out
}

// ToDict converts the chunk to a plain map suitable for JSON encoding. The
// layout round-trips through ChunkFromDict without loss: every tile, every
// feature attribute including colors, and the biome tag.
func (c *Chunk) ToDict() map[string]any {
	tiles := make([]any, 0, len(c.Tiles))
	for _, t := range c.Tiles {
		tiles = append(tiles, map[string]any{
			"x":            t.X,
			"y":            t.Y,
			"terrain_type": string(t.Terrain),
			"elevation":    t.Elevation,
			"is_border":    t.Border,
		})
	}

	trees := make([]any, 0)
	structures := make([]any, 0)
	resources := make([]any, 0)
	for _, f := range c.Features {
		switch f.Kind {
		case FeatureTree:
			trees = append(trees, map[string]any{
				"x":                     f.X,
				"y":                     f.Y,
				"tree_type":             int(f.Tree),
				"variant":               f.Variant,
				"size_modifier":         f.SizeModifier,
				"depth_layer":           f.DepthLayer,
				"is_border":             f.Border,
				"is_extended":           f.Extended,
				"leaf_color":            f.LeafColor.triple(),
				"trunk_base_color":      f.TrunkBase.triple(),
				"trunk_shadow_color":    f.TrunkShadow.triple(),
				"trunk_highlight_color": f.TrunkHighlight.triple(),
			})
		case FeatureRock:
			structures = append(structures, map[string]any{
				"type":    "rock",
				"x":       f.X,
				"y":       f.Y,
				"variant": f.Variant,
			})
		case FeatureResource:
			resources = append(resources, map[string]any{
				"type":     f.Resource,
				"x":        f.X,
				"y":        f.Y,
				"quantity": f.Quantity,
			})
		}
	}

	return map[string]any{
		"x":          c.Coord.X,
		"y":          c.Coord.Y,
		"size":       c.Size,
		"biome":      string(c.Biome),
		"tiles":      tiles,
		"trees":      trees,
		"structures": structures,
		"resources":  resources,
	}
}

// ChunkFromDict rebuilds a chunk from its dictionary form. It tolerates the
// value shapes produced by a JSON decode (float64 numbers, []any lists) and
// fails with a DeserializationError on missing fields or unknown tags.
func ChunkFromDict(data map[string]any) (*Chunk, error) {
	cx, err := intField(data, "x")
	if err != nil {
		return nil, err
	}
	cy, err := intField(data, "y")
	if err != nil {
		return nil, err
	}
	size, err := intField(data, "size")
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, decodeErr("size", "non-positive chunk size %d", size)
	}

	biomeRaw, err := stringField(data, "biome")
	if err != nil {
		return nil, err
	}
	biome := BiomeType(biomeRaw)
	if _, ok := knownBiomes[biome]; !ok {
		return nil, decodeErr("biome", "unknown biome %q", biomeRaw)
	}

	ch := &Chunk{
		Coord: ChunkCoord{X: cx, Y: cy},
		Size:  size,
		Biome: biome,
	}

	tilesRaw, ok := data["tiles"]
	if !ok {
		return nil, decodeErr("tiles", "missing")
	}
	tileList, ok := asList(tilesRaw)
	if !ok {
		return nil, decodeErr("tiles", "not a list")
	}
	ch.Tiles = make([]Tile, 0, len(tileList))
	for i, raw := range tileList {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, decodeErr("tiles", "entry %d is not a map", i)
		}
		tile, err := tileFromDict(m)
		if err != nil {
			return nil, err
		}
		ch.Tiles = append(ch.Tiles, tile)
	}

	for i, raw := range optionalList(data, "trees") {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, decodeErr("trees", "entry %d is not a map", i)
		}
		tree, err := treeFromDict(m)
		if err != nil {
			return nil, err
		}
		ch.Features = append(ch.Features, tree)
	}

	for i, raw := range optionalList(data, "structures") {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, decodeErr("structures", "entry %d is not a map", i)
		}
		x, err := intField(m, "x")
		if err != nil {
			return nil, err
		}
		y, err := intField(m, "y")
		if err != nil {
			return nil, err
		}
		variant, err := intField(m, "variant")
		if err != nil {
			return nil, err
		}
		ch.Features = append(ch.Features, Feature{
			Kind:    FeatureRock,
			X:       x,
			Y:       y,
			Variant: variant,
		})
	}

	for i, raw := range optionalList(data, "resources") {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, decodeErr("resources", "entry %d is not a map", i)
		}
		kind, err := stringField(m, "type")
		if err != nil {
			return nil, err
		}
		x, err := intField(m, "x")
		if err != nil {
			return nil, err
		}
		y, err := intField(m, "y")
		if err != nil {
			return nil, err
		}
		quantity, err := intField(m, "quantity")
		if err != nil {
			return nil, err
		}
		ch.Features = append(ch.Features, Feature{
			Kind:     FeatureResource,
			X:        x,
			Y:        y,
			Resource: kind,
			Quantity: quantity,
		})
	}

	return ch, nil
}

func tileFromDict(m map[string]any) (Tile, error) {
	x, err := intField(m, "x")
	if err != nil {
		return Tile{}, err
	}
	y, err := intField(m, "y")
	if err != nil {
		return Tile{}, err
	}
	terrainRaw, err := stringField(m, "terrain_type")
	if err != nil {
		return Tile{}, err
	}
	terrain := TerrainType(terrainRaw)
	if _, ok := knownTerrains[terrain]; !ok {
		return Tile{}, decodeErr("terrain_type", "unknown terrain %q", terrainRaw)
	}
	elevation, err := floatField(m, "elevation")
	if err != nil {
		return Tile{}, err
	}
	return Tile{
		X:         x,
		Y:         y,
		Terrain:   terrain,
		Elevation: elevation,
		Border:    boolField(m, "is_border"),
	}, nil
}

func treeFromDict(m map[string]any) (Feature, error) {
	x, err := intField(m, "x")
	if err != nil {
		return Feature{}, err
	}
	y, err := intField(m, "y")
	if err != nil {
		return Feature{}, err
	}
	treeRaw, err := intField(m, "tree_type")
	if err != nil {
		return Feature{}, err
	}
	tree := TreeType(treeRaw)
	if !tree.Valid() {
		return Feature{}, decodeErr("tree_type", "unknown tree type %d", treeRaw)
	}
	variant, err := intField(m, "variant")
	if err != nil {
		return Feature{}, err
	}
	size, err := floatField(m, "size_modifier")
	if err != nil {
		return Feature{}, err
	}
	depth, err := intField(m, "depth_layer")
	if err != nil {
		return Feature{}, err
	}
	leaf, err := colorField(m, "leaf_color")
	if err != nil {
		return Feature{}, err
	}
	base, err := colorField(m, "trunk_base_color")
	if err != nil {
		return Feature{}, err
	}
	shadow, err := colorField(m, "trunk_shadow_color")
	if err != nil {
		return Feature{}, err
	}
	highlight, err := colorField(m, "trunk_highlight_color")
	if err != nil {
		return Feature{}, err
	}
	return Feature{
		Kind:           FeatureTree,
		X:              x,
		Y:              y,
		Tree:           tree,
		Variant:        variant,
		SizeModifier:   size,
		DepthLayer:     depth,
		Border:         boolField(m, "is_border"),
		Extended:       boolField(m, "is_extended"),
		LeafColor:      leaf,
		TrunkBase:      base,
		TrunkShadow:    shadow,
		TrunkHighlight: highlight,
	}, nil
}

func asList(v any) ([]any, bool) {
	switch list := v.(type) {
	case []any:
		return list, true
	case []map[string]any:
		out := make([]any, len(list))
		for i, m := range list {
			out[i] = m
		}
		return out, true
	default:
		return nil, false
	}
}

func optionalList(m map[string]any, key string) []any {
	raw, ok := m[key]
	if !ok || raw == nil {
		return nil
	}
	list, ok := asList(raw)
	if !ok {
		return nil
	}
	return list
}

func intField(m map[string]any, key string) (int, error) {
	raw, ok := m[key]
	if !ok {
		return 0, decodeErr(key, "missing")
	}
	return asInt(key, raw)
}

func asInt(key string, raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, decodeErr(key, "non-integer value %v", v)
		}
		return int(v), nil
	default:
		return 0, decodeErr(key, "unexpected type %T", raw)
	}
}

func floatField(m map[string]any, key string) (float64, error) {
	raw, ok := m[key]
	if !ok {
		return 0, decodeErr(key, "missing")
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, decodeErr(key, "unexpected type %T", raw)
	}
}

func stringField(m map[string]any, key string) (string, error) {
	raw, ok := m[key]
	if !ok {
		return "", decodeErr(key, "missing")
	}
	s, ok := raw.(string)
	if !ok {
		return "", decodeErr(key, "unexpected type %T", raw)
	}
	return s, nil
}

// boolField is lenient: absent fields default to false, matching older
// payloads written before the flag existed.
func boolField(m map[string]any, key string) bool {
	raw, ok := m[key]
	if !ok {
		return false
	}
	b, ok := raw.(bool)
	return ok && b
}

func colorField(m map[string]any, key string) (Color, error) {
	raw, ok := m[key]
	if !ok {
		return Color{}, decodeErr(key, "missing")
	}
	list, ok := asList(raw)
	if !ok || len(list) != 3 {
		return Color{}, decodeErr(key, "expected [r,g,b] triple")
	}
	var parts [3]uint8
	for i, comp := range list {
		n, err := asInt(key, comp)
		if err != nil {
			return Color{}, err
		}
		if n < 0 || n > 255 {
			return Color{}, decodeErr(key, "component %d out of range", n)
		}
		parts[i] = uint8(n)
	}
	return Color{R: parts[0], G: parts[1], B: parts[2]}, nil
}

package terrain

import (
	"runicworld/internal/config"
	"runicworld/internal/world"
)

// The shared trunk palette and the leaf palettes. Every tree's colors are
// drawn from these exactly once, at creation, and stored on the feature.
var (
	trunkBase      = world.RGB(101, 67, 33)
	trunkShadow    = world.RGB(80, 50, 25)
	trunkHighlight = world.RGB(120, 80, 40)

	forestLeafColors = []world.Color{
		world.RGB(34, 139, 34),  // forest green
		world.RGB(50, 150, 50),  // darker green
		world.RGB(60, 179, 113), // medium sea green
		world.RGB(46, 125, 50),  // dark green
	}

	autumnLeafColors = []world.Color{
		world.RGB(34, 139, 34),  // forest green
		world.RGB(50, 150, 50),  // darker green
		world.RGB(255, 140, 0),  // dark orange
		world.RGB(255, 69, 0),   // red-orange
		world.RGB(220, 20, 60),  // crimson
		world.RGB(255, 215, 0),  // gold
		world.RGB(184, 134, 11), // dark goldenrod
		world.RGB(139, 69, 19),  // saddle brown
		world.RGB(160, 82, 45),  // lighter saddle brown
		world.RGB(255, 99, 71),  // tomato
	}
)

// resourceChance pairs a resource id with its per-tile spawn probability.
// Ordered slices, not maps, keep the RNG draw sequence deterministic.
type resourceChance struct {
	resource string
	chance   float64
}

var biomeResources = map[world.BiomeType][]resourceChance{
	world.BiomeMountains: {
		{"iron_ore", 0.02},
		{"gold_ore", 0.01},
		{"crystal", 0.005},
	},
	world.BiomeForest: {
		{"herb", 0.03},
		{"mushroom", 0.02},
		{"berry_bush", 0.01},
	},
	world.BiomeDesert: {
		{"cactus", 0.01},
		{"desert_flower", 0.005},
	},
}

// placeFeatures populates a freshly painted chunk with trees, rocks and
// resources. The rng stream is chunk-local; featureMap holds the secondary
// placement noise for the same chunk.
func placeFeatures(ch *world.Chunk, featureMap [][]float64, rng *deterministicRNG, cfg config.FeatureConfig) {
	switch ch.Biome {
	case world.BiomeForest:
		placeTrees(ch, featureMap, rng, cfg)
	case world.BiomeMountains:
		placeRocks(ch, rng, cfg)
	}
	placeResources(ch, rng)
}

// placeTrees puts a tree on grass tiles where the placement noise exceeds the
// threshold and a density-gated draw succeeds. All visual attributes are
// fixed here; rendering never re-rolls them.
func placeTrees(ch *world.Chunk, featureMap [][]float64, rng *deterministicRNG, cfg config.FeatureConfig) {
	for y := 0; y < ch.Size; y++ {
		for x := 0; x < ch.Size; x++ {
			tile, ok := ch.TileAt(x, y)
			if !ok || tile.Terrain != world.TerrainGrass {
				continue
			}
			if featureMap[y][x] <= cfg.NoiseThreshold {
				continue
			}
			if rng.nextFloat() >= cfg.TreeDensity {
				continue
			}
			ch.Features = append(ch.Features, newTree(tile.X, tile.Y, false, 0, false, rng))
		}
	}
}

// newTree creates one tree with all persistent attributes chosen up front.
// Border depth selects the type mix and size; leaf color comes from the
// autumn palette for border trees and the forest palette otherwise.
func newTree(x, y int, border bool, depthLayer int, extended bool, rng *deterministicRNG) world.Feature {
	var treeType world.TreeType
	switch {
	case extended:
		treeType = world.TreePine
	case border && depthLayer >= 6:
		treeType = world.TreePine
	case border && depthLayer >= 3:
		oakOrMaple := []world.TreeType{world.TreeOak, world.TreeMaple}
		treeType = oakOrMaple[rng.nextInt(2)]
	default:
		treeType = world.TreeType(rng.nextInt(3))
	}

	var leaf world.Color
	if border {
		if depthLayer > 6 {
			leaf = autumnLeafColors[rng.nextInt(4)]
		} else {
			leaf = autumnLeafColors[rng.nextInt(len(autumnLeafColors))]
		}
	} else {
		leaf = forestLeafColors[rng.nextInt(len(forestLeafColors))]
	}

	size := 1.0
	switch {
	case extended:
		size = 1.1
	case border && depthLayer < 3:
		size = 1.2
	case border && depthLayer >= 6:
		size = 0.8
	}

	return world.Feature{
		Kind:           world.FeatureTree,
		X:              x,
		Y:              y,
		Tree:           treeType,
		Variant:        int(treeType),
		SizeModifier:   size,
		DepthLayer:     depthLayer,
		Border:         border,
		Extended:       extended,
		LeafColor:      leaf,
		TrunkBase:      trunkBase,
		TrunkShadow:    trunkShadow,
		TrunkHighlight: trunkHighlight,
	}
}

func placeRocks(ch *world.Chunk, rng *deterministicRNG, cfg config.FeatureConfig) {
	for _, tile := range ch.Tiles {
		if tile.Terrain != world.TerrainStone {
			continue
		}
		if rng.nextFloat() >= cfg.RockDensity {
			continue
		}
		ch.Features = append(ch.Features, world.Feature{
			Kind:    world.FeatureRock,
			X:       tile.X,
			Y:       tile.Y,
			Variant: rng.nextInt(3),
		})
	}
}

func placeResources(ch *world.Chunk, rng *deterministicRNG) {
	chances, ok := biomeResources[ch.Biome]
	if !ok {
		return
	}
	for _, tile := range ch.Tiles {
		for _, rc := range chances {
			if rng.nextFloat() >= rc.chance {
				continue
			}
			ch.Features = append(ch.Features, world.Feature{
				Kind:     world.FeatureResource,
				X:        tile.X,
				Y:        tile.Y,
				Resource: rc.resource,
				Quantity: rng.intBetween(1, 5),
			})
		}
	}
}

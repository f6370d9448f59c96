package terrain

import (
	"context"
	"math/rand"

	"runicworld/internal/config"
	"runicworld/internal/world"
)

// ChunkGenerator produces chunks on demand: noise maps, biome classification,
// per-tile terrain and feature placement. Implements world.Generator.
type ChunkGenerator struct {
	cfg        *config.Config
	seed       int64
	field      *Field
	classifier Classifier
}

func NewChunkGenerator(cfg *config.Config, seed int64) *ChunkGenerator {
	return &ChunkGenerator{
		cfg:        cfg,
		seed:       seed,
		field:      NewField(seed),
		classifier: NewClassifier(cfg.Biomes),
	}
}

func (g *ChunkGenerator) Seed() int64 {
	return g.seed
}

func (g *ChunkGenerator) Field() *Field {
	return g.field
}

// Generate builds the chunk at coord. Any failure aborts the whole chunk;
// partial chunks are never returned.
func (g *ChunkGenerator) Generate(ctx context.Context, coord world.ChunkCoord) (*world.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	size := g.cfg.World.ChunkSize

	elevation, err := g.field.GenerateMap(coord, size, g.cfg.Noise.ElevationScale)
	if err != nil {
		return nil, &world.GenerationError{Coord: coord, Err: err}
	}
	temperature, err := g.field.GenerateMap(coord, size, g.cfg.Noise.TemperatureScale)
	if err != nil {
		return nil, &world.GenerationError{Coord: coord, Err: err}
	}
	moisture, err := g.field.GenerateMap(coord, size, g.cfg.Noise.MoistureScale)
	if err != nil {
		return nil, &world.GenerationError{Coord: coord, Err: err}
	}

	biome := g.classifier.Classify(
		mapAverage(elevation),
		mapAverage(temperature),
		mapAverage(moisture),
		coord,
	)

	ch := &world.Chunk{
		Coord: coord,
		Size:  size,
		Biome: biome,
		Tiles: make([]world.Tile, 0, size*size),
	}

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			ch.Tiles = append(ch.Tiles, world.Tile{
				X:         coord.X*size + x,
				Y:         coord.Y*size + y,
				Terrain:   TerrainFor(biome, elevation[y][x], temperature[y][x], moisture[y][x]),
				Elevation: elevation[y][x],
			})
		}
	}

	// The feature map runs at a tighter scale than terrain so clusters stay
	// smaller than biome shapes.
	featureMap, err := g.field.GenerateFeatureMap(coord, size, g.cfg.Noise.FeatureScale*0.8)
	if err != nil {
		return nil, &world.GenerationError{Coord: coord, Err: err}
	}

	placeFeatures(ch, featureMap, newChunkRNG(coord, g.seed), g.cfg.Features)
	return ch, nil
}

// NewWorldManager wires generator, border and cache into a ready Manager.
// A nil seed picks a random one, exposed afterwards via Manager.Seed.
func NewWorldManager(cfg *config.Config, seed *int64, sink world.SnapshotSink) *world.Manager {
	s := int64(0)
	if seed != nil {
		s = *seed
	} else {
		s = rand.Int63n(1_000_000)
	}
	gen := NewChunkGenerator(cfg, s)
	border := GenerateBorder(cfg, s)
	return world.NewManager(
		s,
		cfg.World.TileSize,
		cfg.World.ChunkSize,
		cfg.World.ViewRadius,
		gen,
		border,
		sink,
	)
}

// Command worldgen generates a square of chunks offline and writes them to a
// compressed snapshot file. Useful for inspecting generation output for a
// seed without running the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"runicworld/internal/config"
	"runicworld/internal/persistence/snapshot"
	"runicworld/internal/terrain"
	"runicworld/internal/world"
)

func main() {
	var cfgPath string
	var seed int64
	var radius int
	var outDir string
	flag.StringVar(&cfgPath, "config", "", "path to configuration file (json or yaml)")
	flag.Int64Var(&seed, "seed", 12345, "world seed")
	flag.IntVar(&radius, "radius", 2, "chunk radius around the origin to generate")
	flag.StringVar(&outDir, "out", "snapshots", "output directory for the snapshot file")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if radius < 0 {
		log.Fatalf("radius cannot be negative")
	}

	writer, err := snapshot.NewChunkWriter(outDir, seed)
	if err != nil {
		log.Fatalf("open snapshot writer: %v", err)
	}
	defer writer.Close()

	gen := terrain.NewChunkGenerator(cfg, seed)
	ctx := context.Background()

	biomes := make(map[world.BiomeType]int)
	chunks, features := 0, 0
	for cy := -radius; cy <= radius; cy++ {
		for cx := -radius; cx <= radius; cx++ {
			ch, err := gen.Generate(ctx, world.ChunkCoord{X: cx, Y: cy})
			if err != nil {
				log.Fatalf("generate chunk (%d,%d): %v", cx, cy, err)
			}
			if err := writer.WriteChunk(ch.ToDict()); err != nil {
				log.Fatalf("write chunk (%d,%d): %v", cx, cy, err)
			}
			biomes[ch.Biome]++
			chunks++
			features += len(ch.Features)
		}
	}

	fmt.Fprintf(os.Stdout, "seed %d: %d chunks, %d features -> %s\n", seed, chunks, features, writer.Path())
	for biome, count := range biomes {
		fmt.Fprintf(os.Stdout, "  %-10s %d\n", biome, count)
	}
}

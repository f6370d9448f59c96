package terrain

import (
	"fmt"

	"github.com/aquilax/go-perlin"
	opensimplex "github.com/ojrac/opensimplex-go"

	"runicworld/internal/world"
)

// edgeBand is the number of cells from a chunk edge that receive boundary
// smoothing so independently generated neighbors meet without visible seams.
const edgeBand = 2

// edgeJitter offsets, in world tile units, for the 9-sample smoothing kernel.
var edgeJitter = [3]float64{-0.3, 0, 0.3}

// Field wraps the seeded coherent-noise sources for one world. It is
// stateless beyond the seed and safe for concurrent reads.
type Field struct {
	seed    int64
	simplex opensimplex.Noise
	feature *perlin.Perlin
}

// NewField builds the noise sources for a seed. Elevation, temperature and
// moisture share one simplex source distinguished by scale; feature placement
// uses a separate perlin source so tree clusters do not mirror terrain shape.
func NewField(seed int64) *Field {
	return &Field{
		seed:    seed,
		simplex: opensimplex.New(seed),
		feature: perlin.NewPerlin(2, 2, 3, seed+1),
	}
}

func (f *Field) Seed() int64 {
	return f.seed
}

// Sample returns the terrain noise value at a world position, roughly within
// [-1,1]. A non-positive scale is a generation failure, never a degenerate
// value.
func (f *Field) Sample(worldX, worldY, scale float64) (float64, error) {
	if scale <= 0 {
		return 0, fmt.Errorf("noise scale must be positive, got %v", scale)
	}
	return f.simplex.Eval2(worldX/scale, worldY/scale), nil
}

// FeatureSample returns the secondary placement noise at a world position.
func (f *Field) FeatureSample(worldX, worldY, scale float64) (float64, error) {
	if scale <= 0 {
		return 0, fmt.Errorf("noise scale must be positive, got %v", scale)
	}
	return f.feature.Noise2D(worldX/scale, worldY/scale), nil
}

// GenerateMap produces one sample per tile of a chunk. Tiles within edgeBand
// cells of a chunk edge are blended 60/40 with the average of nine jittered
// samples. The blend depends only on world coordinates, so the two sides of a
// chunk seam compute identical values.
func (f *Field) GenerateMap(coord world.ChunkCoord, size int, scale float64) ([][]float64, error) {
	return f.generateMap(coord, size, scale, f.Sample)
}

// GenerateFeatureMap is GenerateMap over the feature noise source.
func (f *Field) GenerateFeatureMap(coord world.ChunkCoord, size int, scale float64) ([][]float64, error) {
	return f.generateMap(coord, size, scale, f.FeatureSample)
}

func (f *Field) generateMap(coord world.ChunkCoord, size int, scale float64, sample func(x, y, scale float64) (float64, error)) ([][]float64, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}

	grid := make([][]float64, size)
	for y := 0; y < size; y++ {
		row := make([]float64, size)
		for x := 0; x < size; x++ {
			worldX := float64(coord.X*size + x)
			worldY := float64(coord.Y*size + y)

			value, err := sample(worldX, worldY, scale)
			if err != nil {
				return nil, err
			}

			if x < edgeBand || x >= size-edgeBand || y < edgeBand || y >= size-edgeBand {
				sum := 0.0
				for _, dx := range edgeJitter {
					for _, dy := range edgeJitter {
						s, err := sample(worldX+dx, worldY+dy, scale)
						if err != nil {
							return nil, err
						}
						sum += s
					}
				}
				value = value*0.6 + sum/9*0.4
			}
			row[x] = value
		}
		grid[y] = row
	}
	return grid, nil
}

func mapAverage(grid [][]float64) float64 {
	if len(grid) == 0 {
		return 0
	}
	sum := 0.0
	count := 0
	for _, row := range grid {
		for _, v := range row {
			sum += v
			count++
		}
	}
	return sum / float64(count)
}

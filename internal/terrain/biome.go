package terrain

import (
	"math"

	"runicworld/internal/config"
	"runicworld/internal/world"
)

// originBiasRadius is the chunk distance from (0,0) within which averages are
// pulled toward temperate values, so the starting area is hospitable for any
// seed.
const originBiasRadius = 3.0

// Classifier maps chunk-average climate values to one biome tag. The priority
// chain is fixed; only the thresholds come from configuration.
type Classifier struct {
	cfg config.BiomeConfig
}

func NewClassifier(cfg config.BiomeConfig) Classifier {
	return Classifier{cfg: cfg}
}

// Classify picks the biome for a chunk from its average elevation,
// temperature and moisture, applying the origin bias first.
func (c Classifier) Classify(avgElevation, avgTemperature, avgMoisture float64, coord world.ChunkCoord) world.BiomeType {
	distance := math.Sqrt(float64(coord.X*coord.X + coord.Y*coord.Y))
	if distance < originBiasRadius {
		if avgTemperature < -0.2 {
			avgTemperature += 0.1
		}
		if avgTemperature > 0.6 {
			avgTemperature -= 0.1
		}
		if avgMoisture < -0.2 {
			avgMoisture += 0.1
		}
		if avgElevation > 0.5 {
			avgElevation -= 0.1
		}
	}

	switch {
	case avgElevation > c.cfg.MountainElevation:
		if avgTemperature > c.cfg.VolcanicTemp {
			return world.BiomeVolcanic
		}
		return world.BiomeMountains
	case avgTemperature < c.cfg.TundraTemp:
		return world.BiomeTundra
	case avgTemperature > c.cfg.DesertTemp && avgMoisture < c.cfg.DesertMoisture:
		return world.BiomeDesert
	case avgMoisture > c.cfg.SwampMoisture:
		return world.BiomeSwamp
	case avgMoisture > c.cfg.ForestMoisture:
		return world.BiomeForest
	default:
		return world.BiomePlains
	}
}

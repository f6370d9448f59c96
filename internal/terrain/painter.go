package terrain

import "runicworld/internal/world"

// TerrainFor converts one tile's own noise samples plus the chunk biome into
// a terrain tag. Pure function; the rules form a fixed priority table and
// must never consult chunk averages.
func TerrainFor(biome world.BiomeType, elevation, temperature, moisture float64) world.TerrainType {
	switch {
	case biome == world.BiomeMountains && elevation > 0.7:
		return world.TerrainStone
	case biome == world.BiomeDesert:
		return world.TerrainSand
	case biome == world.BiomeTundra:
		return world.TerrainSnow
	case biome == world.BiomeVolcanic && elevation > 0.8:
		return world.TerrainLava
	case biome == world.BiomeSwamp && elevation < -0.2:
		return world.TerrainWater
	case moisture > 0.6 && elevation < -0.3:
		return world.TerrainWater
	case elevation < -0.4:
		return world.TerrainDirt
	default:
		return world.TerrainGrass
	}
}

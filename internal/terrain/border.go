package terrain

import (
	"log"

	"runicworld/internal/config"
	"runicworld/internal/world"
)

// extendedTreeDensity is the constant coverage of the forest wall outside the
// playable bounds. Kept constant so the wall looks uniform from anywhere at
// the world edge.
const extendedTreeDensity = 0.8

// collisionDepthLimit: only trees this close to the true edge block movement;
// deeper fade-zone trees are decorative.
const collisionDepthLimit = 6

// GenerateBorder synthesizes the forest wall around the playable world:
// ground tiles, trees and the blocking rectangles. All placement draws are
// derived from the position and seed alone, so the result is independent of
// iteration order and reproducible per seed.
func GenerateBorder(cfg *config.Config, seed int64) world.BorderData {
	minX, minY := 0, 0
	maxX := cfg.World.WidthTiles - 1
	maxY := cfg.World.HeightTiles - 1

	core := cfg.Border.CoreDepth
	fade := cfg.Border.FadeDepth
	extended := cfg.Border.ExtendedDepth
	bandDepth := core + fade
	tileSize := cfg.World.TileSize

	var data world.BorderData
	for y := minY - extended; y <= maxY+extended; y++ {
		for x := minX - extended; x <= maxX+extended; x++ {
			inside := x >= minX && x <= maxX && y >= minY && y <= maxY

			if inside {
				depth := minInt(minInt(x-minX, maxX-x), minInt(y-minY, maxY-y))
				if depth >= bandDepth {
					continue
				}
				data.Tiles = append(data.Tiles, borderGround(x, y))
				density := borderDensity(depth, cfg.Border)
				if positionDraw(x, y, seed) >= density {
					continue
				}
				tree := newTree(x, y, true, depth, false, newDeterministicRNG(x, y, seed+1))
				data.Features = append(data.Features, tree)
				if depth < collisionDepthLimit {
					data.Rects = append(data.Rects, tileRect(x, y, tileSize))
				}
				continue
			}

			// Outside the playable bounds: the unbreakable wall. Every tree
			// placed here blocks movement.
			dist := chebyshevToBounds(x, y, minX, maxX, minY, maxY)
			data.Tiles = append(data.Tiles, borderGround(x, y))
			if positionDraw(x, y, seed) >= extendedTreeDensity {
				continue
			}
			tree := newTree(x, y, true, dist, true, newDeterministicRNG(x, y, seed+1))
			data.Features = append(data.Features, tree)
			data.Rects = append(data.Rects, tileRect(x, y, tileSize))
		}
	}

	log.Printf("generated forest border: %d tiles, %d trees, %d blocking rects",
		len(data.Tiles), len(data.Features), len(data.Rects))
	return data
}

// borderDensity is the tree coverage for a band depth measured inward from
// the playable edge. Non-increasing through the core and fade bands, constant
// beyond them.
func borderDensity(depth int, cfg config.BorderConfig) float64 {
	switch {
	case depth < cfg.CoreDepth:
		return 0.95 - float64(depth)*0.05
	case depth < cfg.CoreDepth+cfg.FadeDepth:
		fadeRatio := float64(depth-cfg.CoreDepth) / float64(cfg.FadeDepth)
		return 0.85 * (1.0 - fadeRatio)
	default:
		return extendedTreeDensity
	}
}

func borderGround(x, y int) world.Tile {
	return world.Tile{
		X:       x,
		Y:       y,
		Terrain: world.TerrainGrass,
		Border:  true,
	}
}

func tileRect(x, y, tileSize int) world.Rect {
	return world.Rect{
		X: x * tileSize,
		Y: y * tileSize,
		W: tileSize,
		H: tileSize,
	}
}

// chebyshevToBounds is the tile distance from a point outside the playable
// rectangle to its nearest edge.
func chebyshevToBounds(x, y, minX, maxX, minY, maxY int) int {
	dx := 0
	if x < minX {
		dx = minX - x
	} else if x > maxX {
		dx = x - maxX
	}
	dy := 0
	if y < minY {
		dy = minY - y
	} else if y > maxY {
		dy = y - maxY
	}
	return maxInt(dx, dy)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

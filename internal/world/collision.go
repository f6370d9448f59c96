package world

// Rect is an axis-aligned rectangle in pixel space.
type Rect struct {
	X int
	Y int
	W int
	H int
}

// collisionIndex tracks blocking rectangles per loaded chunk plus the static
// border wall. It is owned by the Manager and guarded by the Manager's lock,
// so chunk insert/evict and rectangle updates stay atomic.
type collisionIndex struct {
	chunks map[ChunkCoord][]Rect
	border []Rect
}

func newCollisionIndex(border []Rect) *collisionIndex {
	return &collisionIndex{
		chunks: make(map[ChunkCoord][]Rect),
		border: border,
	}
}

func (ci *collisionIndex) setChunk(coord ChunkCoord, rects []Rect) {
	if len(rects) == 0 {
		delete(ci.chunks, coord)
		return
	}
	ci.chunks[coord] = rects
}

func (ci *collisionIndex) dropChunk(coord ChunkCoord) {
	delete(ci.chunks, coord)
}

// snapshot returns a copy of every rectangle currently in the index.
func (ci *collisionIndex) snapshot() []Rect {
	total := len(ci.border)
	for _, rects := range ci.chunks {
		total += len(rects)
	}
	out := make([]Rect, 0, total)
	out = append(out, ci.border...)
	for _, rects := range ci.chunks {
		out = append(out, rects...)
	}
	return out
}

// chunkBlockingRects derives the blocking rectangles for a generated chunk.
// Trees occupy their full tile; rocks and resources do not block movement.
func chunkBlockingRects(ch *Chunk, tileSize int) []Rect {
	var rects []Rect
	for _, f := range ch.Features {
		if f.Kind != FeatureTree {
			continue
		}
		rects = append(rects, Rect{
			X: f.X * tileSize,
			Y: f.Y * tileSize,
			W: tileSize,
			H: tileSize,
		})
	}
	return rects
}

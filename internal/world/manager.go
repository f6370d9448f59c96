package world

import (
	"context"
	"log"
	"math"
	"sync"
)

// maxTileCoord bounds the addressable tile range. Chunk coordinates whose
// tiles would overflow it are rejected rather than clamped.
const maxTileCoord = math.MaxInt32

// Generator produces the full contents of one chunk. Implementations must be
// deterministic: the same coordinate and seed always yield identical output.
type Generator interface {
	Generate(ctx context.Context, coord ChunkCoord) (*Chunk, error)
}

// SnapshotSink receives the serialized form of a chunk just before the
// Manager drops it. Implementations decide whether and where to persist;
// the Manager never reads snapshots back.
type SnapshotSink interface {
	WriteChunk(dict map[string]any) error
}

// BorderData is the one-time output of border generation: decorative ground
// tiles, wall features and the static blocking rectangles.
type BorderData struct {
	Tiles    []Tile
	Features []Feature
	Rects    []Rect
}

// SpawnPoint is a suggested observer start position in pixel space.
type SpawnPoint struct {
	X int
	Y int
}

// Manager owns the chunk cache and the streaming window around an observer.
// Chunks are generated at most once while loaded; eviction serializes a chunk
// through the snapshot sink before dropping it.
type Manager struct {
	seed       int64
	tileSize   int
	chunkSize  int
	viewRadius int

	generator Generator
	sink      SnapshotSink
	border    BorderData

	mu        sync.RWMutex
	chunks    map[ChunkCoord]*Chunk
	collision *collisionIndex

	spawns []SpawnPoint
}

// NewManager wires a Manager from its collaborators. The border data is
// computed once by the caller; sink may be nil to disable eviction snapshots.
func NewManager(seed int64, tileSize, chunkSize, viewRadius int, generator Generator, border BorderData, sink SnapshotSink) *Manager {
	return &Manager{
		seed:       seed,
		tileSize:   tileSize,
		chunkSize:  chunkSize,
		viewRadius: viewRadius,
		generator:  generator,
		sink:       sink,
		border:     border,
		chunks:     make(map[ChunkCoord]*Chunk),
		collision:  newCollisionIndex(border.Rects),
	}
}

// Seed returns the world seed the manager was created with.
func (m *Manager) Seed() int64 {
	return m.seed
}

// BorderTiles returns the decorative ground tiles of the border wall.
func (m *Manager) BorderTiles() []Tile {
	return m.border.Tiles
}

// BorderFeatures returns the trees making up the border wall.
func (m *Manager) BorderFeatures() []Feature {
	return m.border.Features
}

// GetChunk returns the chunk at the given coordinate, generating it if it is
// not cached. A chunk already in the cache is never regenerated.
func (m *Manager) GetChunk(ctx context.Context, coord ChunkCoord) (*Chunk, error) {
	if err := m.checkCoord(coord); err != nil {
		return nil, err
	}

	m.mu.RLock()
	ch, ok := m.chunks[coord]
	m.mu.RUnlock()
	if ok {
		return ch, nil
	}

	ch, err := m.generator.Generate(ctx, coord)
	if err != nil {
		if _, ok := err.(*GenerationError); ok {
			return nil, err
		}
		return nil, &GenerationError{Coord: coord, Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.chunks[coord]; ok {
		return existing, nil
	}
	m.chunks[coord] = ch
	m.collision.setChunk(coord, chunkBlockingRects(ch, m.tileSize))
	return ch, nil
}

// UpdateChunks is the per-frame streaming tick. The observer position is in
// pixels; chunks within the view radius of the observer's chunk are loaded
// and chunks outside viewRadius+1 are evicted. The extra ring of hysteresis
// prevents load/unload thrashing at window boundaries. It returns the chunks
// loaded this tick and the coordinates evicted.
func (m *Manager) UpdateChunks(ctx context.Context, px, py float64) ([]*Chunk, []ChunkCoord, error) {
	center := m.ChunkAtPixel(px, py)

	var loaded []*Chunk
	for dy := -m.viewRadius; dy <= m.viewRadius; dy++ {
		for dx := -m.viewRadius; dx <= m.viewRadius; dx++ {
			coord := ChunkCoord{X: center.X + dx, Y: center.Y + dy}

			m.mu.RLock()
			_, ok := m.chunks[coord]
			m.mu.RUnlock()
			if ok {
				continue
			}

			ch, err := m.GetChunk(ctx, coord)
			if err != nil {
				return loaded, nil, err
			}
			loaded = append(loaded, ch)
		}
	}

	evicted := m.evictOutside(center, m.viewRadius+1)
	return loaded, evicted, nil
}

// evictOutside drops every cached chunk farther than keepRadius from center,
// serializing each one through the sink first.
func (m *Manager) evictOutside(center ChunkCoord, keepRadius int) []ChunkCoord {
	m.mu.Lock()
	var victims []*Chunk
	for coord, ch := range m.chunks {
		if absInt(coord.X-center.X) > keepRadius || absInt(coord.Y-center.Y) > keepRadius {
			victims = append(victims, ch)
		}
	}
	coords := make([]ChunkCoord, 0, len(victims))
	for _, ch := range victims {
		delete(m.chunks, ch.Coord)
		m.collision.dropChunk(ch.Coord)
		coords = append(coords, ch.Coord)
	}
	m.mu.Unlock()

	if m.sink != nil {
		for _, ch := range victims {
			if err := m.sink.WriteChunk(ch.ToDict()); err != nil {
				log.Printf("snapshot chunk %v: %v", ch.Coord, err)
			}
		}
	}
	return coords
}

// CollisionRects returns a snapshot of every blocking rectangle currently
// known: the static border wall plus rectangles of all loaded chunks.
func (m *Manager) CollisionRects() []Rect {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collision.snapshot()
}

// LoadedCoords returns the coordinates of all cached chunks.
func (m *Manager) LoadedCoords() []ChunkCoord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	coords := make([]ChunkCoord, 0, len(m.chunks))
	for coord := range m.chunks {
		coords = append(coords, coord)
	}
	return coords
}

// ChunkAtPixel converts a pixel position to the containing chunk coordinate
// using floor semantics, so negative positions round toward negative infinity.
func (m *Manager) ChunkAtPixel(px, py float64) ChunkCoord {
	chunkPixels := float64(m.chunkSize * m.tileSize)
	return ChunkCoord{
		X: int(math.Floor(px / chunkPixels)),
		Y: int(math.Floor(py / chunkPixels)),
	}
}

// SpawnPoints returns deterministic observer start positions on grass tiles
// near the origin chunk. Computed once and cached.
func (m *Manager) SpawnPoints(ctx context.Context) ([]SpawnPoint, error) {
	m.mu.RLock()
	spawns := m.spawns
	m.mu.RUnlock()
	if spawns != nil {
		return spawns, nil
	}

	origin, err := m.GetChunk(ctx, ChunkCoord{X: 0, Y: 0})
	if err != nil {
		return nil, err
	}

	spawns = make([]SpawnPoint, 0, 4)
	rng := spawnRNG(m.seed)
	for try := 0; try < 50 && len(spawns) == 0; try++ {
		x := int(rng.next() % uint64(m.chunkSize))
		y := int(rng.next() % uint64(m.chunkSize))
		if tile, ok := origin.TileAt(x, y); ok && tile.Terrain == TerrainGrass {
			spawns = append(spawns, m.tileCenter(tile.X, tile.Y))
		}
	}
	if len(spawns) == 0 {
		spawns = append(spawns, m.tileCenter(0, 0))
	}

	// Fill out a few alternates from whatever grass the origin chunk has.
	for _, tile := range origin.Tiles {
		if len(spawns) >= 4 {
			break
		}
		if tile.Terrain != TerrainGrass {
			continue
		}
		candidate := m.tileCenter(tile.X, tile.Y)
		if tooClose(spawns, candidate, m.chunkSize*m.tileSize/4) {
			continue
		}
		spawns = append(spawns, candidate)
	}

	m.mu.Lock()
	if m.spawns == nil {
		m.spawns = spawns
	}
	spawns = m.spawns
	m.mu.Unlock()
	return spawns, nil
}

// CenteredSpawn returns the spawn point closest to the world origin.
func (m *Manager) CenteredSpawn(ctx context.Context) (SpawnPoint, error) {
	spawns, err := m.SpawnPoints(ctx)
	if err != nil {
		return SpawnPoint{}, err
	}
	best := spawns[0]
	bestDist := math.MaxFloat64
	for _, sp := range spawns {
		d := float64(sp.X)*float64(sp.X) + float64(sp.Y)*float64(sp.Y)
		if d < bestDist {
			bestDist = d
			best = sp
		}
	}
	return best, nil
}

func (m *Manager) tileCenter(tx, ty int) SpawnPoint {
	return SpawnPoint{
		X: tx*m.tileSize + m.tileSize/2,
		Y: ty*m.tileSize + m.tileSize/2,
	}
}

func tooClose(points []SpawnPoint, p SpawnPoint, minDist int) bool {
	for _, existing := range points {
		dx := existing.X - p.X
		dy := existing.Y - p.Y
		if dx*dx+dy*dy < minDist*minDist {
			return true
		}
	}
	return false
}

func (m *Manager) checkCoord(coord ChunkCoord) error {
	limit := maxTileCoord / m.chunkSize
	if coord.X > limit || coord.X < -limit || coord.Y > limit || coord.Y < -limit {
		return &CoordinateRangeError{Coord: coord}
	}
	return nil
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// xorshiftRNG is a tiny deterministic generator used for spawn selection.
type xorshiftRNG struct {
	state uint64
}

func spawnRNG(seed int64) *xorshiftRNG {
	state := uint64(seed)*0x9e3779b97f4a7c15 + 0x2545f4914f6cdd1d
	if state == 0 {
		state = 0x9e3779b97f4a7c15
	}
	return &xorshiftRNG{state: state}
}

func (r *xorshiftRNG) next() uint64 {
	r.state ^= r.state << 7
	r.state ^= r.state >> 9
	r.state ^= r.state << 8
	return r.state
}

package world

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
)

// stubGenerator builds small deterministic chunks and counts invocations.
type stubGenerator struct {
	size  int
	calls atomic.Int64
	fail  map[ChunkCoord]error
}

func newStubGenerator(size int) *stubGenerator {
	return &stubGenerator{size: size, fail: make(map[ChunkCoord]error)}
}

func (g *stubGenerator) Generate(_ context.Context, coord ChunkCoord) (*Chunk, error) {
	if err, ok := g.fail[coord]; ok {
		return nil, err
	}
	g.calls.Add(1)

	ch := &Chunk{
		Coord: coord,
		Size:  g.size,
		Biome: BiomeForest,
	}
	for y := 0; y < g.size; y++ {
		for x := 0; x < g.size; x++ {
			wx := coord.X*g.size + x
			wy := coord.Y*g.size + y
			ch.Tiles = append(ch.Tiles, Tile{
				X:         wx,
				Y:         wy,
				Terrain:   TerrainGrass,
				Elevation: float64(hashPosition(wx, wy)%100) / 100,
			})
		}
	}
	// One deterministic tree per chunk, in the chunk's first tile.
	ch.Features = append(ch.Features, Feature{
		Kind:           FeatureTree,
		X:              coord.X * g.size,
		Y:              coord.Y * g.size,
		Tree:           TreeOak,
		SizeModifier:   1.0,
		LeafColor:      RGB(34, 139, 34),
		TrunkBase:      RGB(101, 67, 33),
		TrunkShadow:    RGB(80, 50, 25),
		TrunkHighlight: RGB(120, 80, 40),
	})
	return ch, nil
}

func hashPosition(x, y int) int {
	h := x*374761393 + y*668265263
	if h < 0 {
		h = -h
	}
	return h
}

type recordingSink struct {
	dicts []map[string]any
	err   error
}

func (s *recordingSink) WriteChunk(dict map[string]any) error {
	if s.err != nil {
		return s.err
	}
	s.dicts = append(s.dicts, dict)
	return nil
}

func newTestManager(gen Generator, sink SnapshotSink) *Manager {
	return NewManager(42, 32, 4, 2, gen, BorderData{}, sink)
}

func TestGetChunkIsIdempotent(t *testing.T) {
	gen := newStubGenerator(4)
	m := newTestManager(gen, nil)

	first, err := m.GetChunk(context.Background(), ChunkCoord{X: 1, Y: -2})
	if err != nil {
		t.Fatalf("get chunk: %v", err)
	}
	second, err := m.GetChunk(context.Background(), ChunkCoord{X: 1, Y: -2})
	if err != nil {
		t.Fatalf("get chunk again: %v", err)
	}
	if first != second {
		t.Fatalf("expected the cached chunk, got a distinct instance")
	}
	if got := gen.calls.Load(); got != 1 {
		t.Fatalf("expected exactly one generation, got %d", got)
	}
}

func TestGetChunkRegeneratesIdenticallyAfterEviction(t *testing.T) {
	gen := newStubGenerator(4)
	m := newTestManager(gen, nil)
	coord := ChunkCoord{X: 3, Y: 3}

	first, err := m.GetChunk(context.Background(), coord)
	if err != nil {
		t.Fatalf("get chunk: %v", err)
	}
	firstCopy := *first

	// Move the observer far away so the chunk is evicted.
	if _, _, err := m.UpdateChunks(context.Background(), 100*32*4, 100*32*4); err != nil {
		t.Fatalf("update chunks: %v", err)
	}
	for _, c := range m.LoadedCoords() {
		if c == coord {
			t.Fatalf("chunk %v should have been evicted", coord)
		}
	}

	second, err := m.GetChunk(context.Background(), coord)
	if err != nil {
		t.Fatalf("regenerate chunk: %v", err)
	}
	if !reflect.DeepEqual(firstCopy, *second) {
		t.Fatalf("regenerated chunk differs from original:\nwant: %+v\n got: %+v", firstCopy, *second)
	}
}

func TestUpdateChunksWindowAndHysteresis(t *testing.T) {
	gen := newStubGenerator(4)
	m := newTestManager(gen, nil)
	ctx := context.Background()

	// Observer at the origin: the full (2r+1)^2 window must load.
	loaded, evicted, err := m.UpdateChunks(ctx, 0, 0)
	if err != nil {
		t.Fatalf("update chunks: %v", err)
	}
	if len(loaded) != 25 {
		t.Fatalf("expected 25 loaded chunks, got %d", len(loaded))
	}
	if len(evicted) != 0 {
		t.Fatalf("expected no evictions on first tick, got %d", len(evicted))
	}

	want := make(map[ChunkCoord]bool)
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			want[ChunkCoord{X: dx, Y: dy}] = true
		}
	}
	for _, c := range m.LoadedCoords() {
		if !want[c] {
			t.Fatalf("unexpected chunk loaded: %v", c)
		}
		delete(want, c)
	}
	if len(want) != 0 {
		t.Fatalf("missing chunks after update: %v", want)
	}

	// One chunk to the right: chunks at x=-2 sit exactly on the radius+1
	// hysteresis ring and must survive.
	_, evicted, err = m.UpdateChunks(ctx, 4*32, 0)
	if err != nil {
		t.Fatalf("update chunks: %v", err)
	}
	if len(evicted) != 0 {
		t.Fatalf("hysteresis ring should prevent evictions, got %v", evicted)
	}

	// Two chunks further: x=-2 is now outside radius+1 and must go.
	_, evicted, err = m.UpdateChunks(ctx, 3*4*32, 0)
	if err != nil {
		t.Fatalf("update chunks: %v", err)
	}
	if len(evicted) == 0 {
		t.Fatalf("expected evictions after moving out of range")
	}
	for _, c := range m.LoadedCoords() {
		if absInt(c.X-3) > 3 || absInt(c.Y) > 3 {
			t.Fatalf("chunk %v survived outside radius+1 of the new center", c)
		}
	}
	for _, c := range evicted {
		if c.X >= 0 {
			t.Fatalf("unexpected eviction %v, only negative-x columns are out of range", c)
		}
	}
}

func TestEvictionSerializesThroughSink(t *testing.T) {
	gen := newStubGenerator(4)
	sink := &recordingSink{}
	m := newTestManager(gen, sink)
	ctx := context.Background()

	if _, _, err := m.UpdateChunks(ctx, 0, 0); err != nil {
		t.Fatalf("update chunks: %v", err)
	}
	if _, _, err := m.UpdateChunks(ctx, 100*32*4, 100*32*4); err != nil {
		t.Fatalf("update chunks far away: %v", err)
	}

	if len(sink.dicts) != 25 {
		t.Fatalf("expected 25 serialized chunks, got %d", len(sink.dicts))
	}
	for _, dict := range sink.dicts {
		if _, err := ChunkFromDict(dict); err != nil {
			t.Fatalf("sink received non-round-trippable dict: %v", err)
		}
	}
}

func TestGenerationFailureIsNotCached(t *testing.T) {
	gen := newStubGenerator(4)
	bad := ChunkCoord{X: 7, Y: 7}
	gen.fail[bad] = errors.New("boom")
	m := newTestManager(gen, nil)

	_, err := m.GetChunk(context.Background(), bad)
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	for _, c := range m.LoadedCoords() {
		if c == bad {
			t.Fatalf("failed chunk must not be cached")
		}
	}

	// The coordinate recovers once the generator does.
	delete(gen.fail, bad)
	if _, err := m.GetChunk(context.Background(), bad); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
}

func TestGetChunkRejectsOutOfRangeCoordinates(t *testing.T) {
	m := newTestManager(newStubGenerator(4), nil)

	_, err := m.GetChunk(context.Background(), ChunkCoord{X: maxTileCoord, Y: 0})
	var rangeErr *CoordinateRangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected CoordinateRangeError, got %v", err)
	}
}

func TestChunkAtPixelFloorsNegativePositions(t *testing.T) {
	m := newTestManager(newStubGenerator(4), nil)
	// chunk pixel span = 4 tiles * 32 px = 128.
	tests := []struct {
		px, py float64
		want   ChunkCoord
	}{
		{0, 0, ChunkCoord{0, 0}},
		{127, 127, ChunkCoord{0, 0}},
		{128, 0, ChunkCoord{1, 0}},
		{-1, -1, ChunkCoord{-1, -1}},
		{-128, -129, ChunkCoord{-1, -2}},
		{-129, 128, ChunkCoord{-2, 1}},
	}
	for _, tt := range tests {
		if got := m.ChunkAtPixel(tt.px, tt.py); got != tt.want {
			t.Fatalf("ChunkAtPixel(%v,%v) = %v, want %v", tt.px, tt.py, got, tt.want)
		}
	}
}

func TestCollisionRectsFollowChunkLifecycle(t *testing.T) {
	gen := newStubGenerator(4)
	border := BorderData{Rects: []Rect{{X: -32, Y: -32, W: 32, H: 32}}}
	m := NewManager(42, 32, 4, 2, gen, border, nil)
	ctx := context.Background()

	if got := len(m.CollisionRects()); got != 1 {
		t.Fatalf("expected only the border rect before loading, got %d", got)
	}

	if _, _, err := m.UpdateChunks(ctx, 0, 0); err != nil {
		t.Fatalf("update chunks: %v", err)
	}
	// 25 chunks with one tree each, plus the border rect.
	if got := len(m.CollisionRects()); got != 26 {
		t.Fatalf("expected 26 rects with chunks loaded, got %d", got)
	}

	if _, _, err := m.UpdateChunks(ctx, 100*32*4, 100*32*4); err != nil {
		t.Fatalf("update chunks far away: %v", err)
	}
	// The old window is gone; the new one contributes its own 25 trees.
	rects := m.CollisionRects()
	if got := len(rects); got != 26 {
		t.Fatalf("expected 26 rects after window move, got %d", got)
	}
	found := false
	for _, r := range rects {
		if r == border.Rects[0] {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("border rect missing from snapshot")
	}
}

func TestSpawnPointsLandOnGrass(t *testing.T) {
	gen := newStubGenerator(4)
	m := newTestManager(gen, nil)
	ctx := context.Background()

	spawns, err := m.SpawnPoints(ctx)
	if err != nil {
		t.Fatalf("spawn points: %v", err)
	}
	if len(spawns) == 0 {
		t.Fatalf("expected at least one spawn point")
	}

	again, err := m.SpawnPoints(ctx)
	if err != nil {
		t.Fatalf("spawn points again: %v", err)
	}
	if !reflect.DeepEqual(spawns, again) {
		t.Fatalf("spawn points must be stable: %v vs %v", spawns, again)
	}

	origin, err := m.GetChunk(ctx, ChunkCoord{})
	if err != nil {
		t.Fatalf("origin chunk: %v", err)
	}
	for _, sp := range spawns {
		tx := sp.X / 32
		ty := sp.Y / 32
		tile, ok := origin.TileAt(tx, ty)
		if !ok {
			continue
		}
		if tile.Terrain != TerrainGrass {
			t.Fatalf("spawn %v is on %s, want grass", sp, tile.Terrain)
		}
	}

	center, err := m.CenteredSpawn(ctx)
	if err != nil {
		t.Fatalf("centered spawn: %v", err)
	}
	for _, sp := range spawns {
		cd := center.X*center.X + center.Y*center.Y
		sd := sp.X*sp.X + sp.Y*sp.Y
		if sd < cd {
			t.Fatalf("centered spawn %v is farther from origin than %v", center, sp)
		}
	}
}

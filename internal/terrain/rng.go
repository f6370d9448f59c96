package terrain

import "runicworld/internal/world"

// deterministicRNG is a per-chunk xorshift stream seeded from the world seed
// and the chunk coordinate. No RNG state is shared across chunks, so the
// generation order of chunks never changes their contents.
type deterministicRNG struct {
	state uint64
}

func newDeterministicRNG(x, y int, seed int64) *deterministicRNG {
	state := uint64(uint32(x))<<32 ^ uint64(uint32(y))<<1 ^ uint64(seed)
	if state == 0 {
		state = 0x9e3779b97f4a7c15
	}
	return &deterministicRNG{state: state}
}

func newChunkRNG(coord world.ChunkCoord, seed int64) *deterministicRNG {
	return newDeterministicRNG(coord.X, coord.Y, seed)
}

func (r *deterministicRNG) next() uint64 {
	r.state ^= r.state << 7
	r.state ^= r.state >> 9
	r.state ^= r.state << 8
	return r.state
}

func (r *deterministicRNG) nextInt(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.next() % uint64(n))
}

// nextFloat returns a value in [0,1).
func (r *deterministicRNG) nextFloat() float64 {
	return float64(r.next()&0xFFFFFF) / float64(1<<24)
}

// intBetween returns a value in [lo,hi] inclusive.
func (r *deterministicRNG) intBetween(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.nextInt(hi-lo+1)
}

func hash3(x, y, z int) uint32 {
	h := uint32(x*374761393 + y*668265263 + z*2147483647)
	h = (h ^ (h >> 13)) * 1274126177
	return h ^ (h >> 16)
}

// positionDraw is a uniform [0,1) draw derived purely from a world position
// and the seed. Border placement uses it so the result is independent of
// iteration order.
func positionDraw(x, y int, seed int64) float64 {
	return float64(hash3(x, y, int(seed))&0xFFFFFF) / float64(1<<24)
}

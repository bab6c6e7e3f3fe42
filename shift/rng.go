package shift

import (
	"hash/fnv"
	"math/rand"
)

// Rand is the subset of *rand.Rand the generators draw from.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Streams drawing from their own RNG partition. Draining one stream never
// shifts the draws of another.
const (
	StreamRoster  = "roster"
	StreamRobots  = "robots"
	StreamPickers = "pickers"
	StreamCarts   = "carts"
	StreamOrders  = "orders"
)

// PartitionedRNG hands out one deterministically seeded *rand.Rand per stream.
//
// The roster stream uses the seed directly; every other stream uses
// seed XOR fnv1a64(stream). Not safe for concurrent use.
type PartitionedRNG struct {
	seed    int64
	streams map[string]*rand.Rand
}

func NewPartitionedRNG(seed int64) *PartitionedRNG {
	return &PartitionedRNG{seed: seed, streams: make(map[string]*rand.Rand)}
}

// For returns the RNG for the named stream, creating it on first use.
func (p *PartitionedRNG) For(stream string) *rand.Rand {
	if r, ok := p.streams[stream]; ok {
		return r
	}
	derived := p.seed
	if stream != StreamRoster {
		derived = p.seed ^ fnv1a64(stream)
	}
	r := rand.New(rand.NewSource(derived))
	p.streams[stream] = r
	return r
}

func (p *PartitionedRNG) Seed() int64 { return p.seed }

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}

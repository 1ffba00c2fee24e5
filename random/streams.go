// Package random hands out the random streams of a run. A run has one master
// seed; every consumer gets its own stream derived from it, created once and
// reused, so samples within a stream stay independent and a fixed seed
// reproduces a run bit for bit.
package random

import (
	"hash/fnv"
	"math/rand/v2"
)

const (
	// StreamGenerator feeds the built-in event gun.
	StreamGenerator = "generator"

	// StreamSmearing feeds every detector-resolution sample.
	StreamSmearing = "smearing"
)

// Streams derives named streams from a master seed.
//
// Not safe for concurrent use.
type Streams struct {
	seed    uint64
	streams map[string]*rand.Rand
}

// NewSeed draws a master seed from the runtime's OS-seeded source.
func NewSeed() uint64 {
	for {
		if s := rand.Uint64(); s != 0 {
			return s
		}
	}
}

// New returns the streams of a run seeded with seed.
func New(seed uint64) *Streams {
	return &Streams{
		seed:    seed,
		streams: make(map[string]*rand.Rand),
	}
}

// Seed returns the master seed.
func (s *Streams) Seed() uint64 {
	return s.seed
}

// Get returns the stream called name. The same name always yields the same
// *rand.Rand.
func (s *Streams) Get(name string) *rand.Rand {
	if r, ok := s.streams[name]; ok {
		return r
	}
	r := rand.New(rand.NewPCG(s.seed, fnv1a64(name)))
	s.streams[name] = r
	return r
}

func fnv1a64(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

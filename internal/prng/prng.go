// Package prng provides the small deterministic generator that every part of a
// station session draws from, so a whole session is reproducible from its seed.
//
// A Source is not safe for concurrent use. It is owned by the session's event
// loop like the rest of the simulation state.
package prng

import (
	"math"
	"time"
)

// resolution is the number of distinct values Float can return.
const resolution = 10000

// Source is a 32-bit xorshift generator.
type Source struct {
	state uint32
	seed  uint32
}

// New creates a Source. A zero seed would make xorshift stall at zero forever,
// so it is replaced by 1.
func New(seed uint32) *Source {
	if seed == 0 {
		seed = 1
	}
	return &Source{state: seed, seed: seed}
}

// Seed returns the effective seed the Source was created with.
func (s *Source) Seed() uint32 {
	return s.seed
}

// Float returns the next value in [0, 1) with a resolution of 1e-4.
func (s *Source) Float() float64 {
	x := s.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	s.state = x
	return float64(x%resolution) / resolution
}

// Range returns a value in [min, max).
func (s *Source) Range(min, max float64) float64 {
	return min + (max-min)*s.Float()
}

// Int returns a rounded value in [min, max].
func (s *Source) Int(min, max int) int {
	return int(math.Round(float64(min) + float64(max-min)*s.Float()))
}

// Duration returns a rounded millisecond duration in [min, max].
func (s *Source) Duration(min, max time.Duration) time.Duration {
	return time.Duration(s.Int(int(min.Milliseconds()), int(max.Milliseconds()))) * time.Millisecond
}

// Chance reports whether the next draw falls below p.
func (s *Source) Chance(p float64) bool {
	return s.Float() < p
}

// Jitter returns a symmetric perturbation in [-amplitude/2, amplitude/2).
func (s *Source) Jitter(amplitude float64) float64 {
	return (s.Float() - 0.5) * amplitude
}

// PickIndex returns an index in [0, n), or -1 when n is zero.
func (s *Source) PickIndex(n int) int {
	if n <= 0 {
		return -1
	}
	return int(s.Float() * float64(n))
}

// PickOne returns a random element of list. ok is false for an empty list.
func PickOne[T any](s *Source, list []T) (v T, ok bool) {
	idx := s.PickIndex(len(list))
	if idx < 0 {
		return v, false
	}
	return list[idx], true
}

// PickUnique draws up to count elements without replacement. The input slice is
// not modified.
func PickUnique[T any](s *Source, list []T, count int) []T {
	pool := make([]T, len(list))
	copy(pool, list)

	out := make([]T, 0, min(count, len(pool)))
	for len(pool) > 0 && len(out) < count {
		idx := s.PickIndex(len(pool))
		out = append(out, pool[idx])
		pool = append(pool[:idx], pool[idx+1:]...)
	}
	return out
}

// SessionSeed mixes the low bits of the wall clock with cheap ambient entropy
// from the viewer's environment.
func SessionSeed(now time.Time, viewportWidth, pathLen int) uint32 {
	low := uint32(now.UnixMilli() & 0xffff)
	return low ^ (uint32(pathLen) << 6) ^ (uint32(viewportWidth) << 1)
}

// Derive returns the seed of an independent stream of a session. Stream 0 is
// the session seed itself.
func Derive(seed uint32, stream uint32) uint32 {
	d := seed ^ (stream * 0x9e3779b9)
	if d == 0 {
		d = 1
	}
	return d
}

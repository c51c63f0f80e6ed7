// Package deck holds the pure card-pool mechanics: uniform shuffling,
// deck cuts and pop-front draws over card indexes. All randomness flows
// through a Source so dealing is deterministic under test.
package deck

import "math/rand"

// Source is the randomness a deck operation needs. *rand.Rand satisfies
// it; Global adapts the shared top-level generator.
type Source interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

type globalSource struct{}

func (globalSource) Intn(n int) int                     { return rand.Intn(n) }
func (globalSource) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// Global returns a Source backed by math/rand's shared generator, which
// is safe for concurrent use.
func Global() Source { return globalSource{} }

// Shuffle performs a uniform Fisher-Yates shuffle in place.
func Shuffle(rng Source, indexes []string) {
	rng.Shuffle(len(indexes), func(i, j int) {
		indexes[i], indexes[j] = indexes[j], indexes[i]
	})
}

// Cut splits the deck at a randomized near-center position and swaps the
// halves. variance bounds how far from center the cut lands.
func Cut(rng Source, indexes []string, variance int) []string {
	if len(indexes) < 2 {
		return indexes
	}
	cv := variance
	if cv > len(indexes) {
		cv = len(indexes)
	}
	if cv < 1 {
		cv = 1
	}
	pos := rng.Intn(cv) + (len(indexes)-cv)/2
	out := make([]string, 0, len(indexes))
	out = append(out, indexes[pos:]...)
	out = append(out, indexes[:pos]...)
	return out
}

// Prepare combines index groups into one pool and runs three shuffle
// passes with a cut between each, mirroring how a physical deck gets
// mixed before play.
func Prepare(rng Source, groups ...[]string) []string {
	var pool []string
	for _, g := range groups {
		pool = append(pool, g...)
	}
	for pass := 0; pass < 3; pass++ {
		pool = Cut(rng, pool, 10)
		Shuffle(rng, pool)
	}
	return pool
}

// DrawN removes up to n indexes off the front of the pool and returns
// the drawn indexes together with what remains. An exhausted pool yields
// fewer indexes than requested.
func DrawN(pool []string, n int) (drawn, rest []string) {
	if n < 0 {
		n = 0
	}
	if n > len(pool) {
		n = len(pool)
	}
	drawn = make([]string, n)
	copy(drawn, pool[:n])
	rest = pool[n:]
	return drawn, rest
}

// DrawOne removes the top index from the pool. ok is false when the pool
// is exhausted.
func DrawOne(pool []string) (index string, rest []string, ok bool) {
	if len(pool) == 0 {
		return "", pool, false
	}
	return pool[0], pool[1:], true
}

// Package sgns implements streaming skip-gram with negative sampling
// (C11): a sliding window over a token stream, a unigram reservoir sampler
// supplying negatives, and an Active-Set-like update against a Count-Sketch
// of string-pair weights mediated by a top-k heap keyed by (string, string).
package sgns

import "math/rand"

// TokenReservoir is a uniform-over-slots reservoir sampler: each of the R
// reservoir positions holds one token, filled by the standard Algorithm R
// scheme. A token occupying more than one position is proportionally more
// likely to be sampled, giving "weight proportional to reservoir
// multiplicity" as the spec requires. The original source backs this with
// an explicit key->slot map and free-slot stack to avoid storing duplicate
// token bytes; since Go strings are immutable and already share backing
// storage on assignment, this reimplementation keeps the refcount
// bookkeeping (for the same duplicate-consolidation semantics on eviction)
// without a separate interning table.
type TokenReservoir struct {
	capacity  int
	n         uint64
	positions []string
	refcount  map[string]int
	rng       *rand.Rand
}

// NewTokenReservoir builds a reservoir of the given capacity, seeded for
// reproducible sampling.
func NewTokenReservoir(capacity int, seed int64) *TokenReservoir {
	return &TokenReservoir{
		capacity: capacity,
		refcount: make(map[string]int),
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Update feeds one token from the stream into the reservoir.
func (r *TokenReservoir) Update(token string) {
	r.n++
	if len(r.positions) < r.capacity {
		r.positions = append(r.positions, token)
		r.refcount[token]++
		return
	}

	idx := r.rng.Int63n(int64(r.n))
	if idx >= int64(r.capacity) {
		return
	}

	displaced := r.positions[idx]
	r.refcount[displaced]--
	if r.refcount[displaced] == 0 {
		delete(r.refcount, displaced)
	}
	r.positions[idx] = token
	r.refcount[token]++
}

// Sample draws one token uniformly over the occupied reservoir positions.
// Returns "" if the reservoir is empty.
func (r *TokenReservoir) Sample() string {
	if len(r.positions) == 0 {
		return ""
	}
	return r.positions[r.rng.Intn(len(r.positions))]
}

// Len returns the number of occupied reservoir positions.
func (r *TokenReservoir) Len() int { return len(r.positions) }

// Package wmhash provides the hash family shared by every sketch in this
// module: a pairwise-independent polynomial hash and a tabulation hash, both
// producing depth independent 32-bit outputs per key from one call, plus a
// MurmurHash3-32-based pair key for the string-pair sketches used by SGNS.
package wmhash

import (
	"math/rand"

	"github.com/spaolacci/murmur3"
)

// MaxLog2Width is the largest log2(width) this module allows for any sketch
// table. The original source permits log2_width up to 31 for some tables,
// which lets the sign bit (bit 31, used by Count-Sketch) overlap with the
// bucket-index mask. Capping at 30 keeps the high bit free for sign use in
// every sketch, uniformly.
const MaxLog2Width = 30

// mersennePrime31 is 2^31 - 1, the modulus for the pairwise polynomial hash.
const mersennePrime31 = uint64(1<<31 - 1)

// Pairwise is a 2-independent hash family: depth independent affine maps
// x -> (a*x + b) mod (2^31 - 1), each seeded by its own (a, b) drawn at
// construction.
type Pairwise struct {
	a, b []uint64
}

// NewPairwise draws depth independent (a, b) pairs from rng. a is drawn
// nonzero so that the map is never degenerate.
func NewPairwise(depth int, rng *rand.Rand) *Pairwise {
	p := &Pairwise{
		a: make([]uint64, depth),
		b: make([]uint64, depth),
	}
	for i := 0; i < depth; i++ {
		a := rng.Uint64() % mersennePrime31
		for a == 0 {
			a = rng.Uint64() % mersennePrime31
		}
		p.a[i] = a
		p.b[i] = rng.Uint64() % mersennePrime31
	}
	return p
}

// Depth returns the number of independent outputs produced per call.
func (p *Pairwise) Depth() int { return len(p.a) }

// Hash fills out[0:depth] with the depth independent hash values for x.
func (p *Pairwise) Hash(x uint32, out []uint32) {
	xx := uint64(x)
	for i, a := range p.a {
		r := a*xx + p.b[i]
		r = fold31(r)
		out[i] = uint32(r)
	}
}

// fold31 reduces r modulo 2^31-1 using the standard fold trick. A 32-bit key
// times a < 2^31-1 can exceed (2^31-1)^2, so the fold is applied twice, which
// fully reduces any r below 2^64.
func fold31(r uint64) uint64 {
	r = (r >> 31) + (r & mersennePrime31)
	r = (r >> 31) + (r & mersennePrime31)
	if r >= mersennePrime31 {
		r -= mersennePrime31
	}
	return r
}

// Tabulation is a simple tabulation hash: the 32-bit key is split into four
// 8-bit chunks, and depth independent outputs are the per-row XOR of the
// four chunk-indexed table words.
type Tabulation struct {
	depth int
	// table[c][v] holds depth words for chunk c, chunk value v.
	table [4][256][]uint32
}

// NewTabulation draws the 4*256*depth word table from rng.
func NewTabulation(depth int, rng *rand.Rand) *Tabulation {
	t := &Tabulation{depth: depth}
	for c := 0; c < 4; c++ {
		for v := 0; v < 256; v++ {
			row := make([]uint32, depth)
			for d := 0; d < depth; d++ {
				row[d] = rng.Uint32()
			}
			t.table[c][v] = row
		}
	}
	return t
}

// Depth returns the number of independent outputs produced per call.
func (t *Tabulation) Depth() int { return t.depth }

// Hash fills out[0:depth] with the depth independent hash values for x.
func (t *Tabulation) Hash(x uint32, out []uint32) {
	b0 := t.table[0][byte(x)]
	b1 := t.table[1][byte(x>>8)]
	b2 := t.table[2][byte(x>>16)]
	b3 := t.table[3][byte(x>>24)]
	for d := 0; d < t.depth; d++ {
		out[d] = b0[d] ^ b1[d] ^ b2[d] ^ b3[d]
	}
}

// PairKey hashes a non-commutative key for a string pair (a, b), combining
// MurmurHash3-32 of each side as 101*h(a) + h(b), matching the pairing used
// by streaming SGNS to key its Count-Sketch.
func PairKey(a, b string, seed uint32) uint64 {
	ha := murmur3.Sum32WithSeed([]byte(a), seed)
	hb := murmur3.Sum32WithSeed([]byte(b), seed)
	return 101*uint64(ha) + uint64(hb)
}

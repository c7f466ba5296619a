// Package countsketch implements the signed Count-Sketch: a depth x width
// table of float32 cells supporting unbiased estimation of signed weights via
// a median-of-means query. Row hashing and sign derivation are exposed
// separately from reads and updates so callers (the Weight-Median Sketch) can
// share one hash pass across a forward read and a backward update.
package countsketch

import (
	"errors"
	"math/rand"
	"sort"

	"wmsketch.dev/internal/wmhash"
)

// ErrInvalidConfig is returned when sketch dimensions are out of range.
var ErrInvalidConfig = errors.New("countsketch: invalid configuration")

// CountSketch is a depth x width table of float32 cells, one flat slice with
// row d occupying cells[d*width : (d+1)*width].
type CountSketch struct {
	depth     int
	width     uint32
	widthMask uint32
	cells     []float32
	hash      *wmhash.Tabulation
}

// New builds a Count-Sketch with 2^log2Width columns and depth rows.
func New(log2Width, depth int, seed int64) (*CountSketch, error) {
	if log2Width <= 0 || log2Width > wmhash.MaxLog2Width || depth <= 0 {
		return nil, ErrInvalidConfig
	}
	width := uint32(1) << uint(log2Width)
	rng := rand.New(rand.NewSource(seed))
	return &CountSketch{
		depth:     depth,
		width:     width,
		widthMask: width - 1,
		cells:     make([]float32, uint64(width)*uint64(depth)),
		hash:      wmhash.NewTabulation(depth, rng),
	}, nil
}

// Depth returns the number of rows.
func (c *CountSketch) Depth() int { return c.depth }

// HashKey fills idx[d] with the bucket index and sign[d] with +1/-1 for key
// in row d. Both slices must have length Depth(). The high bit of the raw
// hash output is the sign; the low log2(width) bits (masked by widthMask)
// are the bucket index — disjoint bit ranges because sketches in this module
// are capped at wmhash.MaxLog2Width.
func (c *CountSketch) HashKey(key uint32, idx []uint32, sign []float32) {
	raw := idx // reuse idx as scratch for the raw hash before masking
	c.hash.Hash(key, raw)
	for d, h := range raw {
		if h&0x80000000 != 0 {
			sign[d] = -1
		} else {
			sign[d] = 1
		}
		idx[d] = h & c.widthMask
	}
}

// ReadRows fills out[d] with sign[d] * cell(d, idx[d]) for precomputed idx/sign.
func (c *CountSketch) ReadRows(idx []uint32, sign []float32, out []float32) {
	for d := 0; d < c.depth; d++ {
		out[d] = sign[d] * c.cells[uint32(d)*c.width+idx[d]]
	}
}

// UpdateRows adds sign[d]*delta to cell(d, idx[d]) for precomputed idx/sign.
func (c *CountSketch) UpdateRows(idx []uint32, sign []float32, delta float32) {
	for d := 0; d < c.depth; d++ {
		c.cells[uint32(d)*c.width+idx[d]] += sign[d] * delta
	}
}

// Median returns the median of reads, which must have length Depth(). The
// input slice is sorted in place. For an even count, the two middle values
// are averaged.
func Median(reads []float32) float32 {
	sort.Slice(reads, func(i, j int) bool { return reads[i] < reads[j] })
	n := len(reads)
	if n%2 == 0 {
		return (reads[n/2-1] + reads[n/2]) / 2
	}
	return reads[n/2]
}

// Get returns the median of the depth sign-corrected row reads for key.
func (c *CountSketch) Get(key uint32) float32 {
	idx := make([]uint32, c.depth)
	sign := make([]float32, c.depth)
	reads := make([]float32, c.depth)
	c.HashKey(key, idx, sign)
	c.ReadRows(idx, sign, reads)
	return Median(reads)
}

// Update adds sign_d(key)*delta to the indexed cell in every row.
func (c *CountSketch) Update(key uint32, delta float32) {
	idx := make([]uint32, c.depth)
	sign := make([]float32, c.depth)
	c.HashKey(key, idx, sign)
	c.UpdateRows(idx, sign, delta)
}

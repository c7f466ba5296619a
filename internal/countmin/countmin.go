// Package countmin implements the Count-Min sketch: a depth x width table of
// non-negative counters supporting approximate frequency estimation with
// one-sided (upward) error, plus its conservative-update variant.
package countmin

import (
	"errors"
	"math/rand"

	"wmsketch.dev/internal/wmhash"
)

// ErrInvalidConfig is returned when sketch dimensions are out of range.
var ErrInvalidConfig = errors.New("countmin: invalid configuration")

// CountMin is a depth x width table of uint32 counters, backed by one flat
// slice with row offsets computed arithmetically (row d occupies
// cells[d*width : (d+1)*width]).
type CountMin struct {
	depth       int
	width       uint32
	widthMask   uint32
	conservative bool
	cells       []uint32
	hash        *wmhash.Pairwise
	scratch     []uint32
}

// New builds a Count-Min sketch with 2^log2Width columns and depth rows.
// When conservative is true, updates use the conservative-update rule.
func New(log2Width, depth int, conservative bool, seed int64) (*CountMin, error) {
	if log2Width <= 0 || log2Width > wmhash.MaxLog2Width || depth <= 0 {
		return nil, ErrInvalidConfig
	}
	width := uint32(1) << uint(log2Width)
	rng := rand.New(rand.NewSource(seed))
	return &CountMin{
		depth:        depth,
		width:        width,
		widthMask:    width - 1,
		conservative: conservative,
		cells:        make([]uint32, uint64(width)*uint64(depth)),
		hash:         wmhash.NewPairwise(depth, rng),
		scratch:      make([]uint32, depth),
	}, nil
}

// Width returns the number of columns.
func (c *CountMin) Width() uint32 { return c.width }

// Depth returns the number of rows.
func (c *CountMin) Depth() int { return c.depth }

func (c *CountMin) indices(key uint32) []uint32 {
	c.hash.Hash(key, c.scratch)
	return c.scratch
}

// Update increments the cells for key by one and returns the post-update
// estimate. With conservative update, only cells below the new floor
// min+1 are raised, and the returned estimate is that floor.
func (c *CountMin) Update(key uint32) uint32 {
	idx := c.indices(key)

	if !c.conservative {
		var minVal uint32 = ^uint32(0)
		for d, h := range idx {
			off := uint32(d)*c.width + (h & c.widthMask)
			c.cells[off]++
			if c.cells[off] < minVal {
				minVal = c.cells[off]
			}
		}
		return minVal
	}

	var minVal uint32 = ^uint32(0)
	offs := make([]uint32, c.depth)
	for d, h := range idx {
		off := uint32(d)*c.width + (h & c.widthMask)
		offs[d] = off
		if c.cells[off] < minVal {
			minVal = c.cells[off]
		}
	}
	target := minVal + 1
	for _, off := range offs {
		if c.cells[off] < target {
			c.cells[off] = target
		}
	}
	return target
}

// Get returns the current estimate for key without mutating the sketch.
func (c *CountMin) Get(key uint32) uint32 {
	idx := c.indices(key)
	var minVal uint32 = ^uint32(0)
	for d, h := range idx {
		off := uint32(d)*c.width + (h & c.widthMask)
		if c.cells[off] < minVal {
			minVal = c.cells[off]
		}
	}
	return minVal
}

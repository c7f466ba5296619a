// Package pairedcms implements the paired Count-Min ratio estimator (C7):
// two half-width Count-Min tables, one counting positive-label occurrences
// and one counting negative-label occurrences, whose ratio approximates a
// feature's log-odds contribution.
package pairedcms

import (
	"wmsketch.dev/internal/countmin"
)

// PairedCountMin holds a numerator (positive-label) and denominator
// (negative-label) Count-Min table plus per-class totals.
type PairedCountMin struct {
	num, den       *countmin.CountMin
	posCount       uint64
	negCount       uint64
	smooth         float64
}

// New builds a PairedCountMin with half-width log2Width-1 Count-Min tables
// (the spec calls these "two Count-Min tables of half width"), depth rows,
// and Laplace smoothing constant smooth.
func New(log2Width, depth int, smooth float64, seed int64) (*PairedCountMin, error) {
	halfLog2Width := log2Width - 1
	if halfLog2Width < 1 {
		halfLog2Width = 1
	}
	num, err := countmin.New(halfLog2Width, depth, false, seed)
	if err != nil {
		return nil, err
	}
	den, err := countmin.New(halfLog2Width, depth, false, seed+1)
	if err != nil {
		return nil, err
	}
	return &PairedCountMin{num: num, den: den, smooth: smooth}, nil
}

// Update records one example under label y (0 or 1), bumping the class
// totals exactly once per example, and returns the predicted label implied
// by the current global bias: 1 when the class-balance ratio Bias() is at
// least 1 (a non-negative log bias), else 0. The original source hard-codes
// this return value behind a `// TODO`; per the spec's open-question
// resolution, this reimplementation returns that bias-derived label instead
// of a dead constant.
func (p *PairedCountMin) Update(y int) int {
	if y == 1 {
		p.posCount++
	} else {
		p.negCount++
	}
	if p.Bias() >= 1 {
		return 1
	}
	return 0
}

// UpdateFeature records one occurrence of key under label y in the
// corresponding Count-Min table, without touching the class totals. Call
// once per active feature in an example, alongside a single Update call for
// the example itself.
func (p *PairedCountMin) UpdateFeature(key uint32, y int) {
	if y == 1 {
		p.num.Update(key)
	} else {
		p.den.Update(key)
	}
}

// Bias returns the raw (pos+s)/(neg+s) class-balance ratio.
func (p *PairedCountMin) Bias() float64 {
	s := p.smooth
	return (float64(p.posCount) + s) / (float64(p.negCount) + s)
}

// Get returns the smoothed ratio-of-counts estimate for key, divided by the
// global class-balance bias so the result approximates a per-feature
// contribution rather than an absolute frequency ratio.
func (p *PairedCountMin) Get(key uint32) float64 {
	s := p.smooth
	num := float64(p.num.Get(key)) + s
	den := float64(p.den.Get(key)) + s
	return (num / den) / p.Bias()
}

// Package wmsketch implements the Weight-Median Sketch (C8): a signed
// Count-Sketch composed with the scale-factored online logistic core to
// approximate a logistic-regression weight vector in sublinear memory. The
// reported weight of a feature (Weight) is scale times the median of its
// sign-corrected row reads; the forward pass summarizes those reads with the
// mean, or with the median in median-update mode.
package wmsketch

import (
	"wmsketch.dev/internal/countsketch"
	"wmsketch.dev/internal/dataset"
	"wmsketch.dev/internal/logistic"
)

// WMSketch is the sketched logistic classifier.
type WMSketch struct {
	cs           *countsketch.CountSketch
	bias         float32
	scale        float32
	t            uint64
	lrInit       float64
	l2Reg        float64
	noBias       bool
	medianUpdate bool
}

// New builds a WMSketch over a Count-Sketch of 2^log2Width columns and depth
// rows. When medianUpdate is true the forward pass summarizes each feature's
// row reads with the median instead of the mean; the backward update always
// touches all depth cells for every active coordinate regardless of mode.
func New(log2Width, depth int, lrInit, l2Reg float64, noBias, medianUpdate bool, seed int64) (*WMSketch, error) {
	cs, err := countsketch.New(log2Width, depth, seed)
	if err != nil {
		return nil, err
	}
	return &WMSketch{
		cs:           cs,
		scale:        1,
		lrInit:       lrInit,
		l2Reg:        l2Reg,
		noBias:       noBias,
		medianUpdate: medianUpdate,
	}, nil
}

// Bias returns the current bias term.
func (s *WMSketch) Bias() float32 { return s.bias }

// Scale returns the current scale factor.
func (s *WMSketch) Scale() float32 { return s.scale }

// Step returns the current step counter.
func (s *WMSketch) Step() uint64 { return s.t }

// Weight returns the standalone sketch estimate scale * median_i(sign_i *
// cell_i) for a single feature, independent of any in-flight forward pass.
func (s *WMSketch) Weight(key uint32) float32 {
	return s.scale * s.cs.Get(key)
}

// RawGet returns the unscaled median_i(sign_i * cell_i) for a single
// feature, i.e. Weight(key) / scale. Top-k heaps keyed on the sketch keep
// this raw value so that top-k emission can apply scale uniformly at
// reporting time, matching every other variant's heap convention.
func (s *WMSketch) RawGet(key uint32) float32 {
	return s.cs.Get(key)
}

func (s *WMSketch) summarize(reads []float32) float32 {
	if s.medianUpdate {
		buf := append([]float32(nil), reads...)
		return countsketch.Median(buf)
	}
	var sum float32
	for _, r := range reads {
		sum += r
	}
	return sum / float32(len(reads))
}

// Dot returns scale * sum_i x_i * summary_i(row-reads(k_i)), the weighted
// sum before bias is added.
func (s *WMSketch) Dot(x []dataset.Feature) float32 {
	depth := s.cs.Depth()
	idx := make([]uint32, depth)
	sign := make([]float32, depth)
	reads := make([]float32, depth)

	var sum float32
	for _, f := range x {
		s.cs.HashKey(f.Index, idx, sign)
		s.cs.ReadRows(idx, sign, reads)
		sum += s.summarize(reads) * f.Value
	}
	return s.scale * sum
}

// Predict returns z = Dot(x) + bias and the predicted class (z >= 0).
func (s *WMSketch) Predict(x []dataset.Feature) (z float32, class int) {
	z = s.Dot(x) + s.bias
	if z >= 0 {
		return z, 1
	}
	return z, 0
}

// featureHash caches the per-feature row hash so the backward pass below
// reuses the exact hash pass the forward pass already computed.
type featureHash struct {
	idx  []uint32
	sign []float32
}

// Update performs one scale-factored SGD step for label y in {0,1}. The
// forward and backward passes share one hash computation per active
// feature: each feature's (bucket, sign) pair is computed once and reused
// both to read the summary value for z and to apply the gradient delta.
func (s *WMSketch) Update(x []dataset.Feature, y int) (z float32, lr, grad float64) {
	depth := s.cs.Depth()
	reads := make([]float32, depth)
	caches := make([]featureHash, len(x))

	var sum float32
	for i, f := range x {
		idx := make([]uint32, depth)
		sign := make([]float32, depth)
		s.cs.HashKey(f.Index, idx, sign)
		s.cs.ReadRows(idx, sign, reads)
		sum += s.summarize(reads) * f.Value
		caches[i] = featureHash{idx: idx, sign: sign}
	}
	z = s.scale*sum + s.bias

	yPM := 2*y - 1
	lr = logistic.LearningRate(s.lrInit, s.l2Reg, s.t)
	grad = logistic.Grad(float64(yPM), float64(z))

	s.scale = logistic.ShrinkScale(s.scale, lr, s.l2Reg)

	coef := float32(lr * float64(yPM) * grad / float64(s.scale))
	for i, f := range x {
		s.cs.UpdateRows(caches[i].idx, caches[i].sign, -coef*f.Value)
	}

	if !s.noBias {
		s.bias -= float32(lr * float64(yPM) * grad)
	}
	s.t++

	return z, lr, grad
}

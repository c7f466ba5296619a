// Package logistic implements the scale-factored online logistic SGD core
// (C5) and, since the original source uses the very same type as both the
// generic core and the dense top-k baseline (C6), doubles as that baseline:
// Dense holds a dense exact weight vector reparametrized as
// effective_w = scale * stored_w, folding L2 shrinkage into one
// multiplicative update on scale per step.
package logistic

import (
	"errors"
	"math"

	"wmsketch.dev/internal/dataset"
)

// ErrInvalidConfig is returned for a non-positive dimension or learning rate.
var ErrInvalidConfig = errors.New("logistic: invalid configuration")

// scaleFloor is the minimum value scale is allowed to decay to. The spec
// calls numeric degeneracy near scale=0 undefined behavior and recommends
// clamping 1 - lr*l2_reg to a positive floor; ShrinkScale clamps both that
// shrink factor and scale itself to this floor.
const scaleFloor = 1e-6

// Dense is a dense online logistic classifier: stored weight vector w, bias,
// and the scale factor such that effective_w = scale * w.
type Dense struct {
	w      []float32
	bias   float32
	scale  float32
	t      uint64
	lrInit float64
	l2Reg  float64
	noBias bool
}

// New builds a Dense logistic core over dim features.
func New(dim int, lrInit, l2Reg float64, noBias bool) (*Dense, error) {
	if dim <= 0 || lrInit <= 0 {
		return nil, ErrInvalidConfig
	}
	return &Dense{
		w:      make([]float32, dim),
		scale:  1,
		lrInit: lrInit,
		l2Reg:  l2Reg,
		noBias: noBias,
	}, nil
}

// Sigmoid is the standard logistic function.
func Sigmoid(x float32) float32 {
	return float32(1 / (1 + math.Exp(-float64(x))))
}

// Bias returns the current bias term.
func (d *Dense) Bias() float32 { return d.bias }

// Scale returns the current scale factor.
func (d *Dense) Scale() float32 { return d.scale }

// Step returns the current step counter.
func (d *Dense) Step() uint64 { return d.t }

// Weight returns the effective weight (scale * stored_w) for feature i.
func (d *Dense) Weight(i uint32) float32 {
	if int(i) >= len(d.w) {
		return 0
	}
	return d.scale * d.w[i]
}

// StoredWeight returns the raw stored weight (pre-scale) for feature i.
func (d *Dense) StoredWeight(i uint32) float32 {
	if int(i) >= len(d.w) {
		return 0
	}
	return d.w[i]
}

// Dot returns scale * <stored_w, x>, the weighted sum before the bias is
// added.
func (d *Dense) Dot(x []dataset.Feature) float32 {
	var sum float32
	for _, f := range x {
		if int(f.Index) < len(d.w) {
			sum += d.w[f.Index] * f.Value
		}
	}
	return d.scale * sum
}

// Predict returns z = Dot(x) + bias and the predicted class (z >= 0).
func (d *Dense) Predict(x []dataset.Feature) (z float32, class int) {
	z = d.Dot(x) + d.bias
	if z >= 0 {
		return z, 1
	}
	return z, 0
}

// LearningRate is lr_t = lr_init / (1 + lr_init*l2_reg*t), shared by every
// scale-factored SGD variant in this module.
func LearningRate(lrInit, l2Reg float64, t uint64) float64 {
	return lrInit / (1 + lrInit*l2Reg*float64(t))
}

func (d *Dense) learningRate() float64 {
	return LearningRate(d.lrInit, d.l2Reg, d.t)
}

// ShrinkScale applies the scale-factored L2 shrinkage step to scale, floored
// to avoid the degeneracy the spec calls out around scale -> 0.
func ShrinkScale(scale float32, lr, l2Reg float64) float32 {
	shrink := 1 - lr*l2Reg
	if shrink < scaleFloor {
		shrink = scaleFloor
	}
	scale *= float32(shrink)
	if scale < scaleFloor {
		scale = scaleFloor
	}
	return scale
}

// Update performs one scale-factored SGD step for label y in {0,1} and
// returns the pre-update forward value z (Dot(x) + bias, computed before any
// of the four update steps below run) together with the learning rate and
// gradient used, so sketch-based callers can reuse them.
func (d *Dense) Update(x []dataset.Feature, y int) (z float32, lr, grad float64) {
	z, _ = d.Predict(x)
	yPM := 2*y - 1
	lr = d.learningRate()
	grad = Grad(float64(yPM), float64(z))

	// 1. scale <- scale * (1 - lr*l2_reg), floored to avoid degeneracy.
	d.scale = ShrinkScale(d.scale, lr, d.l2Reg)

	// 2. stored_w[i] -= (lr*y*g/scale) * x_i for every active coordinate.
	coef := float32(lr * float64(yPM) * grad / float64(d.scale))
	for _, f := range x {
		if int(f.Index) < len(d.w) {
			d.w[f.Index] -= coef * f.Value
		}
	}

	// 3. bias -= lr*y*g, unless disabled.
	if !d.noBias {
		d.bias -= float32(lr * float64(yPM) * grad)
	}

	// 4. t <- t + 1.
	d.t++

	return z, lr, grad
}

// Grad is the logistic gradient g = -sigmoid(-y*z), shared by every
// scale-factored update in this module (dense, WM-Sketch, Active-Set).
func Grad(yPM, z float64) float64 {
	return -1 / (1 + math.Exp(yPM*z))
}

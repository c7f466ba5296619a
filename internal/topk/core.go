package topk

import "wmsketch.dev/internal/logistic"

// scaleState is the scale-factored logistic bookkeeping (bias, scale, step)
// shared by every variant in this package that doesn't already get it from a
// logistic.Dense or wmsketch.WMSketch: truncated_logistic,
// probtruncated_logistic, countmin_logistic, spacesaving_logistic, and the
// Active-Set estimator all hold their exact/approximate weights in a heap or
// sketch of their own but still need the same scale/bias/learning-rate
// machinery C5 defines.
type scaleState struct {
	bias   float32
	scale  float32
	t      uint64
	lrInit float64
	l2Reg  float64
	noBias bool
}

func newScaleState(lrInit, l2Reg float64, noBias bool) scaleState {
	return scaleState{scale: 1, lrInit: lrInit, l2Reg: l2Reg, noBias: noBias}
}

// step computes lr and grad for the given forward value z and label y,
// shrinks scale, and returns u = lr*yPM*grad/scale — the coefficient every
// variant multiplies by each active feature's x_i to get its weight delta.
// It also applies the bias update and advances t; callers run this after
// computing z but before touching their weight store.
func (s *scaleState) step(z float32, y int) (u float32, lr, grad float64) {
	yPM := signedLabel(y)
	lr = logistic.LearningRate(s.lrInit, s.l2Reg, s.t)
	grad = logistic.Grad(float64(yPM), float64(z))

	s.scale = logistic.ShrinkScale(s.scale, lr, s.l2Reg)

	u = float32(lr * float64(yPM) * grad / float64(s.scale))

	if !s.noBias {
		s.bias -= float32(lr * float64(yPM) * grad)
	}
	s.t++
	return u, lr, grad
}

package topk

import (
	"wmsketch.dev/internal/dataset"
	"wmsketch.dev/internal/heap"
)

// probTruncatedTopK is the "probtruncated_logistic" variant: truncated
// exactly like truncatedTopK, but the exact-weight store is a weighted
// reservoir (power Pow) instead of a plain |value|-heap, so retention is
// probabilistic rather than strictly magnitude-ordered.
type probTruncatedTopK struct {
	scaleState
	reservoir *heap.Reservoir[uint32]
}

func newProbTruncatedTopK(cfg Config) (*probTruncatedTopK, error) {
	rv, err := heap.NewReservoir[uint32](cfg.K, cfg.Pow, cfg.Seed)
	if err != nil {
		return nil, err
	}
	return &probTruncatedTopK{scaleState: newScaleState(cfg.LRInit, cfg.L2Reg, cfg.NoBias), reservoir: rv}, nil
}

func (e *probTruncatedTopK) dot(x []dataset.Feature) float32 {
	var sum float32
	for _, f := range x {
		if w, ok := e.reservoir.Get(f.Index); ok {
			sum += w * f.Value
		}
	}
	return e.scale * sum
}

func (e *probTruncatedTopK) Predict(x []dataset.Feature) int {
	return classify(e.dot(x) + e.bias)
}

func (e *probTruncatedTopK) Update(x []dataset.Feature, y int) {
	z := e.dot(x) + e.bias
	u, _, _ := e.step(z, y)

	for _, f := range x {
		if w, ok := e.reservoir.Get(f.Index); ok {
			_ = e.reservoir.ChangeVal(f.Index, w-u*f.Value)
			continue
		}
		e.reservoir.Insert(f.Index, -u*f.Value)
	}
}

func (e *probTruncatedTopK) TopK() []Entry {
	items := e.reservoir.Items()
	out := make([]Entry, len(items))
	for i, it := range items {
		out[i] = Entry{Index: it.Key, Weight: e.scale * it.Value}
	}
	return sortDescendingAbs(out)
}

func (e *probTruncatedTopK) Bias() float64 { return float64(e.bias) }

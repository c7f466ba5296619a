package topk

import (
	"wmsketch.dev/internal/dataset"
	"wmsketch.dev/internal/heap"
)

// truncatedTopK is the "truncated_logistic" variant: the heap is the only
// weight store. Features outside the heap contribute 0 to the forward pass,
// and admission is direct — a candidate computed from an assumed prior
// weight of 0 is simply offered to heap.Insert, with no sketch fallback for
// rejected features.
type truncatedTopK struct {
	scaleState
	heap *heap.ValueHeap[uint32]
}

func newTruncatedTopK(cfg Config) (*truncatedTopK, error) {
	hp, err := heap.New[uint32](cfg.K)
	if err != nil {
		return nil, err
	}
	return &truncatedTopK{scaleState: newScaleState(cfg.LRInit, cfg.L2Reg, cfg.NoBias), heap: hp}, nil
}

func (e *truncatedTopK) dot(x []dataset.Feature) float32 {
	var sum float32
	for _, f := range x {
		if w, ok := e.heap.Get(f.Index); ok {
			sum += w * f.Value
		}
	}
	return e.scale * sum
}

func (e *truncatedTopK) Predict(x []dataset.Feature) int {
	return classify(e.dot(x) + e.bias)
}

func (e *truncatedTopK) Update(x []dataset.Feature, y int) {
	z := e.dot(x) + e.bias
	u, _, _ := e.step(z, y)

	for _, f := range x {
		if w, ok := e.heap.Get(f.Index); ok {
			_ = e.heap.ChangeVal(f.Index, w-u*f.Value)
			continue
		}
		// Prior weight is implicitly 0; the candidate is one gradient step
		// from there. heap.Insert silently drops it if it's too small to
		// displace the current minimum.
		e.heap.Insert(f.Index, -u*f.Value)
	}
}

func (e *truncatedTopK) TopK() []Entry {
	items := e.heap.Items()
	out := make([]Entry, len(items))
	for i, it := range items {
		out[i] = Entry{Index: it.Key, Weight: e.scale * it.Value}
	}
	return sortDescendingAbs(out)
}

func (e *truncatedTopK) Bias() float64 { return float64(e.bias) }

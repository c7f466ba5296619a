package topk

import (
	"wmsketch.dev/internal/countmin"
	"wmsketch.dev/internal/dataset"
	"wmsketch.dev/internal/heap"
)

// countMinTopK is the "countmin_logistic" variant: admission is driven by
// occurrence count rather than weight magnitude. A count-ordered heap holds
// the exact logistic weight (as its auxiliary value) for the features
// currently believed frequent enough to matter; a Count-Min sketch tracks
// approximate occurrence counts for every feature so a non-resident
// feature's rising frequency can be compared against the heap's current
// minimum count.
type countMinTopK struct {
	scaleState
	heap *heap.CountHeap[uint32]
	cm   *countmin.CountMin
}

func newCountMinTopK(cfg Config) (*countMinTopK, error) {
	hp, err := heap.NewCountHeap[uint32](cfg.K)
	if err != nil {
		return nil, err
	}
	cm, err := countmin.New(cfg.Log2Width, cfg.Depth, cfg.ConsvUpdate, cfg.Seed)
	if err != nil {
		return nil, err
	}
	return &countMinTopK{scaleState: newScaleState(cfg.LRInit, cfg.L2Reg, cfg.NoBias), heap: hp, cm: cm}, nil
}

func (e *countMinTopK) dot(x []dataset.Feature) float32 {
	var sum float32
	for _, f := range x {
		if w, ok := e.heap.Aux(f.Index); ok {
			sum += w * f.Value
		}
	}
	return e.scale * sum
}

func (e *countMinTopK) Predict(x []dataset.Feature) int {
	return classify(e.dot(x) + e.bias)
}

func (e *countMinTopK) Update(x []dataset.Feature, y int) {
	z := e.dot(x) + e.bias
	u, _, _ := e.step(z, y)

	for _, f := range x {
		if w, ok := e.heap.Aux(f.Index); ok {
			_ = e.heap.IncrementCount(f.Index)
			_ = e.heap.SetAux(f.Index, w-u*f.Value)
			continue
		}

		count := e.cm.Update(f.Index)
		if !e.heap.Full() {
			e.heap.Insert(f.Index, uint64(count), -u*f.Value)
			continue
		}
		_, minCount, _, _ := e.heap.Min()
		if uint64(count) > minCount {
			e.heap.Insert(f.Index, uint64(count), -u*f.Value)
		}
	}
}

func (e *countMinTopK) TopK() []Entry {
	items := e.heap.Items()
	out := make([]Entry, len(items))
	for i, it := range items {
		out[i] = Entry{Index: it.Key, Weight: e.scale * it.Aux}
	}
	return sortDescendingAbs(out)
}

func (e *countMinTopK) Bias() float64 { return float64(e.bias) }

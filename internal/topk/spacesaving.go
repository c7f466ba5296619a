package topk

import (
	"math/rand"

	"wmsketch.dev/internal/dataset"
	"wmsketch.dev/internal/heap"
)

// spaceSavingTopK is the "spacesaving_logistic" variant: a count-ordered
// heap of bounded size implements classic SpaceSaving admission. Misses are
// counted locally within a single Update call (one example); at most one
// replacement is applied per example, after the per-feature loop, chosen
// with probability 1/miss_index among that example's misses. The replaced
// slot inherits min_count + 1, the standard SpaceSaving overestimate.
type spaceSavingTopK struct {
	scaleState
	heap *heap.CountHeap[uint32]
	rng  *rand.Rand
}

func newSpaceSavingTopK(cfg Config) (*spaceSavingTopK, error) {
	hp, err := heap.NewCountHeap[uint32](cfg.K)
	if err != nil {
		return nil, err
	}
	return &spaceSavingTopK{
		scaleState: newScaleState(cfg.LRInit, cfg.L2Reg, cfg.NoBias),
		heap:       hp,
		rng:        rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

func (e *spaceSavingTopK) dot(x []dataset.Feature) float32 {
	var sum float32
	for _, f := range x {
		if w, ok := e.heap.Aux(f.Index); ok {
			sum += w * f.Value
		}
	}
	return e.scale * sum
}

func (e *spaceSavingTopK) Predict(x []dataset.Feature) int {
	return classify(e.dot(x) + e.bias)
}

func (e *spaceSavingTopK) Update(x []dataset.Feature, y int) {
	z := e.dot(x) + e.bias
	u, _, _ := e.step(z, y)

	var missCount uint64
	var replaceIdx uint32
	var replaceVal float32
	haveReplacement := false

	for _, f := range x {
		if w, ok := e.heap.Aux(f.Index); ok {
			_ = e.heap.IncrementCount(f.Index)
			_ = e.heap.SetAux(f.Index, w-u*f.Value)
			continue
		}

		if !e.heap.Full() {
			e.heap.Insert(f.Index, 1, -u*f.Value)
			continue
		}

		missCount++
		if e.rng.Float64() < 1/float64(missCount) {
			replaceIdx = f.Index
			replaceVal = -u * f.Value
			haveReplacement = true
		}
	}

	if haveReplacement {
		_, minCount, _, _ := e.heap.Min()
		e.heap.ReplaceMin(replaceIdx, minCount+1, replaceVal)
	}
}

func (e *spaceSavingTopK) TopK() []Entry {
	items := e.heap.Items()
	out := make([]Entry, len(items))
	for i, it := range items {
		out[i] = Entry{Index: it.Key, Weight: e.scale * it.Aux}
	}
	return sortDescendingAbs(out)
}

func (e *spaceSavingTopK) Bias() float64 { return float64(e.bias) }

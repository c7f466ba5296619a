package topk

import (
	"sort"

	"wmsketch.dev/internal/countsketch"
	"wmsketch.dev/internal/dataset"
	"wmsketch.dev/internal/heap"
)

// activeSetTopK is the "activeset_logistic" hybrid (C10): the heap holds
// exact weights for the features currently believed most influential; the
// Count-Sketch approximates every other feature. A feature is represented
// in at most one of the two at a time — when a feature is promoted into the
// heap its sketch residual is left stale (the heap value supersedes it on
// reads); when demoted, its heap value is written back into the sketch as
// a delta so later sketch reads recover it.
type activeSetTopK struct {
	scaleState
	heap *heap.ValueHeap[uint32]
	sk   *countsketch.CountSketch
}

func newActiveSetTopK(cfg Config) (*activeSetTopK, error) {
	hp, err := heap.New[uint32](cfg.K)
	if err != nil {
		return nil, err
	}
	sk, err := countsketch.New(cfg.Log2Width, cfg.Depth, cfg.Seed)
	if err != nil {
		return nil, err
	}
	return &activeSetTopK{scaleState: newScaleState(cfg.LRInit, cfg.L2Reg, cfg.NoBias), heap: hp, sk: sk}, nil
}

func (e *activeSetTopK) dot(x []dataset.Feature) float32 {
	var sum float32
	for _, f := range x {
		if w, ok := e.heap.Get(f.Index); ok {
			sum += w * f.Value
		} else {
			sum += e.sk.Get(f.Index) * f.Value
		}
	}
	return e.scale * sum
}

func (e *activeSetTopK) Predict(x []dataset.Feature) int {
	return classify(e.dot(x) + e.bias)
}

type skDelta struct {
	key   uint32
	xi    float32
	newW  float32
}

// Update applies one scale-factored gradient step consistently across both
// the heap and the sketch, then reconciles the active set: sketch features
// whose updated weight is large enough, in descending |weight| order,
// attempt to enter the heap, promoting/demoting/self-evicting as needed.
func (e *activeSetTopK) Update(x []dataset.Feature, y int) {
	z := e.dot(x) + e.bias
	u, _, _ := e.step(z, y)

	var skFeats []skDelta
	for _, f := range x {
		if w, ok := e.heap.Get(f.Index); ok {
			_ = e.heap.ChangeVal(f.Index, w-u*f.Value)
			continue
		}
		w := e.sk.Get(f.Index)
		skFeats = append(skFeats, skDelta{key: f.Index, xi: f.Value, newW: w - u*f.Value})
	}

	sort.Slice(skFeats, func(i, j int) bool {
		return abs32(skFeats[i].newW) > abs32(skFeats[j].newW)
	})

	for _, d := range skFeats {
		evictedKey, evictedVal, evicted, err := e.heap.Insert(d.key, d.newW)
		if err != nil {
			// Duplicate: a prior iteration in this same pass already
			// promoted this key (cannot happen for distinct feature
			// indices in one example, but guarded defensively).
			continue
		}
		if !evicted {
			// Entered a non-full heap. The stale sketch residual for this
			// key is left as-is; the heap's exact value supersedes it.
			continue
		}
		if evictedKey == d.key {
			// Heap full and too small to displace: the attempt itself is
			// the evictee. Write the raw gradient delta into the sketch.
			e.sk.Update(d.key, -u*d.xi)
			continue
		}
		// A different feature was demoted. Write popped_w - sk.Get(popped_k)
		// so that a subsequent sketch read for popped_k recovers popped_w.
		delta := evictedVal - e.sk.Get(evictedKey)
		e.sk.Update(evictedKey, delta)
	}
}

func (e *activeSetTopK) TopK() []Entry {
	items := e.heap.Items()
	out := make([]Entry, len(items))
	for i, it := range items {
		out[i] = Entry{Index: it.Key, Weight: e.scale * it.Value}
	}
	return sortDescendingAbs(out)
}

func (e *activeSetTopK) Bias() float64 { return float64(e.bias) }

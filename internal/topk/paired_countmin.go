package topk

import (
	"wmsketch.dev/internal/dataset"
	"wmsketch.dev/internal/heap"
	"wmsketch.dev/internal/pairedcms"
)

// pairedCountMinTopK is the "paired_countmin" variant. Unlike the other six,
// it has no logistic SGD weight vector at all: the forward weight for a
// feature is the log of its paired-count ratio, which already approximates
// a log-odds contribution, and the reported bias is the log of the global
// class-balance ratio.
type pairedCountMinTopK struct {
	pcm  *pairedcms.PairedCountMin
	heap *heap.ValueHeap[uint32]
}

func newPairedCountMinTopK(cfg Config) (*pairedCountMinTopK, error) {
	pcm, err := pairedcms.New(cfg.Log2Width, cfg.Depth, cfg.CountSmooth, cfg.Seed)
	if err != nil {
		return nil, err
	}
	hp, err := heap.New[uint32](cfg.K)
	if err != nil {
		return nil, err
	}
	return &pairedCountMinTopK{pcm: pcm, heap: hp}, nil
}

func (e *pairedCountMinTopK) dot(x []dataset.Feature) float32 {
	var sum float32
	for _, f := range x {
		sum += float32(logf64(e.pcm.Get(f.Index))) * f.Value
	}
	return sum
}

// Predict implements the spec's open question resolution for
// PairedCountMinTopK.predict (the original hard-codes a stub return): we
// return the ordinary z >= 0 classification here, consistent with every
// other variant's contract, rather than a dead constant.
func (e *pairedCountMinTopK) Predict(x []dataset.Feature) int {
	return classify(e.dot(x) + float32(logf64(e.pcm.Bias())))
}

func (e *pairedCountMinTopK) Update(x []dataset.Feature, y int) {
	e.pcm.Update(y)
	for _, f := range x {
		e.pcm.UpdateFeature(f.Index, y)
		val := float32(logf64(e.pcm.Get(f.Index)))
		e.heap.InsertOrChange(f.Index, val)
	}
}

// TopK first refreshes every resident's heap value from the current
// paired-count ratio (the class-balance bias moves with every example), then
// emits. There is no scale to apply — paired_countmin's heap values are
// already the reported weights.
func (e *pairedCountMinTopK) TopK() []Entry {
	for _, it := range e.heap.Items() {
		_ = e.heap.ChangeVal(it.Key, float32(logf64(e.pcm.Get(it.Key))))
	}
	items := e.heap.Items()
	out := make([]Entry, len(items))
	for i, it := range items {
		out[i] = Entry{Index: it.Key, Weight: it.Value}
	}
	return sortDescendingAbs(out)
}

func (e *pairedCountMinTopK) Bias() float64 { return logf64(e.pcm.Bias()) }

package topk

import (
	"wmsketch.dev/internal/dataset"
	"wmsketch.dev/internal/heap"
	"wmsketch.dev/internal/wmsketch"
)

// logisticSketchTopK is the "logistic_sketch" variant: the WM-Sketch drives
// the forward pass; the heap is refreshed from fresh sketch reads right
// before top-k emission rather than kept exactly in sync on every step,
// since collisions from other keys can move a resident's sketch value
// between updates.
type logisticSketchTopK struct {
	sk   *wmsketch.WMSketch
	heap *heap.ValueHeap[uint32]
}

func newLogisticSketchTopK(cfg Config) (*logisticSketchTopK, error) {
	sk, err := wmsketch.New(cfg.Log2Width, cfg.Depth, cfg.LRInit, cfg.L2Reg, cfg.NoBias, cfg.MedianUpdate, cfg.Seed)
	if err != nil {
		return nil, err
	}
	hp, err := heap.New[uint32](cfg.K)
	if err != nil {
		return nil, err
	}
	return &logisticSketchTopK{sk: sk, heap: hp}, nil
}

func (e *logisticSketchTopK) Predict(x []dataset.Feature) int {
	_, class := e.sk.Predict(x)
	return class
}

func (e *logisticSketchTopK) Update(x []dataset.Feature, y int) {
	e.sk.Update(x, y)
	for _, f := range x {
		e.heap.InsertOrChange(f.Index, e.sk.RawGet(f.Index))
	}
}

// refresh re-reads the sketch for every heap resident, since the cells
// backing it may have moved due to collisions from unrelated keys.
func (e *logisticSketchTopK) refresh() {
	for _, it := range e.heap.Items() {
		_ = e.heap.ChangeVal(it.Key, e.sk.RawGet(it.Key))
	}
}

func (e *logisticSketchTopK) TopK() []Entry {
	e.refresh()
	items := e.heap.Items()
	scale := e.sk.Scale()
	out := make([]Entry, len(items))
	for i, it := range items {
		out[i] = Entry{Index: it.Key, Weight: scale * it.Value}
	}
	return sortDescendingAbs(out)
}

func (e *logisticSketchTopK) Bias() float64 { return float64(e.sk.Bias()) }

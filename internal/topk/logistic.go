package topk

import (
	"wmsketch.dev/internal/dataset"
	"wmsketch.dev/internal/heap"
	"wmsketch.dev/internal/logistic"
)

// logisticTopK is the "logistic" variant: an exact dense weight vector,
// with an indexed |value|-heap populated from the updated coordinates of
// each step purely for top-k reporting (it does not influence the forward
// pass, which always reads the dense vector directly).
type logisticTopK struct {
	dense *logistic.Dense
	heap  *heap.ValueHeap[uint32]
}

func newLogisticTopK(cfg Config) (*logisticTopK, error) {
	dense, err := logistic.New(cfg.Dim, cfg.LRInit, cfg.L2Reg, cfg.NoBias)
	if err != nil {
		return nil, err
	}
	k := cfg.K
	if k == 0 {
		k = cfg.Dim
	}
	hp, err := heap.New[uint32](k)
	if err != nil {
		return nil, err
	}
	return &logisticTopK{dense: dense, heap: hp}, nil
}

func (e *logisticTopK) Predict(x []dataset.Feature) int {
	_, class := e.dense.Predict(x)
	return class
}

func (e *logisticTopK) Update(x []dataset.Feature, y int) {
	e.dense.Update(x, y)
	for _, f := range x {
		e.heap.InsertOrChange(f.Index, e.dense.StoredWeight(f.Index))
	}
}

func (e *logisticTopK) TopK() []Entry {
	items := e.heap.Items()
	scale := e.dense.Scale()
	out := make([]Entry, len(items))
	for i, it := range items {
		out[i] = Entry{Index: it.Key, Weight: scale * it.Value}
	}
	return sortDescendingAbs(out)
}

func (e *logisticTopK) Bias() float64 { return float64(e.dense.Bias()) }

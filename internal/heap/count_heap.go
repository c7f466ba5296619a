package heap

// CountHeap is a 1-indexed, array-backed min-heap ordered by an unsigned
// integer count, keyed by K. Each entry also carries an auxiliary float
// value that does not participate in ordering (used by countmin_logistic
// and spacesaving_logistic to carry the estimator's current weight).
type CountHeap[K comparable] struct {
	capacity int
	pq       []K
	count    map[K]uint64
	aux      map[K]float32
	pos      map[K]int
}

// NewCountHeap builds a CountHeap with the given fixed capacity.
func NewCountHeap[K comparable](capacity int) (*CountHeap[K], error) {
	if capacity <= 0 {
		return nil, ErrInvalidConfig
	}
	return &CountHeap[K]{
		capacity: capacity,
		pq:       make([]K, 1, capacity+1),
		count:    make(map[K]uint64, capacity),
		aux:      make(map[K]float32, capacity),
		pos:      make(map[K]int, capacity),
	}, nil
}

func (h *CountHeap[K]) Len() int  { return len(h.pq) - 1 }
func (h *CountHeap[K]) Full() bool { return h.Len() >= h.capacity }

func (h *CountHeap[K]) Contains(k K) bool {
	_, ok := h.pos[k]
	return ok
}

func (h *CountHeap[K]) Count(k K) (uint64, bool) {
	c, ok := h.count[k]
	return c, ok
}

func (h *CountHeap[K]) Aux(k K) (float32, bool) {
	a, ok := h.aux[k]
	return a, ok
}

// Min returns the root (minimum-count) entry.
func (h *CountHeap[K]) Min() (K, uint64, float32, error) {
	if h.Len() == 0 {
		var zero K
		return zero, 0, 0, ErrHeapUnderflow
	}
	k := h.pq[1]
	return k, h.count[k], h.aux[k], nil
}

func (h *CountHeap[K]) less(i, j int) bool {
	return h.count[h.pq[i]] < h.count[h.pq[j]]
}

func (h *CountHeap[K]) swap(i, j int) {
	h.pq[i], h.pq[j] = h.pq[j], h.pq[i]
	h.pos[h.pq[i]] = i
	h.pos[h.pq[j]] = j
}

func (h *CountHeap[K]) swim(i int) {
	for i > 1 && h.less(i, i/2) {
		h.swap(i, i/2)
		i /= 2
	}
}

func (h *CountHeap[K]) sink(i int) {
	n := h.Len()
	for {
		j := 2 * i
		if j > n {
			break
		}
		if j < n && h.less(j+1, j) {
			j++
		}
		if !h.less(j, i) {
			break
		}
		h.swap(i, j)
		i = j
	}
}

func (h *CountHeap[K]) insertNew(k K, count uint64, aux float32) {
	h.pq = append(h.pq, k)
	h.count[k] = count
	h.aux[k] = aux
	h.pos[k] = h.Len()
	h.swim(h.Len())
}

func (h *CountHeap[K]) removeMin() (K, uint64, float32) {
	minKey := h.pq[1]
	minCount, minAux := h.count[minKey], h.aux[minKey]
	n := h.Len()
	h.swap(1, n)
	h.pq = h.pq[:n]
	delete(h.pos, minKey)
	delete(h.count, minKey)
	delete(h.aux, minKey)
	if h.Len() > 0 {
		h.sink(1)
	}
	return minKey, minCount, minAux
}

// Insert adds a new key with the given count/aux, evicting the current
// minimum if full (tie-break on equal counts is unspecified, matching the
// spec's "tie-break ignored" note for countmin_logistic).
func (h *CountHeap[K]) Insert(k K, count uint64, aux float32) (evictedKey K, evictedCount uint64, evictedAux float32, evicted bool, err error) {
	if h.Contains(k) {
		return evictedKey, 0, 0, false, ErrDuplicateKey
	}
	if !h.Full() {
		h.insertNew(k, count, aux)
		return evictedKey, 0, 0, false, nil
	}
	_, minCount, _, _ := h.Min()
	if count < minCount {
		return k, count, aux, true, nil
	}
	mk, mc, ma := h.removeMin()
	h.insertNew(k, count, aux)
	return mk, mc, ma, true, nil
}

// IncrementCount bumps a resident key's count by one and re-sinks it. Swim is
// never needed because count only grows, so the key can only move toward the
// leaves (the min-heap can only become "less minimal").
func (h *CountHeap[K]) IncrementCount(k K) error {
	p, ok := h.pos[k]
	if !ok {
		return ErrNotFound
	}
	h.count[k]++
	h.sink(p)
	return nil
}

// SetAux updates the auxiliary value of a resident key without touching
// ordering.
func (h *CountHeap[K]) SetAux(k K, aux float32) error {
	if !h.Contains(k) {
		return ErrNotFound
	}
	h.aux[k] = aux
	return nil
}

// ReplaceMin overwrites the root slot's key in place, keeping the slot's
// position but installing a fresh count/aux, then re-sinks. This implements
// SpaceSaving eviction, where the evicted slot inherits min_count+1 under a
// different key rather than being removed and reinserted.
func (h *CountHeap[K]) ReplaceMin(newKey K, newCount uint64, newAux float32) (oldKey K, oldCount uint64, oldAux float32, err error) {
	if h.Len() == 0 {
		return oldKey, 0, 0, ErrHeapUnderflow
	}
	oldKey = h.pq[1]
	oldCount = h.count[oldKey]
	oldAux = h.aux[oldKey]

	delete(h.pos, oldKey)
	delete(h.count, oldKey)
	delete(h.aux, oldKey)

	h.pq[1] = newKey
	h.count[newKey] = newCount
	h.aux[newKey] = newAux
	h.pos[newKey] = 1
	h.sink(1)

	return oldKey, oldCount, oldAux, nil
}

// DelMin removes and returns the root.
func (h *CountHeap[K]) DelMin() (K, uint64, float32, error) {
	if h.Len() == 0 {
		var zero K
		return zero, 0, 0, ErrHeapUnderflow
	}
	k, c, a := h.removeMin()
	return k, c, a, nil
}

// Items returns all resident entries in unspecified order.
func (h *CountHeap[K]) Items() []CountEntry[K] {
	out := make([]CountEntry[K], 0, h.Len())
	for i := 1; i <= h.Len(); i++ {
		k := h.pq[i]
		out = append(out, CountEntry[K]{Key: k, Count: h.count[k], Aux: h.aux[k]})
	}
	return out
}

// CountEntry is one (key, count, aux) triple as returned by iteration helpers.
type CountEntry[K comparable] struct {
	Key   K
	Count uint64
	Aux   float32
}

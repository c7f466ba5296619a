package heap

import (
	"math"
	"math/rand"
)

// Reservoir implements Efraimidis-Spirakis A-Res weighted reservoir
// sampling. Each resident key carries a random key r = |value|^p * ln(U)
// for its own draw U ~ Uniform(0,1); since ln(U) <= 0, larger |value| pushes
// r further negative (more likely to be retained). The reservoir is a
// max-heap on r: the entry with the largest (least negative) r is the next
// to be evicted.
type Reservoir[K comparable] struct {
	capacity int
	p        float64
	rng      *rand.Rand
	pq       []K
	r        map[K]float64
	val      map[K]float32
	pos      map[K]int
}

// NewReservoir builds a weighted reservoir of the given capacity, using
// power p for the A-Res weighting and seed for the PRNG that draws each
// resident's U. The spec flags the original's seedless default constructor
// as a latent reproducibility hazard; this constructor mandates an explicit
// seed instead.
func NewReservoir[K comparable](capacity int, p float64, seed int64) (*Reservoir[K], error) {
	if capacity <= 0 {
		return nil, ErrInvalidConfig
	}
	return &Reservoir[K]{
		capacity: capacity,
		p:        p,
		rng:      rand.New(rand.NewSource(seed)),
		pq:       make([]K, 1, capacity+1),
		r:        make(map[K]float64, capacity),
		val:      make(map[K]float32, capacity),
		pos:      make(map[K]int, capacity),
	}, nil
}

func (h *Reservoir[K]) Len() int   { return len(h.pq) - 1 }
func (h *Reservoir[K]) Full() bool { return h.Len() >= h.capacity }

func (h *Reservoir[K]) Contains(k K) bool {
	_, ok := h.pos[k]
	return ok
}

func (h *Reservoir[K]) Get(k K) (float32, bool) {
	v, ok := h.val[k]
	return v, ok
}

// drawU draws U in (0, 1], never returning 0 so ln(U) is always defined.
func (h *Reservoir[K]) drawU() float64 {
	u := h.rng.Float64()
	for u == 0 {
		u = h.rng.Float64()
	}
	return u
}

func (h *Reservoir[K]) weightKey(v float32) float64 {
	return math.Pow(float64(abs32(v)), h.p)
}

// greater orders the max-heap: the larger r sits closer to the root.
func (h *Reservoir[K]) greater(i, j int) bool {
	return h.r[h.pq[i]] > h.r[h.pq[j]]
}

func (h *Reservoir[K]) swap(i, j int) {
	h.pq[i], h.pq[j] = h.pq[j], h.pq[i]
	h.pos[h.pq[i]] = i
	h.pos[h.pq[j]] = j
}

func (h *Reservoir[K]) swim(i int) {
	for i > 1 && h.greater(i, i/2) {
		h.swap(i, i/2)
		i /= 2
	}
}

func (h *Reservoir[K]) sink(i int) {
	n := h.Len()
	for {
		j := 2 * i
		if j > n {
			break
		}
		if j < n && h.greater(j+1, j) {
			j++
		}
		if !h.greater(j, i) {
			break
		}
		h.swap(i, j)
		i = j
	}
}

func (h *Reservoir[K]) insertNew(k K, v float32, r float64) {
	h.pq = append(h.pq, k)
	h.val[k] = v
	h.r[k] = r
	h.pos[k] = h.Len()
	h.swim(h.Len())
}

func (h *Reservoir[K]) removeMax() (K, float32) {
	maxKey := h.pq[1]
	maxVal := h.val[maxKey]
	n := h.Len()
	h.swap(1, n)
	h.pq = h.pq[:n]
	delete(h.pos, maxKey)
	delete(h.val, maxKey)
	delete(h.r, maxKey)
	if h.Len() > 0 {
		h.sink(1)
	}
	return maxKey, maxVal
}

// Insert draws a fresh U for k and inserts (k, v). If full and the new r
// exceeds the current max (i.e. k is less likely to be retained than every
// resident), the attempt itself is evicted without being inserted.
// Otherwise the current max is evicted and k takes its place.
func (h *Reservoir[K]) Insert(k K, v float32) (evictedKey K, evictedVal float32, evicted bool, err error) {
	if h.Contains(k) {
		return evictedKey, 0, false, ErrDuplicateKey
	}
	r := h.weightKey(v) * math.Log(h.drawU())
	if !h.Full() {
		h.insertNew(k, v, r)
		return evictedKey, 0, false, nil
	}
	maxKey := h.pq[1]
	if r > h.r[maxKey] {
		return k, v, true, nil
	}
	mk, mv := h.removeMax()
	h.insertNew(k, v, r)
	return mk, mv, true, nil
}

// ChangeVal rescales the retained random key r by (|vNew|/|vOld|)^p,
// preserving the A-Res distributional identity for the originally drawn U,
// then restores heap order. When the old value is 0, r is 0 and carries no
// trace of U, so a fresh U is drawn for the new value instead.
func (h *Reservoir[K]) ChangeVal(k K, vNew float32) error {
	p, ok := h.pos[k]
	if !ok {
		return ErrNotFound
	}
	vOld := h.val[k]
	if vOld != 0 {
		ratio := math.Pow(float64(abs32(vNew))/float64(abs32(vOld)), h.p)
		h.r[k] *= ratio
	} else {
		h.r[k] = h.weightKey(vNew) * math.Log(h.drawU())
	}
	h.val[k] = vNew
	h.swim(p)
	h.sink(h.pos[k])
	return nil
}

// Items returns all resident entries in unspecified order.
func (h *Reservoir[K]) Items() []Entry[K] {
	out := make([]Entry[K], 0, h.Len())
	for i := 1; i <= h.Len(); i++ {
		k := h.pq[i]
		out = append(out, Entry[K]{Key: k, Value: h.val[k]})
	}
	return out
}

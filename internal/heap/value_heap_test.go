package heap

import "testing"

func TestValueHeapInsertUnderCapacity(t *testing.T) {
	h, err := New[string](3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, _, evicted, err := h.Insert("a", 1.0); err != nil || evicted {
		t.Fatalf("Insert a: evicted=%v err=%v", evicted, err)
	}
	if _, _, evicted, err := h.Insert("b", -2.0); err != nil || evicted {
		t.Fatalf("Insert b: evicted=%v err=%v", evicted, err)
	}
	if h.Len() != 2 {
		t.Fatalf("Len: got %d, want 2", h.Len())
	}
	k, v, err := h.Min()
	if err != nil || k != "a" || v != 1.0 {
		t.Fatalf("Min: got (%v,%v,%v), want (a,1,nil)", k, v, err)
	}
}

func TestValueHeapEvictsByMagnitude(t *testing.T) {
	h, _ := New[string](2)
	h.Insert("a", 1.0)
	h.Insert("b", -5.0)

	// Heap is full at capacity 2; attempting a smaller-magnitude key should
	// be evicted on arrival without disturbing the heap.
	evictedKey, evictedVal, evicted, err := h.Insert("c", 0.5)
	if err != nil {
		t.Fatalf("Insert c: %v", err)
	}
	if !evicted || evictedKey != "c" || evictedVal != 0.5 {
		t.Fatalf("Insert c: got (%v,%v,%v), want self-eviction", evictedKey, evictedVal, evicted)
	}
	if h.Contains("c") {
		t.Fatal("c should not be resident")
	}

	// A larger-magnitude key should displace the current minimum (a, |1.0|).
	evictedKey, evictedVal, evicted, err = h.Insert("d", 10.0)
	if err != nil {
		t.Fatalf("Insert d: %v", err)
	}
	if !evicted || evictedKey != "a" || evictedVal != 1.0 {
		t.Fatalf("Insert d: got (%v,%v,%v), want eviction of a", evictedKey, evictedVal, evicted)
	}
	if !h.Contains("d") || h.Contains("a") {
		t.Fatal("expected d resident, a evicted")
	}
}

func TestValueHeapDuplicateKey(t *testing.T) {
	h, _ := New[string](2)
	h.Insert("a", 1.0)
	if _, _, _, err := h.Insert("a", 2.0); err != ErrDuplicateKey {
		t.Fatalf("Insert duplicate: got %v, want ErrDuplicateKey", err)
	}
}

func TestValueHeapChangeVal(t *testing.T) {
	h, _ := New[string](3)
	h.Insert("a", 1.0)
	h.Insert("b", 2.0)
	h.Insert("c", 3.0)

	if err := h.ChangeVal("a", 100.0); err != nil {
		t.Fatalf("ChangeVal: %v", err)
	}
	k, _, _ := h.Min()
	if k != "b" {
		t.Fatalf("Min after ChangeVal: got %v, want b", k)
	}

	if err := h.ChangeVal("z", 1.0); err != ErrNotFound {
		t.Fatalf("ChangeVal missing key: got %v, want ErrNotFound", err)
	}
}

func TestValueHeapUnderflow(t *testing.T) {
	h, _ := New[string](1)
	if _, _, err := h.Min(); err != ErrHeapUnderflow {
		t.Fatalf("Min on empty: got %v, want ErrHeapUnderflow", err)
	}
	if _, _, err := h.DelMin(); err != ErrHeapUnderflow {
		t.Fatalf("DelMin on empty: got %v, want ErrHeapUnderflow", err)
	}
}

func TestValueHeapInvariant(t *testing.T) {
	h, _ := New[int](5)
	vals := []float32{3, -1, 4, -1, 5}
	for i, v := range vals {
		h.InsertOrChange(i, v)
	}
	for k, p := range h.pos {
		if h.pq[p] != k {
			t.Fatalf("invariant broken for key %v at position %d: pq[p]=%v", k, p, h.pq[p])
		}
	}
}

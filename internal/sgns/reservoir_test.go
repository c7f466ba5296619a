package sgns

import "testing"

func TestTokenReservoirFillsUnderCapacity(t *testing.T) {
	r := NewTokenReservoir(5, 1)
	for _, tok := range []string{"a", "b", "c"} {
		r.Update(tok)
	}
	if r.Len() != 3 {
		t.Fatalf("Len: got %d, want 3", r.Len())
	}
}

func TestTokenReservoirCapsAtCapacity(t *testing.T) {
	r := NewTokenReservoir(3, 1)
	for i := 0; i < 100; i++ {
		r.Update("tok")
	}
	if r.Len() != 3 {
		t.Fatalf("Len: got %d, want 3 (capped)", r.Len())
	}
}

func TestTokenReservoirSampleOnlyReturnsSeenTokens(t *testing.T) {
	r := NewTokenReservoir(4, 2)
	seen := map[string]bool{"x": true, "y": true, "z": true}
	for tok := range seen {
		r.Update(tok)
	}
	for i := 0; i < 50; i++ {
		s := r.Sample()
		if !seen[s] {
			t.Fatalf("Sample returned unseen token %q", s)
		}
	}
}

func TestTokenReservoirEmptySampleIsEmptyString(t *testing.T) {
	r := NewTokenReservoir(3, 1)
	if s := r.Sample(); s != "" {
		t.Fatalf("Sample on empty reservoir: got %q, want \"\"", s)
	}
}

func TestTokenReservoirRefcountsDuplicateOccurrences(t *testing.T) {
	// Each stream occurrence still claims its own reservoir position (that's
	// what gives a frequent token proportionally higher sampling weight),
	// but the refcount bookkeeping tracks how many positions currently
	// reference it.
	r := NewTokenReservoir(3, 1)
	r.Update("dup")
	r.Update("dup")
	if r.Len() != 2 {
		t.Fatalf("Len: got %d, want 2 (two occurrences, two positions)", r.Len())
	}
	if r.refcount["dup"] != 2 {
		t.Fatalf("refcount[dup]: got %d, want 2", r.refcount["dup"])
	}
}

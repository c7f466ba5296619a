package pairedcms

import "testing"

func TestGetFavorsPositiveLabelKeys(t *testing.T) {
	p, err := New(10, 3, 1.0, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 100; i++ {
		p.Update(1)
		p.UpdateFeature(1, 1)
		p.Update(0)
		p.UpdateFeature(2, 0)
	}
	if p.Get(1) <= p.Get(2) {
		t.Fatalf("Get(1)=%v should exceed Get(2)=%v (key 1 is positive-associated)", p.Get(1), p.Get(2))
	}
}

func TestBiasReflectsClassBalance(t *testing.T) {
	p, _ := New(10, 3, 1.0, 1)
	for i := 0; i < 10; i++ {
		p.Update(1)
		p.UpdateFeature(1, 1)
	}
	for i := 0; i < 90; i++ {
		p.Update(0)
		p.UpdateFeature(2, 0)
	}
	if p.Bias() >= 1 {
		t.Fatalf("Bias(): got %v, want < 1 given a 10/90 class split", p.Bias())
	}
}

func TestUpdateReturnsSignOfBias(t *testing.T) {
	p, _ := New(10, 3, 1.0, 1)
	for i := 0; i < 10; i++ {
		got := p.Update(1)
		want := 0
		if p.Bias() >= 1 {
			want = 1
		}
		if got != want {
			t.Fatalf("Update return: got %d, want %d (sign of Bias=%v)", got, want, p.Bias())
		}
	}
}

func TestUpdateIncrementsClassCountOncePerExample(t *testing.T) {
	p, _ := New(10, 3, 1.0, 1)
	p.Update(1)
	p.UpdateFeature(1, 1)
	p.UpdateFeature(2, 1)
	p.UpdateFeature(3, 1)
	// One example with three active features bumps posCount once, not three
	// times; Bias should reflect a single positive example against zero
	// negatives, smoothed.
	want := (1.0 + 1.0) / (0.0 + 1.0)
	if got := p.Bias(); got != want {
		t.Fatalf("Bias() after one multi-feature example: got %v, want %v", got, want)
	}
}

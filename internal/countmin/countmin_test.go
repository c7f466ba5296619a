package countmin

import "testing"

func TestNewRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name      string
		log2Width int
		depth     int
	}{
		{"zero width", 0, 4},
		{"negative width", -1, 4},
		{"width too large", 31, 4},
		{"zero depth", 10, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := New(c.log2Width, c.depth, false, 1); err != ErrInvalidConfig {
				t.Fatalf("New(%d,%d): got %v, want ErrInvalidConfig", c.log2Width, c.depth, err)
			}
		})
	}
}

func TestUpdateNeverUnderestimates(t *testing.T) {
	cm, err := New(8, 3, false, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var trueCount uint32
	for i := 0; i < 50; i++ {
		trueCount = cm.Update(42)
		if cm.Get(42) < trueCount {
			t.Fatalf("iteration %d: Get=%d < Update-returned estimate %d", i, cm.Get(42), trueCount)
		}
	}
	if cm.Get(42) < 50 {
		t.Fatalf("Get(42): got %d, want >= 50 (true count)", cm.Get(42))
	}
}

func TestConservativeUpdateMonotonic(t *testing.T) {
	cm, err := New(6, 4, true, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var prev uint32
	for i := 0; i < 100; i++ {
		cur := cm.Update(7)
		if cur < prev {
			t.Fatalf("iteration %d: estimate decreased from %d to %d", i, prev, cur)
		}
		if cm.Get(7) < uint32(i+1) {
			t.Fatalf("iteration %d: Get(7)=%d below true count %d", i, cm.Get(7), i+1)
		}
		prev = cur
	}
}

func TestConservativeNeverExceedsStandard(t *testing.T) {
	// For the same key sequence and same seed, conservative update should
	// produce an estimate that is never larger than plain update's, since it
	// only raises cells up to the new minimum rather than incrementing every
	// cell unconditionally.
	std, _ := New(6, 4, false, 1)
	cons, _ := New(6, 4, true, 1)
	for i := 0; i < 200; i++ {
		std.Update(uint32(i % 5))
		cons.Update(uint32(i % 5))
	}
	for key := uint32(0); key < 5; key++ {
		if cons.Get(key) > std.Get(key) {
			t.Fatalf("key %d: conservative estimate %d exceeds standard estimate %d", key, cons.Get(key), std.Get(key))
		}
	}
}

package topk

import (
	"testing"

	"wmsketch.dev/internal/dataset"
)

func baseConfig(method Method) Config {
	return Config{
		Method:      method,
		Dim:         64,
		K:           8,
		Log2Width:   10,
		Depth:       4,
		Seed:        1,
		LRInit:      0.3,
		L2Reg:       1e-4,
		CountSmooth: 1.0,
		Pow:         1.0,
	}
}

func TestNewRejectsUnknownMethod(t *testing.T) {
	if _, err := New(baseConfig(Method("bogus"))); err != ErrInvalidConfig {
		t.Fatalf("New(bogus): got %v, want ErrInvalidConfig", err)
	}
}

var allMethods = []Method{
	MethodLogistic,
	MethodLogisticSketch,
	MethodActiveSetLogistic,
	MethodTruncatedLogistic,
	MethodProbTruncatedLogistic,
	MethodCountMinLogistic,
	MethodSpaceSavingLogistic,
	MethodPairedCountMin,
}

// syntheticExample builds a single-feature example, used to drive every
// variant through an identical, trivially separable training signal.
func syntheticExample(idx uint32, label int) ([]dataset.Feature, int) {
	return []dataset.Feature{{Index: idx, Value: 1}}, label
}

func TestAllVariantsTrainAndReportTopK(t *testing.T) {
	for _, m := range allMethods {
		t.Run(string(m), func(t *testing.T) {
			est, err := New(baseConfig(m))
			if err != nil {
				t.Fatalf("New(%s): %v", m, err)
			}
			for i := 0; i < 200; i++ {
				x, y := syntheticExample(uint32(i%20), i%2)
				est.Predict(x)
				est.Update(x, y)
			}
			top := est.TopK()
			for i := 1; i < len(top); i++ {
				if abs32(top[i-1].Weight) < abs32(top[i].Weight) {
					t.Fatalf("%s: TopK not sorted by descending |weight|: %v", m, top)
				}
			}
			_ = est.Bias()
		})
	}
}

func TestLogisticTopKSeparates(t *testing.T) {
	cfg := baseConfig(MethodLogistic)
	cfg.K = cfg.Dim // the CLI driver resolves the --topk=0 sentinel to Dim before calling New
	est, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	posX, _ := syntheticExample(1, 1)
	negX, _ := syntheticExample(2, 0)
	for i := 0; i < 500; i++ {
		est.Update(posX, 1)
		est.Update(negX, 0)
	}
	if class := est.Predict(posX); class != 1 {
		t.Fatalf("Predict(pos): got class %d, want 1", class)
	}
	if class := est.Predict(negX); class != 0 {
		t.Fatalf("Predict(neg): got class %d, want 0", class)
	}
}

// TestActiveSetRecallsDenseTopFeature checks that when one feature dominates
// the gradient signal, Active-Set's heap (capacity 1) ends up holding that
// feature rather than any of the many low-signal noise features. The
// dominant feature is fixed by construction (it carries 100x the value of
// every noise feature); no dense baseline is trained here.
func TestActiveSetRecallsDenseTopFeature(t *testing.T) {
	const dominant = uint32(0)
	trainFn := func(est Estimator) {
		for i := 0; i < 300; i++ {
			x := []dataset.Feature{{Index: dominant, Value: 1}}
			for n := uint32(1); n < 20; n++ {
				x = append(x, dataset.Feature{Index: n, Value: 0.01})
			}
			est.Update(x, i%2)
		}
	}

	activeCfg := baseConfig(MethodActiveSetLogistic)
	activeCfg.K = 1
	active, err := New(activeCfg)
	if err != nil {
		t.Fatalf("New active-set: %v", err)
	}
	trainFn(active)

	top := active.TopK()
	if len(top) != 1 {
		t.Fatalf("Active-Set TopK: got %d entries, want 1", len(top))
	}
	if top[0].Index != dominant {
		t.Fatalf("Active-Set TopK: got index %d, want dominant feature %d", top[0].Index, dominant)
	}
}

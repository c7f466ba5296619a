// main.go is the entry point for the classify binary. It trains one of the
// eight top-k estimators over a LIBSVM-style sparse dataset, scores
// it against a held-out test set, and reports timings, error rates, and the
// estimator's current top-k feature weights as JSON on stdout.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"wmsketch.dev/internal/dataset"
	"wmsketch.dev/internal/topk"
)

type config struct {
	train        string
	test         string
	method       string
	log2Width    int
	depth        int
	seed         int64
	epochs       int
	iters        int
	k            int
	lrInit       float64
	l2Reg        float64
	countSmooth  float64
	pow          float64
	medianUpdate bool
	consvUpdate  bool
	noBias       bool
	sample       bool
}

func main() {
	var cfg config

	flag.StringVar(&cfg.train, "train", "", "path to training dataset (required)")
	flag.StringVar(&cfg.test, "test", "", "path to test dataset (required)")
	flag.StringVar(&cfg.method, "method", "logistic", "estimator: logistic, logistic_sketch, activeset_logistic, truncated_logistic, probtruncated_logistic, countmin_logistic, spacesaving_logistic, paired_countmin")
	flag.IntVar(&cfg.log2Width, "log2_width", 16, "log2 of sketch/table width")
	flag.IntVar(&cfg.depth, "depth", 4, "number of sketch/table rows")
	flag.Int64Var(&cfg.seed, "seed", 1, "PRNG seed")
	flag.IntVar(&cfg.epochs, "epochs", 1, "number of linear passes over the training set (ignored when --iters > 0)")
	flag.IntVar(&cfg.iters, "iters", 0, "number of sampled training iterations (0 => linear epoch pass, or dataset size with --sample)")
	flag.IntVar(&cfg.k, "topk", 100, "top-k heap/reservoir capacity (0 => dataset feature dimension)")
	flag.Float64Var(&cfg.lrInit, "lr_init", 0.1, "initial learning rate")
	flag.Float64Var(&cfg.l2Reg, "l2_reg", 1e-4, "L2 regularization strength")
	flag.Float64Var(&cfg.countSmooth, "count_smooth", 1.0, "additive smoothing for count-min/paired-count ratios")
	flag.Float64Var(&cfg.pow, "pow", 1.0, "weighted-reservoir exponent for probtruncated_logistic")
	flag.BoolVar(&cfg.medianUpdate, "median_update", false, "use median instead of mean in the WM-Sketch forward pass")
	flag.BoolVar(&cfg.consvUpdate, "consv_update", false, "use Conservative Update for count-min tables")
	flag.BoolVar(&cfg.noBias, "no_bias", false, "disable the bias term")
	flag.BoolVar(&cfg.sample, "sample", false, "train by sampling with replacement instead of linear epoch passes")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if cfg.train == "" || cfg.test == "" {
		usage()
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("classify failed", "error", err)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: classify --train <path> --test <path> --method <name> [flags]")
	flag.PrintDefaults()
}

func run(cfg config, logger *slog.Logger) error {
	method := topk.Method(cfg.method)
	switch method {
	case topk.MethodLogistic, topk.MethodLogisticSketch, topk.MethodActiveSetLogistic,
		topk.MethodTruncatedLogistic, topk.MethodProbTruncatedLogistic,
		topk.MethodCountMinLogistic, topk.MethodSpaceSavingLogistic, topk.MethodPairedCountMin:
	default:
		return fmt.Errorf("unknown method %q", cfg.method)
	}

	logger.Info("loading datasets", "train", cfg.train, "test", cfg.test)
	trainSet, err := dataset.ReadSparseFile(cfg.train)
	if err != nil {
		return fmt.Errorf("reading train set: %w", err)
	}
	testSet, err := dataset.ReadSparseFile(cfg.test)
	if err != nil {
		return fmt.Errorf("reading test set: %w", err)
	}

	dim := int(trainSet.FeatureDim)
	if int(testSet.FeatureDim) > dim {
		dim = int(testSet.FeatureDim)
	}

	k := cfg.k
	if k == 0 {
		k = dim
	}

	est, err := topk.New(topk.Config{
		Method:       method,
		Dim:          dim,
		K:            k,
		Log2Width:    cfg.log2Width,
		Depth:        cfg.depth,
		Seed:         cfg.seed,
		LRInit:       cfg.lrInit,
		L2Reg:        cfg.l2Reg,
		CountSmooth:  cfg.countSmooth,
		Pow:          cfg.pow,
		MedianUpdate: cfg.medianUpdate,
		ConsvUpdate:  cfg.consvUpdate,
		NoBias:       cfg.noBias,
	})
	if err != nil {
		return fmt.Errorf("building estimator: %w", err)
	}

	iters := cfg.iters
	if cfg.sample && iters == 0 {
		iters = trainSet.NumExamples()
	}

	logger.Info("training", "method", cfg.method, "examples", trainSet.NumExamples())
	trainStart := time.Now()

	var errCount, count int
	if iters > 0 {
		rng := rand.New(rand.NewSource(cfg.seed))
		for i := 0; i < iters; i++ {
			ex := trainSet.Sample(rng)
			pred := est.Predict(ex.Features)
			est.Update(ex.Features, ex.Label)
			if pred != ex.Label {
				errCount++
			}
			count++
		}
	} else {
		for e := 0; e < cfg.epochs; e++ {
			for _, ex := range trainSet.Examples {
				pred := est.Predict(ex.Features)
				est.Update(ex.Features, ex.Label)
				if pred != ex.Label {
					errCount++
				}
				count++
			}
		}
	}
	trainMs := time.Since(trainStart).Milliseconds()

	logger.Info("testing", "examples", testSet.NumExamples())
	testStart := time.Now()
	var tp, fp, fn int
	for _, ex := range testSet.Examples {
		pred := est.Predict(ex.Features)
		switch {
		case pred == 1 && ex.Label == 1:
			tp++
		case pred == 1 && ex.Label == 0:
			fp++
		case pred == 0 && ex.Label == 1:
			fn++
		}
	}
	testMs := time.Since(testStart).Milliseconds()

	precision, recall, f1 := prf1(tp, fp, fn)

	top := est.TopK()
	indices := make([]uint32, len(top))
	weights := make([]float32, len(top))
	for i, e := range top {
		indices[i] = e.Index
		weights[i] = e.Weight
	}

	out := map[string]any{
		"params": map[string]any{
			"method":        cfg.method,
			"log2_width":    cfg.log2Width,
			"depth":         cfg.depth,
			"seed":          cfg.seed,
			"epochs":        cfg.epochs,
			"iters":         iters,
			"topk":          k,
			"lr_init":       cfg.lrInit,
			"l2_reg":        cfg.l2Reg,
			"count_smooth":  cfg.countSmooth,
			"pow":           cfg.pow,
			"median_update": cfg.medianUpdate,
			"consv_update":  cfg.consvUpdate,
			"no_bias":       cfg.noBias,
			"sample":        cfg.sample,
		},
		"results": map[string]any{
			"train_ms":        trainMs,
			"train_err_count": errCount,
			"train_count":     count,
			"train_err_rate":  errRate(errCount, count),
			"bias":            est.Bias(),
			"test_ms":         testMs,
			"test_precision":  precision,
			"test_recall":     recall,
			"test_f1":         f1,
			"top_indices":     indices,
			"top_weights":     weights,
		},
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func errRate(errCount, count int) float64 {
	if count == 0 {
		return 0
	}
	return float64(errCount) / float64(count)
}

func prf1(tp, fp, fn int) (precision, recall, f1 float64) {
	if tp+fp > 0 {
		precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		recall = float64(tp) / float64(tp+fn)
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return precision, recall, f1
}

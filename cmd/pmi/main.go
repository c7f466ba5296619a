// main.go is the entry point for the pmi binary. It streams whitespace-
// delimited tokens from one or more files through a StreamingSGNS estimator
// and reports the top-k word pairs by estimated pointwise mutual information.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"wmsketch.dev/internal/dataset"
	"wmsketch.dev/internal/sgns"
)

type config struct {
	data          string
	log2Width     int
	depth         int
	negSamples    int
	windowSize    int
	reservoirSize int
	seed          int64
	k             int
	lrInit        float64
	l2Reg         float64
}

func main() {
	var cfg config

	flag.StringVar(&cfg.data, "data", "", "whitespace-delimited list of input paths (required)")
	flag.IntVar(&cfg.log2Width, "log2_width", 16, "log2 of the pair sketch's width")
	flag.IntVar(&cfg.depth, "depth", 4, "number of sketch rows")
	flag.IntVar(&cfg.negSamples, "neg_samples", 5, "negative samples per positive pair")
	flag.IntVar(&cfg.windowSize, "window_size", 5, "skip-gram window size")
	flag.IntVar(&cfg.reservoirSize, "reservoir_size", 10000, "unigram reservoir capacity")
	flag.Int64Var(&cfg.seed, "seed", 1, "PRNG seed")
	flag.IntVar(&cfg.k, "topk", 100, "top-k heap capacity")
	flag.Float64Var(&cfg.lrInit, "lr_init", 0.1, "initial learning rate")
	flag.Float64Var(&cfg.l2Reg, "l2_reg", 1e-4, "L2 regularization strength")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if cfg.data == "" {
		usage()
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("pmi failed", "error", err)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: pmi --data \"<path> [path...]\" [flags]")
	flag.PrintDefaults()
}

func run(cfg config, logger *slog.Logger) error {
	paths := strings.Fields(cfg.data)
	if len(paths) == 0 {
		return fmt.Errorf("no input paths given")
	}

	logger.Info("reading token lines", "paths", paths)
	lines, err := dataset.ReadTokenLines(paths)
	if err != nil {
		return fmt.Errorf("reading token lines: %w", err)
	}

	est, err := sgns.NewStreamingSGNS(sgns.Config{
		Log2Width:     cfg.log2Width,
		Depth:         cfg.depth,
		K:             cfg.k,
		WindowSize:    cfg.windowSize,
		NegSamples:    cfg.negSamples,
		ReservoirSize: cfg.reservoirSize,
		Seed:          cfg.seed,
		LRInit:        cfg.lrInit,
		L2Reg:         cfg.l2Reg,
	})
	if err != nil {
		return fmt.Errorf("building estimator: %w", err)
	}

	var tokenCount int
	logger.Info("training", "lines", len(lines))
	start := time.Now()
	for _, line := range lines {
		for _, tok := range line {
			est.Update(tok)
			tokenCount++
		}
		est.Flush()
	}
	trainMs := time.Since(start).Milliseconds()

	top := est.TopK()
	var tokens [][2]string
	var weights []float32
	for _, e := range top {
		if e.Weight < 0 {
			continue
		}
		tokens = append(tokens, [2]string{e.A, e.B})
		weights = append(weights, e.Weight)
	}

	out := map[string]any{
		"params": map[string]any{
			"log2_width":     cfg.log2Width,
			"depth":          cfg.depth,
			"neg_samples":    cfg.negSamples,
			"window_size":    cfg.windowSize,
			"reservoir_size": cfg.reservoirSize,
			"seed":           cfg.seed,
			"topk":           cfg.k,
			"lr_init":        cfg.lrInit,
			"l2_reg":         cfg.l2Reg,
		},
		"results": map[string]any{
			"train_ms": trainMs,
			"tokens":   tokenCount,
			"bias":     est.Bias(),
			"pairs":    tokens,
			"pmi":      weights,
		},
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

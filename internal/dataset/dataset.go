// Package dataset reads the two input formats this module consumes: a
// LIBSVM-style sparse labeled example stream for classification, and
// whitespace-tokenized lines for the PMI driver. Parsing, path handling, and
// line I/O are surrounding glue — the package exposes only what the core
// estimators need: a slice of sparse examples, and lines of lowercase tokens.
package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
)

// ErrMalformedRecord is returned for a training-data line that does not
// parse as "label index:value index:value ...". The spec promises no
// partial-line recovery: a malformed record aborts the read.
var ErrMalformedRecord = errors.New("dataset: malformed record")

// Feature is one (feature-id, value) pair in a sparse example.
type Feature struct {
	Index uint32
	Value float32
}

// Example is a sparse labeled example. Label is normalized to {0, 1}; a raw
// label of -1 on read becomes 0.
type Example struct {
	Label    int
	Features []Feature
}

// SparseDataset holds every example read from a LIBSVM-style file plus the
// discovered feature dimension (1 + max seen index).
type SparseDataset struct {
	Examples   []Example
	FeatureDim uint32
}

// ReadSparseFile opens path and parses it as a LIBSVM-style sparse dataset.
func ReadSparseFile(path string) (*SparseDataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close()
	return ReadSparse(f)
}

// ReadSparse parses r as a LIBSVM-style sparse dataset: each non-blank line
// is "label index:value index:value ...", whitespace-delimited.
func ReadSparse(r *os.File) (*SparseDataset, error) {
	ds := &SparseDataset{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		rawLabel, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%w: bad label %q", ErrMalformedRecord, fields[0])
		}

		label := rawLabel
		if label == -1 {
			label = 0
		}
		if label != 0 && label != 1 {
			return nil, fmt.Errorf("%w: label %d not in {-1,0,1}", ErrMalformedRecord, rawLabel)
		}

		feats := make([]Feature, 0, len(fields)-1)
		for _, tok := range fields[1:] {
			idxStr, valStr, ok := strings.Cut(tok, ":")
			if !ok {
				return nil, fmt.Errorf("%w: bad feature token %q", ErrMalformedRecord, tok)
			}
			idx, err := strconv.ParseUint(idxStr, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("%w: bad feature index %q", ErrMalformedRecord, idxStr)
			}
			val, err := strconv.ParseFloat(valStr, 32)
			if err != nil {
				return nil, fmt.Errorf("%w: bad feature value %q", ErrMalformedRecord, valStr)
			}
			feats = append(feats, Feature{Index: uint32(idx), Value: float32(val)})
			if uint32(idx)+1 > ds.FeatureDim {
				ds.FeatureDim = uint32(idx) + 1
			}
		}

		ds.Examples = append(ds.Examples, Example{Label: label, Features: feats})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("dataset: read: %w", err)
	}
	return ds, nil
}

// NumExamples returns the number of examples read.
func (d *SparseDataset) NumExamples() int { return len(d.Examples) }

// Sample draws one example uniformly at random with replacement, for the
// --sample training mode.
func (d *SparseDataset) Sample(rng *rand.Rand) *Example {
	if len(d.Examples) == 0 {
		return nil
	}
	return &d.Examples[rng.Intn(len(d.Examples))]
}

// ReadTokenLines reads every path in order and returns, for each non-blank
// line across all files, the whitespace-split tokens lower-cased. Lines are
// kept separate because the PMI driver flushes its window at each line
// boundary.
func ReadTokenLines(paths []string) ([][]string, error) {
	var lines [][]string
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, fmt.Errorf("dataset: open %s: %w", p, err)
		}
		sc := bufio.NewScanner(f)
		sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		for sc.Scan() {
			toks := strings.Fields(strings.ToLower(sc.Text()))
			if len(toks) > 0 {
				lines = append(lines, toks)
			}
		}
		err = sc.Err()
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("dataset: read %s: %w", p, err)
		}
	}
	return lines, nil
}

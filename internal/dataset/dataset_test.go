package dataset

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestReadSparseNormalizesNegativeLabel(t *testing.T) {
	path := writeTempFile(t, "train.svm", "-1 0:1.0 2:0.5\n1 1:2.0\n")
	ds, err := ReadSparseFile(path)
	if err != nil {
		t.Fatalf("ReadSparseFile: %v", err)
	}
	if len(ds.Examples) != 2 {
		t.Fatalf("NumExamples: got %d, want 2", len(ds.Examples))
	}
	if ds.Examples[0].Label != 0 {
		t.Fatalf("label -1 should normalize to 0, got %d", ds.Examples[0].Label)
	}
	if ds.Examples[1].Label != 1 {
		t.Fatalf("label 1 should stay 1, got %d", ds.Examples[1].Label)
	}
	if ds.FeatureDim != 3 {
		t.Fatalf("FeatureDim: got %d, want 3 (1+max index 2)", ds.FeatureDim)
	}
}

func TestReadSparseMalformedRecord(t *testing.T) {
	cases := []string{
		"notanumber 0:1.0\n",
		"1 badtoken\n",
		"1 0:notafloat\n",
		"2 0:1.0\n",
	}
	for _, content := range cases {
		path := writeTempFile(t, "bad.svm", content)
		if _, err := ReadSparseFile(path); err == nil {
			t.Fatalf("ReadSparseFile(%q): expected error, got nil", content)
		}
	}
}

func TestReadSparseSkipsBlankLines(t *testing.T) {
	path := writeTempFile(t, "blank.svm", "1 0:1.0\n\n   \n0 1:1.0\n")
	ds, err := ReadSparseFile(path)
	if err != nil {
		t.Fatalf("ReadSparseFile: %v", err)
	}
	if len(ds.Examples) != 2 {
		t.Fatalf("NumExamples: got %d, want 2", len(ds.Examples))
	}
}

func TestSampleDrawsFromExamples(t *testing.T) {
	path := writeTempFile(t, "train.svm", "1 0:1.0\n0 1:1.0\n")
	ds, err := ReadSparseFile(path)
	if err != nil {
		t.Fatalf("ReadSparseFile: %v", err)
	}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		ex := ds.Sample(rng)
		if ex.Label != 0 && ex.Label != 1 {
			t.Fatalf("Sample returned example with label %d", ex.Label)
		}
	}
}

func TestSampleEmptyDataset(t *testing.T) {
	ds := &SparseDataset{}
	if ex := ds.Sample(rand.New(rand.NewSource(1))); ex != nil {
		t.Fatalf("Sample on empty dataset: got %v, want nil", ex)
	}
}

func TestReadTokenLinesLowercasesAndSplitsByLine(t *testing.T) {
	path := writeTempFile(t, "tokens.txt", "The Quick Fox\n\nJumps OVER\n")
	lines, err := ReadTokenLines([]string{path})
	if err != nil {
		t.Fatalf("ReadTokenLines: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("len(lines): got %d, want 2 (blank line dropped)", len(lines))
	}
	if lines[0][0] != "the" || lines[0][2] != "fox" {
		t.Fatalf("tokens not lower-cased: %v", lines[0])
	}
	if lines[1][1] != "over" {
		t.Fatalf("tokens not lower-cased: %v", lines[1])
	}
}

package train

import (
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/crimson-sun/topicnet/internal/corpus"
	"github.com/crimson-sun/topicnet/internal/embedding"
	"github.com/crimson-sun/topicnet/internal/model"
	"github.com/crimson-sun/topicnet/internal/output"
)

// syntheticSet builds a tiny separable corpus: class 0 documents repeat
// token 0, class 1 documents repeat token 1. The last table row is padding.
func syntheticSet(n, seqLen int) (*corpus.Set, *embedding.Table) {
	table := &embedding.Table{
		Data: []float64{
			1.0, 0.0, 0.2,
			0.0, 1.0, -0.2,
			0.5, 0.5, 0.9,
			0.0, 0.0, 0.0, // padding row
		},
		Rows: 4,
		Dim:  3,
	}

	s := &corpus.Set{}
	for i := 0; i < n; i++ {
		class := i % 2
		length := 2 + i%(seqLen-1)
		doc := make([]int, seqLen)
		for j := 0; j < seqLen; j++ {
			if j < length {
				doc[j] = class
			} else {
				doc[j] = 3 // pad id
			}
		}
		s.Docs = append(s.Docs, doc)
		s.Lengths = append(s.Lengths, length)
		s.Labels = append(s.Labels, class)
	}
	return s, table
}

func TestRun_LossDecreases(t *testing.T) {
	set, table := syntheticSet(20, 4)
	rng := rand.New(rand.NewSource(1))

	clf, err := model.New(table, 6, 2, 1.0, rng)
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	lossPath := filepath.Join(dir, "training_loss")
	lossLog, err := output.NewLossLog(lossPath)
	if err != nil {
		t.Fatal(err)
	}

	trainer := New(clf, 0.05, 5, 8, filepath.Join(dir, "model.gob"), rng)
	if err := trainer.Run(set, lossLog); err != nil {
		t.Fatal(err)
	}
	if err := lossLog.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(lossPath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 8 {
		t.Fatalf("expected 8 loss-log lines, got %d", len(lines))
	}

	first := meanOfLine(t, lines[0])
	last := meanOfLine(t, lines[len(lines)-1])
	if last >= first {
		t.Fatalf("expected loss to decrease on separable data: first epoch %v, last epoch %v", first, last)
	}
}

func TestRun_WritesCheckpoint(t *testing.T) {
	set, table := syntheticSet(10, 4)
	rng := rand.New(rand.NewSource(2))

	clf, err := model.New(table, 6, 2, 1.0, rng)
	if err != nil {
		t.Fatal(err)
	}

	ckptPath := filepath.Join(t.TempDir(), "weights", "model.gob")
	trainer := New(clf, 0.05, 5, 1, ckptPath, rng)
	if err := trainer.Run(set, nil); err != nil {
		t.Fatal(err)
	}

	// A fresh model restored from the checkpoint matches the trained one.
	restored, err := model.New(table, 6, 2, 1.0, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatal(err)
	}
	if err := model.LoadCheckpoint(restored, ckptPath); err != nil {
		t.Fatal(err)
	}
	if restored.U.Value.At(0, 0) != clf.U.Value.At(0, 0) {
		t.Error("checkpoint does not reflect trained parameters")
	}
}

func TestRun_EmptySet(t *testing.T) {
	_, table := syntheticSet(2, 4)
	rng := rand.New(rand.NewSource(4))

	clf, err := model.New(table, 6, 2, 1.0, rng)
	if err != nil {
		t.Fatal(err)
	}

	trainer := New(clf, 0.05, 5, 1, filepath.Join(t.TempDir(), "model.gob"), rng)
	if err := trainer.Run(&corpus.Set{}, nil); err == nil {
		t.Fatal("expected error for empty training set")
	}
}

func meanOfLine(t *testing.T, line string) float64 {
	t.Helper()
	fields := strings.Fields(line)
	if len(fields) == 0 {
		t.Fatal("empty loss-log line")
	}
	sum := 0.0
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			t.Fatalf("bad loss value %q: %v", f, err)
		}
		sum += v
	}
	return sum / float64(len(fields))
}

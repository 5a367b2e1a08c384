package infer

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/crimson-sun/topicnet/internal/corpus"
	"github.com/crimson-sun/topicnet/internal/embedding"
	"github.com/crimson-sun/topicnet/internal/model"
)

func testSetup(t *testing.T) (*model.Classifier, *corpus.Set) {
	t.Helper()
	table := &embedding.Table{
		Data: make([]float64, 5*3),
		Rows: 5,
		Dim:  3,
	}
	for i := 0; i < 4*3; i++ {
		table.Data[i] = float64(i%7)*0.1 - 0.3
	}

	clf, err := model.New(table, 4, 3, 1.0, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}

	set := &corpus.Set{
		Docs: [][]int{
			{0, 1, 2, 4},
			{3, 2, 4, 4},
			{1, 1, 0, 3},
			{2, 4, 4, 4},
			{0, 3, 1, 4},
		},
		Lengths: []int{3, 2, 4, 1, 3},
		Labels:  []int{0, 1, 2, 0, 1},
	}
	return clf, set
}

func TestPredict_OnePredictionPerDocument(t *testing.T) {
	clf, set := testSetup(t)

	preds, err := Predict(clf, set, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(preds) != set.Len() {
		t.Fatalf("expected %d predictions, got %d", set.Len(), len(preds))
	}
	for i, p := range preds {
		if p < 0 || p >= clf.NumClasses {
			t.Fatalf("prediction %d out of range: %d", i, p)
		}
	}
}

func TestPredict_BatchSizeDoesNotChangeResult(t *testing.T) {
	clf, set := testSetup(t)

	small, err := Predict(clf, set, 2)
	if err != nil {
		t.Fatal(err)
	}
	whole, err := Predict(clf, set, set.Len())
	if err != nil {
		t.Fatal(err)
	}
	for i := range small {
		if small[i] != whole[i] {
			t.Fatalf("prediction %d differs across batch sizes: %d vs %d", i, small[i], whole[i])
		}
	}
}

func TestAccuracy(t *testing.T) {
	acc, err := Accuracy([]int{0, 1, 2, 0}, []int{0, 1, 1, 0})
	if err != nil {
		t.Fatal(err)
	}
	if acc != 0.75 {
		t.Fatalf("expected accuracy 0.75, got %v", acc)
	}

	if _, err := Accuracy([]int{0}, []int{0, 1}); err == nil {
		t.Fatal("expected error for mismatched lengths")
	}
	if _, err := Accuracy(nil, nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestHiddenStates_ShapeAndOrder(t *testing.T) {
	clf, set := testSetup(t)

	states, err := HiddenStates(clf, set, 2)
	if err != nil {
		t.Fatal(err)
	}
	rows, cols := states.Dims()
	if rows != set.Len() || cols != clf.HiddenSize {
		t.Fatalf("expected %dx%d states, got %dx%d", set.Len(), clf.HiddenSize, rows, cols)
	}

	// Batch size must not affect values or order.
	whole, err := HiddenStates(clf, set, set.Len())
	if err != nil {
		t.Fatal(err)
	}
	if !mat.EqualApprox(states, whole, 1e-12) {
		t.Fatal("hidden states differ across batch sizes")
	}

	// Row i corresponds to document i: recompute document 3 alone.
	single := set.Subset([]int{3})
	_, hidden, err := clf.Forward(single.Docs, single.Lengths, false)
	if err != nil {
		t.Fatal(err)
	}
	for j := 0; j < cols; j++ {
		if states.At(3, j) != hidden.At(0, j) {
			t.Fatalf("state row 3 column %d mismatch", j)
		}
	}
}

func TestHiddenStates_EmptySet(t *testing.T) {
	clf, _ := testSetup(t)
	if _, err := HiddenStates(clf, &corpus.Set{}, 2); err == nil {
		t.Fatal("expected error for empty set")
	}
}

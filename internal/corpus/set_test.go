package corpus

import (
	"math/rand"
	"testing"
)

func makeSet(n, width int) *Set {
	s := &Set{
		Docs:    make([][]int, n),
		Lengths: make([]int, n),
		Labels:  make([]int, n),
	}
	for i := 0; i < n; i++ {
		doc := make([]int, width)
		for j := range doc {
			doc[j] = i // every token id encodes the document index
		}
		s.Docs[i] = doc
		s.Lengths[i] = width
		s.Labels[i] = i % 3
	}
	return s
}

func TestSplit_PreservesCount(t *testing.T) {
	s := makeSet(100, 4)
	rng := rand.New(rand.NewSource(1))

	train, val := Split(s, 0.99, rng)

	if train.Len() != 99 {
		t.Fatalf("expected 99 training docs, got %d", train.Len())
	}
	if val.Len() != 1 {
		t.Fatalf("expected 1 validation doc, got %d", val.Len())
	}
	if train.Len()+val.Len() != s.Len() {
		t.Fatalf("split lost documents: %d + %d != %d", train.Len(), val.Len(), s.Len())
	}
}

func TestSplit_Disjoint(t *testing.T) {
	s := makeSet(50, 2)
	rng := rand.New(rand.NewSource(7))

	train, val := Split(s, 0.8, rng)

	seen := make(map[int]bool)
	for _, doc := range train.Docs {
		seen[doc[0]] = true
	}
	for _, doc := range val.Docs {
		if seen[doc[0]] {
			t.Fatalf("document %d appears in both splits", doc[0])
		}
	}
}

func TestSplit_KeepsAlignment(t *testing.T) {
	s := makeSet(20, 3)
	// Distinguishable lengths per doc.
	for i := range s.Lengths {
		s.Lengths[i] = i + 1
	}
	rng := rand.New(rand.NewSource(3))

	train, _ := Split(s, 0.5, rng)

	for i, doc := range train.Docs {
		origIndex := doc[0]
		if train.Lengths[i] != origIndex+1 {
			t.Fatalf("length misaligned after split: doc %d has length %d", origIndex, train.Lengths[i])
		}
		if train.Labels[i] != origIndex%3 {
			t.Fatalf("label misaligned after split: doc %d has label %d", origIndex, train.Labels[i])
		}
	}
}

func TestMinibatches_CoversEveryDocumentOnce(t *testing.T) {
	s := makeSet(10, 2)
	rng := rand.New(rand.NewSource(42))

	batches := Minibatches(s, 3, true, rng)

	if len(batches) != 4 {
		t.Fatalf("expected 4 batches for 10 docs at size 3, got %d", len(batches))
	}
	counts := make(map[int]int)
	total := 0
	for _, b := range batches {
		if len(b.Docs) != len(b.Lengths) || len(b.Docs) != len(b.Labels) {
			t.Fatal("batch slices misaligned")
		}
		for _, doc := range b.Docs {
			counts[doc[0]]++
			total++
		}
	}
	if total != 10 {
		t.Fatalf("expected 10 documents across batches, got %d", total)
	}
	for i := 0; i < 10; i++ {
		if counts[i] != 1 {
			t.Fatalf("document %d appears %d times", i, counts[i])
		}
	}
}

func TestMinibatches_NonPositiveBatchSizeClamped(t *testing.T) {
	s := makeSet(3, 1)

	for _, size := range []int{0, -5} {
		batches := Minibatches(s, size, false, nil)
		if len(batches) != 3 {
			t.Fatalf("batch size %d: expected 3 batches of 1, got %d", size, len(batches))
		}
		total := 0
		for _, b := range batches {
			total += len(b.Docs)
		}
		if total != 3 {
			t.Fatalf("batch size %d: expected 3 documents, got %d", size, total)
		}
	}
}

func TestMinibatches_FixedOrderWithoutShuffle(t *testing.T) {
	s := makeSet(5, 1)

	batches := Minibatches(s, 2, false, nil)

	var order []int
	for _, b := range batches {
		for _, doc := range b.Docs {
			order = append(order, doc[0])
		}
	}
	for i, got := range order {
		if got != i {
			t.Fatalf("expected fixed order, got %v", order)
		}
	}
}

package corpus

import "math/rand"

// Set holds vectorized, padded documents aligned with their true lengths and
// topic labels. All three slices have the same length.
type Set struct {
	Docs    [][]int // [numDocs][maxLength] token ids
	Lengths []int   // true (unpadded) length per document
	Labels  []int   // topic assignment per document
}

// Len returns the number of documents in the set.
func (s *Set) Len() int { return len(s.Docs) }

// Subset gathers the documents at the given indices into a new Set. The
// underlying document slices are shared, not copied.
func (s *Set) Subset(indices []int) *Set {
	out := &Set{
		Docs:    make([][]int, len(indices)),
		Lengths: make([]int, len(indices)),
		Labels:  make([]int, len(indices)),
	}
	for i, idx := range indices {
		out.Docs[i] = s.Docs[idx]
		out.Lengths[i] = s.Lengths[idx]
		out.Labels[i] = s.Labels[idx]
	}
	return out
}

// Split shuffles the set and slices it into training and validation subsets.
// ratio is the fraction of documents assigned to training.
func Split(s *Set, ratio float64, rng *rand.Rand) (train, val *Set) {
	indices := rng.Perm(s.Len())
	splitIndex := int(float64(len(indices)) * ratio)
	return s.Subset(indices[:splitIndex]), s.Subset(indices[splitIndex:])
}

// Batch is one minibatch of aligned documents, lengths and labels.
type Batch struct {
	Docs    [][]int
	Lengths []int
	Labels  []int
}

// Minibatches slices the set into batches of at most batchSize documents.
// When shuffle is true the document order is permuted first (one permutation
// per call, i.e. per epoch); otherwise batches follow set order. The final
// short batch is included. A batch size below 1 is clamped to 1.
func Minibatches(s *Set, batchSize int, shuffle bool, rng *rand.Rand) []Batch {
	if batchSize < 1 {
		batchSize = 1
	}
	n := s.Len()
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	if shuffle {
		rng.Shuffle(n, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	var batches []Batch
	for start := 0; start < n; start += batchSize {
		end := start + batchSize
		if end > n {
			end = n
		}
		sub := s.Subset(indices[start:end])
		batches = append(batches, Batch{Docs: sub.Docs, Lengths: sub.Lengths, Labels: sub.Labels})
	}
	return batches
}

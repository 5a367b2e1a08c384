// Package embedding loads pretrained word vectors in GloVe text format and
// vectorizes tokenized abstracts against the resulting vocabulary.
package embedding

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Table is a row-major embedding matrix. Row i is the vector for vocabulary
// id i; the final row belongs to the padding token and is all zeros.
type Table struct {
	Data []float64 // flat [Rows * Dim]
	Rows int
	Dim  int
}

// Row returns the vector for the given vocabulary id as a shared view.
func (t *Table) Row(id int) []float64 {
	return t.Data[id*t.Dim : (id+1)*t.Dim]
}

// Load reads a GloVe-format embeddings file: one token per line followed by
// its vector components, whitespace-separated. The embedding dimension is
// inferred from the first line and ragged lines are rejected. maxVocab caps
// the number of pretrained tokens read (0 means no cap). A zero-vector row
// for the padding token is appended after loading.
func Load(path string, maxVocab int) (*Vocab, *Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("embedding: %w", err)
	}
	defer f.Close()

	tokenToID := make(map[string]int, 1<<16)
	var tokens []string
	var data []float64
	dim := 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, nil, fmt.Errorf("embedding: %s:%d: token without vector", path, lineNo)
		}
		if dim == 0 {
			dim = len(fields) - 1
		} else if len(fields)-1 != dim {
			return nil, nil, fmt.Errorf("embedding: %s:%d: expected %d components, got %d",
				path, lineNo, dim, len(fields)-1)
		}

		tok := fields[0]
		tokenToID[tok] = len(tokens)
		tokens = append(tokens, tok)
		for _, field := range fields[1:] {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("embedding: %s:%d: bad component %q: %w", path, lineNo, field, err)
			}
			data = append(data, val)
		}

		if maxVocab > 0 && len(tokens) >= maxVocab {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("embedding: read %s: %w", path, err)
	}
	if len(tokens) == 0 {
		return nil, nil, fmt.Errorf("embedding: file is empty: %s", path)
	}

	// Append the padding token with a zero vector.
	padID := len(tokens)
	tokenToID[PadToken] = padID
	tokens = append(tokens, PadToken)
	data = append(data, make([]float64, dim)...)

	vocab := &Vocab{
		tokenToID: tokenToID,
		idToToken: tokens,
		padID:     padID,
	}
	table := &Table{
		Data: data,
		Rows: len(tokens),
		Dim:  dim,
	}
	return vocab, table, nil
}

// VectorizeAndPad converts tokenized documents to fixed-width id sequences.
// Documents longer than maxLength are truncated; shorter ones are padded with
// the padding id. The returned lengths are the true (pre-padding) lengths,
// capped at maxLength.
func VectorizeAndPad(docs [][]string, v *Vocab, maxLength int) (ids [][]int, lengths []int) {
	ids = make([][]int, len(docs))
	lengths = make([]int, len(docs))
	for i, doc := range docs {
		n := len(doc)
		if n > maxLength {
			n = maxLength
		}
		row := make([]int, maxLength)
		for j := 0; j < n; j++ {
			row[j] = v.Lookup(doc[j])
		}
		for j := n; j < maxLength; j++ {
			row[j] = v.PadID()
		}
		ids[i] = row
		lengths[i] = n
	}
	return ids, lengths
}

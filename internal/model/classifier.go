package model

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/crimson-sun/topicnet/internal/embedding"
)

// Classifier is the full network: trainable embedding table, one LSTM layer
// unrolled over the padded sequence, dropout on the final hidden state, and a
// dense projection to per-class logits.
type Classifier struct {
	NumClasses int
	EmbedSize  int
	HiddenSize int
	VocabSize  int

	Embed *Param // [vocab x embed], seeded from pretrained vectors
	Cell  *LSTMCell
	U     *Param // [hidden x classes] output projection, no bias

	padRow int // the padding row, excluded from gradient scatter

	keepProb float64
	rng      *rand.Rand

	// Caches from the last training-mode Forward, consumed by Backward.
	steps     []*stepState
	stepIDs   [][]int    // token ids fed at each timestep
	hidden    *mat.Dense // final hidden state, pre-dropout
	dropMask  *mat.Dense // inverted-dropout mask (0 or 1/keepProb)
	trainMode bool
}

// New builds a classifier whose embedding table is initialized from the
// pretrained vectors. The table is trainable; its padding row (the table's
// final row) starts at zero and stays zero: out-of-vocabulary tokens map to
// it at in-length positions, so the gradient scatter skips it explicitly.
func New(table *embedding.Table, hiddenSize, numClasses int, keepProb float64, rng *rand.Rand) (*Classifier, error) {
	if keepProb <= 0 || keepProb > 1 {
		return nil, fmt.Errorf("model: keep probability %v outside (0,1]", keepProb)
	}
	embed := &Param{
		Name:  "embed",
		Value: mat.NewDense(table.Rows, table.Dim, append([]float64(nil), table.Data...)),
		Grad:  mat.NewDense(table.Rows, table.Dim, nil),
	}
	return &Classifier{
		NumClasses: numClasses,
		EmbedSize:  table.Dim,
		HiddenSize: hiddenSize,
		VocabSize:  table.Rows,
		Embed:      embed,
		Cell:       newLSTMCell(table.Dim, hiddenSize, rng),
		U:          newXavierParam("u", hiddenSize, numClasses, rng),
		padRow:     table.Rows - 1,
		keepProb:   keepProb,
		rng:        rng,
	}, nil
}

// Parameters returns all learnable parameters, embedding table included.
func (c *Classifier) Parameters() []*Param {
	params := []*Param{c.Embed}
	params = append(params, c.Cell.Parameters()...)
	params = append(params, c.U)
	return params
}

// Forward runs the network over a batch of padded documents. docs is
// [batch][seqLen] token ids; lengths holds each document's true length.
// In training mode dropout is applied to the final hidden state before the
// projection and activations are cached for Backward. The returned hidden
// matrix is the final state before dropout.
func (c *Classifier) Forward(docs [][]int, lengths []int, train bool) (logits, hidden *mat.Dense, err error) {
	batch := len(docs)
	if batch == 0 {
		return nil, nil, fmt.Errorf("model: empty batch")
	}
	if len(lengths) != batch {
		return nil, nil, fmt.Errorf("model: %d lengths for %d documents", len(lengths), batch)
	}
	seqLen := len(docs[0])
	for i, doc := range docs {
		if len(doc) != seqLen {
			return nil, nil, fmt.Errorf("model: document %d has width %d, expected %d", i, len(doc), seqLen)
		}
	}

	h := mat.NewDense(batch, c.HiddenSize, nil)
	cell := mat.NewDense(batch, c.HiddenSize, nil)

	c.steps = nil
	c.stepIDs = nil
	c.trainMode = train

	for t := 0; t < seqLen; t++ {
		ids := make([]int, batch)
		mask := make([]bool, batch)
		x := mat.NewDense(batch, c.EmbedSize, nil)
		for i := 0; i < batch; i++ {
			ids[i] = docs[i][t]
			mask[i] = t < lengths[i]
			x.SetRow(i, c.Embed.Value.RawRowView(ids[i]))
		}

		var st *stepState
		h, cell, st = c.Cell.step(x, h, cell, mask)
		if train {
			c.steps = append(c.steps, st)
			c.stepIDs = append(c.stepIDs, ids)
		}
	}

	c.hidden = h

	proj := h
	if train {
		c.dropMask = c.dropoutMask(batch)
		proj = hadamard(h, c.dropMask)
	}
	logits = matMul(proj, c.U.Value)
	return logits, h, nil
}

// Backward backpropagates from the logit gradient through the projection,
// dropout, the unrolled LSTM, and into the embedding rows that were used.
// Must follow a training-mode Forward.
func (c *Classifier) Backward(gradLogits *mat.Dense) error {
	if !c.trainMode || c.steps == nil {
		return fmt.Errorf("model: Backward without a training-mode Forward")
	}

	dropped := hadamard(c.hidden, c.dropMask)

	// Projection: logits = dropped * U.
	var gradU mat.Dense
	gradU.Mul(dropped.T(), gradLogits)
	c.U.Grad.Add(c.U.Grad, &gradU)

	gradH := matMul(gradLogits, c.U.Value.T())
	gradH = hadamard(gradH, c.dropMask)

	batch, _ := gradH.Dims()
	gradC := mat.NewDense(batch, c.HiddenSize, nil)

	for t := len(c.steps) - 1; t >= 0; t-- {
		gradX, gradHPrev, gradCPrev := c.Cell.stepBackward(c.steps[t], gradH, gradC)

		// Scatter token gradients into the embedding table. The padding
		// row is skipped even at in-length positions, where it stands in
		// for out-of-vocabulary tokens.
		ids := c.stepIDs[t]
		for i, id := range ids {
			if !c.steps[t].mask[i] || id == c.padRow {
				continue
			}
			for j := 0; j < c.EmbedSize; j++ {
				c.Embed.Grad.Set(id, j, c.Embed.Grad.At(id, j)+gradX.At(i, j))
			}
		}

		gradH = gradHPrev
		gradC = gradCPrev
	}

	// Caches are single-use.
	c.steps = nil
	c.stepIDs = nil
	return nil
}

// ZeroGrad resets every parameter gradient.
func (c *Classifier) ZeroGrad() {
	for _, p := range c.Parameters() {
		p.ZeroGrad()
	}
}

// dropoutMask builds an inverted-dropout mask: entries are 0 with probability
// 1-keepProb and 1/keepProb otherwise, so eval-mode activations need no
// rescale.
func (c *Classifier) dropoutMask(batch int) *mat.Dense {
	m := mat.NewDense(batch, c.HiddenSize, nil)
	if c.keepProb == 1 {
		data := m.RawMatrix().Data
		for i := range data {
			data[i] = 1
		}
		return m
	}
	scale := 1.0 / c.keepProb
	data := m.RawMatrix().Data
	for i := range data {
		if c.rng.Float64() < c.keepProb {
			data[i] = scale
		}
	}
	return m
}

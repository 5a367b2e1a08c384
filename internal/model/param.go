// Package model implements the LSTM topic classifier: a trainable embedding
// table, a single LSTM layer unrolled with sequence-length masking, and a
// dense projection from the final hidden state to per-class logits.
package model

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Param is a learnable parameter matrix with its gradient accumulator.
type Param struct {
	Name  string
	Value *mat.Dense
	Grad  *mat.Dense
}

func newParam(name string, rows, cols int) *Param {
	return &Param{
		Name:  name,
		Value: mat.NewDense(rows, cols, nil),
		Grad:  mat.NewDense(rows, cols, nil),
	}
}

// newXavierParam initializes with Glorot/Xavier normal init.
func newXavierParam(name string, rows, cols int, rng *rand.Rand) *Param {
	p := newParam(name, rows, cols)
	std := math.Sqrt(2.0 / float64(rows+cols))
	data := p.Value.RawMatrix().Data
	for i := range data {
		data[i] = rng.NormFloat64() * std
	}
	return p
}

// ZeroGrad resets the gradient accumulator.
func (p *Param) ZeroGrad() {
	data := p.Grad.RawMatrix().Data
	for i := range data {
		data[i] = 0
	}
}

// Dims returns the parameter's matrix dimensions.
func (p *Param) Dims() (rows, cols int) {
	return p.Value.Dims()
}

package model

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// LSTMCell holds the gate weights of a single LSTM layer. Each gate operates
// on the concatenation [x_t | h_{t-1}], so weights are
// (inputSize+hiddenSize) x hiddenSize.
type LSTMCell struct {
	InputSize  int
	HiddenSize int

	Wf, Wi, Wc, Wo *Param
	Bf, Bi, Bc, Bo *Param
}

func newLSTMCell(inputSize, hiddenSize int, rng *rand.Rand) *LSTMCell {
	combined := inputSize + hiddenSize
	c := &LSTMCell{
		InputSize:  inputSize,
		HiddenSize: hiddenSize,
		Wf:         newXavierParam("lstm.wf", combined, hiddenSize, rng),
		Wi:         newXavierParam("lstm.wi", combined, hiddenSize, rng),
		Wc:         newXavierParam("lstm.wc", combined, hiddenSize, rng),
		Wo:         newXavierParam("lstm.wo", combined, hiddenSize, rng),
		Bf:         newParam("lstm.bf", 1, hiddenSize),
		Bi:         newParam("lstm.bi", 1, hiddenSize),
		Bc:         newParam("lstm.bc", 1, hiddenSize),
		Bo:         newParam("lstm.bo", 1, hiddenSize),
	}
	// Forget-gate bias starts at 1.0 so the cell remembers by default.
	for j := 0; j < hiddenSize; j++ {
		c.Bf.Value.Set(0, j, 1.0)
	}
	return c
}

// Parameters returns all learnable parameters of the cell.
func (c *LSTMCell) Parameters() []*Param {
	return []*Param{c.Wf, c.Wi, c.Wc, c.Wo, c.Bf, c.Bi, c.Bc, c.Bo}
}

// stepState caches one timestep's activations for the backward pass.
type stepState struct {
	combined *mat.Dense // [batch x (input+hidden)]
	ft       *mat.Dense
	it       *mat.Dense
	gt       *mat.Dense // candidate cell state
	ot       *mat.Dense
	cPrev    *mat.Dense // blended cell state entering the step
	tanhCt   *mat.Dense // tanh of the pre-blend cell state
	mask     []bool     // true where t < document length
}

// step runs one timestep over a batch. Rows whose mask entry is false carry
// hPrev and cPrev through unchanged, matching dynamic_rnn's sequence-length
// behavior.
func (c *LSTMCell) step(x, hPrev, cPrev *mat.Dense, mask []bool) (h, cNext *mat.Dense, st *stepState) {
	var combined mat.Dense
	combined.Augment(x, hPrev)

	ft := apply(sigmoid, gateLinear(&combined, c.Wf, c.Bf))
	it := apply(sigmoid, gateLinear(&combined, c.Wi, c.Bi))
	gt := apply(math.Tanh, gateLinear(&combined, c.Wc, c.Bc))
	ot := apply(sigmoid, gateLinear(&combined, c.Wo, c.Bo))

	ct := matAdd(hadamard(ft, cPrev), hadamard(it, gt))
	tanhCt := apply(math.Tanh, ct)
	h = hadamard(ot, tanhCt)

	// Padded steps keep the previous state.
	cNext = mat.DenseCopyOf(ct)
	blendRows(h, hPrev, mask)
	blendRows(cNext, cPrev, mask)

	st = &stepState{
		combined: &combined,
		ft:       ft,
		it:       it,
		gt:       gt,
		ot:       ot,
		cPrev:    cPrev,
		tanhCt:   tanhCt,
		mask:     mask,
	}
	return h, cNext, st
}

// stepBackward backpropagates one timestep. gradH and gradC are the
// gradients on the step's blended outputs; the returned gradients apply to
// the step's input x and the incoming h and c. Masked rows pass their
// gradient straight through to the previous step.
func (c *LSTMCell) stepBackward(st *stepState, gradH, gradC *mat.Dense) (gradX, gradHPrev, gradCPrev *mat.Dense) {
	// Split gradients between the cell computation (real rows) and the
	// carry-through (padded rows).
	gradHCell := mat.DenseCopyOf(gradH)
	gradCCell := mat.DenseCopyOf(gradC)
	maskRows(gradHCell, st.mask)
	maskRows(gradCCell, st.mask)

	var carryH, carryC mat.Dense
	carryH.Sub(gradH, gradHCell)
	carryC.Sub(gradC, gradCCell)

	// h = ot * tanh(ct)
	one := func(v float64) float64 { return 1 - v }
	dSigmoid := func(a *mat.Dense) *mat.Dense { return hadamard(a, apply(one, a)) }
	dTanh := func(a *mat.Dense) *mat.Dense {
		return apply(func(v float64) float64 { return 1 - v*v }, a)
	}

	deltaO := hadamard(hadamard(gradHCell, st.tanhCt), dSigmoid(st.ot))

	// ct gradient: from c-chain plus through tanh in the h-chain.
	gradCt := matAdd(gradCCell, hadamard(hadamard(gradHCell, st.ot), dTanh(st.tanhCt)))

	// ct = ft*cPrev + it*gt
	deltaF := hadamard(hadamard(gradCt, st.cPrev), dSigmoid(st.ft))
	deltaI := hadamard(hadamard(gradCt, st.gt), dSigmoid(st.it))
	deltaG := hadamard(hadamard(gradCt, st.it), dTanh(st.gt))
	gradCPrevCell := hadamard(gradCt, st.ft)

	// Accumulate parameter gradients.
	combinedT := st.combined.T()
	for _, wd := range []struct {
		w, b  *Param
		delta *mat.Dense
	}{
		{c.Wf, c.Bf, deltaF},
		{c.Wi, c.Bi, deltaI},
		{c.Wc, c.Bc, deltaG},
		{c.Wo, c.Bo, deltaO},
	} {
		var gw mat.Dense
		gw.Mul(combinedT, wd.delta)
		wd.w.Grad.Add(wd.w.Grad, &gw)
		accumColSum(wd.b.Grad, wd.delta)
	}

	// Gradient w.r.t. the concatenated input.
	gradCombined := matMul(deltaF, c.Wf.Value.T())
	gradCombined.Add(gradCombined, matMul(deltaI, c.Wi.Value.T()))
	gradCombined.Add(gradCombined, matMul(deltaG, c.Wc.Value.T()))
	gradCombined.Add(gradCombined, matMul(deltaO, c.Wo.Value.T()))

	batch, _ := gradCombined.Dims()
	gradX = mat.DenseCopyOf(gradCombined.Slice(0, batch, 0, c.InputSize))
	gradHPrevCell := gradCombined.Slice(0, batch, c.InputSize, c.InputSize+c.HiddenSize)

	gradHPrev = matAdd(gradHPrevCell, &carryH)
	gradCPrev = matAdd(gradCPrevCell, &carryC)
	return gradX, gradHPrev, gradCPrev
}

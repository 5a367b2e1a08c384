package model

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Small helpers over gonum's mat.Dense so the LSTM math reads close to the
// equations. All of them allocate their result.

func matMul(a, b mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Mul(a, b)
	return &out
}

func hadamard(a, b mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.MulElem(a, b)
	return &out
}

func matAdd(a, b mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Add(a, b)
	return &out
}

func apply(f func(float64) float64, a mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 { return f(v) }, a)
	return &out
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// addRowBroadcast adds a 1-row bias to every row of dst in place.
func addRowBroadcast(dst *mat.Dense, bias *mat.Dense) {
	rows, cols := dst.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			dst.Set(i, j, dst.At(i, j)+bias.At(0, j))
		}
	}
}

// accumColSum adds the column sums of src into the 1-row matrix dst.
func accumColSum(dst *mat.Dense, src *mat.Dense) {
	rows, cols := src.Dims()
	for j := 0; j < cols; j++ {
		sum := dst.At(0, j)
		for i := 0; i < rows; i++ {
			sum += src.At(i, j)
		}
		dst.Set(0, j, sum)
	}
}

// gateLinear computes combined*W + b with the bias broadcast across rows.
func gateLinear(combined *mat.Dense, w, b *Param) *mat.Dense {
	out := matMul(combined, w.Value)
	addRowBroadcast(out, b.Value)
	return out
}

// blendRows overwrites row i of dst with row i of alt wherever mask[i] is
// false. Used to carry h and c through padded timesteps unchanged.
func blendRows(dst *mat.Dense, alt *mat.Dense, mask []bool) {
	_, cols := dst.Dims()
	for i, keep := range mask {
		if keep {
			continue
		}
		for j := 0; j < cols; j++ {
			dst.Set(i, j, alt.At(i, j))
		}
	}
}

// maskRows zeroes every row of m whose mask entry is false, in place.
func maskRows(m *mat.Dense, mask []bool) {
	_, cols := m.Dims()
	for i, keep := range mask {
		if keep {
			continue
		}
		for j := 0; j < cols; j++ {
			m.Set(i, j, 0)
		}
	}
}

package model

import "math"

// Adam implements the Adam optimizer with bias correction. Moment buffers
// live for the lifetime of the optimizer, one pair per parameter.
type Adam struct {
	params       []*Param
	learningRate float64
	beta1        float64
	beta2        float64
	epsilon      float64
	t            int
	m            [][]float64 // first moment, flat per parameter
	v            [][]float64 // second moment, flat per parameter
}

// NewAdam creates an Adam optimizer over the given parameters.
func NewAdam(params []*Param, learningRate float64) *Adam {
	a := &Adam{
		params:       params,
		learningRate: learningRate,
		beta1:        0.9,
		beta2:        0.999,
		epsilon:      1e-8,
		m:            make([][]float64, len(params)),
		v:            make([][]float64, len(params)),
	}
	for i, p := range params {
		n := len(p.Value.RawMatrix().Data)
		a.m[i] = make([]float64, n)
		a.v[i] = make([]float64, n)
	}
	return a
}

// Step applies one update from the accumulated gradients.
func (a *Adam) Step() {
	a.t++
	mCorr := 1 - math.Pow(a.beta1, float64(a.t))
	vCorr := 1 - math.Pow(a.beta2, float64(a.t))

	for i, p := range a.params {
		data := p.Value.RawMatrix().Data
		grad := p.Grad.RawMatrix().Data
		m := a.m[i]
		v := a.v[i]
		for j := range data {
			g := grad[j]
			m[j] = a.beta1*m[j] + (1-a.beta1)*g
			v[j] = a.beta2*v[j] + (1-a.beta2)*g*g
			mHat := m[j] / mCorr
			vHat := v[j] / vCorr
			data[j] -= a.learningRate * mHat / (math.Sqrt(vHat) + a.epsilon)
		}
	}
}

// ZeroGrad resets the gradients of all parameters.
func (a *Adam) ZeroGrad() {
	for _, p := range a.params {
		p.ZeroGrad()
	}
}

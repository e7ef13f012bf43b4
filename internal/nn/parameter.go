// Package nn holds the trainable parameter type shared by models and
// optimizers.
package nn

import "math"

// Parameter is a flat vector of weights with its gradient.
type Parameter struct {
	Name         string
	Data         []float64
	Grad         []float64
	RequiresGrad bool
}

// NewParameter creates a trainable parameter initialised with data.
func NewParameter(name string, data []float64) *Parameter {
	return &Parameter{
		Name:         name,
		Data:         data,
		Grad:         make([]float64, len(data)),
		RequiresGrad: true,
	}
}

// Zeros creates a trainable parameter of size n filled with zeros.
func Zeros(name string, n int) *Parameter {
	return NewParameter(name, make([]float64, n))
}

// ZeroGrad resets the gradient.
func (p *Parameter) ZeroGrad() {
	for i := range p.Grad {
		p.Grad[i] = 0
	}
}

// Trainable filters params down to those that require gradients.
func Trainable(params []*Parameter) []*Parameter {
	var out []*Parameter
	for _, p := range params {
		if p.RequiresGrad {
			out = append(out, p)
		}
	}
	return out
}

// GradNorm returns the global L2 norm of all gradients.
func GradNorm(params []*Parameter) float64 {
	var sum float64
	for _, p := range params {
		for _, g := range p.Grad {
			sum += g * g
		}
	}
	return math.Sqrt(sum)
}

// ClipGradNorm scales gradients so their global L2 norm is at most maxNorm
// and returns the norm before clipping.
func ClipGradNorm(params []*Parameter, maxNorm float64) float64 {
	norm := GradNorm(params)
	if maxNorm <= 0 || norm <= maxNorm {
		return norm
	}
	scale := maxNorm / (norm + 1e-6)
	for _, p := range params {
		for i := range p.Grad {
			p.Grad[i] *= scale
		}
	}
	return norm
}

// Package spaces implements the action and observation spaces of
// simulated environments. The spaces mirror gym.spaces: a Box is a
// (possibly unbounded) box in R^n and a Discrete space is the set
// {0, 1, ..., n-1}.
package spaces

import (
	"gonum.org/v1/gonum/mat"
)

// Space describes a space of actions, observations, etc.
type Space interface {
	// Sample takes a sample from within the spaces bounds
	Sample() []*mat.VecDense

	// Contains returns whether x is in the space
	Contains(x interface{}) bool

	// Seed seeds the sampler for the space
	Seed(uint64)

	// Low returns the lower bounds of the space
	Low() []*mat.VecDense

	// High returns the upper bounds of the space
	High() []*mat.VecDense
}

// Bounds returns the lower and upper bounds of the first sub-space of
// space as []float64.
func Bounds(space Space) (low, high []float64) {
	l, h := space.Low(), space.High()
	if len(l) == 0 || len(h) == 0 {
		return nil, nil
	}
	return mat.Col(nil, 0, l[0]), mat.Col(nil, 0, h[0])
}

// toFloats converts an argument to Contains into a []float64
func toFloats(in interface{}) ([]float64, bool) {
	switch x := in.(type) {
	case []float64:
		return x, true
	case *mat.VecDense:
		if x == nil {
			return nil, false
		}
		return mat.Col(nil, 0, x), true
	case float64:
		return []float64{x}, true
	case int:
		return []float64{float64(x)}, true
	default:
		return nil, false
	}
}

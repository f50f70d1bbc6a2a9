package spaces

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Discrete represents a space of discrete numbers: (0, 1, 2, ..., n-1).
type Discrete struct {
	rand.Source
	rng distuv.Categorical
	n   int // Number of actions, actions in (0, 1, ..., n-1)
}

// NewDiscrete returns a new Discrete space of n elements
func NewDiscrete(n int, seed uint64) (*Discrete, error) {
	if n <= 0 {
		return nil, fmt.Errorf("newDiscrete: n must be positive, got %v", n)
	}

	src := rand.NewSource(seed)
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1.0
	}
	rng := distuv.NewCategorical(weights, src)

	return &Discrete{
		Source: src,
		rng:    rng,
		n:      n,
	}, nil
}

// N returns the number of elements in the space
func (d *Discrete) N() int {
	return d.n
}

// Sample takes a sample from within the spaces bounds
func (d *Discrete) Sample() []*mat.VecDense {
	sample := float64(int(d.rng.Rand()) % d.n)
	return []*mat.VecDense{mat.NewVecDense(1, []float64{sample})}
}

// Contains returns whether x is in the space
func (d *Discrete) Contains(in interface{}) bool {
	x, ok := toFloats(in)
	if !ok || len(x) != 1 {
		return false
	}
	intX := int(x[0])
	return float64(intX) == x[0] && intX < d.n && intX >= 0
}

// High returns the upper bounds of the space
func (d *Discrete) High() []*mat.VecDense {
	return []*mat.VecDense{mat.NewVecDense(1, []float64{float64(d.n - 1)})}
}

// Low returns the lower bounds of the space
func (d *Discrete) Low() []*mat.VecDense {
	return []*mat.VecDense{mat.NewVecDense(1, []float64{0.0})}
}

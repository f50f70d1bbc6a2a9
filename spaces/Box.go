package spaces

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"
)

// Box represents a (possibly unbounded) box in R^n. Specifically, a
// Box represents the Cartesian product of n closed intervals. Each
// interval has the form of one of [a, b], (-∞, b], [a, ∞), or
// (-∞, ∞) for a, b ϵ R.
type Box struct {
	rand.Source
	rng                        *distmv.Uniform // nil unless fully bounded
	low, high                  *mat.VecDense
	boundedBelow, boundedAbove []bool
}

// NewBox returns a new Box with the given bounds. Samples are drawn
// using a source seeded with seed.
func NewBox(low, high []float64, seed uint64) (*Box, error) {
	if len(low) == 0 {
		return nil, fmt.Errorf("newBox: bounds must be non-empty")
	}
	if len(low) != len(high) {
		return nil, fmt.Errorf("newBox: lower bound has %v dimensions "+
			"but upper bound has %v", len(low), len(high))
	}
	for i := range low {
		if low[i] > high[i] {
			return nil, fmt.Errorf("newBox: lower bound %v exceeds upper "+
				"bound %v at dimension %v", low[i], high[i], i)
		}
	}

	boundedBelow := make([]bool, len(low))
	boundedAbove := make([]bool, len(high))
	bounded := true
	for i := range low {
		boundedBelow[i] = math.Inf(-1) < low[i]
		boundedAbove[i] = math.Inf(1) > high[i]
		bounded = bounded && boundedBelow[i] && boundedAbove[i]
	}

	src := rand.NewSource(seed)
	var rng *distmv.Uniform
	if bounded {
		bounds := make([]r1.Interval, len(low))
		for i := range bounds {
			bounds[i] = r1.Interval{Min: low[i], Max: high[i]}
		}
		rng = distmv.NewUniform(bounds, src)
	}

	return &Box{
		Source:       src,
		rng:          rng,
		low:          mat.NewVecDense(len(low), append([]float64(nil), low...)),
		high:         mat.NewVecDense(len(high), append([]float64(nil), high...)),
		boundedBelow: boundedBelow,
		boundedAbove: boundedAbove,
	}, nil
}

// Sample takes a sample from within the spaces bounds. Unbounded
// dimensions are sampled from a standard normal, and dimensions
// bounded on one side only are sampled from a shifted exponential.
func (b *Box) Sample() []*mat.VecDense {
	if b.rng != nil {
		sample := b.rng.Rand(nil)
		return []*mat.VecDense{mat.NewVecDense(len(sample), sample)}
	}

	sample := make([]float64, b.low.Len())
	for i := range sample {
		low, high := b.low.AtVec(i), b.high.AtVec(i)
		switch {
		case b.boundedBelow[i] && b.boundedAbove[i]:
			sample[i] = distuv.Uniform{Min: low, Max: high, Src: b.Source}.Rand()
		case b.boundedBelow[i]:
			sample[i] = low + distuv.Exponential{Rate: 1, Src: b.Source}.Rand()
		case b.boundedAbove[i]:
			sample[i] = high - distuv.Exponential{Rate: 1, Src: b.Source}.Rand()
		default:
			sample[i] = distuv.Normal{Mu: 0, Sigma: 1, Src: b.Source}.Rand()
		}
	}
	return []*mat.VecDense{mat.NewVecDense(len(sample), sample)}
}

// Contains returns whether in is in the space. The argument in must
// be either a []float64 or *mat.VecDense
func (b *Box) Contains(in interface{}) bool {
	x, ok := toFloats(in)
	if !ok {
		return false
	}
	if len(x) != b.low.Len() {
		return false
	}

	for i := range x {
		if x[i] < b.low.AtVec(i) || x[i] > b.high.AtVec(i) {
			return false
		}
	}
	return true
}

// High returns the upper bounds of the space
func (b *Box) High() []*mat.VecDense {
	return []*mat.VecDense{b.high}
}

// Low returns the lower bounds of the space
func (b *Box) Low() []*mat.VecDense {
	return []*mat.VecDense{b.low}
}

// Len returns the dimensionality of the space
func (b *Box) Len() int {
	return b.low.Len()
}

// BoundedAbove returns whether the space is bounded above
func (b *Box) BoundedAbove() []bool {
	return b.boundedAbove
}

// Bounded below returns whether the space is bounded below
func (b *Box) BoundedBelow() []bool {
	return b.boundedBelow
}

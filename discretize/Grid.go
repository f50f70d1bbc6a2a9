// Package discretize maps a finite set of action indices onto points
// of a continuous action space using a uniform grid.
package discretize

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// ErrActionOutOfRange is returned when an action index does not name
// a point of the grid
var ErrActionOutOfRange = errors.New("action index out of range")

// UniformGrid returns, for each dimension d, bins[d] evenly spaced
// points between low[d] and high[d], both bounds included. A dimension
// with a single bin holds only low[d].
func UniformGrid(low, high []float64, bins []int) ([][]float64, error) {
	if len(low) != len(high) {
		return nil, fmt.Errorf("uniformGrid: lower bound has %v dimensions "+
			"but upper bound has %v", len(low), len(high))
	}
	if len(bins) != len(low) {
		return nil, fmt.Errorf("uniformGrid: %v bins given for %v dimensions",
			len(bins), len(low))
	}

	grid := make([][]float64, len(low))
	for d := range grid {
		switch {
		case bins[d] < 1:
			return nil, fmt.Errorf("uniformGrid: dimension %v has %v bins",
				d, bins[d])
		case bins[d] == 1:
			grid[d] = []float64{low[d]}
		default:
			grid[d] = floats.Span(make([]float64, bins[d]), low[d], high[d])
		}
	}
	return grid, nil
}

// Discretizer converts a discrete action index into a continuous
// action. The index is read as a mixed-radix number over the
// dimensions of the action space, dimension 0 varying fastest, so
// that a space with bins b0, b1, ... has b0 * b1 * ... actions.
type Discretizer struct {
	bins []int
}

// New returns a Discretizer splitting dimension d into bins[d] points.
// If the action space has more dimensions than bins, the last element
// of bins is used for the remaining dimensions.
func New(bins ...int) (*Discretizer, error) {
	if len(bins) == 0 {
		return nil, fmt.Errorf("new: at least one bin count required")
	}
	for _, b := range bins {
		if b < 1 {
			return nil, fmt.Errorf("new: bin counts must be positive, got %v",
				bins)
		}
	}
	return &Discretizer{bins: append([]int(nil), bins...)}, nil
}

// Bins returns the number of bins used for each of dims dimensions
func (d *Discretizer) Bins(dims int) []int {
	bins := make([]int, dims)
	for i := range bins {
		if i < len(d.bins) {
			bins[i] = d.bins[i]
		} else {
			bins[i] = d.bins[len(d.bins)-1]
		}
	}
	return bins
}

// NumActions returns the number of discrete actions for a space of
// dims dimensions
func (d *Discretizer) NumActions(dims int) int {
	n := 1
	for _, b := range d.Bins(dims) {
		n *= b
	}
	return n
}

// Action returns the point of the uniform grid over [low, high] named
// by index. The grid is computed from the bounds on every call.
func (d *Discretizer) Action(index int, low, high []float64) ([]float64,
	error) {
	bins := d.Bins(len(low))
	grid, err := UniformGrid(low, high, bins)
	if err != nil {
		return nil, fmt.Errorf("action: %v", err)
	}

	if n := d.NumActions(len(low)); index < 0 || index >= n {
		return nil, fmt.Errorf("action: index %v not in [0, %v): %w", index,
			n, ErrActionOutOfRange)
	}

	action := make([]float64, len(grid))
	for dim := range grid {
		action[dim] = grid[dim][index%bins[dim]]
		index /= bins[dim]
	}
	return action, nil
}

package monitor

import (
	"fmt"

	"github.com/emer/etable/etensor"
	"github.com/samuelfneumann/rlenv/spaces"
	"gonum.org/v1/gonum/mat"
)

// Policy selects the action of a single agent
type Policy interface {
	Act(state *etensor.Float64) (*mat.VecDense, error)
}

// MultiPolicy selects one row of actions per agent
type MultiPolicy interface {
	ActAll(states []*etensor.Float64) (*mat.Dense, error)
}

// Random is a Policy and MultiPolicy choosing actions uniformly at
// random from an action space
type Random struct {
	space spaces.Space
}

// NewRandom returns a new Random policy over space
func NewRandom(space spaces.Space) (*Random, error) {
	if space == nil {
		return nil, fmt.Errorf("newRandom: nil action space")
	}
	return &Random{space: space}, nil
}

// Act samples an action, ignoring the state
func (r *Random) Act(*etensor.Float64) (*mat.VecDense, error) {
	samples := r.space.Sample()
	if len(samples) == 0 {
		return nil, fmt.Errorf("act: action space returned no samples")
	}
	return samples[0], nil
}

// ActAll samples one action per state
func (r *Random) ActAll(states []*etensor.Float64) (*mat.Dense, error) {
	if len(states) == 0 {
		return nil, fmt.Errorf("actAll: no states")
	}

	var actions *mat.Dense
	for i, state := range states {
		action, err := r.Act(state)
		if err != nil {
			return nil, fmt.Errorf("actAll: %v", err)
		}
		if actions == nil {
			actions = mat.NewDense(len(states), action.Len(), nil)
		}
		actions.SetRow(i, mat.Col(nil, 0, action))
	}
	return actions, nil
}

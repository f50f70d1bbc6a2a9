package rlenv

import (
	"fmt"
	"math"

	"github.com/emer/etable/etensor"
	"github.com/samuelfneumann/rlenv/framestack"
	"github.com/samuelfneumann/rlenv/preprocess"
)

// StateTransform is one stage of the pipeline converting simulator
// observations into states. Reset is applied to the first observation
// of an episode and Step to every following one.
type StateTransform interface {
	Reset(obs *etensor.Float64) (*etensor.Float64, error)
	Step(obs *etensor.Float64) (*etensor.Float64, error)
}

// Pipeline applies its stages in order
type Pipeline []StateTransform

// Reset runs the first observation of an episode through each stage
func (p Pipeline) Reset(obs *etensor.Float64) (*etensor.Float64, error) {
	var err error
	for _, stage := range p {
		if obs, err = stage.Reset(obs); err != nil {
			return nil, err
		}
	}
	return obs, nil
}

// Step runs an observation through each stage
func (p Pipeline) Step(obs *etensor.Float64) (*etensor.Float64, error) {
	var err error
	for _, stage := range p {
		if obs, err = stage.Step(obs); err != nil {
			return nil, err
		}
	}
	return obs, nil
}

// OneHot encodes an observation holding a single discrete index as a
// vector of Width elements with a 1 at the index and 0 elsewhere
type OneHot struct {
	Width int
}

// Reset one-hot encodes obs
func (o OneHot) Reset(obs *etensor.Float64) (*etensor.Float64, error) {
	return o.Step(obs)
}

// Step one-hot encodes obs
func (o OneHot) Step(obs *etensor.Float64) (*etensor.Float64, error) {
	if obs == nil || len(obs.Values) != 1 {
		var shape []int
		if obs != nil {
			shape = obs.Shapes()
		}
		return nil, fmt.Errorf("oneHot: expected a single index, got shape "+
			"%v: %w", shape, ErrInvalidObservationShape)
	}

	value := obs.Values[0]
	index := int(value)
	if float64(index) != value || index < 0 || index >= o.Width {
		return nil, fmt.Errorf("oneHot: index %v not in [0, %v): %w", value,
			o.Width, ErrInvalidObservationShape)
	}

	out := etensor.NewFloat64([]int{o.Width}, nil, nil)
	out.Values[index] = 1
	return out, nil
}

// Normalize divides every element of an observation by Scale
type Normalize struct {
	Scale float64
}

// Reset normalizes obs
func (n Normalize) Reset(obs *etensor.Float64) (*etensor.Float64, error) {
	return n.Step(obs)
}

// Step normalizes obs
func (n Normalize) Step(obs *etensor.Float64) (*etensor.Float64, error) {
	if obs == nil {
		return nil, fmt.Errorf("normalize: nil observation: %w",
			ErrInvalidObservationShape)
	}
	out := etensor.NewFloat64(obs.Shapes(), nil, nil)
	for i, v := range obs.Values {
		out.Values[i] = v / n.Scale
	}
	return out, nil
}

// Preprocess applies a frame preprocessor to each observation
type Preprocess struct {
	preprocess.Preprocessor
}

// Reset preprocesses obs
func (p Preprocess) Reset(obs *etensor.Float64) (*etensor.Float64, error) {
	return p.Step(obs)
}

// Step preprocesses obs
func (p Preprocess) Step(obs *etensor.Float64) (*etensor.Float64, error) {
	return p.Process(obs)
}

// Stack stacks the most recent frames of an episode into one state
// with the newest frame first. On Reset every slot is filled with the
// first frame of the episode.
type Stack struct {
	stack *framestack.Stack
}

// NewStack returns a new Stack stage of the given depth
func NewStack(depth int) (*Stack, error) {
	stack, err := framestack.New(depth)
	if err != nil {
		return nil, fmt.Errorf("newStack: %w", err)
	}
	return &Stack{stack: stack}, nil
}

// Reset refills the stack with obs and returns the stacked frames
func (s *Stack) Reset(obs *etensor.Float64) (*etensor.Float64, error) {
	if err := s.stack.Initialize(obs); err != nil {
		return nil, fmt.Errorf("stack: %w", err)
	}
	return s.stack.Current(), nil
}

// Step pushes obs onto the stack and returns the stacked frames
func (s *Stack) Step(obs *etensor.Float64) (*etensor.Float64, error) {
	if err := s.stack.Push(obs); err != nil {
		return nil, fmt.Errorf("stack: %w", err)
	}
	return s.stack.Current(), nil
}

// Depth returns the number of stacked frames
func (s *Stack) Depth() int {
	return s.stack.Depth()
}

// normalizeScale returns the scale to normalize observations by,
// given the upper bounds of an observation space
func normalizeScale(high []float64) (float64, error) {
	if len(high) == 0 {
		return 0, fmt.Errorf("observation space has no upper bound")
	}
	scale := high[0]
	if scale == 0 || math.IsInf(scale, 0) || math.IsNaN(scale) {
		return 0, fmt.Errorf("cannot normalize by observation bound %v", scale)
	}
	return scale, nil
}

// Package framestack keeps the most recent frames of an episode so
// that they can be handed to an agent as a single state, letting the
// agent infer motion from static images.
package framestack

import (
	"errors"
	"fmt"

	"github.com/emer/etable/etensor"
	"github.com/samuelfneumann/rlenv/preprocess"
)

// ErrStackNotInitialized is returned when frames are pushed onto a
// Stack that was never initialized
var ErrStackNotInitialized = errors.New("frame stack not initialized")

// Stack is a fixed-depth history of frames. Slot 0 holds the newest
// frame and slot Depth()-1 the oldest. All frames in a Stack have the
// shape of the frame it was initialized with.
type Stack struct {
	depth  int
	shape  []int
	frames []*etensor.Float64
}

// New returns a new, uninitialized Stack holding depth frames
func New(depth int) (*Stack, error) {
	if depth < 1 {
		return nil, fmt.Errorf("new: depth must be positive, got %v", depth)
	}
	return &Stack{depth: depth}, nil
}

// Depth returns the number of frames in the stack
func (s *Stack) Depth() int {
	return s.depth
}

// Initialized returns whether Initialize has been called
func (s *Stack) Initialized() bool {
	return s.frames != nil
}

// Initialize fills every slot of the stack with a copy of frame and
// fixes the frame shape of the stack.
func (s *Stack) Initialize(frame *etensor.Float64) error {
	if frame == nil {
		return fmt.Errorf("initialize: nil frame: %w",
			preprocess.ErrInvalidObservationShape)
	}
	s.shape = append([]int(nil), frame.Shapes()...)
	s.frames = make([]*etensor.Float64, s.depth)
	for i := range s.frames {
		s.frames[i] = clone(frame)
	}
	return nil
}

// Push drops the oldest frame, shifts every other frame back by one
// slot and inserts frame at slot 0.
func (s *Stack) Push(frame *etensor.Float64) error {
	if !s.Initialized() {
		return fmt.Errorf("push: %w", ErrStackNotInitialized)
	}
	if frame == nil || !sameShape(s.shape, frame.Shapes()) {
		var got []int
		if frame != nil {
			got = frame.Shapes()
		}
		return fmt.Errorf("push: expected frame of shape %v, got %v: %w",
			s.shape, got, preprocess.ErrInvalidObservationShape)
	}

	// Reuse the evicted frame's buffer for the new frame
	oldest := s.frames[s.depth-1]
	copy(s.frames[1:], s.frames[:s.depth-1])
	copy(oldest.Values, frame.Values)
	s.frames[0] = oldest
	return nil
}

// Current returns the stacked frames as a new tensor of shape
// [Depth(), frame shape...], newest frame first. Current returns nil
// if the stack was never initialized.
func (s *Stack) Current() *etensor.Float64 {
	if !s.Initialized() {
		return nil
	}
	shape := append([]int{s.depth}, s.shape...)
	out := etensor.NewFloat64(shape, nil, nil)

	size := len(s.frames[0].Values)
	for i, frame := range s.frames {
		copy(out.Values[i*size:(i+1)*size], frame.Values)
	}
	return out
}

// Shape returns the shape of tensors returned by Current
func (s *Stack) Shape() []int {
	if !s.Initialized() {
		return nil
	}
	return append([]int{s.depth}, s.shape...)
}

func clone(frame *etensor.Float64) *etensor.Float64 {
	out := etensor.NewFloat64(frame.Shapes(), nil, nil)
	copy(out.Values, frame.Values)
	return out
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

package gym

import (
	"fmt"

	python "github.com/DataDog/go-python3"
	"github.com/samuelfneumann/rlenv/internal/pyconv"
	"github.com/samuelfneumann/rlenv/spaces"
)

// FromPythonSpace converts a Python Open AI Gym space to a Go
// equivalent. Borrows python.PyObject reference.
func FromPythonSpace(space *python.PyObject) (spaces.Space, error) {
	var value spaces.Space
	var err error
	switch space.Type() {
	case boxSpace:
		value, err = NewBoxSpace(space)

	case discreteSpace:
		value, err = NewDiscreteSpace(space)

	default:
		return nil, fmt.Errorf("fromPythonSpace: space %v not yet "+
			"implemented", python.PyUnicode_AsUTF8(space.Str()))
	}
	if err != nil {
		return nil, fmt.Errorf("fromPythonSpace: could not convert space: %v",
			err)
	}
	return value, nil
}

// NewBoxSpace takes a Python gym.spaces.Box and converts it into its
// Go counterpart. Bounds of multi-dimensional boxes, such as the
// bounds of image observations, are flattened.
func NewBoxSpace(boxSpace *python.PyObject) (*spaces.Box, error) {
	// Lower bounds
	low := boxSpace.GetAttrString("low")
	if low == nil {
		pyconv.PrintError()
		return nil, fmt.Errorf("newBoxSpace: space is not a Box")
	}
	defer low.DecRef()
	goLow, err := pyconv.Tensor(low)
	if err != nil {
		return nil, fmt.Errorf("newBoxSpace: could not compute lower "+
			"bound: %v", err)
	}

	// Upper bounds
	high := boxSpace.GetAttrString("high")
	if high == nil {
		pyconv.PrintError()
		return nil, fmt.Errorf("newBoxSpace: space is not a Box")
	}
	defer high.DecRef()
	goHigh, err := pyconv.Tensor(high)
	if err != nil {
		return nil, fmt.Errorf("newBoxSpace: could not compute upper "+
			"bound: %v", err)
	}

	return spaces.NewBox(goLow.Values, goHigh.Values, 0)
}

// NewDiscreteSpace takes a Python gym.spaces.Discrete and converts it
// into its Go counterpart.
func NewDiscreteSpace(space *python.PyObject) (*spaces.Discrete, error) {
	pythonN := space.GetAttrString("n")
	if pythonN == nil {
		pyconv.PrintError()
		return nil, fmt.Errorf("newDiscreteSpace: space is not a Discrete")
	}
	defer pythonN.DecRef()
	n := python.PyLong_AsLong(pythonN)

	return spaces.NewDiscrete(n, 0)
}

package rlenv

import (
	"errors"

	"github.com/samuelfneumann/rlenv/discretize"
	"github.com/samuelfneumann/rlenv/framestack"
	"github.com/samuelfneumann/rlenv/preprocess"
)

var (
	// ErrAdapterNotReady is returned by Step and Render when the
	// adapter has never been reset
	ErrAdapterNotReady = errors.New("adapter not ready: reset not called")

	// ErrUnsupportedOption is returned by constructors given an option
	// the adapter cannot honour
	ErrUnsupportedOption = errors.New("option not supported by adapter")

	// ErrNoBrains is returned when a Unity simulation has no brains
	ErrNoBrains = errors.New("simulation has no brains")

	// ErrInvalidObservationShape is returned when an observation does
	// not have the shape a transform expects
	ErrInvalidObservationShape = preprocess.ErrInvalidObservationShape

	// ErrStackNotInitialized is returned when a frame is pushed onto
	// a frame stack before it is initialized
	ErrStackNotInitialized = framestack.ErrStackNotInitialized

	// ErrActionOutOfRange is returned when a discrete action does not
	// name a point of the action grid
	ErrActionOutOfRange = discretize.ErrActionOutOfRange
)

// Package preprocess converts raw visual observations into the frames
// handed to a frame stack.
//
// Raw frames are *etensor.Float64 tensors of shape [height, width, 3]
// holding either 8-bit channel values (0..255) or values in [0, 1].
package preprocess

import (
	"errors"
	"fmt"

	"github.com/emer/etable/etensor"
)

// ErrInvalidObservationShape is returned when an observation does not
// have the shape a transform expects.
var ErrInvalidObservationShape = errors.New("invalid observation shape")

// Preprocessor converts a raw frame into a processed frame. A
// Preprocessor never modifies its input.
type Preprocessor interface {
	Process(frame *etensor.Float64) (*etensor.Float64, error)

	// Shape returns the shape of processed frames given the shape of
	// raw frames
	Shape(raw []int) ([]int, error)
}

// imageShape returns the height, width and number of channels of
// a frame of shape [height, width, channels]
func imageShape(frame *etensor.Float64, channels int) (h, w, c int,
	err error) {
	if frame == nil {
		return 0, 0, 0, fmt.Errorf("nil frame: %w", ErrInvalidObservationShape)
	}
	return imageDims(frame.Shapes(), channels)
}

func imageDims(shape []int, channels int) (h, w, c int, err error) {
	if len(shape) != 3 {
		return 0, 0, 0, fmt.Errorf("expected 3 dimensions, got shape %v: %w",
			shape, ErrInvalidObservationShape)
	}
	h, w, c = shape[0], shape[1], shape[2]
	if h <= 0 || w <= 0 || c <= 0 {
		return 0, 0, 0, fmt.Errorf("empty frame of shape %v: %w", shape,
			ErrInvalidObservationShape)
	}
	if channels > 0 && c != channels {
		return 0, 0, 0, fmt.Errorf("expected %v channels, got shape %v: %w",
			channels, shape, ErrInvalidObservationShape)
	}
	return h, w, c, nil
}

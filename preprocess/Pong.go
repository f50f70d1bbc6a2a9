package preprocess

import (
	"fmt"

	"github.com/emer/etable/etensor"
)

// Constants for the Pong layout: the playing field lies between rows
// 35 and 195 of a 210x160 frame.
const (
	pongTop    = 35
	pongBottom = 195
	pongStride = 2

	pongBackground1 = 144
	pongBackground2 = 109
)

// Pong is a pre-processing specific to the Atari game Pong. The
// playing field is cropped, subsampled by a factor of two, the two
// background colours are erased and everything else (paddles, ball)
// is set to 1. A 210x160 frame becomes an 80x80 binary frame.
//
// Pong only gives sensible frames for Pong; use Atari for other games.
type Pong struct{}

// NewPong returns a new Pong preprocessor
func NewPong() *Pong {
	return &Pong{}
}

// Shape returns the shape of processed frames
func (p *Pong) Shape(raw []int) ([]int, error) {
	h, w, _, err := imageDims(raw, 3)
	if err != nil {
		return nil, fmt.Errorf("shape: %w", err)
	}
	if h < pongBottom {
		return nil, fmt.Errorf("shape: frame height %v less than %v: %w",
			h, pongBottom, ErrInvalidObservationShape)
	}
	return []int{(pongBottom - pongTop) / pongStride, (w + 1) / pongStride}, nil
}

// Process converts frame of shape [height, width, 3] with
// height >= 195 into a binary frame of shape [80, ceil(width/2)].
func (p *Pong) Process(frame *etensor.Float64) (*etensor.Float64, error) {
	if frame == nil {
		return nil, fmt.Errorf("process: nil frame: %w",
			ErrInvalidObservationShape)
	}
	shape, err := p.Shape(frame.Shapes())
	if err != nil {
		return nil, fmt.Errorf("process: %w", err)
	}
	w := frame.Shapes()[1]

	out := etensor.NewFloat64(shape, nil, nil)
	for i := 0; i < shape[0]; i++ {
		y := pongTop + i*pongStride
		for j := 0; j < shape[1]; j++ {
			x := j * pongStride
			switch frame.Values[3*(y*w+x)] {
			case 0, pongBackground1, pongBackground2:
			default:
				out.Values[i*shape[1]+j] = 1
			}
		}
	}
	return out, nil
}

package preprocess

import (
	"fmt"
	"math"

	"github.com/emer/etable/etensor"
	"gonum.org/v1/gonum/mat"
)

// DefaultSize is the side length of frames produced by NewAtari
const DefaultSize = 80

// Luminance weights used for grayscale conversion
const (
	redWeight   = 0.2125
	greenWeight = 0.7154
	blueWeight  = 0.0721
)

// Atari is the generic pre-processing for Atari frames. A colour frame
// is converted to grayscale and resized to a Size x Size frame using
// area interpolation, so that each output pixel is the mean of the
// input pixels it covers.
type Atari struct {
	// Size is the side length of processed frames
	Size int

	// Scale divides raw channel values so that processed frames lie
	// in [0, 1]. A Scale of 0 leaves values unchanged.
	Scale float64
}

// NewAtari returns an Atari preprocessor producing size x size frames
// from 8-bit colour frames
func NewAtari(size int) *Atari {
	return &Atari{Size: size, Scale: 255}
}

// Shape returns the shape of processed frames
func (a *Atari) Shape(raw []int) ([]int, error) {
	if _, _, _, err := imageDims(raw, 3); err != nil {
		return nil, fmt.Errorf("shape: %w", err)
	}
	return []int{a.Size, a.Size}, nil
}

// Process converts frame of shape [height, width, 3] into a frame of
// shape [Size, Size]
func (a *Atari) Process(frame *etensor.Float64) (*etensor.Float64, error) {
	h, w, _, err := imageShape(frame, 3)
	if err != nil {
		return nil, fmt.Errorf("process: %w", err)
	}
	if a.Size <= 0 {
		return nil, fmt.Errorf("process: frame size must be positive, got %v",
			a.Size)
	}

	scale := a.Scale
	if scale == 0 {
		scale = 1
	}

	gray := mat.NewDense(h, w, nil)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := 3 * (y*w + x)
			r := frame.Values[idx]
			g := frame.Values[idx+1]
			b := frame.Values[idx+2]
			gray.Set(y, x, (redWeight*r+greenWeight*g+blueWeight*b)/scale)
		}
	}

	// Separable area interpolation: out = rows * gray * colsᵀ
	rows := areaWeights(a.Size, h)
	cols := areaWeights(a.Size, w)
	var tmp, resized mat.Dense
	tmp.Mul(rows, gray)
	resized.Mul(&tmp, cols.T())

	out := etensor.NewFloat64([]int{a.Size, a.Size}, nil, nil)
	copy(out.Values, resized.RawMatrix().Data)
	return out, nil
}

// areaWeights returns the out x in matrix whose row i holds the
// fraction of output pixel i covered by each input pixel
func areaWeights(out, in int) *mat.Dense {
	weights := mat.NewDense(out, in, nil)
	scale := float64(in) / float64(out)
	for o := 0; o < out; o++ {
		start := float64(o) * scale
		end := float64(o+1) * scale
		for i := int(math.Floor(start)); i < in && float64(i) < end; i++ {
			overlap := math.Min(end, float64(i+1)) - math.Max(start, float64(i))
			if overlap > 0 {
				weights.Set(o, i, overlap/scale)
			}
		}
	}
	return weights
}

// Package visualize draws environment states as images, one tile per
// stacked frame, for inspecting the output of frame pre-processing.
package visualize

import (
	"errors"
	"fmt"
	"io"

	"github.com/emer/etable/etensor"
	"github.com/fogleman/gg"
	"gonum.org/v1/gonum/floats"
)

// Padding is the number of pixels between tiles
const Padding = 2

// BarWidth and BarHeight are the size in pixels of each bar drawn for
// vector states, before scaling
const (
	BarWidth  = 8
	BarHeight = 64
)

// ErrUnsupportedShape is returned for states that cannot be drawn
var ErrUnsupportedShape = errors.New("unsupported state shape")

// frame is a single image of a state, with values in [0, 1]
type frame struct {
	height, width int
	colour        bool
	at            func(y, x, c int) float64
}

// Draw draws state, scaling each cell to scale x scale pixels. States
// are drawn according to their shape:
//
//	[n]           bar chart
//	[H, W]        grayscale frame
//	[H, W, 3]     colour frame
//	[K, H, W]     K grayscale frames
//	[K, C, H, W]  K colour (C == 3) or grayscale (C == 1) frames
//
// A 3-D state whose last dimension is 3 is drawn as one colour frame,
// so a stack of grayscale frames 3 pixels wide must be drawn with
// DrawFrames. Values are rescaled to the range of the state before
// drawing.
func Draw(state *etensor.Float64, scale int) (*gg.Context, error) {
	return draw(state, scale, false)
}

// DrawFrames is like Draw, but always reads a 3-D state as [K, H, W]
// grayscale frames
func DrawFrames(state *etensor.Float64, scale int) (*gg.Context, error) {
	return draw(state, scale, true)
}

func draw(state *etensor.Float64, scale int, stacked bool) (*gg.Context,
	error) {
	if state == nil || len(state.Values) == 0 {
		return nil, fmt.Errorf("draw: empty state: %w", ErrUnsupportedShape)
	}
	if scale <= 0 {
		return nil, fmt.Errorf("draw: scale must be positive, got %v", scale)
	}

	lo, hi := floats.Min(state.Values), floats.Max(state.Values)
	span := hi - lo
	if span == 0 {
		span = 1
	}
	value := func(i int) float64 {
		return (state.Values[i] - lo) / span
	}

	shape := state.Shapes()
	if len(shape) == 1 {
		return bars(shape[0], value, scale), nil
	}

	frames, err := split(shape, value, stacked)
	if err != nil {
		return nil, fmt.Errorf("draw: %w", err)
	}
	return tiles(frames, scale), nil
}

// SavePNG draws state and writes it as a PNG file to path
func SavePNG(state *etensor.Float64, path string, scale int) error {
	dc, err := Draw(state, scale)
	if err != nil {
		return fmt.Errorf("savePNG: %w", err)
	}
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("savePNG: %w", err)
	}
	return nil
}

// EncodePNG draws state and writes it in PNG format to w
func EncodePNG(state *etensor.Float64, w io.Writer, scale int) error {
	dc, err := Draw(state, scale)
	if err != nil {
		return fmt.Errorf("encodePNG: %w", err)
	}
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encodePNG: %w", err)
	}
	return nil
}

// split divides a state of two or more dimensions into frames. If
// stacked is set, a 3-D state is never read as a colour frame.
func split(shape []int, value func(i int) float64, stacked bool) ([]frame,
	error) {
	switch len(shape) {
	case 2:
		h, w := shape[0], shape[1]
		return []frame{{h, w, false, func(y, x, _ int) float64 {
			return value(y*w + x)
		}}}, nil

	case 3:
		if shape[2] == 3 && !stacked {
			h, w := shape[0], shape[1]
			return []frame{{h, w, true, func(y, x, c int) float64 {
				return value(3*(y*w+x) + c)
			}}}, nil
		}
		k, h, w := shape[0], shape[1], shape[2]
		frames := make([]frame, k)
		for i := range frames {
			offset := i * h * w
			frames[i] = frame{h, w, false, func(y, x, _ int) float64 {
				return value(offset + y*w + x)
			}}
		}
		return frames, nil

	case 4:
		k, c, h, w := shape[0], shape[1], shape[2], shape[3]
		if c != 1 && c != 3 {
			break
		}
		frames := make([]frame, k)
		for i := range frames {
			offset := i * c * h * w
			colour := c == 3
			frames[i] = frame{h, w, colour, func(y, x, ch int) float64 {
				if !colour {
					ch = 0
				}
				return value(offset + ch*h*w + y*w + x)
			}}
		}
		return frames, nil
	}
	return nil, fmt.Errorf("shape %v: %w", shape, ErrUnsupportedShape)
}

// tiles draws frames side by side, from left to right
func tiles(frames []frame, scale int) *gg.Context {
	width, height := 0, 0
	for _, f := range frames {
		width += f.width*scale + Padding
		if f.height*scale > height {
			height = f.height * scale
		}
	}
	width -= Padding

	dc := gg.NewContext(width, height)
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	left := 0
	for _, f := range frames {
		for y := 0; y < f.height; y++ {
			for x := 0; x < f.width; x++ {
				if f.colour {
					dc.SetRGB(f.at(y, x, 0), f.at(y, x, 1), f.at(y, x, 2))
				} else {
					v := f.at(y, x, 0)
					dc.SetRGB(v, v, v)
				}
				dc.DrawRectangle(float64(left+x*scale), float64(y*scale),
					float64(scale), float64(scale))
				dc.Fill()
			}
		}
		left += f.width*scale + Padding
	}
	return dc
}

// bars draws a vector state as a bar chart
func bars(n int, value func(i int) float64, scale int) *gg.Context {
	width, height := n*BarWidth*scale, BarHeight*scale

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetRGB(0.2, 0.4, 0.8)
	for i := 0; i < n; i++ {
		h := value(i) * float64(height)
		dc.DrawRectangle(float64(i*BarWidth*scale), float64(height)-h,
			float64(BarWidth*scale), h)
	}
	dc.Fill()
	return dc
}

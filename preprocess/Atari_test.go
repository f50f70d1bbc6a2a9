package preprocess_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/emer/etable/etensor"
	"github.com/samuelfneumann/rlenv/preprocess"
)

// colourFrame returns a height x width x 3 frame filled by fill
func colourFrame(height, width int, fill func(y, x, c int) float64) *etensor.Float64 {
	frame := etensor.NewFloat64([]int{height, width, 3}, nil, nil)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			for c := 0; c < 3; c++ {
				frame.Values[3*(y*width+x)+c] = fill(y, x, c)
			}
		}
	}
	return frame
}

func TestAtariShape(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	atari := preprocess.NewAtari(preprocess.DefaultSize)

	for _, dims := range [][2]int{{210, 160}, {80, 80}, {84, 84}, {250, 160}} {
		frame := colourFrame(dims[0], dims[1], func(_, _, _ int) float64 {
			return float64(rng.Intn(256))
		})
		out, err := atari.Process(frame)
		if err != nil {
			t.Fatalf("process %v: %v", dims, err)
		}

		shape := out.Shapes()
		if len(shape) != 2 || shape[0] != 80 || shape[1] != 80 {
			t.Errorf("process %v: expected shape [80 80], got %v", dims, shape)
		}
		for _, v := range out.Values {
			if v < 0 || v > 1+1e-9 {
				t.Fatalf("process %v: value %v outside [0, 1]", dims, v)
			}
		}
	}
}

func TestAtariConstantFrame(t *testing.T) {
	atari := preprocess.NewAtari(80)
	frame := colourFrame(210, 160, func(_, _, c int) float64 {
		return []float64{200, 100, 50}[c]
	})

	out, err := atari.Process(frame)
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	want := (0.2125*200 + 0.7154*100 + 0.0721*50) / 255
	for i, v := range out.Values {
		if math.Abs(v-want) > 1e-9 {
			t.Fatalf("process: value %v at %v, want %v", v, i, want)
		}
	}
}

func TestAtariAreaAverage(t *testing.T) {
	// A 4x4 checkerboard of gray values averaged into 2x2 blocks
	atari := &preprocess.Atari{Size: 2}
	frame := colourFrame(4, 4, func(y, x, _ int) float64 {
		return float64((y + x) % 2)
	})

	out, err := atari.Process(frame)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	for _, v := range out.Values {
		if math.Abs(v-0.5) > 1e-9 {
			t.Errorf("process: expected block mean 0.5, got %v", v)
		}
	}
}

func TestAtariDoesNotMutate(t *testing.T) {
	frame := colourFrame(20, 20, func(y, x, c int) float64 {
		return float64(y + x + c)
	})
	before := append([]float64(nil), frame.Values...)

	if _, err := preprocess.NewAtari(10).Process(frame); err != nil {
		t.Fatalf("process: %v", err)
	}
	for i := range before {
		if before[i] != frame.Values[i] {
			t.Fatalf("process: input modified at index %v", i)
		}
	}
}

func TestAtariInvalidShape(t *testing.T) {
	atari := preprocess.NewAtari(80)
	frames := []*etensor.Float64{
		nil,
		etensor.NewFloat64([]int{210, 160}, nil, nil),
		etensor.NewFloat64([]int{210, 160, 4}, nil, nil),
		etensor.NewFloat64([]int{0, 160, 3}, nil, nil),
	}

	for _, frame := range frames {
		_, err := atari.Process(frame)
		if !errors.Is(err, preprocess.ErrInvalidObservationShape) {
			t.Errorf("process: expected ErrInvalidObservationShape, got %v", err)
		}
	}
}

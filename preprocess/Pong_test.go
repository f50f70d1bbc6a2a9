package preprocess_test

import (
	"errors"
	"testing"

	"github.com/emer/etable/etensor"
	"github.com/samuelfneumann/rlenv/preprocess"
)

func pongFrame() *etensor.Float64 {
	return colourFrame(210, 160, func(y, x, c int) float64 {
		if c != 0 {
			return 17
		}
		if x < 80 {
			return 144
		}
		return 109
	})
}

func setRed(frame *etensor.Float64, y, x int, v float64) {
	w := frame.Shapes()[1]
	frame.Values[3*(y*w+x)] = v
}

func TestPongProcess(t *testing.T) {
	frame := pongFrame()
	setRed(frame, 35+2*10, 2*5, 92)     // paddle
	setRed(frame, 35+2*40, 2*70, 236)   // ball
	setRed(frame, 35+2*40+1, 2*70, 236) // odd row, dropped by subsampling
	setRed(frame, 20, 20, 213)          // above the playing field

	out, err := preprocess.NewPong().Process(frame)
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	shape := out.Shapes()
	if len(shape) != 2 || shape[0] != 80 || shape[1] != 80 {
		t.Fatalf("process: expected shape [80 80], got %v", shape)
	}

	var ones int
	for _, v := range out.Values {
		if v != 0 && v != 1 {
			t.Fatalf("process: non-binary value %v", v)
		}
		if v == 1 {
			ones++
		}
	}
	if ones != 2 {
		t.Errorf("process: expected 2 foreground pixels, got %v", ones)
	}
	if out.Value([]int{10, 5}) != 1 {
		t.Error("process: paddle pixel not set")
	}
	if out.Value([]int{40, 70}) != 1 {
		t.Error("process: ball pixel not set")
	}
}

func TestPongDoesNotMutate(t *testing.T) {
	frame := pongFrame()
	before := append([]float64(nil), frame.Values...)

	if _, err := preprocess.NewPong().Process(frame); err != nil {
		t.Fatalf("process: %v", err)
	}
	for i := range before {
		if before[i] != frame.Values[i] {
			t.Fatalf("process: input modified at index %v", i)
		}
	}
}

func TestPongInvalidShape(t *testing.T) {
	frames := []*etensor.Float64{
		nil,
		etensor.NewFloat64([]int{100, 160, 3}, nil, nil),
		etensor.NewFloat64([]int{210, 160}, nil, nil),
	}
	for _, frame := range frames {
		_, err := preprocess.NewPong().Process(frame)
		if !errors.Is(err, preprocess.ErrInvalidObservationShape) {
			t.Errorf("process: expected ErrInvalidObservationShape, got %v", err)
		}
	}
}

func TestChannelsFirst(t *testing.T) {
	frame := colourFrame(2, 3, func(y, x, c int) float64 {
		return float64(100*c + 10*y + x)
	})

	out, err := preprocess.ChannelsFirst{}.Process(frame)
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	shape := out.Shapes()
	if len(shape) != 3 || shape[0] != 3 || shape[1] != 2 || shape[2] != 3 {
		t.Fatalf("process: expected shape [3 2 3], got %v", shape)
	}
	for c := 0; c < 3; c++ {
		for y := 0; y < 2; y++ {
			for x := 0; x < 3; x++ {
				want := float64(100*c + 10*y + x)
				if got := out.Value([]int{c, y, x}); got != want {
					t.Errorf("process: at [%v %v %v] got %v, want %v",
						c, y, x, got, want)
				}
			}
		}
	}
}

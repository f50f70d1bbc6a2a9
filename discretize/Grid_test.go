package discretize_test

import (
	"errors"
	"math"
	"testing"

	"github.com/samuelfneumann/rlenv/discretize"
)

const threshold = 1e-12

func TestUniformGrid(t *testing.T) {
	grid, err := discretize.UniformGrid([]float64{-1, 0}, []float64{1, 10},
		[]int{3, 6})
	if err != nil {
		t.Fatalf("uniformGrid: %v", err)
	}

	want := [][]float64{{-1, 0, 1}, {0, 2, 4, 6, 8, 10}}
	for d := range want {
		if len(grid[d]) != len(want[d]) {
			t.Fatalf("uniformGrid: dimension %v has %v points, want %v", d,
				len(grid[d]), len(want[d]))
		}
		for i := range want[d] {
			if math.Abs(grid[d][i]-want[d][i]) > threshold {
				t.Errorf("uniformGrid: point %v of dimension %v is %v, want %v",
					i, d, grid[d][i], want[d][i])
			}
		}
	}
}

func TestUniformGridSingleBin(t *testing.T) {
	grid, err := discretize.UniformGrid([]float64{-1, 2}, []float64{1, 4},
		[]int{1, 2})
	if err != nil {
		t.Fatalf("uniformGrid: %v", err)
	}

	if len(grid[0]) != 1 || grid[0][0] != -1 {
		t.Errorf("uniformGrid: single bin gave %v, want [-1]", grid[0])
	}
	if len(grid[1]) != 2 || grid[1][0] != 2 || grid[1][1] != 4 {
		t.Errorf("uniformGrid: two bins gave %v, want [2 4]", grid[1])
	}
}

func TestActionBoundaries(t *testing.T) {
	disc, err := discretize.New(3)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	tests := []struct {
		index int
		want  float64
	}{
		{0, -1},
		{1, 0},
		{2, 1},
	}
	for _, test := range tests {
		action, err := disc.Action(test.index, []float64{-1}, []float64{1})
		if err != nil {
			t.Fatalf("action(%v): %v", test.index, err)
		}
		if len(action) != 1 || math.Abs(action[0]-test.want) > threshold {
			t.Errorf("action(%v): got %v, want [%v]", test.index, action,
				test.want)
		}
	}
}

func TestActionMultiDimensional(t *testing.T) {
	disc, _ := discretize.New(2, 3)
	low, high := []float64{0, -1}, []float64{1, 1}

	if n := disc.NumActions(2); n != 6 {
		t.Fatalf("numActions: got %v, want 6", n)
	}

	// index = i0 + 2*i1
	action, err := disc.Action(5, low, high)
	if err != nil {
		t.Fatalf("action: %v", err)
	}
	if action[0] != 1 || action[1] != 1 {
		t.Errorf("action(5): got %v, want [1 1]", action)
	}

	action, _ = disc.Action(2, low, high)
	if action[0] != 0 || action[1] != 0 {
		t.Errorf("action(2): got %v, want [0 0]", action)
	}
}

func TestActionOutOfRange(t *testing.T) {
	disc, _ := discretize.New(3)
	for _, index := range []int{-1, 3, 100} {
		_, err := disc.Action(index, []float64{-1}, []float64{1})
		if !errors.Is(err, discretize.ErrActionOutOfRange) {
			t.Errorf("action(%v): expected ErrActionOutOfRange, got %v",
				index, err)
		}
	}
}

func TestBinsRepeatLast(t *testing.T) {
	disc, _ := discretize.New(4)
	bins := disc.Bins(3)
	for _, b := range bins {
		if b != 4 {
			t.Fatalf("bins: got %v, want [4 4 4]", bins)
		}
	}
}

func TestNewInvalid(t *testing.T) {
	if _, err := discretize.New(); err == nil {
		t.Error("new: expected error for no bins")
	}
	if _, err := discretize.New(3, 0); err == nil {
		t.Error("new: expected error for zero bins")
	}
}

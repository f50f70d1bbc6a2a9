package spaces_test

import (
	"math"
	"testing"

	"github.com/samuelfneumann/rlenv/spaces"
	"gonum.org/v1/gonum/mat"
)

func TestBoxSample(t *testing.T) {
	low := []float64{-1, 0, -2.5}
	high := []float64{1, 10, -2}
	box, err := spaces.NewBox(low, high, 42)
	if err != nil {
		t.Fatalf("newBox: %v", err)
	}

	for i := 0; i < 100; i++ {
		sample := box.Sample()
		if len(sample) != 1 {
			t.Fatalf("sample: expected 1 vector, got %v", len(sample))
		}
		if !box.Contains(sample[0]) {
			t.Errorf("sample: %v outside of bounds", mat.Formatted(sample[0].T()))
		}
	}
}

func TestBoxSampleUnbounded(t *testing.T) {
	low := []float64{math.Inf(-1), 0, math.Inf(-1)}
	high := []float64{math.Inf(1), math.Inf(1), 3}
	box, err := spaces.NewBox(low, high, 7)
	if err != nil {
		t.Fatalf("newBox: %v", err)
	}

	for i := 0; i < 100; i++ {
		sample := box.Sample()[0]
		for j := 0; j < sample.Len(); j++ {
			if math.IsNaN(sample.AtVec(j)) || math.IsInf(sample.AtVec(j), 0) {
				t.Fatalf("sample: dimension %v not finite: %v", j,
					sample.AtVec(j))
			}
		}
		if sample.AtVec(1) < 0 || sample.AtVec(2) > 3 {
			t.Errorf("sample: %v outside of bounds", mat.Formatted(sample.T()))
		}
	}
}

func TestBoxSeed(t *testing.T) {
	a, _ := spaces.NewBox([]float64{-1}, []float64{1}, 1)
	b, _ := spaces.NewBox([]float64{-1}, []float64{1}, 2)
	b.Seed(1)

	for i := 0; i < 10; i++ {
		x, y := a.Sample()[0].AtVec(0), b.Sample()[0].AtVec(0)
		if x != y {
			t.Fatalf("seed: samples %v and %v differ after reseeding", x, y)
		}
	}
}

func TestBoxContains(t *testing.T) {
	box, err := spaces.NewBox([]float64{-1, -1}, []float64{1, 1}, 0)
	if err != nil {
		t.Fatalf("newBox: %v", err)
	}

	tests := []struct {
		in   interface{}
		want bool
	}{
		{[]float64{0, 0}, true},
		{[]float64{-1, 1}, true},
		{mat.NewVecDense(2, []float64{0.5, -0.5}), true},
		{[]float64{1.5, 0}, false},
		{[]float64{0}, false},
		{"not a vector", false},
	}

	for _, test := range tests {
		if got := box.Contains(test.in); got != test.want {
			t.Errorf("contains(%v): got %v, want %v", test.in, got, test.want)
		}
	}
}

func TestNewBoxErrors(t *testing.T) {
	if _, err := spaces.NewBox(nil, nil, 0); err == nil {
		t.Error("newBox: expected error for empty bounds")
	}
	if _, err := spaces.NewBox([]float64{0}, []float64{1, 2}, 0); err == nil {
		t.Error("newBox: expected error for mismatched bounds")
	}
	if _, err := spaces.NewBox([]float64{2}, []float64{1}, 0); err == nil {
		t.Error("newBox: expected error for inverted bounds")
	}
}

func TestBounds(t *testing.T) {
	box, _ := spaces.NewBox([]float64{-2, 0}, []float64{2, 5}, 0)
	low, high := spaces.Bounds(box)
	if len(low) != 2 || low[0] != -2 || low[1] != 0 {
		t.Errorf("bounds: unexpected low %v", low)
	}
	if len(high) != 2 || high[0] != 2 || high[1] != 5 {
		t.Errorf("bounds: unexpected high %v", high)
	}
}

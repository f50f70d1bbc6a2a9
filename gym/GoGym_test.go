//go:build python

package gym_test

import (
	"testing"

	"github.com/samuelfneumann/rlenv/gym"
	"github.com/samuelfneumann/rlenv/spaces"
	"gonum.org/v1/gonum/mat"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name       string
		continuous bool
	}{
		{"MountainCarContinuous-v0", true},
		{"CartPole-v1", false},
		{"Acrobot-v1", false},
	}

	for _, test := range tests {
		// Create the environment
		env, err := gym.Make(test.name)
		if err != nil {
			t.Fatalf("make: %v", err)
		}

		if env.ContinuousAction() != test.continuous {
			t.Errorf("make: expected continuous action %v for %v", test.continuous,
				test.name)
		}

		if env.ObservationSpace() == nil {
			t.Errorf("make: nil observation space")
		}
		if env.ActionSpace() == nil {
			t.Errorf("make: nil action space")
		}

		// Seed the environment
		_, err = env.Seed(10)
		if err != nil {
			t.Errorf("seed: %v", err)
		}

		// Reset the environment
		obs, err := env.Reset()
		if err != nil {
			t.Errorf("reset: %v", err)
		}
		low, _ := spaces.Bounds(env.ObservationSpace())
		if obs.Len() != len(low) {
			t.Errorf("reset: expected observation of size %v, got %v",
				len(low), obs.Len())
		}

		// Take an environmental step
		_, _, _, err = env.Step(mat.NewVecDense(1, []float64{0.0}))
		if err != nil {
			t.Errorf("step: %v", err)
		}

		if err := env.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	}
}

func TestDiscreteSpace(t *testing.T) {
	env, err := gym.Make("CartPole-v1")
	if err != nil {
		t.Fatalf("make: %v", err)
	}
	defer env.Close()

	discrete, ok := env.ActionSpace().(*spaces.Discrete)
	if !ok {
		t.Fatalf("actionSpace: expected *spaces.Discrete, got %T",
			env.ActionSpace())
	}
	if discrete.N() != 2 {
		t.Errorf("actionSpace: expected 2 actions, got %v", discrete.N())
	}
}

package rlenv

import (
	"fmt"
	"math"
	"time"

	"github.com/emer/etable/etensor"
	"github.com/samuelfneumann/rlenv/discretize"
	"github.com/samuelfneumann/rlenv/preprocess"
	"github.com/samuelfneumann/rlenv/spaces"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// Gym adapts a Gym-like Simulator to the Environment interface. It
// works with the simpler Gym environments (CartPole, MountainCar,
// LunarLander, FrozenLake, etc.) and, through NewGymAtari and
// NewGymAtariPong, with Atari games.
//
// The Simulator is seeded once, at construction.
type Gym struct {
	sim     Simulator
	seed    int
	variant string

	pipeline    Pipeline
	discretizer *discretize.Discretizer
	frameSleep  time.Duration

	ready bool
	log   *logrus.Entry
}

// NewGym returns a new Gym adapter for sim, seeding sim with seed
func NewGym(sim Simulator, seed int, opts ...Option) (*Gym, error) {
	return newGym("Gym", sim, seed, opts)
}

// NewGymAtari returns a Gym adapter for Atari games. Frames are
// converted to 80x80 grayscale and the last 4 frames are stacked
// into a state of shape [4, 80, 80].
func NewGymAtari(sim Simulator, seed int, opts ...Option) (*Gym, error) {
	opts = append([]Option{
		WithFrameStack(DefaultStackDepth,
			preprocess.NewAtari(preprocess.DefaultSize)),
	}, opts...)
	return newGym("GymAtari", sim, seed, opts)
}

// NewGymAtariPong returns a Gym adapter for Pong only, using the
// Pong-specific frame pre-processing. States have shape [4, 80, 80].
func NewGymAtariPong(sim Simulator, seed int, opts ...Option) (*Gym,
	error) {
	opts = append([]Option{
		WithFrameStack(DefaultStackDepth, preprocess.NewPong()),
	}, opts...)
	return newGym("GymAtariPong", sim, seed, opts)
}

func newGym(variant string, sim Simulator, seed int,
	opts []Option) (*Gym, error) {
	if sim == nil {
		return nil, fmt.Errorf("new%v: nil simulator", variant)
	}
	o := buildOptions(opts)

	pipeline, err := o.pipeline(func() []float64 {
		_, high := spaces.Bounds(sim.ObservationSpace())
		return high
	})
	if err != nil {
		return nil, fmt.Errorf("new%v: %w", variant, err)
	}

	var disc *discretize.Discretizer
	if len(o.actionBins) > 0 {
		if disc, err = discretize.New(o.actionBins...); err != nil {
			return nil, fmt.Errorf("new%v: %w", variant, err)
		}
	}

	log := o.log(variant).WithField("seed", seed)
	if _, err := sim.Seed(seed); err != nil {
		return nil, fmt.Errorf("new%v: could not seed simulator: %w",
			variant, err)
	}
	log.Debug("seeded simulator")

	return &Gym{
		sim:         sim,
		seed:        seed,
		variant:     variant,
		pipeline:    pipeline,
		discretizer: disc,
		frameSleep:  o.frameSleep,
		log:         log,
	}, nil
}

// Variant returns the name of the adapter variant
func (g *Gym) Variant() string {
	return g.variant
}

// Seed returns the seed the simulator was seeded with
func (g *Gym) Seed() int {
	return g.seed
}

// Ready returns whether the adapter has been reset
func (g *Gym) Ready() bool {
	return g.ready
}

// ActionSpace returns the action space of the simulator
func (g *Gym) ActionSpace() spaces.Space {
	return g.sim.ActionSpace()
}

// NumActions returns the number of discrete actions when action bins
// are configured, and 0 otherwise
func (g *Gym) NumActions() int {
	if g.discretizer == nil {
		return 0
	}
	low, _ := spaces.Bounds(g.sim.ActionSpace())
	return g.discretizer.NumActions(len(low))
}

// Reset resets the simulator and returns the first state of the
// episode
func (g *Gym) Reset() (*etensor.Float64, error) {
	obs, err := g.sim.Reset()
	if err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	state, err := g.pipeline.Reset(obs)
	if err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}

	if !g.ready {
		g.log.Debug("adapter ready")
	}
	g.ready = true
	return state, nil
}

// Step takes one environmental step. If action bins are configured,
// element 0 of action is the index of a point on the uniform grid
// over the simulator's action space, which is recomputed from the
// current action bounds on every call.
func (g *Gym) Step(action *mat.VecDense) (*etensor.Float64, float64, bool,
	error) {
	if !g.ready {
		return nil, 0, false, fmt.Errorf("step: %w", ErrAdapterNotReady)
	}

	if g.discretizer != nil {
		if action == nil || action.Len() == 0 {
			return nil, 0, false, fmt.Errorf("step: missing action index")
		}
		index := action.AtVec(0)
		if index != math.Trunc(index) {
			return nil, 0, false, fmt.Errorf("step: index %v: %w", index,
				ErrActionOutOfRange)
		}
		low, high := spaces.Bounds(g.sim.ActionSpace())
		continuous, err := g.discretizer.Action(int(index), low, high)
		if err != nil {
			return nil, 0, false, fmt.Errorf("step: %w", err)
		}
		action = mat.NewVecDense(len(continuous), continuous)
	}

	obs, reward, done, err := g.sim.Step(action)
	if err != nil {
		return nil, 0, false, fmt.Errorf("step: %w", err)
	}
	state, err := g.pipeline.Step(obs)
	if err != nil {
		return nil, 0, false, fmt.Errorf("step: %w", err)
	}
	return state, reward, done, nil
}

// Render renders the current frame of the simulator, then pauses so
// that playback runs at a watchable speed
func (g *Gym) Render() error {
	if !g.ready {
		return fmt.Errorf("render: %w", ErrAdapterNotReady)
	}
	if err := g.sim.Render(); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	time.Sleep(g.frameSleep)
	return nil
}

// Close closes the simulator
func (g *Gym) Close() error {
	return g.sim.Close()
}

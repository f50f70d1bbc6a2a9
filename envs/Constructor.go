package envs

import (
	"fmt"

	"github.com/samuelfneumann/rlenv"
	"github.com/samuelfneumann/rlenv/config"
	"github.com/samuelfneumann/rlenv/spaces"
)

// SimulatorFunc opens the Gym-like simulator named by an environment
// configuration
type SimulatorFunc func(env config.Environment) (rlenv.Simulator, error)

// BrainSimulatorFunc opens the Unity simulation named by an
// environment configuration
type BrainSimulatorFunc func(env config.Environment) (rlenv.BrainSimulator,
	error)

// GymFunc is the signature of the Gym adapter constructors
// rlenv.NewGym, rlenv.NewGymAtari and rlenv.NewGymAtariPong
type GymFunc func(sim rlenv.Simulator, seed int,
	opts ...rlenv.Option) (*rlenv.Gym, error)

// UnityFunc is the signature of the single-agent Unity adapter
// constructors rlenv.NewUnityVector and rlenv.NewUnityVisual
type UnityFunc func(sim rlenv.BrainSimulator,
	opts ...rlenv.Option) (*rlenv.Unity, error)

// Gym returns a Constructor opening a simulator with open and adapting
// it with newAdapter, seeded with the configured seed. When action
// bins are configured, the action space of the handle is the discrete
// space of grid indices.
func Gym(open SimulatorFunc, newAdapter GymFunc) Constructor {
	return func(cfg *config.Config, opts ...rlenv.Option) (Handle, error) {
		sim, err := open(cfg.Environment)
		if err != nil {
			return Handle{}, fmt.Errorf("gym: %w", err)
		}

		g, err := newAdapter(sim, cfg.Environment.Seed, opts...)
		if err != nil {
			sim.Close()
			return Handle{}, fmt.Errorf("gym: %w", err)
		}

		actionSpace := g.ActionSpace()
		if n := g.NumActions(); n > 0 {
			actionSpace, err = spaces.NewDiscrete(n,
				uint64(cfg.Environment.Seed))
			if err != nil {
				g.Close()
				return Handle{}, fmt.Errorf("gym: %w", err)
			}
		}
		return Handle{Single: g, ActionSpace: actionSpace}, nil
	}
}

// Unity returns a Constructor opening a Unity simulation with open and
// adapting its first agent with newAdapter
func Unity(open BrainSimulatorFunc, newAdapter UnityFunc) Constructor {
	return func(cfg *config.Config, opts ...rlenv.Option) (Handle, error) {
		actionSpace, err := unityActionSpace(cfg)
		if err != nil {
			return Handle{}, fmt.Errorf("unity: %w", err)
		}

		sim, err := open(cfg.Environment)
		if err != nil {
			return Handle{}, fmt.Errorf("unity: %w", err)
		}

		u, err := newAdapter(sim, opts...)
		if err != nil {
			sim.Close()
			return Handle{}, fmt.Errorf("unity: %w", err)
		}
		return Handle{Single: u, ActionSpace: actionSpace}, nil
	}
}

// UnityMultiAgent returns a Constructor opening a Unity simulation
// with open and adapting all agents of its first brain
func UnityMultiAgent(open BrainSimulatorFunc) Constructor {
	return func(cfg *config.Config, opts ...rlenv.Option) (Handle, error) {
		actionSpace, err := unityActionSpace(cfg)
		if err != nil {
			return Handle{}, fmt.Errorf("unityMultiAgent: %w", err)
		}

		sim, err := open(cfg.Environment)
		if err != nil {
			return Handle{}, fmt.Errorf("unityMultiAgent: %w", err)
		}

		u, err := rlenv.NewUnityMultiAgent(sim, opts...)
		if err != nil {
			sim.Close()
			return Handle{}, fmt.Errorf("unityMultiAgent: %w", err)
		}
		return Handle{Multi: u, ActionSpace: actionSpace}, nil
	}
}

// unityActionSpace returns the continuous action space [-1, 1]^n of
// the configured action size n. Unity brains do not report their
// action space.
func unityActionSpace(cfg *config.Config) (*spaces.Box, error) {
	n := cfg.ActionSize()
	if n <= 0 {
		return nil, fmt.Errorf("action_size must be configured for %v",
			cfg.EnvClass)
	}

	low := make([]float64, n)
	high := make([]float64, n)
	for i := range low {
		low[i], high[i] = -1, 1
	}
	return spaces.NewBox(low, high, uint64(cfg.Environment.Seed))
}

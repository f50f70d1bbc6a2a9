// Package rlenv adapts external reinforcement learning simulators,
// such as OpenAI Gym environments and Unity ML-Agents environments,
// to a single Reset/Step/Render contract that agents are trained
// against.
//
// An adapter is Unready until its first call to Reset, after which it
// stays Ready for its lifetime. Observations returned by a simulator
// pass through a pipeline of state transforms (one-hot encoding,
// normalization, frame pre-processing and frame stacking) before they
// are returned to the caller. Adapters are not safe for concurrent
// use.
package rlenv

import (
	"github.com/emer/etable/etensor"
	"github.com/samuelfneumann/rlenv/spaces"
	"gonum.org/v1/gonum/mat"
)

// Environment is a single-agent environment
type Environment interface {
	// Reset starts a new episode and returns its first state
	Reset() (*etensor.Float64, error)

	// Step takes one environmental step given some action and returns
	// the next state, the reward, and a flag indicating whether the
	// episode has completed.
	Step(action *mat.VecDense) (*etensor.Float64, float64, bool, error)

	// Render visualizes the environment
	Render() error

	// Close releases the simulator held by the environment
	Close() error
}

// MultiAgentEnvironment is an environment of several agents acting at
// once. The states, rewards and done flags returned are indexed by
// agent position, consistently across all three.
type MultiAgentEnvironment interface {
	// Reset starts a new episode and returns the first state of each
	// agent
	Reset() ([]*etensor.Float64, error)

	// Step takes one environmental step given one row of actions per
	// agent
	Step(actions *mat.Dense) ([]*etensor.Float64, []float64, []bool, error)

	// Agents returns the number of agents in the environment
	Agents() int

	// Render visualizes the environment
	Render() error

	// Close releases the simulator held by the environment
	Close() error
}

// Simulator is an external, Gym-like simulator. Implemented by
// *gym.GymEnv.
type Simulator interface {
	// Seed seeds the simulator's random number generators
	Seed(seed int) ([]int, error)

	// Reset resets the simulator and returns the first observation
	Reset() (*etensor.Float64, error)

	// Step takes one step given action a and returns the observation,
	// reward and whether the episode is done
	Step(a *mat.VecDense) (*etensor.Float64, float64, bool, error)

	// Render draws the current frame of the simulation
	Render() error

	// ActionSpace returns the space of legal actions
	ActionSpace() spaces.Space

	// ObservationSpace returns the space of observations
	ObservationSpace() spaces.Space

	// Close performs cleanup of simulator resources
	Close() error
}

// BrainInfo holds the observations, rewards and done flags of all
// agents sharing a brain in a Unity ML-Agents simulation. Row i of
// each observation tensor, Rewards[i] and LocalDone[i] all belong to
// agent i.
type BrainInfo struct {
	// VectorObservations has shape [agents, observation size]
	VectorObservations *etensor.Float64

	// VisualObservations has one tensor per camera, each of shape
	// [agents, height, width, channels]
	VisualObservations []*etensor.Float64

	Rewards   []float64
	LocalDone []bool
}

// Agents returns the number of agents in the BrainInfo
func (b BrainInfo) Agents() int {
	return len(b.Rewards)
}

// BrainSimulator is an external simulator of one or more brains, each
// controlling a group of agents. Implemented by *unity.Env.
type BrainSimulator interface {
	// BrainNames returns the names of the brains in the simulation
	BrainNames() []string

	// Reset resets the simulation and returns the information of each
	// brain
	Reset(trainMode bool) (map[string]BrainInfo, error)

	// Step sends one row of actions per agent to the simulation
	Step(actions *mat.Dense) (map[string]BrainInfo, error)

	// Close performs cleanup of simulator resources
	Close() error
}

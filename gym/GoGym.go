// Package gym provides Go bindings for OpenAI's Python package Gym.
// Environments created with Make satisfy rlenv.Simulator, so they can
// be wrapped by the adapters of package rlenv.
//
// Before building, ensure python-3.7.pc is in a directory pointed to
// by PKG_CONFIG_PATH. On Ubuntu:
// export PKG_CONFIG_PATH="$PKG_CONFIG_PATH":/usr/local/lib/pkgconfig
//
// The Python interpreter is not thread-safe: environments must only be
// used from a single goroutine.
package gym

import (
	"fmt"
	"sync"

	python "github.com/DataDog/go-python3"
	"github.com/emer/etable/etensor"
	"github.com/samuelfneumann/rlenv/internal/pyconv"
	"github.com/samuelfneumann/rlenv/spaces"
	"gonum.org/v1/gonum/mat"
)

// Set of open environments
var openEnvironments = make(map[Environment]struct{})

// Python modules and space types, set by load
var (
	loadOnce sync.Once
	loadErr  error

	gym           *python.PyObject
	boxSpace      *python.PyObject
	discreteSpace *python.PyObject
)

// Closed indicates whether the package has been closed or not
var Closed bool = false

// load imports gym and looks up the space types the first time an
// environment is made
func load() error {
	loadOnce.Do(func() {
		var err error
		gym, err = pyconv.Import("gym")
		if err != nil {
			loadErr = fmt.Errorf("load: %v", err)
			return
		}

		spacesModule := gym.GetAttrString("spaces")
		if spacesModule == nil {
			pyconv.PrintError()
			loadErr = fmt.Errorf("load: could not get gym.spaces")
			return
		}
		defer spacesModule.DecRef()

		boxSpace = spacesModule.GetAttrString("Box")
		if boxSpace == nil {
			loadErr = fmt.Errorf("load: could not get Python Box space type")
			return
		}

		discreteSpace = spacesModule.GetAttrString("Discrete")
		if discreteSpace == nil {
			loadErr = fmt.Errorf("load: could not get Python Discrete " +
				"space type")
		}
	})
	return loadErr
}

// Environment describes an OpenAI Gym environment
type Environment interface {
	// Env gets the Python OpenAI Gym environment from the Go
	// Environment
	Env() *python.PyObject

	// Name gets the name of the environment
	Name() string

	// ContinuousAction returns whether or not the environment has
	// continuous actions
	ContinuousAction() bool

	// Seed seeds the Environment and returns the seed. It is equivalent
	// to calling env.seed(seed) in Python's OpenAI Gym.
	Seed(seed int) ([]int, error)

	// ActionSpace returns the action space as a Go data structure
	ActionSpace() spaces.Space

	// ObservationSpace returns the observation space as a Go data structure
	ObservationSpace() spaces.Space

	// Step takes one environmental step given some action a and returns
	// the next observation, reward, and a flag indicating if the
	// episode has completed. It is equivalent to calling env.step(a) in
	// Python's OpenAI Gym.
	Step(a *mat.VecDense) (*etensor.Float64, float64, bool, error)

	// Reset resets the Environment and returns the starting
	// observation. It is equivalent to calling env.reset() in Python's
	// OpenAI Gym.
	Reset() (*etensor.Float64, error)

	// Render renders the environment. It is equivalent to calling
	// env.render() in Python's OpenAI Gym.
	Render() error

	// Close performs cleanup of environment resources. It should be
	// called once the environment is no longer needed.
	Close() error
}

// GymEnv wraps a Python gym environment and provides Go bindings for
// interacting with that environment
type GymEnv struct {
	env              *python.PyObject
	envName          string
	continuousAction bool

	actionSpace      spaces.Space
	observationSpace spaces.Space
}

// New creates and returns a new *GymEnv wrapping the Python
// environment env, stealing its reference
func New(env *python.PyObject, envName string, continuousAction bool,
	actionSpace, observationSpace spaces.Space) Environment {
	if Closed {
		panic("new: cannot create environment when package closed")
	}
	gymEnv := &GymEnv{
		env:              env,
		envName:          envName,
		continuousAction: continuousAction,
		actionSpace:      actionSpace,
		observationSpace: observationSpace,
	}

	openEnvironments[gymEnv] = struct{}{}
	return gymEnv
}

// Make returns a new environment with the given name. It is equivalent
// to gym.make(envName) in Python's OpenAI Gym.
func Make(envName string) (Environment, error) {
	if Closed {
		return nil, fmt.Errorf("make: cannot create environment when " +
			"package closed")
	}
	if err := load(); err != nil {
		return nil, fmt.Errorf("make: %v", err)
	}

	// Create the gym environment
	gymEnv, err := pyconv.CallMethod(gym, "make",
		python.PyUnicode_FromString(envName))
	if err != nil {
		return nil, fmt.Errorf("make: error creating env %v: %v", envName, err)
	}

	return fromPython(gymEnv, envName)
}

// fromPython converts a Python environment into an Environment,
// reading its action and observation spaces
func fromPython(gymEnv *python.PyObject, envName string) (Environment,
	error) {
	// Figure out if the environment has continuous actions or not
	actionSpace := gymEnv.GetAttrString("action_space")
	if actionSpace == nil {
		pyconv.PrintError()
		gymEnv.DecRef()
		return nil, fmt.Errorf("make: env %v has no action space", envName)
	}
	defer actionSpace.DecRef()
	continuousAction := actionSpace.Type() == boxSpace

	goActionSpace, err := FromPythonSpace(actionSpace)
	if err != nil {
		gymEnv.DecRef()
		return nil, fmt.Errorf("make: could not create action space: %v", err)
	}

	observationSpace := gymEnv.GetAttrString("observation_space")
	if observationSpace == nil {
		pyconv.PrintError()
		gymEnv.DecRef()
		return nil, fmt.Errorf("make: env %v has no observation space",
			envName)
	}
	defer observationSpace.DecRef()

	goObservationSpace, err := FromPythonSpace(observationSpace)
	if err != nil {
		gymEnv.DecRef()
		return nil, fmt.Errorf("make: could not create observation space: %v",
			err)
	}

	return New(gymEnv, envName, continuousAction, goActionSpace,
		goObservationSpace), nil
}

// ActionSpace returns the action space as a Go data structure
func (g *GymEnv) ActionSpace() spaces.Space {
	return g.actionSpace
}

// ObservationSpace returns the observation space as a Go data structure
func (g *GymEnv) ObservationSpace() spaces.Space {
	return g.observationSpace
}

// Env gets the GymEnv's Python gym environment
func (g *GymEnv) Env() *python.PyObject {
	return g.env
}

// Name gets the name of the environment
func (g *GymEnv) Name() string {
	return g.envName
}

// ContinuousAction returns whether the environment uses continuous
// actions or not
func (g *GymEnv) ContinuousAction() bool {
	return g.continuousAction
}

// Seed seeds the GymEnv and its Go action and observation spaces and
// returns the seed. It is equivalent to calling env.seed(seed) in
// Python's OpenAI Gym.
func (g *GymEnv) Seed(seed int) ([]int, error) {
	retVal, err := pyconv.CallMethod(g.env, "seed",
		python.PyLong_FromGoInt(seed))
	if err != nil {
		return nil, fmt.Errorf("seed: %v", err)
	}
	defer retVal.DecRef()

	g.actionSpace.Seed(uint64(seed))
	g.observationSpace.Seed(uint64(seed))

	if retVal == python.Py_None {
		return []int{seed}, nil
	}
	s, err := pyconv.IntSliceFromIter(retVal)
	if err != nil {
		return nil, fmt.Errorf("seed: could not convert seed to Go: %v", err)
	}
	return s, nil
}

// Step takes one environmental step given some action a and returns
// the next observation, reward, and a flag indicating if the
// episode has completed. It is equivalent to calling env.step(a) in
// Python's OpenAI Gym.
func (g *GymEnv) Step(a *mat.VecDense) (*etensor.Float64, float64, bool,
	error) {
	if a == nil || a.Len() == 0 {
		return nil, 0, false, fmt.Errorf("step: empty action")
	}

	var action *python.PyObject
	if g.continuousAction {
		arr, err := pyconv.F64ToList(mat.Col(nil, 0, a))
		if err != nil {
			return nil, 0, false, fmt.Errorf("step: could not convert " +
				"[]float64 to Python List")
		}
		action = arr
	} else {
		action = python.PyLong_FromGoInt(int(a.AtVec(0)))
	}

	// Call step in Python gym
	retVal, err := pyconv.CallMethod(g.env, "step", action)
	if err != nil {
		return nil, 0, false, fmt.Errorf("step: could not step in "+
			"gym environment: %v", err)
	}
	defer retVal.DecRef()

	// Get the observation
	obs, err := pyconv.Tensor(python.PyTuple_GetItem(retVal, 0))
	if err != nil {
		return nil, 0, false, fmt.Errorf("step: could not decode "+
			"observation: %v", err)
	}

	// Get the reward
	reward := python.PyTuple_GetItem(retVal, 1)
	goReward := python.PyFloat_AsDouble(reward)

	// Figure out if the episode is done
	done := python.PyTuple_GetItem(retVal, 2)
	goDone := done.IsTrue() == 1

	return obs, goReward, goDone, nil
}

// Reset resets the GymEnv and returns the starting observation. It is
// equivalent to calling env.reset() in Python's OpenAI Gym.
func (g *GymEnv) Reset() (*etensor.Float64, error) {
	state, err := pyconv.CallMethod(g.env, "reset")
	if err != nil {
		return nil, fmt.Errorf("reset: %v", err)
	}
	defer state.DecRef()

	obs, err := pyconv.Tensor(state)
	if err != nil {
		return nil, fmt.Errorf("reset: could not decode observation: %v",
			err)
	}
	return obs, nil
}

// Render renders the environment. It is equivalent to env.render()
// in Python's OpenAI Gym.
func (g *GymEnv) Render() error {
	retVal, err := pyconv.CallMethod(g.env, "render")
	if err != nil {
		return fmt.Errorf("render: could not render: %v", err)
	}
	retVal.DecRef()
	return nil
}

// Close performs cleanup of environment resources. It should be
// called once the environment is no longer needed.
func (g *GymEnv) Close() error {
	if _, ok := openEnvironments[g]; !ok {
		return nil
	}
	// Remove g from the list of all open environments
	delete(openEnvironments, g)

	retVal, err := pyconv.CallMethod(g.env, "close")
	if err == nil {
		retVal.DecRef()
	}

	// Decrement the gym environment counter
	g.env.DecRef()
	if err != nil {
		return fmt.Errorf("close: %v", err)
	}
	return nil
}

// Close performs cleanup of package resources. Any environments that
// have not been closed will be closed. This should be called after
// the package is no longer needed or at the end of main.
func Close() {
	if !Closed {
		// Close all open environments
		for env := range openEnvironments {
			env.Close()
		}

		// Decrement the reference count for the gym module and spaces
		if gym != nil {
			gym.DecRef()
			boxSpace.DecRef()
			discreteSpace.DecRef()
		}

		// Close Python interpreter
		pyconv.Finalize()
	}
	Closed = true
}

package wrappers

import (
	"fmt"

	python "github.com/DataDog/go-python3"
	"github.com/samuelfneumann/rlenv/gym"
	"github.com/samuelfneumann/rlenv/internal/pyconv"
)

// gym.wrappers.time_limit Python module
var timeLimitModule *python.PyObject

// TimeLimit wraps a gym.Environment and provides for it a limit on
// the time steps. Note that all environments in OpenAI Gym have
// default time limits, and that if a TimeLimit wrapper is used, the
// lower of the two time limits will be the effective one. To get
// around this, use SetMaxEpisodeSteps.
//
// https://github.com/openai/gym/blob/master/gym/wrappers/time_limit.py
type TimeLimit struct {
	gym.Environment
	wrapped gym.Environment

	maxEpisodeSteps int
}

// SetMaxEpisodeSteps overwrites the default time limit that OpenAI
// Gym imposes on env. It must be called on an environment returned by
// gym.Make, before any other wrappers are applied.
func SetMaxEpisodeSteps(env gym.Environment, maxEpisodeSteps int) error {
	if maxEpisodeSteps <= 0 {
		return fmt.Errorf("setMaxEpisodeSteps: maxEpisodeSteps must be " +
			"positive")
	}
	if _, ok := env.(*gym.GymEnv); !ok {
		return fmt.Errorf("setMaxEpisodeSteps: cannot alter the default " +
			"time limit after *gym.GymEnv has been wrapped - call this " +
			"before using any wrappers")
	}

	pyEnv := env.Env()
	if !pyEnv.HasAttrString("_max_episode_steps") {
		return fmt.Errorf("setMaxEpisodeSteps: %v has no default time limit",
			env.Name())
	}

	pySteps := python.PyLong_FromGoInt(maxEpisodeSteps)
	defer pySteps.DecRef()
	if pyEnv.SetAttrString("_max_episode_steps", pySteps) != 0 {
		pyconv.PrintError()
		return fmt.Errorf("setMaxEpisodeSteps: could not set time limit of %v",
			env.Name())
	}
	return nil
}

// NewTimeLimit create a new TimeLimit wrapper on a gym Environment.
// All gym Environments have default time limits imposed by OpenAI
// Gym. If using this function to create a time limit, then the lower
// of the two time limits between the created one and the default one
// will be the effective time limit.
//
// To adjust the default time limit, see SetMaxEpisodeSteps().
func NewTimeLimit(env gym.Environment,
	maxEpisodeSteps int) (gym.Environment, error) {
	if maxEpisodeSteps <= 0 {
		return nil, fmt.Errorf("newTimeLimit: maxEpisodeSteps must be positive")
	}
	if timeLimitModule == nil {
		module, err := pyconv.Import("gym.wrappers.time_limit")
		if err != nil {
			return nil, fmt.Errorf("newTimeLimit: %v", err)
		}
		timeLimitModule = module
		modules = append(modules, module)
	}

	// Call the TimeLimit constructor with the argument environment.
	// Arguments are stolen by CallMethod.
	env.Env().IncRef()
	newEnv, err := pyconv.CallMethod(timeLimitModule, "TimeLimit", env.Env(),
		python.PyLong_FromGoInt(maxEpisodeSteps))
	if err != nil {
		return nil, fmt.Errorf("newTimeLimit: could not wrap environment: %v",
			err)
	}

	// Create the new gym Environment
	newGymEnv := gym.New(
		newEnv,
		fmt.Sprintf("TimeLimit(steps: %v)(%v)", maxEpisodeSteps, env.Name()),
		env.ContinuousAction(),
		env.ActionSpace(),
		env.ObservationSpace(),
	)

	return &TimeLimit{
		Environment:     newGymEnv,
		wrapped:         env,
		maxEpisodeSteps: maxEpisodeSteps,
	}, nil
}

// MaxEpisodeSteps returns the time limit imposed by the wrapper
func (t *TimeLimit) MaxEpisodeSteps() int {
	return t.maxEpisodeSteps
}

// Close performs cleanup of environment resources
func (t *TimeLimit) Close() error {
	// Close this environment
	err := t.Environment.Close()

	// Close the wrapped environment
	if wrappedErr := t.wrapped.Close(); err == nil {
		err = wrappedErr
	}
	return err
}

package wrappers

import (
	"fmt"

	python "github.com/DataDog/go-python3"
	"github.com/samuelfneumann/rlenv/gym"
	"github.com/samuelfneumann/rlenv/internal/pyconv"
)

// gym.wrappers Python module
var monitorModule *python.PyObject

// Monitor wraps a gym.Environment and records episode statistics and
// videos of the environment to a directory.
//
// https://github.com/openai/gym/blob/master/gym/wrappers/monitor.py
type Monitor struct {
	gym.Environment
	wrapped gym.Environment

	dir string
}

// NewMonitor creates a new Monitor wrapper on a gym Environment which
// writes its recordings to dir, overwriting any previous recordings.
func NewMonitor(env gym.Environment, dir string) (gym.Environment, error) {
	if dir == "" {
		return nil, fmt.Errorf("newMonitor: empty directory")
	}
	if monitorModule == nil {
		module, err := pyconv.Import("gym.wrappers")
		if err != nil {
			return nil, fmt.Errorf("newMonitor: %v", err)
		}
		monitorModule = module
		modules = append(modules, module)
	}

	constructor := monitorModule.GetAttrString("Monitor")
	if constructor == nil {
		pyconv.PrintError()
		return nil, fmt.Errorf("newMonitor: gym.wrappers.Monitor not found")
	}
	defer constructor.DecRef()

	env.Env().IncRef()
	args := []*python.PyObject{env.Env(), python.PyUnicode_FromString(dir)}
	kwargs := map[string]*python.PyObject{"force": python.PyBool_FromLong(1)}
	newEnv, err := pyconv.Call(constructor, args, kwargs)
	if err != nil {
		return nil, fmt.Errorf("newMonitor: could not wrap environment: %v",
			err)
	}

	newGymEnv := gym.New(
		newEnv,
		fmt.Sprintf("Monitor(%v)(%v)", dir, env.Name()),
		env.ContinuousAction(),
		env.ActionSpace(),
		env.ObservationSpace(),
	)

	return &Monitor{
		Environment: newGymEnv,
		wrapped:     env,
		dir:         dir,
	}, nil
}

// Dir returns the directory recordings are written to
func (m *Monitor) Dir() string {
	return m.dir
}

// Close performs cleanup of environment resources
func (m *Monitor) Close() error {
	err := m.Environment.Close()
	if wrappedErr := m.wrapped.Close(); err == nil {
		err = wrappedErr
	}
	return err
}

// Package unity provides Go bindings for the Python package
// unityagents of the Unity ML-Agents toolkit. Environments created
// with Make satisfy rlenv.BrainSimulator.
//
// Before building, ensure python-3.7.pc is in a directory pointed to
// by PKG_CONFIG_PATH. As with package gym, environments must only be
// used from a single goroutine.
package unity

import (
	"fmt"
	"sync"

	python "github.com/DataDog/go-python3"
	"github.com/samuelfneumann/rlenv"
	"github.com/samuelfneumann/rlenv/internal/pyconv"
	"gonum.org/v1/gonum/mat"
)

// Set of open environments
var openEnvironments = make(map[*Env]struct{})

var (
	loadOnce sync.Once
	loadErr  error

	// unityagents.UnityEnvironment Python type
	unityEnvironment *python.PyObject
)

// Closed indicates whether the package has been closed or not
var Closed bool = false

// load imports unityagents the first time an environment is made
func load() error {
	loadOnce.Do(func() {
		module, err := pyconv.Import("unityagents")
		if err != nil {
			loadErr = fmt.Errorf("load: %v", err)
			return
		}
		defer module.DecRef()

		unityEnvironment = module.GetAttrString("UnityEnvironment")
		if unityEnvironment == nil {
			pyconv.PrintError()
			loadErr = fmt.Errorf("load: could not get UnityEnvironment")
		}
	})
	return loadErr
}

// Env wraps a Python unityagents.UnityEnvironment
type Env struct {
	env        *python.PyObject
	fileName   string
	brainNames []string
}

// Make launches the Unity executable fileName and returns an
// environment connected to it. It is equivalent to calling
// UnityEnvironment(file_name=fileName, seed=seed) in Python.
func Make(fileName string, seed int) (*Env, error) {
	if Closed {
		return nil, fmt.Errorf("make: cannot create environment when " +
			"package closed")
	}
	if err := load(); err != nil {
		return nil, fmt.Errorf("make: %v", err)
	}

	kwargs := map[string]*python.PyObject{
		"file_name": python.PyUnicode_FromString(fileName),
		"seed":      python.PyLong_FromGoInt(seed),
	}
	env, err := pyconv.Call(unityEnvironment, nil, kwargs)
	if err != nil {
		return nil, fmt.Errorf("make: could not launch %v: %v", fileName, err)
	}

	pyNames := env.GetAttrString("brain_names")
	if pyNames == nil {
		pyconv.PrintError()
		env.DecRef()
		return nil, fmt.Errorf("make: environment has no brain names")
	}
	defer pyNames.DecRef()
	brainNames, err := pyconv.StringSliceFromIter(pyNames)
	if err != nil {
		env.DecRef()
		return nil, fmt.Errorf("make: %v", err)
	}

	u := &Env{
		env:        env,
		fileName:   fileName,
		brainNames: brainNames,
	}
	openEnvironments[u] = struct{}{}
	return u, nil
}

// FileName returns the Unity executable the environment runs
func (u *Env) FileName() string {
	return u.fileName
}

// BrainNames returns the names of the brains in the simulation
func (u *Env) BrainNames() []string {
	names := make([]string, len(u.brainNames))
	copy(names, u.brainNames)
	return names
}

// Reset resets the simulation. It is equivalent to calling
// env.reset(train_mode=trainMode) in Python.
func (u *Env) Reset(trainMode bool) (map[string]rlenv.BrainInfo, error) {
	reset := u.env.GetAttrString("reset")
	if reset == nil {
		pyconv.PrintError()
		return nil, fmt.Errorf("reset: environment has no reset method")
	}
	defer reset.DecRef()

	mode := 0
	if trainMode {
		mode = 1
	}
	kwargs := map[string]*python.PyObject{
		"train_mode": python.PyBool_FromLong(mode),
	}
	retVal, err := pyconv.Call(reset, nil, kwargs)
	if err != nil {
		return nil, fmt.Errorf("reset: %v", err)
	}
	defer retVal.DecRef()

	info, err := u.brainInfos(retVal)
	if err != nil {
		return nil, fmt.Errorf("reset: %v", err)
	}
	return info, nil
}

// Step sends one row of actions per agent to the simulation. It is
// equivalent to calling env.step(actions) in Python.
func (u *Env) Step(actions *mat.Dense) (map[string]rlenv.BrainInfo, error) {
	list, err := pyconv.DenseToList(actions)
	if err != nil {
		return nil, fmt.Errorf("step: %v", err)
	}

	retVal, err := pyconv.CallMethod(u.env, "step", list)
	if err != nil {
		return nil, fmt.Errorf("step: %v", err)
	}
	defer retVal.DecRef()

	info, err := u.brainInfos(retVal)
	if err != nil {
		return nil, fmt.Errorf("step: %v", err)
	}
	return info, nil
}

// Close shuts down the Unity executable
func (u *Env) Close() error {
	if _, ok := openEnvironments[u]; !ok {
		return nil
	}
	delete(openEnvironments, u)

	retVal, err := pyconv.CallMethod(u.env, "close")
	if err == nil {
		retVal.DecRef()
	}
	u.env.DecRef()
	if err != nil {
		return fmt.Errorf("close: %v", err)
	}
	return nil
}

// brainInfos decodes the dictionary of brain name to BrainInfo
// returned by reset and step. Borrows python.PyObject reference.
func (u *Env) brainInfos(dict *python.PyObject) (map[string]rlenv.BrainInfo,
	error) {
	if !python.PyDict_Check(dict) {
		return nil, fmt.Errorf("brainInfos: expected dict of brain info")
	}

	infos := make(map[string]rlenv.BrainInfo, len(u.brainNames))
	for _, name := range u.brainNames {
		pyInfo := python.PyDict_GetItemString(dict, name)
		if pyInfo == nil {
			return nil, fmt.Errorf("brainInfos: no info for brain %v", name)
		}

		info, err := brainInfo(pyInfo)
		if err != nil {
			return nil, fmt.Errorf("brainInfos: brain %v: %v", name, err)
		}
		infos[name] = info
	}
	return infos, nil
}

// brainInfo decodes a single unityagents.BrainInfo. Borrows
// python.PyObject reference.
func brainInfo(pyInfo *python.PyObject) (rlenv.BrainInfo, error) {
	var info rlenv.BrainInfo

	vector := pyInfo.GetAttrString("vector_observations")
	if vector == nil {
		pyconv.PrintError()
		return info, fmt.Errorf("brainInfo: no vector observations")
	}
	defer vector.DecRef()
	vectorObs, err := pyconv.Tensor(vector)
	if err != nil {
		return info, fmt.Errorf("brainInfo: vector observations: %v", err)
	}
	info.VectorObservations = vectorObs

	visual := pyInfo.GetAttrString("visual_observations")
	if visual == nil {
		pyconv.PrintError()
		return info, fmt.Errorf("brainInfo: no visual observations")
	}
	defer visual.DecRef()
	cameras := visual.Length()
	for i := 0; i < cameras; i++ {
		camera := python.PyList_GetItem(visual, i)
		frames, err := pyconv.Tensor(camera)
		if err != nil {
			return info, fmt.Errorf("brainInfo: visual observation %v: %v",
				i, err)
		}
		info.VisualObservations = append(info.VisualObservations, frames)
	}

	rewards := pyInfo.GetAttrString("rewards")
	if rewards == nil {
		pyconv.PrintError()
		return info, fmt.Errorf("brainInfo: no rewards")
	}
	defer rewards.DecRef()
	info.Rewards, err = pyconv.F64SliceFromIter(rewards)
	if err != nil {
		return info, fmt.Errorf("brainInfo: rewards: %v", err)
	}

	done := pyInfo.GetAttrString("local_done")
	if done == nil {
		pyconv.PrintError()
		return info, fmt.Errorf("brainInfo: no done flags")
	}
	defer done.DecRef()
	info.LocalDone, err = pyconv.BoolSliceFromIter(done)
	if err != nil {
		return info, fmt.Errorf("brainInfo: done flags: %v", err)
	}

	return info, nil
}

// Close performs cleanup of package resources. Any environments that
// have not been closed will be closed. The Python interpreter is left
// running, since it is shared with package gym; gym.Close stops it and
// must be called after Close.
func Close() {
	if !Closed && !pyconv.Closed() {
		for env := range openEnvironments {
			env.Close()
		}
		if unityEnvironment != nil {
			unityEnvironment.DecRef()
		}
	}
	Closed = true
}

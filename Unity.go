package rlenv

import (
	"fmt"

	"github.com/emer/etable/etensor"
	"github.com/samuelfneumann/rlenv/preprocess"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// unityBrain holds what every Unity adapter shares: the simulator,
// the brain being controlled and the lifecycle state
type unityBrain struct {
	sim       BrainSimulator
	brain     string
	trainMode bool
	ready     bool
	log       *logrus.Entry
}

func newUnityBrain(variant string, sim BrainSimulator,
	o *options) (unityBrain, error) {
	if sim == nil {
		return unityBrain{}, fmt.Errorf("new%v: nil simulator", variant)
	}
	if len(o.actionBins) > 0 {
		return unityBrain{}, fmt.Errorf("new%v: action bins %v: %w", variant,
			o.actionBins, ErrUnsupportedOption)
	}
	names := sim.BrainNames()
	if len(names) == 0 {
		return unityBrain{}, fmt.Errorf("new%v: %w", variant, ErrNoBrains)
	}
	return unityBrain{
		sim:       sim,
		brain:     names[0],
		trainMode: o.trainMode,
		log:       o.log(variant).WithField("brain", names[0]),
	}, nil
}

func (u *unityBrain) info(infos map[string]BrainInfo) (BrainInfo, error) {
	info, ok := infos[u.brain]
	if !ok {
		return BrainInfo{}, fmt.Errorf("no information for brain %q", u.brain)
	}
	return info, nil
}

func (u *unityBrain) reset() (BrainInfo, error) {
	infos, err := u.sim.Reset(u.trainMode)
	if err != nil {
		return BrainInfo{}, err
	}
	return u.info(infos)
}

// markReady records a reset whose states were all built
func (u *unityBrain) markReady() {
	if !u.ready {
		u.log.Debug("adapter ready")
	}
	u.ready = true
}

func (u *unityBrain) step(actions *mat.Dense) (BrainInfo, error) {
	if !u.ready {
		return BrainInfo{}, ErrAdapterNotReady
	}
	infos, err := u.sim.Step(actions)
	if err != nil {
		return BrainInfo{}, err
	}
	return u.info(infos)
}

// Brain returns the name of the brain controlled by the adapter
func (u *unityBrain) Brain() string {
	return u.brain
}

// Ready returns whether the adapter has been reset
func (u *unityBrain) Ready() bool {
	return u.ready
}

// Render does nothing; Unity simulations draw their own window
func (u *unityBrain) Render() error {
	if !u.ready {
		return fmt.Errorf("render: %w", ErrAdapterNotReady)
	}
	return nil
}

// Close closes the simulator
func (u *unityBrain) Close() error {
	return u.sim.Close()
}

// Unity adapts the first agent of the first brain of a Unity
// ML-Agents simulation to the Environment interface. The agent's
// vector observations are used as states, or, for adapters created
// with NewUnityVisual, its stacked camera frames.
type Unity struct {
	unityBrain
	visual   bool
	pipeline Pipeline
}

// NewUnityVector returns a Unity adapter using vector observations
func NewUnityVector(sim BrainSimulator, opts ...Option) (*Unity, error) {
	return newUnity("UnityMLVector", false, sim, opts)
}

// NewUnityVisual returns a Unity adapter using the frames of the first
// camera. Frames of shape [84, 84, 3] are reordered to [3, 84, 84] and
// the last 4 frames are stacked into a state of shape [4, 3, 84, 84].
func NewUnityVisual(sim BrainSimulator, opts ...Option) (*Unity, error) {
	opts = append([]Option{
		WithFrameStack(DefaultStackDepth, preprocess.ChannelsFirst{}),
	}, opts...)
	return newUnity("UnityMLVisual", true, sim, opts)
}

func newUnity(variant string, visual bool, sim BrainSimulator,
	opts []Option) (*Unity, error) {
	o := buildOptions(opts)
	brain, err := newUnityBrain(variant, sim, o)
	if err != nil {
		return nil, err
	}
	pipeline, err := o.pipeline(noBound)
	if err != nil {
		return nil, fmt.Errorf("new%v: %w", variant, err)
	}
	return &Unity{
		unityBrain: brain,
		visual:     visual,
		pipeline:   pipeline,
	}, nil
}

// noBound is the observation bound of Unity simulations, which
// publish none
func noBound() []float64 { return nil }

// observation returns the observation of agent 0
func (u *Unity) observation(info BrainInfo) (*etensor.Float64, error) {
	if u.visual {
		if len(info.VisualObservations) == 0 {
			return nil, fmt.Errorf("no visual observations: %w",
				ErrInvalidObservationShape)
		}
		return agentRow(info.VisualObservations[0], 0)
	}
	return agentRow(info.VectorObservations, 0)
}

// Reset resets the simulation and returns the first state of the
// episode
func (u *Unity) Reset() (*etensor.Float64, error) {
	info, err := u.reset()
	if err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	obs, err := u.observation(info)
	if err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	state, err := u.pipeline.Reset(obs)
	if err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	u.markReady()
	return state, nil
}

// Step sends action to the simulation and returns the next state,
// reward and done flag of agent 0
func (u *Unity) Step(action *mat.VecDense) (*etensor.Float64, float64, bool,
	error) {
	if !u.ready {
		return nil, 0, false, fmt.Errorf("step: %w", ErrAdapterNotReady)
	}
	if action == nil {
		return nil, 0, false, fmt.Errorf("step: nil action")
	}
	actions := mat.NewDense(1, action.Len(), mat.Col(nil, 0, action))
	info, err := u.step(actions)
	if err != nil {
		return nil, 0, false, fmt.Errorf("step: %w", err)
	}
	if info.Agents() == 0 || len(info.LocalDone) == 0 {
		return nil, 0, false, fmt.Errorf("step: no agents in brain %q",
			u.brain)
	}

	obs, err := u.observation(info)
	if err != nil {
		return nil, 0, false, fmt.Errorf("step: %w", err)
	}
	state, err := u.pipeline.Step(obs)
	if err != nil {
		return nil, 0, false, fmt.Errorf("step: %w", err)
	}
	return state, info.Rewards[0], info.LocalDone[0], nil
}

// UnityMultiAgent adapts all agents of the first brain of a Unity
// ML-Agents simulation to the MultiAgentEnvironment interface, using
// vector observations. Each agent's states pass through a pipeline of
// its own, so stacked frames never mix between agents.
type UnityMultiAgent struct {
	unityBrain
	opts      *options
	pipelines []Pipeline
}

// NewUnityMultiAgent returns a new UnityMultiAgent adapter
func NewUnityMultiAgent(sim BrainSimulator, opts ...Option) (*UnityMultiAgent,
	error) {
	variant := "UnityMLVectorMultiAgent"
	o := buildOptions(opts)
	brain, err := newUnityBrain(variant, sim, o)
	if err != nil {
		return nil, err
	}
	if _, err := o.pipeline(noBound); err != nil {
		return nil, fmt.Errorf("new%v: %w", variant, err)
	}
	return &UnityMultiAgent{unityBrain: brain, opts: o}, nil
}

// Agents returns the number of agents seen at the last reset, or 0
// before the first reset
func (u *UnityMultiAgent) Agents() int {
	return len(u.pipelines)
}

// Reset resets the simulation and returns the first state of each
// agent
func (u *UnityMultiAgent) Reset() ([]*etensor.Float64, error) {
	info, err := u.reset()
	if err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	obs, err := agentRows(info.VectorObservations)
	if err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}

	pipelines := make([]Pipeline, len(obs))
	states := make([]*etensor.Float64, len(obs))
	for a := range obs {
		if pipelines[a], err = u.opts.pipeline(noBound); err != nil {
			return nil, fmt.Errorf("reset: %w", err)
		}
		if states[a], err = pipelines[a].Reset(obs[a]); err != nil {
			return nil, fmt.Errorf("reset: agent %v: %w", a, err)
		}
	}
	u.pipelines = pipelines
	u.markReady()
	return states, nil
}

// Step sends one row of actions per agent to the simulation and
// returns each agent's next state, reward and done flag
func (u *UnityMultiAgent) Step(actions *mat.Dense) ([]*etensor.Float64,
	[]float64, []bool, error) {
	info, err := u.step(actions)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("step: %w", err)
	}

	obs, err := agentRows(info.VectorObservations)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("step: %w", err)
	}
	if len(obs) != len(u.pipelines) {
		return nil, nil, nil, fmt.Errorf("step: %v agents returned, %v "+
			"at reset", len(obs), len(u.pipelines))
	}
	if len(info.Rewards) != len(obs) || len(info.LocalDone) != len(obs) {
		return nil, nil, nil, fmt.Errorf("step: %v states, %v rewards and "+
			"%v done flags returned", len(obs), len(info.Rewards),
			len(info.LocalDone))
	}

	states := make([]*etensor.Float64, len(obs))
	for a := range obs {
		if states[a], err = u.pipelines[a].Step(obs[a]); err != nil {
			return nil, nil, nil, fmt.Errorf("step: agent %v: %w", a, err)
		}
	}

	rewards := append([]float64(nil), info.Rewards...)
	dones := append([]bool(nil), info.LocalDone...)
	return states, rewards, dones, nil
}

// agentRow returns a copy of row i along the first (agent) axis of t
func agentRow(t *etensor.Float64, i int) (*etensor.Float64, error) {
	if t == nil || t.NumDims() < 2 {
		var shape []int
		if t != nil {
			shape = t.Shapes()
		}
		return nil, fmt.Errorf("expected per-agent observations, got shape "+
			"%v: %w", shape, ErrInvalidObservationShape)
	}
	shape := t.Shapes()
	if i < 0 || i >= shape[0] {
		return nil, fmt.Errorf("no observation for agent %v of %v: %w", i,
			shape[0], ErrInvalidObservationShape)
	}

	row := etensor.NewFloat64(append([]int(nil), shape[1:]...), nil, nil)
	size := len(row.Values)
	copy(row.Values, t.Values[i*size:(i+1)*size])
	return row, nil
}

// agentRows splits t along its first (agent) axis
func agentRows(t *etensor.Float64) ([]*etensor.Float64, error) {
	if t == nil || t.NumDims() < 2 {
		_, err := agentRow(t, 0)
		return nil, err
	}
	rows := make([]*etensor.Float64, t.Shapes()[0])
	for i := range rows {
		row, err := agentRow(t, i)
		if err != nil {
			return nil, err
		}
		rows[i] = row
	}
	return rows, nil
}

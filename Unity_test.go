package rlenv_test

import (
	"testing"

	"github.com/emer/etable/etensor"
	"github.com/samuelfneumann/rlenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// agentVectors returns vector observations of shape [agents, size]
// with agent a's observation filled with 100*a + t
func agentVectors(agents, size, t int) *etensor.Float64 {
	obs := etensor.NewFloat64([]int{agents, size}, nil, nil)
	for a := 0; a < agents; a++ {
		for i := 0; i < size; i++ {
			obs.Values[a*size+i] = float64(100*a + t)
		}
	}
	return obs
}

func vectorBrains(agents, size int) *fakeBrains {
	return &fakeBrains{
		names: []string{"CrawlerBrain", "Other"},
		info: func(t int) rlenv.BrainInfo {
			rewards := make([]float64, agents)
			dones := make([]bool, agents)
			for a := range rewards {
				rewards[a] = float64(a) + 0.5
				dones[a] = a%2 == 1
			}
			return rlenv.BrainInfo{
				VectorObservations: agentVectors(agents, size, t),
				Rewards:            rewards,
				LocalDone:          dones,
			}
		},
	}
}

func TestUnityVector(t *testing.T) {
	sim := vectorBrains(20, 33)
	env, err := rlenv.NewUnityVector(sim)
	require.NoError(t, err)
	assert.Equal(t, "CrawlerBrain", env.Brain())

	state, err := env.Reset()
	require.NoError(t, err)
	assert.Equal(t, []int{33}, state.Shapes())
	assert.Equal(t, 0.0, state.Values[0])
	assert.Equal(t, []bool{true}, sim.trainModes)

	state, reward, done, err := env.Step(mat.NewVecDense(4,
		[]float64{0.1, 0.2, 0.3, 0.4}))
	require.NoError(t, err)
	assert.Equal(t, []int{33}, state.Shapes())
	assert.Equal(t, 1.0, state.Values[0])
	assert.Equal(t, 0.5, reward)
	assert.False(t, done)

	require.Len(t, sim.actions, 1)
	rows, cols := sim.actions[0].Dims()
	assert.Equal(t, 1, rows)
	assert.Equal(t, 4, cols)
	assert.Equal(t, 0.3, sim.actions[0].At(0, 2))
}

func TestUnityNotReady(t *testing.T) {
	sim := vectorBrains(1, 4)
	env, err := rlenv.NewUnityVector(sim, rlenv.WithTrainMode(false))
	require.NoError(t, err)

	_, _, _, err = env.Step(mat.NewVecDense(1, []float64{0}))
	assert.ErrorIs(t, err, rlenv.ErrAdapterNotReady)
	_, _, _, err = env.Step(nil)
	assert.ErrorIs(t, err, rlenv.ErrAdapterNotReady)
	assert.ErrorIs(t, env.Render(), rlenv.ErrAdapterNotReady)
	assert.Empty(t, sim.actions)

	_, err = env.Reset()
	require.NoError(t, err)
	assert.NoError(t, env.Render())
	assert.Equal(t, []bool{false}, sim.trainModes)
}

func TestUnityNoBrains(t *testing.T) {
	_, err := rlenv.NewUnityVector(&fakeBrains{})
	assert.ErrorIs(t, err, rlenv.ErrNoBrains)

	_, err = rlenv.NewUnityMultiAgent(&fakeBrains{})
	assert.ErrorIs(t, err, rlenv.ErrNoBrains)
}

func TestUnityVisual(t *testing.T) {
	// Camera frames of shape [agents, 84, 84, 3], every value equal
	// to t/10
	sim := &fakeBrains{
		names: []string{"BananaBrain"},
		info: func(t int) rlenv.BrainInfo {
			frames := etensor.NewFloat64([]int{1, 84, 84, 3}, nil, nil)
			for i := range frames.Values {
				frames.Values[i] = float64(t) / 10
			}
			return rlenv.BrainInfo{
				VisualObservations: []*etensor.Float64{frames},
				Rewards:            []float64{1},
				LocalDone:          []bool{false},
			}
		},
	}
	env, err := rlenv.NewUnityVisual(sim)
	require.NoError(t, err)

	state, err := env.Reset()
	require.NoError(t, err)
	require.Equal(t, []int{4, 3, 84, 84}, state.Shapes())

	state, _, _, err = env.Step(mat.NewVecDense(1, []float64{2}))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.1, 0, 0, 0}, firstOfSlots(state), 1e-12)
}

func TestUnityVisualMissingFrames(t *testing.T) {
	env, err := rlenv.NewUnityVisual(vectorBrains(1, 8))
	require.NoError(t, err)
	_, err = env.Reset()
	assert.ErrorIs(t, err, rlenv.ErrInvalidObservationShape)
	assert.False(t, env.Ready())
	assert.ErrorIs(t, env.Render(), rlenv.ErrAdapterNotReady)
}

func TestUnityActionBinsUnsupported(t *testing.T) {
	_, err := rlenv.NewUnityVector(vectorBrains(1, 2), rlenv.WithActionBins(3))
	assert.ErrorIs(t, err, rlenv.ErrUnsupportedOption)

	_, err = rlenv.NewUnityVisual(vectorBrains(1, 2), rlenv.WithActionBins(3))
	assert.ErrorIs(t, err, rlenv.ErrUnsupportedOption)

	_, err = rlenv.NewUnityMultiAgent(vectorBrains(1, 2),
		rlenv.WithActionBins(3))
	assert.ErrorIs(t, err, rlenv.ErrUnsupportedOption)
}

func TestUnityNormalizeNeedsScale(t *testing.T) {
	_, err := rlenv.NewUnityVector(vectorBrains(1, 2), rlenv.WithNormalize())
	assert.Error(t, err)

	_, err = rlenv.NewUnityMultiAgent(vectorBrains(1, 2), rlenv.WithNormalize())
	assert.Error(t, err)
}

func TestUnityMultiAgent(t *testing.T) {
	agents := 12
	sim := vectorBrains(agents, 129)
	env, err := rlenv.NewUnityMultiAgent(sim)
	require.NoError(t, err)
	assert.Zero(t, env.Agents())

	states, err := env.Reset()
	require.NoError(t, err)
	require.Len(t, states, agents)
	assert.Equal(t, agents, env.Agents())
	for a, state := range states {
		assert.Equal(t, []int{129}, state.Shapes())
		assert.Equal(t, float64(100*a), state.Values[0])
	}

	actions := mat.NewDense(agents, 20, nil)
	states, rewards, dones, err := env.Step(actions)
	require.NoError(t, err)
	require.Len(t, states, agents)
	require.Len(t, rewards, agents)
	require.Len(t, dones, agents)
	for a := 0; a < agents; a++ {
		assert.Equal(t, float64(100*a+1), states[a].Values[128])
		assert.Equal(t, float64(a)+0.5, rewards[a])
		assert.Equal(t, a%2 == 1, dones[a])
	}
	require.Len(t, sim.actions, 1)
}

func TestUnityMultiAgentPipeline(t *testing.T) {
	env, err := rlenv.NewUnityMultiAgent(vectorBrains(3, 2),
		rlenv.WithNormalizeScale(100), rlenv.WithFrameStack(2, nil))
	require.NoError(t, err)

	states, err := env.Reset()
	require.NoError(t, err)
	require.Len(t, states, 3)
	for a, state := range states {
		assert.Equal(t, []int{2, 2}, state.Shapes())
		assert.InDeltaSlice(t, []float64{float64(a), float64(a)},
			firstOfSlots(state), 1e-12)
	}

	states, _, _, err = env.Step(mat.NewDense(3, 1, nil))
	require.NoError(t, err)
	for a, state := range states {
		assert.Equal(t, []int{2, 2}, state.Shapes())
		assert.InDeltaSlice(t, []float64{float64(a) + 0.01, float64(a)},
			firstOfSlots(state), 1e-12)
	}
}

func TestUnityMultiAgentOneHot(t *testing.T) {
	env, err := rlenv.NewUnityMultiAgent(vectorBrains(2, 1),
		rlenv.WithOneHot(128))
	require.NoError(t, err)

	states, err := env.Reset()
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, 1.0, states[0].Values[0])
	assert.Equal(t, 1.0, states[1].Values[100])

	states, _, _, err = env.Step(mat.NewDense(2, 1, nil))
	require.NoError(t, err)
	assert.Equal(t, 1.0, states[0].Values[1])
	assert.Equal(t, 1.0, states[1].Values[101])
}

func TestUnityMultiAgentFailedReset(t *testing.T) {
	// Agent 1 observes index 100, outside a one-hot width of 4
	env, err := rlenv.NewUnityMultiAgent(vectorBrains(2, 1),
		rlenv.WithOneHot(4))
	require.NoError(t, err)

	_, err = env.Reset()
	assert.ErrorIs(t, err, rlenv.ErrInvalidObservationShape)
	assert.False(t, env.Ready())
	assert.Zero(t, env.Agents())
	_, _, _, err = env.Step(mat.NewDense(2, 1, nil))
	assert.ErrorIs(t, err, rlenv.ErrAdapterNotReady)
}

func TestUnityMultiAgentMismatchedInfo(t *testing.T) {
	sim := vectorBrains(3, 2)
	info := sim.info
	sim.info = func(t int) rlenv.BrainInfo {
		i := info(t)
		if t > 0 {
			i.Rewards = i.Rewards[:2]
		}
		return i
	}
	env, err := rlenv.NewUnityMultiAgent(sim)
	require.NoError(t, err)
	_, err = env.Reset()
	require.NoError(t, err)

	_, _, _, err = env.Step(mat.NewDense(3, 1, nil))
	assert.Error(t, err)
}

func TestUnityClose(t *testing.T) {
	sim := vectorBrains(1, 1)
	env, err := rlenv.NewUnityMultiAgent(sim)
	require.NoError(t, err)
	require.NoError(t, env.Close())
	assert.True(t, sim.closed)
}

var (
	_ rlenv.Environment           = &rlenv.Unity{}
	_ rlenv.MultiAgentEnvironment = &rlenv.UnityMultiAgent{}
)

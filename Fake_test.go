package rlenv_test

import (
	"errors"

	"github.com/emer/etable/etensor"
	"github.com/samuelfneumann/rlenv"
	"github.com/samuelfneumann/rlenv/spaces"
	"gonum.org/v1/gonum/mat"
)

// fakeSim is a scripted rlenv.Simulator. Observation i of an episode
// is produced by obs(i), with i == 0 for the observation returned by
// Reset.
type fakeSim struct {
	obs         func(i int) *etensor.Float64
	actionSpace spaces.Space
	obsSpace    spaces.Space
	episodeLen  int

	seeds   []int
	actions []*mat.VecDense
	t       int
	resets  int
	renders int
	closed  bool
	failAt  int
}

func (f *fakeSim) Seed(seed int) ([]int, error) {
	f.seeds = append(f.seeds, seed)
	return []int{seed}, nil
}

func (f *fakeSim) Reset() (*etensor.Float64, error) {
	f.t = 0
	f.resets++
	return f.obs(0), nil
}

func (f *fakeSim) Step(a *mat.VecDense) (*etensor.Float64, float64, bool,
	error) {
	f.t++
	if f.failAt > 0 && f.t == f.failAt {
		return nil, 0, false, errors.New("simulator failure")
	}
	f.actions = append(f.actions, mat.VecDenseCopyOf(a))
	return f.obs(f.t), float64(f.t), f.episodeLen > 0 && f.t >= f.episodeLen,
		nil
}

func (f *fakeSim) Render() error {
	f.renders++
	return nil
}

func (f *fakeSim) ActionSpace() spaces.Space      { return f.actionSpace }
func (f *fakeSim) ObservationSpace() spaces.Space { return f.obsSpace }

func (f *fakeSim) Close() error {
	f.closed = true
	return nil
}

var _ rlenv.Simulator = &fakeSim{}

// vector returns a tensor of shape [len(values)]
func vector(values ...float64) *etensor.Float64 {
	t := etensor.NewFloat64([]int{len(values)}, nil, nil)
	copy(t.Values, values)
	return t
}

// colourFrame returns a 210x160x3 frame with every pixel set to the
// given red, green and blue values
func colourFrame(r, g, b float64) *etensor.Float64 {
	frame := etensor.NewFloat64([]int{210, 160, 3}, nil, nil)
	for i := 0; i < len(frame.Values); i += 3 {
		frame.Values[i] = r
		frame.Values[i+1] = g
		frame.Values[i+2] = b
	}
	return frame
}

// firstOfSlots returns the first value of each slot along axis 0
func firstOfSlots(state *etensor.Float64) []float64 {
	depth := state.Shapes()[0]
	size := len(state.Values) / depth
	out := make([]float64, depth)
	for i := range out {
		out[i] = state.Values[i*size]
	}
	return out
}

// fakeBrains is a scripted rlenv.BrainSimulator with one brain
type fakeBrains struct {
	names []string
	info  func(t int) rlenv.BrainInfo

	t          int
	trainModes []bool
	actions    []*mat.Dense
	closed     bool
}

func (f *fakeBrains) BrainNames() []string { return f.names }

func (f *fakeBrains) Reset(trainMode bool) (map[string]rlenv.BrainInfo,
	error) {
	f.t = 0
	f.trainModes = append(f.trainModes, trainMode)
	return map[string]rlenv.BrainInfo{f.names[0]: f.info(0)}, nil
}

func (f *fakeBrains) Step(actions *mat.Dense) (map[string]rlenv.BrainInfo,
	error) {
	f.t++
	f.actions = append(f.actions, mat.DenseCopyOf(actions))
	return map[string]rlenv.BrainInfo{f.names[0]: f.info(f.t)}, nil
}

func (f *fakeBrains) Close() error {
	f.closed = true
	return nil
}

var _ rlenv.BrainSimulator = &fakeBrains{}

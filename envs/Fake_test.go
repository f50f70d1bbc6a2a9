package envs_test

import (
	"github.com/emer/etable/etensor"
	"github.com/samuelfneumann/rlenv"
	"github.com/samuelfneumann/rlenv/spaces"
	"gonum.org/v1/gonum/mat"
)

// stubSim is an rlenv.Simulator with a continuous action space whose
// episodes last a fixed number of steps
type stubSim struct {
	actionSpace *spaces.Box
	obsSpace    *spaces.Box
	episodeLen  int

	t      int
	seed   int
	closed bool
}

func newStubSim(episodeLen int) *stubSim {
	action, _ := spaces.NewBox([]float64{-2}, []float64{2}, 0)
	obs, _ := spaces.NewBox([]float64{0, 0}, []float64{10, 10}, 0)
	return &stubSim{
		actionSpace: action,
		obsSpace:    obs,
		episodeLen:  episodeLen,
	}
}

func (s *stubSim) Seed(seed int) ([]int, error) {
	s.seed = seed
	return []int{seed}, nil
}

func (s *stubSim) Reset() (*etensor.Float64, error) {
	s.t = 0
	return s.obs(), nil
}

func (s *stubSim) Step(a *mat.VecDense) (*etensor.Float64, float64, bool,
	error) {
	s.t++
	return s.obs(), 1, s.t >= s.episodeLen, nil
}

func (s *stubSim) obs() *etensor.Float64 {
	obs := etensor.NewFloat64([]int{2}, nil, nil)
	obs.Values[0] = float64(s.t)
	obs.Values[1] = 10
	return obs
}

func (s *stubSim) Render() error                  { return nil }
func (s *stubSim) ActionSpace() spaces.Space      { return s.actionSpace }
func (s *stubSim) ObservationSpace() spaces.Space { return s.obsSpace }

func (s *stubSim) Close() error {
	s.closed = true
	return nil
}

// stubBrains is an rlenv.BrainSimulator with a single brain of agents
// observing vectors of size 3
type stubBrains struct {
	agents int
	closed bool
}

func (s *stubBrains) BrainNames() []string { return []string{"Brain"} }

func (s *stubBrains) Reset(bool) (map[string]rlenv.BrainInfo, error) {
	return s.info(), nil
}

func (s *stubBrains) Step(*mat.Dense) (map[string]rlenv.BrainInfo, error) {
	return s.info(), nil
}

func (s *stubBrains) info() map[string]rlenv.BrainInfo {
	return map[string]rlenv.BrainInfo{
		"Brain": {
			VectorObservations: etensor.NewFloat64([]int{s.agents, 3}, nil,
				nil),
			Rewards:   make([]float64, s.agents),
			LocalDone: make([]bool, s.agents),
		},
	}
}

func (s *stubBrains) Close() error {
	s.closed = true
	return nil
}

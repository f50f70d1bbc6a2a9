package monitor_test

import (
	"github.com/emer/etable/etensor"
	"gonum.org/v1/gonum/mat"
)

// countingEnv is an rlenv.Environment giving a reward of 1 per step
// and ending episodes after episodeLen steps
type countingEnv struct {
	episodeLen int

	t       int
	resets  int
	renders int
	actions []*mat.VecDense
}

func (c *countingEnv) Reset() (*etensor.Float64, error) {
	c.t = 0
	c.resets++
	return etensor.NewFloat64([]int{2}, nil, nil), nil
}

func (c *countingEnv) Step(a *mat.VecDense) (*etensor.Float64, float64, bool,
	error) {
	c.t++
	c.actions = append(c.actions, a)
	return etensor.NewFloat64([]int{2}, nil, nil), 1, c.t >= c.episodeLen, nil
}

func (c *countingEnv) Render() error {
	c.renders++
	return nil
}

func (c *countingEnv) Close() error { return nil }

// multiEnv is an rlenv.MultiAgentEnvironment where agent i receives a
// reward of i+1 per step and the last agent is done after episodeLen
// steps
type multiEnv struct {
	agents     int
	episodeLen int

	t       int
	actions []*mat.Dense
}

func (m *multiEnv) states() []*etensor.Float64 {
	states := make([]*etensor.Float64, m.agents)
	for i := range states {
		states[i] = etensor.NewFloat64([]int{3}, nil, nil)
	}
	return states
}

func (m *multiEnv) Reset() ([]*etensor.Float64, error) {
	m.t = 0
	return m.states(), nil
}

func (m *multiEnv) Step(actions *mat.Dense) ([]*etensor.Float64, []float64,
	[]bool, error) {
	m.t++
	m.actions = append(m.actions, actions)
	rewards := make([]float64, m.agents)
	dones := make([]bool, m.agents)
	for i := range rewards {
		rewards[i] = float64(i + 1)
	}
	dones[m.agents-1] = m.t >= m.episodeLen
	return m.states(), rewards, dones, nil
}

func (m *multiEnv) Agents() int   { return m.agents }
func (m *multiEnv) Render() error { return nil }
func (m *multiEnv) Close() error  { return nil }

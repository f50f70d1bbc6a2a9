// Package monitor rolls out policies in environment adapters, logging
// and recording the return of each episode.
package monitor

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/samuelfneumann/rlenv"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// DefaultWindow is the number of most recent episodes averaged to
// decide whether an environment is solved
const DefaultWindow = 100

// Episode summarizes one completed episode
type Episode struct {
	Index int
	Steps int

	// Return is the undiscounted return of the episode; for several
	// agents, the mean of AgentReturns
	Return       float64
	AgentReturns []float64
}

// Result summarizes a rollout
type Result struct {
	Episodes []Episode

	// Solved is set when the mean return over the last Window episodes
	// reached the solve score
	Solved bool
}

// Runner rolls out policies, one episode after another
type Runner struct {
	id       uuid.UUID
	envClass string

	maxT       int
	render     bool
	solveScore float64
	solve      bool
	window     int

	metrics *Metrics
	log     *logrus.Entry
}

// Option configures a Runner
type Option func(*Runner)

// WithMaxSteps ends episodes after maxT steps. Zero or less runs each
// episode until the environment ends it.
func WithMaxSteps(maxT int) Option {
	return func(r *Runner) {
		r.maxT = maxT
	}
}

// WithRender renders every step
func WithRender(render bool) Option {
	return func(r *Runner) {
		r.render = render
	}
}

// WithSolveScore stops the rollout once the mean return of the last
// window episodes reaches score
func WithSolveScore(score float64, window int) Option {
	return func(r *Runner) {
		r.solve = true
		r.solveScore = score
		r.window = window
	}
}

// WithMetrics records rollouts in m
func WithMetrics(m *Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithLogger sets the logger of the Runner
func WithLogger(logger *logrus.Entry) Option {
	return func(r *Runner) {
		r.log = logger
	}
}

// New returns a Runner for adapters of the given environment class.
// Each Runner has a random run ID.
func New(envClass string, opts ...Option) *Runner {
	r := &Runner{
		id:       uuid.New(),
		envClass: envClass,
		window:   DefaultWindow,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.window <= 0 {
		r.window = DefaultWindow
	}
	if r.log == nil {
		r.log = logrus.NewEntry(logrus.StandardLogger())
	}
	r.log = r.log.WithFields(logrus.Fields{
		"run":       r.id.String(),
		"env_class": envClass,
	})
	return r
}

// ID returns the run ID
func (r *Runner) ID() uuid.UUID {
	return r.id
}

// Run rolls out p in env for the given number of episodes, stopping
// early when ctx is done or the environment is solved
func (r *Runner) Run(ctx context.Context, env rlenv.Environment, p Policy,
	episodes int) (Result, error) {
	return r.loop(ctx, episodes, func(i int) (Episode, error) {
		return r.episode(ctx, env, p, i)
	})
}

// RunMulti rolls out p in a multi-agent env for the given number of
// episodes. An episode ends as soon as any agent is done.
func (r *Runner) RunMulti(ctx context.Context, env rlenv.MultiAgentEnvironment,
	p MultiPolicy, episodes int) (Result, error) {
	return r.loop(ctx, episodes, func(i int) (Episode, error) {
		return r.multiEpisode(ctx, env, p, i)
	})
}

func (r *Runner) loop(ctx context.Context, episodes int,
	run func(i int) (Episode, error)) (Result, error) {
	var result Result
	var returns []float64
	for i := 0; i < episodes; i++ {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("run: %w", err)
		}

		ep, err := run(i)
		if err != nil {
			return result, fmt.Errorf("run: episode %v: %w", i, err)
		}
		result.Episodes = append(result.Episodes, ep)
		returns = append(returns, ep.Return)
		r.record(ep)

		if r.solve && len(returns) >= r.window {
			recent := returns[len(returns)-r.window:]
			mean := floats.Sum(recent) / float64(r.window)
			if mean >= r.solveScore {
				r.log.WithFields(logrus.Fields{
					"episode":     i,
					"mean_return": mean,
				}).Info("environment solved")
				result.Solved = true
				break
			}
		}
	}
	return result, nil
}

func (r *Runner) episode(ctx context.Context, env rlenv.Environment,
	p Policy, index int) (Episode, error) {
	ep := Episode{Index: index}
	state, err := env.Reset()
	if err != nil {
		return ep, err
	}

	for r.maxT <= 0 || ep.Steps < r.maxT {
		if err := ctx.Err(); err != nil {
			return ep, err
		}
		if err := r.maybeRender(env.Render); err != nil {
			return ep, err
		}

		action, err := p.Act(state)
		if err != nil {
			return ep, err
		}
		var reward float64
		var done bool
		state, reward, done, err = env.Step(action)
		if err != nil {
			return ep, err
		}
		ep.Steps++
		ep.Return += reward
		if done {
			break
		}
	}
	return ep, nil
}

func (r *Runner) multiEpisode(ctx context.Context,
	env rlenv.MultiAgentEnvironment, p MultiPolicy, index int) (Episode,
	error) {
	ep := Episode{Index: index}
	states, err := env.Reset()
	if err != nil {
		return ep, err
	}
	ep.AgentReturns = make([]float64, len(states))

	for r.maxT <= 0 || ep.Steps < r.maxT {
		if err := ctx.Err(); err != nil {
			return ep, err
		}
		if err := r.maybeRender(env.Render); err != nil {
			return ep, err
		}

		actions, err := p.ActAll(states)
		if err != nil {
			return ep, err
		}
		var rewards []float64
		var dones []bool
		states, rewards, dones, err = env.Step(actions)
		if err != nil {
			return ep, err
		}
		if len(rewards) != len(ep.AgentReturns) {
			return ep, fmt.Errorf("expected %v rewards, got %v",
				len(ep.AgentReturns), len(rewards))
		}
		ep.Steps++
		floats.Add(ep.AgentReturns, rewards)
		if anyDone(dones) {
			break
		}
	}

	if len(ep.AgentReturns) > 0 {
		ep.Return = floats.Sum(ep.AgentReturns) / float64(len(ep.AgentReturns))
	}
	return ep, nil
}

func (r *Runner) maybeRender(render func() error) error {
	if !r.render {
		return nil
	}
	return render()
}

// record logs and records the metrics of a completed episode
func (r *Runner) record(ep Episode) {
	r.log.WithFields(logrus.Fields{
		"episode": ep.Index,
		"steps":   ep.Steps,
		"return":  ep.Return,
	}).Info("episode complete")

	if r.metrics == nil {
		return
	}
	labels := []string{r.id.String(), r.envClass}
	r.metrics.Episodes.WithLabelValues(labels...).Inc()
	r.metrics.Steps.WithLabelValues(labels...).Add(float64(ep.Steps))
	r.metrics.Returns.WithLabelValues(labels...).Observe(ep.Return)
}

func anyDone(dones []bool) bool {
	for _, done := range dones {
		if done {
			return true
		}
	}
	return false
}

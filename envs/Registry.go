// Package envs maps the environment classes named in configuration
// files to constructors of environment adapters.
package envs

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/samuelfneumann/rlenv"
	"github.com/samuelfneumann/rlenv/config"
	"github.com/samuelfneumann/rlenv/spaces"
)

// ErrUnknownEnvClass is returned by Make when no constructor is
// registered for the configured environment class
var ErrUnknownEnvClass = errors.New("unknown environment class")

var (
	mu           sync.RWMutex
	constructors = make(map[string]Constructor)
)

// Handle holds the adapter built for a configuration. Exactly one of
// Single and Multi is set.
type Handle struct {
	Single rlenv.Environment
	Multi  rlenv.MultiAgentEnvironment

	// ActionSpace is the space of actions accepted by the adapter; for
	// Multi, the space of the actions of one agent
	ActionSpace spaces.Space
}

// Close closes the adapter held by the handle
func (h Handle) Close() error {
	switch {
	case h.Single != nil:
		return h.Single.Close()
	case h.Multi != nil:
		return h.Multi.Close()
	}
	return nil
}

// Constructor builds an adapter from a configuration. The options are
// derived from the configuration by Make.
type Constructor func(cfg *config.Config, opts ...rlenv.Option) (Handle,
	error)

// Register makes a constructor available under the environment class
// name. It panics if class is empty, c is nil, or class is already
// registered.
func Register(class string, c Constructor) {
	mu.Lock()
	defer mu.Unlock()
	if class == "" {
		panic("register: empty environment class")
	}
	if c == nil {
		panic("register: nil constructor for " + class)
	}
	if _, dup := constructors[class]; dup {
		panic("register: environment class registered twice: " + class)
	}
	constructors[class] = c
}

// Classes returns the sorted names of all registered environment
// classes
func Classes() []string {
	mu.RLock()
	defer mu.RUnlock()
	classes := make([]string, 0, len(constructors))
	for class := range constructors {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	return classes
}

// Make builds the adapter of the configured environment class. Options
// derived from cfg.Environment are applied before opts.
func Make(cfg *config.Config, opts ...rlenv.Option) (Handle, error) {
	if cfg == nil {
		return Handle{}, fmt.Errorf("make: nil config")
	}

	mu.RLock()
	c, ok := constructors[cfg.EnvClass]
	mu.RUnlock()
	if !ok {
		return Handle{}, fmt.Errorf("make: %q: %w", cfg.EnvClass,
			ErrUnknownEnvClass)
	}

	opts = append(Options(cfg.Environment), opts...)
	h, err := c(cfg, opts...)
	if err != nil {
		return Handle{}, fmt.Errorf("make: %v: %w", cfg.EnvClass, err)
	}
	if (h.Single == nil) == (h.Multi == nil) {
		h.Close()
		return Handle{}, fmt.Errorf("make: %v: constructor must set exactly "+
			"one of Single and Multi", cfg.EnvClass)
	}
	return h, nil
}

// Options converts an environment configuration to adapter options
func Options(env config.Environment) []rlenv.Option {
	var opts []rlenv.Option
	if env.OneHot > 0 {
		opts = append(opts, rlenv.WithOneHot(env.OneHot))
	}
	if env.Normalize {
		opts = append(opts, rlenv.WithNormalize())
	}
	if len(env.ActionBins) > 0 {
		opts = append(opts, rlenv.WithActionBins(env.ActionBins...))
	}
	if env.FrameSleep > 0 {
		opts = append(opts, rlenv.WithFrameSleep(env.FrameSleep))
	}
	return opts
}

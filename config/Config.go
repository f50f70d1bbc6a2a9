// Package config loads the YAML configuration of a training run: the
// environment class to construct and its parameters, along with the
// model, agent and training settings consumed by the driver.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

// Environment variables overriding values of a configuration file
const (
	EnvName = "RLENV_ENV_NAME"
	EnvSeed = "RLENV_SEED"
)

// Defaults applied to fields left unset
const (
	DefaultFrameSleep = 20 * time.Millisecond
	DefaultEpisodes   = 1000
)

// ErrMissingField is returned by Validate when a required field is
// unset
var ErrMissingField = errors.New("missing required field")

// Config is the configuration of a training run
type Config struct {
	AgentType  string `yaml:"agent_type"`
	EnvClass   string `yaml:"env_class"`
	ModelClass string `yaml:"model_class"`

	Environment Environment `yaml:"environment"`

	// Model and Agent are passed through to the driver untouched
	Model map[string]interface{} `yaml:"model"`
	Agent map[string]interface{} `yaml:"agent"`

	Train Train `yaml:"train"`
}

// Environment configures the environment adapter
type Environment struct {
	// Name is a Gym environment ID or the path to a Unity executable
	Name string `yaml:"name"`
	Seed int    `yaml:"seed"`

	// MaxSteps overrides the default episode time limit of Gym
	// environments when positive
	MaxSteps int `yaml:"max_steps"`

	// OneHot is the width of the one-hot encoding of discrete states,
	// zero to disable
	OneHot int `yaml:"one_hot"`

	// ActionBins enables discretization of continuous action spaces
	ActionBins []int `yaml:"action_bins"`

	Normalize  bool          `yaml:"normalize"`
	FrameSleep time.Duration `yaml:"frame_sleep"`

	// Record is a directory to which Gym episodes are recorded, empty
	// to disable
	Record string `yaml:"record"`
}

// Train configures the length of training
type Train struct {
	NEpisodes  int     `yaml:"n_episodes"`
	MaxT       int     `yaml:"max_t"`
	SolveScore float64 `yaml:"solve_score"`
}

// ActionSize returns the action_size of the agent configuration, or
// of the model configuration if the agent has none, and 0 if neither
// sets it
func (c *Config) ActionSize() int {
	for _, section := range []map[string]interface{}{c.Agent, c.Model} {
		switch size := section["action_size"].(type) {
		case int:
			return size
		case float64:
			return int(size)
		}
	}
	return 0
}

// Load reads the configuration file at path, applies defaults and
// environment variable overrides, and validates the result
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load: %v: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML configuration, applies defaults and
// environment variable overrides, and validates the result
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	cfg.SetDefaults()
	if err := cfg.Override(); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return cfg, nil
}

// SetDefaults fills in unset fields
func (c *Config) SetDefaults() {
	if c.Environment.FrameSleep <= 0 {
		c.Environment.FrameSleep = DefaultFrameSleep
	}
	if c.Train.NEpisodes <= 0 {
		c.Train.NEpisodes = DefaultEpisodes
	}
}

// Override replaces configured values with those of the RLENV_*
// environment variables that are set
func (c *Config) Override() error {
	if name, ok := os.LookupEnv(EnvName); ok && name != "" {
		c.Environment.Name = name
	}

	if seed, ok := os.LookupEnv(EnvSeed); ok && seed != "" {
		s, err := strconv.Atoi(seed)
		if err != nil {
			return fmt.Errorf("override: %v: %w", EnvSeed, err)
		}
		c.Environment.Seed = s
	}
	return nil
}

// Validate checks that all required fields are set
func (c *Config) Validate() error {
	if c.EnvClass == "" {
		return fmt.Errorf("validate: env_class: %w", ErrMissingField)
	}
	if c.Environment.Name == "" {
		return fmt.Errorf("validate: environment.name: %w", ErrMissingField)
	}
	if c.Environment.OneHot < 0 {
		return fmt.Errorf("validate: environment.one_hot must be "+
			"non-negative, got %v", c.Environment.OneHot)
	}
	for _, bins := range c.Environment.ActionBins {
		if bins <= 0 {
			return fmt.Errorf("validate: environment.action_bins must be "+
				"positive, got %v", c.Environment.ActionBins)
		}
	}
	if c.Train.MaxT < 0 {
		return fmt.Errorf("validate: train.max_t must be non-negative, "+
			"got %v", c.Train.MaxT)
	}
	return nil
}

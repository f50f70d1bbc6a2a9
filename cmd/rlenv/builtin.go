package main

import (
	"fmt"

	"github.com/samuelfneumann/rlenv"
	"github.com/samuelfneumann/rlenv/config"
	"github.com/samuelfneumann/rlenv/envs"
	"github.com/samuelfneumann/rlenv/gym"
	"github.com/samuelfneumann/rlenv/gym/wrappers"
	"github.com/samuelfneumann/rlenv/unity"
)

// Environment classes usable as env_class in configuration files
func init() {
	envs.Register("Gym", envs.Gym(openGym, rlenv.NewGym))
	envs.Register("GymAtari", envs.Gym(openGym, rlenv.NewGymAtari))
	envs.Register("GymAtariPong", envs.Gym(openGym, rlenv.NewGymAtariPong))
	envs.Register("UnityMLVector", envs.Unity(openUnity,
		rlenv.NewUnityVector))
	envs.Register("UnityMLVisual", envs.Unity(openUnity,
		rlenv.NewUnityVisual))
	envs.Register("UnityMLVectorMultiAgent", envs.UnityMultiAgent(openUnity))
}

// openGym makes the configured Gym environment, applying the
// configured time limit and recording wrappers
func openGym(cfg config.Environment) (rlenv.Simulator, error) {
	env, err := gym.Make(cfg.Name)
	if err != nil {
		return nil, err
	}

	if cfg.MaxSteps > 0 {
		if err := wrappers.SetMaxEpisodeSteps(env, cfg.MaxSteps); err != nil {
			env.Close()
			return nil, err
		}
	}

	if cfg.Record != "" {
		recorded, err := wrappers.NewMonitor(env, cfg.Record)
		if err != nil {
			env.Close()
			return nil, fmt.Errorf("could not record %v: %w", cfg.Name, err)
		}
		env = recorded
	}
	return env, nil
}

// openUnity launches the configured Unity executable
func openUnity(cfg config.Environment) (rlenv.BrainSimulator, error) {
	env, err := unity.Make(cfg.Name, cfg.Seed)
	if err != nil {
		return nil, err
	}
	return env, nil
}

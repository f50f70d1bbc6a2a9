// Command rlenv rolls out random policies in, and inspects the states
// of, the environment adapters described by configuration files.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samuelfneumann/rlenv/config"
	"github.com/samuelfneumann/rlenv/envs"
	"github.com/samuelfneumann/rlenv/gym/wrappers"
	"github.com/samuelfneumann/rlenv/monitor"
	"github.com/samuelfneumann/rlenv/unity"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// The Python interpreter must only be used from the main thread
func init() {
	runtime.LockOSThread()
}

func main() {
	os.Exit(run())
}

func run() int {
	for _, envFile := range []string{
		".env",
		"../../.env",
	} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	// Deferred calls run in reverse: Unity environments are closed
	// before the interpreter is finalized
	defer wrappers.Close()
	defer unity.Close()

	if err := newRootCmd().Execute(); err != nil {
		logrus.Error(err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var logLevel string
	rootCmd := &cobra.Command{
		Use:           "rlenv",
		Short:         "Roll out and inspect reinforcement learning environments",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logrus.SetLevel(level)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"logging level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(newRolloutCmd(), newInspectCmd(), newClassesCmd())
	return rootCmd
}

type rolloutFlags struct {
	config      string
	episodes    int
	maxT        int
	render      bool
	metricsAddr string
}

func newRolloutCmd() *cobra.Command {
	f := &rolloutFlags{}
	cmd := &cobra.Command{
		Use:   "rollout",
		Short: "Run a uniformly random policy in the configured environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			return rollout(cmd, f)
		},
	}
	cmd.Flags().StringVarP(&f.config, "config", "c", "",
		"path to the YAML configuration file")
	cmd.Flags().IntVar(&f.episodes, "episodes", 0,
		"number of episodes (default train.n_episodes)")
	cmd.Flags().IntVar(&f.maxT, "max-t", 0,
		"maximum steps per episode (default train.max_t)")
	cmd.Flags().BoolVar(&f.render, "render", false, "render every step")
	cmd.Flags().StringVar(&f.metricsAddr, "metrics-addr", "",
		"address to serve Prometheus metrics on, e.g. :9090")
	cmd.MarkFlagRequired("config")
	return cmd
}

func rollout(cmd *cobra.Command, f *rolloutFlags) error {
	cfg, err := config.Load(f.config)
	if err != nil {
		return err
	}
	episodes := cfg.Train.NEpisodes
	if cmd.Flags().Changed("episodes") {
		episodes = f.episodes
	}
	maxT := cfg.Train.MaxT
	if cmd.Flags().Changed("max-t") {
		maxT = f.maxT
	}

	reg := prometheus.NewRegistry()
	metrics, err := monitor.NewMetrics(reg)
	if err != nil {
		return err
	}
	if f.metricsAddr != "" {
		serveMetrics(f.metricsAddr, reg)
	}

	h, err := envs.Make(cfg)
	if err != nil {
		return err
	}
	defer h.Close()

	policy, err := monitor.NewRandom(h.ActionSpace)
	if err != nil {
		return err
	}

	opts := []monitor.Option{
		monitor.WithMaxSteps(maxT),
		monitor.WithRender(f.render),
		monitor.WithMetrics(metrics),
	}
	if cfg.Train.SolveScore > 0 {
		opts = append(opts, monitor.WithSolveScore(cfg.Train.SolveScore,
			monitor.DefaultWindow))
	}
	runner := monitor.New(cfg.EnvClass, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log := logrus.WithFields(logrus.Fields{
		"run":      runner.ID().String(),
		"env":      cfg.Environment.Name,
		"episodes": episodes,
	})
	log.Info("starting rollout")

	var result monitor.Result
	if h.Multi != nil {
		result, err = runner.RunMulti(ctx, h.Multi, policy, episodes)
	} else {
		result, err = runner.Run(ctx, h.Single, policy, episodes)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.WithFields(logrus.Fields{
		"completed": len(result.Episodes),
		"solved":    result.Solved,
	}).Info("rollout finished")
	return nil
}

// serveMetrics serves the metrics of reg over HTTP in the background
func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	go func() {
		logrus.WithField("addr", addr).Info("serving metrics")
		if err := http.ListenAndServe(addr, mux); err != nil {
			logrus.WithError(err).Error("metrics server stopped")
		}
	}()
}

type inspectFlags struct {
	config string
	png    string
	scale  int
	frames bool
}

func newInspectCmd() *cobra.Command {
	f := &inspectFlags{}
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Reset the configured environment and describe its state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspect(cmd, f)
		},
	}
	cmd.Flags().StringVarP(&f.config, "config", "c", "",
		"path to the YAML configuration file")
	cmd.Flags().StringVar(&f.png, "png", "",
		"write the first state as a PNG image to this path")
	cmd.Flags().IntVar(&f.scale, "scale", 2, "pixels per state cell in PNG")
	cmd.Flags().BoolVar(&f.frames, "frames", false,
		"read 3-D states as stacked grayscale frames in PNG")
	cmd.MarkFlagRequired("config")
	return cmd
}

func inspect(cmd *cobra.Command, f *inspectFlags) error {
	cfg, err := config.Load(f.config)
	if err != nil {
		return err
	}

	h, err := envs.Make(cfg)
	if err != nil {
		return err
	}
	defer h.Close()

	out := cmd.OutOrStdout()
	if h.Multi != nil {
		states, err := h.Multi.Reset()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "agents:       %v\n", len(states))
		if len(states) == 0 {
			return nil
		}
		fmt.Fprintf(out, "state shape:  %v\n", states[0].Shapes())
		return writePNG(out, f, states[0])
	}

	state, err := h.Single.Reset()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "state shape:  %v\n", state.Shapes())
	return writePNG(out, f, state)
}

func newClassesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classes",
		Short: "List the environment classes usable as env_class",
		Run: func(cmd *cobra.Command, args []string) {
			for _, class := range envs.Classes() {
				fmt.Fprintln(cmd.OutOrStdout(), class)
			}
		},
	}
}

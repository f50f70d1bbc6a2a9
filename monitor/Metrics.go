package monitor

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the Prometheus metrics recorded during rollouts. Every
// metric is labelled with the run ID and environment class.
type Metrics struct {
	Episodes *prometheus.CounterVec
	Steps    *prometheus.CounterVec
	Returns  *prometheus.HistogramVec
}

// NewMetrics creates the rollout metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	labels := []string{"run", "env_class"}
	m := &Metrics{
		Episodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rlenv",
			Name:      "episodes_total",
			Help:      "Number of completed episodes.",
		}, labels),
		Steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rlenv",
			Name:      "steps_total",
			Help:      "Number of environment steps taken.",
		}, labels),
		Returns: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rlenv",
			Name:      "episode_return",
			Help:      "Undiscounted return of completed episodes.",
			Buckets:   prometheus.ExponentialBucketsRange(1, 10000, 12),
		}, labels),
	}

	for _, c := range []prometheus.Collector{m.Episodes, m.Steps, m.Returns} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("newMetrics: %w", err)
		}
	}
	return m, nil
}

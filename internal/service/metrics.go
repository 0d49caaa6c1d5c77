package service

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/depotcb/cbagent/internal/app"
)

// PrometheusObserver counts use-case calls and records their latency.
type PrometheusObserver struct {
	registry *prometheus.Registry
	calls    *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewPrometheusObserver registers its collectors on reg, or on a fresh
// registry when reg is nil.
func NewPrometheusObserver(reg *prometheus.Registry) *PrometheusObserver {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &PrometheusObserver{
		registry: reg,
		calls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cbagent_use_case_total",
				Help: "Number of service use-case calls by outcome",
			},
			[]string{"use_case", "outcome"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cbagent_use_case_duration_seconds",
				Help:    "Service use-case latency in seconds",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 300},
			},
			[]string{"use_case"},
		),
	}
}

func (o *PrometheusObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	outcome := "ok"
	if event.Err != nil {
		outcome = string(app.CodeOf(event.Err))
		if outcome == "" {
			outcome = "error"
		}
	}
	o.calls.WithLabelValues(event.Name, outcome).Inc()
	o.latency.WithLabelValues(event.Name).Observe(event.Duration.Seconds())
}

func (o *PrometheusObserver) Registry() *prometheus.Registry { return o.registry }

// WriteTextfile exports the current values in the node-exporter textfile format.
func (o *PrometheusObserver) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, o.registry)
}

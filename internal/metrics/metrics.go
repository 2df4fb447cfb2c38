// Package metrics exposes sample quality and name-resolution rates as
// Prometheus metrics on a private registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"

	"github.com/sells-group/metro-sampler/internal/model"
)

// Resolution outcomes.
const (
	OutcomeResolved   = "resolved"
	OutcomeUnresolved = "unresolved"
)

// Metrics holds the sampler collectors. A nil *Metrics is a no-op.
type Metrics struct {
	registry *prometheus.Registry

	Coverage            prometheus.Gauge
	SampleSize          prometheus.Gauge
	Converged           prometheus.Gauge
	RebalanceIterations prometheus.Gauge
	Selections          *prometheus.GaugeVec
	Resolutions         *prometheus.CounterVec
	StageDuration       *prometheus.HistogramVec
}

// New creates a Metrics instance with every collector registered on a
// fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		Coverage: f.NewGauge(prometheus.GaugeOpts{
			Name: "metro_sampler_population_coverage",
			Help: "Fraction of universe population covered by the latest sample",
		}),
		SampleSize: f.NewGauge(prometheus.GaugeOpts{
			Name: "metro_sampler_sample_size",
			Help: "Number of regions in the latest sample",
		}),
		Converged: f.NewGauge(prometheus.GaugeOpts{
			Name: "metro_sampler_rebalance_converged",
			Help: "1 when allocation rebalancing converged for the latest sample",
		}),
		RebalanceIterations: f.NewGauge(prometheus.GaugeOpts{
			Name: "metro_sampler_rebalance_iterations",
			Help: "Rebalancing passes used by the latest sample",
		}),
		Selections: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "metro_sampler_selections",
			Help: "Regions in the latest sample by selection method",
		}, []string{"method"}),
		Resolutions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "metro_sampler_resolutions_total",
			Help: "Source records by region resolution outcome",
		}, []string{"source", "outcome"}),
		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "metro_sampler_stage_duration_seconds",
			Help:    "Duration of pipeline stages",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		}, []string{"stage"}),
	}
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveSample records the quality gauges for a completed sample.
func (m *Metrics) ObserveSample(s *model.Sample) {
	if m == nil || s == nil {
		return
	}
	m.Coverage.Set(s.Coverage)
	m.SampleSize.Set(float64(s.Len()))
	m.RebalanceIterations.Set(float64(s.RebalanceIterations))
	if s.Converged {
		m.Converged.Set(1)
	} else {
		m.Converged.Set(0)
	}

	counts := s.CountByMethod()
	for _, method := range []model.SelectionMethod{
		model.SelectionMandatory,
		model.SelectionStratifiedRandom,
		model.SelectionCoverageBoost,
	} {
		m.Selections.WithLabelValues(string(method)).Set(float64(counts[method]))
	}
}

// ObserveResolution adds resolved and unresolved record counts for a source.
func (m *Metrics) ObserveResolution(source string, resolved, unresolved int) {
	if m == nil {
		return
	}
	m.Resolutions.WithLabelValues(source, OutcomeResolved).Add(float64(resolved))
	m.Resolutions.WithLabelValues(source, OutcomeUnresolved).Add(float64(unresolved))
}

// ObserveStage records how long a pipeline stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// WriteTextfile writes the registry in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return eris.Wrapf(err, "metrics: write textfile %s", path)
	}
	return nil
}

// Handler serves the registry over HTTP.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

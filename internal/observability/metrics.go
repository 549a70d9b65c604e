package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "precip_maps"

// Run outcomes recorded on RunsTotal.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

// Metrics holds the Prometheus counters, histograms, and gauges for map production.
type Metrics struct {
	RunsTotal         *prometheus.CounterVec // labels: outcome={success,failure,skipped}
	RunDuration       prometheus.Histogram
	LastSuccess       prometheus.Gauge
	SchedulerRunning  prometheus.Gauge
	ProductsPublished prometheus.Counter
	PublishErrors     prometheus.Counter

	// Per metric kind.
	MapsRendered    *prometheus.CounterVec   // labels: kind
	StationsPlotted *prometheus.CounterVec   // labels: kind
	StationErrors   *prometheus.CounterVec   // labels: kind
	RenderDuration  *prometheus.HistogramVec // labels: kind
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, so
// tests can build as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

// Register adds the metrics to reg. Used when a caller wants a private
// registry, e.g. to write a textfile for a one-shot run.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func newMetrics() *Metrics {
	return &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Map production runs by outcome.",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete run producing all map kinds.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that produced every map.",
		}),
		SchedulerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scheduler_running",
			Help:      "1 when the scheduler is active, 0 when shut down.",
		}),
		ProductsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "products_published_total",
			Help:      "Map product notifications written to Kafka.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Map product notifications that could not be written.",
		}),
		MapsRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "maps_rendered_total",
			Help:      "Map images written, by metric kind.",
		}, []string{"kind"}),
		StationsPlotted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stations_plotted_total",
			Help:      "Station markers drawn, by metric kind.",
		}, []string{"kind"}),
		StationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "station_errors_total",
			Help:      "Stations skipped because their value could not be classified.",
		}, []string{"kind"}),
		RenderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time to draw and encode one map.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
		}, []string{"kind"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RunsTotal,
		m.RunDuration,
		m.LastSuccess,
		m.SchedulerRunning,
		m.ProductsPublished,
		m.PublishErrors,
		m.MapsRendered,
		m.StationsPlotted,
		m.StationErrors,
		m.RenderDuration,
	}
}

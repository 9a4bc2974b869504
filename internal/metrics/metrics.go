package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the viewer service
type Metrics struct {
	hotspotCount    prometheus.Gauge
	placing         prometheus.Gauge
	commands        *prometheus.CounterVec
	imports         *prometheus.CounterVec
	importSize      prometheus.Histogram
	downloadLatency prometheus.Histogram
	subscribers     prometheus.Gauge
}

// NewMetrics creates and registers all metrics on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		hotspotCount: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "viewer_hotspots",
				Help: "Number of hotspots on the current model",
			},
		),
		placing: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "viewer_placement_active",
				Help: "1 while placement mode is active",
			},
		),
		commands: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viewer_commands_total",
				Help: "Session commands processed, by command and outcome",
			},
			[]string{"command", "outcome"},
		),
		imports: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viewer_model_imports_total",
				Help: "Model import attempts by result",
			},
			[]string{"result"},
		),
		importSize: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "viewer_model_import_bytes",
				Help:    "Size of accepted GLB imports in bytes",
				Buckets: prometheus.ExponentialBuckets(64<<10, 4, 8),
			},
		),
		downloadLatency: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "viewer_model_download_latency_ms",
				Help:    "Latency of model blob reads in milliseconds",
				Buckets: []float64{0.5, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
			},
		),
		subscribers: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "viewer_session_subscribers",
				Help: "Open session event streams",
			},
		),
	}
}

// RecordCommand counts a processed command. outcome is "changed", "noop" or "error".
func (m *Metrics) RecordCommand(command, outcome string) {
	m.commands.WithLabelValues(command, outcome).Inc()
}

// SetSession publishes the hotspot count and placement flag
func (m *Metrics) SetSession(hotspots int, placing bool) {
	m.hotspotCount.Set(float64(hotspots))
	if placing {
		m.placing.Set(1)
	} else {
		m.placing.Set(0)
	}
}

// RecordImport counts an import attempt. size is observed only for accepted imports.
func (m *Metrics) RecordImport(result string, size int64) {
	m.imports.WithLabelValues(result).Inc()
	if result == "accepted" {
		m.importSize.Observe(float64(size))
	}
}

// RecordDownloadLatency records the end-to-end time of a model download
func (m *Metrics) RecordDownloadLatency(milliseconds float64) {
	m.downloadLatency.Observe(milliseconds)
}

// AddSubscribers adjusts the open stream gauge
func (m *Metrics) AddSubscribers(delta int) {
	m.subscribers.Add(float64(delta))
}

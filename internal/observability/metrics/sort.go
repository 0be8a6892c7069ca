package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kirillkom/resume-sorter/internal/core/domain"
)

// SortMetrics implements ports.SortObserver on a private registry.
type SortMetrics struct {
	registry *prometheus.Registry
	service  string

	documentsTotal      *prometheus.CounterVec
	failuresTotal       *prometheus.CounterVec
	extractionDuration  *prometheus.HistogramVec
	extractionsInFlight prometheus.Gauge
	routeDuration       *prometheus.HistogramVec
	runsTotal           *prometheus.CounterVec
	runDuration         *prometheus.HistogramVec
}

func NewSortMetrics(service string) *SortMetrics {
	registry := prometheus.NewRegistry()

	documentsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resume_sorter",
			Subsystem: "sort",
			Name:      "documents_total",
			Help:      "Total classified documents by category.",
		},
		[]string{"service", "category"},
	)
	failuresTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resume_sorter",
			Subsystem: "sort",
			Name:      "failures_total",
			Help:      "Total per-document failures by kind.",
		},
		[]string{"service", "kind"},
	)
	extractionDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resume_sorter",
			Subsystem: "sort",
			Name:      "extraction_duration_seconds",
			Help:      "Text extraction duration per document.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"service", "status"},
	)
	extractionsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "resume_sorter",
			Subsystem: "sort",
			Name:      "extractions_in_flight",
			Help:      "Number of documents being extracted right now.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	routeDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resume_sorter",
			Subsystem: "sort",
			Name:      "route_duration_seconds",
			Help:      "Classification plus move duration per document.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"service", "category"},
	)
	runsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resume_sorter",
			Subsystem: "sort",
			Name:      "runs_total",
			Help:      "Total sort runs by status.",
		},
		[]string{"service", "status"},
	)
	runDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resume_sorter",
			Subsystem: "sort",
			Name:      "run_duration_seconds",
			Help:      "Sort run duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	registry.MustRegister(
		documentsTotal,
		failuresTotal,
		extractionDuration,
		extractionsInFlight,
		routeDuration,
		runsTotal,
		runDuration,
	)

	return &SortMetrics{
		registry:            registry,
		service:             service,
		documentsTotal:      documentsTotal,
		failuresTotal:       failuresTotal,
		extractionDuration:  extractionDuration,
		extractionsInFlight: extractionsInFlight,
		routeDuration:       routeDuration,
		runsTotal:           runsTotal,
		runDuration:         runDuration,
	}
}

func (m *SortMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *SortMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *SortMetrics) StartExtraction() {
	m.extractionsInFlight.Inc()
}

func (m *SortMetrics) FinishExtraction(duration time.Duration, err error) {
	m.extractionsInFlight.Dec()

	status := "ok"
	if err != nil {
		status = "failed"
	}
	m.extractionDuration.WithLabelValues(m.service, status).Observe(duration.Seconds())
}

func (m *SortMetrics) FinishDocument(category domain.Category, duration time.Duration, failures []domain.Failure) {
	m.documentsTotal.WithLabelValues(m.service, string(category)).Inc()
	m.routeDuration.WithLabelValues(m.service, string(category)).Observe(duration.Seconds())
	for _, f := range failures {
		m.failuresTotal.WithLabelValues(m.service, string(f.Kind)).Inc()
	}
}

func (m *SortMetrics) FinishRun(report *domain.RunReport) {
	status := "success"
	if len(report.Failures) > 0 {
		status = "partial"
	}
	m.runsTotal.WithLabelValues(m.service, status).Inc()
	m.runDuration.WithLabelValues(m.service).Observe(report.Duration().Seconds())
}

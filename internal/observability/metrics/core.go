package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/prangggshu/legal-chatbot/internal/core/domain"
)

// CoreMetrics observes retrieval, reranking, answer routing and circuit
// breakers. One value is shared by every component of a process.
type CoreMetrics struct {
	service string

	retrievalTotal      *prometheus.CounterVec
	retrievalConfidence *prometheus.HistogramVec
	retrievalDuration   prometheus.Histogram
	indexChunks         *prometheus.GaugeVec
	indexDimension      prometheus.Gauge

	rerankTotal    *prometheus.CounterVec
	rerankDuration prometheus.Histogram

	generationTotal    *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec

	breakerTransitions *prometheus.CounterVec
	breakerOpen        *prometheus.GaugeVec
}

func NewCoreMetrics(service string, registerer prometheus.Registerer) *CoreMetrics {
	constLabels := prometheus.Labels{"service": service}

	m := &CoreMetrics{
		service: service,
		retrievalTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "retrieval",
				Name:        "requests_total",
				Help:        "Retrievals by resolved tier.",
				ConstLabels: constLabels,
			},
			[]string{"tier"},
		),
		retrievalConfidence: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Subsystem:   "retrieval",
				Name:        "confidence",
				Help:        "Confidence of resolved retrievals.",
				Buckets:     []float64{0, 0.1, 0.2, 0.25, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 0.99, 1},
				ConstLabels: constLabels,
			},
			[]string{"tier"},
		),
		retrievalDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Subsystem:   "retrieval",
				Name:        "duration_seconds",
				Help:        "Retrieval duration in seconds.",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: constLabels,
			},
		),
		indexChunks: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Subsystem:   "index",
				Name:        "chunks",
				Help:        "Indexed chunks by source.",
				ConstLabels: constLabels,
			},
			[]string{"source"},
		),
		indexDimension: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Subsystem:   "index",
				Name:        "dimension",
				Help:        "Embedding dimension of the loaded index.",
				ConstLabels: constLabels,
			},
		),
		rerankTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "rerank",
				Name:        "requests_total",
				Help:        "Rerank calls by outcome.",
				ConstLabels: constLabels,
			},
			[]string{"outcome"},
		),
		rerankDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Subsystem:   "rerank",
				Name:        "duration_seconds",
				Help:        "Rerank duration in seconds.",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: constLabels,
			},
		),
		generationTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "llm",
				Name:        "generations_total",
				Help:        "Answer generations by route and status.",
				ConstLabels: constLabels,
			},
			[]string{"route", "status"},
		),
		generationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Subsystem:   "llm",
				Name:        "generation_duration_seconds",
				Help:        "Answer generation duration in seconds by route.",
				Buckets:     []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 32},
				ConstLabels: constLabels,
			},
			[]string{"route"},
		),
		breakerTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "resilience",
				Name:        "breaker_transitions_total",
				Help:        "Circuit breaker state transitions.",
				ConstLabels: constLabels,
			},
			[]string{"dependency", "from", "to"},
		),
		breakerOpen: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Subsystem:   "resilience",
				Name:        "breaker_open",
				Help:        "1 while the dependency's circuit breaker is open.",
				ConstLabels: constLabels,
			},
			[]string{"dependency"},
		),
	}

	registerer.MustRegister(
		m.retrievalTotal,
		m.retrievalConfidence,
		m.retrievalDuration,
		m.indexChunks,
		m.indexDimension,
		m.rerankTotal,
		m.rerankDuration,
		m.generationTotal,
		m.generationDuration,
		m.breakerTransitions,
		m.breakerOpen,
	)
	return m
}

func (m *CoreMetrics) ObserveRetrieval(tier domain.Tier, confidence float64, duration time.Duration) {
	m.retrievalTotal.WithLabelValues(string(tier)).Inc()
	if tier != domain.TierNoMatch {
		m.retrievalConfidence.WithLabelValues(string(tier)).Observe(confidence)
	}
	m.retrievalDuration.Observe(duration.Seconds())
}

func (m *CoreMetrics) ObserveIndexSize(stats domain.IndexStats) {
	m.indexChunks.Reset()
	for source, count := range stats.BySource {
		m.indexChunks.WithLabelValues(string(source)).Set(float64(count))
	}
	m.indexDimension.Set(float64(stats.Dimension))
}

func (m *CoreMetrics) ObserveRerank(outcome string, duration time.Duration) {
	m.rerankTotal.WithLabelValues(outcome).Inc()
	m.rerankDuration.Observe(duration.Seconds())
}

func (m *CoreMetrics) ObserveGeneration(route string, ok bool, duration time.Duration) {
	status := "success"
	if !ok {
		status = "error"
	}
	m.generationTotal.WithLabelValues(route, status).Inc()
	m.generationDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// ObserveBreakerState matches resilience.Config.OnBreakerStateChange.
func (m *CoreMetrics) ObserveBreakerState(dependency, from, to string) {
	m.breakerTransitions.WithLabelValues(dependency, from, to).Inc()
	open := 0.0
	if to == "open" {
		open = 1
	}
	m.breakerOpen.WithLabelValues(dependency).Set(open)
}

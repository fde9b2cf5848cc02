package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkerMetrics covers the upload indexing pipeline run by the worker.
type WorkerMetrics struct {
	registry *prometheus.Registry

	documents     *prometheus.CounterVec
	indexDuration *prometheus.HistogramVec
	indexing      prometheus.Gauge
	queueLag      *prometheus.HistogramVec
	chunks        *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	m := &WorkerMetrics{
		registry:      prometheus.NewRegistry(),
		documents:     workerCounter("documents_total", "Uploaded documents processed, by outcome (ready or failed).", "service", "outcome"),
		indexDuration: workerHistogram("document_index_duration_seconds", "Time to extract, chunk, embed and persist one document.", indexBuckets, "service", "outcome"),
		indexing:      workerGauge(service, "documents_indexing", "Documents currently being indexed."),
		queueLag:      workerHistogram("queue_lag_seconds", "Delay between upload and the start of indexing.", lagBuckets, "service"),
		chunks:        workerCounter("chunks_total", "Chunks produced by uploads, split into created and newly indexed.", "service", "kind"),
	}
	m.registry.MustRegister(m.documents, m.indexDuration, m.indexing, m.queueLag, m.chunks)
	return m
}

var (
	indexBuckets = []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120, 300}
	lagBuckets   = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600}
)

func workerCounter(name, help string, labels ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      name,
		Help:      help,
	}, labels)
}

func workerHistogram(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)
}

func workerGauge(service, name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Subsystem:   "worker",
		Name:        name,
		Help:        help,
		ConstLabels: prometheus.Labels{"service": service},
	})
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registerer lets the core collectors share the worker registry.
func (m *WorkerMetrics) Registerer() prometheus.Registerer {
	return m.registry
}

// TrackDocument marks one document as indexing; the returned func records its outcome.
func (m *WorkerMetrics) TrackDocument(service string) func(err error) {
	m.indexing.Inc()
	start := time.Now()
	return func(err error) {
		m.indexing.Dec()
		outcome := "ready"
		if err != nil {
			outcome = "failed"
		}
		m.documents.WithLabelValues(service, outcome).Inc()
		m.indexDuration.WithLabelValues(service, outcome).Observe(time.Since(start).Seconds())
	}
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag >= 0 {
		m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
	}
}

func (m *WorkerMetrics) RecordChunks(service string, created, added int) {
	m.chunks.WithLabelValues(service, "created").Add(float64(created))
	m.chunks.WithLabelValues(service, "added").Add(float64(added))
}

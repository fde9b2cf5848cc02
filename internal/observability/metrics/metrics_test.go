package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/prangggshu/legal-chatbot/internal/core/domain"
)

func TestHTTPMiddlewareCountsNormalizedPaths(t *testing.T) {
	m := NewHTTPServerMetrics("legal-api")
	handler := m.Middleware("legal-api", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	for _, path := range []string{"/v1/documents/a/risks", "/v1/documents/b/risks"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	got := testutil.ToFloat64(m.requestTotal.WithLabelValues("legal-api", http.MethodGet, "/v1/documents/{document_id}/risks", "404"))
	if got != 2 {
		t.Fatalf("expected 2 requests, got %v", got)
	}
}

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"/v1/ask":                   "/v1/ask",
		"/v1/documents/abc":         "/v1/documents/{document_id}",
		"/v1/documents/abc/summary": "/v1/documents/{document_id}/summary",
		"/v1/documents/abc/risks":   "/v1/documents/{document_id}/risks",
		"/v1/retrieval/candidates":  "/v1/retrieval/candidates",
	}
	for in, want := range cases {
		if got := normalizePath(in); got != want {
			t.Fatalf("normalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCoreMetricsObservers(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewCoreMetrics("legal-api", registry)

	m.ObserveRetrieval(domain.TierSemantic, 0.7, 5*time.Millisecond)
	m.ObserveRetrieval(domain.TierNoMatch, 0.1, time.Millisecond)
	m.ObserveIndexSize(domain.IndexStats{
		Dimension: 384,
		BySource:  map[domain.Source]int{domain.SourceKnowledgeBase: 10, domain.SourceUpload: 2},
	})
	m.ObserveRerank("selected", time.Millisecond)
	m.ObserveGeneration("local", false, time.Second)
	m.ObserveBreakerState("ollama", "closed", "open")

	if got := testutil.ToFloat64(m.retrievalTotal.WithLabelValues(string(domain.TierSemantic))); got != 1 {
		t.Fatalf("expected one semantic retrieval, got %v", got)
	}
	if got := testutil.ToFloat64(m.indexChunks.WithLabelValues(string(domain.SourceUpload))); got != 2 {
		t.Fatalf("expected 2 upload chunks, got %v", got)
	}
	if got := testutil.ToFloat64(m.generationTotal.WithLabelValues("local", "error")); got != 1 {
		t.Fatalf("expected one failed local generation, got %v", got)
	}
	if got := testutil.ToFloat64(m.breakerOpen.WithLabelValues("ollama")); got != 1 {
		t.Fatalf("expected open breaker gauge, got %v", got)
	}

	m.ObserveBreakerState("ollama", "open", "half-open")
	if got := testutil.ToFloat64(m.breakerOpen.WithLabelValues("ollama")); got != 0 {
		t.Fatalf("expected closed breaker gauge, got %v", got)
	}

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	if !strings.Contains(strings.Join(names, ","), "legal_rerank_requests_total") {
		t.Fatalf("rerank metric not registered: %v", names)
	}
}

func TestWorkerMetricsRecordChunks(t *testing.T) {
	m := NewWorkerMetrics("legal-worker")
	m.RecordChunks("legal-worker", 5, 3)

	if got := testutil.ToFloat64(m.chunks.WithLabelValues("legal-worker", "added")); got != 3 {
		t.Fatalf("expected 3 added chunks, got %v", got)
	}
}

func TestWorkerMetricsTrackDocument(t *testing.T) {
	m := NewWorkerMetrics("legal-worker")

	done := m.TrackDocument("legal-worker")
	if got := testutil.ToFloat64(m.indexing); got != 1 {
		t.Fatalf("expected one indexing document, got %v", got)
	}
	done(errors.New("extract failed"))

	if got := testutil.ToFloat64(m.indexing); got != 0 {
		t.Fatalf("expected indexing gauge to drop back, got %v", got)
	}
	if got := testutil.ToFloat64(m.documents.WithLabelValues("legal-worker", "failed")); got != 1 {
		t.Fatalf("expected one failed document, got %v", got)
	}
}

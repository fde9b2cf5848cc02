package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/prangggshu/legal-chatbot/internal/config"
	"github.com/prangggshu/legal-chatbot/internal/core/domain"
	"github.com/prangggshu/legal-chatbot/internal/core/ports"
	"github.com/prangggshu/legal-chatbot/internal/observability/metrics"
)

const (
	serviceName       = "legal-api"
	maxUploadBytes    = 32 << 20
	maxCandidatesTopK = 50
)

// Services are the inbound ports the api exposes. Nil services answer 503.
type Services struct {
	Ingestor  ports.DocumentIngestor
	Documents ports.DocumentReader
	Asker     ports.QuestionAnswerer
	Retrieval ports.RetrievalService
	Analyzer  ports.DocumentAnalyzer
}

type Router struct {
	cfg      config.Config
	services Services
	metrics  *metrics.HTTPServerMetrics
	logger   *slog.Logger
}

// NewRouter builds the api router. httpMetrics and logger may be nil.
func NewRouter(cfg config.Config, services Services, httpMetrics *metrics.HTTPServerMetrics, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		cfg:      cfg,
		services: services,
		metrics:  httpMetrics,
		logger:   logger,
	}
}

func (rt *Router) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST /v1/ask", rt.ask)
	api.HandleFunc("POST /v1/retrieval/candidates", rt.candidates)
	api.HandleFunc("POST /v1/documents", rt.uploadDocument)
	api.HandleFunc("GET /v1/documents/{id}", rt.getDocumentByID)
	api.HandleFunc("GET /v1/documents/{id}/risks", rt.documentRisks)
	api.HandleFunc("GET /v1/documents/{id}/summary", rt.documentSummary)
	api.HandleFunc("GET /v1/index/stats", rt.indexStats)

	var limited http.Handler = api
	if rt.cfg.APIMaxInFlight > 0 {
		limited = backpressureMiddleware(limited, rt.cfg.APIMaxInFlight, rt.cfg.APIQueueWait, rt.recordRejected)
	}
	if rt.cfg.APIRateLimitRPS > 0 {
		burst := rt.cfg.APIRateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		limiter := rate.NewLimiter(rate.Limit(rt.cfg.APIRateLimitRPS), burst)
		limited = rateLimitMiddleware(limited, limiter, rt.recordRejected)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}
	mux.Handle("/v1/", limited)

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(rt.logger, handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	payload := map[string]any{"status": "ok"}
	if rt.services.Retrieval != nil {
		payload["index_chunks"] = rt.services.Retrieval.Stats().Count
	}
	writeJSON(w, http.StatusOK, payload)
}

type askRequest struct {
	Question string `json:"question"`
	Query    string `json:"query"`
}

func (rt *Router) ask(w http.ResponseWriter, r *http.Request) {
	if rt.services.Asker == nil {
		writeUnavailable(w, "ask")
		return
	}
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		question = strings.TrimSpace(req.Query)
	}
	if question == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	start := time.Now()
	result, err := rt.services.Asker.Ask(r.Context(), question)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordAsk(serviceName, string(result.AnswerSource), result.Confidence, time.Since(start))
	}
	writeJSON(w, http.StatusOK, result)
}

type candidatesRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type candidatesResponse struct {
	Query      string             `json:"query"`
	Candidates []domain.Candidate `json:"candidates"`
}

func (rt *Router) candidates(w http.ResponseWriter, r *http.Request) {
	if rt.services.Retrieval == nil {
		writeUnavailable(w, "retrieval")
		return
	}
	var req candidatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}
	topK := req.TopK
	if topK <= 0 {
		topK = rt.cfg.RetrievalCandidatesTopK
	}
	if topK <= 0 || topK > maxCandidatesTopK {
		topK = maxCandidatesTopK
	}

	candidates := rt.services.Retrieval.RetrieveCandidates(r.Context(), req.Query, topK)
	if candidates == nil {
		candidates = []domain.Candidate{}
	}
	writeJSON(w, http.StatusOK, candidatesResponse{Query: req.Query, Candidates: candidates})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if rt.services.Ingestor == nil {
		writeUnavailable(w, "upload")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "file is too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.services.Ingestor.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	if rt.services.Documents == nil {
		writeUnavailable(w, "documents")
		return
	}
	doc, err := rt.services.Documents.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) documentRisks(w http.ResponseWriter, r *http.Request) {
	if rt.services.Analyzer == nil {
		writeUnavailable(w, "analysis")
		return
	}
	report, err := rt.services.Analyzer.AnalyzeRisks(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (rt *Router) documentSummary(w http.ResponseWriter, r *http.Request) {
	if rt.services.Analyzer == nil {
		writeUnavailable(w, "analysis")
		return
	}
	summary, err := rt.services.Analyzer.Summarize(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (rt *Router) indexStats(w http.ResponseWriter, _ *http.Request) {
	if rt.services.Retrieval == nil {
		writeUnavailable(w, "retrieval")
		return
	}
	writeJSON(w, http.StatusOK, rt.services.Retrieval.Stats())
}

func (rt *Router) recordRejected(reason string) {
	if rt.metrics != nil {
		rt.metrics.RecordRejected(serviceName, reason)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeUnavailable(w http.ResponseWriter, service string) {
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": service + " is not configured"})
}

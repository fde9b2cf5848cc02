package rerank

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/prangggshu/legal-chatbot/internal/core/domain"
	"github.com/prangggshu/legal-chatbot/internal/core/ports"
)

const (
	OutcomeSelected       = "selected"
	OutcomeBelowThreshold = "below_threshold"
	OutcomeUnavailable    = "unavailable"
	OutcomeSkipped        = "skipped"
)

// Observer receives one outcome per Rerank call.
type Observer interface {
	ObserveRerank(outcome string, duration time.Duration)
}

type noopObserver struct{}

func (noopObserver) ObserveRerank(string, time.Duration) {}

// state is one of unloaded, loaded or loadFailed.
type state interface {
	name() string
}

type unloaded struct{}

type loaded struct {
	classifier ports.RelevanceClassifier
}

type loadFailed struct {
	err error
}

func (unloaded) name() string   { return "unloaded" }
func (loaded) name() string     { return "loaded" }
func (loadFailed) name() string { return "load_failed" }

type Options struct {
	ModelPath string
	MinScore  float64
	Observer  Observer
	Logger    *slog.Logger
}

// Reranker loads its classifier on first use and remembers a failed load, so
// a missing artifact costs one attempt per process until Reset.
type Reranker struct {
	load      ports.ClassifierLoader
	modelPath string
	minScore  float64
	observer  Observer
	logger    *slog.Logger

	mu    sync.Mutex
	state state
}

func New(load ports.ClassifierLoader, opts Options) *Reranker {
	observer := opts.Observer
	if observer == nil {
		observer = noopObserver{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Reranker{
		load:      load,
		modelPath: strings.TrimSpace(opts.ModelPath),
		minScore:  opts.MinScore,
		observer:  observer,
		logger:    logger,
		state:     unloaded{},
	}
}

func (r *Reranker) Rerank(ctx context.Context, query string, candidates []domain.Candidate) *domain.RerankedCandidate {
	return r.RerankWithThreshold(ctx, query, candidates, r.minScore)
}

// RerankWithThreshold scores every candidate against the query and returns the
// most relevant one when it reaches minScore. It returns nil when the
// classifier is unavailable, fails on any candidate, or nothing qualifies.
func (r *Reranker) RerankWithThreshold(ctx context.Context, query string, candidates []domain.Candidate, minScore float64) *domain.RerankedCandidate {
	start := time.Now()
	if strings.TrimSpace(query) == "" || len(candidates) == 0 {
		r.observer.ObserveRerank(OutcomeSkipped, time.Since(start))
		return nil
	}
	classifier := r.classifier()
	if classifier == nil {
		r.observer.ObserveRerank(OutcomeUnavailable, time.Since(start))
		return nil
	}

	var best *domain.RerankedCandidate
	for _, c := range candidates {
		if ctx.Err() != nil {
			break
		}
		if strings.TrimSpace(c.Text) == "" {
			continue
		}
		score, err := classifier.Relevance(ctx, query, c.Text)
		if err != nil {
			r.logger.Warn("rerank_score_failed", "position", c.Position, "error", err)
			r.observer.ObserveRerank(OutcomeUnavailable, time.Since(start))
			return nil
		}
		if best == nil || score > best.Relevance {
			best = &domain.RerankedCandidate{Candidate: c, Relevance: score}
		}
	}

	if best == nil || best.Relevance < minScore {
		r.observer.ObserveRerank(OutcomeBelowThreshold, time.Since(start))
		return nil
	}
	r.observer.ObserveRerank(OutcomeSelected, time.Since(start))
	return best
}

// Reset forgets a loaded or failed classifier so the next call loads again.
func (r *Reranker) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = unloaded{}
}

func (r *Reranker) Status() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.name()
}

func (r *Reranker) classifier() ports.RelevanceClassifier {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch s := r.state.(type) {
	case loaded:
		return s.classifier
	case loadFailed:
		return nil
	}

	if r.modelPath == "" || r.load == nil {
		r.state = loadFailed{err: errors.New("reranker model path is not configured")}
		r.logger.Info("reranker_disabled")
		return nil
	}
	classifier, err := r.load(r.modelPath)
	if err != nil {
		r.state = loadFailed{err: err}
		r.logger.Warn("reranker_unavailable", "model_path", r.modelPath, "error", err)
		return nil
	}
	r.state = loaded{classifier: classifier}
	r.logger.Info("reranker_loaded", "model_path", r.modelPath)
	return classifier
}

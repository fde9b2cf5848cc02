package router

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/prangggshu/legal-chatbot/internal/core/ports"
)

const (
	DefaultLocalBudget = 4 * time.Second

	RouteLocal = "local"
	RouteCloud = "cloud"
)

var errEmptyAnswer = errors.New("generator returned an empty answer")

type Observer interface {
	ObserveGeneration(route string, ok bool, duration time.Duration)
}

// Router answers with the local model first and falls back to the cloud
// model when the local call fails or exceeds its budget.
type Router struct {
	local    ports.AnswerGenerator
	cloud    ports.AnswerGenerator
	budget   time.Duration
	observer Observer
	logger   *slog.Logger
}

type Options struct {
	LocalBudget time.Duration
	Observer    Observer
	Logger      *slog.Logger
}

func New(local, cloud ports.AnswerGenerator, opts Options) *Router {
	budget := opts.LocalBudget
	if budget <= 0 {
		budget = DefaultLocalBudget
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		local:    local,
		cloud:    cloud,
		budget:   budget,
		observer: opts.Observer,
		logger:   logger,
	}
}

func (r *Router) GenerateAnswer(ctx context.Context, clause, question string) (string, error) {
	if r.local != nil {
		answer, err := r.tryLocal(ctx, clause, question)
		if err == nil {
			return answer, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		r.logger.Warn("local_generation_failed", "error", err, "budget_ms", r.budget.Milliseconds())
	}
	if r.cloud == nil {
		return "", errors.New("no answer generator available")
	}

	started := time.Now()
	answer, err := r.cloud.GenerateAnswer(ctx, clause, question)
	if err == nil && strings.TrimSpace(answer) == "" {
		err = errEmptyAnswer
	}
	r.observe(RouteCloud, err == nil, time.Since(started))
	if err != nil {
		return "", err
	}
	return answer, nil
}

func (r *Router) tryLocal(ctx context.Context, clause, question string) (string, error) {
	localCtx, cancel := context.WithTimeout(ctx, r.budget)
	defer cancel()

	started := time.Now()
	answer, err := r.local.GenerateAnswer(localCtx, clause, question)
	if err == nil && localCtx.Err() != nil {
		err = localCtx.Err()
	}
	if err == nil && strings.TrimSpace(answer) == "" {
		err = errEmptyAnswer
	}
	r.observe(RouteLocal, err == nil, time.Since(started))
	return answer, err
}

func (r *Router) observe(route string, ok bool, duration time.Duration) {
	if r.observer != nil {
		r.observer.ObserveGeneration(route, ok, duration)
	}
}

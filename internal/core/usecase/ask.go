package usecase

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"regexp"
	"strings"

	"github.com/prangggshu/legal-chatbot/internal/core/domain"
	"github.com/prangggshu/legal-chatbot/internal/core/ports"
	"github.com/prangggshu/legal-chatbot/internal/core/retrieval"
)

const (
	DefaultCandidatesTopK = 8

	fallbackNote        = "Note: This question was not found in the project knowledge base. The following is a general model response.\n\n"
	fallbackUnavailable = "I cannot answer this from the provided document, and fallback generation is currently unavailable."

	riskReasonNoClause     = "No relevant clause found in knowledge base"
	riskReasonInsufficient = "Retrieved context was insufficient; switched to general fallback"
)

var (
	directLookupPattern = regexp.MustCompile(`\bwhat\s+does\s+(section|clause)\s+\d+[a-z]*\b`)

	insufficientAnswerMarkers = []string{
		"does not contain information",
		"cannot answer this from the provided document",
		"not enough information",
		"insufficient information",
		"not provided in the clause",
		"there is no information",
		"no information",
	}
)

type AskUseCase struct {
	retrieval      ports.RetrievalService
	reranker       ports.Reranker
	answers        ports.AnswerGenerator
	general        ports.GeneralGenerator
	risk           ports.RiskDetector
	candidatesTopK int
	logger         *slog.Logger
}

type AskOptions struct {
	CandidatesTopK int
	Logger         *slog.Logger
}

// NewAskUseCase wires the ask flow. reranker and general may be nil.
func NewAskUseCase(
	retrievalSvc ports.RetrievalService,
	reranker ports.Reranker,
	answers ports.AnswerGenerator,
	general ports.GeneralGenerator,
	risk ports.RiskDetector,
	opts AskOptions,
) *AskUseCase {
	topK := opts.CandidatesTopK
	if topK <= 0 {
		topK = DefaultCandidatesTopK
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AskUseCase{
		retrieval:      retrievalSvc,
		reranker:       reranker,
		answers:        answers,
		general:        general,
		risk:           risk,
		candidatesTopK: topK,
		logger:         logger,
	}
}

type resolvedClause struct {
	text       string
	body       string
	confidence float64
	tier       domain.Tier
	source     domain.AnswerSource
}

func (uc *AskUseCase) Ask(ctx context.Context, question string) (*domain.AskResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ask", errors.New("question is required"))
	}

	direct := IsDirectSectionLookup(question)
	clause, ok := uc.resolve(ctx, question, direct)
	if !ok {
		return &domain.AskResult{
			Question:        question,
			Answer:          uc.fallback(ctx, question),
			AnswerSource:    domain.AnswerFromGeneralModel,
			ClauseReference: domain.ClauseReferenceNotFound,
			Confidence:      0,
			Tier:            domain.TierNoMatch,
			Risk:            domain.RiskAssessment{Level: domain.RiskUnknown, Reason: riskReasonNoClause},
		}, nil
	}

	answer, source, err := uc.answer(ctx, question, clause, direct)
	if err != nil {
		return nil, err
	}

	if IsInsufficientAnswer(answer) {
		if direct && clause.body != "" {
			answer = clause.body
			source = domain.AnswerFromDirectClause
		} else {
			return &domain.AskResult{
				Question:        question,
				Answer:          uc.fallback(ctx, question),
				AnswerSource:    domain.AnswerFromGeneralModel,
				ClauseReference: domain.ClauseReferenceNotFound,
				Confidence:      round2(clause.confidence),
				Tier:            clause.tier,
				Risk:            domain.RiskAssessment{Level: domain.RiskUnknown, Reason: riskReasonInsufficient},
			}, nil
		}
	}

	return &domain.AskResult{
		Question:        question,
		Answer:          answer,
		AnswerSource:    source,
		ClauseReference: retrieval.ClauseReference(clause.text),
		Confidence:      round2(clause.confidence),
		Tier:            clause.tier,
		Risk:            uc.risk.Detect(clause.body),
	}, nil
}

// resolve asks the reranker first unless the question names a section, then
// falls through to tiered retrieval.
func (uc *AskUseCase) resolve(ctx context.Context, question string, direct bool) (resolvedClause, bool) {
	if !direct && uc.reranker != nil {
		candidates := uc.retrieval.RetrieveCandidates(ctx, question, uc.candidatesTopK)
		if best := uc.reranker.Rerank(ctx, question, candidates); best != nil {
			return resolvedClause{
				text:       best.Text,
				body:       clauseBody(best.Text, best.Body),
				confidence: best.Confidence,
				tier:       domain.TierSemantic,
				source:     domain.AnswerFromReranker,
			}, true
		}
	}

	result := uc.retrieval.Retrieve(ctx, question)
	if !result.Found() {
		return resolvedClause{}, false
	}
	return resolvedClause{
		text:       result.Clause,
		body:       clauseBody(result.Clause, result.Body),
		confidence: result.Confidence,
		tier:       result.Tier,
		source:     domain.AnswerFromRetrieval,
	}, true
}

func (uc *AskUseCase) answer(ctx context.Context, question string, clause resolvedClause, direct bool) (string, domain.AnswerSource, error) {
	if direct && clause.body != "" {
		return clause.body, domain.AnswerFromDirectClause, nil
	}
	answer, err := uc.answers.GenerateAnswer(ctx, clause.body, question)
	if err != nil {
		return "", "", domain.WrapError(domain.ErrTemporary, "generate answer", err)
	}
	return strings.TrimSpace(answer), clause.source, nil
}

func (uc *AskUseCase) fallback(ctx context.Context, question string) string {
	if uc.general == nil {
		return fallbackUnavailable
	}
	answer, err := uc.general.GenerateFallback(ctx, question)
	if err != nil || strings.TrimSpace(answer) == "" {
		uc.logger.Warn("fallback_generation_failed", "error", err)
		return fallbackUnavailable
	}
	return fallbackNote + strings.TrimSpace(answer)
}

// IsDirectSectionLookup reports whether the question asks what a numbered
// section or clause says.
func IsDirectSectionLookup(question string) bool {
	return directLookupPattern.MatchString(strings.ToLower(strings.TrimSpace(question)))
}

// IsInsufficientAnswer reports whether a generated answer admits the clause
// did not cover the question.
func IsInsufficientAnswer(answer string) bool {
	normalized := strings.ToLower(strings.TrimSpace(answer))
	for _, marker := range insufficientAnswerMarkers {
		if strings.Contains(normalized, marker) {
			return true
		}
	}
	return false
}

func clauseBody(text, body string) string {
	if strings.TrimSpace(body) != "" {
		return strings.TrimSpace(body)
	}
	return retrieval.UnwrapClause(text)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package retrieval

import (
	"context"
	"math"

	"github.com/prangggshu/legal-chatbot/internal/core/domain"
)

// Orchestrator runs the tiers in order: legal reference, exact question,
// semantic ranking with a confidence gate and optional knowledge-base merge.
type Orchestrator struct {
	cfg       Config
	legal     *LegalReferenceMatcher
	questions *QuestionMatcher
	ranker    *HybridRanker
}

func NewOrchestrator(cfg Config, lexical *LexicalExtractor) *Orchestrator {
	cfg = cfg.normalize()
	return &Orchestrator{
		cfg:       cfg,
		legal:     NewLegalReferenceMatcher(cfg.LegalRefConfidence),
		questions: NewQuestionMatcher(cfg.FuzzyQuestionRatio, cfg.ExactQuestionConfidence),
		ranker:    NewHybridRanker(lexical, cfg.MaxCandidates),
	}
}

func (o *Orchestrator) Ranker() *HybridRanker {
	return o.ranker
}

func (o *Orchestrator) Retrieve(ctx context.Context, store *Store, query string) (domain.Retrieval, error) {
	chunks := store.Chunks()

	if c, ok := o.legal.FindMatch(query, chunks); ok {
		return resolved(domain.TierLegalReference, c), nil
	}
	if c, ok := o.questions.FindMatch(query, chunks); ok {
		return resolved(domain.TierExactQuestion, c), nil
	}

	ranked, err := o.ranker.Rank(ctx, store, query)
	if err != nil {
		return domain.Retrieval{Tier: domain.TierNoMatch}, err
	}
	if len(ranked) == 0 {
		return domain.Retrieval{Tier: domain.TierNoMatch}, nil
	}

	best := ranked[0]
	if best.Confidence < o.gate(best) {
		return domain.Retrieval{
			Tier:          domain.TierNoMatch,
			Confidence:    round2(best.Confidence),
			HasConfidence: true,
		}, nil
	}

	if kb, ok := o.knowledgeBaseCompanion(ranked, best); ok {
		return domain.Retrieval{
			Tier:          domain.TierSemantic,
			Clause:        mergeContext(kb.Text, best.Text, best.Source),
			Body:          mergeContext(kb.Body, best.Body, best.Source),
			Source:        best.Source,
			Confidence:    round2(math.Max(best.Confidence, kb.Confidence)),
			HasConfidence: true,
			Merged:        true,
		}, nil
	}

	r := resolved(domain.TierSemantic, best)
	r.Confidence = round2(best.Confidence)
	return r, nil
}

// gate is the confidence a semantic hit needs; lexical corroboration lowers it.
func (o *Orchestrator) gate(c domain.Candidate) float64 {
	if c.LexicalHits > 0 {
		return o.cfg.LenientThreshold
	}
	return o.cfg.StrictThreshold
}

func (o *Orchestrator) knowledgeBaseCompanion(ranked []domain.Candidate, best domain.Candidate) (domain.Candidate, bool) {
	for _, c := range ranked {
		if c.Source != domain.SourceKnowledgeBase {
			continue
		}
		if c.Text == best.Text {
			return domain.Candidate{}, false
		}
		if c.Confidence >= o.cfg.KnowledgeBaseThreshold || c.LexicalHits > 0 {
			return c, true
		}
		return domain.Candidate{}, false
	}
	return domain.Candidate{}, false
}

func resolved(tier domain.Tier, c domain.Candidate) domain.Retrieval {
	return domain.Retrieval{
		Tier:          tier,
		Clause:        c.Text,
		Body:          c.Body,
		Source:        c.Source,
		Confidence:    c.Confidence,
		HasConfidence: true,
	}
}

func mergeContext(kbText, bestText string, bestSource domain.Source) string {
	label := "Knowledge Base"
	if bestSource == domain.SourceUpload {
		label = "Uploaded Document"
	}
	return "Knowledge Base Context:\n" + kbText + "\n\nAdditional Retrieved Context (" + label + "):\n" + bestText
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

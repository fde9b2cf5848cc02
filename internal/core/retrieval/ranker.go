package retrieval

import (
	"context"
	"math"
	"slices"

	"github.com/prangggshu/legal-chatbot/internal/core/domain"
)

const (
	semanticWeight     = 0.82
	lexicalBoostCap    = 0.15
	keywordHitWeight   = 0.04
	phraseHitWeight    = 0.06
	knowledgeBaseBonus = 0.03
)

// HybridRanker blends vector similarity with lexical evidence and source origin.
type HybridRanker struct {
	lexical       *LexicalExtractor
	maxCandidates int
}

func NewHybridRanker(lexical *LexicalExtractor, maxCandidates int) *HybridRanker {
	if maxCandidates <= 0 {
		maxCandidates = DefaultConfig().MaxCandidates
	}
	return &HybridRanker{lexical: lexical, maxCandidates: maxCandidates}
}

// Rank returns every neighbor of the query, best combined score first.
func (r *HybridRanker) Rank(ctx context.Context, store *Store, query string) ([]domain.Candidate, error) {
	if store.Len() == 0 {
		return nil, nil
	}
	neighbors, err := store.Search(ctx, query, r.maxCandidates)
	if err != nil {
		return nil, err
	}
	terms := r.lexical.Extract(query)

	ranked := make([]domain.Candidate, 0, len(neighbors))
	for _, n := range neighbors {
		chunk, ok := store.Chunk(n.Position)
		if !ok {
			continue
		}
		c := candidateFromChunk(chunk, n.Position)
		c.Distance = n.Distance
		c.Confidence = DistanceToConfidence(n.Distance)

		keywordHits, phraseHits := terms.Hits(chunk.Text)
		c.LexicalHits = keywordHits + phraseHits
		c.CombinedScore = CombinedScore(c.Confidence, keywordHits, phraseHits, chunk.Source)
		ranked = append(ranked, c)
	}

	slices.SortStableFunc(ranked, func(a, b domain.Candidate) int {
		switch {
		case a.CombinedScore > b.CombinedScore:
			return -1
		case a.CombinedScore < b.CombinedScore:
			return 1
		default:
			return 0
		}
	})
	return ranked, nil
}

// DistanceToConfidence maps a squared distance onto (0, 1].
func DistanceToConfidence(distance float64) float64 {
	if distance < 0 {
		distance = 0
	}
	return 1 / (1 + distance)
}

func CombinedScore(confidence float64, keywordHits, phraseHits int, source domain.Source) float64 {
	boost := math.Min(lexicalBoostCap, float64(keywordHits)*keywordHitWeight+float64(phraseHits)*phraseHitWeight)
	score := confidence*semanticWeight + boost
	if source == domain.SourceKnowledgeBase {
		score += knowledgeBaseBonus
	}
	return score
}

// TopK keeps the first k ranked candidates, at least one when any exist.
func TopK(ranked []domain.Candidate, k int) []domain.Candidate {
	if len(ranked) == 0 {
		return nil
	}
	if k < 1 {
		k = 1
	}
	if k > len(ranked) {
		k = len(ranked)
	}
	return slices.Clone(ranked[:k])
}

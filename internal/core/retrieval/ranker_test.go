package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prangggshu/legal-chatbot/internal/core/domain"
)

func TestDistanceToConfidence(t *testing.T) {
	assert.Equal(t, 1.0, DistanceToConfidence(0))
	assert.Equal(t, 0.5, DistanceToConfidence(1))
	assert.Equal(t, 1.0, DistanceToConfidence(-0.0001))
}

func TestCombinedScore(t *testing.T) {
	assert.InDelta(t, 0.54, CombinedScore(0.5, 1, 1, domain.SourceKnowledgeBase), 1e-9)
	assert.InDelta(t, 0.51, CombinedScore(0.5, 1, 1, domain.SourceUpload), 1e-9)
	assert.InDelta(t, 0.82+0.15, CombinedScore(1, 5, 0, domain.SourceUpload), 1e-9, "lexical boost is capped")
}

func TestHybridRankerPrefersLexicalEvidence(t *testing.T) {
	ctx := context.Background()
	embedder := newMapEmbedder(2).
		set("Payment is due within thirty days.", 0.9, 0).
		set("Vendor liability is capped.", 1, 0).
		set("vendor liability", 0, 0)
	store := NewStore(embedder, StoreOptions{})
	_, err := store.Add(ctx, clauseChunks("Payment is due within thirty days.", "Vendor liability is capped."), domain.SourceUpload)
	require.NoError(t, err)

	ranked, err := NewHybridRanker(NewLexicalExtractor(DefaultLexicon()), 50).Rank(ctx, store, "vendor liability")
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	assert.Equal(t, "Vendor liability is capped.", ranked[0].Text)
	assert.Equal(t, 2, ranked[0].LexicalHits)
	assert.InDelta(t, 0.5, ranked[0].Confidence, 1e-6)
	assert.Greater(t, ranked[1].Confidence, ranked[0].Confidence)
	assert.GreaterOrEqual(t, ranked[0].CombinedScore, ranked[1].CombinedScore)
}

func TestHybridRankerCapsCandidates(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newMapEmbedder(8), StoreOptions{})
	_, err := store.Add(ctx, clauseChunks("one clause", "two clause", "three clause", "four clause"), domain.SourceUpload)
	require.NoError(t, err)

	ranked, err := NewHybridRanker(NewLexicalExtractor(DefaultLexicon()), 3).Rank(ctx, store, "clause")
	require.NoError(t, err)

	assert.Len(t, ranked, 3)
}

func TestHybridRankerEmptyStore(t *testing.T) {
	ranked, err := NewHybridRanker(NewLexicalExtractor(DefaultLexicon()), 50).
		Rank(context.Background(), NewStore(newMapEmbedder(4), StoreOptions{}), "anything")

	require.NoError(t, err)
	assert.Empty(t, ranked)
}

func TestTopK(t *testing.T) {
	ranked := []domain.Candidate{{Text: "a"}, {Text: "b"}, {Text: "c"}}

	assert.Len(t, TopK(ranked, 2), 2)
	assert.Len(t, TopK(ranked, 0), 1)
	assert.Len(t, TopK(ranked, 10), 3)
	assert.Nil(t, TopK(nil, 5))
}

package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prangggshu/legal-chatbot/internal/core/domain"
)

func qaCorpus() []domain.Chunk {
	return []domain.Chunk{
		domain.NewClauseChunk("What is liability? Not a curated pair.", domain.SourceUpload),
		domain.NewQAChunk("What is indemnity?", "Indemnity is a promise to compensate for loss.", domain.SourceKnowledgeBase),
		domain.NewQAChunk("What is liability?", "Liability refers to legal responsibility.", domain.SourceKnowledgeBase),
	}
}

func TestNormalizeQuestion(t *testing.T) {
	assert.Equal(t, "what is section 5 a", NormalizeQuestion("  What is SECTION 5(a)?? "))
}

func TestQuestionMatcherExactMatchIgnoresCaseAndPunctuation(t *testing.T) {
	got, ok := NewQuestionMatcher(0.85, 0.99).FindMatch("what is LIABILITY", qaCorpus())

	require.True(t, ok)
	assert.Equal(t, 2, got.Position)
	assert.Equal(t, 0.99, got.Confidence)
	assert.Equal(t, "Liability refers to legal responsibility.", got.Body)
}

func TestQuestionMatcherAcceptsCloseTypo(t *testing.T) {
	require.GreaterOrEqual(t, SimilarityRatio("what is liabilty", "what is liability"), 0.85)

	got, ok := NewQuestionMatcher(0.85, 0.99).FindMatch("What is liabilty?", qaCorpus())

	require.True(t, ok)
	assert.Equal(t, "What is liability?", got.Question)
}

func TestQuestionMatcherRejectsDistantQuestion(t *testing.T) {
	require.Less(t, SimilarityRatio("what is liability insurance", "what is liability"), 0.85)

	_, ok := NewQuestionMatcher(0.85, 0.99).FindMatch("What is liability insurance?", qaCorpus())

	assert.False(t, ok)
}

func TestQuestionMatcherSkipsBareClauses(t *testing.T) {
	chunks := []domain.Chunk{domain.NewClauseChunk("What is liability?", domain.SourceUpload)}

	_, ok := NewQuestionMatcher(0.85, 0.99).FindMatch("What is liability?", chunks)

	assert.False(t, ok)
}

func TestSimilarityRatioBounds(t *testing.T) {
	assert.Equal(t, 1.0, SimilarityRatio("abc", "abc"))
	assert.Equal(t, 0.0, SimilarityRatio("abc", "xyz"))
}

package retrieval

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prangggshu/legal-chatbot/internal/core/domain"
)

func newTestStore(t *testing.T, embedder *mapEmbedder, batches map[domain.Source][]domain.Chunk) *Store {
	t.Helper()
	store := NewStore(embedder, StoreOptions{})
	for _, source := range []domain.Source{domain.SourceKnowledgeBase, domain.SourceUpload, domain.SourceUnknown} {
		if chunks, ok := batches[source]; ok {
			_, err := store.Add(context.Background(), chunks, source)
			require.NoError(t, err)
		}
	}
	return store
}

func newTestOrchestrator() *Orchestrator {
	return NewOrchestrator(DefaultConfig(), NewLexicalExtractor(DefaultLexicon()))
}

func TestOrchestratorGatesWeakMatches(t *testing.T) {
	tests := []struct {
		name      string
		clause    string
		query     string
		wantFound bool
	}{
		{name: "no lexical support", clause: "Parties must keep records.", query: "Tell me something", wantFound: false},
		{name: "lexical support", clause: "Parties must honour obligations.", query: "Explain obligations", wantFound: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embedder := newMapEmbedder(2).set(tt.clause, 1.603567451, 0).set(tt.query, 0, 0)
			store := newTestStore(t, embedder, map[domain.Source][]domain.Chunk{
				domain.SourceUpload: clauseChunks(tt.clause),
			})

			got, err := newTestOrchestrator().Retrieve(context.Background(), store, tt.query)
			require.NoError(t, err)

			assert.Equal(t, tt.wantFound, got.Found())
			assert.True(t, got.HasConfidence)
			assert.Equal(t, 0.28, got.Confidence)
			if !tt.wantFound {
				assert.Equal(t, domain.TierNoMatch, got.Tier)
				assert.Empty(t, got.Clause)
			}
		})
	}
}

func TestOrchestratorLegalReferenceBeatsSemanticTop(t *testing.T) {
	query := "What is Section 5 of the Sample Act?"
	embedder := newMapEmbedder(2).
		set("Termination requires thirty days notice.", 1, 0).
		set("Section 5 of the Other Act deals with stamp duty.", 0, 1).
		set("Section 5 of the Sample Act covers data retention.", 0, 1).
		set(query, 1, 0)
	store := newTestStore(t, embedder, map[domain.Source][]domain.Chunk{
		domain.SourceUpload: clauseChunks(
			"Termination requires thirty days notice.",
			"Section 5 of the Other Act deals with stamp duty.",
			"Section 5 of the Sample Act covers data retention.",
		),
	})

	got, err := newTestOrchestrator().Retrieve(context.Background(), store, query)
	require.NoError(t, err)

	assert.Equal(t, domain.TierLegalReference, got.Tier)
	assert.Equal(t, "Section 5 of the Sample Act covers data retention.", got.Clause)
	assert.Equal(t, 0.95, got.Confidence)
}

func TestOrchestratorExactQuestion(t *testing.T) {
	embedder := newMapEmbedder(2).set("What is liability insurance?", 5, 5)
	store := newTestStore(t, embedder, map[domain.Source][]domain.Chunk{
		domain.SourceKnowledgeBase: {
			domain.NewQAChunk("What is liability?", "Liability refers to legal responsibility.", domain.SourceKnowledgeBase),
		},
		domain.SourceUpload: clauseChunks("The tenant is liable for repairs."),
	})
	o := newTestOrchestrator()

	exact, err := o.Retrieve(context.Background(), store, "what is LIABILITY")
	require.NoError(t, err)
	assert.Equal(t, domain.TierExactQuestion, exact.Tier)
	assert.Equal(t, 0.99, exact.Confidence)
	assert.Equal(t, "Liability refers to legal responsibility.", exact.Body)
	assert.Equal(t, domain.SourceKnowledgeBase, exact.Source)

	typo, err := o.Retrieve(context.Background(), store, "What is liabilty?")
	require.NoError(t, err)
	assert.Equal(t, domain.TierExactQuestion, typo.Tier)

	distant, err := o.Retrieve(context.Background(), store, "What is liability insurance?")
	require.NoError(t, err)
	assert.NotEqual(t, domain.TierExactQuestion, distant.Tier)
}

func TestOrchestratorMergesKnowledgeBaseContext(t *testing.T) {
	kb := domain.NewQAChunk("What is liability?", "Liability refers to legal responsibility.", domain.SourceKnowledgeBase)
	query := "Tell me about vendor liability limits"
	embedder := newMapEmbedder(2).
		set(kb.Text, 1, 1).
		set("Vendor liability is limited to fees paid.", 1, 0).
		set(query, 1, 0)
	store := newTestStore(t, embedder, map[domain.Source][]domain.Chunk{
		domain.SourceKnowledgeBase: {kb},
		domain.SourceUpload:        clauseChunks("Vendor liability is limited to fees paid."),
	})

	got, err := newTestOrchestrator().Retrieve(context.Background(), store, query)
	require.NoError(t, err)

	assert.Equal(t, domain.TierSemantic, got.Tier)
	assert.True(t, got.Merged)
	assert.Equal(t, 1.0, got.Confidence)
	assert.Equal(t, domain.SourceUpload, got.Source)
	assert.True(t, strings.HasPrefix(got.Clause, "Knowledge Base Context:\n"+kb.Text))
	assert.Contains(t, got.Clause, "\n\nAdditional Retrieved Context (Uploaded Document):\nVendor liability is limited to fees paid.")
}

func TestOrchestratorSkipsWeakKnowledgeBaseCompanion(t *testing.T) {
	query := "Explain the vendor cap"
	embedder := newMapEmbedder(2).
		set("Stamp duty is payable on execution.", 3, 0).
		set("Vendor cap equals annual fees.", 0, 0).
		set(query, 0, 0)
	store := newTestStore(t, embedder, map[domain.Source][]domain.Chunk{
		domain.SourceKnowledgeBase: clauseChunks("Stamp duty is payable on execution."),
		domain.SourceUpload:        clauseChunks("Vendor cap equals annual fees."),
	})

	got, err := newTestOrchestrator().Retrieve(context.Background(), store, query)
	require.NoError(t, err)

	assert.False(t, got.Merged)
	assert.Equal(t, "Vendor cap equals annual fees.", got.Clause)
	assert.Equal(t, 1.0, got.Confidence)
}

func TestOrchestratorDoesNotMergeKnowledgeBaseWithItself(t *testing.T) {
	query := "confidentiality duties"
	embedder := newMapEmbedder(2).
		set("Confidentiality duties survive termination.", 0, 0).
		set("Notices must be in writing.", 0, 1).
		set(query, 0, 0)
	store := newTestStore(t, embedder, map[domain.Source][]domain.Chunk{
		domain.SourceKnowledgeBase: clauseChunks("Confidentiality duties survive termination.", "Notices must be in writing."),
	})

	got, err := newTestOrchestrator().Retrieve(context.Background(), store, query)
	require.NoError(t, err)

	assert.False(t, got.Merged)
	assert.Equal(t, "Confidentiality duties survive termination.", got.Clause)
}

func TestOrchestratorEmptyStore(t *testing.T) {
	got, err := newTestOrchestrator().Retrieve(context.Background(), NewStore(newMapEmbedder(2), StoreOptions{}), "anything")

	require.NoError(t, err)
	assert.Equal(t, domain.TierNoMatch, got.Tier)
	assert.False(t, got.HasConfidence)
}

package mcpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prangggshu/legal-chatbot/internal/core/domain"
)

type retrievalStub struct {
	result     domain.Retrieval
	candidates []domain.Candidate
	lastK      int
}

func (s *retrievalStub) Retrieve(context.Context, string) domain.Retrieval { return s.result }

func (s *retrievalStub) RetrieveCandidates(_ context.Context, _ string, k int) []domain.Candidate {
	s.lastK = k
	return s.candidates
}

func (s *retrievalStub) Stats() domain.IndexStats {
	return domain.IndexStats{Kind: "flat", Count: len(s.candidates)}
}

type askerStub struct {
	err error
}

func (s askerStub) Ask(_ context.Context, question string) (*domain.AskResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.AskResult{Question: question, Answer: "Thirty days.", ClauseReference: "Clause 7"}, nil
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestRetrieveClauseReturnsRetrievalJSON(t *testing.T) {
	stub := &retrievalStub{result: domain.Retrieval{
		Tier:          domain.TierLegalReference,
		Clause:        "Section 10: Termination requires notice.",
		Confidence:    0.95,
		HasConfidence: true,
	}}
	tools := NewTools(stub, nil)

	result, err := tools.RetrieveClause(context.Background(), callRequest(map[string]any{"query": "what does section 10 say"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var got domain.Retrieval
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &got))
	assert.Equal(t, domain.TierLegalReference, got.Tier)
	assert.Equal(t, 0.95, got.Confidence)
}

func TestRetrieveClauseRejectsBlankQuery(t *testing.T) {
	tools := NewTools(&retrievalStub{}, nil)

	result, err := tools.RetrieveClause(context.Background(), callRequest(map[string]any{"query": "  "}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestRankCandidatesClampsTopK(t *testing.T) {
	stub := &retrievalStub{candidates: []domain.Candidate{{Text: "Clause 1: Rent."}}}
	tools := NewTools(stub, nil)

	_, err := tools.RankCandidates(context.Background(), callRequest(map[string]any{"query": "rent", "top_k": 500}))
	require.NoError(t, err)
	assert.Equal(t, maxToolTopK, stub.lastK)

	_, err = tools.RankCandidates(context.Background(), callRequest(map[string]any{"query": "rent"}))
	require.NoError(t, err)
	assert.Equal(t, defaultTopK, stub.lastK)
}

func TestAskQuestionReportsErrorsAsToolErrors(t *testing.T) {
	tools := NewTools(&retrievalStub{}, askerStub{err: errors.New("llm down")})

	result, err := tools.AskQuestion(context.Background(), callRequest(map[string]any{"question": "notice period?"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestAskQuestionReturnsAnswer(t *testing.T) {
	tools := NewTools(&retrievalStub{}, askerStub{})

	result, err := tools.AskQuestion(context.Background(), callRequest(map[string]any{"question": "notice period?"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Clause 7")
}

func TestNewServerListsTools(t *testing.T) {
	s := NewServer(NewTools(&retrievalStub{}, askerStub{}))

	response := s.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(response)
	require.NoError(t, err)
	for _, name := range []string{toolRetrieve, toolCandidates, toolIndexStats, toolAsk} {
		assert.Contains(t, string(raw), `"`+name+`"`)
	}
}

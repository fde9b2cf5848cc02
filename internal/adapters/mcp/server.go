// Package mcpadapter exposes the retrieval core as MCP tools over stdio.
package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/prangggshu/legal-chatbot/internal/core/ports"
)

const (
	serverName      = "legal-retrieval"
	serverVersion   = "1.0.0"
	defaultTopK     = 5
	maxToolTopK     = 50
	toolRetrieve    = "retrieve_clause"
	toolCandidates  = "rank_candidates"
	toolAsk         = "ask_legal_question"
	toolIndexStats  = "index_stats"
	argQuery        = "query"
	argTopK         = "top_k"
	argQuestion     = "question"
	errQueryMissing = "query must be a non-empty string"
)

type Tools struct {
	retrieval ports.RetrievalService
	asker     ports.QuestionAnswerer
}

func NewTools(retrieval ports.RetrievalService, asker ports.QuestionAnswerer) *Tools {
	return &Tools{retrieval: retrieval, asker: asker}
}

// NewServer registers every tool. The ask tool is omitted when asker is nil.
func NewServer(tools *Tools) *server.MCPServer {
	s := server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(false))

	s.AddTool(mcp.NewTool(toolRetrieve,
		mcp.WithDescription("Resolve a legal question to the single best matching clause from the indexed knowledge base and uploaded documents."),
		mcp.WithString(argQuery, mcp.Required(), mcp.Description("Question or clause reference, e.g. 'what does section 10 say'.")),
	), tools.RetrieveClause)

	s.AddTool(mcp.NewTool(toolCandidates,
		mcp.WithDescription("Return ranked candidate clauses with retrieval confidence and lexical hits."),
		mcp.WithString(argQuery, mcp.Required(), mcp.Description("Free-text legal question.")),
		mcp.WithNumber(argTopK, mcp.Description("Number of candidates to return (1-50).")),
	), tools.RankCandidates)

	s.AddTool(mcp.NewTool(toolIndexStats,
		mcp.WithDescription("Report the size and composition of the clause index."),
	), tools.IndexStats)

	if tools.asker != nil {
		s.AddTool(mcp.NewTool(toolAsk,
			mcp.WithDescription("Answer a legal question grounded in the retrieved clause, with clause reference, confidence and risk assessment."),
			mcp.WithString(argQuestion, mcp.Required(), mcp.Description("The legal question to answer.")),
		), tools.AskQuestion)
	}
	return s
}

func (t *Tools) RetrieveClause(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(req.GetString(argQuery, ""))
	if query == "" {
		return mcp.NewToolResultError(errQueryMissing), nil
	}
	return jsonResult(t.retrieval.Retrieve(ctx, query))
}

func (t *Tools) RankCandidates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(req.GetString(argQuery, ""))
	if query == "" {
		return mcp.NewToolResultError(errQueryMissing), nil
	}
	topK := req.GetInt(argTopK, defaultTopK)
	if topK <= 0 {
		topK = defaultTopK
	}
	if topK > maxToolTopK {
		topK = maxToolTopK
	}
	return jsonResult(t.retrieval.RetrieveCandidates(ctx, query, topK))
}

func (t *Tools) IndexStats(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(t.retrieval.Stats())
}

func (t *Tools) AskQuestion(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question := strings.TrimSpace(req.GetString(argQuestion, ""))
	if question == "" {
		return mcp.NewToolResultError("question must be a non-empty string"), nil
	}
	result, err := t.asker.Ask(ctx, question)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("ask failed", err), nil
	}
	return jsonResult(result)
}

func jsonResult(payload any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(raw)), nil
}

package ports

import (
	"context"
	"io"

	"github.com/prangggshu/legal-chatbot/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous document processing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// DocumentAnalyzer reports risks and summaries for an uploaded document.
type DocumentAnalyzer interface {
	AnalyzeRisks(ctx context.Context, documentID string) (*domain.RiskReport, error)
	Summarize(ctx context.Context, documentID string) (*domain.DocumentSummary, error)
}

// QuestionAnswerer is the inbound contract for grounded legal question answering.
type QuestionAnswerer interface {
	Ask(ctx context.Context, question string) (*domain.AskResult, error)
}

// RetrievalService exposes the retrieval core to adapters.
type RetrievalService interface {
	Retrieve(ctx context.Context, query string) domain.Retrieval
	RetrieveCandidates(ctx context.Context, query string, k int) []domain.Candidate
	Stats() domain.IndexStats
}

// Reranker picks the single most relevant candidate, or nil when it has no opinion.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []domain.Candidate) *domain.RerankedCandidate
}

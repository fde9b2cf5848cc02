package ports

import (
	"context"
	"io"

	"github.com/prangggshu/legal-chatbot/internal/core/domain"
)

// DocumentRepository persists and reads uploaded document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveIngestStats(ctx context.Context, id string, stats domain.IngestStats) error
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes ingestion and index refresh events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
	PublishIndexUpdated(ctx context.Context, documentID string) error
	SubscribeIndexUpdated(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor extracts plain text from a stored document.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (string, error)
	Supports(filename, mimeType string) bool
}

// Embedder builds vectors for chunks and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// ChunkIndexer adds chunks to the shared retrieval index and reports how many were new.
type ChunkIndexer interface {
	Add(ctx context.Context, chunks []domain.Chunk, source domain.Source) (int, error)
}

// Chunker splits document text into clause-sized chunks.
type Chunker interface {
	Split(text string) []string
}

// RelevanceClassifier scores a (query, passage) pair with the probability of the relevant class.
type RelevanceClassifier interface {
	Relevance(ctx context.Context, query, passage string) (float64, error)
}

// ClassifierLoader loads a pairwise classifier artifact from a path.
type ClassifierLoader func(path string) (RelevanceClassifier, error)

// AnswerGenerator writes an answer grounded in one retrieved clause.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, clause, question string) (string, error)
}

// GeneralGenerator answers without local context and summarizes documents.
type GeneralGenerator interface {
	AnswerGenerator
	GenerateFallback(ctx context.Context, question string) (string, error)
	Summarize(ctx context.Context, documentText string) (string, error)
}

// RiskDetector tags clause text with a risk level.
type RiskDetector interface {
	Detect(text string) domain.RiskAssessment
}

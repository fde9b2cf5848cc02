package httpadapter

import (
	"context"
	"io"
	"time"

	"github.com/prangggshu/legal-chatbot/internal/core/domain"
)

type ingestFake struct {
	err error
}

func (f ingestFake) Upload(_ context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", io.EOF)
	}

	now := time.Now().UTC()
	return &domain.Document{
		ID:          "doc-1",
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: "doc-1_file.txt",
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

type docsFake struct {
	err error
}

func (f docsFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Document{ID: id, Filename: "lease.pdf", MimeType: "application/pdf", StoragePath: "lease.pdf", Status: domain.StatusReady}, nil
}

type askerFake struct {
	result   *domain.AskResult
	err      error
	question string
}

func (f *askerFake) Ask(_ context.Context, question string) (*domain.AskResult, error) {
	f.question = question
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type retrievalFake struct {
	candidates []domain.Candidate
	stats      domain.IndexStats
	lastK      int
}

func (f *retrievalFake) Retrieve(context.Context, string) domain.Retrieval {
	return domain.Retrieval{Tier: domain.TierNoMatch}
}

func (f *retrievalFake) RetrieveCandidates(_ context.Context, _ string, k int) []domain.Candidate {
	f.lastK = k
	return f.candidates
}

func (f *retrievalFake) Stats() domain.IndexStats { return f.stats }

type analyzerFake struct {
	err error
}

func (f analyzerFake) AnalyzeRisks(_ context.Context, id string) (*domain.RiskReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.RiskReport{
		DocumentID: id,
		Filename:   "lease.pdf",
		Summary:    domain.RiskSummary{TotalChunks: 3, RiskSections: 1, HighRisk: 1},
		Sections:   []domain.RiskSection{{Index: 2, Level: domain.RiskHigh, Reason: "penalty", Text: "a penalty applies"}},
	}, nil
}

func (f analyzerFake) Summarize(_ context.Context, id string) (*domain.DocumentSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.DocumentSummary{DocumentID: id, Filename: "lease.pdf", Summary: "A lease."}, nil
}

package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prangggshu/legal-chatbot/internal/core/domain"
)

func TestAnalyzeRisksReportsHighAndMediumSections(t *testing.T) {
	repo := &documentRepoFake{doc: &domain.Document{ID: "doc-1", Filename: "lease.pdf"}}
	chunker := &chunkerFake{chunks: []string{
		"The landlord may terminate the lease at will.",
		"Governing law is the law of Delhi.",
		"A penalty of 2% applies to late rent.",
	}}
	uc := NewAnalyzeDocumentUseCase(repo, &extractorFake{text: "lease text"}, chunker, keywordRiskFake{}, nil)

	report, err := uc.AnalyzeRisks(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("AnalyzeRisks() error = %v", err)
	}
	if report.DocumentID != "doc-1" || report.Filename != "lease.pdf" {
		t.Fatalf("unexpected report header %+v", report)
	}
	want := domain.RiskSummary{TotalChunks: 3, RiskSections: 2, HighRisk: 1, MediumRisk: 1}
	if report.Summary != want {
		t.Fatalf("unexpected summary %+v", report.Summary)
	}
	if report.Sections[0].Index != 1 || report.Sections[1].Index != 3 {
		t.Fatalf("sections should carry 1-based chunk positions, got %+v", report.Sections)
	}
}

func TestAnalyzeRisksWithNoFindings(t *testing.T) {
	repo := &documentRepoFake{doc: &domain.Document{ID: "doc-1"}}
	uc := NewAnalyzeDocumentUseCase(repo, &extractorFake{text: "x"}, &chunkerFake{chunks: []string{"Payment is monthly."}}, keywordRiskFake{}, nil)

	report, err := uc.AnalyzeRisks(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("AnalyzeRisks() error = %v", err)
	}
	if report.Sections == nil || len(report.Sections) != 0 {
		t.Fatalf("expected empty, non-nil sections, got %#v", report.Sections)
	}
}

func TestAnalyzeRisksUnknownDocument(t *testing.T) {
	uc := NewAnalyzeDocumentUseCase(&documentRepoFake{}, &extractorFake{}, &chunkerFake{}, keywordRiskFake{}, nil)

	_, err := uc.AnalyzeRisks(context.Background(), "missing")
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSummarizeUsesExtractedText(t *testing.T) {
	repo := &documentRepoFake{doc: &domain.Document{ID: "doc-1", Filename: "nda.pdf"}}
	gen := &generatorFake{summary: "An NDA between two parties."}
	uc := NewAnalyzeDocumentUseCase(repo, &extractorFake{text: "full nda text"}, &chunkerFake{}, keywordRiskFake{}, gen)

	summary, err := uc.Summarize(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if summary.Filename != "nda.pdf" || !strings.Contains(summary.Summary, "(full nda text)") {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestSummarizeWithoutGenerator(t *testing.T) {
	repo := &documentRepoFake{doc: &domain.Document{ID: "doc-1"}}
	uc := NewAnalyzeDocumentUseCase(repo, &extractorFake{text: "x"}, &chunkerFake{}, keywordRiskFake{}, nil)

	_, err := uc.Summarize(context.Background(), "doc-1")
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
}

func TestSummarizeEmptyDocument(t *testing.T) {
	repo := &documentRepoFake{doc: &domain.Document{ID: "doc-1"}}
	uc := NewAnalyzeDocumentUseCase(repo, &extractorFake{text: ""}, &chunkerFake{}, keywordRiskFake{}, &generatorFake{})

	_, err := uc.Summarize(context.Background(), "doc-1")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

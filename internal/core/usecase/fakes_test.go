package usecase

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/prangggshu/legal-chatbot/internal/core/domain"
)

type statusCall struct {
	status domain.DocumentStatus
	errMsg string
}

type documentRepoFake struct {
	doc         *domain.Document
	created     *domain.Document
	createErr   error
	getErr      error
	statsErr    error
	statusErr   error
	stats       domain.IngestStats
	statsID     string
	statusCalls []statusCall
}

func (f *documentRepoFake) Create(_ context.Context, doc *domain.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	copyDoc := *doc
	f.created = &copyDoc
	return nil
}

func (f *documentRepoFake) GetByID(context.Context, string) (*domain.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.doc == nil {
		return nil, domain.ErrDocumentNotFound
	}
	copyDoc := *f.doc
	return &copyDoc, nil
}

func (f *documentRepoFake) UpdateStatus(_ context.Context, _ string, status domain.DocumentStatus, errMessage string) error {
	f.statusCalls = append(f.statusCalls, statusCall{status: status, errMsg: errMessage})
	if status != domain.StatusFailed && f.statusErr != nil {
		return f.statusErr
	}
	return nil
}

func (f *documentRepoFake) SaveIngestStats(_ context.Context, id string, stats domain.IngestStats) error {
	if f.statsErr != nil {
		return f.statsErr
	}
	f.statsID = id
	f.stats = stats
	return nil
}

type queueFake struct {
	ingested   string
	updated    []string
	publishErr error
}

func (f *queueFake) PublishDocumentIngested(_ context.Context, documentID string) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.ingested = documentID
	return nil
}

func (f *queueFake) SubscribeDocumentIngested(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}

func (f *queueFake) PublishIndexUpdated(_ context.Context, documentID string) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.updated = append(f.updated, documentID)
	return nil
}

func (f *queueFake) SubscribeIndexUpdated(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}

type extractorFake struct {
	text string
	err  error
}

func (f *extractorFake) Extract(context.Context, *domain.Document) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *extractorFake) Supports(filename, _ string) bool {
	return !strings.HasSuffix(filename, ".png")
}

type chunkerFake struct {
	chunks []string
}

func (f *chunkerFake) Split(string) []string { return f.chunks }

type keywordRiskFake struct{}

func (keywordRiskFake) Detect(text string) domain.RiskAssessment {
	lower := strings.ToLower(text)
	switch {
	case strings.TrimSpace(text) == "":
		return domain.RiskAssessment{Level: domain.RiskUnknown, Reason: "empty"}
	case strings.Contains(lower, "terminate"):
		return domain.RiskAssessment{Level: domain.RiskHigh, Reason: "termination"}
	case strings.Contains(lower, "penalty"):
		return domain.RiskAssessment{Level: domain.RiskMedium, Reason: "penalty"}
	default:
		return domain.RiskAssessment{Level: domain.RiskLow, Reason: "low"}
	}
}

type storageFake struct {
	savedKey  string
	savedBody string
	err       error
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.savedKey = key
	f.savedBody = string(raw)
	return nil
}

func (f *storageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(f.savedBody)), nil
}

type generatorFake struct {
	answer      string
	fallback    string
	summary     string
	err         error
	fallbackErr error
	answerCalls int
	lastClause  string
}

func (f *generatorFake) GenerateAnswer(_ context.Context, clause, _ string) (string, error) {
	f.answerCalls++
	f.lastClause = clause
	return f.answer, f.err
}

func (f *generatorFake) GenerateFallback(context.Context, string) (string, error) {
	return f.fallback, f.fallbackErr
}

func (f *generatorFake) Summarize(_ context.Context, text string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.summary + " (" + text + ")", nil
}

package cloud

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/prangggshu/legal-chatbot/internal/infrastructure/resilience"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultModel   = "gemini-2.5-flash"

	maxSummaryRunes = 120000
)

var errEmptyCompletion = errors.New("cloud completion returned no choices")

type Options struct {
	BaseURL  string
	APIKey   string
	Model    string
	Executor *resilience.Executor
}

// Generator talks to any OpenAI-compatible chat completion endpoint.
type Generator struct {
	client   *openai.Client
	model    string
	executor *resilience.Executor
}

func New(opts Options) *Generator {
	cfg := openai.DefaultConfig(opts.APIKey)
	cfg.BaseURL = strings.TrimRight(firstNonEmpty(opts.BaseURL, DefaultBaseURL), "/")
	return &Generator{
		client:   openai.NewClientWithConfig(cfg),
		model:    firstNonEmpty(opts.Model, DefaultModel),
		executor: opts.Executor,
	}
}

func (g *Generator) GenerateAnswer(ctx context.Context, clause, question string) (string, error) {
	return g.complete(ctx, "answer", buildAnswerPrompt(clause, question))
}

// GenerateFallback answers from general legal knowledge when nothing was retrieved.
func (g *Generator) GenerateFallback(ctx context.Context, question string) (string, error) {
	return g.complete(ctx, "fallback", buildFallbackPrompt(question))
}

func (g *Generator) Summarize(ctx context.Context, documentText string) (string, error) {
	runes := []rune(documentText)
	if len(runes) > maxSummaryRunes {
		documentText = string(runes[:maxSummaryRunes])
	}
	return g.complete(ctx, "summary", buildSummaryPrompt(documentText))
}

func (g *Generator) complete(ctx context.Context, operation, prompt string) (string, error) {
	var answer string
	call := func(ctx context.Context) error {
		resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: g.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		})
		if err != nil {
			return fmt.Errorf("cloud %s request: %w", operation, err)
		}
		if len(resp.Choices) == 0 {
			return errEmptyCompletion
		}
		answer = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	}

	var err error
	if g.executor == nil {
		err = call(ctx)
	} else {
		err = g.executor.Execute(ctx, "cloud."+operation, call, classifyCloudError)
	}
	if err != nil {
		return "", resilience.WrapTemporary("cloud "+operation, err, classifyCloudError)
	}
	return answer, nil
}

func classifyCloudError(err error) resilience.ErrorClassification {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return resilience.ClassifyHTTPError(&resilience.HTTPStatusError{StatusCode: apiErr.HTTPStatusCode})
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return resilience.ClassifyHTTPError(&resilience.HTTPStatusError{StatusCode: reqErr.HTTPStatusCode})
	}
	return resilience.ClassifyHTTPError(err)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

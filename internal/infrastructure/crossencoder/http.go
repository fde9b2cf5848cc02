package crossencoder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prangggshu/legal-chatbot/internal/infrastructure/resilience"
)

const serviceName = "crossencoder"

type scoreRequest struct {
	Query     string `json:"query"`
	Passage   string `json:"passage"`
	MaxTokens int    `json:"max_tokens"`
}

type scoreResponse struct {
	Logits [2]float64 `json:"logits"`
}

// httpClassifier posts each pair to a remote cross-encoder service that
// returns two-class logits.
type httpClassifier struct {
	endpoint      string
	maxTokens     int
	relevantLabel int
	client        *http.Client
	executor      *resilience.Executor
}

func newHTTPClassifier(m Manifest, client *http.Client, executor *resilience.Executor) *httpClassifier {
	if client == nil {
		timeout := 10 * time.Second
		if m.TimeoutMS > 0 {
			timeout = time.Duration(m.TimeoutMS) * time.Millisecond
		}
		client = &http.Client{Timeout: timeout}
	}
	return &httpClassifier{
		endpoint:      m.Endpoint,
		maxTokens:     m.MaxTokens,
		relevantLabel: m.relevantLabel(),
		client:        client,
		executor:      executor,
	}
}

func (c *httpClassifier) Relevance(ctx context.Context, query, passage string) (float64, error) {
	body, err := json.Marshal(scoreRequest{Query: query, Passage: passage, MaxTokens: c.maxTokens})
	if err != nil {
		return 0, fmt.Errorf("marshal score request: %w", err)
	}

	var out scoreResponse
	call := func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("build score request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("score request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			return resilience.NewHTTPStatusError(serviceName, "score", resp)
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return fmt.Errorf("decode score response: %w", err)
		}
		return nil
	}

	if c.executor == nil {
		err = call(ctx)
	} else {
		err = c.executor.Execute(ctx, serviceName+".score", call, resilience.ClassifyHTTPError)
	}
	if err != nil {
		return 0, resilience.WrapTemporary(serviceName+" score", err, resilience.ClassifyHTTPError)
	}
	return softmax2(out.Logits)[c.relevantLabel], nil
}

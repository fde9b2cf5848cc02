package crossencoder

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/prangggshu/legal-chatbot/internal/core/domain"
)

const (
	ManifestFile = "reranker.json"

	RuntimeLinear = "linear"
	RuntimeHTTP   = "http"

	defaultMaxTokens     = 256
	defaultBuckets       = 1 << 18
	defaultWeightsFile   = "weights.json"
	defaultRelevantLabel = 1
	specialTokenSlots    = 3
)

// Manifest describes a reranker artifact directory.
type Manifest struct {
	Runtime       string `json:"runtime"`
	MaxTokens     int    `json:"max_tokens"`
	RelevantLabel *int   `json:"relevant_label"`

	// linear runtime
	Buckets int    `json:"buckets,omitempty"`
	Weights string `json:"weights,omitempty"`

	// http runtime
	Endpoint  string `json:"endpoint,omitempty"`
	TimeoutMS int    `json:"timeout_ms,omitempty"`
}

func readManifest(path string) (Manifest, string, error) {
	if strings.TrimSpace(path) == "" {
		return Manifest{}, "", domain.WrapError(domain.ErrInvalidInput, "read reranker manifest", errors.New("empty artifact path"))
	}
	manifestPath := path
	info, err := os.Stat(path)
	if err != nil {
		return Manifest{}, "", fmt.Errorf("stat reranker artifact: %w", err)
	}
	if info.IsDir() {
		manifestPath = filepath.Join(path, ManifestFile)
	}

	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return Manifest{}, "", fmt.Errorf("read reranker manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return Manifest{}, "", domain.WrapError(domain.ErrInvalidInput, "decode reranker manifest", err)
	}
	m = m.withDefaults()
	if err := m.validate(); err != nil {
		return Manifest{}, "", domain.WrapError(domain.ErrInvalidInput, "validate reranker manifest", err)
	}
	return m, filepath.Dir(manifestPath), nil
}

func (m Manifest) withDefaults() Manifest {
	m.Runtime = strings.ToLower(strings.TrimSpace(m.Runtime))
	if m.MaxTokens == 0 {
		m.MaxTokens = defaultMaxTokens
	}
	if m.Buckets == 0 {
		m.Buckets = defaultBuckets
	}
	if m.Weights == "" {
		m.Weights = defaultWeightsFile
	}
	if m.RelevantLabel == nil {
		label := defaultRelevantLabel
		m.RelevantLabel = &label
	}
	return m
}

func (m Manifest) validate() error {
	if m.MaxTokens <= specialTokenSlots {
		return fmt.Errorf("max_tokens must exceed %d, got %d", specialTokenSlots, m.MaxTokens)
	}
	if label := m.relevantLabel(); label != 0 && label != 1 {
		return fmt.Errorf("relevant_label must be 0 or 1, got %d", label)
	}
	switch m.Runtime {
	case RuntimeLinear:
		if m.Buckets < 0 {
			return fmt.Errorf("buckets must be positive, got %d", m.Buckets)
		}
	case RuntimeHTTP:
		if strings.TrimSpace(m.Endpoint) == "" {
			return errors.New("http runtime requires an endpoint")
		}
	default:
		return fmt.Errorf("unknown runtime %q", m.Runtime)
	}
	return nil
}

// relevantLabel is the class index whose probability means "relevant".
func (m Manifest) relevantLabel() int {
	if m.RelevantLabel == nil {
		return defaultRelevantLabel
	}
	return *m.RelevantLabel
}

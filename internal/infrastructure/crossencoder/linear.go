package crossencoder

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/prangggshu/legal-chatbot/internal/core/domain"
)

type linearWeights struct {
	Bias     [2]float64            `json:"bias"`
	Features map[string][2]float64 `json:"features"`
}

// linearClassifier is a pairwise logistic model over hashed query/passage
// interaction features.
type linearClassifier struct {
	maxTokens     int
	relevantLabel int
	buckets       uint32
	bias          [2]float64
	weights       map[uint32][2]float64
}

func loadLinear(m Manifest, dir string) (*linearClassifier, error) {
	path := m.Weights
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reranker weights: %w", err)
	}
	var w linearWeights
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "decode reranker weights", err)
	}

	weights := make(map[uint32][2]float64, len(w.Features))
	for key, value := range w.Features {
		bucket, err := strconv.ParseUint(key, 10, 32)
		if err != nil || bucket >= uint64(m.Buckets) {
			return nil, domain.WrapError(domain.ErrInvalidInput, "decode reranker weights", fmt.Errorf("bad feature bucket %q", key))
		}
		weights[uint32(bucket)] = value
	}
	return &linearClassifier{
		maxTokens:     m.MaxTokens,
		relevantLabel: m.relevantLabel(),
		buckets:       uint32(m.Buckets),
		bias:          w.Bias,
		weights:       weights,
	}, nil
}

func (c *linearClassifier) Relevance(ctx context.Context, query, passage string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	q, p := truncatePair(tokenize(query), tokenize(passage), c.maxTokens)

	logits := c.bias
	for _, feature := range pairFeatures(q, p) {
		w, ok := c.weights[featureBucket(feature, c.buckets)]
		if !ok {
			continue
		}
		logits[0] += w[0]
		logits[1] += w[1]
	}
	return softmax2(logits)[c.relevantLabel], nil
}

// pairFeatures emits one "m|tok" feature per shared token and one "x|q|p"
// feature per distinct cross pair.
func pairFeatures(query, passage []string) []string {
	inPassage := make(map[string]struct{}, len(passage))
	for _, tok := range passage {
		inPassage[tok] = struct{}{}
	}

	seen := make(map[string]struct{})
	features := make([]string, 0, len(query)*2)
	add := func(f string) {
		if _, ok := seen[f]; ok {
			return
		}
		seen[f] = struct{}{}
		features = append(features, f)
	}
	for _, qt := range query {
		if _, ok := inPassage[qt]; ok {
			add("m|" + qt)
		}
		for pt := range inPassage {
			add("x|" + qt + "|" + pt)
		}
	}
	return features
}

func featureBucket(feature string, buckets uint32) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(feature))
	return h.Sum32() % buckets
}

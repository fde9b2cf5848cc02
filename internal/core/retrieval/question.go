package retrieval

import (
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/prangggshu/legal-chatbot/internal/core/domain"
)

var (
	nonAlnumPattern   = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// NormalizeQuestion lowercases, strips punctuation and collapses whitespace.
func NormalizeQuestion(value string) string {
	lowered := strings.ToLower(strings.TrimSpace(value))
	lowered = nonAlnumPattern.ReplaceAllString(lowered, " ")
	lowered = whitespacePattern.ReplaceAllString(lowered, " ")
	return strings.TrimSpace(lowered)
}

// SimilarityRatio is the character sequence similarity of a and b in [0, 1].
func SimilarityRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	m := difflib.NewMatcher(splitChars(a), splitChars(b))
	return m.Ratio()
}

func splitChars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// QuestionMatcher finds curated question/answer chunks whose question equals,
// or nearly equals, the user's question.
type QuestionMatcher struct {
	minRatio   float64
	confidence float64
}

func NewQuestionMatcher(minRatio, confidence float64) *QuestionMatcher {
	return &QuestionMatcher{minRatio: minRatio, confidence: confidence}
}

func (m *QuestionMatcher) FindMatch(query string, chunks []domain.Chunk) (domain.Candidate, bool) {
	normalized := NormalizeQuestion(query)
	if normalized == "" {
		return domain.Candidate{}, false
	}

	bestPos := -1
	bestRatio := 0.0
	for pos, chunk := range chunks {
		if chunk.Kind != domain.KindQA || chunk.Question == "" {
			continue
		}
		stored := NormalizeQuestion(chunk.Question)
		if stored == normalized {
			return m.candidate(chunk, pos), true
		}
		if ratio := SimilarityRatio(normalized, stored); ratio > bestRatio {
			bestRatio = ratio
			bestPos = pos
		}
	}
	if bestPos < 0 || bestRatio < m.minRatio {
		return domain.Candidate{}, false
	}
	return m.candidate(chunks[bestPos], bestPos), true
}

func (m *QuestionMatcher) candidate(chunk domain.Chunk, pos int) domain.Candidate {
	c := candidateFromChunk(chunk, pos)
	c.Confidence = m.confidence
	c.CombinedScore = m.confidence
	return c
}

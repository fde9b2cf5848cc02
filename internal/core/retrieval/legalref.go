package retrieval

import (
	"regexp"
	"strings"

	"github.com/prangggshu/legal-chatbot/internal/core/domain"
)

var (
	sectionRefPattern = regexp.MustCompile(`(section|clause|article)\s+([0-9a-z.]+)`)
	actNamePattern    = regexp.MustCompile(`\b(?:of|in|from)\s+(?:the\s+)?([\w\s,&.()-]+?)(?:\?|$)`)
)

// LegalReference is an explicit citation parsed out of a question.
type LegalReference struct {
	Section string
	Act     string
}

// ExtractReference parses "Section|Clause|Article <id> [of|in|from [the] <act>]".
// Section is empty when the query cites nothing; Act is empty when no act follows.
func ExtractReference(query string) LegalReference {
	normalized := strings.ToLower(strings.TrimSpace(query))
	m := sectionRefPattern.FindStringSubmatch(normalized)
	if m == nil {
		return LegalReference{}
	}
	ref := LegalReference{Section: strings.ToUpper(m[1][:1]) + m[1][1:] + " " + m[2]}

	if act := actNamePattern.FindStringSubmatch(normalized); act != nil {
		name := strings.TrimRight(strings.TrimSpace(act[1]), ".,?")
		name = strings.ReplaceAll(name, " act", "")
		name = strings.ReplaceAll(name, " law", "")
		ref.Act = strings.TrimSpace(name)
	}
	return ref
}

// Matches reports whether text cites the reference.
func (r LegalReference) Matches(text string) bool {
	if r.Section == "" {
		return false
	}
	lowered := strings.ToLower(text)
	if !strings.Contains(lowered, strings.ToLower(r.Section)) {
		return false
	}
	if r.Act == "" {
		return true
	}
	act := strings.ToLower(r.Act)
	prefix := act
	if len(prefix) > 5 {
		prefix = prefix[:5]
	}
	return strings.Contains(lowered, act) ||
		strings.Contains(lowered, strings.ReplaceAll(act, " ", "")) ||
		strings.Contains(lowered, prefix)
}

// LegalReferenceMatcher returns the first stored chunk citing the question's reference.
type LegalReferenceMatcher struct {
	confidence float64
}

func NewLegalReferenceMatcher(confidence float64) *LegalReferenceMatcher {
	return &LegalReferenceMatcher{confidence: confidence}
}

func (m *LegalReferenceMatcher) FindMatch(query string, chunks []domain.Chunk) (domain.Candidate, bool) {
	ref := ExtractReference(query)
	if ref.Section == "" {
		return domain.Candidate{}, false
	}
	for pos, chunk := range chunks {
		if !ref.Matches(chunk.Text) {
			continue
		}
		c := candidateFromChunk(chunk, pos)
		c.Confidence = m.confidence
		c.CombinedScore = m.confidence
		return c, true
	}
	return domain.Candidate{}, false
}

func candidateFromChunk(chunk domain.Chunk, pos int) domain.Candidate {
	return domain.Candidate{
		Text:     chunk.Text,
		Body:     chunk.Body,
		Question: chunk.Question,
		Kind:     chunk.Kind,
		Source:   chunk.Source,
		Position: pos,
	}
}

package retrieval

import (
	"regexp"
	"strings"

	"github.com/prangggshu/legal-chatbot/internal/core/domain"
)

var (
	wrappedQuestionPattern = regexp.MustCompile(`(?i)Question:\s*(.+?)(?:\n|$)`)
	wrappedClausePattern   = regexp.MustCompile(`(?is)(?:^|\n)Clause:\s*(.*)$`)
	sectionLabelPattern    = regexp.MustCompile(`(?i)\b(Section|Clause)\s+\d+[A-Za-z]*\b`)
	chapterLabelPattern    = regexp.MustCompile(`(?i)\bChapter\s+[IVXLC0-9]+\b`)
)

// ClauseReference labels retrieved text with the citation it carries,
// preferring the question line of a curated pair.
func ClauseReference(text string) string {
	if strings.TrimSpace(text) == "" {
		return domain.ClauseReferenceNotFound
	}
	if m := wrappedQuestionPattern.FindStringSubmatch(text); m != nil {
		if label := sectionLabelPattern.FindString(m[1]); label != "" {
			return titleCase(label)
		}
	}
	if label := sectionLabelPattern.FindString(text); label != "" {
		return titleCase(label)
	}
	if label := chapterLabelPattern.FindString(text); label != "" {
		return titleCase(label)
	}
	return domain.ClauseReferenceNotFound
}

// UnwrapClause returns the clause portion of a "Question: ...\nClause: ..."
// string, or the trimmed text when it is not wrapped.
func UnwrapClause(text string) string {
	if m := wrappedClausePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

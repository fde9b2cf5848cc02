package retrieval

import (
	"regexp"
	"sort"
	"strings"
)

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// QueryTerms is the keyword and expansion set derived from one query.
type QueryTerms struct {
	Terms      []string
	Expansions []string
}

func (q QueryTerms) Empty() bool {
	return len(q.Terms) == 0 && len(q.Expansions) == 0
}

// Hits counts terms and expansion phrases occurring in text, case-insensitively.
func (q QueryTerms) Hits(text string) (keywordHits, phraseHits int) {
	lowered := strings.ToLower(text)
	for _, term := range q.Terms {
		if strings.Contains(lowered, term) {
			keywordHits++
		}
	}
	for _, phrase := range q.Expansions {
		if strings.Contains(lowered, phrase) {
			phraseHits++
		}
	}
	return keywordHits, phraseHits
}

type spellingFix struct {
	pattern     *regexp.Regexp
	replacement string
}

type phraseRule struct {
	trigger    string
	expansions []string
}

// LexicalExtractor turns raw queries into QueryTerms. It is immutable after
// construction and safe for concurrent use.
type LexicalExtractor struct {
	stopWords     map[string]struct{}
	fixes         []spellingFix
	phrases       []phraseRule
	tokenTriggers map[string]string
	synonyms      map[string][]string
}

func NewLexicalExtractor(lex Lexicon) *LexicalExtractor {
	e := &LexicalExtractor{
		stopWords:     make(map[string]struct{}, len(lex.StopWords)),
		tokenTriggers: make(map[string]string, len(lex.TokenTriggers)),
		synonyms:      make(map[string][]string, len(lex.Synonyms)),
	}
	for _, word := range lex.StopWords {
		e.stopWords[strings.ToLower(strings.TrimSpace(word))] = struct{}{}
	}

	typos := make([]string, 0, len(lex.SpellingCorrections))
	for typo := range lex.SpellingCorrections {
		typos = append(typos, typo)
	}
	sort.Strings(typos)
	for _, typo := range typos {
		e.fixes = append(e.fixes, spellingFix{
			pattern:     regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToLower(typo)) + `\b`),
			replacement: strings.ToLower(lex.SpellingCorrections[typo]),
		})
	}

	triggers := make([]string, 0, len(lex.PhraseExpansions))
	for trigger := range lex.PhraseExpansions {
		triggers = append(triggers, trigger)
	}
	sort.Strings(triggers)
	for _, trigger := range triggers {
		e.phrases = append(e.phrases, phraseRule{
			trigger:    strings.ToLower(trigger),
			expansions: lowerAll(lex.PhraseExpansions[trigger]),
		})
	}

	for token, trigger := range lex.TokenTriggers {
		e.tokenTriggers[strings.ToLower(token)] = strings.ToLower(trigger)
	}
	for term, synonyms := range lex.Synonyms {
		e.synonyms[strings.ToLower(term)] = lowerAll(synonyms)
	}
	return e
}

// Correct lowercases the query and applies whole-word spelling fixes.
func (e *LexicalExtractor) Correct(query string) string {
	corrected := strings.ToLower(strings.TrimSpace(query))
	for _, fix := range e.fixes {
		corrected = fix.pattern.ReplaceAllString(corrected, fix.replacement)
	}
	return corrected
}

func (e *LexicalExtractor) Extract(query string) QueryTerms {
	normalized := e.Correct(query)
	tokens := tokenPattern.FindAllString(normalized, -1)

	var out QueryTerms
	seenTerms := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		if len(token) <= 2 {
			continue
		}
		if _, stop := e.stopWords[token]; stop {
			continue
		}
		if _, dup := seenTerms[token]; dup {
			continue
		}
		seenTerms[token] = struct{}{}
		out.Terms = append(out.Terms, token)
	}

	seenPhrases := make(map[string]struct{})
	addExpansions := func(values []string) {
		for _, value := range values {
			if _, dup := seenPhrases[value]; dup {
				continue
			}
			seenPhrases[value] = struct{}{}
			out.Expansions = append(out.Expansions, value)
		}
	}

	fired := make(map[string]struct{})
	for _, rule := range e.phrases {
		if strings.Contains(normalized, rule.trigger) {
			fired[rule.trigger] = struct{}{}
			addExpansions(rule.expansions)
		}
	}
	for _, token := range tokens {
		trigger, ok := e.tokenTriggers[token]
		if !ok {
			continue
		}
		if _, already := fired[trigger]; already {
			continue
		}
		for _, rule := range e.phrases {
			if rule.trigger == trigger {
				fired[trigger] = struct{}{}
				addExpansions(rule.expansions)
			}
		}
	}

	for _, term := range out.Terms {
		addExpansions(e.synonyms[term])
	}
	return out
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

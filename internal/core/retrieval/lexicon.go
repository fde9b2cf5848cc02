package retrieval

// Lexicon holds the vocabulary tables used to expand a query.
type Lexicon struct {
	StopWords           []string            `yaml:"stop_words"`
	SpellingCorrections map[string]string   `yaml:"spelling_corrections"`
	PhraseExpansions    map[string][]string `yaml:"phrase_expansions"`
	TokenTriggers       map[string]string   `yaml:"token_triggers"`
	Synonyms            map[string][]string `yaml:"synonyms"`
}

var itLawVocabulary = []string{
	"information technology",
	"information technology act",
	"cyber",
	"electronic record",
	"digital signature",
	"computer",
}

var liabilityVocabulary = []string{"liable", "responsible", "accountability", "obligation"}

func DefaultLexicon() Lexicon {
	return Lexicon{
		StopWords: []string{
			"the", "a", "an", "and", "or", "to", "of", "in", "on", "for", "by", "with", "is", "are", "was", "were",
			"what", "which", "who", "whom", "when", "where", "why", "how", "does", "do", "did", "about", "under", "law",
		},
		SpellingCorrections: map[string]string{
			"liabl":    "liable",
			"breatch":  "breach",
			"termiate": "terminate",
			"pennalty": "penalty",
		},
		PhraseExpansions: map[string][]string{
			"it law":        itLawVocabulary,
			"liability cap": {"limitation of liability", "liability limit", "cap on damages"},
			"force majeure": {"act of god", "unforeseen circumstances"},
		},
		TokenTriggers: map[string]string{
			"it": "it law",
		},
		Synonyms: map[string][]string{
			"liability":      liabilityVocabulary,
			"responsibility": append([]string{"liability"}, liabilityVocabulary...),
			"responsible":    {"liability", "liable", "accountability"},
			"indemnity":      {"indemnification", "indemnify", "indemnification clause"},
			"breach":         {"violation", "non-compliance", "default", "infringement"},
			"termination":    {"terminate", "ending", "cancellation", "cessation"},
			"confidential":   {"confidentiality", "secret", "proprietary", "non-disclosure"},
			"clause":         {"section", "article", "provision", "condition", "term"},
			"penalty":        {"penality", "fine", "damages", "liquidated damages"},
			"jurisdiction":   {"jurisdiction", "governing law", "applicable law"},
		},
	}
}

// Merge overlays non-empty tables from other onto l.
func (l Lexicon) Merge(other Lexicon) Lexicon {
	out := l
	if len(other.StopWords) > 0 {
		out.StopWords = other.StopWords
	}
	out.SpellingCorrections = mergeStringMap(l.SpellingCorrections, other.SpellingCorrections)
	out.TokenTriggers = mergeStringMap(l.TokenTriggers, other.TokenTriggers)
	out.PhraseExpansions = mergeListMap(l.PhraseExpansions, other.PhraseExpansions)
	out.Synonyms = mergeListMap(l.Synonyms, other.Synonyms)
	return out
}

func mergeStringMap(base, overlay map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}

func mergeListMap(base, overlay map[string][]string) map[string][]string {
	out := make(map[string][]string, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}

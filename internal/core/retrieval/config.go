package retrieval

type Config struct {
	MaxCandidates int

	StrictThreshold        float64
	LenientThreshold       float64
	KnowledgeBaseThreshold float64

	FuzzyQuestionRatio      float64
	LegalRefConfidence      float64
	ExactQuestionConfidence float64
}

func DefaultConfig() Config {
	return Config{
		MaxCandidates: 50,

		StrictThreshold:        0.30,
		LenientThreshold:       0.25,
		KnowledgeBaseThreshold: 0.25,

		FuzzyQuestionRatio:      0.85,
		LegalRefConfidence:      0.95,
		ExactQuestionConfidence: 0.99,
	}
}

func (c Config) normalize() Config {
	out := c
	def := DefaultConfig()

	if out.MaxCandidates <= 0 {
		out.MaxCandidates = def.MaxCandidates
	}
	if out.StrictThreshold <= 0 || out.StrictThreshold > 1 {
		out.StrictThreshold = def.StrictThreshold
	}
	if out.LenientThreshold <= 0 || out.LenientThreshold > 1 {
		out.LenientThreshold = def.LenientThreshold
	}
	if out.KnowledgeBaseThreshold <= 0 || out.KnowledgeBaseThreshold > 1 {
		out.KnowledgeBaseThreshold = def.KnowledgeBaseThreshold
	}
	if out.FuzzyQuestionRatio <= 0 || out.FuzzyQuestionRatio > 1 {
		out.FuzzyQuestionRatio = def.FuzzyQuestionRatio
	}
	if out.LegalRefConfidence <= 0 || out.LegalRefConfidence > 1 {
		out.LegalRefConfidence = def.LegalRefConfidence
	}
	if out.ExactQuestionConfidence <= 0 || out.ExactQuestionConfidence > 1 {
		out.ExactQuestionConfidence = def.ExactQuestionConfidence
	}
	return out
}

package risk

import (
	"strings"

	"github.com/prangggshu/legal-chatbot/internal/core/domain"
)

type rule struct {
	keywords []string
	level    domain.RiskLevel
	reason   string
}

// rules are checked in order; the first rule with a matching keyword wins.
var rules = []rule{
	{
		keywords: []string{"without notice", "terminate"},
		level:    domain.RiskHigh,
		reason:   "Employer can terminate without prior notice",
	},
	{
		keywords: []string{"penalty", "liquidated damages"},
		level:    domain.RiskMedium,
		reason:   "Financial penalty imposed",
	},
	{
		keywords: []string{"jurisdiction", "governing law"},
		level:    domain.RiskLow,
		reason:   "Standard legal clause",
	},
}

// KeywordDetector tags clause text by keyword rules.
type KeywordDetector struct{}

func NewKeywordDetector() KeywordDetector {
	return KeywordDetector{}
}

func (KeywordDetector) Detect(text string) domain.RiskAssessment {
	if strings.TrimSpace(text) == "" {
		return domain.RiskAssessment{Level: domain.RiskUnknown, Reason: "No clause available for risk analysis"}
	}
	lowered := strings.ToLower(text)
	for _, r := range rules {
		for _, keyword := range r.keywords {
			if strings.Contains(lowered, keyword) {
				return domain.RiskAssessment{Level: r.level, Reason: r.reason}
			}
		}
	}
	return domain.RiskAssessment{Level: domain.RiskLow, Reason: "No significant legal risk detected"}
}

package crossencoder

import (
	"math"
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

func tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// truncatePair trims the longer side one token at a time until the pair plus
// the special-token slots fits in maxTokens. Ties trim the passage.
func truncatePair(query, passage []string, maxTokens int) ([]string, []string) {
	budget := maxTokens - specialTokenSlots
	if budget < 0 {
		budget = 0
	}
	q, p := len(query), len(passage)
	for q+p > budget {
		if q > p {
			q--
		} else {
			p--
		}
	}
	return query[:q], passage[:p]
}

func softmax2(logits [2]float64) [2]float64 {
	maxLogit := math.Max(logits[0], logits[1])
	e0 := math.Exp(logits[0] - maxLogit)
	e1 := math.Exp(logits[1] - maxLogit)
	sum := e0 + e1
	return [2]float64{e0 / sum, e1 / sum}
}

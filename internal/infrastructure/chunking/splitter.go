package chunking

import "strings"

// Splitter cuts text into overlapping word windows.
type Splitter struct {
	WindowWords int
	StepWords   int
	MinWords    int
}

func NewSplitter(windowWords, stepWords, minWords int) *Splitter {
	if windowWords <= 0 {
		windowWords = 150
	}
	if stepWords <= 0 || stepWords > windowWords {
		stepWords = windowWords / 2
	}
	if minWords < 0 {
		minWords = 0
	}
	return &Splitter{
		WindowWords: windowWords,
		StepWords:   stepWords,
		MinWords:    minWords,
	}
}

// Split returns every window of at least MinWords words. Text shorter than
// MinWords comes back whole.
func (s *Splitter) Split(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if len(words) < s.MinWords {
		return []string{strings.Join(words, " ")}
	}

	out := make([]string, 0, len(words)/s.StepWords+1)
	for start := 0; start < len(words); start += s.StepWords {
		end := start + s.WindowWords
		if end > len(words) {
			end = len(words)
		}
		if end-start >= s.MinWords {
			out = append(out, strings.Join(words[start:end], " "))
		}
	}
	return out
}

package chunking

import (
	"regexp"
	"strings"
)

var (
	whitespacePattern    = regexp.MustCompile(`\s+`)
	articleHeaderPattern = regexp.MustCompile(`(?i)(?:ARTICLE|SECTION)[\s—-]*[IVX0-9]+`)
	clauseNumberPattern  = regexp.MustCompile(`\d+\.\d+\.?\d*`)
)

const (
	defaultMinWords    = 50
	defaultMaxWords    = 1000
	defaultWindowWords = 150
)

// LegalChunker splits contracts and statutes along ARTICLE/SECTION headers
// and numbered clauses, falling back to word windows for unstructured text.
type LegalChunker struct {
	minWords int
	maxWords int
	window   *Splitter
}

func NewLegalChunker() *LegalChunker {
	return &LegalChunker{
		minWords: defaultMinWords,
		maxWords: defaultMaxWords,
		window:   NewSplitter(defaultWindowWords, defaultWindowWords/2, defaultMinWords),
	}
}

// WithWindow replaces the fallback window used for unstructured text.
func (c *LegalChunker) WithWindow(windowWords, stepWords int) *LegalChunker {
	c.window = NewSplitter(windowWords, stepWords, c.minWords)
	return c
}

func (c *LegalChunker) Split(text string) []string {
	text = strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
	if text == "" {
		return nil
	}

	structured := c.splitStructured(text)
	if len(structured) == 0 {
		return c.window.Split(text)
	}

	out := make([]string, 0, len(structured))
	for _, chunk := range structured {
		n := wordCount(chunk)
		if n >= c.minWords && n <= c.maxWords {
			out = append(out, chunk)
		}
	}
	if len(out) == 0 {
		return []string{text}
	}
	return out
}

// splitStructured emits "<header> <clause>" chunks for every article body
// long enough to stand alone. Text before the first header is dropped.
func (c *LegalChunker) splitStructured(text string) []string {
	headers := articleHeaderPattern.FindAllStringIndex(text, -1)
	var chunks []string
	for i, loc := range headers {
		header := text[loc[0]:loc[1]]
		end := len(text)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		body := text[loc[1]:end]
		if wordCount(body) < c.minWords {
			continue
		}
		for _, clause := range c.splitClauses(body) {
			chunks = append(chunks, header+" "+clause)
		}
	}
	return chunks
}

// splitClauses starts a new buffer at every clause number such as 3.14 and
// keeps buffers of at least minWords words.
func (c *LegalChunker) splitClauses(body string) []string {
	var (
		out    []string
		buffer string
	)
	flush := func() {
		if buffer != "" && wordCount(buffer) >= c.minWords {
			out = append(out, strings.TrimSpace(buffer))
		}
	}

	prev := 0
	for _, loc := range clauseNumberPattern.FindAllStringIndex(body, -1) {
		buffer += " " + body[prev:loc[0]]
		flush()
		buffer = body[loc[0]:loc[1]]
		prev = loc[1]
	}
	buffer += " " + body[prev:]
	flush()
	return out
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

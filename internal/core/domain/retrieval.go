package domain

import "strings"

type Source string

const (
	SourceKnowledgeBase Source = "knowledge_base"
	SourceUpload        Source = "upload"
	SourceUnknown       Source = "unknown"
)

// ParseSource maps persisted or user supplied tags onto the known sources.
func ParseSource(raw string) Source {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(SourceKnowledgeBase), "legal_qa", "kb":
		return SourceKnowledgeBase
	case string(SourceUpload):
		return SourceUpload
	default:
		return SourceUnknown
	}
}

// ContentKind tells bare clauses apart from curated question/answer pairs.
type ContentKind string

const (
	KindClause ContentKind = "clause"
	KindQA     ContentKind = "qa"
)

// Chunk is one stored unit of retrievable text. Text is the searchable form
// that gets embedded and deduplicated; Question and Body are carried alongside
// so matchers never have to parse Text.
type Chunk struct {
	Text     string      `json:"text"`
	Question string      `json:"question,omitempty"`
	Body     string      `json:"body"`
	Kind     ContentKind `json:"kind"`
	Source   Source      `json:"-"`
}

// NewClauseChunk builds a bare clause record.
func NewClauseChunk(body string, source Source) Chunk {
	body = strings.TrimSpace(body)
	return Chunk{Text: body, Body: body, Kind: KindClause, Source: source}
}

// NewQAChunk builds a curated question/answer record.
func NewQAChunk(question, body string, source Source) Chunk {
	question = strings.TrimSpace(question)
	body = strings.TrimSpace(body)
	return Chunk{
		Text:     "Question: " + question + "\nClause: " + body,
		Question: question,
		Body:     body,
		Kind:     KindQA,
		Source:   source,
	}
}

type Candidate struct {
	Text          string      `json:"clause"`
	Body          string      `json:"body"`
	Question      string      `json:"question,omitempty"`
	Kind          ContentKind `json:"kind"`
	Source        Source      `json:"source"`
	Position      int         `json:"position"`
	Distance      float64     `json:"distance"`
	Confidence    float64     `json:"retrieval_confidence"`
	LexicalHits   int         `json:"lexical_hits"`
	CombinedScore float64     `json:"combined_score"`
}

type RerankedCandidate struct {
	Candidate
	Relevance float64 `json:"reranker_score"`
}

type Tier string

const (
	TierLegalReference Tier = "legal_reference"
	TierExactQuestion  Tier = "exact_question"
	TierSemantic       Tier = "semantic"
	TierNoMatch        Tier = "no_match"
)

// Retrieval is the orchestrator outcome. Clause is empty for TierNoMatch;
// HasConfidence is false when nothing was ever scored.
type Retrieval struct {
	Tier          Tier    `json:"tier"`
	Clause        string  `json:"clause,omitempty"`
	Body          string  `json:"body,omitempty"`
	Source        Source  `json:"source,omitempty"`
	Confidence    float64 `json:"confidence"`
	HasConfidence bool    `json:"has_confidence"`
	Merged        bool    `json:"merged,omitempty"`
}

func (r Retrieval) Found() bool {
	return r.Tier != TierNoMatch && r.Clause != ""
}

type IndexStats struct {
	Kind      string         `json:"index_kind"`
	Dimension int            `json:"dimension"`
	Count     int            `json:"count"`
	BySource  map[Source]int `json:"by_source"`
}

package domain

type AnswerSource string

const (
	AnswerFromRetrieval    AnswerSource = "retrieval"
	AnswerFromReranker     AnswerSource = "reranker"
	AnswerFromDirectClause AnswerSource = "retrieval_direct_clause"
	AnswerFromGeneralModel AnswerSource = "general_fallback"
)

const ClauseReferenceNotFound = "Not Available"

type RiskLevel string

const (
	RiskHigh    RiskLevel = "High"
	RiskMedium  RiskLevel = "Medium"
	RiskLow     RiskLevel = "Low"
	RiskUnknown RiskLevel = "Unknown"
)

type RiskAssessment struct {
	Level  RiskLevel `json:"risk_level"`
	Reason string    `json:"risk_reason"`
}

type AskResult struct {
	Question        string         `json:"question"`
	Answer          string         `json:"answer"`
	AnswerSource    AnswerSource   `json:"answer_source"`
	ClauseReference string         `json:"clause_reference"`
	Confidence      float64        `json:"confidence_score"`
	Tier            Tier           `json:"tier,omitempty"`
	Risk            RiskAssessment `json:"risk"`
}

type RiskSection struct {
	Index  int       `json:"section_index"`
	Level  RiskLevel `json:"risk_level"`
	Reason string    `json:"risk_reason"`
	Text   string    `json:"section_text"`
}

type RiskSummary struct {
	TotalChunks  int `json:"total_chunks"`
	RiskSections int `json:"risk_sections"`
	HighRisk     int `json:"high_risk"`
	MediumRisk   int `json:"medium_risk"`
}

type RiskReport struct {
	DocumentID string        `json:"document_id"`
	Filename   string        `json:"filename"`
	Summary    RiskSummary   `json:"summary"`
	Sections   []RiskSection `json:"risk_sections"`
}

type DocumentSummary struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	Summary    string `json:"summary"`
}

package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

type Document struct {
	ID            string         `json:"id"`
	Filename      string         `json:"filename"`
	MimeType      string         `json:"mime_type"`
	StoragePath   string         `json:"storage_path"`
	ChunksCreated int            `json:"chunks_created"`
	ChunksAdded   int            `json:"chunks_added"`
	Status        DocumentStatus `json:"status"`
	Error         string         `json:"error,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// IngestStats is the outcome of indexing one uploaded document.
type IngestStats struct {
	ChunksCreated int `json:"chunks_created"`
	ChunksAdded   int `json:"chunks_added"`
}

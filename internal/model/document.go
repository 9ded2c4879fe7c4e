package model

import "time"

// DocumentKind identifies the source format of an uploaded document.
type DocumentKind string

const (
	DocumentKindPDF DocumentKind = "pdf"
	DocumentKindCSV DocumentKind = "csv"
	DocumentKindURL DocumentKind = "url"
)

// Valid reports whether k is a known document kind.
func (k DocumentKind) Valid() bool {
	switch k {
	case DocumentKindPDF, DocumentKindCSV, DocumentKindURL:
		return true
	}
	return false
}

// DocumentStatus tracks the ingestion lifecycle of a document.
type DocumentStatus string

const (
	DocumentStatusPending    DocumentStatus = "pending"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusCompleted  DocumentStatus = "completed"
	DocumentStatusFailed     DocumentStatus = "failed"
)

// Document belongs to exactly one company. Content holds a short text
// excerpt extracted at upload time, not the full document body.
type Document struct {
	ID         int64          `json:"id"`
	CompanyID  int64          `json:"companyId"`
	Kind       DocumentKind   `json:"kind"`
	Filename   string         `json:"filename,omitempty"`
	URL        string         `json:"url,omitempty"`
	Content    string         `json:"content,omitempty"`
	Status     DocumentStatus `json:"status"`
	UploadedAt time.Time      `json:"uploadedAt"`
}

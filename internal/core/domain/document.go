package domain

import "time"

// DocumentStatus tracks the review lifecycle of an uploaded document.
type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "PENDENTE"
	DocumentReviewed DocumentStatus = "REVISADO"
	DocumentArchived DocumentStatus = "ARQUIVADO"
)

// Document represents an uploaded file exchanged with a client. The
// binary lives in object storage; StoragePath is the object key.
type Document struct {
	DocumentID  string         `json:"documentID"` // Primary Key (UUID)
	ClientID    *string        `json:"clientID,omitempty"`
	Setor       Setor          `json:"setor"` // sector of the uploader, scopes visibility
	Name        string         `json:"name"`
	SizeBytes   int64          `json:"sizeBytes"`
	Category    string         `json:"category,omitempty"`
	Reference   string         `json:"reference,omitempty"` // free text, e.g. "03/2026"
	Status      DocumentStatus `json:"status"`
	StoragePath string         `json:"storagePath"`
	Urgent      bool           `json:"urgent"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

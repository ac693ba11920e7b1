package dto

import (
	"time"

	"github.com/contaflow/backoffice/internal/core/domain"
)

// UpdateDocumentRequest edits document metadata; the stored file itself
// is immutable.
type UpdateDocumentRequest struct {
	Category  *string                `json:"category"`
	Reference *string                `json:"reference"`
	Status    *domain.DocumentStatus `json:"status"`
	Urgent    *bool                  `json:"urgent"`
}

// ListDocumentsParams narrows the document listing.
type ListDocumentsParams struct {
	ClientID string `form:"clientID"`
	Limit    int    `form:"limit,default=50"`
	Offset   int    `form:"offset,default=0"`
}

// DocumentResponse is the API shape of a document.
type DocumentResponse struct {
	DocumentID string                `json:"documentID"`
	ClientID   *string               `json:"clientID,omitempty"`
	Setor      domain.Setor          `json:"setor"`
	Name       string                `json:"name"`
	SizeBytes  int64                 `json:"sizeBytes"`
	Category   string                `json:"category,omitempty"`
	Reference  string                `json:"reference,omitempty"`
	Status     domain.DocumentStatus `json:"status"`
	Urgent     bool                  `json:"urgent"`
	CreatedAt  time.Time             `json:"createdAt"`
	CreatedBy  string                `json:"createdBy"`
}

// ToDocumentResponse converts a domain document.
func ToDocumentResponse(d *domain.Document) DocumentResponse {
	return DocumentResponse{
		DocumentID: d.DocumentID,
		ClientID:   d.ClientID,
		Setor:      d.Setor,
		Name:       d.Name,
		SizeBytes:  d.SizeBytes,
		Category:   d.Category,
		Reference:  d.Reference,
		Status:     d.Status,
		Urgent:     d.Urgent,
		CreatedAt:  d.CreatedAt,
		CreatedBy:  d.CreatedBy,
	}
}

// DownloadURLResponse carries a presigned object download link.
type DownloadURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

package dto

import (
	"time"

	"github.com/contaflow/backoffice/internal/core/domain"
)

// CreateAPITokenRequest creates a machine token; ExpiresInDays of zero
// means no expiry.
type CreateAPITokenRequest struct {
	Name          string `json:"name" binding:"required"`
	ExpiresInDays int    `json:"expiresInDays" binding:"omitempty,min=1,max=3650"`
}

// CreateAPITokenResponse returns the raw token exactly once.
type CreateAPITokenResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Token     string     `json:"token"` // only returned at creation
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// APITokenResponse is the listing shape (never includes the raw token).
type APITokenResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	RevokedAt  *time.Time `json:"revokedAt,omitempty"`
}

// ToAPITokenResponse converts a domain token.
func ToAPITokenResponse(t *domain.APIToken) APITokenResponse {
	return APITokenResponse{
		ID:         t.ID,
		Name:       t.Name,
		LastUsedAt: t.LastUsedAt,
		ExpiresAt:  t.ExpiresAt,
		CreatedAt:  t.CreatedAt,
		RevokedAt:  t.RevokedAt,
	}
}

package dto

import (
	"time"

	"github.com/contaflow/backoffice/internal/core/domain"
)

// PostMessageRequest appends a message to a client's support chat.
type PostMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// MessageResponse is the API shape of a chat message.
type MessageResponse struct {
	MessageID string               `json:"messageID"`
	ClientID  string               `json:"clientID"`
	AdminID   *string              `json:"adminID,omitempty"`
	Sender    domain.MessageSender `json:"sender"`
	Content   string               `json:"content"`
	ReadAt    *time.Time           `json:"readAt,omitempty"`
	CreatedAt time.Time            `json:"createdAt"`
}

// ToMessageResponse converts a domain chat message.
func ToMessageResponse(m *domain.Message) MessageResponse {
	return MessageResponse{
		MessageID: m.MessageID,
		ClientID:  m.ClientID,
		AdminID:   m.AdminID,
		Sender:    m.Sender,
		Content:   m.Content,
		ReadAt:    m.ReadAt,
		CreatedAt: m.CreatedAt,
	}
}

// ListMessagesParams narrows the chat listing.
type ListMessagesParams struct {
	Limit  int `form:"limit,default=100"`
	Offset int `form:"offset,default=0"`
}

package domain

import "time"

// MessageSender identifies which side of the internal support chat
// authored a message.
type MessageSender string

const (
	SenderAdmin  MessageSender = "admin"
	SenderClient MessageSender = "client"
	SenderSystem MessageSender = "system" // bridge rows written by the WhatsApp webhook
)

// Message is one entry of the internal admin <-> client support chat.
// WhatsApp inbound traffic is mirrored into this table so the chat UI
// and the phone conversation share a history.
type Message struct {
	MessageID string        `json:"messageID"` // Primary Key (UUID)
	ClientID  string        `json:"clientID"`  // FK -> clients.client_id
	AdminID   *string       `json:"adminID,omitempty"`
	Sender    MessageSender `json:"sender"`
	Content   string        `json:"content"`
	ReadAt    *time.Time    `json:"readAt,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

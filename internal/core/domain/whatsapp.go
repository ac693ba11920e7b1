package domain

import "time"

// ConversationStatus is the linear state of a WhatsApp phone session.
// Transitions are monotonic WAITING_DEPARTMENT -> CONVERSING -> ENDED;
// an ENDED conversation is only re-opened as a fresh cycle by the next
// inbound message.
type ConversationStatus string

const (
	ConversationWaitingDepartment ConversationStatus = "WAITING_DEPARTMENT"
	ConversationConversing        ConversationStatus = "CONVERSING"
	ConversationEnded             ConversationStatus = "ENDED"
)

// Conversation tracks a WhatsApp phone-number session through
// department selection and live chat.
type Conversation struct {
	ConversationID     string             `json:"conversationID"` // Primary Key (UUID)
	PhoneNumber        string             `json:"phoneNumber"`    // as received from the provider
	NormalizedPhone    string             `json:"normalizedPhone"`
	Status             ConversationStatus `json:"status"`
	ClientID           *string            `json:"clientID,omitempty"`
	AdminID            *string            `json:"adminID,omitempty"` // at most one admin bound at a time
	SelectedDepartment *Setor             `json:"selectedDepartment,omitempty"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// MessageDirection distinguishes inbound provider deliveries from
// outbound sends.
type MessageDirection string

const (
	DirectionInbound  MessageDirection = "inbound"
	DirectionOutbound MessageDirection = "outbound"
)

// WhatsAppMessage is one logged message of a conversation, correlated
// with the provider by ProviderMessageID for delivery/read callbacks.
type WhatsAppMessage struct {
	MessageID         string           `json:"messageID"` // Primary Key (UUID)
	ConversationID    string           `json:"conversationID"`
	Direction         MessageDirection `json:"direction"`
	Content           string           `json:"content"`
	ProviderMessageID string           `json:"providerMessageID,omitempty"`
	SentAt            *time.Time       `json:"sentAt,omitempty"`
	DeliveredAt       *time.Time       `json:"deliveredAt,omitempty"`
	ReadAt            *time.Time       `json:"readAt,omitempty"`
	FailedAt          *time.Time       `json:"failedAt,omitempty"`
	ErrorCode         *int             `json:"errorCode,omitempty"`
	ErrorDetail       string           `json:"errorDetail,omitempty"`
	CreatedAt         time.Time        `json:"createdAt"`
}

// UnknownContact accumulates inbound senders that matched no client
// record, for manual follow-up.
type UnknownContact struct {
	ContactID      string    `json:"contactID"` // Primary Key (UUID)
	PhoneNumber    string    `json:"phoneNumber"`
	LastMessage    string    `json:"lastMessage"`
	MessageCount   int       `json:"messageCount"`
	FirstMessageAt time.Time `json:"firstMessageAt"`
	LastMessageAt  time.Time `json:"lastMessageAt"`
}

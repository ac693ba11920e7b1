package dto

import (
	"time"

	"github.com/contaflow/backoffice/internal/core/domain"
)

// SendWhatsAppRequest is the outbound send payload.
type SendWhatsAppRequest struct {
	To             string  `json:"to" binding:"required"`
	Message        string  `json:"message" binding:"required"`
	ConversationID *string `json:"conversationId"`
	AdminID        *string `json:"adminId"`
}

// TestSendRequest triggers a canned diagnostic send.
type TestSendRequest struct {
	To string `json:"to" binding:"required"`
}

// SendWhatsAppResponse reports the provider message id of a successful
// send.
type SendWhatsAppResponse struct {
	Success    bool   `json:"success"`
	MessageID  string `json:"message_id"`
	WhatsAppID string `json:"whatsapp_id"`
}

// WebhookEnvelope is the provider-defined inbound POST body. Only the
// fields the handler consumes are declared.
type WebhookEnvelope struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

type WebhookChange struct {
	Field string       `json:"field"`
	Value WebhookValue `json:"value"`
}

type WebhookValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Messages         []WebhookMessage `json:"messages"`
	Statuses         []WebhookStatus  `json:"statuses"`
}

// WebhookMessage is one inbound message.
type WebhookMessage struct {
	From      string `json:"from"` // sender phone number, digits only
	ID        string `json:"id"`   // provider message id
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Text      struct {
		Body string `json:"body"`
	} `json:"text"`
}

// WebhookStatus is one asynchronous delivery-status callback.
type WebhookStatus struct {
	ID          string `json:"id"` // provider message id of the original send
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	RecipientID string `json:"recipient_id"`
	Errors      []struct {
		Code      int    `json:"code"`
		Title     string `json:"title"`
		ErrorData struct {
			Details string `json:"details"`
		} `json:"error_data"`
	} `json:"errors"`
}

// ConversationResponse is the API shape of a conversation.
type ConversationResponse struct {
	ConversationID     string                    `json:"conversationID"`
	PhoneNumber        string                    `json:"phoneNumber"`
	Status             domain.ConversationStatus `json:"status"`
	ClientID           *string                   `json:"clientID,omitempty"`
	AdminID            *string                   `json:"adminID,omitempty"`
	SelectedDepartment *domain.Setor             `json:"selectedDepartment,omitempty"`
	UpdatedAt          time.Time                 `json:"updatedAt"`
}

// ToConversationResponse converts a domain conversation.
func ToConversationResponse(c *domain.Conversation) ConversationResponse {
	return ConversationResponse{
		ConversationID:     c.ConversationID,
		PhoneNumber:        c.PhoneNumber,
		Status:             c.Status,
		ClientID:           c.ClientID,
		AdminID:            c.AdminID,
		SelectedDepartment: c.SelectedDepartment,
		UpdatedAt:          c.UpdatedAt,
	}
}

// HealthReport is the diagnostics shape of the health-check endpoint.
type HealthReport struct {
	Configured         bool     `json:"configured"`
	TokenValid         bool     `json:"tokenValid"`
	DisplayPhoneNumber string   `json:"displayPhoneNumber,omitempty"`
	PhoneNumberID      string   `json:"phoneNumberID,omitempty"`
	Error              string   `json:"error,omitempty"`
	Hint               string   `json:"hint,omitempty"`
	Recommendations    []string `json:"recommendations,omitempty"`
}

// TrafficReport summarizes recent WhatsApp traffic for the debug
// endpoint.
type TrafficReport struct {
	WindowHours     int      `json:"windowHours"`
	Inbound         int      `json:"inbound"`
	Outbound        int      `json:"outbound"`
	Failed          int      `json:"failed"`
	FailureHints    []string `json:"failureHints,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// DeliveryCheckReport lists outbound messages with no delivery
// confirmation inside the window.
type DeliveryCheckReport struct {
	WindowHours int                       `json:"windowHours"`
	Stuck       []WhatsAppMessageResponse `json:"stuck"`
}

// WhatsAppMessageResponse is the API shape of a logged message.
type WhatsAppMessageResponse struct {
	MessageID         string     `json:"messageID"`
	ConversationID    string     `json:"conversationID"`
	Direction         string     `json:"direction"`
	ProviderMessageID string     `json:"providerMessageID,omitempty"`
	SentAt            *time.Time `json:"sentAt,omitempty"`
	DeliveredAt       *time.Time `json:"deliveredAt,omitempty"`
	ReadAt            *time.Time `json:"readAt,omitempty"`
	FailedAt          *time.Time `json:"failedAt,omitempty"`
	ErrorCode         *int       `json:"errorCode,omitempty"`
	ErrorDetail       string     `json:"errorDetail,omitempty"`
}

// ToWhatsAppMessageResponse converts a logged message.
func ToWhatsAppMessageResponse(m *domain.WhatsAppMessage) WhatsAppMessageResponse {
	return WhatsAppMessageResponse{
		MessageID:         m.MessageID,
		ConversationID:    m.ConversationID,
		Direction:         string(m.Direction),
		ProviderMessageID: m.ProviderMessageID,
		SentAt:            m.SentAt,
		DeliveredAt:       m.DeliveredAt,
		ReadAt:            m.ReadAt,
		FailedAt:          m.FailedAt,
		ErrorCode:         m.ErrorCode,
		ErrorDetail:       m.ErrorDetail,
	}
}

// UnknownContactResponse is the API shape of an unmatched sender.
type UnknownContactResponse struct {
	ContactID      string    `json:"contactID"`
	PhoneNumber    string    `json:"phoneNumber"`
	LastMessage    string    `json:"lastMessage"`
	MessageCount   int       `json:"messageCount"`
	FirstMessageAt time.Time `json:"firstMessageAt"`
	LastMessageAt  time.Time `json:"lastMessageAt"`
}

// ResolveContactRequest links an unmatched sender to a client.
type ResolveContactRequest struct {
	ClientID string `json:"clientID" binding:"required"`
}

// ToUnknownContactResponse converts a domain unknown contact.
func ToUnknownContactResponse(c *domain.UnknownContact) UnknownContactResponse {
	return UnknownContactResponse{
		ContactID:      c.ContactID,
		PhoneNumber:    c.PhoneNumber,
		LastMessage:    c.LastMessage,
		MessageCount:   c.MessageCount,
		FirstMessageAt: c.FirstMessageAt,
		LastMessageAt:  c.LastMessageAt,
	}
}

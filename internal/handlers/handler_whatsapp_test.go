package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contaflow/backoffice/internal/core/domain"
	"github.com/contaflow/backoffice/internal/dto"
	"github.com/contaflow/backoffice/internal/platform/config"
)

// conversationSvcStub records the calls the webhook handler dispatches.
type conversationSvcStub struct {
	inbound  []dto.WebhookMessage
	statuses []string
}

func (s *conversationSvcStub) HandleInboundMessage(ctx context.Context, from, providerMessageID, body string) error {
	msg := dto.WebhookMessage{From: from, ID: providerMessageID}
	msg.Text.Body = body
	s.inbound = append(s.inbound, msg)
	return nil
}

func (s *conversationSvcStub) HandleStatusUpdate(ctx context.Context, providerMessageID, status string, at time.Time, errCode *int, errDetail string) error {
	s.statuses = append(s.statuses, providerMessageID+":"+status)
	return nil
}

func (s *conversationSvcStub) SendMessage(ctx context.Context, req dto.SendWhatsAppRequest) (*dto.SendWhatsAppResponse, error) {
	return &dto.SendWhatsAppResponse{Success: true}, nil
}

func (s *conversationSvcStub) ListConversations(ctx context.Context, status *domain.ConversationStatus, limit, offset int) ([]domain.Conversation, error) {
	return nil, nil
}

func (s *conversationSvcStub) HealthReport(ctx context.Context) dto.HealthReport {
	return dto.HealthReport{}
}

func (s *conversationSvcStub) TrafficReport(ctx context.Context, window time.Duration) (*dto.TrafficReport, error) {
	return &dto.TrafficReport{}, nil
}

func (s *conversationSvcStub) DeliveryCheck(ctx context.Context, window time.Duration) (*dto.DeliveryCheckReport, error) {
	return &dto.DeliveryCheckReport{}, nil
}

func webhookRouter(stub *conversationSvcStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	registerWhatsAppWebhookRoutes(r, &config.Config{WhatsAppVerifyToken: "segredo"}, stub)
	return r
}

func TestVerifyWebhookEchoesChallenge(t *testing.T) {
	r := webhookRouter(&conversationSvcStub{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/whatsapp/webhook?hub.mode=subscribe&hub.verify_token=segredo&hub.challenge=12345", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "12345", w.Body.String())
}

func TestVerifyWebhookRejectsWrongToken(t *testing.T) {
	r := webhookRouter(&conversationSvcStub{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/whatsapp/webhook?hub.mode=subscribe&hub.verify_token=errado&hub.challenge=12345", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestReceiveWebhookDispatchesMessagesAndStatuses(t *testing.T) {
	stub := &conversationSvcStub{}
	r := webhookRouter(stub)

	payload := `{
	  "object": "whatsapp_business_account",
	  "entry": [{
	    "id": "entry-1",
	    "changes": [{
	      "field": "messages",
	      "value": {
	        "messaging_product": "whatsapp",
	        "messages": [
	          {"from": "5531999999999", "id": "wamid.IN", "timestamp": "1700000000", "type": "text", "text": {"body": "oi"}},
	          {"from": "5531999999999", "id": "wamid.IMG", "timestamp": "1700000001", "type": "image"}
	        ],
	        "statuses": [
	          {"id": "wamid.OUT", "status": "delivered", "timestamp": "1700000002", "recipient_id": "5531999999999"}
	        ]
	      }
	    }]
	  }]
	}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/whatsapp/webhook", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	// only the text message reaches the state machine
	require.Len(t, stub.inbound, 1)
	assert.Equal(t, "wamid.IN", stub.inbound[0].ID)
	assert.Equal(t, "oi", stub.inbound[0].Text.Body)

	assert.Equal(t, []string{"wamid.OUT:delivered"}, stub.statuses)
}

func TestReceiveWebhookIgnoresGarbage(t *testing.T) {
	stub := &conversationSvcStub{}
	r := webhookRouter(stub)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/whatsapp/webhook", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	// the provider must never see an error, it would retry forever
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, stub.inbound)
}

func TestParseWebhookTimestamp(t *testing.T) {
	at := parseWebhookTimestamp("1700000000")
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), at)

	// garbage falls back to roughly now
	fallback := parseWebhookTimestamp("not-a-number")
	assert.WithinDuration(t, time.Now(), fallback, time.Minute)
}

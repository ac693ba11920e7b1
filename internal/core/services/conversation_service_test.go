package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contaflow/backoffice/internal/core/domain"
	"github.com/contaflow/backoffice/internal/core/ports"
	"github.com/contaflow/backoffice/internal/core/services"
	"github.com/contaflow/backoffice/internal/dto"
	"github.com/contaflow/backoffice/internal/platform/whatsapp"
)

// fakeProvider stands in for the Cloud API and records outbound bodies.
type fakeProvider struct {
	srv   *httptest.Server
	sent  []string
	fail  bool
	calls int
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()
	p := &fakeProvider{}
	p.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.calls++
		var req struct {
			Text struct {
				Body string `json:"body"`
			} `json:"text"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		p.sent = append(p.sent, req.Text.Body)

		if p.fail {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": "Invalid OAuth access token", "code": 190},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"messages": []map[string]string{{"id": "wamid.OUT"}},
		})
	}))
	t.Cleanup(p.srv.Close)
	return p
}

type conversationFixture struct {
	provider *fakeProvider
	convRepo *mockConversationRepository
	clients  *mockClientRepository
	users    *mockUserRepository
	messages *mockMessageRepository
	unknown  *mockUnknownContactRepository

	upserted  []domain.Conversation
	updated   []domain.Conversation
	logged    []domain.WhatsAppMessage
	mirrored  []domain.Message
	registers []string
}

func newConversationFixture(t *testing.T) (*conversationFixture, ports.ConversationSvcFacade) {
	t.Helper()
	f := &conversationFixture{
		provider: newFakeProvider(t),
		convRepo: &mockConversationRepository{},
		clients:  &mockClientRepository{},
		users:    &mockUserRepository{},
		messages: &mockMessageRepository{},
		unknown:  &mockUnknownContactRepository{},
	}
	f.convRepo.UpsertConversationFn = func(ctx context.Context, conv domain.Conversation) error {
		f.upserted = append(f.upserted, conv)
		return nil
	}
	f.convRepo.UpdateConversationFn = func(ctx context.Context, conv domain.Conversation) error {
		f.updated = append(f.updated, conv)
		return nil
	}
	f.convRepo.SaveWhatsAppMessageFn = func(ctx context.Context, msg domain.WhatsAppMessage) error {
		f.logged = append(f.logged, msg)
		return nil
	}
	f.messages.SaveMessageFn = func(ctx context.Context, msg domain.Message) error {
		f.mirrored = append(f.mirrored, msg)
		return nil
	}
	f.unknown.RegisterContactFn = func(ctx context.Context, phone, lastMessage string, at time.Time) error {
		f.registers = append(f.registers, phone)
		return nil
	}

	wa := whatsapp.NewClient("test-token", "555000111", f.provider.srv.URL)
	svc := services.NewConversationService(f.convRepo, f.clients, f.users, f.messages, f.unknown, wa, "+55 31 0000-0000")
	return f, svc
}

func waitingConversation(phone string) *domain.Conversation {
	return &domain.Conversation{
		ConversationID:  "conv-1",
		PhoneNumber:     phone,
		NormalizedPhone: phone,
		Status:          domain.ConversationWaitingDepartment,
	}
}

func TestInboundFirstMessageOpensConversationAndSendsMenu(t *testing.T) {
	f, svc := newConversationFixture(t)

	err := svc.HandleInboundMessage(context.Background(), "31 99999-9999", "wamid.IN1", "oi")
	require.NoError(t, err)

	require.Len(t, f.upserted, 1)
	assert.Equal(t, domain.ConversationWaitingDepartment, f.upserted[0].Status)
	assert.Equal(t, "5531999999999", f.upserted[0].NormalizedPhone)

	require.Len(t, f.provider.sent, 1)
	assert.Contains(t, f.provider.sent[0], "2 - Contábil")

	// inbound plus the menu send land in the message log
	require.Len(t, f.logged, 2)
	assert.Equal(t, domain.DirectionInbound, f.logged[0].Direction)
	assert.Equal(t, domain.DirectionOutbound, f.logged[1].Direction)
	assert.Equal(t, "wamid.OUT", f.logged[1].ProviderMessageID)
}

func TestDepartmentDigitBindsClientAndAdmin(t *testing.T) {
	f, svc := newConversationFixture(t)

	phone := "5531999999999"
	f.convRepo.FindActiveByPhoneFn = func(ctx context.Context, p string) (*domain.Conversation, error) {
		return waitingConversation(phone), nil
	}
	f.clients.FindClientByPhoneFn = func(ctx context.Context, p string) (*domain.Client, error) {
		return &domain.Client{ClientID: "client-1", Setor: domain.SetorContabil}, nil
	}
	f.users.FindAvailableAdminFn = func(ctx context.Context, clientID string, setor domain.Setor) (*domain.User, error) {
		assert.Equal(t, domain.SetorContabil, setor)
		return &domain.User{UserID: "admin-7"}, nil
	}

	err := svc.HandleInboundMessage(context.Background(), phone, "wamid.IN2", "2")
	require.NoError(t, err)

	require.Len(t, f.updated, 1)
	conv := f.updated[0]
	assert.Equal(t, domain.ConversationConversing, conv.Status)
	require.NotNil(t, conv.ClientID)
	assert.Equal(t, "client-1", *conv.ClientID)
	require.NotNil(t, conv.SelectedDepartment)
	assert.Equal(t, domain.SetorContabil, *conv.SelectedDepartment)
	require.NotNil(t, conv.AdminID)
	assert.Equal(t, "admin-7", *conv.AdminID)

	// bridge row visible to the internal chat
	require.Len(t, f.mirrored, 1)
	assert.Equal(t, domain.SenderSystem, f.mirrored[0].Sender)
	assert.Equal(t, "client-1", f.mirrored[0].ClientID)
}

func TestDepartmentDigitWithoutAdminStillAdvances(t *testing.T) {
	f, svc := newConversationFixture(t)

	phone := "5531999999999"
	f.convRepo.FindActiveByPhoneFn = func(ctx context.Context, p string) (*domain.Conversation, error) {
		return waitingConversation(phone), nil
	}
	f.clients.FindClientByPhoneFn = func(ctx context.Context, p string) (*domain.Client, error) {
		return &domain.Client{ClientID: "client-1", Setor: domain.SetorFiscal}, nil
	}

	err := svc.HandleInboundMessage(context.Background(), phone, "wamid.IN3", "3")
	require.NoError(t, err)

	require.Len(t, f.updated, 1)
	assert.Equal(t, domain.ConversationConversing, f.updated[0].Status)
	assert.Nil(t, f.updated[0].AdminID)
}

func TestUnknownPhoneEndsConversationAndRegistersContact(t *testing.T) {
	f, svc := newConversationFixture(t)

	phone := "5531988887777"
	f.convRepo.FindActiveByPhoneFn = func(ctx context.Context, p string) (*domain.Conversation, error) {
		return waitingConversation(phone), nil
	}

	err := svc.HandleInboundMessage(context.Background(), phone, "wamid.IN4", "1")
	require.NoError(t, err)

	require.Len(t, f.updated, 1)
	assert.Equal(t, domain.ConversationEnded, f.updated[0].Status)
	assert.Equal(t, []string{phone}, f.registers)

	require.NotEmpty(t, f.provider.sent)
	assert.Contains(t, f.provider.sent[len(f.provider.sent)-1], "Não encontramos seu cadastro")
}

func TestInvalidDigitRepromptsWithoutStateChange(t *testing.T) {
	f, svc := newConversationFixture(t)

	phone := "5531999999999"
	f.convRepo.FindActiveByPhoneFn = func(ctx context.Context, p string) (*domain.Conversation, error) {
		return waitingConversation(phone), nil
	}

	err := svc.HandleInboundMessage(context.Background(), phone, "wamid.IN5", "9")
	require.NoError(t, err)

	assert.Empty(t, f.updated)
	assert.Empty(t, f.registers)
	require.Len(t, f.provider.sent, 1)
	assert.Contains(t, f.provider.sent[0], "Opção inválida")
}

func TestConversingMirrorsIntoInternalChat(t *testing.T) {
	f, svc := newConversationFixture(t)

	phone := "5531999999999"
	clientID := "client-1"
	f.convRepo.FindActiveByPhoneFn = func(ctx context.Context, p string) (*domain.Conversation, error) {
		conv := waitingConversation(phone)
		conv.Status = domain.ConversationConversing
		conv.ClientID = &clientID
		return conv, nil
	}

	err := svc.HandleInboundMessage(context.Background(), phone, "wamid.IN6", "segue o boleto")
	require.NoError(t, err)

	require.Len(t, f.mirrored, 1)
	assert.Equal(t, domain.SenderClient, f.mirrored[0].Sender)
	assert.Equal(t, "segue o boleto", f.mirrored[0].Content)
	// nothing goes back out while conversing
	assert.Zero(t, f.provider.calls)
}

func TestSendFailureKeepsStateAndRecordsFailure(t *testing.T) {
	f, svc := newConversationFixture(t)
	f.provider.fail = true

	err := svc.HandleInboundMessage(context.Background(), "5531999999999", "wamid.IN7", "oi")
	require.NoError(t, err)

	// conversation opened despite the failed menu send
	require.Len(t, f.upserted, 1)
	assert.Equal(t, domain.ConversationWaitingDepartment, f.upserted[0].Status)

	require.Len(t, f.logged, 2)
	failed := f.logged[1]
	assert.Equal(t, domain.DirectionOutbound, failed.Direction)
	require.NotNil(t, failed.FailedAt)
	require.NotNil(t, failed.ErrorCode)
	assert.Equal(t, 190, *failed.ErrorCode)
}

func TestUnusablePhoneIsDropped(t *testing.T) {
	f, svc := newConversationFixture(t)

	err := svc.HandleInboundMessage(context.Background(), "123", "wamid.IN8", "oi")
	require.NoError(t, err)
	assert.Empty(t, f.upserted)
	assert.Zero(t, f.provider.calls)
}

func TestStatusUpdateStampsDelivery(t *testing.T) {
	f, svc := newConversationFixture(t)

	var saved *domain.WhatsAppMessage
	f.convRepo.FindWhatsAppMessageByProviderIDFn = func(ctx context.Context, id string) (*domain.WhatsAppMessage, error) {
		return &domain.WhatsAppMessage{MessageID: "m1", ConversationID: "conv-1", ProviderMessageID: id}, nil
	}
	f.convRepo.UpdateWhatsAppMessageFn = func(ctx context.Context, msg domain.WhatsAppMessage) error {
		saved = &msg
		return nil
	}

	at := time.Now()
	require.NoError(t, svc.HandleStatusUpdate(context.Background(), "wamid.OUT", "delivered", at, nil, ""))
	require.NotNil(t, saved)
	require.NotNil(t, saved.DeliveredAt)
	assert.Equal(t, at, *saved.DeliveredAt)

	code := 131026
	require.NoError(t, svc.HandleStatusUpdate(context.Background(), "wamid.OUT", "failed", at, &code, "unreachable"))
	require.NotNil(t, saved.FailedAt)
	assert.Equal(t, 131026, *saved.ErrorCode)
}

func TestStatusUpdateUnknownMessageIgnored(t *testing.T) {
	f, svc := newConversationFixture(t)

	updateCalled := false
	f.convRepo.UpdateWhatsAppMessageFn = func(ctx context.Context, msg domain.WhatsAppMessage) error {
		updateCalled = true
		return nil
	}
	require.NoError(t, svc.HandleStatusUpdate(context.Background(), "wamid.NOPE", "read", time.Now(), nil, ""))
	assert.False(t, updateCalled)
}

func TestSendMessageLogsAndBindsAdmin(t *testing.T) {
	f, svc := newConversationFixture(t)

	phone := "5531999999999"
	f.convRepo.FindActiveByPhoneFn = func(ctx context.Context, p string) (*domain.Conversation, error) {
		return &domain.Conversation{ConversationID: "conv-1", NormalizedPhone: phone, Status: domain.ConversationConversing}, nil
	}

	adminID := "admin-7"
	resp, err := svc.SendMessage(context.Background(), dto.SendWhatsAppRequest{
		To:      "31 99999-9999",
		Message: "bom dia",
		AdminID: &adminID,
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "wamid.OUT", resp.WhatsAppID)

	require.Len(t, f.logged, 1)
	assert.Equal(t, "wamid.OUT", f.logged[0].ProviderMessageID)

	require.Len(t, f.updated, 1)
	require.NotNil(t, f.updated[0].AdminID)
	assert.Equal(t, adminID, *f.updated[0].AdminID)
}

func TestSendMessageInvalidNumber(t *testing.T) {
	_, svc := newConversationFixture(t)

	_, err := svc.SendMessage(context.Background(), dto.SendWhatsAppRequest{To: "42", Message: "oi"})
	assert.Error(t, err)
}

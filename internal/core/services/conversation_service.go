package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/contaflow/backoffice/internal/apperrors"
	"github.com/contaflow/backoffice/internal/core/domain"
	"github.com/contaflow/backoffice/internal/core/ports"
	"github.com/contaflow/backoffice/internal/dto"
	"github.com/contaflow/backoffice/internal/platform/whatsapp"
)

// departmentBySelection maps the menu digit a caller types to the
// department it routes to. Digit 2 must resolve to CONTABIL.
var departmentBySelection = map[string]domain.Setor{
	"1": domain.SetorPessoal,
	"2": domain.SetorContabil,
	"3": domain.SetorFiscal,
	"4": domain.SetorPlanejamento,
	"5": domain.SetorCadastro,
	"0": domain.SetorCoordenacao,
}

const departmentMenu = "Bem-vindo ao atendimento! Digite o número do departamento desejado:\n" +
	"1 - Pessoal\n2 - Contábil\n3 - Fiscal\n4 - Planejamento\n5 - Cadastro\n0 - Coordenação"

const invalidOptionPrefix = "Opção inválida. "

const noMatchNotice = "Não encontramos seu cadastro em nosso sistema. " +
	"Entre em contato com seu responsável para regularizar o atendimento."

// conversationService drives the WhatsApp phone-session state machine
// WAITING_DEPARTMENT -> CONVERSING -> ENDED and the outbound sender.
// The read-decide-write sequence for one phone number is serialized by
// a keyed mutex; different phones proceed in parallel.
type conversationService struct {
	convRepo    ports.ConversationRepository
	clientRepo  ports.ClientRepository
	userRepo    ports.UserRepository
	messageRepo ports.MessageRepository
	unknownRepo ports.UnknownContactRepository
	wa          *whatsapp.Client

	displayNumber string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewConversationService(
	convRepo ports.ConversationRepository,
	clientRepo ports.ClientRepository,
	userRepo ports.UserRepository,
	messageRepo ports.MessageRepository,
	unknownRepo ports.UnknownContactRepository,
	wa *whatsapp.Client,
	displayNumber string,
) ports.ConversationSvcFacade {
	return &conversationService{
		convRepo:      convRepo,
		clientRepo:    clientRepo,
		userRepo:      userRepo,
		messageRepo:   messageRepo,
		unknownRepo:   unknownRepo,
		wa:            wa,
		displayNumber: displayNumber,
		locks:         map[string]*sync.Mutex{},
	}
}

// phoneLock returns the mutex serializing webhook handling for one
// normalized phone number.
func (s *conversationService) phoneLock(phone string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[phone]
	if !ok {
		l = &sync.Mutex{}
		s.locks[phone] = l
	}
	return l
}

// logMessage appends an entry to the WhatsApp message log, best effort.
func (s *conversationService) logMessage(ctx context.Context, conversationID string, direction domain.MessageDirection, content, providerID string, errCode *int, errDetail string) {
	now := time.Now()
	msg := domain.WhatsAppMessage{
		MessageID:         uuid.NewString(),
		ConversationID:    conversationID,
		Direction:         direction,
		Content:           content,
		ProviderMessageID: providerID,
		ErrorCode:         errCode,
		ErrorDetail:       errDetail,
		CreatedAt:         now,
	}
	if errCode != nil || errDetail != "" {
		msg.FailedAt = &now
	}
	if err := s.convRepo.SaveWhatsAppMessage(ctx, msg); err != nil {
		slog.WarnContext(ctx, "failed to log whatsapp message",
			slog.String("conversation_id", conversationID), slog.String("error", err.Error()))
	}
}

// sendAndLog sends one text and records the outcome. Send failures are
// logged and recorded, never retried; the caller's state change stands
// even when the notification did not go out.
func (s *conversationService) sendAndLog(ctx context.Context, conversationID, to, body string) {
	providerID, err := s.wa.SendText(ctx, to, body)
	if err != nil {
		var code *int
		detail := err.Error()
		var apiErr *whatsapp.APIError
		if errors.As(err, &apiErr) {
			code = &apiErr.Code
		}
		slog.WarnContext(ctx, "whatsapp send failed, conversation state kept",
			slog.String("conversation_id", conversationID),
			slog.String("to", to),
			slog.String("error", detail))
		s.logMessage(ctx, conversationID, domain.DirectionOutbound, body, "", code, detail)
		return
	}
	s.logMessage(ctx, conversationID, domain.DirectionOutbound, body, providerID, nil, "")
}

// HandleInboundMessage advances the state machine for one inbound
// message. Calls for the same phone are serialized.
func (s *conversationService) HandleInboundMessage(ctx context.Context, from, providerMessageID, body string) error {
	normalized, err := whatsapp.NormalizePhone(from)
	if err != nil {
		slog.WarnContext(ctx, "dropping inbound message with unusable phone",
			slog.String("from", from), slog.String("error", err.Error()))
		return nil
	}

	lock := s.phoneLock(normalized)
	lock.Lock()
	defer lock.Unlock()

	conv, err := s.convRepo.FindActiveByPhone(ctx, normalized)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("failed to load conversation state: %w", err)
		}
		return s.openConversation(ctx, from, normalized, providerMessageID, body)
	}

	switch conv.Status {
	case domain.ConversationWaitingDepartment:
		return s.handleDepartmentSelection(ctx, conv, providerMessageID, body)
	case domain.ConversationConversing:
		return s.handleConversing(ctx, conv, providerMessageID, body)
	default:
		// FindActiveByPhone excludes ENDED; a fresh cycle starts instead.
		return s.openConversation(ctx, from, normalized, providerMessageID, body)
	}
}

// openConversation starts a new cycle: upsert the row in
// WAITING_DEPARTMENT and send the department menu.
func (s *conversationService) openConversation(ctx context.Context, rawPhone, normalized, providerMessageID, body string) error {
	now := time.Now()
	conv := domain.Conversation{
		ConversationID:  uuid.NewString(),
		PhoneNumber:     rawPhone,
		NormalizedPhone: normalized,
		Status:          domain.ConversationWaitingDepartment,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.convRepo.UpsertConversation(ctx, conv); err != nil {
		return fmt.Errorf("failed to open conversation: %w", err)
	}
	s.logMessage(ctx, conv.ConversationID, domain.DirectionInbound, body, providerMessageID, nil, "")
	s.sendAndLog(ctx, conv.ConversationID, normalized, departmentMenu)
	return nil
}

// handleDepartmentSelection resolves the menu digit. A valid digit with
// a matching client binds client and admin and moves to CONVERSING; a
// valid digit with no matching client registers an unknown contact and
// ends the conversation; anything else re-prompts.
func (s *conversationService) handleDepartmentSelection(ctx context.Context, conv *domain.Conversation, providerMessageID, body string) error {
	s.logMessage(ctx, conv.ConversationID, domain.DirectionInbound, body, providerMessageID, nil, "")

	setor, ok := departmentBySelection[trimmedDigit(body)]
	if !ok {
		s.sendAndLog(ctx, conv.ConversationID, conv.NormalizedPhone, invalidOptionPrefix+departmentMenu)
		return nil
	}

	client, err := s.clientRepo.FindClientByPhone(ctx, conv.NormalizedPhone)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("failed to match client by phone: %w", err)
		}
		return s.endUnknown(ctx, conv, body)
	}

	now := time.Now()
	conv.ClientID = &client.ClientID
	conv.SelectedDepartment = &setor
	conv.Status = domain.ConversationConversing
	conv.UpdatedAt = now

	admin, err := s.userRepo.FindAvailableAdmin(ctx, client.ClientID, setor)
	if err != nil {
		slog.WarnContext(ctx, "no admin resolved for conversation",
			slog.String("conversation_id", conv.ConversationID),
			slog.String("setor", string(setor)),
			slog.String("error", err.Error()))
	} else {
		conv.AdminID = &admin.UserID
	}

	if err := s.convRepo.UpdateConversation(ctx, *conv); err != nil {
		return fmt.Errorf("failed to advance conversation: %w", err)
	}

	// Bridge row so the internal chat shows the phone session start.
	bridge := domain.Message{
		MessageID: uuid.NewString(),
		ClientID:  client.ClientID,
		AdminID:   conv.AdminID,
		Sender:    domain.SenderSystem,
		Content:   fmt.Sprintf("Atendimento WhatsApp iniciado (departamento %s)", setor),
		CreatedAt: now,
	}
	if err := s.messageRepo.SaveMessage(ctx, bridge); err != nil {
		slog.WarnContext(ctx, "failed to write chat bridge row",
			slog.String("conversation_id", conv.ConversationID), slog.String("error", err.Error()))
	}

	s.sendAndLog(ctx, conv.ConversationID, conv.NormalizedPhone,
		fmt.Sprintf("Você foi conectado ao departamento %s. Pode enviar sua mensagem.", setor))
	return nil
}

// endUnknown records the unmatched sender and closes the cycle.
func (s *conversationService) endUnknown(ctx context.Context, conv *domain.Conversation, lastMessage string) error {
	now := time.Now()
	if err := s.unknownRepo.RegisterContact(ctx, conv.NormalizedPhone, lastMessage, now); err != nil {
		slog.WarnContext(ctx, "failed to register unknown contact",
			slog.String("phone", conv.NormalizedPhone), slog.String("error", err.Error()))
	}
	conv.Status = domain.ConversationEnded
	conv.UpdatedAt = now
	if err := s.convRepo.UpdateConversation(ctx, *conv); err != nil {
		return fmt.Errorf("failed to end conversation: %w", err)
	}
	s.sendAndLog(ctx, conv.ConversationID, conv.NormalizedPhone, noMatchNotice)
	return nil
}

// handleConversing mirrors the inbound message into the internal chat.
func (s *conversationService) handleConversing(ctx context.Context, conv *domain.Conversation, providerMessageID, body string) error {
	s.logMessage(ctx, conv.ConversationID, domain.DirectionInbound, body, providerMessageID, nil, "")
	if conv.ClientID == nil {
		return nil
	}
	mirror := domain.Message{
		MessageID: uuid.NewString(),
		ClientID:  *conv.ClientID,
		AdminID:   conv.AdminID,
		Sender:    domain.SenderClient,
		Content:   body,
		CreatedAt: time.Now(),
	}
	if err := s.messageRepo.SaveMessage(ctx, mirror); err != nil {
		return fmt.Errorf("failed to mirror inbound message: %w", err)
	}
	return nil
}

// trimmedDigit extracts the selection digit from a free-form reply.
func trimmedDigit(body string) string {
	trimmed := ""
	for _, r := range body {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		trimmed += string(r)
	}
	return trimmed
}

// HandleStatusUpdate applies an asynchronous delivery callback to the
// matching message row. Unknown provider ids are logged and dropped.
func (s *conversationService) HandleStatusUpdate(ctx context.Context, providerMessageID, status string, at time.Time, errCode *int, errDetail string) error {
	msg, err := s.convRepo.FindWhatsAppMessageByProviderID(ctx, providerMessageID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			slog.DebugContext(ctx, "status callback for unknown message",
				slog.String("provider_message_id", providerMessageID),
				slog.String("status", status))
			return nil
		}
		return fmt.Errorf("failed to load message for status update: %w", err)
	}

	switch status {
	case "sent":
		msg.SentAt = &at
	case "delivered":
		msg.DeliveredAt = &at
	case "read":
		msg.ReadAt = &at
	case "failed":
		msg.FailedAt = &at
		msg.ErrorCode = errCode
		msg.ErrorDetail = errDetail
	default:
		slog.DebugContext(ctx, "ignoring unrecognized status callback",
			slog.String("status", status))
		return nil
	}
	if err := s.convRepo.UpdateWhatsAppMessage(ctx, *msg); err != nil {
		return fmt.Errorf("failed to apply status update: %w", err)
	}
	return nil
}

// SendMessage is the admin-side outbound path. The destination is
// normalized before the provider call and the provider message id is
// recorded for later status correlation.
func (s *conversationService) SendMessage(ctx context.Context, req dto.SendWhatsAppRequest) (*dto.SendWhatsAppResponse, error) {
	if !s.wa.Configured() {
		return nil, apperrors.ErrConfiguration
	}
	to, err := whatsapp.NormalizePhone(req.To)
	if err != nil {
		return nil, fmt.Errorf("invalid destination number: %w", apperrors.ErrValidation)
	}

	var conv *domain.Conversation
	if req.ConversationID != nil {
		conv, err = s.convRepo.FindConversationByID(ctx, *req.ConversationID)
		if err != nil {
			return nil, fmt.Errorf("conversation lookup failed: %w", err)
		}
	} else if found, err := s.convRepo.FindActiveByPhone(ctx, to); err == nil {
		conv = found
	}

	providerID, err := s.wa.SendText(ctx, to, req.Message)
	if err != nil {
		if conv != nil {
			var code *int
			var apiErr *whatsapp.APIError
			if errors.As(err, &apiErr) {
				code = &apiErr.Code
			}
			s.logMessage(ctx, conv.ConversationID, domain.DirectionOutbound, req.Message, "", code, err.Error())
		}
		return nil, fmt.Errorf("provider send failed: %w", err)
	}

	messageID := ""
	if conv != nil {
		now := time.Now()
		msg := domain.WhatsAppMessage{
			MessageID:         uuid.NewString(),
			ConversationID:    conv.ConversationID,
			Direction:         domain.DirectionOutbound,
			Content:           req.Message,
			ProviderMessageID: providerID,
			CreatedAt:         now,
		}
		if err := s.convRepo.SaveWhatsAppMessage(ctx, msg); err != nil {
			slog.WarnContext(ctx, "send succeeded but logging failed",
				slog.String("conversation_id", conv.ConversationID), slog.String("error", err.Error()))
		} else {
			messageID = msg.MessageID
		}
		if req.AdminID != nil && conv.AdminID == nil {
			conv.AdminID = req.AdminID
			conv.UpdatedAt = now
			if err := s.convRepo.UpdateConversation(ctx, *conv); err != nil {
				slog.WarnContext(ctx, "failed to bind admin to conversation",
					slog.String("conversation_id", conv.ConversationID), slog.String("error", err.Error()))
			}
		}
	}

	return &dto.SendWhatsAppResponse{
		Success:    true,
		MessageID:  messageID,
		WhatsAppID: providerID,
	}, nil
}

func (s *conversationService) ListConversations(ctx context.Context, status *domain.ConversationStatus, limit, offset int) ([]domain.Conversation, error) {
	return s.convRepo.FindConversations(ctx, status, limit, offset)
}

// HealthReport probes configuration and token validity.
func (s *conversationService) HealthReport(ctx context.Context) dto.HealthReport {
	report := dto.HealthReport{Configured: s.wa.Configured()}
	if !report.Configured {
		report.Error = "WhatsApp credentials not configured"
		report.Recommendations = append(report.Recommendations,
			"set WHATSAPP_ACCESS_TOKEN and WHATSAPP_PHONE_NUMBER_ID")
		return report
	}

	display, err := s.wa.ProbeToken(ctx)
	if err != nil {
		report.Error = err.Error()
		var apiErr *whatsapp.APIError
		if errors.As(err, &apiErr) {
			report.Hint = whatsapp.CodeHint(apiErr.Code)
		}
		report.Recommendations = append(report.Recommendations,
			"regenerate the access token in the Meta developer console if it expired")
		return report
	}

	report.TokenValid = true
	report.PhoneNumberID = s.displayNumber
	report.DisplayPhoneNumber = display
	if report.DisplayPhoneNumber == "" {
		report.DisplayPhoneNumber = s.displayNumber
	}
	return report
}

// TrafficReport summarizes the message log inside the window.
func (s *conversationService) TrafficReport(ctx context.Context, window time.Duration) (*dto.TrafficReport, error) {
	msgs, err := s.convRepo.FindRecentWhatsAppMessages(ctx, time.Now().Add(-window))
	if err != nil {
		return nil, fmt.Errorf("failed to load recent traffic: %w", err)
	}

	report := &dto.TrafficReport{WindowHours: int(window.Hours())}
	seenHints := map[string]bool{}
	for i := range msgs {
		switch msgs[i].Direction {
		case domain.DirectionInbound:
			report.Inbound++
		case domain.DirectionOutbound:
			report.Outbound++
		}
		if msgs[i].FailedAt != nil {
			report.Failed++
			if msgs[i].ErrorCode != nil {
				hint := whatsapp.CodeHint(*msgs[i].ErrorCode)
				if hint != "" && !seenHints[hint] {
					seenHints[hint] = true
					report.FailureHints = append(report.FailureHints, hint)
				}
			}
		}
	}
	if report.Failed > 0 && report.Outbound > 0 && report.Failed*2 >= report.Outbound {
		report.Recommendations = append(report.Recommendations,
			"over half of outbound messages failed; run the health check and verify the access token")
	}
	if report.Outbound > 0 && report.Inbound == 0 {
		report.Recommendations = append(report.Recommendations,
			"no inbound traffic in the window; verify the webhook subscription is active")
	}
	return report, nil
}

// DeliveryCheck lists outbound messages with no delivery confirmation
// and no recorded failure inside the window.
func (s *conversationService) DeliveryCheck(ctx context.Context, window time.Duration) (*dto.DeliveryCheckReport, error) {
	msgs, err := s.convRepo.FindUndeliveredSince(ctx, time.Now().Add(-window))
	if err != nil {
		return nil, fmt.Errorf("failed to load undelivered messages: %w", err)
	}
	report := &dto.DeliveryCheckReport{
		WindowHours: int(window.Hours()),
		Stuck:       make([]dto.WhatsAppMessageResponse, 0, len(msgs)),
	}
	for i := range msgs {
		report.Stuck = append(report.Stuck, dto.ToWhatsAppMessageResponse(&msgs[i]))
	}
	return report, nil
}

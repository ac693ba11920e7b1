package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/contaflow/backoffice/internal/apperrors"
	"github.com/contaflow/backoffice/internal/core/domain"
	"github.com/contaflow/backoffice/internal/core/ports"
)

// chatService implements ChatSvcFacade: the internal two-party support
// chat. Client-side logins only see their own thread.
type chatService struct {
	messageRepo ports.MessageRepository
	clientRepo  ports.ClientRepository
	authz       ports.AuthzSvcFacade
}

func NewChatService(messageRepo ports.MessageRepository, clientRepo ports.ClientRepository, authz ports.AuthzSvcFacade) ports.ChatSvcFacade {
	return &chatService{messageRepo: messageRepo, clientRepo: clientRepo, authz: authz}
}

// authorize resolves whether the actor may touch the client's thread
// and whether they act as the admin side.
func (s *chatService) authorize(ctx context.Context, actor *domain.DerivedUser, clientID string) (isAdmin bool, err error) {
	client, err := s.clientRepo.FindClientByID(ctx, clientID)
	if err != nil {
		return false, err
	}
	if actor.Role == domain.RoleAdmin {
		if !s.authz.CapabilitiesFor(actor).CanAccessSetor(client.Setor) {
			return false, apperrors.ErrForbidden
		}
		return true, nil
	}
	if client.UserID == nil || *client.UserID != actor.UserID {
		return false, apperrors.ErrForbidden
	}
	return false, nil
}

func (s *chatService) ListMessages(ctx context.Context, actor *domain.DerivedUser, clientID string, limit, offset int) ([]domain.Message, error) {
	if _, err := s.authorize(ctx, actor, clientID); err != nil {
		return nil, err
	}
	return s.messageRepo.FindMessagesByClient(ctx, clientID, limit, offset)
}

func (s *chatService) PostMessage(ctx context.Context, actor *domain.DerivedUser, clientID, content string) (*domain.Message, error) {
	isAdmin, err := s.authorize(ctx, actor, clientID)
	if err != nil {
		return nil, err
	}
	msg := domain.Message{
		MessageID: uuid.NewString(),
		ClientID:  clientID,
		Sender:    domain.SenderClient,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if isAdmin {
		msg.Sender = domain.SenderAdmin
		msg.AdminID = &actor.UserID
	}
	if err := s.messageRepo.SaveMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to post message: %w", err)
	}
	return &msg, nil
}

func (s *chatService) MarkRead(ctx context.Context, actor *domain.DerivedUser, clientID string) error {
	isAdmin, err := s.authorize(ctx, actor, clientID)
	if err != nil {
		return err
	}
	return s.messageRepo.MarkRead(ctx, clientID, isAdmin, time.Now())
}

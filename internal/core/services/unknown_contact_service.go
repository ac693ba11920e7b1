package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/contaflow/backoffice/internal/apperrors"
	"github.com/contaflow/backoffice/internal/core/domain"
	"github.com/contaflow/backoffice/internal/core/ports"
)

// unknownContactService manages the queue of inbound senders that
// matched no client record.
type unknownContactService struct {
	unknownRepo ports.UnknownContactRepository
	clientRepo  ports.ClientRepository
	authz       ports.AuthzSvcFacade
}

func NewUnknownContactService(unknownRepo ports.UnknownContactRepository, clientRepo ports.ClientRepository, authz ports.AuthzSvcFacade) ports.UnknownContactSvcFacade {
	return &unknownContactService{unknownRepo: unknownRepo, clientRepo: clientRepo, authz: authz}
}

func (s *unknownContactService) ListContacts(ctx context.Context, limit, offset int) ([]domain.UnknownContact, error) {
	return s.unknownRepo.FindContacts(ctx, limit, offset)
}

// ResolveContact writes the contact's phone onto the client record so
// the next inbound message matches, then drops the pending entry.
func (s *unknownContactService) ResolveContact(ctx context.Context, actor *domain.DerivedUser, contactID, clientID string) error {
	contact, err := s.unknownRepo.FindContactByID(ctx, contactID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to load unknown contact: %w", err)
	}

	client, err := s.clientRepo.FindClientByID(ctx, clientID)
	if err != nil {
		return fmt.Errorf("resolve target lookup failed: %w", err)
	}
	if !s.authz.CapabilitiesFor(actor).CanAccessSetor(client.Setor) {
		return apperrors.ErrForbidden
	}

	client.Telefone = contact.PhoneNumber
	client.LastUpdatedAt = time.Now()
	client.LastUpdatedBy = actor.UserID
	if err := s.clientRepo.UpdateClient(ctx, *client); err != nil {
		return fmt.Errorf("failed to link phone to client: %w", err)
	}
	return s.unknownRepo.DeleteContact(ctx, contactID)
}

func (s *unknownContactService) DiscardContact(ctx context.Context, contactID string) error {
	return s.unknownRepo.DeleteContact(ctx, contactID)
}

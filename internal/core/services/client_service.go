package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/contaflow/backoffice/internal/apperrors"
	"github.com/contaflow/backoffice/internal/core/domain"
	"github.com/contaflow/backoffice/internal/core/ports"
	"github.com/contaflow/backoffice/internal/dto"
	"github.com/contaflow/backoffice/internal/utils"
)

// clientService implements ClientSvcFacade. Sector gating goes through
// the central capability set; CNPJs are validated and stored formatted.
type clientService struct {
	clientRepo ports.ClientRepository
	userSvc    ports.UserSvcFacade
	authz      ports.AuthzSvcFacade
}

func NewClientService(clientRepo ports.ClientRepository, userSvc ports.UserSvcFacade, authz ports.AuthzSvcFacade) ports.ClientSvcFacade {
	return &clientService{clientRepo: clientRepo, userSvc: userSvc, authz: authz}
}

func (s *clientService) CreateClient(ctx context.Context, actor *domain.DerivedUser, req dto.CreateClientRequest) (*domain.Client, error) {
	caps := s.authz.CapabilitiesFor(actor)
	if !domain.ValidSetor(req.Setor) {
		return nil, fmt.Errorf("invalid setor %q: %w", req.Setor, apperrors.ErrValidation)
	}
	if !caps.CanAccessSetor(req.Setor) {
		return nil, fmt.Errorf("actor may not create clients in setor %s: %w", req.Setor, apperrors.ErrForbidden)
	}

	cnpj := req.CNPJ
	if cnpj != "" {
		if !utils.ValidCNPJ(cnpj) {
			return nil, fmt.Errorf("invalid CNPJ %q: %w", cnpj, apperrors.ErrValidation)
		}
		cnpj = utils.FormatCNPJ(cnpj)
	}

	fee := decimal.Zero
	if req.MonthlyFee != nil {
		if req.MonthlyFee.IsNegative() {
			return nil, fmt.Errorf("monthly fee cannot be negative: %w", apperrors.ErrValidation)
		}
		fee = *req.MonthlyFee
	}

	now := time.Now()
	client := domain.Client{
		ClientID:      uuid.NewString(),
		RazaoSocial:   req.RazaoSocial,
		NomeFantasia:  req.NomeFantasia,
		CNPJ:          cnpj,
		Setor:         req.Setor,
		Email:         req.Email,
		Telefone:      req.Telefone,
		Endereco:      req.Endereco,
		Cidade:        req.Cidade,
		Estado:        req.Estado,
		CEP:           req.CEP,
		ResponsibleID: req.ResponsibleID,
		MonthlyFee:    fee,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}

	// Optionally provision a login identity for the client contact.
	if req.ProvisionLogin != nil {
		provisioned, err := s.userSvc.ProvisionUser(ctx, actor, *req.ProvisionLogin)
		if err != nil {
			return nil, fmt.Errorf("failed to provision client login: %w", err)
		}
		client.UserID = &provisioned.User.UserID
	}

	if err := s.clientRepo.SaveClient(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return &client, nil
}

func (s *clientService) GetClient(ctx context.Context, actor *domain.DerivedUser, clientID string) (*domain.Client, error) {
	client, err := s.clientRepo.FindClientByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !s.authz.CapabilitiesFor(actor).CanAccessSetor(client.Setor) {
		return nil, apperrors.ErrForbidden
	}
	return client, nil
}

func (s *clientService) ListClients(ctx context.Context, actor *domain.DerivedUser, params dto.ListClientsParams) ([]domain.Client, error) {
	caps := s.authz.CapabilitiesFor(actor)
	filter := ports.ClientFilter{
		Query:  params.Query,
		Limit:  params.Limit,
		Offset: params.Offset,
	}
	if params.Setor != "" {
		setor := domain.Setor(params.Setor)
		if !domain.ValidSetor(setor) {
			return nil, fmt.Errorf("invalid setor filter %q: %w", params.Setor, apperrors.ErrValidation)
		}
		if !caps.CanAccessSetor(setor) {
			return nil, apperrors.ErrForbidden
		}
		filter.Setores = []domain.Setor{setor}
	} else if !caps.CanViewAllSectors {
		if len(caps.VisibleSetores) == 0 {
			return []domain.Client{}, nil
		}
		filter.Setores = caps.VisibleSetores
	}
	return s.clientRepo.FindClients(ctx, filter)
}

func (s *clientService) UpdateClient(ctx context.Context, actor *domain.DerivedUser, clientID string, req dto.UpdateClientRequest) (*domain.Client, error) {
	client, err := s.GetClient(ctx, actor, clientID)
	if err != nil {
		return nil, err
	}
	caps := s.authz.CapabilitiesFor(actor)

	if req.RazaoSocial != nil {
		client.RazaoSocial = *req.RazaoSocial
	}
	if req.NomeFantasia != nil {
		client.NomeFantasia = *req.NomeFantasia
	}
	if req.CNPJ != nil {
		cnpj := *req.CNPJ
		if cnpj != "" {
			if !utils.ValidCNPJ(cnpj) {
				return nil, fmt.Errorf("invalid CNPJ %q: %w", cnpj, apperrors.ErrValidation)
			}
			cnpj = utils.FormatCNPJ(cnpj)
		}
		client.CNPJ = cnpj
	}
	if req.Setor != nil {
		if !domain.ValidSetor(*req.Setor) {
			return nil, fmt.Errorf("invalid setor %q: %w", *req.Setor, apperrors.ErrValidation)
		}
		if !caps.CanAccessSetor(*req.Setor) {
			return nil, apperrors.ErrForbidden
		}
		client.Setor = *req.Setor
	}
	if req.Email != nil {
		client.Email = *req.Email
	}
	if req.Telefone != nil {
		client.Telefone = *req.Telefone
	}
	if req.Endereco != nil {
		client.Endereco = *req.Endereco
	}
	if req.Cidade != nil {
		client.Cidade = *req.Cidade
	}
	if req.Estado != nil {
		client.Estado = *req.Estado
	}
	if req.CEP != nil {
		client.CEP = *req.CEP
	}
	if req.ResponsibleID != nil {
		client.ResponsibleID = req.ResponsibleID
	}
	if req.MonthlyFee != nil {
		if req.MonthlyFee.IsNegative() {
			return nil, fmt.Errorf("monthly fee cannot be negative: %w", apperrors.ErrValidation)
		}
		client.MonthlyFee = *req.MonthlyFee
	}

	client.LastUpdatedAt = time.Now()
	client.LastUpdatedBy = actor.UserID
	if err := s.clientRepo.UpdateClient(ctx, *client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *clientService) DeleteClient(ctx context.Context, actor *domain.DerivedUser, clientID string) error {
	if _, err := s.GetClient(ctx, actor, clientID); err != nil {
		return err
	}
	return s.clientRepo.MarkClientDeleted(ctx, clientID, time.Now(), actor.UserID)
}

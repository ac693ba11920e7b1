package services

import (
	"github.com/contaflow/backoffice/internal/core/domain"
	"github.com/contaflow/backoffice/internal/core/ports"
)

// authzService centralizes the sector/role gating every feature module
// consumes. Master admins and admins assigned TODOS or COORDENACAO see
// all sectors; other admins see only their own; an admin without a
// sector assignment sees nothing until one is assigned.
type authzService struct{}

func NewAuthzService() ports.AuthzSvcFacade {
	return &authzService{}
}

func (s *authzService) CapabilitiesFor(user *domain.DerivedUser) domain.Capabilities {
	caps := domain.Capabilities{}
	if user == nil || user.Role != domain.RoleAdmin {
		return caps
	}

	caps.CanCreateAdmin = user.IsMasterAdmin
	caps.CanAssignSector = user.IsMasterAdmin

	if user.IsMasterAdmin {
		caps.CanViewAllSectors = true
		return caps
	}
	if user.Setor != nil {
		switch *user.Setor {
		case domain.SetorTodos, domain.SetorCoordenacao:
			caps.CanViewAllSectors = true
		default:
			caps.VisibleSetores = []domain.Setor{*user.Setor}
		}
	}
	return caps
}

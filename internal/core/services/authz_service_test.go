package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/contaflow/backoffice/internal/core/domain"
	"github.com/contaflow/backoffice/internal/core/services"
)

func adminWithSetor(s domain.Setor) *domain.DerivedUser {
	return &domain.DerivedUser{
		User:  domain.User{UserID: "admin-1"},
		Role:  domain.RoleAdmin,
		Setor: &s,
	}
}

func TestCapabilitiesMasterAdmin(t *testing.T) {
	authz := services.NewAuthzService()
	u := adminWithSetor(domain.SetorFiscal)
	u.IsMasterAdmin = true

	caps := authz.CapabilitiesFor(u)
	assert.True(t, caps.CanViewAllSectors)
	assert.True(t, caps.CanCreateAdmin)
	assert.True(t, caps.CanAssignSector)
	assert.True(t, caps.CanAccessSetor(domain.SetorContabil))
}

func TestCapabilitiesCoordenacaoAndTodosSeeEverything(t *testing.T) {
	authz := services.NewAuthzService()

	for _, s := range []domain.Setor{domain.SetorTodos, domain.SetorCoordenacao} {
		caps := authz.CapabilitiesFor(adminWithSetor(s))
		assert.True(t, caps.CanViewAllSectors, "setor %s", s)
		assert.False(t, caps.CanCreateAdmin, "setor %s", s)
		assert.False(t, caps.CanAssignSector, "setor %s", s)
	}
}

func TestCapabilitiesSectorAdminSeesOnlyOwnSector(t *testing.T) {
	authz := services.NewAuthzService()
	caps := authz.CapabilitiesFor(adminWithSetor(domain.SetorFiscal))

	assert.False(t, caps.CanViewAllSectors)
	assert.Equal(t, []domain.Setor{domain.SetorFiscal}, caps.VisibleSetores)
	assert.True(t, caps.CanAccessSetor(domain.SetorFiscal))
	assert.False(t, caps.CanAccessSetor(domain.SetorContabil))
}

func TestCapabilitiesAdminWithoutSectorSeesNothing(t *testing.T) {
	authz := services.NewAuthzService()
	caps := authz.CapabilitiesFor(&domain.DerivedUser{
		User: domain.User{UserID: "admin-2"},
		Role: domain.RoleAdmin,
	})

	assert.False(t, caps.CanViewAllSectors)
	assert.Empty(t, caps.VisibleSetores)
	assert.False(t, caps.CanAccessSetor(domain.SetorFiscal))
}

func TestCapabilitiesNonAdminHasNone(t *testing.T) {
	authz := services.NewAuthzService()
	caps := authz.CapabilitiesFor(&domain.DerivedUser{
		User: domain.User{UserID: "user-1"},
		Role: domain.RoleUser,
	})

	assert.False(t, caps.CanViewAllSectors)
	assert.False(t, caps.CanCreateAdmin)
	assert.Empty(t, caps.VisibleSetores)

	assert.Equal(t, domain.Capabilities{}, authz.CapabilitiesFor(nil))
}

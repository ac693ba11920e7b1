package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/contaflow/backoffice/internal/apperrors"
	"github.com/contaflow/backoffice/internal/core/domain"
	"github.com/contaflow/backoffice/internal/core/services"
)

func buildSheet(t *testing.T, header []any, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetList()[0]
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestImportClientsRejectsNonAdmin(t *testing.T) {
	svc := services.NewClientService(&mockClientRepository{}, nil, services.NewAuthzService())

	actor := &domain.DerivedUser{User: domain.User{UserID: "u1"}, Role: domain.RoleUser}
	_, err := svc.ImportClients(context.Background(), actor, buildSheet(t, []any{"Razão Social"}, nil))
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestImportClientsParsesColumns(t *testing.T) {
	repo := &mockClientRepository{}
	var saved []domain.Client
	repo.SaveClientsFn = func(ctx context.Context, clients []domain.Client) error {
		saved = append(saved, clients...)
		return nil
	}
	svc := services.NewClientService(repo, nil, services.NewAuthzService())
	actor := adminWithSetor(domain.SetorTodos)

	xlsx := buildSheet(t,
		[]any{"Razão Social", "Nome Fantasia", "CNPJ", "Contato", "Setor", "Honorários"},
		[][]any{
			{"ACME LTDA", "Acme", "11222333000181", "31 99999-9999", "Contábil", "1.234,56"},
			{"", "Padaria do Zé", "", "ze@padaria.com.br", "", ""},
		})

	result, err := svc.ImportClients(context.Background(), actor, xlsx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalRows)
	assert.Equal(t, 2, result.Imported)
	assert.Empty(t, result.Errors)

	require.Len(t, saved, 2)
	acme := saved[0]
	assert.Equal(t, "ACME LTDA", acme.RazaoSocial)
	assert.Equal(t, "11.222.333/0001-81", acme.CNPJ)
	assert.Equal(t, "31 99999-9999", acme.Telefone)
	assert.Empty(t, acme.Email)
	assert.Equal(t, domain.SetorContabil, acme.Setor)
	assert.True(t, acme.MonthlyFee.Equal(decimal.RequireFromString("1234.56")))

	// razão social falls back to nome; an @-shaped contato lands in email
	padaria := saved[1]
	assert.Equal(t, "Padaria do Zé", padaria.RazaoSocial)
	assert.Equal(t, "ze@padaria.com.br", padaria.Email)
	assert.Empty(t, padaria.Telefone)
	assert.Equal(t, domain.SetorCadastro, padaria.Setor)
}

func TestImportClientsCollectsRowErrors(t *testing.T) {
	svc := services.NewClientService(&mockClientRepository{}, nil, services.NewAuthzService())
	actor := adminWithSetor(domain.SetorFiscal)

	xlsx := buildSheet(t,
		[]any{"Razão Social", "CNPJ", "Setor"},
		[][]any{
			{"", "", ""},                            // no name at all
			{"Boa Fiscal", "", "Fiscal"},            // fine
			{"CNPJ Ruim", "123", "Fiscal"},          // fails the check digits
			{"Setor Ruim", "", "Jurídico"},          // not a department
			{"Fora do Setor", "", "Contábil"},       // outside the actor's sector
		})

	result, err := svc.ImportClients(context.Background(), actor, xlsx)
	require.NoError(t, err)
	assert.Equal(t, 5, result.TotalRows)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Errors, 4)
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.Contains(t, result.Errors[1].Reason, "invalid CNPJ")
	assert.Contains(t, result.Errors[2].Reason, "invalid setor")
	assert.Contains(t, result.Errors[3].Reason, "not permitted")
}

func TestImportClientsChunksInserts(t *testing.T) {
	repo := &mockClientRepository{}
	var chunkSizes []int
	repo.SaveClientsFn = func(ctx context.Context, clients []domain.Client) error {
		chunkSizes = append(chunkSizes, len(clients))
		return nil
	}
	svc := services.NewClientService(repo, nil, services.NewAuthzService())
	actor := adminWithSetor(domain.SetorTodos)

	rows := make([][]any, 25)
	for i := range rows {
		rows[i] = []any{"Cliente"}
	}
	result, err := svc.ImportClients(context.Background(), actor, buildSheet(t, []any{"Razão Social"}, rows))
	require.NoError(t, err)

	assert.Equal(t, []int{10, 10, 5}, chunkSizes)
	assert.Equal(t, 25, result.Imported)
	assert.Empty(t, result.Errors)
}

func TestImportClientsFailedChunkLosesOnlyItsRows(t *testing.T) {
	repo := &mockClientRepository{}
	call := 0
	repo.SaveClientsFn = func(ctx context.Context, clients []domain.Client) error {
		call++
		if call == 2 {
			return errors.New("unique violation")
		}
		return nil
	}
	svc := services.NewClientService(repo, nil, services.NewAuthzService())
	actor := adminWithSetor(domain.SetorTodos)

	rows := make([][]any, 25)
	for i := range rows {
		rows[i] = []any{"Cliente"}
	}
	result, err := svc.ImportClients(context.Background(), actor, buildSheet(t, []any{"Razão Social"}, rows))
	require.NoError(t, err)

	assert.Equal(t, 15, result.Imported)
	require.Len(t, result.Errors, 10)
	for _, e := range result.Errors {
		assert.Equal(t, "insert batch failed", e.Reason)
	}
	// the failed chunk was rows 12 through 21 of the sheet
	assert.Equal(t, 12, result.Errors[0].Row)
	assert.Equal(t, 21, result.Errors[9].Row)
}

func TestImportClientsEmptySheet(t *testing.T) {
	svc := services.NewClientService(&mockClientRepository{}, nil, services.NewAuthzService())
	actor := adminWithSetor(domain.SetorTodos)

	result, err := svc.ImportClients(context.Background(), actor, buildSheet(t, []any{"Razão Social"}, nil))
	require.NoError(t, err)
	assert.Zero(t, result.TotalRows)
	assert.Zero(t, result.Imported)
}

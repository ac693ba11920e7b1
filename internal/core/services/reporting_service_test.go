package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contaflow/backoffice/internal/core/domain"
	"github.com/contaflow/backoffice/internal/core/services"
)

func TestDashboardStatsAggregates(t *testing.T) {
	repo := &mockReportingRepository{
		CountClientsPerSetorFn: func(ctx context.Context, setores []domain.Setor) (map[domain.Setor]int, error) {
			return map[domain.Setor]int{domain.SetorFiscal: 12, domain.SetorContabil: 7}, nil
		},
		CountTasksPerStatusFn: func(ctx context.Context, setores []domain.Setor) (map[domain.TaskStatus]int, error) {
			return map[domain.TaskStatus]int{domain.StatusTodo: 3, domain.StatusLate: 1}, nil
		},
		CountDocumentsSinceFn: func(ctx context.Context, setores []domain.Setor, since time.Time) (int, error) {
			return 9, nil
		},
		CountActiveConversationsFn: func(ctx context.Context) (int, error) {
			return 4, nil
		},
		SumMonthlyFeesFn: func(ctx context.Context, setores []domain.Setor) (decimal.Decimal, error) {
			return decimal.RequireFromString("1500.50"), nil
		},
	}
	unknown := &mockUnknownContactRepository{
		CountContactsFn: func(ctx context.Context) (int, error) { return 2, nil },
	}
	svc := services.NewReportingService(repo, unknown, services.NewAuthzService())

	actor := adminWithSetor(domain.SetorTodos)
	stats, err := svc.DashboardStats(context.Background(), actor)
	require.NoError(t, err)

	assert.Equal(t, 12, stats.ClientsPerSetor[domain.SetorFiscal])
	assert.Equal(t, 3, stats.TasksPerStatus[domain.StatusTodo])
	assert.Equal(t, 9, stats.DocumentsThisMonth)
	assert.Equal(t, 4, stats.ActiveConversations)
	assert.Equal(t, 2, stats.UnknownContacts)
	assert.True(t, stats.MonthlyFeeRevenue.Equal(decimal.RequireFromString("1500.50")))
	assert.Empty(t, stats.FailedStats)
}

func TestDashboardStatsScopesSectorAdmin(t *testing.T) {
	var scopedTo []domain.Setor
	repo := &mockReportingRepository{
		CountClientsPerSetorFn: func(ctx context.Context, setores []domain.Setor) (map[domain.Setor]int, error) {
			scopedTo = setores
			return map[domain.Setor]int{}, nil
		},
	}
	svc := services.NewReportingService(repo, &mockUnknownContactRepository{}, services.NewAuthzService())

	_, err := svc.DashboardStats(context.Background(), adminWithSetor(domain.SetorFiscal))
	require.NoError(t, err)
	assert.Equal(t, []domain.Setor{domain.SetorFiscal}, scopedTo)
}

func TestDashboardStatsSurvivesFailedSource(t *testing.T) {
	repo := &mockReportingRepository{
		CountActiveConversationsFn: func(ctx context.Context) (int, error) {
			return 0, errors.New("query timeout")
		},
		CountDocumentsSinceFn: func(ctx context.Context, setores []domain.Setor, since time.Time) (int, error) {
			return 5, nil
		},
	}
	svc := services.NewReportingService(repo, &mockUnknownContactRepository{}, services.NewAuthzService())

	stats, err := svc.DashboardStats(context.Background(), adminWithSetor(domain.SetorTodos))
	require.NoError(t, err)

	assert.Equal(t, []string{"activeConversations"}, stats.FailedStats)
	assert.Zero(t, stats.ActiveConversations)
	// siblings still report
	assert.Equal(t, 5, stats.DocumentsThisMonth)
}

package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/contaflow/backoffice/internal/core/domain"
	"github.com/contaflow/backoffice/internal/core/ports"
)

// reportingService fans the independent dashboard queries out
// concurrently. A failed query zeroes its figure and flags its name;
// the rest still return.
type reportingService struct {
	reportingRepo ports.ReportingRepository
	unknownRepo   ports.UnknownContactRepository
	authz         ports.AuthzSvcFacade
}

func NewReportingService(reportingRepo ports.ReportingRepository, unknownRepo ports.UnknownContactRepository, authz ports.AuthzSvcFacade) ports.ReportingSvcFacade {
	return &reportingService{reportingRepo: reportingRepo, unknownRepo: unknownRepo, authz: authz}
}

func (s *reportingService) DashboardStats(ctx context.Context, actor *domain.DerivedUser) (*domain.DashboardStats, error) {
	caps := s.authz.CapabilitiesFor(actor)
	var setores []domain.Setor
	if !caps.CanViewAllSectors {
		setores = caps.VisibleSetores
	}

	stats := &domain.DashboardStats{
		ClientsPerSetor: map[domain.Setor]int{},
		TasksPerStatus:  map[domain.TaskStatus]int{},
	}
	var mu sync.Mutex
	fail := func(name string, err error) {
		slog.WarnContext(ctx, "dashboard stat failed",
			slog.String("stat", name), slog.String("error", err.Error()))
		mu.Lock()
		stats.FailedStats = append(stats.FailedStats, name)
		mu.Unlock()
	}

	monthStart := time.Now().AddDate(0, 0, 1-time.Now().Day()).Truncate(24 * time.Hour)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := s.reportingRepo.CountClientsPerSetor(gctx, setores)
		if err != nil {
			fail("clientsPerSetor", err)
			return nil
		}
		mu.Lock()
		stats.ClientsPerSetor = counts
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		counts, err := s.reportingRepo.CountTasksPerStatus(gctx, setores)
		if err != nil {
			fail("tasksPerStatus", err)
			return nil
		}
		mu.Lock()
		stats.TasksPerStatus = counts
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		count, err := s.reportingRepo.CountDocumentsSince(gctx, setores, monthStart)
		if err != nil {
			fail("documentsThisMonth", err)
			return nil
		}
		mu.Lock()
		stats.DocumentsThisMonth = count
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		count, err := s.reportingRepo.CountActiveConversations(gctx)
		if err != nil {
			fail("activeConversations", err)
			return nil
		}
		mu.Lock()
		stats.ActiveConversations = count
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		count, err := s.unknownRepo.CountContacts(gctx)
		if err != nil {
			fail("unknownContacts", err)
			return nil
		}
		mu.Lock()
		stats.UnknownContacts = count
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		total, err := s.reportingRepo.SumMonthlyFees(gctx, setores)
		if err != nil {
			fail("monthlyFeeRevenue", err)
			return nil
		}
		mu.Lock()
		stats.MonthlyFeeRevenue = total
		mu.Unlock()
		return nil
	})

	// Every worker returns nil; Wait only synchronizes the fan-in.
	_ = g.Wait()
	return stats, nil
}

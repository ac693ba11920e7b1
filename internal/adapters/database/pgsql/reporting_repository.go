package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/contaflow/backoffice/internal/core/domain"
	"github.com/contaflow/backoffice/internal/core/ports"
)

type PgxReportingRepository struct {
	db *pgxpool.Pool
}

func NewReportingRepository(db *pgxpool.Pool) ports.ReportingRepository {
	return &PgxReportingRepository{db: db}
}

var _ ports.ReportingRepository = (*PgxReportingRepository)(nil)

func setorStrings(setores []domain.Setor) []string {
	ss := make([]string, len(setores))
	for i, s := range setores {
		ss[i] = string(s)
	}
	return ss
}

func (r *PgxReportingRepository) CountClientsPerSetor(ctx context.Context, setores []domain.Setor) (map[domain.Setor]int, error) {
	query := `SELECT setor, COUNT(*) FROM clients WHERE deleted_at IS NULL`
	args := []any{}
	if len(setores) > 0 {
		query += ` AND setor = ANY($1)`
		args = append(args, setorStrings(setores))
	}
	query += ` GROUP BY setor;`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count clients per setor: %w", err)
	}
	defer rows.Close()

	counts := map[domain.Setor]int{}
	for rows.Next() {
		var setor domain.Setor
		var count int
		if err := rows.Scan(&setor, &count); err != nil {
			return nil, fmt.Errorf("failed to scan client count row: %w", err)
		}
		counts[setor] = count
	}
	return counts, rows.Err()
}

func (r *PgxReportingRepository) CountTasksPerStatus(ctx context.Context, setores []domain.Setor) (map[domain.TaskStatus]int, error) {
	query := `SELECT status, COUNT(*) FROM tasks WHERE deleted_at IS NULL`
	args := []any{}
	if len(setores) > 0 {
		query += ` AND setor = ANY($1)`
		args = append(args, setorStrings(setores))
	}
	query += ` GROUP BY status;`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks per status: %w", err)
	}
	defer rows.Close()

	counts := map[domain.TaskStatus]int{}
	for rows.Next() {
		var status domain.TaskStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan task count row: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *PgxReportingRepository) CountDocumentsSince(ctx context.Context, setores []domain.Setor, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM documents WHERE deleted_at IS NULL AND created_at >= $1`
	args := []any{since}
	if len(setores) > 0 {
		query += ` AND setor = ANY($2)`
		args = append(args, setorStrings(setores))
	}
	query += `;`

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count recent documents: %w", err)
	}
	return count, nil
}

func (r *PgxReportingRepository) CountActiveConversations(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM conversations WHERE status <> $1;`, domain.ConversationEnded,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active conversations: %w", err)
	}
	return count, nil
}

func (r *PgxReportingRepository) SumMonthlyFees(ctx context.Context, setores []domain.Setor) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(monthly_fee), 0) FROM clients WHERE deleted_at IS NULL`
	args := []any{}
	if len(setores) > 0 {
		query += ` AND setor = ANY($1)`
		args = append(args, setorStrings(setores))
	}
	query += `;`

	var total decimal.Decimal
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum monthly fees: %w", err)
	}
	return total, nil
}

package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contaflow/backoffice/internal/apperrors"
	"github.com/contaflow/backoffice/internal/core/domain"
	"github.com/contaflow/backoffice/internal/core/ports"
)

type PgxAPITokenRepository struct {
	db *pgxpool.Pool
}

func NewAPITokenRepository(db *pgxpool.Pool) ports.APITokenRepository {
	return &PgxAPITokenRepository{db: db}
}

var _ ports.APITokenRepository = (*PgxAPITokenRepository)(nil)

const apiTokenColumns = `id, user_id, name, token_hash, last_used_at, expires_at, created_at, revoked_at`

func scanAPIToken(row pgx.Row) (*domain.APIToken, error) {
	var t domain.APIToken
	err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.TokenHash, &t.LastUsedAt, &t.ExpiresAt, &t.CreatedAt, &t.RevokedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PgxAPITokenRepository) SaveToken(ctx context.Context, token domain.APIToken) error {
	query := `
		INSERT INTO api_tokens (id, user_id, name, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.db.Exec(ctx, query,
		token.ID, token.UserID, token.Name, token.TokenHash, token.ExpiresAt, token.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("token already exists: %w", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save API token: %w", err)
	}
	return nil
}

func (r *PgxAPITokenRepository) FindTokenByHash(ctx context.Context, tokenHash string) (*domain.APIToken, error) {
	query := `SELECT ` + apiTokenColumns + ` FROM api_tokens WHERE token_hash = $1;`
	token, err := scanAPIToken(r.db.QueryRow(ctx, query, tokenHash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find API token by hash: %w", err)
	}
	return token, nil
}

func (r *PgxAPITokenRepository) FindTokensByUser(ctx context.Context, userID string) ([]domain.APIToken, error) {
	query := `SELECT ` + apiTokenColumns + ` FROM api_tokens WHERE user_id = $1 ORDER BY created_at DESC;`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query API tokens: %w", err)
	}
	defer rows.Close()

	tokens := []domain.APIToken{}
	for rows.Next() {
		t, err := scanAPIToken(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan API token row: %w", err)
		}
		tokens = append(tokens, *t)
	}
	return tokens, rows.Err()
}

func (r *PgxAPITokenRepository) TouchToken(ctx context.Context, tokenID string, usedAt time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE api_tokens SET last_used_at = $1 WHERE id = $2;`, usedAt, tokenID)
	if err != nil {
		return fmt.Errorf("failed to touch API token: %w", err)
	}
	return nil
}

func (r *PgxAPITokenRepository) RevokeToken(ctx context.Context, tokenID string, revokedAt time.Time) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE api_tokens SET revoked_at = $1 WHERE id = $2 AND revoked_at IS NULL;`, revokedAt, tokenID)
	if err != nil {
		return fmt.Errorf("failed to revoke API token: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

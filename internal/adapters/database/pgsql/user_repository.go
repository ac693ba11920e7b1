package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contaflow/backoffice/internal/apperrors"
	"github.com/contaflow/backoffice/internal/core/domain"
	"github.com/contaflow/backoffice/internal/core/ports"
)

// PgxUserRepository persists users, role rows, sector assignments and
// the master-admin allow-list.
type PgxUserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) ports.UserRepository {
	return &PgxUserRepository{db: db}
}

var _ ports.UserRepository = (*PgxUserRepository)(nil)

const userColumns = `user_id, username, email, password_hash, name, telefone, auth_provider,
	created_at, created_by, last_updated_at, last_updated_by, deleted_at,
	refresh_token_hash, refresh_token_expiry_time`

// userColumnsAliased qualifies the same list for joined queries.
const userColumnsAliased = `u.user_id, u.username, u.email, u.password_hash, u.name, u.telefone, u.auth_provider,
	u.created_at, u.created_by, u.last_updated_at, u.last_updated_by, u.deleted_at,
	u.refresh_token_hash, u.refresh_token_expiry_time`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var passwordHash, telefone, provider, refreshHash *string
	err := row.Scan(
		&u.UserID, &u.Username, &u.Email, &passwordHash, &u.Name, &telefone, &provider,
		&u.CreatedAt, &u.CreatedBy, &u.LastUpdatedAt, &u.LastUpdatedBy, &u.DeletedAt,
		&refreshHash, &u.RefreshTokenExpiryTime,
	)
	if err != nil {
		return nil, err
	}
	if passwordHash != nil {
		u.PasswordHash = *passwordHash
	}
	if telefone != nil {
		u.Telefone = *telefone
	}
	if provider != nil {
		u.AuthProvider = *provider
	}
	if refreshHash != nil {
		u.RefreshTokenHash = *refreshHash
	}
	return &u, nil
}

func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	query := `
		INSERT INTO users (user_id, username, email, password_hash, name, telefone, auth_provider,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.db.Exec(ctx, query,
		user.UserID, user.Username, user.Email, user.PasswordHash, user.Name,
		nullIfEmpty(user.Telefone), nullIfEmpty(user.AuthProvider),
		user.CreatedAt, user.CreatedBy, user.LastUpdatedAt, user.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("username or email already taken: %w", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1 AND deleted_at IS NULL;`
	user, err := scanUser(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by ID %s: %w", userID, err)
	}
	return user, nil
}

func (r *PgxUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 AND deleted_at IS NULL;`
	user, err := scanUser(r.db.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}
	return user, nil
}

func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1) AND deleted_at IS NULL;`
	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

func (r *PgxUserRepository) FindUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE deleted_at IS NULL ORDER BY created_at DESC LIMIT $1 OFFSET $2;`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, *u)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", rows.Err())
	}
	return users, nil
}

func (r *PgxUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	query := `
		UPDATE users
		SET name = $1, telefone = $2, last_updated_at = $3, last_updated_by = $4
		WHERE user_id = $5 AND deleted_at IS NULL;
	`
	cmdTag, err := r.db.Exec(ctx, query,
		user.Name, nullIfEmpty(user.Telefone), user.LastUpdatedAt, user.LastUpdatedBy, user.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("user not found or already deleted: %w", apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxUserRepository) UpdatePassword(ctx context.Context, userID, passwordHash, updatedBy string) error {
	query := `
		UPDATE users
		SET password_hash = $1, last_updated_at = now(), last_updated_by = $2
		WHERE user_id = $3 AND deleted_at IS NULL;
	`
	cmdTag, err := r.db.Exec(ctx, query, passwordHash, updatedBy, userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxUserRepository) MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time, deletedBy string) error {
	query := `
		UPDATE users
		SET deleted_at = $1, last_updated_at = $1, last_updated_by = $2
		WHERE user_id = $3 AND deleted_at IS NULL;
	`
	cmdTag, err := r.db.Exec(ctx, query, deletedAt, deletedBy, userID)
	if err != nil {
		return fmt.Errorf("failed to mark user as deleted: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxUserRepository) UpdateRefreshToken(ctx context.Context, userID, refreshTokenHash string, expiry time.Time) error {
	query := `UPDATE users SET refresh_token_hash = $1, refresh_token_expiry_time = $2 WHERE user_id = $3 AND deleted_at IS NULL;`
	cmdTag, err := r.db.Exec(ctx, query, refreshTokenHash, expiry, userID)
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxUserRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	query := `UPDATE users SET refresh_token_hash = NULL, refresh_token_expiry_time = NULL WHERE user_id = $1;`
	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	return nil
}

func (r *PgxUserRepository) FindRoles(ctx context.Context, userID string) ([]domain.RoleAssignment, error) {
	query := `SELECT user_id, role, created_at, created_by FROM user_roles WHERE user_id = $1;`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query roles: %w", err)
	}
	defer rows.Close()

	roles := []domain.RoleAssignment{}
	for rows.Next() {
		var ra domain.RoleAssignment
		if err := rows.Scan(&ra.UserID, &ra.Role, &ra.CreatedAt, &ra.CreatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan role row: %w", err)
		}
		roles = append(roles, ra)
	}
	return roles, rows.Err()
}

func (r *PgxUserRepository) FindSetor(ctx context.Context, userID string) (*domain.Setor, error) {
	query := `SELECT setor FROM admin_setores WHERE user_id = $1;`
	var setor domain.Setor
	err := r.db.QueryRow(ctx, query, userID).Scan(&setor)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query sector assignment: %w", err)
	}
	return &setor, nil
}

func (r *PgxUserRepository) IsMasterAdmin(ctx context.Context, userID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM master_admins WHERE user_id = $1);`
	var exists bool
	if err := r.db.QueryRow(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to query master-admin allow-list: %w", err)
	}
	return exists, nil
}

func (r *PgxUserRepository) SaveRole(ctx context.Context, assignment domain.RoleAssignment) error {
	query := `
		INSERT INTO user_roles (user_id, role, created_at, created_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, role) DO NOTHING;
	`
	_, err := r.db.Exec(ctx, query, assignment.UserID, assignment.Role, assignment.CreatedAt, assignment.CreatedBy)
	if err != nil {
		return fmt.Errorf("failed to save role assignment: %w", err)
	}
	return nil
}

func (r *PgxUserRepository) DeleteRole(ctx context.Context, userID string, role domain.AppRole) error {
	query := `DELETE FROM user_roles WHERE user_id = $1 AND role = $2;`
	if _, err := r.db.Exec(ctx, query, userID, role); err != nil {
		return fmt.Errorf("failed to delete role assignment: %w", err)
	}
	return nil
}

func (r *PgxUserRepository) SaveSetor(ctx context.Context, userID string, setor domain.Setor) error {
	query := `
		INSERT INTO admin_setores (user_id, setor)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET setor = EXCLUDED.setor;
	`
	if _, err := r.db.Exec(ctx, query, userID, setor); err != nil {
		return fmt.Errorf("failed to save sector assignment: %w", err)
	}
	return nil
}

// ProvisionUser writes the identity, role row and optional sector
// assignment in one transaction so a partial failure leaves no state
// behind.
func (r *PgxUserRepository) ProvisionUser(ctx context.Context, user domain.User, role domain.AppRole, setor *domain.Setor) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin provisioning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.Exec(ctx, `
		INSERT INTO users (user_id, username, email, password_hash, name, telefone, auth_provider,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`,
		user.UserID, user.Username, user.Email, user.PasswordHash, user.Name,
		nullIfEmpty(user.Telefone), nullIfEmpty(user.AuthProvider),
		user.CreatedAt, user.CreatedBy, user.LastUpdatedAt, user.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("username or email already taken: %w", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO user_roles (user_id, role, created_at, created_by)
		VALUES ($1, $2, $3, $4);
	`, user.UserID, role, user.CreatedAt, user.CreatedBy)
	if err != nil {
		return fmt.Errorf("failed to insert role row: %w", err)
	}

	if setor != nil {
		_, err = tx.Exec(ctx, `INSERT INTO admin_setores (user_id, setor) VALUES ($1, $2);`, user.UserID, *setor)
		if err != nil {
			return fmt.Errorf("failed to insert sector assignment: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit provisioning transaction: %w", err)
	}
	return nil
}

// FindAvailableAdmin resolves an admin for a (client, department) pair:
// the client's responsible admin when they serve the department, else
// any admin of the department, preferring the least recently assigned.
func (r *PgxUserRepository) FindAvailableAdmin(ctx context.Context, clientID string, setor domain.Setor) (*domain.User, error) {
	query := `
		SELECT ` + userColumnsAliased + `
		FROM users u
		JOIN user_roles r ON r.user_id = u.user_id AND r.role = 'admin'
		LEFT JOIN admin_setores s ON s.user_id = u.user_id
		LEFT JOIN clients c ON c.responsible_id = u.user_id AND c.client_id = $1
		WHERE u.deleted_at IS NULL
		  AND (s.setor = $2 OR s.setor IN ('TODOS', 'COORDENACAO'))
		ORDER BY (c.client_id IS NULL), u.last_updated_at ASC
		LIMIT 1;
	`
	user, err := scanUser(r.db.QueryRow(ctx, query, clientID, setor))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find available admin: %w", err)
	}
	return user, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

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
	"github.com/contaflow/backoffice/internal/utils"
)

type PgxClientRepository struct {
	db *pgxpool.Pool
}

func NewClientRepository(db *pgxpool.Pool) ports.ClientRepository {
	return &PgxClientRepository{db: db}
}

var _ ports.ClientRepository = (*PgxClientRepository)(nil)

const clientColumns = `client_id, razao_social, nome_fantasia, cnpj, setor, email, telefone,
	endereco, cidade, estado, cep, responsible_id, monthly_fee, user_id,
	created_at, created_by, last_updated_at, last_updated_by, deleted_at`

func scanClient(row pgx.Row) (*domain.Client, error) {
	var c domain.Client
	var nomeFantasia, cnpj, email, telefone, endereco, cidade, estado, cep *string
	err := row.Scan(
		&c.ClientID, &c.RazaoSocial, &nomeFantasia, &cnpj, &c.Setor, &email, &telefone,
		&endereco, &cidade, &estado, &cep, &c.ResponsibleID, &c.MonthlyFee, &c.UserID,
		&c.CreatedAt, &c.CreatedBy, &c.LastUpdatedAt, &c.LastUpdatedBy, &c.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	assign(&c.NomeFantasia, nomeFantasia)
	assign(&c.CNPJ, cnpj)
	assign(&c.Email, email)
	assign(&c.Telefone, telefone)
	assign(&c.Endereco, endereco)
	assign(&c.Cidade, cidade)
	assign(&c.Estado, estado)
	assign(&c.CEP, cep)
	return &c, nil
}

func clientInsertArgs(c domain.Client) []any {
	return []any{
		c.ClientID, c.RazaoSocial, nullIfEmpty(c.NomeFantasia), nullIfEmpty(c.CNPJ), c.Setor,
		nullIfEmpty(c.Email), nullIfEmpty(c.Telefone), nullIfEmpty(c.Endereco),
		nullIfEmpty(c.Cidade), nullIfEmpty(c.Estado), nullIfEmpty(c.CEP),
		c.ResponsibleID, c.MonthlyFee, c.UserID,
		c.CreatedAt, c.CreatedBy, c.LastUpdatedAt, c.LastUpdatedBy,
	}
}

const clientInsertQuery = `
	INSERT INTO clients (client_id, razao_social, nome_fantasia, cnpj, setor, email, telefone,
		endereco, cidade, estado, cep, responsible_id, monthly_fee, user_id,
		created_at, created_by, last_updated_at, last_updated_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
`

func (r *PgxClientRepository) SaveClient(ctx context.Context, client domain.Client) error {
	_, err := r.db.Exec(ctx, clientInsertQuery, clientInsertArgs(client)...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("client already exists: %w", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save client: %w", err)
	}
	return nil
}

// SaveClients inserts a batch of clients in one transaction; the whole
// batch succeeds or fails together. Chunking lives in the service layer.
func (r *PgxClientRepository) SaveClients(ctx context.Context, clients []domain.Client) error {
	if len(clients) == 0 {
		return nil
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin batch insert: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	batch := &pgx.Batch{}
	for _, c := range clients {
		batch.Queue(clientInsertQuery, clientInsertArgs(c)...)
	}
	br := tx.SendBatch(ctx, batch)
	for range clients {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("failed to insert client batch row: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close client batch: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit client batch: %w", err)
	}
	return nil
}

func (r *PgxClientRepository) FindClientByID(ctx context.Context, clientID string) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE client_id = $1 AND deleted_at IS NULL;`
	client, err := scanClient(r.db.QueryRow(ctx, query, clientID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find client by ID %s: %w", clientID, err)
	}
	return client, nil
}

// FindClientByPhone matches on the digits of the stored phone number,
// tolerating the 55 country prefix being present on either side.
func (r *PgxClientRepository) FindClientByPhone(ctx context.Context, normalizedPhone string) (*domain.Client, error) {
	digits := utils.OnlyDigits(normalizedPhone)
	query := `
		SELECT ` + clientColumns + `
		FROM clients
		WHERE deleted_at IS NULL
		  AND regexp_replace(coalesce(telefone, ''), '\D', '', 'g') IN ($1, $2)
		LIMIT 1;
	`
	withoutCountry := digits
	if len(digits) > 11 && digits[:2] == "55" {
		withoutCountry = digits[2:]
	}
	client, err := scanClient(r.db.QueryRow(ctx, query, digits, withoutCountry))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find client by phone: %w", err)
	}
	return client, nil
}

func (r *PgxClientRepository) FindClients(ctx context.Context, filter ports.ClientFilter) ([]domain.Client, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + clientColumns + ` FROM clients WHERE deleted_at IS NULL`
	args := []any{}
	idx := 1
	if len(filter.Setores) > 0 {
		query += fmt.Sprintf(" AND setor = ANY($%d)", idx)
		setores := make([]string, len(filter.Setores))
		for i, s := range filter.Setores {
			setores[i] = string(s)
		}
		args = append(args, setores)
		idx++
	}
	if filter.Query != "" {
		query += fmt.Sprintf(` AND (razao_social ILIKE $%d OR coalesce(email, '') ILIKE $%d OR coalesce(cnpj, '') ILIKE $%d)`, idx, idx, idx)
		args = append(args, "%"+filter.Query+"%")
		idx++
	}
	query += fmt.Sprintf(" ORDER BY razao_social ASC LIMIT $%d OFFSET $%d;", idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	clients := []domain.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client row: %w", err)
		}
		clients = append(clients, *c)
	}
	return clients, rows.Err()
}

func (r *PgxClientRepository) UpdateClient(ctx context.Context, client domain.Client) error {
	query := `
		UPDATE clients
		SET razao_social = $1, nome_fantasia = $2, cnpj = $3, setor = $4, email = $5,
			telefone = $6, endereco = $7, cidade = $8, estado = $9, cep = $10,
			responsible_id = $11, monthly_fee = $12,
			last_updated_at = $13, last_updated_by = $14
		WHERE client_id = $15 AND deleted_at IS NULL;
	`
	cmdTag, err := r.db.Exec(ctx, query,
		client.RazaoSocial, nullIfEmpty(client.NomeFantasia), nullIfEmpty(client.CNPJ), client.Setor,
		nullIfEmpty(client.Email), nullIfEmpty(client.Telefone), nullIfEmpty(client.Endereco),
		nullIfEmpty(client.Cidade), nullIfEmpty(client.Estado), nullIfEmpty(client.CEP),
		client.ResponsibleID, client.MonthlyFee,
		client.LastUpdatedAt, client.LastUpdatedBy, client.ClientID,
	)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("client not found or already deleted: %w", apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxClientRepository) MarkClientDeleted(ctx context.Context, clientID string, deletedAt time.Time, deletedBy string) error {
	query := `
		UPDATE clients
		SET deleted_at = $1, last_updated_at = $1, last_updated_by = $2
		WHERE client_id = $3 AND deleted_at IS NULL;
	`
	cmdTag, err := r.db.Exec(ctx, query, deletedAt, deletedBy, clientID)
	if err != nil {
		return fmt.Errorf("failed to mark client as deleted: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

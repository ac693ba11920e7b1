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

type PgxDocumentRepository struct {
	db *pgxpool.Pool
}

func NewDocumentRepository(db *pgxpool.Pool) ports.DocumentRepository {
	return &PgxDocumentRepository{db: db}
}

var _ ports.DocumentRepository = (*PgxDocumentRepository)(nil)

const documentColumns = `document_id, client_id, setor, name, size_bytes, category, reference,
	status, storage_path, urgent, created_at, created_by, last_updated_at, last_updated_by, deleted_at`

func scanDocument(row pgx.Row) (*domain.Document, error) {
	var d domain.Document
	var category, reference *string
	err := row.Scan(
		&d.DocumentID, &d.ClientID, &d.Setor, &d.Name, &d.SizeBytes, &category, &reference,
		&d.Status, &d.StoragePath, &d.Urgent,
		&d.CreatedAt, &d.CreatedBy, &d.LastUpdatedAt, &d.LastUpdatedBy, &d.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	if category != nil {
		d.Category = *category
	}
	if reference != nil {
		d.Reference = *reference
	}
	return &d, nil
}

func (r *PgxDocumentRepository) SaveDocument(ctx context.Context, doc domain.Document) error {
	query := `
		INSERT INTO documents (document_id, client_id, setor, name, size_bytes, category, reference,
			status, storage_path, urgent, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.db.Exec(ctx, query,
		doc.DocumentID, doc.ClientID, doc.Setor, doc.Name, doc.SizeBytes,
		nullIfEmpty(doc.Category), nullIfEmpty(doc.Reference),
		doc.Status, doc.StoragePath, doc.Urgent,
		doc.CreatedAt, doc.CreatedBy, doc.LastUpdatedAt, doc.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

func (r *PgxDocumentRepository) FindDocumentByID(ctx context.Context, documentID string) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE document_id = $1 AND deleted_at IS NULL;`
	doc, err := scanDocument(r.db.QueryRow(ctx, query, documentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find document by ID %s: %w", documentID, err)
	}
	return doc, nil
}

func (r *PgxDocumentRepository) FindDocuments(ctx context.Context, setores []domain.Setor, clientID *string, limit, offset int) ([]domain.Document, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + documentColumns + ` FROM documents WHERE deleted_at IS NULL`
	args := []any{}
	idx := 1
	if len(setores) > 0 {
		query += fmt.Sprintf(" AND setor = ANY($%d)", idx)
		ss := make([]string, len(setores))
		for i, s := range setores {
			ss[i] = string(s)
		}
		args = append(args, ss)
		idx++
	}
	if clientID != nil {
		query += fmt.Sprintf(" AND client_id = $%d", idx)
		args = append(args, *clientID)
		idx++
	}
	query += fmt.Sprintf(" ORDER BY urgent DESC, created_at DESC LIMIT $%d OFFSET $%d;", idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		docs = append(docs, *d)
	}
	return docs, rows.Err()
}

func (r *PgxDocumentRepository) UpdateDocument(ctx context.Context, doc domain.Document) error {
	query := `
		UPDATE documents
		SET category = $1, reference = $2, status = $3, urgent = $4,
			last_updated_at = $5, last_updated_by = $6
		WHERE document_id = $7 AND deleted_at IS NULL;
	`
	cmdTag, err := r.db.Exec(ctx, query,
		nullIfEmpty(doc.Category), nullIfEmpty(doc.Reference), doc.Status, doc.Urgent,
		doc.LastUpdatedAt, doc.LastUpdatedBy, doc.DocumentID,
	)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxDocumentRepository) MarkDocumentDeleted(ctx context.Context, documentID string, deletedAt time.Time, deletedBy string) error {
	query := `
		UPDATE documents
		SET deleted_at = $1, last_updated_at = $1, last_updated_by = $2
		WHERE document_id = $3 AND deleted_at IS NULL;
	`
	cmdTag, err := r.db.Exec(ctx, query, deletedAt, deletedBy, documentID)
	if err != nil {
		return fmt.Errorf("failed to mark document as deleted: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

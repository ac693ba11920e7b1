package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contaflow/backoffice/internal/apperrors"
	"github.com/contaflow/backoffice/internal/core/domain"
	"github.com/contaflow/backoffice/internal/core/ports"
)

type PgxUnknownContactRepository struct {
	db *pgxpool.Pool
}

func NewUnknownContactRepository(db *pgxpool.Pool) ports.UnknownContactRepository {
	return &PgxUnknownContactRepository{db: db}
}

var _ ports.UnknownContactRepository = (*PgxUnknownContactRepository)(nil)

// RegisterContact upserts on phone number, bumping the counter and the
// last-message snapshot on repeat senders.
func (r *PgxUnknownContactRepository) RegisterContact(ctx context.Context, phoneNumber, lastMessage string, at time.Time) error {
	query := `
		INSERT INTO unknown_contacts (contact_id, phone_number, last_message, message_count, first_message_at, last_message_at)
		VALUES ($1, $2, $3, 1, $4, $4)
		ON CONFLICT (phone_number) DO UPDATE
		SET last_message = EXCLUDED.last_message,
			message_count = unknown_contacts.message_count + 1,
			last_message_at = EXCLUDED.last_message_at;
	`
	_, err := r.db.Exec(ctx, query, uuid.NewString(), phoneNumber, lastMessage, at)
	if err != nil {
		return fmt.Errorf("failed to register unknown contact: %w", err)
	}
	return nil
}

func (r *PgxUnknownContactRepository) FindContacts(ctx context.Context, limit, offset int) ([]domain.UnknownContact, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `
		SELECT contact_id, phone_number, last_message, message_count, first_message_at, last_message_at
		FROM unknown_contacts
		ORDER BY last_message_at DESC
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query unknown contacts: %w", err)
	}
	defer rows.Close()

	contacts := []domain.UnknownContact{}
	for rows.Next() {
		var c domain.UnknownContact
		if err := rows.Scan(&c.ContactID, &c.PhoneNumber, &c.LastMessage, &c.MessageCount, &c.FirstMessageAt, &c.LastMessageAt); err != nil {
			return nil, fmt.Errorf("failed to scan unknown contact row: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (r *PgxUnknownContactRepository) FindContactByID(ctx context.Context, contactID string) (*domain.UnknownContact, error) {
	query := `
		SELECT contact_id, phone_number, last_message, message_count, first_message_at, last_message_at
		FROM unknown_contacts
		WHERE contact_id = $1;
	`
	var c domain.UnknownContact
	err := r.db.QueryRow(ctx, query, contactID).Scan(
		&c.ContactID, &c.PhoneNumber, &c.LastMessage, &c.MessageCount, &c.FirstMessageAt, &c.LastMessageAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find unknown contact %s: %w", contactID, err)
	}
	return &c, nil
}

func (r *PgxUnknownContactRepository) DeleteContact(ctx context.Context, contactID string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM unknown_contacts WHERE contact_id = $1;`, contactID)
	if err != nil {
		return fmt.Errorf("failed to delete unknown contact: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxUnknownContactRepository) CountContacts(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM unknown_contacts;`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unknown contacts: %w", err)
	}
	return count, nil
}

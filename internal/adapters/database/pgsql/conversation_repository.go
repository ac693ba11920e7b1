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

type PgxConversationRepository struct {
	db *pgxpool.Pool
}

func NewConversationRepository(db *pgxpool.Pool) ports.ConversationRepository {
	return &PgxConversationRepository{db: db}
}

var _ ports.ConversationRepository = (*PgxConversationRepository)(nil)

const conversationColumns = `conversation_id, phone_number, normalized_phone, status, client_id,
	admin_id, selected_department, created_at, updated_at`

func scanConversation(row pgx.Row) (*domain.Conversation, error) {
	var c domain.Conversation
	err := row.Scan(
		&c.ConversationID, &c.PhoneNumber, &c.NormalizedPhone, &c.Status, &c.ClientID,
		&c.AdminID, &c.SelectedDepartment, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PgxConversationRepository) UpsertConversation(ctx context.Context, conv domain.Conversation) error {
	query := `
		INSERT INTO conversations (conversation_id, phone_number, normalized_phone, status, client_id,
			admin_id, selected_department, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (conversation_id) DO UPDATE
		SET status = EXCLUDED.status,
			client_id = EXCLUDED.client_id,
			admin_id = EXCLUDED.admin_id,
			selected_department = EXCLUDED.selected_department,
			updated_at = EXCLUDED.updated_at;
	`
	_, err := r.db.Exec(ctx, query,
		conv.ConversationID, conv.PhoneNumber, conv.NormalizedPhone, conv.Status, conv.ClientID,
		conv.AdminID, conv.SelectedDepartment, conv.CreatedAt, conv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert conversation: %w", err)
	}
	return nil
}

// FindActiveByPhone returns the newest non-ended conversation for the
// phone, if any.
func (r *PgxConversationRepository) FindActiveByPhone(ctx context.Context, normalizedPhone string) (*domain.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE normalized_phone = $1 AND status <> $2
		ORDER BY updated_at DESC
		LIMIT 1;
	`
	conv, err := scanConversation(r.db.QueryRow(ctx, query, normalizedPhone, domain.ConversationEnded))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find active conversation: %w", err)
	}
	return conv, nil
}

func (r *PgxConversationRepository) FindConversationByID(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE conversation_id = $1;`
	conv, err := scanConversation(r.db.QueryRow(ctx, query, conversationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find conversation by ID %s: %w", conversationID, err)
	}
	return conv, nil
}

func (r *PgxConversationRepository) FindConversations(ctx context.Context, status *domain.ConversationStatus, limit, offset int) ([]domain.Conversation, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + conversationColumns + ` FROM conversations`
	args := []any{}
	idx := 1
	if status != nil {
		query += fmt.Sprintf(" WHERE status = $%d", idx)
		args = append(args, *status)
		idx++
	}
	query += fmt.Sprintf(" ORDER BY updated_at DESC LIMIT $%d OFFSET $%d;", idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	convs := []domain.Conversation{}
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation row: %w", err)
		}
		convs = append(convs, *c)
	}
	return convs, rows.Err()
}

func (r *PgxConversationRepository) UpdateConversation(ctx context.Context, conv domain.Conversation) error {
	query := `
		UPDATE conversations
		SET status = $1, client_id = $2, admin_id = $3, selected_department = $4, updated_at = $5
		WHERE conversation_id = $6;
	`
	cmdTag, err := r.db.Exec(ctx, query,
		conv.Status, conv.ClientID, conv.AdminID, conv.SelectedDepartment, conv.UpdatedAt, conv.ConversationID,
	)
	if err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

const waMessageColumns = `message_id, conversation_id, direction, content, provider_message_id,
	sent_at, delivered_at, read_at, failed_at, error_code, error_detail, created_at`

func scanWhatsAppMessage(row pgx.Row) (*domain.WhatsAppMessage, error) {
	var m domain.WhatsAppMessage
	var providerID, errDetail *string
	err := row.Scan(
		&m.MessageID, &m.ConversationID, &m.Direction, &m.Content, &providerID,
		&m.SentAt, &m.DeliveredAt, &m.ReadAt, &m.FailedAt, &m.ErrorCode, &errDetail, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if providerID != nil {
		m.ProviderMessageID = *providerID
	}
	if errDetail != nil {
		m.ErrorDetail = *errDetail
	}
	return &m, nil
}

func (r *PgxConversationRepository) SaveWhatsAppMessage(ctx context.Context, msg domain.WhatsAppMessage) error {
	query := `
		INSERT INTO whatsapp_messages (message_id, conversation_id, direction, content, provider_message_id,
			sent_at, delivered_at, read_at, failed_at, error_code, error_detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.db.Exec(ctx, query,
		msg.MessageID, msg.ConversationID, msg.Direction, msg.Content, nullIfEmpty(msg.ProviderMessageID),
		msg.SentAt, msg.DeliveredAt, msg.ReadAt, msg.FailedAt, msg.ErrorCode, nullIfEmpty(msg.ErrorDetail), msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save whatsapp message: %w", err)
	}
	return nil
}

func (r *PgxConversationRepository) FindWhatsAppMessageByProviderID(ctx context.Context, providerMessageID string) (*domain.WhatsAppMessage, error) {
	query := `SELECT ` + waMessageColumns + ` FROM whatsapp_messages WHERE provider_message_id = $1;`
	msg, err := scanWhatsAppMessage(r.db.QueryRow(ctx, query, providerMessageID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find whatsapp message by provider ID: %w", err)
	}
	return msg, nil
}

func (r *PgxConversationRepository) UpdateWhatsAppMessage(ctx context.Context, msg domain.WhatsAppMessage) error {
	query := `
		UPDATE whatsapp_messages
		SET sent_at = $1, delivered_at = $2, read_at = $3, failed_at = $4,
			error_code = $5, error_detail = $6
		WHERE message_id = $7;
	`
	cmdTag, err := r.db.Exec(ctx, query,
		msg.SentAt, msg.DeliveredAt, msg.ReadAt, msg.FailedAt,
		msg.ErrorCode, nullIfEmpty(msg.ErrorDetail), msg.MessageID,
	)
	if err != nil {
		return fmt.Errorf("failed to update whatsapp message: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxConversationRepository) FindRecentWhatsAppMessages(ctx context.Context, since time.Time) ([]domain.WhatsAppMessage, error) {
	query := `
		SELECT ` + waMessageColumns + `
		FROM whatsapp_messages
		WHERE created_at >= $1
		ORDER BY created_at DESC;
	`
	return r.queryWhatsAppMessages(ctx, query, since)
}

// FindUndeliveredSince returns outbound messages with no delivery or
// read confirmation and no recorded failure inside the window.
func (r *PgxConversationRepository) FindUndeliveredSince(ctx context.Context, since time.Time) ([]domain.WhatsAppMessage, error) {
	query := `
		SELECT ` + waMessageColumns + `
		FROM whatsapp_messages
		WHERE created_at >= $1
		  AND direction = 'outbound'
		  AND delivered_at IS NULL
		  AND read_at IS NULL
		  AND failed_at IS NULL
		ORDER BY created_at DESC;
	`
	return r.queryWhatsAppMessages(ctx, query, since)
}

func (r *PgxConversationRepository) queryWhatsAppMessages(ctx context.Context, query string, args ...any) ([]domain.WhatsAppMessage, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query whatsapp messages: %w", err)
	}
	defer rows.Close()

	msgs := []domain.WhatsAppMessage{}
	for rows.Next() {
		m, err := scanWhatsAppMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan whatsapp message row: %w", err)
		}
		msgs = append(msgs, *m)
	}
	return msgs, rows.Err()
}

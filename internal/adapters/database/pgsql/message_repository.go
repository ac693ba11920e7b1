package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contaflow/backoffice/internal/core/domain"
	"github.com/contaflow/backoffice/internal/core/ports"
)

type PgxMessageRepository struct {
	db *pgxpool.Pool
}

func NewMessageRepository(db *pgxpool.Pool) ports.MessageRepository {
	return &PgxMessageRepository{db: db}
}

var _ ports.MessageRepository = (*PgxMessageRepository)(nil)

const messageColumns = `message_id, client_id, admin_id, sender, content, read_at, created_at`

func scanMessage(row pgx.Row) (*domain.Message, error) {
	var m domain.Message
	err := row.Scan(&m.MessageID, &m.ClientID, &m.AdminID, &m.Sender, &m.Content, &m.ReadAt, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgxMessageRepository) SaveMessage(ctx context.Context, msg domain.Message) error {
	query := `
		INSERT INTO messages (message_id, client_id, admin_id, sender, content, read_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.db.Exec(ctx, query,
		msg.MessageID, msg.ClientID, msg.AdminID, msg.Sender, msg.Content, msg.ReadAt, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

func (r *PgxMessageRepository) FindMessagesByClient(ctx context.Context, clientID string, limit, offset int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE client_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.db.Query(ctx, query, clientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	msgs := []domain.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		msgs = append(msgs, *m)
	}
	return msgs, rows.Err()
}

// MarkRead stamps every unread message authored by the other side.
func (r *PgxMessageRepository) MarkRead(ctx context.Context, clientID string, readerIsAdmin bool, readAt time.Time) error {
	sender := domain.SenderAdmin
	if readerIsAdmin {
		sender = domain.SenderClient
	}
	query := `
		UPDATE messages
		SET read_at = $1
		WHERE client_id = $2 AND read_at IS NULL AND sender IN ($3, $4);
	`
	_, err := r.db.Exec(ctx, query, readAt, clientID, sender, domain.SenderSystem)
	if err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}
	return nil
}

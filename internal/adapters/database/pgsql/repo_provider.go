package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contaflow/backoffice/internal/core/ports"
)

// NewRepositoryProvider wires every pgx-backed repository onto one pool.
func NewRepositoryProvider(db *pgxpool.Pool) *ports.RepositoryProvider {
	return &ports.RepositoryProvider{
		UserRepo:           NewUserRepository(db),
		ClientRepo:         NewClientRepository(db),
		DocumentRepo:       NewDocumentRepository(db),
		TaskRepo:           NewTaskRepository(db),
		MessageRepo:        NewMessageRepository(db),
		ConversationRepo:   NewConversationRepository(db),
		UnknownContactRepo: NewUnknownContactRepository(db),
		APITokenRepo:       NewAPITokenRepository(db),
		ReportingRepo:      NewReportingRepository(db),
	}
}

package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/contaflow/backoffice/internal/core/domain"
)

// Context is included on every method for cancellation/timeouts.

// UserRepository defines persistence operations for users, their role
// rows, sector assignments and the master-admin allow-list.
type UserRepository interface {
	SaveUser(ctx context.Context, user domain.User) error
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUsers(ctx context.Context, limit, offset int) ([]domain.User, error)
	UpdateUser(ctx context.Context, user domain.User) error
	UpdatePassword(ctx context.Context, userID, passwordHash string, updatedBy string) error
	MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time, deletedBy string) error
	UpdateRefreshToken(ctx context.Context, userID, refreshTokenHash string, expiry time.Time) error
	ClearRefreshToken(ctx context.Context, userID string) error

	// Role derivation lookups.
	FindRoles(ctx context.Context, userID string) ([]domain.RoleAssignment, error)
	FindSetor(ctx context.Context, userID string) (*domain.Setor, error)
	IsMasterAdmin(ctx context.Context, userID string) (bool, error)

	// Role mutations (gating happens in the service layer).
	SaveRole(ctx context.Context, assignment domain.RoleAssignment) error
	DeleteRole(ctx context.Context, userID string, role domain.AppRole) error
	SaveSetor(ctx context.Context, userID string, setor domain.Setor) error

	// ProvisionUser persists the identity, role row and optional sector
	// assignment in a single transaction.
	ProvisionUser(ctx context.Context, user domain.User, role domain.AppRole, setor *domain.Setor) error

	// FindAvailableAdmin picks an admin able to serve the given client
	// and department, preferring the client's responsible admin.
	FindAvailableAdmin(ctx context.Context, clientID string, setor domain.Setor) (*domain.User, error)
}

// ClientRepository defines persistence operations for client companies.
type ClientRepository interface {
	SaveClient(ctx context.Context, client domain.Client) error
	SaveClients(ctx context.Context, clients []domain.Client) error
	FindClientByID(ctx context.Context, clientID string) (*domain.Client, error)
	FindClientByPhone(ctx context.Context, normalizedPhone string) (*domain.Client, error)
	FindClients(ctx context.Context, filter ClientFilter) ([]domain.Client, error)
	UpdateClient(ctx context.Context, client domain.Client) error
	MarkClientDeleted(ctx context.Context, clientID string, deletedAt time.Time, deletedBy string) error
}

// ClientFilter narrows client listings. An empty Setores slice means no
// sector restriction. Query is matched as a substring over
// razao_social, email and cnpj.
type ClientFilter struct {
	Setores []domain.Setor
	Query   string
	Limit   int
	Offset  int
}

// DocumentRepository defines persistence operations for documents.
type DocumentRepository interface {
	SaveDocument(ctx context.Context, doc domain.Document) error
	FindDocumentByID(ctx context.Context, documentID string) (*domain.Document, error)
	FindDocuments(ctx context.Context, setores []domain.Setor, clientID *string, limit, offset int) ([]domain.Document, error)
	UpdateDocument(ctx context.Context, doc domain.Document) error
	MarkDocumentDeleted(ctx context.Context, documentID string, deletedAt time.Time, deletedBy string) error
}

// TaskRepository defines persistence operations for tasks and their
// child comments and files.
type TaskRepository interface {
	SaveTask(ctx context.Context, task domain.Task) error
	FindTaskByID(ctx context.Context, taskID string) (*domain.Task, error)
	FindTasks(ctx context.Context, setores []domain.Setor, clientID *string, status *domain.TaskStatus, limit, offset int) ([]domain.Task, error)
	UpdateTask(ctx context.Context, task domain.Task) error
	MarkTaskDeleted(ctx context.Context, taskID string, deletedAt time.Time, deletedBy string) error

	SaveComment(ctx context.Context, comment domain.TaskComment) error
	FindComments(ctx context.Context, taskID string) ([]domain.TaskComment, error)
	SaveFile(ctx context.Context, file domain.TaskFile) error
	FindFiles(ctx context.Context, taskID string) ([]domain.TaskFile, error)
}

// MessageRepository defines persistence operations for the internal
// admin <-> client support chat.
type MessageRepository interface {
	SaveMessage(ctx context.Context, msg domain.Message) error
	FindMessagesByClient(ctx context.Context, clientID string, limit, offset int) ([]domain.Message, error)
	MarkRead(ctx context.Context, clientID string, readerIsAdmin bool, readAt time.Time) error
}

// ConversationRepository defines persistence operations for WhatsApp
// conversations and their message log.
type ConversationRepository interface {
	UpsertConversation(ctx context.Context, conv domain.Conversation) error
	FindActiveByPhone(ctx context.Context, normalizedPhone string) (*domain.Conversation, error)
	FindConversationByID(ctx context.Context, conversationID string) (*domain.Conversation, error)
	FindConversations(ctx context.Context, status *domain.ConversationStatus, limit, offset int) ([]domain.Conversation, error)
	UpdateConversation(ctx context.Context, conv domain.Conversation) error

	SaveWhatsAppMessage(ctx context.Context, msg domain.WhatsAppMessage) error
	FindWhatsAppMessageByProviderID(ctx context.Context, providerMessageID string) (*domain.WhatsAppMessage, error)
	UpdateWhatsAppMessage(ctx context.Context, msg domain.WhatsAppMessage) error
	FindRecentWhatsAppMessages(ctx context.Context, since time.Time) ([]domain.WhatsAppMessage, error)
	FindUndeliveredSince(ctx context.Context, since time.Time) ([]domain.WhatsAppMessage, error)
}

// UnknownContactRepository accumulates unmatched inbound senders.
type UnknownContactRepository interface {
	RegisterContact(ctx context.Context, phoneNumber, lastMessage string, at time.Time) error
	FindContacts(ctx context.Context, limit, offset int) ([]domain.UnknownContact, error)
	FindContactByID(ctx context.Context, contactID string) (*domain.UnknownContact, error)
	DeleteContact(ctx context.Context, contactID string) error
	CountContacts(ctx context.Context) (int, error)
}

// APITokenRepository defines persistence operations for machine tokens.
type APITokenRepository interface {
	SaveToken(ctx context.Context, token domain.APIToken) error
	FindTokenByHash(ctx context.Context, tokenHash string) (*domain.APIToken, error)
	FindTokensByUser(ctx context.Context, userID string) ([]domain.APIToken, error)
	TouchToken(ctx context.Context, tokenID string, usedAt time.Time) error
	RevokeToken(ctx context.Context, tokenID string, revokedAt time.Time) error
}

// ReportingRepository serves the independent dashboard statistics
// queries; each method maps to one fan-out query.
type ReportingRepository interface {
	CountClientsPerSetor(ctx context.Context, setores []domain.Setor) (map[domain.Setor]int, error)
	CountTasksPerStatus(ctx context.Context, setores []domain.Setor) (map[domain.TaskStatus]int, error)
	CountDocumentsSince(ctx context.Context, setores []domain.Setor, since time.Time) (int, error)
	CountActiveConversations(ctx context.Context) (int, error)
	SumMonthlyFees(ctx context.Context, setores []domain.Setor) (decimal.Decimal, error)
}

// RepositoryProvider bundles all repositories for dependency wiring.
type RepositoryProvider struct {
	UserRepo           UserRepository
	ClientRepo         ClientRepository
	DocumentRepo       DocumentRepository
	TaskRepo           TaskRepository
	MessageRepo        MessageRepository
	ConversationRepo   ConversationRepository
	UnknownContactRepo UnknownContactRepository
	APITokenRepo       APITokenRepository
	ReportingRepo      ReportingRepository
}

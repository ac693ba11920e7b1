package ports

import (
	"context"
	"time"

	"github.com/contaflow/backoffice/internal/core/domain"
	"github.com/contaflow/backoffice/internal/dto"
)

// AuthSvcFacade handles credential checks, token issuance and the
// derivation of the application-level user.
type AuthSvcFacade interface {
	Login(ctx context.Context, username, password string) (*domain.DerivedUser, error)
	// DeriveUser computes role, sector and master-admin flag for an
	// authenticated identity. Lookup failures degrade to least
	// privilege rather than erroring.
	DeriveUser(ctx context.Context, userID string) (*domain.DerivedUser, error)
	GenerateAccessToken(ctx context.Context, userID string) (string, time.Time, error)
	IssueRefreshToken(ctx context.Context, userID string) (string, time.Time, error)
	ValidateRefreshToken(ctx context.Context, userID, refreshToken string) (*domain.DerivedUser, error)
	Logout(ctx context.Context, userID string) error
	GoogleLoginURL(state string) string
	HandleGoogleCallback(ctx context.Context, code string) (*domain.DerivedUser, error)
}

// AuthzSvcFacade computes the capability set consumed by every feature
// module.
type AuthzSvcFacade interface {
	CapabilitiesFor(user *domain.DerivedUser) domain.Capabilities
}

// UserSvcFacade covers profile CRUD plus the privileged provisioning,
// password-reset and role-mutation operations.
type UserSvcFacade interface {
	ProvisionUser(ctx context.Context, actor *domain.DerivedUser, req dto.ProvisionUserRequest) (*dto.ProvisionUserResponse, error)
	GetUser(ctx context.Context, userID string) (*domain.DerivedUser, error)
	ListUsers(ctx context.Context, limit, offset int) ([]domain.DerivedUser, error)
	UpdateUser(ctx context.Context, actor *domain.DerivedUser, userID string, req dto.UpdateUserRequest) (*domain.DerivedUser, error)
	DeactivateUser(ctx context.Context, actor *domain.DerivedUser, userID string) error
	ResetPassword(ctx context.Context, username, newPassword string, actorID string) error
	SetRole(ctx context.Context, actor *domain.DerivedUser, userID string, role domain.AppRole) error
	AssignSetor(ctx context.Context, actor *domain.DerivedUser, userID string, setor domain.Setor) error
}

// ClientSvcFacade covers client CRUD and the bulk spreadsheet import.
type ClientSvcFacade interface {
	CreateClient(ctx context.Context, actor *domain.DerivedUser, req dto.CreateClientRequest) (*domain.Client, error)
	GetClient(ctx context.Context, actor *domain.DerivedUser, clientID string) (*domain.Client, error)
	ListClients(ctx context.Context, actor *domain.DerivedUser, params dto.ListClientsParams) ([]domain.Client, error)
	UpdateClient(ctx context.Context, actor *domain.DerivedUser, clientID string, req dto.UpdateClientRequest) (*domain.Client, error)
	DeleteClient(ctx context.Context, actor *domain.DerivedUser, clientID string) error
	ImportClients(ctx context.Context, actor *domain.DerivedUser, xlsx []byte) (*dto.ImportResult, error)
}

// DocumentSvcFacade covers document upload, metadata edits and
// presigned downloads.
type DocumentSvcFacade interface {
	Upload(ctx context.Context, actor *domain.DerivedUser, clientID *string, filename, category, reference string, urgent bool, data []byte) (*domain.Document, error)
	GetDocument(ctx context.Context, actor *domain.DerivedUser, documentID string) (*domain.Document, error)
	ListDocuments(ctx context.Context, actor *domain.DerivedUser, params dto.ListDocumentsParams) ([]domain.Document, error)
	UpdateDocument(ctx context.Context, actor *domain.DerivedUser, documentID string, req dto.UpdateDocumentRequest) (*domain.Document, error)
	DeleteDocument(ctx context.Context, actor *domain.DerivedUser, documentID string) error
	DownloadURL(ctx context.Context, actor *domain.DerivedUser, documentID string) (string, time.Time, error)
}

// TaskSvcFacade covers task CRUD plus child comments and files.
type TaskSvcFacade interface {
	CreateTask(ctx context.Context, actor *domain.DerivedUser, req dto.CreateTaskRequest) (*domain.Task, error)
	GetTask(ctx context.Context, actor *domain.DerivedUser, taskID string) (*domain.Task, error)
	ListTasks(ctx context.Context, actor *domain.DerivedUser, params dto.ListTasksParams) ([]domain.Task, error)
	UpdateTask(ctx context.Context, actor *domain.DerivedUser, taskID string, req dto.UpdateTaskRequest) (*domain.Task, error)
	DeleteTask(ctx context.Context, actor *domain.DerivedUser, taskID string) error
	AddComment(ctx context.Context, actor *domain.DerivedUser, taskID, content string) (*domain.TaskComment, error)
	ListComments(ctx context.Context, actor *domain.DerivedUser, taskID string) ([]domain.TaskComment, error)
	AttachFile(ctx context.Context, actor *domain.DerivedUser, taskID, filename string, data []byte) (*domain.TaskFile, error)
	ListFiles(ctx context.Context, actor *domain.DerivedUser, taskID string) ([]domain.TaskFile, error)
}

// ChatSvcFacade covers the internal admin <-> client support chat.
type ChatSvcFacade interface {
	ListMessages(ctx context.Context, actor *domain.DerivedUser, clientID string, limit, offset int) ([]domain.Message, error)
	PostMessage(ctx context.Context, actor *domain.DerivedUser, clientID, content string) (*domain.Message, error)
	MarkRead(ctx context.Context, actor *domain.DerivedUser, clientID string) error
}

// ConversationSvcFacade drives the WhatsApp conversation state machine
// and the outbound sender.
type ConversationSvcFacade interface {
	// HandleInboundMessage advances the state machine for one inbound
	// message; calls for the same phone are serialized internally.
	HandleInboundMessage(ctx context.Context, from, providerMessageID, body string) error
	// HandleStatusUpdate applies an asynchronous delivery callback.
	HandleStatusUpdate(ctx context.Context, providerMessageID, status string, at time.Time, errCode *int, errDetail string) error
	SendMessage(ctx context.Context, req dto.SendWhatsAppRequest) (*dto.SendWhatsAppResponse, error)
	ListConversations(ctx context.Context, status *domain.ConversationStatus, limit, offset int) ([]domain.Conversation, error)

	HealthReport(ctx context.Context) dto.HealthReport
	TrafficReport(ctx context.Context, window time.Duration) (*dto.TrafficReport, error)
	DeliveryCheck(ctx context.Context, window time.Duration) (*dto.DeliveryCheckReport, error)
}

// UnknownContactSvcFacade manages unmatched inbound senders.
type UnknownContactSvcFacade interface {
	ListContacts(ctx context.Context, limit, offset int) ([]domain.UnknownContact, error)
	// ResolveContact links the contact's phone onto an existing client
	// and removes the pending entry.
	ResolveContact(ctx context.Context, actor *domain.DerivedUser, contactID, clientID string) error
	DiscardContact(ctx context.Context, contactID string) error
}

// ReportingSvcFacade serves the dashboard statistics fan-out.
type ReportingSvcFacade interface {
	DashboardStats(ctx context.Context, actor *domain.DerivedUser) (*domain.DashboardStats, error)
}

// APITokenSvcFacade manages machine tokens and authenticates requests
// presenting them.
type APITokenSvcFacade interface {
	CreateToken(ctx context.Context, userID string, req dto.CreateAPITokenRequest) (*dto.CreateAPITokenResponse, error)
	ListTokens(ctx context.Context, userID string) ([]domain.APIToken, error)
	RevokeToken(ctx context.Context, userID, tokenID string) error
	Authenticate(ctx context.Context, rawToken string) (*domain.APIToken, error)
}

// ServiceContainer bundles all service facades for route registration.
type ServiceContainer struct {
	Auth           AuthSvcFacade
	Authz          AuthzSvcFacade
	User           UserSvcFacade
	Client         ClientSvcFacade
	Document       DocumentSvcFacade
	Task           TaskSvcFacade
	Chat           ChatSvcFacade
	Conversation   ConversationSvcFacade
	UnknownContact UnknownContactSvcFacade
	Reporting      ReportingSvcFacade
	APIToken       APITokenSvcFacade
}

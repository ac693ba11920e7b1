package services

import (
	"github.com/contaflow/backoffice/internal/core/ports"
	"github.com/contaflow/backoffice/internal/platform/config"
	"github.com/contaflow/backoffice/internal/platform/storage"
	"github.com/contaflow/backoffice/internal/platform/whatsapp"
)

// NewServiceContainer wires every service facade from the repository
// provider and the platform adapters.
func NewServiceContainer(
	cfg *config.Config,
	repos *ports.RepositoryProvider,
	store storage.ObjectStore,
	wa *whatsapp.Client,
) *ports.ServiceContainer {
	auth := NewAuthService(cfg, repos.UserRepo)
	authz := NewAuthzService()
	user := NewUserService(repos.UserRepo, auth, authz)
	client := NewClientService(repos.ClientRepo, user, authz)

	return &ports.ServiceContainer{
		Auth:     auth,
		Authz:    authz,
		User:     user,
		Client:   client,
		Document: NewDocumentService(repos.DocumentRepo, store, authz),
		Task:     NewTaskService(repos.TaskRepo, repos.ClientRepo, store, authz),
		Chat:     NewChatService(repos.MessageRepo, repos.ClientRepo, authz),
		Conversation: NewConversationService(
			repos.ConversationRepo,
			repos.ClientRepo,
			repos.UserRepo,
			repos.MessageRepo,
			repos.UnknownContactRepo,
			wa,
			cfg.WhatsAppDisplayNumber,
		),
		UnknownContact: NewUnknownContactService(repos.UnknownContactRepo, repos.ClientRepo, authz),
		Reporting:      NewReportingService(repos.ReportingRepo, repos.UnknownContactRepo, authz),
		APIToken:       NewAPITokenService(repos.APITokenRepo),
	}
}

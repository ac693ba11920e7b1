package services_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/contaflow/backoffice/internal/apperrors"
	"github.com/contaflow/backoffice/internal/core/domain"
	"github.com/contaflow/backoffice/internal/core/ports"
)

// Fn-style fakes: each method delegates to its Fn field when set and
// otherwise returns a harmless default (not-found for single lookups,
// empty results for listings, nil for mutations).

// --- UserRepository ---

type mockUserRepository struct {
	SaveUserFn           func(ctx context.Context, user domain.User) error
	FindUserByIDFn       func(ctx context.Context, userID string) (*domain.User, error)
	FindUserByUsernameFn func(ctx context.Context, username string) (*domain.User, error)
	FindUserByEmailFn    func(ctx context.Context, email string) (*domain.User, error)
	FindUsersFn          func(ctx context.Context, limit, offset int) ([]domain.User, error)
	UpdateUserFn         func(ctx context.Context, user domain.User) error
	UpdatePasswordFn     func(ctx context.Context, userID, passwordHash, updatedBy string) error
	MarkUserDeletedFn    func(ctx context.Context, userID string, deletedAt time.Time, deletedBy string) error
	UpdateRefreshTokenFn func(ctx context.Context, userID, hash string, expiry time.Time) error
	ClearRefreshTokenFn  func(ctx context.Context, userID string) error
	FindRolesFn          func(ctx context.Context, userID string) ([]domain.RoleAssignment, error)
	FindSetorFn          func(ctx context.Context, userID string) (*domain.Setor, error)
	IsMasterAdminFn      func(ctx context.Context, userID string) (bool, error)
	SaveRoleFn           func(ctx context.Context, assignment domain.RoleAssignment) error
	DeleteRoleFn         func(ctx context.Context, userID string, role domain.AppRole) error
	SaveSetorFn          func(ctx context.Context, userID string, setor domain.Setor) error
	ProvisionUserFn      func(ctx context.Context, user domain.User, role domain.AppRole, setor *domain.Setor) error
	FindAvailableAdminFn func(ctx context.Context, clientID string, setor domain.Setor) (*domain.User, error)
}

var _ ports.UserRepository = (*mockUserRepository)(nil)

func (m *mockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	if m.SaveUserFn != nil {
		return m.SaveUserFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	if m.FindUserByIDFn != nil {
		return m.FindUserByIDFn(ctx, userID)
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.FindUserByUsernameFn != nil {
		return m.FindUserByUsernameFn(ctx, username)
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindUserByEmailFn != nil {
		return m.FindUserByEmailFn(ctx, email)
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockUserRepository) FindUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if m.FindUsersFn != nil {
		return m.FindUsersFn(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	if m.UpdateUserFn != nil {
		return m.UpdateUserFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, userID, passwordHash, updatedBy string) error {
	if m.UpdatePasswordFn != nil {
		return m.UpdatePasswordFn(ctx, userID, passwordHash, updatedBy)
	}
	return nil
}

func (m *mockUserRepository) MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time, deletedBy string) error {
	if m.MarkUserDeletedFn != nil {
		return m.MarkUserDeletedFn(ctx, userID, deletedAt, deletedBy)
	}
	return nil
}

func (m *mockUserRepository) UpdateRefreshToken(ctx context.Context, userID, hash string, expiry time.Time) error {
	if m.UpdateRefreshTokenFn != nil {
		return m.UpdateRefreshTokenFn(ctx, userID, hash, expiry)
	}
	return nil
}

func (m *mockUserRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	if m.ClearRefreshTokenFn != nil {
		return m.ClearRefreshTokenFn(ctx, userID)
	}
	return nil
}

func (m *mockUserRepository) FindRoles(ctx context.Context, userID string) ([]domain.RoleAssignment, error) {
	if m.FindRolesFn != nil {
		return m.FindRolesFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockUserRepository) FindSetor(ctx context.Context, userID string) (*domain.Setor, error) {
	if m.FindSetorFn != nil {
		return m.FindSetorFn(ctx, userID)
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockUserRepository) IsMasterAdmin(ctx context.Context, userID string) (bool, error) {
	if m.IsMasterAdminFn != nil {
		return m.IsMasterAdminFn(ctx, userID)
	}
	return false, nil
}

func (m *mockUserRepository) SaveRole(ctx context.Context, assignment domain.RoleAssignment) error {
	if m.SaveRoleFn != nil {
		return m.SaveRoleFn(ctx, assignment)
	}
	return nil
}

func (m *mockUserRepository) DeleteRole(ctx context.Context, userID string, role domain.AppRole) error {
	if m.DeleteRoleFn != nil {
		return m.DeleteRoleFn(ctx, userID, role)
	}
	return nil
}

func (m *mockUserRepository) SaveSetor(ctx context.Context, userID string, setor domain.Setor) error {
	if m.SaveSetorFn != nil {
		return m.SaveSetorFn(ctx, userID, setor)
	}
	return nil
}

func (m *mockUserRepository) ProvisionUser(ctx context.Context, user domain.User, role domain.AppRole, setor *domain.Setor) error {
	if m.ProvisionUserFn != nil {
		return m.ProvisionUserFn(ctx, user, role, setor)
	}
	return nil
}

func (m *mockUserRepository) FindAvailableAdmin(ctx context.Context, clientID string, setor domain.Setor) (*domain.User, error) {
	if m.FindAvailableAdminFn != nil {
		return m.FindAvailableAdminFn(ctx, clientID, setor)
	}
	return nil, apperrors.ErrNotFound
}

// --- ClientRepository ---

type mockClientRepository struct {
	SaveClientFn        func(ctx context.Context, client domain.Client) error
	SaveClientsFn       func(ctx context.Context, clients []domain.Client) error
	FindClientByIDFn    func(ctx context.Context, clientID string) (*domain.Client, error)
	FindClientByPhoneFn func(ctx context.Context, normalizedPhone string) (*domain.Client, error)
	FindClientsFn       func(ctx context.Context, filter ports.ClientFilter) ([]domain.Client, error)
	UpdateClientFn      func(ctx context.Context, client domain.Client) error
	MarkClientDeletedFn func(ctx context.Context, clientID string, deletedAt time.Time, deletedBy string) error
}

var _ ports.ClientRepository = (*mockClientRepository)(nil)

func (m *mockClientRepository) SaveClient(ctx context.Context, client domain.Client) error {
	if m.SaveClientFn != nil {
		return m.SaveClientFn(ctx, client)
	}
	return nil
}

func (m *mockClientRepository) SaveClients(ctx context.Context, clients []domain.Client) error {
	if m.SaveClientsFn != nil {
		return m.SaveClientsFn(ctx, clients)
	}
	return nil
}

func (m *mockClientRepository) FindClientByID(ctx context.Context, clientID string) (*domain.Client, error) {
	if m.FindClientByIDFn != nil {
		return m.FindClientByIDFn(ctx, clientID)
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockClientRepository) FindClientByPhone(ctx context.Context, normalizedPhone string) (*domain.Client, error) {
	if m.FindClientByPhoneFn != nil {
		return m.FindClientByPhoneFn(ctx, normalizedPhone)
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockClientRepository) FindClients(ctx context.Context, filter ports.ClientFilter) ([]domain.Client, error) {
	if m.FindClientsFn != nil {
		return m.FindClientsFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockClientRepository) UpdateClient(ctx context.Context, client domain.Client) error {
	if m.UpdateClientFn != nil {
		return m.UpdateClientFn(ctx, client)
	}
	return nil
}

func (m *mockClientRepository) MarkClientDeleted(ctx context.Context, clientID string, deletedAt time.Time, deletedBy string) error {
	if m.MarkClientDeletedFn != nil {
		return m.MarkClientDeletedFn(ctx, clientID, deletedAt, deletedBy)
	}
	return nil
}

// --- ConversationRepository ---

type mockConversationRepository struct {
	UpsertConversationFn              func(ctx context.Context, conv domain.Conversation) error
	FindActiveByPhoneFn               func(ctx context.Context, normalizedPhone string) (*domain.Conversation, error)
	FindConversationByIDFn            func(ctx context.Context, conversationID string) (*domain.Conversation, error)
	FindConversationsFn               func(ctx context.Context, status *domain.ConversationStatus, limit, offset int) ([]domain.Conversation, error)
	UpdateConversationFn              func(ctx context.Context, conv domain.Conversation) error
	SaveWhatsAppMessageFn             func(ctx context.Context, msg domain.WhatsAppMessage) error
	FindWhatsAppMessageByProviderIDFn func(ctx context.Context, providerMessageID string) (*domain.WhatsAppMessage, error)
	UpdateWhatsAppMessageFn           func(ctx context.Context, msg domain.WhatsAppMessage) error
	FindRecentWhatsAppMessagesFn      func(ctx context.Context, since time.Time) ([]domain.WhatsAppMessage, error)
	FindUndeliveredSinceFn            func(ctx context.Context, since time.Time) ([]domain.WhatsAppMessage, error)
}

var _ ports.ConversationRepository = (*mockConversationRepository)(nil)

func (m *mockConversationRepository) UpsertConversation(ctx context.Context, conv domain.Conversation) error {
	if m.UpsertConversationFn != nil {
		return m.UpsertConversationFn(ctx, conv)
	}
	return nil
}

func (m *mockConversationRepository) FindActiveByPhone(ctx context.Context, normalizedPhone string) (*domain.Conversation, error) {
	if m.FindActiveByPhoneFn != nil {
		return m.FindActiveByPhoneFn(ctx, normalizedPhone)
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockConversationRepository) FindConversationByID(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	if m.FindConversationByIDFn != nil {
		return m.FindConversationByIDFn(ctx, conversationID)
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockConversationRepository) FindConversations(ctx context.Context, status *domain.ConversationStatus, limit, offset int) ([]domain.Conversation, error) {
	if m.FindConversationsFn != nil {
		return m.FindConversationsFn(ctx, status, limit, offset)
	}
	return nil, nil
}

func (m *mockConversationRepository) UpdateConversation(ctx context.Context, conv domain.Conversation) error {
	if m.UpdateConversationFn != nil {
		return m.UpdateConversationFn(ctx, conv)
	}
	return nil
}

func (m *mockConversationRepository) SaveWhatsAppMessage(ctx context.Context, msg domain.WhatsAppMessage) error {
	if m.SaveWhatsAppMessageFn != nil {
		return m.SaveWhatsAppMessageFn(ctx, msg)
	}
	return nil
}

func (m *mockConversationRepository) FindWhatsAppMessageByProviderID(ctx context.Context, providerMessageID string) (*domain.WhatsAppMessage, error) {
	if m.FindWhatsAppMessageByProviderIDFn != nil {
		return m.FindWhatsAppMessageByProviderIDFn(ctx, providerMessageID)
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockConversationRepository) UpdateWhatsAppMessage(ctx context.Context, msg domain.WhatsAppMessage) error {
	if m.UpdateWhatsAppMessageFn != nil {
		return m.UpdateWhatsAppMessageFn(ctx, msg)
	}
	return nil
}

func (m *mockConversationRepository) FindRecentWhatsAppMessages(ctx context.Context, since time.Time) ([]domain.WhatsAppMessage, error) {
	if m.FindRecentWhatsAppMessagesFn != nil {
		return m.FindRecentWhatsAppMessagesFn(ctx, since)
	}
	return nil, nil
}

func (m *mockConversationRepository) FindUndeliveredSince(ctx context.Context, since time.Time) ([]domain.WhatsAppMessage, error) {
	if m.FindUndeliveredSinceFn != nil {
		return m.FindUndeliveredSinceFn(ctx, since)
	}
	return nil, nil
}

// --- MessageRepository ---

type mockMessageRepository struct {
	SaveMessageFn          func(ctx context.Context, msg domain.Message) error
	FindMessagesByClientFn func(ctx context.Context, clientID string, limit, offset int) ([]domain.Message, error)
	MarkReadFn             func(ctx context.Context, clientID string, readerIsAdmin bool, readAt time.Time) error
}

var _ ports.MessageRepository = (*mockMessageRepository)(nil)

func (m *mockMessageRepository) SaveMessage(ctx context.Context, msg domain.Message) error {
	if m.SaveMessageFn != nil {
		return m.SaveMessageFn(ctx, msg)
	}
	return nil
}

func (m *mockMessageRepository) FindMessagesByClient(ctx context.Context, clientID string, limit, offset int) ([]domain.Message, error) {
	if m.FindMessagesByClientFn != nil {
		return m.FindMessagesByClientFn(ctx, clientID, limit, offset)
	}
	return nil, nil
}

func (m *mockMessageRepository) MarkRead(ctx context.Context, clientID string, readerIsAdmin bool, readAt time.Time) error {
	if m.MarkReadFn != nil {
		return m.MarkReadFn(ctx, clientID, readerIsAdmin, readAt)
	}
	return nil
}

// --- TaskRepository ---

type mockTaskRepository struct {
	SaveTaskFn        func(ctx context.Context, task domain.Task) error
	FindTaskByIDFn    func(ctx context.Context, taskID string) (*domain.Task, error)
	FindTasksFn       func(ctx context.Context, setores []domain.Setor, clientID *string, status *domain.TaskStatus, limit, offset int) ([]domain.Task, error)
	UpdateTaskFn      func(ctx context.Context, task domain.Task) error
	MarkTaskDeletedFn func(ctx context.Context, taskID string, deletedAt time.Time, deletedBy string) error
	SaveCommentFn     func(ctx context.Context, comment domain.TaskComment) error
	FindCommentsFn    func(ctx context.Context, taskID string) ([]domain.TaskComment, error)
	SaveFileFn        func(ctx context.Context, file domain.TaskFile) error
	FindFilesFn       func(ctx context.Context, taskID string) ([]domain.TaskFile, error)
}

var _ ports.TaskRepository = (*mockTaskRepository)(nil)

func (m *mockTaskRepository) SaveTask(ctx context.Context, task domain.Task) error {
	if m.SaveTaskFn != nil {
		return m.SaveTaskFn(ctx, task)
	}
	return nil
}

func (m *mockTaskRepository) FindTaskByID(ctx context.Context, taskID string) (*domain.Task, error) {
	if m.FindTaskByIDFn != nil {
		return m.FindTaskByIDFn(ctx, taskID)
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockTaskRepository) FindTasks(ctx context.Context, setores []domain.Setor, clientID *string, status *domain.TaskStatus, limit, offset int) ([]domain.Task, error) {
	if m.FindTasksFn != nil {
		return m.FindTasksFn(ctx, setores, clientID, status, limit, offset)
	}
	return nil, nil
}

func (m *mockTaskRepository) UpdateTask(ctx context.Context, task domain.Task) error {
	if m.UpdateTaskFn != nil {
		return m.UpdateTaskFn(ctx, task)
	}
	return nil
}

func (m *mockTaskRepository) MarkTaskDeleted(ctx context.Context, taskID string, deletedAt time.Time, deletedBy string) error {
	if m.MarkTaskDeletedFn != nil {
		return m.MarkTaskDeletedFn(ctx, taskID, deletedAt, deletedBy)
	}
	return nil
}

func (m *mockTaskRepository) SaveComment(ctx context.Context, comment domain.TaskComment) error {
	if m.SaveCommentFn != nil {
		return m.SaveCommentFn(ctx, comment)
	}
	return nil
}

func (m *mockTaskRepository) FindComments(ctx context.Context, taskID string) ([]domain.TaskComment, error) {
	if m.FindCommentsFn != nil {
		return m.FindCommentsFn(ctx, taskID)
	}
	return nil, nil
}

func (m *mockTaskRepository) SaveFile(ctx context.Context, file domain.TaskFile) error {
	if m.SaveFileFn != nil {
		return m.SaveFileFn(ctx, file)
	}
	return nil
}

func (m *mockTaskRepository) FindFiles(ctx context.Context, taskID string) ([]domain.TaskFile, error) {
	if m.FindFilesFn != nil {
		return m.FindFilesFn(ctx, taskID)
	}
	return nil, nil
}

// --- UnknownContactRepository ---

type mockUnknownContactRepository struct {
	RegisterContactFn func(ctx context.Context, phoneNumber, lastMessage string, at time.Time) error
	FindContactsFn    func(ctx context.Context, limit, offset int) ([]domain.UnknownContact, error)
	FindContactByIDFn func(ctx context.Context, contactID string) (*domain.UnknownContact, error)
	DeleteContactFn   func(ctx context.Context, contactID string) error
	CountContactsFn   func(ctx context.Context) (int, error)
}

var _ ports.UnknownContactRepository = (*mockUnknownContactRepository)(nil)

func (m *mockUnknownContactRepository) RegisterContact(ctx context.Context, phoneNumber, lastMessage string, at time.Time) error {
	if m.RegisterContactFn != nil {
		return m.RegisterContactFn(ctx, phoneNumber, lastMessage, at)
	}
	return nil
}

func (m *mockUnknownContactRepository) FindContacts(ctx context.Context, limit, offset int) ([]domain.UnknownContact, error) {
	if m.FindContactsFn != nil {
		return m.FindContactsFn(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockUnknownContactRepository) FindContactByID(ctx context.Context, contactID string) (*domain.UnknownContact, error) {
	if m.FindContactByIDFn != nil {
		return m.FindContactByIDFn(ctx, contactID)
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockUnknownContactRepository) DeleteContact(ctx context.Context, contactID string) error {
	if m.DeleteContactFn != nil {
		return m.DeleteContactFn(ctx, contactID)
	}
	return nil
}

func (m *mockUnknownContactRepository) CountContacts(ctx context.Context) (int, error) {
	if m.CountContactsFn != nil {
		return m.CountContactsFn(ctx)
	}
	return 0, nil
}

// --- APITokenRepository ---

type mockAPITokenRepository struct {
	SaveTokenFn        func(ctx context.Context, token domain.APIToken) error
	FindTokenByHashFn  func(ctx context.Context, tokenHash string) (*domain.APIToken, error)
	FindTokensByUserFn func(ctx context.Context, userID string) ([]domain.APIToken, error)
	TouchTokenFn       func(ctx context.Context, tokenID string, usedAt time.Time) error
	RevokeTokenFn      func(ctx context.Context, tokenID string, revokedAt time.Time) error
}

var _ ports.APITokenRepository = (*mockAPITokenRepository)(nil)

func (m *mockAPITokenRepository) SaveToken(ctx context.Context, token domain.APIToken) error {
	if m.SaveTokenFn != nil {
		return m.SaveTokenFn(ctx, token)
	}
	return nil
}

func (m *mockAPITokenRepository) FindTokenByHash(ctx context.Context, tokenHash string) (*domain.APIToken, error) {
	if m.FindTokenByHashFn != nil {
		return m.FindTokenByHashFn(ctx, tokenHash)
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockAPITokenRepository) FindTokensByUser(ctx context.Context, userID string) ([]domain.APIToken, error) {
	if m.FindTokensByUserFn != nil {
		return m.FindTokensByUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockAPITokenRepository) TouchToken(ctx context.Context, tokenID string, usedAt time.Time) error {
	if m.TouchTokenFn != nil {
		return m.TouchTokenFn(ctx, tokenID, usedAt)
	}
	return nil
}

func (m *mockAPITokenRepository) RevokeToken(ctx context.Context, tokenID string, revokedAt time.Time) error {
	if m.RevokeTokenFn != nil {
		return m.RevokeTokenFn(ctx, tokenID, revokedAt)
	}
	return nil
}

// --- ReportingRepository ---

type mockReportingRepository struct {
	CountClientsPerSetorFn     func(ctx context.Context, setores []domain.Setor) (map[domain.Setor]int, error)
	CountTasksPerStatusFn      func(ctx context.Context, setores []domain.Setor) (map[domain.TaskStatus]int, error)
	CountDocumentsSinceFn      func(ctx context.Context, setores []domain.Setor, since time.Time) (int, error)
	CountActiveConversationsFn func(ctx context.Context) (int, error)
	SumMonthlyFeesFn           func(ctx context.Context, setores []domain.Setor) (decimal.Decimal, error)
}

var _ ports.ReportingRepository = (*mockReportingRepository)(nil)

func (m *mockReportingRepository) CountClientsPerSetor(ctx context.Context, setores []domain.Setor) (map[domain.Setor]int, error) {
	if m.CountClientsPerSetorFn != nil {
		return m.CountClientsPerSetorFn(ctx, setores)
	}
	return map[domain.Setor]int{}, nil
}

func (m *mockReportingRepository) CountTasksPerStatus(ctx context.Context, setores []domain.Setor) (map[domain.TaskStatus]int, error) {
	if m.CountTasksPerStatusFn != nil {
		return m.CountTasksPerStatusFn(ctx, setores)
	}
	return map[domain.TaskStatus]int{}, nil
}

func (m *mockReportingRepository) CountDocumentsSince(ctx context.Context, setores []domain.Setor, since time.Time) (int, error) {
	if m.CountDocumentsSinceFn != nil {
		return m.CountDocumentsSinceFn(ctx, setores, since)
	}
	return 0, nil
}

func (m *mockReportingRepository) CountActiveConversations(ctx context.Context) (int, error) {
	if m.CountActiveConversationsFn != nil {
		return m.CountActiveConversationsFn(ctx)
	}
	return 0, nil
}

func (m *mockReportingRepository) SumMonthlyFees(ctx context.Context, setores []domain.Setor) (decimal.Decimal, error) {
	if m.SumMonthlyFeesFn != nil {
		return m.SumMonthlyFeesFn(ctx, setores)
	}
	return decimal.Zero, nil
}

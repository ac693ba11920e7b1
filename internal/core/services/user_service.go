package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/contaflow/backoffice/internal/apperrors"
	"github.com/contaflow/backoffice/internal/core/domain"
	"github.com/contaflow/backoffice/internal/core/ports"
	"github.com/contaflow/backoffice/internal/dto"
	"github.com/contaflow/backoffice/internal/utils"
)

// userService implements UserSvcFacade: profile reads plus the
// privileged provisioning, password-reset and role mutations.
type userService struct {
	userRepo ports.UserRepository
	auth     ports.AuthSvcFacade
	authz    ports.AuthzSvcFacade
}

func NewUserService(userRepo ports.UserRepository, auth ports.AuthSvcFacade, authz ports.AuthzSvcFacade) ports.UserSvcFacade {
	return &userService{userRepo: userRepo, auth: auth, authz: authz}
}

// ProvisionUser creates an identity plus its role row and optional
// sector assignment, or adopts an existing identity found by email.
// Adoption reconciles the profile and reports userExists; a requested
// role differing from the derived one is reported as roleMismatch and
// only applied when the actor is a master admin.
func (s *userService) ProvisionUser(ctx context.Context, actor *domain.DerivedUser, req dto.ProvisionUserRequest) (*dto.ProvisionUserResponse, error) {
	caps := s.authz.CapabilitiesFor(actor)

	role := domain.RoleUser
	if req.Role != nil {
		role = *req.Role
	}
	if role == domain.RoleAdmin && !caps.CanCreateAdmin {
		return nil, fmt.Errorf("only master admins may create admins: %w", apperrors.ErrForbidden)
	}
	if req.Setor != nil && !domain.ValidSetor(*req.Setor) {
		return nil, fmt.Errorf("invalid setor %q: %w", *req.Setor, apperrors.ErrValidation)
	}

	existing, err := s.userRepo.FindUserByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing user: %w", err)
	}
	if existing != nil {
		return s.adoptExisting(ctx, actor, existing, req, role)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := domain.User{
		UserID:       uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.FullName,
		Telefone:     req.Telefone,
		AuthProvider: "local",
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}
	if err := s.userRepo.ProvisionUser(ctx, user, role, req.Setor); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("username or email already in use: %w", err)
		}
		return nil, fmt.Errorf("failed to provision user: %w", err)
	}

	derived, err := s.auth.DeriveUser(ctx, user.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive provisioned user: %w", err)
	}
	return &dto.ProvisionUserResponse{
		Success: true,
		User:    dto.ToUserResponse(derived),
		Message: "user created",
	}, nil
}

func (s *userService) adoptExisting(ctx context.Context, actor *domain.DerivedUser, existing *domain.User, req dto.ProvisionUserRequest, role domain.AppRole) (*dto.ProvisionUserResponse, error) {
	now := time.Now()

	// Fill profile gaps without clobbering what is already there.
	changed := false
	if existing.Name == "" && req.FullName != "" {
		existing.Name = req.FullName
		changed = true
	}
	if existing.Telefone == "" && req.Telefone != "" {
		existing.Telefone = req.Telefone
		changed = true
	}
	if changed {
		existing.LastUpdatedAt = now
		existing.LastUpdatedBy = actor.UserID
		if err := s.userRepo.UpdateUser(ctx, *existing); err != nil {
			return nil, fmt.Errorf("failed to reconcile existing profile: %w", err)
		}
	}

	derived, err := s.auth.DeriveUser(ctx, existing.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive existing user: %w", err)
	}

	roleMismatch := derived.Role != role
	if roleMismatch && actor.IsMasterAdmin {
		assignment := domain.RoleAssignment{
			UserID:    existing.UserID,
			Role:      role,
			CreatedAt: now,
			CreatedBy: actor.UserID,
		}
		if err := s.userRepo.SaveRole(ctx, assignment); err != nil {
			return nil, fmt.Errorf("failed to reconcile role: %w", err)
		}
		if role == domain.RoleUser {
			if err := s.userRepo.DeleteRole(ctx, existing.UserID, domain.RoleAdmin); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("failed to drop admin role: %w", err)
			}
		}
		roleMismatch = false
		derived, err = s.auth.DeriveUser(ctx, existing.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to re-derive user: %w", err)
		}
	}

	msg := "user already existed, profile reconciled"
	if roleMismatch {
		msg = "user already existed with a different role; role left unchanged"
		slog.WarnContext(ctx, "provisioning role mismatch left unchanged",
			slog.String("user_id", existing.UserID),
			slog.String("requested_role", string(role)),
			slog.String("current_role", string(derived.Role)))
	}
	return &dto.ProvisionUserResponse{
		Success:      true,
		User:         dto.ToUserResponse(derived),
		Message:      msg,
		UserExists:   true,
		RoleMismatch: roleMismatch,
	}, nil
}

func (s *userService) GetUser(ctx context.Context, userID string) (*domain.DerivedUser, error) {
	return s.auth.DeriveUser(ctx, userID)
}

func (s *userService) ListUsers(ctx context.Context, limit, offset int) ([]domain.DerivedUser, error) {
	users, err := s.userRepo.FindUsers(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	derived := make([]domain.DerivedUser, 0, len(users))
	for i := range users {
		d, err := s.auth.DeriveUser(ctx, users[i].UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to derive user %s: %w", users[i].UserID, err)
		}
		derived = append(derived, *d)
	}
	return derived, nil
}

func (s *userService) UpdateUser(ctx context.Context, actor *domain.DerivedUser, userID string, req dto.UpdateUserRequest) (*domain.DerivedUser, error) {
	if actor.UserID != userID && actor.Role != domain.RoleAdmin {
		return nil, apperrors.ErrForbidden
	}
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user for update: %w", err)
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Telefone != nil {
		user.Telefone = *req.Telefone
	}
	user.LastUpdatedAt = time.Now()
	user.LastUpdatedBy = actor.UserID
	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return s.auth.DeriveUser(ctx, userID)
}

func (s *userService) DeactivateUser(ctx context.Context, actor *domain.DerivedUser, userID string) error {
	if !actor.IsMasterAdmin {
		return fmt.Errorf("only master admins may deactivate users: %w", apperrors.ErrForbidden)
	}
	if actor.UserID == userID {
		return fmt.Errorf("cannot deactivate own account: %w", apperrors.ErrValidation)
	}
	if err := s.userRepo.MarkUserDeleted(ctx, userID, time.Now(), actor.UserID); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	return nil
}

// ResetPassword is the machine-token path: the caller is authenticated
// by an API token, so actorID carries the token owner's id.
func (s *userService) ResetPassword(ctx context.Context, username, newPassword string, actorID string) error {
	user, err := s.userRepo.FindUserByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to find user for password reset: %w", err)
	}
	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.UserID, hash, actorID); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	// Force re-authentication everywhere.
	if err := s.userRepo.ClearRefreshToken(ctx, user.UserID); err != nil {
		slog.WarnContext(ctx, "failed to clear refresh token after password reset",
			slog.String("user_id", user.UserID), slog.String("error", err.Error()))
	}
	return nil
}

func (s *userService) SetRole(ctx context.Context, actor *domain.DerivedUser, userID string, role domain.AppRole) error {
	if !actor.IsMasterAdmin {
		return fmt.Errorf("only master admins may change roles: %w", apperrors.ErrForbidden)
	}
	if role != domain.RoleAdmin && role != domain.RoleUser {
		return fmt.Errorf("invalid role %q: %w", role, apperrors.ErrValidation)
	}
	assignment := domain.RoleAssignment{
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now(),
		CreatedBy: actor.UserID,
	}
	if err := s.userRepo.SaveRole(ctx, assignment); err != nil {
		return fmt.Errorf("failed to save role: %w", err)
	}
	if role == domain.RoleUser {
		if err := s.userRepo.DeleteRole(ctx, userID, domain.RoleAdmin); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("failed to drop admin role: %w", err)
		}
	}
	return nil
}

func (s *userService) AssignSetor(ctx context.Context, actor *domain.DerivedUser, userID string, setor domain.Setor) error {
	caps := s.authz.CapabilitiesFor(actor)
	if !caps.CanAssignSector {
		return fmt.Errorf("only master admins may assign sectors: %w", apperrors.ErrForbidden)
	}
	if !domain.ValidSetor(setor) {
		return fmt.Errorf("invalid setor %q: %w", setor, apperrors.ErrValidation)
	}
	target, err := s.auth.DeriveUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to derive target user: %w", err)
	}
	if target.Role != domain.RoleAdmin {
		return fmt.Errorf("sector assignments apply to admins only: %w", apperrors.ErrValidation)
	}
	if err := s.userRepo.SaveSetor(ctx, userID, setor); err != nil {
		return fmt.Errorf("failed to assign setor: %w", err)
	}
	return nil
}

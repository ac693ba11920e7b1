package dto

import "github.com/contaflow/backoffice/internal/core/domain"

// ProvisionUserRequest is the privileged user-creation payload. Role
// defaults to "user" when omitted.
type ProvisionUserRequest struct {
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=8"`
	Username string          `json:"username" binding:"required,min=3"`
	FullName string          `json:"fullName"`
	Telefone string          `json:"telefone"`
	Role     *domain.AppRole `json:"role"`
	Setor    *domain.Setor   `json:"setor"`
}

// ProvisionUserResponse reports the outcome of a create-or-adopt
// provisioning call.
type ProvisionUserResponse struct {
	Success      bool         `json:"success"`
	User         UserResponse `json:"user"`
	Message      string       `json:"message"`
	UserExists   bool         `json:"userExists,omitempty"`
	RoleMismatch bool         `json:"roleMismatch,omitempty"`
}

// UpdateUserRequest defines the data allowed for updating a profile.
// Pointers distinguish omitted fields from zero values.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Telefone *string `json:"telefone"`
}

// ResetPasswordRequest carries a privileged password reset.
type ResetPasswordRequest struct {
	Username    string `json:"username" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// SetRoleRequest promotes or demotes a user. Only master admins may
// grant admin.
type SetRoleRequest struct {
	Role domain.AppRole `json:"role" binding:"required,oneof=admin user"`
}

// AssignSetorRequest binds an admin to a sector.
type AssignSetorRequest struct {
	Setor domain.Setor `json:"setor" binding:"required"`
}

// ListUsersParams defines query parameters for listing users.
type ListUsersParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

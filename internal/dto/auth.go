package dto

import (
	"time"

	"github.com/contaflow/backoffice/internal/core/domain"
)

// LoginRequest carries username/password credentials.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse returns the access token plus the derived application
// user (role, sector, master-admin flag).
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// RefreshRequest carries the user id whose refresh cookie is presented.
type RefreshRequest struct {
	UserID string `json:"userID" binding:"required"`
}

// UserResponse is the API shape of a derived user.
type UserResponse struct {
	UserID        string         `json:"userID"`
	Username      string         `json:"username"`
	Email         string         `json:"email"`
	Name          string         `json:"name"`
	Telefone      string         `json:"telefone,omitempty"`
	Role          domain.AppRole `json:"role"`
	Setor         *domain.Setor  `json:"setor,omitempty"`
	IsMasterAdmin bool           `json:"isMasterAdmin"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// ToUserResponse converts a derived user to its API shape.
func ToUserResponse(u *domain.DerivedUser) UserResponse {
	return UserResponse{
		UserID:        u.UserID,
		Username:      u.Username,
		Email:         u.Email,
		Name:          u.Name,
		Telefone:      u.Telefone,
		Role:          u.Role,
		Setor:         u.Setor,
		IsMasterAdmin: u.IsMasterAdmin,
		CreatedAt:     u.CreatedAt,
	}
}

// ListUsersResponse wraps the user listing.
type ListUsersResponse struct {
	Users []UserResponse `json:"users"`
}

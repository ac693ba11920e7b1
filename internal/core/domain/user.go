package domain

import "time"

// AppRole is the application-wide role of a user.
type AppRole string

const (
	RoleAdmin AppRole = "admin"
	RoleUser  AppRole = "user"
)

// User represents an application user: the auth identity plus its profile.
type User struct {
	UserID       string `json:"userID"` // Primary Key (UUID)
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Name         string `json:"name"`
	Telefone     string `json:"telefone,omitempty"`
	AuthProvider string `json:"authProvider,omitempty"` // "local" or "google"
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"`

	// Refresh token rotation state (hash only, never the raw token).
	RefreshTokenHash       string     `json:"-"`
	RefreshTokenExpiryTime *time.Time `json:"-"`
}

// DerivedUser is the application-level view of an authenticated user:
// the profile plus the role, sector and master-admin flag derived from
// the role tables. Setor and IsMasterAdmin are only meaningful when
// Role is RoleAdmin.
type DerivedUser struct {
	User
	Role          AppRole `json:"role"`
	Setor         *Setor  `json:"setor,omitempty"`
	IsMasterAdmin bool    `json:"isMasterAdmin"`
}

// RoleAssignment is a single row of the role table. A user may carry
// several rows; derivation resolves admin over user.
type RoleAssignment struct {
	UserID    string    `json:"userID"`
	Role      AppRole   `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
}

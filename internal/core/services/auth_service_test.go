package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contaflow/backoffice/internal/apperrors"
	"github.com/contaflow/backoffice/internal/core/domain"
	"github.com/contaflow/backoffice/internal/core/services"
	"github.com/contaflow/backoffice/internal/platform/config"
	"github.com/contaflow/backoffice/internal/utils"
)

func authTestConfig() *config.Config {
	return &config.Config{
		JWTSecret:                  "test-secret",
		JWTExpiryDuration:          time.Hour,
		JWTIssuer:                  "backoffice-test",
		RefreshTokenExpiryDuration: 24 * time.Hour,
	}
}

func TestLoginSuccessDerivesAdmin(t *testing.T) {
	hash, err := utils.HashPassword("s3nha-forte")
	require.NoError(t, err)

	setor := domain.SetorFiscal
	repo := &mockUserRepository{
		FindUserByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			assert.Equal(t, "maria", username)
			return &domain.User{UserID: "u1", Username: "maria", PasswordHash: hash}, nil
		},
		FindRolesFn: func(ctx context.Context, userID string) ([]domain.RoleAssignment, error) {
			return []domain.RoleAssignment{
				{UserID: userID, Role: domain.RoleUser},
				{UserID: userID, Role: domain.RoleAdmin},
			}, nil
		},
		FindSetorFn: func(ctx context.Context, userID string) (*domain.Setor, error) {
			return &setor, nil
		},
		IsMasterAdminFn: func(ctx context.Context, userID string) (bool, error) {
			return true, nil
		},
	}
	svc := services.NewAuthService(authTestConfig(), repo)

	derived, err := svc.Login(context.Background(), "maria", "s3nha-forte")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, derived.Role)
	require.NotNil(t, derived.Setor)
	assert.Equal(t, domain.SetorFiscal, *derived.Setor)
	assert.True(t, derived.IsMasterAdmin)
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := utils.HashPassword("certa")
	require.NoError(t, err)

	repo := &mockUserRepository{
		FindUserByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return &domain.User{UserID: "u1", PasswordHash: hash}, nil
		},
	}
	svc := services.NewAuthService(authTestConfig(), repo)

	_, err = svc.Login(context.Background(), "maria", "errada")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestLoginUnknownUser(t *testing.T) {
	svc := services.NewAuthService(authTestConfig(), &mockUserRepository{})

	_, err := svc.Login(context.Background(), "ninguem", "tanto-faz")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestDeriveDefaultsToUserOnRoleLookupFailure(t *testing.T) {
	repo := &mockUserRepository{
		FindUserByIDFn: func(ctx context.Context, userID string) (*domain.User, error) {
			return &domain.User{UserID: userID}, nil
		},
		FindRolesFn: func(ctx context.Context, userID string) ([]domain.RoleAssignment, error) {
			return nil, errors.New("connection reset")
		},
	}
	svc := services.NewAuthService(authTestConfig(), repo)

	derived, err := svc.DeriveUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, derived.Role)
	assert.Nil(t, derived.Setor)
	assert.False(t, derived.IsMasterAdmin)
}

func TestDeriveAdminWithoutSetorRow(t *testing.T) {
	repo := &mockUserRepository{
		FindUserByIDFn: func(ctx context.Context, userID string) (*domain.User, error) {
			return &domain.User{UserID: userID}, nil
		},
		FindRolesFn: func(ctx context.Context, userID string) ([]domain.RoleAssignment, error) {
			return []domain.RoleAssignment{{UserID: userID, Role: domain.RoleAdmin}}, nil
		},
		// FindSetor and IsMasterAdmin keep their not-found/false defaults
	}
	svc := services.NewAuthService(authTestConfig(), repo)

	derived, err := svc.DeriveUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, derived.Role)
	assert.Nil(t, derived.Setor)
	assert.False(t, derived.IsMasterAdmin)
}

func TestGenerateAccessToken(t *testing.T) {
	svc := services.NewAuthService(authTestConfig(), &mockUserRepository{})

	token, expiry, err := svc.GenerateAccessToken(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiry.After(time.Now()))
}

func TestIssueRefreshTokenStoresHashOnly(t *testing.T) {
	var storedHash string
	repo := &mockUserRepository{
		UpdateRefreshTokenFn: func(ctx context.Context, userID, hash string, expiry time.Time) error {
			storedHash = hash
			return nil
		},
	}
	svc := services.NewAuthService(authTestConfig(), repo)

	raw, expiry, err := svc.IssueRefreshToken(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.True(t, expiry.After(time.Now()))

	require.NotEmpty(t, storedHash)
	assert.NotEqual(t, raw, storedHash)
	assert.True(t, utils.CompareRefreshTokenHash(raw, storedHash))
}

func TestValidateRefreshToken(t *testing.T) {
	raw := "raw-refresh-token"
	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)

	userWith := func(hash string, expiry *time.Time) *domain.User {
		return &domain.User{UserID: "u1", RefreshTokenHash: hash, RefreshTokenExpiryTime: expiry}
	}

	t.Run("valid", func(t *testing.T) {
		repo := &mockUserRepository{
			FindUserByIDFn: func(ctx context.Context, userID string) (*domain.User, error) {
				return userWith(utils.HashRefreshToken(raw), &future), nil
			},
		}
		svc := services.NewAuthService(authTestConfig(), repo)
		derived, err := svc.ValidateRefreshToken(context.Background(), "u1", raw)
		require.NoError(t, err)
		assert.Equal(t, "u1", derived.UserID)
	})

	t.Run("expired", func(t *testing.T) {
		repo := &mockUserRepository{
			FindUserByIDFn: func(ctx context.Context, userID string) (*domain.User, error) {
				return userWith(utils.HashRefreshToken(raw), &past), nil
			},
		}
		svc := services.NewAuthService(authTestConfig(), repo)
		_, err := svc.ValidateRefreshToken(context.Background(), "u1", raw)
		assert.ErrorIs(t, err, apperrors.ErrRefreshTokenExpired)
	})

	t.Run("wrong token", func(t *testing.T) {
		repo := &mockUserRepository{
			FindUserByIDFn: func(ctx context.Context, userID string) (*domain.User, error) {
				return userWith(utils.HashRefreshToken("outro"), &future), nil
			},
		}
		svc := services.NewAuthService(authTestConfig(), repo)
		_, err := svc.ValidateRefreshToken(context.Background(), "u1", raw)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("no token on record", func(t *testing.T) {
		repo := &mockUserRepository{
			FindUserByIDFn: func(ctx context.Context, userID string) (*domain.User, error) {
				return userWith("", nil), nil
			},
		}
		svc := services.NewAuthService(authTestConfig(), repo)
		_, err := svc.ValidateRefreshToken(context.Background(), "u1", raw)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})
}

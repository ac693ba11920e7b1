package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contaflow/backoffice/internal/apperrors"
	"github.com/contaflow/backoffice/internal/core/domain"
	"github.com/contaflow/backoffice/internal/core/services"
	"github.com/contaflow/backoffice/internal/dto"
)

func TestCreateTokenReturnsRawOnceStoresHash(t *testing.T) {
	repo := &mockAPITokenRepository{}
	var stored domain.APIToken
	repo.SaveTokenFn = func(ctx context.Context, token domain.APIToken) error {
		stored = token
		return nil
	}
	svc := services.NewAPITokenService(repo)

	resp, err := svc.CreateToken(context.Background(), "u1", dto.CreateAPITokenRequest{Name: "ci", ExpiresInDays: 30})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "ci", resp.Name)
	require.NotNil(t, resp.ExpiresAt)

	assert.Equal(t, "u1", stored.UserID)
	assert.NotEqual(t, resp.Token, stored.TokenHash)
	assert.Len(t, stored.TokenHash, 64) // hex sha256

	// the raw token round-trips through Authenticate via the stored hash
	repo.FindTokenByHashFn = func(ctx context.Context, tokenHash string) (*domain.APIToken, error) {
		if tokenHash == stored.TokenHash {
			cp := stored
			return &cp, nil
		}
		return nil, apperrors.ErrNotFound
	}
	got, err := svc.Authenticate(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, got.ID)
}

func TestCreateTokenWithoutExpiry(t *testing.T) {
	svc := services.NewAPITokenService(&mockAPITokenRepository{})

	resp, err := svc.CreateToken(context.Background(), "u1", dto.CreateAPITokenRequest{Name: "forever"})
	require.NoError(t, err)
	assert.Nil(t, resp.ExpiresAt)
}

func TestAuthenticateRejectsRevokedAndExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)

	cases := map[string]domain.APIToken{
		"revoked": {ID: "t1", TokenHash: "h", RevokedAt: &past},
		"expired": {ID: "t2", TokenHash: "h", ExpiresAt: &past},
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			repo := &mockAPITokenRepository{
				FindTokenByHashFn: func(ctx context.Context, tokenHash string) (*domain.APIToken, error) {
					cp := token
					return &cp, nil
				},
			}
			svc := services.NewAPITokenService(repo)
			_, err := svc.Authenticate(context.Background(), "whatever")
			assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
		})
	}
}

func TestAuthenticateUnknownToken(t *testing.T) {
	svc := services.NewAPITokenService(&mockAPITokenRepository{})

	_, err := svc.Authenticate(context.Background(), "nope")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAuthenticateStampsLastUse(t *testing.T) {
	touched := ""
	repo := &mockAPITokenRepository{
		FindTokenByHashFn: func(ctx context.Context, tokenHash string) (*domain.APIToken, error) {
			return &domain.APIToken{ID: "t1", TokenHash: tokenHash}, nil
		},
		TouchTokenFn: func(ctx context.Context, tokenID string, usedAt time.Time) error {
			touched = tokenID
			return nil
		},
	}
	svc := services.NewAPITokenService(repo)

	_, err := svc.Authenticate(context.Background(), "raw")
	require.NoError(t, err)
	assert.Equal(t, "t1", touched)
}

func TestRevokeTokenChecksOwnership(t *testing.T) {
	revoked := ""
	repo := &mockAPITokenRepository{
		FindTokensByUserFn: func(ctx context.Context, userID string) ([]domain.APIToken, error) {
			return []domain.APIToken{{ID: "t1", UserID: userID}}, nil
		},
		RevokeTokenFn: func(ctx context.Context, tokenID string, revokedAt time.Time) error {
			revoked = tokenID
			return nil
		},
	}
	svc := services.NewAPITokenService(repo)

	require.NoError(t, svc.RevokeToken(context.Background(), "u1", "t1"))
	assert.Equal(t, "t1", revoked)

	err := svc.RevokeToken(context.Background(), "u1", "someone-elses")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

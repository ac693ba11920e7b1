package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
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

// apiTokenService manages long-lived machine tokens. The raw token is
// returned exactly once at creation; only its SHA256 is stored.
type apiTokenService struct {
	tokenRepo ports.APITokenRepository
}

func NewAPITokenService(tokenRepo ports.APITokenRepository) ports.APITokenSvcFacade {
	return &apiTokenService{tokenRepo: tokenRepo}
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func (s *apiTokenService) CreateToken(ctx context.Context, userID string, req dto.CreateAPITokenRequest) (*dto.CreateAPITokenResponse, error) {
	raw, err := utils.GenerateSecureRandomString(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	var expiresAt *time.Time
	if req.ExpiresInDays > 0 {
		t := time.Now().AddDate(0, 0, req.ExpiresInDays)
		expiresAt = &t
	}

	token := domain.APIToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      req.Name,
		TokenHash: hashToken(raw),
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	if err := s.tokenRepo.SaveToken(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to save token: %w", err)
	}
	return &dto.CreateAPITokenResponse{
		ID:        token.ID,
		Name:      token.Name,
		Token:     raw,
		ExpiresAt: token.ExpiresAt,
	}, nil
}

func (s *apiTokenService) ListTokens(ctx context.Context, userID string) ([]domain.APIToken, error) {
	return s.tokenRepo.FindTokensByUser(ctx, userID)
}

func (s *apiTokenService) RevokeToken(ctx context.Context, userID, tokenID string) error {
	tokens, err := s.tokenRepo.FindTokensByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to check token ownership: %w", err)
	}
	owned := false
	for i := range tokens {
		if tokens[i].ID == tokenID {
			owned = true
			break
		}
	}
	if !owned {
		return apperrors.ErrNotFound
	}
	return s.tokenRepo.RevokeToken(ctx, tokenID, time.Now())
}

// Authenticate resolves a presented raw token to its record, rejecting
// revoked or expired tokens and stamping last use.
func (s *apiTokenService) Authenticate(ctx context.Context, rawToken string) (*domain.APIToken, error) {
	token, err := s.tokenRepo.FindTokenByHash(ctx, hashToken(rawToken))
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}
	if !token.IsValid(time.Now()) {
		return nil, apperrors.ErrUnauthorized
	}
	if err := s.tokenRepo.TouchToken(ctx, token.ID, time.Now()); err != nil {
		slog.WarnContext(ctx, "failed to stamp token use",
			slog.String("token_id", token.ID), slog.String("error", err.Error()))
	}
	return token, nil
}

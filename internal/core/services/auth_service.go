package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"

	"github.com/contaflow/backoffice/internal/apperrors"
	"github.com/contaflow/backoffice/internal/core/domain"
	"github.com/contaflow/backoffice/internal/core/ports"
	"github.com/contaflow/backoffice/internal/platform/config"
	"github.com/contaflow/backoffice/internal/utils"
)

// authService implements AuthSvcFacade: credential checks, JWT and
// refresh token handling, and the role derivation performed on every
// authenticated request.
type authService struct {
	cfg          *config.Config
	userRepo     ports.UserRepository
	oauth2Config *oauth2.Config
}

func NewAuthService(cfg *config.Config, userRepo ports.UserRepository) ports.AuthSvcFacade {
	return &authService{
		cfg:      cfg,
		userRepo: userRepo,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

func (s *authService) Login(ctx context.Context, username, password string) (*domain.DerivedUser, error) {
	user, err := s.userRepo.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to look up user for login: %w", err)
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.ErrUnauthorized
	}
	return s.derive(ctx, user), nil
}

// DeriveUser recomputes role, sector and master-admin flag for an
// authenticated identity. Lookup failures degrade to least privilege
// and are logged rather than propagated.
func (s *authService) DeriveUser(ctx context.Context, userID string) (*domain.DerivedUser, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s for derivation: %w", userID, err)
	}
	return s.derive(ctx, user), nil
}

func (s *authService) derive(ctx context.Context, user *domain.User) *domain.DerivedUser {
	derived := &domain.DerivedUser{User: *user, Role: domain.RoleUser}

	roles, err := s.userRepo.FindRoles(ctx, user.UserID)
	if err != nil {
		slog.WarnContext(ctx, "role lookup failed, defaulting to user",
			slog.String("user_id", user.UserID), slog.String("error", err.Error()))
		return derived
	}
	for _, r := range roles {
		if r.Role == domain.RoleAdmin {
			derived.Role = domain.RoleAdmin
			break
		}
	}
	if derived.Role != domain.RoleAdmin {
		return derived
	}

	// Sector and master-admin flag only exist for admins.
	setor, err := s.userRepo.FindSetor(ctx, user.UserID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		slog.WarnContext(ctx, "sector lookup failed, leaving unset",
			slog.String("user_id", user.UserID), slog.String("error", err.Error()))
	} else {
		derived.Setor = setor
	}

	isMaster, err := s.userRepo.IsMasterAdmin(ctx, user.UserID)
	if err != nil {
		slog.WarnContext(ctx, "master-admin lookup failed, defaulting to false",
			slog.String("user_id", user.UserID), slog.String("error", err.Error()))
		isMaster = false
	}
	derived.IsMasterAdmin = isMaster
	return derived
}

func (s *authService) GenerateAccessToken(ctx context.Context, userID string) (string, time.Time, error) {
	expiryTime := time.Now().Add(s.cfg.JWTExpiryDuration)
	token, err := utils.GenerateJWT(userID, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	return token, expiryTime, nil
}

func (s *authService) IssueRefreshToken(ctx context.Context, userID string) (string, time.Time, error) {
	rawToken, err := utils.GenerateSecureRandomString(32)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	expiry := time.Now().Add(s.cfg.RefreshTokenExpiryDuration)
	if err := s.userRepo.UpdateRefreshToken(ctx, userID, utils.HashRefreshToken(rawToken), expiry); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to persist refresh token: %w", err)
	}
	return rawToken, expiry, nil
}

func (s *authService) ValidateRefreshToken(ctx context.Context, userID, refreshToken string) (*domain.DerivedUser, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load user for refresh validation: %w", err)
	}
	if user.RefreshTokenHash == "" || user.RefreshTokenExpiryTime == nil {
		return nil, apperrors.ErrUnauthorized
	}
	if time.Now().After(*user.RefreshTokenExpiryTime) {
		return nil, apperrors.ErrRefreshTokenExpired
	}
	if !utils.CompareRefreshTokenHash(refreshToken, user.RefreshTokenHash) {
		return nil, apperrors.ErrUnauthorized
	}
	return s.derive(ctx, user), nil
}

func (s *authService) Logout(ctx context.Context, userID string) error {
	if err := s.userRepo.ClearRefreshToken(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	return nil
}

func (s *authService) GoogleLoginURL(state string) string {
	return s.oauth2Config.AuthCodeURL(state)
}

// googleUserInfo is the subset of the Google userinfo response we read.
type googleUserInfo struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

// HandleGoogleCallback exchanges the OAuth code, extracts the verified
// email and maps it onto an existing local account. Google sign-in
// never provisions accounts: unknown emails are rejected.
func (s *authService) HandleGoogleCallback(ctx context.Context, code string) (*domain.DerivedUser, error) {
	if s.cfg.GoogleClientID == "" {
		return nil, apperrors.ErrConfiguration
	}
	token, err := s.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	info, err := s.googleUserFromToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !info.VerifiedEmail || info.Email == "" {
		return nil, apperrors.ErrUnauthorized
	}

	user, err := s.userRepo.FindUserByEmail(ctx, info.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to map google account: %w", err)
	}
	return s.derive(ctx, user), nil
}

// googleUserFromToken prefers the signed ID token and only falls back
// to the userinfo endpoint when the exchange did not include one.
func (s *authService) googleUserFromToken(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	if raw, ok := token.Extra("id_token").(string); ok && raw != "" {
		payload, err := idtoken.Validate(ctx, raw, s.cfg.GoogleClientID)
		if err != nil {
			return nil, fmt.Errorf("failed to validate google id token: %w", err)
		}
		info := &googleUserInfo{}
		if email, ok := payload.Claims["email"].(string); ok {
			info.Email = email
		}
		if verified, ok := payload.Claims["email_verified"].(bool); ok {
			info.VerifiedEmail = verified
		}
		if name, ok := payload.Claims["name"].(string); ok {
			info.Name = name
		}
		return info, nil
	}

	client := s.oauth2Config.Client(ctx, token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch google user info: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google userinfo returned status %s", resp.Status)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode google user info: %w", err)
	}
	return &info, nil
}

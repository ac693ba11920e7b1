package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/contaflow/backoffice/internal/core/ports"
	"github.com/contaflow/backoffice/internal/dto"
	"github.com/contaflow/backoffice/internal/middleware"
	"github.com/contaflow/backoffice/internal/platform/config"
	"github.com/contaflow/backoffice/internal/utils"
)

// authHandler serves login, token refresh, logout and the Google
// sign-in redirect pair.
type authHandler struct {
	cfg     *config.Config
	authSvc ports.AuthSvcFacade
}

func newAuthHandler(cfg *config.Config, authSvc ports.AuthSvcFacade) *authHandler {
	return &authHandler{cfg: cfg, authSvc: authSvc}
}

// registerAuthRoutes registers the public authentication routes.
// Credential endpoints are brute-forceable, so the whole group sits
// behind a per-IP limit.
func registerAuthRoutes(r *gin.Engine, cfg *config.Config, services *ports.ServiceContainer) {
	h := newAuthHandler(cfg, services.Auth)

	rate, _ := limiter.NewRateFromFormatted("5-M")
	ipLimiter := limiter.New(memory.NewStore(), rate)

	auth := r.Group("/api/v1/auth", middleware.RateLimit(ipLimiter))
	{
		auth.POST("/login", h.login)
		auth.POST("/refresh", h.refresh)
		auth.POST("/logout", h.logout)
		auth.GET("/google/login", h.googleLogin)
		auth.GET("/google/callback", h.googleCallback)
	}
}

func (h *authHandler) setRefreshCookie(c *gin.Context, token string, maxAge int) {
	c.SetCookie(h.cfg.RefreshTokenCookieName, token, maxAge, h.cfg.RefreshTokenCookiePath, "", h.cfg.IsProduction, true)
}

// login godoc
// @Summary Log in with username and password
// @Description Issues an access token and a refresh cookie; the response carries the derived role/sector view of the user
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Bad credentials"
// @Router /auth/login [post]
func (h *authHandler) login(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	user, err := h.authSvc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		logger.Warn("login rejected", slog.String("username", req.Username))
		respondError(c, err)
		return
	}

	token, expiresAt, err := h.authSvc.GenerateAccessToken(c.Request.Context(), user.UserID)
	if err != nil {
		logger.Error("failed to issue access token", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}
	refreshToken, _, err := h.authSvc.IssueRefreshToken(c.Request.Context(), user.UserID)
	if err != nil {
		logger.Error("failed to issue refresh token", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}
	h.setRefreshCookie(c, refreshToken, int(h.cfg.RefreshTokenExpiryDuration.Seconds()))

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.ToUserResponse(user),
	})
}

// refresh godoc
// @Summary Rotate the access token
// @Description Validates the refresh cookie and issues a fresh access token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.RefreshRequest true "User whose cookie is presented"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} map[string]string "Refresh token invalid or expired"
// @Router /auth/refresh [post]
func (h *authHandler) refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	rawToken, err := c.Cookie(h.cfg.RefreshTokenCookieName)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh cookie missing"})
		return
	}

	user, err := h.authSvc.ValidateRefreshToken(c.Request.Context(), req.UserID, rawToken)
	if err != nil {
		respondError(c, err)
		return
	}

	token, expiresAt, err := h.authSvc.GenerateAccessToken(c.Request.Context(), user.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	newRefresh, _, err := h.authSvc.IssueRefreshToken(c.Request.Context(), user.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.setRefreshCookie(c, newRefresh, int(h.cfg.RefreshTokenExpiryDuration.Seconds()))

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.ToUserResponse(user),
	})
}

// logout godoc
// @Summary Log out
// @Description Clears the stored refresh token and expires the cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.RefreshRequest true "User logging out"
// @Success 204 "Logged out"
// @Router /auth/logout [post]
func (h *authHandler) logout(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	if err := h.authSvc.Logout(c.Request.Context(), req.UserID); err != nil {
		respondError(c, err)
		return
	}
	h.setRefreshCookie(c, "", -1)
	c.Status(http.StatusNoContent)
}

// googleLogin godoc
// @Summary Begin Google sign-in
// @Description Redirects to the Google consent screen with a CSRF state cookie
// @Tags auth
// @Success 307 "Redirect to Google"
// @Router /auth/google/login [get]
func (h *authHandler) googleLogin(c *gin.Context) {
	state, err := utils.GenerateSecureRandomString(16)
	if err != nil {
		respondError(c, err)
		return
	}
	c.SetCookie("oauth_state", state, 300, "/api/v1/auth", "", h.cfg.IsProduction, true)
	c.Redirect(http.StatusTemporaryRedirect, h.authSvc.GoogleLoginURL(state))
}

// googleCallback godoc
// @Summary Complete Google sign-in
// @Description Exchanges the OAuth code, maps the verified email to a local account and issues tokens
// @Tags auth
// @Produce json
// @Param state query string true "CSRF state"
// @Param code query string true "Authorization code"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} map[string]string "State mismatch or unknown account"
// @Router /auth/google/callback [get]
func (h *authHandler) googleCallback(c *gin.Context) {
	expectedState, err := c.Cookie("oauth_state")
	if err != nil || expectedState == "" || c.Query("state") != expectedState {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "OAuth state mismatch"})
		return
	}
	user, err := h.authSvc.HandleGoogleCallback(c.Request.Context(), c.Query("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	token, expiresAt, err := h.authSvc.GenerateAccessToken(c.Request.Context(), user.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	refreshToken, _, err := h.authSvc.IssueRefreshToken(c.Request.Context(), user.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.setRefreshCookie(c, refreshToken, int(h.cfg.RefreshTokenExpiryDuration.Seconds()))

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.ToUserResponse(user),
	})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/contaflow/backoffice/internal/core/ports"
	"github.com/contaflow/backoffice/internal/dto"
	"github.com/contaflow/backoffice/internal/middleware"
)

// apiTokenHandler manages the caller's own machine tokens.
type apiTokenHandler struct {
	tokenService ports.APITokenSvcFacade
}

func newAPITokenHandler(ts ports.APITokenSvcFacade) *apiTokenHandler {
	return &apiTokenHandler{tokenService: ts}
}

func registerAPITokenRoutes(rg *gin.RouterGroup, tokenService ports.APITokenSvcFacade) {
	h := newAPITokenHandler(tokenService)

	tokens := rg.Group("/tokens", middleware.RequireAdmin())
	{
		tokens.POST("", h.createToken)
		tokens.GET("", h.listTokens)
		tokens.DELETE("/:id", h.revokeToken)
	}
}

// createToken godoc
// @Summary Create a machine token
// @Description The raw token is returned once; only its hash is stored
// @Tags tokens
// @Accept json
// @Produce json
// @Param body body dto.CreateAPITokenRequest true "Token name and optional expiry"
// @Success 201 {object} dto.CreateAPITokenResponse
// @Security BearerAuth
// @Router /tokens [post]
func (h *apiTokenHandler) createToken(c *gin.Context) {
	var req dto.CreateAPITokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, _ := middleware.GetUserIDFromContext(c)
	resp, err := h.tokenService.CreateToken(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// listTokens godoc
// @Summary List the caller's machine tokens
// @Tags tokens
// @Produce json
// @Success 200 {array} dto.APITokenResponse
// @Security BearerAuth
// @Router /tokens [get]
func (h *apiTokenHandler) listTokens(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	tokens, err := h.tokenService.ListTokens(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.APITokenResponse, 0, len(tokens))
	for i := range tokens {
		out = append(out, dto.ToAPITokenResponse(&tokens[i]))
	}
	c.JSON(http.StatusOK, out)
}

// revokeToken godoc
// @Summary Revoke a machine token
// @Tags tokens
// @Param id path string true "Token ID"
// @Success 204 "Revoked"
// @Failure 404 {object} map[string]string "Token not found or not owned by caller"
// @Security BearerAuth
// @Router /tokens/{id} [delete]
func (h *apiTokenHandler) revokeToken(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	if err := h.tokenService.RevokeToken(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

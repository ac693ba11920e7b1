package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/contaflow/backoffice/internal/core/domain"
	"github.com/contaflow/backoffice/internal/core/ports"
	"github.com/contaflow/backoffice/internal/dto"
	"github.com/contaflow/backoffice/internal/middleware"
)

// userHandler serves profile reads and the privileged admin user
// management surface.
type userHandler struct {
	userService ports.UserSvcFacade
}

func newUserHandler(us ports.UserSvcFacade) *userHandler {
	return &userHandler{userService: us}
}

// registerUserRoutes registers profile and admin user routes.
func registerUserRoutes(rg *gin.RouterGroup, userService ports.UserSvcFacade) {
	h := newUserHandler(userService)

	users := rg.Group("/users")
	{
		users.GET("", middleware.RequireAdmin(), h.listUsers)
		users.GET("/:id", h.getUser)
		users.PUT("/:id", h.updateUser)
	}

	admin := rg.Group("/admin/users", middleware.RequireAdmin())
	{
		admin.POST("", h.provisionUser)
		admin.POST("/:id/password", h.resetPassword)
		admin.PUT("/:id/role", middleware.RequireMasterAdmin(), h.setRole)
		admin.PUT("/:id/setor", middleware.RequireMasterAdmin(), h.assignSetor)
		admin.DELETE("/:id", middleware.RequireMasterAdmin(), h.deactivateUser)
	}
}

// provisionUser godoc
// @Summary Provision a user
// @Description Creates an identity plus role and optional sector in one transaction, or adopts an existing account found by email
// @Tags users
// @Accept json
// @Produce json
// @Param user body dto.ProvisionUserRequest true "User details"
// @Success 201 {object} dto.ProvisionUserResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Actor may not grant the requested role"
// @Security BearerAuth
// @Router /admin/users [post]
func (h *userHandler) provisionUser(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ProvisionUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, _ := middleware.GetActorFromContext(c)

	resp, err := h.userService.ProvisionUser(c.Request.Context(), actor, req)
	if err != nil {
		logger.Error("provisioning failed", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}
	status := http.StatusCreated
	if resp.UserExists {
		status = http.StatusOK
	}
	c.JSON(status, resp)
}

// resetPassword godoc
// @Summary Reset a user's password
// @Description Privileged reset, reachable with a machine token or an admin bearer token
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "Ignored, kept for URL symmetry"
// @Param body body dto.ResetPasswordRequest true "Target username and new password"
// @Success 204 "Password updated"
// @Failure 404 {object} map[string]string "Unknown username"
// @Security BearerAuth
// @Router /admin/users/{id}/password [post]
func (h *userHandler) resetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actorID, _ := middleware.GetUserIDFromContext(c)
	if err := h.userService.ResetPassword(c.Request.Context(), req.Username, req.NewPassword, actorID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// listUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.ListUsersResponse
// @Security BearerAuth
// @Router /users [get]
func (h *userHandler) listUsers(c *gin.Context) {
	var params dto.ListUsersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query: " + err.Error()})
		return
	}
	users, err := h.userService.ListUsers(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := dto.ListUsersResponse{Users: make([]dto.UserResponse, 0, len(users))}
	for i := range users {
		resp.Users = append(resp.Users, dto.ToUserResponse(&users[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// getUser godoc
// @Summary Get a user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} dto.UserResponse
// @Failure 403 {object} map[string]string "Not own profile and not admin"
// @Failure 404 {object} map[string]string "User not found"
// @Security BearerAuth
// @Router /users/{id} [get]
func (h *userHandler) getUser(c *gin.Context) {
	actor, _ := middleware.GetActorFromContext(c)
	targetID := c.Param("id")
	if actor.UserID != targetID && actor.Role != domain.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}
	user, err := h.userService.GetUser(c.Request.Context(), targetID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// updateUser godoc
// @Summary Update a user's profile
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param body body dto.UpdateUserRequest true "Profile changes"
// @Success 200 {object} dto.UserResponse
// @Security BearerAuth
// @Router /users/{id} [put]
func (h *userHandler) updateUser(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, _ := middleware.GetActorFromContext(c)
	user, err := h.userService.UpdateUser(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// setRole godoc
// @Summary Promote or demote a user
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param body body dto.SetRoleRequest true "Target role"
// @Success 204 "Role updated"
// @Failure 403 {object} map[string]string "Master admin required"
// @Security BearerAuth
// @Router /admin/users/{id}/role [put]
func (h *userHandler) setRole(c *gin.Context) {
	var req dto.SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, _ := middleware.GetActorFromContext(c)
	if err := h.userService.SetRole(c.Request.Context(), actor, c.Param("id"), req.Role); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// assignSetor godoc
// @Summary Assign an admin to a sector
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param body body dto.AssignSetorRequest true "Sector"
// @Success 204 "Sector assigned"
// @Security BearerAuth
// @Router /admin/users/{id}/setor [put]
func (h *userHandler) assignSetor(c *gin.Context) {
	var req dto.AssignSetorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, _ := middleware.GetActorFromContext(c)
	if err := h.userService.AssignSetor(c.Request.Context(), actor, c.Param("id"), req.Setor); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// deactivateUser godoc
// @Summary Deactivate a user
// @Tags users
// @Param id path string true "User ID"
// @Success 204 "Deactivated"
// @Security BearerAuth
// @Router /admin/users/{id} [delete]
func (h *userHandler) deactivateUser(c *gin.Context) {
	actor, _ := middleware.GetActorFromContext(c)
	if err := h.userService.DeactivateUser(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/contaflow/backoffice/internal/core/ports"
	"github.com/contaflow/backoffice/internal/dto"
	"github.com/contaflow/backoffice/internal/middleware"
)

// chatHandler serves the per-client support chat. Routes are reachable
// by the client's own user as well as by sector admins; authorization
// happens in the service.
type chatHandler struct {
	chatService ports.ChatSvcFacade
}

func newChatHandler(cs ports.ChatSvcFacade) *chatHandler {
	return &chatHandler{chatService: cs}
}

func registerChatRoutes(rg *gin.RouterGroup, chatService ports.ChatSvcFacade) {
	h := newChatHandler(chatService)

	chat := rg.Group("/clients/:id/messages")
	{
		chat.GET("", h.listMessages)
		chat.POST("", h.postMessage)
		chat.POST("/read", h.markRead)
	}
}

// listMessages godoc
// @Summary List a client's chat messages
// @Tags chat
// @Produce json
// @Param id path string true "Client ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} dto.MessageResponse
// @Failure 403 {object} map[string]string "Not the client's user and not a sector admin"
// @Security BearerAuth
// @Router /clients/{id}/messages [get]
func (h *chatHandler) listMessages(c *gin.Context) {
	var params dto.ListMessagesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query: " + err.Error()})
		return
	}
	actor, _ := middleware.GetActorFromContext(c)
	messages, err := h.chatService.ListMessages(c.Request.Context(), actor, c.Param("id"), params.Limit, params.Offset)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.MessageResponse, 0, len(messages))
	for i := range messages {
		out = append(out, dto.ToMessageResponse(&messages[i]))
	}
	c.JSON(http.StatusOK, out)
}

// postMessage godoc
// @Summary Post a chat message
// @Tags chat
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Param body body dto.PostMessageRequest true "Message content"
// @Success 201 {object} dto.MessageResponse
// @Security BearerAuth
// @Router /clients/{id}/messages [post]
func (h *chatHandler) postMessage(c *gin.Context) {
	var req dto.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, _ := middleware.GetActorFromContext(c)
	msg, err := h.chatService.PostMessage(c.Request.Context(), actor, c.Param("id"), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToMessageResponse(msg))
}

// markRead godoc
// @Summary Mark the other side's messages as read
// @Tags chat
// @Param id path string true "Client ID"
// @Success 204 "Marked"
// @Security BearerAuth
// @Router /clients/{id}/messages/read [post]
func (h *chatHandler) markRead(c *gin.Context) {
	actor, _ := middleware.GetActorFromContext(c)
	if err := h.chatService.MarkRead(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

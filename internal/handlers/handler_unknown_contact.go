package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/contaflow/backoffice/internal/core/ports"
	"github.com/contaflow/backoffice/internal/dto"
	"github.com/contaflow/backoffice/internal/middleware"
)

type unknownContactHandler struct {
	contactService ports.UnknownContactSvcFacade
}

func newUnknownContactHandler(us ports.UnknownContactSvcFacade) *unknownContactHandler {
	return &unknownContactHandler{contactService: us}
}

func registerUnknownContactRoutes(rg *gin.RouterGroup, contactService ports.UnknownContactSvcFacade) {
	h := newUnknownContactHandler(contactService)

	contacts := rg.Group("/whatsapp/unknown-contacts", middleware.RequireAdmin())
	{
		contacts.GET("", h.listContacts)
		contacts.POST("/:id/resolve", h.resolveContact)
		contacts.DELETE("/:id", h.discardContact)
	}
}

// listContacts godoc
// @Summary List unmatched WhatsApp senders
// @Tags whatsapp
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} dto.UnknownContactResponse
// @Security BearerAuth
// @Router /whatsapp/unknown-contacts [get]
func (h *unknownContactHandler) listContacts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	contacts, err := h.contactService.ListContacts(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.UnknownContactResponse, 0, len(contacts))
	for i := range contacts {
		out = append(out, dto.ToUnknownContactResponse(&contacts[i]))
	}
	c.JSON(http.StatusOK, out)
}

// resolveContact godoc
// @Summary Link an unmatched sender to a client
// @Description Copies the contact's phone onto the client record and removes the pending entry
// @Tags whatsapp
// @Accept json
// @Produce json
// @Param id path string true "Contact ID"
// @Param body body dto.ResolveContactRequest true "Target client"
// @Success 204 "Resolved"
// @Failure 404 {object} map[string]string "Contact or client not found"
// @Security BearerAuth
// @Router /whatsapp/unknown-contacts/{id}/resolve [post]
func (h *unknownContactHandler) resolveContact(c *gin.Context) {
	var req dto.ResolveContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, _ := middleware.GetActorFromContext(c)
	if err := h.contactService.ResolveContact(c.Request.Context(), actor, c.Param("id"), req.ClientID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// discardContact godoc
// @Summary Discard an unmatched sender
// @Tags whatsapp
// @Param id path string true "Contact ID"
// @Success 204 "Discarded"
// @Security BearerAuth
// @Router /whatsapp/unknown-contacts/{id} [delete]
func (h *unknownContactHandler) discardContact(c *gin.Context) {
	if err := h.contactService.DiscardContact(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

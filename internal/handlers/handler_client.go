package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/contaflow/backoffice/internal/core/ports"
	"github.com/contaflow/backoffice/internal/dto"
	"github.com/contaflow/backoffice/internal/middleware"
)

// maxImportSize caps the spreadsheet upload at 10 MiB.
const maxImportSize = 10 << 20

type clientHandler struct {
	clientService ports.ClientSvcFacade
}

func newClientHandler(cs ports.ClientSvcFacade) *clientHandler {
	return &clientHandler{clientService: cs}
}

// registerClientRoutes registers client CRUD and the bulk import.
func registerClientRoutes(rg *gin.RouterGroup, clientService ports.ClientSvcFacade) {
	h := newClientHandler(clientService)

	clients := rg.Group("/clients", middleware.RequireAdmin())
	{
		clients.GET("", h.listClients)
		clients.POST("", h.createClient)
		clients.POST("/import", h.importClients)
		clients.GET("/:id", h.getClient)
		clients.PUT("/:id", h.updateClient)
		clients.DELETE("/:id", h.deleteClient)
	}
}

// createClient godoc
// @Summary Create a client
// @Description Creates a client company, optionally provisioning a login user for its contact
// @Tags clients
// @Accept json
// @Produce json
// @Param client body dto.CreateClientRequest true "Client details"
// @Success 201 {object} dto.ClientResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Sector not permitted"
// @Security BearerAuth
// @Router /clients [post]
func (h *clientHandler) createClient(c *gin.Context) {
	var req dto.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, _ := middleware.GetActorFromContext(c)
	client, err := h.clientService.CreateClient(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToClientResponse(client))
}

// listClients godoc
// @Summary List clients
// @Description Sector-filtered listing with optional free-text search over razao social, email and CNPJ
// @Tags clients
// @Produce json
// @Param setor query string false "Sector filter"
// @Param q query string false "Free-text search"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} dto.ClientResponse
// @Security BearerAuth
// @Router /clients [get]
func (h *clientHandler) listClients(c *gin.Context) {
	var params dto.ListClientsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query: " + err.Error()})
		return
	}
	actor, _ := middleware.GetActorFromContext(c)
	clients, err := h.clientService.ListClients(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListClientsResponse(clients))
}

// getClient godoc
// @Summary Get a client
// @Tags clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} dto.ClientResponse
// @Failure 404 {object} map[string]string "Client not found"
// @Security BearerAuth
// @Router /clients/{id} [get]
func (h *clientHandler) getClient(c *gin.Context) {
	actor, _ := middleware.GetActorFromContext(c)
	client, err := h.clientService.GetClient(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToClientResponse(client))
}

// updateClient godoc
// @Summary Update a client
// @Tags clients
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Param body body dto.UpdateClientRequest true "Changes"
// @Success 200 {object} dto.ClientResponse
// @Security BearerAuth
// @Router /clients/{id} [put]
func (h *clientHandler) updateClient(c *gin.Context) {
	var req dto.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, _ := middleware.GetActorFromContext(c)
	client, err := h.clientService.UpdateClient(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToClientResponse(client))
}

// deleteClient godoc
// @Summary Delete a client
// @Tags clients
// @Param id path string true "Client ID"
// @Success 204 "Deleted"
// @Security BearerAuth
// @Router /clients/{id} [delete]
func (h *clientHandler) deleteClient(c *gin.Context) {
	actor, _ := middleware.GetActorFromContext(c)
	if err := h.clientService.DeleteClient(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// importClients godoc
// @Summary Bulk import clients from a spreadsheet
// @Description Accepts an .xlsx file; valid rows are inserted in 10-row chunks and per-row errors are reported
// @Tags clients
// @Accept mpfd
// @Produce json
// @Param file formData file true "Spreadsheet (.xlsx)"
// @Success 200 {object} dto.ImportResult
// @Failure 400 {object} map[string]string "Missing or unreadable file"
// @Security BearerAuth
// @Router /clients/import [post]
func (h *clientHandler) importClients(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
		return
	}
	if fileHeader.Size > maxImportSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open upload"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxImportSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
		return
	}

	actor, _ := middleware.GetActorFromContext(c)
	result, err := h.clientService.ImportClients(c.Request.Context(), actor, data)
	if err != nil {
		respondError(c, err)
		return
	}
	logger.Info("client import finished",
		slog.Int("total", result.TotalRows),
		slog.Int("imported", result.Imported),
		slog.Int("errors", len(result.Errors)))
	c.JSON(http.StatusOK, result)
}

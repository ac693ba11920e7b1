package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/contaflow/backoffice/internal/core/ports"
	"github.com/contaflow/backoffice/internal/dto"
	"github.com/contaflow/backoffice/internal/middleware"
)

// maxDocumentSize caps document uploads at 25 MiB.
const maxDocumentSize = 25 << 20

type documentHandler struct {
	documentService ports.DocumentSvcFacade
}

func newDocumentHandler(ds ports.DocumentSvcFacade) *documentHandler {
	return &documentHandler{documentService: ds}
}

// registerDocumentRoutes registers document upload, metadata and
// download routes.
func registerDocumentRoutes(rg *gin.RouterGroup, documentService ports.DocumentSvcFacade) {
	h := newDocumentHandler(documentService)

	docs := rg.Group("/documents", middleware.RequireAdmin())
	{
		docs.GET("", h.listDocuments)
		docs.POST("", h.upload)
		docs.GET("/:id", h.getDocument)
		docs.PUT("/:id", h.updateDocument)
		docs.DELETE("/:id", h.deleteDocument)
		docs.GET("/:id/download", h.downloadURL)
	}
}

// upload godoc
// @Summary Upload a document
// @Description Stores the file in object storage under a sanitized key and records the metadata
// @Tags documents
// @Accept mpfd
// @Produce json
// @Param file formData file true "Document file"
// @Param clientID formData string false "Owning client"
// @Param category formData string false "Category"
// @Param reference formData string false "Free-text reference, e.g. 03/2026"
// @Param urgent formData bool false "Urgency flag"
// @Success 201 {object} dto.DocumentResponse
// @Failure 400 {object} map[string]string "Missing or unreadable file"
// @Security BearerAuth
// @Router /documents [post]
func (h *documentHandler) upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
		return
	}
	if fileHeader.Size > maxDocumentSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open upload"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxDocumentSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
		return
	}

	var clientID *string
	if v := c.PostForm("clientID"); v != "" {
		clientID = &v
	}
	urgent := c.PostForm("urgent") == "true"

	actor, _ := middleware.GetActorFromContext(c)
	doc, err := h.documentService.Upload(c.Request.Context(), actor, clientID,
		fileHeader.Filename, c.PostForm("category"), c.PostForm("reference"), urgent, data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToDocumentResponse(doc))
}

// listDocuments godoc
// @Summary List documents
// @Tags documents
// @Produce json
// @Param clientID query string false "Client filter"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} dto.DocumentResponse
// @Security BearerAuth
// @Router /documents [get]
func (h *documentHandler) listDocuments(c *gin.Context) {
	var params dto.ListDocumentsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query: " + err.Error()})
		return
	}
	actor, _ := middleware.GetActorFromContext(c)
	docs, err := h.documentService.ListDocuments(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.DocumentResponse, 0, len(docs))
	for i := range docs {
		out = append(out, dto.ToDocumentResponse(&docs[i]))
	}
	c.JSON(http.StatusOK, out)
}

// getDocument godoc
// @Summary Get a document
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} dto.DocumentResponse
// @Failure 404 {object} map[string]string "Document not found"
// @Security BearerAuth
// @Router /documents/{id} [get]
func (h *documentHandler) getDocument(c *gin.Context) {
	actor, _ := middleware.GetActorFromContext(c)
	doc, err := h.documentService.GetDocument(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToDocumentResponse(doc))
}

// updateDocument godoc
// @Summary Update document metadata
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param body body dto.UpdateDocumentRequest true "Metadata changes"
// @Success 200 {object} dto.DocumentResponse
// @Security BearerAuth
// @Router /documents/{id} [put]
func (h *documentHandler) updateDocument(c *gin.Context) {
	var req dto.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, _ := middleware.GetActorFromContext(c)
	doc, err := h.documentService.UpdateDocument(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToDocumentResponse(doc))
}

// deleteDocument godoc
// @Summary Delete a document
// @Tags documents
// @Param id path string true "Document ID"
// @Success 204 "Deleted"
// @Security BearerAuth
// @Router /documents/{id} [delete]
func (h *documentHandler) deleteDocument(c *gin.Context) {
	actor, _ := middleware.GetActorFromContext(c)
	if err := h.documentService.DeleteDocument(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// downloadURL godoc
// @Summary Get a presigned download link
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} dto.DownloadURLResponse
// @Security BearerAuth
// @Router /documents/{id}/download [get]
func (h *documentHandler) downloadURL(c *gin.Context) {
	actor, _ := middleware.GetActorFromContext(c)
	url, expiresAt, err := h.documentService.DownloadURL(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.DownloadURLResponse{URL: url, ExpiresAt: expiresAt})
}

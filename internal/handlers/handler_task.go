package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/contaflow/backoffice/internal/core/ports"
	"github.com/contaflow/backoffice/internal/dto"
	"github.com/contaflow/backoffice/internal/middleware"
)

type taskHandler struct {
	taskService ports.TaskSvcFacade
}

func newTaskHandler(ts ports.TaskSvcFacade) *taskHandler {
	return &taskHandler{taskService: ts}
}

// registerTaskRoutes registers task CRUD plus comments and files.
func registerTaskRoutes(rg *gin.RouterGroup, taskService ports.TaskSvcFacade) {
	h := newTaskHandler(taskService)

	tasks := rg.Group("/tasks", middleware.RequireAdmin())
	{
		tasks.GET("", h.listTasks)
		tasks.POST("", h.createTask)
		tasks.GET("/:id", h.getTask)
		tasks.PUT("/:id", h.updateTask)
		tasks.DELETE("/:id", h.deleteTask)
		tasks.GET("/:id/comments", h.listComments)
		tasks.POST("/:id/comments", h.addComment)
		tasks.GET("/:id/files", h.listFiles)
		tasks.POST("/:id/files", h.attachFile)
	}
}

// createTask godoc
// @Summary Create a task
// @Tags tasks
// @Accept json
// @Produce json
// @Param task body dto.CreateTaskRequest true "Task details, due date as DD/MM/AAAA"
// @Success 201 {object} dto.TaskResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Security BearerAuth
// @Router /tasks [post]
func (h *taskHandler) createTask(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, _ := middleware.GetActorFromContext(c)
	task, err := h.taskService.CreateTask(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToTaskResponse(task))
}

// listTasks godoc
// @Summary List tasks
// @Tags tasks
// @Produce json
// @Param clientID query string false "Client filter"
// @Param status query string false "Status filter"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} dto.TaskResponse
// @Security BearerAuth
// @Router /tasks [get]
func (h *taskHandler) listTasks(c *gin.Context) {
	var params dto.ListTasksParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query: " + err.Error()})
		return
	}
	actor, _ := middleware.GetActorFromContext(c)
	tasks, err := h.taskService.ListTasks(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListTasksResponse(tasks))
}

// getTask godoc
// @Summary Get a task
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.TaskResponse
// @Failure 404 {object} map[string]string "Task not found"
// @Security BearerAuth
// @Router /tasks/{id} [get]
func (h *taskHandler) getTask(c *gin.Context) {
	actor, _ := middleware.GetActorFromContext(c)
	task, err := h.taskService.GetTask(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskResponse(task))
}

// updateTask godoc
// @Summary Update a task
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param body body dto.UpdateTaskRequest true "Changes"
// @Success 200 {object} dto.TaskResponse
// @Security BearerAuth
// @Router /tasks/{id} [put]
func (h *taskHandler) updateTask(c *gin.Context) {
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, _ := middleware.GetActorFromContext(c)
	task, err := h.taskService.UpdateTask(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskResponse(task))
}

// deleteTask godoc
// @Summary Delete a task
// @Tags tasks
// @Param id path string true "Task ID"
// @Success 204 "Deleted"
// @Security BearerAuth
// @Router /tasks/{id} [delete]
func (h *taskHandler) deleteTask(c *gin.Context) {
	actor, _ := middleware.GetActorFromContext(c)
	if err := h.taskService.DeleteTask(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// addComment godoc
// @Summary Comment on a task
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param body body dto.CreateCommentRequest true "Comment"
// @Success 201 {object} domain.TaskComment
// @Security BearerAuth
// @Router /tasks/{id}/comments [post]
func (h *taskHandler) addComment(c *gin.Context) {
	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, _ := middleware.GetActorFromContext(c)
	comment, err := h.taskService.AddComment(c.Request.Context(), actor, c.Param("id"), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// listComments godoc
// @Summary List a task's comments
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {array} domain.TaskComment
// @Security BearerAuth
// @Router /tasks/{id}/comments [get]
func (h *taskHandler) listComments(c *gin.Context) {
	actor, _ := middleware.GetActorFromContext(c)
	comments, err := h.taskService.ListComments(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// attachFile godoc
// @Summary Attach a file to a task
// @Tags tasks
// @Accept mpfd
// @Produce json
// @Param id path string true "Task ID"
// @Param file formData file true "Attachment"
// @Success 201 {object} domain.TaskFile
// @Security BearerAuth
// @Router /tasks/{id}/files [post]
func (h *taskHandler) attachFile(c *gin.Context) {
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

	actor, _ := middleware.GetActorFromContext(c)
	file, err := h.taskService.AttachFile(c.Request.Context(), actor, c.Param("id"), fileHeader.Filename, data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, file)
}

// listFiles godoc
// @Summary List a task's files
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {array} domain.TaskFile
// @Security BearerAuth
// @Router /tasks/{id}/files [get]
func (h *taskHandler) listFiles(c *gin.Context) {
	actor, _ := middleware.GetActorFromContext(c)
	files, err := h.taskService.ListFiles(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

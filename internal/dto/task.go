package dto

import (
	"time"

	"github.com/contaflow/backoffice/internal/core/domain"
)

// CreateTaskRequest opens a task against a client. DueDate accepts the
// DD/MM/AAAA display format.
type CreateTaskRequest struct {
	Title       string              `json:"title" binding:"required"`
	Description string              `json:"description"`
	Priority    domain.TaskPriority `json:"priority" binding:"required,oneof=BAIXA MEDIA ALTA"`
	ClientID    string              `json:"clientID" binding:"required"`
	DueDate     string              `json:"dueDate"` // DD/MM/AAAA, optional
}

// UpdateTaskRequest mutates a task.
type UpdateTaskRequest struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Priority    *domain.TaskPriority `json:"priority"`
	Status      *domain.TaskStatus   `json:"status"`
	DueDate     *string              `json:"dueDate"` // DD/MM/AAAA, empty string clears
}

// ListTasksParams narrows the task listing.
type ListTasksParams struct {
	ClientID string `form:"clientID"`
	Status   string `form:"status"`
	Limit    int    `form:"limit,default=100"`
	Offset   int    `form:"offset,default=0"`
}

// CreateCommentRequest adds a comment to a task.
type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// TaskResponse is the API shape of a task.
type TaskResponse struct {
	TaskID      string              `json:"taskID"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Priority    domain.TaskPriority `json:"priority"`
	Status      domain.TaskStatus   `json:"status"`
	ClientID    string              `json:"clientID"`
	Setor       domain.Setor        `json:"setor"`
	DueDate     *time.Time          `json:"dueDate,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	CreatedBy   string              `json:"createdBy"`
}

// ToTaskResponse converts a domain task.
func ToTaskResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		TaskID:      t.TaskID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Status:      t.Status,
		ClientID:    t.ClientID,
		Setor:       t.Setor,
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		CreatedBy:   t.CreatedBy,
	}
}

// ToListTasksResponse converts a slice of tasks.
func ToListTasksResponse(tasks []domain.Task) []TaskResponse {
	out := make([]TaskResponse, len(tasks))
	for i := range tasks {
		out[i] = ToTaskResponse(&tasks[i])
	}
	return out
}

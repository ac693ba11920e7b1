package domain

import "time"

// TaskPriority is the closed priority enumeration for tasks.
type TaskPriority string

const (
	PriorityBaixa TaskPriority = "BAIXA"
	PriorityMedia TaskPriority = "MEDIA"
	PriorityAlta  TaskPriority = "ALTA"
)

// TaskStatus is the kanban column of a task. LATE is derived on read
// from the due date of a TODO/DOING task, but persisted once observed
// so the board is stable.
type TaskStatus string

const (
	StatusTodo  TaskStatus = "TODO"
	StatusDoing TaskStatus = "DOING"
	StatusLate  TaskStatus = "LATE"
	StatusDone  TaskStatus = "DONE"
)

// Task is a unit of work tracked against a client.
type Task struct {
	TaskID      string       `json:"taskID"` // Primary Key (UUID)
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Priority    TaskPriority `json:"priority"`
	Status      TaskStatus   `json:"status"`
	ClientID    string       `json:"clientID"` // FK -> clients.client_id (NON-NULL)
	Setor       Setor        `json:"setor"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// TaskComment is a free-text comment on a task.
type TaskComment struct {
	CommentID string    `json:"commentID"`
	TaskID    string    `json:"taskID"`
	AuthorID  string    `json:"authorID"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// TaskFile is a file attached to a task; StoragePath points at object storage.
type TaskFile struct {
	FileID      string    `json:"fileID"`
	TaskID      string    `json:"taskID"`
	Name        string    `json:"name"`
	StoragePath string    `json:"storagePath"`
	SizeBytes   int64     `json:"sizeBytes"`
	CreatedAt   time.Time `json:"createdAt"`
	CreatedBy   string    `json:"createdBy"`
}

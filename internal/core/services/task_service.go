package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/contaflow/backoffice/internal/apperrors"
	"github.com/contaflow/backoffice/internal/core/domain"
	"github.com/contaflow/backoffice/internal/core/ports"
	"github.com/contaflow/backoffice/internal/dto"
	"github.com/contaflow/backoffice/internal/platform/storage"
	"github.com/contaflow/backoffice/internal/utils"
)

// taskService implements TaskSvcFacade. Tasks inherit their client's
// sector; LATE is derived from the due date on read and persisted once
// observed so the kanban board stays stable.
type taskService struct {
	taskRepo   ports.TaskRepository
	clientRepo ports.ClientRepository
	store      storage.ObjectStore
	authz      ports.AuthzSvcFacade
}

func NewTaskService(taskRepo ports.TaskRepository, clientRepo ports.ClientRepository, store storage.ObjectStore, authz ports.AuthzSvcFacade) ports.TaskSvcFacade {
	return &taskService{taskRepo: taskRepo, clientRepo: clientRepo, store: store, authz: authz}
}

func validPriority(p domain.TaskPriority) bool {
	switch p {
	case domain.PriorityBaixa, domain.PriorityMedia, domain.PriorityAlta:
		return true
	}
	return false
}

func validStatus(s domain.TaskStatus) bool {
	switch s {
	case domain.StatusTodo, domain.StatusDoing, domain.StatusLate, domain.StatusDone:
		return true
	}
	return false
}

// parseDueDate accepts the DD/MM/AAAA display format.
func parseDueDate(raw string) (*time.Time, error) {
	iso, err := utils.ParseBRDate(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid due date %q: %w", raw, apperrors.ErrValidation)
	}
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return nil, fmt.Errorf("invalid due date %q: %w", raw, apperrors.ErrValidation)
	}
	return &t, nil
}

func (s *taskService) CreateTask(ctx context.Context, actor *domain.DerivedUser, req dto.CreateTaskRequest) (*domain.Task, error) {
	if !validPriority(req.Priority) {
		return nil, fmt.Errorf("invalid priority %q: %w", req.Priority, apperrors.ErrValidation)
	}
	client, err := s.clientRepo.FindClientByID(ctx, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("task client lookup failed: %w", err)
	}
	if !s.authz.CapabilitiesFor(actor).CanAccessSetor(client.Setor) {
		return nil, apperrors.ErrForbidden
	}

	var due *time.Time
	if req.DueDate != "" {
		if due, err = parseDueDate(req.DueDate); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	task := domain.Task{
		TaskID:      uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      domain.StatusTodo,
		ClientID:    client.ClientID,
		Setor:       client.Setor,
		DueDate:     due,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}
	if err := s.taskRepo.SaveTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return &task, nil
}

// refreshLateness flips an overdue TODO/DOING task to LATE, persisting
// the observation best-effort.
func (s *taskService) refreshLateness(ctx context.Context, task *domain.Task) {
	if task.DueDate == nil {
		return
	}
	if task.Status != domain.StatusTodo && task.Status != domain.StatusDoing {
		return
	}
	if !task.DueDate.Before(time.Now().Truncate(24 * time.Hour)) {
		return
	}
	task.Status = domain.StatusLate
	task.LastUpdatedAt = time.Now()
	if err := s.taskRepo.UpdateTask(ctx, *task); err != nil {
		slog.WarnContext(ctx, "failed to persist late status",
			slog.String("task_id", task.TaskID), slog.String("error", err.Error()))
	}
}

func (s *taskService) GetTask(ctx context.Context, actor *domain.DerivedUser, taskID string) (*domain.Task, error) {
	task, err := s.taskRepo.FindTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !s.authz.CapabilitiesFor(actor).CanAccessSetor(task.Setor) {
		return nil, apperrors.ErrForbidden
	}
	s.refreshLateness(ctx, task)
	return task, nil
}

func (s *taskService) ListTasks(ctx context.Context, actor *domain.DerivedUser, params dto.ListTasksParams) ([]domain.Task, error) {
	caps := s.authz.CapabilitiesFor(actor)
	var setores []domain.Setor
	if !caps.CanViewAllSectors {
		if len(caps.VisibleSetores) == 0 {
			return []domain.Task{}, nil
		}
		setores = caps.VisibleSetores
	}
	var clientID *string
	if params.ClientID != "" {
		clientID = &params.ClientID
	}
	var status *domain.TaskStatus
	if params.Status != "" {
		st := domain.TaskStatus(params.Status)
		if !validStatus(st) {
			return nil, fmt.Errorf("invalid status filter %q: %w", params.Status, apperrors.ErrValidation)
		}
		status = &st
	}

	tasks, err := s.taskRepo.FindTasks(ctx, setores, clientID, status, params.Limit, params.Offset)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		s.refreshLateness(ctx, &tasks[i])
	}
	return tasks, nil
}

func (s *taskService) UpdateTask(ctx context.Context, actor *domain.DerivedUser, taskID string, req dto.UpdateTaskRequest) (*domain.Task, error) {
	task, err := s.GetTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Priority != nil {
		if !validPriority(*req.Priority) {
			return nil, fmt.Errorf("invalid priority %q: %w", *req.Priority, apperrors.ErrValidation)
		}
		task.Priority = *req.Priority
	}
	if req.Status != nil {
		if !validStatus(*req.Status) {
			return nil, fmt.Errorf("invalid status %q: %w", *req.Status, apperrors.ErrValidation)
		}
		task.Status = *req.Status
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			task.DueDate = nil
		} else {
			due, err := parseDueDate(*req.DueDate)
			if err != nil {
				return nil, err
			}
			task.DueDate = due
		}
	}
	task.LastUpdatedAt = time.Now()
	task.LastUpdatedBy = actor.UserID
	if err := s.taskRepo.UpdateTask(ctx, *task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) DeleteTask(ctx context.Context, actor *domain.DerivedUser, taskID string) error {
	if _, err := s.GetTask(ctx, actor, taskID); err != nil {
		return err
	}
	return s.taskRepo.MarkTaskDeleted(ctx, taskID, time.Now(), actor.UserID)
}

func (s *taskService) AddComment(ctx context.Context, actor *domain.DerivedUser, taskID, content string) (*domain.TaskComment, error) {
	if _, err := s.GetTask(ctx, actor, taskID); err != nil {
		return nil, err
	}
	comment := domain.TaskComment{
		CommentID: uuid.NewString(),
		TaskID:    taskID,
		AuthorID:  actor.UserID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.taskRepo.SaveComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	return &comment, nil
}

func (s *taskService) ListComments(ctx context.Context, actor *domain.DerivedUser, taskID string) ([]domain.TaskComment, error) {
	if _, err := s.GetTask(ctx, actor, taskID); err != nil {
		return nil, err
	}
	return s.taskRepo.FindComments(ctx, taskID)
}

func (s *taskService) AttachFile(ctx context.Context, actor *domain.DerivedUser, taskID, filename string, data []byte) (*domain.TaskFile, error) {
	task, err := s.GetTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty file: %w", apperrors.ErrValidation)
	}
	if s.store == nil {
		return nil, fmt.Errorf("object storage not configured: %w", apperrors.ErrConfiguration)
	}
	key, err := s.store.Upload(ctx, string(task.Setor), filename, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store attachment: %w", err)
	}
	file := domain.TaskFile{
		FileID:      uuid.NewString(),
		TaskID:      taskID,
		Name:        storage.SanitizeFilename(filename),
		StoragePath: key,
		SizeBytes:   int64(len(data)),
		CreatedAt:   time.Now(),
		CreatedBy:   actor.UserID,
	}
	if err := s.taskRepo.SaveFile(ctx, file); err != nil {
		_ = s.store.Delete(ctx, key)
		return nil, fmt.Errorf("failed to save attachment metadata: %w", err)
	}
	return &file, nil
}

func (s *taskService) ListFiles(ctx context.Context, actor *domain.DerivedUser, taskID string) ([]domain.TaskFile, error) {
	if _, err := s.GetTask(ctx, actor, taskID); err != nil {
		return nil, err
	}
	return s.taskRepo.FindFiles(ctx, taskID)
}

package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contaflow/backoffice/internal/apperrors"
	"github.com/contaflow/backoffice/internal/core/domain"
	"github.com/contaflow/backoffice/internal/core/ports"
)

type PgxTaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) ports.TaskRepository {
	return &PgxTaskRepository{db: db}
}

var _ ports.TaskRepository = (*PgxTaskRepository)(nil)

const taskColumns = `task_id, title, description, priority, status, client_id, setor, due_date,
	created_at, created_by, last_updated_at, last_updated_by, deleted_at`

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	var description *string
	err := row.Scan(
		&t.TaskID, &t.Title, &description, &t.Priority, &t.Status, &t.ClientID, &t.Setor, &t.DueDate,
		&t.CreatedAt, &t.CreatedBy, &t.LastUpdatedAt, &t.LastUpdatedBy, &t.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	if description != nil {
		t.Description = *description
	}
	return &t, nil
}

func (r *PgxTaskRepository) SaveTask(ctx context.Context, task domain.Task) error {
	query := `
		INSERT INTO tasks (task_id, title, description, priority, status, client_id, setor, due_date,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.db.Exec(ctx, query,
		task.TaskID, task.Title, nullIfEmpty(task.Description), task.Priority, task.Status,
		task.ClientID, task.Setor, task.DueDate,
		task.CreatedAt, task.CreatedBy, task.LastUpdatedAt, task.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}

func (r *PgxTaskRepository) FindTaskByID(ctx context.Context, taskID string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE task_id = $1 AND deleted_at IS NULL;`
	task, err := scanTask(r.db.QueryRow(ctx, query, taskID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task by ID %s: %w", taskID, err)
	}
	return task, nil
}

func (r *PgxTaskRepository) FindTasks(ctx context.Context, setores []domain.Setor, clientID *string, status *domain.TaskStatus, limit, offset int) ([]domain.Task, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE deleted_at IS NULL`
	args := []any{}
	idx := 1
	if len(setores) > 0 {
		query += fmt.Sprintf(" AND setor = ANY($%d)", idx)
		ss := make([]string, len(setores))
		for i, s := range setores {
			ss[i] = string(s)
		}
		args = append(args, ss)
		idx++
	}
	if clientID != nil {
		query += fmt.Sprintf(" AND client_id = $%d", idx)
		args = append(args, *clientID)
		idx++
	}
	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, *status)
		idx++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d;", idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (r *PgxTaskRepository) UpdateTask(ctx context.Context, task domain.Task) error {
	query := `
		UPDATE tasks
		SET title = $1, description = $2, priority = $3, status = $4, due_date = $5,
			last_updated_at = $6, last_updated_by = $7
		WHERE task_id = $8 AND deleted_at IS NULL;
	`
	cmdTag, err := r.db.Exec(ctx, query,
		task.Title, nullIfEmpty(task.Description), task.Priority, task.Status, task.DueDate,
		task.LastUpdatedAt, task.LastUpdatedBy, task.TaskID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxTaskRepository) MarkTaskDeleted(ctx context.Context, taskID string, deletedAt time.Time, deletedBy string) error {
	query := `
		UPDATE tasks
		SET deleted_at = $1, last_updated_at = $1, last_updated_by = $2
		WHERE task_id = $3 AND deleted_at IS NULL;
	`
	cmdTag, err := r.db.Exec(ctx, query, deletedAt, deletedBy, taskID)
	if err != nil {
		return fmt.Errorf("failed to mark task as deleted: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxTaskRepository) SaveComment(ctx context.Context, comment domain.TaskComment) error {
	query := `
		INSERT INTO task_comments (comment_id, task_id, author_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err := r.db.Exec(ctx, query,
		comment.CommentID, comment.TaskID, comment.AuthorID, comment.Content, comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save task comment: %w", err)
	}
	return nil
}

func (r *PgxTaskRepository) FindComments(ctx context.Context, taskID string) ([]domain.TaskComment, error) {
	query := `
		SELECT comment_id, task_id, author_id, content, created_at
		FROM task_comments WHERE task_id = $1 ORDER BY created_at ASC;
	`
	rows, err := r.db.Query(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to query task comments: %w", err)
	}
	defer rows.Close()

	comments := []domain.TaskComment{}
	for rows.Next() {
		var c domain.TaskComment
		if err := rows.Scan(&c.CommentID, &c.TaskID, &c.AuthorID, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment row: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *PgxTaskRepository) SaveFile(ctx context.Context, file domain.TaskFile) error {
	query := `
		INSERT INTO task_files (file_id, task_id, name, storage_path, size_bytes, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.db.Exec(ctx, query,
		file.FileID, file.TaskID, file.Name, file.StoragePath, file.SizeBytes, file.CreatedAt, file.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save task file: %w", err)
	}
	return nil
}

func (r *PgxTaskRepository) FindFiles(ctx context.Context, taskID string) ([]domain.TaskFile, error) {
	query := `
		SELECT file_id, task_id, name, storage_path, size_bytes, created_at, created_by
		FROM task_files WHERE task_id = $1 ORDER BY created_at ASC;
	`
	rows, err := r.db.Query(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to query task files: %w", err)
	}
	defer rows.Close()

	files := []domain.TaskFile{}
	for rows.Next() {
		var f domain.TaskFile
		if err := rows.Scan(&f.FileID, &f.TaskID, &f.Name, &f.StoragePath, &f.SizeBytes, &f.CreatedAt, &f.CreatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan task file row: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

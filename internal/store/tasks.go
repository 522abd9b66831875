package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"syncspace-backend/internal/models"
)

var taskColumns = []string{"id", "workspace_id", "project_id", "title", "description", "status", "priority", "assigned_to", "created_by", "due_date", "created_at"}

func (s *Store) CreateTask(ctx context.Context, t *models.Task) error {
	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	if t.Status == "" {
		t.Status = "todo"
	}
	if t.Priority == "" {
		t.Priority = "medium"
	}

	query, args, err := psq.Insert("tasks").
		Columns(taskColumns...).
		Values(t.ID, t.WorkspaceID, t.ProjectID, t.Title, t.Description, t.Status, t.Priority, t.AssignedTo, t.CreatedBy, t.DueDate, t.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

func (s *Store) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	query, args, err := psq.Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var t models.Task
	err = s.db.QueryRowContext(ctx, query, args...).
		Scan(&t.ID, &t.WorkspaceID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.AssignedTo, &t.CreatedBy, &t.DueDate, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying task: %w", err)
	}
	return &t, nil
}

func (s *Store) ListTasks(ctx context.Context, workspaceID string) ([]models.Task, error) {
	query, args, err := psq.Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"workspace_id": workspaceID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.WorkspaceID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.AssignedTo, &t.CreatedBy, &t.DueDate, &t.CreatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// TaskUpdate carries the optional fields of a task update; nil fields are
// left untouched.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	AssignedTo  *string
	DueDate     *time.Time
}

func (s *Store) UpdateTask(ctx context.Context, id uuid.UUID, upd TaskUpdate) error {
	qb := psq.Update("tasks").Where(sq.Eq{"id": id})
	set := false
	if upd.Title != nil {
		qb = qb.Set("title", *upd.Title)
		set = true
	}
	if upd.Description != nil {
		qb = qb.Set("description", *upd.Description)
		set = true
	}
	if upd.Status != nil {
		qb = qb.Set("status", *upd.Status)
		set = true
	}
	if upd.Priority != nil {
		qb = qb.Set("priority", *upd.Priority)
		set = true
	}
	if upd.AssignedTo != nil {
		qb = qb.Set("assigned_to", *upd.AssignedTo)
		set = true
	}
	if upd.DueDate != nil {
		qb = qb.Set("due_date", *upd.DueDate)
		set = true
	}
	if !set {
		return nil
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, id uuid.UUID) error {
	query, args, err := psq.Delete("tasks").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

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

var projectColumns = []string{"id", "workspace_id", "name", "description", "created_by", "created_at"}

func (s *Store) CreateProject(ctx context.Context, p *models.Project) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()

	query, args, err := psq.Insert("projects").
		Columns(projectColumns...).
		Values(p.ID, p.WorkspaceID, p.Name, p.Description, p.CreatedBy, p.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	return nil
}

func (s *Store) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	query, args, err := psq.Select(projectColumns...).
		From("projects").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var p models.Project
	err = s.db.QueryRowContext(ctx, query, args...).
		Scan(&p.ID, &p.WorkspaceID, &p.Name, &p.Description, &p.CreatedBy, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying project: %w", err)
	}
	return &p, nil
}

func (s *Store) ListProjects(ctx context.Context, workspaceID string) ([]models.Project, error) {
	query, args, err := psq.Select(projectColumns...).
		From("projects").
		Where(sq.Eq{"workspace_id": workspaceID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.WorkspaceID, &p.Name, &p.Description, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *Store) UpdateProject(ctx context.Context, id uuid.UUID, name, description string) error {
	qb := psq.Update("projects").Where(sq.Eq{"id": id})
	set := false
	if name != "" {
		qb = qb.Set("name", name)
		set = true
	}
	if description != "" {
		qb = qb.Set("description", description)
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
		return fmt.Errorf("updating project: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteProject(ctx context.Context, id uuid.UUID) error {
	query, args, err := psq.Delete("projects").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

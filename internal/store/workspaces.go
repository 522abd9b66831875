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

var workspaceColumns = []string{"id", "name", "description", "created_by", "created_at", "updated_at"}

// CreateWorkspace inserts the workspace and makes the creator its owner
// member.
func (s *Store) CreateWorkspace(ctx context.Context, w *models.Workspace, creator *models.User) error {
	w.ID = uuid.New()
	w.CreatedAt = time.Now()
	w.UpdatedAt = w.CreatedAt

	query, args, err := psq.Insert("workspaces").
		Columns(workspaceColumns...).
		Values(w.ID, w.Name, w.Description, w.CreatedBy, w.CreatedAt, w.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting workspace: %w", err)
	}

	owner := models.WorkspaceMember{
		WorkspaceID: w.ID,
		UserID:      w.CreatedBy,
		Email:       creator.Email,
		Name:        creator.Name,
		Role:        "owner",
		JoinedAt:    w.CreatedAt,
	}
	if err := s.AddWorkspaceMember(ctx, owner); err != nil {
		return err
	}
	w.Members = []models.WorkspaceMember{owner}
	return nil
}

func (s *Store) AddWorkspaceMember(ctx context.Context, m models.WorkspaceMember) error {
	query, args, err := psq.Insert("workspace_members").
		Columns("workspace_id", "user_id", "email", "name", "role", "joined_at").
		Values(m.WorkspaceID, m.UserID, m.Email, m.Name, m.Role, m.JoinedAt).
		Suffix("ON CONFLICT (workspace_id, user_id) DO NOTHING").
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting workspace member: %w", err)
	}
	return nil
}

// ListWorkspacesForUser returns every workspace the user is a member of.
func (s *Store) ListWorkspacesForUser(ctx context.Context, userID string) ([]models.Workspace, error) {
	query, args, err := psq.Select(
		"w.id", "w.name", "w.description", "w.created_by", "w.created_at", "w.updated_at").
		From("workspaces w").
		Join("workspace_members m ON m.workspace_id = w.id").
		Where(sq.Eq{"m.user_id": userID}).
		OrderBy("w.created_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying workspaces: %w", err)
	}
	defer rows.Close()

	var workspaces []models.Workspace
	for rows.Next() {
		var w models.Workspace
		if err := rows.Scan(&w.ID, &w.Name, &w.Description, &w.CreatedBy, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		workspaces = append(workspaces, w)
	}
	return workspaces, rows.Err()
}

// GetWorkspace loads a workspace with its member list, but only if userID is
// a member.
func (s *Store) GetWorkspace(ctx context.Context, id uuid.UUID, userID string) (*models.Workspace, error) {
	query, args, err := psq.Select(workspaceColumns...).
		From("workspaces").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var w models.Workspace
	err = s.db.QueryRowContext(ctx, query, args...).
		Scan(&w.ID, &w.Name, &w.Description, &w.CreatedBy, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying workspace: %w", err)
	}

	members, err := s.ListWorkspaceMembers(ctx, id)
	if err != nil {
		return nil, err
	}

	isMember := false
	for _, m := range members {
		if m.UserID == userID {
			isMember = true
			break
		}
	}
	if !isMember {
		return nil, ErrNotFound
	}

	w.Members = members
	return &w, nil
}

func (s *Store) ListWorkspaceMembers(ctx context.Context, workspaceID uuid.UUID) ([]models.WorkspaceMember, error) {
	query, args, err := psq.Select("workspace_id", "user_id", "email", "name", "role", "joined_at").
		From("workspace_members").
		Where(sq.Eq{"workspace_id": workspaceID}).
		OrderBy("joined_at ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying workspace members: %w", err)
	}
	defer rows.Close()

	var members []models.WorkspaceMember
	for rows.Next() {
		var m models.WorkspaceMember
		if err := rows.Scan(&m.WorkspaceID, &m.UserID, &m.Email, &m.Name, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *Store) RemoveWorkspaceMember(ctx context.Context, workspaceID uuid.UUID, userID string) error {
	query, args, err := psq.Delete("workspace_members").
		Where(sq.Eq{"workspace_id": workspaceID, "user_id": userID}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("removing workspace member: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UpdateWorkspaceMemberRole(ctx context.Context, workspaceID uuid.UUID, userID, role string) error {
	query, args, err := psq.Update("workspace_members").
		Set("role", role).
		Where(sq.Eq{"workspace_id": workspaceID, "user_id": userID}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating workspace member role: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UpdateWorkspace(ctx context.Context, id uuid.UUID, name, description string) error {
	qb := psq.Update("workspaces").
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id})
	if name != "" {
		qb = qb.Set("name", name)
	}
	if description != "" {
		qb = qb.Set("description", description)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating workspace: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteWorkspace(ctx context.Context, id uuid.UUID) error {
	query, args, err := psq.Delete("workspaces").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting workspace: %w", err)
	}
	return nil
}

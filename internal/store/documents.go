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

var documentColumns = []string{"id", "workspace_id", "title", "content", "created_by", "created_at", "updated_at"}

func (s *Store) CreateDocument(ctx context.Context, d *models.Document) error {
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt

	query, args, err := psq.Insert("documents").
		Columns(documentColumns...).
		Values(d.ID, d.WorkspaceID, d.Title, d.Content, d.CreatedBy, d.CreatedAt, d.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}
	return nil
}

// GetDocument loads a document together with its durable active-editor set.
func (s *Store) GetDocument(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	query, args, err := psq.Select(documentColumns...).
		From("documents").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var d models.Document
	err = s.db.QueryRowContext(ctx, query, args...).
		Scan(&d.ID, &d.WorkspaceID, &d.Title, &d.Content, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying document: %w", err)
	}

	editors, err := s.ListDocumentEditors(ctx, id.String())
	if err != nil {
		return nil, err
	}
	d.ActiveUsers = editors
	return &d, nil
}

func (s *Store) ListDocuments(ctx context.Context, workspaceID string) ([]models.Document, error) {
	query, args, err := psq.Select(documentColumns...).
		From("documents").
		Where(sq.Eq{"workspace_id": workspaceID}).
		OrderBy("updated_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var documents []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.WorkspaceID, &d.Title, &d.Content, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		documents = append(documents, d)
	}
	return documents, rows.Err()
}

func (s *Store) UpdateDocumentContent(ctx context.Context, id uuid.UUID, content string) error {
	query, args, err := psq.Update("documents").
		Set("content", content).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating document: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	query, args, err := psq.Delete("documents").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	query, args, err = psq.Delete("document_editors").
		Where(sq.Eq{"document_id": id.String()}).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting document editors: %w", err)
	}
	return nil
}

// AddDocumentEditor adds a user to the document's active-editor set. Set
// semantics: adding the same user twice leaves one entry.
func (s *Store) AddDocumentEditor(ctx context.Context, documentID, userID, username string) error {
	query, args, err := psq.Insert("document_editors").
		Columns("document_id", "user_id", "username").
		Values(documentID, userID, username).
		Suffix("ON CONFLICT (document_id, user_id) DO NOTHING").
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("adding document editor: %w", err)
	}
	return nil
}

// RemoveDocumentEditor removes by user id only; the stored username is not
// part of the match.
func (s *Store) RemoveDocumentEditor(ctx context.Context, documentID, userID string) error {
	query, args, err := psq.Delete("document_editors").
		Where(sq.Eq{"document_id": documentID, "user_id": userID}).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("removing document editor: %w", err)
	}
	return nil
}

func (s *Store) ListDocumentEditors(ctx context.Context, documentID string) ([]models.DocumentEditor, error) {
	query, args, err := psq.Select("user_id", "username").
		From("document_editors").
		Where(sq.Eq{"document_id": documentID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying document editors: %w", err)
	}
	defer rows.Close()

	var editors []models.DocumentEditor
	for rows.Next() {
		var e models.DocumentEditor
		if err := rows.Scan(&e.UserID, &e.Username); err != nil {
			return nil, err
		}
		editors = append(editors, e)
	}
	return editors, rows.Err()
}

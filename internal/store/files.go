package store

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"syncspace-backend/internal/models"
)

var fileColumns = []string{"id", "workspace_id", "name", "size", "content_type", "uploaded_by", "created_at"}

func (s *Store) CreateFileMeta(ctx context.Context, f *models.FileMeta) error {
	f.ID = uuid.New()
	f.CreatedAt = time.Now()

	query, args, err := psq.Insert("files").
		Columns(fileColumns...).
		Values(f.ID, f.WorkspaceID, f.Name, f.Size, f.ContentType, f.UploadedBy, f.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting file metadata: %w", err)
	}
	return nil
}

func (s *Store) ListFiles(ctx context.Context, workspaceID string) ([]models.FileMeta, error) {
	query, args, err := psq.Select(fileColumns...).
		From("files").
		Where(sq.Eq{"workspace_id": workspaceID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying files: %w", err)
	}
	defer rows.Close()

	var files []models.FileMeta
	for rows.Next() {
		var f models.FileMeta
		if err := rows.Scan(&f.ID, &f.WorkspaceID, &f.Name, &f.Size, &f.ContentType, &f.UploadedBy, &f.CreatedAt); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func (s *Store) DeleteFileMeta(ctx context.Context, id uuid.UUID, userID string) error {
	query, args, err := psq.Delete("files").
		Where(sq.Eq{"id": id, "uploaded_by": userID}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting file metadata: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

package store

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"syncspace-backend/internal/models"
)

var notificationColumns = []string{"id", "user_id", "message", "type", "workspace_id", "read", "created_at"}

func (s *Store) InsertNotification(ctx context.Context, n *models.Notification) error {
	n.ID = uuid.New()
	n.CreatedAt = time.Now()

	query, args, err := psq.Insert("notifications").
		Columns(notificationColumns...).
		Values(n.ID, n.UserID, n.Message, n.Type, n.WorkspaceID, n.Read, n.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	return nil
}

// ListNotifications returns the latest notifications for a user, newest
// first.
func (s *Store) ListNotifications(ctx context.Context, userID string, limit uint64) ([]models.Notification, error) {
	query, args, err := psq.Select(notificationColumns...).
		From("notifications").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Type, &n.WorkspaceID, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (s *Store) CountUnreadNotifications(ctx context.Context, userID string) (int, error) {
	query, args, err := psq.Select("COUNT(*)").
		From("notifications").
		Where(sq.Eq{"user_id": userID, "read": false}).
		ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return count, nil
}

func (s *Store) MarkNotificationsRead(ctx context.Context, userID string) error {
	query, args, err := psq.Update("notifications").
		Set("read", true).
		Where(sq.Eq{"user_id": userID, "read": false}).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("marking notifications read: %w", err)
	}
	return nil
}

func (s *Store) DeleteNotification(ctx context.Context, id uuid.UUID, userID string) error {
	query, args, err := psq.Delete("notifications").
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting notification: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ClearNotifications(ctx context.Context, userID string) error {
	query, args, err := psq.Delete("notifications").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clearing notifications: %w", err)
	}
	return nil
}

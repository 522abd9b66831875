package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"syncspace-backend/internal/models"
)

var chatColumns = []string{"id", "workspace_id", "user_id", "username", "message", "timestamp"}

// InsertChatMessage persists a message with the id and timestamp already
// assigned by the caller, so the live broadcast can carry them even when
// this insert fails.
func (s *Store) InsertChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	query, args, err := psq.Insert("chat_messages").
		Columns(chatColumns...).
		Values(msg.ID, msg.WorkspaceID, msg.UserID, msg.Username, msg.Message, msg.Timestamp).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting chat message: %w", err)
	}
	return nil
}

// ListChatMessages returns the latest messages for a workspace, oldest
// first.
func (s *Store) ListChatMessages(ctx context.Context, workspaceID string, limit uint64) ([]models.ChatMessage, error) {
	query, args, err := psq.Select(chatColumns...).
		From("chat_messages").
		Where(sq.Eq{"workspace_id": workspaceID}).
		OrderBy("timestamp DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chat messages: %w", err)
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.WorkspaceID, &m.UserID, &m.Username, &m.Message, &m.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Newest-first from the query, oldest-first for the client.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// DeleteChatMessage removes a message if and only if userID is its sender.
// The delete is a single statement keyed on both id and sender, so there is
// no window between an ownership check and the removal.
func (s *Store) DeleteChatMessage(ctx context.Context, id uuid.UUID, userID string) error {
	query, args, err := psq.Delete("chat_messages").
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting chat message: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}

	// Nothing deleted: distinguish a missing message from someone else's.
	query, args, err = psq.Select("1").
		From("chat_messages").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	var one int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("looking up chat message: %w", err)
	}
	return ErrPermissionDenied
}

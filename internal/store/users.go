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

var userColumns = []string{"id", "name", "email", "password_hash", "role", "status", "last_seen", "created_at"}

func scanUser(row sq.RowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Status, &u.LastSeen, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	if u.Role == "" {
		u.Role = "member"
	}
	if u.Status == "" {
		u.Status = "offline"
	}

	query, args, err := psq.Insert("users").
		Columns("id", "name", "email", "password_hash", "role", "status", "created_at").
		Values(u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.Status, u.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query, args, err := psq.Select(userColumns...).
		From("users").
		Where(sq.Eq{"email": email}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanUser(s.db.QueryRowContext(ctx, query, args...))
}

// FindUserByName matches the display name exactly, case-sensitive, and
// returns the first matching row. Display names are not unique; first match
// wins, which is a known limitation of name-based mentions.
func (s *Store) FindUserByName(ctx context.Context, name string) (*models.User, error) {
	query, args, err := psq.Select(userColumns...).
		From("users").
		Where(sq.Eq{"name": name}).
		OrderBy("created_at ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanUser(s.db.QueryRowContext(ctx, query, args...))
}

func (s *Store) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query, args, err := psq.Select(userColumns...).
		From("users").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanUser(s.db.QueryRowContext(ctx, query, args...))
}

// SetUserStatus records online/offline transitions with a last-seen stamp.
func (s *Store) SetUserStatus(ctx context.Context, userID, status string) error {
	query, args, err := psq.Update("users").
		Set("status", status).
		Set("last_seen", time.Now()).
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("updating user status: %w", err)
	}
	return nil
}

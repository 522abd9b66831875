// Package store is the durable storage gateway over PostgreSQL.
package store

import (
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
)

// psq is the statement builder with dollar placeholders.
var psq = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveWorkspaceMember(t *testing.T) {
	st, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectExec("DELETE FROM workspace_members").
		WithArgs("u2", id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, st.RemoveWorkspaceMember(context.Background(), id, "u2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveWorkspaceMemberNotFound(t *testing.T) {
	st, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectExec("DELETE FROM workspace_members").
		WithArgs("ghost", id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := st.RemoveWorkspaceMember(context.Background(), id, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateWorkspaceMemberRole(t *testing.T) {
	st, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectExec("UPDATE workspace_members SET role").
		WithArgs("admin", "u2", id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, st.UpdateWorkspaceMemberRole(context.Background(), id, "u2", "admin"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateWorkspaceMemberRoleNotFound(t *testing.T) {
	st, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectExec("UPDATE workspace_members SET role").
		WithArgs("admin", "ghost", id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := st.UpdateWorkspaceMemberRole(context.Background(), id, "ghost", "admin")
	assert.ErrorIs(t, err, ErrNotFound)
}

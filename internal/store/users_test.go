package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindUserByNameMiss(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("SELECT .+ FROM users").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userColumns))

	user, err := st.FindUserByName(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestFindUserByNameHit(t *testing.T) {
	st, mock := newMockStore(t)
	id := uuid.New()

	rows := sqlmock.NewRows(userColumns).
		AddRow(id.String(), "bob", "bob@example.com", "hash", "member", "online", nil, time.Now())
	mock.ExpectQuery("SELECT .+ FROM users").
		WithArgs("bob").
		WillReturnRows(rows)

	user, err := st.FindUserByName(context.Background(), "bob")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "bob", user.Name)
}

func TestSetUserStatus(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec("UPDATE users SET").
		WithArgs("online", sqlmock.AnyArg(), "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, st.SetUserStatus(context.Background(), "u1", "online"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

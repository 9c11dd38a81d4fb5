package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestUserRepositoryCreateUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, zap.NewNop())

	createdAt := time.Now().UTC()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("Alice", "a@x.com", "$2a$10$digest", models.RoleUser).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(3), createdAt))

	user := &models.User{Name: "Alice", Email: "a@x.com", PasswordHash: "$2a$10$digest", Role: models.RoleUser}
	require.NoError(t, repo.CreateUser(user))

	assert.Equal(t, int64(3), user.ID)
	assert.Equal(t, createdAt, user.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryGetUserByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, zap.NewNop())

	rows := sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "created_at"}).
		AddRow(int64(1), "Alice", "a@x.com", "$2a$10$digest", "user", time.Now())
	mock.ExpectQuery(`SELECT (.+) FROM users WHERE email`).
		WithArgs("a@x.com").
		WillReturnRows(rows)

	user, err := repo.GetUserByEmail("a@x.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryGetUserByEmailNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, zap.NewNop())

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE email`).
		WithArgs("missing@x.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetUserByEmail("missing@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryUpdateProfileNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, zap.NewNop())

	mock.ExpectExec(`UPDATE users SET name`).
		WithArgs("Alice", "a@x.com", int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateProfile(99, "Alice", "a@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryGetAllUsers(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, zap.NewNop())

	rows := sqlmock.NewRows([]string{"id", "name", "email", "role", "created_at"}).
		AddRow(int64(2), "Bob", "b@x.com", "admin", time.Now()).
		AddRow(int64(1), "Alice", "a@x.com", "user", time.Now())
	mock.ExpectQuery(`SELECT (.+) FROM users ORDER BY created_at DESC`).WillReturnRows(rows)

	users, err := repo.GetAllUsers()
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, models.RoleAdmin, users[0].Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

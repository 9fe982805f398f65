package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lumohq/lumo-api/internal/domain"
	"github.com/lumohq/lumo-api/internal/store"
)

// newMockUserStore wires a PostgresUserStore to a sqlmock connection.
// bcrypt.MinCost keeps hashing fast in tests.
func newMockUserStore(t *testing.T) (*PostgresUserStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewPostgresUserStore(db, bcrypt.MinCost, nil), mock
}

func newTestUser(t *testing.T) *domain.User {
	t.Helper()

	user, err := domain.NewUser("student@example.com", "a-long-enough-password")
	require.NoError(t, err)
	return user
}

func TestUserStoreCreate_HashesPassword(t *testing.T) {
	userStore, mock := newMockUserStore(t)
	user := newTestUser(t)
	plaintext := user.Password

	mock.ExpectExec("INSERT INTO users").
		WithArgs(user.ID, user.Email, sqlmock.AnyArg(), user.CreatedAt, user.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := userStore.Create(context.Background(), user)
	require.NoError(t, err)

	// Plaintext must be gone and the stored hash must verify against it.
	assert.Empty(t, user.Password)
	require.NotEmpty(t, user.HashedPassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(plaintext)))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStoreCreate_DuplicateEmail(t *testing.T) {
	userStore, mock := newMockUserStore(t)
	user := newTestUser(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := userStore.Create(context.Background(), user)
	assert.ErrorIs(t, err, store.ErrEmailExists)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStoreCreate_InvalidUser(t *testing.T) {
	userStore, mock := newMockUserStore(t)

	err := userStore.Create(context.Background(), &domain.User{
		ID:    uuid.New(),
		Email: "not-an-email",
	})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)

	// Validation failures never reach the database.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStoreGetByEmail_Success(t *testing.T) {
	userStore, mock := newMockUserStore(t)

	userID := uuid.New()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "email", "hashed_password", "created_at", "updated_at"}).
		AddRow(userID, "student@example.com", "$2a$10$hash", now, now)

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE email = \$1`).
		WithArgs("student@example.com").
		WillReturnRows(rows)

	user, err := userStore.GetByEmail(context.Background(), "student@example.com")
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, "student@example.com", user.Email)
	assert.Equal(t, "$2a$10$hash", user.HashedPassword)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStoreGetByEmail_NotFound(t *testing.T) {
	userStore, mock := newMockUserStore(t)

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE email = \$1`).
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	user, err := userStore.GetByEmail(context.Background(), "nobody@example.com")
	assert.Nil(t, user)
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStoreGetByID_NotFound(t *testing.T) {
	userStore, mock := newMockUserStore(t)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
		WithArgs(userID).
		WillReturnError(sql.ErrNoRows)

	user, err := userStore.GetByID(context.Background(), userID)
	assert.Nil(t, user)
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

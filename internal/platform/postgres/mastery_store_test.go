package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumohq/lumo-api/internal/domain"
	"github.com/lumohq/lumo-api/internal/store"
)

var masteryColumnNames = []string{
	"id", "user_id", "topic", "subject", "attempts", "correct_answers",
	"mastery_score", "is_weak", "bloom_level", "last_practiced_at",
	"created_at", "updated_at",
}

func newMockMasteryStore(t *testing.T) (*PostgresTopicMasteryStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewPostgresTopicMasteryStore(db, nil), mock
}

func existingMasteryRow(id, userID uuid.UUID, practiced time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(masteryColumnNames).AddRow(
		id, userID, "Photosynthesis", "Biology", 8, 4,
		50, true, "remember", practiced, practiced, practiced,
	)
}

func TestMasteryStoreRecordAttempt_FirstSubmission(t *testing.T) {
	masteryStore, mock := newMockMasteryStore(t)
	userID := uuid.New()
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

	mock.ExpectQuery(`WHERE user_id = \$1 AND topic = \$2 FOR UPDATE`).
		WithArgs(userID, "Photosynthesis").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO topic_mastery (.+) ON CONFLICT \(user_id, topic\) DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mastery, err := masteryStore.RecordAttempt(context.Background(), userID, store.AttemptRecord{
		Topic:          "Photosynthesis",
		Subject:        "Biology",
		BloomLevel:     domain.BloomUnderstand,
		TotalQuestions: 10,
		CorrectCount:   4,
	}, now)
	require.NoError(t, err)

	assert.Equal(t, userID, mastery.UserID)
	assert.Equal(t, 10, mastery.Attempts)
	assert.Equal(t, 4, mastery.CorrectAnswers)
	assert.Equal(t, 40, mastery.MasteryScore)
	assert.True(t, mastery.IsWeak)
	assert.Equal(t, domain.BloomUnderstand, mastery.BloomLevel)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMasteryStoreRecordAttempt_Accumulates(t *testing.T) {
	masteryStore, mock := newMockMasteryStore(t)
	userID := uuid.New()
	masteryID := uuid.New()
	practiced := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

	mock.ExpectQuery(`WHERE user_id = \$1 AND topic = \$2 FOR UPDATE`).
		WithArgs(userID, "Photosynthesis").
		WillReturnRows(existingMasteryRow(masteryID, userID, practiced))
	mock.ExpectExec("UPDATE topic_mastery").
		WillReturnResult(sqlmock.NewResult(0, 1))

	// 8/4 on record plus 10/6 here: 18 attempts, 10 correct, score 56.
	mastery, err := masteryStore.RecordAttempt(context.Background(), userID, store.AttemptRecord{
		Topic:          "Photosynthesis",
		Subject:        "Biology",
		BloomLevel:     domain.BloomApply,
		TotalQuestions: 10,
		CorrectCount:   6,
	}, now)
	require.NoError(t, err)

	assert.Equal(t, 18, mastery.Attempts)
	assert.Equal(t, 10, mastery.CorrectAnswers)
	assert.Equal(t, 56, mastery.MasteryScore)
	assert.True(t, mastery.IsWeak)
	assert.Equal(t, domain.BloomApply, mastery.BloomLevel)
	require.NotNil(t, mastery.LastPracticedAt)
	assert.Equal(t, now, *mastery.LastPracticedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMasteryStoreRecordAttempt_LosesInsertRace(t *testing.T) {
	masteryStore, mock := newMockMasteryStore(t)
	userID := uuid.New()
	masteryID := uuid.New()
	practiced := time.Date(2026, 3, 10, 15, 29, 0, 0, time.UTC)
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

	// No row at first, the conflict-free insert touches zero rows, then the
	// winner's row is locked and accumulated into. No error is raised along
	// the way, so an enclosing transaction stays usable.
	mock.ExpectQuery(`WHERE user_id = \$1 AND topic = \$2 FOR UPDATE`).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO topic_mastery (.+) ON CONFLICT \(user_id, topic\) DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`WHERE user_id = \$1 AND topic = \$2 FOR UPDATE`).
		WillReturnRows(existingMasteryRow(masteryID, userID, practiced))
	mock.ExpectExec("UPDATE topic_mastery").
		WillReturnResult(sqlmock.NewResult(0, 1))

	mastery, err := masteryStore.RecordAttempt(context.Background(), userID, store.AttemptRecord{
		Topic:          "Photosynthesis",
		Subject:        "Biology",
		BloomLevel:     domain.BloomUnderstand,
		TotalQuestions: 10,
		CorrectCount:   6,
	}, now)
	require.NoError(t, err)

	assert.Equal(t, masteryID, mastery.ID)
	assert.Equal(t, 18, mastery.Attempts)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMasteryStoreRecordAttempt_InvalidCounts(t *testing.T) {
	masteryStore, mock := newMockMasteryStore(t)

	_, err := masteryStore.RecordAttempt(context.Background(), uuid.New(), store.AttemptRecord{
		Topic:          "Photosynthesis",
		Subject:        "Biology",
		BloomLevel:     domain.BloomUnderstand,
		TotalQuestions: 5,
		CorrectCount:   7,
	}, time.Now().UTC())
	assert.ErrorIs(t, err, store.ErrInvalidEntity)

	// Nothing hits the database on invalid input.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMasteryStoreGet_NotFound(t *testing.T) {
	masteryStore, mock := newMockMasteryStore(t)
	userID := uuid.New()

	mock.ExpectQuery(`WHERE user_id = \$1 AND topic = \$2`).
		WithArgs(userID, "Mitosis").
		WillReturnError(sql.ErrNoRows)

	mastery, err := masteryStore.Get(context.Background(), userID, "Mitosis")
	assert.Nil(t, mastery)
	assert.ErrorIs(t, err, store.ErrTopicMasteryNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMasteryStoreListWeakByUser(t *testing.T) {
	masteryStore, mock := newMockMasteryStore(t)
	userID := uuid.New()
	practiced := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`WHERE user_id = \$1 AND is_weak ORDER BY mastery_score ASC`).
		WithArgs(userID).
		WillReturnRows(existingMasteryRow(uuid.New(), userID, practiced))

	records, err := masteryStore.ListWeakByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Photosynthesis", records[0].Topic)
	assert.True(t, records[0].IsWeak)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMasteryStoreListByUser_Empty(t *testing.T) {
	masteryStore, mock := newMockMasteryStore(t)
	userID := uuid.New()

	mock.ExpectQuery(`FROM topic_mastery WHERE user_id = \$1 ORDER BY last_practiced_at`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(masteryColumnNames))

	records, err := masteryStore.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)

	assert.NoError(t, mock.ExpectationsWereMet())
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lumohq/lumo-api/internal/domain"
	"github.com/lumohq/lumo-api/internal/store"
)

// masteryColumns is the select list shared by every topic mastery query.
const masteryColumns = `
	id, user_id, topic, subject, attempts, correct_answers,
	mastery_score, is_weak, bloom_level, last_practiced_at,
	created_at, updated_at`

// PostgresTopicMasteryStore implements the store.TopicMasteryStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTopicMasteryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTopicMasteryStore creates a new PostgreSQL implementation of
// the TopicMasteryStore interface. It accepts a database connection or
// transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTopicMasteryStore(db store.DBTX, logger *slog.Logger) *PostgresTopicMasteryStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTopicMasteryStore{
		db:     db,
		logger: logger.With(slog.String("component", "topic_mastery_store")),
	}
}

// Ensure PostgresTopicMasteryStore implements store.TopicMasteryStore interface
var _ store.TopicMasteryStore = (*PostgresTopicMasteryStore)(nil)

// RecordAttempt implements store.TopicMasteryStore.RecordAttempt.
//
// The read-modify-write runs against a row locked with SELECT FOR UPDATE,
// so concurrent submissions for the same (user, topic) pair serialize on
// the row instead of losing an update. Two concurrent first submissions
// race on the insert; ON CONFLICT DO NOTHING lets the loser detect the
// collision from the zero row count and fall back to the locked update
// path. A raised unique violation would instead abort the enclosing
// transaction and make the fallback statements unusable.
func (s *PostgresTopicMasteryStore) RecordAttempt(
	ctx context.Context,
	userID uuid.UUID,
	attempt store.AttemptRecord,
	now time.Time,
) (*domain.TopicMastery, error) {
	if err := domain.ValidateAttemptCounts(attempt.TotalQuestions, attempt.CorrectCount); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	if !attempt.BloomLevel.Valid() {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrInvalidBloomLevel)
	}

	mastery, err := s.getForUpdate(ctx, userID, attempt.Topic)
	if err == nil {
		return s.accumulate(ctx, mastery, attempt, now)
	}
	if !errors.Is(err, store.ErrTopicMasteryNotFound) {
		return nil, err
	}

	// First submission for this (user, topic) pair.
	mastery, err = domain.NewTopicMastery(
		userID,
		attempt.Topic,
		attempt.Subject,
		attempt.BloomLevel,
		attempt.TotalQuestions,
		attempt.CorrectCount,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	inserted, err := s.insert(ctx, mastery)
	if err != nil {
		return nil, err
	}
	if !inserted {
		// Lost the insert race; the row exists now, take the lock and accumulate.
		mastery, err = s.getForUpdate(ctx, userID, attempt.Topic)
		if err != nil {
			return nil, err
		}
		return s.accumulate(ctx, mastery, attempt, now)
	}

	s.logger.Debug("created topic mastery record",
		slog.String("user_id", userID.String()),
		slog.String("topic", attempt.Topic),
		slog.Int("mastery_score", mastery.MasteryScore))

	return mastery, nil
}

// Get implements store.TopicMasteryStore.Get.
// Returns store.ErrTopicMasteryNotFound if no record exists.
func (s *PostgresTopicMasteryStore) Get(
	ctx context.Context,
	userID uuid.UUID,
	topic string,
) (*domain.TopicMastery, error) {
	query := `SELECT` + masteryColumns + `
		FROM topic_mastery
		WHERE user_id = $1 AND topic = $2`

	return scanMastery(s.db.QueryRowContext(ctx, query, userID, topic))
}

// ListByUser implements store.TopicMasteryStore.ListByUser.
func (s *PostgresTopicMasteryStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.TopicMastery, error) {
	query := `SELECT` + masteryColumns + `
		FROM topic_mastery
		WHERE user_id = $1
		ORDER BY last_practiced_at DESC NULLS LAST, topic ASC`

	return s.list(ctx, query, userID)
}

// ListWeakByUser implements store.TopicMasteryStore.ListWeakByUser.
func (s *PostgresTopicMasteryStore) ListWeakByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.TopicMastery, error) {
	query := `SELECT` + masteryColumns + `
		FROM topic_mastery
		WHERE user_id = $1 AND is_weak
		ORDER BY mastery_score ASC, topic ASC`

	return s.list(ctx, query, userID)
}

// WithTx implements store.TopicMasteryStore.WithTx.
func (s *PostgresTopicMasteryStore) WithTx(tx *sql.Tx) store.TopicMasteryStore {
	return &PostgresTopicMasteryStore{
		db:     tx,
		logger: s.logger,
	}
}

// getForUpdate fetches the mastery row with a row-level lock. Only
// meaningful inside a transaction; callers go through WithTx.
func (s *PostgresTopicMasteryStore) getForUpdate(
	ctx context.Context,
	userID uuid.UUID,
	topic string,
) (*domain.TopicMastery, error) {
	query := `SELECT` + masteryColumns + `
		FROM topic_mastery
		WHERE user_id = $1 AND topic = $2
		FOR UPDATE`

	return scanMastery(s.db.QueryRowContext(ctx, query, userID, topic))
}

// accumulate applies the attempt to an already-locked row and persists the
// recomputed fields.
func (s *PostgresTopicMasteryStore) accumulate(
	ctx context.Context,
	mastery *domain.TopicMastery,
	attempt store.AttemptRecord,
	now time.Time,
) (*domain.TopicMastery, error) {
	if err := mastery.ApplyAttempt(attempt.BloomLevel, attempt.TotalQuestions, attempt.CorrectCount, now); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE topic_mastery
		SET attempts = $1, correct_answers = $2, mastery_score = $3,
			is_weak = $4, bloom_level = $5, subject = $6,
			last_practiced_at = $7, updated_at = $8
		WHERE id = $9`

	result, err := s.db.ExecContext(ctx, query,
		mastery.Attempts,
		mastery.CorrectAnswers,
		mastery.MasteryScore,
		mastery.IsWeak,
		mastery.BloomLevel,
		mastery.Subject,
		mastery.LastPracticedAt,
		mastery.UpdatedAt,
		mastery.ID,
	)
	if err != nil {
		return nil, MapError(err)
	}

	if err := CheckRowsAffected(result, "topic mastery"); err != nil {
		return nil, err
	}

	s.logger.Debug("accumulated topic mastery",
		slog.String("user_id", mastery.UserID.String()),
		slog.String("topic", mastery.Topic),
		slog.Int("attempts", mastery.Attempts),
		slog.Int("mastery_score", mastery.MasteryScore),
		slog.Bool("is_weak", mastery.IsWeak))

	return mastery, nil
}

// insert writes a brand new mastery row. Returns false without error when
// the (user_id, topic) row already exists: the insert is conflict-free so
// losing the race does not poison an enclosing transaction.
func (s *PostgresTopicMasteryStore) insert(
	ctx context.Context,
	mastery *domain.TopicMastery,
) (bool, error) {
	query := `
		INSERT INTO topic_mastery (
			id, user_id, topic, subject, attempts, correct_answers,
			mastery_score, is_weak, bloom_level, last_practiced_at,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (user_id, topic) DO NOTHING`

	result, err := s.db.ExecContext(ctx, query,
		mastery.ID,
		mastery.UserID,
		mastery.Topic,
		mastery.Subject,
		mastery.Attempts,
		mastery.CorrectAnswers,
		mastery.MasteryScore,
		mastery.IsWeak,
		mastery.BloomLevel,
		mastery.LastPracticedAt,
		mastery.CreatedAt,
		mastery.UpdatedAt,
	)
	if err != nil {
		return false, MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, MapError(err)
	}

	return rows > 0, nil
}

// list runs a query returning mastery rows and scans them all.
func (s *PostgresTopicMasteryStore) list(
	ctx context.Context,
	query string,
	args ...any,
) ([]*domain.TopicMastery, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	records := make([]*domain.TopicMastery, 0)
	for rows.Next() {
		var m domain.TopicMastery
		if err := rows.Scan(
			&m.ID,
			&m.UserID,
			&m.Topic,
			&m.Subject,
			&m.Attempts,
			&m.CorrectAnswers,
			&m.MasteryScore,
			&m.IsWeak,
			&m.BloomLevel,
			&m.LastPracticedAt,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		records = append(records, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return records, nil
}

// scanMastery scans a single mastery row, mapping sql.ErrNoRows to
// store.ErrTopicMasteryNotFound.
func scanMastery(row *sql.Row) (*domain.TopicMastery, error) {
	var m domain.TopicMastery
	err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.Topic,
		&m.Subject,
		&m.Attempts,
		&m.CorrectAnswers,
		&m.MasteryScore,
		&m.IsWeak,
		&m.BloomLevel,
		&m.LastPracticedAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTopicMasteryNotFound
		}
		return nil, MapError(err)
	}

	return &m, nil
}

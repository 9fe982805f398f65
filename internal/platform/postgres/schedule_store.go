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

// scheduleColumns is the select list shared by every schedule entry query.
const scheduleColumns = `
	id, user_id, topic_mastery_id, topic, subject, next_review_date,
	interval_days, ease_factor, repetition_count, is_completed,
	completed_at, created_at, updated_at`

// PostgresRevisionScheduleStore implements the store.RevisionScheduleStore
// interface using a PostgreSQL database as the storage backend.
//
// The "at most one open entry per topic" invariant is not an application
// convention here: the partial unique index
// uq_revision_schedule_open (user_id, topic_mastery_id) WHERE NOT is_completed
// stops any insert that would violate it.
type PostgresRevisionScheduleStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRevisionScheduleStore creates a new PostgreSQL implementation
// of the RevisionScheduleStore interface. It accepts a database connection
// or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresRevisionScheduleStore(
	db store.DBTX,
	logger *slog.Logger,
) *PostgresRevisionScheduleStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresRevisionScheduleStore{
		db:     db,
		logger: logger.With(slog.String("component", "revision_schedule_store")),
	}
}

// Ensure PostgresRevisionScheduleStore implements store.RevisionScheduleStore interface
var _ store.RevisionScheduleStore = (*PostgresRevisionScheduleStore)(nil)

// Create implements store.RevisionScheduleStore.Create.
// Returns store.ErrOpenEntryExists if the topic already has an open entry.
// The conflict is absorbed with DO NOTHING rather than raised: a raised
// unique violation would abort the caller's transaction, and callers treat
// a lost creation race as already-scheduled and carry on.
func (s *PostgresRevisionScheduleStore) Create(
	ctx context.Context,
	entry *domain.RevisionScheduleEntry,
) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO revision_schedule_entries (
			id, user_id, topic_mastery_id, topic, subject, next_review_date,
			interval_days, ease_factor, repetition_count, is_completed,
			completed_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (user_id, topic_mastery_id) WHERE NOT is_completed DO NOTHING`

	result, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.TopicMasteryID,
		entry.Topic,
		entry.Subject,
		entry.NextReviewDate,
		entry.IntervalDays,
		entry.EaseFactor,
		entry.RepetitionCount,
		entry.IsCompleted,
		entry.CompletedAt,
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		return MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rows == 0 {
		return store.ErrOpenEntryExists
	}

	s.logger.Debug("created schedule entry",
		slog.String("entry_id", entry.ID.String()),
		slog.String("user_id", entry.UserID.String()),
		slog.String("topic", entry.Topic),
		slog.Int("interval_days", entry.IntervalDays),
		slog.Time("next_review_date", entry.NextReviewDate))

	return nil
}

// FindOpen implements store.RevisionScheduleStore.FindOpen.
// The partial unique index guarantees at most one result.
func (s *PostgresRevisionScheduleStore) FindOpen(
	ctx context.Context,
	userID, topicMasteryID uuid.UUID,
) (*domain.RevisionScheduleEntry, error) {
	query := `SELECT` + scheduleColumns + `
		FROM revision_schedule_entries
		WHERE user_id = $1 AND topic_mastery_id = $2 AND NOT is_completed`

	return scanEntry(s.db.QueryRowContext(ctx, query, userID, topicMasteryID))
}

// GetOpenForUpdate implements store.RevisionScheduleStore.GetOpenForUpdate.
//
// The lock is taken on the row regardless of completion state, then the
// state is inspected: this is what lets a second concurrent completion
// attempt observe is_completed = true after the first one commits, instead
// of reporting a spurious not-found.
func (s *PostgresRevisionScheduleStore) GetOpenForUpdate(
	ctx context.Context,
	userID, entryID uuid.UUID,
) (*domain.RevisionScheduleEntry, error) {
	query := `SELECT` + scheduleColumns + `
		FROM revision_schedule_entries
		WHERE id = $1 AND user_id = $2
		FOR UPDATE`

	entry, err := scanEntry(s.db.QueryRowContext(ctx, query, entryID, userID))
	if err != nil {
		return nil, err
	}

	if entry.IsCompleted {
		return nil, store.ErrEntryCompleted
	}

	return entry, nil
}

// Update implements store.RevisionScheduleStore.Update.
func (s *PostgresRevisionScheduleStore) Update(
	ctx context.Context,
	entry *domain.RevisionScheduleEntry,
) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE revision_schedule_entries
		SET next_review_date = $1, interval_days = $2, ease_factor = $3,
			repetition_count = $4, updated_at = $5
		WHERE id = $6 AND user_id = $7 AND NOT is_completed`

	result, err := s.db.ExecContext(ctx, query,
		entry.NextReviewDate,
		entry.IntervalDays,
		entry.EaseFactor,
		entry.RepetitionCount,
		entry.UpdatedAt,
		entry.ID,
		entry.UserID,
	)
	if err != nil {
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "schedule entry"); err != nil {
		return fmt.Errorf("%w: %v", store.ErrScheduleEntryNotFound, err)
	}

	s.logger.Debug("reset schedule entry in place",
		slog.String("entry_id", entry.ID.String()),
		slog.Int("interval_days", entry.IntervalDays),
		slog.Float64("ease_factor", entry.EaseFactor))

	return nil
}

// Complete implements store.RevisionScheduleStore.Complete.
func (s *PostgresRevisionScheduleStore) Complete(
	ctx context.Context,
	entryID uuid.UUID,
	completedAt time.Time,
) error {
	query := `
		UPDATE revision_schedule_entries
		SET is_completed = TRUE, completed_at = $1, updated_at = $1
		WHERE id = $2 AND NOT is_completed`

	result, err := s.db.ExecContext(ctx, query, completedAt, entryID)
	if err != nil {
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "schedule entry"); err != nil {
		return fmt.Errorf("%w: %v", store.ErrScheduleEntryNotFound, err)
	}

	return nil
}

// ListDue implements store.RevisionScheduleStore.ListDue.
func (s *PostgresRevisionScheduleStore) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	asOf time.Time,
) ([]*domain.RevisionScheduleEntry, error) {
	query := `SELECT` + scheduleColumns + `
		FROM revision_schedule_entries
		WHERE user_id = $1 AND NOT is_completed AND next_review_date <= $2
		ORDER BY next_review_date ASC`

	rows, err := s.db.QueryContext(ctx, query, userID, asOf)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	entries := make([]*domain.RevisionScheduleEntry, 0)
	for rows.Next() {
		var e domain.RevisionScheduleEntry
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.TopicMasteryID,
			&e.Topic,
			&e.Subject,
			&e.NextReviewDate,
			&e.IntervalDays,
			&e.EaseFactor,
			&e.RepetitionCount,
			&e.IsCompleted,
			&e.CompletedAt,
			&e.CreatedAt,
			&e.UpdatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return entries, nil
}

// WithTx implements store.RevisionScheduleStore.WithTx.
func (s *PostgresRevisionScheduleStore) WithTx(tx *sql.Tx) store.RevisionScheduleStore {
	return &PostgresRevisionScheduleStore{
		db:     tx,
		logger: s.logger,
	}
}

// scanEntry scans a single schedule entry row, mapping sql.ErrNoRows to
// store.ErrScheduleEntryNotFound.
func scanEntry(row *sql.Row) (*domain.RevisionScheduleEntry, error) {
	var e domain.RevisionScheduleEntry
	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.TopicMasteryID,
		&e.Topic,
		&e.Subject,
		&e.NextReviewDate,
		&e.IntervalDays,
		&e.EaseFactor,
		&e.RepetitionCount,
		&e.IsCompleted,
		&e.CompletedAt,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrScheduleEntryNotFound
		}
		return nil, MapError(err)
	}

	return &e, nil
}

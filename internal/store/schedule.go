package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/lumohq/lumo-api/internal/domain"
)

// RevisionScheduleStore defines the interface for revision schedule
// persistence. It is the sole writer of RevisionScheduleEntry records and
// the enforcement point of the "at most one open entry per topic" invariant.
type RevisionScheduleStore interface {
	// Create saves a new open schedule entry.
	// Returns ErrOpenEntryExists if the topic already has an open entry
	// (the partial unique index rejects the insert).
	// Returns validation errors from the domain entry if data is invalid.
	Create(ctx context.Context, entry *domain.RevisionScheduleEntry) error

	// FindOpen retrieves the single open entry for a topic mastery record.
	// Returns ErrScheduleEntryNotFound if the topic has no open entry.
	FindOpen(
		ctx context.Context,
		userID, topicMasteryID uuid.UUID,
	) (*domain.RevisionScheduleEntry, error)

	// GetOpenForUpdate retrieves an open entry by ID with a row-level lock
	// (SELECT FOR UPDATE), scoped to the owning user. Use inside a
	// transaction when completing or resetting the entry so concurrent
	// completion attempts serialize.
	// Returns ErrScheduleEntryNotFound if the entry does not exist or
	// belongs to another user; ErrEntryCompleted if it is already completed.
	GetOpenForUpdate(
		ctx context.Context,
		userID, entryID uuid.UUID,
	) (*domain.RevisionScheduleEntry, error)

	// Update overwrites the scheduling fields of an existing open entry in
	// place (the failed-review path). The entry stays open.
	// Returns ErrScheduleEntryNotFound if the entry does not exist.
	Update(ctx context.Context, entry *domain.RevisionScheduleEntry) error

	// Complete marks an open entry completed (the passed-review path).
	// Returns ErrScheduleEntryNotFound if no open entry with that ID exists.
	Complete(ctx context.Context, entryID uuid.UUID, completedAt time.Time) error

	// ListDue retrieves the user's open entries with next_review_date on or
	// before asOf, ordered ascending by next_review_date so the most
	// overdue material surfaces first.
	ListDue(
		ctx context.Context,
		userID uuid.UUID,
		asOf time.Time,
	) ([]*domain.RevisionScheduleEntry, error)

	// WithTx returns a new RevisionScheduleStore instance that uses the
	// provided transaction. The transaction should be created and managed
	// by the caller (typically a service).
	WithTx(tx *sql.Tx) RevisionScheduleStore
}

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/lumohq/lumo-api/internal/domain"
)

// AttemptRecord is the input to TopicMasteryStore.RecordAttempt: one
// assessment result for a (user, topic) pair, already validated by the
// caller.
type AttemptRecord struct {
	Topic          string
	Subject        string
	BloomLevel     domain.BloomLevel
	TotalQuestions int
	CorrectCount   int
}

// TopicMasteryStore defines the interface for topic mastery persistence.
// It is the sole writer of TopicMastery records.
type TopicMasteryStore interface {
	// RecordAttempt creates the mastery record for the (user, topic) pair
	// on first submission, or atomically accumulates the counters on
	// subsequent ones, recomputing the mastery score and weak flag. The
	// read-modify-write serializes on the row so concurrent submissions
	// for the same pair cannot lose an update; call it inside a
	// transaction (via WithTx) when combined with schedule writes.
	// Returns the updated record.
	RecordAttempt(
		ctx context.Context,
		userID uuid.UUID,
		attempt AttemptRecord,
		now time.Time,
	) (*domain.TopicMastery, error)

	// Get retrieves the mastery record for a (user, topic) pair.
	// Returns ErrTopicMasteryNotFound if no record exists.
	Get(ctx context.Context, userID uuid.UUID, topic string) (*domain.TopicMastery, error)

	// ListByUser retrieves all mastery records for a user, most recently
	// practiced first. Returns an empty slice if the user has none.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.TopicMastery, error)

	// ListWeakByUser retrieves the user's mastery records currently
	// classified as weak. Returns an empty slice if there are none.
	ListWeakByUser(ctx context.Context, userID uuid.UUID) ([]*domain.TopicMastery, error)

	// WithTx returns a new TopicMasteryStore instance that uses the provided
	// transaction. The transaction should be created and managed by the
	// caller (typically a service).
	WithTx(tx *sql.Tx) TopicMasteryStore
}

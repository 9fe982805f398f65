// Package revision implements the scheduling orchestrator: it coordinates
// the mastery store, the weak-topic classification and the SRS engine so
// that every assessment submission and review completion leaves the
// revision schedule in a consistent state.
package revision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lumohq/lumo-api/internal/domain"
)

// AssessmentResult is one submitted assessment for a (user, topic) pair,
// as reported by the assessment subsystem.
type AssessmentResult struct {
	Topic          string
	Subject        string
	BloomLevel     domain.BloomLevel
	TotalQuestions int
	CorrectCount   int
}

// SubmitOutcome reports what an assessment submission changed: the updated
// mastery record, and the revision entry that was newly created for it, if
// the topic was weak and previously unscheduled.
type SubmitOutcome struct {
	Mastery *domain.TopicMastery
	// Scheduled is true when this submission created a new open entry.
	// It stays false when the topic is not weak, or already had one.
	Scheduled bool
	Entry     *domain.RevisionScheduleEntry
}

// Service coordinates mastery updates and revision scheduling.
//
// Every method is a short, synchronous, single-transaction operation
// scoped to one user; there is no background scheduler process. "Due" is
// computed on demand by date comparison.
type Service interface {
	// SubmitAssessment records an assessment result, updating the topic's
	// mastery and weak-topic classification, and schedules a first revision
	// when the topic is weak and has no open entry. Creation is idempotent:
	// resubmitting while an open entry exists never creates a duplicate.
	//
	// Returns ErrInvalidCounts or ErrInvalidBloomLevel before any state is
	// mutated when the input is malformed.
	SubmitAssessment(
		ctx context.Context,
		userID uuid.UUID,
		result AssessmentResult,
	) (*SubmitOutcome, error)

	// ListDue returns the user's open revision entries due on or before
	// asOf, most overdue first. A zero asOf means "today".
	ListDue(
		ctx context.Context,
		userID uuid.UUID,
		asOf time.Time,
	) ([]*domain.RevisionScheduleEntry, error)

	// CompleteRevision records the outcome of a scheduled review. A passing
	// quality (>= 3) completes the entry and inserts a fresh open successor
	// at the grown interval; a failing quality resets the same entry in
	// place to a one-day interval. Returns the entry that remains open.
	//
	// Returns ErrEntryNotFound if the entry does not exist or belongs to
	// another user, ErrEntryCompleted if it was already completed (e.g. by
	// a concurrent attempt), and ErrInvalidQuality for ratings outside 0-5.
	CompleteRevision(
		ctx context.Context,
		userID, entryID uuid.UUID,
		quality domain.ReviewQuality,
	) (*domain.RevisionScheduleEntry, error)

	// GenerateSchedules creates open entries for every weak topic of the
	// user that lacks one, and reports how many were created. Running it
	// repeatedly is safe: topics that are already scheduled are skipped.
	GenerateSchedules(ctx context.Context, userID uuid.UUID) (int, error)
}

// Common error types for the revision service
var (
	// ErrInvalidCounts indicates malformed assessment counts.
	ErrInvalidCounts = errors.New("invalid assessment counts")

	// ErrInvalidBloomLevel indicates an unrecognized Bloom taxonomy level.
	ErrInvalidBloomLevel = errors.New("invalid bloom level")

	// ErrInvalidQuality indicates a recall quality rating outside 0-5.
	ErrInvalidQuality = errors.New("recall quality must be between 0 and 5")

	// ErrEntryNotFound indicates the schedule entry does not exist or is
	// not owned by the caller.
	ErrEntryNotFound = errors.New("schedule entry not found")

	// ErrEntryCompleted indicates the schedule entry was already completed.
	ErrEntryCompleted = errors.New("schedule entry already completed")
)

// ServiceError wraps errors from the revision service with additional
// context, allowing consumers to differentiate failures with errors.As
// instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "submit_assessment")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

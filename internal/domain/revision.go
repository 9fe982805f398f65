package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ReviewQuality is the caller-supplied 0-5 rating of recall performance on
// a completed review, matching classical SM-2 semantics: 0-2 fail, 3 hard,
// 4 good, 5 easy.
type ReviewQuality int

// Named quality ratings on the 0-5 scale.
const (
	QualityBlackout  ReviewQuality = 0
	QualityIncorrect ReviewQuality = 1
	QualityFamiliar  ReviewQuality = 2
	QualityHard      ReviewQuality = 3
	QualityGood      ReviewQuality = 4
	QualityEasy      ReviewQuality = 5
)

// Valid reports whether q lies on the 0-5 scale.
func (q ReviewQuality) Valid() bool {
	return q >= QualityBlackout && q <= QualityEasy
}

// Passing reports whether the review counts as a successful recall.
// Quality below 3 restarts the spacing curve.
func (q ReviewQuality) Passing() bool {
	return q >= QualityHard
}

// Ease factor bounds for the SM-2 variant.
const (
	// MinEaseFactor is the floor preventing runaway interval collapse for
	// topics repeatedly rated poorly but not failed.
	MinEaseFactor = 1.3

	// DefaultEaseFactor seeds newly scheduled topics.
	DefaultEaseFactor = 2.5
)

// Common validation errors for RevisionScheduleEntry
var (
	ErrEmptyEntryUserID    = errors.New("schedule entry user ID cannot be empty")
	ErrEmptyEntryMasteryID = errors.New("schedule entry topic mastery ID cannot be empty")
	ErrInvalidInterval     = errors.New("interval must be at least 1 day")
	ErrInvalidEaseFactor   = errors.New("ease factor must be at least 1.3")
	ErrInvalidRepetitions  = errors.New("repetition count cannot be negative")
)

// RevisionScheduleEntry is one pending or completed revision for a weak
// topic. For a given topic mastery record, at most one entry is open
// (IsCompleted = false) at a time; a passed review completes the entry and
// inserts a fresh open successor, a failed review resets the same entry in
// place.
type RevisionScheduleEntry struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	TopicMasteryID  uuid.UUID  `json:"topic_mastery_id"`
	Topic           string     `json:"topic"` // Denormalized from TopicMastery
	Subject         string     `json:"subject"`
	NextReviewDate  time.Time  `json:"next_review_date"`
	IntervalDays    int        `json:"interval_days"`
	EaseFactor      float64    `json:"ease_factor"`
	RepetitionCount int        `json:"repetition_count"`
	IsCompleted     bool       `json:"is_completed"`
	CompletedAt     *time.Time `json:"completed_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewRevisionScheduleEntry creates an open schedule entry for a weak topic.
// The entry starts at the default ease factor with zero repetitions; the
// caller supplies the initial interval (derived from the mastery score) and
// the resulting review date.
func NewRevisionScheduleEntry(
	userID, topicMasteryID uuid.UUID,
	topic, subject string,
	intervalDays int,
	nextReviewDate time.Time,
	now time.Time,
) (*RevisionScheduleEntry, error) {
	entry := &RevisionScheduleEntry{
		ID:              uuid.New(),
		UserID:          userID,
		TopicMasteryID:  topicMasteryID,
		Topic:           topic,
		Subject:         subject,
		NextReviewDate:  nextReviewDate,
		IntervalDays:    intervalDays,
		EaseFactor:      DefaultEaseFactor,
		RepetitionCount: 0,
		IsCompleted:     false,
		CompletedAt:     nil,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	return entry, nil
}

// Validate checks if the RevisionScheduleEntry has valid data.
// Returns an error if any field fails validation.
func (e *RevisionScheduleEntry) Validate() error {
	if e.UserID == uuid.Nil {
		return ErrEmptyEntryUserID
	}

	if e.TopicMasteryID == uuid.Nil {
		return ErrEmptyEntryMasteryID
	}

	if e.Topic == "" {
		return ErrEmptyTopic
	}

	if e.IntervalDays < 1 {
		return ErrInvalidInterval
	}

	if e.EaseFactor < MinEaseFactor {
		return ErrInvalidEaseFactor
	}

	if e.RepetitionCount < 0 {
		return ErrInvalidRepetitions
	}

	return nil
}

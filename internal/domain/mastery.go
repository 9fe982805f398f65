package domain

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

// BloomLevel is the depth of Bloom's taxonomy at which a topic was last
// exercised. It is a "most recent attempt" field, not a monotonic maximum.
type BloomLevel string

// Possible Bloom taxonomy levels, shallowest to deepest.
const (
	BloomRemember   BloomLevel = "remember"
	BloomUnderstand BloomLevel = "understand"
	BloomApply      BloomLevel = "apply"
	BloomAnalyze    BloomLevel = "analyze"
	BloomEvaluate   BloomLevel = "evaluate"
	BloomCreate     BloomLevel = "create"
)

// Valid reports whether b is a recognized Bloom taxonomy level.
func (b BloomLevel) Valid() bool {
	switch b {
	case BloomRemember, BloomUnderstand, BloomApply, BloomAnalyze, BloomEvaluate, BloomCreate:
		return true
	default:
		return false
	}
}

// WeakMasteryThreshold is the mastery score below which a topic needs
// revision. A topic must clear "more correct than not, with margin" before
// it is considered safe.
const WeakMasteryThreshold = 60

// IsWeakScore is the single definition of the weak-topic classification.
// The orchestrator and any reporting code must share this predicate so the
// classification cannot drift between callers.
func IsWeakScore(masteryScore int) bool {
	return masteryScore < WeakMasteryThreshold
}

// Common validation errors for TopicMastery
var (
	ErrEmptyMasteryUserID  = errors.New("topic mastery user ID cannot be empty")
	ErrEmptyTopic          = errors.New("topic cannot be empty")
	ErrNegativeCounts      = errors.New("question counts cannot be negative")
	ErrCorrectExceedsTotal = errors.New("correct count cannot exceed total questions")
)

// TopicMastery is the per-user, per-topic record of accumulated attempts,
// correct answers and the mastery score derived from them. Records are
// created on the first assessment submission for a (user, topic) pair,
// updated on every subsequent submission, and never deleted.
type TopicMastery struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	Topic           string     `json:"topic"`
	Subject         string     `json:"subject"`
	Attempts        int        `json:"attempts"`
	CorrectAnswers  int        `json:"correct_answers"`
	MasteryScore    int        `json:"mastery_score"` // 0-100
	IsWeak          bool       `json:"is_weak"`
	BloomLevel      BloomLevel `json:"bloom_level"`
	LastPracticedAt *time.Time `json:"last_practiced_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ValidateAttemptCounts checks an incoming assessment result before any
// state is mutated. Rejecting here guarantees no partial writes for
// malformed input.
func ValidateAttemptCounts(totalQuestions, correctCount int) error {
	if totalQuestions < 0 || correctCount < 0 {
		return ErrNegativeCounts
	}
	if correctCount > totalQuestions {
		return ErrCorrectExceedsTotal
	}
	return nil
}

// ComputeMasteryScore derives the 0-100 mastery score from accumulated
// counters: round(100 * correct / attempts), or 0 when there are no attempts.
func ComputeMasteryScore(correctAnswers, attempts int) int {
	if attempts == 0 {
		return 0
	}
	return int(math.Round(100 * float64(correctAnswers) / float64(attempts)))
}

// NewTopicMastery creates the mastery record for a (user, topic) pair from
// its first assessment result.
func NewTopicMastery(
	userID uuid.UUID,
	topic, subject string,
	bloomLevel BloomLevel,
	totalQuestions, correctCount int,
	now time.Time,
) (*TopicMastery, error) {
	if err := ValidateAttemptCounts(totalQuestions, correctCount); err != nil {
		return nil, err
	}

	score := ComputeMasteryScore(correctCount, totalQuestions)
	practiced := now
	m := &TopicMastery{
		ID:              uuid.New(),
		UserID:          userID,
		Topic:           topic,
		Subject:         subject,
		Attempts:        totalQuestions,
		CorrectAnswers:  correctCount,
		MasteryScore:    score,
		IsWeak:          IsWeakScore(score),
		BloomLevel:      bloomLevel,
		LastPracticedAt: &practiced,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// ApplyAttempt accumulates a new assessment result into the record and
// recomputes the derived fields. The Bloom level is overwritten with the
// most recent value.
func (m *TopicMastery) ApplyAttempt(
	bloomLevel BloomLevel,
	totalQuestions, correctCount int,
	now time.Time,
) error {
	if err := ValidateAttemptCounts(totalQuestions, correctCount); err != nil {
		return err
	}
	if !bloomLevel.Valid() {
		return ErrInvalidBloomLevel
	}

	m.Attempts += totalQuestions
	m.CorrectAnswers += correctCount
	m.MasteryScore = ComputeMasteryScore(m.CorrectAnswers, m.Attempts)
	m.IsWeak = IsWeakScore(m.MasteryScore)
	m.BloomLevel = bloomLevel
	practiced := now
	m.LastPracticedAt = &practiced
	m.UpdatedAt = now

	return nil
}

// Validate checks if the TopicMastery has valid data.
// Returns an error if any field fails validation.
func (m *TopicMastery) Validate() error {
	if m.UserID == uuid.Nil {
		return ErrEmptyMasteryUserID
	}

	if m.Topic == "" {
		return ErrEmptyTopic
	}

	if err := ValidateAttemptCounts(m.Attempts, m.CorrectAnswers); err != nil {
		return err
	}

	if !m.BloomLevel.Valid() {
		return ErrInvalidBloomLevel
	}

	return nil
}

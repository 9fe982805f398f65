package srs

import (
	"errors"

	"github.com/lumohq/lumo-api/internal/domain"
)

// Common errors
var (
	ErrInvalidQuality = errors.New("recall quality must be between 0 and 5")
	ErrInvalidState   = errors.New("invalid scheduling state")
)

// Service defines the interface for SRS algorithm operations. It is pure
// and deterministic: the same inputs always produce the same schedule, and
// nothing is mutated.
type Service interface {
	// NextSchedule computes the next scheduling state from the current one
	// and a 0-5 recall quality rating.
	NextSchedule(current Schedule, quality domain.ReviewQuality) (Schedule, error)

	// InitialInterval derives the first review interval in days for a newly
	// scheduled topic from its mastery score.
	InitialInterval(masteryScore int) int

	// InitialEaseFactor returns the ease factor newly scheduled topics
	// start from.
	InitialEaseFactor() float64
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new SRS service with custom parameters
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// NextSchedule implements the Service interface.
func (s *defaultService) NextSchedule(
	current Schedule,
	quality domain.ReviewQuality,
) (Schedule, error) {
	if !quality.Valid() {
		return Schedule{}, ErrInvalidQuality
	}

	if current.IntervalDays < 0 || current.RepetitionCount < 0 ||
		current.EaseFactor < s.params.MinEaseFactor {
		return Schedule{}, ErrInvalidState
	}

	return calculateNextSchedule(current, quality, s.params), nil
}

// InitialInterval implements the Service interface.
func (s *defaultService) InitialInterval(masteryScore int) int {
	return InitialIntervalForScore(masteryScore)
}

// InitialEaseFactor implements the Service interface.
func (s *defaultService) InitialEaseFactor() float64 {
	return s.params.InitialEaseFactor
}

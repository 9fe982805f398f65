package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/lumohq/lumo-api/internal/domain"
)

// dateLayout is the wire format for whole-day dates such as next_review_date.
const dateLayout = "2006-01-02"

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Token  string    `json:"token"`
}

// SubmitAssessmentRequest defines the payload for recording one assessment
// result for a (topic, subject) pair. Zero questions is a valid submission:
// counts only need to be non-negative with correct <= total, and a
// zero-attempt record scores 0.
type SubmitAssessmentRequest struct {
	Topic          string `json:"topic"           validate:"required,max=200"`
	Subject        string `json:"subject"         validate:"required,max=200"`
	BloomLevel     string `json:"bloom_level"     validate:"required"`
	TotalQuestions int    `json:"total_questions" validate:"min=0"`
	CorrectCount   int    `json:"correct_count"   validate:"min=0"`
}

// TopicMasteryResponse is the wire representation of a topic mastery record.
type TopicMasteryResponse struct {
	ID              uuid.UUID `json:"id"`
	Topic           string    `json:"topic"`
	Subject         string    `json:"subject"`
	Attempts        int       `json:"attempts"`
	CorrectAnswers  int       `json:"correct_answers"`
	MasteryScore    int       `json:"mastery_score"`
	IsWeak          bool      `json:"is_weak"`
	BloomLevel      string    `json:"bloom_level"`
	LastPracticedAt *string   `json:"last_practiced_at,omitempty"`
	UpdatedAt       string    `json:"updated_at"`
}

// SubmitAssessmentResponse reports the updated mastery state and, when this
// submission scheduled a first revision, the created entry.
type SubmitAssessmentResponse struct {
	Mastery   TopicMasteryResponse   `json:"mastery"`
	Scheduled bool                   `json:"scheduled"`
	Entry     *ScheduleEntryResponse `json:"entry,omitempty"`
}

// ScheduleEntryResponse is the wire representation of a revision schedule
// entry.
type ScheduleEntryResponse struct {
	ID              uuid.UUID `json:"id"`
	TopicMasteryID  uuid.UUID `json:"topic_mastery_id"`
	Topic           string    `json:"topic"`
	Subject         string    `json:"subject"`
	NextReviewDate  string    `json:"next_review_date"`
	IntervalDays    int       `json:"interval_days"`
	EaseFactor      float64   `json:"ease_factor"`
	RepetitionCount int       `json:"repetition_count"`
	IsCompleted     bool      `json:"is_completed"`
	CompletedAt     *string   `json:"completed_at,omitempty"`
}

// CompleteRevisionRequest carries the self-reported recall quality for a
// completed review session.
type CompleteRevisionRequest struct {
	Quality int `json:"quality" validate:"min=0,max=5"`
}

// GenerateSchedulesResponse reports how many revision entries a generate run
// created.
type GenerateSchedulesResponse struct {
	Created int `json:"created"`
}

// newTopicMasteryResponse converts a domain mastery record to its wire form.
func newTopicMasteryResponse(m *domain.TopicMastery) TopicMasteryResponse {
	resp := TopicMasteryResponse{
		ID:             m.ID,
		Topic:          m.Topic,
		Subject:        m.Subject,
		Attempts:       m.Attempts,
		CorrectAnswers: m.CorrectAnswers,
		MasteryScore:   m.MasteryScore,
		IsWeak:         m.IsWeak,
		BloomLevel:     string(m.BloomLevel),
		UpdatedAt:      m.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if m.LastPracticedAt != nil {
		s := m.LastPracticedAt.UTC().Format(time.RFC3339)
		resp.LastPracticedAt = &s
	}
	return resp
}

// newScheduleEntryResponse converts a domain schedule entry to its wire form.
func newScheduleEntryResponse(e *domain.RevisionScheduleEntry) ScheduleEntryResponse {
	resp := ScheduleEntryResponse{
		ID:              e.ID,
		TopicMasteryID:  e.TopicMasteryID,
		Topic:           e.Topic,
		Subject:         e.Subject,
		NextReviewDate:  e.NextReviewDate.UTC().Format(dateLayout),
		IntervalDays:    e.IntervalDays,
		EaseFactor:      e.EaseFactor,
		RepetitionCount: e.RepetitionCount,
		IsCompleted:     e.IsCompleted,
	}
	if e.CompletedAt != nil {
		s := e.CompletedAt.UTC().Format(time.RFC3339)
		resp.CompletedAt = &s
	}
	return resp
}

// newScheduleEntryResponses converts a slice of schedule entries, returning
// an empty slice (not nil) so the JSON array is always present.
func newScheduleEntryResponses(entries []*domain.RevisionScheduleEntry) []ScheduleEntryResponse {
	out := make([]ScheduleEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, newScheduleEntryResponse(e))
	}
	return out
}

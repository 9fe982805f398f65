package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/lumohq/lumo-api/internal/api/middleware"
	"github.com/lumohq/lumo-api/internal/api/shared"
	"github.com/lumohq/lumo-api/internal/domain"
	"github.com/lumohq/lumo-api/internal/service/revision"
)

// AssessmentHandler handles assessment result submissions.
type AssessmentHandler struct {
	revisionService revision.Service
	validator       *validator.Validate
}

// NewAssessmentHandler creates a new AssessmentHandler with the given
// dependencies.
func NewAssessmentHandler(revisionService revision.Service) *AssessmentHandler {
	return &AssessmentHandler{
		revisionService: revisionService,
		validator:       validator.New(),
	}
}

// Submit handles POST /assessments. It records the assessment result,
// updates topic mastery and schedules a first revision when the topic
// turned out weak and unscheduled.
func (h *AssessmentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req SubmitAssessmentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	bloomLevel := domain.BloomLevel(req.BloomLevel)
	if !bloomLevel.Valid() {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid bloom level")
		return
	}

	outcome, err := h.revisionService.SubmitAssessment(r.Context(), userID, revision.AssessmentResult{
		Topic:          req.Topic,
		Subject:        req.Subject,
		BloomLevel:     bloomLevel,
		TotalQuestions: req.TotalQuestions,
		CorrectCount:   req.CorrectCount,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(
			w,
			r,
			MapErrorToStatusCode(err),
			GetSafeErrorMessage(err),
			err,
		)
		return
	}

	resp := SubmitAssessmentResponse{
		Mastery:   newTopicMasteryResponse(outcome.Mastery),
		Scheduled: outcome.Scheduled,
	}
	if outcome.Entry != nil {
		entry := newScheduleEntryResponse(outcome.Entry)
		resp.Entry = &entry
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, resp)
}

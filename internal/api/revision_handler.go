package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/lumohq/lumo-api/internal/api/middleware"
	"github.com/lumohq/lumo-api/internal/api/shared"
	"github.com/lumohq/lumo-api/internal/domain"
	"github.com/lumohq/lumo-api/internal/service/revision"
)

// RevisionHandler handles revision schedule API requests.
type RevisionHandler struct {
	revisionService revision.Service
	validator       *validator.Validate
}

// NewRevisionHandler creates a new RevisionHandler with the given
// dependencies.
func NewRevisionHandler(revisionService revision.Service) *RevisionHandler {
	return &RevisionHandler{
		revisionService: revisionService,
		validator:       validator.New(),
	}
}

// ListDue handles GET /revisions/due. An optional ?as_of=YYYY-MM-DD query
// parameter overrides the reference date, defaulting to today.
func (h *RevisionHandler) ListDue(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var asOf time.Time
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid as_of date, expected YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	entries, err := h.revisionService.ListDue(r.Context(), userID, asOf)
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

	shared.RespondWithJSON(w, r, http.StatusOK, newScheduleEntryResponses(entries))
}

// Complete handles POST /revisions/{id}/complete. The request body carries
// the 0-5 recall quality; the response is the entry that remains open after
// rescheduling.
func (h *RevisionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	entryID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid entry ID")
		return
	}

	var req CompleteRevisionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	entry, err := h.revisionService.CompleteRevision(
		r.Context(),
		userID,
		entryID,
		domain.ReviewQuality(req.Quality),
	)
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

	shared.RespondWithJSON(w, r, http.StatusOK, newScheduleEntryResponse(entry))
}

// Generate handles POST /revisions/generate. It backfills open entries for
// every weak topic that lacks one and reports how many were created.
func (h *RevisionHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	created, err := h.revisionService.GenerateSchedules(r.Context(), userID)
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

	shared.RespondWithJSON(w, r, http.StatusOK, GenerateSchedulesResponse{Created: created})
}

package api

import (
	"net/http"

	"github.com/lumohq/lumo-api/internal/api/middleware"
	"github.com/lumohq/lumo-api/internal/api/shared"
	"github.com/lumohq/lumo-api/internal/domain"
	"github.com/lumohq/lumo-api/internal/store"
)

// MasteryHandler serves read access to topic mastery records.
type MasteryHandler struct {
	masteryStore store.TopicMasteryStore
}

// NewMasteryHandler creates a new MasteryHandler with the given dependencies.
func NewMasteryHandler(masteryStore store.TopicMasteryStore) *MasteryHandler {
	return &MasteryHandler{
		masteryStore: masteryStore,
	}
}

// List handles GET /mastery. With ?weak=true it returns only weak topics,
// weakest first; otherwise all of the user's topics, most recently
// practiced first.
func (h *MasteryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var (
		records []*domain.TopicMastery
		err     error
	)
	if r.URL.Query().Get("weak") == "true" {
		records, err = h.masteryStore.ListWeakByUser(r.Context(), userID)
	} else {
		records, err = h.masteryStore.ListByUser(r.Context(), userID)
	}
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

	resp := make([]TopicMasteryResponse, 0, len(records))
	for _, m := range records {
		resp = append(resp, newTopicMasteryResponse(m))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

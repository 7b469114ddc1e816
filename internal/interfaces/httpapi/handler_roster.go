package httpapi

import (
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/team-balancer/internal/usecase"
)

// ValidateRoster answers 200 even for rosters that fail, so callers
// read the valid flag and the collected errors instead of an HTTP status.
func (h *Handler) ValidateRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ValidateRoster")
	defer span.End()

	var req validateRosterRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}

	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result := h.rosterService.Validate(ctx, usecase.ValidateRosterInput{
		Players:           rosterEntriesFromRequest(ctx, req.Players),
		ApplyDefaultSkill: req.ApplyDefaultSkill,
	})

	writeSuccess(ctx, w, http.StatusOK, rosterValidationToDTO(ctx, result))
}

package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/team-balancer/internal/usecase"
)

func (h *Handler) GenerateTeamRun(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GenerateTeamRun")
	defer span.End()

	var req generateTeamRunRequest
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

	run, err := h.teamRunService.Generate(ctx, usecase.GenerateTeamRunInput{
		OrgID:             req.OrgID,
		RunDate:           req.RunDate,
		Players:           rosterEntriesFromRequest(ctx, req.Players),
		ApplyDefaultSkill: req.ApplyDefaultSkill,
		Seed:              req.Seed,
		TimeBudget:        timeBudgetFromRequest(req.TimeBudgetMS),
		Weights:           weightsFromRequest(req.Weights),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "generate team run failed", "org_id", req.OrgID, "run_date", req.RunDate, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, teamRunToDTO(ctx, run))
}

func (h *Handler) GetTeamRun(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeamRun")
	defer span.End()

	runID := strings.TrimSpace(r.PathValue("runID"))
	run, exists, err := h.teamRunService.GetByID(ctx, runID)
	if err != nil {
		h.logger.WarnContext(ctx, "get team run failed", "run_id", runID, "error", err)
		writeError(ctx, w, err)
		return
	}
	if !exists {
		writeError(ctx, w, fmt.Errorf("%w: run %s", usecase.ErrNotFound, runID))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamRunToDTO(ctx, run))
}

func (h *Handler) GetTeamRunByOrgAndDate(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeamRunByOrgAndDate")
	defer span.End()

	req := getTeamRunByOrgAndDateRequest{
		OrgID:   strings.TrimSpace(r.URL.Query().Get("org_id")),
		RunDate: strings.TrimSpace(r.URL.Query().Get("date")),
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	run, exists, err := h.teamRunService.GetByOrgAndDate(ctx, req.OrgID, req.RunDate)
	if err != nil {
		h.logger.WarnContext(ctx, "get team run by org and date failed", "org_id", req.OrgID, "run_date", req.RunDate, "error", err)
		writeError(ctx, w, err)
		return
	}
	if !exists {
		writeError(ctx, w, fmt.Errorf("%w: no run for %s on %s", usecase.ErrNotFound, req.OrgID, req.RunDate))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamRunToDTO(ctx, run))
}

func (h *Handler) PublishTeamRun(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PublishTeamRun")
	defer span.End()

	runID := strings.TrimSpace(r.PathValue("runID"))
	run, err := h.teamRunService.Publish(ctx, runID)
	if err != nil {
		h.logger.WarnContext(ctx, "publish team run failed", "run_id", runID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamRunToDTO(ctx, run))
}

func (h *Handler) LockTeamRun(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LockTeamRun")
	defer span.End()

	runID := strings.TrimSpace(r.PathValue("runID"))
	run, err := h.teamRunService.Lock(ctx, runID)
	if err != nil {
		h.logger.WarnContext(ctx, "lock team run failed", "run_id", runID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamRunToDTO(ctx, run))
}

func (h *Handler) RegenerateTeamRun(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RegenerateTeamRun")
	defer span.End()

	runID := strings.TrimSpace(r.PathValue("runID"))
	req, err := decodeRegenerateTeamRunRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	run, err := h.teamRunService.Regenerate(ctx, usecase.RegenerateTeamRunInput{
		RunID:             runID,
		ApplyDefaultSkill: req.ApplyDefaultSkill,
		Seed:              req.Seed,
		TimeBudget:        timeBudgetFromRequest(req.TimeBudgetMS),
		Weights:           weightsFromRequest(req.Weights),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "regenerate team run failed", "run_id", runID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamRunToDTO(ctx, run))
}

// decodeRegenerateTeamRunRequest tolerates an empty body so a plain POST
// reruns the solver with the stored settings.
func decodeRegenerateTeamRunRequest(r *http.Request) (regenerateTeamRunRequest, error) {
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req regenerateTeamRunRequest
	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return regenerateTeamRunRequest{}, nil
		}
		return regenerateTeamRunRequest{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return req, nil
}

package httpapi

import (
	"context"
	"fmt"
	"github.com/riskibarqy/team-balancer/internal/platform/logging"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/team-balancer/internal/domain/roster"
	"github.com/riskibarqy/team-balancer/internal/domain/teamrun"
	"github.com/riskibarqy/team-balancer/internal/optimizer"
	"github.com/riskibarqy/team-balancer/internal/usecase"
)

type Handler struct {
	teamRunService *usecase.TeamRunService
	rosterService  *usecase.RosterService
	logger         *logging.Logger
	validator      *validator.Validate
}

func NewHandler(
	teamRunService *usecase.TeamRunService,
	rosterService *usecase.RosterService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		teamRunService: teamRunService,
		rosterService:  rosterService,
		logger:         logger,
		validator:      validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type rosterEntryRequest struct {
	ID           string `json:"id" validate:"required,max=100"`
	Name         string `json:"name" validate:"omitempty,max=100"`
	Skill        int    `json:"skill"`
	Age          int    `json:"age"`
	MainPosition string `json:"main_position" validate:"required"`
	AltPosition  string `json:"alt_position"`
}

type weightsRequest struct {
	SkillBalance int64 `json:"skill_balance" validate:"required,gt=0"`
	AgeBalance   int64 `json:"age_balance" validate:"required,gt=0"`
	GKMissing    int64 `json:"gk_missing" validate:"required,gt=0"`
	Shape        int64 `json:"shape" validate:"required,gt=0"`
	PosMismatch  int64 `json:"pos_mismatch" validate:"required,gt=0"`
	AltPosition  int64 `json:"alt_position" validate:"required,gt=0"`
}

type generateTeamRunRequest struct {
	OrgID             string               `json:"org_id" validate:"required,max=100"`
	RunDate           string               `json:"run_date" validate:"required"`
	Players           []rosterEntryRequest `json:"players" validate:"omitempty,dive"`
	ApplyDefaultSkill bool                 `json:"apply_default_skill"`
	Seed              *int64               `json:"seed"`
	TimeBudgetMS      int64                `json:"time_budget_ms" validate:"omitempty,gt=0,lte=120000"`
	Weights           *weightsRequest      `json:"weights"`
}

type regenerateTeamRunRequest struct {
	ApplyDefaultSkill bool            `json:"apply_default_skill"`
	Seed              *int64          `json:"seed"`
	TimeBudgetMS      int64           `json:"time_budget_ms" validate:"omitempty,gt=0,lte=120000"`
	Weights           *weightsRequest `json:"weights"`
}

type validateRosterRequest struct {
	Players           []rosterEntryRequest `json:"players" validate:"required,min=1,dive"`
	ApplyDefaultSkill bool                 `json:"apply_default_skill"`
}

type getTeamRunByOrgAndDateRequest struct {
	OrgID   string `validate:"required"`
	RunDate string `validate:"required"`
}

type teamRunDTO struct {
	ID               string           `json:"id"`
	OrgID            string           `json:"org_id"`
	RunDate          string           `json:"run_date"`
	AlgorithmVersion string           `json:"algorithm_version"`
	Status           string           `json:"status"`
	Seed             int64            `json:"seed"`
	TimeBudgetMS     int64            `json:"time_budget_ms"`
	SolveStatus      string           `json:"solve_status"`
	SolveTimeMS      int64            `json:"solve_time_ms"`
	Objective        int64            `json:"objective"`
	SkillGap         int              `json:"skill_gap"`
	AgeGap           int              `json:"age_gap"`
	Warnings         []string         `json:"warnings,omitempty"`
	Assignments      []assignmentDTO  `json:"assignments"`
	Metrics          []teamMetricsDTO `json:"metrics,omitempty"`
	CreatedAtUTC     string           `json:"created_at_utc"`
	UpdatedAtUTC     string           `json:"updated_at_utc"`
	PublishedAtUTC   string           `json:"published_at_utc,omitempty"`
	LockedAtUTC      string           `json:"locked_at_utc,omitempty"`
}

type assignmentDTO struct {
	PlayerID         string `json:"player_id"`
	Team             string `json:"team"`
	AssignedRole     string `json:"assigned_role,omitempty"`
	BenchTeam        string `json:"bench_team,omitempty"`
	IsManualOverride bool   `json:"is_manual_override"`
	Reason           string `json:"reason,omitempty"`
}

type teamMetricsDTO struct {
	Team          string         `json:"team"`
	PlayerCount   int            `json:"player_count"`
	SkillSum      int            `json:"skill_sum"`
	SkillAvg      float64        `json:"skill_avg"`
	SkillStdDev   float64        `json:"skill_stddev"`
	AgeSum        int            `json:"age_sum"`
	AgeAvg        float64        `json:"age_avg"`
	HasGoalkeeper bool           `json:"has_goalkeeper"`
	RoleCounts    map[string]int `json:"role_counts,omitempty"`
}

type rosterValidationDTO struct {
	Valid       bool     `json:"valid"`
	PlayerCount int      `json:"player_count"`
	TeamSizes   []int    `json:"team_sizes,omitempty"`
	SubCount    int      `json:"sub_count"`
	Errors      []string `json:"errors,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
}

func rosterEntriesFromRequest(ctx context.Context, items []rosterEntryRequest) []roster.Entry {
	ctx, span := startSpan(ctx, "httpapi.rosterEntriesFromRequest")
	defer span.End()

	entries := make([]roster.Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, roster.Entry{
			ID:           item.ID,
			Name:         item.Name,
			Skill:        item.Skill,
			Age:          item.Age,
			MainPosition: item.MainPosition,
			AltPosition:  item.AltPosition,
		})
	}

	return entries
}

func weightsFromRequest(req *weightsRequest) *optimizer.Weights {
	if req == nil {
		return nil
	}

	return &optimizer.Weights{
		SkillBalance: req.SkillBalance,
		AgeBalance:   req.AgeBalance,
		GKMissing:    req.GKMissing,
		Shape:        req.Shape,
		PosMismatch:  req.PosMismatch,
		AltPosition:  req.AltPosition,
	}
}

func timeBudgetFromRequest(ms int64) time.Duration {
	if ms <= 0 {
		return 0
	}

	return time.Duration(ms) * time.Millisecond
}

func teamRunToDTO(ctx context.Context, run teamrun.TeamRun) teamRunDTO {
	ctx, span := startSpan(ctx, "httpapi.teamRunToDTO")
	defer span.End()

	assignments := make([]assignmentDTO, 0, len(run.Assignments))
	for _, item := range run.Assignments {
		assignments = append(assignments, assignmentToDTO(ctx, item))
	}

	metrics := make([]teamMetricsDTO, 0, len(run.Metrics))
	for _, item := range run.Metrics {
		metrics = append(metrics, teamMetricsToDTO(ctx, item))
	}

	return teamRunDTO{
		ID:               run.ID,
		OrgID:            run.OrgID,
		RunDate:          run.RunDate,
		AlgorithmVersion: run.AlgorithmVersion,
		Status:           string(run.Status),
		Seed:             run.Seed,
		TimeBudgetMS:     run.TimeBudget.Milliseconds(),
		SolveStatus:      string(run.SolveStatus),
		SolveTimeMS:      run.SolveTime.Milliseconds(),
		Objective:        run.Objective,
		SkillGap:         run.SkillGap,
		AgeGap:           run.AgeGap,
		Warnings:         append([]string(nil), run.Warnings...),
		Assignments:      assignments,
		Metrics:          metrics,
		CreatedAtUTC:     run.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAtUTC:     run.UpdatedAt.UTC().Format(time.RFC3339),
		PublishedAtUTC:   formatOptionalTime(run.PublishedAt),
		LockedAtUTC:      formatOptionalTime(run.LockedAt),
	}
}

func assignmentToDTO(ctx context.Context, item teamrun.Assignment) assignmentDTO {
	ctx, span := startSpan(ctx, "httpapi.assignmentToDTO")
	defer span.End()

	return assignmentDTO{
		PlayerID:         item.PlayerID,
		Team:             string(item.Team),
		AssignedRole:     string(item.AssignedRole),
		BenchTeam:        string(item.BenchTeam),
		IsManualOverride: item.IsManualOverride,
		Reason:           item.Reason,
	}
}

func teamMetricsToDTO(ctx context.Context, item teamrun.TeamMetrics) teamMetricsDTO {
	ctx, span := startSpan(ctx, "httpapi.teamMetricsToDTO")
	defer span.End()

	var roleCounts map[string]int
	if len(item.RoleCounts) > 0 {
		roleCounts = make(map[string]int, len(item.RoleCounts))
		for role, count := range item.RoleCounts {
			roleCounts[string(role)] = count
		}
	}

	return teamMetricsDTO{
		Team:          string(item.Team),
		PlayerCount:   item.PlayerCount,
		SkillSum:      item.SkillSum,
		SkillAvg:      item.SkillAvg,
		SkillStdDev:   item.SkillStdDev,
		AgeSum:        item.AgeSum,
		AgeAvg:        item.AgeAvg,
		HasGoalkeeper: item.HasGoalkeeper,
		RoleCounts:    roleCounts,
	}
}

func rosterValidationToDTO(ctx context.Context, v usecase.RosterValidation) rosterValidationDTO {
	ctx, span := startSpan(ctx, "httpapi.rosterValidationToDTO")
	defer span.End()

	return rosterValidationDTO{
		Valid:       v.Valid,
		PlayerCount: v.PlayerCount,
		TeamSizes:   append([]int(nil), v.TeamSizes...),
		SubCount:    v.SubCount,
		Errors:      append([]string(nil), v.Errors...),
		Warnings:    append([]string(nil), v.Warnings...),
	}
}

func formatOptionalTime(v *time.Time) string {
	if v == nil || v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}

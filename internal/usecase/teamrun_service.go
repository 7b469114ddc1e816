package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/team-balancer/internal/domain/roster"
	"github.com/riskibarqy/team-balancer/internal/domain/teamrun"
	"github.com/riskibarqy/team-balancer/internal/optimizer"
	idgen "github.com/riskibarqy/team-balancer/internal/platform/id"
	"github.com/riskibarqy/team-balancer/internal/platform/resilience"
	"github.com/sourcegraph/conc"
)

const runDateLayout = "2006-01-02"

// RosterProvider supplies the entries checked in for an organization's
// session date.
type RosterProvider interface {
	FetchRoster(ctx context.Context, orgID, runDate string) ([]roster.Entry, error)
}

// SolverSettings carries operator-tuned solve defaults. Zero fields fall
// back to the optimizer defaults; MaxTimeBudget caps the retry budget.
type SolverSettings struct {
	TimeBudget    time.Duration
	MaxTimeBudget time.Duration
	Restarts      int
	Workers       int
	Seed          int64
}

func (s SolverSettings) withDefaults() SolverSettings {
	if s.TimeBudget <= 0 {
		s.TimeBudget = optimizer.DefaultTimeBudget
	}
	if s.MaxTimeBudget < s.TimeBudget {
		s.MaxTimeBudget = 2 * s.TimeBudget
	}
	if s.Restarts <= 0 {
		s.Restarts = optimizer.DefaultRestarts
	}
	if s.Workers <= 0 {
		s.Workers = optimizer.DefaultWorkers
	}
	if s.Seed == 0 {
		s.Seed = optimizer.DefaultSeed
	}
	return s
}

type GenerateTeamRunInput struct {
	OrgID             string
	RunDate           string
	Players           []roster.Entry // inline roster; fetched from the provider when empty
	ApplyDefaultSkill bool
	Seed              *int64
	TimeBudget        time.Duration
	Weights           *optimizer.Weights
}

type RegenerateTeamRunInput struct {
	RunID             string
	ApplyDefaultSkill bool
	Seed              *int64
	TimeBudget        time.Duration
	Weights           *optimizer.Weights
}

type TeamRunService struct {
	runRepo  teamrun.Repository
	provider RosterProvider
	idGen    idgen.Generator
	solver   SolverSettings
	flight   resilience.SingleFlight
	now      func() time.Time
}

func NewTeamRunService(
	runRepo teamrun.Repository,
	provider RosterProvider,
	idGen idgen.Generator,
	solver SolverSettings,
) *TeamRunService {
	return &TeamRunService{
		runRepo:  runRepo,
		provider: provider,
		idGen:    idGen,
		solver:   solver.withDefaults(),
		now:      time.Now,
	}
}

// Generate solves one roster and stores the outcome as the draft run for
// the organization's date. An existing draft or published run is replaced
// in place and keeps its id; a locked run refuses regeneration.
// Concurrent generates for the same org and date share a single solve.
func (s *TeamRunService) Generate(ctx context.Context, input GenerateTeamRunInput) (teamrun.TeamRun, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamRunService.Generate")
	defer span.End()

	input.OrgID = strings.TrimSpace(input.OrgID)
	if input.OrgID == "" {
		return teamrun.TeamRun{}, fmt.Errorf("%w: org id is required", ErrInvalidInput)
	}
	runDate, err := normalizeRunDate(input.RunDate)
	if err != nil {
		return teamrun.TeamRun{}, err
	}
	input.RunDate = runDate

	value, err, _ := s.flight.Do(runFlightKey(input.OrgID, input.RunDate), func() (any, error) {
		return s.generate(ctx, input)
	})
	if err != nil {
		return teamrun.TeamRun{}, err
	}
	return value.(teamrun.TeamRun), nil
}

func (s *TeamRunService) generate(ctx context.Context, input GenerateTeamRunInput) (teamrun.TeamRun, error) {
	var (
		entries  []roster.Entry
		fetchErr error

		existing      teamrun.TeamRun
		existingFound bool
		existingErr   error
	)

	var wg conc.WaitGroup
	wg.Go(func() {
		existing, existingFound, existingErr = s.runRepo.GetByOrgAndDate(ctx, input.OrgID, input.RunDate)
	})
	if len(input.Players) > 0 {
		entries = input.Players
	} else {
		wg.Go(func() {
			entries, fetchErr = s.fetchRoster(ctx, input.OrgID, input.RunDate)
		})
	}
	wg.Wait()

	if existingErr != nil {
		return teamrun.TeamRun{}, fmt.Errorf("load run for %s on %s: %w", input.OrgID, input.RunDate, existingErr)
	}
	if fetchErr != nil {
		return teamrun.TeamRun{}, fetchErr
	}
	if existingFound && existing.Locked() {
		return teamrun.TeamRun{}, fmt.Errorf("%w: run %s for %s on %s", teamrun.ErrRunLocked, existing.ID, input.OrgID, input.RunDate)
	}

	run, err := s.solveRun(ctx, input, entries)
	if err != nil {
		return teamrun.TeamRun{}, err
	}

	now := s.now().UTC()
	if existingFound {
		run.ID = existing.ID
		run.CreatedAt = existing.CreatedAt
	} else {
		runID, err := s.idGen.NewID()
		if err != nil {
			return teamrun.TeamRun{}, fmt.Errorf("generate run id: %w", err)
		}
		run.ID = runID
		run.CreatedAt = now
	}
	run.UpdatedAt = now

	if err := s.runRepo.Replace(ctx, run); err != nil {
		return teamrun.TeamRun{}, fmt.Errorf("store run %s: %w", run.ID, err)
	}
	return run, nil
}

// Regenerate re-fetches the roster behind an existing run, solves again,
// and swaps the stored assignments while keeping the run id. The run
// drops back to draft regardless of its previous status.
func (s *TeamRunService) Regenerate(ctx context.Context, input RegenerateTeamRunInput) (teamrun.TeamRun, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamRunService.Regenerate")
	defer span.End()

	runID := strings.TrimSpace(input.RunID)
	if runID == "" {
		return teamrun.TeamRun{}, fmt.Errorf("%w: run id is required", ErrInvalidInput)
	}

	current, exists, err := s.runRepo.GetByID(ctx, runID)
	if err != nil {
		return teamrun.TeamRun{}, fmt.Errorf("load run %s: %w", runID, err)
	}
	if !exists {
		return teamrun.TeamRun{}, fmt.Errorf("%w: run %s", ErrNotFound, runID)
	}
	if current.Locked() {
		return teamrun.TeamRun{}, fmt.Errorf("%w: run %s", teamrun.ErrRunLocked, runID)
	}

	value, flightErr, _ := s.flight.Do(runFlightKey(current.OrgID, current.RunDate), func() (any, error) {
		entries, err := s.fetchRoster(ctx, current.OrgID, current.RunDate)
		if err != nil {
			return nil, err
		}
		run, err := s.solveRun(ctx, GenerateTeamRunInput{
			OrgID:             current.OrgID,
			RunDate:           current.RunDate,
			ApplyDefaultSkill: input.ApplyDefaultSkill,
			Seed:              input.Seed,
			TimeBudget:        input.TimeBudget,
			Weights:           input.Weights,
		}, entries)
		if err != nil {
			return nil, err
		}
		run.ID = current.ID
		run.CreatedAt = current.CreatedAt
		run.UpdatedAt = s.now().UTC()
		if err := s.runRepo.Replace(ctx, run); err != nil {
			return nil, fmt.Errorf("store run %s: %w", run.ID, err)
		}
		return run, nil
	})
	if flightErr != nil {
		return teamrun.TeamRun{}, flightErr
	}
	return value.(teamrun.TeamRun), nil
}

// solveRun normalizes the entries and runs the optimizer, retrying once
// with a doubled budget when the first attempt times out. The returned
// run has no id or timestamps yet.
func (s *TeamRunService) solveRun(ctx context.Context, input GenerateTeamRunInput, entries []roster.Entry) (teamrun.TeamRun, error) {
	players, err := roster.Normalize(entries, roster.Options{ApplyDefaultSkill: input.ApplyDefaultSkill})
	if err != nil {
		return teamrun.TeamRun{}, err
	}

	opts := optimizer.Options{
		Weights:    optimizer.DefaultWeights(),
		Seed:       s.solver.Seed,
		TimeBudget: s.solver.TimeBudget,
		Restarts:   s.solver.Restarts,
		Workers:    s.solver.Workers,
	}
	if input.Weights != nil {
		if err := input.Weights.Validate(); err != nil {
			return teamrun.TeamRun{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		opts.Weights = *input.Weights
	}
	if input.Seed != nil {
		opts.Seed = *input.Seed
	}
	if input.TimeBudget > 0 {
		opts.TimeBudget = input.TimeBudget
	}
	if opts.TimeBudget > s.solver.MaxTimeBudget {
		opts.TimeBudget = s.solver.MaxTimeBudget
	}

	result, err := optimizer.Solve(ctx, players, opts)
	if errors.Is(err, optimizer.ErrSolveTimeout) && opts.TimeBudget < s.solver.MaxTimeBudget {
		opts.TimeBudget = 2 * opts.TimeBudget
		if opts.TimeBudget > s.solver.MaxTimeBudget {
			opts.TimeBudget = s.solver.MaxTimeBudget
		}
		result, err = optimizer.Solve(ctx, players, opts)
	}
	if err != nil {
		return teamrun.TeamRun{}, err
	}

	return teamrun.TeamRun{
		OrgID:            input.OrgID,
		RunDate:          input.RunDate,
		AlgorithmVersion: optimizer.AlgorithmVersion,
		Status:           teamrun.StatusDraft,
		Seed:             opts.Seed,
		TimeBudget:       opts.TimeBudget,
		SolveStatus:      result.Status,
		SolveTime:        result.Elapsed,
		Objective:        result.Objective,
		SkillGap:         result.SkillGap,
		AgeGap:           result.AgeGap,
		Warnings:         result.Warnings,
		Assignments:      result.Assignments,
		Metrics:          result.Metrics,
	}, nil
}

// Transition applies a lifecycle action through a compare-and-set on the
// stored status, so concurrent admins cannot blindly overwrite each
// other. Refused updates are classified against the status found.
func (s *TeamRunService) Transition(ctx context.Context, runID string, action teamrun.Action) (teamrun.TeamRun, error) {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return teamrun.TeamRun{}, fmt.Errorf("%w: run id is required", ErrInvalidInput)
	}

	from, to, ok := teamrun.TransitionWindow(action)
	if !ok {
		return teamrun.TeamRun{}, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, action)
	}

	updated, exists, err := s.runRepo.SetStatus(ctx, runID, from, to, s.now().UTC())
	if err != nil {
		return teamrun.TeamRun{}, fmt.Errorf("update run %s status: %w", runID, err)
	}
	if !exists {
		return teamrun.TeamRun{}, fmt.Errorf("%w: run %s", ErrNotFound, runID)
	}
	if updated.Status != to {
		if _, err := teamrun.NextStatus(updated.Status, action); err != nil {
			return teamrun.TeamRun{}, fmt.Errorf("run %s: %w", runID, err)
		}
		return teamrun.TeamRun{}, fmt.Errorf("%w: run %s changed status concurrently", teamrun.ErrInvalidTransition, runID)
	}
	return updated, nil
}

func (s *TeamRunService) Publish(ctx context.Context, runID string) (teamrun.TeamRun, error) {
	return s.Transition(ctx, runID, teamrun.ActionPublish)
}

func (s *TeamRunService) Lock(ctx context.Context, runID string) (teamrun.TeamRun, error) {
	return s.Transition(ctx, runID, teamrun.ActionLock)
}

func (s *TeamRunService) GetByID(ctx context.Context, runID string) (teamrun.TeamRun, bool, error) {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return teamrun.TeamRun{}, false, fmt.Errorf("%w: run id is required", ErrInvalidInput)
	}
	return s.runRepo.GetByID(ctx, runID)
}

func (s *TeamRunService) GetByOrgAndDate(ctx context.Context, orgID, runDate string) (teamrun.TeamRun, bool, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return teamrun.TeamRun{}, false, fmt.Errorf("%w: org id is required", ErrInvalidInput)
	}
	date, err := normalizeRunDate(runDate)
	if err != nil {
		return teamrun.TeamRun{}, false, err
	}
	return s.runRepo.GetByOrgAndDate(ctx, orgID, date)
}

func (s *TeamRunService) fetchRoster(ctx context.Context, orgID, runDate string) ([]roster.Entry, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("%w: no roster provider configured", ErrDependencyUnavailable)
	}
	entries, err := s.provider.FetchRoster(ctx, orgID, runDate)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch roster for %s on %s: %v", ErrDependencyUnavailable, orgID, runDate, err)
	}
	return entries, nil
}

func normalizeRunDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: run date is required", ErrInvalidInput)
	}
	parsed, err := time.Parse(runDateLayout, raw)
	if err != nil {
		return "", fmt.Errorf("%w: run date must be %s", ErrInvalidInput, runDateLayout)
	}
	return parsed.Format(runDateLayout), nil
}

func runFlightKey(orgID, runDate string) string {
	return orgID + "::" + runDate
}

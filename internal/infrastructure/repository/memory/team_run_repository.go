package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/team-balancer/internal/domain/roster"
	"github.com/riskibarqy/team-balancer/internal/domain/teamrun"
)

type TeamRunRepository struct {
	mu        sync.RWMutex
	byID      map[string]teamrun.TeamRun
	byOrgDate map[string]string
}

func NewTeamRunRepository() *TeamRunRepository {
	return &TeamRunRepository{
		byID:      make(map[string]teamrun.TeamRun),
		byOrgDate: make(map[string]string),
	}
}

func (r *TeamRunRepository) GetByID(_ context.Context, runID string) (teamrun.TeamRun, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.byID[runID]
	if !ok {
		return teamrun.TeamRun{}, false, nil
	}
	return cloneTeamRun(run), true, nil
}

func (r *TeamRunRepository) GetByOrgAndDate(_ context.Context, orgID, runDate string) (teamrun.TeamRun, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runID, ok := r.byOrgDate[teamRunKey(orgID, runDate)]
	if !ok {
		return teamrun.TeamRun{}, false, nil
	}
	return cloneTeamRun(r.byID[runID]), true, nil
}

func (r *TeamRunRepository) Replace(_ context.Context, run teamrun.TeamRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.byID[run.ID]; ok {
		if current.Locked() {
			return fmt.Errorf("%w: run %s", teamrun.ErrRunLocked, run.ID)
		}
		delete(r.byOrgDate, teamRunKey(current.OrgID, current.RunDate))
	}

	key := teamRunKey(run.OrgID, run.RunDate)
	if otherID, ok := r.byOrgDate[key]; ok && otherID != run.ID {
		return fmt.Errorf("run %s already holds %s on %s", otherID, run.OrgID, run.RunDate)
	}

	r.byID[run.ID] = cloneTeamRun(run)
	r.byOrgDate[key] = run.ID
	return nil
}

func (r *TeamRunRepository) SetStatus(_ context.Context, runID string, from []teamrun.RunStatus, to teamrun.RunStatus, now time.Time) (teamrun.TeamRun, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[runID]
	if !ok {
		return teamrun.TeamRun{}, false, nil
	}

	allowed := false
	for _, status := range from {
		if current.Status == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return cloneTeamRun(current), true, nil
	}

	current.Status = to
	current.UpdatedAt = now
	switch to {
	case teamrun.StatusPublished:
		stamp := now
		current.PublishedAt = &stamp
	case teamrun.StatusLocked:
		stamp := now
		current.LockedAt = &stamp
	}
	r.byID[runID] = current
	return cloneTeamRun(current), true, nil
}

func teamRunKey(orgID, runDate string) string {
	return orgID + "::" + runDate
}

func cloneTeamRun(run teamrun.TeamRun) teamrun.TeamRun {
	copied := run
	copied.Warnings = append([]string(nil), run.Warnings...)
	copied.Assignments = append([]teamrun.Assignment(nil), run.Assignments...)
	copied.Metrics = append([]teamrun.TeamMetrics(nil), run.Metrics...)
	for i, metric := range run.Metrics {
		if metric.RoleCounts == nil {
			continue
		}
		counts := make(map[roster.Position]int, len(metric.RoleCounts))
		for role, n := range metric.RoleCounts {
			counts[role] = n
		}
		copied.Metrics[i].RoleCounts = counts
	}
	if run.PublishedAt != nil {
		stamp := *run.PublishedAt
		copied.PublishedAt = &stamp
	}
	if run.LockedAt != nil {
		stamp := *run.LockedAt
		copied.LockedAt = &stamp
	}
	return copied
}

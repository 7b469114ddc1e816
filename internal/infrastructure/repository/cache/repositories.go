package cache

import (
	"context"
	"time"

	"github.com/riskibarqy/team-balancer/internal/domain/roster"
	"github.com/riskibarqy/team-balancer/internal/domain/teamrun"
	basecache "github.com/riskibarqy/team-balancer/internal/platform/cache"
)

// TeamRunRepository decorates a team run repository with a read cache.
// Writes pass through and invalidate both lookup keys for the run.
type TeamRunRepository struct {
	next  teamrun.Repository
	cache *basecache.Store
}

func NewTeamRunRepository(next teamrun.Repository, cache *basecache.Store) *TeamRunRepository {
	return &TeamRunRepository{next: next, cache: cache}
}

func (r *TeamRunRepository) GetByID(ctx context.Context, runID string) (teamrun.TeamRun, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, teamRunByIDKey(runID), func(ctx context.Context) (any, error) {
		run, exists, err := r.next.GetByID(ctx, runID)
		if err != nil {
			return nil, err
		}
		return cachedTeamRun{value: cloneTeamRun(run), exists: exists}, nil
	})
	if err != nil {
		return teamrun.TeamRun{}, false, err
	}

	cached, _ := v.(cachedTeamRun)
	return cloneTeamRun(cached.value), cached.exists, nil
}

func (r *TeamRunRepository) GetByOrgAndDate(ctx context.Context, orgID, runDate string) (teamrun.TeamRun, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, teamRunByOrgDateKey(orgID, runDate), func(ctx context.Context) (any, error) {
		run, exists, err := r.next.GetByOrgAndDate(ctx, orgID, runDate)
		if err != nil {
			return nil, err
		}
		return cachedTeamRun{value: cloneTeamRun(run), exists: exists}, nil
	})
	if err != nil {
		return teamrun.TeamRun{}, false, err
	}

	cached, _ := v.(cachedTeamRun)
	return cloneTeamRun(cached.value), cached.exists, nil
}

func (r *TeamRunRepository) Replace(ctx context.Context, run teamrun.TeamRun) error {
	if err := r.next.Replace(ctx, run); err != nil {
		return err
	}

	r.cache.Delete(ctx, teamRunByIDKey(run.ID))
	r.cache.Delete(ctx, teamRunByOrgDateKey(run.OrgID, run.RunDate))
	return nil
}

func (r *TeamRunRepository) SetStatus(ctx context.Context, runID string, from []teamrun.RunStatus, to teamrun.RunStatus, now time.Time) (teamrun.TeamRun, bool, error) {
	run, ok, err := r.next.SetStatus(ctx, runID, from, to, now)
	if err != nil || !ok {
		return run, ok, err
	}

	r.cache.Delete(ctx, teamRunByIDKey(runID))
	r.cache.Delete(ctx, teamRunByOrgDateKey(run.OrgID, run.RunDate))
	return run, true, nil
}

type cachedTeamRun struct {
	value  teamrun.TeamRun
	exists bool
}

func cloneTeamRun(run teamrun.TeamRun) teamrun.TeamRun {
	out := run
	out.Warnings = append([]string(nil), run.Warnings...)
	out.Assignments = append([]teamrun.Assignment(nil), run.Assignments...)
	out.Metrics = append([]teamrun.TeamMetrics(nil), run.Metrics...)
	for i, metric := range run.Metrics {
		if metric.RoleCounts == nil {
			continue
		}
		counts := make(map[roster.Position]int, len(metric.RoleCounts))
		for role, n := range metric.RoleCounts {
			counts[role] = n
		}
		out.Metrics[i].RoleCounts = counts
	}
	if run.PublishedAt != nil {
		stamp := *run.PublishedAt
		out.PublishedAt = &stamp
	}
	if run.LockedAt != nil {
		stamp := *run.LockedAt
		out.LockedAt = &stamp
	}
	return out
}

func teamRunByIDKey(runID string) string {
	return "team-run:id:" + runID
}

func teamRunByOrgDateKey(orgID, runDate string) string {
	return "team-run:org:" + orgID + ":date:" + runDate
}

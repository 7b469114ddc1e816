package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/team-balancer/internal/domain/teamrun"
	qb "github.com/riskibarqy/team-balancer/internal/platform/querybuilder"
)

type TeamRunRepository struct {
	db *sqlx.DB
}

func NewTeamRunRepository(db *sqlx.DB) *TeamRunRepository {
	return &TeamRunRepository{db: db}
}

func (r *TeamRunRepository) GetByID(ctx context.Context, runID string) (teamrun.TeamRun, bool, error) {
	query, args, err := teamRunBaseSelectBuilder().
		Where(
			qb.Eq("id", runID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return teamrun.TeamRun{}, false, fmt.Errorf("build get team run query: %w", err)
	}

	var row teamRunTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return teamrun.TeamRun{}, false, nil
		}
		return teamrun.TeamRun{}, false, fmt.Errorf("get team run: %w", err)
	}

	return r.hydrateRun(ctx, row)
}

func (r *TeamRunRepository) GetByOrgAndDate(ctx context.Context, orgID, runDate string) (teamrun.TeamRun, bool, error) {
	query, args, err := teamRunBaseSelectBuilder().
		Where(
			qb.Eq("org_id", orgID),
			qb.Eq("run_date", runDate),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return teamrun.TeamRun{}, false, fmt.Errorf("build get team run by org and date query: %w", err)
	}

	var row teamRunTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isBindParameterMismatch(err) || isUnnamedPreparedStatementMissing(err) {
			return r.getByOrgAndDateLiteral(ctx, orgID, runDate)
		}
		if isNotFound(err) {
			return teamrun.TeamRun{}, false, nil
		}
		return teamrun.TeamRun{}, false, fmt.Errorf("get team run by org and date: %w", err)
	}

	return r.hydrateRun(ctx, row)
}

func (r *TeamRunRepository) getByOrgAndDateLiteral(ctx context.Context, orgID, runDate string) (teamrun.TeamRun, bool, error) {
	query, args, err := teamRunBaseSelectBuilder().
		Where(
			qb.EqLiteral("org_id", orgID),
			qb.Expr("run_date = "+quoteLiteral(runDate)+"::date"),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return teamrun.TeamRun{}, false, fmt.Errorf("build get team run literal fallback query: %w", err)
	}

	var row teamRunTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return teamrun.TeamRun{}, false, nil
		}
		return teamrun.TeamRun{}, false, fmt.Errorf("get team run literal fallback: %w", err)
	}

	return r.hydrateRun(ctx, row)
}

func (r *TeamRunRepository) Replace(ctx context.Context, run teamrun.TeamRun) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for team run replace: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const lockQuery = `
SELECT status
FROM team_runs
WHERE id = $1
  AND deleted_at IS NULL
FOR UPDATE`

	var currentStatus string
	if err := tx.GetContext(ctx, &currentStatus, lockQuery, run.ID); err != nil {
		if !isNotFound(err) {
			return fmt.Errorf("lock team run row: %w", err)
		}
	} else if currentStatus == string(teamrun.StatusLocked) {
		return fmt.Errorf("%w: run %s", teamrun.ErrRunLocked, run.ID)
	}

	query, args, err := qb.InsertModel("team_runs", teamRunInsertModelFromRun(run), `ON CONFLICT (id)
DO UPDATE SET
    org_id = EXCLUDED.org_id,
    run_date = EXCLUDED.run_date,
    algorithm_version = EXCLUDED.algorithm_version,
    status = EXCLUDED.status,
    seed = EXCLUDED.seed,
    time_budget_ms = EXCLUDED.time_budget_ms,
    solve_status = EXCLUDED.solve_status,
    solve_time_ms = EXCLUDED.solve_time_ms,
    objective = EXCLUDED.objective,
    skill_gap = EXCLUDED.skill_gap,
    age_gap = EXCLUDED.age_gap,
    warnings = EXCLUDED.warnings,
    updated_at = EXCLUDED.updated_at,
    published_at = EXCLUDED.published_at,
    locked_at = EXCLUDED.locked_at,
    deleted_at = NULL
RETURNING id`)
	if err != nil {
		return fmt.Errorf("build team run upsert query: %w", err)
	}

	var returnedID string
	if err := tx.QueryRowxContext(ctx, query, args...).Scan(&returnedID); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("upsert team run: no row returned")
		}
		return fmt.Errorf("upsert team run: %w", err)
	}

	// Assignment sets are replaced wholesale per solve.
	const deleteAssignmentsQuery = `
DELETE FROM team_run_assignments
WHERE run_id = $1`
	if _, err := tx.ExecContext(ctx, deleteAssignmentsQuery, returnedID); err != nil {
		return fmt.Errorf("clear team run assignments: %w", err)
	}

	if len(run.Assignments) > 0 {
		builder := qb.InsertInto("team_run_assignments").
			Columns("run_id", "player_id", "team", "assigned_role", "bench_team", "is_manual_override", "reason")
		for _, assignment := range run.Assignments {
			builder.Values(
				run.ID,
				assignment.PlayerID,
				string(assignment.Team),
				string(assignment.AssignedRole),
				benchTeamColumn(assignment),
				assignment.IsManualOverride,
				assignment.Reason,
			)
		}

		insertSQL, insertArgs, err := builder.ToSQL()
		if err != nil {
			return fmt.Errorf("build team run assignments insert query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, insertSQL, insertArgs...); err != nil {
			return fmt.Errorf("insert team run assignments: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit team run replace tx: %w", err)
	}

	return nil
}

func (r *TeamRunRepository) SetStatus(ctx context.Context, runID string, from []teamrun.RunStatus, to teamrun.RunStatus, now time.Time) (teamrun.TeamRun, bool, error) {
	fromStatuses := make([]string, 0, len(from))
	for _, status := range from {
		fromStatuses = append(fromStatuses, string(status))
	}

	const casQuery = `
UPDATE team_runs
SET status = :to,
    updated_at = :now,
    published_at = CASE WHEN :to = 'published' THEN :now ELSE published_at END,
    locked_at = CASE WHEN :to = 'locked' THEN :now ELSE locked_at END
WHERE id = :run_id
  AND deleted_at IS NULL
  AND status = ANY(:from)
RETURNING id, org_id, run_date, algorithm_version, status, seed, time_budget_ms, solve_status,
    solve_time_ms, objective, skill_gap, age_gap, warnings, created_at, updated_at, published_at,
    locked_at, deleted_at`

	query, args, err := sqlx.Named(casQuery, map[string]any{
		"to":     string(to),
		"now":    now,
		"run_id": runID,
		"from":   pq.Array(fromStatuses),
	})
	if err != nil {
		return teamrun.TeamRun{}, false, fmt.Errorf("bind set team run status query: %w", err)
	}
	query = r.db.Rebind(query)

	var row teamRunTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			// No row moved: the run is either missing or outside the
			// allowed window. Hand back the current row so the caller can
			// tell which.
			return r.GetByID(ctx, runID)
		}
		return teamrun.TeamRun{}, false, fmt.Errorf("set team run status: %w", err)
	}

	return r.hydrateRun(ctx, row)
}

func (r *TeamRunRepository) hydrateRun(ctx context.Context, row teamRunTableModel) (teamrun.TeamRun, bool, error) {
	assignments, err := r.listAssignments(ctx, row.ID)
	if err != nil {
		return teamrun.TeamRun{}, false, err
	}
	return teamRunFromRow(row, assignments), true, nil
}

func (r *TeamRunRepository) listAssignments(ctx context.Context, runID string) ([]teamRunAssignmentTableModel, error) {
	query, args, err := qb.Select(
		"id", "player_id", "team", "assigned_role", "bench_team", "is_manual_override", "reason",
	).
		From("team_run_assignments").
		Where(qb.Eq("run_id", runID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list run assignments query: %w", err)
	}

	var rows []teamRunAssignmentTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list run assignments: %w", err)
	}
	return rows, nil
}

func teamRunBaseSelectBuilder() *qb.SelectBuilder {
	return qb.Select("*").From("team_runs")
}

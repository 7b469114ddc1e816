package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/riskibarqy/team-balancer/internal/domain/roster"
	"github.com/riskibarqy/team-balancer/internal/domain/teamrun"
)

type teamRunTableModel struct {
	ID               string         `db:"id"`
	OrgID            string         `db:"org_id"`
	RunDate          time.Time      `db:"run_date"`
	AlgorithmVersion string         `db:"algorithm_version"`
	Status           string         `db:"status"`
	Seed             int64          `db:"seed"`
	TimeBudgetMS     int64          `db:"time_budget_ms"`
	SolveStatus      string         `db:"solve_status"`
	SolveTimeMS      int64          `db:"solve_time_ms"`
	Objective        int64          `db:"objective"`
	SkillGap         int            `db:"skill_gap"`
	AgeGap           int            `db:"age_gap"`
	Warnings         pq.StringArray `db:"warnings"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
	PublishedAt      *time.Time     `db:"published_at"`
	LockedAt         *time.Time     `db:"locked_at"`
	DeletedAt        *time.Time     `db:"deleted_at"`
}

type teamRunInsertModel struct {
	ID               string         `db:"id"`
	OrgID            string         `db:"org_id"`
	RunDate          string         `db:"run_date"`
	AlgorithmVersion string         `db:"algorithm_version"`
	Status           string         `db:"status"`
	Seed             int64          `db:"seed"`
	TimeBudgetMS     int64          `db:"time_budget_ms"`
	SolveStatus      string         `db:"solve_status"`
	SolveTimeMS      int64          `db:"solve_time_ms"`
	Objective        int64          `db:"objective"`
	SkillGap         int            `db:"skill_gap"`
	AgeGap           int            `db:"age_gap"`
	Warnings         pq.StringArray `db:"warnings"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
	PublishedAt      *time.Time     `db:"published_at"`
	LockedAt         *time.Time     `db:"locked_at"`
}

type teamRunAssignmentTableModel struct {
	ID               int64          `db:"id"`
	PlayerID         string         `db:"player_id"`
	Team             string         `db:"team"`
	AssignedRole     string         `db:"assigned_role"`
	BenchTeam        sql.NullString `db:"bench_team"`
	IsManualOverride bool           `db:"is_manual_override"`
	Reason           string         `db:"reason"`
}

func teamRunInsertModelFromRun(run teamrun.TeamRun) teamRunInsertModel {
	warnings := run.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return teamRunInsertModel{
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
		Warnings:         pq.StringArray(warnings),
		CreatedAt:        run.CreatedAt,
		UpdatedAt:        run.UpdatedAt,
		PublishedAt:      run.PublishedAt,
		LockedAt:         run.LockedAt,
	}
}

// teamRunFromRow rebuilds a domain run. Metrics stay empty on purpose:
// they are recomputed per solve and never stored.
func teamRunFromRow(row teamRunTableModel, assignmentRows []teamRunAssignmentTableModel) teamrun.TeamRun {
	assignments := make([]teamrun.Assignment, 0, len(assignmentRows))
	for _, a := range assignmentRows {
		assignments = append(assignments, assignmentFromRow(a))
	}

	var warnings []string
	if len(row.Warnings) > 0 {
		warnings = append([]string(nil), row.Warnings...)
	}

	return teamrun.TeamRun{
		ID:               row.ID,
		OrgID:            row.OrgID,
		RunDate:          row.RunDate.Format("2006-01-02"),
		AlgorithmVersion: row.AlgorithmVersion,
		Status:           teamrun.RunStatus(row.Status),
		Seed:             row.Seed,
		TimeBudget:       time.Duration(row.TimeBudgetMS) * time.Millisecond,
		SolveStatus:      teamrun.SolveStatus(row.SolveStatus),
		SolveTime:        time.Duration(row.SolveTimeMS) * time.Millisecond,
		Objective:        row.Objective,
		SkillGap:         row.SkillGap,
		AgeGap:           row.AgeGap,
		Warnings:         warnings,
		Assignments:      assignments,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
		PublishedAt:      row.PublishedAt,
		LockedAt:         row.LockedAt,
	}
}

func assignmentFromRow(row teamRunAssignmentTableModel) teamrun.Assignment {
	var benchTeam teamrun.TeamColor
	if row.BenchTeam.Valid {
		benchTeam = teamrun.TeamColor(row.BenchTeam.String)
	}
	return teamrun.Assignment{
		PlayerID:         row.PlayerID,
		Team:             teamrun.TeamColor(row.Team),
		AssignedRole:     roster.Position(row.AssignedRole),
		BenchTeam:        benchTeam,
		IsManualOverride: row.IsManualOverride,
		Reason:           row.Reason,
	}
}

func benchTeamColumn(assignment teamrun.Assignment) sql.NullString {
	if assignment.BenchTeam == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: string(assignment.BenchTeam), Valid: true}
}

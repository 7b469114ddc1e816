package teamrun

import (
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/team-balancer/internal/domain/roster"
)

// TeamColor identifies the side a player is assigned to. ColorSub marks
// bench players.
type TeamColor string

const (
	ColorRed    TeamColor = "red"
	ColorBlue   TeamColor = "blue"
	ColorYellow TeamColor = "yellow"
	ColorSub    TeamColor = "sub"
)

// ActiveColors lists playable team colors in formation order. Yellow
// exists only when the roster fills three full teams.
var ActiveColors = []TeamColor{ColorRed, ColorBlue, ColorYellow}

// RunStatus is the lifecycle state of a team run.
type RunStatus string

const (
	StatusDraft     RunStatus = "draft"
	StatusPublished RunStatus = "published"
	StatusLocked    RunStatus = "locked"
)

// SolveStatus records how the search ended for a persisted run.
type SolveStatus string

const (
	SolveOptimal  SolveStatus = "optimal"
	SolveFeasible SolveStatus = "feasible"
)

var (
	ErrRunLocked         = errors.New("team run is locked")
	ErrInvalidTransition = errors.New("invalid run transition")
)

// Action is an admin lifecycle verb.
type Action string

const (
	ActionPublish Action = "publish"
	ActionLock    Action = "lock"
)

// NextStatus validates a lifecycle action against the current status and
// returns the resulting status. Republishing an already published run is
// permitted; locked runs reject every action.
func NextStatus(current RunStatus, action Action) (RunStatus, error) {
	if current == StatusLocked {
		return "", ErrRunLocked
	}

	switch action {
	case ActionPublish:
		return StatusPublished, nil
	case ActionLock:
		if current != StatusPublished {
			return "", fmt.Errorf("%w: lock requires a published run, run is %s", ErrInvalidTransition, current)
		}
		return StatusLocked, nil
	default:
		return "", fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, action)
	}
}

// TransitionWindow returns the statuses an action may move a run from
// and the status it lands on. The window feeds compare-and-set updates:
// a run whose current status falls outside the window must be refused.
func TransitionWindow(action Action) (from []RunStatus, to RunStatus, ok bool) {
	switch action {
	case ActionPublish:
		return []RunStatus{StatusDraft, StatusPublished}, StatusPublished, true
	case ActionLock:
		return []RunStatus{StatusPublished}, StatusLocked, true
	default:
		return nil, "", false
	}
}

// Assignment places one roster player on a team, or on the bench with a
// home team for rotation.
type Assignment struct {
	PlayerID         string
	Team             TeamColor
	AssignedRole     roster.Position // empty when neither main nor alternate position fits
	BenchTeam        TeamColor       // set only when Team == ColorSub
	IsManualOverride bool
	Reason           string
}

// TeamMetrics summarizes one side for display. Metrics are recomputed
// per solve and never persisted, so runs loaded from storage carry none.
type TeamMetrics struct {
	Team          TeamColor
	PlayerCount   int
	SkillSum      int
	SkillAvg      float64
	SkillStdDev   float64
	AgeSum        int
	AgeAvg        float64
	HasGoalkeeper bool
	RoleCounts    map[roster.Position]int
}

// TeamRun is one complete balancing attempt for an organization's
// session date, with its lifecycle status and the resulting assignments.
type TeamRun struct {
	ID               string
	OrgID            string
	RunDate          string // calendar date, YYYY-MM-DD
	AlgorithmVersion string
	Status           RunStatus
	Seed             int64
	TimeBudget       time.Duration
	SolveStatus      SolveStatus
	SolveTime        time.Duration
	Objective        int64
	SkillGap         int
	AgeGap           int
	Warnings         []string
	Assignments      []Assignment
	Metrics          []TeamMetrics
	CreatedAt        time.Time
	UpdatedAt        time.Time
	PublishedAt      *time.Time
	LockedAt         *time.Time
}

// Locked reports whether the run rejects all further mutation.
func (r TeamRun) Locked() bool {
	return r.Status == StatusLocked
}

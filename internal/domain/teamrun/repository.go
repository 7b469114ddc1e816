package teamrun

import (
	"context"
	"time"
)

// Repository exposes team run persistence operations.
type Repository interface {
	GetByID(ctx context.Context, runID string) (TeamRun, bool, error)
	GetByOrgAndDate(ctx context.Context, orgID, runDate string) (TeamRun, bool, error)
	// Replace upserts the run row and swaps its assignment set in one
	// atomic step. Replacing a locked run fails with ErrRunLocked.
	Replace(ctx context.Context, run TeamRun) error
	// SetStatus moves runID to the target status when its current status
	// is one of from, stamping the lifecycle timestamp from now. It
	// reports false when the run does not exist. When the run exists but
	// its status is outside from, the current run is returned unchanged
	// and the caller decides how to classify the refusal.
	SetStatus(ctx context.Context, runID string, from []RunStatus, to RunStatus, now time.Time) (TeamRun, bool, error)
}

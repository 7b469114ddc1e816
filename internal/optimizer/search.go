package optimizer

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/team-balancer/internal/domain/roster"
	"github.com/riskibarqy/team-balancer/internal/domain/teamrun"
)

var ErrSolveTimeout = errors.New("solve timed out")

const (
	DefaultTimeBudget = 10 * time.Second
	DefaultWorkers    = 8
	DefaultRestarts   = 64
	DefaultSeed       = 42

	maxSearchPasses = 60
)

// Options tunes one solve. Zero values fall back to the defaults above;
// a zero Weights value means DefaultWeights.
type Options struct {
	Weights    Weights
	Seed       int64
	TimeBudget time.Duration
	Restarts   int
	Workers    int
}

func (o Options) withDefaults() Options {
	if o.Weights == (Weights{}) {
		o.Weights = DefaultWeights()
	}
	if o.TimeBudget <= 0 {
		o.TimeBudget = DefaultTimeBudget
	}
	if o.Restarts <= 0 {
		o.Restarts = DefaultRestarts
	}
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	return o
}

// Result is the fully formatted outcome of one solve. Objective and the
// gaps are reported over bench-inclusive team populations, matching how
// fairness is perceived once substitutes rotate in.
type Result struct {
	Assignments []teamrun.Assignment
	Metrics     []teamrun.TeamMetrics
	Warnings    []string
	Status      teamrun.SolveStatus
	Objective   int64
	SkillGap    int
	AgeGap      int
	Elapsed     time.Duration
}

type restartOutcome struct {
	teamOf    []int
	objective int64
	key       string
}

// Solve runs the full pipeline for one roster: plan the topology, build
// the instance, search team memberships, place the bench, and format
// the result. Identical roster, weights, and seed produce identical
// assignments whenever the restart schedule completes inside the
// budget.
func Solve(ctx context.Context, players []roster.Player, opts Options) (Result, error) {
	start := time.Now()
	opts = opts.withDefaults()
	if err := opts.Weights.Validate(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrModelBuild, err)
	}

	topo, err := PlanTopology(len(players))
	if err != nil {
		return Result{}, err
	}
	inst, err := BuildInstance(players, topo, opts.Weights)
	if err != nil {
		return Result{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, opts.TimeBudget)
	defer cancel()

	pool, err := ants.NewPool(opts.Workers)
	if err != nil {
		return Result{}, fmt.Errorf("create solver pool: %w", err)
	}
	defer pool.Release()

	outcomes := make(chan restartOutcome, opts.Restarts)

	var workers sync.WaitGroup
	for r := 0; r < opts.Restarts; r++ {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			if ctx.Err() != nil {
				return
			}
			teamOf, ok := inst.runRestart(ctx, opts.Seed, r)
			if !ok {
				return
			}
			outcomes <- restartOutcome{
				teamOf:    teamOf,
				objective: inst.evaluate(teamOf).objective,
				key:       canonicalKey(teamOf),
			}
		}); err != nil {
			workers.Done()
			return Result{}, fmt.Errorf("submit restart to solver pool: %w", err)
		}
	}

	workers.Wait()
	close(outcomes)

	// Reduce by objective, then by canonical key, so worker completion
	// order never leaks into the result.
	var best restartOutcome
	completed := 0
	for out := range outcomes {
		completed++
		if completed == 1 || out.objective < best.objective ||
			(out.objective == best.objective && out.key < best.key) {
			best = out
		}
	}

	if completed == 0 {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.Canceled) {
			return Result{}, ctxErr
		}
		return Result{}, fmt.Errorf("%w: no assignment found within %s", ErrSolveTimeout, opts.TimeBudget)
	}

	status := teamrun.SolveOptimal
	if completed < opts.Restarts {
		status = teamrun.SolveFeasible
	}

	benchOf := inst.allocateBench(best.teamOf)
	result := inst.format(best.teamOf, benchOf, status)
	result.Elapsed = time.Since(start)
	return result, nil
}

// runRestart builds one randomized start and walks it to a local
// optimum. Restart r derives its own deterministic stream from the
// seed, so the schedule reproduces regardless of worker scheduling.
// Truncated walks report false and contribute nothing.
func (inst *Instance) runRestart(ctx context.Context, seed int64, r int) ([]int, bool) {
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(r)))
	teamOf := inst.construct(rng)
	if !inst.localSearch(ctx, teamOf) {
		return nil, false
	}
	return teamOf, true
}

// construct deals players onto teams strongest-first, always feeding
// the lightest open team. Equal skills are shuffled per restart and
// ties between equally light teams break randomly, which is where
// restart diversity comes from. Under the hard coverage policy each
// team is seeded with a goalkeeper-capable player before the deal.
func (inst *Instance) construct(rng *rand.Rand) []int {
	n := len(inst.Players)
	teams := inst.Topology.TeamCount()

	teamOf := make([]int, n)
	for i := range teamOf {
		teamOf[i] = benchIdx
	}

	order := rng.Perm(n)
	sort.SliceStable(order, func(a, b int) bool {
		return inst.Players[order[a]].Skill > inst.Players[order[b]].Skill
	})

	size := make([]int, teams)
	skill := make([]int, teams)

	if inst.HardGK {
		t := 0
		for _, i := range order {
			if t >= teams {
				break
			}
			if !inst.gkCapable[i] {
				continue
			}
			teamOf[i] = t
			size[t]++
			skill[t] += inst.Players[i].Skill
			t++
		}
	}

	for _, i := range order {
		if teamOf[i] != benchIdx {
			continue
		}
		best, ties := -1, 0
		for t := 0; t < teams; t++ {
			if size[t] >= inst.Topology.TeamSizes[t] {
				continue
			}
			switch {
			case best == -1 || skill[t] < skill[best]:
				best, ties = t, 1
			case skill[t] == skill[best]:
				ties++
				if rng.IntN(ties) == 0 {
					best = t
				}
			}
		}
		if best == -1 {
			break // teams are full, the rest stay on the bench
		}
		teamOf[i] = best
		size[best]++
		skill[best] += inst.Players[i].Skill
	}
	return teamOf
}

// localSearch walks first-improvement exchanges to a fixpoint. It
// reports false when the context expires first.
func (inst *Instance) localSearch(ctx context.Context, teamOf []int) bool {
	st := newSearchState(inst, teamOf)
	for pass := 0; pass < maxSearchPasses; pass++ {
		if ctx.Err() != nil {
			return false
		}
		if !st.improvePass() {
			return true
		}
	}
	return true
}

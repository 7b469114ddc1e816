package optimizer

import (
	"errors"
	"fmt"

	"github.com/riskibarqy/team-balancer/internal/domain/roster"
	"github.com/riskibarqy/team-balancer/internal/domain/teamrun"
)

var ErrModelBuild = errors.New("model build failed")

// positionOrder fixes the index order for role accounting: GK, DF, MID, ST.
var positionOrder = []roster.Position{
	roster.PositionGoalkeeper,
	roster.PositionDefender,
	roster.PositionMidfielder,
	roster.PositionStriker,
}

func positionIndex(pos roster.Position) int {
	for i, p := range positionOrder {
		if p == pos {
			return i
		}
	}
	return -1
}

// formationTargets is the reference role distribution per team size,
// indexed as positionOrder. Targets sum to the team size, so a team can
// always match its shape exactly by paying position-fit penalties.
var formationTargets = map[int][4]int{
	3: {0, 1, 1, 1},
	4: {1, 1, 1, 1},
	5: {1, 2, 1, 1},
	6: {1, 2, 2, 1},
	7: {1, 2, 2, 2},
}

// FormationTarget returns the reference role distribution for a team
// size between MinTeamSize and MaxTeamSize.
func FormationTarget(size int) (map[roster.Position]int, bool) {
	target, ok := formationTargets[size]
	if !ok {
		return nil, false
	}
	out := make(map[roster.Position]int, len(positionOrder))
	for i, pos := range positionOrder {
		out[pos] = target[i]
	}
	return out, true
}

// benchIdx marks a bench slot in a candidate's team vector.
const benchIdx = -1

// Instance is one solvable balancing problem: the normalized roster,
// the planned topology, and the goalkeeper coverage policy the search
// must respect.
type Instance struct {
	Players  []roster.Player
	Topology Topology
	Weights  Weights
	// HardGK keeps at least one goalkeeper-capable member on every team.
	// It is chosen exactly when the roster offers one candidate per
	// team; thinner rosters fall back to the soft penalty so the model
	// never becomes infeasible from roster shape alone.
	HardGK bool

	posIdx    []int    // main position index per player
	altIdx    []int    // alternate position index per player, -1 when absent
	gkCapable []bool   // per player
	targets   [][4]int // per team
}

// BuildInstance validates the planned topology against the roster and
// fixes the goalkeeper coverage policy. Failures here are internal
// invariant violations, never roster-driven states.
func BuildInstance(players []roster.Player, topo Topology, weights Weights) (Instance, error) {
	if topo.TeamCount() < 2 || topo.TeamCount() > len(teamrun.ActiveColors) {
		return Instance{}, fmt.Errorf("%w: team count %d out of range", ErrModelBuild, topo.TeamCount())
	}

	total := topo.SubCount
	targets := make([][4]int, 0, topo.TeamCount())
	for _, size := range topo.TeamSizes {
		target, ok := formationTargets[size]
		if !ok {
			return Instance{}, fmt.Errorf("%w: team size %d outside %d..%d", ErrModelBuild, size, MinTeamSize, MaxTeamSize)
		}
		targets = append(targets, target)
		total += size
	}
	if total != len(players) {
		return Instance{}, fmt.Errorf("%w: topology covers %d players, roster has %d", ErrModelBuild, total, len(players))
	}

	inst := Instance{
		Players:   players,
		Topology:  topo,
		Weights:   weights,
		posIdx:    make([]int, len(players)),
		altIdx:    make([]int, len(players)),
		gkCapable: make([]bool, len(players)),
		targets:   targets,
	}
	for i, p := range players {
		inst.posIdx[i] = positionIndex(p.MainPosition)
		if inst.posIdx[i] < 0 {
			return Instance{}, fmt.Errorf("%w: player %s has unknown position %q", ErrModelBuild, p.ID, p.MainPosition)
		}
		inst.altIdx[i] = -1
		if p.AltPosition != "" {
			inst.altIdx[i] = positionIndex(p.AltPosition)
			if inst.altIdx[i] < 0 {
				return Instance{}, fmt.Errorf("%w: player %s has unknown alternate position %q", ErrModelBuild, p.ID, p.AltPosition)
			}
		}
		inst.gkCapable[i] = p.GKCapable()
	}

	inst.HardGK = roster.CountGKCapable(players) >= topo.TeamCount()
	return inst, nil
}

// gkCapableCounts tallies goalkeeper-capable members per team for one
// membership vector.
func (inst *Instance) gkCapableCounts(teamOf []int) []int {
	counts := make([]int, inst.Topology.TeamCount())
	for i, t := range teamOf {
		if t != benchIdx && inst.gkCapable[i] {
			counts[t]++
		}
	}
	return counts
}

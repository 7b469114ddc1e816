package optimizer

import (
	"errors"
	"fmt"
)

const (
	MinPlayersToPlay = 6
	MinTeamSize      = 3
	MaxTeamSize      = 7
)

var ErrNotEnoughPlayers = errors.New("not enough players")

// Topology fixes the team layout for one roster size: how many teams,
// exactly how many players on each, and how many land on the bench.
type Topology struct {
	TeamSizes []int
	SubCount  int
}

func (t Topology) TeamCount() int {
	return len(t.TeamSizes)
}

// PlanTopology decides the team layout from the roster size alone.
// Seven-a-side is preferred: a third team opens only once two full
// sevens plus a third are possible, and below fourteen players everyone
// plays, split as evenly as the size allows.
func PlanTopology(n int) (Topology, error) {
	if n < MinPlayersToPlay {
		return Topology{}, fmt.Errorf("%w: got %d, need at least %d", ErrNotEnoughPlayers, n, MinPlayersToPlay)
	}

	switch {
	case n >= 21:
		return Topology{TeamSizes: []int{7, 7, 7}, SubCount: n - 21}, nil
	case n >= 14:
		return Topology{TeamSizes: []int{7, 7}, SubCount: n - 14}, nil
	default:
		first := n / 2
		return Topology{TeamSizes: []int{first, n - first}, SubCount: 0}, nil
	}
}

package optimizer

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/team-balancer/internal/domain/roster"
	"github.com/riskibarqy/team-balancer/internal/domain/teamrun"
)

// testRoster builds n deterministic players, the first keepers of them
// goalkeeper mains, the rest cycling outfield positions.
func testRoster(n, keepers int) []roster.Player {
	outfield := []roster.Position{
		roster.PositionDefender,
		roster.PositionMidfielder,
		roster.PositionStriker,
	}
	players := make([]roster.Player, 0, n)
	for i := 0; i < n; i++ {
		p := roster.Player{
			ID:           fmt.Sprintf("p%02d", i+1),
			Name:         fmt.Sprintf("Player %02d", i+1),
			Skill:        i%5 + 1,
			Age:          20 + i%15,
			MainPosition: outfield[i%len(outfield)],
		}
		if i < keepers {
			p.MainPosition = roster.PositionGoalkeeper
		}
		players = append(players, p)
	}
	return players
}

func testOptions() Options {
	return Options{
		Weights:    DefaultWeights(),
		Seed:       DefaultSeed,
		TimeBudget: 30 * time.Second,
		Restarts:   8,
		Workers:    4,
	}
}

func TestSolveNotEnoughPlayers(t *testing.T) {
	_, err := Solve(context.Background(), testRoster(5, 1), testOptions())
	if !errors.Is(err, ErrNotEnoughPlayers) {
		t.Fatalf("expected ErrNotEnoughPlayers, got %v", err)
	}
}

func TestSolveCoversEveryPlayerOnce(t *testing.T) {
	players := testRoster(16, 2)
	result, err := Solve(context.Background(), players, testOptions())
	if err != nil {
		t.Fatalf("solve: %v", err)
	}

	if len(result.Assignments) != len(players) {
		t.Fatalf("expected %d assignments, got %d", len(players), len(result.Assignments))
	}

	seen := make(map[string]int)
	sizes := make(map[teamrun.TeamColor]int)
	for _, a := range result.Assignments {
		seen[a.PlayerID]++
		sizes[a.Team]++
		if a.Team == teamrun.ColorYellow {
			t.Fatalf("yellow team must not appear for 16 players")
		}
		if a.Team == teamrun.ColorSub {
			if a.BenchTeam != teamrun.ColorRed && a.BenchTeam != teamrun.ColorBlue {
				t.Fatalf("sub %s has invalid bench team %q", a.PlayerID, a.BenchTeam)
			}
		} else if a.BenchTeam != "" {
			t.Fatalf("team member %s must not carry a bench team", a.PlayerID)
		}
	}
	for _, p := range players {
		if seen[p.ID] != 1 {
			t.Fatalf("player %s appears %d times", p.ID, seen[p.ID])
		}
	}
	if sizes[teamrun.ColorRed] != 7 || sizes[teamrun.ColorBlue] != 7 || sizes[teamrun.ColorSub] != 2 {
		t.Fatalf("unexpected split: %v", sizes)
	}
}

func TestSolveEightMidfielders(t *testing.T) {
	skills := []int{5, 5, 5, 5, 1, 1, 1, 1}
	players := make([]roster.Player, 0, len(skills))
	for i, skill := range skills {
		players = append(players, roster.Player{
			ID:           fmt.Sprintf("p%d", i+1),
			Skill:        skill,
			Age:          25,
			MainPosition: roster.PositionMidfielder,
		})
	}

	result, err := Solve(context.Background(), players, testOptions())
	if err != nil {
		t.Fatalf("solve: %v", err)
	}

	sizes := make(map[teamrun.TeamColor]int)
	for _, a := range result.Assignments {
		sizes[a.Team]++
	}
	if sizes[teamrun.ColorRed] != 4 || sizes[teamrun.ColorBlue] != 4 || sizes[teamrun.ColorSub] != 0 {
		t.Fatalf("expected two teams of four, got %v", sizes)
	}
	if result.SkillGap != 0 {
		t.Fatalf("expected zero skill gap, got %d", result.SkillGap)
	}
}

func TestSolveThreeTeamsWithKeepers(t *testing.T) {
	players := testRoster(21, 3)
	result, err := Solve(context.Background(), players, testOptions())
	if err != nil {
		t.Fatalf("solve: %v", err)
	}

	keeperTeams := make(map[teamrun.TeamColor]int)
	sizes := make(map[teamrun.TeamColor]int)
	for _, a := range result.Assignments {
		sizes[a.Team]++
		if a.PlayerID == "p01" || a.PlayerID == "p02" || a.PlayerID == "p03" {
			keeperTeams[a.Team]++
		}
	}

	for _, color := range teamrun.ActiveColors {
		if sizes[color] != 7 {
			t.Fatalf("expected team %s of seven, got %v", color, sizes)
		}
		if keeperTeams[color] != 1 {
			t.Fatalf("expected one keeper on team %s, got %v", color, keeperTeams)
		}
	}
	if sizes[teamrun.ColorSub] != 0 {
		t.Fatalf("expected no subs, got %d", sizes[teamrun.ColorSub])
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", result.Warnings)
	}
}

func TestSolveTwoKeepersSplit(t *testing.T) {
	players := testRoster(14, 2)
	result, err := Solve(context.Background(), players, testOptions())
	if err != nil {
		t.Fatalf("solve: %v", err)
	}

	var first, second teamrun.TeamColor
	for _, a := range result.Assignments {
		switch a.PlayerID {
		case "p01":
			first = a.Team
		case "p02":
			second = a.Team
		}
	}
	if first == teamrun.ColorSub || second == teamrun.ColorSub {
		t.Fatalf("keepers must not land on the bench: %s %s", first, second)
	}
	if first == second {
		t.Fatalf("both keepers landed on team %s", first)
	}
}

func TestSolveDeterminism(t *testing.T) {
	players := testRoster(15, 2)
	opts := testOptions()

	first, err := Solve(context.Background(), players, opts)
	if err != nil {
		t.Fatalf("first solve: %v", err)
	}
	second, err := Solve(context.Background(), players, opts)
	if err != nil {
		t.Fatalf("second solve: %v", err)
	}

	if first.Status != teamrun.SolveOptimal || second.Status != teamrun.SolveOptimal {
		t.Fatalf("expected both runs to complete the schedule, got %s and %s", first.Status, second.Status)
	}
	if !reflect.DeepEqual(first.Assignments, second.Assignments) {
		t.Fatalf("assignments differ between identical solves")
	}
	if first.Objective != second.Objective || first.SkillGap != second.SkillGap {
		t.Fatalf("scores differ between identical solves")
	}
}

func TestSolveSkillBalanceDominates(t *testing.T) {
	players := []roster.Player{
		{ID: "p1", Skill: 5, Age: 25, MainPosition: roster.PositionGoalkeeper},
		{ID: "p2", Skill: 5, Age: 25, MainPosition: roster.PositionStriker},
		{ID: "p3", Skill: 1, Age: 25, MainPosition: roster.PositionStriker},
		{ID: "p4", Skill: 1, Age: 25, MainPosition: roster.PositionDefender},
		{ID: "p5", Skill: 3, Age: 25, MainPosition: roster.PositionMidfielder},
		{ID: "p6", Skill: 3, Age: 25, MainPosition: roster.PositionMidfielder},
	}

	result, err := Solve(context.Background(), players, testOptions())
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	// A position-friendly split would pair the keeper with both strikers
	// and leave a skill gap; fairness must win.
	if result.SkillGap != 0 {
		t.Fatalf("expected zero skill gap, got %d", result.SkillGap)
	}
}

func TestSolveTimeout(t *testing.T) {
	opts := testOptions()
	opts.TimeBudget = time.Nanosecond

	_, err := Solve(context.Background(), testRoster(14, 2), opts)
	if !errors.Is(err, ErrSolveTimeout) {
		t.Fatalf("expected ErrSolveTimeout, got %v", err)
	}
}

func TestSolveWarnsWhenKeepersMissing(t *testing.T) {
	players := testRoster(6, 0)
	result, err := Solve(context.Background(), players, testOptions())
	if err != nil {
		t.Fatalf("solve: %v", err)
	}

	if len(result.Warnings) != 2 {
		t.Fatalf("expected warnings for both teams, got %v", result.Warnings)
	}
	for _, warning := range result.Warnings {
		if !strings.Contains(warning, "missing a goalkeeper") {
			t.Fatalf("unexpected warning %q", warning)
		}
	}
	for _, m := range result.Metrics {
		if m.Team != teamrun.ColorSub && m.HasGoalkeeper {
			t.Fatalf("team %s should not report a goalkeeper", m.Team)
		}
	}
}

func TestSolveReasonsAndMetrics(t *testing.T) {
	players := testRoster(16, 2)
	result, err := Solve(context.Background(), players, testOptions())
	if err != nil {
		t.Fatalf("solve: %v", err)
	}

	for _, a := range result.Assignments {
		if a.Reason == "" {
			t.Fatalf("player %s has an empty reason", a.PlayerID)
		}
		if a.Team == teamrun.ColorSub && !strings.Contains(a.Reason, "bench rotation") {
			t.Fatalf("sub %s has reason %q", a.PlayerID, a.Reason)
		}
		if a.AssignedRole != "" {
			player := players[0]
			for _, p := range players {
				if p.ID == a.PlayerID {
					player = p
					break
				}
			}
			if a.AssignedRole != player.MainPosition && a.AssignedRole != player.AltPosition {
				t.Fatalf("player %s published role %s outside main/alt", a.PlayerID, a.AssignedRole)
			}
		}
	}

	total := 0
	for _, m := range result.Metrics {
		total += m.PlayerCount
		if m.PlayerCount == 0 {
			t.Fatalf("empty metrics group %s", m.Team)
		}
	}
	if total != len(players) {
		t.Fatalf("metrics cover %d players, roster has %d", total, len(players))
	}
}

func TestAllocateBenchBalancesHomes(t *testing.T) {
	players := make([]roster.Player, 0, 16)
	for i := 0; i < 16; i++ {
		players = append(players, roster.Player{
			ID:           fmt.Sprintf("p%02d", i+1),
			Skill:        3,
			Age:          25,
			MainPosition: roster.PositionMidfielder,
		})
	}
	players[14].Skill = 5
	players[15].Skill = 1

	topo, err := PlanTopology(len(players))
	if err != nil {
		t.Fatalf("plan topology: %v", err)
	}
	inst, err := BuildInstance(players, topo, DefaultWeights())
	if err != nil {
		t.Fatalf("build instance: %v", err)
	}

	teamOf := make([]int, 16)
	for i := 0; i < 14; i++ {
		teamOf[i] = i % 2
	}
	teamOf[14] = benchIdx
	teamOf[15] = benchIdx

	benchOf := inst.allocateBench(teamOf)
	for i := 0; i < 14; i++ {
		if benchOf[i] != benchIdx {
			t.Fatalf("member %d received a bench home", i)
		}
	}
	if benchOf[14] == benchOf[15] {
		t.Fatalf("strong and weak subs share home %d", benchOf[14])
	}
}

package optimizer

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/riskibarqy/team-balancer/internal/domain/roster"
	"github.com/riskibarqy/team-balancer/internal/domain/teamrun"
)

// format renders a solved membership vector plus bench homes into the
// final result: assignment records in roster order, per-team metrics,
// goalkeeper warnings, and the reported objective over bench-inclusive
// populations. Reasons are display text only and never feed back into
// any decision.
func (inst *Instance) format(teamOf, benchOf []int, status teamrun.SolveStatus) Result {
	ev := inst.evaluate(teamOf)
	teams := inst.Topology.TeamCount()

	wbSkill := make([]int, teams)
	wbAge := make([]int, teams)
	gkCapable := make([]int, teams)
	for i, t := range teamOf {
		home := t
		if home == benchIdx {
			home = benchOf[i]
		}
		wbSkill[home] += inst.Players[i].Skill
		wbAge[home] += inst.Players[i].Age
		if t != benchIdx && inst.gkCapable[i] {
			gkCapable[t]++
		}
	}

	result := Result{
		Status:   status,
		SkillGap: spread(wbSkill),
		AgeGap:   spread(wbAge),
	}
	result.Objective = inst.Weights.SkillBalance*int64(result.SkillGap) +
		inst.Weights.AgeBalance*int64(result.AgeGap) +
		inst.Weights.GKMissing*int64(ev.gkMissing) +
		ev.roleCost

	result.Assignments = make([]teamrun.Assignment, 0, len(inst.Players))
	for i, p := range inst.Players {
		modelRole := positionOrder[ev.roles[i]]

		assignment := teamrun.Assignment{PlayerID: p.ID}
		if teamOf[i] == benchIdx {
			assignment.Team = teamrun.ColorSub
			assignment.BenchTeam = teamrun.ActiveColors[benchOf[i]]
		} else {
			assignment.Team = teamrun.ActiveColors[teamOf[i]]
		}

		// Only a role the player actually plays is published; a shape
		// filler keeps the role unset.
		switch modelRole {
		case p.MainPosition, p.AltPosition:
			assignment.AssignedRole = modelRole
		}

		assignment.Reason = inst.reason(p, assignment, modelRole)
		result.Assignments = append(result.Assignments, assignment)
	}

	for t := 0; t < teams; t++ {
		if gkCapable[t] == 0 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Team %s is missing a goalkeeper", teamrun.ActiveColors[t]))
		}
	}

	result.Metrics = inst.metrics(teamOf, ev.roles, gkCapable)
	return result
}

func (inst *Instance) reason(p roster.Player, a teamrun.Assignment, modelRole roster.Position) string {
	if a.Team == teamrun.ColorSub {
		return fmt.Sprintf("bench rotation for team %s; balanced by skill/age", a.BenchTeam)
	}
	switch {
	case modelRole == roster.PositionGoalkeeper && a.AssignedRole == modelRole:
		return "balanced by skill/age; GK coverage satisfied"
	case modelRole == p.MainPosition:
		return "balanced by skill/age; playing main position"
	case modelRole == p.AltPosition:
		return "balanced by skill/age; covering alternate position"
	default:
		return "balanced by skill/age; filling team shape"
	}
}

// metrics summarizes every non-empty group including the bench pool.
func (inst *Instance) metrics(teamOf, roles, gkCapable []int) []teamrun.TeamMetrics {
	teams := inst.Topology.TeamCount()
	groups := make([][]int, teams+1)
	for i, t := range teamOf {
		if t == benchIdx {
			groups[teams] = append(groups[teams], i)
			continue
		}
		groups[t] = append(groups[t], i)
	}

	out := make([]teamrun.TeamMetrics, 0, teams+1)
	for g, group := range groups {
		if len(group) == 0 {
			continue
		}

		color := teamrun.ColorSub
		hasGK := false
		if g < teams {
			color = teamrun.ActiveColors[g]
			hasGK = gkCapable[g] > 0
		} else {
			for _, i := range group {
				if inst.gkCapable[i] {
					hasGK = true
					break
				}
			}
		}

		m := teamrun.TeamMetrics{
			Team:          color,
			PlayerCount:   len(group),
			HasGoalkeeper: hasGK,
			RoleCounts:    make(map[roster.Position]int, len(positionOrder)),
		}
		skills := make([]float64, 0, len(group))
		ages := make([]float64, 0, len(group))
		for _, i := range group {
			m.SkillSum += inst.Players[i].Skill
			m.AgeSum += inst.Players[i].Age
			m.RoleCounts[positionOrder[roles[i]]]++
			skills = append(skills, float64(inst.Players[i].Skill))
			ages = append(ages, float64(inst.Players[i].Age))
		}
		m.SkillAvg = stat.Mean(skills, nil)
		m.AgeAvg = stat.Mean(ages, nil)
		if len(skills) > 1 {
			m.SkillStdDev = stat.StdDev(skills, nil)
		}
		out = append(out, m)
	}
	return out
}

package optimizer

import "sort"

// allocateBench assigns every benched player a home team so the
// bench-inclusive skill and age sums stay as level as the member split
// allows. The bench is its own small instance of the same balancing
// problem over the two dominant weights: greedy strongest-first onto
// the lightest team, then moves and home swaps to a fixpoint. Entries
// for team members stay benchIdx.
func (inst *Instance) allocateBench(teamOf []int) []int {
	benchOf := make([]int, len(teamOf))
	for i := range benchOf {
		benchOf[i] = benchIdx
	}
	if inst.Topology.SubCount == 0 {
		return benchOf
	}

	teams := inst.Topology.TeamCount()
	wbSkill := make([]int, teams)
	wbAge := make([]int, teams)
	benched := make([]int, 0, inst.Topology.SubCount)
	for i, t := range teamOf {
		if t == benchIdx {
			benched = append(benched, i)
			continue
		}
		wbSkill[t] += inst.Players[i].Skill
		wbAge[t] += inst.Players[i].Age
	}

	sort.SliceStable(benched, func(a, b int) bool {
		if inst.Players[benched[a]].Skill != inst.Players[benched[b]].Skill {
			return inst.Players[benched[a]].Skill > inst.Players[benched[b]].Skill
		}
		return benched[a] < benched[b]
	})

	for _, i := range benched {
		home := 0
		for t := 1; t < teams; t++ {
			if wbSkill[t] < wbSkill[home] || (wbSkill[t] == wbSkill[home] && wbAge[t] < wbAge[home]) {
				home = t
			}
		}
		benchOf[i] = home
		wbSkill[home] += inst.Players[i].Skill
		wbAge[home] += inst.Players[i].Age
	}

	cost := func() int64 {
		return inst.Weights.SkillBalance*int64(spread(wbSkill)) +
			inst.Weights.AgeBalance*int64(spread(wbAge))
	}

	current := cost()
	for pass := 0; pass < maxSearchPasses; pass++ {
		improved := false
		for x, i := range benched {
			for t := 0; t < teams; t++ {
				if t == benchOf[i] {
					continue
				}
				from := benchOf[i]
				wbSkill[from] -= inst.Players[i].Skill
				wbAge[from] -= inst.Players[i].Age
				wbSkill[t] += inst.Players[i].Skill
				wbAge[t] += inst.Players[i].Age
				if trial := cost(); trial < current {
					benchOf[i] = t
					current = trial
					improved = true
					continue
				}
				wbSkill[from] += inst.Players[i].Skill
				wbAge[from] += inst.Players[i].Age
				wbSkill[t] -= inst.Players[i].Skill
				wbAge[t] -= inst.Players[i].Age
			}
			for _, j := range benched[x+1:] {
				if benchOf[i] == benchOf[j] {
					continue
				}
				hi, hj := benchOf[i], benchOf[j]
				deltaSkill := inst.Players[j].Skill - inst.Players[i].Skill
				deltaAge := inst.Players[j].Age - inst.Players[i].Age
				wbSkill[hi] += deltaSkill
				wbAge[hi] += deltaAge
				wbSkill[hj] -= deltaSkill
				wbAge[hj] -= deltaAge
				if trial := cost(); trial < current {
					benchOf[i], benchOf[j] = hj, hi
					current = trial
					improved = true
					continue
				}
				wbSkill[hi] -= deltaSkill
				wbAge[hi] -= deltaAge
				wbSkill[hj] += deltaSkill
				wbAge[hj] += deltaAge
			}
		}
		if !improved {
			break
		}
	}
	return benchOf
}

package optimizer

import "sort"

// searchState caches the per-team aggregates a walk mutates: skill and
// age sums, goalkeeper-capable counts, member lists, and the weighted
// role cost per team. Member lists stay sorted by roster index so role
// assignment reconstruction is stable across walks.
type searchState struct {
	inst      *Instance
	teamOf    []int
	skill     []int
	age       []int
	gkCnt     []int
	roleCost  []int64
	members   [][]int
	objective int64
}

func newSearchState(inst *Instance, teamOf []int) *searchState {
	teams := inst.Topology.TeamCount()
	st := &searchState{
		inst:     inst,
		teamOf:   teamOf,
		skill:    make([]int, teams),
		age:      make([]int, teams),
		gkCnt:    make([]int, teams),
		roleCost: make([]int64, teams),
		members:  make([][]int, teams),
	}
	for i, t := range teamOf {
		if t == benchIdx {
			continue
		}
		st.skill[t] += inst.Players[i].Skill
		st.age[t] += inst.Players[i].Age
		if inst.gkCapable[i] {
			st.gkCnt[t]++
		}
		st.members[t] = append(st.members[t], i)
	}
	for t := 0; t < teams; t++ {
		_, cost := inst.assignRoles(st.members[t], inst.targets[t])
		st.roleCost[t] = cost
	}
	st.objective = st.compute()
	return st
}

func (st *searchState) compute() int64 {
	total := st.inst.Weights.SkillBalance*int64(spread(st.skill)) +
		st.inst.Weights.AgeBalance*int64(spread(st.age)) +
		st.inst.Weights.GKMissing*int64(st.missingGK())
	for _, cost := range st.roleCost {
		total += cost
	}
	return total
}

func (st *searchState) missingGK() int {
	missing := 0
	for _, cnt := range st.gkCnt {
		if cnt == 0 {
			missing++
		}
	}
	return missing
}

// improvePass scans every player pair once in index order and applies
// each improving exchange immediately. It reports whether anything
// improved, so the caller can loop to a fixpoint.
func (st *searchState) improvePass() bool {
	improved := false
	n := len(st.teamOf)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if st.teamOf[i] == st.teamOf[j] {
				continue
			}
			if st.trySwap(i, j) {
				improved = true
			}
		}
	}
	return improved
}

// trySwap trades the homes of players i and j when that lowers the
// objective. Team sizes are preserved because the two players exchange
// places; a bench slot trades like any other home. Under the hard
// coverage policy a trade that would strip a team of its last
// goalkeeper-capable member is skipped outright.
func (st *searchState) trySwap(i, j int) bool {
	inst := st.inst
	a, b := st.teamOf[i], st.teamOf[j]

	gkI, gkJ := 0, 0
	if inst.gkCapable[i] {
		gkI = 1
	}
	if inst.gkCapable[j] {
		gkJ = 1
	}
	if inst.HardGK && gkI != gkJ {
		if a != benchIdx && st.gkCnt[a]-gkI+gkJ == 0 {
			return false
		}
		if b != benchIdx && st.gkCnt[b]-gkJ+gkI == 0 {
			return false
		}
	}

	teams := inst.Topology.TeamCount()
	var trialSkill, trialAge, trialGk [3]int
	copy(trialSkill[:], st.skill)
	copy(trialAge[:], st.age)
	copy(trialGk[:], st.gkCnt)

	skillI, skillJ := inst.Players[i].Skill, inst.Players[j].Skill
	ageI, ageJ := inst.Players[i].Age, inst.Players[j].Age
	if a != benchIdx {
		trialSkill[a] += skillJ - skillI
		trialAge[a] += ageJ - ageI
		trialGk[a] += gkJ - gkI
	}
	if b != benchIdx {
		trialSkill[b] += skillI - skillJ
		trialAge[b] += ageI - ageJ
		trialGk[b] += gkI - gkJ
	}

	missing := 0
	for t := 0; t < teams; t++ {
		if trialGk[t] == 0 {
			missing++
		}
	}

	trial := inst.Weights.SkillBalance*int64(spread(trialSkill[:teams])) +
		inst.Weights.AgeBalance*int64(spread(trialAge[:teams])) +
		inst.Weights.GKMissing*int64(missing)

	var rolesA, rolesB int64
	if a != benchIdx {
		rolesA = st.trialRoleCost(a, i, j)
	}
	if b != benchIdx {
		rolesB = st.trialRoleCost(b, j, i)
	}
	for t := 0; t < teams; t++ {
		switch t {
		case a:
			trial += rolesA
		case b:
			trial += rolesB
		default:
			trial += st.roleCost[t]
		}
	}

	if trial >= st.objective {
		return false
	}

	st.teamOf[i], st.teamOf[j] = b, a
	if a != benchIdx {
		st.skill[a] = trialSkill[a]
		st.age[a] = trialAge[a]
		st.gkCnt[a] = trialGk[a]
		st.roleCost[a] = rolesA
		st.members[a] = replaceMember(st.members[a], i, j)
	}
	if b != benchIdx {
		st.skill[b] = trialSkill[b]
		st.age[b] = trialAge[b]
		st.gkCnt[b] = trialGk[b]
		st.roleCost[b] = rolesB
		st.members[b] = replaceMember(st.members[b], j, i)
	}
	st.objective = trial
	return true
}

// trialRoleCost prices team t's roles with member out replaced by in.
func (st *searchState) trialRoleCost(t, out, in int) int64 {
	trial := replaceMember(append([]int(nil), st.members[t]...), out, in)
	_, cost := st.inst.assignRoles(trial, st.inst.targets[t])
	return cost
}

// replaceMember swaps one roster index for another in a sorted member
// list, keeping the list sorted.
func replaceMember(members []int, out, in int) []int {
	for k, m := range members {
		if m == out {
			members[k] = in
			break
		}
	}
	sort.Ints(members)
	return members
}

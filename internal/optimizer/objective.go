package optimizer

import "math/bits"

const costInf = int64(1) << 62

// roleCost is the weighted position-fit cost for one member playing one
// role: zero for their main position, the alternate weight for their
// alternate, the mismatch weight otherwise.
func (inst *Instance) roleCost(member, pos int) int64 {
	switch {
	case inst.posIdx[member] == pos:
		return 0
	case inst.altIdx[member] == pos:
		return inst.Weights.AltPosition
	default:
		return inst.Weights.PosMismatch
	}
}

func (inst *Instance) shapeCost(count, target int) int64 {
	dev := count - target
	if dev < 0 {
		dev = -dev
	}
	return inst.Weights.Shape * int64(dev)
}

// assignRoles distributes team members over the four positions,
// minimizing weighted fit cost plus weighted deviation from the team
// size's formation target. Positions are processed in a fixed order and
// ties keep the first choice found, so reconstruction is deterministic.
func (inst *Instance) assignRoles(members []int, target [4]int) ([]int, int64) {
	n := len(members)
	if n == 0 {
		return nil, 0
	}
	full := (1 << n) - 1

	prev := make([]int64, full+1)
	for mask := 1; mask <= full; mask++ {
		prev[mask] = costInf
	}
	choices := make([][]int, len(positionOrder))

	for p := range positionOrder {
		next := make([]int64, full+1)
		choice := make([]int, full+1)
		for mask := 0; mask <= full; mask++ {
			next[mask] = costInf
			choice[mask] = 0
		}
		for mask := 0; mask <= full; mask++ {
			if prev[mask] == costInf {
				continue
			}
			comp := full &^ mask
			for sub := comp; ; sub = (sub - 1) & comp {
				cost := prev[mask] + inst.shapeCost(bits.OnesCount(uint(sub)), target[p])
				for s := sub; s != 0; s &= s - 1 {
					cost += inst.roleCost(members[bits.TrailingZeros(uint(s))], p)
				}
				if cost < next[mask|sub] {
					next[mask|sub] = cost
					choice[mask|sub] = sub
				}
				if sub == 0 {
					break
				}
			}
		}
		choices[p] = choice
		prev = next
	}

	roles := make([]int, n)
	mask := full
	for p := len(positionOrder) - 1; p >= 0; p-- {
		sub := choices[p][mask]
		for s := sub; s != 0; s &= s - 1 {
			roles[bits.TrailingZeros(uint(s))] = p
		}
		mask &^= sub
	}
	return roles, prev[full]
}

// evaluation scores one complete membership vector. Bench players carry
// their main position and add no fit cost, matching how substitutes are
// rotated in.
type evaluation struct {
	objective int64
	skillGap  int
	ageGap    int
	gkMissing int
	roleCost  int64
	roles     []int // position index per player in roster order
}

func (inst *Instance) evaluate(teamOf []int) evaluation {
	teams := inst.Topology.TeamCount()
	skill := make([]int, teams)
	age := make([]int, teams)
	gkCnt := make([]int, teams)
	members := make([][]int, teams)

	for i, t := range teamOf {
		if t == benchIdx {
			continue
		}
		skill[t] += inst.Players[i].Skill
		age[t] += inst.Players[i].Age
		if inst.gkCapable[i] {
			gkCnt[t]++
		}
		members[t] = append(members[t], i)
	}

	ev := evaluation{roles: make([]int, len(inst.Players))}
	for i := range inst.Players {
		ev.roles[i] = inst.posIdx[i]
	}
	for t := 0; t < teams; t++ {
		roles, cost := inst.assignRoles(members[t], inst.targets[t])
		for k, member := range members[t] {
			ev.roles[member] = roles[k]
		}
		ev.roleCost += cost
		if gkCnt[t] == 0 {
			ev.gkMissing++
		}
	}

	ev.skillGap = spread(skill)
	ev.ageGap = spread(age)
	ev.objective = inst.Weights.SkillBalance*int64(ev.skillGap) +
		inst.Weights.AgeBalance*int64(ev.ageGap) +
		inst.Weights.GKMissing*int64(ev.gkMissing) +
		ev.roleCost
	return ev
}

func spread(sums []int) int {
	if len(sums) == 0 {
		return 0
	}
	min, max := sums[0], sums[0]
	for _, v := range sums[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return max - min
}

// canonicalKey is the deterministic tie-break between equal-objective
// candidates: the team index per player in roster order, benches as 's'.
func canonicalKey(teamOf []int) string {
	key := make([]byte, len(teamOf))
	for i, t := range teamOf {
		if t == benchIdx {
			key[i] = 's'
		} else {
			key[i] = byte('0' + t)
		}
	}
	return string(key)
}

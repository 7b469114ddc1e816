package optimizer

import "fmt"

// AlgorithmVersion tags each run so historical assignments stay
// auditable as the weights below evolve.
const AlgorithmVersion = "balancer-2.0"

// Weights prices the soft objectives. The ordering is a product
// decision: skill balance dominates age balance, age balance dominates
// goalkeeper coverage, and coverage dominates position fit. Shape and
// alternate-position nudges only break ties below those.
type Weights struct {
	SkillBalance int64
	AgeBalance   int64
	GKMissing    int64
	Shape        int64
	PosMismatch  int64
	AltPosition  int64
}

func DefaultWeights() Weights {
	return Weights{
		SkillBalance: 1000,
		AgeBalance:   200,
		GKMissing:    100,
		Shape:        30,
		PosMismatch:  10,
		AltPosition:  2,
	}
}

// Validate enforces the required ordering on caller-supplied overrides.
func (w Weights) Validate() error {
	if w.SkillBalance <= 0 || w.AgeBalance <= 0 || w.GKMissing <= 0 || w.Shape <= 0 || w.PosMismatch <= 0 || w.AltPosition <= 0 {
		return fmt.Errorf("weights must all be positive")
	}
	if w.SkillBalance <= w.AgeBalance {
		return fmt.Errorf("skill balance weight must exceed age balance weight")
	}
	if w.AgeBalance <= w.GKMissing {
		return fmt.Errorf("age balance weight must exceed goalkeeper gap weight")
	}
	if w.GKMissing <= w.Shape {
		return fmt.Errorf("goalkeeper gap weight must exceed shape weight")
	}
	if w.Shape <= w.PosMismatch {
		return fmt.Errorf("shape weight must exceed position mismatch weight")
	}
	if w.PosMismatch <= w.AltPosition {
		return fmt.Errorf("position mismatch weight must exceed alternate position weight")
	}
	return nil
}

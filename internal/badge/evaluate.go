package badge

import (
	"log"

	"studyStrideAPI/internal/progression"
)

// Unlocks returns every badge the user newly qualifies for, in catalog
// order. It never mutates the progress record; applying the unlocks (the
// single badges-set mutation) is the caller's job inside its atomic unit.
//
// Compound and collector badges can chain off unlocks granted in the same
// call, so evaluation repeats until a pass grants nothing new. Each pass is
// O(len(defs)); the loop is bounded by the catalog size.
func Unlocks(defs []Definition, p *progression.UserProgress) []Definition {
	owned := make(map[string]bool, len(p.Badges))
	ownedByCat := make(map[Category]int)
	idx := Index(defs)
	for id := range p.Badges {
		owned[id] = true
		if d, ok := idx[id]; ok {
			ownedByCat[d.Category]++
		}
	}
	earned := int64(len(p.Badges))

	var unlocked []Definition
	for {
		grantedThisPass := false
		for _, d := range defs {
			if owned[d.ID] {
				continue
			}
			if !qualifies(d, p, ownedByCat, earned) {
				continue
			}
			owned[d.ID] = true
			ownedByCat[d.Category]++
			earned++
			unlocked = append(unlocked, d)
			grantedThisPass = true
		}
		if !grantedThisPass {
			return unlocked
		}
	}
}

func qualifies(d Definition, p *progression.UserProgress, ownedByCat map[Category]int, earned int64) bool {
	c := d.Condition
	switch c.Type {
	case ConditionThresholdCount:
		// The badges-earned counter must see unlocks from this same call,
		// so it is tallied locally instead of read from the record.
		if c.Counter == progression.CounterBadgesEarned {
			return earned >= c.Target
		}
		return p.Counter(c.Counter) >= c.Target
	case ConditionStreakLength:
		if c.Scope == StreakScopeLongest {
			return int64(p.LongestStreak) >= c.Target
		}
		return int64(p.CurrentStreak) >= c.Target
	case ConditionLevelReached:
		return int64(p.CurrentLevel) >= c.Target
	case ConditionCompoundCategory:
		return int64(ownedByCat[c.Category]) >= c.Target
	default:
		// Validated catalogs never reach this; a stray definition is a
		// data-integrity gap, skipped and surfaced to operators only.
		log.Printf("badge %s: unknown condition type %q, skipping", d.ID, c.Type)
		return false
	}
}

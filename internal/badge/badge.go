package badge

import "fmt"

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
	RarityMythic    Rarity = "mythic"
)

type Category string

const (
	CategoryFocus       Category = "focus"
	CategoryWellness    Category = "wellness"
	CategorySkills      Category = "skills"
	CategoryCareer      Category = "career"
	CategoryStreaks     Category = "streaks"
	CategoryCommunity   Category = "community"
	CategoryAchievement Category = "achievement"
	CategoryTime        Category = "time"
	CategorySpecial     Category = "special"
)

type ConditionType string

const (
	ConditionThresholdCount   ConditionType = "thresholdCount"
	ConditionStreakLength     ConditionType = "streakLength"
	ConditionLevelReached     ConditionType = "levelReached"
	ConditionCompoundCategory ConditionType = "compoundCategory"
)

type StreakScope string

const (
	StreakScopeCurrent StreakScope = "current"
	StreakScopeLongest StreakScope = "longest"
)

// UnlockCondition is a closed tagged variant: Type selects which of the
// other fields are meaningful. The evaluator type-switches exhaustively and
// treats anything else as a data-integrity gap.
type UnlockCondition struct {
	Type        ConditionType `json:"type"`
	Counter     string        `json:"counter,omitempty"`  // thresholdCount
	Scope       StreakScope   `json:"scope,omitempty"`    // streakLength
	Category    Category      `json:"category,omitempty"` // compoundCategory
	Target      int64         `json:"target"`
	Description string        `json:"description"`
}

type Definition struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Rarity    Rarity          `json:"rarity"`
	Category  Category        `json:"category"`
	Condition UnlockCondition `json:"unlock_condition"`
	Hidden    bool            `json:"is_hidden"`
}

var validRarities = map[Rarity]bool{
	RarityCommon: true, RarityUncommon: true, RarityRare: true,
	RarityEpic: true, RarityLegendary: true, RarityMythic: true,
}

var validCategories = map[Category]bool{
	CategoryFocus: true, CategoryWellness: true, CategorySkills: true,
	CategoryCareer: true, CategoryStreaks: true, CategoryCommunity: true,
	CategoryAchievement: true, CategoryTime: true, CategorySpecial: true,
}

// Validate checks the whole catalog at startup. Any malformed definition
// fails engine initialization loudly instead of being skipped at runtime.
func Validate(defs []Definition) error {
	seen := make(map[string]bool, len(defs))
	perCategory := make(map[Category]int)
	for _, d := range defs {
		perCategory[d.Category]++
	}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("badge with empty id (name %q)", d.Name)
		}
		if seen[d.ID] {
			return fmt.Errorf("duplicate badge id %q", d.ID)
		}
		seen[d.ID] = true
		if !validRarities[d.Rarity] {
			return fmt.Errorf("badge %s: unknown rarity %q", d.ID, d.Rarity)
		}
		if !validCategories[d.Category] {
			return fmt.Errorf("badge %s: unknown category %q", d.ID, d.Category)
		}
		if d.Condition.Target <= 0 {
			return fmt.Errorf("badge %s: non-positive target %d", d.ID, d.Condition.Target)
		}
		switch d.Condition.Type {
		case ConditionThresholdCount:
			if d.Condition.Counter == "" {
				return fmt.Errorf("badge %s: thresholdCount without counter", d.ID)
			}
		case ConditionStreakLength:
			if d.Condition.Scope != StreakScopeCurrent && d.Condition.Scope != StreakScopeLongest {
				return fmt.Errorf("badge %s: streakLength with scope %q", d.ID, d.Condition.Scope)
			}
		case ConditionLevelReached:
			if d.Condition.Target > 100 {
				return fmt.Errorf("badge %s: levelReached target %d above max level", d.ID, d.Condition.Target)
			}
		case ConditionCompoundCategory:
			if !validCategories[d.Condition.Category] {
				return fmt.Errorf("badge %s: compoundCategory with category %q", d.ID, d.Condition.Category)
			}
			// A compound badge counts the *other* badges of its target
			// category, so it can never require more than exist.
			avail := perCategory[d.Condition.Category]
			if d.Condition.Category == d.Category {
				avail--
			}
			if int(d.Condition.Target) > avail {
				return fmt.Errorf("badge %s: compound target %d exceeds %d available in %s",
					d.ID, d.Condition.Target, avail, d.Condition.Category)
			}
		default:
			return fmt.Errorf("badge %s: unknown condition type %q", d.ID, d.Condition.Type)
		}
	}
	return nil
}

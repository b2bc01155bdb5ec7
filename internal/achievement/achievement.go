package achievement

import (
	"fmt"

	"studyStrideAPI/internal/badge"
	"studyStrideAPI/internal/progression"
)

// Achievements are a second, smaller permanent catalog. They reuse the
// badge condition variant but live in their own set on UserProgress and
// survive prestige the same way badges do.
type Definition struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Condition   badge.UnlockCondition `json:"unlock_condition"`
}

func threshold(id, name, desc, counter string, target int64) Definition {
	return Definition{
		ID: id, Name: name, Description: desc,
		Condition: badge.UnlockCondition{
			Type: badge.ConditionThresholdCount, Counter: counter, Target: target, Description: desc,
		},
	}
}

func streakLen(id, name, desc string, scope badge.StreakScope, target int64) Definition {
	return Definition{
		ID: id, Name: name, Description: desc,
		Condition: badge.UnlockCondition{
			Type: badge.ConditionStreakLength, Scope: scope, Target: target, Description: desc,
		},
	}
}

func levelReached(id, name, desc string, target int64) Definition {
	return Definition{
		ID: id, Name: name, Description: desc,
		Condition: badge.UnlockCondition{
			Type: badge.ConditionLevelReached, Target: target, Description: desc,
		},
	}
}

func Catalog() []Definition {
	return []Definition{
		threshold("first_steps", "First Steps", "Log your first activity", progression.CounterActiveDays, 1),
		streakLen("week_one", "Week One", "Hold a 7-day streak", badge.StreakScopeCurrent, 7),
		streakLen("habit_formed", "Habit Formed", "Hold a 21-day streak at any point", badge.StreakScopeLongest, 21),
		streakLen("month_of_momentum", "Month of Momentum", "Hold a 30-day streak at any point", badge.StreakScopeLongest, 30),
		threshold("focus_finisher", "Focus Finisher", "Complete 100 focus sessions", progression.CounterFocusActions, 100),
		threshold("wellness_advocate", "Wellness Advocate", "Complete 50 wellbeing check-ins", progression.CounterWellbeingActions, 50),
		threshold("career_ready", "Career Ready", "Close 25 career tasks", progression.CounterCareerActions, 25),
		threshold("skill_sharpener", "Skill Sharpener", "Finish 50 practice sessions", progression.CounterSkillActions, 50),
		levelReached("quarter_club", "Quarter Club", "Reach level 25", 25),
		levelReached("halfway_there", "Halfway There", "Reach level 50", 50),
		levelReached("peak_performer", "Peak Performer", "Reach level 100", 100),
		threshold("badge_baron", "Badge Baron", "Earn 40 badges", progression.CounterBadgesEarned, 40),
		threshold("reborn", "Reborn", "Prestige for the first time", progression.CounterPrestige, 1),
	}
}

// Validate runs the shared condition checks over the achievement catalog.
func Validate(defs []Definition) error {
	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("achievement with empty id (name %q)", d.Name)
		}
		if seen[d.ID] {
			return fmt.Errorf("duplicate achievement id %q", d.ID)
		}
		seen[d.ID] = true
		if d.Condition.Target <= 0 {
			return fmt.Errorf("achievement %s: non-positive target %d", d.ID, d.Condition.Target)
		}
		switch d.Condition.Type {
		case badge.ConditionThresholdCount:
			if d.Condition.Counter == "" {
				return fmt.Errorf("achievement %s: thresholdCount without counter", d.ID)
			}
		case badge.ConditionStreakLength, badge.ConditionLevelReached:
		default:
			return fmt.Errorf("achievement %s: unsupported condition type %q", d.ID, d.Condition.Type)
		}
	}
	return nil
}

// Unlocks returns achievements the user newly qualifies for, in catalog
// order. Achievements are evaluated after this call's badge unlocks have
// been applied, so the badges-earned counter is already current.
func Unlocks(defs []Definition, p *progression.UserProgress) []Definition {
	var unlocked []Definition
	for _, d := range defs {
		if _, owned := p.Achievements[d.ID]; owned {
			continue
		}
		if qualifies(d.Condition, p) {
			unlocked = append(unlocked, d)
		}
	}
	return unlocked
}

func qualifies(c badge.UnlockCondition, p *progression.UserProgress) bool {
	switch c.Type {
	case badge.ConditionThresholdCount:
		return p.Counter(c.Counter) >= c.Target
	case badge.ConditionStreakLength:
		if c.Scope == badge.StreakScopeLongest {
			return int64(p.LongestStreak) >= c.Target
		}
		return int64(p.CurrentStreak) >= c.Target
	case badge.ConditionLevelReached:
		return int64(p.CurrentLevel) >= c.Target
	default:
		return false
	}
}

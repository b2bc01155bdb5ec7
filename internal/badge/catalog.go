package badge

import (
	"fmt"

	"studyStrideAPI/internal/progression"
)

func threshold(id, name string, rarity Rarity, cat Category, counter string, target int64, desc string) Definition {
	return Definition{
		ID: id, Name: name, Rarity: rarity, Category: cat,
		Condition: UnlockCondition{
			Type: ConditionThresholdCount, Counter: counter, Target: target, Description: desc,
		},
	}
}

func streakBadge(id, name string, rarity Rarity, scope StreakScope, target int64, desc string) Definition {
	return Definition{
		ID: id, Name: name, Rarity: rarity, Category: CategoryStreaks,
		Condition: UnlockCondition{
			Type: ConditionStreakLength, Scope: scope, Target: target, Description: desc,
		},
	}
}

func levelBadge(target int64, name string, rarity Rarity) Definition {
	return Definition{
		ID: fmt.Sprintf("level_%d", target), Name: name, Rarity: rarity, Category: CategoryAchievement,
		Condition: UnlockCondition{
			Type: ConditionLevelReached, Target: target,
			Description: fmt.Sprintf("Reach level %d", target),
		},
	}
}

func compound(id, name string, rarity Rarity, cat Category, within Category, target int64, desc string) Definition {
	return Definition{
		ID: id, Name: name, Rarity: rarity, Category: cat,
		Condition: UnlockCondition{
			Type: ConditionCompoundCategory, Category: within, Target: target, Description: desc,
		},
	}
}

func hidden(d Definition) Definition {
	d.Hidden = true
	return d
}

// actionLadder builds the standard nine-step count ladder a category earns
// through repeated actions.
func actionLadder(prefix string, cat Category, counter, noun string) []Definition {
	steps := []struct {
		target int64
		rarity Rarity
	}{
		{1, RarityCommon}, {5, RarityCommon}, {10, RarityUncommon},
		{25, RarityUncommon}, {50, RarityRare}, {100, RarityRare},
		{250, RarityEpic}, {500, RarityLegendary}, {1000, RarityMythic},
	}
	names := []string{"First", "Steady", "Regular", "Committed", "Devoted", "Relentless", "Elite", "Heroic", "Mythic"}
	defs := make([]Definition, 0, len(steps))
	for i, s := range steps {
		defs = append(defs, threshold(
			fmt.Sprintf("%s_%d", prefix, s.target),
			fmt.Sprintf("%s %s", names[i], noun),
			s.rarity, cat, counter, s.target,
			fmt.Sprintf("Complete %d %s", s.target, noun),
		))
	}
	return defs
}

// Catalog is the authoritative badge list. Every surface that renders a
// badge (icon, rarity, category) reads this via the API; nothing is
// duplicated client-side.
func Catalog() []Definition {
	var defs []Definition

	defs = append(defs, actionLadder("focus", CategoryFocus, progression.CounterFocusActions, "focus sessions")...)
	defs = append(defs, compound("focus_collector", "Deep Work Devotee", RarityEpic,
		CategoryFocus, CategoryFocus, 5, "Earn 5 focus badges"))

	defs = append(defs, actionLadder("wellness", CategoryWellness, progression.CounterWellbeingActions, "check-ins")...)
	defs = append(defs, compound("wellness_collector", "Balanced Mind", RarityEpic,
		CategoryWellness, CategoryWellness, 5, "Earn 5 wellness badges"))

	defs = append(defs, actionLadder("skills", CategorySkills, progression.CounterSkillActions, "practice sessions")...)
	defs = append(defs, compound("skills_collector", "Polymath", RarityEpic,
		CategorySkills, CategorySkills, 5, "Earn 5 skills badges"))

	defs = append(defs, actionLadder("career", CategoryCareer, progression.CounterCareerActions, "career tasks")...)
	defs = append(defs, compound("career_collector", "Career Climber", RarityEpic,
		CategoryCareer, CategoryCareer, 5, "Earn 5 career badges"))

	community := []struct {
		target int64
		rarity Rarity
		name   string
	}{
		{1, RarityCommon, "Icebreaker"}, {10, RarityUncommon, "Conversationalist"},
		{25, RarityUncommon, "Community Voice"}, {50, RarityRare, "Group Anchor"},
		{100, RarityEpic, "Community Pillar"}, {250, RarityLegendary, "Community Legend"},
	}
	for _, c := range community {
		defs = append(defs, threshold(
			fmt.Sprintf("community_%d", c.target), c.name, c.rarity,
			CategoryCommunity, progression.CounterCommunityActions, c.target,
			fmt.Sprintf("Take part in %d community activities", c.target),
		))
	}
	defs = append(defs, compound("community_collector", "Social Glue", RarityEpic,
		CategoryCommunity, CategoryCommunity, 3, "Earn 3 community badges"))

	defs = append(defs,
		streakBadge("streak_3", "Warming Up", RarityCommon, StreakScopeCurrent, 3, "Stay active 3 days in a row"),
		streakBadge("streak_7", "One Full Week", RarityUncommon, StreakScopeCurrent, 7, "Stay active 7 days in a row"),
		streakBadge("streak_14", "Fortnight Fire", RarityRare, StreakScopeCurrent, 14, "Stay active 14 days in a row"),
		streakBadge("streak_30", "Monthly Machine", RarityEpic, StreakScopeCurrent, 30, "Stay active 30 days in a row"),
		streakBadge("streak_60", "Two-Month Titan", RarityLegendary, StreakScopeCurrent, 60, "Stay active 60 days in a row"),
		streakBadge("streak_100", "Century Streak", RarityMythic, StreakScopeCurrent, 100, "Stay active 100 days in a row"),
		streakBadge("streak_long_180", "Half-Year Hero", RarityLegendary, StreakScopeLongest, 180, "Hold a 180-day streak at any point"),
		streakBadge("streak_long_365", "Year of Grind", RarityMythic, StreakScopeLongest, 365, "Hold a 365-day streak at any point"),
	)

	defs = append(defs,
		threshold("early_bird_1", "Dawn Patrol", RarityCommon, CategoryTime,
			progression.CounterEarlyBird, 1, "Finish an activity before 8am"),
		threshold("early_bird_10", "Sunrise Regular", RarityUncommon, CategoryTime,
			progression.CounterEarlyBird, 10, "Finish 10 activities before 8am"),
		threshold("early_bird_50", "Morning Person", RarityRare, CategoryTime,
			progression.CounterEarlyBird, 50, "Finish 50 activities before 8am"),
		threshold("early_bird_100", "First Light Fixture", RarityEpic, CategoryTime,
			progression.CounterEarlyBird, 100, "Finish 100 activities before 8am"),
		hidden(threshold("night_owl_10", "Night Owl", RarityUncommon, CategoryTime,
			progression.CounterNightOwl, 10, "Finish 10 activities after 10pm")),
		hidden(threshold("night_owl_50", "Midnight Oil", RarityRare, CategoryTime,
			progression.CounterNightOwl, 50, "Finish 50 activities after 10pm")),
		hidden(threshold("night_owl_100", "Nocturnal Scholar", RarityEpic, CategoryTime,
			progression.CounterNightOwl, 100, "Finish 100 activities after 10pm")),
	)

	levels := []struct {
		target int64
		name   string
		rarity Rarity
	}{
		{2, "First Ascent", RarityCommon},
		{5, "Finding Footing", RarityCommon},
		{10, "Double Digits", RarityUncommon},
		{15, "Momentum Builder", RarityUncommon},
		{20, "Foundation Complete", RarityRare},
		{25, "Quarter Century", RarityRare},
		{30, "Thirty Strong", RarityRare},
		{40, "Growth Graduate", RarityEpic},
		{50, "Halfway Summit", RarityEpic},
		{60, "Mastery Proven", RarityEpic},
		{70, "Seventy Club", RarityLegendary},
		{75, "Diamond Quarter", RarityLegendary},
		{80, "Expert Emeritus", RarityLegendary},
		{90, "Ninety the Relentless", RarityMythic},
		{100, "Summit Reached", RarityMythic},
	}
	for _, l := range levels {
		defs = append(defs, levelBadge(l.target, l.name, l.rarity))
	}

	defs = append(defs,
		hidden(threshold("prestige_1", "Born Again", RarityLegendary, CategorySpecial,
			progression.CounterPrestige, 1, "Prestige for the first time")),
		hidden(threshold("prestige_3", "Triple Crown", RarityMythic, CategorySpecial,
			progression.CounterPrestige, 3, "Prestige three times")),
		hidden(threshold("prestige_5", "Eternal Student", RarityMythic, CategorySpecial,
			progression.CounterPrestige, 5, "Prestige five times")),
		threshold("collector_10", "Badge Hunter", RarityUncommon, CategorySpecial,
			progression.CounterBadgesEarned, 10, "Earn 10 badges"),
		threshold("collector_25", "Badge Connoisseur", RarityRare, CategorySpecial,
			progression.CounterBadgesEarned, 25, "Earn 25 badges"),
		threshold("collector_50", "Completionist", RarityLegendary, CategorySpecial,
			progression.CounterBadgesEarned, 50, "Earn 50 badges"),
		threshold("active_days_30", "One Month In", RarityUncommon, CategorySpecial,
			progression.CounterActiveDays, 30, "Be active on 30 different days"),
		threshold("active_days_100", "Hundred Days Strong", RarityRare, CategorySpecial,
			progression.CounterActiveDays, 100, "Be active on 100 different days"),
		threshold("active_days_365", "Year-Round Regular", RarityLegendary, CategorySpecial,
			progression.CounterActiveDays, 365, "Be active on 365 different days"),
		hidden(compound("well_rounded", "Well-Rounded", RarityMythic, CategorySpecial,
			CategoryAchievement, 10, "Earn 10 level badges")),
	)

	return defs
}

// Index returns the catalog keyed by badge ID.
func Index(defs []Definition) map[string]Definition {
	idx := make(map[string]Definition, len(defs))
	for _, d := range defs {
		idx[d.ID] = d
	}
	return idx
}

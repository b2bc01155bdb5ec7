package progression

// Config maps each source type to its XP multiplier and says which sources
// count towards the daily streak. Community actions deliberately do not:
// a forum reply should not keep a focus streak alive.
type Config struct {
	SourceMultipliers map[SourceType]float64
	StreakEligible    map[SourceType]bool
}

func DefaultConfig() Config {
	return Config{
		SourceMultipliers: map[SourceType]float64{
			SourceFocus:     1.0,
			SourceWellbeing: 1.0,
			SourceCareer:    1.5,
			SourceSkill:     1.25,
			SourceCommunity: 0.75,
		},
		StreakEligible: map[SourceType]bool{
			SourceFocus:     true,
			SourceWellbeing: true,
			SourceCareer:    true,
			SourceSkill:     true,
			SourceCommunity: false,
		},
	}
}

func (c Config) KnownSource(st SourceType) bool {
	_, ok := c.SourceMultipliers[st]
	return ok
}

// StreakMultiplier rewards long daily streaks with bonus XP.
func StreakMultiplier(currentStreak int) float64 {
	if currentStreak < 3 {
		return 1.0
	}
	if currentStreak < 7 {
		return 1.1
	}
	if currentStreak < 14 {
		return 1.25
	}
	if currentStreak < 30 {
		return 1.5
	}
	return 2.0
}

func ActionCounter(st SourceType) string {
	return "actions:" + string(st)
}

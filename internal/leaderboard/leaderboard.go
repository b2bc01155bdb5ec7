package leaderboard

type Category string

const (
	CategoryXP       Category = "xp"
	CategoryStreak   Category = "streak"
	CategoryBadges   Category = "badges"
	CategoryMomentum Category = "momentum"
)

type Timeframe string

const (
	TimeframeWeekly  Timeframe = "weekly"
	TimeframeMonthly Timeframe = "monthly"
	TimeframeAllTime Timeframe = "all_time"
)

type Entry struct {
	UserID        string  `json:"user_id" db:"user_id"`
	Rank          int     `json:"rank" db:"rank"`
	TotalXP       int64   `json:"total_xp" db:"total_xp"`
	Level         int     `json:"level" db:"level"`
	CurrentStreak int     `json:"current_streak" db:"current_streak"`
	BadgeCount    int     `json:"badge_count" db:"badge_count"`
	Score         float64 `json:"score" db:"score"`
}

type Leaderboard struct {
	Category   Category  `json:"category"`
	Timeframe  Timeframe `json:"timeframe"`
	Entries    []*Entry  `json:"entries"`
	TotalUsers int       `json:"total_users"`
}

func ValidCategory(c Category) bool {
	switch c {
	case CategoryXP, CategoryStreak, CategoryBadges, CategoryMomentum:
		return true
	}
	return false
}

func ValidTimeframe(t Timeframe) bool {
	switch t {
	case TimeframeWeekly, TimeframeMonthly, TimeframeAllTime:
		return true
	}
	return false
}

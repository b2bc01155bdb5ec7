package progression

import (
	"time"

	"github.com/google/uuid"
)

type SourceType string

const (
	SourceFocus     SourceType = "focus"
	SourceWellbeing SourceType = "wellbeing"
	SourceCareer    SourceType = "career"
	SourceSkill     SourceType = "skill"
	SourceCommunity SourceType = "community"
)

// Counter keys maintained by the engine. The badge evaluator only ever
// reads these pre-aggregated values, never the event log.
const (
	CounterFocusActions     = "actions:focus"
	CounterWellbeingActions = "actions:wellbeing"
	CounterCareerActions    = "actions:career"
	CounterSkillActions     = "actions:skill"
	CounterCommunityActions = "actions:community"
	CounterActiveDays       = "days:active"
	CounterEarlyBird        = "time:early_bird"
	CounterNightOwl         = "time:night_owl"
	CounterPrestige         = "prestige:count"
	CounterBadgesEarned     = "badges:earned"
)

type UserProgress struct {
	UserID        string               `json:"user_id" db:"user_id"`
	TotalXPEarned int64                `json:"total_xp_earned" db:"total_xp_earned"`
	CycleXP       int64                `json:"cycle_xp" db:"cycle_xp"`
	CurrentLevel  int                  `json:"current_level" db:"current_level"`
	PrestigeLevel int                  `json:"prestige_level" db:"prestige_level"`
	CurrentStreak int                  `json:"current_streak" db:"current_streak"`
	LongestStreak int                  `json:"longest_streak" db:"longest_streak"`
	LastActiveDay *time.Time           `json:"last_active_day" db:"last_active_day"`
	Badges        map[string]time.Time `json:"badges"`
	Achievements  map[string]time.Time `json:"achievements"`
	Counters      map[string]int64     `json:"counters"`
	Version       int64                `json:"-" db:"version"`
	CreatedAt     time.Time            `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at" db:"updated_at"`
}

// NewUserProgress returns the lazily-created starting state for a user's
// first XP-eligible action.
func NewUserProgress(userID string) *UserProgress {
	now := time.Now().UTC()
	return &UserProgress{
		UserID:       userID,
		CurrentLevel: 1,
		Badges:       make(map[string]time.Time),
		Achievements: make(map[string]time.Time),
		Counters:     make(map[string]int64),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (p *UserProgress) Counter(key string) int64 {
	if p.Counters == nil {
		return 0
	}
	return p.Counters[key]
}

func (p *UserProgress) Bump(key string, delta int64) {
	if p.Counters == nil {
		p.Counters = make(map[string]int64)
	}
	p.Counters[key] += delta
}

// Clone deep-copies the progress record so a failed optimistic commit never
// leaves half-applied mutations behind.
func (p *UserProgress) Clone() *UserProgress {
	cp := *p
	cp.Badges = make(map[string]time.Time, len(p.Badges))
	for k, v := range p.Badges {
		cp.Badges[k] = v
	}
	cp.Achievements = make(map[string]time.Time, len(p.Achievements))
	for k, v := range p.Achievements {
		cp.Achievements[k] = v
	}
	cp.Counters = make(map[string]int64, len(p.Counters))
	for k, v := range p.Counters {
		cp.Counters[k] = v
	}
	if p.LastActiveDay != nil {
		d := *p.LastActiveDay
		cp.LastActiveDay = &d
	}
	return &cp
}

// XPGainEvent is one idempotent XP credit. (user_id, source_id) is the
// idempotency key; the computed result is stored alongside so a replay can
// return it verbatim.
type XPGainEvent struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	UserID        string        `json:"user_id" db:"user_id"`
	SourceID      string        `json:"source_id" db:"source_id"`
	SourceType    SourceType    `json:"source_type" db:"source_type"`
	RawAmount     int64         `json:"raw_amount" db:"raw_amount"`
	Multiplier    float64       `json:"multiplier" db:"multiplier"`
	AppliedAmount int64         `json:"applied_amount" db:"applied_amount"`
	Result        *XPGainResult `json:"result"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
}

type BadgeUnlockedEvent struct {
	BadgeID string `json:"badge_id"`
	Name    string `json:"name"`
	Rarity  string `json:"rarity"`
}

type AchievementUnlockedEvent struct {
	AchievementID string `json:"achievement_id"`
	Name          string `json:"name"`
}

type LevelUpEvent struct {
	NewLevel int          `json:"new_level"`
	Tier     string       `json:"tier"`
	Rewards  LevelRewards `json:"rewards"`
}

type LevelRewards struct {
	BadgeIDs []string `json:"badge_ids,omitempty"`
	Perks    []string `json:"perks,omitempty"`
	Title    string   `json:"title,omitempty"`
}

// XPGainResult is the single consolidated output of GainXP. The transport
// layer forwards the unlock events to the notification/leaderboard
// collaborators; the engine itself never broadcasts.
type XPGainResult struct {
	XPGained             int64                      `json:"xp_gained"`
	Multiplier           float64                    `json:"multiplier"`
	TotalXP              int64                      `json:"total_xp"`
	Level                int                        `json:"level"`
	LeveledUp            bool                       `json:"leveled_up"`
	NewLevel             int                        `json:"new_level,omitempty"`
	CurrentStreak        int                        `json:"current_streak"`
	LongestStreak        int                        `json:"longest_streak"`
	LevelUps             []LevelUpEvent             `json:"level_ups,omitempty"`
	UnlockedBadges       []BadgeUnlockedEvent       `json:"unlocked_badges"`
	UnlockedAchievements []AchievementUnlockedEvent `json:"unlocked_achievements"`
}

type PrestigeResult struct {
	PrestigeLevel        int                        `json:"prestige_level"`
	Level                int                        `json:"level"`
	TotalXP              int64                      `json:"total_xp"`
	UnlockedBadges       []BadgeUnlockedEvent       `json:"unlocked_badges"`
	UnlockedAchievements []AchievementUnlockedEvent `json:"unlocked_achievements"`
}

package level

import (
	"fmt"
	"math"

	"studyStrideAPI/internal/progression"
)

// The engine is the single source of truth for the growth curve. Clients
// render thresholds served by the API and never reconstruct this formula.
const (
	BaseXP     = 100
	GrowthRate = 1.15
	MaxLevel   = 100
)

type Tier string

const (
	TierFoundation Tier = "foundation"
	TierGrowth     Tier = "growth"
	TierMastery    Tier = "mastery"
	TierExpert     Tier = "expert"
	TierLegend     Tier = "legend"
)

type Definition struct {
	Level      int                      `json:"level"`
	Tier       Tier                     `json:"tier"`
	RequiredXP int64                    `json:"required_xp"`
	Title      string                   `json:"title"`
	Subtitle   string                   `json:"subtitle"`
	Rewards    progression.LevelRewards `json:"rewards"`
	XPForNext  int64                    `json:"xp_for_next"`
}

// xpForLevel is the XP needed to clear level n (go from n to n+1):
// floor(BaseXP * GrowthRate^(n-1)).
func xpForLevel(n int) int64 {
	return int64(math.Floor(BaseXP * math.Pow(GrowthRate, float64(n-1))))
}

// thresholds[n] is the cumulative XP required to reach level n.
// thresholds[1] = 0, thresholds[2] = 100.
var (
	thresholds [MaxLevel + 1]int64
	catalog    []Definition
)

func init() {
	var sum int64
	for n := 1; n <= MaxLevel; n++ {
		thresholds[n] = sum
		sum += xpForLevel(n)
	}
	catalog = buildCatalog()
}

// TierOf returns the tier band for a level. Boundaries sit at 20/40/60/80.
func TierOf(lvl int) Tier {
	switch {
	case lvl <= 20:
		return TierFoundation
	case lvl <= 40:
		return TierGrowth
	case lvl <= 60:
		return TierMastery
	case lvl <= 80:
		return TierExpert
	default:
		return TierLegend
	}
}

// LevelOf maps cumulative XP to (level, tier, xpIntoLevel, xpForNextLevel).
// Non-decreasing in xp; level is capped at MaxLevel, where xpForNextLevel
// is 0.
func LevelOf(xp int64) (int, Tier, int64, int64) {
	if xp < 0 {
		xp = 0
	}
	lvl := 1
	for lvl < MaxLevel && xp >= thresholds[lvl+1] {
		lvl++
	}
	into := xp - thresholds[lvl]
	var forNext int64
	if lvl < MaxLevel {
		forNext = xpForLevel(lvl)
	}
	return lvl, TierOf(lvl), into, forNext
}

// ThresholdFor returns the cumulative XP required to reach the given level.
func ThresholdFor(lvl int) int64 {
	if lvl < 1 {
		lvl = 1
	}
	if lvl > MaxLevel {
		lvl = MaxLevel
	}
	return thresholds[lvl]
}

var tierTitles = map[Tier]string{
	TierFoundation: "Foundation",
	TierGrowth:     "Growth",
	TierMastery:    "Mastery",
	TierExpert:     "Expert",
	TierLegend:     "Legend",
}

var tierSubtitles = map[Tier]string{
	TierFoundation: "Building the habit",
	TierGrowth:     "Gaining momentum",
	TierMastery:    "Deep in the work",
	TierExpert:     "Leading by example",
	TierLegend:     "Campus legend",
}

// rewardBadgeLevels are the milestone levels that grant a badge on arrival.
// The badge IDs resolve into the achievement category of the badge catalog.
var rewardBadgeLevels = []int{2, 5, 10, 15, 20, 25, 30, 40, 50, 60, 70, 75, 80, 90, 100}

var tierEntryPerks = map[int][]string{
	21: {"custom_dashboard_accent"},
	41: {"animated_avatar_ring"},
	61: {"priority_group_listing"},
	81: {"legend_profile_banner"},
}

var tierEntryTitles = map[int]string{
	1:  "Freshman",
	21: "Rising Scholar",
	41: "Dedicated Scholar",
	61: "Campus Expert",
	81: "Living Legend",
}

func rewardsFor(lvl int) progression.LevelRewards {
	r := progression.LevelRewards{}
	for _, ml := range rewardBadgeLevels {
		if ml == lvl {
			r.BadgeIDs = append(r.BadgeIDs, fmt.Sprintf("level_%d", lvl))
		}
	}
	if perks, ok := tierEntryPerks[lvl]; ok {
		r.Perks = perks
	}
	if title, ok := tierEntryTitles[lvl]; ok {
		r.Title = title
	}
	return r
}

// Catalog returns the 100 static level definitions.
func Catalog() []Definition {
	return catalog
}

func buildCatalog() []Definition {
	defs := make([]Definition, 0, MaxLevel)
	for n := 1; n <= MaxLevel; n++ {
		tier := TierOf(n)
		var forNext int64
		if n < MaxLevel {
			forNext = xpForLevel(n)
		}
		defs = append(defs, Definition{
			Level:      n,
			Tier:       tier,
			RequiredXP: thresholds[n],
			Title:      fmt.Sprintf("%s %d", tierTitles[tier], n),
			Subtitle:   tierSubtitles[tier],
			Rewards:    rewardsFor(n),
			XPForNext:  forNext,
		})
	}
	return defs
}

// DefinitionFor returns the definition for one level, or nil when the level
// is out of range (a data-integrity gap the caller logs and skips).
func DefinitionFor(lvl int) *Definition {
	if lvl < 1 || lvl > MaxLevel {
		return nil
	}
	d := catalog[lvl-1]
	return &d
}

// Validate checks the catalog invariants at startup. A malformed curve
// aborts engine initialization rather than silently skipping levels.
func Validate() error {
	defs := Catalog()
	if len(defs) != MaxLevel {
		return fmt.Errorf("level catalog has %d entries, want %d", len(defs), MaxLevel)
	}
	for i, d := range defs {
		if d.Level != i+1 {
			return fmt.Errorf("level catalog entry %d has level %d", i, d.Level)
		}
		if i > 0 && d.RequiredXP <= defs[i-1].RequiredXP {
			return fmt.Errorf("level %d threshold %d not above level %d", d.Level, d.RequiredXP, defs[i-1].Level)
		}
	}
	return nil
}

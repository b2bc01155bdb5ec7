package utils

import "math"

// CalculateMomentumScore is the composite used by the momentum leaderboard:
// streaks dominate quadratically, lifetime XP and badges add linearly.
// The postgres leaderboard query mirrors this expression; change both
// together.
func CalculateMomentumScore(currentStreak int, totalXP int64, badgeCount int) float64 {
	streakScore := math.Pow(float64(currentStreak), 2) * 0.3
	xpScore := float64(totalXP) * 0.05
	badgeScore := float64(badgeCount) * 1.0

	return streakScore + xpScore + badgeScore
}

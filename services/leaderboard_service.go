package services

import (
	"context"
	"fmt"
	"time"

	"studyStrideAPI/internal/leaderboard"
	"studyStrideAPI/internal/store"
)

const (
	defaultLeaderboardLimit = 50
	maxLeaderboardLimit     = 100
)

// LeaderboardService serves ranked cross-user reads. Rankings are computed
// from persisted progress on demand; the engine's write path never touches
// them.
type LeaderboardService struct {
	store store.Store
}

func NewLeaderboardService(st store.Store) *LeaderboardService {
	return &LeaderboardService{store: st}
}

// GetLeaderboard validates the category/timeframe pair and delegates the
// ranking query. Weekly and monthly windows only change the xp ranking;
// streaks, badge counts and momentum are point-in-time values either way.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, category leaderboard.Category, timeframe leaderboard.Timeframe, limit int) (*leaderboard.Leaderboard, error) {
	if !leaderboard.ValidCategory(category) {
		return nil, fmt.Errorf("invalid leaderboard category %q", category)
	}
	if !leaderboard.ValidTimeframe(timeframe) {
		return nil, fmt.Errorf("invalid leaderboard timeframe %q", timeframe)
	}
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	var since time.Time
	switch timeframe {
	case leaderboard.TimeframeWeekly:
		since = time.Now().UTC().AddDate(0, 0, -7)
	case leaderboard.TimeframeMonthly:
		since = time.Now().UTC().AddDate(0, -1, 0)
	}

	entries, err := s.store.Leaderboard(ctx, category, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}

	return &leaderboard.Leaderboard{
		Category:   category,
		Timeframe:  timeframe,
		Entries:    entries,
		TotalUsers: len(entries),
	}, nil
}

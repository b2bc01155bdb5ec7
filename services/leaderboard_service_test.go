package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyStrideAPI/internal/leaderboard"
	"studyStrideAPI/internal/progression"
	"studyStrideAPI/internal/store"
)

func TestGetLeaderboard_RanksByXP(t *testing.T) {
	st := store.NewMemoryStore()
	prog, err := NewProgressionService(st, nil)
	require.NoError(t, err)
	svc := NewLeaderboardService(st)
	ctx := context.Background()

	_, err = prog.GainXP(ctx, "alice", "s1", progression.SourceFocus, 300)
	require.NoError(t, err)
	_, err = prog.GainXP(ctx, "bob", "s1", progression.SourceFocus, 100)
	require.NoError(t, err)

	board, err := svc.GetLeaderboard(ctx, leaderboard.CategoryXP, leaderboard.TimeframeAllTime, 10)
	require.NoError(t, err)

	assert.Equal(t, leaderboard.CategoryXP, board.Category)
	require.Len(t, board.Entries, 2)
	assert.Equal(t, "alice", board.Entries[0].UserID)
	assert.Equal(t, 1, board.Entries[0].Rank)
	assert.Equal(t, int64(300), board.Entries[0].TotalXP)
	assert.Equal(t, "bob", board.Entries[1].UserID)
	assert.Equal(t, 2, board.Entries[1].Rank)
}

func TestGetLeaderboard_RejectsBadInput(t *testing.T) {
	svc := NewLeaderboardService(store.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.GetLeaderboard(ctx, "karma", leaderboard.TimeframeAllTime, 10)
	assert.Error(t, err)

	_, err = svc.GetLeaderboard(ctx, leaderboard.CategoryXP, "daily", 10)
	assert.Error(t, err)
}

func TestGetLeaderboard_LimitClamped(t *testing.T) {
	st := store.NewMemoryStore()
	prog, err := NewProgressionService(st, nil)
	require.NoError(t, err)
	svc := NewLeaderboardService(st)
	ctx := context.Background()

	_, err = prog.GainXP(ctx, "alice", "s1", progression.SourceFocus, 10)
	require.NoError(t, err)

	// Zero limit falls back to the default rather than returning nothing.
	board, err := svc.GetLeaderboard(ctx, leaderboard.CategoryMomentum, leaderboard.TimeframeAllTime, 0)
	require.NoError(t, err)
	assert.Len(t, board.Entries, 1)
}

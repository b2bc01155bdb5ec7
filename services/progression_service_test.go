package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyStrideAPI/internal/level"
	"studyStrideAPI/internal/progression"
	"studyStrideAPI/internal/store"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *testClock) AddDays(d int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.AddDate(0, 0, d)
}

func newTestService(t *testing.T) (*ProgressionService, *store.MemoryStore, *testClock) {
	t.Helper()
	st := store.NewMemoryStore()
	svc, err := NewProgressionService(st, nil)
	require.NoError(t, err)

	clock := &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc.now = clock.Now
	return svc, st, clock
}

func TestGainXP_FirstAction(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	result, err := svc.GainXP(ctx, "u1", "s1", progression.SourceFocus, 50)
	require.NoError(t, err)

	assert.Equal(t, int64(50), result.XPGained)
	assert.Equal(t, 1.0, result.Multiplier)
	assert.Equal(t, int64(50), result.TotalXP)
	assert.Equal(t, 1, result.Level)
	assert.False(t, result.LeveledUp)
	assert.Equal(t, 1, result.CurrentStreak)

	// The very first focus action clears the first ladder step.
	require.Len(t, result.UnlockedBadges, 1)
	assert.Equal(t, "focus_1", result.UnlockedBadges[0].BadgeID)

	require.Len(t, result.UnlockedAchievements, 1)
	assert.Equal(t, "first_steps", result.UnlockedAchievements[0].AchievementID)
}

func TestGainXP_IdempotentReplay(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.GainXP(ctx, "u1", "s1", progression.SourceFocus, 50)
	require.NoError(t, err)

	before, err := st.GetProgress(ctx, "u1")
	require.NoError(t, err)

	replay, err := svc.GainXP(ctx, "u1", "s1", progression.SourceFocus, 50)
	require.NoError(t, err)
	assert.Equal(t, first, replay, "replay returns the stored result verbatim")

	after, err := st.GetProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, before.TotalXPEarned, after.TotalXPEarned, "no double credit")
	assert.Equal(t, before.Version, after.Version, "no write happened")
	assert.Equal(t, before.Counters, after.Counters)
}

func TestGainXP_ReplayIgnoresNewParameters(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.GainXP(ctx, "u1", "s1", progression.SourceFocus, 50)
	require.NoError(t, err)

	// Same source ID with a different amount still replays the original.
	replay, err := svc.GainXP(ctx, "u1", "s1", progression.SourceFocus, 500)
	require.NoError(t, err)
	assert.Equal(t, first.XPGained, replay.XPGained)
	assert.Equal(t, first.TotalXP, replay.TotalXP)
}

func TestGainXP_LevelUpWithRewardBadge(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GainXP(ctx, "u1", "s1", progression.SourceFocus, 50)
	require.NoError(t, err)

	result, err := svc.GainXP(ctx, "u1", "s2", progression.SourceFocus, 60)
	require.NoError(t, err)

	assert.Equal(t, int64(110), result.TotalXP)
	assert.Equal(t, 2, result.Level)
	assert.True(t, result.LeveledUp)
	assert.Equal(t, 2, result.NewLevel)

	require.Len(t, result.LevelUps, 1)
	assert.Equal(t, 2, result.LevelUps[0].NewLevel)
	assert.Contains(t, result.LevelUps[0].Rewards.BadgeIDs, "level_2")

	ids := badgeIDs(result)
	assert.Contains(t, ids, "level_2")
	assert.NotContains(t, ids, "focus_1", "already owned from the first gain")
}

func TestGainXP_MultipleLevelsInOneGain(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	// Enough to clear levels 1 through 4 in a single credit.
	amount := level.ThresholdFor(5) + 1
	result, err := svc.GainXP(ctx, "u1", "s1", progression.SourceFocus, amount)
	require.NoError(t, err)

	assert.Equal(t, 5, result.Level)
	require.Len(t, result.LevelUps, 4)
	assert.Equal(t, 2, result.LevelUps[0].NewLevel)
	assert.Equal(t, 5, result.LevelUps[3].NewLevel)

	ids := badgeIDs(result)
	assert.Contains(t, ids, "level_2")
	assert.Contains(t, ids, "level_5")
}

func TestGainXP_SourceMultipliers(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	career, err := svc.GainXP(ctx, "u1", "s1", progression.SourceCareer, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(150), career.XPGained)
	assert.Equal(t, 1.5, career.Multiplier)

	skill, err := svc.GainXP(ctx, "u2", "s1", progression.SourceSkill, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(125), skill.XPGained)

	community, err := svc.GainXP(ctx, "u3", "s1", progression.SourceCommunity, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(8), community.XPGained) // round(7.5)
}

func TestGainXP_CommunityNotStreakEligible(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	result, err := svc.GainXP(ctx, "u1", "s1", progression.SourceCommunity, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, result.CurrentStreak, "community actions never touch the streak")

	view, err := svc.GetProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, view.LastActiveDay)
	assert.Equal(t, int64(0), view.Counter(progression.CounterActiveDays))
	assert.Equal(t, int64(1), view.Counter(progression.CounterCommunityActions))
}

func TestGainXP_StreakBonusUsesStreakBeforeTheAction(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()

	for d := 0; d < 7; d++ {
		_, err := svc.GainXP(ctx, "u1", sourceForDay(d), progression.SourceFocus, 10)
		require.NoError(t, err)
		clock.AddDays(1)
	}

	// Streak stands at 7 going into day 8, which pays 1.25x.
	result, err := svc.GainXP(ctx, "u1", "day8", progression.SourceFocus, 100)
	require.NoError(t, err)
	assert.Equal(t, 1.25, result.Multiplier)
	assert.Equal(t, int64(125), result.XPGained)
	assert.Equal(t, 8, result.CurrentStreak)
}

func TestGainXP_SevenDayStreakBadgeOnce(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()

	var byDay []*progression.XPGainResult
	for d := 0; d < 8; d++ {
		result, err := svc.GainXP(ctx, "u2", sourceForDay(d), progression.SourceWellbeing, 10)
		require.NoError(t, err)
		byDay = append(byDay, result)
		clock.AddDays(1)
	}

	assert.NotContains(t, badgeIDs(byDay[5]), "streak_7", "day 6: not yet")
	assert.Contains(t, badgeIDs(byDay[6]), "streak_7", "day 7: unlocks")
	assert.NotContains(t, badgeIDs(byDay[7]), "streak_7", "day 8: already owned")
}

func TestGainXP_BrokenStreakKeepsLongest(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()

	for d := 0; d < 5; d++ {
		_, err := svc.GainXP(ctx, "u1", sourceForDay(d), progression.SourceFocus, 10)
		require.NoError(t, err)
		clock.AddDays(1)
	}
	clock.AddDays(2) // skip two days

	result, err := svc.GainXP(ctx, "u1", "after-gap", progression.SourceFocus, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, result.CurrentStreak)
	assert.Equal(t, 5, result.LongestStreak)
}

func TestGainXP_TimeOfDayCounters(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()

	clock.Set(time.Date(2026, 3, 1, 6, 30, 0, 0, time.UTC))
	result, err := svc.GainXP(ctx, "u1", "dawn", progression.SourceFocus, 10)
	require.NoError(t, err)
	assert.Contains(t, badgeIDs(result), "early_bird_1")

	clock.Set(time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC))
	_, err = svc.GainXP(ctx, "u1", "late", progression.SourceFocus, 10)
	require.NoError(t, err)

	view, err := svc.GetProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), view.Counter(progression.CounterEarlyBird))
	assert.Equal(t, int64(1), view.Counter(progression.CounterNightOwl))
}

func TestGainXP_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GainXP(ctx, "u1", "s1", progression.SourceFocus, 0)
	assert.ErrorIs(t, err, progression.ErrInvalidAmount)

	_, err = svc.GainXP(ctx, "u1", "s1", progression.SourceFocus, -5)
	assert.ErrorIs(t, err, progression.ErrInvalidAmount)

	_, err = svc.GainXP(ctx, "u1", "s1", progression.SourceType("gaming"), 10)
	assert.ErrorIs(t, err, progression.ErrUnknownSource)
}

func TestGainXP_ConcurrentGainsAllCredit(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	const workers = 8
	errCh := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			// The engine's internal retry budget can be exhausted under
			// a deliberate stampede; callers retry on ErrConflict.
			for {
				_, err := svc.GainXP(ctx, "u1", sourceForDay(n), progression.SourceFocus, 10)
				if errors.Is(err, progression.ErrConflict) {
					continue
				}
				errCh <- err
				return
			}
		}(i)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}

	view, err := svc.GetProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(10*workers), view.TotalXPEarned)
	assert.Equal(t, int64(workers), view.Counter(progression.CounterFocusActions))
}

func maxOutUser(t *testing.T, svc *ProgressionService, userID string) {
	t.Helper()
	amount := level.ThresholdFor(level.MaxLevel)
	result, err := svc.GainXP(context.Background(), userID, "grind", progression.SourceFocus, amount)
	require.NoError(t, err)
	require.Equal(t, level.MaxLevel, result.Level)
}

func TestPrestige_ResetsCycleKeepsHistory(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	maxOutUser(t, svc, "u3")
	before, err := svc.GetProgress(ctx, "u3")
	require.NoError(t, err)

	result, err := svc.Prestige(ctx, "u3")
	require.NoError(t, err)
	assert.Equal(t, 1, result.PrestigeLevel)
	assert.Equal(t, 1, result.Level)
	assert.Equal(t, before.TotalXPEarned, result.TotalXP, "lifetime XP survives")

	after, err := svc.GetProgress(ctx, "u3")
	require.NoError(t, err)
	assert.Equal(t, 1, after.CurrentLevel)
	assert.Equal(t, int64(0), after.CycleXP)
	assert.Equal(t, 1, after.PrestigeLevel)
	assert.Equal(t, before.CurrentStreak, after.CurrentStreak)

	for id := range before.Badges {
		assert.Contains(t, after.Badges, id, "prestige never removes badges")
	}
	for id := range before.Achievements {
		assert.Contains(t, after.Achievements, id)
	}

	// The first prestige earns its own hidden badge and achievement.
	assert.Contains(t, after.Badges, "prestige_1")
	assert.Contains(t, after.Achievements, "reborn")
}

func TestPrestige_RequiresMaxLevel(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GainXP(ctx, "u1", "s1", progression.SourceFocus, 50)
	require.NoError(t, err)

	_, err = svc.Prestige(ctx, "u1")
	assert.ErrorIs(t, err, progression.ErrNotMaxLevel)

	_, err = svc.Prestige(ctx, "nobody")
	assert.ErrorIs(t, err, progression.ErrNotFound)
}

func TestPrestige_LevelingUpAgainAfterReset(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	maxOutUser(t, svc, "u1")
	_, err := svc.Prestige(ctx, "u1")
	require.NoError(t, err)

	result, err := svc.GainXP(ctx, "u1", "post-prestige", progression.SourceFocus, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Level, "the cycle restarts from the bottom of the curve")
	assert.True(t, result.LeveledUp)
	assert.NotContains(t, badgeIDs(result), "level_2", "reward badge from the first cycle is permanent")
}

func TestGetProgress_UnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.GetProgress(context.Background(), "nobody")
	assert.ErrorIs(t, err, progression.ErrNotFound)
}

func TestGetProgress_DerivedCurveFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GainXP(ctx, "u1", "s1", progression.SourceFocus, 130)
	require.NoError(t, err)

	view, err := svc.GetProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, view.CurrentLevel)
	assert.Equal(t, level.TierFoundation, view.Tier)
	assert.Equal(t, int64(30), view.XPIntoLevel)
	assert.Equal(t, int64(114), view.XPForNextLevel)
}

func TestGetBadgeCatalog_HiddenLockedExcluded(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()

	catalog, err := svc.GetBadgeCatalog(ctx, "nobody")
	require.NoError(t, err)
	for _, b := range catalog {
		assert.False(t, b.Hidden, "locked hidden badges never appear: %s", b.ID)
		assert.False(t, b.Unlocked)
	}

	// Unlock night_owl_10 and it shows up, hidden flag intact.
	clock.Set(time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC))
	for i := 0; i < 10; i++ {
		_, err := svc.GainXP(ctx, "u1", sourceForDay(i), progression.SourceFocus, 5)
		require.NoError(t, err)
		clock.AddDays(1)
	}

	catalog, err = svc.GetBadgeCatalog(ctx, "u1")
	require.NoError(t, err)
	var owl *BadgeStatus
	for i := range catalog {
		if catalog[i].ID == "night_owl_10" {
			owl = &catalog[i]
		}
	}
	require.NotNil(t, owl, "unlocked hidden badge appears in the listing")
	assert.True(t, owl.Unlocked)
	assert.NotNil(t, owl.UnlockedAt)
}

func TestGetLevelCatalog(t *testing.T) {
	svc, _, _ := newTestService(t)
	defs := svc.GetLevelCatalog()
	require.Len(t, defs, level.MaxLevel)
	assert.Equal(t, int64(0), defs[0].RequiredXP)
	assert.Equal(t, int64(100), defs[1].RequiredXP)
}

func badgeIDs(r *progression.XPGainResult) []string {
	ids := make([]string, len(r.UnlockedBadges))
	for i, b := range r.UnlockedBadges {
		ids[i] = b.BadgeID
	}
	return ids
}

func sourceForDay(d int) string {
	return "src-" + string(rune('a'+d))
}

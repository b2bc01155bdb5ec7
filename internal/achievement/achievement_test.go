package achievement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyStrideAPI/internal/progression"
)

func TestCatalog_Validates(t *testing.T) {
	require.NoError(t, Validate(Catalog()))
}

func TestUnlocks_FirstSteps(t *testing.T) {
	p := progression.NewUserProgress("u1")
	p.Bump(progression.CounterActiveDays, 1)

	got := Unlocks(Catalog(), p)
	require.Len(t, got, 1)
	assert.Equal(t, "first_steps", got[0].ID)
}

func TestUnlocks_OwnedNotRepeated(t *testing.T) {
	p := progression.NewUserProgress("u1")
	p.Bump(progression.CounterActiveDays, 1)
	p.Achievements["first_steps"] = time.Now()

	assert.Empty(t, Unlocks(Catalog(), p))
}

func TestUnlocks_LongestStreakScope(t *testing.T) {
	// habit_formed reads the longest streak, so it unlocks even after the
	// current streak broke.
	p := progression.NewUserProgress("u1")
	p.CurrentStreak = 1
	p.LongestStreak = 21
	p.Badges = map[string]time.Time{}

	got := Unlocks(Catalog(), p)
	ids := make([]string, len(got))
	for i, d := range got {
		ids[i] = d.ID
	}
	assert.Contains(t, ids, "habit_formed")
	assert.NotContains(t, ids, "month_of_momentum")
	assert.NotContains(t, ids, "week_one")
}

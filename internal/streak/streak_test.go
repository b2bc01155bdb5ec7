package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}

func TestAdvance_FirstAction(t *testing.T) {
	s, counted := Advance(State{}, day(2026, 3, 1, 14))
	assert.True(t, counted)
	assert.Equal(t, 1, s.Current)
	assert.Equal(t, 1, s.Longest)
	assert.Equal(t, day(2026, 3, 1, 0), *s.LastActiveDay)
}

func TestAdvance_SameDayIsNoop(t *testing.T) {
	s, _ := Advance(State{}, day(2026, 3, 1, 9))
	s2, counted := Advance(s, day(2026, 3, 1, 23))
	assert.False(t, counted)
	assert.Equal(t, s, s2)
}

func TestAdvance_ConsecutiveDays(t *testing.T) {
	s := State{}
	for d := 1; d <= 7; d++ {
		s, _ = Advance(s, day(2026, 3, d, 12))
	}
	assert.Equal(t, 7, s.Current)
	assert.Equal(t, 7, s.Longest)
}

func TestAdvance_GapResets(t *testing.T) {
	s := State{}
	s, _ = Advance(s, day(2026, 3, 1, 12))
	s, _ = Advance(s, day(2026, 3, 2, 12))
	s, _ = Advance(s, day(2026, 3, 3, 12))
	assert.Equal(t, 3, s.Current)

	s, counted := Advance(s, day(2026, 3, 5, 12))
	assert.True(t, counted)
	assert.Equal(t, 1, s.Current)
	assert.Equal(t, 3, s.Longest, "longest survives a reset")
}

func TestAdvance_UTCDayBoundary(t *testing.T) {
	// 23:59 UTC and 00:01 UTC the next day are consecutive days.
	s, _ := Advance(State{}, day(2026, 3, 1, 23))
	s, counted := Advance(s, time.Date(2026, 3, 2, 0, 1, 0, 0, time.UTC))
	assert.True(t, counted)
	assert.Equal(t, 2, s.Current)
}

func TestAdvance_NonUTCInputNormalized(t *testing.T) {
	// 01:00+02:00 on March 2 is 23:00 UTC March 1.
	loc := time.FixedZone("EET", 2*3600)
	s, _ := Advance(State{}, day(2026, 3, 1, 12))
	s2, counted := Advance(s, time.Date(2026, 3, 2, 1, 0, 0, 0, loc))
	assert.False(t, counted)
	assert.Equal(t, s.Current, s2.Current)
}

func TestDayOf(t *testing.T) {
	assert.Equal(t, day(2026, 3, 1, 0), DayOf(day(2026, 3, 1, 19)))
}

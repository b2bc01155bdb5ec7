package streak

import "time"

// The engine buckets activity by UTC calendar day. Client timezones are
// never consulted; every surface reads the same day boundary.

type State struct {
	Current       int        `json:"current_streak"`
	Longest       int        `json:"longest_streak"`
	LastActiveDay *time.Time `json:"last_active_day"`
}

// DayOf truncates a timestamp to its UTC calendar day.
func DayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Advance applies one streak-eligible action at time `at` and returns the
// updated state plus whether a new day was counted. Rules:
//   - same day as last activity: no-op
//   - last activity was yesterday: streak grows by one
//   - anything else (including first ever action): streak resets to 1
//
// Longest is maintained as max(longest, current) after every update.
func Advance(s State, at time.Time) (State, bool) {
	today := DayOf(at)

	if s.LastActiveDay != nil {
		last := DayOf(*s.LastActiveDay)
		if last.Equal(today) {
			return s, false
		}
		if last.AddDate(0, 0, 1).Equal(today) {
			s.Current++
		} else {
			s.Current = 1
		}
	} else {
		s.Current = 1
	}

	if s.Current > s.Longest {
		s.Longest = s.Current
	}
	s.LastActiveDay = &today
	return s, true
}

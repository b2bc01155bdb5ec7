package progression

import "errors"

var (
	// ErrInvalidAmount rejects non-positive XP amounts. Never retryable.
	ErrInvalidAmount = errors.New("xp amount must be positive")

	// ErrUnknownSource rejects source types outside the configured enum.
	ErrUnknownSource = errors.New("unknown source type")

	// ErrNotFound means the user has no progress record yet.
	ErrNotFound = errors.New("progress not found")

	// ErrNotMaxLevel rejects prestige below level 100.
	ErrNotMaxLevel = errors.New("prestige requires max level")

	// ErrConflict surfaces after the bounded optimistic-retry budget is
	// spent. Transient: the caller may retry the whole action.
	ErrConflict = errors.New("concurrent progress update conflict")
)

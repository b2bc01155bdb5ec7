package store

import (
	"context"
	"errors"
	"time"

	"studyStrideAPI/internal/leaderboard"
	"studyStrideAPI/internal/progression"
)

var (
	// ErrVersionConflict means the progress row changed under an optimistic
	// commit. The service retries a bounded number of times.
	ErrVersionConflict = errors.New("progress version conflict")

	// ErrDuplicateEvent means another commit already holds this
	// (user, source) idempotency key. Not an error for the caller: the
	// service re-reads the stored event and returns its result verbatim.
	ErrDuplicateEvent = errors.New("duplicate xp event")
)

// Store persists progression state. Commits are atomic: the XP event, the
// progress row and any new badge/achievement rows land together or not at
// all, so a reader can never observe XP without its badge evaluation.
type Store interface {
	// GetProgress returns progression.ErrNotFound for unknown users.
	GetProgress(ctx context.Context, userID string) (*progression.UserProgress, error)

	// GetEvent looks up the idempotency key; returns progression.ErrNotFound
	// when the event has never been applied.
	GetEvent(ctx context.Context, userID, sourceID string) (*progression.XPGainEvent, error)

	// CommitGain writes the new progress state (conditional on
	// prog.Version matching the stored row; Version 0 means first insert),
	// appends the event, and records newly unlocked badges/achievements.
	CommitGain(ctx context.Context, prog *progression.UserProgress, event *progression.XPGainEvent, newBadges, newAchievements []string) error

	// CommitPrestige is CommitGain without an XP event.
	CommitPrestige(ctx context.Context, prog *progression.UserProgress, newBadges, newAchievements []string) error

	// Leaderboard is a cross-user read outside the per-user write path.
	// A zero `since` means all time; for the xp category a non-zero
	// `since` ranks by XP earned in the window.
	Leaderboard(ctx context.Context, category leaderboard.Category, since time.Time, limit int) ([]*leaderboard.Entry, error)
}

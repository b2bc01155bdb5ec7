package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"studyStrideAPI/internal/leaderboard"
	"studyStrideAPI/internal/progression"
	"studyStrideAPI/utils"
)

// MemoryStore keeps everything behind one mutex. It backs unit tests and
// local development without a database; the commit semantics (version CAS,
// idempotency-key uniqueness) match the postgres store exactly.
type MemoryStore struct {
	mu    sync.Mutex
	users map[string]*memUser
}

type memUser struct {
	prog   *progression.UserProgress
	events map[string]*progression.XPGainEvent // keyed by sourceID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]*memUser)}
}

func (m *MemoryStore) GetProgress(ctx context.Context, userID string) (*progression.UserProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return nil, progression.ErrNotFound
	}
	return u.prog.Clone(), nil
}

func (m *MemoryStore) GetEvent(ctx context.Context, userID, sourceID string) (*progression.XPGainEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return nil, progression.ErrNotFound
	}
	ev, ok := u.events[sourceID]
	if !ok {
		return nil, progression.ErrNotFound
	}
	cp := *ev
	return &cp, nil
}

func (m *MemoryStore) CommitGain(ctx context.Context, prog *progression.UserProgress, event *progression.XPGainEvent, newBadges, newAchievements []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, err := m.checkVersion(prog)
	if err != nil {
		return err
	}
	if _, dup := u.events[event.SourceID]; dup {
		return ErrDuplicateEvent
	}

	cp := *event
	u.events[event.SourceID] = &cp
	m.storeProgress(u, prog)
	return nil
}

func (m *MemoryStore) CommitPrestige(ctx context.Context, prog *progression.UserProgress, newBadges, newAchievements []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, err := m.checkVersion(prog)
	if err != nil {
		return err
	}
	m.storeProgress(u, prog)
	return nil
}

// checkVersion enforces the optimistic CAS: version 0 means "first insert",
// anything else must match the stored row.
func (m *MemoryStore) checkVersion(prog *progression.UserProgress) (*memUser, error) {
	u, exists := m.users[prog.UserID]
	if prog.Version == 0 {
		if exists {
			return nil, ErrVersionConflict
		}
		u = &memUser{events: make(map[string]*progression.XPGainEvent)}
		m.users[prog.UserID] = u
		return u, nil
	}
	if !exists || u.prog.Version != prog.Version {
		return nil, ErrVersionConflict
	}
	return u, nil
}

func (m *MemoryStore) storeProgress(u *memUser, prog *progression.UserProgress) {
	stored := prog.Clone()
	stored.Version = prog.Version + 1
	stored.UpdatedAt = time.Now().UTC()
	u.prog = stored
	prog.Version = stored.Version
}

func (m *MemoryStore) Leaderboard(ctx context.Context, category leaderboard.Category, since time.Time, limit int) ([]*leaderboard.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := make([]*leaderboard.Entry, 0, len(m.users))
	for id, u := range m.users {
		e := &leaderboard.Entry{
			UserID:        id,
			TotalXP:       u.prog.TotalXPEarned,
			Level:         u.prog.CurrentLevel,
			CurrentStreak: u.prog.CurrentStreak,
			BadgeCount:    len(u.prog.Badges),
		}
		if category == leaderboard.CategoryXP && !since.IsZero() {
			var sum int64
			for _, ev := range u.events {
				if !ev.CreatedAt.Before(since) {
					sum += ev.AppliedAmount
				}
			}
			e.TotalXP = sum
		}
		e.Score = utils.CalculateMomentumScore(e.CurrentStreak, e.TotalXP, e.BadgeCount)
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch category {
		case leaderboard.CategoryStreak:
			if a.CurrentStreak != b.CurrentStreak {
				return a.CurrentStreak > b.CurrentStreak
			}
		case leaderboard.CategoryBadges:
			if a.BadgeCount != b.BadgeCount {
				return a.BadgeCount > b.BadgeCount
			}
		case leaderboard.CategoryMomentum:
			if a.Score != b.Score {
				return a.Score > b.Score
			}
		default:
			if a.TotalXP != b.TotalXP {
				return a.TotalXP > b.TotalXP
			}
		}
		return a.UserID < b.UserID
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	for i, e := range entries {
		e.Rank = i + 1
	}
	return entries, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"studyStrideAPI/internal/achievement"
	"studyStrideAPI/internal/badge"
	"studyStrideAPI/internal/level"
	"studyStrideAPI/internal/progression"
	"studyStrideAPI/internal/store"
	"studyStrideAPI/internal/streak"
)

// maxCommitAttempts bounds the optimistic retry loop. Contention on a
// single user's row is rare (it means the same user gained XP from two
// requests at once), so a small budget is enough.
const maxCommitAttempts = 3

// ProgressionService is the engine core. All XP, level, streak, badge and
// achievement mutations flow through GainXP/Prestige; reads never mutate.
type ProgressionService struct {
	store        store.Store
	config       progression.Config
	badges       []badge.Definition
	badgeIndex   map[string]badge.Definition
	achievements []achievement.Definition
	notifier     *UnlockNotifier

	// now is swapped out in tests to walk through calendar days.
	now func() time.Time
}

// NewProgressionService validates every static catalog before serving
// traffic. A malformed catalog aborts startup instead of silently skipping
// definitions at evaluation time.
func NewProgressionService(st store.Store, notifier *UnlockNotifier) (*ProgressionService, error) {
	if err := level.Validate(); err != nil {
		return nil, fmt.Errorf("level catalog: %w", err)
	}
	badges := badge.Catalog()
	if err := badge.Validate(badges); err != nil {
		return nil, fmt.Errorf("badge catalog: %w", err)
	}
	achievements := achievement.Catalog()
	if err := achievement.Validate(achievements); err != nil {
		return nil, fmt.Errorf("achievement catalog: %w", err)
	}

	idx := badge.Index(badges)
	for _, d := range level.Catalog() {
		for _, id := range d.Rewards.BadgeIDs {
			if _, ok := idx[id]; !ok {
				return nil, fmt.Errorf("level %d rewards unknown badge %q", d.Level, id)
			}
		}
	}

	return &ProgressionService{
		store:        st,
		config:       progression.DefaultConfig(),
		badges:       badges,
		badgeIndex:   idx,
		achievements: achievements,
		notifier:     notifier,
		now:          time.Now,
	}, nil
}

// GainXP credits one action. (userID, sourceID) is the idempotency key: a
// replay returns the originally stored result without re-applying anything.
func (s *ProgressionService) GainXP(ctx context.Context, userID, sourceID string, sourceType progression.SourceType, rawAmount int64) (*progression.XPGainResult, error) {
	if rawAmount <= 0 {
		return nil, progression.ErrInvalidAmount
	}
	if !s.config.KnownSource(sourceType) {
		return nil, fmt.Errorf("%w: %q", progression.ErrUnknownSource, sourceType)
	}

	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		if prev, err := s.store.GetEvent(ctx, userID, sourceID); err == nil {
			idempotentReplaysTotal.Inc()
			return prev.Result, nil
		} else if !errors.Is(err, progression.ErrNotFound) {
			return nil, fmt.Errorf("failed to check xp event: %w", err)
		}

		prog, err := s.store.GetProgress(ctx, userID)
		if errors.Is(err, progression.ErrNotFound) {
			prog = progression.NewUserProgress(userID)
		} else if err != nil {
			return nil, fmt.Errorf("failed to load progress: %w", err)
		}

		result, event, newBadges, newAchievements := s.apply(prog, sourceID, sourceType, rawAmount)

		err = s.store.CommitGain(ctx, prog, event, newBadges, newAchievements)
		switch {
		case err == nil:
			s.recordGainMetrics(result, sourceType)
			s.notifier.NotifyGain(userID, result)
			return result, nil
		case errors.Is(err, store.ErrDuplicateEvent):
			// Lost the race against an identical request; its stored
			// result is the canonical one.
			prev, rerr := s.store.GetEvent(ctx, userID, sourceID)
			if rerr != nil {
				return nil, fmt.Errorf("failed to re-read duplicate event: %w", rerr)
			}
			idempotentReplaysTotal.Inc()
			return prev.Result, nil
		case errors.Is(err, store.ErrVersionConflict):
			writeConflictsTotal.Inc()
			time.Sleep(time.Duration(attempt) * 10 * time.Millisecond)
			continue
		default:
			return nil, fmt.Errorf("failed to commit xp gain: %w", err)
		}
	}

	log.Printf("GainXP for user %s exhausted %d attempts", userID, maxCommitAttempts)
	return nil, progression.ErrConflict
}

// apply mutates prog in memory with the full effect of one XP gain and
// returns the consolidated result plus the event row to persist. The caller
// owns atomicity; this function has no side effects outside prog.
func (s *ProgressionService) apply(prog *progression.UserProgress, sourceID string, sourceType progression.SourceType, rawAmount int64) (*progression.XPGainResult, *progression.XPGainEvent, []string, []string) {
	now := s.now().UTC()

	// The streak multiplier reads the streak as it stood before this
	// action: the bonus pays for showing up yesterday, not today.
	multiplier := s.config.SourceMultipliers[sourceType] * progression.StreakMultiplier(prog.CurrentStreak)
	applied := int64(math.Round(float64(rawAmount) * multiplier))

	prog.TotalXPEarned += applied
	prog.CycleXP += applied

	oldLevel := prog.CurrentLevel
	newLevel, _, _, _ := level.LevelOf(prog.CycleXP)
	prog.CurrentLevel = newLevel

	result := &progression.XPGainResult{
		XPGained:             applied,
		Multiplier:           multiplier,
		UnlockedBadges:       []progression.BadgeUnlockedEvent{},
		UnlockedAchievements: []progression.AchievementUnlockedEvent{},
	}

	var rewardBadgeIDs []string
	for lvl := oldLevel + 1; lvl <= newLevel; lvl++ {
		def := level.DefinitionFor(lvl)
		if def == nil {
			log.Printf("level %d has no definition, skipping rewards", lvl)
			continue
		}
		result.LevelUps = append(result.LevelUps, progression.LevelUpEvent{
			NewLevel: lvl,
			Tier:     string(def.Tier),
			Rewards:  def.Rewards,
		})
		rewardBadgeIDs = append(rewardBadgeIDs, def.Rewards.BadgeIDs...)
	}
	if newLevel > oldLevel {
		result.LeveledUp = true
		result.NewLevel = newLevel
	}

	if s.config.StreakEligible[sourceType] {
		st, newDay := streak.Advance(streak.State{
			Current:       prog.CurrentStreak,
			Longest:       prog.LongestStreak,
			LastActiveDay: prog.LastActiveDay,
		}, now)
		prog.CurrentStreak = st.Current
		prog.LongestStreak = st.Longest
		prog.LastActiveDay = st.LastActiveDay
		if newDay {
			prog.Bump(progression.CounterActiveDays, 1)
		}
	}

	prog.Bump(progression.ActionCounter(sourceType), 1)
	if now.Hour() < 8 {
		prog.Bump(progression.CounterEarlyBird, 1)
	}
	if now.Hour() >= 22 {
		prog.Bump(progression.CounterNightOwl, 1)
	}

	var newBadges []string
	for _, id := range rewardBadgeIDs {
		if s.grantBadge(prog, id, now, result) {
			newBadges = append(newBadges, id)
		}
	}
	for _, d := range badge.Unlocks(s.badges, prog) {
		if s.grantBadge(prog, d.ID, now, result) {
			newBadges = append(newBadges, d.ID)
		}
	}

	var newAchievements []string
	for _, d := range achievement.Unlocks(s.achievements, prog) {
		prog.Achievements[d.ID] = now
		newAchievements = append(newAchievements, d.ID)
		result.UnlockedAchievements = append(result.UnlockedAchievements, progression.AchievementUnlockedEvent{
			AchievementID: d.ID,
			Name:          d.Name,
		})
	}

	prog.UpdatedAt = now

	result.TotalXP = prog.TotalXPEarned
	result.Level = prog.CurrentLevel
	result.CurrentStreak = prog.CurrentStreak
	result.LongestStreak = prog.LongestStreak

	event := &progression.XPGainEvent{
		ID:            uuid.New(),
		UserID:        prog.UserID,
		SourceID:      sourceID,
		SourceType:    sourceType,
		RawAmount:     rawAmount,
		Multiplier:    multiplier,
		AppliedAmount: applied,
		Result:        result,
		CreatedAt:     now,
	}
	return result, event, newBadges, newAchievements
}

// grantBadge adds one badge to the progress record and the result. Returns
// false when the badge is already owned or unknown to the catalog.
func (s *ProgressionService) grantBadge(prog *progression.UserProgress, id string, at time.Time, result *progression.XPGainResult) bool {
	if _, owned := prog.Badges[id]; owned {
		return false
	}
	def, ok := s.badgeIndex[id]
	if !ok {
		log.Printf("badge %s not in catalog, skipping grant", id)
		return false
	}
	prog.Badges[id] = at
	prog.Bump(progression.CounterBadgesEarned, 1)
	result.UnlockedBadges = append(result.UnlockedBadges, progression.BadgeUnlockedEvent{
		BadgeID: def.ID,
		Name:    def.Name,
		Rarity:  string(def.Rarity),
	})
	return true
}

func (s *ProgressionService) recordGainMetrics(result *progression.XPGainResult, sourceType progression.SourceType) {
	xpGainedTotal.WithLabelValues(string(sourceType)).Add(float64(result.XPGained))
	levelUpsTotal.Add(float64(len(result.LevelUps)))
	for _, b := range result.UnlockedBadges {
		badgesUnlockedTotal.WithLabelValues(b.Rarity).Inc()
	}
}

// Prestige resets the level cycle for a max-level user. Lifetime XP,
// streaks, badges, achievements and counters all survive; only the cycle
// XP and the level reset.
func (s *ProgressionService) Prestige(ctx context.Context, userID string) (*progression.PrestigeResult, error) {
	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		prog, err := s.store.GetProgress(ctx, userID)
		if err != nil {
			return nil, err
		}
		if prog.CurrentLevel != level.MaxLevel {
			return nil, progression.ErrNotMaxLevel
		}

		now := s.now().UTC()
		prog.CycleXP = 0
		prog.CurrentLevel = 1
		prog.PrestigeLevel++
		prog.Bump(progression.CounterPrestige, 1)
		prog.UpdatedAt = now

		result := &progression.PrestigeResult{
			UnlockedBadges:       []progression.BadgeUnlockedEvent{},
			UnlockedAchievements: []progression.AchievementUnlockedEvent{},
		}

		gainShim := &progression.XPGainResult{}
		var newBadges []string
		for _, d := range badge.Unlocks(s.badges, prog) {
			if s.grantBadge(prog, d.ID, now, gainShim) {
				newBadges = append(newBadges, d.ID)
			}
		}
		result.UnlockedBadges = gainShim.UnlockedBadges

		var newAchievements []string
		for _, d := range achievement.Unlocks(s.achievements, prog) {
			prog.Achievements[d.ID] = now
			newAchievements = append(newAchievements, d.ID)
			result.UnlockedAchievements = append(result.UnlockedAchievements, progression.AchievementUnlockedEvent{
				AchievementID: d.ID,
				Name:          d.Name,
			})
		}

		result.PrestigeLevel = prog.PrestigeLevel
		result.Level = prog.CurrentLevel
		result.TotalXP = prog.TotalXPEarned

		err = s.store.CommitPrestige(ctx, prog, newBadges, newAchievements)
		switch {
		case err == nil:
			for _, b := range result.UnlockedBadges {
				badgesUnlockedTotal.WithLabelValues(b.Rarity).Inc()
			}
			return result, nil
		case errors.Is(err, store.ErrVersionConflict):
			writeConflictsTotal.Inc()
			time.Sleep(time.Duration(attempt) * 10 * time.Millisecond)
			continue
		default:
			return nil, fmt.Errorf("failed to commit prestige: %w", err)
		}
	}

	log.Printf("Prestige for user %s exhausted %d attempts", userID, maxCommitAttempts)
	return nil, progression.ErrConflict
}

// ProgressView decorates the stored record with derived curve positions so
// clients never reconstruct the growth formula.
type ProgressView struct {
	*progression.UserProgress
	Tier           level.Tier `json:"tier"`
	XPIntoLevel    int64      `json:"xp_into_level"`
	XPForNextLevel int64      `json:"xp_for_next_level"`
}

func (s *ProgressionService) GetProgress(ctx context.Context, userID string) (*ProgressView, error) {
	prog, err := s.store.GetProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	lvl, tier, into, forNext := level.LevelOf(prog.CycleXP)
	if lvl != prog.CurrentLevel {
		log.Printf("user %s stored level %d disagrees with curve level %d", userID, prog.CurrentLevel, lvl)
	}
	return &ProgressView{
		UserProgress:   prog,
		Tier:           tier,
		XPIntoLevel:    into,
		XPForNextLevel: forNext,
	}, nil
}

// BadgeStatus is one catalog entry as seen by a specific user. Hidden
// badges the user has not unlocked are excluded from listings entirely.
type BadgeStatus struct {
	badge.Definition
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}

// GetBadgeCatalog lists the catalog annotated with the user's unlocks. An
// unknown user sees the public catalog with everything locked.
func (s *ProgressionService) GetBadgeCatalog(ctx context.Context, userID string) ([]BadgeStatus, error) {
	owned := map[string]time.Time{}
	prog, err := s.store.GetProgress(ctx, userID)
	if err == nil {
		owned = prog.Badges
	} else if !errors.Is(err, progression.ErrNotFound) {
		return nil, err
	}

	out := make([]BadgeStatus, 0, len(s.badges))
	for _, d := range s.badges {
		at, unlocked := owned[d.ID]
		if d.Hidden && !unlocked {
			continue
		}
		bs := BadgeStatus{Definition: d, Unlocked: unlocked}
		if unlocked {
			t := at
			bs.UnlockedAt = &t
		}
		out = append(out, bs)
	}
	return out, nil
}

// AchievementStatus mirrors BadgeStatus for the achievement catalog.
type AchievementStatus struct {
	achievement.Definition
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}

func (s *ProgressionService) GetAchievementCatalog(ctx context.Context, userID string) ([]AchievementStatus, error) {
	owned := map[string]time.Time{}
	prog, err := s.store.GetProgress(ctx, userID)
	if err == nil {
		owned = prog.Achievements
	} else if !errors.Is(err, progression.ErrNotFound) {
		return nil, err
	}

	out := make([]AchievementStatus, 0, len(s.achievements))
	for _, d := range s.achievements {
		at, unlocked := owned[d.ID]
		as := AchievementStatus{Definition: d, Unlocked: unlocked}
		if unlocked {
			t := at
			as.UnlockedAt = &t
		}
		out = append(out, as)
	}
	return out, nil
}

// GetLevelCatalog returns the full static curve.
func (s *ProgressionService) GetLevelCatalog() []level.Definition {
	return level.Catalog()
}

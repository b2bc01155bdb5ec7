package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"studyStrideAPI/internal/badge"
	"studyStrideAPI/internal/notification"
	"studyStrideAPI/internal/progression"
)

type PushProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

// UnlockNotifier turns GainXP results into push notifications. It runs off
// the request path: the engine commits first, then enqueues fire-and-forget
// jobs. A dropped notification never affects progression state.
type UnlockNotifier struct {
	db           *pgxpool.Pool
	pushProvider PushProvider
	workers      int
	jobQueue     chan *notification.Push
	stopChan     chan struct{}
	wg           sync.WaitGroup
}

func NewUnlockNotifier(db *pgxpool.Pool) *UnlockNotifier {
	n := &UnlockNotifier{
		db:       db,
		workers:  5,
		jobQueue: make(chan *notification.Push, 100),
		stopChan: make(chan struct{}),
	}
	n.startWorkers()
	return n
}

// SetPushProvider injects the FCM provider from main.go. Without one the
// notifier logs and drops jobs.
func (n *UnlockNotifier) SetPushProvider(provider PushProvider) {
	n.pushProvider = provider
}

func (n *UnlockNotifier) startWorkers() {
	for i := 0; i < n.workers; i++ {
		n.wg.Add(1)
		go n.worker()
	}
}

func (n *UnlockNotifier) worker() {
	defer n.wg.Done()
	for {
		select {
		case job := <-n.jobQueue:
			n.processJob(job)
		case <-n.stopChan:
			return
		}
	}
}

func (n *UnlockNotifier) processJob(job *notification.Push) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if n.pushProvider == nil {
		log.Printf("Skipping push for user %s: no provider configured", job.UserID)
		return
	}

	tokens, err := n.deviceTokens(ctx, job.UserID)
	if err != nil {
		log.Printf("Failed to load device tokens for user %s: %v", job.UserID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	if err := n.pushProvider.SendPush(ctx, tokens, job.Title, job.Body, job.Data); err != nil {
		log.Printf("Push failed for user %s: %v", job.UserID, err)
	}
}

// NotifyGain enqueues pushes for the milestone events in one gain result.
// Level-ups always notify; badges only from rare upward so a catalog full
// of common unlocks doesn't spam the user. Safe on a nil receiver so the
// engine can run without a notifier in tests.
func (n *UnlockNotifier) NotifyGain(userID string, result *progression.XPGainResult) {
	if n == nil {
		return
	}

	for _, lu := range result.LevelUps {
		n.enqueue(&notification.Push{
			UserID: userID,
			Title:  fmt.Sprintf("Level %d reached!", lu.NewLevel),
			Body:   fmt.Sprintf("You're now in the %s tier. Keep it going!", lu.Tier),
			Data:   map[string]any{"type": "level_up", "level": lu.NewLevel},
		})
	}

	for _, b := range result.UnlockedBadges {
		if !notifyRarity(badge.Rarity(b.Rarity)) {
			continue
		}
		n.enqueue(&notification.Push{
			UserID: userID,
			Title:  "Badge unlocked!",
			Body:   fmt.Sprintf("%s (%s)", b.Name, b.Rarity),
			Data:   map[string]any{"type": "badge_unlocked", "badge_id": b.BadgeID},
		})
	}

	for _, a := range result.UnlockedAchievements {
		n.enqueue(&notification.Push{
			UserID: userID,
			Title:  "Achievement unlocked!",
			Body:   a.Name,
			Data:   map[string]any{"type": "achievement_unlocked", "achievement_id": a.AchievementID},
		})
	}
}

func notifyRarity(r badge.Rarity) bool {
	switch r {
	case badge.RarityRare, badge.RarityEpic, badge.RarityLegendary, badge.RarityMythic:
		return true
	}
	return false
}

func (n *UnlockNotifier) enqueue(p *notification.Push) {
	select {
	case n.jobQueue <- p:
	default:
		log.Printf("Notification queue full, dropping push for user %s", p.UserID)
	}
}

func (n *UnlockNotifier) deviceTokens(ctx context.Context, userID string) ([]notification.DeviceToken, error) {
	rows, err := n.db.Query(ctx, `
		SELECT user_id, token, platform, created_at
		FROM device_tokens
		WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []notification.DeviceToken
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.UserID, &t.Token, &t.Platform, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

// RegisterDevice upserts one push token for a user.
func (n *UnlockNotifier) RegisterDevice(ctx context.Context, userID, token, platform string) error {
	_, err := n.db.Exec(ctx, `
		INSERT INTO device_tokens (user_id, token, platform, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (token) DO UPDATE SET user_id = $1, platform = $3`,
		userID, token, platform)
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

// UnregisterDevice removes a token, e.g. on logout.
func (n *UnlockNotifier) UnregisterDevice(ctx context.Context, userID, token string) error {
	_, err := n.db.Exec(ctx, `
		DELETE FROM device_tokens WHERE user_id = $1 AND token = $2`,
		userID, token)
	if err != nil {
		return fmt.Errorf("failed to unregister device: %w", err)
	}
	return nil
}

// Stop drains the workers. Called on graceful shutdown.
func (n *UnlockNotifier) Stop() {
	if n == nil {
		return
	}
	close(n.stopChan)
	n.wg.Wait()
}

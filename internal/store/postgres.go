package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"studyStrideAPI/internal/leaderboard"
	"studyStrideAPI/internal/progression"
)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetProgress(ctx context.Context, userID string) (*progression.UserProgress, error) {
	query := `
	SELECT user_id, total_xp_earned, cycle_xp, current_level, prestige_level,
	       current_streak, longest_streak, last_active_day, counters, version,
	       created_at, updated_at
	FROM user_progress
	WHERE user_id = $1
	`

	prog := &progression.UserProgress{}
	var countersRaw []byte
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&prog.UserID,
		&prog.TotalXPEarned,
		&prog.CycleXP,
		&prog.CurrentLevel,
		&prog.PrestigeLevel,
		&prog.CurrentStreak,
		&prog.LongestStreak,
		&prog.LastActiveDay,
		&countersRaw,
		&prog.Version,
		&prog.CreatedAt,
		&prog.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, progression.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	prog.Counters = make(map[string]int64)
	if len(countersRaw) > 0 {
		if err := json.Unmarshal(countersRaw, &prog.Counters); err != nil {
			return nil, fmt.Errorf("failed to decode counters for %s: %w", userID, err)
		}
	}

	prog.Badges, err = s.loadUnlocks(ctx, "user_badges", "badge_id", userID)
	if err != nil {
		return nil, err
	}
	prog.Achievements, err = s.loadUnlocks(ctx, "user_achievements", "achievement_id", userID)
	if err != nil {
		return nil, err
	}

	return prog, nil
}

func (s *PostgresStore) loadUnlocks(ctx context.Context, table, idColumn, userID string) (map[string]time.Time, error) {
	query := fmt.Sprintf(`SELECT %s, unlocked_at FROM %s WHERE user_id = $1`, idColumn, table)

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", table, err)
	}
	defer rows.Close()

	unlocks := make(map[string]time.Time)
	for rows.Next() {
		var id string
		var at time.Time
		if err := rows.Scan(&id, &at); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		unlocks[id] = at
	}
	return unlocks, rows.Err()
}

func (s *PostgresStore) GetEvent(ctx context.Context, userID, sourceID string) (*progression.XPGainEvent, error) {
	query := `
	SELECT id, user_id, source_id, source_type, raw_amount, multiplier,
	       applied_amount, result, created_at
	FROM xp_events
	WHERE user_id = $1 AND source_id = $2
	`

	ev := &progression.XPGainEvent{}
	var resultRaw []byte
	err := s.db.QueryRow(ctx, query, userID, sourceID).Scan(
		&ev.ID,
		&ev.UserID,
		&ev.SourceID,
		&ev.SourceType,
		&ev.RawAmount,
		&ev.Multiplier,
		&ev.AppliedAmount,
		&resultRaw,
		&ev.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, progression.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get xp event: %w", err)
	}

	if len(resultRaw) > 0 {
		ev.Result = &progression.XPGainResult{}
		if err := json.Unmarshal(resultRaw, ev.Result); err != nil {
			return nil, fmt.Errorf("failed to decode stored result: %w", err)
		}
	}
	return ev, nil
}

func (s *PostgresStore) CommitGain(ctx context.Context, prog *progression.UserProgress, event *progression.XPGainEvent, newBadges, newAchievements []string) error {
	return s.commit(ctx, prog, event, newBadges, newAchievements)
}

func (s *PostgresStore) CommitPrestige(ctx context.Context, prog *progression.UserProgress, newBadges, newAchievements []string) error {
	return s.commit(ctx, prog, nil, newBadges, newAchievements)
}

// commit writes the progress row, the optional XP event and unlock rows in
// one transaction. Version 0 inserts; anything else is a conditional update
// on the stored version.
func (s *PostgresStore) commit(ctx context.Context, prog *progression.UserProgress, event *progression.XPGainEvent, newBadges, newAchievements []string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	countersRaw, err := json.Marshal(prog.Counters)
	if err != nil {
		return fmt.Errorf("failed to encode counters: %w", err)
	}

	if prog.Version == 0 {
		insert := `
		INSERT INTO user_progress (user_id, total_xp_earned, cycle_xp, current_level,
			prestige_level, current_streak, longest_streak, last_active_day,
			counters, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1, NOW(), NOW())
		`
		_, err = tx.Exec(ctx, insert,
			prog.UserID, prog.TotalXPEarned, prog.CycleXP, prog.CurrentLevel,
			prog.PrestigeLevel, prog.CurrentStreak, prog.LongestStreak,
			prog.LastActiveDay, countersRaw,
		)
		if err != nil {
			if isUniqueViolation(err) {
				// Another request created the row first; retry from a
				// fresh read.
				return ErrVersionConflict
			}
			return fmt.Errorf("failed to insert progress: %w", err)
		}
	} else {
		update := `
		UPDATE user_progress
		SET total_xp_earned = $2, cycle_xp = $3, current_level = $4,
		    prestige_level = $5, current_streak = $6, longest_streak = $7,
		    last_active_day = $8, counters = $9, version = version + 1,
		    updated_at = NOW()
		WHERE user_id = $1 AND version = $10
		`
		res, err := tx.Exec(ctx, update,
			prog.UserID, prog.TotalXPEarned, prog.CycleXP, prog.CurrentLevel,
			prog.PrestigeLevel, prog.CurrentStreak, prog.LongestStreak,
			prog.LastActiveDay, countersRaw, prog.Version,
		)
		if err != nil {
			return fmt.Errorf("failed to update progress: %w", err)
		}
		if res.RowsAffected() == 0 {
			return ErrVersionConflict
		}
	}

	if event != nil {
		resultRaw, err := json.Marshal(event.Result)
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		insertEvent := `
		INSERT INTO xp_events (id, user_id, source_id, source_type, raw_amount,
			multiplier, applied_amount, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`
		_, err = tx.Exec(ctx, insertEvent,
			event.ID, event.UserID, event.SourceID, event.SourceType,
			event.RawAmount, event.Multiplier, event.AppliedAmount,
			resultRaw, event.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateEvent
			}
			return fmt.Errorf("failed to insert xp event: %w", err)
		}
	}

	if err := s.insertUnlocks(ctx, tx, "user_badges", "badge_id", prog.UserID, newBadges); err != nil {
		return err
	}
	if err := s.insertUnlocks(ctx, tx, "user_achievements", "achievement_id", prog.UserID, newAchievements); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	prog.Version++
	return nil
}

func (s *PostgresStore) insertUnlocks(ctx context.Context, tx pgx.Tx, table, idColumn, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, %s, unlocked_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, %s) DO NOTHING
	`, table, idColumn, idColumn)

	for _, id := range ids {
		if _, err := tx.Exec(ctx, query, userID, id); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *PostgresStore) Leaderboard(ctx context.Context, category leaderboard.Category, since time.Time, limit int) ([]*leaderboard.Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	// Momentum mirrors utils.CalculateMomentumScore; the expressions must
	// stay in sync.
	orderBy := "total_xp DESC"
	switch category {
	case leaderboard.CategoryStreak:
		orderBy = "current_streak DESC, total_xp DESC"
	case leaderboard.CategoryBadges:
		orderBy = "badge_count DESC, total_xp DESC"
	case leaderboard.CategoryMomentum:
		orderBy = "score DESC"
	}

	xpExpr := "p.total_xp_earned"
	args := []any{limit}
	if category == leaderboard.CategoryXP && !since.IsZero() {
		xpExpr = `COALESCE((
			SELECT SUM(e.applied_amount) FROM xp_events e
			WHERE e.user_id = p.user_id AND e.created_at >= $2
		), 0)`
		args = append(args, since)
	}

	query := fmt.Sprintf(`
	SELECT user_id, total_xp, current_level, current_streak, badge_count,
	       (POWER(current_streak, 2) * 0.3 + total_xp * 0.05 + badge_count * 1.0) AS score
	FROM (
		SELECT p.user_id,
		       %s AS total_xp,
		       p.current_level,
		       p.current_streak,
		       (SELECT COUNT(*) FROM user_badges b WHERE b.user_id = p.user_id) AS badge_count
		FROM user_progress p
	) ranked
	ORDER BY %s, user_id ASC
	LIMIT $1
	`, xpExpr, orderBy)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []*leaderboard.Entry
	rank := 0
	for rows.Next() {
		e := &leaderboard.Entry{}
		if err := rows.Scan(&e.UserID, &e.TotalXP, &e.Level, &e.CurrentStreak, &e.BadgeCount, &e.Score); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		rank++
		e.Rank = rank
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

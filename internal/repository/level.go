package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"discord-companion-bot/internal/model"
)

// LevelRepository persists per-user XP state for both streams.
type LevelRepository struct {
	pool *pgxpool.Pool
}

// NewLevelRepository creates a new LevelRepository instance.
func NewLevelRepository(pool *pgxpool.Pool) *LevelRepository {
	return &LevelRepository{pool: pool}
}

const levelColumns = "user_id, xp, level, total_messages, last_xp_gain, voice_time"

// GetOrCreate returns the level state for a user, creating a level-1
// row on first contact.
func (r *LevelRepository) GetOrCreate(ctx context.Context, userID string) (*model.LevelState, error) {
	const query = `
		INSERT INTO user_levels (user_id, xp, level, total_messages, voice_time)
		VALUES ($1, 0, 1, 0, 0)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING ` + levelColumns

	var state model.LevelState
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&state.UserID,
		&state.XP,
		&state.Level,
		&state.TotalMessages,
		&state.LastXPGain,
		&state.VoiceTime,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get level state: %w", err)
	}
	return &state, nil
}

// AddTextXP adds message XP, bumps the message counter, records the
// gain time, and stores the recomputed level. Returns the new state.
func (r *LevelRepository) AddTextXP(ctx context.Context, userID string, xp int64, newLevel int, gainedAt time.Time) (*model.LevelState, error) {
	const query = `
		UPDATE user_levels
		SET xp = xp + $2, level = $3, total_messages = total_messages + 1, last_xp_gain = $4
		WHERE user_id = $1
		RETURNING ` + levelColumns

	var state model.LevelState
	err := r.pool.QueryRow(ctx, query, userID, xp, newLevel, gainedAt).Scan(
		&state.UserID,
		&state.XP,
		&state.Level,
		&state.TotalMessages,
		&state.LastXPGain,
		&state.VoiceTime,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add text xp: %w", err)
	}
	return &state, nil
}

// AddVoiceXP adds session XP and accumulated voice seconds.
func (r *LevelRepository) AddVoiceXP(ctx context.Context, userID string, xp int64, newLevel int, seconds int64) (*model.LevelState, error) {
	const query = `
		UPDATE user_levels
		SET xp = xp + $2, level = $3, voice_time = voice_time + $4
		WHERE user_id = $1
		RETURNING ` + levelColumns

	var state model.LevelState
	err := r.pool.QueryRow(ctx, query, userID, xp, newLevel, seconds).Scan(
		&state.UserID,
		&state.XP,
		&state.Level,
		&state.TotalMessages,
		&state.LastXPGain,
		&state.VoiceTime,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add voice xp: %w", err)
	}
	return &state, nil
}

// GetTopByXP returns the highest-XP users for the level leaderboard.
func (r *LevelRepository) GetTopByXP(ctx context.Context, limit int) ([]*model.LevelState, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+levelColumns+`
		FROM user_levels
		ORDER BY xp DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get level leaderboard: %w", err)
	}
	defer rows.Close()

	var states []*model.LevelState
	for rows.Next() {
		var state model.LevelState
		err := rows.Scan(&state.UserID, &state.XP, &state.Level, &state.TotalMessages, &state.LastXPGain, &state.VoiceTime)
		if err != nil {
			return nil, fmt.Errorf("failed to scan level state: %w", err)
		}
		states = append(states, &state)
	}
	return states, rows.Err()
}

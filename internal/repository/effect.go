package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"discord-companion-bot/internal/model"
)

// EffectRepository handles per-user active modifiers with expiry and
// remaining-use counters.
type EffectRepository struct {
	pool *pgxpool.Pool
}

// NewEffectRepository creates a new EffectRepository instance.
func NewEffectRepository(pool *pgxpool.Pool) *EffectRepository {
	return &EffectRepository{pool: pool}
}

// Grant installs an effect for a user, replacing any existing effect of
// the same kind. Either durationMinutes or uses may be nil.
func (r *EffectRepository) Grant(ctx context.Context, userID, effectType string, durationMinutes *int, uses *int) (*model.ActiveEffect, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin effect tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// A user holds at most one live effect per kind; newer replaces older.
	_, err = tx.Exec(ctx, `
		DELETE FROM active_effects WHERE user_id = $1 AND effect_type = $2
	`, userID, effectType)
	if err != nil {
		return nil, fmt.Errorf("failed to replace effect: %w", err)
	}

	var expiresAt *time.Time
	if durationMinutes != nil {
		t := time.Now().Add(time.Duration(*durationMinutes) * time.Minute)
		expiresAt = &t
	}

	var effect model.ActiveEffect
	err = tx.QueryRow(ctx, `
		INSERT INTO active_effects (user_id, effect_type, duration_minutes, uses_remaining, created_at, expires_at)
		VALUES ($1, $2, $3, $4, NOW(), $5)
		RETURNING id, user_id, effect_type, duration_minutes, uses_remaining, created_at, expires_at
	`, userID, effectType, durationMinutes, uses, expiresAt).Scan(
		&effect.ID,
		&effect.UserID,
		&effect.EffectType,
		&effect.DurationMinutes,
		&effect.UsesRemaining,
		&effect.CreatedAt,
		&effect.ExpiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to grant effect: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit effect tx: %w", err)
	}
	return &effect, nil
}

// GetLive returns the live effect of a kind for a user, or nil.
// Expired and exhausted effects are filtered on read.
func (r *EffectRepository) GetLive(ctx context.Context, userID, effectType string) (*model.ActiveEffect, error) {
	var effect model.ActiveEffect
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, effect_type, duration_minutes, uses_remaining, created_at, expires_at
		FROM active_effects
		WHERE user_id = $1 AND effect_type = $2
		  AND (expires_at IS NULL OR expires_at > NOW())
		  AND (uses_remaining IS NULL OR uses_remaining > 0)
	`, userID, effectType).Scan(
		&effect.ID,
		&effect.UserID,
		&effect.EffectType,
		&effect.DurationMinutes,
		&effect.UsesRemaining,
		&effect.CreatedAt,
		&effect.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get effect: %w", err)
	}
	return &effect, nil
}

// ListLive returns all live effects for a user.
func (r *EffectRepository) ListLive(ctx context.Context, userID string) ([]model.ActiveEffect, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, effect_type, duration_minutes, uses_remaining, created_at, expires_at
		FROM active_effects
		WHERE user_id = $1
		  AND (expires_at IS NULL OR expires_at > NOW())
		  AND (uses_remaining IS NULL OR uses_remaining > 0)
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list effects: %w", err)
	}
	defer rows.Close()

	var effects []model.ActiveEffect
	for rows.Next() {
		var e model.ActiveEffect
		err := rows.Scan(&e.ID, &e.UserID, &e.EffectType, &e.DurationMinutes, &e.UsesRemaining, &e.CreatedAt, &e.ExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan effect: %w", err)
		}
		effects = append(effects, e)
	}
	return effects, rows.Err()
}

// ConsumeUse decrements a use-counted effect, deleting it at zero.
// Returns false when no live use-counted effect of the kind exists.
// Duration-only effects are never decremented.
func (r *EffectRepository) ConsumeUse(ctx context.Context, userID, effectType string) (bool, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE active_effects
		SET uses_remaining = uses_remaining - 1
		WHERE user_id = $1 AND effect_type = $2
		  AND uses_remaining IS NOT NULL AND uses_remaining > 0
		  AND (expires_at IS NULL OR expires_at > NOW())
	`, userID, effectType)
	if err != nil {
		return false, fmt.Errorf("failed to consume effect use: %w", err)
	}
	if result.RowsAffected() == 0 {
		return false, nil
	}

	_, err = r.pool.Exec(ctx, `
		DELETE FROM active_effects
		WHERE user_id = $1 AND effect_type = $2 AND uses_remaining IS NOT NULL AND uses_remaining <= 0
	`, userID, effectType)
	if err != nil {
		return false, fmt.Errorf("failed to prune exhausted effect: %w", err)
	}
	return true, nil
}

// DeleteExpired removes effects past their expiry. Returns rows removed.
func (r *EffectRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM active_effects WHERE expires_at IS NOT NULL AND expires_at <= NOW()
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired effects: %w", err)
	}
	return result.RowsAffected(), nil
}

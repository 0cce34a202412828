package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CooldownRepository persists (user, action) last-use timestamps.
type CooldownRepository struct {
	pool *pgxpool.Pool
}

// NewCooldownRepository creates a new CooldownRepository instance.
func NewCooldownRepository(pool *pgxpool.Pool) *CooldownRepository {
	return &CooldownRepository{pool: pool}
}

// GetLastUsed returns the last-use time for an action, or ok=false when
// the user has never used it.
func (r *CooldownRepository) GetLastUsed(ctx context.Context, userID, actionType string) (time.Time, bool, error) {
	var lastUsed time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT last_used FROM cooldowns WHERE user_id = $1 AND action_type = $2
	`, userID, actionType).Scan(&lastUsed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("failed to get cooldown: %w", err)
	}
	return lastUsed, true, nil
}

// SetLastUsed records the use of an action at the given time.
func (r *CooldownRepository) SetLastUsed(ctx context.Context, userID, actionType string, usedAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO cooldowns (user_id, action_type, last_used)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, action_type)
		DO UPDATE SET last_used = $3
	`, userID, actionType, usedAt)
	if err != nil {
		return fmt.Errorf("failed to set cooldown: %w", err)
	}
	return nil
}

// Clear removes the cooldown record for an action.
func (r *CooldownRepository) Clear(ctx context.Context, userID, actionType string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM cooldowns WHERE user_id = $1 AND action_type = $2
	`, userID, actionType)
	if err != nil {
		return fmt.Errorf("failed to clear cooldown: %w", err)
	}
	return nil
}

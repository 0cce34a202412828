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

// ErrDropChannelNotFound is returned when no registered channel matches.
var ErrDropChannelNotFound = errors.New("drop channel not found")

// DropRepository handles coin-drop channels, records, and per-user
// aggregate stats.
type DropRepository struct {
	pool *pgxpool.Pool
}

// NewDropRepository creates a new DropRepository instance.
func NewDropRepository(pool *pgxpool.Pool) *DropRepository {
	return &DropRepository{pool: pool}
}

// RegisterChannel adds a channel to the drop rotation. Registering the
// same (guild, channel) pair twice is a no-op.
func (r *DropRepository) RegisterChannel(ctx context.Context, guildID, channelID, createdBy string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO drop_channels (guild_id, channel_id, created_by, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (guild_id, channel_id) DO NOTHING
	`, guildID, channelID, createdBy)
	if err != nil {
		return fmt.Errorf("failed to register drop channel: %w", err)
	}
	return nil
}

// UnregisterChannel removes a channel from the rotation.
func (r *DropRepository) UnregisterChannel(ctx context.Context, guildID, channelID string) error {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM drop_channels WHERE guild_id = $1 AND channel_id = $2
	`, guildID, channelID)
	if err != nil {
		return fmt.Errorf("failed to unregister drop channel: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrDropChannelNotFound
	}
	return nil
}

// ListChannels returns every registered drop channel.
func (r *DropRepository) ListChannels(ctx context.Context) ([]model.DropChannel, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, guild_id, channel_id, created_by, created_at
		FROM drop_channels
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list drop channels: %w", err)
	}
	defer rows.Close()

	var channels []model.DropChannel
	for rows.Next() {
		var c model.DropChannel
		if err := rows.Scan(&c.ID, &c.GuildID, &c.ChannelID, &c.CreatedBy, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan drop channel: %w", err)
		}
		channels = append(channels, c)
	}
	return channels, rows.Err()
}

// CreateRecord appends one drop event row. Creation records carry
// model.SystemUserID; claim records carry the claimer.
func (r *DropRepository) CreateRecord(ctx context.Context, guildID, userID string, amount int64, rarity, collectionType string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO drop_stats (guild_id, user_id, amount, rarity, collection_type, drop_timestamp)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, guildID, userID, amount, rarity, collectionType)
	if err != nil {
		return fmt.Errorf("failed to create drop record: %w", err)
	}
	return nil
}

// rarityColumn maps a rarity to its per-rarity counter column.
func rarityColumn(rarity string) (string, error) {
	switch rarity {
	case "common":
		return "common_drops", nil
	case "rare":
		return "rare_drops", nil
	case "epic":
		return "epic_drops", nil
	case "legendary":
		return "legendary_drops", nil
	default:
		return "", fmt.Errorf("unknown rarity %q", rarity)
	}
}

// RecordClaim updates a user's aggregate drop stats for one claim:
// totals, per-rarity count, best drop, and last-drop timestamp.
func (r *DropRepository) RecordClaim(ctx context.Context, userID string, amount int64, rarity string, claimedAt time.Time) error {
	column, err := rarityColumn(rarity)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO user_drop_stats (user_id, total_collected, total_drops, %[1]s, last_drop, best_drop)
		VALUES ($1, $2, 1, 1, $3, $2)
		ON CONFLICT (user_id) DO UPDATE SET
			total_collected = user_drop_stats.total_collected + $2,
			total_drops = user_drop_stats.total_drops + 1,
			%[1]s = user_drop_stats.%[1]s + 1,
			last_drop = $3,
			best_drop = GREATEST(user_drop_stats.best_drop, $2)
	`, column)

	if _, err := r.pool.Exec(ctx, query, userID, amount, claimedAt); err != nil {
		return fmt.Errorf("failed to record drop claim: %w", err)
	}
	return nil
}

// GetStats returns a user's aggregate drop stats, or zeros if none.
func (r *DropRepository) GetStats(ctx context.Context, userID string) (*model.UserDropStats, error) {
	var stats model.UserDropStats
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, total_collected, total_drops, common_drops, rare_drops,
		       epic_drops, legendary_drops, last_drop, best_drop
		FROM user_drop_stats
		WHERE user_id = $1
	`, userID).Scan(
		&stats.UserID,
		&stats.TotalCollected,
		&stats.TotalDrops,
		&stats.CommonDrops,
		&stats.RareDrops,
		&stats.EpicDrops,
		&stats.LegendaryDrops,
		&stats.LastDrop,
		&stats.BestDrop,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &model.UserDropStats{UserID: userID}, nil
		}
		return nil, fmt.Errorf("failed to get drop stats: %w", err)
	}
	return &stats, nil
}

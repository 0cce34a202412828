package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"discord-companion-bot/internal/model"
)

// ErrGiveawayNotFound is returned when no giveaway matches the lookup.
var ErrGiveawayNotFound = errors.New("giveaway not found")

// GiveawayRepository handles giveaway, entry, and winner persistence.
// Role lists are stored as JSON blobs behind typed accessors.
type GiveawayRepository struct {
	pool *pgxpool.Pool
}

// NewGiveawayRepository creates a new GiveawayRepository instance.
func NewGiveawayRepository(pool *pgxpool.Pool) *GiveawayRepository {
	return &GiveawayRepository{pool: pool}
}

const giveawayColumns = `id, message_id, channel_id, guild_id, host_id, title, description, prize,
	winners_count, end_time, status, required_roles, forbidden_roles, bypass_roles,
	winner_role_id, min_messages, min_account_age_days, reroll_count, created_at, ended_at`

func marshalRoles(roles []string) ([]byte, error) {
	if roles == nil {
		roles = []string{}
	}
	return json.Marshal(roles)
}

func scanGiveaway(row pgx.Row) (*model.Giveaway, error) {
	var g model.Giveaway
	var required, forbidden, bypass []byte
	err := row.Scan(
		&g.ID, &g.MessageID, &g.ChannelID, &g.GuildID, &g.HostID,
		&g.Title, &g.Description, &g.Prize,
		&g.WinnersCount, &g.EndTime, &g.Status,
		&required, &forbidden, &bypass,
		&g.WinnerRoleID, &g.MinMessages, &g.MinAccountAgeDays,
		&g.RerollCount, &g.CreatedAt, &g.EndedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(required, &g.RequiredRoles); err != nil {
		return nil, fmt.Errorf("failed to decode required roles: %w", err)
	}
	if err := json.Unmarshal(forbidden, &g.ForbiddenRoles); err != nil {
		return nil, fmt.Errorf("failed to decode forbidden roles: %w", err)
	}
	if err := json.Unmarshal(bypass, &g.BypassRoles); err != nil {
		return nil, fmt.Errorf("failed to decode bypass roles: %w", err)
	}
	return &g, nil
}

// Create persists a new active giveaway and returns it with its ID.
func (r *GiveawayRepository) Create(ctx context.Context, g *model.Giveaway) (*model.Giveaway, error) {
	required, err := marshalRoles(g.RequiredRoles)
	if err != nil {
		return nil, fmt.Errorf("failed to encode required roles: %w", err)
	}
	forbidden, err := marshalRoles(g.ForbiddenRoles)
	if err != nil {
		return nil, fmt.Errorf("failed to encode forbidden roles: %w", err)
	}
	bypass, err := marshalRoles(g.BypassRoles)
	if err != nil {
		return nil, fmt.Errorf("failed to encode bypass roles: %w", err)
	}

	const query = `
		INSERT INTO giveaways (
			message_id, channel_id, guild_id, host_id, title, description, prize,
			winners_count, end_time, status, required_roles, forbidden_roles, bypass_roles,
			winner_role_id, min_messages, min_account_age_days, reroll_count, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, 0, NOW())
		RETURNING ` + giveawayColumns

	created, err := scanGiveaway(r.pool.QueryRow(ctx, query,
		g.MessageID, g.ChannelID, g.GuildID, g.HostID, g.Title, g.Description, g.Prize,
		g.WinnersCount, g.EndTime, model.GiveawayActive, required, forbidden, bypass,
		g.WinnerRoleID, g.MinMessages, g.MinAccountAgeDays,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create giveaway: %w", err)
	}
	return created, nil
}

// GetByID retrieves a giveaway by its ID.
func (r *GiveawayRepository) GetByID(ctx context.Context, id int64) (*model.Giveaway, error) {
	g, err := scanGiveaway(r.pool.QueryRow(ctx, `
		SELECT `+giveawayColumns+` FROM giveaways WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGiveawayNotFound
		}
		return nil, fmt.Errorf("failed to get giveaway: %w", err)
	}
	return g, nil
}

// GetByMessageID retrieves a giveaway by its announcement message.
func (r *GiveawayRepository) GetByMessageID(ctx context.Context, messageID string) (*model.Giveaway, error) {
	g, err := scanGiveaway(r.pool.QueryRow(ctx, `
		SELECT `+giveawayColumns+` FROM giveaways WHERE message_id = $1
	`, messageID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGiveawayNotFound
		}
		return nil, fmt.Errorf("failed to get giveaway: %w", err)
	}
	return g, nil
}

// ListExpiredActive returns active giveaways whose end time has passed.
func (r *GiveawayRepository) ListExpiredActive(ctx context.Context, now time.Time) ([]*model.Giveaway, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+giveawayColumns+`
		FROM giveaways
		WHERE status = $1 AND end_time <= $2
		ORDER BY end_time
	`, model.GiveawayActive, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired giveaways: %w", err)
	}
	defer rows.Close()

	var giveaways []*model.Giveaway
	for rows.Next() {
		g, err := scanGiveaway(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan giveaway: %w", err)
		}
		giveaways = append(giveaways, g)
	}
	return giveaways, rows.Err()
}

// SetStatus transitions a giveaway, stamping ended_at for terminal states.
func (r *GiveawayRepository) SetStatus(ctx context.Context, id int64, status string, endedAt *time.Time) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE giveaways SET status = $2, ended_at = $3 WHERE id = $1
	`, id, status, endedAt)
	if err != nil {
		return fmt.Errorf("failed to set giveaway status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrGiveawayNotFound
	}
	return nil
}

// IncrementReroll bumps the reroll counter.
func (r *GiveawayRepository) IncrementReroll(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE giveaways SET reroll_count = reroll_count + 1 WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to increment reroll count: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrGiveawayNotFound
	}
	return nil
}

// UpsertEntry records a weighted entry. Racing reaction events converge
// to a single row per (giveaway, user).
func (r *GiveawayRepository) UpsertEntry(ctx context.Context, giveawayID int64, userID string, entries int) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO giveaway_entries (giveaway_id, user_id, entries, entry_time)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (giveaway_id, user_id)
		DO UPDATE SET entries = $3
	`, giveawayID, userID, entries)
	if err != nil {
		return fmt.Errorf("failed to upsert giveaway entry: %w", err)
	}
	return nil
}

// DeleteEntry removes a user's entry, if any.
func (r *GiveawayRepository) DeleteEntry(ctx context.Context, giveawayID int64, userID string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM giveaway_entries WHERE giveaway_id = $1 AND user_id = $2
	`, giveawayID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete giveaway entry: %w", err)
	}
	return nil
}

// ListEntries returns all entries for a giveaway.
func (r *GiveawayRepository) ListEntries(ctx context.Context, giveawayID int64) ([]model.GiveawayEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT giveaway_id, user_id, entries, entry_time
		FROM giveaway_entries
		WHERE giveaway_id = $1
		ORDER BY entry_time
	`, giveawayID)
	if err != nil {
		return nil, fmt.Errorf("failed to list giveaway entries: %w", err)
	}
	defer rows.Close()

	var entries []model.GiveawayEntry
	for rows.Next() {
		var e model.GiveawayEntry
		if err := rows.Scan(&e.GiveawayID, &e.UserID, &e.Entries, &e.EntryTime); err != nil {
			return nil, fmt.Errorf("failed to scan giveaway entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AddWinners persists one selection round of winners.
func (r *GiveawayRepository) AddWinners(ctx context.Context, giveawayID int64, userIDs []string, startPosition int, isReroll bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin winners tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, userID := range userIDs {
		_, err := tx.Exec(ctx, `
			INSERT INTO giveaway_winners (giveaway_id, user_id, winner_position, selected_at, is_reroll)
			VALUES ($1, $2, $3, NOW(), $4)
		`, giveawayID, userID, startPosition+i, isReroll)
		if err != nil {
			return fmt.Errorf("failed to add winner: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit winners tx: %w", err)
	}
	return nil
}

// ListWinnerIDs returns every winner of a giveaway across all rounds.
func (r *GiveawayRepository) ListWinnerIDs(ctx context.Context, giveawayID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id FROM giveaway_winners WHERE giveaway_id = $1 ORDER BY winner_position
	`, giveawayID)
	if err != nil {
		return nil, fmt.Errorf("failed to list winners: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan winner: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountWinners returns the number of winner rows for a giveaway.
func (r *GiveawayRepository) CountWinners(ctx context.Context, giveawayID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM giveaway_winners WHERE giveaway_id = $1
	`, giveawayID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count winners: %w", err)
	}
	return count, nil
}

// HasWonSince reports whether a user won any giveaway after the cutoff.
// Used for the winner-cooldown eligibility check.
func (r *GiveawayRepository) HasWonSince(ctx context.Context, userID string, cutoff time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM giveaway_winners WHERE user_id = $1 AND selected_at > $2
		)
	`, userID, cutoff).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check recent wins: %w", err)
	}
	return exists, nil
}

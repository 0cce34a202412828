// Package repository provides data access layer implementations.
// Tests use testcontainers-go to spin up a PostgreSQL container.
package repository

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"discord-companion-bot/internal/model"
)

// checkDockerAvailable checks if Docker is available and running
func checkDockerAvailable() bool {
	cmd := exec.Command("docker", "info")
	err := cmd.Run()
	return err == nil
}

// setupTestDB creates a PostgreSQL container and returns a connection pool.
// Skips the test if Docker is not available.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	err = applySchema(ctx, pool)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// applySchema creates the tables the repositories exercise.
func applySchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			user_id VARCHAR(32) PRIMARY KEY,
			username VARCHAR(255) NOT NULL,
			balance BIGINT NOT NULL DEFAULT 0,
			total_earned BIGINT NOT NULL DEFAULT 0,
			daily_last_claimed TIMESTAMPTZ,
			work_last_used TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS transactions (
			id BIGSERIAL PRIMARY KEY,
			user_id VARCHAR(32) NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
			kind VARCHAR(50) NOT NULL,
			amount BIGINT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS user_inventory (
			user_id VARCHAR(32) NOT NULL,
			item_id VARCHAR(50) NOT NULL,
			quantity INT NOT NULL DEFAULT 0,
			acquired_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, item_id)
		);

		CREATE TABLE IF NOT EXISTS active_effects (
			id BIGSERIAL PRIMARY KEY,
			user_id VARCHAR(32) NOT NULL,
			effect_type VARCHAR(50) NOT NULL,
			duration_minutes INT,
			uses_remaining INT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			expires_at TIMESTAMPTZ
		);

		CREATE TABLE IF NOT EXISTS cooldowns (
			user_id VARCHAR(32) NOT NULL,
			action_type VARCHAR(50) NOT NULL,
			last_used TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (user_id, action_type)
		);

		CREATE TABLE IF NOT EXISTS user_levels (
			user_id VARCHAR(32) PRIMARY KEY,
			xp BIGINT NOT NULL DEFAULT 0,
			level INT NOT NULL DEFAULT 1,
			total_messages BIGINT NOT NULL DEFAULT 0,
			last_xp_gain TIMESTAMPTZ,
			voice_time BIGINT NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS giveaways (
			id BIGSERIAL PRIMARY KEY,
			message_id VARCHAR(32) NOT NULL,
			channel_id VARCHAR(32) NOT NULL,
			guild_id VARCHAR(32) NOT NULL,
			host_id VARCHAR(32) NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			prize TEXT NOT NULL,
			winners_count INT NOT NULL DEFAULT 1,
			end_time TIMESTAMPTZ NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'active',
			required_roles TEXT NOT NULL DEFAULT '[]',
			forbidden_roles TEXT NOT NULL DEFAULT '[]',
			bypass_roles TEXT NOT NULL DEFAULT '[]',
			winner_role_id VARCHAR(32) NOT NULL DEFAULT '',
			min_messages BIGINT NOT NULL DEFAULT 0,
			min_account_age_days INT NOT NULL DEFAULT 0,
			reroll_count INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			ended_at TIMESTAMPTZ
		);

		CREATE TABLE IF NOT EXISTS giveaway_entries (
			giveaway_id BIGINT NOT NULL REFERENCES giveaways(id) ON DELETE CASCADE,
			user_id VARCHAR(32) NOT NULL,
			entries INT NOT NULL DEFAULT 1,
			entry_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (giveaway_id, user_id)
		);

		CREATE TABLE IF NOT EXISTS giveaway_winners (
			giveaway_id BIGINT NOT NULL REFERENCES giveaways(id) ON DELETE CASCADE,
			user_id VARCHAR(32) NOT NULL,
			winner_position INT NOT NULL,
			is_reroll BOOLEAN NOT NULL DEFAULT FALSE,
			selected_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS drop_channels (
			id BIGSERIAL PRIMARY KEY,
			guild_id VARCHAR(32) NOT NULL,
			channel_id VARCHAR(32) NOT NULL,
			created_by VARCHAR(32) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (guild_id, channel_id)
		);

		CREATE TABLE IF NOT EXISTS drop_stats (
			id BIGSERIAL PRIMARY KEY,
			guild_id VARCHAR(32) NOT NULL,
			user_id VARCHAR(32) NOT NULL,
			amount BIGINT NOT NULL,
			rarity VARCHAR(20) NOT NULL,
			collection_type VARCHAR(20) NOT NULL,
			drop_timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS user_drop_stats (
			user_id VARCHAR(32) PRIMARY KEY,
			total_collected BIGINT NOT NULL DEFAULT 0,
			total_drops BIGINT NOT NULL DEFAULT 0,
			common_drops BIGINT NOT NULL DEFAULT 0,
			rare_drops BIGINT NOT NULL DEFAULT 0,
			epic_drops BIGINT NOT NULL DEFAULT 0,
			legendary_drops BIGINT NOT NULL DEFAULT 0,
			last_drop TIMESTAMPTZ,
			best_drop BIGINT NOT NULL DEFAULT 0
		);
	`)
	return err
}

// ============================================================================
// UserRepository Tests
// ============================================================================

func TestUserRepository_Create(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	ctx := context.Background()

	user, err := repo.Create(ctx, "100001", "testuser")
	require.NoError(t, err)
	assert.Equal(t, "100001", user.UserID)
	assert.Equal(t, "testuser", user.Username)
	assert.Equal(t, int64(0), user.Balance)
	assert.Equal(t, int64(0), user.TotalEarned)
	assert.Nil(t, user.DailyLastClaimed)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestUserRepository_GetOrCreate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	ctx := context.Background()

	user, created, err := repo.GetOrCreate(ctx, "100001", "testuser")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "100001", user.UserID)

	user, created, err = repo.GetOrCreate(ctx, "100001", "testuser")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "100001", user.UserID)

	_, err = repo.GetByID(ctx, "999999")
	assert.ErrorIs(t, err, ErrUserNotFound)

	exists, err := repo.Exists(ctx, "100001")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, "999999")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_ApplyDelta(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	txRepo := NewTransactionRepository(pool)
	ctx := context.Background()

	_, err := repo.Create(ctx, "100001", "testuser")
	require.NoError(t, err)

	// Credit bumps both balance and total_earned.
	user, err := repo.ApplyDelta(ctx, "100001", 500, model.TxKindDaily, "Daily reward")
	require.NoError(t, err)
	assert.Equal(t, int64(500), user.Balance)
	assert.Equal(t, int64(500), user.TotalEarned)

	// Debit lowers balance but leaves total_earned untouched.
	user, err = repo.ApplyDelta(ctx, "100001", -300, model.TxKindShopPurchase, "Bought 1x Lucky Charm")
	require.NoError(t, err)
	assert.Equal(t, int64(200), user.Balance)
	assert.Equal(t, int64(500), user.TotalEarned)

	// Overdraft is rejected and leaves the account untouched.
	_, err = repo.ApplyDelta(ctx, "100001", -201, model.TxKindShopPurchase, "too expensive")
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	user, err = repo.GetByID(ctx, "100001")
	require.NoError(t, err)
	assert.Equal(t, int64(200), user.Balance)

	// Every applied delta left a matching ledger row; the rejected one did not.
	txs, err := txRepo.GetByUserID(ctx, "100001", 10)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, int64(-300), txs[0].Amount)
	assert.Equal(t, int64(500), txs[1].Amount)

	// Balance equals the algebraic sum of the ledger, and total_earned
	// equals the sum of the credits.
	sum, err := txRepo.SumAmounts(ctx, "100001")
	require.NoError(t, err)
	assert.Equal(t, user.Balance, sum)

	earned, err := txRepo.SumPositiveAmounts(ctx, "100001")
	require.NoError(t, err)
	assert.Equal(t, user.TotalEarned, earned)

	// Unknown user fails cleanly.
	_, err = repo.ApplyDelta(ctx, "999999", 100, model.TxKindDaily, "")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_SetBalance(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	txRepo := NewTransactionRepository(pool)
	ctx := context.Background()

	_, err := repo.Create(ctx, "100001", "testuser")
	require.NoError(t, err)

	user, err := repo.SetBalance(ctx, "100001", 5000, "admin set")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), user.Balance)
	assert.Equal(t, int64(5000), user.TotalEarned)

	// The ledger records the delta, not the absolute value.
	txs, err := txRepo.GetByUserIDAndKind(ctx, "100001", model.TxKindAdmin, 10)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, int64(5000), txs[0].Amount)

	// Lowering the balance records a negative delta and does not bump earnings.
	user, err = repo.SetBalance(ctx, "100001", 2000, "admin set")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), user.Balance)
	assert.Equal(t, int64(5000), user.TotalEarned)

	_, err = repo.SetBalance(ctx, "999999", 100, "")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_GetTopUsers(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	ctx := context.Background()

	for _, u := range []struct {
		id      string
		balance int64
	}{{"1", 3000}, {"2", 1000}, {"3", 5000}} {
		_, err := repo.Create(ctx, u.id, "user"+u.id)
		require.NoError(t, err)
		_, err = repo.SetBalance(ctx, u.id, u.balance, "seed")
		require.NoError(t, err)
	}

	users, err := repo.GetTopUsers(ctx, 10)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "3", users[0].UserID)
	assert.Equal(t, "1", users[1].UserID)
	assert.Equal(t, "2", users[2].UserID)
}

func TestUserRepository_ClaimTimestamps(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	ctx := context.Background()

	_, err := repo.Create(ctx, "100001", "testuser")
	require.NoError(t, err)

	now := time.Now().Truncate(time.Millisecond)
	require.NoError(t, repo.UpdateDailyClaimed(ctx, "100001", now))
	require.NoError(t, repo.UpdateWorkUsed(ctx, "100001", now))

	user, err := repo.GetByID(ctx, "100001")
	require.NoError(t, err)
	require.NotNil(t, user.DailyLastClaimed)
	require.NotNil(t, user.WorkLastUsed)
	assert.WithinDuration(t, now, *user.DailyLastClaimed, time.Second)

	assert.ErrorIs(t, repo.UpdateDailyClaimed(ctx, "999999", now), ErrUserNotFound)
}

// ============================================================================
// InventoryRepository Tests
// ============================================================================

func TestInventoryRepository_AddAndConsume(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewInventoryRepository(pool)
	ctx := context.Background()

	require.NoError(t, repo.AddItem(ctx, "100001", "lucky_charm", 2))
	require.NoError(t, repo.AddItem(ctx, "100001", "lucky_charm", 1))

	qty, err := repo.GetQuantity(ctx, "100001", "lucky_charm")
	require.NoError(t, err)
	assert.Equal(t, 3, qty)

	// Consume down to zero; the row disappears.
	for i := 0; i < 3; i++ {
		ok, err := repo.ConsumeItem(ctx, "100001", "lucky_charm")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := repo.ConsumeItem(ctx, "100001", "lucky_charm")
	require.NoError(t, err)
	assert.False(t, ok)

	entries, err := repo.GetAll(ctx, "100001")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// ============================================================================
// EffectRepository Tests
// ============================================================================

func TestEffectRepository_GrantReplacesSameKind(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewEffectRepository(pool)
	ctx := context.Background()

	uses := 3
	_, err := repo.Grant(ctx, "100001", model.EffectGamblingLuck, nil, &uses)
	require.NoError(t, err)

	newUses := 5
	_, err = repo.Grant(ctx, "100001", model.EffectGamblingLuck, nil, &newUses)
	require.NoError(t, err)

	effects, err := repo.ListLive(ctx, "100001")
	require.NoError(t, err)
	require.Len(t, effects, 1)
	require.NotNil(t, effects[0].UsesRemaining)
	assert.Equal(t, 5, *effects[0].UsesRemaining)
}

func TestEffectRepository_ConsumeUse(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewEffectRepository(pool)
	ctx := context.Background()

	uses := 1
	_, err := repo.Grant(ctx, "100001", model.EffectWorkCooldownReset, nil, &uses)
	require.NoError(t, err)

	ok, err := repo.ConsumeUse(ctx, "100001", model.EffectWorkCooldownReset)
	require.NoError(t, err)
	assert.True(t, ok)

	// Exhausted at zero: the row is gone and a second consume misses.
	effect, err := repo.GetLive(ctx, "100001", model.EffectWorkCooldownReset)
	require.NoError(t, err)
	assert.Nil(t, effect)

	ok, err = repo.ConsumeUse(ctx, "100001", model.EffectWorkCooldownReset)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEffectRepository_DurationExpiry(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewEffectRepository(pool)
	ctx := context.Background()

	duration := 60
	_, err := repo.Grant(ctx, "100001", model.EffectExperienceBoost, &duration, nil)
	require.NoError(t, err)

	effect, err := repo.GetLive(ctx, "100001", model.EffectExperienceBoost)
	require.NoError(t, err)
	require.NotNil(t, effect)
	require.NotNil(t, effect.ExpiresAt)

	// Force the expiry into the past; the effect vanishes on read.
	_, err = pool.Exec(ctx, `UPDATE active_effects SET expires_at = NOW() - INTERVAL '1 minute' WHERE user_id = $1`, "100001")
	require.NoError(t, err)

	effect, err = repo.GetLive(ctx, "100001", model.EffectExperienceBoost)
	require.NoError(t, err)
	assert.Nil(t, effect)

	removed, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

// ============================================================================
// CooldownRepository Tests
// ============================================================================

func TestCooldownRepository_Upsert(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewCooldownRepository(pool)
	ctx := context.Background()

	_, ok, err := repo.GetLastUsed(ctx, "100001", model.ActionCoinflip)
	require.NoError(t, err)
	assert.False(t, ok)

	first := time.Now().Add(-time.Hour)
	require.NoError(t, repo.SetLastUsed(ctx, "100001", model.ActionCoinflip, first))

	second := time.Now()
	require.NoError(t, repo.SetLastUsed(ctx, "100001", model.ActionCoinflip, second))

	lastUsed, ok, err := repo.GetLastUsed(ctx, "100001", model.ActionCoinflip)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.WithinDuration(t, second, lastUsed, time.Second)

	require.NoError(t, repo.Clear(ctx, "100001", model.ActionCoinflip))
	_, ok, err = repo.GetLastUsed(ctx, "100001", model.ActionCoinflip)
	require.NoError(t, err)
	assert.False(t, ok)
}

// ============================================================================
// LevelRepository Tests
// ============================================================================

func TestLevelRepository_TextAndVoiceXP(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewLevelRepository(pool)
	ctx := context.Background()

	state, err := repo.GetOrCreate(ctx, "100001")
	require.NoError(t, err)
	assert.Equal(t, int64(0), state.XP)
	assert.Equal(t, 1, state.Level)

	now := time.Now()
	state, err = repo.AddTextXP(ctx, "100001", 20, 1, now)
	require.NoError(t, err)
	assert.Equal(t, int64(20), state.XP)
	assert.Equal(t, int64(1), state.TotalMessages)
	require.NotNil(t, state.LastXPGain)

	state, err = repo.AddVoiceXP(ctx, "100001", 50, 1, 600)
	require.NoError(t, err)
	assert.Equal(t, int64(70), state.XP)
	assert.Equal(t, int64(600), state.VoiceTime)
	assert.Equal(t, int64(1), state.TotalMessages)
}

// ============================================================================
// GiveawayRepository Tests
// ============================================================================

func seedGiveaway(t *testing.T, repo *GiveawayRepository, messageID string) *model.Giveaway {
	t.Helper()
	g, err := repo.Create(context.Background(), &model.Giveaway{
		MessageID:     messageID,
		ChannelID:     "chan1",
		GuildID:       "guild1",
		HostID:        "host1",
		Prize:         "Nitro",
		WinnersCount:  2,
		EndTime:       time.Now().Add(time.Hour),
		RequiredRoles: []string{"role1"},
	})
	require.NoError(t, err)
	return g
}

func TestGiveawayRepository_CreateAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewGiveawayRepository(pool)
	ctx := context.Background()

	g := seedGiveaway(t, repo, "msg1")
	assert.Equal(t, model.GiveawayActive, g.Status)
	assert.Equal(t, []string{"role1"}, g.RequiredRoles)
	assert.Empty(t, g.ForbiddenRoles)

	byMessage, err := repo.GetByMessageID(ctx, "msg1")
	require.NoError(t, err)
	assert.Equal(t, g.ID, byMessage.ID)

	_, err = repo.GetByMessageID(ctx, "missing")
	assert.ErrorIs(t, err, ErrGiveawayNotFound)
}

func TestGiveawayRepository_EntriesConverge(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewGiveawayRepository(pool)
	ctx := context.Background()

	g := seedGiveaway(t, repo, "msg1")

	// Racing reaction events converge to a single row with the latest weight.
	require.NoError(t, repo.UpsertEntry(ctx, g.ID, "user1", 1))
	require.NoError(t, repo.UpsertEntry(ctx, g.ID, "user1", 6))
	require.NoError(t, repo.UpsertEntry(ctx, g.ID, "user2", 2))

	entries, err := repo.ListEntries(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		if e.UserID == "user1" {
			assert.Equal(t, 6, e.Entries)
		}
	}

	require.NoError(t, repo.DeleteEntry(ctx, g.ID, "user1"))
	entries, err = repo.ListEntries(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestGiveawayRepository_WinnersAndRerolls(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewGiveawayRepository(pool)
	ctx := context.Background()

	g := seedGiveaway(t, repo, "msg1")

	require.NoError(t, repo.AddWinners(ctx, g.ID, []string{"user1", "user2"}, 1, false))
	require.NoError(t, repo.AddWinners(ctx, g.ID, []string{"user3"}, 3, true))
	require.NoError(t, repo.IncrementReroll(ctx, g.ID))

	ids, err := repo.ListWinnerIDs(ctx, g.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"user1", "user2", "user3"}, ids)

	count, err := repo.CountWinners(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	updated, err := repo.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.RerollCount)

	won, err := repo.HasWonSince(ctx, "user1", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.True(t, won)

	won, err = repo.HasWonSince(ctx, "stranger", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.False(t, won)
}

func TestGiveawayRepository_ExpirySweepSource(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewGiveawayRepository(pool)
	ctx := context.Background()

	g := seedGiveaway(t, repo, "msg1")
	_, err := pool.Exec(ctx, `UPDATE giveaways SET end_time = NOW() - INTERVAL '1 minute' WHERE id = $1`, g.ID)
	require.NoError(t, err)

	expired, err := repo.ListExpiredActive(ctx, time.Now())
	require.NoError(t, err)
	require.Len(t, expired, 1)

	now := time.Now()
	require.NoError(t, repo.SetStatus(ctx, g.ID, model.GiveawayCompleted, &now))

	expired, err = repo.ListExpiredActive(ctx, time.Now())
	require.NoError(t, err)
	assert.Empty(t, expired)
}

// ============================================================================
// DropRepository Tests
// ============================================================================

func TestDropRepository_Channels(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewDropRepository(pool)
	ctx := context.Background()

	require.NoError(t, repo.RegisterChannel(ctx, "guild1", "chan1", "admin1"))
	// Double registration is a no-op.
	require.NoError(t, repo.RegisterChannel(ctx, "guild1", "chan1", "admin1"))

	channels, err := repo.ListChannels(ctx)
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, "chan1", channels[0].ChannelID)

	require.NoError(t, repo.UnregisterChannel(ctx, "guild1", "chan1"))
	assert.ErrorIs(t, repo.UnregisterChannel(ctx, "guild1", "chan1"), ErrDropChannelNotFound)
}

func TestDropRepository_ClaimStats(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewDropRepository(pool)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, repo.RecordClaim(ctx, "100001", 750, "epic", now))
	require.NoError(t, repo.RecordClaim(ctx, "100001", 120, "common", now))

	stats, err := repo.GetStats(ctx, "100001")
	require.NoError(t, err)
	assert.Equal(t, int64(870), stats.TotalCollected)
	assert.Equal(t, int64(2), stats.TotalDrops)
	assert.Equal(t, int64(1), stats.EpicDrops)
	assert.Equal(t, int64(1), stats.CommonDrops)
	assert.Equal(t, int64(750), stats.BestDrop)

	// Unknown users report zeros, not an error.
	empty, err := repo.GetStats(ctx, "999999")
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.TotalDrops)
}

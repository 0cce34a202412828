// Package main is the entry point for the Discord companion bot.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"discord-companion-bot/internal/bot"
	"discord-companion-bot/internal/config"
	"discord-companion-bot/internal/game"
	"discord-companion-bot/internal/game/coinflip"
	"discord-companion-bot/internal/game/dice"
	"discord-companion-bot/internal/game/slots"
	"discord-companion-bot/internal/gateway"
	"discord-companion-bot/internal/handler"
	"discord-companion-bot/internal/pkg/db"
	"discord-companion-bot/internal/pkg/lock"
	"discord-companion-bot/internal/repository"
	"discord-companion-bot/internal/service"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Info().Msg("Loaded environment from .env")
	}

	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if token := os.Getenv("DISCORD_TOKEN"); token != "" {
		cfg.Bot.Token = token
	}
	if cfg.Bot.Token == "" {
		log.Fatal().Msg("DISCORD_TOKEN is required")
	}
	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	if err := runMigrations(ctx, dbPool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Repositories
	userRepo := repository.NewUserRepository(dbPool.Pool)
	txRepo := repository.NewTransactionRepository(dbPool.Pool)
	inventoryRepo := repository.NewInventoryRepository(dbPool.Pool)
	effectRepo := repository.NewEffectRepository(dbPool.Pool)
	cooldownRepo := repository.NewCooldownRepository(dbPool.Pool)
	levelRepo := repository.NewLevelRepository(dbPool.Pool)
	giveawayRepo := repository.NewGiveawayRepository(dbPool.Pool)
	dropRepo := repository.NewDropRepository(dbPool.Pool)

	// Discord session comes first: the services talk to the platform
	// through the gateway wrapper around it.
	discordBot, err := bot.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}
	gw := gateway.NewDiscord(discordBot.Session())

	userLock := lock.NewUserLock()

	// Services. Each takes its own RNG (nil = self-seeded); tests
	// inject fixed seeds through the same parameter.
	effectService := service.NewEffectService(effectRepo)
	economyService := service.NewEconomyService(userRepo, txRepo, effectService, userLock, cfg.Currency, cfg.Cooldowns, nil)
	cooldownService := service.NewCooldownService(cooldownRepo, cfg.Cooldowns)
	shopService := service.NewShopService(economyService, cooldownService, effectService, inventoryRepo, userLock, nil)
	levelingService := service.NewLevelingService(levelRepo, effectService, economyService, gw, cfg.Leveling, nil)
	giveawayService := service.NewGiveawayService(giveawayRepo, levelRepo, gw, cfg.Giveaways, nil)
	dropService := service.NewDropService(dropRepo, economyService, gw, cfg.Drops, nil)

	// Games
	registry := game.NewRegistry()
	if err := registry.Register(coinflip.New(&coinflip.Config{
		MinBet: cfg.Games.Coinflip.MinBet,
		MaxBet: cfg.Games.Coinflip.MaxBet,
	})); err != nil {
		log.Fatal().Err(err).Msg("Failed to register coinflip")
	}
	if err := registry.Register(dice.New(&dice.Config{
		MinBet: cfg.Games.Dice.MinBet,
		MaxBet: cfg.Games.Dice.MaxBet,
	})); err != nil {
		log.Fatal().Err(err).Msg("Failed to register dice")
	}
	if err := registry.Register(slots.New(&slots.Config{
		MinBet: cfg.Games.Slots.MinBet,
		MaxBet: cfg.Games.Slots.MaxBet,
	})); err != nil {
		log.Fatal().Err(err).Msg("Failed to register slots")
	}
	gameService := service.NewGameService(registry, economyService, cooldownService, effectService, userLock)

	log.Info().
		Int("game_count", registry.Count()).
		Strs("games", registry.Commands()).
		Msg("Games registered")

	// Handlers
	h := handler.New(
		cfg.Prefix,
		cfg.Currency,
		economyService,
		gameService,
		shopService,
		effectService,
		levelingService,
		giveawayService,
		dropService,
	)
	discordBot.RegisterHandlers(h)

	if err := discordBot.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start bot")
	}

	// Background loops
	go giveawayService.RunSweeper(ctx)
	go dropService.RunScheduler(ctx)
	go dropService.RunExpirySweeper(ctx)
	go runEffectPruner(ctx, effectService)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	cancel()
	if err := discordBot.Stop(); err != nil {
		log.Error().Err(err).Msg("Error during shutdown")
	}
	log.Info().Msg("Bot stopped gracefully")
}

// runEffectPruner clears expired effects every few minutes so the
// table stays small; liveness filtering happens on read regardless.
func runEffectPruner(ctx context.Context, effects *service.EffectService) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := effects.PruneExpired(ctx)
			if err != nil {
				log.Error().Err(err).Msg("failed to prune expired effects")
				continue
			}
			if removed > 0 {
				log.Debug().Int64("removed", removed).Msg("Pruned expired effects")
			}
		}
	}
}

// runMigrations executes the idempotent schema migrations.
func runMigrations(ctx context.Context, pool *db.Pool) error {
	log.Info().Msg("Running database migrations...")

	// Migration 1: users and transactions (the ledger)
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
		CREATE INDEX IF NOT EXISTS idx_users_balance ON users(balance DESC);

		CREATE TABLE IF NOT EXISTS transactions (
			id BIGSERIAL PRIMARY KEY,
			user_id VARCHAR(32) NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
			kind VARCHAR(50) NOT NULL,
			amount BIGINT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_transactions_user_time ON transactions(user_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_transactions_kind_time ON transactions(kind, created_at DESC);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 1: ledger tables created")

	// Migration 2: inventory, effects, cooldowns
	_, err = pool.Exec(ctx, `
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
		CREATE INDEX IF NOT EXISTS idx_active_effects_user ON active_effects(user_id, effect_type);
		CREATE INDEX IF NOT EXISTS idx_active_effects_expires ON active_effects(expires_at);

		CREATE TABLE IF NOT EXISTS cooldowns (
			user_id VARCHAR(32) NOT NULL,
			action_type VARCHAR(50) NOT NULL,
			last_used TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (user_id, action_type)
		);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 2: inventory, effects, cooldowns created")

	// Migration 3: leveling
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS user_levels (
			user_id VARCHAR(32) PRIMARY KEY,
			xp BIGINT NOT NULL DEFAULT 0,
			level INT NOT NULL DEFAULT 1,
			total_messages BIGINT NOT NULL DEFAULT 0,
			last_xp_gain TIMESTAMPTZ,
			voice_time BIGINT NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_user_levels_xp ON user_levels(xp DESC);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 3: leveling table created")

	// Migration 4: giveaways
	_, err = pool.Exec(ctx, `
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
		CREATE UNIQUE INDEX IF NOT EXISTS idx_giveaways_message ON giveaways(message_id);
		CREATE INDEX IF NOT EXISTS idx_giveaways_status_end ON giveaways(status, end_time);

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
		CREATE INDEX IF NOT EXISTS idx_giveaway_winners_user ON giveaway_winners(user_id, selected_at DESC);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 4: giveaway tables created")

	// Migration 5: coin drops
	_, err = pool.Exec(ctx, `
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
		CREATE INDEX IF NOT EXISTS idx_drop_stats_user ON drop_stats(user_id, drop_timestamp DESC);

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
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 5: drop tables created")

	log.Info().Msg("All migrations completed successfully")
	return nil
}

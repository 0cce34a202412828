// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Prefix    string          `mapstructure:"prefix"`
	Currency  CurrencyConfig  `mapstructure:"currency"`
	Cooldowns CooldownsConfig `mapstructure:"cooldowns"`
	Games     GamesConfig     `mapstructure:"games"`
	Giveaways GiveawaysConfig `mapstructure:"giveaways"`
	Leveling  LevelingConfig  `mapstructure:"leveling"`
	Drops     DropsConfig     `mapstructure:"drops"`
}

// BotConfig holds Discord gateway configuration.
type BotConfig struct {
	Token string `mapstructure:"token"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// CurrencyConfig holds display and reward constants for the economy.
type CurrencyConfig struct {
	Name        string `mapstructure:"name"`
	Symbol      string `mapstructure:"symbol"`
	DailyAmount int64  `mapstructure:"daily_amount"`
	WorkAmount  int64  `mapstructure:"work_amount"`
}

// CooldownsConfig maps action kinds to cooldown windows in minutes.
type CooldownsConfig struct {
	Daily      int `mapstructure:"daily"`
	Work       int `mapstructure:"work"`
	Coinflip   int `mapstructure:"coinflip"`
	Dice       int `mapstructure:"dice"`
	Slots      int `mapstructure:"slots"`
	UseItem    int `mapstructure:"use_item"`
	MysteryBox int `mapstructure:"mystery_box"`
}

// WindowMinutes returns the configured window for an action kind.
// Unknown actions have no cooldown.
func (c *CooldownsConfig) WindowMinutes(action string) int {
	switch action {
	case "daily":
		return c.Daily
	case "work":
		return c.Work
	case "coinflip":
		return c.Coinflip
	case "dice":
		return c.Dice
	case "slots":
		return c.Slots
	case "use_item":
		return c.UseItem
	case "mystery_box":
		return c.MysteryBox
	default:
		return 0
	}
}

// GamesConfig holds per-game bet limits.
type GamesConfig struct {
	Coinflip BetLimits `mapstructure:"coinflip"`
	Dice     BetLimits `mapstructure:"dice"`
	Slots    BetLimits `mapstructure:"slots"`
}

// BetLimits bounds a single wager.
type BetLimits struct {
	MinBet int64 `mapstructure:"min_bet"`
	MaxBet int64 `mapstructure:"max_bet"`
}

// GiveawaysConfig holds giveaway lifecycle limits and entry odds.
type GiveawaysConfig struct {
	MaxDurationMinutes    int          `mapstructure:"max_duration"`
	MaxWinners            int          `mapstructure:"max_winners"`
	WinnerCooldownMinutes int          `mapstructure:"winner_cooldown"`
	PremiumBypassCooldown bool         `mapstructure:"premium_bypass_cooldown"`
	Odds                  GiveawayOdds `mapstructure:"odds"`
}

// GiveawayOdds holds entry-weight multipliers.
type GiveawayOdds struct {
	Premium int `mapstructure:"premium"`
	Booster int `mapstructure:"booster"`
}

// LevelingConfig holds XP accrual parameters for both streams.
type LevelingConfig struct {
	MaxLevel int            `mapstructure:"max_level"`
	Text     TextXPConfig   `mapstructure:"text"`
	Voice    VoiceXPConfig  `mapstructure:"voice"`
	Roles    map[int]string `mapstructure:"roles"` // level -> role ID, multiples of 5
}

// TextXPConfig holds per-message XP parameters.
type TextXPConfig struct {
	Base          int64         `mapstructure:"base"`
	Bonus         int64         `mapstructure:"bonus"`
	Cooldown      time.Duration `mapstructure:"cooldown"`
	MaxPerMessage int64         `mapstructure:"max_per_message"`
}

// VoiceXPConfig holds per-session XP parameters.
type VoiceXPConfig struct {
	Base               int64 `mapstructure:"base"`
	Bonus              int64 `mapstructure:"bonus"`
	MinDurationMinutes int   `mapstructure:"min_duration"`
}

// DropsConfig holds coin-drop scheduler parameters.
type DropsConfig struct {
	BaseAmount         int64 `mapstructure:"base_amount"`
	MinIntervalMinutes int   `mapstructure:"min_interval"`
	MaxIntervalMinutes int   `mapstructure:"max_interval"`
	ExpiryMinutes      int   `mapstructure:"expiry"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the given directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables use underscore separator and uppercase,
	// e.g. BOT_TOKEN, DATABASE_HOST.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK - env vars can provide all config.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("prefix", "!")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "companionbot")
	v.SetDefault("database.name", "companionbot")
	v.SetDefault("database.pool_size", 20)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	// Currency defaults
	v.SetDefault("currency.name", "coins")
	v.SetDefault("currency.symbol", "🪙")
	v.SetDefault("currency.daily_amount", 200)
	v.SetDefault("currency.work_amount", 100)

	// Cooldowns in minutes
	v.SetDefault("cooldowns.daily", 1440)
	v.SetDefault("cooldowns.work", 60)
	v.SetDefault("cooldowns.coinflip", 1)
	v.SetDefault("cooldowns.dice", 1)
	v.SetDefault("cooldowns.slots", 2)
	v.SetDefault("cooldowns.use_item", 5)
	v.SetDefault("cooldowns.mystery_box", 30)

	// Game bet limits
	v.SetDefault("games.coinflip.min_bet", 10)
	v.SetDefault("games.coinflip.max_bet", 5000)
	v.SetDefault("games.dice.min_bet", 10)
	v.SetDefault("games.dice.max_bet", 2500)
	v.SetDefault("games.slots.min_bet", 10)
	v.SetDefault("games.slots.max_bet", 1000)

	// Giveaways
	v.SetDefault("giveaways.max_duration", 20160) // two weeks in minutes
	v.SetDefault("giveaways.max_winners", 20)
	v.SetDefault("giveaways.winner_cooldown", 0)
	v.SetDefault("giveaways.premium_bypass_cooldown", false)
	v.SetDefault("giveaways.odds.premium", 3)
	v.SetDefault("giveaways.odds.booster", 2)

	// Leveling
	v.SetDefault("leveling.max_level", 100)
	v.SetDefault("leveling.text.base", 15)
	v.SetDefault("leveling.text.bonus", 5)
	v.SetDefault("leveling.text.cooldown", "60s")
	v.SetDefault("leveling.text.max_per_message", 25)
	v.SetDefault("leveling.voice.base", 5)
	v.SetDefault("leveling.voice.bonus", 2)
	v.SetDefault("leveling.voice.min_duration", 1)

	// Coin drops
	v.SetDefault("drops.base_amount", 150)
	v.SetDefault("drops.min_interval", 30)
	v.SetDefault("drops.max_interval", 180)
	v.SetDefault("drops.expiry", 10)
}

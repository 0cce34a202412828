// Package coinflip implements the heads-or-tails minigame.
package coinflip

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"discord-companion-bot/internal/game"
)

const (
	// DefaultMinBet is the minimum allowed bet.
	DefaultMinBet = 10
	// DefaultMaxBet is the maximum allowed bet.
	DefaultMaxBet = 5000

	// LuckyWinChance is the win probability with gambling luck active.
	LuckyWinChance = 0.6
)

// Errors for the coinflip game.
var (
	ErrInvalidChoice = errors.New("choice must be heads or tails")
)

// Coinflip implements the Game interface. Win pays 1x the bet.
type Coinflip struct {
	minBet int64
	maxBet int64

	mu  sync.Mutex
	rng *rand.Rand
}

// Config holds configuration for the coinflip game.
type Config struct {
	MinBet int64
	MaxBet int64
	Rand   *rand.Rand // injectable for deterministic tests
}

// New creates a new Coinflip with the given configuration.
func New(cfg *Config) *Coinflip {
	c := &Coinflip{
		minBet: DefaultMinBet,
		maxBet: DefaultMaxBet,
	}
	if cfg != nil {
		if cfg.MinBet > 0 {
			c.minBet = cfg.MinBet
		}
		if cfg.MaxBet > 0 {
			c.maxBet = cfg.MaxBet
		}
		c.rng = cfg.Rand
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return c
}

// Name returns the game's display name.
func (c *Coinflip) Name() string { return "Coinflip" }

// Command returns the command that triggers this game.
func (c *Coinflip) Command() string { return "coinflip" }

// MinBet returns the minimum allowed bet.
func (c *Coinflip) MinBet() int64 { return c.minBet }

// MaxBet returns the maximum allowed bet.
func (c *Coinflip) MaxBet() int64 { return c.maxBet }

// ValidateChoice checks the player's pick.
func (c *Coinflip) ValidateChoice(choice string) error {
	if choice != "heads" && choice != "tails" {
		return ErrInvalidChoice
	}
	return nil
}

func other(side string) string {
	if side == "heads" {
		return "tails"
	}
	return "heads"
}

// Play flips the coin. Base win probability is 0.5; with luck active it
// is LuckyWinChance. A win nets the bet, a loss forfeits it.
func (c *Coinflip) Play(ctx context.Context, userID string, bet int64, choice string, lucky bool) (*game.Result, error) {
	if err := c.ValidateChoice(choice); err != nil {
		return nil, err
	}

	c.mu.Lock()
	roll := c.rng.Float64()
	c.mu.Unlock()

	winChance := 0.5
	if lucky {
		winChance = LuckyWinChance
	}

	win := roll < winChance
	landed := choice
	if !win {
		landed = other(choice)
	}

	payout := bet
	description := fmt.Sprintf("🪙 The coin landed on **%s** — you won %d!", landed, payout)
	if !win {
		payout = -bet
		description = fmt.Sprintf("🪙 The coin landed on **%s** — you lost %d.", landed, bet)
	}

	return &game.Result{
		Payout:      payout,
		Win:         win,
		Description: description,
		Details: map[string]any{
			"choice": choice,
			"landed": landed,
			"lucky":  lucky,
		},
	}, nil
}

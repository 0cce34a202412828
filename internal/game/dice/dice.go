// Package dice implements the pick-a-number dice minigame.
package dice

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"sync"

	"discord-companion-bot/internal/game"
)

const (
	// DefaultMinBet is the minimum allowed bet.
	DefaultMinBet = 10
	// DefaultMaxBet is the maximum allowed bet.
	DefaultMaxBet = 2500

	// WinMultiplier is the net payout multiplier on a correct guess.
	WinMultiplier = 4

	// LuckyForceChance is the probability that an active luck effect
	// forces the die onto the player's number.
	LuckyForceChance = 0.3
)

// Errors for the dice game.
var (
	ErrInvalidChoice = errors.New("choice must be a number between 1 and 6")
)

// Dice implements the Game interface. The player picks a face 1-6 and
// wins 4x the bet on a match.
type Dice struct {
	minBet int64
	maxBet int64

	mu  sync.Mutex
	rng *rand.Rand
}

// Config holds configuration for the dice game.
type Config struct {
	MinBet int64
	MaxBet int64
	Rand   *rand.Rand // injectable for deterministic tests
}

// New creates a new Dice with the given configuration.
func New(cfg *Config) *Dice {
	d := &Dice{
		minBet: DefaultMinBet,
		maxBet: DefaultMaxBet,
	}
	if cfg != nil {
		if cfg.MinBet > 0 {
			d.minBet = cfg.MinBet
		}
		if cfg.MaxBet > 0 {
			d.maxBet = cfg.MaxBet
		}
		d.rng = cfg.Rand
	}
	if d.rng == nil {
		d.rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return d
}

// Name returns the game's display name.
func (d *Dice) Name() string { return "Dice" }

// Command returns the command that triggers this game.
func (d *Dice) Command() string { return "dice" }

// MinBet returns the minimum allowed bet.
func (d *Dice) MinBet() int64 { return d.minBet }

// MaxBet returns the maximum allowed bet.
func (d *Dice) MaxBet() int64 { return d.maxBet }

// ValidateChoice checks that the pick is a face between 1 and 6.
func (d *Dice) ValidateChoice(choice string) error {
	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > 6 {
		return ErrInvalidChoice
	}
	return nil
}

// Play rolls the die. With luck active the roll is forced onto the
// player's number with probability LuckyForceChance before the fair
// roll. A correct guess nets WinMultiplier times the bet.
func (d *Dice) Play(ctx context.Context, userID string, bet int64, choice string, lucky bool) (*game.Result, error) {
	if err := d.ValidateChoice(choice); err != nil {
		return nil, err
	}
	target, _ := strconv.Atoi(choice)

	d.mu.Lock()
	forced := lucky && d.rng.Float64() < LuckyForceChance
	roll := d.rng.Intn(6) + 1
	d.mu.Unlock()

	if forced {
		roll = target
	}

	win := roll == target
	payout := -bet
	description := fmt.Sprintf("🎲 Rolled a **%d**, you picked %d — you lost %d.", roll, target, bet)
	if win {
		payout = bet * WinMultiplier
		description = fmt.Sprintf("🎲 Rolled a **%d** — dead on! You won %d!", roll, payout)
	}

	return &game.Result{
		Payout:      payout,
		Win:         win,
		Description: description,
		Details: map[string]any{
			"roll":   roll,
			"target": target,
			"lucky":  lucky,
		},
	}, nil
}

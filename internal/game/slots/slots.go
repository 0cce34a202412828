// Package slots implements the three-reel slot machine minigame.
package slots

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"discord-companion-bot/internal/game"
)

const (
	// DefaultMinBet is the minimum allowed bet.
	DefaultMinBet = 25
	// DefaultMaxBet is the maximum allowed bet.
	DefaultMaxBet = 2000

	// rareValue is the symbol value from which luck boosts the weight.
	rareValue = 12
	// luckyWeightBoost scales rare symbol weights when luck is active.
	luckyWeightBoost = 1.5
)

// Symbol is one reel face with its payout value and sampling weight.
type Symbol struct {
	Emoji  string
	Name   string
	Value  int64
	Weight int
}

// symbols is the reel strip, common first. Weights sum to 100.
var symbols = []Symbol{
	{"🍒", "cherry", 2, 30},
	{"🍋", "lemon", 3, 25},
	{"🍊", "orange", 5, 18},
	{"🍇", "grape", 8, 12},
	{"🔔", "bell", 12, 8},
	{"⭐", "star", 20, 5},
	{"7️⃣", "seven", 50, 2},
}

// Slots implements the Game interface.
type Slots struct {
	minBet int64
	maxBet int64

	mu  sync.Mutex
	rng *rand.Rand
}

// Config holds configuration for the slot machine.
type Config struct {
	MinBet int64
	MaxBet int64
	Rand   *rand.Rand // injectable for deterministic tests
}

// New creates a new Slots with the given configuration.
func New(cfg *Config) *Slots {
	s := &Slots{
		minBet: DefaultMinBet,
		maxBet: DefaultMaxBet,
	}
	if cfg != nil {
		if cfg.MinBet > 0 {
			s.minBet = cfg.MinBet
		}
		if cfg.MaxBet > 0 {
			s.maxBet = cfg.MaxBet
		}
		s.rng = cfg.Rand
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return s
}

// Name returns the game's display name.
func (s *Slots) Name() string { return "Slots" }

// Command returns the command that triggers this game.
func (s *Slots) Command() string { return "slots" }

// MinBet returns the minimum allowed bet.
func (s *Slots) MinBet() int64 { return s.minBet }

// MaxBet returns the maximum allowed bet.
func (s *Slots) MaxBet() int64 { return s.maxBet }

// ValidateChoice accepts only the empty choice; slots takes no pick.
func (s *Slots) ValidateChoice(choice string) error {
	if choice != "" {
		return fmt.Errorf("slots takes no choice")
	}
	return nil
}

// spinReel draws one symbol by weight. With luck active, symbols at or
// above rareValue have their weights scaled by luckyWeightBoost.
func spinReel(rng *rand.Rand, lucky bool) Symbol {
	weights := make([]float64, len(symbols))
	var total float64
	for i, sym := range symbols {
		w := float64(sym.Weight)
		if lucky && sym.Value >= rareValue {
			w *= luckyWeightBoost
		}
		weights[i] = w
		total += w
	}

	roll := rng.Float64() * total
	for i, w := range weights {
		if roll < w {
			return symbols[i]
		}
		roll -= w
	}
	return symbols[len(symbols)-1]
}

// evaluate scores a spin and returns the gross payout with a result
// line. Three of a kind pays bet times the symbol value. A pair pays
// bet times max(1.5, value*0.5) of the repeated symbol. Three distinct
// symbols whose values sum to at least 30 pay double the bet.
func evaluate(reels [3]Symbol, bet int64) (int64, string) {
	a, b, c := reels[0], reels[1], reels[2]

	if a.Name == b.Name && b.Name == c.Name {
		gross := bet * a.Value
		return gross, fmt.Sprintf("JACKPOT! Three %ss pay %d!", a.Name, gross)
	}

	var pair *Symbol
	switch {
	case a.Name == b.Name || a.Name == c.Name:
		pair = &a
	case b.Name == c.Name:
		pair = &b
	}
	if pair != nil {
		mult := float64(pair.Value) * 0.5
		if mult < 1.5 {
			mult = 1.5
		}
		gross := int64(float64(bet) * mult)
		return gross, fmt.Sprintf("A pair of %ss pays %d!", pair.Name, gross)
	}

	if a.Value+b.Value+c.Value >= 30 {
		gross := bet * 2
		return gross, fmt.Sprintf("High rollers line pays %d!", gross)
	}

	return 0, "No luck this time."
}

// Play spins the three reels and settles the bet. Payout is net: the
// gross win minus the wager.
func (s *Slots) Play(ctx context.Context, userID string, bet int64, choice string, lucky bool) (*game.Result, error) {
	if err := s.ValidateChoice(choice); err != nil {
		return nil, err
	}

	s.mu.Lock()
	reels := [3]Symbol{
		spinReel(s.rng, lucky),
		spinReel(s.rng, lucky),
		spinReel(s.rng, lucky),
	}
	s.mu.Unlock()

	gross, line := evaluate(reels, bet)
	payout := gross - bet
	win := gross > 0

	faces := []string{reels[0].Emoji, reels[1].Emoji, reels[2].Emoji}
	display := fmt.Sprintf("🎰 | %s |", strings.Join(faces, " "))

	return &game.Result{
		Payout:      payout,
		Win:         win,
		Description: fmt.Sprintf("%s\n%s", display, line),
		Details: map[string]any{
			"reels": []string{reels[0].Name, reels[1].Name, reels[2].Name},
			"lucky": lucky,
		},
	}, nil
}

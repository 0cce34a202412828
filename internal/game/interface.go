// Package game defines the game interface and registry for the
// gambling minigames. Adding a game only requires implementing the
// Game interface and registering it.
package game

import "context"

// Result represents the outcome of a single play.
type Result struct {
	Payout      int64          // Net payout: positive = win, negative = loss
	Win         bool           // Whether the play counts as a win
	Description string         // Human-readable result line
	Details     map[string]any // Game-specific render details (reels, rolls, choice)
}

// Game is the contract every minigame implements. Games are pure
// outcome samplers: bet validation against limits, balance checks,
// cooldowns, and settlement all live in the game service.
type Game interface {
	// Name returns the game's display name (e.g. "Coinflip").
	Name() string

	// Command returns the command and cooldown action that triggers
	// this game (e.g. "coinflip", "dice", "slots").
	Command() string

	// MinBet and MaxBet bound a single wager.
	MinBet() int64
	MaxBet() int64

	// ValidateChoice checks the player's pick for this game.
	// Games without a pick accept the empty string.
	ValidateChoice(choice string) error

	// Play samples an outcome for the bet. lucky reports whether a
	// gambling-luck effect was consumed for this play and shifts the
	// odds in the player's favor.
	Play(ctx context.Context, userID string, bet int64, choice string, lucky bool) (*Result, error)
}

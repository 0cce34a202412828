package service

import (
	"context"
	"errors"
	"fmt"

	"discord-companion-bot/internal/game"
	"discord-companion-bot/internal/model"
	"discord-companion-bot/internal/pkg/lock"
	"discord-companion-bot/internal/repository"
)

// GameService runs the shared play template for every registered
// minigame: validate, gate, sample, settle.
type GameService struct {
	registry *game.Registry
	economy  *EconomyService
	cooldown *CooldownService
	effects  *EffectService
	locks    *lock.UserLock
}

// NewGameService creates a new GameService instance.
func NewGameService(
	registry *game.Registry,
	economy *EconomyService,
	cooldown *CooldownService,
	effects *EffectService,
	locks *lock.UserLock,
) *GameService {
	return &GameService{
		registry: registry,
		economy:  economy,
		cooldown: cooldown,
		effects:  effects,
		locks:    locks,
	}
}

// PlayResult is one settled game round.
type PlayResult struct {
	Game    string
	Result  *game.Result
	Lucky   bool
	Balance int64
}

// Play runs one round of the named game. The sequence under the user
// lock is: cooldown check, balance check, luck consumption, outcome
// sample, net settlement, cooldown stamp.
func (s *GameService) Play(ctx context.Context, userID, username, command string, bet int64, choice string) (*PlayResult, error) {
	g, ok := s.registry.Get(command)
	if !ok {
		return nil, fmt.Errorf("%w: unknown game %q", ErrNotFound, command)
	}

	if bet < g.MinBet() || bet > g.MaxBet() {
		return nil, fmt.Errorf("%w: bet must be between %d and %d", ErrBadInput, g.MinBet(), g.MaxBet())
	}
	if err := g.ValidateChoice(choice); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadInput, err)
	}

	s.locks.Lock(userID)
	defer s.locks.Unlock(userID)

	user, err := s.economy.EnsureUser(ctx, userID, username)
	if err != nil {
		return nil, err
	}

	if err := s.cooldown.Check(ctx, userID, command); err != nil {
		return nil, err
	}

	if user.Balance < bet {
		return nil, ErrInsufficientFunds
	}

	lucky, err := s.effects.Consume(ctx, userID, model.EffectGamblingLuck)
	if err != nil {
		return nil, err
	}

	result, err := g.Play(ctx, userID, bet, choice, lucky)
	if err != nil {
		return nil, fmt.Errorf("failed to play %s: %w", command, err)
	}

	kind := model.GameLossKind(command)
	if result.Win {
		kind = model.GameWinKind(command)
	}
	updated, err := s.economy.users.ApplyDelta(ctx, userID, result.Payout, kind, result.Description)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientFunds) {
			return nil, ErrInsufficientFunds
		}
		return nil, fmt.Errorf("failed to settle %s: %w", command, err)
	}

	if err := s.cooldown.Use(ctx, userID, command); err != nil {
		return nil, err
	}

	return &PlayResult{
		Game:    g.Name(),
		Result:  result,
		Lucky:   lucky,
		Balance: updated.Balance,
	}, nil
}

// Games lists the registered games.
func (s *GameService) Games() []game.Game {
	return s.registry.List()
}

package service

import (
	"context"
	"fmt"

	"discord-companion-bot/internal/model"
	"discord-companion-bot/internal/repository"
)

// EffectService manages per-user active modifiers. At most one live
// effect per kind; a new grant replaces the old one.
type EffectService struct {
	effects *repository.EffectRepository
}

// NewEffectService creates a new EffectService instance.
func NewEffectService(effects *repository.EffectRepository) *EffectService {
	return &EffectService{effects: effects}
}

// GrantTimed installs a duration-bounded effect.
func (s *EffectService) GrantTimed(ctx context.Context, userID, kind string, durationMinutes int) (*model.ActiveEffect, error) {
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("%w: effect duration must be positive", ErrBadInput)
	}
	return s.effects.Grant(ctx, userID, kind, &durationMinutes, nil)
}

// GrantUses installs a use-bounded effect.
func (s *EffectService) GrantUses(ctx context.Context, userID, kind string, uses int) (*model.ActiveEffect, error) {
	if uses <= 0 {
		return nil, fmt.Errorf("%w: effect uses must be positive", ErrBadInput)
	}
	return s.effects.Grant(ctx, userID, kind, nil, &uses)
}

// Has reports whether a live effect of the kind exists.
func (s *EffectService) Has(ctx context.Context, userID, kind string) (bool, error) {
	effect, err := s.effects.GetLive(ctx, userID, kind)
	if err != nil {
		return false, err
	}
	return effect != nil, nil
}

// Consume reports whether a live effect of the kind was present and,
// for use-bounded effects, decrements it (removing at zero).
// Duration-only effects report true without decrementing.
func (s *EffectService) Consume(ctx context.Context, userID, kind string) (bool, error) {
	effect, err := s.effects.GetLive(ctx, userID, kind)
	if err != nil {
		return false, err
	}
	if effect == nil {
		return false, nil
	}
	if effect.UsesRemaining == nil {
		return true, nil
	}
	return s.effects.ConsumeUse(ctx, userID, kind)
}

// List returns all live effects for a user.
func (s *EffectService) List(ctx context.Context, userID string) ([]model.ActiveEffect, error) {
	return s.effects.ListLive(ctx, userID)
}

// PruneExpired removes effects past their expiry.
func (s *EffectService) PruneExpired(ctx context.Context) (int64, error) {
	return s.effects.DeleteExpired(ctx)
}

package service

import (
	"context"
	"fmt"
	"time"

	"discord-companion-bot/internal/config"
	"discord-companion-bot/internal/repository"
)

// CooldownService gates actions on per-user windows persisted in the
// cooldowns table. Daily and work track their timestamps on the user
// row instead and do not pass through here.
type CooldownService struct {
	cooldowns *repository.CooldownRepository
	windows   config.CooldownsConfig
}

// NewCooldownService creates a new CooldownService instance.
func NewCooldownService(cooldowns *repository.CooldownRepository, windows config.CooldownsConfig) *CooldownService {
	return &CooldownService{cooldowns: cooldowns, windows: windows}
}

// Check fails with CooldownError while the action's window has not
// elapsed. Actions with a zero window never reject. Callers hold the
// per-user lock around Check and Use to make the pair exclusive.
func (s *CooldownService) Check(ctx context.Context, userID, action string) error {
	window := time.Duration(s.windows.WindowMinutes(action)) * time.Minute
	if window <= 0 {
		return nil
	}

	lastUsed, ok, err := s.cooldowns.GetLastUsed(ctx, userID, action)
	if err != nil {
		return fmt.Errorf("failed to check cooldown: %w", err)
	}
	if !ok {
		return nil
	}

	elapsed := time.Since(lastUsed)
	if elapsed < window {
		return &CooldownError{Action: action, TimeLeft: window - elapsed}
	}
	return nil
}

// Use records the action as used now.
func (s *CooldownService) Use(ctx context.Context, userID, action string) error {
	return s.cooldowns.SetLastUsed(ctx, userID, action, time.Now())
}

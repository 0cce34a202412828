package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"discord-companion-bot/internal/config"
	"discord-companion-bot/internal/drop"
	"discord-companion-bot/internal/gateway"
	"discord-companion-bot/internal/model"
	"discord-companion-bot/internal/repository"
)

// expirySweepInterval is how often lapsed drops are collected.
const expirySweepInterval = 30 * time.Second

// ActiveDrop is one live drop waiting to be claimed.
type ActiveDrop struct {
	MessageID  string
	ChannelID  string
	GuildID    string
	Amount     int64
	Rarity     string
	Mode       string
	Collectors []string
	CreatedAt  time.Time
}

func (d *ActiveDrop) claimed(userID string) bool {
	for _, id := range d.Collectors {
		if id == userID {
			return true
		}
	}
	return false
}

// DropService runs the coin-drop scheduler and settles claims. The
// active-drop map is the only in-memory state and is guarded by one
// mutex.
type DropService struct {
	drops   *repository.DropRepository
	economy *EconomyService
	gw      gateway.Gateway
	cfg     config.DropsConfig

	mu     sync.Mutex
	active map[string]*ActiveDrop // messageID -> drop
	rng    *rand.Rand
}

// NewDropService creates a new DropService instance.
func NewDropService(
	drops *repository.DropRepository,
	economy *EconomyService,
	gw gateway.Gateway,
	cfg config.DropsConfig,
	rng *rand.Rand,
) *DropService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &DropService{
		drops:   drops,
		economy: economy,
		gw:      gw,
		cfg:     cfg,
		active:  make(map[string]*ActiveDrop),
		rng:     rng,
	}
}

// RegisterChannel enrolls a channel for scheduled drops.
func (s *DropService) RegisterChannel(ctx context.Context, guildID, channelID, createdBy string) error {
	return s.drops.RegisterChannel(ctx, guildID, channelID, createdBy)
}

// UnregisterChannel removes a channel from the drop rotation.
func (s *DropService) UnregisterChannel(ctx context.Context, guildID, channelID string) error {
	return s.drops.UnregisterChannel(ctx, guildID, channelID)
}

// Channels lists the registered drop channels.
func (s *DropService) Channels(ctx context.Context) ([]model.DropChannel, error) {
	return s.drops.ListChannels(ctx)
}

// Stats returns a user's lifetime drop stats.
func (s *DropService) Stats(ctx context.Context, userID string) (*model.UserDropStats, error) {
	return s.drops.GetStats(ctx, userID)
}

// RunScheduler spawns drops at uniform random intervals until the
// context is cancelled.
func (s *DropService) RunScheduler(ctx context.Context) {
	log.Info().Msg("Drop scheduler started")
	for {
		interval := s.nextInterval()
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Info().Msg("Drop scheduler stopped")
			return
		case <-timer.C:
			if err := s.Spawn(ctx); err != nil {
				log.Error().Err(err).Msg("failed to spawn drop")
			}
		}
	}
}

func (s *DropService) nextInterval() time.Duration {
	minI, maxI := s.cfg.MinIntervalMinutes, s.cfg.MaxIntervalMinutes
	if minI < 1 {
		minI = 1
	}
	if maxI < minI {
		maxI = minI
	}
	s.mu.Lock()
	minutes := minI + s.rng.Intn(maxI-minI+1)
	s.mu.Unlock()
	return time.Duration(minutes) * time.Minute
}

// Spawn posts one drop to a randomly chosen registered channel. With no
// channels registered it is a no-op.
func (s *DropService) Spawn(ctx context.Context) error {
	channels, err := s.drops.ListChannels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list drop channels: %w", err)
	}
	if len(channels) == 0 {
		return nil
	}

	s.mu.Lock()
	channel := channels[s.rng.Intn(len(channels))]
	rarity := drop.SampleRarity(s.rng)
	amount := drop.SampleAmount(s.rng, s.cfg.BaseAmount, rarity)
	mode := drop.SampleMode(s.rng)
	s.mu.Unlock()

	emoji := drop.ModeEmoji(mode)
	content := fmt.Sprintf("%s A **%s** coin drop of **%d** appeared! React with %s to grab it!", emoji, rarity, amount, emoji)
	messageID, err := s.gw.SendMessage(channel.ChannelID, content)
	if err != nil {
		return fmt.Errorf("failed to post drop: %w", err)
	}
	if err := s.gw.AddReaction(channel.ChannelID, messageID, emoji); err != nil {
		log.Warn().Err(err).Str("message_id", messageID).Msg("failed to seed drop reaction")
	}

	s.mu.Lock()
	s.active[messageID] = &ActiveDrop{
		MessageID: messageID,
		ChannelID: channel.ChannelID,
		GuildID:   channel.GuildID,
		Amount:    amount,
		Rarity:    rarity,
		Mode:      mode,
		CreatedAt: time.Now(),
	}
	s.mu.Unlock()

	if err := s.drops.CreateRecord(ctx, channel.GuildID, model.SystemUserID, amount, rarity, mode); err != nil {
		log.Error().Err(err).Msg("failed to record drop creation")
	}

	log.Info().
		Str("channel_id", channel.ChannelID).
		Str("rarity", rarity).
		Str("mode", mode).
		Int64("amount", amount).
		Msg("Drop spawned")
	return nil
}

// ClaimResult is one settled drop claim.
type ClaimResult struct {
	Amount   int64
	Rarity   string
	Mode     string
	Position int // 1-based claim order
}

// Claim settles a reaction on an active drop. Wrong emojis, unknown
// messages, and repeat claimers are ignored with a nil result. A
// quick-grab drop terminates once its bonus slots fill.
func (s *DropService) Claim(ctx context.Context, messageID, userID, username, emoji string) (*ClaimResult, error) {
	s.mu.Lock()
	d, ok := s.active[messageID]
	if !ok || emoji != drop.ModeEmoji(d.Mode) || d.claimed(userID) {
		s.mu.Unlock()
		return nil, nil
	}
	prior := len(d.Collectors)
	d.Collectors = append(d.Collectors, userID)
	terminated := d.Mode == drop.ModeQuickGrab && len(d.Collectors) >= drop.QuickGrabBonusSlots
	snapshot := *d
	s.mu.Unlock()

	booster := false
	if member, err := s.gw.Member(snapshot.GuildID, userID); err == nil {
		booster = member.Booster
	}

	s.mu.Lock()
	payout := drop.ClaimPayout(s.rng, snapshot.Mode, snapshot.Amount, prior, booster)
	s.mu.Unlock()

	if _, err := s.economy.EnsureUser(ctx, userID, username); err != nil {
		return nil, err
	}
	desc := fmt.Sprintf("Collected a %s drop", snapshot.Rarity)
	if _, err := s.economy.Credit(ctx, userID, payout, model.TxKindDrop, desc); err != nil {
		return nil, fmt.Errorf("failed to credit drop claim: %w", err)
	}

	if err := s.drops.CreateRecord(ctx, snapshot.GuildID, userID, payout, snapshot.Rarity, snapshot.Mode); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to record drop claim")
	}
	if err := s.drops.RecordClaim(ctx, userID, payout, snapshot.Rarity, time.Now()); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to update drop stats")
	}

	if terminated {
		s.expire(messageID, "claimed in a flash")
	}

	return &ClaimResult{
		Amount:   payout,
		Rarity:   snapshot.Rarity,
		Mode:     snapshot.Mode,
		Position: prior + 1,
	}, nil
}

// RunExpirySweeper evicts lapsed drops on a fixed tick until the
// context is cancelled.
func (s *DropService) RunExpirySweeper(ctx context.Context) {
	ticker := time.NewTicker(expirySweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepExpired()
		}
	}
}

// SweepExpired expires every active drop past its deadline.
func (s *DropService) SweepExpired() {
	deadline := time.Duration(s.cfg.ExpiryMinutes) * time.Minute
	now := time.Now()

	s.mu.Lock()
	var lapsed []string
	for id, d := range s.active {
		if now.Sub(d.CreatedAt) >= deadline {
			lapsed = append(lapsed, id)
		}
	}
	s.mu.Unlock()

	for _, id := range lapsed {
		s.expire(id, "expired")
	}
}

// expire evicts a drop and edits its message to the end state. Already
// evicted drops are a no-op, so fill and timeout cannot double-fire.
func (s *DropService) expire(messageID, reason string) {
	s.mu.Lock()
	d, ok := s.active[messageID]
	if ok {
		delete(s.active, messageID)
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	content := fmt.Sprintf("💨 The **%s** drop of **%d** has %s. %d collected.", d.Rarity, d.Amount, reason, len(d.Collectors))
	if err := s.gw.EditMessage(d.ChannelID, d.MessageID, content); err != nil {
		log.Warn().Err(err).Str("message_id", d.MessageID).Msg("failed to edit expired drop")
	}
}

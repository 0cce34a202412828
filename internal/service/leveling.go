package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"discord-companion-bot/internal/config"
	"discord-companion-bot/internal/gateway"
	"discord-companion-bot/internal/leveling"
	"discord-companion-bot/internal/model"
	"discord-companion-bot/internal/repository"
)

// LevelRewardPerLevel is the coin bonus per threshold level credited
// when a reward threshold is crossed.
const LevelRewardPerLevel = 10

// voiceSession tracks one user currently in a voice channel.
type voiceSession struct {
	ChannelID string
	GuildID   string
	JoinedAt  time.Time
}

// LevelUp describes a level transition for the handler to announce.
type LevelUp struct {
	UserID       string
	GuildID      string
	OldLevel     int
	NewLevel     int
	XP           int64
	CoinsAwarded int64
	AtCap        bool
}

// LevelingService merges the text and voice XP streams, fires role
// grants on crossed thresholds, and reports level-ups.
type LevelingService struct {
	levels  *repository.LevelRepository
	effects *EffectService
	economy *EconomyService
	gw      gateway.Gateway
	cfg     config.LevelingConfig

	// lastTextGain is the per-user text cooldown; in-memory only, a
	// restart forgiving one early message is acceptable.
	lastTextGain sync.Map // userID -> time.Time

	sessionsMu sync.Mutex
	sessions   map[string]voiceSession // userID -> session

	mu  sync.Mutex
	rng *rand.Rand
}

// NewLevelingService creates a new LevelingService instance.
func NewLevelingService(
	levels *repository.LevelRepository,
	effects *EffectService,
	economy *EconomyService,
	gw gateway.Gateway,
	cfg config.LevelingConfig,
	rng *rand.Rand,
) *LevelingService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &LevelingService{
		levels:   levels,
		effects:  effects,
		economy:  economy,
		gw:       gw,
		cfg:      cfg,
		sessions: make(map[string]voiceSession),
		rng:      rng,
	}
}

// multiplier derives the XP multiplier from member status and the
// experience boost effect. Premium outranks booster; boost doubles.
func (s *LevelingService) multiplier(ctx context.Context, userID string, member *gateway.MemberInfo) float64 {
	mult := 1.0
	if member != nil {
		switch {
		case member.Premium:
			mult = 2.0
		case member.Booster:
			mult = 1.5
		}
	}
	boosted, err := s.effects.Has(ctx, userID, model.EffectExperienceBoost)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("failed to check experience boost")
	} else if boosted {
		mult *= 2.0
	}
	return mult
}

// OnMessage awards text XP for one non-bot message. Messages inside the
// per-user cooldown are dropped. Returns the level-up when one occurred.
func (s *LevelingService) OnMessage(ctx context.Context, guildID, userID, username string) (*LevelUp, error) {
	now := time.Now()
	if prev, ok := s.lastTextGain.Load(userID); ok {
		if now.Sub(prev.(time.Time)) < s.cfg.Text.Cooldown {
			return nil, nil
		}
	}
	s.lastTextGain.Store(userID, now)

	member, err := s.gw.Member(guildID, userID)
	if err != nil {
		log.Debug().Err(err).Str("user_id", userID).Msg("member lookup failed, using base multiplier")
		member = nil
	}

	s.mu.Lock()
	raw := leveling.SampleTextXP(s.rng, s.cfg.Text.Base, s.cfg.Text.Bonus, s.cfg.Text.MaxPerMessage)
	s.mu.Unlock()
	xp := leveling.ApplyMultiplier(raw, s.multiplier(ctx, userID, member))

	state, err := s.levels.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load level state: %w", err)
	}

	newLevel := leveling.LevelFromXP(state.XP + xp)
	if _, err := s.levels.AddTextXP(ctx, userID, xp, newLevel, now); err != nil {
		return nil, fmt.Errorf("failed to add text xp: %w", err)
	}

	return s.afterGain(ctx, guildID, userID, username, state.Level, newLevel, state.XP+xp)
}

// OnVoiceJoin opens a session for a user entering a voice channel.
func (s *LevelingService) OnVoiceJoin(guildID, userID, channelID string) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	s.sessions[userID] = voiceSession{ChannelID: channelID, GuildID: guildID, JoinedAt: time.Now()}
}

// OnVoiceLeave closes a session and awards voice XP when the stay met
// the minimum duration. occupied reports whether the channel held at
// least two non-bot members when the session closed.
func (s *LevelingService) OnVoiceLeave(ctx context.Context, userID, username string, occupied bool) (*LevelUp, error) {
	s.sessionsMu.Lock()
	session, ok := s.sessions[userID]
	delete(s.sessions, userID)
	s.sessionsMu.Unlock()
	if !ok {
		return nil, nil
	}

	elapsed := time.Since(session.JoinedAt)
	minutes := int64(elapsed.Minutes())
	if minutes < int64(s.cfg.Voice.MinDurationMinutes) {
		return nil, nil
	}

	member, err := s.gw.Member(session.GuildID, userID)
	if err != nil {
		member = nil
	}

	raw := leveling.VoiceXP(minutes, s.cfg.Voice.Base, s.cfg.Voice.Bonus, occupied)
	xp := leveling.ApplyMultiplier(raw, s.multiplier(ctx, userID, member))
	if xp <= 0 {
		return nil, nil
	}

	state, err := s.levels.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load level state: %w", err)
	}

	newLevel := leveling.LevelFromXP(state.XP + xp)
	if _, err := s.levels.AddVoiceXP(ctx, userID, xp, newLevel, int64(elapsed.Seconds())); err != nil {
		return nil, fmt.Errorf("failed to add voice xp: %w", err)
	}

	return s.afterGain(ctx, session.GuildID, userID, username, state.Level, newLevel, state.XP+xp)
}

// InVoice reports whether a user currently has an open session, and in
// which channel.
func (s *LevelingService) InVoice(userID string) (string, bool) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	session, ok := s.sessions[userID]
	return session.ChannelID, ok
}

// afterGain fires threshold side effects once a gain has been stored.
func (s *LevelingService) afterGain(ctx context.Context, guildID, userID, username string, oldLevel, newLevel int, totalXP int64) (*LevelUp, error) {
	if newLevel <= oldLevel {
		return nil, nil
	}

	var coins int64
	for _, threshold := range leveling.CrossedRewardLevels(oldLevel, newLevel) {
		s.grantLevelRole(guildID, userID, threshold)
		coins += int64(threshold) * LevelRewardPerLevel
	}
	if coins > 0 {
		desc := fmt.Sprintf("Reached level %d", newLevel)
		if _, err := s.economy.Credit(ctx, userID, coins, model.TxKindLevelReward, desc); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("failed to credit level reward")
			coins = 0
		}
	}

	return &LevelUp{
		UserID:       userID,
		GuildID:      guildID,
		OldLevel:     oldLevel,
		NewLevel:     newLevel,
		XP:           totalXP,
		CoinsAwarded: coins,
		AtCap:        newLevel >= s.maxLevel(),
	}, nil
}

func (s *LevelingService) maxLevel() int {
	if s.cfg.MaxLevel > 0 && s.cfg.MaxLevel < leveling.MaxLevel {
		return s.cfg.MaxLevel
	}
	return leveling.MaxLevel
}

// grantLevelRole adds the configured role for a threshold, skipping
// members who already hold it. The previous tier's role is removed so
// members carry one reward role at a time. Gateway failures are logged
// and swallowed.
func (s *LevelingService) grantLevelRole(guildID, userID string, threshold int) {
	roleID, ok := s.cfg.Roles[threshold]
	if !ok || roleID == "" {
		return
	}

	member, err := s.gw.Member(guildID, userID)
	if err == nil && member.HasRole(roleID) {
		return
	}

	if err := s.gw.AddRole(guildID, userID, roleID); err != nil {
		log.Warn().
			Err(err).
			Str("user_id", userID).
			Str("role_id", roleID).
			Int("level", threshold).
			Msg("failed to grant level role")
		return
	}

	if member == nil {
		return
	}
	for lower, lowerRole := range s.cfg.Roles {
		if lower >= threshold || lowerRole == "" || lowerRole == roleID || !member.HasRole(lowerRole) {
			continue
		}
		if err := s.gw.RemoveRole(guildID, userID, lowerRole); err != nil {
			log.Warn().
				Err(err).
				Str("user_id", userID).
				Str("role_id", lowerRole).
				Msg("failed to remove outgrown level role")
		}
	}
}

// Rank returns a user's level card data.
func (s *LevelingService) Rank(ctx context.Context, userID string) (*model.LevelState, int64, error) {
	state, err := s.levels.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load level state: %w", err)
	}
	return state, leveling.XPToNext(state.XP), nil
}

// TopLevels returns the XP leaderboard.
func (s *LevelingService) TopLevels(ctx context.Context, limit int) ([]*model.LevelState, error) {
	return s.levels.GetTopByXP(ctx, limit)
}

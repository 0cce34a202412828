package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"discord-companion-bot/internal/config"
	"discord-companion-bot/internal/gateway"
	"discord-companion-bot/internal/giveaway"
	"discord-companion-bot/internal/model"
	"discord-companion-bot/internal/repository"
)

// EntryEmoji is the reaction users add to enter a giveaway.
const EntryEmoji = "🎉"

// sweepInterval is how often expired giveaways are collected.
const sweepInterval = time.Minute

// GiveawayService owns the giveaway lifecycle: creation, entries,
// expiry sweeping, winner selection, and rerolls.
type GiveawayService struct {
	giveaways *repository.GiveawayRepository
	levels    *repository.LevelRepository
	gw        gateway.Gateway
	cfg       config.GiveawaysConfig

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGiveawayService creates a new GiveawayService instance.
func NewGiveawayService(
	giveaways *repository.GiveawayRepository,
	levels *repository.LevelRepository,
	gw gateway.Gateway,
	cfg config.GiveawaysConfig,
	rng *rand.Rand,
) *GiveawayService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &GiveawayService{
		giveaways: giveaways,
		levels:    levels,
		gw:        gw,
		cfg:       cfg,
		rng:       rng,
	}
}

// CreateParams collects everything a new giveaway needs.
type CreateParams struct {
	GuildID           string
	ChannelID         string
	HostID            string
	Title             string
	Prize             string
	Description       string
	Duration          string
	WinnersCount      int
	RequiredRoles     []string
	ForbiddenRoles    []string
	BypassRoles       []string
	WinnerRoleID      string
	MinMessages       int64
	MinAccountAgeDays int
}

// Create validates the parameters, posts the announcement, and persists
// the giveaway with the entry reaction attached.
func (s *GiveawayService) Create(ctx context.Context, p CreateParams) (*model.Giveaway, error) {
	duration, err := giveaway.ParseDuration(p.Duration)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadInput, err)
	}
	maxDuration := time.Duration(s.cfg.MaxDurationMinutes) * time.Minute
	if maxDuration > 0 && duration > maxDuration {
		return nil, fmt.Errorf("%w: duration exceeds maximum of %s", ErrBadInput, FormatDuration(maxDuration))
	}
	if p.WinnersCount < 1 || (s.cfg.MaxWinners > 0 && p.WinnersCount > s.cfg.MaxWinners) {
		return nil, fmt.Errorf("%w: winners count must be between 1 and %d", ErrBadInput, s.cfg.MaxWinners)
	}
	if p.Prize == "" {
		return nil, fmt.Errorf("%w: prize is required", ErrBadInput)
	}

	endTime := time.Now().Add(duration)
	g := &model.Giveaway{
		GuildID:           p.GuildID,
		ChannelID:         p.ChannelID,
		HostID:            p.HostID,
		Title:             p.Title,
		Description:       p.Description,
		Prize:             p.Prize,
		WinnersCount:      p.WinnersCount,
		EndTime:           endTime,
		Status:            model.GiveawayActive,
		RequiredRoles:     p.RequiredRoles,
		ForbiddenRoles:    p.ForbiddenRoles,
		BypassRoles:       p.BypassRoles,
		WinnerRoleID:      p.WinnerRoleID,
		MinMessages:       p.MinMessages,
		MinAccountAgeDays: p.MinAccountAgeDays,
	}

	messageID, err := s.gw.SendMessage(p.ChannelID, renderAnnouncement(g))
	if err != nil {
		return nil, fmt.Errorf("failed to post giveaway: %w", err)
	}
	g.MessageID = messageID

	created, err := s.giveaways.Create(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("failed to persist giveaway: %w", err)
	}

	if err := s.gw.AddReaction(p.ChannelID, messageID, EntryEmoji); err != nil {
		log.Warn().Err(err).Str("message_id", messageID).Msg("failed to attach entry reaction")
	}
	return created, nil
}

func renderAnnouncement(g *model.Giveaway) string {
	var b strings.Builder
	title := g.Title
	if title == "" {
		title = "Giveaway"
	}
	fmt.Fprintf(&b, "🎉 **%s** 🎉\n", title)
	if g.Description != "" {
		fmt.Fprintf(&b, "%s\n", g.Description)
	}
	fmt.Fprintf(&b, "Prize: **%s**\n", g.Prize)
	fmt.Fprintf(&b, "Winners: **%d**\n", g.WinnersCount)
	fmt.Fprintf(&b, "Ends: <t:%d:R>\n", g.EndTime.Unix())
	fmt.Fprintf(&b, "React with %s to enter!", EntryEmoji)
	return b.String()
}

// HandleEntry processes an entry reaction. Ineligible entries have the
// reaction removed and the reason DMed best-effort. Reactions on
// non-giveaway messages are ignored.
func (s *GiveawayService) HandleEntry(ctx context.Context, messageID, userID string) error {
	g, err := s.giveaways.GetByMessageID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrGiveawayNotFound) {
			return nil
		}
		return err
	}
	if g.Status != model.GiveawayActive {
		return nil
	}

	member, err := s.gw.Member(g.GuildID, userID)
	if err != nil {
		return fmt.Errorf("failed to fetch member: %w", err)
	}

	if err := s.checkEligibility(ctx, g, member); err != nil {
		var elig *EligibilityError
		if errors.As(err, &elig) {
			s.rejectEntry(g, userID, elig.Reason)
			return nil
		}
		return err
	}

	weight := giveaway.EntryWeight(member.Premium, member.Booster, s.cfg.Odds.Premium, s.cfg.Odds.Booster)
	if err := s.giveaways.UpsertEntry(ctx, g.ID, userID, weight); err != nil {
		return fmt.Errorf("failed to record entry: %w", err)
	}
	return nil
}

func (s *GiveawayService) rejectEntry(g *model.Giveaway, userID, reason string) {
	if err := s.gw.RemoveReaction(g.ChannelID, g.MessageID, EntryEmoji, userID); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("failed to remove ineligible reaction")
	}
	msg := fmt.Sprintf("You can't enter the **%s** giveaway: %s", g.Prize, reason)
	if err := s.gw.SendDM(userID, msg); err != nil {
		log.Debug().Err(err).Str("user_id", userID).Msg("failed to DM entry rejection")
	}
}

// checkEligibility runs the requirement chain in order, short-circuiting
// on the first failure. Bypass roles skip everything.
func (s *GiveawayService) checkEligibility(ctx context.Context, g *model.Giveaway, member *gateway.MemberInfo) error {
	for _, roleID := range g.BypassRoles {
		if member.HasRole(roleID) {
			return nil
		}
	}

	if g.MinAccountAgeDays > 0 && !member.AccountCreatedAt.IsZero() {
		age := time.Since(member.AccountCreatedAt)
		if age < time.Duration(g.MinAccountAgeDays)*24*time.Hour {
			return &EligibilityError{Reason: fmt.Sprintf("your account must be at least %d days old", g.MinAccountAgeDays)}
		}
	}

	if g.MinMessages > 0 {
		state, err := s.levels.GetOrCreate(ctx, member.UserID)
		if err != nil {
			return fmt.Errorf("failed to check message count: %w", err)
		}
		if state.TotalMessages < g.MinMessages {
			return &EligibilityError{Reason: fmt.Sprintf("you need at least %d messages in this server", g.MinMessages)}
		}
	}

	if len(g.RequiredRoles) > 0 {
		held := false
		for _, roleID := range g.RequiredRoles {
			if member.HasRole(roleID) {
				held = true
				break
			}
		}
		if !held {
			return &EligibilityError{Reason: "you are missing a required role"}
		}
	}

	for _, roleID := range g.ForbiddenRoles {
		if member.HasRole(roleID) {
			return &EligibilityError{Reason: "one of your roles is excluded from this giveaway"}
		}
	}

	if s.cfg.WinnerCooldownMinutes > 0 {
		if member.Premium && s.cfg.PremiumBypassCooldown {
			return nil
		}
		cutoff := time.Now().Add(-time.Duration(s.cfg.WinnerCooldownMinutes) * time.Minute)
		won, err := s.giveaways.HasWonSince(ctx, member.UserID, cutoff)
		if err != nil {
			return fmt.Errorf("failed to check winner cooldown: %w", err)
		}
		if won {
			return &EligibilityError{Reason: "you won a giveaway too recently"}
		}
	}

	return nil
}

// HandleEntryRemoval deletes the matching entry when the reaction is
// withdrawn.
func (s *GiveawayService) HandleEntryRemoval(ctx context.Context, messageID, userID string) error {
	g, err := s.giveaways.GetByMessageID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrGiveawayNotFound) {
			return nil
		}
		return err
	}
	if g.Status != model.GiveawayActive {
		return nil
	}
	return s.giveaways.DeleteEntry(ctx, g.ID, userID)
}

// RunSweeper ends expired giveaways on a fixed tick until the context
// is cancelled.
func (s *GiveawayService) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	log.Info().Msg("Giveaway sweeper started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Giveaway sweeper stopped")
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				log.Error().Err(err).Msg("giveaway sweep failed")
			}
		}
	}
}

// Sweep ends every active giveaway whose end time has passed.
func (s *GiveawayService) Sweep(ctx context.Context) error {
	expired, err := s.giveaways.ListExpiredActive(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("failed to list expired giveaways: %w", err)
	}
	for _, g := range expired {
		if err := s.finish(ctx, g); err != nil {
			log.Error().Err(err).Int64("giveaway_id", g.ID).Msg("failed to end giveaway")
		}
	}
	return nil
}

// End completes a giveaway ahead of schedule. Only the host or an
// administrator may end it.
func (s *GiveawayService) End(ctx context.Context, giveawayID int64, requesterID string, isAdmin bool) (*model.Giveaway, error) {
	g, err := s.giveaways.GetByID(ctx, giveawayID)
	if err != nil {
		if errors.Is(err, repository.ErrGiveawayNotFound) {
			return nil, fmt.Errorf("%w: giveaway %d", ErrNotFound, giveawayID)
		}
		return nil, err
	}
	if g.HostID != requesterID && !isAdmin {
		return nil, ErrPermissionDenied
	}
	if g.Status != model.GiveawayActive {
		return nil, fmt.Errorf("%w: giveaway is not active", ErrBadInput)
	}
	if err := s.finish(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Cancel aborts an active giveaway without selecting winners.
func (s *GiveawayService) Cancel(ctx context.Context, giveawayID int64, requesterID string, isAdmin bool) error {
	g, err := s.giveaways.GetByID(ctx, giveawayID)
	if err != nil {
		if errors.Is(err, repository.ErrGiveawayNotFound) {
			return fmt.Errorf("%w: giveaway %d", ErrNotFound, giveawayID)
		}
		return err
	}
	if g.HostID != requesterID && !isAdmin {
		return ErrPermissionDenied
	}
	if g.Status != model.GiveawayActive {
		return fmt.Errorf("%w: giveaway is not active", ErrBadInput)
	}

	now := time.Now()
	if err := s.giveaways.SetStatus(ctx, g.ID, model.GiveawayCancelled, &now); err != nil {
		return err
	}
	s.announce(g, fmt.Sprintf("🚫 The **%s** giveaway was cancelled.", g.Prize))
	return nil
}

// finish selects winners for an active giveaway and marks it completed.
func (s *GiveawayService) finish(ctx context.Context, g *model.Giveaway) error {
	entries, err := s.giveaways.ListEntries(ctx, g.ID)
	if err != nil {
		return fmt.Errorf("failed to list entries: %w", err)
	}

	now := time.Now()
	if len(entries) == 0 {
		if err := s.giveaways.SetStatus(ctx, g.ID, model.GiveawayCompleted, &now); err != nil {
			return err
		}
		s.announce(g, fmt.Sprintf("😢 Nobody entered the **%s** giveaway.", g.Prize))
		return nil
	}

	winners := s.pick(entries, g.WinnersCount, nil)
	if err := s.giveaways.AddWinners(ctx, g.ID, winners, 1, false); err != nil {
		return fmt.Errorf("failed to persist winners: %w", err)
	}
	if err := s.giveaways.SetStatus(ctx, g.ID, model.GiveawayCompleted, &now); err != nil {
		return err
	}

	s.celebrate(g, winners)
	return nil
}

// Reroll draws replacement winners from entrants who have not won this
// giveaway before, original draw and prior rerolls included.
func (s *GiveawayService) Reroll(ctx context.Context, giveawayID int64, requesterID string, isAdmin bool, count int) ([]string, error) {
	g, err := s.giveaways.GetByID(ctx, giveawayID)
	if err != nil {
		if errors.Is(err, repository.ErrGiveawayNotFound) {
			return nil, fmt.Errorf("%w: giveaway %d", ErrNotFound, giveawayID)
		}
		return nil, err
	}
	if g.HostID != requesterID && !isAdmin {
		return nil, ErrPermissionDenied
	}
	if g.Status != model.GiveawayCompleted {
		return nil, fmt.Errorf("%w: only completed giveaways can be rerolled", ErrBadInput)
	}
	if count < 1 {
		count = 1
	}

	entries, err := s.giveaways.ListEntries(ctx, g.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	previous, err := s.giveaways.ListWinnerIDs(ctx, g.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list prior winners: %w", err)
	}
	exclude := make(map[string]bool, len(previous))
	for _, id := range previous {
		exclude[id] = true
	}

	winners := s.pick(entries, count, exclude)
	if len(winners) == 0 {
		return nil, fmt.Errorf("%w: no eligible entrants left to reroll", ErrBadInput)
	}

	if err := s.giveaways.AddWinners(ctx, g.ID, winners, len(previous)+1, true); err != nil {
		return nil, fmt.Errorf("failed to persist reroll winners: %w", err)
	}
	if err := s.giveaways.IncrementReroll(ctx, g.ID); err != nil {
		return nil, err
	}

	s.celebrate(g, winners)
	return winners, nil
}

func (s *GiveawayService) pick(entries []model.GiveawayEntry, count int, exclude map[string]bool) []string {
	entrants := make([]giveaway.Entrant, 0, len(entries))
	for _, e := range entries {
		entrants = append(entrants, giveaway.Entrant{UserID: e.UserID, Weight: e.Entries})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return giveaway.PickWinners(s.rng, entrants, count, exclude)
}

// celebrate announces winners, grants the winner role, and DMs each
// winner. All gateway failures are logged and swallowed.
func (s *GiveawayService) celebrate(g *model.Giveaway, winners []string) {
	mentions := make([]string, len(winners))
	for i, id := range winners {
		mentions[i] = "<@" + id + ">"
	}
	s.announce(g, fmt.Sprintf("🎊 Congratulations %s! You won **%s**!", strings.Join(mentions, ", "), g.Prize))

	for _, userID := range winners {
		if g.WinnerRoleID != "" {
			if err := s.gw.AddRole(g.GuildID, userID, g.WinnerRoleID); err != nil {
				log.Warn().Err(err).Str("user_id", userID).Msg("failed to grant winner role")
			}
		}
		msg := fmt.Sprintf("🎉 You won the **%s** giveaway!", g.Prize)
		if err := s.gw.SendDM(userID, msg); err != nil {
			log.Debug().Err(err).Str("user_id", userID).Msg("failed to DM winner")
		}
	}
}

func (s *GiveawayService) announce(g *model.Giveaway, content string) {
	if _, err := s.gw.SendMessage(g.ChannelID, content); err != nil {
		log.Warn().Err(err).Int64("giveaway_id", g.ID).Msg("failed to announce")
	}
}


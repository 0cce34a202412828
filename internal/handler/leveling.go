package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"discord-companion-bot/internal/service"
)

// awardTextXP feeds a non-command message into the text XP stream.
func (h *Handler) awardTextXP(s *discordgo.Session, m *discordgo.MessageCreate) {
	ctx := context.Background()
	levelUp, err := h.leveling.OnMessage(ctx, m.GuildID, m.Author.ID, displayName(m.Author))
	if err != nil {
		log.Error().Err(err).Str("user_id", m.Author.ID).Msg("text xp award failed")
		return
	}
	if levelUp != nil {
		h.announceLevelUp(s, m.ChannelID, levelUp)
	}
}

// announceLevelUp renders a level-up in the channel where the
// triggering event occurred.
func (h *Handler) announceLevelUp(s *discordgo.Session, channelID string, up *service.LevelUp) {
	msg := fmt.Sprintf("⬆️ <@%s> reached level **%d**!", up.UserID, up.NewLevel)
	if up.AtCap {
		msg = fmt.Sprintf("👑 <@%s> hit the level cap: **%d**! Legendary.", up.UserID, up.NewLevel)
	}
	if up.CoinsAwarded > 0 {
		msg += fmt.Sprintf(" (+%d %s)", up.CoinsAwarded, h.currency.Name)
	}
	if _, err := s.ChannelMessageSend(channelID, msg); err != nil {
		log.Warn().Err(err).Str("channel_id", channelID).Msg("failed to announce level up")
	}
}

func (h *Handler) cmdTopLevels(s *discordgo.Session, m *discordgo.MessageCreate) {
	ctx := context.Background()
	states, err := h.leveling.TopLevels(ctx, 10)
	if err != nil {
		log.Error().Err(err).Msg("level leaderboard query failed")
		h.reply(s, m, renderError(err))
		return
	}
	if len(states) == 0 {
		h.reply(s, m, "Nobody has earned XP yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString("🏅 **Level leaderboard**\n")
	for i, state := range states {
		fmt.Fprintf(&sb, "%d. <@%s> — Level %d (%d XP)\n", i+1, state.UserID, state.Level, state.XP)
	}
	h.reply(s, m, sb.String())
}

func (h *Handler) cmdRank(s *discordgo.Session, m *discordgo.MessageCreate) {
	ctx := context.Background()
	state, toNext, err := h.leveling.Rank(ctx, m.Author.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", m.Author.ID).Msg("rank query failed")
		h.reply(s, m, renderError(err))
		return
	}

	msg := fmt.Sprintf("📊 **%s** — Level **%d** (%d XP)", displayName(m.Author), state.Level, state.XP)
	if toNext > 0 {
		msg += fmt.Sprintf(", %d XP to next level", toNext)
	} else {
		msg += " — max level!"
	}
	msg += fmt.Sprintf("\nMessages: %d · Voice: %dm", state.TotalMessages, state.VoiceTime/60)
	h.reply(s, m, msg)
}

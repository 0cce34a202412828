package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"discord-companion-bot/internal/service"
)

// cmdAdminCoins applies balance adjustments. Usage:
//
//	!addcoins <@user> <amount>
//	!removecoins <@user> <amount>
//	!setcoins <@user> <amount>
func (h *Handler) cmdAdminCoins(s *discordgo.Session, m *discordgo.MessageCreate, command string, args []string) {
	if !h.isAdmin(s, m) {
		h.reply(s, m, renderError(service.ErrPermissionDenied))
		return
	}
	if len(m.Mentions) != 1 || len(args) < 2 {
		h.reply(s, m, fmt.Sprintf("Usage: `%s%s <@user> <amount>`", h.prefix, command))
		return
	}

	target := m.Mentions[0]
	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || amount < 0 {
		h.reply(s, m, "❌ Amount must be a non-negative number.")
		return
	}

	ctx := context.Background()
	if _, err := h.economy.EnsureUser(ctx, target.ID, displayName(target)); err != nil {
		h.reply(s, m, renderError(err))
		return
	}

	desc := fmt.Sprintf("Adjusted by %s", displayName(m.Author))
	var updatedBalance int64
	switch command {
	case "addcoins":
		user, err := h.economy.Adjust(ctx, target.ID, amount, desc)
		if err != nil {
			h.reply(s, m, renderError(err))
			return
		}
		updatedBalance = user.Balance
	case "removecoins":
		user, err := h.economy.Adjust(ctx, target.ID, -amount, desc)
		if err != nil {
			h.reply(s, m, renderError(err))
			return
		}
		updatedBalance = user.Balance
	case "setcoins":
		user, err := h.economy.SetBalance(ctx, target.ID, amount, desc)
		if err != nil {
			h.reply(s, m, renderError(err))
			return
		}
		updatedBalance = user.Balance
	}

	log.Info().
		Str("admin_id", m.Author.ID).
		Str("target_id", target.ID).
		Str("command", command).
		Int64("amount", amount).
		Msg("admin balance change")
	h.reply(s, m, fmt.Sprintf("✅ **%s** now has **%d** %s.", displayName(target), updatedBalance, h.currency.Name))
}

// cmdDropChannel manages the drop channel rotation. Usage:
//
//	!dropchannel add [#channel]
//	!dropchannel remove [#channel]
//	!dropchannel list
func (h *Handler) cmdDropChannel(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if !h.isAdmin(s, m) {
		h.reply(s, m, renderError(service.ErrPermissionDenied))
		return
	}
	if len(args) < 1 {
		h.reply(s, m, fmt.Sprintf("Usage: `%sdropchannel <add|remove|list> [#channel]`", h.prefix))
		return
	}

	channelID := m.ChannelID
	if len(m.MentionChannels) > 0 {
		channelID = m.MentionChannels[0].ID
	} else if len(args) > 1 {
		channelID = strings.Trim(args[1], "<#>")
	}

	ctx := context.Background()
	switch strings.ToLower(args[0]) {
	case "add":
		if err := h.drops.RegisterChannel(ctx, m.GuildID, channelID, m.Author.ID); err != nil {
			h.reply(s, m, renderError(err))
			return
		}
		h.reply(s, m, fmt.Sprintf("💰 <#%s> will now receive coin drops.", channelID))
	case "remove":
		if err := h.drops.UnregisterChannel(ctx, m.GuildID, channelID); err != nil {
			h.reply(s, m, renderError(err))
			return
		}
		h.reply(s, m, fmt.Sprintf("🚫 <#%s> removed from the drop rotation.", channelID))
	case "list":
		channels, err := h.drops.Channels(ctx)
		if err != nil {
			h.reply(s, m, renderError(err))
			return
		}
		if len(channels) == 0 {
			h.reply(s, m, "No drop channels registered.")
			return
		}
		var b strings.Builder
		b.WriteString("💰 **Drop channels**\n")
		for _, c := range channels {
			fmt.Fprintf(&b, "• <#%s>\n", c.ChannelID)
		}
		h.reply(s, m, b.String())
	default:
		h.reply(s, m, fmt.Sprintf("Usage: `%sdropchannel <add|remove|list> [#channel]`", h.prefix))
	}
}

func (h *Handler) cmdDropStats(s *discordgo.Session, m *discordgo.MessageCreate) {
	ctx := context.Background()
	stats, err := h.drops.Stats(ctx, m.Author.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", m.Author.ID).Msg("drop stats query failed")
		h.reply(s, m, renderError(err))
		return
	}

	h.reply(s, m, fmt.Sprintf(
		"💰 **Drop record for %s**\nCollected: **%d** %s over **%d** drops\nCommon %d · Rare %d · Epic %d · Legendary %d\nBest single grab: **%d**",
		displayName(m.Author), stats.TotalCollected, h.currency.Name, stats.TotalDrops,
		stats.CommonDrops, stats.RareDrops, stats.EpicDrops, stats.LegendaryDrops, stats.BestDrop))
}

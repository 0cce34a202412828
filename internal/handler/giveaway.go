package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"discord-companion-bot/internal/service"
)

// cmdGiveawayStart creates a giveaway. Usage:
//
//	!gstart <duration> <winners> <prize...>
func (h *Handler) cmdGiveawayStart(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if !h.isAdmin(s, m) {
		h.reply(s, m, renderError(service.ErrPermissionDenied))
		return
	}
	if len(args) < 3 {
		h.reply(s, m, fmt.Sprintf("Usage: `%sgstart <duration> <winners> <prize>` (e.g. `%sgstart 1d 3 Nitro`)", h.prefix, h.prefix))
		return
	}

	winners, err := strconv.Atoi(args[1])
	if err != nil {
		h.reply(s, m, "❌ Winners must be a number.")
		return
	}

	ctx := context.Background()
	g, err := h.giveaways.Create(ctx, service.CreateParams{
		GuildID:      m.GuildID,
		ChannelID:    m.ChannelID,
		HostID:       m.Author.ID,
		Prize:        strings.Join(args[2:], " "),
		Duration:     args[0],
		WinnersCount: winners,
	})
	if err != nil {
		h.reply(s, m, renderError(err))
		return
	}
	h.reply(s, m, fmt.Sprintf("🎉 Giveaway **#%d** started! Ends <t:%d:R>.", g.ID, g.EndTime.Unix()))
}

func (h *Handler) cmdGiveawayEnd(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	id, ok := h.parseGiveawayID(s, m, args, "gend")
	if !ok {
		return
	}

	ctx := context.Background()
	if _, err := h.giveaways.End(ctx, id, m.Author.ID, h.isAdmin(s, m)); err != nil {
		h.reply(s, m, renderError(err))
	}
}

func (h *Handler) cmdGiveawayReroll(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	id, ok := h.parseGiveawayID(s, m, args, "greroll")
	if !ok {
		return
	}

	count := 1
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			h.reply(s, m, "❌ Count must be a positive number.")
			return
		}
		count = n
	}

	ctx := context.Background()
	if _, err := h.giveaways.Reroll(ctx, id, m.Author.ID, h.isAdmin(s, m), count); err != nil {
		h.reply(s, m, renderError(err))
	}
}

func (h *Handler) cmdGiveawayCancel(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	id, ok := h.parseGiveawayID(s, m, args, "gcancel")
	if !ok {
		return
	}

	ctx := context.Background()
	if err := h.giveaways.Cancel(ctx, id, m.Author.ID, h.isAdmin(s, m)); err != nil {
		h.reply(s, m, renderError(err))
	}
}

func (h *Handler) parseGiveawayID(s *discordgo.Session, m *discordgo.MessageCreate, args []string, command string) (int64, bool) {
	if len(args) < 1 {
		h.reply(s, m, fmt.Sprintf("Usage: `%s%s <giveaway id>`", h.prefix, command))
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		h.reply(s, m, "❌ The giveaway id must be a number.")
		return 0, false
	}
	return id, true
}

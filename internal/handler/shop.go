package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

func (h *Handler) cmdShop(s *discordgo.Session, m *discordgo.MessageCreate) {
	var b strings.Builder
	b.WriteString("🛒 **Shop**\n")
	for _, item := range h.shop.Catalog() {
		fmt.Fprintf(&b, "%s **%s** (`%s`) — %d %s\n    %s\n",
			item.Emoji, item.Name, item.ID, item.Price, h.currency.Name, item.Description)
	}
	fmt.Fprintf(&b, "Buy with `%sbuy <item>`", h.prefix)
	h.reply(s, m, b.String())
}

func (h *Handler) cmdBuy(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) < 1 {
		h.reply(s, m, fmt.Sprintf("Usage: `%sbuy <item> [quantity]`", h.prefix))
		return
	}

	quantity := 1
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			h.reply(s, m, "❌ Quantity must be a positive number.")
			return
		}
		quantity = n
	}

	ctx := context.Background()
	item, err := h.shop.Purchase(ctx, m.Author.ID, displayName(m.Author), strings.ToLower(args[0]), quantity)
	if err != nil {
		h.reply(s, m, renderError(err))
		return
	}
	h.reply(s, m, fmt.Sprintf("%s Bought **%dx %s** for %d %s.",
		item.Emoji, quantity, item.Name, item.Price*int64(quantity), h.currency.Name))
}

func (h *Handler) cmdUse(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) < 1 {
		h.reply(s, m, fmt.Sprintf("Usage: `%suse <item>`", h.prefix))
		return
	}

	ctx := context.Background()
	result, err := h.shop.UseItem(ctx, m.Author.ID, displayName(m.Author), strings.ToLower(args[0]))
	if err != nil {
		h.reply(s, m, renderError(err))
		return
	}

	switch {
	case result.Coins > 0:
		h.reply(s, m, fmt.Sprintf("🎁 The mystery box held **%d** %s!", result.Coins, h.currency.Name))
	case result.WonItem != nil:
		h.reply(s, m, fmt.Sprintf("🎁 The mystery box held a %s **%s**!", result.WonItem.Emoji, result.WonItem.Name))
	case result.Effect != nil:
		h.reply(s, m, fmt.Sprintf("%s **%s** activated.", result.Item.Emoji, result.Item.Name))
	default:
		h.reply(s, m, fmt.Sprintf("%s Used **%s**.", result.Item.Emoji, result.Item.Name))
	}

	log.Debug().Str("user_id", m.Author.ID).Str("item", string(result.Item.ID)).Msg("item used")
}

func (h *Handler) cmdInventory(s *discordgo.Session, m *discordgo.MessageCreate) {
	ctx := context.Background()
	lines, err := h.shop.Inventory(ctx, m.Author.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", m.Author.ID).Msg("inventory query failed")
		h.reply(s, m, renderError(err))
		return
	}
	if len(lines) == 0 {
		h.reply(s, m, "🎒 Your inventory is empty.")
		return
	}

	var b strings.Builder
	b.WriteString("🎒 **Inventory**\n")
	for _, line := range lines {
		fmt.Fprintf(&b, "%s %s × %d\n", line.Item.Emoji, line.Item.Name, line.Quantity)
	}
	h.reply(s, m, b.String())
}

package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// cmdPlay runs one round of a registered game. Usage:
//
//	!coinflip <bet> <heads|tails>
//	!dice <bet> <1-6>
//	!slots <bet>
func (h *Handler) cmdPlay(s *discordgo.Session, m *discordgo.MessageCreate, command string, args []string) {
	if len(args) < 1 {
		h.reply(s, m, fmt.Sprintf("Usage: `%s%s <bet>%s`", h.prefix, command, choiceHint(command)))
		return
	}

	bet, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || bet <= 0 {
		h.reply(s, m, "❌ The bet must be a positive number.")
		return
	}

	choice := ""
	if len(args) > 1 {
		choice = strings.ToLower(args[1])
	}

	ctx := context.Background()
	result, err := h.games.Play(ctx, m.Author.ID, displayName(m.Author), command, bet, choice)
	if err != nil {
		h.reply(s, m, renderError(err))
		return
	}

	msg := result.Result.Description
	if result.Lucky {
		msg += "\n🍀 Your lucky charm was at work."
	}
	msg += fmt.Sprintf("\nBalance: **%d** %s", result.Balance, h.currency.Name)
	h.reply(s, m, msg)

	log.Debug().
		Str("user_id", m.Author.ID).
		Str("game", command).
		Int64("bet", bet).
		Int64("payout", result.Result.Payout).
		Bool("win", result.Result.Win).
		Msg("game settled")
}

func choiceHint(command string) string {
	switch command {
	case "coinflip":
		return " <heads|tails>"
	case "dice":
		return " <1-6>"
	default:
		return ""
	}
}

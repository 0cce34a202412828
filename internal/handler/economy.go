package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

func (h *Handler) cmdHelp(s *discordgo.Session, m *discordgo.MessageCreate) {
	p := h.prefix
	var b strings.Builder
	b.WriteString("**Commands**\n")
	fmt.Fprintf(&b, "`%sbalance` `%sdaily` `%swork` `%stop` `%shistory`\n", p, p, p, p, p)
	fmt.Fprintf(&b, "`%srank` — level card, `%slevels` — XP leaderboard\n", p, p)
	fmt.Fprintf(&b, "`%sshop` `%sbuy <item>` `%suse <item>` `%sinventory` `%seffects`\n", p, p, p, p, p)
	fmt.Fprintf(&b, "`%scoinflip <bet> <heads|tails>` `%sdice <bet> <1-6>` `%sslots <bet>`\n", p, p, p)
	fmt.Fprintf(&b, "`%sgstart <duration> <winners> <prize>` `%sgend <id>` `%sgreroll <id> [count]`\n", p, p, p)
	fmt.Fprintf(&b, "`%sdropstats` — your coin drop record", p)
	h.reply(s, m, b.String())
}

func (h *Handler) cmdBalance(s *discordgo.Session, m *discordgo.MessageCreate) {
	ctx := context.Background()
	user, err := h.economy.GetUser(ctx, m.Author.ID, displayName(m.Author))
	if err != nil {
		log.Error().Err(err).Str("user_id", m.Author.ID).Msg("balance lookup failed")
		h.reply(s, m, renderError(err))
		return
	}
	h.reply(s, m, fmt.Sprintf("%s **%s** has **%d** %s (lifetime earned: %d)",
		h.currency.Symbol, displayName(m.Author), user.Balance, h.currency.Name, user.TotalEarned))
}

func (h *Handler) cmdDaily(s *discordgo.Session, m *discordgo.MessageCreate) {
	ctx := context.Background()
	result, err := h.economy.ClaimDaily(ctx, m.Author.ID, displayName(m.Author))
	if err != nil {
		h.reply(s, m, renderError(err))
		return
	}

	msg := fmt.Sprintf("✅ Daily claimed: **+%d** %s. Balance: **%d**.", result.Amount, h.currency.Name, result.Balance)
	if result.Doubled {
		msg = fmt.Sprintf("✨ Daily doubled! **+%d** %s. Balance: **%d**.", result.Amount, h.currency.Name, result.Balance)
	}
	h.reply(s, m, msg)
}

func (h *Handler) cmdWork(s *discordgo.Session, m *discordgo.MessageCreate) {
	ctx := context.Background()
	result, err := h.economy.ClaimWork(ctx, m.Author.ID, displayName(m.Author))
	if err != nil {
		h.reply(s, m, renderError(err))
		return
	}

	msg := fmt.Sprintf("💼 %s and earned **+%d** %s. Balance: **%d**.",
		result.Flavor, result.Amount, h.currency.Name, result.Balance)
	if result.Bypassed {
		msg += " ⚡ (cooldown skipped)"
	}
	h.reply(s, m, msg)
}

func (h *Handler) cmdTop(s *discordgo.Session, m *discordgo.MessageCreate) {
	ctx := context.Background()
	users, err := h.economy.TopBalances(ctx, 10)
	if err != nil {
		log.Error().Err(err).Msg("leaderboard query failed")
		h.reply(s, m, renderError(err))
		return
	}
	if len(users) == 0 {
		h.reply(s, m, "📊 Nobody has any coins yet.")
		return
	}

	medals := []string{"🥇", "🥈", "🥉"}
	var b strings.Builder
	b.WriteString("🏆 **Richest members**\n")
	for i, user := range users {
		rank := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			rank = medals[i]
		}
		fmt.Fprintf(&b, "%s %s — %d\n", rank, user.Username, user.Balance)
	}
	h.reply(s, m, b.String())
}

func (h *Handler) cmdHistory(s *discordgo.Session, m *discordgo.MessageCreate) {
	ctx := context.Background()
	txs, err := h.economy.History(ctx, m.Author.ID, 10)
	if err != nil {
		log.Error().Err(err).Str("user_id", m.Author.ID).Msg("history query failed")
		h.reply(s, m, renderError(err))
		return
	}
	if len(txs) == 0 {
		h.reply(s, m, "📒 No transactions yet.")
		return
	}

	var b strings.Builder
	b.WriteString("📒 **Recent transactions**\n")
	for _, tx := range txs {
		sign := ""
		if tx.Amount > 0 {
			sign = "+"
		}
		fmt.Fprintf(&b, "`%s%d` %s — %s\n", sign, tx.Amount, tx.Kind, tx.Description)
	}
	h.reply(s, m, b.String())
}

func (h *Handler) cmdEffects(s *discordgo.Session, m *discordgo.MessageCreate) {
	ctx := context.Background()
	effects, err := h.effects.List(ctx, m.Author.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", m.Author.ID).Msg("effects query failed")
		h.reply(s, m, renderError(err))
		return
	}
	if len(effects) == 0 {
		h.reply(s, m, "🧪 No active effects.")
		return
	}

	var b strings.Builder
	b.WriteString("🧪 **Active effects**\n")
	for _, e := range effects {
		switch {
		case e.UsesRemaining != nil:
			fmt.Fprintf(&b, "• %s — %d uses left\n", e.EffectType, *e.UsesRemaining)
		case e.ExpiresAt != nil:
			fmt.Fprintf(&b, "• %s — expires <t:%d:R>\n", e.EffectType, e.ExpiresAt.Unix())
		default:
			fmt.Fprintf(&b, "• %s\n", e.EffectType)
		}
	}
	h.reply(s, m, b.String())
}

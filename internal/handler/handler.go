// Package handler translates Discord gateway events into service calls
// and renders the results back to the channel.
package handler

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"discord-companion-bot/internal/config"
	"discord-companion-bot/internal/service"
)

// Handler routes prefixed commands and gateway events to the services.
type Handler struct {
	prefix   string
	currency config.CurrencyConfig

	economy   *service.EconomyService
	games     *service.GameService
	shop      *service.ShopService
	effects   *service.EffectService
	leveling  *service.LevelingService
	giveaways *service.GiveawayService
	drops     *service.DropService
}

// New creates a Handler wired to all services.
func New(
	prefix string,
	currency config.CurrencyConfig,
	economy *service.EconomyService,
	games *service.GameService,
	shop *service.ShopService,
	effects *service.EffectService,
	leveling *service.LevelingService,
	giveaways *service.GiveawayService,
	drops *service.DropService,
) *Handler {
	return &Handler{
		prefix:    prefix,
		currency:  currency,
		economy:   economy,
		games:     games,
		shop:      shop,
		effects:   effects,
		leveling:  leveling,
		giveaways: giveaways,
		drops:     drops,
	}
}

// OnMessageCreate handles every incoming message: commands first, text
// XP for everything else.
func (h *Handler) OnMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	if strings.HasPrefix(m.Content, h.prefix) {
		h.dispatch(s, m)
		return
	}

	h.awardTextXP(s, m)
}

// dispatch parses "<prefix><command> [args...]" and routes it.
func (h *Handler) dispatch(s *discordgo.Session, m *discordgo.MessageCreate) {
	fields := strings.Fields(strings.TrimPrefix(m.Content, h.prefix))
	if len(fields) == 0 {
		return
	}
	command := strings.ToLower(fields[0])
	args := fields[1:]

	switch command {
	case "help":
		h.cmdHelp(s, m)
	case "balance", "bal":
		h.cmdBalance(s, m)
	case "daily":
		h.cmdDaily(s, m)
	case "work":
		h.cmdWork(s, m)
	case "top", "rich":
		h.cmdTop(s, m)
	case "rank", "level":
		h.cmdRank(s, m)
	case "levels", "xptop":
		h.cmdTopLevels(s, m)
	case "history":
		h.cmdHistory(s, m)
	case "effects":
		h.cmdEffects(s, m)
	case "shop":
		h.cmdShop(s, m)
	case "buy":
		h.cmdBuy(s, m, args)
	case "use":
		h.cmdUse(s, m, args)
	case "inventory", "inv":
		h.cmdInventory(s, m)
	case "coinflip", "dice", "slots":
		h.cmdPlay(s, m, command, args)
	case "gstart":
		h.cmdGiveawayStart(s, m, args)
	case "gend":
		h.cmdGiveawayEnd(s, m, args)
	case "greroll":
		h.cmdGiveawayReroll(s, m, args)
	case "gcancel":
		h.cmdGiveawayCancel(s, m, args)
	case "dropstats":
		h.cmdDropStats(s, m)
	case "dropchannel":
		h.cmdDropChannel(s, m, args)
	case "addcoins", "removecoins", "setcoins":
		h.cmdAdminCoins(s, m, command, args)
	}
}

func (h *Handler) reply(s *discordgo.Session, m *discordgo.MessageCreate, content string) {
	if _, err := s.ChannelMessageSend(m.ChannelID, content); err != nil {
		log.Warn().Err(err).Str("channel_id", m.ChannelID).Msg("failed to send reply")
	}
}

// isAdmin reports whether the message author has the administrator
// permission in the channel.
func (h *Handler) isAdmin(s *discordgo.Session, m *discordgo.MessageCreate) bool {
	perms, err := s.UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", m.Author.ID).Msg("failed to resolve permissions")
		return false
	}
	return perms&discordgo.PermissionAdministrator != 0
}

func displayName(u *discordgo.User) string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

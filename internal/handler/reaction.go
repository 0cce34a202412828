package handler

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"discord-companion-bot/internal/service"
)

// OnReactionAdd routes reactions to giveaway entries and drop claims.
func (h *Handler) OnReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.UserID == s.State.User.ID {
		return
	}

	ctx := context.Background()
	emoji := r.Emoji.Name

	if emoji == service.EntryEmoji {
		if err := h.giveaways.HandleEntry(ctx, r.MessageID, r.UserID); err != nil {
			log.Error().Err(err).Str("message_id", r.MessageID).Msg("giveaway entry failed")
		}
		return
	}

	username := r.UserID
	if member, err := s.State.Member(r.GuildID, r.UserID); err == nil && member.User != nil {
		username = displayName(member.User)
	}

	claim, err := h.drops.Claim(ctx, r.MessageID, r.UserID, username, emoji)
	if err != nil {
		log.Error().Err(err).Str("message_id", r.MessageID).Msg("drop claim failed")
		return
	}
	if claim == nil {
		return
	}

	content := fmt.Sprintf("%s grabbed **%d** %s from the %s drop!", username, claim.Amount, h.currency.Name, claim.Rarity)
	if _, err := s.ChannelMessageSend(r.ChannelID, content); err != nil {
		log.Warn().Err(err).Str("channel_id", r.ChannelID).Msg("failed to announce claim")
	}
}

// OnReactionRemove withdraws giveaway entries.
func (h *Handler) OnReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	if r.UserID == s.State.User.ID || r.Emoji.Name != service.EntryEmoji {
		return
	}

	ctx := context.Background()
	if err := h.giveaways.HandleEntryRemoval(ctx, r.MessageID, r.UserID); err != nil {
		log.Error().Err(err).Str("message_id", r.MessageID).Msg("giveaway entry removal failed")
	}
}

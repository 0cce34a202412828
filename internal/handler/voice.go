package handler

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// OnVoiceStateUpdate tracks voice sessions for the voice XP stream.
// A channel change closes the old session and opens a new one.
func (h *Handler) OnVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	userID := v.UserID
	if member, err := s.State.Member(v.GuildID, userID); err == nil && member.User != nil && member.User.Bot {
		return
	}

	previousChannel, inSession := h.leveling.InVoice(userID)

	if inSession && v.ChannelID != previousChannel {
		occupied := h.channelOccupied(s, v.GuildID, previousChannel, userID)
		username := userID
		if member, err := s.State.Member(v.GuildID, userID); err == nil && member.User != nil {
			username = displayName(member.User)
		}

		ctx := context.Background()
		levelUp, err := h.leveling.OnVoiceLeave(ctx, userID, username, occupied)
		if err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("voice xp award failed")
		} else if levelUp != nil {
			announceIn := v.ChannelID
			if announceIn == "" {
				announceIn = previousChannel
			}
			h.announceLevelUp(s, announceIn, levelUp)
		}
	}

	if v.ChannelID != "" && v.ChannelID != previousChannel {
		h.leveling.OnVoiceJoin(v.GuildID, userID, v.ChannelID)
	}
}

// channelOccupied reports whether the channel still holds another
// non-bot member besides the leaver, which together with the leaver
// makes the session a shared one.
func (h *Handler) channelOccupied(s *discordgo.Session, guildID, channelID, leaverID string) bool {
	guild, err := s.State.Guild(guildID)
	if err != nil {
		return false
	}

	for _, vs := range guild.VoiceStates {
		if vs.ChannelID != channelID || vs.UserID == leaverID {
			continue
		}
		member, err := s.State.Member(guildID, vs.UserID)
		if err != nil || member.User == nil || member.User.Bot {
			continue
		}
		return true
	}
	return false
}

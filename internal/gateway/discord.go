package gateway

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Discord implements Gateway over a discordgo session.
type Discord struct {
	session *discordgo.Session
}

// NewDiscord wraps an open discordgo session.
func NewDiscord(session *discordgo.Session) *Discord {
	return &Discord{session: session}
}

// SendMessage posts content to a channel and returns the message ID.
func (d *Discord) SendMessage(channelID, content string) (string, error) {
	msg, err := d.session.ChannelMessageSend(channelID, content)
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}
	return msg.ID, nil
}

// EditMessage replaces the content of an existing message.
func (d *Discord) EditMessage(channelID, messageID, content string) error {
	if _, err := d.session.ChannelMessageEdit(channelID, messageID, content); err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

// AddReaction adds the bot's reaction to a message.
func (d *Discord) AddReaction(channelID, messageID, emoji string) error {
	if err := d.session.MessageReactionAdd(channelID, messageID, emoji); err != nil {
		return fmt.Errorf("failed to add reaction: %w", err)
	}
	return nil
}

// RemoveReaction removes a user's reaction from a message.
func (d *Discord) RemoveReaction(channelID, messageID, emoji, userID string) error {
	if err := d.session.MessageReactionRemove(channelID, messageID, emoji, userID); err != nil {
		return fmt.Errorf("failed to remove reaction: %w", err)
	}
	return nil
}

// AddRole grants a role to a guild member.
func (d *Discord) AddRole(guildID, userID, roleID string) error {
	if err := d.session.GuildMemberRoleAdd(guildID, userID, roleID); err != nil {
		return fmt.Errorf("failed to add role: %w", err)
	}
	return nil
}

// RemoveRole revokes a role from a guild member.
func (d *Discord) RemoveRole(guildID, userID, roleID string) error {
	if err := d.session.GuildMemberRoleRemove(guildID, userID, roleID); err != nil {
		return fmt.Errorf("failed to remove role: %w", err)
	}
	return nil
}

// SendDM delivers a direct message to a user.
func (d *Discord) SendDM(userID, content string) error {
	channel, err := d.session.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("failed to open DM channel: %w", err)
	}
	if _, err := d.session.ChannelMessageSend(channel.ID, content); err != nil {
		return fmt.Errorf("failed to send DM: %w", err)
	}
	return nil
}

// Member looks up a guild member, preferring the gateway state cache.
func (d *Discord) Member(guildID, userID string) (*MemberInfo, error) {
	member, err := d.session.State.Member(guildID, userID)
	if err != nil {
		member, err = d.session.GuildMember(guildID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch member: %w", err)
		}
	}

	info := &MemberInfo{
		UserID:  userID,
		RoleIDs: member.Roles,
		Booster: member.PremiumSince != nil,
	}
	if member.User != nil {
		info.Username = member.User.Username
		info.Premium = member.User.PremiumType != 0
		if ts, err := discordgo.SnowflakeTimestamp(member.User.ID); err == nil {
			info.AccountCreatedAt = ts
		}
	}
	if !member.JoinedAt.IsZero() {
		info.JoinedAt = member.JoinedAt
	}
	return info, nil
}

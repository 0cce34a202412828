// Package gateway abstracts the chat platform behind a narrow
// interface so services never import the Discord client directly.
package gateway

import "time"

// MemberInfo is the slice of guild-member state the services need for
// eligibility checks and entry weighting.
type MemberInfo struct {
	UserID           string
	Username         string
	RoleIDs          []string
	Booster          bool // actively boosting the guild
	Premium          bool // platform premium subscriber
	JoinedAt         time.Time
	AccountCreatedAt time.Time
}

// HasRole reports whether the member holds the given role.
func (m *MemberInfo) HasRole(roleID string) bool {
	for _, id := range m.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// Gateway is the platform surface the services drive. Implementations
// must be safe for concurrent use.
type Gateway interface {
	// SendMessage posts content to a channel and returns the message ID.
	SendMessage(channelID, content string) (string, error)

	// EditMessage replaces the content of an existing message.
	EditMessage(channelID, messageID, content string) error

	// AddReaction adds the bot's reaction to a message.
	AddReaction(channelID, messageID, emoji string) error

	// RemoveReaction removes a user's reaction from a message.
	RemoveReaction(channelID, messageID, emoji, userID string) error

	// AddRole grants a role to a guild member.
	AddRole(guildID, userID, roleID string) error

	// RemoveRole revokes a role from a guild member.
	RemoveRole(guildID, userID, roleID string) error

	// SendDM delivers a direct message to a user.
	SendDM(userID, content string) error

	// Member looks up a guild member.
	Member(guildID, userID string) (*MemberInfo, error)
}

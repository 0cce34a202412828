// Package bot owns the Discord session: connection, intents, and
// event handler registration.
package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"discord-companion-bot/internal/config"
	"discord-companion-bot/internal/handler"
)

// Bot wraps the Discord session with application dependencies.
type Bot struct {
	session *discordgo.Session
	cfg     *config.Config
}

// New creates a Bot from the configured token. The session exists but
// is not opened yet; wire handlers with RegisterHandlers, then Start.
func New(cfg *config.Config) (*Bot, error) {
	if cfg.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	session, err := discordgo.New("Bot " + cfg.Bot.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMembers |
		discordgo.IntentMessageContent

	return &Bot{session: session, cfg: cfg}, nil
}

// RegisterHandlers attaches the event handlers to the session.
func (b *Bot) RegisterHandlers(h *handler.Handler) {
	b.session.AddHandler(h.OnMessageCreate)
	b.session.AddHandler(h.OnReactionAdd)
	b.session.AddHandler(h.OnReactionRemove)
	b.session.AddHandler(h.OnVoiceStateUpdate)
	b.session.AddHandler(onReady)
}

func onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Info().
		Str("username", r.User.Username).
		Int("guilds", len(r.Guilds)).
		Msg("Gateway connected")
}

// Start opens the gateway connection.
func (b *Bot) Start() error {
	log.Info().Msg("Starting bot...")
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open gateway: %w", err)
	}
	return nil
}

// Stop closes the gateway connection gracefully.
func (b *Bot) Stop() error {
	log.Info().Msg("Stopping bot...")
	return b.session.Close()
}

// Session returns the underlying Discord session.
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

package bot

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handleGuildMemberAdd sends the configured welcome message for new members.
func (b *Bot) handleGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	ctx := context.Background()

	cfg, err := b.settings.Get(ctx, m.GuildID)
	if err != nil {
		log.WithError(err).WithField("guildID", m.GuildID).Error("Failed to load guild config for welcome")
		return
	}
	if !cfg.Welcome.Enabled || cfg.Welcome.ChannelID == "" {
		return
	}

	guildName := m.GuildID
	if guild, err := s.State.Guild(m.GuildID); err == nil {
		guildName = guild.Name
	}

	message := cfg.Welcome.MessageTemplate
	message = strings.ReplaceAll(message, "{user}", m.User.Mention())
	message = strings.ReplaceAll(message, "{guild}", guildName)

	if _, err := s.ChannelMessageSend(cfg.Welcome.ChannelID, message); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"guildID":   m.GuildID,
			"channelID": cfg.Welcome.ChannelID,
		}).Error("Failed to send welcome message")
	}
}

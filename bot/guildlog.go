package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"warden/models"
)

// logChannelFor returns the guild's log channel when the given event key is
// enabled, or "" when nothing should be posted.
func (b *Bot) logChannelFor(guildID, event string) string {
	cfg, err := b.settings.Get(context.Background(), guildID)
	if err != nil {
		log.WithError(err).WithField("guildID", guildID).Error("Failed to load guild config for event log")
		return ""
	}
	if cfg.Logging.ChannelID == "" || !cfg.Logging.Events[event] {
		return ""
	}
	return cfg.Logging.ChannelID
}

func (b *Bot) postLog(s *discordgo.Session, channelID, content string) {
	if _, err := s.ChannelMessageSend(channelID, content); err != nil {
		log.WithError(err).WithField("channelID", channelID).Error("Failed to post log event")
	}
}

func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.GuildID == "" || m.Author == nil || m.Author.Bot {
		return
	}
	channelID := b.logChannelFor(m.GuildID, models.LogEventMessageCreate)
	if channelID == "" || channelID == m.ChannelID {
		return
	}
	b.postLog(s, channelID, fmt.Sprintf("📝 Message by <@%s> in <#%s>", m.Author.ID, m.ChannelID))
}

func (b *Bot) handleMessageDelete(s *discordgo.Session, m *discordgo.MessageDelete) {
	if m.GuildID == "" {
		return
	}
	channelID := b.logChannelFor(m.GuildID, models.LogEventMessageDelete)
	if channelID == "" {
		return
	}
	b.postLog(s, channelID, fmt.Sprintf("🗑️ Message %s deleted in <#%s>", m.ID, m.ChannelID))
}

func (b *Bot) handleMessageUpdate(s *discordgo.Session, m *discordgo.MessageUpdate) {
	if m.GuildID == "" || m.Author == nil || m.Author.Bot {
		return
	}
	channelID := b.logChannelFor(m.GuildID, models.LogEventMessageUpdate)
	if channelID == "" || channelID == m.ChannelID {
		return
	}
	b.postLog(s, channelID, fmt.Sprintf("✏️ Message by <@%s> edited in <#%s>", m.Author.ID, m.ChannelID))
}

func (b *Bot) handleInviteCreate(s *discordgo.Session, m *discordgo.InviteCreate) {
	if m.GuildID == "" {
		return
	}
	channelID := b.logChannelFor(m.GuildID, models.LogEventInviteCreate)
	if channelID == "" {
		return
	}
	b.postLog(s, channelID, fmt.Sprintf("🔗 Invite `%s` created for <#%s>", m.Code, m.ChannelID))
}

func (b *Bot) handleInviteDelete(s *discordgo.Session, m *discordgo.InviteDelete) {
	if m.GuildID == "" {
		return
	}
	channelID := b.logChannelFor(m.GuildID, models.LogEventInviteDelete)
	if channelID == "" {
		return
	}
	b.postLog(s, channelID, fmt.Sprintf("🔗 Invite `%s` deleted for <#%s>", m.Code, m.ChannelID))
}

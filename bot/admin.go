package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// handlePermissions mutates a command's role allow-list.
func (b *Bot) handlePermissions(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	sub := i.ApplicationCommandData().Options[0]
	opts := optionMap(sub.Options)

	command := opts["command"].StringValue()
	if !b.registry.Exists(command) {
		respondEphemeral(s, i, fmt.Sprintf("❌ Unknown command `%s`.", command))
		return nil
	}

	switch sub.Name {
	case "allow":
		role := opts["role"].RoleValue(s, i.GuildID)

		cfg, err := b.settings.Get(ctx, i.GuildID)
		if err != nil {
			return fmt.Errorf("failed to load guild config: %w", err)
		}

		next := append(withoutRole(cfg.CommandPermissions[command], role.ID), role.ID)
		if err := b.settings.SetCommandRoles(ctx, i.GuildID, command, next); err != nil {
			return fmt.Errorf("failed to update command roles: %w", err)
		}
		respondEphemeral(s, i, fmt.Sprintf("✅ Role **%s** may now use `/%s`.", role.Name, command))

	case "deny":
		role := opts["role"].RoleValue(s, i.GuildID)

		cfg, err := b.settings.Get(ctx, i.GuildID)
		if err != nil {
			return fmt.Errorf("failed to load guild config: %w", err)
		}

		current, configured := cfg.CommandPermissions[command]
		if !configured {
			respondEphemeral(s, i, fmt.Sprintf("❌ `/%s` has no allow-list to remove roles from.", command))
			return nil
		}

		next := withoutRole(current, role.ID)
		if len(next) == 0 {
			// Storing an explicit empty list would open the command to everyone.
			// Removing the last allowed role restores the default policy instead.
			if err := b.settings.ClearCommandRoles(ctx, i.GuildID, command); err != nil {
				return fmt.Errorf("failed to clear command roles: %w", err)
			}
			respondEphemeral(s, i, fmt.Sprintf("✅ Role **%s** removed; `/%s` is back to its default policy.", role.Name, command))
			return nil
		}

		if err := b.settings.SetCommandRoles(ctx, i.GuildID, command, next); err != nil {
			return fmt.Errorf("failed to update command roles: %w", err)
		}
		respondEphemeral(s, i, fmt.Sprintf("✅ Role **%s** may no longer use `/%s`.", role.Name, command))

	case "everyone":
		if err := b.settings.SetCommandRoles(ctx, i.GuildID, command, []string{}); err != nil {
			return fmt.Errorf("failed to update command roles: %w", err)
		}
		respondEphemeral(s, i, fmt.Sprintf("✅ `/%s` is now open to everyone.", command))

	case "reset":
		if err := b.settings.ClearCommandRoles(ctx, i.GuildID, command); err != nil {
			return fmt.Errorf("failed to clear command roles: %w", err)
		}
		respondEphemeral(s, i, fmt.Sprintf("✅ `/%s` is back to its default policy.", command))
	}

	return nil
}

// handleDisable turns a command off for the guild.
func (b *Bot) handleDisable(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	opts := optionMap(i.ApplicationCommandData().Options)
	command := opts["command"].StringValue()

	if !b.registry.Exists(command) {
		respondEphemeral(s, i, fmt.Sprintf("❌ Unknown command `%s`.", command))
		return nil
	}
	if b.registry.IsProtected(command) {
		respondEphemeral(s, i, fmt.Sprintf("❌ `/%s` cannot be disabled.", command))
		return nil
	}

	if err := b.settings.SetCommandDisabled(ctx, i.GuildID, command, true); err != nil {
		return fmt.Errorf("failed to disable command: %w", err)
	}
	respondEphemeral(s, i, fmt.Sprintf("✅ `/%s` is now disabled on this server.", command))
	return nil
}

// handleEnable turns a disabled command back on.
func (b *Bot) handleEnable(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	opts := optionMap(i.ApplicationCommandData().Options)
	command := opts["command"].StringValue()

	if !b.registry.Exists(command) {
		respondEphemeral(s, i, fmt.Sprintf("❌ Unknown command `%s`.", command))
		return nil
	}

	if err := b.settings.SetCommandDisabled(ctx, i.GuildID, command, false); err != nil {
		return fmt.Errorf("failed to enable command: %w", err)
	}
	respondEphemeral(s, i, fmt.Sprintf("✅ `/%s` is enabled again.", command))
	return nil
}

// handleLogging configures the guild event log.
func (b *Bot) handleLogging(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	sub := i.ApplicationCommandData().Options[0]
	opts := optionMap(sub.Options)

	switch sub.Name {
	case "channel":
		channel := opts["channel"].ChannelValue(s)
		if err := b.settings.SetLogChannel(ctx, i.GuildID, channel.ID); err != nil {
			return fmt.Errorf("failed to set log channel: %w", err)
		}
		respondEphemeral(s, i, fmt.Sprintf("✅ Log events will be posted to <#%s>.", channel.ID))

	case "event":
		event := opts["event"].StringValue()
		enabled := opts["enabled"].BoolValue()
		if err := b.settings.SetLogEvent(ctx, i.GuildID, event, enabled); err != nil {
			return fmt.Errorf("failed to toggle log event: %w", err)
		}
		state := "off"
		if enabled {
			state = "on"
		}
		respondEphemeral(s, i, fmt.Sprintf("✅ Logging for `%s` is now %s.", event, state))
	}

	return nil
}

// handleWelcome configures the member welcome message.
func (b *Bot) handleWelcome(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	sub := i.ApplicationCommandData().Options[0]
	opts := optionMap(sub.Options)

	switch sub.Name {
	case "enable":
		channel := opts["channel"].ChannelValue(s)
		template := ""
		if opt, ok := opts["template"]; ok {
			template = opt.StringValue()
		}
		if err := b.settings.SetWelcome(ctx, i.GuildID, true, channel.ID, template); err != nil {
			return fmt.Errorf("failed to enable welcome messages: %w", err)
		}
		respondEphemeral(s, i, fmt.Sprintf("✅ Welcome messages enabled in <#%s>.", channel.ID))

	case "disable":
		cfg, err := b.settings.Get(ctx, i.GuildID)
		if err != nil {
			return fmt.Errorf("failed to load guild config: %w", err)
		}
		if err := b.settings.SetWelcome(ctx, i.GuildID, false, cfg.Welcome.ChannelID, cfg.Welcome.MessageTemplate); err != nil {
			return fmt.Errorf("failed to disable welcome messages: %w", err)
		}
		respondEphemeral(s, i, "✅ Welcome messages disabled.")
	}

	return nil
}

// withoutRole returns roles with roleID filtered out. The result is never nil.
func withoutRole(roles []string, roleID string) []string {
	next := make([]string, 0, len(roles))
	for _, id := range roles {
		if id != roleID {
			next = append(next, id)
		}
	}
	return next
}

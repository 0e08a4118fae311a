package bot

import (
	"github.com/bwmarrin/discordgo"

	"warden/models"
)

// registerCommandSet fills the registry with every command the bot serves.
// permissions and enable are protected: disabling either would lock a guild out
// of its own configuration.
func (b *Bot) registerCommandSet() {
	logEventChoices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(models.LogEventKeys))
	for _, key := range models.LogEventKeys {
		logEventChoices = append(logEventChoices, &discordgo.ApplicationCommandOptionChoice{
			Name:  key,
			Value: key,
		})
	}

	b.registry.Register(&Command{
		Protected: true,
		Handler:   b.handlePermissions,
		Definition: &discordgo.ApplicationCommand{
			Name:        "permissions",
			Description: "Configure which roles may use which commands",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "allow",
					Description: "Allow a role to use a command",
					Options: []*discordgo.ApplicationCommandOption{
						commandNameOption(),
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "role",
							Description: "Role to allow",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "deny",
					Description: "Remove a role from a command's allow-list",
					Options: []*discordgo.ApplicationCommandOption{
						commandNameOption(),
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "role",
							Description: "Role to remove",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "everyone",
					Description: "Open a command to everyone (empty allow-list)",
					Options: []*discordgo.ApplicationCommandOption{
						commandNameOption(),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "reset",
					Description: "Remove a command's allow-list, restoring default policy",
					Options: []*discordgo.ApplicationCommandOption{
						commandNameOption(),
					},
				},
			},
		},
	})

	b.registry.Register(&Command{
		Handler: b.handleDisable,
		Definition: &discordgo.ApplicationCommand{
			Name:        "disable",
			Description: "Turn a command off for this server",
			Options: []*discordgo.ApplicationCommandOption{
				commandNameOption(),
			},
		},
	})

	b.registry.Register(&Command{
		Protected: true,
		Handler:   b.handleEnable,
		Definition: &discordgo.ApplicationCommand{
			Name:        "enable",
			Description: "Turn a disabled command back on",
			Options: []*discordgo.ApplicationCommandOption{
				commandNameOption(),
			},
		},
	})

	b.registry.Register(&Command{
		Handler: b.handleLogging,
		Definition: &discordgo.ApplicationCommand{
			Name:        "logging",
			Description: "Configure the guild event log",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "channel",
					Description: "Set the channel log events are posted to",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:         discordgo.ApplicationCommandOptionChannel,
							Name:         "channel",
							Description:  "Log channel",
							ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
							Required:     true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "event",
					Description: "Turn one log event on or off",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "event",
							Description: "Event to toggle",
							Required:    true,
							Choices:     logEventChoices,
						},
						{
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Name:        "enabled",
							Description: "Whether to log this event",
							Required:    true,
						},
					},
				},
			},
		},
	})

	b.registry.Register(&Command{
		Handler: b.handleWelcome,
		Definition: &discordgo.ApplicationCommand{
			Name:        "welcome",
			Description: "Configure the member welcome message",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "enable",
					Description: "Enable welcome messages",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:         discordgo.ApplicationCommandOptionChannel,
							Name:         "channel",
							Description:  "Channel to welcome members in",
							ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
							Required:     true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "template",
							Description: "Message template, supports {user} and {guild}",
							Required:    false,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "disable",
					Description: "Disable welcome messages",
				},
			},
		},
	})

	b.registry.Register(&Command{
		Handler: b.handleClean,
		Definition: &discordgo.ApplicationCommand{
			Name:        "clean",
			Description: "Delete recent messages in this channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "count",
					Description: "Number of messages to delete (max 100)",
					Required:    true,
				},
			},
		},
	})

	b.registry.Register(&Command{
		Handler: b.handleRoll,
		Definition: &discordgo.ApplicationCommand{
			Name:        "roll",
			Description: "Roll a die",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "sides",
					Description: "Number of sides (default 6)",
					Required:    false,
				},
			},
		},
	})
}

func commandNameOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "command",
		Description: "Command name",
		Required:    true,
	}
}

package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"warden/service"
)

// Config holds bot configuration
type Config struct {
	Token   string
	GuildID string // when set, commands register guild-scoped (instant in dev)
}

type Bot struct {
	config   Config
	session  *discordgo.Session
	settings service.GuildConfigService
	registry *Registry
	gate     *Gate
}

func New(config Config, settings service.GuildConfigService) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildInvites |
		discordgo.IntentMessageContent

	bot := &Bot{
		config:   config,
		session:  dg,
		settings: settings,
		registry: NewRegistry(),
		gate:     NewGate(settings),
	}
	bot.registerCommandSet()

	// Every guild-scoped command interaction passes through the dispatch gate.
	dg.AddHandler(bot.handleInteraction)

	// Consumers of the welcome and logging configuration.
	dg.AddHandler(bot.handleGuildMemberAdd)
	dg.AddHandler(bot.handleMessageCreate)
	dg.AddHandler(bot.handleMessageDelete)
	dg.AddHandler(bot.handleMessageUpdate)
	dg.AddHandler(bot.handleInviteCreate)
	dg.AddHandler(bot.handleInviteDelete)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

// registerCommands pushes the registry's definitions to Discord.
func (b *Bot) registerCommands() error {
	_, err := b.session.ApplicationCommandBulkOverwrite(
		b.session.State.User.ID, b.config.GuildID, b.registry.Definitions())
	if err != nil {
		return fmt.Errorf("error overwriting application commands: %w", err)
	}
	return nil
}

// handleInteraction is invoked exactly once per command interaction and is the
// only path into command business logic.
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if i.GuildID == "" || i.Member == nil {
		return
	}

	name := i.ApplicationCommandData().Name
	cmd, ok := b.registry.Lookup(name)
	if !ok {
		// Stale registration on Discord's side; answer so the interaction
		// does not time out client-side.
		log.WithFields(log.Fields{
			"guildID": i.GuildID,
			"command": name,
		}).Warn("Interaction for unknown command")
		respondEphemeral(s, i, fmt.Sprintf("❌ Unknown command `/%s`.", name))
		return
	}

	ctx := context.Background()

	member, err := b.memberFromInteraction(s, i)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"guildID": i.GuildID,
			"command": name,
		}).Error("Failed to resolve invoking member, denying invocation")
		respondEphemeral(s, i, "❌ Something went wrong checking permissions. Please try again.")
		return
	}

	if decision := b.gate.Check(ctx, i.GuildID, name, member); !decision.Allowed {
		respondEphemeral(s, i, "❌ "+denyMessage(name, decision.Reason))
		return
	}

	b.runCommand(ctx, cmd, s, i)
}

// runCommand executes admitted business logic. Errors and panics become a
// generic user-visible failure.
func (b *Bot) runCommand(ctx context.Context, cmd *Command, s *discordgo.Session, i *discordgo.InteractionCreate) {
	name := cmd.Definition.Name
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"guildID": i.GuildID,
				"command": name,
				"panic":   r,
			}).Error("Command handler panicked")
			respondEphemeral(s, i, "❌ Something went wrong running the command.")
		}
	}()

	if err := cmd.Handler(ctx, s, i); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"guildID": i.GuildID,
			"command": name,
		}).Error("Command handler failed")
		respondEphemeral(s, i, "❌ Something went wrong running the command.")
	}
}

// memberFromInteraction builds the resolver's view of the invoking member.
func (b *Bot) memberFromInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) (service.Member, error) {
	guild, err := s.State.Guild(i.GuildID)
	if err != nil {
		guild, err = s.Guild(i.GuildID)
		if err != nil {
			return service.Member{}, fmt.Errorf("failed to fetch guild %s: %w", i.GuildID, err)
		}
	}

	return service.Member{
		ID:      i.Member.User.ID,
		RoleIDs: i.Member.Roles,
		IsOwner: guild.OwnerID == i.Member.User.ID,
	}, nil
}

package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"warden/events"
	"warden/models"
)

// settingsService implements the GuildConfigService interface.
//
// The document store is treated as authoritative when reachable; every write is
// additionally mirrored into the snapshot synchronously, so the very next read
// reflects it no matter which backend answers. Document store write failures are
// logged and swallowed: the bot stays fully functional in snapshot-only mode.
type settingsService struct {
	docs DocumentStore
	snap SnapshotStore
	bus  *events.Bus
}

// NewGuildConfigService creates a new guild configuration service. docs may be
// nil when no document store is configured (snapshot-only mode).
func NewGuildConfigService(docs DocumentStore, snap SnapshotStore, bus *events.Bus) GuildConfigService {
	return &settingsService{
		docs: docs,
		snap: snap,
		bus:  bus,
	}
}

func (s *settingsService) docsAvailable() bool {
	return s.docs != nil && s.docs.Available()
}

// Get retrieves guild configuration, lazily creating a default record in the
// active backend the first time a guild is seen.
func (s *settingsService) Get(ctx context.Context, guildID string) (*models.GuildConfig, error) {
	if s.docsAvailable() {
		cfg, err := s.docs.FindByGuildID(ctx, guildID)
		switch {
		case err != nil:
			// Transient backend trouble: fall through to the snapshot.
			log.WithError(err).WithField("guildID", guildID).
				Warn("Document store read failed, falling back to snapshot")

		case cfg == nil:
			cfg = models.NewGuildConfig(guildID)
			if err := s.docs.Create(ctx, cfg); err != nil {
				log.WithError(err).WithField("guildID", guildID).
					Warn("Failed to create default guild config in document store")
			}
			s.mirror(guildID, cfg)
			return cfg, nil

		default:
			if models.Normalize(cfg) {
				// Read raced ahead of the startup sweep; persist the catch-up.
				set, unset := models.NormalizedUpdate(cfg)
				if err := s.docs.Upsert(ctx, guildID, set, unset); err != nil {
					log.WithError(err).WithField("guildID", guildID).
						Warn("Failed to persist schema migration on read")
				}
			}
			return cfg, nil
		}
	}

	if cfg, ok := s.snap.Get(guildID); ok {
		return cfg, nil
	}
	cfg, err := s.snap.Mutate(guildID, func(*models.GuildConfig) {})
	if err != nil {
		return nil, fmt.Errorf("failed to create default guild config in snapshot: %w", err)
	}
	return cfg, nil
}

// SetCommandRoles replaces the role allow-list for a command.
func (s *settingsService) SetCommandRoles(ctx context.Context, guildID, command string, roleIDs []string) error {
	// An explicit empty list means "everyone"; never store nil for a present key.
	roles := make([]string, 0, len(roleIDs))
	roles = append(roles, roleIDs...)

	field := "commandPermissions." + command
	return s.apply(ctx, guildID, field,
		map[string]interface{}{field: roles}, nil,
		func(cfg *models.GuildConfig) {
			if cfg.CommandPermissions == nil {
				cfg.CommandPermissions = make(map[string][]string)
			}
			cfg.CommandPermissions[command] = roles
		})
}

// ClearCommandRoles removes the command's allow-list, restoring default policy.
func (s *settingsService) ClearCommandRoles(ctx context.Context, guildID, command string) error {
	field := "commandPermissions." + command
	return s.apply(ctx, guildID, field,
		nil, []string{field},
		func(cfg *models.GuildConfig) {
			delete(cfg.CommandPermissions, command)
		})
}

// SetCommandDisabled adds or removes a command from the disabled set. The new set
// is computed from the current authoritative record; concurrent updates to the
// same set resolve last-write-wins.
func (s *settingsService) SetCommandDisabled(ctx context.Context, guildID, command string, disabled bool) error {
	current, err := s.Get(ctx, guildID)
	if err != nil {
		return fmt.Errorf("failed to load guild config: %w", err)
	}

	next := make([]string, 0, len(current.DisabledCommands)+1)
	for _, name := range current.DisabledCommands {
		if name != command {
			next = append(next, name)
		}
	}
	if disabled {
		next = append(next, command)
	}

	return s.apply(ctx, guildID, "disabledCommands",
		map[string]interface{}{"disabledCommands": next}, nil,
		func(cfg *models.GuildConfig) {
			cfg.DisabledCommands = next
		})
}

// SetLogChannel sets the guild's log channel.
func (s *settingsService) SetLogChannel(ctx context.Context, guildID, channelID string) error {
	return s.apply(ctx, guildID, "logging.channelId",
		map[string]interface{}{"logging.channelId": channelID}, nil,
		func(cfg *models.GuildConfig) {
			cfg.Logging.ChannelID = channelID
		})
}

// SetLogEvent toggles one recognized log event key.
func (s *settingsService) SetLogEvent(ctx context.Context, guildID, event string, enabled bool) error {
	if !models.IsLogEventKey(event) {
		return fmt.Errorf("unrecognized log event key: %s", event)
	}
	field := "logging.events." + event
	return s.apply(ctx, guildID, field,
		map[string]interface{}{field: enabled}, nil,
		func(cfg *models.GuildConfig) {
			if cfg.Logging.Events == nil {
				cfg.Logging.Events = make(map[string]bool)
			}
			cfg.Logging.Events[event] = enabled
		})
}

// SetWelcome configures the welcome message.
func (s *settingsService) SetWelcome(ctx context.Context, guildID string, enabled bool, channelID, template string) error {
	if template == "" {
		template = models.DefaultWelcomeTemplate
	}
	return s.apply(ctx, guildID, "welcome",
		map[string]interface{}{
			"welcome.enabled":         enabled,
			"welcome.channelId":       channelID,
			"welcome.messageTemplate": template,
		}, nil,
		func(cfg *models.GuildConfig) {
			cfg.Welcome.Enabled = enabled
			cfg.Welcome.ChannelID = channelID
			cfg.Welcome.MessageTemplate = template
		})
}

// apply performs one configuration update: a best-effort document store merge
// first, then the unconditional synchronous snapshot mirror. Both writes have
// completed (or been logged as failed) by the time apply returns, and the result
// is announced on the event bus.
func (s *settingsService) apply(ctx context.Context, guildID, field string, set map[string]interface{}, unset []string, mutate func(*models.GuildConfig)) error {
	wroteDocs := false
	if s.docsAvailable() {
		if err := s.docs.Upsert(ctx, guildID, set, unset); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"guildID": guildID,
				"field":   field,
			}).Warn("Document store write failed, snapshot keeps the update")
		} else {
			wroteDocs = true
		}
	}

	if _, err := s.snap.Mutate(guildID, mutate); err != nil {
		return fmt.Errorf("failed to mirror update to snapshot: %w", err)
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.SettingsUpdatedEvent{
			GuildID:       guildID,
			Field:         field,
			DocumentStore: wroteDocs,
		})
	}
	return nil
}

// mirror copies a freshly created default record into the snapshot.
func (s *settingsService) mirror(guildID string, cfg *models.GuildConfig) {
	_, err := s.snap.Mutate(guildID, func(existing *models.GuildConfig) {
		*existing = *cfg
	})
	if err != nil {
		log.WithError(err).WithField("guildID", guildID).
			Warn("Failed to mirror default guild config into snapshot")
	}
}

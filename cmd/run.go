package cmd

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"warden/bot"
	"warden/config"
	"warden/database"
	"warden/events"
	"warden/migration"
	"warden/repository"
	"warden/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting warden...")

	// Load configuration
	cfg := config.Get()

	// Initialize event bus
	eventBus := events.NewBus()
	eventBus.Subscribe(events.EventTypeStoreStatusChanged, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.StoreStatusChangedEvent); ok {
			log.WithFields(log.Fields{
				"available": e.Available,
				"reason":    e.Reason,
			}).Info("Document store status changed")
		}
	})

	// Initialize snapshot store (the store of last resort, always present)
	snapshots, err := repository.NewSnapshotStore(cfg.SnapshotPath)
	if err != nil {
		return fmt.Errorf("failed to initialize snapshot store: %w", err)
	}
	log.WithField("path", cfg.SnapshotPath).Info("Snapshot store ready")

	// Connect to the document store; absence of a URL or a failed dial degrades
	// to snapshot-only mode rather than crashing
	var docs service.DocumentStore
	if cfg.SnapshotOnly() {
		log.Warn("No MONGO_URL configured, running in snapshot-only mode")
	} else {
		client, err := database.Connect(cfg.MongoURL, cfg.MongoDatabase, eventBus)
		if err != nil {
			log.WithError(err).Warn("Document store connection failed, running in snapshot-only mode")
		} else {
			defer client.Close()
			go client.Supervise(ctx)
			docs = repository.NewMongoGuildConfigStore(client)
			log.Info("Document store connection established")
		}
	}

	// Bring every persisted record into the current shape before serving
	migrator := migration.New(docs, snapshots)
	migrator.Run(ctx)

	// Initialize the settings facade
	settings := service.NewGuildConfigService(docs, snapshots, eventBus)

	// Initialize Discord bot
	log.Info("Initializing Discord bot...")
	discordBot, err := bot.New(bot.Config{
		Token:   cfg.DiscordToken,
		GuildID: cfg.DiscordGuildID,
	}, settings)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Info("Discord bot initialized successfully")

	// Wait for context cancellation
	log.Infof("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	log.Info("Shutting down bot...")
	if err := discordBot.Close(); err != nil {
		log.WithError(err).Error("Error closing Discord bot")
	}

	return nil
}

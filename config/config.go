package config

import (
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken   string `env:"DISCORD_TOKEN"`
	DiscordGuildID string `env:"DISCORD_GUILD_ID"`

	// Document store configuration; an empty URL means snapshot-only mode
	MongoURL      string `env:"MONGO_URL"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"warden"`

	// Snapshot configuration
	SnapshotPath string `env:"SNAPSHOT_PATH" envDefault:"data/guilds.json"`

	// Environment
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // "development" or "production"
}

// SnapshotOnly reports whether no document store is configured.
func (c *Config) SnapshotOnly() bool {
	return c.MongoURL == ""
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from the environment, with .env as a fallback source
func load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using system environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

package service

import (
	"context"

	"warden/models"
)

// DocumentStore defines the interface for the primary, remote guild configuration
// persistence. It may be unavailable; Available reflects live connection state.
type DocumentStore interface {
	// Available reports whether the store is currently reachable
	Available() bool

	// FindByGuildID returns the guild's record, or (nil, nil) when none exists
	FindByGuildID(ctx context.Context, guildID string) (*models.GuildConfig, error)

	// Upsert merges field paths into the guild's document without touching
	// unrelated fields; paths in unset are removed
	Upsert(ctx context.Context, guildID string, set map[string]interface{}, unset []string) error

	// Create writes a full record (default creation and backfill only)
	Create(ctx context.Context, cfg *models.GuildConfig) error

	// Count returns the number of records in the store
	Count(ctx context.Context) (int, error)

	// ForEach streams every record through fn
	ForEach(ctx context.Context, fn func(*models.GuildConfig) error) error
}

// SnapshotStore defines the interface for the local file-based fallback
// persistence. Reads never fail; a broken snapshot reads as empty.
type SnapshotStore interface {
	// Load reads the entire snapshot mapping
	Load() map[string]*models.GuildConfig

	// Save overwrites the snapshot with the given mapping
	Save(configs map[string]*models.GuildConfig) error

	// Get returns one guild's record, if present
	Get(guildID string) (*models.GuildConfig, bool)

	// Mutate runs fn against the guild's record (created with defaults if absent)
	// inside one serialized load-mutate-save cycle
	Mutate(guildID string, fn func(*models.GuildConfig)) (*models.GuildConfig, error)

	// Retire renames the snapshot to a backup name and reseeds an empty one
	Retire() error
}

// GuildConfigService is the single read/write facade for guild configuration.
// It hides backend selection: reads prefer the document store and fall back to
// the snapshot; writes are mirrored into the snapshot unconditionally so a
// document store outage never loses the latest value.
type GuildConfigService interface {
	// Get returns the guild's configuration, creating a default record in the
	// active backend the first time a guild is seen
	Get(ctx context.Context, guildID string) (*models.GuildConfig, error)

	// SetCommandRoles replaces the role allow-list for a command; an empty list
	// means everyone may use the command
	SetCommandRoles(ctx context.Context, guildID, command string, roleIDs []string) error

	// ClearCommandRoles removes the command's allow-list entirely, restoring
	// default policy
	ClearCommandRoles(ctx context.Context, guildID, command string) error

	// SetCommandDisabled adds or removes a command from the disabled set
	SetCommandDisabled(ctx context.Context, guildID, command string, disabled bool) error

	// SetLogChannel sets the guild's log channel
	SetLogChannel(ctx context.Context, guildID, channelID string) error

	// SetLogEvent toggles one recognized log event key
	SetLogEvent(ctx context.Context, guildID, event string, enabled bool) error

	// SetWelcome configures the welcome message
	SetWelcome(ctx context.Context, guildID string, enabled bool, channelID, template string) error
}

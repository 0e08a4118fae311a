package models

// SchemaVersionCurrent is the shape version written by this build. Records with a
// lower (or missing) version carry the legacy flat logging/welcome fields and must
// be normalized before use.
const SchemaVersionCurrent = 2

// Recognized guild log event keys. Unknown keys are rejected at the service layer.
const (
	LogEventMessageCreate = "message-create"
	LogEventMessageDelete = "message-delete"
	LogEventMessageUpdate = "message-update"
	LogEventInviteCreate  = "invite-create"
	LogEventInviteDelete  = "invite-delete"
)

// LogEventKeys lists every recognized log event key.
var LogEventKeys = []string{
	LogEventMessageCreate,
	LogEventMessageDelete,
	LogEventMessageUpdate,
	LogEventInviteCreate,
	LogEventInviteDelete,
}

// IsLogEventKey reports whether key is a recognized log event key.
func IsLogEventKey(key string) bool {
	for _, k := range LogEventKeys {
		if k == key {
			return true
		}
	}
	return false
}

// DefaultWelcomeTemplate supports {user} and {guild} placeholders.
const DefaultWelcomeTemplate = "Welcome to {guild}, {user}!"

// LoggingSettings configures the guild event log.
type LoggingSettings struct {
	ChannelID string          `bson:"channelId,omitempty" json:"channelId,omitempty"`
	Events    map[string]bool `bson:"events,omitempty" json:"events,omitempty"`
}

// WelcomeSettings configures the member welcome message.
type WelcomeSettings struct {
	Enabled         bool   `bson:"enabled" json:"enabled"`
	ChannelID       string `bson:"channelId,omitempty" json:"channelId,omitempty"`
	MessageTemplate string `bson:"messageTemplate,omitempty" json:"messageTemplate,omitempty"`
}

// GuildConfig is the per-guild configuration record, keyed by the Discord guild ID.
//
// CommandPermissions distinguishes an absent command key (no explicit restriction
// configured, default policy applies) from a present-but-empty role list (everyone
// may use the command). Present keys never hold nil slices.
type GuildConfig struct {
	GuildID            string              `bson:"_id" json:"guildId"`
	SchemaVersion      int                 `bson:"schemaVersion" json:"schemaVersion"`
	CommandPermissions map[string][]string `bson:"commandPermissions,omitempty" json:"commandPermissions,omitempty"`
	DisabledCommands   []string            `bson:"disabledCommands,omitempty" json:"disabledCommands,omitempty"`
	Logging            LoggingSettings     `bson:"logging" json:"logging"`
	Welcome            WelcomeSettings     `bson:"welcome" json:"welcome"`

	// Legacy flat fields from schema version 1. Parsed so old records load without
	// crashing; Normalize moves them into the nested settings and clears them.
	LegacyLogChannel     string          `bson:"logChannel,omitempty" json:"logChannel,omitempty"`
	LegacyLogEvents      map[string]bool `bson:"logEvents,omitempty" json:"logEvents,omitempty"`
	LegacyWelcomeEnabled bool            `bson:"welcomeEnabled,omitempty" json:"welcomeEnabled,omitempty"`
	LegacyWelcomeChannel string          `bson:"welcomeChannel,omitempty" json:"welcomeChannel,omitempty"`
	LegacyWelcomeMessage string          `bson:"welcomeMessage,omitempty" json:"welcomeMessage,omitempty"`
}

// NewGuildConfig returns the default configuration for a guild that has no record yet.
func NewGuildConfig(guildID string) *GuildConfig {
	events := make(map[string]bool, len(LogEventKeys))
	for _, k := range LogEventKeys {
		events[k] = false
	}
	return &GuildConfig{
		GuildID:            guildID,
		SchemaVersion:      SchemaVersionCurrent,
		CommandPermissions: make(map[string][]string),
		DisabledCommands:   []string{},
		Logging: LoggingSettings{
			Events: events,
		},
		Welcome: WelcomeSettings{
			Enabled:         false,
			MessageTemplate: DefaultWelcomeTemplate,
		},
	}
}

// IsCommandDisabled reports whether command is in the guild's disabled set.
func (c *GuildConfig) IsCommandDisabled(command string) bool {
	for _, name := range c.DisabledCommands {
		if name == command {
			return true
		}
	}
	return false
}

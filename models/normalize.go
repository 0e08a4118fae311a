package models

// Normalize rewrites a record from the legacy flat shape (schema version 1) into the
// current nested shape and stamps the schema version. It is idempotent: running it
// against an already-current record changes nothing and returns false.
//
// When both a legacy field and its nested replacement are set, the nested value wins;
// the legacy field is cleared either way.
func Normalize(c *GuildConfig) bool {
	if c.SchemaVersion >= SchemaVersionCurrent && !c.hasLegacyFields() {
		return false
	}

	if c.Logging.ChannelID == "" && c.LegacyLogChannel != "" {
		c.Logging.ChannelID = c.LegacyLogChannel
	}
	if c.Logging.Events == nil {
		c.Logging.Events = make(map[string]bool, len(LogEventKeys))
	}
	for key, enabled := range c.LegacyLogEvents {
		if _, ok := c.Logging.Events[key]; !ok && IsLogEventKey(key) {
			c.Logging.Events[key] = enabled
		}
	}
	for _, key := range LogEventKeys {
		if _, ok := c.Logging.Events[key]; !ok {
			c.Logging.Events[key] = false
		}
	}

	if !c.Welcome.Enabled && c.LegacyWelcomeEnabled {
		c.Welcome.Enabled = true
	}
	if c.Welcome.ChannelID == "" && c.LegacyWelcomeChannel != "" {
		c.Welcome.ChannelID = c.LegacyWelcomeChannel
	}
	if c.Welcome.MessageTemplate == "" {
		if c.LegacyWelcomeMessage != "" {
			c.Welcome.MessageTemplate = c.LegacyWelcomeMessage
		} else {
			c.Welcome.MessageTemplate = DefaultWelcomeTemplate
		}
	}

	c.LegacyLogChannel = ""
	c.LegacyLogEvents = nil
	c.LegacyWelcomeEnabled = false
	c.LegacyWelcomeChannel = ""
	c.LegacyWelcomeMessage = ""

	if c.CommandPermissions == nil {
		c.CommandPermissions = make(map[string][]string)
	}
	for command, roles := range c.CommandPermissions {
		if roles == nil {
			c.CommandPermissions[command] = []string{}
		}
	}
	if c.DisabledCommands == nil {
		c.DisabledCommands = []string{}
	}

	c.SchemaVersion = SchemaVersionCurrent
	return true
}

// LegacyFieldPaths are the schema version 1 field paths removed by normalization.
var LegacyFieldPaths = []string{
	"logChannel",
	"logEvents",
	"welcomeEnabled",
	"welcomeChannel",
	"welcomeMessage",
}

// NormalizedUpdate returns the field-level update that persists a normalized
// record's nested shape and strips its legacy fields in the document store.
func NormalizedUpdate(c *GuildConfig) (set map[string]interface{}, unset []string) {
	set = map[string]interface{}{
		"schemaVersion": c.SchemaVersion,
		"logging":       c.Logging,
		"welcome":       c.Welcome,
	}
	return set, LegacyFieldPaths
}

func (c *GuildConfig) hasLegacyFields() bool {
	return c.LegacyLogChannel != "" ||
		c.LegacyLogEvents != nil ||
		c.LegacyWelcomeEnabled ||
		c.LegacyWelcomeChannel != "" ||
		c.LegacyWelcomeMessage != ""
}

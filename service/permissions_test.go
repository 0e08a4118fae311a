package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"warden/models"
)

func configWith(mutate func(*models.GuildConfig)) *models.GuildConfig {
	cfg := models.NewGuildConfig("G1")
	if mutate != nil {
		mutate(cfg)
	}
	return cfg
}

func TestEvaluatePermission_OwnerAlwaysAllowed(t *testing.T) {
	cfg := configWith(func(c *models.GuildConfig) {
		c.DisabledCommands = []string{"clean"}
		c.CommandPermissions["clean"] = []string{"R-other"}
	})

	decision := EvaluatePermission(cfg, "clean", Member{ID: "U1", IsOwner: true})

	assert.True(t, decision.Allowed)
	assert.Equal(t, DenyReasonNone, decision.Reason)
}

func TestEvaluatePermission_DefaultRestrictedDeniedWhenUnconfigured(t *testing.T) {
	cfg := configWith(nil)

	decision := EvaluatePermission(cfg, "clean", Member{ID: "U1", RoleIDs: []string{"R1"}})

	assert.False(t, decision.Allowed)
	assert.Equal(t, DenyReasonOwnerOnly, decision.Reason)
}

func TestEvaluatePermission_DefaultRestrictedOpensWithConfiguredRole(t *testing.T) {
	cfg := configWith(func(c *models.GuildConfig) {
		c.CommandPermissions["clean"] = []string{"R1"}
	})

	decision := EvaluatePermission(cfg, "clean", Member{ID: "U1", RoleIDs: []string{"R1"}})

	assert.True(t, decision.Allowed)
}

func TestEvaluatePermission_DisabledDeniedForNonOwner(t *testing.T) {
	cfg := configWith(func(c *models.GuildConfig) {
		c.DisabledCommands = []string{"roll"}
	})

	decision := EvaluatePermission(cfg, "roll", Member{ID: "U1", RoleIDs: []string{"R1"}})

	assert.False(t, decision.Allowed)
	assert.Equal(t, DenyReasonDisabled, decision.Reason)
}

func TestEvaluatePermission_DisabledBeatsConfiguredRoles(t *testing.T) {
	cfg := configWith(func(c *models.GuildConfig) {
		c.DisabledCommands = []string{"roll"}
		c.CommandPermissions["roll"] = []string{"R1"}
	})

	decision := EvaluatePermission(cfg, "roll", Member{ID: "U1", RoleIDs: []string{"R1"}})

	assert.False(t, decision.Allowed)
	assert.Equal(t, DenyReasonDisabled, decision.Reason)
}

func TestEvaluatePermission_UnconfiguredCommandIsOpen(t *testing.T) {
	cfg := configWith(nil)

	decision := EvaluatePermission(cfg, "roll", Member{ID: "U1"})

	assert.True(t, decision.Allowed)
}

func TestEvaluatePermission_EmptyRoleListMeansEveryone(t *testing.T) {
	cfg := configWith(func(c *models.GuildConfig) {
		c.CommandPermissions["roll"] = []string{}
	})

	decision := EvaluatePermission(cfg, "roll", Member{ID: "U1"})

	assert.True(t, decision.Allowed)
}

func TestEvaluatePermission_RoleMatchById(t *testing.T) {
	cfg := configWith(func(c *models.GuildConfig) {
		c.CommandPermissions["roll"] = []string{"R1", "R2"}
	})

	allowed := EvaluatePermission(cfg, "roll", Member{ID: "U1", RoleIDs: []string{"R3", "R2"}})
	denied := EvaluatePermission(cfg, "roll", Member{ID: "U2", RoleIDs: []string{"R3"}})

	assert.True(t, allowed.Allowed)
	assert.False(t, denied.Allowed)
	assert.Equal(t, DenyReasonMissingRole, denied.Reason)
}

func TestEvaluatePermission_StaleRoleNeverMatches(t *testing.T) {
	// R-deleted no longer exists in the guild; the member cannot hold it, so the
	// check simply fails to match rather than erroring.
	cfg := configWith(func(c *models.GuildConfig) {
		c.CommandPermissions["roll"] = []string{"R-deleted"}
	})

	decision := EvaluatePermission(cfg, "roll", Member{ID: "U1", RoleIDs: []string{"R1"}})

	assert.False(t, decision.Allowed)
	assert.Equal(t, DenyReasonMissingRole, decision.Reason)
}

func TestEvaluatePermission_NoRolesMemberDeniedOnRestrictedList(t *testing.T) {
	cfg := configWith(func(c *models.GuildConfig) {
		c.CommandPermissions["roll"] = []string{"R1"}
	})

	decision := EvaluatePermission(cfg, "roll", Member{ID: "U1"})

	assert.False(t, decision.Allowed)
}

func TestIsDefaultRestricted(t *testing.T) {
	assert.True(t, IsDefaultRestricted("clean"))
	assert.True(t, IsDefaultRestricted("permissions"))
	assert.False(t, IsDefaultRestricted("roll"))
}

package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"warden/models"
	"warden/service"
)

// MockGuildConfigService is a mock implementation of service.GuildConfigService
type MockGuildConfigService struct {
	mock.Mock
}

func (m *MockGuildConfigService) Get(ctx context.Context, guildID string) (*models.GuildConfig, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildConfig), args.Error(1)
}

func (m *MockGuildConfigService) SetCommandRoles(ctx context.Context, guildID, command string, roleIDs []string) error {
	args := m.Called(ctx, guildID, command, roleIDs)
	return args.Error(0)
}

func (m *MockGuildConfigService) ClearCommandRoles(ctx context.Context, guildID, command string) error {
	args := m.Called(ctx, guildID, command)
	return args.Error(0)
}

func (m *MockGuildConfigService) SetCommandDisabled(ctx context.Context, guildID, command string, disabled bool) error {
	args := m.Called(ctx, guildID, command, disabled)
	return args.Error(0)
}

func (m *MockGuildConfigService) SetLogChannel(ctx context.Context, guildID, channelID string) error {
	args := m.Called(ctx, guildID, channelID)
	return args.Error(0)
}

func (m *MockGuildConfigService) SetLogEvent(ctx context.Context, guildID, event string, enabled bool) error {
	args := m.Called(ctx, guildID, event, enabled)
	return args.Error(0)
}

func (m *MockGuildConfigService) SetWelcome(ctx context.Context, guildID string, enabled bool, channelID, template string) error {
	args := m.Called(ctx, guildID, enabled, channelID, template)
	return args.Error(0)
}

func TestGateCheck_AllowsPermittedInvocation(t *testing.T) {
	ctx := context.Background()
	settings := new(MockGuildConfigService)

	cfg := models.NewGuildConfig("G1")
	cfg.CommandPermissions["clean"] = []string{"R1"}
	settings.On("Get", ctx, "G1").Return(cfg, nil)

	gate := NewGate(settings)
	decision := gate.Check(ctx, "G1", "clean", service.Member{ID: "U1", RoleIDs: []string{"R1"}})

	assert.True(t, decision.Allowed)
}

func TestGateCheck_DeniesPerResolver(t *testing.T) {
	ctx := context.Background()
	settings := new(MockGuildConfigService)

	cfg := models.NewGuildConfig("G2")
	cfg.DisabledCommands = []string{"roll"}
	settings.On("Get", ctx, "G2").Return(cfg, nil)

	gate := NewGate(settings)
	decision := gate.Check(ctx, "G2", "roll", service.Member{ID: "U1"})

	assert.False(t, decision.Allowed)
	assert.Equal(t, service.DenyReasonDisabled, decision.Reason)
}

func TestGateCheck_FailsClosedOnConfigLoadError(t *testing.T) {
	ctx := context.Background()
	settings := new(MockGuildConfigService)
	settings.On("Get", ctx, "G1").Return(nil, errors.New("backend down"))

	gate := NewGate(settings)
	decision := gate.Check(ctx, "G1", "roll", service.Member{ID: "U1", IsOwner: true})

	assert.False(t, decision.Allowed)
	assert.Equal(t, service.DenyReasonInternal, decision.Reason)
}

func TestGateCheck_FailsClosedOnPanicDuringResolution(t *testing.T) {
	ctx := context.Background()
	settings := new(MockGuildConfigService)
	// A nil record makes resolution blow up; the gate must deny, not allow.
	settings.On("Get", ctx, "G1").Return(nil, nil)

	gate := NewGate(settings)
	decision := gate.Check(ctx, "G1", "roll", service.Member{ID: "U1"})

	assert.False(t, decision.Allowed)
	assert.Equal(t, service.DenyReasonInternal, decision.Reason)
}

func TestDenyMessages_AreSpecificAndLeakNothing(t *testing.T) {
	assert.Contains(t, denyMessage("clean", service.DenyReasonOwnerOnly), "owner")
	assert.Contains(t, denyMessage("roll", service.DenyReasonDisabled), "disabled")
	assert.Contains(t, denyMessage("roll", service.DenyReasonMissingRole), "role")

	generic := denyMessage("roll", service.DenyReasonInternal)
	assert.Contains(t, generic, "try again")
	assert.NotContains(t, generic, "mongo")
	assert.NotContains(t, generic, "snapshot")
}

func TestRegistry_ProtectedCommandsAndLookup(t *testing.T) {
	r := NewRegistry()
	r.Register(&Command{
		Protected:  true,
		Definition: &discordgo.ApplicationCommand{Name: "permissions"},
	})
	r.Register(&Command{
		Definition: &discordgo.ApplicationCommand{Name: "roll"},
	})

	assert.True(t, r.Exists("permissions"))
	assert.True(t, r.IsProtected("permissions"))
	assert.False(t, r.IsProtected("roll"))
	assert.False(t, r.Exists("unknown"))
	assert.False(t, r.IsProtected("unknown"))

	defs := r.Definitions()
	assert.Len(t, defs, 2)
	assert.Equal(t, "permissions", defs[0].Name)
	assert.Equal(t, "roll", defs[1].Name)
}

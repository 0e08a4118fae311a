package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"warden/events"
	"warden/models"
)

func newServiceUnderTest() (*MockDocumentStore, *MemorySnapshotStore, GuildConfigService) {
	docs := new(MockDocumentStore)
	snap := NewMemorySnapshotStore()
	svc := NewGuildConfigService(docs, snap, events.NewBus())
	return docs, snap, svc
}

func TestGet_CreatesDefaultRecordOnDocumentStoreMiss(t *testing.T) {
	ctx := context.Background()
	docs, snap, svc := newServiceUnderTest()

	docs.On("Available").Return(true)
	docs.On("FindByGuildID", ctx, "G1").Return(nil, nil)
	docs.On("Create", ctx, mock.MatchedBy(func(cfg *models.GuildConfig) bool {
		return cfg.GuildID == "G1" && cfg.SchemaVersion == models.SchemaVersionCurrent
	})).Return(nil)

	cfg, err := svc.Get(ctx, "G1")

	require.NoError(t, err)
	assert.Equal(t, "G1", cfg.GuildID)
	assert.Empty(t, cfg.CommandPermissions)

	// The default record is mirrored into the snapshot.
	mirrored, ok := snap.Get("G1")
	require.True(t, ok)
	assert.Equal(t, "G1", mirrored.GuildID)

	docs.AssertExpectations(t)
}

func TestGet_ReturnsExistingDocumentStoreRecord(t *testing.T) {
	ctx := context.Background()
	docs, _, svc := newServiceUnderTest()

	existing := models.NewGuildConfig("G1")
	existing.DisabledCommands = []string{"roll"}

	docs.On("Available").Return(true)
	docs.On("FindByGuildID", ctx, "G1").Return(existing, nil)

	cfg, err := svc.Get(ctx, "G1")

	require.NoError(t, err)
	assert.Equal(t, []string{"roll"}, cfg.DisabledCommands)
	docs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGet_NormalizesLegacyRecordOnReadPath(t *testing.T) {
	ctx := context.Background()
	docs, _, svc := newServiceUnderTest()

	legacy := &models.GuildConfig{GuildID: "G3", LegacyLogChannel: "123"}

	docs.On("Available").Return(true)
	docs.On("FindByGuildID", ctx, "G3").Return(legacy, nil)
	docs.On("Upsert", ctx, "G3", mock.MatchedBy(func(set map[string]interface{}) bool {
		return set["schemaVersion"] == models.SchemaVersionCurrent
	}), models.LegacyFieldPaths).Return(nil)

	cfg, err := svc.Get(ctx, "G3")

	require.NoError(t, err)
	assert.Equal(t, "123", cfg.Logging.ChannelID)
	assert.Empty(t, cfg.LegacyLogChannel)
	docs.AssertExpectations(t)
}

func TestGet_FallsBackToSnapshotWhenDocumentStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	docs, snap, svc := newServiceUnderTest()

	seeded := models.NewGuildConfig("G1")
	seeded.Logging.ChannelID = "42"
	require.NoError(t, snap.Save(map[string]*models.GuildConfig{"G1": seeded}))

	docs.On("Available").Return(false)

	cfg, err := svc.Get(ctx, "G1")

	require.NoError(t, err)
	assert.Equal(t, "42", cfg.Logging.ChannelID)
	docs.AssertNotCalled(t, "FindByGuildID", mock.Anything, mock.Anything)
}

func TestGet_CreatesDefaultInSnapshotWhenDocumentStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	docs, snap, svc := newServiceUnderTest()

	docs.On("Available").Return(false)

	cfg, err := svc.Get(ctx, "G1")

	require.NoError(t, err)
	assert.Equal(t, "G1", cfg.GuildID)

	_, ok := snap.Get("G1")
	assert.True(t, ok)
}

func TestGet_FallsBackToSnapshotOnDocumentStoreReadError(t *testing.T) {
	ctx := context.Background()
	docs, snap, svc := newServiceUnderTest()

	seeded := models.NewGuildConfig("G1")
	seeded.DisabledCommands = []string{"roll"}
	require.NoError(t, snap.Save(map[string]*models.GuildConfig{"G1": seeded}))

	docs.On("Available").Return(true)
	docs.On("FindByGuildID", ctx, "G1").Return(nil, errors.New("connection reset"))

	cfg, err := svc.Get(ctx, "G1")

	require.NoError(t, err)
	assert.Equal(t, []string{"roll"}, cfg.DisabledCommands)
}

func TestSetCommandRoles_MirrorsIntoSnapshot(t *testing.T) {
	ctx := context.Background()
	docs, snap, svc := newServiceUnderTest()

	docs.On("Available").Return(true)
	docs.On("Upsert", ctx, "G1",
		map[string]interface{}{"commandPermissions.clean": []string{"R1"}},
		[]string(nil)).Return(nil)

	require.NoError(t, svc.SetCommandRoles(ctx, "G1", "clean", []string{"R1"}))

	mirrored, ok := snap.Get("G1")
	require.True(t, ok)
	assert.Equal(t, []string{"R1"}, mirrored.CommandPermissions["clean"])
	docs.AssertExpectations(t)
}

func TestSetCommandRoles_EmptyListStaysPresent(t *testing.T) {
	ctx := context.Background()
	docs, snap, svc := newServiceUnderTest()

	docs.On("Available").Return(false)

	require.NoError(t, svc.SetCommandRoles(ctx, "G1", "roll", nil))

	mirrored, ok := snap.Get("G1")
	require.True(t, ok)
	roles, configured := mirrored.CommandPermissions["roll"]
	assert.True(t, configured)
	assert.NotNil(t, roles)
	assert.Empty(t, roles)
}

func TestUpdate_DocumentStoreFailureIsNotSurfaced(t *testing.T) {
	ctx := context.Background()
	docs, snap, svc := newServiceUnderTest()

	docs.On("Available").Return(true)
	docs.On("Upsert", ctx, "G1", mock.Anything, mock.Anything).
		Return(errors.New("server selection timeout"))

	err := svc.SetLogChannel(ctx, "G1", "123")

	require.NoError(t, err)

	// The snapshot still holds the update, so the very next read serves it.
	mirrored, ok := snap.Get("G1")
	require.True(t, ok)
	assert.Equal(t, "123", mirrored.Logging.ChannelID)
}

func TestUpdate_MirroringSurvivesOutageBetweenWriteAndRead(t *testing.T) {
	ctx := context.Background()
	docs, _, svc := newServiceUnderTest()

	// Write while the document store is up; it goes down before the next read.
	docs.On("Available").Return(true).Once()
	docs.On("Upsert", ctx, "G1", mock.Anything, mock.Anything).Return(nil)
	docs.On("Available").Return(false)

	require.NoError(t, svc.SetLogChannel(ctx, "G1", "123"))

	cfg, err := svc.Get(ctx, "G1")
	require.NoError(t, err)
	assert.Equal(t, "123", cfg.Logging.ChannelID)
}

func TestClearCommandRoles_RemovesKeyEntirely(t *testing.T) {
	ctx := context.Background()
	docs, snap, svc := newServiceUnderTest()

	docs.On("Available").Return(false)

	require.NoError(t, svc.SetCommandRoles(ctx, "G1", "clean", []string{"R1"}))
	require.NoError(t, svc.ClearCommandRoles(ctx, "G1", "clean"))

	mirrored, ok := snap.Get("G1")
	require.True(t, ok)
	_, configured := mirrored.CommandPermissions["clean"]
	assert.False(t, configured)
}

func TestClearCommandRoles_RestoresOwnerOnlyDefault(t *testing.T) {
	ctx := context.Background()
	docs, _, svc := newServiceUnderTest()

	docs.On("Available").Return(false)

	require.NoError(t, svc.SetCommandRoles(ctx, "G1", "clean", []string{"R1"}))
	require.NoError(t, svc.ClearCommandRoles(ctx, "G1", "clean"))

	cfg, err := svc.Get(ctx, "G1")
	require.NoError(t, err)

	// With the key gone, the default-restricted command is owner-only again,
	// even for a member holding the previously allowed role.
	decision := EvaluatePermission(cfg, "clean", Member{ID: "U1", RoleIDs: []string{"R1"}})
	assert.False(t, decision.Allowed)
	assert.Equal(t, DenyReasonOwnerOnly, decision.Reason)
}

func TestSetCommandDisabled_AddAndRemove(t *testing.T) {
	ctx := context.Background()
	docs, snap, svc := newServiceUnderTest()

	docs.On("Available").Return(false)

	require.NoError(t, svc.SetCommandDisabled(ctx, "G1", "roll", true))
	mirrored, _ := snap.Get("G1")
	assert.Equal(t, []string{"roll"}, mirrored.DisabledCommands)

	// Disabling twice does not duplicate the entry.
	require.NoError(t, svc.SetCommandDisabled(ctx, "G1", "roll", true))
	mirrored, _ = snap.Get("G1")
	assert.Equal(t, []string{"roll"}, mirrored.DisabledCommands)

	require.NoError(t, svc.SetCommandDisabled(ctx, "G1", "roll", false))
	mirrored, _ = snap.Get("G1")
	assert.Empty(t, mirrored.DisabledCommands)
}

func TestSetLogEvent_RejectsUnknownKey(t *testing.T) {
	ctx := context.Background()
	docs, _, svc := newServiceUnderTest()

	docs.On("Available").Return(false)

	err := svc.SetLogEvent(ctx, "G1", "channel-create", true)

	assert.Error(t, err)
}

func TestUpdate_PublishesSettingsUpdatedEvent(t *testing.T) {
	ctx := context.Background()
	docs := new(MockDocumentStore)
	snap := NewMemorySnapshotStore()
	bus := events.NewBus()
	svc := NewGuildConfigService(docs, snap, bus)

	var published []events.SettingsUpdatedEvent
	bus.Subscribe(events.EventTypeSettingsUpdated, func(ctx context.Context, event events.Event) {
		published = append(published, event.(events.SettingsUpdatedEvent))
	})

	docs.On("Available").Return(false)

	require.NoError(t, svc.SetLogChannel(ctx, "G1", "123"))

	require.Len(t, published, 1)
	assert.Equal(t, "G1", published[0].GuildID)
	assert.Equal(t, "logging.channelId", published[0].Field)
	assert.False(t, published[0].DocumentStore)
}

package service

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"warden/models"
)

// MockDocumentStore is a mock implementation of DocumentStore
type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) Available() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockDocumentStore) FindByGuildID(ctx context.Context, guildID string) (*models.GuildConfig, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildConfig), args.Error(1)
}

func (m *MockDocumentStore) Upsert(ctx context.Context, guildID string, set map[string]interface{}, unset []string) error {
	args := m.Called(ctx, guildID, set, unset)
	return args.Error(0)
}

func (m *MockDocumentStore) Create(ctx context.Context, cfg *models.GuildConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func (m *MockDocumentStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockDocumentStore) ForEach(ctx context.Context, fn func(*models.GuildConfig) error) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

// MemorySnapshotStore is an in-memory SnapshotStore used by unit tests in place
// of the file-backed store.
type MemorySnapshotStore struct {
	mu      sync.Mutex
	configs map[string]*models.GuildConfig
	Retired bool
	SaveErr error
}

func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{configs: make(map[string]*models.GuildConfig)}
}

func (s *MemorySnapshotStore) Load() map[string]*models.GuildConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]*models.GuildConfig, len(s.configs))
	for id, cfg := range s.configs {
		copied := *cfg
		out[id] = &copied
	}
	return out
}

func (s *MemorySnapshotStore) Save(configs map[string]*models.GuildConfig) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs = configs
	return nil
}

func (s *MemorySnapshotStore) Get(guildID string) (*models.GuildConfig, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.configs[guildID]
	if !ok {
		return nil, false
	}
	copied := *cfg
	return &copied, true
}

func (s *MemorySnapshotStore) Mutate(guildID string, fn func(*models.GuildConfig)) (*models.GuildConfig, error) {
	if s.SaveErr != nil {
		return nil, s.SaveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.configs[guildID]
	if !ok {
		cfg = models.NewGuildConfig(guildID)
		s.configs[guildID] = cfg
	}
	fn(cfg)
	copied := *cfg
	return &copied, nil
}

func (s *MemorySnapshotStore) Retire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs = make(map[string]*models.GuildConfig)
	s.Retired = true
	return nil
}

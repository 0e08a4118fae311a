package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"

	"warden/models"
)

// retiredSuffix is appended to the snapshot file after a successful backfill so the
// pre-backfill data is kept but never reread as a live source.
const retiredSuffix = ".pre-backfill"

// SnapshotStore is the local file-based fallback persistence for all guild
// configurations: one JSON document mapping guild ID to configuration record.
//
// Reads are tolerant: a missing or corrupt snapshot yields an empty mapping and a
// logged error, never a failure, and the next save repairs the file. Writes go
// through a temp-file-and-rename so a concurrent reader never observes a partial
// snapshot. A store-level mutex serializes load-mutate-save cycles.
type SnapshotStore struct {
	mu   sync.Mutex
	path string
}

// NewSnapshotStore creates the snapshot location on first use, seeded with an
// empty mapping.
func NewSnapshotStore(path string) (*SnapshotStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	s := &SnapshotStore{path: path}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.writeAtomic(map[string]*models.GuildConfig{}); err != nil {
			return nil, fmt.Errorf("failed to seed snapshot: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat snapshot: %w", err)
	}

	return s, nil
}

// Path returns the snapshot file location.
func (s *SnapshotStore) Path() string {
	return s.path
}

// Load reads the entire snapshot mapping. Legacy-shaped records are normalized
// opportunistically on the way in. A missing or unreadable snapshot is treated as
// empty.
func (s *SnapshotStore) Load() map[string]*models.GuildConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Save overwrites the snapshot with the given mapping.
func (s *SnapshotStore) Save(configs map[string]*models.GuildConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeAtomic(configs)
}

// Get returns the configuration for one guild, if present.
func (s *SnapshotStore) Get(guildID string) (*models.GuildConfig, bool) {
	configs := s.Load()
	cfg, ok := configs[guildID]
	return cfg, ok
}

// Mutate runs fn against the guild's record inside a single locked
// load-mutate-save cycle, creating a default record first if none exists. The
// record after mutation is returned.
func (s *SnapshotStore) Mutate(guildID string, fn func(*models.GuildConfig)) (*models.GuildConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	configs := s.load()
	cfg, ok := configs[guildID]
	if !ok {
		cfg = models.NewGuildConfig(guildID)
		configs[guildID] = cfg
	}

	fn(cfg)

	if err := s.writeAtomic(configs); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}
	return cfg, nil
}

// Retire renames the live snapshot to a backup name and reseeds an empty one.
// Called after a successful backfill into the document store.
func (s *SnapshotStore) Retire() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Rename(s.path, s.path+retiredSuffix); err != nil {
		return fmt.Errorf("failed to retire snapshot: %w", err)
	}
	if err := s.writeAtomic(map[string]*models.GuildConfig{}); err != nil {
		return fmt.Errorf("failed to reseed snapshot: %w", err)
	}
	return nil
}

// load must be called with the mutex held.
func (s *SnapshotStore) load() map[string]*models.GuildConfig {
	data, err := os.ReadFile(s.path)
	if err != nil {
		log.WithError(err).Error("Failed to read snapshot, treating as empty")
		return map[string]*models.GuildConfig{}
	}

	var configs map[string]*models.GuildConfig
	if err := json.Unmarshal(data, &configs); err != nil {
		log.WithError(err).Error("Snapshot is corrupt, treating as empty")
		return map[string]*models.GuildConfig{}
	}
	if configs == nil {
		configs = map[string]*models.GuildConfig{}
	}

	for guildID, cfg := range configs {
		if cfg == nil {
			delete(configs, guildID)
			continue
		}
		if cfg.GuildID == "" {
			cfg.GuildID = guildID
		}
		models.Normalize(cfg)
	}

	return configs
}

// writeAtomic must be called with the mutex held.
func (s *SnapshotStore) writeAtomic(configs map[string]*models.GuildConfig) error {
	data, err := json.MarshalIndent(configs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

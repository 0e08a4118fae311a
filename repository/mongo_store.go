package repository

import (
	"context"
	"fmt"

	"github.com/globalsign/mgo"
	"github.com/globalsign/mgo/bson"

	"warden/database"
	"warden/models"
)

const guildConfigCollection = "guild_configs"

// MongoGuildConfigStore adapts the document database to per-guild configuration
// CRUD. Updates are field-level merges ($set/$unset), never whole-document
// replaces, so administrative commands mutating disjoint fields cannot clobber
// each other.
type MongoGuildConfigStore struct {
	client *database.Client
}

// NewMongoGuildConfigStore creates a new document store adapter.
func NewMongoGuildConfigStore(client *database.Client) *MongoGuildConfigStore {
	return &MongoGuildConfigStore{client: client}
}

// Available reports the live connectivity state of the document store.
func (s *MongoGuildConfigStore) Available() bool {
	return s.client.Availability().Available()
}

// FindByGuildID returns the guild's configuration record, or (nil, nil) when no
// record exists.
func (s *MongoGuildConfigStore) FindByGuildID(ctx context.Context, guildID string) (*models.GuildConfig, error) {
	var cfg models.GuildConfig
	err := s.client.Collection(guildConfigCollection).FindId(guildID).One(&cfg)
	if err == mgo.ErrNotFound {
		s.client.OperationSucceeded()
		return nil, nil
	}
	if err != nil {
		s.client.OperationFailed(err)
		return nil, fmt.Errorf("failed to find guild config for guild %s: %w", guildID, err)
	}
	s.client.OperationSucceeded()
	return &cfg, nil
}

// Upsert merges the given field paths into the guild's document, creating the
// document if absent. Paths in unset are removed.
func (s *MongoGuildConfigStore) Upsert(ctx context.Context, guildID string, set map[string]interface{}, unset []string) error {
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = bson.M(set)
	}
	if len(unset) > 0 {
		fields := bson.M{}
		for _, path := range unset {
			fields[path] = ""
		}
		update["$unset"] = fields
	}
	if len(update) == 0 {
		return nil
	}

	_, err := s.client.Collection(guildConfigCollection).UpsertId(guildID, update)
	if err != nil {
		s.client.OperationFailed(err)
		return fmt.Errorf("failed to upsert guild config for guild %s: %w", guildID, err)
	}
	s.client.OperationSucceeded()
	return nil
}

// Create writes a full configuration record, replacing any existing document.
// Used only for default-record creation on a read miss and for the backfill pass.
func (s *MongoGuildConfigStore) Create(ctx context.Context, cfg *models.GuildConfig) error {
	_, err := s.client.Collection(guildConfigCollection).UpsertId(cfg.GuildID, cfg)
	if err != nil {
		s.client.OperationFailed(err)
		return fmt.Errorf("failed to create guild config for guild %s: %w", cfg.GuildID, err)
	}
	s.client.OperationSucceeded()
	return nil
}

// Count returns the number of configuration records in the document store.
func (s *MongoGuildConfigStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.Collection(guildConfigCollection).Count()
	if err != nil {
		s.client.OperationFailed(err)
		return 0, fmt.Errorf("failed to count guild configs: %w", err)
	}
	s.client.OperationSucceeded()
	return n, nil
}

// ForEach streams every configuration record through fn. A decode or callback
// error for one record does not stop the iteration; the first error encountered
// is returned after the sweep completes.
func (s *MongoGuildConfigStore) ForEach(ctx context.Context, fn func(*models.GuildConfig) error) error {
	iter := s.client.Collection(guildConfigCollection).Find(nil).Iter()

	var firstErr error
	var cfg models.GuildConfig
	for iter.Next(&cfg) {
		if ctx.Err() != nil {
			iter.Close()
			return ctx.Err()
		}
		record := cfg
		if err := fn(&record); err != nil && firstErr == nil {
			firstErr = err
		}
		cfg = models.GuildConfig{}
	}

	if err := iter.Close(); err != nil {
		s.client.OperationFailed(err)
		return fmt.Errorf("failed to iterate guild configs: %w", err)
	}
	s.client.OperationSucceeded()
	return firstErr
}

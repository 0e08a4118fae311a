package migration

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"warden/models"
	"warden/service"
)

// Report aggregates per-record outcomes of one migration run.
type Report struct {
	SweepMigrated int
	SweepFailed   int
	SweepSkipped  int

	BackfillRan    bool
	BackfillCopied int
	BackfillFailed int
}

// Migrator brings every persisted guild configuration record into the current
// shape before the bot starts serving. Both passes are idempotent; a single
// record's failure is counted and logged but never aborts the run.
type Migrator struct {
	docs service.DocumentStore
	snap service.SnapshotStore
}

// New creates a Migrator. docs may be nil in snapshot-only mode; only the
// snapshot's opportunistic load-path normalization applies then.
func New(docs service.DocumentStore, snap service.SnapshotStore) *Migrator {
	return &Migrator{docs: docs, snap: snap}
}

// Run executes the field-shape sweep over the document store followed by the
// snapshot-to-document-store backfill.
func (m *Migrator) Run(ctx context.Context) *Report {
	report := &Report{}

	if m.docs == nil || !m.docs.Available() {
		log.Info("Document store not available, skipping migration sweep and backfill")
		return report
	}

	m.sweep(ctx, report)
	m.backfill(ctx, report)

	log.WithFields(log.Fields{
		"sweepMigrated":  report.SweepMigrated,
		"sweepFailed":    report.SweepFailed,
		"sweepSkipped":   report.SweepSkipped,
		"backfillRan":    report.BackfillRan,
		"backfillCopied": report.BackfillCopied,
		"backfillFailed": report.BackfillFailed,
	}).Info("Migration run finished")

	return report
}

// sweep rewrites every legacy-shaped document store record into the current
// nested shape, deleting the obsolete flat fields.
func (m *Migrator) sweep(ctx context.Context, report *Report) {
	err := m.docs.ForEach(ctx, func(cfg *models.GuildConfig) error {
		if !models.Normalize(cfg) {
			report.SweepSkipped++
			return nil
		}

		set, unset := models.NormalizedUpdate(cfg)
		if err := m.docs.Upsert(ctx, cfg.GuildID, set, unset); err != nil {
			report.SweepFailed++
			log.WithError(err).WithField("guildID", cfg.GuildID).
				Error("Failed to migrate guild config record")
			return nil
		}
		report.SweepMigrated++
		return nil
	})
	if err != nil {
		log.WithError(err).Error("Migration sweep did not cover all records")
	}
}

// backfill copies the snapshot into an empty document store, then retires the
// snapshot file so it is not reread as a live source. A non-empty document store
// is never overwritten with snapshot data.
func (m *Migrator) backfill(ctx context.Context, report *Report) {
	count, err := m.docs.Count(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to count document store records, skipping backfill")
		return
	}
	if count > 0 {
		return
	}

	configs := m.snap.Load()
	if len(configs) == 0 {
		return
	}

	report.BackfillRan = true
	for guildID, cfg := range configs {
		models.Normalize(cfg)
		if err := m.docs.Create(ctx, cfg); err != nil {
			report.BackfillFailed++
			log.WithError(err).WithField("guildID", guildID).
				Error("Failed to backfill guild config into document store")
			continue
		}
		report.BackfillCopied++
	}

	// Keep the snapshot live if anything failed to copy: it is still the only
	// backend holding a valid value for the failed records.
	if report.BackfillFailed > 0 {
		log.WithField("failed", report.BackfillFailed).
			Warn("Backfill incomplete, snapshot stays live")
		return
	}

	if err := m.snap.Retire(); err != nil {
		log.WithError(err).Error("Failed to retire snapshot after backfill")
	}
}

// Status describes the current state of both backends for the migrate
// subcommand.
func (m *Migrator) Status(ctx context.Context) (string, error) {
	snapCount := len(m.snap.Load())

	if m.docs == nil || !m.docs.Available() {
		return fmt.Sprintf("document store: unavailable, snapshot records: %d", snapCount), nil
	}

	docCount, err := m.docs.Count(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to count document store records: %w", err)
	}
	return fmt.Sprintf("document store records: %d, snapshot records: %d", docCount, snapCount), nil
}

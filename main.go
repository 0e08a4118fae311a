package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"warden/cmd"
	"warden/config"
	"warden/database"
	"warden/events"
	"warden/migration"
	"warden/repository"
	"warden/service"
)

func main() {
	// Check for migration subcommands
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := handleMigrationCommand(); err != nil {
			log.Fatal("Migration error: ", err)
		}
		return
	}

	// Normal bot operation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	// Run the application
	if err := cmd.Run(ctx); err != nil {
		log.Fatal("Application error: ", err)
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: warden migrate [run|status]")
	}

	ctx := context.Background()
	cfg := config.Get()

	snapshots, err := repository.NewSnapshotStore(cfg.SnapshotPath)
	if err != nil {
		return fmt.Errorf("failed to initialize snapshot store: %w", err)
	}

	var docs service.DocumentStore
	if !cfg.SnapshotOnly() {
		client, err := database.Connect(cfg.MongoURL, cfg.MongoDatabase, events.NewBus())
		if err != nil {
			return fmt.Errorf("failed to connect to document store: %w", err)
		}
		defer client.Close()
		docs = repository.NewMongoGuildConfigStore(client)
	}

	migrator := migration.New(docs, snapshots)

	switch os.Args[2] {
	case "run":
		report := migrator.Run(ctx)
		fmt.Printf("sweep: %d migrated, %d failed, %d already current\n",
			report.SweepMigrated, report.SweepFailed, report.SweepSkipped)
		if report.BackfillRan {
			fmt.Printf("backfill: %d copied, %d failed\n", report.BackfillCopied, report.BackfillFailed)
		} else {
			fmt.Println("backfill: not needed")
		}
		return nil
	case "status":
		status, err := migrator.Status(ctx)
		if err != nil {
			return err
		}
		fmt.Println(status)
		return nil
	default:
		return fmt.Errorf("unknown migration command: %s", os.Args[2])
	}
}

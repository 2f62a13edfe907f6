package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/meltforce/freecoach/internal/config"
	"github.com/meltforce/freecoach/internal/ingest"
	"github.com/meltforce/freecoach/internal/ingest/alpha"
	"github.com/meltforce/freecoach/internal/records"
	"github.com/meltforce/freecoach/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	filePath := flag.String("file", "", "path to Alpha Progression CSV export (required)")
	dryRun := flag.Bool("dry-run", false, "report counts without writing to the database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *filePath == "" {
		fmt.Fprintf(os.Stderr, "Usage: freecoach-import -config config.yaml -file export.csv [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	f, err := os.Open(*filePath)
	if err != nil {
		log.Error("cannot open export", "path", *filePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = f.Close() }()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()

	// Run migrations
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *dryRun {
		log.Info("DRY RUN mode: no data will be written to the database")
	}

	// Connect database
	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Run import
	imp := alpha.NewImporter(db, records.NewDetector(db, db, log), log)
	res, err := imp.Import(ctx, f, *dryRun)
	if err != nil {
		log.Error("import failed", "error", err)
		if res != nil {
			printStats(log, res)
		}
		os.Exit(1)
	}

	printStats(log, res)
	log.Info("import complete")
}

func printStats(log *slog.Logger, res *ingest.Result) {
	log.Info("import stats",
		"sessions_received", res.SessionsReceived,
		"sessions_imported", res.SessionsImported,
		"sessions_skipped", res.SessionsSkipped,
		"sets_imported", res.SetsImported,
		"records_detected", res.RecordsDetected,
	)
	if len(res.UnmatchedExercises) > 0 {
		log.Info("exercises not in catalog (sets not imported)", "exercises", res.UnmatchedExercises)
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/gymlog/internal/config"
	"github.com/claude/gymlog/internal/importer"
	"github.com/claude/gymlog/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	workoutsPath := flag.String("path", "", "path to the workout directory (default: workouts.dir from config)")
	userID := flag.Int("user", 1, "user ID to import workouts for")
	dryRun := flag.Bool("dry-run", false, "parse files and report diagnostics without writing to the database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dir := *workoutsPath
	if dir == "" {
		dir = cfg.Workouts.Dir
	}
	if dir == "" {
		fmt.Fprintf(os.Stderr, "Usage: gymlog-import -config config.yaml [-path /path/to/workouts] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Verify workout directory exists
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		log.Error("workout path does not exist or is not a directory", "path", dir)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()

	// Run migrations
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode: no data will be written to the database")
	}

	// Connect database
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Run import
	imp := importer.New(db, log, *userID, *dryRun)
	stats, err := imp.Import(ctx, dir)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	if stats == nil {
		return
	}
	log.Info("import stats",
		"files_scanned", stats.FilesScanned,
		"files_created", stats.FilesCreated,
		"files_updated", stats.FilesUpdated,
		"files_unchanged", stats.FilesUnchanged,
		"files_deleted", stats.FilesDeleted,
		"files_errored", stats.FilesErrored,
		"sets_inserted", stats.SetsInserted,
		"diagnostics", stats.Diagnostics,
	)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/claude/gymlog/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "gymlog server URL (e.g. https://gymlog.tail1234.ts.net)")
	apiKey := flag.String("api-key", os.Getenv("GYMLOG_AUTH_API_KEY"), "API key for write endpoints (default: $GYMLOG_AUTH_API_KEY)")
	workoutsPath := flag.String("path", "", "path to the workout directory")
	dryRun := flag.Bool("dry-run", false, "parse files and report diagnostics but don't send to server")
	prune := flag.Bool("prune", false, "delete workouts on the server whose files were removed locally")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("gymlog-upload", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *workoutsPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: gymlog-upload -server <URL> -api-key <key> -path <workout dir> [-dry-run] [-prune]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *serverURL == "" && !*dryRun {
		fmt.Fprintf(os.Stderr, "Error: -server is required (or use -dry-run)\n")
		os.Exit(1)
	}

	// Strip trailing slash from server URL
	*serverURL = strings.TrimRight(*serverURL, "/")

	info, err := os.Stat(*workoutsPath)
	if err != nil || !info.IsDir() {
		log.Error("workout directory not found", "path", *workoutsPath)
		os.Exit(1)
	}
	log.Info("using workout directory", "path", *workoutsPath)

	// Open state database
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	stateDir := filepath.Join(homeDir, ".gymlog-upload")

	state, err := upload.OpenStateDB(stateDir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	// Create client (nil-safe in dry-run mode)
	var client *upload.Client
	if !*dryRun {
		client = upload.NewClient(*serverURL, *apiKey)
	}

	if *dryRun {
		log.Info("DRY RUN mode: files will be parsed but not sent")
	}

	// Run upload
	uploader := upload.New(client, state, *workoutsPath, *dryRun, *prune, log)
	stats, err := uploader.Run(context.Background())
	if err != nil {
		log.Error("upload failed", "error", err)
		printStats(stats)
		os.Exit(1)
	}

	printStats(stats)
	log.Info("upload complete")
}

func printStats(stats *upload.Stats) {
	if stats == nil {
		return
	}
	fmt.Println()
	fmt.Println("=== Upload Summary ===")
	fmt.Printf("  Files total:      %d\n", stats.FilesTotal)
	fmt.Printf("  Files uploaded:   %d\n", stats.FilesUploaded)
	fmt.Printf("  Files skipped:    %d (unchanged)\n", stats.FilesSkipped)
	fmt.Printf("  Files errored:    %d\n", stats.FilesErrored)
	fmt.Printf("  Files deleted:    %d\n", stats.FilesDeleted)
	fmt.Println()
	fmt.Printf("  Sets sent:        %d\n", stats.SetsSent)
	fmt.Println()
}

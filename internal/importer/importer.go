package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/claude/gymlog/internal/ingest/gymfile"
	"github.com/claude/gymlog/internal/parser"
	"github.com/claude/gymlog/internal/storage"
)

// WorkoutFilePattern matches the names of workout files: a leading
// YYYY-MM-DD date and the .gym extension.
var WorkoutFilePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}.*\.gym$`)

// Stats tracks import progress.
type Stats struct {
	FilesScanned   int
	FilesCreated   int
	FilesUpdated   int
	FilesUnchanged int
	FilesDeleted   int
	FilesErrored   int

	Exercises    int
	SetsInserted int64
	Diagnostics  int
}

// Store is the storage the importer needs. *storage.DB implements it.
type Store interface {
	gymfile.Store
	WorkoutHashes(ctx context.Context, userID int) (map[string]string, error)
	DeleteWorkout(ctx context.Context, userID int, fileName string) (bool, error)
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	UpdateImportLog(ctx context.Context, id int64, log storage.ImportLog) error
}

// File is a workout file found on disk.
type File struct {
	Name string
	Path string
	Hash string
	Data []byte
}

// Changes is the difference between a directory and the stored workouts.
type Changes struct {
	Created   []File
	Updated   []File
	Unchanged []File
	Deleted   []string
}

// Importer reads workout files from a directory and stores the ones that changed.
type Importer struct {
	db       Store
	provider *gymfile.Provider
	log      *slog.Logger
	userID   int
	dryRun   bool
	stats    Stats
	// report receives the rendered diagnostics of rejected files.
	report io.Writer
}

// New creates a new Importer that stores workouts for userID.
func New(db Store, log *slog.Logger, userID int, dryRun bool) *Importer {
	return &Importer{
		db:       db,
		provider: gymfile.NewProvider(db, log),
		log:      log,
		userID:   userID,
		dryRun:   dryRun,
		report:   os.Stderr,
	}
}

// FindChanges lists the workout files in dir and compares their content
// hashes with stored, a map of file name to hash.
func FindChanges(dir string, stored map[string]string) (*Changes, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	changes := &Changes{}
	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() || !WorkoutFilePattern.MatchString(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		f := File{Name: entry.Name(), Path: path, Hash: gymfile.Hash(data), Data: data}
		seen[f.Name] = true

		prev, ok := stored[f.Name]
		switch {
		case !ok:
			changes.Created = append(changes.Created, f)
		case prev != f.Hash:
			changes.Updated = append(changes.Updated, f)
		default:
			changes.Unchanged = append(changes.Unchanged, f)
		}
	}
	for name := range stored {
		if !seen[name] {
			changes.Deleted = append(changes.Deleted, name)
		}
	}
	sort.Strings(changes.Deleted)
	return changes, nil
}

// Import brings the stored workouts in line with the files in dir. Files
// with diagnostics are logged and skipped; the stored copy, if any, is kept.
// Runs that write are recorded in the import log.
func (imp *Importer) Import(ctx context.Context, dir string) (*Stats, error) {
	if imp.dryRun {
		return imp.run(ctx, dir)
	}

	start := time.Now()
	logID, err := imp.db.InsertImportLog(ctx, storage.ImportLog{
		UserID:   imp.userID,
		Source:   "import",
		FileName: dir,
		Status:   "running",
	})
	if err != nil {
		imp.log.Warn("failed to create import log", "error", err)
	}

	stats, runErr := imp.run(ctx, dir)

	if logID != 0 {
		entry := storage.ImportLog{
			Status:       "success",
			Exercises:    stats.Exercises,
			SetsInserted: stats.SetsInserted,
			Diagnostics:  stats.Diagnostics,
		}
		ms := int(time.Since(start).Milliseconds())
		entry.DurationMs = &ms
		if runErr != nil {
			entry.Status = "error"
			msg := runErr.Error()
			entry.ErrorMessage = &msg
		}
		// The run context may already be cancelled.
		logCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := imp.db.UpdateImportLog(logCtx, logID, entry); err != nil {
			imp.log.Warn("failed to update import log", "error", err)
		}
	}
	return stats, runErr
}

// run resets the counters, syncs dir and returns a copy of this run's stats.
func (imp *Importer) run(ctx context.Context, dir string) (*Stats, error) {
	imp.stats = Stats{}
	err := imp.sync(ctx, dir)
	stats := imp.stats
	return &stats, err
}

func (imp *Importer) sync(ctx context.Context, dir string) error {
	stored, err := imp.db.WorkoutHashes(ctx, imp.userID)
	if err != nil {
		return fmt.Errorf("loading stored hashes: %w", err)
	}
	changes, err := FindChanges(dir, stored)
	if err != nil {
		return err
	}
	imp.stats.FilesScanned = len(changes.Created) + len(changes.Updated) + len(changes.Unchanged)
	imp.stats.FilesUnchanged = len(changes.Unchanged)

	for _, f := range changes.Created {
		if imp.importFile(ctx, f) {
			imp.stats.FilesCreated++
		}
	}
	for _, f := range changes.Updated {
		if imp.importFile(ctx, f) {
			imp.stats.FilesUpdated++
		}
	}

	for _, name := range changes.Deleted {
		imp.stats.FilesDeleted++
		if imp.dryRun {
			continue
		}
		if _, err := imp.db.DeleteWorkout(ctx, imp.userID, name); err != nil {
			return fmt.Errorf("deleting workout %s: %w", name, err)
		}
		imp.log.Info("workout removed", "file", name)
	}

	return ctx.Err()
}

// importFile parses and stores one file, reporting whether it succeeded.
func (imp *Importer) importFile(ctx context.Context, f File) bool {
	source := string(f.Data)

	if imp.dryRun {
		_, diags := parser.Parse(source)
		if len(diags) > 0 {
			imp.reportDiagnostics(f, source, diags)
			return false
		}
		return true
	}

	res, err := imp.provider.Ingest(ctx, f.Name, source, imp.userID)
	var perr *parser.ParseError
	if errors.As(err, &perr) {
		imp.reportDiagnostics(f, source, perr.Diagnostics)
		return false
	}
	if err != nil {
		imp.log.Warn("import failed", "file", f.Name, "error", err)
		imp.stats.FilesErrored++
		return false
	}
	imp.stats.Exercises += res.ExercisesReceived
	imp.stats.SetsInserted += res.SetsInserted
	return true
}

func (imp *Importer) reportDiagnostics(f File, source string, diags []parser.Diagnostic) {
	imp.stats.FilesErrored++
	imp.stats.Diagnostics += len(diags)
	imp.log.Warn("workout has errors", "file", f.Name, "diagnostics", len(diags))
	fmt.Fprintf(imp.report, "%s:\n%s\n", f.Path, parser.FormatDiagnostics(diags, source))
}

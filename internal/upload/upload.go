package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/claude/gymlog/internal/importer"
	"github.com/claude/gymlog/internal/parser"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesErrored  int
	FilesDeleted  int

	SetsSent int64
}

// Uploader walks a workout directory and POSTs new or changed files to the
// gymlog server.
type Uploader struct {
	client *Client
	state  *StateDB
	dir    string
	dryRun bool
	prune  bool
	log    *slog.Logger
	stats  Stats
	// report receives the rendered diagnostics of rejected files.
	report io.Writer
}

// New creates a new Uploader. With prune set, workouts whose files were
// removed locally are deleted from the server.
func New(client *Client, state *StateDB, dir string, dryRun, prune bool, log *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		state:  state,
		dir:    dir,
		dryRun: dryRun,
		prune:  prune,
		log:    log,
		report: os.Stderr,
	}
}

// Run executes the upload pipeline.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	u.stats = Stats{}
	uploaded, err := u.state.Hashes()
	if err != nil {
		return &u.stats, err
	}
	changes, err := importer.FindChanges(u.dir, uploaded)
	if err != nil {
		return &u.stats, err
	}

	pending := append(changes.Created, changes.Updated...)
	u.stats.FilesTotal = len(pending) + len(changes.Unchanged)
	u.stats.FilesSkipped = len(changes.Unchanged)

	for _, f := range pending {
		if err := ctx.Err(); err != nil {
			return &u.stats, err
		}
		if u.dryRun {
			if _, diags := parser.Parse(string(f.Data)); len(diags) > 0 {
				u.log.Warn("workout has errors", "file", f.Name, "diagnostics", len(diags))
				u.stats.FilesErrored++
				continue
			}
			u.stats.FilesUploaded++
			continue
		}

		result, err := u.client.UploadWorkout(ctx, f.Name, f.Data)
		var rejected *RejectedError
		if errors.As(err, &rejected) {
			u.log.Warn("workout rejected", "file", f.Name, "diagnostics", len(rejected.Diagnostics))
			fmt.Fprintf(u.report, "%s:\n%s\n", f.Name, parser.FormatDiagnostics(rejected.Diagnostics, string(f.Data)))
			u.stats.FilesErrored++
			continue
		}
		if err != nil {
			u.log.Warn("upload failed", "file", f.Name, "error", err)
			u.stats.FilesErrored++
			continue
		}
		if err := u.state.MarkUploaded(f.Name, int64(len(f.Data)), f.Hash); err != nil {
			return &u.stats, fmt.Errorf("recording upload of %s: %w", f.Name, err)
		}
		u.stats.FilesUploaded++
		u.stats.SetsSent += result.SetsInserted
		u.log.Info("uploaded", "file", f.Name, "sets", result.SetsInserted)
	}

	if !u.prune {
		return &u.stats, nil
	}
	for _, name := range changes.Deleted {
		u.stats.FilesDeleted++
		if u.dryRun {
			continue
		}
		if err := u.client.DeleteWorkout(ctx, name); err != nil {
			u.log.Warn("remote delete failed", "file", name, "error", err)
			u.stats.FilesErrored++
			continue
		}
		if err := u.state.Forget(name); err != nil {
			return &u.stats, fmt.Errorf("forgetting %s: %w", name, err)
		}
	}
	return &u.stats, nil
}

package gymfile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claude/gymlog/internal/ingest"
	"github.com/claude/gymlog/internal/models"
	"github.com/claude/gymlog/internal/parser"
	"github.com/google/uuid"
)

// Store persists workouts. *storage.DB implements it.
type Store interface {
	SaveWorkout(ctx context.Context, rec models.WorkoutRecord) (int64, error)
}

// Provider processes workout files.
type Provider struct {
	db  Store
	log *slog.Logger
}

// NewProvider creates a new workout file ingest provider.
func NewProvider(db Store, log *slog.Logger) *Provider {
	return &Provider{db: db, log: log}
}

// Ingest parses a workout file and replaces the stored copy. A file with
// diagnostics is not stored: the result carries the diagnostics and the
// error is a *parser.ParseError.
func (p *Provider) Ingest(ctx context.Context, fileName, source string, userID int) (*ingest.Result, error) {
	result := &ingest.Result{FileName: fileName}

	doc, diags := parser.Parse(source)
	if len(diags) > 0 {
		result.Diagnostics = diags
		result.Message = fmt.Sprintf("%d parse errors", len(diags))
		return result, &parser.ParseError{Diagnostics: diags}
	}

	rec, err := BuildRecord(fileName, source, doc, userID)
	if err != nil {
		return nil, fmt.Errorf("building record for %s: %w", fileName, err)
	}
	rec.ID = uuid.New()

	result.WorkoutID = rec.ID.String()
	result.ExercisesReceived = len(rec.Exercises)
	for _, ex := range rec.Exercises {
		result.SetsReceived += len(ex.Sets)
	}

	inserted, err := p.db.SaveWorkout(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("saving workout %s: %w", fileName, err)
	}
	result.SetsInserted = inserted

	p.log.Info("workout ingested", "file", fileName,
		"exercises", result.ExercisesReceived, "sets", inserted)
	return result, nil
}

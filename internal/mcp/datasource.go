package mcp

import (
	"context"

	"github.com/claude/gymlog/internal/models"
	"github.com/claude/gymlog/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListWorkouts(ctx context.Context, userID, limit int, name string) ([]models.WorkoutSummary, error)
	ListExercises(ctx context.Context, userID int) ([]models.ExerciseSummary, error)
	ExerciseHistory(ctx context.Context, userID int, name string, limit int) ([]models.HistoryEntry, error)
	RepMaxes(ctx context.Context, userID int, name string, maxReps int, defaultUnit string) ([]models.RepMax, error)
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)

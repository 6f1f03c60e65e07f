package ingest

import "github.com/claude/gymlog/internal/parser"

// Result holds the outcome of an ingest operation.
type Result struct {
	FileName  string `json:"file_name"`
	WorkoutID string `json:"workout_id,omitempty"`

	ExercisesReceived int   `json:"exercises_received"`
	SetsReceived      int   `json:"sets_received"`
	SetsInserted      int64 `json:"sets_inserted"`

	Diagnostics []parser.Diagnostic `json:"diagnostics,omitempty"`

	Message string `json:"message,omitempty"`
}

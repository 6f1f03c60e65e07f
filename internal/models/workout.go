package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// WorkoutRecord is a parsed workout file ready for insertion.
type WorkoutRecord struct {
	ID        uuid.UUID
	UserID    int
	FileName  string
	Date      *time.Time
	Metadata  json.RawMessage
	Source    string
	Hash      string
	Exercises []ExerciseRecord
}

// ExerciseRecord is one exercise block of a workout. LineStart and LineEnd
// point back into WorkoutRecord.Source.
type ExerciseRecord struct {
	Name        string
	Sequence    int
	Subsequence int
	Superset    bool
	LineStart   int
	LineEnd     int
	Sets        []SetRow
}

// SetRow is one physical set: a set line with "x5,5,5" or "3 sets" becomes
// several rows. Nil fields are NULL.
type SetRow struct {
	WeightValue   *float64        `json:"weight_value,omitempty"`
	WeightUnit    *string         `json:"weight_unit,omitempty"`
	Reps          *int            `json:"reps,omitempty"`
	RPE           *float64        `json:"rpe,omitempty"`
	DistanceValue *float64        `json:"distance_value,omitempty"`
	DistanceUnit  *string         `json:"distance_unit,omitempty"`
	Hours         *int            `json:"hours,omitempty"`
	Minutes       *int            `json:"minutes,omitempty"`
	Seconds       *int            `json:"seconds,omitempty"`
	Tags          json.RawMessage `json:"tags,omitempty"`
}

// WorkoutSummary is a stored workout without its sets.
type WorkoutSummary struct {
	ID        uuid.UUID       `json:"id"`
	FileName  string          `json:"file_name"`
	Date      *time.Time      `json:"date"`
	Metadata  json.RawMessage `json:"metadata"`
	Exercises []string        `json:"exercises"`
	SetCount  int             `json:"set_count"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ExerciseSummary is an entry of the exercise catalogue.
type ExerciseSummary struct {
	ID            int        `json:"id"`
	Name          string     `json:"name"`
	Workouts      int        `json:"workouts"`
	LastPerformed *time.Time `json:"last_performed"`
}

// HistoryEntry is one past occurrence of an exercise. Source is the whole
// workout file; LineStart and LineEnd select the exercise block, which is
// copied into Excerpt before the entry leaves the server.
type HistoryEntry struct {
	FileName  string     `json:"file_name"`
	Date      *time.Time `json:"date"`
	LineStart int        `json:"line_start"`
	LineEnd   int        `json:"line_end"`
	Excerpt   string     `json:"excerpt"`
	Source    string     `json:"-"`
}

// RepMax is the heaviest set done for at least Reps reps.
type RepMax struct {
	Reps       int        `json:"reps"`
	ActualReps int        `json:"actual_reps"`
	Weight     float64    `json:"weight"`
	WeightUnit string     `json:"weight_unit"`
	Date       *time.Time `json:"date"`
	FileName   string     `json:"file_name"`
}

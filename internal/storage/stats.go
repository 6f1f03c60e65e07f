package storage

import (
	"context"
	"fmt"
	"time"
)

// DataStats holds aggregate statistics about a user's workout log.
type DataStats struct {
	TotalWorkouts   int64          `json:"total_workouts"`
	TotalExercises  int64          `json:"total_exercises"`
	TotalSets       int64          `json:"total_sets"`
	TotalReps       int64          `json:"total_reps"`
	EarliestWorkout *time.Time     `json:"earliest_workout"`
	LatestWorkout   *time.Time     `json:"latest_workout"`
	TopExercises    []ExerciseStat `json:"top_exercises"`
}

// ExerciseStat holds summary stats for a single exercise.
type ExerciseStat struct {
	Name     string `json:"name"`
	Workouts int64  `json:"workouts"`
	Sets     int64  `json:"sets"`
}

// topExercises is how many exercises GetDataStats ranks.
const topExercises = 10

// GetDataStats returns aggregate statistics for a user's stored workouts.
func (db *DB) GetDataStats(ctx context.Context, userID int) (*DataStats, error) {
	stats := &DataStats{TopExercises: []ExerciseStat{}}

	// Workouts and date range
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), MIN(workout_date), MAX(workout_date)
		 FROM workouts WHERE user_id = $1`, userID,
	).Scan(&stats.TotalWorkouts, &stats.EarliestWorkout, &stats.LatestWorkout)
	if err != nil {
		return nil, fmt.Errorf("counting workouts: %w", err)
	}

	// Exercises
	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exercises WHERE user_id = $1`, userID,
	).Scan(&stats.TotalExercises)
	if err != nil {
		return nil, fmt.Errorf("counting exercises: %w", err)
	}

	// Sets and reps
	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(s.reps), 0)
		 FROM sets s
		 JOIN exercise_instances ei ON ei.id = s.exercise_instance_id
		 JOIN workouts w ON w.id = ei.workout_id
		 WHERE w.user_id = $1`, userID,
	).Scan(&stats.TotalSets, &stats.TotalReps)
	if err != nil {
		return nil, fmt.Errorf("counting sets: %w", err)
	}

	// Most frequent exercises
	rows, err := db.Pool.Query(ctx,
		`SELECT e.name, COUNT(DISTINCT ei.workout_id), COUNT(s.id)
		 FROM exercises e
		 JOIN exercise_instances ei ON ei.exercise_id = e.id
		 LEFT JOIN sets s ON s.exercise_instance_id = ei.id
		 WHERE e.user_id = $1
		 GROUP BY e.id, e.name
		 ORDER BY COUNT(DISTINCT ei.workout_id) DESC, e.name
		 LIMIT $2`, userID, topExercises)
	if err != nil {
		return nil, fmt.Errorf("querying top exercises: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s ExerciseStat
		if err := rows.Scan(&s.Name, &s.Workouts, &s.Sets); err != nil {
			return nil, fmt.Errorf("scanning exercise stat: %w", err)
		}
		stats.TopExercises = append(stats.TopExercises, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/gymlog/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrExerciseExists is returned when renaming onto a name already in use.
var ErrExerciseExists = errors.New("exercise already exists")

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// ListExercises returns the user's exercises with usage counts, most
// recently performed first.
func (db *DB) ListExercises(ctx context.Context, userID int) ([]models.ExerciseSummary, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT e.id, e.name, count(DISTINCT i.workout_id), max(w.workout_date)
		FROM exercises e
		JOIN exercise_instances i ON i.exercise_id = e.id
		JOIN workouts w ON w.id = i.workout_id
		WHERE e.user_id = $1
		GROUP BY e.id, e.name
		ORDER BY max(w.workout_date) DESC NULLS LAST, e.name`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var result []models.ExerciseSummary
	for rows.Next() {
		var e models.ExerciseSummary
		if err := rows.Scan(&e.ID, &e.Name, &e.Workouts, &e.LastPerformed); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// ExerciseHistory returns the most recent occurrences of an exercise,
// newest first, each with the source of its workout.
func (db *DB) ExerciseHistory(ctx context.Context, userID int, name string, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.Pool.Query(ctx, `
		SELECT w.file_name, w.workout_date, i.line_start, i.line_end, w.source
		FROM exercise_instances i
		JOIN exercises e ON e.id = i.exercise_id
		JOIN workouts w ON w.id = i.workout_id
		WHERE e.user_id = $1 AND lower(e.name) = lower($2)
		ORDER BY w.workout_date DESC NULLS LAST, w.file_name DESC, i.sequence DESC, i.subsequence DESC
		LIMIT $3`,
		userID, name, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history for %q: %w", name, err)
	}
	defer rows.Close()

	var result []models.HistoryEntry
	for rows.Next() {
		var h models.HistoryEntry
		if err := rows.Scan(&h.FileName, &h.Date, &h.LineStart, &h.LineEnd, &h.Source); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		result = append(result, h)
	}
	return result, rows.Err()
}

// RepMaxes returns, for each rep count from 1 to maxReps, the heaviest set
// of the exercise done for at least that many reps. Weights without a unit
// are taken to be in defaultUnit; pounds and kilograms are compared by mass.
// Bodyweight sets are ignored.
func (db *DB) RepMaxes(ctx context.Context, userID int, name string, maxReps int, defaultUnit string) ([]models.RepMax, error) {
	if maxReps <= 0 {
		maxReps = 12
	}
	rows, err := db.Pool.Query(ctx, `
		SELECT DISTINCT ON (r.n)
		       r.n, s.reps, s.weight_value, COALESCE(s.weight_unit, $4::text), w.workout_date, w.file_name
		FROM generate_series(1, $3::int) AS r(n)
		JOIN sets s ON s.reps >= r.n
		JOIN exercise_instances i ON i.id = s.exercise_instance_id
		JOIN exercises e ON e.id = i.exercise_id
		JOIN workouts w ON w.id = i.workout_id
		WHERE e.user_id = $1 AND lower(e.name) = lower($2)
		  AND s.weight_value IS NOT NULL
		  AND COALESCE(s.weight_unit, '') <> 'bw'
		ORDER BY r.n,
		         s.weight_value * CASE COALESCE(s.weight_unit, $4::text) WHEN 'lb' THEN 0.453592 ELSE 1 END DESC,
		         s.reps ASC,
		         w.workout_date DESC NULLS LAST`,
		userID, name, maxReps, defaultUnit)
	if err != nil {
		return nil, fmt.Errorf("querying rep maxes for %q: %w", name, err)
	}
	defer rows.Close()

	var result []models.RepMax
	for rows.Next() {
		var r models.RepMax
		if err := rows.Scan(&r.Reps, &r.ActualReps, &r.Weight, &r.WeightUnit, &r.Date, &r.FileName); err != nil {
			return nil, fmt.Errorf("scanning rep max: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// RenameExercise changes the display name of an exercise. Renaming onto a
// different exercise's name fails with ErrExerciseExists; use
// MergeExercises for that.
func (db *DB) RenameExercise(ctx context.Context, userID int, from, to string) error {
	id, err := db.exerciseID(ctx, userID, from)
	if err != nil {
		return err
	}
	_, err = db.Pool.Exec(ctx,
		`UPDATE exercises SET name = $3 WHERE user_id = $1 AND id = $2`, userID, id, to)
	if isUniqueViolation(err) {
		return ErrExerciseExists
	}
	if err != nil {
		return fmt.Errorf("renaming exercise %q: %w", from, err)
	}
	return nil
}

// MergeExercises moves every occurrence of from onto into and removes from.
func (db *DB) MergeExercises(ctx context.Context, userID int, from, into string) error {
	fromID, err := db.exerciseID(ctx, userID, from)
	if err != nil {
		return err
	}
	intoID, err := db.exerciseID(ctx, userID, into)
	if err != nil {
		return err
	}
	if fromID == intoID {
		return nil
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE exercise_instances SET exercise_id = $2 WHERE exercise_id = $1`, fromID, intoID); err != nil {
		return fmt.Errorf("moving exercise instances: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM exercises WHERE id = $1`, fromID); err != nil {
		return fmt.Errorf("deleting exercise %q: %w", from, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing merge: %w", err)
	}
	return nil
}

func (db *DB) exerciseID(ctx context.Context, userID int, name string) (int, error) {
	var id int
	err := db.Pool.QueryRow(ctx,
		`SELECT id FROM exercises WHERE user_id = $1 AND lower(name) = lower($2)`,
		userID, name).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("looking up exercise %q: %w", name, err)
	}
	return id, nil
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/claude/gymlog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a workout or exercise does not exist.
var ErrNotFound = errors.New("not found")

// setColumns is the number of bound parameters per inserted set row.
const setColumns = 12

// setInsert is one set row bound to its exercise instance.
type setInsert struct {
	InstanceID int64
	Position   int
	Row        models.SetRow
}

// buildSetInsert renders a multi-VALUES insert for the given rows.
func buildSetInsert(rows []setInsert) (string, []any) {
	query := `INSERT INTO sets (exercise_instance_id, position, weight_value, weight_unit, reps, rpe,
		distance_value, distance_unit, hours, minutes, seconds, tags) VALUES `
	args := make([]any, 0, len(rows)*setColumns)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * setColumns
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6,
			base+7, base+8, base+9, base+10, base+11, base+12,
		))
		var tags any
		if len(r.Row.Tags) > 0 {
			tags = string(r.Row.Tags)
		}
		args = append(args, r.InstanceID, r.Position, r.Row.WeightValue, r.Row.WeightUnit,
			r.Row.Reps, r.Row.RPE, r.Row.DistanceValue, r.Row.DistanceUnit,
			r.Row.Hours, r.Row.Minutes, r.Row.Seconds, tags)
	}
	return query + strings.Join(valueStrings, ","), args
}

// SaveWorkout replaces the workout stored under (user, file name) with rec.
// Exercises are matched case-insensitively and created on first use.
// Returns the number of set rows inserted.
func (db *DB) SaveWorkout(ctx context.Context, rec models.WorkoutRecord) (int64, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	metadata := rec.Metadata
	if len(metadata) == 0 {
		metadata = []byte("{}")
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM workouts WHERE user_id = $1 AND file_name = $2`,
		rec.UserID, rec.FileName); err != nil {
		return 0, fmt.Errorf("deleting previous workout: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO workouts (id, user_id, file_name, workout_date, metadata, source, hash)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		rec.ID, rec.UserID, rec.FileName, rec.Date, string(metadata), rec.Source, rec.Hash); err != nil {
		return 0, fmt.Errorf("inserting workout: %w", err)
	}

	var sets []setInsert
	for _, ex := range rec.Exercises {
		exerciseID, err := upsertExercise(ctx, tx, rec.UserID, ex.Name)
		if err != nil {
			return 0, err
		}
		var instanceID int64
		err = tx.QueryRow(ctx,
			`INSERT INTO exercise_instances (workout_id, exercise_id, sequence, subsequence, superset, line_start, line_end)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)
			 RETURNING id`,
			rec.ID, exerciseID, ex.Sequence, ex.Subsequence, ex.Superset, ex.LineStart, ex.LineEnd,
		).Scan(&instanceID)
		if err != nil {
			return 0, fmt.Errorf("inserting exercise instance %q: %w", ex.Name, err)
		}
		for i, row := range ex.Sets {
			sets = append(sets, setInsert{InstanceID: instanceID, Position: i, Row: row})
		}
	}

	var inserted int64
	if len(sets) > 0 {
		query, args := buildSetInsert(sets)
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("inserting sets: %w", err)
		}
		inserted = tag.RowsAffected()
	}

	if err := deleteOrphanExercises(ctx, tx, rec.UserID); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing workout: %w", err)
	}
	return inserted, nil
}

// upsertExercise returns the ID of the user's exercise with the given name,
// creating it if needed. The first spelling seen is kept.
func upsertExercise(ctx context.Context, tx pgx.Tx, userID int, name string) (int, error) {
	var id int
	err := tx.QueryRow(ctx, `
		INSERT INTO exercises (user_id, name)
		VALUES ($1, $2)
		ON CONFLICT (user_id, (lower(name))) DO UPDATE SET name = exercises.name
		RETURNING id
	`, userID, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting exercise %q: %w", name, err)
	}
	return id, nil
}

func deleteOrphanExercises(ctx context.Context, tx pgx.Tx, userID int) error {
	_, err := tx.Exec(ctx, `
		DELETE FROM exercises e
		WHERE e.user_id = $1
		  AND NOT EXISTS (SELECT 1 FROM exercise_instances i WHERE i.exercise_id = e.id)
	`, userID)
	if err != nil {
		return fmt.Errorf("deleting unused exercises: %w", err)
	}
	return nil
}

// DeleteWorkout removes a workout by file name. Returns false if it did not exist.
func (db *DB) DeleteWorkout(ctx context.Context, userID int, fileName string) (bool, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`DELETE FROM workouts WHERE user_id = $1 AND file_name = $2`, userID, fileName)
	if err != nil {
		return false, fmt.Errorf("deleting workout %s: %w", fileName, err)
	}
	if err := deleteOrphanExercises(ctx, tx, userID); err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing delete: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListWorkouts returns the most recent workouts, newest first. A non-empty
// name filters on the metadata "name" field, ignoring case.
func (db *DB) ListWorkouts(ctx context.Context, userID, limit int, name string) ([]models.WorkoutSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Pool.Query(ctx, `
		SELECT w.id, w.file_name, w.workout_date, w.metadata, w.updated_at,
		       COALESCE(array_agg(e.name ORDER BY i.sequence, i.subsequence) FILTER (WHERE e.id IS NOT NULL), '{}'),
		       (SELECT count(*) FROM sets s
		          JOIN exercise_instances si ON si.id = s.exercise_instance_id
		         WHERE si.workout_id = w.id)
		FROM workouts w
		LEFT JOIN exercise_instances i ON i.workout_id = w.id
		LEFT JOIN exercises e ON e.id = i.exercise_id
		WHERE w.user_id = $1
		  AND ($2::text = '' OR lower(w.metadata->>'name') = lower($2::text))
		GROUP BY w.id
		ORDER BY w.workout_date DESC NULLS LAST, w.file_name DESC
		LIMIT $3`,
		userID, name, limit)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutSummary
	for rows.Next() {
		var w models.WorkoutSummary
		var metadata []byte
		if err := rows.Scan(&w.ID, &w.FileName, &w.Date, &metadata, &w.UpdatedAt,
			&w.Exercises, &w.SetCount); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		w.Metadata = metadata
		result = append(result, w)
	}
	return result, rows.Err()
}

// GetWorkoutSource returns the stored text of a workout file.
func (db *DB) GetWorkoutSource(ctx context.Context, userID int, fileName string) (string, error) {
	var source string
	err := db.Pool.QueryRow(ctx,
		`SELECT source FROM workouts WHERE user_id = $1 AND file_name = $2`,
		userID, fileName).Scan(&source)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying workout %s: %w", fileName, err)
	}
	return source, nil
}

// WorkoutHashes returns the content hash of every stored workout by file name.
func (db *DB) WorkoutHashes(ctx context.Context, userID int) (map[string]string, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT file_name, hash FROM workouts WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workout hashes: %w", err)
	}
	defer rows.Close()

	hashes := make(map[string]string)
	for rows.Next() {
		var name, hash string
		if err := rows.Scan(&name, &hash); err != nil {
			return nil, fmt.Errorf("scanning workout hash: %w", err)
		}
		hashes[name] = hash
	}
	return hashes, rows.Err()
}

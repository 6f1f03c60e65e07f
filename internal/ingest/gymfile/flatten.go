package gymfile

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"time"

	"github.com/claude/gymlog/internal/models"
	"github.com/claude/gymlog/internal/parser"
)

// bodyweightUnit marks a "bw" set in the weight_unit column.
const bodyweightUnit = "bw"

// FlattenSets expands parsed set lines into one row per physical set. A line
// is repeated RepeatCount times, and each repetition yields one row per rep
// count ("100x5,5,3" is three rows). A line without reps is a single row.
func FlattenSets(sets []parser.Set) []models.SetRow {
	var rows []models.SetRow
	for _, s := range sets {
		base := setRow(s)
		repeat := max(s.RepeatCount, 1)
		for range repeat {
			if len(s.Reps) == 0 {
				rows = append(rows, base)
				continue
			}
			for _, n := range s.Reps {
				row := base
				row.Reps = &n
				rows = append(rows, row)
			}
		}
	}
	return rows
}

// setRow maps the fields shared by every row of a set line.
func setRow(s parser.Set) models.SetRow {
	var row models.SetRow
	if w := s.Weight; w != nil {
		switch {
		case w.Bodyweight:
			zero, unit := 0.0, bodyweightUnit
			row.WeightValue, row.WeightUnit = &zero, &unit
		case w.Unit == "":
			v := w.Value
			row.WeightValue = &v
		default:
			v, unit := w.Value, w.Unit
			row.WeightValue, row.WeightUnit = &v, &unit
		}
	}
	row.RPE = s.RPE
	if d := s.Distance; d != nil {
		v, unit := d.Value, d.Unit
		row.DistanceValue, row.DistanceUnit = &v, &unit
	}
	if t := s.Time; t != nil {
		h, m, sec := t.Hours, t.Minutes, t.Seconds
		row.Hours, row.Minutes, row.Seconds = &h, &m, &sec
	}
	if len(s.Tags) > 0 {
		// Tags are plain keys and scalars, so marshalling cannot fail.
		row.Tags, _ = json.Marshal(s.Tags)
	}
	return row
}

var fileDateRe = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)

// WorkoutDate returns the date of a workout: the first YYYY-MM-DD in the
// file name, else a "date" metadata field in the same format.
func WorkoutDate(fileName string, meta parser.Metadata) *time.Time {
	if m := fileDateRe.FindString(fileName); m != "" {
		if d, err := time.Parse(time.DateOnly, m); err == nil {
			return &d
		}
	}
	if s, ok := meta.GetString("date"); ok {
		if d, err := time.Parse(time.DateOnly, s); err == nil {
			return &d
		}
	}
	return nil
}

// Hash returns the hex SHA-256 of a workout file's content.
func Hash(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}

// BuildRecord converts a parsed document into a storage record.
func BuildRecord(fileName, source string, doc *parser.Document, userID int) (models.WorkoutRecord, error) {
	metadata, err := json.Marshal(doc.Metadata)
	if err != nil {
		return models.WorkoutRecord{}, err
	}
	rec := models.WorkoutRecord{
		UserID:   userID,
		FileName: fileName,
		Date:     WorkoutDate(fileName, doc.Metadata),
		Metadata: metadata,
		Source:   source,
		Hash:     Hash([]byte(source)),
	}
	for _, ex := range doc.Exercises {
		rec.Exercises = append(rec.Exercises, models.ExerciseRecord{
			Name:        ex.Name,
			Sequence:    ex.Sequence,
			Subsequence: ex.Subsequence,
			Superset:    ex.Superset,
			LineStart:   ex.LineStart,
			LineEnd:     ex.LineEnd,
			Sets:        FlattenSets(ex.Sets),
		})
	}
	return rec, nil
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/claude/gymlog/internal/calc"
	"github.com/claude/gymlog/internal/config"
	"github.com/claude/gymlog/internal/ingest"
	"github.com/claude/gymlog/internal/models"
	"github.com/claude/gymlog/internal/storage"
)

// TestHandleMeDefault verifies the /api/v1/me endpoint returns the dev user
// identity when no Tailscale middleware is active.
func TestHandleMeDefault(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	ctx := context.WithValue(req.Context(), userInfoKey, UserInfo{Login: "local", DisplayName: "Local Dev User"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	s.handleMe(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.Login != "local" {
		t.Errorf("login = %q, want %q", info.Login, "local")
	}
	if info.DisplayName != "Local Dev User" {
		t.Errorf("display_name = %q, want %q", info.DisplayName, "Local Dev User")
	}
}

// TestHandleMeTailscaleUser verifies the /api/v1/me endpoint returns the
// Tailscale user identity when set in context.
func TestHandleMeTailscaleUser(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	ctx := context.WithValue(req.Context(), userInfoKey, UserInfo{Login: "alice@example.com", DisplayName: "Alice"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	s.handleMe(rec, req)

	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.Login != "alice@example.com" {
		t.Errorf("login = %q, want %q", info.Login, "alice@example.com")
	}
	if info.DisplayName != "Alice" {
		t.Errorf("display_name = %q, want %q", info.DisplayName, "Alice")
	}
}

type fakeStore struct {
	pingErr  error
	saved    []models.WorkoutRecord
	deleted  []string
	logs     []storage.ImportLog
	history  []models.HistoryEntry
	maxUnit  string
	renameTo string

	historyName string
}

func (f *fakeStore) SaveWorkout(_ context.Context, rec models.WorkoutRecord) (int64, error) {
	f.saved = append(f.saved, rec)
	var n int64
	for _, ex := range rec.Exercises {
		n += int64(len(ex.Sets))
	}
	return n, nil
}

func (f *fakeStore) GetOrCreateUser(context.Context, string, string) (int, error) { return 1, nil }

func (f *fakeStore) DeleteWorkout(_ context.Context, _ int, name string) (bool, error) {
	f.deleted = append(f.deleted, name)
	return name == "2024-01-01.gym", nil
}

func (f *fakeStore) ListWorkouts(context.Context, int, int, string) ([]models.WorkoutSummary, error) {
	return nil, nil
}

func (f *fakeStore) GetWorkoutSource(_ context.Context, _ int, name string) (string, error) {
	if name != "2024-01-01.gym" {
		return "", storage.ErrNotFound
	}
	return "# Squat\n100x5\n", nil
}

func (f *fakeStore) ListExercises(context.Context, int) ([]models.ExerciseSummary, error) {
	return nil, nil
}

func (f *fakeStore) ExerciseHistory(_ context.Context, _ int, name string, _ int) ([]models.HistoryEntry, error) {
	f.historyName = name
	return f.history, nil
}

func (f *fakeStore) RepMaxes(_ context.Context, _ int, _ string, _ int, unit string) ([]models.RepMax, error) {
	f.maxUnit = unit
	return nil, nil
}

func (f *fakeStore) RenameExercise(_ context.Context, _ int, from, to string) error {
	if from != "Squat" {
		return storage.ErrNotFound
	}
	f.renameTo = to
	return nil
}

func (f *fakeStore) MergeExercises(context.Context, int, string, string) error { return nil }

func (f *fakeStore) InsertImportLog(_ context.Context, l storage.ImportLog) (int64, error) {
	f.logs = append(f.logs, l)
	return int64(len(f.logs)), nil
}

func (f *fakeStore) QueryImportLogs(context.Context, int, int) ([]storage.ImportLog, error) {
	return f.logs, nil
}

func (f *fakeStore) GetDataStats(context.Context, int) (*storage.DataStats, error) {
	return &storage.DataStats{TotalWorkouts: 3, TotalSets: 40, TopExercises: []storage.ExerciseStat{}}, nil
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func newTestServer() (*Server, *fakeStore) {
	db := &fakeStore{}
	settings := config.WorkoutsConfig{UnitSystem: "metric", E1RMFormula: "brzycki"}
	return New(db, "secret", settings, slog.New(slog.NewTextHandler(io.Discard, nil))), db
}

func do(s *Server, method, target, body string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if authed {
		req.Header.Set("X-API-Key", "secret")
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

// TestIngestWorkout verifies a clean upload is stored and logged.
func TestIngestWorkout(t *testing.T) {
	s, db := newTestServer()
	rec := do(s, http.MethodPost, "/api/v1/ingest/workout?file=2024-01-01.gym", "# Squat\n100x5,5\n", true)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	var res ingest.Result
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.SetsInserted != 2 {
		t.Errorf("SetsInserted = %d, want 2", res.SetsInserted)
	}
	if len(db.saved) != 1 || db.saved[0].FileName != "2024-01-01.gym" {
		t.Errorf("saved = %v", db.saved)
	}
	if len(db.logs) != 1 || db.logs[0].Status != "success" || db.logs[0].SetsInserted != 2 {
		t.Errorf("logs = %+v", db.logs)
	}
}

// TestIngestWorkoutDiagnostics verifies a broken file gets 422 with diagnostics.
func TestIngestWorkoutDiagnostics(t *testing.T) {
	s, db := newTestServer()
	rec := do(s, http.MethodPost, "/api/v1/ingest/workout?file=2024-01-01.gym", "# Squat\n100x5 x6\n", true)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var res ingest.Result
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Message != "duplicate reps" {
		t.Errorf("Diagnostics = %v", res.Diagnostics)
	}
	if len(db.saved) != 0 {
		t.Errorf("saved = %d, want 0", len(db.saved))
	}
	if len(db.logs) != 1 || db.logs[0].Status != "error" || db.logs[0].Diagnostics != 1 {
		t.Errorf("logs = %+v", db.logs)
	}
}

// TestIngestWorkoutRequiresKey verifies the write endpoints are behind the API key.
func TestIngestWorkoutRequiresKey(t *testing.T) {
	s, _ := newTestServer()
	rec := do(s, http.MethodPost, "/api/v1/ingest/workout?file=a.gym", "# Squat\n", false)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

// TestIngestWorkoutBadFileName verifies path components are refused.
func TestIngestWorkoutBadFileName(t *testing.T) {
	s, _ := newTestServer()
	for _, name := range []string{"", "..", "a%2Fb.gym", "..%2Fetc"} {
		rec := do(s, http.MethodPost, "/api/v1/ingest/workout?file="+name, "# Squat\n", true)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("file=%q: status = %d, want 400", name, rec.Code)
		}
	}
}

// TestDeleteWorkout verifies found and missing workouts.
func TestDeleteWorkout(t *testing.T) {
	s, _ := newTestServer()
	if rec := do(s, http.MethodDelete, "/api/v1/workouts/2024-01-01.gym", "", true); rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec := do(s, http.MethodDelete, "/api/v1/workouts/missing.gym", "", true); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

// TestParseEndpoint verifies the rendered report accompanies diagnostics.
func TestParseEndpoint(t *testing.T) {
	s, _ := newTestServer()
	rec := do(s, http.MethodPost, "/api/v1/parse", "# Bench\n295xEight,8\n", false)

	var resp struct {
		Document    json.RawMessage `json:"document"`
		Diagnostics []struct {
			Message string `json:"message"`
		} `json:"diagnostics"`
		Report string `json:"report"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %v, want 1", resp.Diagnostics)
	}
	if !strings.Contains(resp.Report, "2| 295xEight,8") {
		t.Errorf("report = %q", resp.Report)
	}
}

// TestParseSetEndpoint verifies a single set line parses.
func TestParseSetEndpoint(t *testing.T) {
	s, _ := newTestServer()
	rec := do(s, http.MethodPost, "/api/v1/parse/set", "100kg x5@8", false)
	want := `{"diagnostics":[],"set":{"weight":{"value":100,"unit":"kg"},"reps":[5],"rpe":8}}` + "\n"
	if rec.Body.String() != want {
		t.Errorf("body = %s, want %s", rec.Body, want)
	}
}

// TestWorkoutSource verifies the stored text is served as plain text.
func TestWorkoutSource(t *testing.T) {
	s, _ := newTestServer()
	rec := do(s, http.MethodGet, "/api/v1/workouts/2024-01-01.gym/source", "", false)
	if rec.Body.String() != "# Squat\n100x5\n" {
		t.Errorf("body = %q", rec.Body)
	}
	rec = do(s, http.MethodGet, "/api/v1/workouts/nope.gym/source", "", false)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

// TestExerciseHistoryExcerpt verifies each entry carries its block of the source.
func TestExerciseHistoryExcerpt(t *testing.T) {
	s, db := newTestServer()
	db.history = []models.HistoryEntry{{
		FileName: "2024-01-01.gym", LineStart: 3, LineEnd: 4,
		Source: "# Bench\n80x5\n# Squat\n100x5\n",
	}}
	rec := do(s, http.MethodGet, "/api/v1/exercises/Squat/history", "", false)

	var items []models.HistoryEntry
	if err := json.NewDecoder(rec.Body).Decode(&items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Excerpt != "# Squat\n100x5" {
		t.Errorf("items = %+v", items)
	}
	if strings.Contains(rec.Body.String(), "80x5") {
		t.Errorf("response leaks the whole source: %s", rec.Body)
	}
}

// TestRepMaxesUnit verifies bare weights are resolved in the configured unit.
func TestRepMaxesUnit(t *testing.T) {
	s, db := newTestServer()
	do(s, http.MethodGet, "/api/v1/exercises/Squat/prs", "", false)
	if db.maxUnit != "kg" {
		t.Errorf("default unit = %q, want kg", db.maxUnit)
	}
}

// TestRenameExercise verifies the happy path and a missing exercise.
func TestRenameExercise(t *testing.T) {
	s, db := newTestServer()
	rec := do(s, http.MethodPost, "/api/v1/exercises/Squat/rename", `{"name":"Back Squat"}`, true)
	if rec.Code != http.StatusOK || db.renameTo != "Back Squat" {
		t.Errorf("status = %d renameTo = %q", rec.Code, db.renameTo)
	}
	rec = do(s, http.MethodPost, "/api/v1/exercises/Curl/rename", `{"name":"Bicep Curl"}`, true)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

// TestCalcEndpoints verifies e1RM and RPE conversion.
func TestCalcEndpoints(t *testing.T) {
	s, _ := newTestServer()

	rec := do(s, http.MethodGet, "/api/v1/calc/e1rm?set=100x5", "", false)
	var e struct {
		E1RM float64 `json:"e1rm"`
	}
	json.NewDecoder(rec.Body).Decode(&e)
	if e.E1RM != 112.5 {
		t.Errorf("e1rm = %v, want 112.5", e.E1RM)
	}

	rec = do(s, http.MethodGet, "/api/v1/calc/rpe?from=100x5@10&to=x10", "", false)
	var conv calc.Conversion
	json.NewDecoder(rec.Body).Decode(&conv)
	if conv.Field != "weight" {
		t.Errorf("conversion = %+v, want weight", conv)
	}

	rec = do(s, http.MethodGet, "/api/v1/calc/e1rm?set=100x5&formula=wendler", "", false)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	rec = do(s, http.MethodGet, "/api/v1/calc/e1rm?set=100x37", "", false)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("100x37 status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "too many reps") {
		t.Errorf("100x37 body = %q", rec.Body.String())
	}
}

// TestStatsEndpoint verifies aggregate stats are returned as JSON.
func TestStatsEndpoint(t *testing.T) {
	s, _ := newTestServer()
	rec := do(s, http.MethodGet, "/api/v1/stats", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var stats storage.DataStats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	if stats.TotalWorkouts != 3 || stats.TotalSets != 40 {
		t.Errorf("stats = %+v", stats)
	}
}

// TestHealthEndpoint verifies the status code follows the database ping.
func TestHealthEndpoint(t *testing.T) {
	s, db := newTestServer()
	if rec := do(s, http.MethodGet, "/api/v1/health", "", false); rec.Code != http.StatusOK {
		t.Errorf("healthy status = %d, want 200", rec.Code)
	}
	db.pingErr = errors.New("connection refused")
	if rec := do(s, http.MethodGet, "/api/v1/health", "", false); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy status = %d, want 503", rec.Code)
	}
}

// TestExerciseNameUnescaped verifies names with an escaped slash reach the
// store decoded.
func TestExerciseNameUnescaped(t *testing.T) {
	s, db := newTestServer()
	rec := do(s, http.MethodGet, "/api/v1/exercises/Push%2FPull%20Row/history", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if db.historyName != "Push/Pull Row" {
		t.Errorf("name = %q, want %q", db.historyName, "Push/Pull Row")
	}
}

package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/claude/gymlog/internal/models"
)

// newTestServer creates an httptest server that routes requests to handler functions
// keyed by path. Verifies the HTTP client sends correct paths and query params.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.EscapedPath()]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.EscapedPath())
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestListWorkouts verifies the limit and name filter are forwarded.
func TestListWorkouts(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/workouts": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("limit"); got != "5" {
				t.Errorf("limit=%q, want 5", got)
			}
			if got := r.URL.Query().Get("name"); got != "Push" {
				t.Errorf("name=%q, want Push", got)
			}
			writeTestJSON(t, w, []models.WorkoutSummary{
				{FileName: "2024-01-01.gym", Exercises: []string{"Bench Press"}, SetCount: 6},
			})
		},
	})
	defer ts.Close()

	workouts, err := NewHTTPClient(ts.URL).ListWorkouts(context.Background(), 1, 5, "Push")
	if err != nil {
		t.Fatal(err)
	}
	if len(workouts) != 1 || workouts[0].SetCount != 6 {
		t.Errorf("workouts = %+v", workouts)
	}
}

// TestExerciseHistoryEscapesName verifies exercise names with spaces and
// slashes stay a single path segment.
func TestExerciseHistoryEscapesName(t *testing.T) {
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/exercises/Push%2FPull%20Row/history": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, []models.HistoryEntry{
				{FileName: "2024-01-01.gym", Date: &d, LineStart: 3, LineEnd: 4, Excerpt: "# Push/Pull Row\n60x8"},
			})
		},
	})
	defer ts.Close()

	entries, err := NewHTTPClient(ts.URL).ExerciseHistory(context.Background(), 1, "Push/Pull Row", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Excerpt != "# Push/Pull Row\n60x8" {
		t.Errorf("entries = %+v", entries)
	}
}

// TestRepMaxes verifies the max_reps parameter and decoding.
func TestRepMaxes(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/exercises/Squat/prs": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("max_reps"); got != "5" {
				t.Errorf("max_reps=%q, want 5", got)
			}
			writeTestJSON(t, w, []models.RepMax{{Reps: 1, ActualReps: 3, Weight: 140, WeightUnit: "kg"}})
		},
	})
	defer ts.Close()

	maxes, err := NewHTTPClient(ts.URL).RepMaxes(context.Background(), 1, "Squat", 5, "lb")
	if err != nil {
		t.Fatal(err)
	}
	if len(maxes) != 1 || maxes[0].Weight != 140 {
		t.Errorf("maxes = %+v", maxes)
	}
}

// TestHTTPClientError verifies non-200 responses become errors with the body.
func TestHTTPClientError(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/exercises": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
		},
	})
	defer ts.Close()

	_, err := NewHTTPClient(ts.URL).ListExercises(context.Background(), 1)
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Errorf("err = %v, want status 500", err)
	}
}

// TestGetDataStats verifies the stats endpoint is decoded.
func TestGetDataStats(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/stats": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, map[string]any{"total_workouts": 4, "total_sets": 90})
		},
	})
	defer ts.Close()

	stats, err := NewHTTPClient(ts.URL).GetDataStats(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalWorkouts != 4 || stats.TotalSets != 90 {
		t.Errorf("stats = %+v", stats)
	}
}

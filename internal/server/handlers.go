package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/claude/gymlog/internal/calc"
	"github.com/claude/gymlog/internal/history"
	"github.com/claude/gymlog/internal/models"
	"github.com/claude/gymlog/internal/parser"
	"github.com/claude/gymlog/internal/storage"
	"github.com/go-chi/chi/v5"
)

// maxWorkoutBytes bounds the size of an uploaded workout file.
const maxWorkoutBytes = 1 << 20

func (s *Server) handleIngestWorkout(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("file")
	if !validFileName(name) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file parameter must be a plain file name"})
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWorkoutBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
		return
	}

	uid := userIDFromContext(r)
	start := time.Now()
	result, err := s.workouts.Ingest(r.Context(), name, string(body), uid)
	s.logImport(uid, "upload", name, result, err, int(time.Since(start).Milliseconds()))

	var perr *parser.ParseError
	if errors.As(err, &perr) {
		writeJSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	if err != nil {
		s.log.Error("ingest error", "file", name, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// validFileName rejects empty names and anything with a directory part.
func validFileName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) && path.Base(name) == name
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "file")
	deleted, err := s.db.DeleteWorkout(r.Context(), userIDFromContext(r), name)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": name})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

// parseResponse is the result of parsing a workout without storing it.
type parseResponse struct {
	Document    *parser.Document    `json:"document"`
	Diagnostics []parser.Diagnostic `json:"diagnostics"`
	// Report is the human readable rendering of the diagnostics.
	Report string `json:"report,omitempty"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWorkoutBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
		return
	}
	source := string(body)
	doc, diags := parser.Parse(source)
	resp := parseResponse{Document: doc, Diagnostics: diags}
	if len(diags) == 0 {
		resp.Diagnostics = []parser.Diagnostic{}
	} else {
		resp.Report = parser.FormatDiagnostics(diags, source)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleParseSet(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWorkoutBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
		return
	}
	set, diags := parser.ParseSetLine(strings.TrimRight(string(body), "\r\n"))
	if diags == nil {
		diags = []parser.Diagnostic{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"set": set, "diagnostics": diags})
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	workouts, err := s.db.ListWorkouts(r.Context(), userIDFromContext(r), limit, r.URL.Query().Get("name"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if workouts == nil {
		workouts = []models.WorkoutSummary{}
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleWorkoutSource(w http.ResponseWriter, r *http.Request) {
	source, err := s.db.GetWorkoutSource(r.Context(), userIDFromContext(r), pathParam(r, "file"))
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, source)
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	exercises, err := s.db.ListExercises(r.Context(), userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if exercises == nil {
		exercises = []models.ExerciseSummary{}
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (s *Server) handleExerciseHistory(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	entries, err := s.db.ExerciseHistory(r.Context(), userIDFromContext(r), name, queryInt(r, "limit", 10))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	history.Fill(entries)
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleRepMaxes(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	maxes, err := s.db.RepMaxes(r.Context(), userIDFromContext(r), name,
		queryInt(r, "max_reps", 12), s.settings.DefaultWeightUnit())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if maxes == nil {
		maxes = []models.RepMax{}
	}
	writeJSON(w, http.StatusOK, maxes)
}

func (s *Server) handleRenameExercise(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body must be {\"name\": \"...\"}"})
		return
	}
	err := s.db.RenameExercise(r.Context(), userIDFromContext(r), pathParam(r, "name"), strings.TrimSpace(req.Name))
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not found"})
	case errors.Is(err, storage.ErrExerciseExists):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusOK, map[string]string{"name": req.Name})
	}
}

func (s *Server) handleMergeExercise(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Into string `json:"into"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Into == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body must be {\"into\": \"...\"}"})
		return
	}
	err := s.db.MergeExercises(r.Context(), userIDFromContext(r), pathParam(r, "name"), req.Into)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not found"})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusOK, map[string]string{"name": req.Into})
	}
}

// formula returns the formula named in the request, or the configured one.
func (s *Server) formula(r *http.Request) (calc.Formula, error) {
	name := r.URL.Query().Get("formula")
	if name == "" {
		name = s.settings.E1RMFormula
	}
	return calc.ParseFormula(name)
}

func (s *Server) handleE1RM(w http.ResponseWriter, r *http.Request) {
	f, err := s.formula(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	set := r.URL.Query().Get("set")
	e1rm, err := calc.E1RM(set, f)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"set": set, "formula": f, "e1rm": e1rm})
}

func (s *Server) handleConvertRPE(w http.ResponseWriter, r *http.Request) {
	f, err := s.formula(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	conv, err := calc.ConvertRPE(r.URL.Query().Get("from"), r.URL.Query().Get("to"), f)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "status", status, "error", err)
	}
}

// pathParam returns a URL parameter unescaped. chi matches on the raw path
// when one is present, so names containing an escaped "/" arrive escaped.
func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v
	}
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

// queryInt reads a positive integer query parameter, falling back to def.
func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/claude/gymlog/internal/config"
	"github.com/claude/gymlog/internal/ingest/gymfile"
	"github.com/claude/gymlog/internal/models"
	"github.com/claude/gymlog/internal/storage"
	"github.com/go-chi/chi/v5"
)

// Store is the repository the handlers use. *storage.DB implements it.
type Store interface {
	gymfile.Store
	UserStore
	DeleteWorkout(ctx context.Context, userID int, fileName string) (bool, error)
	ListWorkouts(ctx context.Context, userID, limit int, name string) ([]models.WorkoutSummary, error)
	GetWorkoutSource(ctx context.Context, userID int, fileName string) (string, error)
	ListExercises(ctx context.Context, userID int) ([]models.ExerciseSummary, error)
	ExerciseHistory(ctx context.Context, userID int, name string, limit int) ([]models.HistoryEntry, error)
	RepMaxes(ctx context.Context, userID int, name string, maxReps int, defaultUnit string) ([]models.RepMax, error)
	RenameExercise(ctx context.Context, userID int, from, to string) error
	MergeExercises(ctx context.Context, userID int, from, into string) error
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	QueryImportLogs(ctx context.Context, userID, limit int) ([]storage.ImportLog, error)
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
	Ping(ctx context.Context) error
}

var _ Store = (*storage.DB)(nil)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db        Store
	workouts  *gymfile.Provider
	log       *slog.Logger
	apiKey    string
	settings  config.WorkoutsConfig
	tailscale WhoIsClient
	router    chi.Router
}

// New creates a new Server with all routes configured.
func New(db Store, apiKey string, settings config.WorkoutsConfig, log *slog.Logger) *Server {
	s := &Server{
		db:       db,
		workouts: gymfile.NewProvider(db, log),
		log:      log,
		apiKey:   apiKey,
		settings: settings,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale switches request identity from the local dev user to the
// Tailscale user behind each connection.
func (s *Server) SetTailscale(lc WhoIsClient) {
	s.tailscale = lc
}

// Mount attaches an extra handler, such as the MCP endpoint, under pattern.
func (s *Server) Mount(pattern string, h http.Handler) {
	s.router.Handle(pattern, h)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	// Write endpoints (API key required)
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/api/v1/ingest/workout", s.handleIngestWorkout)
		r.Delete("/api/v1/workouts/{file}", s.handleDeleteWorkout)
		r.Post("/api/v1/exercises/{name}/rename", s.handleRenameExercise)
		r.Post("/api/v1/exercises/{name}/merge", s.handleMergeExercise)
	})

	// Read endpoints (no auth, tsnet handles access)
	s.router.Get("/api/v1/health", s.handleHealth)
	s.router.Get("/api/v1/me", s.handleMe)
	s.router.Post("/api/v1/parse", s.handleParse)
	s.router.Post("/api/v1/parse/set", s.handleParseSet)
	s.router.Get("/api/v1/workouts", s.handleListWorkouts)
	s.router.Get("/api/v1/workouts/{file}/source", s.handleWorkoutSource)
	s.router.Get("/api/v1/exercises", s.handleListExercises)
	s.router.Get("/api/v1/exercises/{name}/history", s.handleExerciseHistory)
	s.router.Get("/api/v1/exercises/{name}/prs", s.handleRepMaxes)
	s.router.Get("/api/v1/calc/e1rm", s.handleE1RM)
	s.router.Get("/api/v1/calc/rpe", s.handleConvertRPE)
	s.router.Get("/api/v1/stats", s.handleStats)
	s.router.Get("/api/v1/import-logs", s.handleImportLogs)
}

// identity applies the Tailscale identity when a local client is set and
// the dev identity otherwise.
func (s *Server) identity(next http.Handler) http.Handler {
	dev := DevIdentity(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.tailscale == nil {
			dev.ServeHTTP(w, r)
			return
		}
		TailscaleIdentity(s.tailscale, s.db, s.log)(next).ServeHTTP(w, r)
	})
}

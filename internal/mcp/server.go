package mcp

import (
	"context"
	"log/slog"

	"github.com/claude/gymlog/internal/calc"
	"github.com/claude/gymlog/internal/config"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
// settings supplies the unit for bare weights and the default e1RM formula.
func New(ds DataSource, settings config.WorkoutsConfig, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("gymlog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("gymlog workout log server. Parse workout text, browse logged workouts, exercise history and rep maxes, and estimate one-rep maxes. All data is scoped to the authenticated user."),
	)

	formula, err := calc.ParseFormula(settings.E1RMFormula)
	if err != nil {
		log.Warn("unknown e1rm formula, using brzycki", "formula", settings.E1RMFormula)
		formula = calc.Brzycki
	}
	h := &handlers{ds: ds, log: log, unit: settings.DefaultWeightUnit(), formula: formula}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolParseWorkout, Handler: h.parseWorkout},
		server.ServerTool{Tool: toolListWorkouts, Handler: h.listWorkouts},
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolGetDataStats, Handler: h.getDataStats},
		server.ServerTool{Tool: toolGetExerciseHistory, Handler: h.getExerciseHistory},
		server.ServerTool{Tool: toolGetRepMaxes, Handler: h.getRepMaxes},
		server.ServerTool{Tool: toolEstimateOneRepMax, Handler: h.estimateOneRepMax},
		server.ServerTool{Tool: toolConvertRPE, Handler: h.convertRPE},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
		server.ServerResource{Resource: resExerciseCatalog, Handler: h.exerciseCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds      DataSource
	log     *slog.Logger
	unit    string
	formula calc.Formula
}

// --- Resource definitions ---

var resRecentWorkouts = mcp.NewResource(
	"gymlog://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("The ten most recent workouts with their exercises and set counts"),
	mcp.WithMIMEType("application/json"),
)

var resExerciseCatalog = mcp.NewResource(
	"gymlog://exercise_catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("Every logged exercise with how often and when it was last performed"),
	mcp.WithMIMEType("application/json"),
)

package mcp

import (
	"context"
	"strings"

	"github.com/claude/gymlog/internal/calc"
	"github.com/claude/gymlog/internal/history"
	"github.com/claude/gymlog/internal/parser"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolParseWorkout = mcp.NewTool("parse_workout",
	mcp.WithDescription("Parse workout log text without storing it. Returns the structured workout (metadata, exercises, sets) and every diagnostic with a rendered error report."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Workout text, e.g. \"# Bench Press\\n225x5@8\\n200x8,8\"")),
)

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List logged workouts, newest first, with their exercises and set counts."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of workouts. Defaults to 20.")),
	mcp.WithString("name", mcp.Description("Only workouts whose metadata name matches (case-insensitive)")),
)

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List every logged exercise with the number of workouts and the last date it was performed."),
)

var toolGetDataStats = mcp.NewTool("get_data_stats",
	mcp.WithDescription("Overview of the workout log: counts of workouts, exercises, sets and reps, the date range covered, and the most frequent exercises."),
)

var toolGetExerciseHistory = mcp.NewTool("get_exercise_history",
	mcp.WithDescription("Show the most recent occurrences of an exercise as they were written in the workout files."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (case-insensitive)")),
	mcp.WithNumber("limit", mcp.Description("Number of occurrences. Defaults to 10.")),
)

var toolGetRepMaxes = mcp.NewTool("get_rep_maxes",
	mcp.WithDescription("Personal records for an exercise: the heaviest set done for at least N reps, for N from 1 to max_reps. Bodyweight sets are ignored."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (case-insensitive)")),
	mcp.WithNumber("max_reps", mcp.Description("Highest rep count to report. Defaults to 12.")),
)

var toolEstimateOneRepMax = mcp.NewTool("estimate_one_rep_max",
	mcp.WithDescription("Estimate a one-rep max from a set written in workout syntax. RPE counts reps in reserve: 100x5@8 is treated as 7 reps to failure."),
	mcp.WithString("set", mcp.Required(), mcp.Description("Set, e.g. \"100x5@8\"")),
	mcp.WithString("formula", mcp.Description("Estimation formula. Defaults to the server setting."), mcp.Enum(string(calc.Brzycki), string(calc.Epley))),
)

var toolConvertRPE = mcp.NewTool("convert_rpe",
	mcp.WithDescription("Given a reference set with weight and reps, fill in the missing value of a target set: its reps (\"90@9\"), its weight (\"x8@8\") or its RPE (\"90x6\")."),
	mcp.WithString("from", mcp.Required(), mcp.Description("Reference set, e.g. \"100x5@8\"")),
	mcp.WithString("to", mcp.Required(), mcp.Description("Target set with one value left out")),
	mcp.WithString("formula", mcp.Description("Estimation formula. Defaults to the server setting."), mcp.Enum(string(calc.Brzycki), string(calc.Epley))),
)

// --- Tool handlers ---

func (h *handlers) parseWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text parameter is required"), nil
	}

	doc, diags := parser.Parse(text)
	out := map[string]any{"document": doc, "diagnostics": diags}
	if len(diags) > 0 {
		out["report"] = parser.FormatDiagnostics(diags, text)
	} else {
		out["diagnostics"] = []parser.Diagnostic{}
	}

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	workouts, err := h.ds.ListWorkouts(ctx, uid, req.GetInt("limit", 20), req.GetString("name", ""))
	if err != nil {
		h.log.Error("mcp list_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercises, err := h.ds.ListExercises(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(exercises)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getDataStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.ds.GetDataStats(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_data_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getExerciseHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	uid := UserIDFromContext(ctx)
	entries, err := h.ds.ExerciseHistory(ctx, uid, exercise, req.GetInt("limit", 10))
	if err != nil {
		h.log.Error("mcp get_exercise_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("No history for " + exercise + "."), nil
	}

	var sb strings.Builder
	if err := history.Render(&sb, entries); err != nil {
		return mcp.NewToolResultError("rendering failed: " + err.Error()), nil
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (h *handlers) getRepMaxes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	uid := UserIDFromContext(ctx)
	maxes, err := h.ds.RepMaxes(ctx, uid, exercise, req.GetInt("max_reps", 12), h.unit)
	if err != nil {
		h.log.Error("mcp get_rep_maxes", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(maxes)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// formulaArg returns the formula named by the request, or the server default.
func (h *handlers) formulaArg(req mcp.CallToolRequest) (calc.Formula, error) {
	name := req.GetString("formula", "")
	if name == "" {
		return h.formula, nil
	}
	return calc.ParseFormula(name)
}

func (h *handlers) estimateOneRepMax(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	set, err := req.RequireString("set")
	if err != nil {
		return mcp.NewToolResultError("set parameter is required"), nil
	}
	f, err := h.formulaArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	e1rm, err := calc.E1RM(set, f)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{"set": set, "formula": f, "e1rm": e1rm})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) convertRPE(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, err := req.RequireString("from")
	if err != nil {
		return mcp.NewToolResultError("from parameter is required"), nil
	}
	to, err := req.RequireString("to")
	if err != nil {
		return mcp.NewToolResultError("to parameter is required"), nil
	}
	f, err := h.formulaArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	conv, err := calc.ConvertRPE(from, to, f)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(conv)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

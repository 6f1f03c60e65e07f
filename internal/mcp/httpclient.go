package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/gymlog/internal/models"
	"github.com/claude/gymlog/internal/storage"
)

// HTTPClient implements DataSource by calling the gymlog REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

// getJSON fetches path and decodes the body into v.
func (c *HTTPClient) getJSON(ctx context.Context, path string, params url.Values, v any, what string) error {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", what, err)
	}
	return nil
}

func exercisePath(name, suffix string) string {
	return "/api/v1/exercises/" + url.PathEscape(name) + "/" + suffix
}

func (c *HTTPClient) ListWorkouts(ctx context.Context, _ int, limit int, name string) ([]models.WorkoutSummary, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if name != "" {
		params.Set("name", name)
	}
	var workouts []models.WorkoutSummary
	if err := c.getJSON(ctx, "/api/v1/workouts", params, &workouts, "workouts"); err != nil {
		return nil, err
	}
	return workouts, nil
}

func (c *HTTPClient) ListExercises(ctx context.Context, _ int) ([]models.ExerciseSummary, error) {
	var exercises []models.ExerciseSummary
	if err := c.getJSON(ctx, "/api/v1/exercises", nil, &exercises, "exercises"); err != nil {
		return nil, err
	}
	return exercises, nil
}

// ExerciseHistory returns entries carrying the server-side excerpt; the
// full workout source is not transferred.
func (c *HTTPClient) ExerciseHistory(ctx context.Context, _ int, name string, limit int) ([]models.HistoryEntry, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	var entries []models.HistoryEntry
	if err := c.getJSON(ctx, exercisePath(name, "history"), params, &entries, "history"); err != nil {
		return nil, err
	}
	return entries, nil
}

// RepMaxes uses the remote server's unit setting for bare weights;
// defaultUnit is ignored.
func (c *HTTPClient) RepMaxes(ctx context.Context, _ int, name string, maxReps int, _ string) ([]models.RepMax, error) {
	params := url.Values{}
	params.Set("max_reps", strconv.Itoa(maxReps))
	var maxes []models.RepMax
	if err := c.getJSON(ctx, exercisePath(name, "prs"), params, &maxes, "rep maxes"); err != nil {
		return nil, err
	}
	return maxes, nil
}

func (c *HTTPClient) GetDataStats(ctx context.Context, _ int) (*storage.DataStats, error) {
	var stats storage.DataStats
	if err := c.getJSON(ctx, "/api/v1/stats", nil, &stats, "stats"); err != nil {
		return nil, err
	}
	return &stats, nil
}

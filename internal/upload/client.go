package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/gymlog/internal/ingest"
	"github.com/claude/gymlog/internal/parser"
)

// ErrUnauthorized is returned when the server refuses the API key. It is
// not retried.
var ErrUnauthorized = errors.New("unauthorized: check the API key")

// RejectedError is returned when the server refuses a workout because it
// does not parse. It is not retried.
type RejectedError struct {
	FileName    string
	Diagnostics []parser.Diagnostic
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s rejected with %d parse errors", e.FileName, len(e.Diagnostics))
}

// Client sends workout files to the gymlog server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
	// backoff is the delay before the first retry; it doubles each attempt.
	backoff time.Duration
}

// NewClient creates a new HTTP client for the gymlog server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoff: time.Second,
	}
}

// UploadWorkout POSTs a workout file to the server's ingest endpoint.
// Retries up to 3 times with exponential backoff on failure.
func (c *Client) UploadWorkout(ctx context.Context, fileName string, data []byte) (*ingest.Result, error) {
	endpoint := c.serverURL + "/api/v1/ingest/workout?file=" + url.QueryEscape(fileName)

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff << uint(attempt-1)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := c.do(ctx, http.MethodPost, endpoint, data)
		if err != nil {
			lastErr = err
			continue
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK:
			var result ingest.Result
			if err := json.Unmarshal(body, &result); err != nil {
				return nil, fmt.Errorf("decoding ingest result: %w", err)
			}
			return &result, nil
		case http.StatusUnprocessableEntity:
			var result ingest.Result
			if err := json.Unmarshal(body, &result); err != nil {
				return nil, fmt.Errorf("decoding rejection: %w", err)
			}
			return &result, &RejectedError{FileName: fileName, Diagnostics: result.Diagnostics}
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, fmt.Errorf("ingest status %d: %w", resp.StatusCode, ErrUnauthorized)
		}
		lastErr = fmt.Errorf("ingest failed (status %d): %s", resp.StatusCode, body)
	}

	return nil, fmt.Errorf("after 3 attempts: %w", lastErr)
}

// DeleteWorkout removes a workout from the server. A workout the server
// does not have is not an error.
func (c *Client) DeleteWorkout(ctx context.Context, fileName string) error {
	resp, err := c.do(ctx, http.MethodDelete, c.serverURL+"/api/v1/workouts/"+url.PathEscape(fileName), nil)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", fileName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete failed (status %d): %s", resp.StatusCode, body)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	return c.httpClient.Do(req)
}

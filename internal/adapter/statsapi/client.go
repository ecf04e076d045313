// Package statsapi fetches upcoming game schedules from the MLB Stats API.
package statsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/ballparkdata/mlb-weather-etl/internal/domain"
)

// Client fetches schedule data over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a schedule client with the given request timeout.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return NewClientWithBaseURL("https://statsapi.mlb.com/api/v1", timeout, logger)
}

// NewClientWithBaseURL creates a schedule client against an alternate API
// root, such as a caching proxy.
func NewClientWithBaseURL(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		logger:     logger,
	}
}

// FetchSchedule retrieves all games whose start date falls between startDate
// and endDate inclusive (ISO 8601 calendar dates). A non-200 status or
// transport error is fatal to the run; there is a single attempt.
func (c *Client) FetchSchedule(ctx context.Context, startDate, endDate string) (domain.Schedule, error) {
	params := url.Values{
		"sportId":   {"1"},
		"startDate": {startDate},
		"endDate":   {endDate},
	}
	u := c.baseURL + "/schedule/games/?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Schedule{}, fmt.Errorf("create schedule request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Schedule{}, fmt.Errorf("schedule request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Schedule{}, fmt.Errorf("schedule API error: status %d: %s", resp.StatusCode, body)
	}

	var sched domain.Schedule
	if err := json.NewDecoder(resp.Body).Decode(&sched); err != nil {
		return domain.Schedule{}, fmt.Errorf("decode schedule response: %w", err)
	}

	games := 0
	for _, d := range sched.Dates {
		games += len(d.Games)
	}
	c.logger.Info("fetched schedule",
		"start_date", startDate,
		"end_date", endDate,
		"dates", len(sched.Dates),
		"games", games,
	)
	return sched, nil
}

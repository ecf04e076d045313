// Package openmeteo fetches hourly weather forecasts from the open-meteo API.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/ballparkdata/mlb-weather-etl/internal/domain"
)

// forecastDays is intentionally wider than the 7-day schedule window so every
// game timestamp in the batch has forecast coverage.
const forecastDays = "9"

// hourlyVariables is the fixed set of hourly series the pipeline joins in.
const hourlyVariables = "temperature_2m,rain,showers,snowfall,wind_speed_10m"

// Client fetches per-coordinate hourly forecasts. Requests are throttled with
// a shared limiter; the free open-meteo tier rejects bursty callers.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a forecast client. requestsPerSecond bounds the outbound
// request rate across all concurrent fetches.
func NewClient(timeout time.Duration, requestsPerSecond float64, logger *slog.Logger) *Client {
	return NewClientWithBaseURL("https://api.open-meteo.com/v1/forecast", timeout, requestsPerSecond, logger)
}

// NewClientWithBaseURL creates a forecast client against an alternate
// endpoint, such as a self-hosted open-meteo instance.
func NewClientWithBaseURL(baseURL string, timeout time.Duration, requestsPerSecond float64, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		logger:     logger,
	}
}

// forecastResponse is the subset of the open-meteo payload the pipeline uses.
type forecastResponse struct {
	Hourly domain.HourlySeries `json:"hourly"`
}

// FetchHourly retrieves the 9-day hourly forecast for one coordinate. The
// returned forecast is tagged with the requested coordinate (not the grid
// point the provider snapped to) so it joins back exactly. Any failure is
// fatal to the run.
func (c *Client) FetchHourly(ctx context.Context, lat, lng float64) (domain.Forecast, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.Forecast{}, fmt.Errorf("weather rate limit: %w", err)
	}

	params := url.Values{
		"forecast_days": {forecastDays},
		"latitude":      {strconv.FormatFloat(lat, 'f', -1, 64)},
		"longitude":     {strconv.FormatFloat(lng, 'f', -1, 64)},
		"hourly":        {hourlyVariables},
	}
	u := c.baseURL + "/?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Forecast{}, fmt.Errorf("create weather request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Forecast{}, fmt.Errorf("weather request (%v, %v): %w", lat, lng, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Forecast{}, fmt.Errorf("weather API error (%v, %v): status %d: %s", lat, lng, resp.StatusCode, body)
	}

	var fr forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		return domain.Forecast{}, fmt.Errorf("decode weather response (%v, %v): %w", lat, lng, err)
	}

	c.logger.Debug("fetched hourly forecast", "lat", lat, "lng", lng, "hours", len(fr.Hourly.Time))
	return domain.Forecast{Latitude: lat, Longitude: lng, Hourly: fr.Hourly}, nil
}

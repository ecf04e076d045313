// Package stadiummap fetches the community-maintained MLB stadium coordinate
// list.
package stadiummap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ballparkdata/mlb-weather-etl/internal/domain"
)

// stadiumListURL points at a static JSON gist of ballpark addresses and
// coordinates keyed by team display name.
const stadiumListURL = "https://gist.githubusercontent.com/the55/2155142/raw/30a251395cd3c04771f29f2a6295fc8849b73d11/mlb_stadium.json"

// Client fetches the stadium list over HTTP.
type Client struct {
	httpClient *http.Client
	url        string
	logger     *slog.Logger
}

// NewClient creates a stadium list client with the given request timeout.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return NewClientWithURL(stadiumListURL, timeout, logger)
}

// NewClientWithURL creates a stadium list client against an alternate source
// URL, such as a pinned mirror.
func NewClientWithURL(url string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
		logger:     logger,
	}
}

// FetchStadiums retrieves the raw stadium entries. Failures are fatal to the
// run; supplemental entries and name corrections are applied downstream by
// the venue resolver.
func (c *Client) FetchStadiums(ctx context.Context) ([]domain.Stadium, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create stadium request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stadium request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("stadium list error: status %d: %s", resp.StatusCode, body)
	}

	var stadiums []domain.Stadium
	if err := json.NewDecoder(resp.Body).Decode(&stadiums); err != nil {
		return nil, fmt.Errorf("decode stadium list: %w", err)
	}

	c.logger.Info("fetched stadium list", "stadiums", len(stadiums))
	return stadiums, nil
}

// Package firms fetches active-fire detections from the NASA FIRMS area CSV
// API and parses them into domain records.
package firms

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/alertafuego/wildfire-service/internal/domain"
	"github.com/alertafuego/wildfire-service/internal/observability"
)

// Client issues one blocking GET per query against the FIRMS area endpoint.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a FIRMS client with a fixed request timeout.
func NewClient(apiKey string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://firms.modaps.eosdis.nasa.gov/api/area/csv",
		metrics: metrics,
		logger:  logger,
	}
}

// SetBaseURL overrides the upstream endpoint (tests, regional mirrors).
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// FetchArea queries {source, bbox, days} and returns the parsed detections.
// A non-zero from date selects the date-qualified archive form used for
// fixed historical years. Transport failures and non-200 statuses map to
// domain.ErrUpstreamUnavailable; a header-only payload is an empty result,
// not an error.
func (c *Client) FetchArea(ctx context.Context, source, bbox string, days int, from time.Time) ([]domain.HotspotRecord, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("firms api key not configured")
	}

	u := fmt.Sprintf("%s/%s/%s/%s/%d", c.baseURL, c.apiKey, source, bbox, days)
	if !from.IsZero() {
		u = fmt.Sprintf("%s/%s", u, from.Format("2006-01-02"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create firms request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("firms request: %w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()
	c.metrics.FIRMSUpstreamLatency.Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("firms status %d: %s: %w", resp.StatusCode, body, domain.ErrUpstreamUnavailable)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read firms payload: %w: %v", domain.ErrUpstreamUnavailable, err)
	}

	return c.parsePayload(payload), nil
}

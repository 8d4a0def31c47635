// Package gee talks to the Earth Engine style image-analysis backend:
// scene listing over an image collection and bounded-region raster
// reductions, authenticated with a Google service account.
package gee

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"golang.org/x/oauth2/google"

	"github.com/alertafuego/wildfire-service/internal/domain"
	"github.com/alertafuego/wildfire-service/internal/observability"
)

const earthEngineScope = "https://www.googleapis.com/auth/earthengine.readonly"

// Scene is one image in a collection, with its acquisition date and cloud
// cover fraction when the archive reports one.
type Scene struct {
	ID         string
	Date       time.Time
	CloudCover float64
}

// Client is the explicitly constructed analysis-backend client. Construction
// performs credential loading and fails fast; there is no lazy global
// initialization.
type Client struct {
	httpClient *http.Client
	baseURL    string
	project    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// Config carries the backend connection settings.
type Config struct {
	BaseURL         string
	Project         string
	CredentialsFile string
	Timeout         time.Duration
}

// New reads the service-account key, builds an authenticated HTTP client,
// and returns the backend client. Credential problems surface here, at
// startup, not on the first query.
func New(ctx context.Context, cfg Config, metrics *observability.Metrics, logger *slog.Logger) (*Client, error) {
	keyJSON, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read analysis backend credentials: %w", err)
	}
	jwtConfig, err := google.JWTConfigFromJSON(keyJSON, earthEngineScope)
	if err != nil {
		return nil, fmt.Errorf("parse analysis backend credentials: %w", err)
	}

	httpClient := jwtConfig.Client(ctx)
	httpClient.Timeout = cfg.Timeout

	logger.Info("analysis backend client initialized",
		"project", cfg.Project, "service_account", jwtConfig.Email)

	return &Client{
		httpClient: httpClient,
		baseURL:    cfg.BaseURL,
		project:    cfg.Project,
		metrics:    metrics,
		logger:     logger,
	}, nil
}

// newUnauthenticated builds a client with a plain HTTP client, for tests.
func newUnauthenticated(baseURL, project string, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		project:    project,
		metrics:    metrics,
		logger:     logger,
	}
}

// listResponse is the scene-listing payload.
type listResponse struct {
	Images []struct {
		Name       string    `json:"name"`
		StartTime  time.Time `json:"startTime"`
		Properties struct {
			CloudCover float64 `json:"CLOUD_COVER"`
		} `json:"properties"`
	} `json:"images"`
}

// ListScenes returns the scenes of a collection intersecting the region and
// date range, in archive order.
func (c *Client) ListScenes(ctx context.Context, collection string, region domain.Region, start, end time.Time) ([]Scene, error) {
	params := url.Values{
		"region":    {region.BoundingBox()},
		"startTime": {start.Format(time.RFC3339)},
		"endTime":   {end.Format(time.RFC3339)},
	}
	u := fmt.Sprintf("%s/v1/projects/%s/assets/%s:listImages?%s",
		c.baseURL, c.project, url.PathEscape(collection), params.Encode())

	var out listResponse
	if err := c.do(ctx, "list", http.MethodGet, u, nil, &out); err != nil {
		return nil, err
	}

	scenes := make([]Scene, 0, len(out.Images))
	for _, img := range out.Images {
		scenes = append(scenes, Scene{
			ID:         img.Name,
			Date:       img.StartTime.UTC(),
			CloudCover: img.Properties.CloudCover,
		})
	}
	return scenes, nil
}

// reduceRequest asks the backend for one server-side regional reduction.
type reduceRequest struct {
	Image     string   `json:"image"`
	Bands     []string `json:"bands"`
	Reducer   string   `json:"reducer"` // "MEAN" or "COUNT"
	Region    string   `json:"region"`  // west,south,east,north
	Scale     int      `json:"scale"`   // meters per pixel
	Threshold *float64 `json:"threshold,omitempty"`
}

type reduceResponse struct {
	Result map[string]*float64 `json:"result"`
}

// ReduceMean returns the regional mean per band for one scene. A band whose
// mean is undefined (fully cloud-masked) comes back nil.
func (c *Client) ReduceMean(ctx context.Context, sceneID string, bands []string, region domain.Region, scaleMeters int) (map[string]*float64, error) {
	body := reduceRequest{
		Image:   sceneID,
		Bands:   bands,
		Reducer: "MEAN",
		Region:  region.BoundingBox(),
		Scale:   scaleMeters,
	}
	u := fmt.Sprintf("%s/v1/projects/%s/value:compute", c.baseURL, c.project)

	var out reduceResponse
	if err := c.do(ctx, "reduce", http.MethodPost, u, body, &out); err != nil {
		return nil, err
	}
	return out.Result, nil
}

// CountAbove counts region pixels whose band value exceeds the threshold in
// one scene. nil means the archive had no usable pixels for the scene.
func (c *Client) CountAbove(ctx context.Context, sceneID, band string, threshold float64, region domain.Region, scaleMeters int) (*int64, error) {
	body := reduceRequest{
		Image:     sceneID,
		Bands:     []string{band},
		Reducer:   "COUNT",
		Region:    region.BoundingBox(),
		Scale:     scaleMeters,
		Threshold: &threshold,
	}
	u := fmt.Sprintf("%s/v1/projects/%s/value:compute", c.baseURL, c.project)

	var out reduceResponse
	if err := c.do(ctx, "count", http.MethodPost, u, body, &out); err != nil {
		return nil, err
	}
	v, ok := out.Result[band]
	if !ok || v == nil {
		return nil, nil
	}
	n := int64(*v)
	return &n, nil
}

// do performs one backend round trip. Every failure, transport or HTTP,
// wraps domain.ErrBackendFailure so operators can tell backend faults from
// our own.
func (c *Client) do(ctx context.Context, operation, method, fullURL string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", operation, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.GEELatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.GEERequests.WithLabelValues(operation, "error").Inc()
		return fmt.Errorf("%s request: %w: %v", operation, domain.ErrBackendFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.GEERequests.WithLabelValues(operation, "error").Inc()
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s status %d: %s: %w", operation, resp.StatusCode, detail, domain.ErrBackendFailure)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.metrics.GEERequests.WithLabelValues(operation, "error").Inc()
		return fmt.Errorf("decode %s response: %w: %v", operation, domain.ErrBackendFailure, err)
	}

	c.metrics.GEERequests.WithLabelValues(operation, "success").Inc()
	return nil
}

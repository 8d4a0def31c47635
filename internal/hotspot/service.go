// Package hotspot orchestrates FIRMS hotspot queries: resolve the time
// window, fetch and parse the upstream CSV, normalize each detection, and
// aggregate a summary, with a bounded TTL cache in front.
package hotspot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alertafuego/wildfire-service/internal/cache"
	"github.com/alertafuego/wildfire-service/internal/domain"
	"github.com/alertafuego/wildfire-service/internal/observability"
)

const (
	minDays = 1
	maxDays = 7
)

// Fetcher retrieves parsed hotspot records from the FIRMS feed.
type Fetcher interface {
	FetchArea(ctx context.Context, source, bbox string, days int, from time.Time) ([]domain.HotspotRecord, error)
}

// Service answers hotspot queries for the fixed monitoring region.
type Service struct {
	fetcher Fetcher
	cache   cache.Cache
	bbox    string
	metrics *observability.Metrics
	logger  *slog.Logger
}

// New creates a hotspot query service. The cache is owned by the caller and
// shared explicitly, never package-global.
func New(fetcher Fetcher, c cache.Cache, bbox string, metrics *observability.Metrics, logger *slog.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		cache:   c,
		bbox:    bbox,
		metrics: metrics,
		logger:  logger,
	}
}

// FiresByPeriod returns detections for one of the supported lookback
// windows. Results are cached per period for the configured TTL.
func (s *Service) FiresByPeriod(ctx context.Context, period domain.TimePeriod) (domain.FireQueryResult, error) {
	cacheKey := "period:" + string(period)
	if cached, ok := s.cache.Get(ctx, cacheKey); ok {
		s.metrics.HotspotCache.WithLabelValues("hit").Inc()
		return cached, nil
	}
	s.metrics.HotspotCache.WithLabelValues("miss").Inc()

	window := domain.ResolveWindow(period, s.logger)
	source := period.Source()

	// Fixed historical years query the archive with an explicit start date;
	// near-real-time windows are anchored at "now" by the API itself.
	var from time.Time
	if period.Historical() {
		from = window.Start
	}

	records, err := s.fetcher.FetchArea(ctx, source, s.bbox, window.Days(), from)
	if err != nil {
		s.metrics.FIRMSRequests.WithLabelValues("upstream_error").Inc()
		return domain.FireQueryResult{}, fmt.Errorf("fetch fires for period %s: %w", period, err)
	}
	s.metrics.FIRMSRequests.WithLabelValues("success").Inc()

	result := s.assemble(records, string(period), source)
	s.cache.Set(ctx, cacheKey, result)
	return result, nil
}

// FiresByDays returns detections for an explicit near-real-time day count.
// Day counts outside [1,7] are rejected before any network I/O.
func (s *Service) FiresByDays(ctx context.Context, days int) (domain.FireQueryResult, error) {
	if days < minDays || days > maxDays {
		s.metrics.FIRMSRequests.WithLabelValues("rejected").Inc()
		return domain.FireQueryResult{}, domain.Validationf(
			"el parámetro days debe estar entre %d y %d, se recibió %d", minDays, maxDays, days)
	}

	cacheKey := fmt.Sprintf("days:%d", days)
	if cached, ok := s.cache.Get(ctx, cacheKey); ok {
		s.metrics.HotspotCache.WithLabelValues("hit").Inc()
		return cached, nil
	}
	s.metrics.HotspotCache.WithLabelValues("miss").Inc()

	records, err := s.fetcher.FetchArea(ctx, domain.SourceRecent, s.bbox, days, time.Time{})
	if err != nil {
		s.metrics.FIRMSRequests.WithLabelValues("upstream_error").Inc()
		return domain.FireQueryResult{}, fmt.Errorf("fetch fires for %d days: %w", days, err)
	}
	s.metrics.FIRMSRequests.WithLabelValues("success").Inc()

	result := s.assemble(records, fmt.Sprintf("%dd", days), domain.SourceRecent)
	s.cache.Set(ctx, cacheKey, result)
	return result, nil
}

// assemble normalizes the batch and builds the summary envelope.
func (s *Service) assemble(records []domain.HotspotRecord, periodLabel, source string) domain.FireQueryResult {
	hotspots := make([]domain.NormalizedHotspot, 0, len(records))
	for _, rec := range records {
		hotspots = append(hotspots, domain.Normalize(rec))
	}

	return domain.FireQueryResult{
		Summary: domain.QuerySummary{
			TotalCount: len(hotspots),
			Period:     periodLabel,
			DataSource: domain.SourceLabel(source),
			Message:    domain.SummaryMessage(len(hotspots), domain.TimePeriod(periodLabel)),
		},
		Hotspots: hotspots,
	}
}

// Package vegetation computes regional vegetation and burn-severity
// analyses over the image archive: NDVI time series, dNBR burn severity,
// and historical thermal-anomaly counts.
package vegetation

import (
	"context"
	"log/slog"
	"time"

	"github.com/alertafuego/wildfire-service/internal/adapter/gee"
	"github.com/alertafuego/wildfire-service/internal/domain"
)

// Archive is the slice of the image backend the engines need.
type Archive interface {
	ListScenes(ctx context.Context, collection string, region domain.Region, start, end time.Time) ([]gee.Scene, error)
	ReduceMean(ctx context.Context, sceneID string, bands []string, region domain.Region, scaleMeters int) (map[string]*float64, error)
	CountAbove(ctx context.Context, sceneID, band string, threshold float64, region domain.Region, scaleMeters int) (*int64, error)
}

// Engine runs the vegetation analyses over a fixed study region.
type Engine struct {
	archive Archive
	region  domain.Region
	logger  *slog.Logger
}

// New builds an engine bound to the given archive and study region.
func New(archive Archive, region domain.Region, logger *slog.Logger) *Engine {
	return &Engine{
		archive: archive,
		region:  region,
		logger:  logger,
	}
}

// Region returns the engine's study region.
func (e *Engine) Region() domain.Region {
	return e.region
}

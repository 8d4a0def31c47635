package vegetation

import (
	"context"
	"fmt"
	"time"

	"github.com/alertafuego/wildfire-service/internal/domain"
)

const (
	ndviCollection  = "MODIS/061/MOD13A1"
	ndviBand        = "NDVI"
	ndviScaleFactor = 0.0001 // archive stores NDVI as scaled integers
	ndviScaleMeters = 500
)

// NDVISeries returns one regional NDVI mean per scene in [start, end].
// Zero dates default to the trailing year ending today. Scenes whose mean
// is undefined (fully cloud-masked over the region) are skipped, not
// reported as zero.
func (e *Engine) NDVISeries(ctx context.Context, start, end time.Time) ([]domain.VegetationIndexSample, error) {
	if end.IsZero() {
		end = domain.Now().UTC().Truncate(24 * time.Hour)
	}
	if start.IsZero() {
		start = end.AddDate(0, 0, -365)
	}
	if !start.Before(end) {
		return nil, domain.Validationf("start date %s must be before end date %s",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	scenes, err := e.archive.ListScenes(ctx, ndviCollection, e.region, start, end)
	if err != nil {
		return nil, fmt.Errorf("list vegetation scenes: %w", err)
	}

	samples := make([]domain.VegetationIndexSample, 0, len(scenes))
	for _, scene := range scenes {
		means, err := e.archive.ReduceMean(ctx, scene.ID, []string{ndviBand}, e.region, ndviScaleMeters)
		if err != nil {
			return nil, fmt.Errorf("reduce vegetation scene %s: %w", scene.ID, err)
		}
		raw, ok := means[ndviBand]
		if !ok || raw == nil {
			e.logger.Debug("vegetation scene fully masked, skipping",
				"scene", scene.ID, "date", scene.Date.Format("2006-01-02"))
			continue
		}
		samples = append(samples, domain.VegetationIndexSample{
			Date:     scene.Date.Format("2006-01-02"),
			MeanNDVI: *raw * ndviScaleFactor,
		})
	}
	return samples, nil
}

package vegetation

import (
	"context"
	"fmt"
	"time"

	"github.com/alertafuego/wildfire-service/internal/domain"
)

const (
	thermalCollection  = "MODIS/061/MOD14A1"
	thermalBand        = "MaxFRP"
	thermalScaleMeters = 1000

	// One daily composite per day, leap years included. Kept as a hard cap
	// so a misbehaving listing cannot blow up the response.
	maxDailyScenes = 366
)

// HistoricalFires counts thermal-anomaly pixels per daily composite in
// [start, end]. Days whose composite has no usable pixels count as zero.
func (e *Engine) HistoricalFires(ctx context.Context, start, end time.Time) (*domain.HistoricalFireReport, error) {
	if !start.Before(end) {
		return nil, domain.Validationf("start date %s must be before end date %s",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	scenes, err := e.archive.ListScenes(ctx, thermalCollection, e.region, start, end)
	if err != nil {
		return nil, fmt.Errorf("list thermal composites: %w", err)
	}
	if len(scenes) > maxDailyScenes {
		e.logger.Warn("thermal composite listing over daily cap, truncating",
			"scenes", len(scenes), "cap", maxDailyScenes)
		scenes = scenes[:maxDailyScenes]
	}

	days := make([]domain.HistoricalFireDay, 0, len(scenes))
	summary := domain.HistoricalFireSummary{
		StartDate:         start.Format("2006-01-02"),
		EndDate:           end.Format("2006-01-02"),
		TotalDaysAnalyzed: len(scenes),
	}
	for _, scene := range scenes {
		count, err := e.archive.CountAbove(ctx, scene.ID, thermalBand, 0, e.region, thermalScaleMeters)
		if err != nil {
			return nil, fmt.Errorf("count fire pixels in %s: %w", scene.ID, err)
		}
		pixels := 0
		if count != nil {
			pixels = int(*count)
		}
		date := scene.Date.Format("2006-01-02")
		days = append(days, domain.HistoricalFireDay{Date: date, FirePixelCount: pixels})

		if pixels > 0 {
			summary.DaysWithFires++
			summary.TotalFirePixels += pixels
		}
		if pixels > summary.MaxPixelsInADay {
			summary.MaxPixelsInADay = pixels
			peak := date
			summary.PeakFireDate = &peak
		}
	}

	return &domain.HistoricalFireReport{Summary: summary, DailyData: days}, nil
}

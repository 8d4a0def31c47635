package vegetation

import (
	"context"
	"fmt"
	"time"

	"github.com/alertafuego/wildfire-service/internal/adapter/gee"
	"github.com/alertafuego/wildfire-service/internal/domain"
)

const (
	burnCollection  = "LANDSAT/LC08/C02/T1_L2"
	burnSatellite   = "Landsat 8 Collection 2 Tier 1 Level 2"
	nirBand         = "SR_B5"
	swir2Band       = "SR_B7"
	burnScaleMeters = 30

	// Level 2 surface reflectance is stored as scaled integers.
	reflectanceScale  = 0.0000275
	reflectanceOffset = -0.2

	// Scenes are searched this many days around each requested date.
	sceneSearchDays = 30
)

// Severity legend, dNBR thresholds ascending. A delta on a boundary belongs
// to the higher class.
var severityThresholds = []struct {
	min   float64
	class int
	label string
}{
	{0.66, 4, "Severidad alta"},
	{0.44, 3, "Severidad moderada-alta"},
	{0.27, 2, "Severidad moderada-baja"},
	{0.10, 1, "Severidad baja"},
}

const unburnedLabel = "Aumento de vegetación"

// ClassifySeverity maps a dNBR value to its severity class and label.
func ClassifySeverity(delta float64) (int, string) {
	for _, band := range severityThresholds {
		if delta >= band.min {
			return band.class, band.label
		}
	}
	return 0, unburnedLabel
}

// SeverityScale returns the full class legend keyed by class number.
func SeverityScale() map[string]string {
	scale := map[string]string{"0": unburnedLabel}
	for _, band := range severityThresholds {
		scale[fmt.Sprintf("%d", band.class)] = band.label
	}
	return scale
}

// BurnSeverity computes dNBR between the least-cloudy scenes nearest the
// pre- and post-fire dates. The pre-fire date must be strictly before the
// post-fire date and neither may be in the future.
func (e *Engine) BurnSeverity(ctx context.Context, preFire, postFire time.Time, region domain.Region) (*domain.BurnSeverityResult, error) {
	if !preFire.Before(postFire) {
		return nil, domain.Validationf("pre-fire date %s must be before post-fire date %s",
			preFire.Format("2006-01-02"), postFire.Format("2006-01-02"))
	}
	today := domain.Now().UTC()
	if postFire.After(today) {
		return nil, domain.Validationf("post-fire date %s is in the future", postFire.Format("2006-01-02"))
	}

	preScene, err := e.clearestScene(ctx, preFire, region)
	if err != nil {
		return nil, fmt.Errorf("pre-fire scene: %w", err)
	}
	postScene, err := e.clearestScene(ctx, postFire, region)
	if err != nil {
		return nil, fmt.Errorf("post-fire scene: %w", err)
	}

	preNBR, err := e.sceneNBR(ctx, preScene, region)
	if err != nil {
		return nil, fmt.Errorf("pre-fire NBR: %w", err)
	}
	postNBR, err := e.sceneNBR(ctx, postScene, region)
	if err != nil {
		return nil, fmt.Errorf("post-fire NBR: %w", err)
	}

	delta := preNBR - postNBR
	class, label := ClassifySeverity(delta)

	e.logger.Info("burn severity computed",
		"pre_scene", preScene.ID, "post_scene", postScene.ID,
		"dnbr", delta, "severity", class)

	return &domain.BurnSeverityResult{
		PreFireDate:   preScene.Date.Format("2006-01-02"),
		PostFireDate:  postScene.Date.Format("2006-01-02"),
		PreFireNBR:    preNBR,
		PostFireNBR:   postNBR,
		DeltaNBR:      delta,
		SeverityClass: class,
		SeverityLabel: label,
		Geometry:      region,
		Metadata: domain.BurnMetadata{
			Satellite:     burnSatellite,
			Index:         "dNBR",
			SeverityScale: SeverityScale(),
		},
	}, nil
}

// clearestScene returns the least-cloudy scene within the search window
// around the target date. No scene at all means domain.ErrNotFound.
func (e *Engine) clearestScene(ctx context.Context, target time.Time, region domain.Region) (gee.Scene, error) {
	start := target.AddDate(0, 0, -sceneSearchDays)
	end := target.AddDate(0, 0, sceneSearchDays)

	scenes, err := e.archive.ListScenes(ctx, burnCollection, region, start, end)
	if err != nil {
		return gee.Scene{}, err
	}
	if len(scenes) == 0 {
		return gee.Scene{}, fmt.Errorf("no scenes within %d days of %s: %w",
			sceneSearchDays, target.Format("2006-01-02"), domain.ErrNotFound)
	}

	best := scenes[0]
	for _, scene := range scenes[1:] {
		if scene.CloudCover < best.CloudCover {
			best = scene
		}
	}
	return best, nil
}

// sceneNBR computes the regional NBR for one scene from its mean NIR and
// SWIR2 surface reflectance.
func (e *Engine) sceneNBR(ctx context.Context, scene gee.Scene, region domain.Region) (float64, error) {
	means, err := e.archive.ReduceMean(ctx, scene.ID, []string{nirBand, swir2Band}, region, burnScaleMeters)
	if err != nil {
		return 0, err
	}
	nir, err := reflectance(means, nirBand)
	if err != nil {
		return 0, fmt.Errorf("scene %s: %w", scene.ID, err)
	}
	swir2, err := reflectance(means, swir2Band)
	if err != nil {
		return 0, fmt.Errorf("scene %s: %w", scene.ID, err)
	}
	if nir+swir2 == 0 {
		return 0, fmt.Errorf("scene %s: degenerate reflectance, NBR undefined: %w", scene.ID, domain.ErrBackendFailure)
	}
	return (nir - swir2) / (nir + swir2), nil
}

func reflectance(means map[string]*float64, band string) (float64, error) {
	raw, ok := means[band]
	if !ok || raw == nil {
		return 0, fmt.Errorf("band %s fully masked: %w", band, domain.ErrNotFound)
	}
	return *raw*reflectanceScale + reflectanceOffset, nil
}

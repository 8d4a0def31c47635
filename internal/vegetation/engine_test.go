package vegetation

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alertafuego/wildfire-service/internal/adapter/gee"
	"github.com/alertafuego/wildfire-service/internal/domain"
)

// fakeArchive scripts archive responses and counts every call so tests can
// prove an operation never reached the backend.
type fakeArchive struct {
	calls      int
	scenes     map[string][]gee.Scene         // keyed by collection
	means      map[string]map[string]*float64 // keyed by scene ID
	counts     map[string]*int64              // keyed by scene ID
	listErr    error
	reduceErr  error
	lastScale  int
	lastRegion domain.Region
}

func (f *fakeArchive) ListScenes(_ context.Context, collection string, region domain.Region, start, end time.Time) ([]gee.Scene, error) {
	f.calls++
	f.lastRegion = region
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []gee.Scene
	for _, s := range f.scenes[collection] {
		if !s.Date.Before(start) && !s.Date.After(end) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeArchive) ReduceMean(_ context.Context, sceneID string, _ []string, _ domain.Region, scaleMeters int) (map[string]*float64, error) {
	f.calls++
	f.lastScale = scaleMeters
	if f.reduceErr != nil {
		return nil, f.reduceErr
	}
	return f.means[sceneID], nil
}

func (f *fakeArchive) CountAbove(_ context.Context, sceneID, _ string, _ float64, _ domain.Region, scaleMeters int) (*int64, error) {
	f.calls++
	f.lastScale = scaleMeters
	if f.reduceErr != nil {
		return nil, f.reduceErr
	}
	return f.counts[sceneID], nil
}

func ptr(v float64) *float64 { return &v }

func count(v int64) *int64 { return &v }

func scene(id, date string, cloud float64) gee.Scene {
	d, _ := time.Parse("2006-01-02", date)
	return gee.Scene{ID: id, Date: d, CloudCover: cloud}
}

func date(t *testing.T, s string) (out time.Time) {
	t.Helper()
	out, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return out
}

func newEngine(f *fakeArchive) *Engine {
	return New(f, domain.DefaultRegion(), slog.Default())
}

func TestClassifySeverity(t *testing.T) {
	tests := []struct {
		delta     float64
		wantClass int
	}{
		{-0.3, 0},
		{0.0, 0},
		{0.05, 0},
		{0.10, 1}, // boundary belongs to the higher class
		{0.15, 1},
		{0.27, 2},
		{0.30, 2},
		{0.44, 3},
		{0.50, 3},
		{0.66, 4},
		{0.70, 4},
	}
	for _, tc := range tests {
		class, label := ClassifySeverity(tc.delta)
		assert.Equal(t, tc.wantClass, class, "dNBR %v", tc.delta)
		assert.NotEmpty(t, label)
	}
}

func TestSeverityScale(t *testing.T) {
	scale := SeverityScale()
	require.Len(t, scale, 5)
	assert.Equal(t, "Aumento de vegetación", scale["0"])
	assert.Equal(t, "Severidad alta", scale["4"])
}

func TestNDVISeries(t *testing.T) {
	f := &fakeArchive{
		scenes: map[string][]gee.Scene{
			ndviCollection: {
				scene("s1", "2024-01-01", 0),
				scene("s2", "2024-01-17", 0),
				scene("s3", "2024-02-02", 0),
			},
		},
		means: map[string]map[string]*float64{
			"s1": {"NDVI": ptr(6200)},
			"s2": {"NDVI": nil}, // fully masked, skipped
			"s3": {"NDVI": ptr(4100)},
		},
	}
	engine := newEngine(f)

	samples, err := engine.NDVISeries(context.Background(), date(t, "2024-01-01"), date(t, "2024-03-01"))
	require.NoError(t, err)

	require.Len(t, samples, 2)
	assert.Equal(t, "2024-01-01", samples[0].Date)
	assert.InDelta(t, 0.62, samples[0].MeanNDVI, 1e-9)
	assert.InDelta(t, 0.41, samples[1].MeanNDVI, 1e-9)
	assert.Equal(t, ndviScaleMeters, f.lastScale)
}

func TestNDVISeries_DefaultsToTrailingYear(t *testing.T) {
	fixed := clockwork.NewFakeClockAt(time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC))
	domain.SetClock(fixed)
	t.Cleanup(func() { domain.SetClock(clockwork.NewRealClock()) })

	f := &fakeArchive{
		scenes: map[string][]gee.Scene{
			ndviCollection: {
				scene("old", "2023-05-01", 0), // before the trailing-year window
				scene("in", "2023-09-01", 0),
			},
		},
		means: map[string]map[string]*float64{
			"in": {"NDVI": ptr(5000)},
		},
	}
	engine := newEngine(f)

	samples, err := engine.NDVISeries(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, "2023-09-01", samples[0].Date)
}

func TestNDVISeries_RejectsInvertedRange(t *testing.T) {
	f := &fakeArchive{}
	engine := newEngine(f)

	_, err := engine.NDVISeries(context.Background(), date(t, "2024-03-01"), date(t, "2024-01-01"))
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Zero(t, f.calls, "invalid range must not reach the archive")
}

func TestBurnSeverity(t *testing.T) {
	f := &fakeArchive{
		scenes: map[string][]gee.Scene{
			burnCollection: {
				scene("pre-cloudy", "2023-12-28", 40),
				scene("pre-clear", "2024-01-05", 5),
				scene("post-clear", "2024-02-20", 8),
				scene("post-cloudy", "2024-02-28", 60),
			},
		},
		means: map[string]map[string]*float64{
			// Reflectance NIR 0.35, SWIR2 0.10 -> NBR 0.5556
			"pre-clear": {
				"SR_B5": ptr((0.35 + 0.2) / 0.0000275),
				"SR_B7": ptr((0.10 + 0.2) / 0.0000275),
			},
			// Reflectance NIR 0.18, SWIR2 0.15 -> NBR 0.0909
			"post-clear": {
				"SR_B5": ptr((0.18 + 0.2) / 0.0000275),
				"SR_B7": ptr((0.15 + 0.2) / 0.0000275),
			},
		},
	}
	engine := newEngine(f)

	result, err := engine.BurnSeverity(context.Background(),
		date(t, "2024-01-01"), date(t, "2024-02-25"), domain.DefaultRegion())
	require.NoError(t, err)

	assert.Equal(t, "2024-01-05", result.PreFireDate, "least-cloudy scene wins")
	assert.Equal(t, "2024-02-20", result.PostFireDate)
	assert.InDelta(t, 0.5556, result.PreFireNBR, 1e-3)
	assert.InDelta(t, 0.0909, result.PostFireNBR, 1e-3)
	assert.InDelta(t, 0.4646, result.DeltaNBR, 1e-3)
	assert.Equal(t, 3, result.SeverityClass)
	assert.Equal(t, "Severidad moderada-alta", result.SeverityLabel)
	assert.Equal(t, "dNBR", result.Metadata.Index)
	assert.Len(t, result.Metadata.SeverityScale, 5)
}

func TestBurnSeverity_RejectsInvertedDatesBeforeContactingArchive(t *testing.T) {
	f := &fakeArchive{}
	engine := newEngine(f)

	for _, tc := range []struct{ pre, post string }{
		{"2024-02-01", "2024-01-01"},
		{"2024-01-01", "2024-01-01"},
	} {
		_, err := engine.BurnSeverity(context.Background(), date(t, tc.pre), date(t, tc.post), domain.DefaultRegion())
		require.Error(t, err, "pre %s post %s", tc.pre, tc.post)
		assert.True(t, domain.IsValidation(err))
	}
	assert.Zero(t, f.calls)
}

func TestBurnSeverity_RejectsFutureDate(t *testing.T) {
	fixed := clockwork.NewFakeClockAt(time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC))
	domain.SetClock(fixed)
	t.Cleanup(func() { domain.SetClock(clockwork.NewRealClock()) })

	f := &fakeArchive{}
	engine := newEngine(f)

	_, err := engine.BurnSeverity(context.Background(),
		date(t, "2024-07-01"), date(t, "2024-08-01"), domain.DefaultRegion())
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Zero(t, f.calls)
}

func TestBurnSeverity_NoScenesIsNotFound(t *testing.T) {
	f := &fakeArchive{scenes: map[string][]gee.Scene{}}
	engine := newEngine(f)

	_, err := engine.BurnSeverity(context.Background(),
		date(t, "2024-01-01"), date(t, "2024-02-25"), domain.DefaultRegion())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBurnSeverity_MaskedBandFails(t *testing.T) {
	f := &fakeArchive{
		scenes: map[string][]gee.Scene{
			burnCollection: {
				scene("pre", "2024-01-05", 5),
				scene("post", "2024-02-20", 8),
			},
		},
		means: map[string]map[string]*float64{
			"pre":  {"SR_B5": ptr(20000), "SR_B7": nil},
			"post": {"SR_B5": ptr(20000), "SR_B7": ptr(10000)},
		},
	}
	engine := newEngine(f)

	_, err := engine.BurnSeverity(context.Background(),
		date(t, "2024-01-01"), date(t, "2024-02-25"), domain.DefaultRegion())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistoricalFires(t *testing.T) {
	f := &fakeArchive{
		scenes: map[string][]gee.Scene{
			thermalCollection: {
				scene("d1", "2022-01-01", 0),
				scene("d2", "2022-01-02", 0),
				scene("d3", "2022-01-03", 0),
			},
		},
		counts: map[string]*int64{
			"d1": count(0),
			"d2": count(14),
			"d3": nil, // no usable pixels, counts as zero
		},
	}
	engine := newEngine(f)

	report, err := engine.HistoricalFires(context.Background(), date(t, "2022-01-01"), date(t, "2022-01-04"))
	require.NoError(t, err)

	require.Len(t, report.DailyData, 3)
	assert.Equal(t, 0, report.DailyData[0].FirePixelCount)
	assert.Equal(t, 14, report.DailyData[1].FirePixelCount)
	assert.Equal(t, 0, report.DailyData[2].FirePixelCount)

	s := report.Summary
	assert.Equal(t, 3, s.TotalDaysAnalyzed)
	assert.Equal(t, 1, s.DaysWithFires)
	assert.Equal(t, 14, s.TotalFirePixels)
	assert.Equal(t, 14, s.MaxPixelsInADay)
	require.NotNil(t, s.PeakFireDate)
	assert.Equal(t, "2022-01-02", *s.PeakFireDate)
}

func TestHistoricalFires_NoFiresHasNilPeak(t *testing.T) {
	f := &fakeArchive{
		scenes: map[string][]gee.Scene{
			thermalCollection: {scene("d1", "2022-01-01", 0)},
		},
		counts: map[string]*int64{"d1": count(0)},
	}
	engine := newEngine(f)

	report, err := engine.HistoricalFires(context.Background(), date(t, "2022-01-01"), date(t, "2022-01-02"))
	require.NoError(t, err)
	assert.Nil(t, report.Summary.PeakFireDate)
	assert.Zero(t, report.Summary.DaysWithFires)
}

func TestHistoricalFires_TruncatesAtDailyCap(t *testing.T) {
	var scenes []gee.Scene
	counts := map[string]*int64{}
	base := date(t, "2020-01-01")
	for i := 0; i < maxDailyScenes+10; i++ {
		id := base.AddDate(0, 0, i).Format("2006-01-02")
		scenes = append(scenes, gee.Scene{ID: id, Date: base.AddDate(0, 0, i)})
		counts[id] = count(1)
	}
	f := &fakeArchive{
		scenes: map[string][]gee.Scene{thermalCollection: scenes},
		counts: counts,
	}
	engine := newEngine(f)

	report, err := engine.HistoricalFires(context.Background(), base, base.AddDate(0, 0, maxDailyScenes+20))
	require.NoError(t, err)
	assert.Len(t, report.DailyData, maxDailyScenes)
	assert.Equal(t, maxDailyScenes, report.Summary.TotalDaysAnalyzed)
}

func TestHistoricalFires_ArchiveErrorPropagates(t *testing.T) {
	backendErr := errors.New("boom")
	f := &fakeArchive{listErr: backendErr}
	engine := newEngine(f)

	_, err := engine.HistoricalFires(context.Background(), date(t, "2022-01-01"), date(t, "2022-02-01"))
	require.Error(t, err)
	assert.ErrorIs(t, err, backendErr)
}

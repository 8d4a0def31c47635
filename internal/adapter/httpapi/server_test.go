package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alertafuego/wildfire-service/internal/alerts"
	"github.com/alertafuego/wildfire-service/internal/auth"
	"github.com/alertafuego/wildfire-service/internal/domain"
	"github.com/alertafuego/wildfire-service/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubHotspots struct {
	result domain.FireQueryResult
	err    error

	gotPeriod domain.TimePeriod
	gotDays   int
}

func (s *stubHotspots) FiresByPeriod(_ context.Context, period domain.TimePeriod) (domain.FireQueryResult, error) {
	s.gotPeriod = period
	return s.result, s.err
}

func (s *stubHotspots) FiresByDays(_ context.Context, days int) (domain.FireQueryResult, error) {
	s.gotDays = days
	return s.result, s.err
}

type stubVegetation struct {
	samples []domain.VegetationIndexSample
	burn    *domain.BurnSeverityResult
	report  *domain.HistoricalFireReport
	err     error

	gotStart, gotEnd time.Time
	gotRegion        domain.Region
}

func (s *stubVegetation) NDVISeries(_ context.Context, start, end time.Time) ([]domain.VegetationIndexSample, error) {
	s.gotStart, s.gotEnd = start, end
	return s.samples, s.err
}

func (s *stubVegetation) BurnSeverity(_ context.Context, pre, post time.Time, region domain.Region) (*domain.BurnSeverityResult, error) {
	s.gotStart, s.gotEnd, s.gotRegion = pre, post, region
	return s.burn, s.err
}

func (s *stubVegetation) HistoricalFires(_ context.Context, start, end time.Time) (*domain.HistoricalFireReport, error) {
	s.gotStart, s.gotEnd = start, end
	return s.report, s.err
}

func (s *stubVegetation) Region() domain.Region { return domain.DefaultRegion() }

type stubStore struct {
	users   map[string]*store.User
	reports []store.Report
	alerts  []store.Alert

	updateErr error
}

func newStubStore() *stubStore {
	return &stubStore{users: map[string]*store.User{}}
}

func (s *stubStore) CreateUser(_ context.Context, email, displayName, passwordHash string) (*store.User, error) {
	user := &store.User{ID: "u-" + email, Email: email, DisplayName: displayName, PasswordHash: passwordHash}
	s.users[email] = user
	return user, nil
}

func (s *stubStore) GetUserByEmail(_ context.Context, email string) (*store.User, error) {
	user, ok := s.users[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (s *stubStore) CreateReport(_ context.Context, userID string, lat, lon float64, description string) (*store.Report, error) {
	report := store.Report{ID: "r-1", UserID: userID, Latitude: lat, Longitude: lon,
		Description: description, Status: store.ReportStatusPending}
	s.reports = append(s.reports, report)
	return &report, nil
}

func (s *stubStore) ListReports(_ context.Context, _ int) ([]store.Report, error) {
	return s.reports, nil
}

func (s *stubStore) UpdateReportStatus(_ context.Context, _, _ string) error {
	return s.updateErr
}

func (s *stubStore) CreateAlert(_ context.Context, kind string, lat, lon float64, message string) (*store.Alert, error) {
	alert := store.Alert{ID: "a-1", Kind: kind, Latitude: lat, Longitude: lon, Message: message}
	s.alerts = append(s.alerts, alert)
	return &alert, nil
}

func (s *stubStore) ListAlerts(_ context.Context, _ int) ([]store.Alert, error) {
	return s.alerts, nil
}

type stubPublisher struct {
	events []alerts.Event
	err    error
}

func (s *stubPublisher) Publish(_ context.Context, event alerts.Event) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

type fixture struct {
	router     *gin.Engine
	hotspots   *stubHotspots
	vegetation *stubVegetation
	store      *stubStore
	publisher  *stubPublisher
	manager    *auth.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{
		hotspots:   &stubHotspots{},
		vegetation: &stubVegetation{},
		store:      newStubStore(),
		publisher:  &stubPublisher{},
		manager:    auth.NewManager("test-secret", time.Hour),
	}
	f.router = newRouter(Deps{
		Hotspots:   f.hotspots,
		Vegetation: f.vegetation,
		Store:      f.store,
		Auth:       f.manager,
		Alerts:     f.publisher,
		Logger:     testLogger(),
	})
	return f
}

func (f *fixture) request(t *testing.T, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		token, err := f.manager.Issue("u-test")
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	rec := f.request(t, http.MethodGet, "/healthz", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodPost, "/api/v1/auth/register", gin.H{
		"email": "ana@example.com", "password": "hunter2hunter2", "display_name": "Ana",
	}, false)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "token")

	rec = f.request(t, http.MethodPost, "/api/v1/auth/login", gin.H{
		"email": "ana@example.com", "password": "hunter2hunter2",
	}, false)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "token")
}

func TestLogin_BadCredentialsIndistinguishable(t *testing.T) {
	f := newFixture(t)
	f.request(t, http.MethodPost, "/api/v1/auth/register", gin.H{
		"email": "ana@example.com", "password": "hunter2hunter2", "display_name": "Ana",
	}, false)

	wrongPassword := f.request(t, http.MethodPost, "/api/v1/auth/login", gin.H{
		"email": "ana@example.com", "password": "wrong",
	}, false)
	unknownUser := f.request(t, http.MethodPost, "/api/v1/auth/login", gin.H{
		"email": "nobody@example.com", "password": "whatever",
	}, false)

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	assert.JSONEq(t, wrongPassword.Body.String(), unknownUser.Body.String())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := newFixture(t)
	for _, path := range []string{
		"/api/v1/firms/fires",
		"/api/v1/gee/ndvi-stats",
		"/api/v1/reports",
		"/api/v1/alerts",
	} {
		rec := f.request(t, http.MethodGet, path, nil, false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestFiresByPeriod(t *testing.T) {
	f := newFixture(t)
	f.hotspots.result = domain.FireQueryResult{
		Summary: domain.QuerySummary{TotalCount: 2, Period: "48h"},
	}

	rec := f.request(t, http.MethodGet, "/api/v1/firms/fires?period=48h", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.PeriodLast48h, f.hotspots.gotPeriod)
	assert.Contains(t, rec.Body.String(), `"cantidad_focos":2`)
}

func TestFiresByPeriod_UnknownPeriod(t *testing.T) {
	f := newFixture(t)
	rec := f.request(t, http.MethodGet, "/api/v1/firms/fires?period=fortnight", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFiresByPeriod_DefaultsTo24h(t *testing.T) {
	f := newFixture(t)
	rec := f.request(t, http.MethodGet, "/api/v1/firms/fires", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.PeriodLast24h, f.hotspots.gotPeriod)
}

func TestFiresByDays_ValidationErrorIs400(t *testing.T) {
	f := newFixture(t)
	f.hotspots.err = domain.Validationf("days must be between 1 and 7")

	rec := f.request(t, http.MethodGet, "/api/v1/firms/active?days=12", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "between 1 and 7")
}

func TestFiresByDays_UpstreamFailureIs502(t *testing.T) {
	f := newFixture(t)
	f.hotspots.err = domain.ErrUpstreamUnavailable

	rec := f.request(t, http.MethodGet, "/api/v1/firms/active?days=2", nil, true)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestNDVIStats(t *testing.T) {
	f := newFixture(t)
	f.vegetation.samples = []domain.VegetationIndexSample{
		{Date: "2024-01-01", MeanNDVI: 0.62},
	}

	rec := f.request(t, http.MethodGet,
		"/api/v1/gee/ndvi-stats?start_date=2024-01-01&end_date=2024-03-01", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-01-01", f.vegetation.gotStart.Format("2006-01-02"))
	assert.Contains(t, rec.Body.String(), `"mean_ndvi":0.62`)
}

func TestNDVIStats_BadDate(t *testing.T) {
	f := newFixture(t)
	rec := f.request(t, http.MethodGet, "/api/v1/gee/ndvi-stats?start_date=January", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVegetationRoutesWithoutBackendAre503(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newFixture(t)
	f.router = newRouter(Deps{
		Hotspots: f.hotspots,
		Store:    f.store,
		Auth:     f.manager,
		Logger:   testLogger(),
	})

	rec := f.request(t, http.MethodGet, "/api/v1/gee/ndvi-stats", nil, true)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = f.request(t, http.MethodPost, "/api/v1/gee/nbr", gin.H{
		"pre_fire_date": "2024-01-01", "post_fire_date": "2024-02-01",
	}, true)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestBurnSeverity(t *testing.T) {
	f := newFixture(t)
	f.vegetation.burn = &domain.BurnSeverityResult{
		DeltaNBR: 0.46, SeverityClass: 3, SeverityLabel: "Severidad moderada-alta",
	}

	rec := f.request(t, http.MethodPost, "/api/v1/gee/nbr", gin.H{
		"pre_fire_date": "2024-01-01", "post_fire_date": "2024-02-25",
	}, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.DefaultRegion(), f.vegetation.gotRegion)
	assert.Contains(t, rec.Body.String(), `"severity":3`)
}

func TestBurnSeverity_CustomGeometry(t *testing.T) {
	f := newFixture(t)
	f.vegetation.burn = &domain.BurnSeverityResult{}

	rec := f.request(t, http.MethodPost, "/api/v1/gee/nbr", gin.H{
		"pre_fire_date":  "2024-01-01",
		"post_fire_date": "2024-02-25",
		"geometry": gin.H{
			"type":        "Polygon",
			"coordinates": [][][]float64{{{-58, -29}, {-57, -29}, {-57, -28}, {-58, -28}, {-58, -29}}},
		},
	}, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEqual(t, domain.DefaultRegion(), f.vegetation.gotRegion)
}

func TestBurnSeverity_MissingDates(t *testing.T) {
	f := newFixture(t)
	rec := f.request(t, http.MethodPost, "/api/v1/gee/nbr", gin.H{
		"pre_fire_date": "2024-01-01",
	}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoricalFires_ByYear(t *testing.T) {
	f := newFixture(t)
	f.vegetation.report = &domain.HistoricalFireReport{
		Summary: domain.HistoricalFireSummary{TotalDaysAnalyzed: 365},
	}

	rec := f.request(t, http.MethodGet, "/api/v1/gee/historical-fires?year=2022", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2022-01-01", f.vegetation.gotStart.Format("2006-01-02"))
	assert.Equal(t, "2022-12-31", f.vegetation.gotEnd.Format("2006-01-02"))
}

func TestHistoricalFires_RequiresRange(t *testing.T) {
	f := newFixture(t)
	rec := f.request(t, http.MethodGet, "/api/v1/gee/historical-fires", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateReportPublishesAlert(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodPost, "/api/v1/reports", gin.H{
		"latitud": -28.5, "longitud": -57.3, "descripcion": "Humo cerca de la ruta",
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, "report", f.publisher.events[0].Kind)
	require.Len(t, f.store.alerts, 1)
	assert.Equal(t, "Humo cerca de la ruta", f.store.alerts[0].Message)
}

func TestCreateReport_PublishFailureStillCreates(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = domain.ErrUpstreamUnavailable

	rec := f.request(t, http.MethodPost, "/api/v1/reports", gin.H{
		"latitud": -28.5, "longitud": -57.3, "descripcion": "Humo",
	}, true)
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, f.store.reports, 1)
	assert.Empty(t, f.store.alerts)
}

func TestCreateReport_CoordinatesOutOfRange(t *testing.T) {
	f := newFixture(t)
	rec := f.request(t, http.MethodPost, "/api/v1/reports", gin.H{
		"latitud": -91.0, "longitud": -57.3, "descripcion": "Humo",
	}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateReportStatus(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodPatch, "/api/v1/reports/r-1", gin.H{
		"estado": store.ReportStatusVerified,
	}, true)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateReportStatus_UnknownStatus(t *testing.T) {
	f := newFixture(t)
	rec := f.request(t, http.MethodPatch, "/api/v1/reports/r-1", gin.H{
		"estado": "quemado",
	}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateReportStatus_UnknownReport(t *testing.T) {
	f := newFixture(t)
	f.store.updateErr = domain.ErrNotFound

	rec := f.request(t, http.MethodPatch, "/api/v1/reports/missing", gin.H{
		"estado": store.ReportStatusVerified,
	}, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAlerts(t *testing.T) {
	f := newFixture(t)
	f.store.alerts = []store.Alert{{ID: "a-1", Kind: "hotspot", Message: "Foco detectado"}}

	rec := f.request(t, http.MethodGet, "/api/v1/alerts", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Foco detectado")
}

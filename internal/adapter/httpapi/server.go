// Package httpapi exposes the public REST surface: hotspot queries,
// vegetation analyses, citizen reports, and auth.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alertafuego/wildfire-service/internal/alerts"
	"github.com/alertafuego/wildfire-service/internal/auth"
	"github.com/alertafuego/wildfire-service/internal/domain"
	"github.com/alertafuego/wildfire-service/internal/store"
)

// HotspotService answers active-fire queries.
type HotspotService interface {
	FiresByPeriod(ctx context.Context, period domain.TimePeriod) (domain.FireQueryResult, error)
	FiresByDays(ctx context.Context, days int) (domain.FireQueryResult, error)
}

// VegetationEngine runs the image-archive analyses. nil when the analysis
// backend is not configured; those routes then answer 503.
type VegetationEngine interface {
	NDVISeries(ctx context.Context, start, end time.Time) ([]domain.VegetationIndexSample, error)
	BurnSeverity(ctx context.Context, preFire, postFire time.Time, region domain.Region) (*domain.BurnSeverityResult, error)
	HistoricalFires(ctx context.Context, start, end time.Time) (*domain.HistoricalFireReport, error)
	Region() domain.Region
}

// ReportStore persists users, citizen reports, and alerts.
type ReportStore interface {
	CreateUser(ctx context.Context, email, displayName, passwordHash string) (*store.User, error)
	GetUserByEmail(ctx context.Context, email string) (*store.User, error)
	CreateReport(ctx context.Context, userID string, lat, lon float64, description string) (*store.Report, error)
	ListReports(ctx context.Context, limit int) ([]store.Report, error)
	UpdateReportStatus(ctx context.Context, reportID, status string) error
	CreateAlert(ctx context.Context, kind string, lat, lon float64, message string) (*store.Alert, error)
	ListAlerts(ctx context.Context, limit int) ([]store.Alert, error)
}

// AlertPublisher mirrors alerts.Publisher; nil publishers drop events.
type AlertPublisher interface {
	Publish(ctx context.Context, event alerts.Event) error
}

// Server binds the handlers to an HTTP listener.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// Deps carries everything the handlers need.
type Deps struct {
	Hotspots   HotspotService
	Vegetation VegetationEngine // may be nil
	Store      ReportStore
	Auth       *auth.Manager
	Alerts     AlertPublisher // may be nil
	Logger     *slog.Logger
}

// NewServer wires the routes and returns a server listening on addr when
// started.
func NewServer(addr string, deps Deps) *Server {
	router := newRouter(deps)
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: deps.Logger,
	}
}

func newRouter(deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	h := &handlers{deps: deps}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	api.POST("/auth/register", h.register)
	api.POST("/auth/login", h.login)

	protected := api.Group("", deps.Auth.Middleware())
	protected.GET("/firms/fires", h.firesByPeriod)
	protected.GET("/firms/active", h.firesByDays)
	protected.GET("/gee/ndvi-stats", h.ndviStats)
	protected.GET("/gee/historical-fires", h.historicalFires)
	protected.POST("/gee/nbr", h.burnSeverity)
	protected.POST("/reports", h.createReport)
	protected.GET("/reports", h.listReports)
	protected.PATCH("/reports/:id", h.updateReportStatus)
	protected.GET("/alerts", h.listAlerts)

	return router
}

// Start blocks serving requests until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alertafuego/wildfire-service/internal/alerts"
	"github.com/alertafuego/wildfire-service/internal/auth"
	"github.com/alertafuego/wildfire-service/internal/domain"
	"github.com/alertafuego/wildfire-service/internal/store"
)

const dateLayout = "2006-01-02"

type handlers struct {
	deps Deps
}

// respondError maps the domain error taxonomy to status codes. Internal
// detail stays in the logs, not the response body.
func (h *handlers) respondError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Msg})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "fire data source unavailable"})
	case errors.Is(err, domain.ErrBackendUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis backend not available"})
	case errors.Is(err, domain.ErrBackendFailure):
		h.deps.Logger.Error("analysis backend failure", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis backend failure"})
	default:
		h.deps.Logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

type registerRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name" binding:"required"`
}

func (h *handlers) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email, password (min 8 chars) and display_name are required"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	user, err := h.deps.Store.CreateUser(c.Request.Context(), req.Email, req.DisplayName, hash)
	if err != nil {
		h.respondError(c, err)
		return
	}
	token, err := h.deps.Auth.Issue(user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	// Unknown account and wrong password answer identically.
	user, err := h.deps.Store.GetUserByEmail(c.Request.Context(), req.Email)
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	token, err := h.deps.Auth.Issue(user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *handlers) firesByPeriod(c *gin.Context) {
	raw := c.DefaultQuery("period", string(domain.PeriodLast24h))
	period, ok := domain.ParseTimePeriod(raw)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown period " + strconv.Quote(raw)})
		return
	}

	result, err := h.deps.Hotspots.FiresByPeriod(c.Request.Context(), period)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handlers) firesByDays(c *gin.Context) {
	raw := c.DefaultQuery("days", "1")
	days, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be an integer"})
		return
	}

	result, err := h.deps.Hotspots.FiresByDays(c.Request.Context(), days)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// vegetationEngine answers 503 for analysis routes when the backend was not
// configured at startup.
func (h *handlers) vegetationEngine(c *gin.Context) (VegetationEngine, bool) {
	if h.deps.Vegetation == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis backend not available"})
		return nil, false
	}
	return h.deps.Vegetation, true
}

func (h *handlers) ndviStats(c *gin.Context) {
	engine, ok := h.vegetationEngine(c)
	if !ok {
		return
	}
	start, err := optionalDate(c.Query("start_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
		return
	}
	end, err := optionalDate(c.Query("end_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
		return
	}

	samples, err := engine.NDVISeries(c.Request.Context(), start, end)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"samples": samples, "count": len(samples)})
}

func (h *handlers) historicalFires(c *gin.Context) {
	engine, ok := h.vegetationEngine(c)
	if !ok {
		return
	}

	var start, end time.Time
	if rawYear := c.Query("year"); rawYear != "" {
		year, err := strconv.Atoi(rawYear)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "year must be an integer"})
			return
		}
		start = time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
		end = time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC)
	} else {
		var err error
		start, err = optionalDate(c.Query("start_date"))
		if err != nil || start.IsZero() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "year or start_date/end_date required"})
			return
		}
		end, err = optionalDate(c.Query("end_date"))
		if err != nil || end.IsZero() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "year or start_date/end_date required"})
			return
		}
	}

	report, err := engine.HistoricalFires(c.Request.Context(), start, end)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

type burnSeverityRequest struct {
	PreFireDate  string          `json:"pre_fire_date" binding:"required"`
	PostFireDate string          `json:"post_fire_date" binding:"required"`
	Geometry     json.RawMessage `json:"geometry"`
}

func (h *handlers) burnSeverity(c *gin.Context) {
	engine, ok := h.vegetationEngine(c)
	if !ok {
		return
	}
	var req burnSeverityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pre_fire_date and post_fire_date are required"})
		return
	}
	preFire, err := time.Parse(dateLayout, req.PreFireDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pre_fire_date must be YYYY-MM-DD"})
		return
	}
	postFire, err := time.Parse(dateLayout, req.PostFireDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "post_fire_date must be YYYY-MM-DD"})
		return
	}

	region := engine.Region()
	if len(req.Geometry) > 0 {
		region, err = domain.RegionFromGeoJSON(req.Geometry)
		if err != nil {
			h.respondError(c, err)
			return
		}
	}

	result, err := engine.BurnSeverity(c.Request.Context(), preFire, postFire, region)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type createReportRequest struct {
	Latitude    float64 `json:"latitud" binding:"required"`
	Longitude   float64 `json:"longitud" binding:"required"`
	Description string  `json:"descripcion" binding:"required"`
}

func (h *handlers) createReport(c *gin.Context) {
	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "latitud, longitud and descripcion are required"})
		return
	}
	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coordinates out of range"})
		return
	}

	report, err := h.deps.Store.CreateReport(c.Request.Context(),
		auth.UserID(c), req.Latitude, req.Longitude, req.Description)
	if err != nil {
		h.respondError(c, err)
		return
	}

	// Alert fan-out is best effort; the report stands regardless.
	if h.deps.Alerts != nil {
		event := alerts.Event{
			Kind:      "report",
			Latitude:  report.Latitude,
			Longitude: report.Longitude,
			Message:   report.Description,
		}
		if err := h.deps.Alerts.Publish(c.Request.Context(), event); err != nil {
			h.deps.Logger.Warn("alert publish failed", "report", report.ID, "error", err)
		} else if _, err := h.deps.Store.CreateAlert(c.Request.Context(),
			event.Kind, event.Latitude, event.Longitude, event.Message); err != nil {
			h.deps.Logger.Warn("alert record failed", "report", report.ID, "error", err)
		}
	}

	c.JSON(http.StatusCreated, report)
}

func (h *handlers) listReports(c *gin.Context) {
	limit, err := listLimit(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	reports, err := h.deps.Store.ListReports(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports, "count": len(reports)})
}

type updateReportRequest struct {
	Status string `json:"estado" binding:"required"`
}

var knownReportStatuses = map[string]bool{
	store.ReportStatusPending:   true,
	store.ReportStatusVerified:  true,
	store.ReportStatusDismissed: true,
}

func (h *handlers) updateReportStatus(c *gin.Context) {
	var req updateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "estado is required"})
		return
	}
	if !knownReportStatuses[req.Status] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown estado " + strconv.Quote(req.Status)})
		return
	}

	if err := h.deps.Store.UpdateReportStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "estado": req.Status})
}

func (h *handlers) listAlerts(c *gin.Context) {
	limit, err := listLimit(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	alertList, err := h.deps.Store.ListAlerts(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alertList, "count": len(alertList)})
}

func optionalDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, raw)
}

func listLimit(c *gin.Context) (int, error) {
	raw := c.DefaultQuery("limit", "50")
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, errors.New("invalid limit")
	}
	if limit > 200 {
		limit = 200
	}
	return limit, nil
}

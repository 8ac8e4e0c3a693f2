package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/benmeehan/safezone-agent/internal/models"
	"github.com/benmeehan/safezone-agent/pkg/location"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type safeZoneMonitor interface {
	Start(ctx context.Context) error
	Stop()
	IsMonitoring() bool
	GetCurrentStatus() *models.SafeZoneStatus
	GetRecentEvents() []models.SafeZoneEvent
}

type monitoringResponse struct {
	Monitoring bool `json:"monitoring"`
}

type SafeZoneHandler struct {
	monitor safeZoneMonitor
	logger  zerolog.Logger
}

func NewSafeZoneHandler(monitor safeZoneMonitor, logger zerolog.Logger) *SafeZoneHandler {
	return &SafeZoneHandler{monitor: monitor, logger: logger}
}

func (h *SafeZoneHandler) Register(r *gin.RouterGroup) {
	r.GET("/safezones/status", h.GetStatus)
	r.GET("/safezones/events", h.GetEvents)
	r.GET("/safezones/monitoring", h.GetMonitoring)
	r.POST("/safezones/monitoring/start", h.StartMonitoring)
	r.POST("/safezones/monitoring/stop", h.StopMonitoring)
}

func (h *SafeZoneHandler) GetStatus(c *gin.Context) {
	status := h.monitor.GetCurrentStatus()
	if status == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no location fix yet"})
		return
	}

	c.JSON(http.StatusOK, status)
}

// GetEvents returns recent events, newest first. ?limit=N truncates the list.
func (h *SafeZoneHandler) GetEvents(c *gin.Context) {
	events := h.monitor.GetRecentEvents()

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		if limit < len(events) {
			events = events[:limit]
		}
	}

	c.JSON(http.StatusOK, events)
}

func (h *SafeZoneHandler) GetMonitoring(c *gin.Context) {
	c.JSON(http.StatusOK, monitoringResponse{Monitoring: h.monitor.IsMonitoring()})
}

func (h *SafeZoneHandler) StartMonitoring(c *gin.Context) {
	err := h.monitor.Start(c.Request.Context())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, monitoringResponse{Monitoring: h.monitor.IsMonitoring()})
	case errors.Is(err, location.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "location permission denied"})
	case errors.Is(err, location.ErrLocationUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "location unavailable"})
	default:
		h.logger.Error().Err(err).Msg("Failed to start monitoring from API")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start monitoring"})
	}
}

func (h *SafeZoneHandler) StopMonitoring(c *gin.Context) {
	h.monitor.Stop()
	c.JSON(http.StatusOK, monitoringResponse{Monitoring: h.monitor.IsMonitoring()})
}

// RequestLogger logs every request through zerolog.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("HTTP request")
	}
}

// NewRouter builds the local API engine.
func NewRouter(monitor safeZoneMonitor, logger zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger))

	NewSafeZoneHandler(monitor, logger).Register(r.Group(""))
	return r
}

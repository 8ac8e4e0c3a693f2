package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benmeehan/safezone-agent/internal/mocks"
	"github.com/benmeehan/safezone-agent/internal/models"
	"github.com/benmeehan/safezone-agent/pkg/location"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupRouter(monitor safeZoneMonitor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewSafeZoneHandler(monitor, zerolog.Nop())
	h.Register(r.Group(""))
	return r
}

func serve(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestGetStatus(t *testing.T) {
	monitor := new(mocks.MockMonitor)
	monitor.On("GetCurrentStatus").Return(&models.SafeZoneStatus{
		TotalActive: 1,
		Inside:      []models.SafeZone{{ID: "z1", Name: "Home", Radius: 100, IsActive: true}},
		Outside:     []models.SafeZone{},
	})

	w := serve(setupRouter(monitor), "GET", "/safezones/status")
	require.Equal(t, http.StatusOK, w.Code)

	var status models.SafeZoneStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, 1, status.TotalActive)
	assert.Equal(t, "Home", status.Inside[0].Name)
}

func TestGetStatus_NoFix(t *testing.T) {
	monitor := new(mocks.MockMonitor)
	monitor.On("GetCurrentStatus").Return(nil)

	w := serve(setupRouter(monitor), "GET", "/safezones/status")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetEvents(t *testing.T) {
	ts := time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)
	monitor := new(mocks.MockMonitor)
	monitor.On("GetRecentEvents").Return([]models.SafeZoneEvent{
		{ID: "e2", ZoneID: "z1", Type: models.EventTypeExit, Timestamp: ts.Add(time.Minute)},
		{ID: "e1", ZoneID: "z1", Type: models.EventTypeEntry, Timestamp: ts},
	})
	r := setupRouter(monitor)

	tests := []struct {
		query    string
		code     int
		expected []string
	}{
		{"", http.StatusOK, []string{"e2", "e1"}},
		{"?limit=1", http.StatusOK, []string{"e2"}},
		{"?limit=10", http.StatusOK, []string{"e2", "e1"}},
		{"?limit=abc", http.StatusBadRequest, nil},
		{"?limit=-1", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := serve(r, "GET", "/safezones/events"+tt.query)
			require.Equal(t, tt.code, w.Code)
			if tt.code != http.StatusOK {
				return
			}

			var events []models.SafeZoneEvent
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))
			ids := make([]string, 0, len(events))
			for _, e := range events {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestGetMonitoring(t *testing.T) {
	monitor := new(mocks.MockMonitor)
	monitor.On("IsMonitoring").Return(true)

	w := serve(setupRouter(monitor), "GET", "/safezones/monitoring")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"monitoring": true}`, w.Body.String())
}

func TestStartMonitoring(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"started", nil, http.StatusOK},
		{"permission denied", fmt.Errorf("failed to start safe zone monitoring: %w", location.ErrPermissionDenied), http.StatusForbidden},
		{"no fix", fmt.Errorf("failed to start safe zone monitoring: %w", location.ErrLocationUnavailable), http.StatusServiceUnavailable},
		{"other", errors.New("zones unreadable"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			monitor := new(mocks.MockMonitor)
			monitor.On("Start", mock.Anything).Return(tt.err)
			monitor.On("IsMonitoring").Return(tt.err == nil)

			w := serve(setupRouter(monitor), "POST", "/safezones/monitoring/start")
			assert.Equal(t, tt.code, w.Code)
			monitor.AssertNumberOfCalls(t, "Start", 1)
		})
	}
}

func TestStopMonitoring(t *testing.T) {
	monitor := new(mocks.MockMonitor)
	monitor.On("Stop").Return()
	monitor.On("IsMonitoring").Return(false)

	w := serve(setupRouter(monitor), "POST", "/safezones/monitoring/stop")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"monitoring": false}`, w.Body.String())
	monitor.AssertNumberOfCalls(t, "Stop", 1)
}

func TestNewRouter_UnknownRoute(t *testing.T) {
	r := NewRouter(new(mocks.MockMonitor), zerolog.Nop())

	w := serve(r, "GET", "/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

package services_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/benmeehan/safezone-agent/internal/mocks"
	"github.com/benmeehan/safezone-agent/internal/models"
	"github.com/benmeehan/safezone-agent/internal/services"
	"github.com/benmeehan/safezone-agent/internal/utils"
	"github.com/benmeehan/safezone-agent/pkg/location"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestMonitorService_Start(t *testing.T) {
	tests := []struct {
		name        string
		autoStart   bool
		alerts      bool
		settingsErr error
		startErr    error
		wantStart   bool
		wantErr     bool
	}{
		{name: "starts when alerts enabled", autoStart: true, alerts: true, wantStart: true},
		{name: "auto start disabled", autoStart: false, alerts: true},
		{name: "alerts disabled", autoStart: true, alerts: false},
		{name: "settings unreadable", autoStart: true, settingsErr: errors.New("bad yaml")},
		{name: "permission denied is not fatal", autoStart: true, alerts: true, wantStart: true,
			startErr: fmt.Errorf("failed to start safe zone monitoring: %w", location.ErrPermissionDenied)},
		{name: "no fix is not fatal", autoStart: true, alerts: true, wantStart: true,
			startErr: fmt.Errorf("failed to start safe zone monitoring: %w", location.ErrLocationUnavailable)},
		{name: "other errors fail", autoStart: true, alerts: true, wantStart: true,
			startErr: errors.New("zones file unreadable"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockMonitor := new(mocks.MockMonitor)
			mockStore := new(mocks.MockZoneStore)

			mockStore.On("GetSettings").Return(models.Settings{SafeZoneAlerts: tt.alerts}, tt.settingsErr)
			mockMonitor.On("Start", mock.Anything).Return(tt.startErr)

			svc := services.NewMonitorService(mockMonitor, mockStore, tt.autoStart, zerolog.Nop())
			err := svc.Start()

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tt.wantStart {
				mockMonitor.AssertCalled(t, "Start", mock.Anything)
			} else {
				mockMonitor.AssertNotCalled(t, "Start", mock.Anything)
			}
		})
	}
}

func TestMonitorService_Stop(t *testing.T) {
	mockMonitor := new(mocks.MockMonitor)
	mockMonitor.On("Stop").Return()

	svc := services.NewMonitorService(mockMonitor, new(mocks.MockZoneStore), true, zerolog.Nop())

	assert.NoError(t, svc.Stop())
	mockMonitor.AssertNumberOfCalls(t, "Stop", 1)
}

func TestMonitorService_UnreadableZonesDoNotFailStart(t *testing.T) {
	provider := new(mocks.MockLocationProvider)
	sub := new(mocks.MockSubscription)
	store := new(mocks.MockZoneStore)
	pool := utils.NewWorkerPool(1, 8)
	defer pool.Shutdown()

	provider.On("RequestPermission", mock.Anything).Return(nil)
	provider.On("GetCurrentLocation", mock.Anything).Return(at(0, 0), nil)
	provider.On("Subscribe", mock.Anything, mock.Anything, mock.Anything).Return(sub, nil)
	sub.On("Remove").Return()
	store.On("GetSettings").Return(models.Settings{SafeZoneAlerts: true}, nil)
	store.On("GetSafeZones").Return(nil, errors.New("yaml: line 1: did not find expected node content"))

	monitor := services.NewSafeZoneMonitor(provider, store, new(mocks.MockNotificationSink), new(mocks.MockActivityLog),
		services.NewAlertPolicy(time.Minute, nil), pool, zerolog.Nop(), services.MonitorOptions{})
	svc := services.NewMonitorService(monitor, store, true, zerolog.Nop())

	assert.NoError(t, svc.Start())
	assert.True(t, monitor.IsMonitoring())
	assert.NoError(t, svc.Stop())
}

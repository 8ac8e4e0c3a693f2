package services

import (
	"context"
	"errors"

	"github.com/benmeehan/safezone-agent/internal/stores"
	"github.com/benmeehan/safezone-agent/pkg/location"
	"github.com/rs/zerolog"
)

// MonitorController starts and stops safe zone monitoring.
type MonitorController interface {
	Start(ctx context.Context) error
	Stop()
	IsMonitoring() bool
}

// MonitorService runs the monitor as a registry service. Monitoring is only
// started automatically when safe zone alerts are enabled.
type MonitorService struct {
	monitor   MonitorController
	zoneStore stores.ZoneStore
	autoStart bool
	logger    zerolog.Logger
}

// NewMonitorService initializes a new MonitorService.
func NewMonitorService(monitor MonitorController, zoneStore stores.ZoneStore, autoStart bool, logger zerolog.Logger) *MonitorService {
	return &MonitorService{
		monitor:   monitor,
		zoneStore: zoneStore,
		autoStart: autoStart,
		logger:    logger,
	}
}

// Start begins monitoring when enabled. A missing permission or fix does not
// fail the agent: monitoring can be started again through the API.
func (s *MonitorService) Start() error {
	if !s.autoStart {
		s.logger.Info().Msg("Safe zone monitoring auto start disabled")
		return nil
	}

	settings, err := s.zoneStore.GetSettings()
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to read safe zone settings, skipping auto start")
		return nil
	}
	if !settings.SafeZoneAlerts {
		s.logger.Info().Msg("Safe zone alerts disabled, monitoring not started")
		return nil
	}

	err = s.monitor.Start(context.Background())
	switch {
	case err == nil:
		return nil
	case errors.Is(err, location.ErrPermissionDenied), errors.Is(err, location.ErrLocationUnavailable):
		s.logger.Warn().Err(err).Msg("Safe zone monitoring not started")
		return nil
	default:
		return err
	}
}

// Stop ends monitoring.
func (s *MonitorService) Stop() error {
	s.monitor.Stop()
	return nil
}

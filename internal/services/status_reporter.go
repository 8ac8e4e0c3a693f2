package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benmeehan/safezone-agent/internal/constants"
	"github.com/benmeehan/safezone-agent/internal/models"
	"github.com/benmeehan/safezone-agent/pkg/identity"
	"github.com/benmeehan/safezone-agent/pkg/mqtt"
	"github.com/rs/zerolog"
)

// StatusSource is the read side of the monitor.
type StatusSource interface {
	IsMonitoring() bool
	GetCurrentStatus() *models.SafeZoneStatus
}

// StatusReporter periodically publishes the aggregate safe zone status for the parent dashboard.
type StatusReporter struct {
	PubTopic   string
	Interval   time.Duration
	QOS        int
	Source     StatusSource
	DeviceInfo identity.DeviceInfoInterface
	MqttClient mqtt.MQTTClient
	Logger     zerolog.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewStatusReporter initializes a new StatusReporter.
func NewStatusReporter(pubTopic string, interval time.Duration, qos int, source StatusSource,
	deviceInfo identity.DeviceInfoInterface, mqttClient mqtt.MQTTClient, logger zerolog.Logger) *StatusReporter {
	if interval <= 0 {
		interval = constants.DefaultStatusInterval
	}

	return &StatusReporter{
		PubTopic:   pubTopic,
		Interval:   interval,
		QOS:        qos,
		Source:     source,
		DeviceInfo: deviceInfo,
		MqttClient: mqttClient,
		Logger:     logger,
	}
}

// Start launches the reporting loop in a separate goroutine.
func (s *StatusReporter) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx != nil {
		s.Logger.Warn().Msg("StatusReporter is already running")
		return errors.New("status reporter is already running")
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.wg.Add(1)
	go func(ctx context.Context) {
		defer s.wg.Done()
		s.runReportLoop(ctx)
	}(s.ctx)

	s.Logger.Info().Str("topic", s.PubTopic).Dur("interval", s.Interval).Msg("StatusReporter started successfully")
	return nil
}

// Stop gracefully stops the reporter.
func (s *StatusReporter) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx == nil {
		s.Logger.Warn().Msg("StatusReporter is not running")
		return errors.New("status reporter is not running")
	}

	s.cancel()
	s.wg.Wait()

	s.ctx = nil
	s.cancel = nil

	s.Logger.Info().Msg("StatusReporter stopped successfully")
	return nil
}

func (s *StatusReporter) runReportLoop(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Publish(ctx); err != nil {
				s.Logger.Error().Err(err).Msg("Failed to publish safe zone status")
			}
		case <-ctx.Done():
			s.Logger.Info().Msg("StatusReporter stopping gracefully")
			return
		}
	}
}

// Publish sends one status report to <topic>/<device id>.
func (s *StatusReporter) Publish(ctx context.Context) error {
	report := models.StatusReport{
		DeviceID:   s.DeviceInfo.GetDeviceID(),
		Timestamp:  time.Now().UTC(),
		Monitoring: s.Source.IsMonitoring(),
		Status:     s.Source.GetCurrentStatus(),
	}

	topic := s.PubTopic + "/" + report.DeviceID
	if err := mqtt.PublishJSON(ctx, s.MqttClient, topic, byte(s.QOS), true, report); err != nil {
		return err
	}

	s.Logger.Debug().Str("topic", topic).Bool("monitoring", report.Monitoring).Msg("Safe zone status published")
	return nil
}

package service_registry

import (
	"errors"
	"fmt"

	"github.com/benmeehan/safezone-agent/internal/registry"
	"github.com/benmeehan/safezone-agent/internal/services"
	"github.com/benmeehan/safezone-agent/internal/stores"
	"github.com/benmeehan/safezone-agent/internal/utils"
	"github.com/benmeehan/safezone-agent/pkg/identity"
	"github.com/benmeehan/safezone-agent/pkg/mqtt"
	"github.com/elliotchance/orderedmap/v2"
	"github.com/rs/zerolog"
)

// Monitor is the monitor as seen by the services built here.
type Monitor interface {
	services.MonitorController
	services.StatusSource
}

// ServiceRegistry manages the lifecycle of the agent services.
type ServiceRegistry struct {
	services   *orderedmap.OrderedMap[string, registry.Service]
	mqttClient mqtt.MQTTClient
	Logger     zerolog.Logger
}

// NewServiceRegistry initializes a new service registry.
func NewServiceRegistry(mqttClient mqtt.MQTTClient, logger zerolog.Logger) *ServiceRegistry {
	return &ServiceRegistry{
		services:   orderedmap.NewOrderedMap[string, registry.Service](),
		mqttClient: mqttClient,
		Logger:     logger,
	}
}

// RegisterService adds a new service to the registry. Services start in registration order.
func (sr *ServiceRegistry) RegisterService(name string, svc registry.Service) {
	if _, exists := sr.services.Get(name); exists {
		sr.Logger.Warn().Msgf("Service %s is already registered", name)
		return
	}
	sr.services.Set(name, svc)
	sr.Logger.Info().Msgf("Registered service: %s", name)
}

// Names returns the registered service names in start order.
func (sr *ServiceRegistry) Names() []string {
	return sr.services.Keys()
}

// StartServices initiates all registered services in order.
// If a service fails to start, it stops already started services.
func (sr *ServiceRegistry) StartServices() error {
	startedServices := []string{}

	for el := sr.services.Front(); el != nil; el = el.Next() {
		name, svc := el.Key, el.Value
		sr.Logger.Info().Msgf("Starting service: %s", name)
		if err := svc.Start(); err != nil {
			sr.Logger.Error().Err(err).Msgf("Failed to start service: %s", name)

			sr.Logger.Warn().Msg("Stopping already started services due to startup failure...")
			for i := len(startedServices) - 1; i >= 0; i-- {
				started, _ := sr.services.Get(startedServices[i])
				_ = started.Stop()
			}
			return fmt.Errorf("failed to start %s: %w", name, err)
		}
		startedServices = append(startedServices, name)
	}

	return nil
}

// StopServices stops all services in reverse order.
func (sr *ServiceRegistry) StopServices() error {
	var stopErrors []error
	for el := sr.services.Back(); el != nil; el = el.Prev() {
		if err := el.Value.Stop(); err != nil {
			stopErrors = append(stopErrors, fmt.Errorf("failed to stop %s: %w", el.Key, err))
		}
	}
	if len(stopErrors) > 0 {
		for _, e := range stopErrors {
			sr.Logger.Error().Err(e).Msg("Service stop failure")
		}
		return errors.Join(stopErrors...)
	}
	return nil
}

// RegisterServices registers the enabled services based on configuration.
// Zone sync starts before the monitor and the status reporter after it.
func (sr *ServiceRegistry) RegisterServices(config *utils.Config, deviceInfo identity.DeviceInfoInterface,
	monitor Monitor, zoneStore *stores.FileZoneStore) {
	servicesInOrder := []struct {
		name        string
		enabled     bool
		constructor func() registry.Service
	}{
		{
			name:    "zone_sync",
			enabled: config.Services.ZoneSync.Enabled,
			constructor: func() registry.Service {
				return services.NewZoneSyncService(
					config.Services.ZoneSync.Topic,
					config.Services.ZoneSync.QOS,
					sr.mqttClient,
					deviceInfo,
					zoneStore,
					sr.Logger,
				)
			},
		},
		{
			name:    "safezone_monitor",
			enabled: true,
			constructor: func() registry.Service {
				return services.NewMonitorService(monitor, zoneStore, config.Monitor.AutoStart, sr.Logger)
			},
		},
		{
			name:    "status_reporter",
			enabled: config.Services.StatusReporter.Enabled,
			constructor: func() registry.Service {
				return services.NewStatusReporter(
					config.Services.StatusReporter.Topic,
					config.Services.StatusReporter.Interval,
					config.Services.StatusReporter.QOS,
					monitor,
					deviceInfo,
					sr.mqttClient,
					sr.Logger,
				)
			},
		},
	}

	for _, s := range servicesInOrder {
		if !s.enabled {
			sr.Logger.Debug().Msgf("Service %s disabled", s.name)
			continue
		}
		sr.RegisterService(s.name, s.constructor())
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benmeehan/safezone-agent/internal/api"
	"github.com/benmeehan/safezone-agent/internal/constants"
	"github.com/benmeehan/safezone-agent/internal/service_registry"
	"github.com/benmeehan/safezone-agent/internal/services"
	"github.com/benmeehan/safezone-agent/internal/sinks"
	"github.com/benmeehan/safezone-agent/internal/stores"
	"github.com/benmeehan/safezone-agent/internal/utils"
	"github.com/benmeehan/safezone-agent/pkg/file"
	"github.com/benmeehan/safezone-agent/pkg/identity"
	"github.com/benmeehan/safezone-agent/pkg/location"
	"github.com/benmeehan/safezone-agent/pkg/mqtt"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the agent configuration")
	envPath := flag.String("env", ".env", "path to an optional .env file")
	flag.Parse()

	bootLogger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if err := utils.LoadEnvFile(*envPath); err != nil {
		bootLogger.Fatal().Err(err).Msg("Failed to load environment file")
	}

	// Initialize file operations handler
	fileClient := file.NewFileService()

	// Load configuration from file
	config, err := utils.LoadConfig(*configPath, fileClient)
	if err != nil {
		bootLogger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := utils.NewLogger(config)

	// Initialize DeviceInfo
	deviceInfo := identity.NewDeviceInfo(config.Identity.DeviceFile, fileClient)
	if err := deviceInfo.LoadDeviceInfo(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to load device information")
	}
	logger = logger.With().Str("device_id", deviceInfo.GetDeviceID()).Logger()

	// Initialize the shared MQTT connection
	var mqttClient mqtt.MQTTClient
	if config.MQTT.Broker != "" {
		// Generate a unique MQTT Client ID by appending a UUID
		clientID := config.MQTT.ClientID + "-" + uuid.New().String()
		logger.Info().Str("client_id", clientID).Msg("Using MQTT Client ID")

		mqttService := mqtt.NewMqttService(fileClient)
		err := mqttService.Initialize(mqtt.ConnectionOptions{
			Broker:        config.MQTT.Broker,
			ClientID:      clientID,
			CACertificate: config.MQTT.CACertificate,
			Username:      config.MQTT.Username,
			Password:      config.MQTT.Password,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize MQTT connection")
		}
		mqttClient = mqttService
	}

	provider, err := newLocationProvider(config)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create location provider")
	}

	quietLoc, err := config.QuietHoursLocation()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid quiet hours timezone")
	}
	quietHours, err := services.ParseQuietHours(config.Alerts.QuietHours.Start, config.Alerts.QuietHours.End, quietLoc)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid quiet hours")
	}

	zoneStore := stores.NewFileZoneStore(config.Stores.ZonesFile, fileClient)
	notifier, activityLog := newSinks(config, mqttClient, fileClient, deviceInfo, logger)

	pool := utils.NewWorkerPool(config.Monitor.Workers, config.Monitor.QueueSize)
	monitor := services.NewSafeZoneMonitor(
		provider,
		zoneStore,
		notifier,
		activityLog,
		services.NewAlertPolicy(config.Alerts.Cooldown, quietHours),
		pool,
		logger,
		services.MonitorOptions{
			MinInterval:           config.Monitor.MinInterval,
			MinDisplacementMeters: config.Monitor.MinDisplacementMeters,
			StartTimeout:          config.Monitor.StartTimeout,
			SinkTimeout:           config.Monitor.SinkTimeout,
			RecentEventsLimit:     config.Monitor.RecentEventsLimit,
		},
	)

	// Create a new service registry to manage services
	serviceRegistry := service_registry.NewServiceRegistry(mqttClient, logger)
	serviceRegistry.RegisterServices(config, deviceInfo, monitor, zoneStore)

	if err := serviceRegistry.StartServices(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start services")
	}
	logger.Info().Strs("services", serviceRegistry.Names()).Msg("All services started successfully")

	var server *http.Server
	if config.API.Enabled {
		server = &http.Server{
			Addr:              config.API.Address,
			Handler:           api.NewRouter(monitor, logger),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info().Str("address", config.API.Address).Msg("Local API listening")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("Local API stopped")
			}
		}()
	}

	// Handle graceful shutdown
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	logger.Info().Msg("Shutting down gracefully...")

	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := server.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("Failed to shut down local API")
		}
		cancel()
	}

	if err := serviceRegistry.StopServices(); err != nil {
		logger.Error().Err(err).Msg("Some services failed to stop")
	}
	pool.Shutdown()

	if mqttClient != nil {
		mqttClient.Disconnect(250)
	}
}

func newLocationProvider(config *utils.Config) (location.Provider, error) {
	if config.Location.Provider == constants.ProviderGoogle {
		return location.NewGoogleGeolocationProvider(config.Location.MapsAPIKey, config.Location.ModemIndex)
	}
	return location.NewDeviceSensorProvider(config.Location.GPSDevicePort, config.Location.GPSDeviceBaudRate), nil
}

func newSinks(config *utils.Config, mqttClient mqtt.MQTTClient, fileClient file.FileOperations,
	deviceInfo identity.DeviceInfoInterface, logger zerolog.Logger) (sinks.NotificationSink, sinks.ActivityLog) {
	notifiers := sinks.MultiNotificationSink{sinks.NewLogNotificationSink(logger)}
	if config.Services.Notifications.Enabled {
		notifiers = append(notifiers, sinks.NewMQTTNotificationSink(
			config.Services.Notifications.Topic, config.Services.Notifications.QOS, mqttClient, deviceInfo))
	}

	activityLogs := sinks.MultiActivityLog{sinks.NewFileActivityLog(config.Stores.ActivityLogFile, fileClient, deviceInfo)}
	if config.Services.Activity.Enabled {
		activityLogs = append(activityLogs, sinks.NewMQTTActivityLog(
			config.Services.Activity.Topic, config.Services.Activity.QOS, mqttClient, deviceInfo))
	}

	return notifiers, activityLogs
}

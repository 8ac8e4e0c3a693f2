package services

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/benmeehan/safezone-agent/internal/models"
	"github.com/benmeehan/safezone-agent/pkg/identity"
	"github.com/benmeehan/safezone-agent/pkg/mqtt"
	MQTT "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// ZoneWriter persists a zone document pushed by the parent app.
type ZoneWriter interface {
	Save(doc models.ZoneDocument) error
}

// ZoneSyncService receives zone documents over MQTT and writes them to the
// zone store. The monitor picks them up on its next sample.
type ZoneSyncService struct {
	subTopic string
	qos      int

	mqttClient mqtt.MQTTClient
	deviceInfo identity.DeviceInfoInterface
	writer     ZoneWriter
	logger     zerolog.Logger

	mu      sync.Mutex
	running bool
}

// NewZoneSyncService initializes a new ZoneSyncService.
func NewZoneSyncService(subTopic string, qos int, mqttClient mqtt.MQTTClient, deviceInfo identity.DeviceInfoInterface,
	writer ZoneWriter, logger zerolog.Logger) *ZoneSyncService {
	return &ZoneSyncService{
		subTopic:   subTopic,
		qos:        qos,
		mqttClient: mqttClient,
		deviceInfo: deviceInfo,
		writer:     writer,
		logger:     logger,
	}
}

func (zs *ZoneSyncService) topic() string {
	return zs.subTopic + "/" + zs.deviceInfo.GetDeviceID()
}

// Start subscribes to the zone document topic of this device.
func (zs *ZoneSyncService) Start() error {
	topic := zs.topic()
	zs.logger.Info().Str("topic", topic).Msg("Starting ZoneSyncService and subscribing to MQTT topic")

	token := zs.mqttClient.Subscribe(topic, byte(zs.qos), zs.HandleZoneDocument)
	token.Wait()
	if err := token.Error(); err != nil {
		zs.logger.Error().Err(err).Str("topic", topic).Msg("Failed to subscribe to MQTT topic")
		return err
	}

	zs.mu.Lock()
	zs.running = true
	zs.mu.Unlock()

	zs.logger.Info().Str("topic", topic).Msg("Successfully subscribed to MQTT topic")
	return nil
}

// Stop unsubscribes from the zone document topic.
func (zs *ZoneSyncService) Stop() error {
	zs.mu.Lock()
	zs.running = false
	zs.mu.Unlock()

	topic := zs.topic()
	token := zs.mqttClient.Unsubscribe(topic)
	token.Wait()
	if err := token.Error(); err != nil {
		zs.logger.Error().Err(err).Str("topic", topic).Msg("Failed to unsubscribe from MQTT topic")
		return err
	}

	zs.logger.Info().Msg("ZoneSyncService stopped successfully")
	return nil
}

// HandleZoneDocument decodes and stores a zone document. Invalid zones are
// stored as received and skipped by the monitor.
func (zs *ZoneSyncService) HandleZoneDocument(_ MQTT.Client, msg MQTT.Message) {
	zs.mu.Lock()
	defer zs.mu.Unlock()

	if !zs.running {
		zs.logger.Warn().Msg("Received zone document but service is stopped, ignoring it")
		return
	}

	if err := zs.apply(msg.Payload()); err != nil {
		zs.logger.Error().Err(err).Str("topic", msg.Topic()).Msg("Failed to apply zone document")
	}
}

func (zs *ZoneSyncService) apply(payload []byte) error {
	// a document without settings keeps alerts on, as the file store does
	doc := models.ZoneDocument{Settings: models.Settings{SafeZoneAlerts: true}}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return fmt.Errorf("failed to decode zone document: %w", err)
	}

	for _, zone := range doc.Zones {
		if err := zone.Validate(); err != nil {
			zs.logger.Warn().Err(err).Str("zone_id", zone.ID).Msg("Received invalid safe zone")
		}
	}

	if err := zs.writer.Save(doc); err != nil {
		return err
	}

	zs.logger.Info().
		Int("zones", len(doc.Zones)).
		Bool("safe_zone_alerts", doc.Settings.SafeZoneAlerts).
		Msg("Safe zone document updated")
	return nil
}

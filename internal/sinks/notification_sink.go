package sinks

import (
	"context"
	"fmt"
	"time"

	"github.com/benmeehan/safezone-agent/internal/models"
	"github.com/benmeehan/safezone-agent/pkg/identity"
	"github.com/benmeehan/safezone-agent/pkg/mqtt"
	"github.com/rs/zerolog"
)

// MQTTNotificationSink forwards notifications to the parent app over MQTT.
type MQTTNotificationSink struct {
	topic      string
	qos        int
	mqttClient mqtt.MQTTClient
	deviceInfo identity.DeviceInfoInterface
	now        func() time.Time
}

// NewMQTTNotificationSink creates a sink publishing to topic/<device id>.
func NewMQTTNotificationSink(topic string, qos int, mqttClient mqtt.MQTTClient, deviceInfo identity.DeviceInfoInterface) *MQTTNotificationSink {
	return &MQTTNotificationSink{
		topic:      topic,
		qos:        qos,
		mqttClient: mqttClient,
		deviceInfo: deviceInfo,
		now:        time.Now,
	}
}

// Show publishes the notification and waits for the broker to accept it.
func (s *MQTTNotificationSink) Show(ctx context.Context, n models.Notification) error {
	deviceID := s.deviceInfo.GetDeviceID()
	msg := models.NotificationMessage{
		DeviceID:     deviceID,
		Timestamp:    s.now(),
		Notification: n,
	}

	topic := fmt.Sprintf("%s/%s", s.topic, deviceID)
	if err := mqtt.PublishJSON(ctx, s.mqttClient, topic, byte(s.qos), false, msg); err != nil {
		return fmt.Errorf("failed to publish notification to %s: %w", topic, err)
	}
	return nil
}

// LogNotificationSink writes notifications to the agent log.
type LogNotificationSink struct {
	logger zerolog.Logger
}

func NewLogNotificationSink(logger zerolog.Logger) *LogNotificationSink {
	return &LogNotificationSink{logger: logger}
}

func (s *LogNotificationSink) Show(ctx context.Context, n models.Notification) error {
	s.logger.Info().
		Str("title", n.Title).
		Str("body", n.Body).
		Str("priority", n.Priority).
		Msg("Notification")
	return nil
}

package sinks

import (
	"context"
	"fmt"

	"github.com/benmeehan/safezone-agent/internal/models"
	"github.com/benmeehan/safezone-agent/pkg/file"
	"github.com/benmeehan/safezone-agent/pkg/identity"
	"github.com/benmeehan/safezone-agent/pkg/mqtt"
)

// FileActivityLog appends each event as a JSON line to a local file.
type FileActivityLog struct {
	filePath   string
	fileClient file.FileOperations
	deviceInfo identity.DeviceInfoInterface
}

func NewFileActivityLog(filePath string, fileClient file.FileOperations, deviceInfo identity.DeviceInfoInterface) *FileActivityLog {
	return &FileActivityLog{
		filePath:   filePath,
		fileClient: fileClient,
		deviceInfo: deviceInfo,
	}
}

func (l *FileActivityLog) Append(ctx context.Context, event models.SafeZoneEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	record := models.ActivityRecord{DeviceID: l.deviceInfo.GetDeviceID(), Event: event}
	if err := l.fileClient.AppendJsonLine(l.filePath, record); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPersistence, l.filePath, err)
	}
	return nil
}

// MQTTActivityLog publishes each event to the parent dashboard topic.
type MQTTActivityLog struct {
	topic      string
	qos        int
	mqttClient mqtt.MQTTClient
	deviceInfo identity.DeviceInfoInterface
}

func NewMQTTActivityLog(topic string, qos int, mqttClient mqtt.MQTTClient, deviceInfo identity.DeviceInfoInterface) *MQTTActivityLog {
	return &MQTTActivityLog{
		topic:      topic,
		qos:        qos,
		mqttClient: mqttClient,
		deviceInfo: deviceInfo,
	}
}

func (l *MQTTActivityLog) Append(ctx context.Context, event models.SafeZoneEvent) error {
	deviceID := l.deviceInfo.GetDeviceID()
	record := models.ActivityRecord{DeviceID: deviceID, Event: event}

	topic := fmt.Sprintf("%s/%s", l.topic, deviceID)
	if err := mqtt.PublishJSON(ctx, l.mqttClient, topic, byte(l.qos), false, record); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPersistence, topic, err)
	}
	return nil
}

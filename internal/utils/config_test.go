package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/benmeehan/safezone-agent/pkg/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
mqtt:
  broker: tcp://localhost:1883
  client_id: kid-tracker
location:
  provider: google
  maps_api_key: from-file
monitor:
  auto_start: true
  min_interval: 15s
  recent_events_limit: 20
alerts:
  cooldown: 2m
  quiet_hours:
    start: "22:00"
    end: "07:00"
    timezone: Europe/Berlin
services:
  status_reporter:
    enabled: true
    topic: safezone/status
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, sampleConfig)

	config, err := LoadConfig(path, file.NewFileService())
	require.NoError(t, err)

	assert.Equal(t, "tcp://localhost:1883", config.MQTT.Broker)
	assert.Equal(t, "kid-tracker", config.MQTT.ClientID)
	assert.Equal(t, "google", config.Location.Provider)
	assert.True(t, config.Monitor.AutoStart)
	assert.Equal(t, 15*time.Second, config.Monitor.MinInterval)
	assert.Equal(t, 20, config.Monitor.RecentEventsLimit)
	assert.Equal(t, 2*time.Minute, config.Alerts.Cooldown)
	assert.Equal(t, "22:00", config.Alerts.QuietHours.Start)
	assert.Equal(t, "safezone/status", config.Services.StatusReporter.Topic)

	// defaults
	assert.Equal(t, 50.0, config.Monitor.MinDisplacementMeters)
	assert.Equal(t, 30*time.Second, config.Monitor.StartTimeout)
	assert.Equal(t, time.Minute, config.Services.StatusReporter.Interval)
	assert.Equal(t, "data/safezones.yaml", config.Stores.ZonesFile)
	assert.Equal(t, "127.0.0.1:8080", config.API.Address)
	assert.Equal(t, 1, config.Monitor.Workers)

	loc, err := config.QuietHoursLocation()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	t.Setenv("MQTT_BROKER", "ssl://broker.example:8883")
	t.Setenv("MQTT_USERNAME", "device")
	t.Setenv("MQTT_PASSWORD", "secret")
	t.Setenv("MAPS_API_KEY", "from-env")

	config, err := LoadConfig(path, file.NewFileService())
	require.NoError(t, err)

	assert.Equal(t, "ssl://broker.example:8883", config.MQTT.Broker)
	assert.Equal(t, "device", config.MQTT.Username)
	assert.Equal(t, "secret", config.MQTT.Password)
	assert.Equal(t, "from-env", config.Location.MapsAPIKey)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "location:\n  provider: carrier-pigeon\n"), file.NewFileService())
	assert.ErrorContains(t, err, "unknown location provider")

	_, err = LoadConfig(writeConfig(t, "services:\n  zone_sync:\n    enabled: true\n"), file.NewFileService())
	assert.ErrorContains(t, err, "mqtt broker is required")

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), file.NewFileService())
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SAFEZONE_TEST_VALUE=loaded\n"), 0644))
	t.Setenv("SAFEZONE_TEST_VALUE", "")
	require.NoError(t, os.Unsetenv("SAFEZONE_TEST_VALUE"))

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "loaded", os.Getenv("SAFEZONE_TEST_VALUE"))

	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "absent.env")))
}

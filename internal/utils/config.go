package utils

import (
	"fmt"
	"os"
	"time"

	"github.com/benmeehan/safezone-agent/internal/constants"
	"github.com/benmeehan/safezone-agent/pkg/file"
	"github.com/joho/godotenv"
)

// Config represents the structure of the configuration file.
type Config struct {
	MQTT struct {
		Broker        string `yaml:"broker"`         // MQTT broker address
		ClientID      string `yaml:"client_id"`      // MQTT client ID prefix
		CACertificate string `yaml:"ca_certificate"` // Path to the CA certificate
		Username      string `yaml:"username"`
		Password      string `yaml:"password"`
	} `yaml:"mqtt"`

	Identity struct {
		DeviceFile string `yaml:"device_file"` // Path to the device identity file
	} `yaml:"identity"`

	Location struct {
		Provider          string `yaml:"provider"`        // "sensor" or "google"
		GPSDevicePort     string `yaml:"gps_device_port"` // UNIX Port where the GPS sensor is mounted
		GPSDeviceBaudRate int    `yaml:"gps_baud_rate"`   // The Baud rate for GPS sensor
		MapsAPIKey        string `yaml:"maps_api_key"`    // Google maps API Key
		ModemIndex        int    `yaml:"modem_index"`     // mmcli modem used for cell towers
	} `yaml:"location"`

	Monitor struct {
		AutoStart             bool          `yaml:"auto_start"`
		MinInterval           time.Duration `yaml:"min_interval"`
		MinDisplacementMeters float64       `yaml:"min_displacement_meters"`
		StartTimeout          time.Duration `yaml:"start_timeout"`
		SinkTimeout           time.Duration `yaml:"sink_timeout"`
		RecentEventsLimit     int           `yaml:"recent_events_limit"`
		Workers               int           `yaml:"workers"`    // Side effect workers; more than one may reorder activity log appends
		QueueSize             int           `yaml:"queue_size"` // Pending side effects before Submit blocks
	} `yaml:"monitor"`

	Alerts struct {
		Cooldown   time.Duration `yaml:"cooldown"`
		QuietHours struct {
			Start    string `yaml:"start"` // "HH:MM"
			End      string `yaml:"end"`
			Timezone string `yaml:"timezone"` // IANA name, local time when empty
		} `yaml:"quiet_hours"`
	} `yaml:"alerts"`

	Stores struct {
		ZonesFile       string `yaml:"zones_file"`
		ActivityLogFile string `yaml:"activity_log_file"`
	} `yaml:"stores"`

	Services struct {
		ZoneSync struct {
			Topic   string `yaml:"topic"`
			Enabled bool   `yaml:"enabled"`
			QOS     int    `yaml:"qos"`
		} `yaml:"zone_sync"`

		StatusReporter struct {
			Topic    string        `yaml:"topic"`
			Enabled  bool          `yaml:"enabled"`
			Interval time.Duration `yaml:"interval"`
			QOS      int           `yaml:"qos"`
		} `yaml:"status_reporter"`

		Notifications struct {
			Topic   string `yaml:"topic"`
			Enabled bool   `yaml:"enabled"`
			QOS     int    `yaml:"qos"`
		} `yaml:"notifications"`

		Activity struct {
			Topic   string `yaml:"topic"`
			Enabled bool   `yaml:"enabled"`
			QOS     int    `yaml:"qos"`
		} `yaml:"activity"`
	} `yaml:"services"`

	API struct {
		Enabled bool   `yaml:"enabled"`
		Address string `yaml:"address"`
	} `yaml:"api"`

	Logging struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"` // Rotated log file, stdout only when empty
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"logging"`
}

// LoadConfig loads the YAML configuration from the specified file, applies
// environment overrides and fills defaults.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	var config Config
	err := fileClient.ReadYamlFile(filename, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", filename, err)
	}

	config.ApplyEnv()
	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadEnvFile loads variables from a .env file into the process environment.
// Variables already set are not overwritten and a missing file is ignored.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides secrets from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		c.MQTT.Broker = v
	}
	if v := os.Getenv("MQTT_USERNAME"); v != "" {
		c.MQTT.Username = v
	}
	if v := os.Getenv("MQTT_PASSWORD"); v != "" {
		c.MQTT.Password = v
	}
	if v := os.Getenv("MAPS_API_KEY"); v != "" {
		c.Location.MapsAPIKey = v
	}
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "safezone-agent"
	}
	if c.Identity.DeviceFile == "" {
		c.Identity.DeviceFile = "data/device.json"
	}

	if c.Location.Provider == "" {
		c.Location.Provider = constants.ProviderSensor
	}
	if c.Location.GPSDevicePort == "" {
		c.Location.GPSDevicePort = "/dev/ttyUSB0"
	}
	if c.Location.GPSDeviceBaudRate == 0 {
		c.Location.GPSDeviceBaudRate = 9600
	}

	if c.Monitor.MinInterval == 0 {
		c.Monitor.MinInterval = constants.DefaultMinInterval
	}
	if c.Monitor.MinDisplacementMeters == 0 {
		c.Monitor.MinDisplacementMeters = constants.DefaultMinDisplacementMeters
	}
	if c.Monitor.StartTimeout == 0 {
		c.Monitor.StartTimeout = constants.DefaultStartTimeout
	}
	if c.Monitor.SinkTimeout == 0 {
		c.Monitor.SinkTimeout = constants.DefaultSinkTimeout
	}
	if c.Monitor.RecentEventsLimit == 0 {
		c.Monitor.RecentEventsLimit = constants.DefaultRecentEventsLimit
	}
	if c.Monitor.Workers == 0 {
		c.Monitor.Workers = 1
	}
	if c.Monitor.QueueSize == 0 {
		c.Monitor.QueueSize = 64
	}

	if c.Alerts.Cooldown == 0 {
		c.Alerts.Cooldown = constants.DefaultAlertCooldown
	}

	if c.Stores.ZonesFile == "" {
		c.Stores.ZonesFile = "data/safezones.yaml"
	}
	if c.Stores.ActivityLogFile == "" {
		c.Stores.ActivityLogFile = "data/activity.jsonl"
	}

	if c.Services.StatusReporter.Interval == 0 {
		c.Services.StatusReporter.Interval = constants.DefaultStatusInterval
	}

	if c.API.Address == "" {
		c.API.Address = "127.0.0.1:8080"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = 10
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = 3
	}
	if c.Logging.MaxAgeDays == 0 {
		c.Logging.MaxAgeDays = 28
	}
}

// Validate rejects settings the agent cannot run with.
func (c *Config) Validate() error {
	switch c.Location.Provider {
	case constants.ProviderSensor, constants.ProviderGoogle:
	default:
		return fmt.Errorf("unknown location provider %q", c.Location.Provider)
	}
	if c.MQTT.Broker == "" && (c.Services.ZoneSync.Enabled || c.Services.StatusReporter.Enabled ||
		c.Services.Notifications.Enabled || c.Services.Activity.Enabled) {
		return fmt.Errorf("mqtt broker is required when MQTT services are enabled")
	}
	return nil
}

// QuietHoursLocation resolves the configured quiet hours timezone.
func (c *Config) QuietHoursLocation() (*time.Location, error) {
	if c.Alerts.QuietHours.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Alerts.QuietHours.Timezone)
}

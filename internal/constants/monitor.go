package constants

import "time"

const (
	// DefaultMinInterval is the minimum time between two location updates delivered to the monitor.
	DefaultMinInterval = 30 * time.Second

	// DefaultMinDisplacementMeters suppresses updates that moved less than this distance.
	DefaultMinDisplacementMeters = 50.0

	// DefaultStartTimeout bounds the initial location fix when monitoring starts.
	DefaultStartTimeout = 30 * time.Second

	// DefaultRecentEventsLimit is the size of the in-memory recent events list.
	DefaultRecentEventsLimit = 50

	// DefaultAlertCooldown is the minimum time between two notifications for the same zone and event type.
	DefaultAlertCooldown = 5 * time.Minute

	// DefaultStatusInterval is how often the status reporter publishes.
	DefaultStatusInterval = 60 * time.Second

	// DefaultSinkTimeout bounds a single notification or activity log call.
	DefaultSinkTimeout = 10 * time.Second
)

// Notification priorities
const (
	PriorityHigh    = "high"
	PriorityDefault = "default"
)

// Location provider kinds accepted in configuration
const (
	ProviderSensor = "sensor"
	ProviderGoogle = "google"
)

package models

import "time"

// EventType identifies the direction of a zone transition.
type EventType string

const (
	EventTypeEntry EventType = "entry"
	EventTypeExit  EventType = "exit"
)

// SafeZoneEvent records a single entry into or exit from a safe zone.
type SafeZoneEvent struct {
	ID        string         `json:"id"`
	ZoneID    string         `json:"zone_id"`
	ZoneName  string         `json:"zone_name"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Location  LocationSample `json:"location"`
}

// ActivityRecord is the payload persisted or published for each event.
type ActivityRecord struct {
	DeviceID string        `json:"device_id"`
	Event    SafeZoneEvent `json:"event"`
}

package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidZone is returned when a safe zone fails shape validation.
var ErrInvalidZone = errors.New("invalid safe zone")

// ZoneNotifications gates which transitions of a zone notify the parent.
type ZoneNotifications struct {
	OnEntry bool `json:"on_entry" yaml:"on_entry"`
	OnExit  bool `json:"on_exit" yaml:"on_exit"`
}

// SafeZone is a parent-configured circular geofence.
type SafeZone struct {
	ID            string            `json:"id" yaml:"id"`
	Name          string            `json:"name" yaml:"name"`
	Center        Coordinate        `json:"center" yaml:"center"`
	Radius        float64           `json:"radius" yaml:"radius"` // meters
	IsActive      bool              `json:"is_active" yaml:"is_active"`
	Notifications ZoneNotifications `json:"notifications" yaml:"notifications"`
}

// Validate checks the zone shape. The returned error wraps ErrInvalidZone.
func (z SafeZone) Validate() error {
	switch {
	case strings.TrimSpace(z.ID) == "":
		return fmt.Errorf("%w: missing id", ErrInvalidZone)
	case strings.TrimSpace(z.Name) == "":
		return fmt.Errorf("%w: zone %s has no name", ErrInvalidZone, z.ID)
	case !validLatitude(z.Center.Latitude) || !validLongitude(z.Center.Longitude):
		return fmt.Errorf("%w: zone %s has invalid center (%f, %f)", ErrInvalidZone, z.ID, z.Center.Latitude, z.Center.Longitude)
	case math.IsNaN(z.Radius) || math.IsInf(z.Radius, 0) || z.Radius <= 0:
		return fmt.Errorf("%w: zone %s has non-positive radius %f", ErrInvalidZone, z.ID, z.Radius)
	}
	return nil
}

// NotifiesOn reports whether the zone wants a notification for the given transition.
func (z SafeZone) NotifiesOn(eventType EventType) bool {
	switch eventType {
	case EventTypeEntry:
		return z.Notifications.OnEntry
	case EventTypeExit:
		return z.Notifications.OnExit
	}
	return false
}

func validLatitude(lat float64) bool {
	return !math.IsNaN(lat) && lat >= -90 && lat <= 90
}

func validLongitude(lon float64) bool {
	return !math.IsNaN(lon) && lon >= -180 && lon <= 180
}

// Settings holds the global safe-zone preferences.
type Settings struct {
	SafeZoneAlerts bool `json:"safe_zone_alerts" yaml:"safe_zone_alerts"`
}

// ZoneDocument is the persisted form of the parent's zone configuration.
type ZoneDocument struct {
	Settings Settings   `json:"settings" yaml:"settings"`
	Zones    []SafeZone `json:"zones" yaml:"zones"`
}

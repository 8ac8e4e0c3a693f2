package models

import "time"

// SafeZoneStatus is the aggregate view of the device against all active zones.
type SafeZoneStatus struct {
	TotalActive     int            `json:"total_active"`
	Inside          []SafeZone     `json:"inside"`
	Outside         []SafeZone     `json:"outside"`
	CurrentLocation LocationSample `json:"current_location"`
}

// StatusReport is published periodically for the parent dashboard.
type StatusReport struct {
	DeviceID   string          `json:"device_id"`
	Timestamp  time.Time       `json:"timestamp"`
	Monitoring bool            `json:"monitoring"`
	Status     *SafeZoneStatus `json:"status,omitempty"`
}

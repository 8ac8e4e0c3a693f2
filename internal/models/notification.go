package models

import "time"

// Notification is a user-facing alert handed to a notification sink.
type Notification struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Priority string `json:"priority,omitempty"`
}

// NotificationMessage is the wire form of a notification sent to the parent app.
type NotificationMessage struct {
	DeviceID     string    `json:"device_id"`
	Timestamp    time.Time `json:"timestamp"`
	Notification
}

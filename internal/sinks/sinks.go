package sinks

import (
	"context"
	"errors"

	"github.com/benmeehan/safezone-agent/internal/models"
)

// ErrPersistence wraps every failure to record an event in an activity log.
var ErrPersistence = errors.New("activity log persistence failure")

// NotificationSink displays a user-facing alert.
type NotificationSink interface {
	Show(ctx context.Context, n models.Notification) error
}

// ActivityLog records safe-zone events for the parent dashboard.
type ActivityLog interface {
	Append(ctx context.Context, event models.SafeZoneEvent) error
}

// MultiNotificationSink shows a notification on every sink and joins their errors.
type MultiNotificationSink []NotificationSink

func (m MultiNotificationSink) Show(ctx context.Context, n models.Notification) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Show(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MultiActivityLog appends to every log and joins their errors.
type MultiActivityLog []ActivityLog

func (m MultiActivityLog) Append(ctx context.Context, event models.SafeZoneEvent) error {
	var errs []error
	for _, log := range m {
		if err := log.Append(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

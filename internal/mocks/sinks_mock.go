package mocks

import (
	"context"

	"github.com/benmeehan/safezone-agent/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockNotificationSink is a mock implementation of the sinks.NotificationSink interface
type MockNotificationSink struct {
	mock.Mock
}

func (m *MockNotificationSink) Show(ctx context.Context, n models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// MockActivityLog is a mock implementation of the sinks.ActivityLog interface
type MockActivityLog struct {
	mock.Mock
}

func (m *MockActivityLog) Append(ctx context.Context, event models.SafeZoneEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

package mocks

import (
	"context"

	"github.com/benmeehan/safezone-agent/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockMonitor is a mock of the safe zone monitor as seen by services and the API
type MockMonitor struct {
	mock.Mock
}

func (m *MockMonitor) Start(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockMonitor) Stop() {
	m.Called()
}

func (m *MockMonitor) IsMonitoring() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockMonitor) GetCurrentStatus() *models.SafeZoneStatus {
	args := m.Called()
	status, _ := args.Get(0).(*models.SafeZoneStatus)
	return status
}

func (m *MockMonitor) GetRecentEvents() []models.SafeZoneEvent {
	args := m.Called()
	events, _ := args.Get(0).([]models.SafeZoneEvent)
	return events
}

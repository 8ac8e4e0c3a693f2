package mocks

import (
	"github.com/benmeehan/safezone-agent/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockZoneStore is a mock implementation of the stores.ZoneStore interface
type MockZoneStore struct {
	mock.Mock
}

func (m *MockZoneStore) GetSafeZones() ([]models.SafeZone, error) {
	args := m.Called()
	zones, _ := args.Get(0).([]models.SafeZone)
	return zones, args.Error(1)
}

func (m *MockZoneStore) GetSettings() (models.Settings, error) {
	args := m.Called()
	return args.Get(0).(models.Settings), args.Error(1)
}

// MockZoneWriter is a mock implementation of the services.ZoneWriter interface
type MockZoneWriter struct {
	mock.Mock
}

func (m *MockZoneWriter) Save(doc models.ZoneDocument) error {
	args := m.Called(doc)
	return args.Error(0)
}

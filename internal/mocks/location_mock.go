package mocks

import (
	"context"

	"github.com/benmeehan/safezone-agent/internal/models"
	"github.com/benmeehan/safezone-agent/pkg/location"
	"github.com/stretchr/testify/mock"
)

// MockLocationProvider is a mock implementation of the location.Provider interface
type MockLocationProvider struct {
	mock.Mock
}

func (m *MockLocationProvider) RequestPermission(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockLocationProvider) GetCurrentLocation(ctx context.Context) (models.LocationSample, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.LocationSample), args.Error(1)
}

func (m *MockLocationProvider) Subscribe(opts location.SubscribeOptions, onUpdate func(models.LocationSample), onError func(error)) (location.Subscription, error) {
	args := m.Called(opts, onUpdate, onError)
	sub, _ := args.Get(0).(location.Subscription)
	return sub, args.Error(1)
}

// MockSubscription is a mock implementation of the location.Subscription interface
type MockSubscription struct {
	mock.Mock
}

func (m *MockSubscription) Remove() {
	m.Called()
}

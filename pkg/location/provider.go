package location

import (
	"context"
	"errors"
	"time"

	"github.com/benmeehan/safezone-agent/internal/models"
)

var (
	// ErrPermissionDenied is returned when the device refuses access to its location source.
	ErrPermissionDenied = errors.New("location permission denied")

	// ErrLocationUnavailable is returned when no fix could be produced.
	ErrLocationUnavailable = errors.New("location unavailable")
)

// SubscribeOptions bounds how often a subscription delivers updates.
type SubscribeOptions struct {
	MinInterval           time.Duration
	MinDisplacementMeters float64
}

// Subscription is a live stream of location updates.
type Subscription interface {
	// Remove cancels delivery. No callback runs after Remove returns.
	// It must not be called from inside a callback of the same subscription.
	Remove()
}

// Provider interface defines the methods for location providers.
// Subscribe must deliver callbacks from its own goroutine, never from inside Subscribe.
type Provider interface {
	RequestPermission(ctx context.Context) error
	GetCurrentLocation(ctx context.Context) (models.LocationSample, error)
	Subscribe(opts SubscribeOptions, onUpdate func(models.LocationSample), onError func(error)) (Subscription, error)
}

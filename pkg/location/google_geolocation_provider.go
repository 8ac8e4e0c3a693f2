package location

import (
	"context"
	"fmt"
	"time"

	"github.com/benmeehan/safezone-agent/internal/models"
	"googlemaps.github.io/maps"
)

// Geolocator is the part of the Maps client used for geolocation requests.
type Geolocator interface {
	Geolocate(ctx context.Context, r *maps.GeolocationRequest) (*maps.GeolocationResult, error)
}

// GoogleGeolocationProvider uses the Google Maps API to get location data.
type GoogleGeolocationProvider struct {
	client     Geolocator // nil when no API key is configured
	modemIndex int
	now        func() time.Time

	wifiScanner func(ctx context.Context) ([]maps.WiFiAccessPoint, error)
	cellScanner func(ctx context.Context, modemIndex int) ([]maps.CellTower, error)
}

// NewGoogleGeolocationProvider creates a new GoogleGeolocationProvider instance.
// An empty API key yields a provider whose permission request is denied.
func NewGoogleGeolocationProvider(apiKey string, modemIndex int) (*GoogleGeolocationProvider, error) {
	g := &GoogleGeolocationProvider{
		modemIndex:  modemIndex,
		now:         time.Now,
		wifiScanner: getWiFiAccessPoints,
		cellScanner: getCellTowers,
	}
	if apiKey == "" {
		return g, nil
	}

	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	g.client = c

	return g, nil
}

// RequestPermission fails when the provider has no API credentials.
func (g *GoogleGeolocationProvider) RequestPermission(ctx context.Context) error {
	if g.client == nil {
		return fmt.Errorf("%w: maps API key not configured", ErrPermissionDenied)
	}
	return nil
}

// GetCurrentLocation retrieves the device's location using Google Maps Geolocation API.
// Wi-Fi and cell tower data are optional; the API falls back to IP geolocation.
func (g *GoogleGeolocationProvider) GetCurrentLocation(ctx context.Context) (models.LocationSample, error) {
	if g.client == nil {
		return models.LocationSample{}, fmt.Errorf("%w: maps API key not configured", ErrPermissionDenied)
	}

	req := &maps.GeolocationRequest{ConsiderIP: true}

	if wifiAPs, err := g.wifiScanner(ctx); err == nil {
		req.WiFiAccessPoints = wifiAPs
	}
	if cellTowers, err := g.cellScanner(ctx, g.modemIndex); err == nil {
		req.CellTowers = cellTowers
	}

	resp, err := g.client.Geolocate(ctx, req)
	if err != nil {
		return models.LocationSample{}, fmt.Errorf("%w: %v", ErrLocationUnavailable, err)
	}

	return models.LocationSample{
		Timestamp: g.now(),
		Latitude:  resp.Location.Lat,
		Longitude: resp.Location.Lng,
		Accuracy:  resp.Accuracy,
	}, nil
}

// Subscribe polls the Geolocation API at the requested interval.
func (g *GoogleGeolocationProvider) Subscribe(opts SubscribeOptions, onUpdate func(models.LocationSample), onError func(error)) (Subscription, error) {
	if g.client == nil {
		return nil, fmt.Errorf("%w: maps API key not configured", ErrPermissionDenied)
	}
	return NewPollingSubscription(opts, g.GetCurrentLocation, onUpdate, onError), nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benmeehan/safezone-agent/internal/constants"
	"github.com/benmeehan/safezone-agent/internal/models"
	"github.com/benmeehan/safezone-agent/internal/sinks"
	"github.com/benmeehan/safezone-agent/internal/stores"
	"github.com/benmeehan/safezone-agent/pkg/geo"
	"github.com/benmeehan/safezone-agent/pkg/location"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TaskRunner executes side effects off the sample handling path.
type TaskRunner interface {
	Submit(task func())
}

// MonitorOptions tunes the monitor. Zero values fall back to the defaults in constants.
type MonitorOptions struct {
	MinInterval           time.Duration
	MinDisplacementMeters float64
	StartTimeout          time.Duration
	SinkTimeout           time.Duration
	RecentEventsLimit     int
}

func (o MonitorOptions) withDefaults() MonitorOptions {
	if o.MinInterval <= 0 {
		o.MinInterval = constants.DefaultMinInterval
	}
	if o.MinDisplacementMeters <= 0 {
		o.MinDisplacementMeters = constants.DefaultMinDisplacementMeters
	}
	if o.StartTimeout <= 0 {
		o.StartTimeout = constants.DefaultStartTimeout
	}
	if o.SinkTimeout <= 0 {
		o.SinkTimeout = constants.DefaultSinkTimeout
	}
	if o.RecentEventsLimit <= 0 {
		o.RecentEventsLimit = constants.DefaultRecentEventsLimit
	}
	return o
}

// zoneMembership is the last known inside/outside state of one zone, together
// with the geometry it was computed against.
type zoneMembership struct {
	inside bool
	center models.Coordinate
	radius float64
}

// SafeZoneMonitor tracks the device against the configured safe zones and
// emits exactly one event per boundary crossing.
type SafeZoneMonitor struct {
	// Dependencies
	provider    location.Provider
	zoneStore   stores.ZoneStore
	notifier    sinks.NotificationSink
	activityLog sinks.ActivityLog
	alertPolicy *AlertPolicy
	runner      TaskRunner
	logger      zerolog.Logger
	opts        MonitorOptions
	newEventID  func() string

	// Internal state, guarded by mu
	mu                  sync.Mutex
	monitoring          bool
	generation          uint64
	subscription        location.Subscription
	membership          map[string]zoneMembership
	trackedZones        []models.SafeZone
	recentEvents        []models.SafeZoneEvent
	lastLocation        *models.LocationSample
	settings            models.Settings
	permissionAlertSent bool
}

// NewSafeZoneMonitor creates a stopped monitor.
func NewSafeZoneMonitor(provider location.Provider, zoneStore stores.ZoneStore, notifier sinks.NotificationSink,
	activityLog sinks.ActivityLog, alertPolicy *AlertPolicy, runner TaskRunner, logger zerolog.Logger, opts MonitorOptions) *SafeZoneMonitor {
	return &SafeZoneMonitor{
		provider:    provider,
		zoneStore:   zoneStore,
		notifier:    notifier,
		activityLog: activityLog,
		alertPolicy: alertPolicy,
		runner:      runner,
		logger:      logger,
		opts:        opts.withDefaults(),
		newEventID:  func() string { return uuid.New().String() },
		membership:  make(map[string]zoneMembership),
		settings:    models.Settings{SafeZoneAlerts: true},
	}
}

// Start acquires permission and an initial fix, records the baseline
// membership and subscribes to location updates. Starting an already running
// monitor is a no-op.
func (m *SafeZoneMonitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.monitoring {
		m.logger.Debug().Msg("SafeZoneMonitor is already running")
		return nil
	}

	// permission and the first fix share one deadline
	startCtx, cancel := context.WithTimeout(ctx, m.opts.StartTimeout)
	defer cancel()

	if err := m.provider.RequestPermission(startCtx); err != nil {
		return m.startFailed(err)
	}

	sample, err := m.provider.GetCurrentLocation(startCtx)
	if err != nil {
		if !errors.Is(err, location.ErrPermissionDenied) && !errors.Is(err, location.ErrLocationUnavailable) {
			err = fmt.Errorf("%w: %v", location.ErrLocationUnavailable, err)
		}
		return m.startFailed(err)
	}

	// unreadable zones start monitoring with none tracked; the next sample retries
	zones, err := m.zoneStore.GetSafeZones()
	if err != nil {
		m.logger.Error().Err(err).Msg("Failed to load safe zones, starting with none tracked")
		zones = nil
	}
	if settings, err := m.zoneStore.GetSettings(); err == nil {
		m.settings = settings
	} else {
		m.logger.Warn().Err(err).Msg("Failed to load safe zone settings, keeping previous values")
	}

	// the baseline never emits events
	m.membership = make(map[string]zoneMembership)
	m.trackedZones = m.trackableZones(zones)
	for _, zone := range m.trackedZones {
		m.membership[zone.ID] = membershipFor(zone, sample)
	}
	m.lastLocation = &sample

	m.generation++
	generation := m.generation
	sub, err := m.provider.Subscribe(
		location.SubscribeOptions{
			MinInterval:           m.opts.MinInterval,
			MinDisplacementMeters: m.opts.MinDisplacementMeters,
		},
		func(s models.LocationSample) { m.handleSample(generation, s) },
		func(err error) { m.handleSubscriptionError(generation, err) },
	)
	if err != nil {
		return m.startFailed(fmt.Errorf("failed to subscribe to location updates: %w", err))
	}

	m.subscription = sub
	m.monitoring = true

	m.logger.Info().
		Int("tracked_zones", len(m.trackedZones)).
		Dur("min_interval", m.opts.MinInterval).
		Float64("min_displacement_m", m.opts.MinDisplacementMeters).
		Msg("SafeZoneMonitor started")
	return nil
}

// startFailed logs a start failure and, for permission errors, notifies the user once.
// Must be called with mu held.
func (m *SafeZoneMonitor) startFailed(err error) error {
	m.logger.Error().Err(err).Msg("Failed to start SafeZoneMonitor")

	if errors.Is(err, location.ErrPermissionDenied) && !m.permissionAlertSent {
		m.permissionAlertSent = true
		m.dispatchNotification(models.Notification{
			Title:    "Location access required",
			Body:     "Location access is required to monitor safe zones. Enable it in the device settings and start monitoring again.",
			Priority: constants.PriorityHigh,
		})
	}

	return fmt.Errorf("failed to start safe zone monitoring: %w", err)
}

// Stop cancels the location subscription. Membership and recent events are kept.
// No sample is processed after Stop returns.
func (m *SafeZoneMonitor) Stop() {
	m.mu.Lock()
	if !m.monitoring {
		m.mu.Unlock()
		return
	}
	sub := m.subscription
	m.subscription = nil
	m.monitoring = false
	m.generation++
	m.mu.Unlock()

	// outside the lock: Remove waits for an in-flight callback, which needs mu
	sub.Remove()

	m.logger.Info().Msg("SafeZoneMonitor stopped")
}

// IsMonitoring reports whether a subscription is active.
func (m *SafeZoneMonitor) IsMonitoring() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.monitoring
}

// GetCurrentStatus partitions the tracked zones by membership. It returns nil
// until a location has been obtained.
func (m *SafeZoneMonitor) GetCurrentStatus() *models.SafeZoneStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lastLocation == nil {
		return nil
	}

	status := &models.SafeZoneStatus{
		TotalActive:     len(m.trackedZones),
		Inside:          []models.SafeZone{},
		Outside:         []models.SafeZone{},
		CurrentLocation: *m.lastLocation,
	}
	for _, zone := range m.trackedZones {
		if m.membership[zone.ID].inside {
			status.Inside = append(status.Inside, zone)
		} else {
			status.Outside = append(status.Outside, zone)
		}
	}
	return status
}

// GetRecentEvents returns a copy of the recent events, newest first.
func (m *SafeZoneMonitor) GetRecentEvents() []models.SafeZoneEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	events := make([]models.SafeZoneEvent, len(m.recentEvents))
	copy(events, m.recentEvents)
	return events
}

// handleSample is the subscription callback. Samples from a previous
// subscription, or arriving after Stop, are ignored.
func (m *SafeZoneMonitor) handleSample(generation uint64, sample models.LocationSample) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.monitoring || generation != m.generation {
		return
	}

	if m.lastLocation != nil && sample.Timestamp.Before(m.lastLocation.Timestamp) {
		m.logger.Debug().
			Time("sample_time", sample.Timestamp).
			Time("last_time", m.lastLocation.Timestamp).
			Msg("Dropping out-of-order location sample")
		return
	}

	zones, err := m.zoneStore.GetSafeZones()
	if err != nil {
		m.logger.Error().Err(err).Msg("Failed to load safe zones, skipping sample")
		return
	}
	if settings, err := m.zoneStore.GetSettings(); err == nil {
		m.settings = settings
	} else {
		m.logger.Warn().Err(err).Msg("Failed to load safe zone settings, keeping previous values")
	}

	transitions := m.evaluate(zones, sample)
	m.lastLocation = &sample

	for _, t := range transitions {
		m.recordEvent(t.zone, t.eventType, sample)
	}
}

func (m *SafeZoneMonitor) handleSubscriptionError(generation uint64, err error) {
	m.mu.Lock()
	current := m.monitoring && generation == m.generation
	m.mu.Unlock()

	if current {
		m.logger.Warn().Err(err).Msg("Location update failed, waiting for the next sample")
	}
}

type zoneTransition struct {
	zone      models.SafeZone
	eventType models.EventType
}

// evaluate updates membership for every trackable zone and returns the
// transitions. A zone seen for the first time, or whose geometry changed, is
// baselined without a transition. Must be called with mu held.
func (m *SafeZoneMonitor) evaluate(zones []models.SafeZone, sample models.LocationSample) []zoneTransition {
	tracked := m.trackableZones(zones)
	seen := make(map[string]struct{}, len(tracked))

	var transitions []zoneTransition
	for _, zone := range tracked {
		seen[zone.ID] = struct{}{}

		current := membershipFor(zone, sample)
		previous, known := m.membership[zone.ID]
		m.membership[zone.ID] = current

		if !known || previous.center != current.center || previous.radius != current.radius {
			continue
		}

		switch {
		case current.inside && !previous.inside:
			transitions = append(transitions, zoneTransition{zone: zone, eventType: models.EventTypeEntry})
		case !current.inside && previous.inside:
			transitions = append(transitions, zoneTransition{zone: zone, eventType: models.EventTypeExit})
		}
	}

	configured := make(map[string]struct{}, len(zones))
	for _, zone := range zones {
		configured[zone.ID] = struct{}{}
	}

	for id := range m.membership {
		if _, ok := seen[id]; !ok {
			delete(m.membership, id)
		}
	}
	// an inactive or invalid zone keeps its cooldown; only a deleted zone forgets it
	m.alertPolicy.Retain(configured)
	m.trackedZones = tracked

	return transitions
}

// trackableZones filters out inactive, invalid and duplicate zones.
func (m *SafeZoneMonitor) trackableZones(zones []models.SafeZone) []models.SafeZone {
	tracked := make([]models.SafeZone, 0, len(zones))
	ids := make(map[string]struct{}, len(zones))

	for _, zone := range zones {
		if !zone.IsActive {
			continue
		}
		if err := zone.Validate(); err != nil {
			m.logger.Warn().Err(err).Str("zone_id", zone.ID).Msg("Skipping invalid safe zone")
			continue
		}
		if _, dup := ids[zone.ID]; dup {
			m.logger.Warn().Str("zone_id", zone.ID).Msg("Skipping duplicate safe zone id")
			continue
		}
		ids[zone.ID] = struct{}{}
		tracked = append(tracked, zone)
	}
	return tracked
}

func membershipFor(zone models.SafeZone, sample models.LocationSample) zoneMembership {
	return zoneMembership{
		inside: geo.IsInside(sample.Coordinate(), zone),
		center: zone.Center,
		radius: zone.Radius,
	}
}

// recordEvent stores the event, appends it to the activity log and, when every
// gate passes, notifies the parent. Must be called with mu held.
func (m *SafeZoneMonitor) recordEvent(zone models.SafeZone, eventType models.EventType, sample models.LocationSample) {
	event := models.SafeZoneEvent{
		ID:        m.newEventID(),
		ZoneID:    zone.ID,
		ZoneName:  zone.Name,
		Type:      eventType,
		Timestamp: sample.Timestamp,
		Location:  sample,
	}

	m.recentEvents = append([]models.SafeZoneEvent{event}, m.recentEvents...)
	if len(m.recentEvents) > m.opts.RecentEventsLimit {
		m.recentEvents = m.recentEvents[:m.opts.RecentEventsLimit]
	}

	m.logger.Info().
		Str("event_id", event.ID).
		Str("zone_id", zone.ID).
		Str("type", string(eventType)).
		Msg("Safe zone transition")

	m.runner.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), m.opts.SinkTimeout)
		defer cancel()

		if err := m.activityLog.Append(ctx, event); err != nil {
			m.logger.Error().Err(err).Str("event_id", event.ID).Msg("Failed to append safe zone event to activity log")
		}
	})

	if m.shouldNotify(zone, event) {
		m.dispatchNotification(notificationFor(event))
	}
}

// shouldNotify applies the global switch, the zone flag and the alert policy, in that order.
func (m *SafeZoneMonitor) shouldNotify(zone models.SafeZone, event models.SafeZoneEvent) bool {
	if !m.settings.SafeZoneAlerts || !zone.NotifiesOn(event.Type) {
		return false
	}
	return m.alertPolicy.Allow(event)
}

func (m *SafeZoneMonitor) dispatchNotification(n models.Notification) {
	m.runner.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), m.opts.SinkTimeout)
		defer cancel()

		if err := m.notifier.Show(ctx, n); err != nil {
			m.logger.Error().Err(err).Str("title", n.Title).Msg("Failed to show notification")
		}
	})
}

func notificationFor(event models.SafeZoneEvent) models.Notification {
	at := event.Timestamp.Format("15:04")
	if event.Type == models.EventTypeExit {
		return models.Notification{
			Title:    "Left " + event.ZoneName,
			Body:     fmt.Sprintf("Left the %s safe zone at %s.", event.ZoneName, at),
			Priority: constants.PriorityHigh,
		}
	}
	return models.Notification{
		Title:    "Arrived at " + event.ZoneName,
		Body:     fmt.Sprintf("Arrived at the %s safe zone at %s.", event.ZoneName, at),
		Priority: constants.PriorityDefault,
	}
}

package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/benmeehan/safezone-agent/internal/models"
	cmap "github.com/orcaman/concurrent-map/v2"
)

// QuietHours is a daily time-of-day window during which no notification is sent.
// A window whose start is after its end wraps past midnight.
type QuietHours struct {
	Start    time.Duration // offset from midnight
	End      time.Duration
	Location *time.Location
}

// ParseQuietHours parses "HH:MM" bounds. Two empty strings mean no quiet hours.
func ParseQuietHours(start, end string, loc *time.Location) (*QuietHours, error) {
	if start == "" && end == "" {
		return nil, nil
	}

	s, err := parseClock(start)
	if err != nil {
		return nil, fmt.Errorf("invalid quiet hours start: %w", err)
	}
	e, err := parseClock(end)
	if err != nil {
		return nil, fmt.Errorf("invalid quiet hours end: %w", err)
	}
	if loc == nil {
		loc = time.Local
	}

	return &QuietHours{Start: s, End: e, Location: loc}, nil
}

func parseClock(value string) (time.Duration, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// Contains reports whether t falls inside the window. A nil or empty window contains nothing.
func (q *QuietHours) Contains(t time.Time) bool {
	if q == nil || q.Start == q.End {
		return false
	}
	if q.Location != nil {
		t = t.In(q.Location)
	}

	clock := time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second

	if q.Start < q.End {
		return clock >= q.Start && clock < q.End
	}
	return clock >= q.Start || clock < q.End
}

// AlertPolicy decides whether a zone event may produce a notification.
// Events and activity log entries are recorded regardless.
type AlertPolicy struct {
	cooldown     time.Duration
	quietHours   *QuietHours
	lastNotified cmap.ConcurrentMap[string, time.Time]
}

// NewAlertPolicy creates a policy with a per zone and event type cooldown and optional quiet hours.
func NewAlertPolicy(cooldown time.Duration, quietHours *QuietHours) *AlertPolicy {
	return &AlertPolicy{
		cooldown:     cooldown,
		quietHours:   quietHours,
		lastNotified: cmap.New[time.Time](),
	}
}

// Allow returns true when the event is outside quiet hours and its cooldown has elapsed.
// An allowed event starts a new cooldown window for its key.
func (p *AlertPolicy) Allow(event models.SafeZoneEvent) bool {
	if p.quietHours.Contains(event.Timestamp) {
		return false
	}

	allowed := true
	p.lastNotified.Upsert(cooldownKey(event), event.Timestamp, func(exists bool, last, now time.Time) time.Time {
		if exists && now.Sub(last) < p.cooldown {
			allowed = false
			return last
		}
		return now
	})
	return allowed
}

// Retain forgets the cooldown state of every zone not in zoneIDs.
func (p *AlertPolicy) Retain(zoneIDs map[string]struct{}) {
	for _, key := range p.lastNotified.Keys() {
		i := strings.LastIndex(key, "|")
		if i < 0 {
			continue
		}
		if _, ok := zoneIDs[key[:i]]; !ok {
			p.lastNotified.Remove(key)
		}
	}
}

func cooldownKey(event models.SafeZoneEvent) string {
	return event.ZoneID + "|" + string(event.Type)
}

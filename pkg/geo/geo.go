package geo

import (
	"math"

	"github.com/benmeehan/safezone-agent/internal/models"
)

// EarthRadiusMeters is the mean earth radius used by the haversine formula.
const EarthRadiusMeters = 6371000

// Distance returns the great-circle distance in meters between two coordinates.
// Inputs are not bounds-checked.
func Distance(a, b models.Coordinate) float64 {
	dLat := toRad(b.Latitude - a.Latitude)
	dLon := toRad(b.Longitude - a.Longitude)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Latitude))*math.Cos(toRad(b.Latitude))*math.Sin(dLon/2)*math.Sin(dLon/2)
	// rounding can push h slightly past 1 for antipodal points
	h = math.Min(1, math.Max(0, h))
	return EarthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// IsInside reports whether point lies within the zone. The boundary is inclusive.
func IsInside(point models.Coordinate, zone models.SafeZone) bool {
	return Distance(point, zone.Center) <= zone.Radius
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

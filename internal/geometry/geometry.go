// Package geometry converts a pair of geographic positions and an own
// heading into a relative bearing and a 1-12 clock position.
package geometry

import "math"

// EarthRadiusNM is the mean Earth radius in nautical miles.
const EarthRadiusNM = 3440.065

// InitialBearing returns the great-circle initial bearing (forward azimuth)
// from point 1 to point 2 in degrees, normalized to [0, 360).
func InitialBearing(lat1, lon1, lat2, lon2 float64) float64 {
	fLat := toRadians(lat1)
	fLon := toRadians(lon1)
	tLat := toRadians(lat2)
	tLon := toRadians(lon2)

	dLon := tLon - fLon

	y := math.Sin(dLon) * math.Cos(tLat)
	x := math.Cos(fLat)*math.Sin(tLat) - math.Sin(fLat)*math.Cos(tLat)*math.Cos(dLon)

	// Atan2 ranges from -180 to +180
	return NormalizeDegrees(toDegrees(math.Atan2(y, x)))
}

// RelativeBearing returns the bearing from point 1 to point 2 relative to
// ownHeading, in degrees normalized to [0, 360).
func RelativeBearing(lat1, lon1, lat2, lon2, ownHeading float64) float64 {
	return NormalizeDegrees(InitialBearing(lat1, lon1, lat2, lon2) - ownHeading + 360)
}

// ClockPosition quantizes a relative bearing to the nearest hour on a clock
// face, where 12 is straight ahead. The result is always in [1, 12]; a
// bearing that is not finite reads as 12.
func ClockPosition(relativeBearing float64) int {
	if math.IsNaN(relativeBearing) || math.IsInf(relativeBearing, 0) {
		return 12
	}
	hour := int(math.Round(NormalizeDegrees(relativeBearing) / 30))
	if hour == 0 {
		return 12
	}
	return hour
}

// Destination returns the point reached by travelling distanceNM nautical
// miles from lat, lon along the great circle with the given initial
// bearing. Longitude is wrapped to [-180, 180).
func Destination(lat, lon, bearing, distanceNM float64) (float64, float64) {
	d := distanceNM / EarthRadiusNM
	b := toRadians(bearing)
	fLat := toRadians(lat)
	fLon := toRadians(lon)

	tLat := math.Asin(math.Sin(fLat)*math.Cos(d) + math.Cos(fLat)*math.Sin(d)*math.Cos(b))
	tLon := fLon + math.Atan2(math.Sin(b)*math.Sin(d)*math.Cos(fLat),
		math.Cos(d)-math.Sin(fLat)*math.Sin(tLat))

	return toDegrees(tLat), NormalizeDegrees(toDegrees(tLon)+180) - 180
}

// NormalizeDegrees maps any angle into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	// tiny negatives round up to 360 after the addition, and -0 stays -0
	if deg >= 360 || deg == 0 {
		return 0
	}
	return deg
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

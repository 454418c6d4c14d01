// Package decay implements the pure weighting functions used by the safety
// score calculators. No I/O happens here.
package decay

import "math"

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371e3

// TimeDecay returns 0.5^(daysOld/halfLifeDays): 1.0 for an event today,
// halved every halfLifeDays. It performs no bounds filtering; callers must
// exclude future-dated or stale events before calling.
func TimeDecay(daysOld, halfLifeDays float64) float64 {
	return math.Pow(0.5, daysOld/halfLifeDays)
}

// DistanceDecay returns exp(-k*meters), a continuous, strictly decreasing
// factor in (0,1]. A continuous curve is used instead of distance buckets so
// a one-meter change near a boundary cannot flip the score.
func DistanceDecay(meters, k float64) float64 {
	return math.Exp(-k * meters)
}

// HaversineMeters computes the great-circle distance in meters between two
// WGS84 coordinates.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

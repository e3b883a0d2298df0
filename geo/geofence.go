// Package geo classifies whether a submitted GPS reading is close enough to
// a checkpoint to count as a visit.
package geo

import "math"

const (
	// EarthRadiusMeters is the mean Earth radius used for great-circle math.
	EarthRadiusMeters = 6371000.0

	// DefaultThresholdMeters absorbs consumer GPS error while still
	// rejecting check-ins from across the street.
	DefaultThresholdMeters = 50.0
)

// Distance returns the haversine ground distance in meters between two
// coordinates given in degrees. The central angle uses the atan2 form
// rather than acos, which stays in-domain for identical and near-antipodal
// points despite floating-point rounding.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dPhi := toRadians(lat2 - lat1)
	dLambda := toRadians(lon2 - lon1)

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)

	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// Within reports whether a distance falls inside the geofence threshold.
func Within(meters, thresholdMeters float64) bool {
	return meters <= thresholdMeters
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

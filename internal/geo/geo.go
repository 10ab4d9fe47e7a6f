// Package geo provides the small amount of spherical geometry the dashboard
// needs: great-circle distances between float fixes and coordinate sanity
// checks.
package geo

import (
	"math"

	"github.com/YashwanthKamireddi/Float-Deck/internal/models"
)

// EarthRadiusKm is the mean Earth radius used for haversine distances.
const EarthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance in kilometres between two
// points given in degrees. NaN inputs propagate; callers guard.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// TrajectoryDistanceKm sums consecutive haversine distances along an ordered
// path. Fewer than two points is distance zero. The input is not mutated.
func TrajectoryDistanceKm(points []models.TrajectoryPoint) float64 {
	if len(points) < 2 {
		return 0
	}
	var total float64
	for i := 1; i < len(points); i++ {
		total += HaversineKm(points[i-1].Lat, points[i-1].Lon, points[i].Lat, points[i].Lon)
	}
	return total
}

// ValidCoords reports whether a lat/lon pair is finite and within range.
// Invalid coordinates are treated as absent upstream, never coerced to 0.
func ValidCoords(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Package geo provides the pure great-circle helpers used by the
// itinerary scheduler: distances, centroids and dispersion scores.
package geo

import (
	"fmt"
	"math"

	"github.com/Amelia-H-hub/travel-planner/internal/app/models"
)

// EarthRadiusKm is the spherical earth radius used by the haversine
// formula.
const EarthRadiusKm = 6371.0

// HaversineDistanceKm returns the great-circle distance between two
// points in kilometers. It is total and symmetric.
func HaversineDistanceKm(p1, p2 models.Coordinates) float64 {
	phi1 := radians(p1.Latitude)
	phi2 := radians(p2.Latitude)
	dPhi := radians(p2.Latitude - p1.Latitude)
	dLambda := radians(p2.Longitude - p1.Longitude)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Centroid returns the geographic center of the given points, computed
// by averaging the points as unit 3-vectors. It fails on an empty set.
func Centroid(points []models.Coordinates) (models.Coordinates, error) {
	if len(points) == 0 {
		return models.Coordinates{}, fmt.Errorf("centroid of empty point set: %w", models.ErrInvalidInput)
	}

	var x, y, z float64
	for _, p := range points {
		lat := radians(p.Latitude)
		lng := radians(p.Longitude)
		x += math.Cos(lat) * math.Cos(lng)
		y += math.Cos(lat) * math.Sin(lng)
		z += math.Sin(lat)
	}

	n := float64(len(points))
	x /= n
	y /= n
	z /= n

	return models.Coordinates{
		Latitude:  degrees(math.Atan2(z, math.Sqrt(x*x+y*y))),
		Longitude: degrees(math.Atan2(y, x)),
	}, nil
}

// AveragePairwiseDistanceKm returns the mean haversine distance over
// all unordered pairs of points. Fewer than two points count as
// maximally dispersed, so +Inf is returned.
func AveragePairwiseDistanceKm(points []models.Coordinates) float64 {
	if len(points) < 2 {
		return math.Inf(1)
	}

	var sum float64
	var pairs int
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			sum += HaversineDistanceKm(points[i], points[j])
			pairs++
		}
	}
	return sum / float64(pairs)
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

package service

import (
	"context"
	"math"

	"dispatch/internal/domain"
)

// DistanceEstimator supplies route metrics for an ordered list of points.
// The production deployment can plug a routing backend in here; the
// default estimate is great-circle distance at an average urban speed.
type DistanceEstimator interface {
	// Metrics returns the summed distance in meters and duration in
	// seconds over the legs of the route.
	Metrics(ctx context.Context, points []domain.GeoPoint) (meters float64, seconds int, err error)
}

// HaversineEstimator estimates route metrics from straight-line distance.
type HaversineEstimator struct {
	AverageSpeedKmh float64
}

// NewHaversineEstimator creates an estimator with the given average speed.
func NewHaversineEstimator(averageSpeedKmh float64) *HaversineEstimator {
	if averageSpeedKmh <= 0 {
		averageSpeedKmh = 30
	}
	return &HaversineEstimator{AverageSpeedKmh: averageSpeedKmh}
}

// Metrics sums the haversine distance over consecutive points and derives
// the duration from the configured average speed.
func (e *HaversineEstimator) Metrics(ctx context.Context, points []domain.GeoPoint) (float64, int, error) {
	var meters float64
	for i := 1; i < len(points); i++ {
		meters += haversineMeters(points[i-1], points[i])
	}
	seconds := int(meters / (e.AverageSpeedKmh * 1000 / 3600))
	return meters, seconds, nil
}

const earthRadiusMeters = 6371000

func haversineMeters(a, b domain.GeoPoint) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

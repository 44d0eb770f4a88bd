package service

import (
	"context"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// CalculateCost maps a tariff and route metrics to a fare. Pure and
// deterministic: flat fee + per-100m distance component + per-second
// duration component, clamped to the tariff's configured bounds.
func CalculateCost(tariff *domain.Service, distanceMeters float64, durationSeconds int) float64 {
	cost := tariff.FlatFee +
		tariff.PerHundredMeters*(distanceMeters/100) +
		tariff.PerDurationSecond*float64(durationSeconds)

	if tariff.MinimumFee > 0 && cost < tariff.MinimumFee {
		cost = tariff.MinimumFee
	}
	if tariff.MaximumFee > 0 && cost > tariff.MaximumFee {
		cost = tariff.MaximumFee
	}
	return cost
}

// FareService quotes trips against the tariffs of the rider's region.
type FareService struct {
	regionService *RegionService
	serviceRepo   repository.ServiceRepository
	estimator     DistanceEstimator
}

// NewFareService creates a new FareService.
func NewFareService(
	regionService *RegionService,
	serviceRepo repository.ServiceRepository,
	estimator DistanceEstimator,
) *FareService {
	return &FareService{
		regionService: regionService,
		serviceRepo:   serviceRepo,
		estimator:     estimator,
	}
}

// ServiceQuote pairs a tariff with its computed fare.
type ServiceQuote struct {
	Service *domain.Service
	Cost    float64
}

// QuoteResult is the outcome of quoting a route.
type QuoteResult struct {
	Currency        string
	DistanceMeters  float64
	DurationSeconds int
	Quotes          []ServiceQuote
}

// Quote resolves the pickup point to a region and prices every tariff in
// it. Metrics are fetched once, and only when at least one tariff has a
// non-zero distance rate: a fleet of flat-fee tariffs quotes without a
// metrics lookup.
func (s *FareService) Quote(ctx context.Context, points []domain.GeoPoint) (*QuoteResult, error) {
	if len(points) < 1 {
		return nil, ErrInvalidPoints
	}

	region, err := s.regionService.RegionWithPoint(ctx, points[0])
	if err != nil {
		return nil, err
	}

	tariffs, err := s.serviceRepo.ListByRegion(ctx, region.ID)
	if err != nil {
		return nil, err
	}
	if len(tariffs) == 0 {
		return nil, ErrNoServiceInRegion
	}

	var distance float64
	var duration int
	if needsMetrics(tariffs) {
		distance, duration, err = s.estimator.Metrics(ctx, points)
		if err != nil {
			return nil, err
		}
	}

	result := &QuoteResult{
		Currency:        region.Currency,
		DistanceMeters:  distance,
		DurationSeconds: duration,
		Quotes:          make([]ServiceQuote, 0, len(tariffs)),
	}
	for _, tariff := range tariffs {
		result.Quotes = append(result.Quotes, ServiceQuote{
			Service: tariff,
			Cost:    CalculateCost(tariff, distance, duration),
		})
	}
	return result, nil
}

func needsMetrics(tariffs []*domain.Service) bool {
	for _, t := range tariffs {
		if t.PerHundredMeters > 0 {
			return true
		}
	}
	return false
}

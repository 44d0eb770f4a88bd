package tests

import (
	"context"
	"errors"
	"testing"

	"dispatch/internal/domain"
	"dispatch/internal/service"
)

func TestCalculateCost_FlatPlusDistance(t *testing.T) {
	t.Parallel()

	tariff := &domain.Service{
		FlatFee:          2,
		PerHundredMeters: 0.05,
	}

	// 10km at 0.05 per 100m = 5, plus the flat 2.
	cost := service.CalculateCost(tariff, 10000, 600)
	if cost != 7 {
		t.Errorf("expected cost 7, got %v", cost)
	}
}

func TestCalculateCost_Deterministic(t *testing.T) {
	t.Parallel()

	tariff := &domain.Service{
		FlatFee:           3,
		PerHundredMeters:  0.1,
		PerDurationSecond: 0.01,
	}

	first := service.CalculateCost(tariff, 12345, 678)
	for i := 0; i < 10; i++ {
		if got := service.CalculateCost(tariff, 12345, 678); got != first {
			t.Fatalf("cost changed between runs: %v vs %v", first, got)
		}
	}
}

func TestCalculateCost_MonotonicInDistance(t *testing.T) {
	t.Parallel()

	tariff := &domain.Service{
		FlatFee:          1,
		PerHundredMeters: 0.05,
	}

	prev := service.CalculateCost(tariff, 0, 0)
	for meters := 100.0; meters <= 20000; meters += 100 {
		cost := service.CalculateCost(tariff, meters, 0)
		if cost < prev {
			t.Fatalf("cost decreased at %vm: %v < %v", meters, cost, prev)
		}
		prev = cost
	}
}

func TestCalculateCost_Clamps(t *testing.T) {
	t.Parallel()

	tariff := &domain.Service{
		FlatFee:          2,
		PerHundredMeters: 0.05,
		MinimumFee:       5,
		MaximumFee:       50,
	}

	if got := service.CalculateCost(tariff, 0, 0); got != 5 {
		t.Errorf("expected minimum fee 5, got %v", got)
	}
	if got := service.CalculateCost(tariff, 1000000, 0); got != 50 {
		t.Errorf("expected maximum fee 50, got %v", got)
	}
}

func TestQuote_PricesEveryTariffInRegion(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture()
	f.serviceRepo.AddService(&domain.Service{
		ID:       "svc-flat",
		RegionID: testRegionID,
		Name:     "Flat",
		FlatFee:  12,
	})

	fareService := service.NewFareService(
		service.NewRegionService(f.regionRepo), f.serviceRepo, f.estimator)

	result, err := fareService.Quote(ctx, []domain.GeoPoint{{Lat: 0.5, Lng: 0.5}, {Lat: 0.6, Lng: 0.6}})
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}

	if result.Currency != testCurrency {
		t.Errorf("expected currency %s, got %s", testCurrency, result.Currency)
	}
	if len(result.Quotes) != 2 {
		t.Fatalf("expected 2 quotes, got %d", len(result.Quotes))
	}
	costs := map[string]float64{}
	for _, q := range result.Quotes {
		costs[q.Service.ID] = q.Cost
	}
	if costs[testServiceID] != 7 {
		t.Errorf("expected standard tariff cost 7, got %v", costs[testServiceID])
	}
	if costs["svc-flat"] != 12 {
		t.Errorf("expected flat tariff cost 12, got %v", costs["svc-flat"])
	}
}

func TestQuote_RegionUnsupported(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture()
	fareService := service.NewFareService(
		service.NewRegionService(f.regionRepo), f.serviceRepo, f.estimator)

	// Point outside the seeded polygon.
	_, err := fareService.Quote(ctx, []domain.GeoPoint{{Lat: 50, Lng: 50}})
	if !errors.Is(err, service.ErrRegionUnsupported) {
		t.Errorf("expected ErrRegionUnsupported, got %v", err)
	}
}

func TestQuote_NoServiceInRegion(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	regionRepo := NewMockRegionRepository()
	regionRepo.AddRegion(&domain.Region{
		ID:       "region-empty",
		Currency: "EUR",
		Enabled:  true,
		Polygon:  []domain.GeoPoint{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}, {Lat: 1, Lng: 1}, {Lat: 1, Lng: 0}},
	})
	fareService := service.NewFareService(
		service.NewRegionService(regionRepo), NewMockServiceRepository(), &StubEstimator{})

	_, err := fareService.Quote(ctx, []domain.GeoPoint{{Lat: 0.5, Lng: 0.5}})
	if !errors.Is(err, service.ErrNoServiceInRegion) {
		t.Errorf("expected ErrNoServiceInRegion, got %v", err)
	}
}

package tests

import (
	"context"
	"time"

	"dispatch/internal/domain"
	"dispatch/internal/service"
)

// fixture wires a TripService over mocks, seeded with one region, one
// tariff and one online driver.
type fixture struct {
	tripRepo     *MockTripRepository
	driverRepo   *MockDriverRepository
	serviceRepo  *MockServiceRepository
	regionRepo   *MockRegionRepository
	fleetRepo    *MockFleetRepository
	activityRepo *MockActivityRepository
	feedbackRepo *MockFeedbackRepository
	ledgerRepo   *MockLedgerRepository
	presence     *MockPresenceStore
	dispatch     *MockDispatchStore
	broadcaster  *MockBroadcaster
	push         *MockPushSender
	estimator    *StubEstimator

	walletService *service.WalletService
	settlement    *service.SettlementService
	tripService   *service.TripService
}

const (
	testRegionID  = "region-almaty"
	testServiceID = "svc-standard"
	testRiderID   = "rider-1"
	testDriverID  = "driver-1"
	testCurrency  = "USD"
)

func newFixture() *fixture {
	f := &fixture{
		tripRepo:     NewMockTripRepository(),
		driverRepo:   NewMockDriverRepository(),
		serviceRepo:  NewMockServiceRepository(),
		regionRepo:   NewMockRegionRepository(),
		fleetRepo:    NewMockFleetRepository(),
		activityRepo: NewMockActivityRepository(),
		feedbackRepo: NewMockFeedbackRepository(),
		ledgerRepo:   NewMockLedgerRepository(),
		presence:     NewMockPresenceStore(),
		dispatch:     NewMockDispatchStore(),
		broadcaster:  NewMockBroadcaster(),
		push:         NewMockPushSender(),
		// 10km in 10 minutes.
		estimator: &StubEstimator{Distance: 10000, Duration: 600},
	}

	f.regionRepo.AddRegion(&domain.Region{
		ID:       testRegionID,
		Name:     "Almaty",
		Currency: testCurrency,
		Enabled:  true,
		Polygon: []domain.GeoPoint{
			{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}, {Lat: 1, Lng: 1}, {Lat: 1, Lng: 0},
		},
	})

	// flat 2 + 0.05/100m over 10km = 2 + 5 = 7
	f.serviceRepo.AddService(&domain.Service{
		ID:                      testServiceID,
		RegionID:                testRegionID,
		Name:                    "Standard",
		FlatFee:                 2,
		PerHundredMeters:        0.05,
		ProviderSharePercent:    10,
		CancellationTotalFee:    10,
		CancellationDriverShare: 6,
		SearchRadius:            5000,
		PaymentMethod:           domain.PaymentMethodCashCredit,
	})

	f.driverRepo.AddDriver(&domain.Driver{
		ID:         testDriverID,
		Name:       "Test Driver",
		Phone:      "+70000000001",
		ServiceIDs: []string{testServiceID},
		PushToken:  "token-1",
	})
	f.presence.SetDriver(testDriverID, domain.GeoPoint{Lat: 0.5, Lng: 0.5}, domain.DriverStatusOnline)

	regionService := service.NewRegionService(f.regionRepo)
	f.walletService = service.NewWalletService(f.ledgerRepo)
	f.settlement = service.NewSettlementService(f.walletService, f.tripRepo)
	f.tripService = service.NewTripService(service.TripServiceDeps{
		TripRepo:      f.tripRepo,
		DriverRepo:    f.driverRepo,
		ServiceRepo:   f.serviceRepo,
		FleetRepo:     f.fleetRepo,
		ActivityRepo:  f.activityRepo,
		FeedbackRepo:  f.feedbackRepo,
		RegionService: regionService,
		Estimator:     f.estimator,
		Presence:      f.presence,
		Dispatch:      f.dispatch,
		Broadcaster:   f.broadcaster,
		Push:          f.push,
		Ledger:        f.walletService,
		Settlement:    f.settlement,
	})

	return f
}

// tariff returns a copy of the seeded tariff. Mutate it and AddService
// it back to override tariff policy in a test.
func (f *fixture) tariff() *domain.Service {
	s, _ := f.serviceRepo.GetByID(context.Background(), testServiceID)
	return s
}

// addTrip seeds a trip in the given status, assigned to the fixture
// driver when the status is past acceptance.
func (f *fixture) addTrip(id string, status domain.TripStatus) *domain.Trip {
	trip := &domain.Trip{
		ID:              id,
		RiderID:         testRiderID,
		ServiceID:       testServiceID,
		Currency:        testCurrency,
		Points:          []domain.GeoPoint{{Lat: 0.5, Lng: 0.5}, {Lat: 0.6, Lng: 0.6}},
		Status:          status,
		DistanceBest:    10000,
		DurationBest:    600,
		CostBest:        7,
		CostAfterCoupon: 7,
		ExpectedAt:      time.Now(),
		CreatedAt:       time.Now(),
	}
	if !status.IsDispatchPending() {
		trip.DriverID = testDriverID
	}
	f.tripRepo.AddTrip(trip)
	return trip
}

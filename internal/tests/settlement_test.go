package tests

import (
	"context"
	"errors"
	"testing"

	"dispatch/internal/domain"
	"dispatch/internal/service"
)

// Cost 20, rider credit 20, no cash, 10% commission: the driver nets +18
// and the rider pays the full fare from credit.
func TestFinishTrip_SettlesCommissionSplit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture()
	trip := f.addTrip("trip-1", domain.TripStatusStarted)
	trip.CostBest = 20
	trip.CostAfterCoupon = 20
	f.ledgerRepo.SetBalance(domain.OwnerRider, testRiderID, testCurrency, 20)

	finished, err := f.tripService.FinishTrip(ctx, service.FinishTripRequest{
		TripID:   trip.ID,
		DriverID: testDriverID,
	})
	if err != nil {
		t.Fatalf("finish failed: %v", err)
	}

	if finished.Status != domain.TripStatusWaitingForReview {
		t.Errorf("expected WAITING_FOR_REVIEW, got %s", finished.Status)
	}
	if finished.PaidAmount != 20 {
		t.Errorf("expected paid amount 20, got %v", finished.PaidAmount)
	}
	if got := f.ledgerRepo.Balance(domain.OwnerDriver, testDriverID, testCurrency); got != 18 {
		t.Errorf("expected driver balance 18, got %v", got)
	}
	if got := f.ledgerRepo.Balance(domain.OwnerRider, testRiderID, testCurrency); got != 0 {
		t.Errorf("expected rider balance 0, got %v", got)
	}
	if got := f.ledgerRepo.Balance(domain.OwnerPlatform, "", testCurrency); got != 2 {
		t.Errorf("expected platform balance 2, got %v", got)
	}
	if f.presence.DriverStatus(testDriverID) != domain.DriverStatusOnline {
		t.Errorf("expected driver back ONLINE, got %s", f.presence.DriverStatus(testDriverID))
	}
	if f.push.PaymentSettledCallCount != 1 {
		t.Errorf("expected 1 settled push, got %d", f.push.PaymentSettledCallCount)
	}
}

// Credit plus cash below the outstanding balance: the finish is silently
// deferred with no error and no state change.
func TestFinishTrip_DeferredWhenUnderfunded(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture()
	trip := f.addTrip("trip-1", domain.TripStatusStarted)
	trip.CostBest = 20
	trip.CostAfterCoupon = 20
	f.ledgerRepo.SetBalance(domain.OwnerRider, testRiderID, testCurrency, 5)

	result, err := f.tripService.FinishTrip(ctx, service.FinishTripRequest{
		TripID:   trip.ID,
		DriverID: testDriverID,
	})
	if err != nil {
		t.Fatalf("expected silent deferral, got %v", err)
	}
	if result.Status != domain.TripStatusStarted {
		t.Errorf("expected status unchanged, got %s", result.Status)
	}
	if f.ledgerRepo.PostCallCount != 0 {
		t.Errorf("expected no postings, got %d", f.ledgerRepo.PostCallCount)
	}

	// Topping up the credit makes the same finish succeed.
	f.ledgerRepo.SetBalance(domain.OwnerRider, testRiderID, testCurrency, 20)
	retried, err := f.tripService.FinishTrip(ctx, service.FinishTripRequest{
		TripID:   trip.ID,
		DriverID: testDriverID,
	})
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if retried.Status != domain.TripStatusWaitingForReview {
		t.Errorf("expected WAITING_FOR_REVIEW, got %s", retried.Status)
	}
}

// Cash collected in person covers the fare: the ledger never sees the
// cash, only the commission deduct and its platform counterpart.
func TestFinishTrip_CashKeptOutOfLedger(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture()
	trip := f.addTrip("trip-1", domain.TripStatusStarted)
	trip.CostBest = 20
	trip.CostAfterCoupon = 20

	finished, err := f.tripService.FinishTrip(ctx, service.FinishTripRequest{
		TripID:     trip.ID,
		DriverID:   testDriverID,
		CashAmount: 20,
	})
	if err != nil {
		t.Fatalf("finish failed: %v", err)
	}

	if finished.Status != domain.TripStatusWaitingForReview {
		t.Errorf("expected WAITING_FOR_REVIEW, got %s", finished.Status)
	}
	// Driver keeps the cash; the ledger only deducts the commission.
	if got := f.ledgerRepo.Balance(domain.OwnerDriver, testDriverID, testCurrency); got != -2 {
		t.Errorf("expected driver balance -2, got %v", got)
	}
	if got := f.ledgerRepo.Balance(domain.OwnerRider, testRiderID, testCurrency); got != 0 {
		t.Errorf("expected rider balance untouched, got %v", got)
	}
}

func TestFinishTrip_CashRejectedForCreditOnlyTariff(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture()
	tariff := f.tariff()
	tariff.PaymentMethod = domain.PaymentMethodOnlyCredit
	f.serviceRepo.AddService(tariff)
	trip := f.addTrip("trip-1", domain.TripStatusStarted)

	_, err := f.tripService.FinishTrip(ctx, service.FinishTripRequest{
		TripID:     trip.ID,
		DriverID:   testDriverID,
		CashAmount: 5,
	})
	if !errors.Is(err, service.ErrCashNotAccepted) {
		t.Errorf("expected ErrCashNotAccepted, got %v", err)
	}
}

func TestFinishTrip_FleetTakesShareOfCommission(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture()
	f.fleetRepo.AddFleet(&domain.Fleet{ID: "fleet-1", CommissionSharePercent: 50})
	f.driverRepo.AddDriver(&domain.Driver{
		ID:         testDriverID,
		FleetID:    "fleet-1",
		ServiceIDs: []string{testServiceID},
	})
	trip := f.addTrip("trip-1", domain.TripStatusStarted)
	trip.CostBest = 20
	trip.CostAfterCoupon = 20
	f.ledgerRepo.SetBalance(domain.OwnerRider, testRiderID, testCurrency, 20)

	if _, err := f.tripService.FinishTrip(ctx, service.FinishTripRequest{
		TripID:   trip.ID,
		DriverID: testDriverID,
	}); err != nil {
		t.Fatalf("finish failed: %v", err)
	}

	// Commission 2 splits evenly between fleet and platform.
	if got := f.ledgerRepo.Balance(domain.OwnerFleet, "fleet-1", testCurrency); got != 1 {
		t.Errorf("expected fleet balance 1, got %v", got)
	}
	if got := f.ledgerRepo.Balance(domain.OwnerPlatform, "", testCurrency); got != 1 {
		t.Errorf("expected platform balance 1, got %v", got)
	}
}

// A settled trip cannot settle twice: the second Settle is a no-op and
// the second FinishTrip is rejected by the transition table.
func TestFinishTrip_Idempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture()
	trip := f.addTrip("trip-1", domain.TripStatusStarted)
	trip.CostBest = 20
	trip.CostAfterCoupon = 20
	f.ledgerRepo.SetBalance(domain.OwnerRider, testRiderID, testCurrency, 40)

	if _, err := f.tripService.FinishTrip(ctx, service.FinishTripRequest{
		TripID:   trip.ID,
		DriverID: testDriverID,
	}); err != nil {
		t.Fatalf("finish failed: %v", err)
	}
	driverBalance := f.ledgerRepo.Balance(domain.OwnerDriver, testDriverID, testCurrency)

	_, err := f.tripService.FinishTrip(ctx, service.FinishTripRequest{
		TripID:   trip.ID,
		DriverID: testDriverID,
	})
	if !errors.Is(err, service.ErrTransitionNotAllowed) {
		t.Errorf("expected ErrTransitionNotAllowed, got %v", err)
	}

	// Settle directly is also a no-op once paid.
	stored := f.tripRepo.GetTrip(trip.ID)
	tariff := f.tariff()
	if err := f.settlement.Settle(ctx, stored, tariff, nil, 40, 0); err != nil {
		t.Fatalf("settle failed: %v", err)
	}
	if got := f.ledgerRepo.Balance(domain.OwnerDriver, testDriverID, testCurrency); got != driverBalance {
		t.Errorf("expected driver balance unchanged at %v, got %v", driverBalance, got)
	}
}

func TestBuildSettlementPlan_Ordering(t *testing.T) {
	t.Parallel()

	trip := &domain.Trip{
		ID:              "trip-1",
		RiderID:         testRiderID,
		DriverID:        testDriverID,
		Currency:        testCurrency,
		CostAfterCoupon: 100,
	}
	tariff := &domain.Service{
		ProviderShareFlat:    1,
		ProviderSharePercent: 10,
	}
	fleet := &domain.Fleet{ID: "fleet-1", CommissionShareFlat: 2}

	plan := service.BuildSettlementPlan(trip, tariff, fleet, 100, 0)

	if plan.Commission != 11 {
		t.Errorf("expected commission 11, got %v", plan.Commission)
	}
	if plan.FleetShare != 2 {
		t.Errorf("expected fleet share 2, got %v", plan.FleetShare)
	}

	wantOwners := []domain.WalletOwnerType{
		domain.OwnerDriver,   // commission deduct
		domain.OwnerFleet,    // fleet share
		domain.OwnerPlatform, // platform remainder
		domain.OwnerDriver,   // order fee recharge
		domain.OwnerRider,    // rider deduct
	}
	if len(plan.Postings) != len(wantOwners) {
		t.Fatalf("expected %d postings, got %d", len(wantOwners), len(plan.Postings))
	}
	for i, posting := range plan.Postings {
		if posting.OwnerType != wantOwners[i] {
			t.Errorf("posting %d: expected %s, got %s", i, wantOwners[i], posting.OwnerType)
		}
	}

	wantAmounts := []float64{-11, 2, 9, 100, -100}
	for i, posting := range plan.Postings {
		if posting.Amount != wantAmounts[i] {
			t.Errorf("posting %d: expected amount %v, got %v", i, wantAmounts[i], posting.Amount)
		}
	}
}

func TestBuildSettlementPlan_RiderDeductGatedOnCredit(t *testing.T) {
	t.Parallel()

	trip := &domain.Trip{
		ID:              "trip-1",
		RiderID:         testRiderID,
		DriverID:        testDriverID,
		Currency:        testCurrency,
		CostAfterCoupon: 100,
	}
	tariff := &domain.Service{ProviderSharePercent: 10}

	// No credit on file: the plan carries no rider posting at all. The
	// caller defers the finish instead of overdrawing the wallet.
	plan := service.BuildSettlementPlan(trip, tariff, nil, 0, 0)
	for _, posting := range plan.Postings {
		if posting.OwnerType == domain.OwnerRider {
			t.Fatalf("expected no rider posting without credit, got %v", posting.Amount)
		}
	}

	// With credit present the deduct is the full unpaid remainder after
	// cash, not clamped to the credit.
	plan = service.BuildSettlementPlan(trip, tariff, nil, 50, 40)
	found := false
	for _, posting := range plan.Postings {
		if posting.OwnerType == domain.OwnerRider {
			found = true
			if posting.Amount != -60 {
				t.Errorf("expected rider deduct -60, got %v", posting.Amount)
			}
		}
	}
	if !found {
		t.Fatal("expected a rider posting")
	}
}

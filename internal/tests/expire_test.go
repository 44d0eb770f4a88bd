package tests

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/domain"
	"dispatch/internal/service"
)

func TestExpireTrips_MarksPendingAndSkipsOthers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture()
	pending := f.addTrip("trip-pending", domain.TripStatusBooked)
	accepted := f.addTrip("trip-accepted", domain.TripStatusDriverAccepted)
	f.dispatch.MarkNotified(ctx, pending.ID, testDriverID)

	expired, err := f.tripService.ExpireTrips(ctx, []string{pending.ID, accepted.ID})
	if err != nil {
		t.Fatalf("expire failed: %v", err)
	}

	if len(expired) != 1 || expired[0] != pending.ID {
		t.Fatalf("expected [%s] expired, got %v", pending.ID, expired)
	}
	if f.tripRepo.GetTrip(pending.ID).Status != domain.TripStatusExpired {
		t.Errorf("expected EXPIRED, got %s", f.tripRepo.GetTrip(pending.ID).Status)
	}
	if f.tripRepo.GetTrip(accepted.ID).Status != domain.TripStatusDriverAccepted {
		t.Errorf("expected accepted trip untouched, got %s", f.tripRepo.GetTrip(accepted.ID).Status)
	}
	if f.dispatch.NotifiedCount(pending.ID) != 0 {
		t.Error("expected dispatch bookkeeping cleared")
	}
	// No money moves on expiry.
	if f.ledgerRepo.PostCallCount != 0 {
		t.Errorf("expected no postings, got %d", f.ledgerRepo.PostCallCount)
	}
}

func TestExpireTrips_RepeatedSweepIsNoOp(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture()
	trip := f.addTrip("trip-1", domain.TripStatusRequested)

	first, err := f.tripService.ExpireTrips(ctx, []string{trip.ID})
	if err != nil {
		t.Fatalf("expire failed: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 expired, got %d", len(first))
	}

	second, err := f.tripService.ExpireTrips(ctx, []string{trip.ID})
	if err != nil {
		t.Fatalf("second expire failed: %v", err)
	}
	if len(second) != 0 {
		t.Errorf("expected repeated sweep to expire nothing, got %v", second)
	}

	// Only one EXPIRED activity despite two sweeps.
	count := 0
	for _, a := range f.activityRepo.Activities() {
		if a.Type == domain.ActivityExpired {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected 1 EXPIRED activity, got %d", count)
	}
}

func TestSweepExpired_PicksUpLapsedBookings(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture()
	lapsed := f.addTrip("trip-lapsed", domain.TripStatusBooked)
	lapsed.ExpectedAt = time.Now().Add(-time.Hour)
	future := f.addTrip("trip-future", domain.TripStatusBooked)
	future.ExpectedAt = time.Now().Add(time.Hour)

	expired, err := f.tripService.SweepExpired(ctx)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	if len(expired) != 1 || expired[0] != lapsed.ID {
		t.Fatalf("expected [%s], got %v", lapsed.ID, expired)
	}
	if f.tripRepo.GetTrip(future.ID).Status != domain.TripStatusBooked {
		t.Errorf("expected future booking untouched, got %s", f.tripRepo.GetTrip(future.ID).Status)
	}
}

func TestSweepExpired_FreshImmediateTripSurvives(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture()
	result, err := f.tripService.CreateTrip(ctx, service.CreateTripRequest{
		RiderID:   testRiderID,
		ServiceID: testServiceID,
		Points:    testPoints(),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// An immediate trip's expected pickup is "now"; the sweep must leave
	// it inside the dispatch window so drivers can race for it.
	expired, err := f.tripService.SweepExpired(ctx)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(expired) != 0 {
		t.Fatalf("expected nothing expired, got %v", expired)
	}
	if got := f.tripRepo.GetTrip(result.Trip.ID).Status; got != domain.TripStatusRequested {
		t.Errorf("expected REQUESTED, got %s", got)
	}
	// The offer to the candidate pool is still standing.
	if f.dispatch.NotifiedCount(result.Trip.ID) != 1 {
		t.Errorf("expected 1 notified driver, got %d", f.dispatch.NotifiedCount(result.Trip.ID))
	}
}

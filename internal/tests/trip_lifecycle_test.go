package tests

import (
	"context"
	"errors"
	"testing"

	"dispatch/internal/domain"
	"dispatch/internal/redis"
	"dispatch/internal/service"
)

func TestMarkArrived_ThenStarted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture()
	trip := f.addTrip("trip-1", domain.TripStatusDriverAccepted)

	arrived, err := f.tripService.MarkArrived(ctx, service.ProgressTripRequest{
		TripID:   trip.ID,
		DriverID: testDriverID,
	})
	if err != nil {
		t.Fatalf("arrive failed: %v", err)
	}
	if arrived.Status != domain.TripStatusArrived {
		t.Errorf("expected ARRIVED, got %s", arrived.Status)
	}

	started, err := f.tripService.MarkStarted(ctx, service.ProgressTripRequest{
		TripID:   trip.ID,
		DriverID: testDriverID,
	})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if started.Status != domain.TripStatusStarted {
		t.Errorf("expected STARTED, got %s", started.Status)
	}

	if len(f.broadcaster.EventsNamed(redis.EventOrderUpdated)) != 2 {
		t.Errorf("expected 2 orderUpdated events, got %d", len(f.broadcaster.EventsNamed(redis.EventOrderUpdated)))
	}
}

func TestMarkArrived_WrongDriverForbidden(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture()
	trip := f.addTrip("trip-1", domain.TripStatusDriverAccepted)

	_, err := f.tripService.MarkArrived(ctx, service.ProgressTripRequest{
		TripID:   trip.ID,
		DriverID: "driver-impostor",
	})
	if !errors.Is(err, service.ErrNotAssignedDriver) {
		t.Errorf("expected ErrNotAssignedDriver, got %v", err)
	}
}

func TestMarkStarted_BeforeArrivalRejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture()
	trip := f.addTrip("trip-1", domain.TripStatusDriverAccepted)

	_, err := f.tripService.MarkStarted(ctx, service.ProgressTripRequest{
		TripID:   trip.ID,
		DriverID: testDriverID,
	})
	if !errors.Is(err, service.ErrTransitionNotAllowed) {
		t.Errorf("expected ErrTransitionNotAllowed, got %v", err)
	}
}

func TestCancelByDriver_BeforeStart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture()
	trip := f.addTrip("trip-1", domain.TripStatusArrived)
	f.presence.SetDriver(testDriverID, domain.GeoPoint{Lat: 0.5, Lng: 0.5}, domain.DriverStatusInService)

	canceled, err := f.tripService.CancelByDriver(ctx, service.CancelByDriverRequest{
		TripID:   trip.ID,
		DriverID: testDriverID,
	})
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if canceled.Status != domain.TripStatusDriverCanceled {
		t.Errorf("expected DRIVER_CANCELED, got %s", canceled.Status)
	}
	if canceled.CostAfterCoupon != 0 {
		t.Errorf("expected fare zeroed, got %v", canceled.CostAfterCoupon)
	}
	if f.presence.DriverStatus(testDriverID) != domain.DriverStatusOnline {
		t.Errorf("expected driver back ONLINE, got %s", f.presence.DriverStatus(testDriverID))
	}
	// No money moves on a driver cancel.
	if f.ledgerRepo.PostCallCount != 0 {
		t.Errorf("expected no ledger postings, got %d", f.ledgerRepo.PostCallCount)
	}
}

func TestCancelByDriver_AfterStartRejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture()
	trip := f.addTrip("trip-1", domain.TripStatusStarted)

	_, err := f.tripService.CancelByDriver(ctx, service.CancelByDriverRequest{
		TripID:   trip.ID,
		DriverID: testDriverID,
	})
	if !errors.Is(err, service.ErrCancellationNotAllowed) {
		t.Errorf("expected ErrCancellationNotAllowed, got %v", err)
	}
}

// Rider cancels after a driver accepted: the cancellation fee splits into
// rider -10, driver +6, platform +4.
func TestCancelByRider_FeeSplit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture()
	f.addTrip("trip-1", domain.TripStatusDriverAccepted)
	f.ledgerRepo.SetBalance(domain.OwnerRider, testRiderID, testCurrency, 50)
	f.presence.SetDriver(testDriverID, domain.GeoPoint{Lat: 0.5, Lng: 0.5}, domain.DriverStatusInService)

	canceled, err := f.tripService.CancelByRider(ctx, service.CancelByRiderRequest{
		RiderID: testRiderID,
	})
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if canceled.Status != domain.TripStatusRiderCanceled {
		t.Errorf("expected RIDER_CANCELED, got %s", canceled.Status)
	}
	if got := f.ledgerRepo.Balance(domain.OwnerRider, testRiderID, testCurrency); got != 40 {
		t.Errorf("expected rider balance 40, got %v", got)
	}
	if got := f.ledgerRepo.Balance(domain.OwnerDriver, testDriverID, testCurrency); got != 6 {
		t.Errorf("expected driver balance 6, got %v", got)
	}
	if got := f.ledgerRepo.Balance(domain.OwnerPlatform, "", testCurrency); got != 4 {
		t.Errorf("expected platform balance 4, got %v", got)
	}
	if f.presence.DriverStatus(testDriverID) != domain.DriverStatusOnline {
		t.Errorf("expected driver back ONLINE, got %s", f.presence.DriverStatus(testDriverID))
	}

	// All three postings reference the trip with the cancellation reason.
	for _, txn := range f.ledgerRepo.Transactions() {
		if txn.Reason != domain.ReasonCancellationFee {
			t.Errorf("expected CANCELLATION_FEE reason, got %s", txn.Reason)
		}
		if txn.TripID != canceled.ID {
			t.Errorf("expected trip reference %s, got %s", canceled.ID, txn.TripID)
		}
	}
}

func TestCancelByRider_BeforeAcceptanceNoFee(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture()
	trip := f.addTrip("trip-1", domain.TripStatusRequested)
	f.dispatch.MarkNotified(ctx, trip.ID, testDriverID)

	canceled, err := f.tripService.CancelByRider(ctx, service.CancelByRiderRequest{
		RiderID: testRiderID,
	})
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if f.ledgerRepo.PostCallCount != 0 {
		t.Errorf("expected no fee before acceptance, got %d postings", f.ledgerRepo.PostCallCount)
	}
	if f.dispatch.NotifiedCount(trip.ID) != 0 {
		t.Error("expected dispatch bookkeeping cleared")
	}
	removed := f.broadcaster.EventsNamed(redis.EventOrderRemoved)
	if len(removed) != 1 || removed[0].ExcludeDriverID != "" {
		t.Errorf("expected orderRemoved for everyone, got %+v", removed)
	}
	if canceled.Status != domain.TripStatusRiderCanceled {
		t.Errorf("expected RIDER_CANCELED, got %s", canceled.Status)
	}
}

func TestCancelByRider_NoActiveTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture()
	_, err := f.tripService.CancelByRider(ctx, service.CancelByRiderRequest{
		RiderID: testRiderID,
	})
	if err == nil {
		t.Fatal("expected an error for no active trip")
	}
}

func TestReviewTrip_ClosesLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture()
	trip := f.addTrip("trip-1", domain.TripStatusWaitingForReview)

	reviewed, err := f.tripService.ReviewTrip(ctx, service.ReviewTripRequest{
		RiderID: testRiderID,
		Score:   5,
		Review:  "smooth ride",
	})
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}

	if reviewed.Status != domain.TripStatusFinished {
		t.Errorf("expected FINISHED, got %s", reviewed.Status)
	}
	feedbacks := f.feedbackRepo.Feedbacks()
	if len(feedbacks) != 1 {
		t.Fatalf("expected 1 feedback, got %d", len(feedbacks))
	}
	if feedbacks[0].TripID != trip.ID || feedbacks[0].Score != 5 {
		t.Errorf("unexpected feedback: %+v", feedbacks[0])
	}
}

func TestReviewTrip_NotWaitingForReview(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture()
	f.addTrip("trip-1", domain.TripStatusStarted)

	_, err := f.tripService.ReviewTrip(ctx, service.ReviewTripRequest{
		RiderID: testRiderID,
		Score:   4,
	})
	if !errors.Is(err, service.ErrNotWaitingForReview) {
		t.Errorf("expected ErrNotWaitingForReview, got %v", err)
	}
}

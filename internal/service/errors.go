package service

import "errors"

var (
	// ErrRegionUnsupported is returned when a point resolves to no
	// supported region.
	ErrRegionUnsupported = errors.New("region unsupported")

	// ErrNoServiceInRegion is returned when the region has no tariffs.
	ErrNoServiceInRegion = errors.New("no service in region")

	// ErrServiceNotFound is returned when the requested tariff does not exist.
	ErrServiceNotFound = errors.New("service not found")

	// ErrDistanceTooFar is returned when the route exceeds the tariff's
	// maximum destination distance.
	ErrDistanceTooFar = errors.New("distance too far")

	// ErrInsufficientCredit is returned when the rider's balance does not
	// cover the tariff's prepay fraction of the quoted cost.
	ErrInsufficientCredit = errors.New("insufficient credit")

	// ErrAlreadyTaken is returned when a driver loses the acceptance race
	// or tries to accept a trip that left the dispatch-pending window.
	ErrAlreadyTaken = errors.New("already taken")

	// ErrCancellationNotAllowed is returned when a cancel is attempted
	// from a state that does not permit it.
	ErrCancellationNotAllowed = errors.New("cancellation not allowed")

	// ErrCashNotAccepted is returned when cash is collected for a
	// credit-only tariff.
	ErrCashNotAccepted = errors.New("cash not accepted for this service")

	// ErrNotAssignedDriver is returned when a driver acts on a trip that
	// is not assigned to them.
	ErrNotAssignedDriver = errors.New("driver not assigned to this trip")

	// ErrTransitionNotAllowed is returned when a status update is not in
	// the transition table.
	ErrTransitionNotAllowed = errors.New("transition not allowed from current status")

	// ErrNotWaitingForReview is returned when a review is submitted for a
	// trip that is not awaiting one.
	ErrNotWaitingForReview = errors.New("trip not waiting for review")

	// ErrInvalidTripID is returned when the trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidRiderID is returned when the rider ID is empty.
	ErrInvalidRiderID = errors.New("invalid rider id")

	// ErrInvalidDriverID is returned when the driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidPoints is returned when fewer than two valid points are
	// supplied for a trip.
	ErrInvalidPoints = errors.New("invalid trip points")

	// ErrInvalidAmount is returned when a ledger post carries a zero
	// amount or a sign contradicting its action.
	ErrInvalidAmount = errors.New("invalid transaction amount")

	// ErrInvalidCurrency is returned when a currency code is empty.
	ErrInvalidCurrency = errors.New("invalid currency")
)

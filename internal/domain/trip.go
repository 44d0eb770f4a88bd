package domain

import "time"

// TripStatus represents the current status of a trip.
type TripStatus string

const (
	TripStatusRequested         TripStatus = "REQUESTED"
	TripStatusBooked            TripStatus = "BOOKED"
	TripStatusFound             TripStatus = "FOUND"
	TripStatusNoCloseFound      TripStatus = "NO_CLOSE_FOUND"
	TripStatusNotFound          TripStatus = "NOT_FOUND"
	TripStatusDriverAccepted    TripStatus = "DRIVER_ACCEPTED"
	TripStatusArrived           TripStatus = "ARRIVED"
	TripStatusStarted           TripStatus = "STARTED"
	TripStatusWaitingForPostPay TripStatus = "WAITING_FOR_POST_PAY"
	TripStatusWaitingForReview  TripStatus = "WAITING_FOR_REVIEW"
	TripStatusFinished          TripStatus = "FINISHED"
	TripStatusDriverCanceled    TripStatus = "DRIVER_CANCELED"
	TripStatusRiderCanceled     TripStatus = "RIDER_CANCELED"
	TripStatusExpired           TripStatus = "EXPIRED"
)

// IsTerminal reports whether the status ends the trip lifecycle.
// Terminal trips are retained for audit and never mutated again.
func (s TripStatus) IsTerminal() bool {
	switch s {
	case TripStatusFinished, TripStatusDriverCanceled, TripStatusRiderCanceled, TripStatusExpired:
		return true
	}
	return false
}

// IsDispatchPending reports whether the trip is still being offered to
// candidate drivers and may be claimed.
func (s TripStatus) IsDispatchPending() bool {
	switch s {
	case TripStatusRequested, TripStatusBooked, TripStatusFound, TripStatusNoCloseFound:
		return true
	}
	return false
}

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Trip represents a transport request through its full lifecycle.
// Points holds the pickup first, destinations after. DriverID stays empty
// until a driver wins the acceptance race and is immutable afterward.
type Trip struct {
	ID              string
	RiderID         string
	DriverID        string
	ServiceID       string
	Currency        string
	Points          []GeoPoint
	Addresses       []string
	Status          TripStatus
	DistanceBest    float64 // meters
	DurationBest    int     // seconds
	CostBest        float64
	CostAfterCoupon float64
	PaidAmount      float64
	ExpectedAt      time.Time
	ETAPickup       time.Time
	FinishedAt      time.Time
	OperatorID      string // set when created on the rider's behalf by staff
	CreatedAt       time.Time
}

// Pickup returns the first point of the trip.
func (t *Trip) Pickup() GeoPoint {
	if len(t.Points) == 0 {
		return GeoPoint{}
	}
	return t.Points[0]
}

// UnpaidAmount returns the portion of the fare not yet settled.
func (t *Trip) UnpaidAmount() float64 {
	return t.CostAfterCoupon - t.PaidAmount
}

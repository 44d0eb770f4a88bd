package domain

import "time"

// ActivityType classifies a trip lifecycle event for the audit trail.
type ActivityType string

const (
	ActivityRequestedByRider     ActivityType = "REQUESTED_BY_RIDER"
	ActivityRequestedByOperator  ActivityType = "REQUESTED_BY_OPERATOR"
	ActivityBookedByRider        ActivityType = "BOOKED_BY_RIDER"
	ActivityBookedByOperator     ActivityType = "BOOKED_BY_OPERATOR"
	ActivityDriverAccepted       ActivityType = "DRIVER_ACCEPTED"
	ActivityArrivedToPickupPoint ActivityType = "ARRIVED_TO_PICKUP_POINT"
	ActivityStarted              ActivityType = "STARTED"
	ActivityArrivedToDestination ActivityType = "ARRIVED_TO_DESTINATION"
	ActivityPaid                 ActivityType = "PAID"
	ActivityCanceledByRider      ActivityType = "CANCELED_BY_RIDER"
	ActivityCanceledByDriver     ActivityType = "CANCELED_BY_DRIVER"
	ActivityExpired              ActivityType = "EXPIRED"
	ActivityReviewed             ActivityType = "REVIEWED"
)

// Activity is an append-only audit record of a trip event.
type Activity struct {
	ID        string
	TripID    string
	Type      ActivityType
	CreatedAt time.Time
}

package service

import "dispatch/internal/domain"

// TripEvent names a lifecycle event driving the trip state machine.
type TripEvent string

const (
	EventAccept       TripEvent = "ACCEPT"
	EventArrive       TripEvent = "ARRIVE"
	EventStart        TripEvent = "START"
	EventDriverCancel TripEvent = "DRIVER_CANCEL"
	EventRiderCancel  TripEvent = "RIDER_CANCEL"
	EventFinish       TripEvent = "FINISH"
	EventExpire       TripEvent = "EXPIRE"
	EventReview       TripEvent = "REVIEW"
)

// transitions is the explicit state-transition table. Every mutation of a
// trip consults it; a (status, event) pair missing here is rejected. The
// recorded target for FINISH is the fully-paid outcome; a partially paid
// finish lands in WAITING_FOR_POST_PAY instead and may be finished again.
var transitions = map[domain.TripStatus]map[TripEvent]domain.TripStatus{
	domain.TripStatusRequested: {
		EventAccept:      domain.TripStatusDriverAccepted,
		EventRiderCancel: domain.TripStatusRiderCanceled,
		EventExpire:      domain.TripStatusExpired,
	},
	domain.TripStatusBooked: {
		EventAccept:      domain.TripStatusDriverAccepted,
		EventRiderCancel: domain.TripStatusRiderCanceled,
		EventExpire:      domain.TripStatusExpired,
	},
	domain.TripStatusFound: {
		EventAccept:      domain.TripStatusDriverAccepted,
		EventRiderCancel: domain.TripStatusRiderCanceled,
		EventExpire:      domain.TripStatusExpired,
	},
	domain.TripStatusNoCloseFound: {
		EventAccept:      domain.TripStatusDriverAccepted,
		EventRiderCancel: domain.TripStatusRiderCanceled,
		EventExpire:      domain.TripStatusExpired,
	},
	domain.TripStatusDriverAccepted: {
		EventArrive:       domain.TripStatusArrived,
		EventDriverCancel: domain.TripStatusDriverCanceled,
		EventRiderCancel:  domain.TripStatusRiderCanceled,
	},
	domain.TripStatusArrived: {
		EventStart:        domain.TripStatusStarted,
		EventDriverCancel: domain.TripStatusDriverCanceled,
		EventRiderCancel:  domain.TripStatusRiderCanceled,
	},
	domain.TripStatusStarted: {
		EventFinish:      domain.TripStatusWaitingForReview,
		EventRiderCancel: domain.TripStatusRiderCanceled,
	},
	domain.TripStatusWaitingForPostPay: {
		EventFinish:      domain.TripStatusWaitingForReview,
		EventRiderCancel: domain.TripStatusRiderCanceled,
	},
	domain.TripStatusWaitingForReview: {
		EventReview:      domain.TripStatusFinished,
		EventRiderCancel: domain.TripStatusRiderCanceled,
	},
}

// NextStatus returns the target status for applying event to status, and
// whether the transition is documented.
func NextStatus(status domain.TripStatus, event TripEvent) (domain.TripStatus, bool) {
	targets, ok := transitions[status]
	if !ok {
		return "", false
	}
	next, ok := targets[event]
	return next, ok
}

// acceptAllowList is the set of statuses a driver may claim a trip from.
// It mirrors the ACCEPT rows of the transition table and is pushed down
// into the conditional update that adjudicates the acceptance race.
var acceptAllowList = []domain.TripStatus{
	domain.TripStatusFound,
	domain.TripStatusNoCloseFound,
	domain.TripStatusRequested,
	domain.TripStatusBooked,
}

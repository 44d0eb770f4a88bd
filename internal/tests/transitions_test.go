package tests

import (
	"testing"

	"dispatch/internal/domain"
	"dispatch/internal/service"
)

var allStatuses = []domain.TripStatus{
	domain.TripStatusRequested,
	domain.TripStatusBooked,
	domain.TripStatusFound,
	domain.TripStatusNoCloseFound,
	domain.TripStatusNotFound,
	domain.TripStatusDriverAccepted,
	domain.TripStatusArrived,
	domain.TripStatusStarted,
	domain.TripStatusWaitingForPostPay,
	domain.TripStatusWaitingForReview,
	domain.TripStatusFinished,
	domain.TripStatusDriverCanceled,
	domain.TripStatusRiderCanceled,
	domain.TripStatusExpired,
}

var allEvents = []service.TripEvent{
	service.EventAccept,
	service.EventArrive,
	service.EventStart,
	service.EventDriverCancel,
	service.EventRiderCancel,
	service.EventFinish,
	service.EventExpire,
	service.EventReview,
}

type transitionCase struct {
	from  domain.TripStatus
	event service.TripEvent
	to    domain.TripStatus
}

// documentedTransitions enumerates every allowed (status, event) pair.
var documentedTransitions = []transitionCase{
	{domain.TripStatusRequested, service.EventAccept, domain.TripStatusDriverAccepted},
	{domain.TripStatusRequested, service.EventRiderCancel, domain.TripStatusRiderCanceled},
	{domain.TripStatusRequested, service.EventExpire, domain.TripStatusExpired},
	{domain.TripStatusBooked, service.EventAccept, domain.TripStatusDriverAccepted},
	{domain.TripStatusBooked, service.EventRiderCancel, domain.TripStatusRiderCanceled},
	{domain.TripStatusBooked, service.EventExpire, domain.TripStatusExpired},
	{domain.TripStatusFound, service.EventAccept, domain.TripStatusDriverAccepted},
	{domain.TripStatusFound, service.EventRiderCancel, domain.TripStatusRiderCanceled},
	{domain.TripStatusFound, service.EventExpire, domain.TripStatusExpired},
	{domain.TripStatusNoCloseFound, service.EventAccept, domain.TripStatusDriverAccepted},
	{domain.TripStatusNoCloseFound, service.EventRiderCancel, domain.TripStatusRiderCanceled},
	{domain.TripStatusNoCloseFound, service.EventExpire, domain.TripStatusExpired},
	{domain.TripStatusDriverAccepted, service.EventArrive, domain.TripStatusArrived},
	{domain.TripStatusDriverAccepted, service.EventDriverCancel, domain.TripStatusDriverCanceled},
	{domain.TripStatusDriverAccepted, service.EventRiderCancel, domain.TripStatusRiderCanceled},
	{domain.TripStatusArrived, service.EventStart, domain.TripStatusStarted},
	{domain.TripStatusArrived, service.EventDriverCancel, domain.TripStatusDriverCanceled},
	{domain.TripStatusArrived, service.EventRiderCancel, domain.TripStatusRiderCanceled},
	{domain.TripStatusStarted, service.EventFinish, domain.TripStatusWaitingForReview},
	{domain.TripStatusStarted, service.EventRiderCancel, domain.TripStatusRiderCanceled},
	{domain.TripStatusWaitingForPostPay, service.EventFinish, domain.TripStatusWaitingForReview},
	{domain.TripStatusWaitingForPostPay, service.EventRiderCancel, domain.TripStatusRiderCanceled},
	{domain.TripStatusWaitingForReview, service.EventReview, domain.TripStatusFinished},
	{domain.TripStatusWaitingForReview, service.EventRiderCancel, domain.TripStatusRiderCanceled},
}

// TestNextStatus_Table exhaustively checks every (status, event) pair:
// documented pairs land on their target, everything else is rejected.
func TestNextStatus_Table(t *testing.T) {
	t.Parallel()

	documented := make(map[domain.TripStatus]map[service.TripEvent]domain.TripStatus)
	for _, tc := range documentedTransitions {
		if documented[tc.from] == nil {
			documented[tc.from] = make(map[service.TripEvent]domain.TripStatus)
		}
		documented[tc.from][tc.event] = tc.to
	}

	for _, status := range allStatuses {
		for _, event := range allEvents {
			next, ok := service.NextStatus(status, event)
			want, isDocumented := documented[status][event]
			if isDocumented != ok {
				t.Errorf("(%s, %s): allowed=%v, want %v", status, event, ok, isDocumented)
				continue
			}
			if ok && next != want {
				t.Errorf("(%s, %s): got %s, want %s", status, event, next, want)
			}
		}
	}
}

// Terminal statuses and NOT_FOUND accept no event at all.
func TestNextStatus_TerminalStatusesAreFrozen(t *testing.T) {
	t.Parallel()

	frozen := []domain.TripStatus{
		domain.TripStatusNotFound,
		domain.TripStatusFinished,
		domain.TripStatusDriverCanceled,
		domain.TripStatusRiderCanceled,
		domain.TripStatusExpired,
	}
	for _, status := range frozen {
		for _, event := range allEvents {
			if _, ok := service.NextStatus(status, event); ok {
				t.Errorf("expected (%s, %s) to be rejected", status, event)
			}
		}
	}
}

package service

import (
	"context"
	"log"

	"dispatch/internal/domain"
)

// PushType represents the type of push notification.
type PushType string

const (
	PushNewRequest     PushType = "NEW_REQUEST"
	PushNewMessage     PushType = "NEW_MESSAGE"
	PushPaymentSettled PushType = "PAYMENT_SETTLED"
)

// Push is a notification bound for one device token.
type Push struct {
	Type  PushType
	Token string
	Title string
	Body  string
}

// PushSender delivers push notifications. Delivery is fire-and-forget:
// implementations never raise errors that unwind a state transition.
type PushSender interface {
	NotifyNewRequest(ctx context.Context, drivers []*domain.Driver)
	NotifyPaymentSettled(ctx context.Context, driver *domain.Driver)
}

// PushService is the default PushSender. The real delivery channel (FCM,
// APNS) hangs off send; this implementation logs.
type PushService struct{}

// NewPushService creates a new PushService.
func NewPushService() *PushService {
	return &PushService{}
}

// NotifyNewRequest alerts candidate drivers about a new trip request.
// Drivers without a registered token are skipped.
func (s *PushService) NotifyNewRequest(ctx context.Context, drivers []*domain.Driver) {
	for _, driver := range drivers {
		if driver.PushToken == "" {
			continue
		}
		s.send(Push{
			Type:  PushNewRequest,
			Token: driver.PushToken,
			Title: "New Request",
			Body:  "New request is available.",
		})
	}
}

// NotifyPaymentSettled tells the driver their trip payment settled.
func (s *PushService) NotifyPaymentSettled(ctx context.Context, driver *domain.Driver) {
	if driver == nil || driver.PushToken == "" {
		return
	}
	s.send(Push{
		Type:  PushPaymentSettled,
		Token: driver.PushToken,
		Title: "Paid!",
		Body:  "Trip payment has been settled",
	})
}

func (s *PushService) send(push Push) {
	log.Printf("[PUSH] type=%s token=%s title=%s", push.Type, push.Token, push.Title)
}

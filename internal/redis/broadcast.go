package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"dispatch/internal/domain"
)

// Broadcast channel names. Subscribers outside the core filter by
// recipient relevance.
const (
	EventOrderCreated = "orderCreated"
	EventOrderUpdated = "orderUpdated"
	EventOrderRemoved = "orderRemoved"
)

// TripEvent is the payload published on a trip broadcast channel.
type TripEvent struct {
	Name string       `json:"name"`
	Trip *domain.Trip `json:"trip"`

	// DriverIDs carries the candidate pool for orderCreated events.
	DriverIDs []string `json:"driverIds,omitempty"`

	// ExcludeDriverID filters orderRemoved fan-out: subscribers must not
	// deliver the removal to this driver (the acceptance winner).
	ExcludeDriverID string `json:"excludeDriverId,omitempty"`
}

// Broadcaster publishes trip events over Redis pub/sub. Delivery is
// best-effort: publishing failures are the caller's to log, never to
// propagate into a state transition.
type Broadcaster struct {
	client *redis.Client
}

// NewBroadcaster creates a new Broadcaster.
func NewBroadcaster(client *redis.Client) *Broadcaster {
	return &Broadcaster{client: client}
}

// Publish sends the event on its named channel.
func (b *Broadcaster) Publish(ctx context.Context, event TripEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, event.Name, payload).Err()
}

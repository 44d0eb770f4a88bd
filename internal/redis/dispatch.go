package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DispatchStore keeps transient bookkeeping for trips in the
// dispatch-pending window: which drivers were offered each trip. It is
// hygiene state, not authoritative trip state.
type DispatchStore struct {
	client *redis.Client
}

// NewDispatchStore creates a new DispatchStore.
func NewDispatchStore(client *redis.Client) *DispatchStore {
	return &DispatchStore{client: client}
}

func notifiedKey(tripID string) string {
	return fmt.Sprintf("dispatch:notified:%s", tripID)
}

// MarkNotified records that a driver was offered the trip.
func (s *DispatchStore) MarkNotified(ctx context.Context, tripID, driverID string) error {
	return s.client.SAdd(ctx, notifiedKey(tripID), driverID).Err()
}

// Notified returns the drivers offered the trip.
func (s *DispatchStore) Notified(ctx context.Context, tripID string) ([]string, error) {
	return s.client.SMembers(ctx, notifiedKey(tripID)).Result()
}

// Expire removes the bookkeeping for trips that left the dispatch-pending
// window (accepted, canceled or expired).
func (s *DispatchStore) Expire(ctx context.Context, tripIDs ...string) error {
	if len(tripIDs) == 0 {
		return nil
	}
	keys := make([]string, len(tripIDs))
	for i, id := range tripIDs {
		keys[i] = notifiedKey(id)
	}
	return s.client.Del(ctx, keys...).Err()
}

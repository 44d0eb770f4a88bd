package redis

import (
	"context"
	"time"

	"dispatch/internal/domain"
)

// PresenceStoreInterface defines the geospatial driver index contract.
type PresenceStoreInterface interface {
	RecordPosition(ctx context.Context, driverID string, coord domain.GeoPoint, at time.Time) error
	FindOnlineWithin(ctx context.Context, point domain.GeoPoint, radiusMeters float64) ([]string, error)
	Coordinate(ctx context.Context, driverID string) (domain.GeoPoint, bool, error)
	Status(ctx context.Context, driverID string) (domain.DriverStatus, error)
	SetStatus(ctx context.Context, driverID string, status domain.DriverStatus) error
}

// DispatchStoreInterface defines the dispatch bookkeeping contract.
type DispatchStoreInterface interface {
	MarkNotified(ctx context.Context, tripID, driverID string) error
	Notified(ctx context.Context, tripID string) ([]string, error)
	Expire(ctx context.Context, tripIDs ...string) error
}

// BroadcasterInterface defines the trip event publishing contract.
type BroadcasterInterface interface {
	Publish(ctx context.Context, event TripEvent) error
}

// Ensure concrete types implement interfaces.
var (
	_ PresenceStoreInterface = (*PresenceStore)(nil)
	_ DispatchStoreInterface = (*DispatchStore)(nil)
	_ BroadcasterInterface   = (*Broadcaster)(nil)
)

package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"dispatch/internal/domain"
)

const (
	driverGeoKey    = "drivers:geo"
	driverStatusKey = "drivers:status"
	driverSeenKey   = "drivers:seen"
)

// PresenceStore is the geospatial driver index: the single authority for
// driver coordinates and online status. No other component mutates a
// presence record.
type PresenceStore struct {
	client *redis.Client

	// heartbeatTimeout marks a driver offline when no position update
	// arrived within it. Zero disables the check.
	heartbeatTimeout time.Duration
}

// NewPresenceStore creates a new PresenceStore.
func NewPresenceStore(client *redis.Client, heartbeatTimeout time.Duration) *PresenceStore {
	return &PresenceStore{client: client, heartbeatTimeout: heartbeatTimeout}
}

// RecordPosition overwrites the driver's presence record with a new
// coordinate. A driver with no status, or marked offline, comes back
// online; a driver in service keeps that status.
func (s *PresenceStore) RecordPosition(ctx context.Context, driverID string, coord domain.GeoPoint, at time.Time) error {
	status, err := s.client.HGet(ctx, driverStatusKey, driverID).Result()
	if err != nil && err != redis.Nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.GeoAdd(ctx, driverGeoKey, &redis.GeoLocation{
		Name:      driverID,
		Longitude: coord.Lng,
		Latitude:  coord.Lat,
	})
	pipe.HSet(ctx, driverSeenKey, driverID, at.Unix())
	if status != string(domain.DriverStatusInService) {
		pipe.HSet(ctx, driverStatusKey, driverID, string(domain.DriverStatusOnline))
	}
	_, err = pipe.Exec(ctx)
	return err
}

// FindOnlineWithin returns the IDs of online drivers within radiusMeters
// of the point, nearest first.
func (s *PresenceStore) FindOnlineWithin(ctx context.Context, point domain.GeoPoint, radiusMeters float64) ([]string, error) {
	results, err := s.client.GeoSearch(ctx, driverGeoKey, &redis.GeoSearchQuery{
		Longitude:  point.Lng,
		Latitude:   point.Lat,
		Radius:     radiusMeters,
		RadiusUnit: "m",
		Sort:       "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return nil, nil
	}

	statuses, err := s.client.HMGet(ctx, driverStatusKey, results...).Result()
	if err != nil {
		return nil, err
	}
	seen, err := s.client.HMGet(ctx, driverSeenKey, results...).Result()
	if err != nil {
		return nil, err
	}

	online := make([]string, 0, len(results))
	for i, driverID := range results {
		if statuses[i] != string(domain.DriverStatusOnline) {
			continue
		}
		if s.stale(seen[i], time.Now()) {
			continue
		}
		online = append(online, driverID)
	}
	return online, nil
}

// Coordinate returns the driver's last known position. An unknown driver
// returns ok=false, never an error.
func (s *PresenceStore) Coordinate(ctx context.Context, driverID string) (domain.GeoPoint, bool, error) {
	positions, err := s.client.GeoPos(ctx, driverGeoKey, driverID).Result()
	if err != nil {
		return domain.GeoPoint{}, false, err
	}
	if len(positions) == 0 || positions[0] == nil {
		return domain.GeoPoint{}, false, nil
	}
	return domain.GeoPoint{Lat: positions[0].Latitude, Lng: positions[0].Longitude}, true, nil
}

// Status returns the driver's current presence status. An unknown driver
// is offline.
func (s *PresenceStore) Status(ctx context.Context, driverID string) (domain.DriverStatus, error) {
	status, err := s.client.HGet(ctx, driverStatusKey, driverID).Result()
	if err != nil {
		if err == redis.Nil {
			return domain.DriverStatusOffline, nil
		}
		return "", err
	}
	return domain.DriverStatus(status), nil
}

// SetStatus transitions the driver between ONLINE, IN_SERVICE and OFFLINE.
// Going offline also drops the coordinate from the geo index.
func (s *PresenceStore) SetStatus(ctx context.Context, driverID string, status domain.DriverStatus) error {
	if status == domain.DriverStatusOffline {
		pipe := s.client.Pipeline()
		pipe.HDel(ctx, driverStatusKey, driverID)
		pipe.HDel(ctx, driverSeenKey, driverID)
		pipe.ZRem(ctx, driverGeoKey, driverID)
		_, err := pipe.Exec(ctx)
		return err
	}
	return s.client.HSet(ctx, driverStatusKey, driverID, string(status)).Err()
}

func (s *PresenceStore) stale(seen interface{}, now time.Time) bool {
	if s.heartbeatTimeout <= 0 {
		return false
	}
	raw, ok := seen.(string)
	if !ok {
		return true
	}
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return true
	}
	return now.Sub(time.Unix(ts, 0)) > s.heartbeatTimeout
}

package repository

import (
	"context"
	"time"

	"dispatch/internal/domain"
)

// TripRepository defines the persistence operations for trips.
type TripRepository interface {
	// Create persists a new trip.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by ID.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// GetActiveByRiderID retrieves the rider's trip in a non-terminal
	// status. Returns ErrNotFound if the rider has no active trip.
	GetActiveByRiderID(ctx context.Context, riderID string) (*domain.Trip, error)

	// GetLastByRiderID retrieves the rider's most recent trip.
	GetLastByRiderID(ctx context.Context, riderID string) (*domain.Trip, error)

	// AssignDriver atomically claims the trip for a driver: it sets the
	// driver, ETA and DRIVER_ACCEPTED status only if the current status is
	// in the allow-list and no driver is assigned yet. Returns false when
	// the trip was already claimed or left the allowed statuses.
	AssignDriver(ctx context.Context, tripID, driverID string, eta time.Time, allowed []domain.TripStatus) (bool, error)

	// UpdateStatus updates the status of a trip.
	UpdateStatus(ctx context.Context, id string, status domain.TripStatus) error

	// Cancel marks the trip canceled: sets the status, zeroes
	// CostAfterCoupon and stamps the finish time.
	Cancel(ctx context.Context, id string, status domain.TripStatus, finishedAt time.Time) error

	// SetPaidAmount records how much of the fare has been settled.
	SetPaidAmount(ctx context.Context, id string, amount float64) error

	// SetFinished sets the status and finish timestamp together.
	SetFinished(ctx context.Context, id string, status domain.TripStatus, finishedAt time.Time) error

	// ListDispatchExpired returns IDs of trips still in a dispatch-pending
	// status whose booking window lapsed before the cutoff.
	ListDispatchExpired(ctx context.Context, cutoff time.Time) ([]string, error)

	// ExpireBatch marks the given trips EXPIRED. Trips that already left
	// the dispatch-pending statuses are skipped, making the sweep
	// idempotent. Returns the IDs actually expired.
	ExpireBatch(ctx context.Context, ids []string) ([]string, error)
}

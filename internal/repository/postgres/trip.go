package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/lib/pq"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

const tripColumns = `id, rider_id, driver_id, service_id, currency, points, addresses, status,
	distance_best, duration_best, cost_best, cost_after_coupon, paid_amount,
	expected_at, eta_pickup, finished_at, operator_id, created_at`

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (` + tripColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	points, err := json.Marshal(trip.Points)
	if err != nil {
		return err
	}
	addresses, err := json.Marshal(trip.Addresses)
	if err != nil {
		return err
	}

	_, err = r.q.ExecContext(ctx, query,
		trip.ID,
		trip.RiderID,
		nullString(trip.DriverID),
		trip.ServiceID,
		trip.Currency,
		points,
		addresses,
		trip.Status,
		trip.DistanceBest,
		trip.DurationBest,
		trip.CostBest,
		trip.CostAfterCoupon,
		trip.PaidAmount,
		nullTime(trip.ExpectedAt),
		nullTime(trip.ETAPickup),
		nullTime(trip.FinishedAt),
		nullString(trip.OperatorID),
		trip.CreatedAt,
	)

	return err
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`
	return r.scanTrip(r.q.QueryRowContext(ctx, query, id))
}

// GetActiveByRiderID retrieves the rider's trip in a non-terminal status.
func (r *TripRepository) GetActiveByRiderID(ctx context.Context, riderID string) (*domain.Trip, error) {
	query := `
		SELECT ` + tripColumns + ` FROM trips
		WHERE rider_id = $1 AND status <> ALL($2)
		ORDER BY created_at DESC LIMIT 1
	`
	terminal := pq.Array([]string{
		string(domain.TripStatusFinished),
		string(domain.TripStatusDriverCanceled),
		string(domain.TripStatusRiderCanceled),
		string(domain.TripStatusExpired),
		string(domain.TripStatusNotFound),
	})
	return r.scanTrip(r.q.QueryRowContext(ctx, query, riderID, terminal))
}

// GetLastByRiderID retrieves the rider's most recent trip.
func (r *TripRepository) GetLastByRiderID(ctx context.Context, riderID string) (*domain.Trip, error) {
	query := `
		SELECT ` + tripColumns + ` FROM trips
		WHERE rider_id = $1 ORDER BY created_at DESC LIMIT 1
	`
	return r.scanTrip(r.q.QueryRowContext(ctx, query, riderID))
}

// AssignDriver atomically claims the trip for a driver. The conditional
// update is the arbitration point for concurrent acceptances: the WHERE
// clause admits at most one winner per trip.
func (r *TripRepository) AssignDriver(ctx context.Context, tripID, driverID string, eta time.Time, allowed []domain.TripStatus) (bool, error) {
	query := `
		UPDATE trips
		SET status = $1, driver_id = $2, eta_pickup = $3
		WHERE id = $4 AND driver_id IS NULL AND status = ANY($5)
	`

	statuses := make([]string, len(allowed))
	for i, s := range allowed {
		statuses[i] = string(s)
	}

	result, err := r.q.ExecContext(ctx, query,
		domain.TripStatusDriverAccepted,
		driverID,
		eta,
		tripID,
		pq.Array(statuses),
	)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected == 1, nil
}

// UpdateStatus updates the status of a trip.
func (r *TripRepository) UpdateStatus(ctx context.Context, id string, status domain.TripStatus) error {
	return r.exec(ctx, `UPDATE trips SET status = $1 WHERE id = $2`, status, id)
}

// Cancel marks the trip canceled, zeroing the fare and stamping the
// finish time.
func (r *TripRepository) Cancel(ctx context.Context, id string, status domain.TripStatus, finishedAt time.Time) error {
	return r.exec(ctx, `
		UPDATE trips SET status = $1, cost_after_coupon = 0, finished_at = $2
		WHERE id = $3
	`, status, finishedAt, id)
}

// SetPaidAmount records how much of the fare has been settled.
func (r *TripRepository) SetPaidAmount(ctx context.Context, id string, amount float64) error {
	return r.exec(ctx, `UPDATE trips SET paid_amount = $1 WHERE id = $2`, amount, id)
}

// SetFinished sets the status and finish timestamp together.
func (r *TripRepository) SetFinished(ctx context.Context, id string, status domain.TripStatus, finishedAt time.Time) error {
	return r.exec(ctx, `UPDATE trips SET status = $1, finished_at = $2 WHERE id = $3`, status, finishedAt, id)
}

// ListDispatchExpired returns IDs of dispatch-pending trips whose booking
// window lapsed before the cutoff.
func (r *TripRepository) ListDispatchExpired(ctx context.Context, cutoff time.Time) ([]string, error) {
	query := `
		SELECT id FROM trips
		WHERE status = ANY($1) AND expected_at IS NOT NULL AND expected_at < $2
	`
	rows, err := r.q.QueryContext(ctx, query, dispatchPendingStatuses(), cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ExpireBatch marks the given trips EXPIRED. Trips that already left the
// dispatch-pending statuses are skipped.
func (r *TripRepository) ExpireBatch(ctx context.Context, ids []string) ([]string, error) {
	query := `
		UPDATE trips SET status = $1
		WHERE id = ANY($2) AND status = ANY($3)
		RETURNING id
	`
	rows, err := r.q.QueryContext(ctx, query, domain.TripStatusExpired, pq.Array(ids), dispatchPendingStatuses())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expired []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		expired = append(expired, id)
	}
	return expired, rows.Err()
}

func dispatchPendingStatuses() interface{} {
	return pq.Array([]string{
		string(domain.TripStatusRequested),
		string(domain.TripStatusBooked),
		string(domain.TripStatusFound),
		string(domain.TripStatusNoCloseFound),
	})
}

func (r *TripRepository) exec(ctx context.Context, query string, args ...any) error {
	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *TripRepository) scanTrip(row rowScanner) (*domain.Trip, error) {
	var trip domain.Trip
	var driverID, operatorID sql.NullString
	var expectedAt, etaPickup, finishedAt sql.NullTime
	var points, addresses []byte

	err := row.Scan(
		&trip.ID,
		&trip.RiderID,
		&driverID,
		&trip.ServiceID,
		&trip.Currency,
		&points,
		&addresses,
		&trip.Status,
		&trip.DistanceBest,
		&trip.DurationBest,
		&trip.CostBest,
		&trip.CostAfterCoupon,
		&trip.PaidAmount,
		&expectedAt,
		&etaPickup,
		&finishedAt,
		&operatorID,
		&trip.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(points, &trip.Points); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(addresses, &trip.Addresses); err != nil {
		return nil, err
	}

	if driverID.Valid {
		trip.DriverID = driverID.String
	}
	if operatorID.Valid {
		trip.OperatorID = operatorID.String
	}
	if expectedAt.Valid {
		trip.ExpectedAt = expectedAt.Time
	}
	if etaPickup.Valid {
		trip.ETAPickup = etaPickup.Time
	}
	if finishedAt.Valid {
		trip.FinishedAt = finishedAt.Time
	}

	return &trip, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

package postgres

import (
	"context"
	"database/sql"
	"errors"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// RiderRepository is a PostgreSQL implementation of repository.RiderRepository.
type RiderRepository struct {
	q Querier
}

// NewRiderRepository creates a new PostgreSQL rider repository.
func NewRiderRepository(db *sql.DB) *RiderRepository {
	return &RiderRepository{q: db}
}

// Create adds a new rider.
func (r *RiderRepository) Create(ctx context.Context, rider *domain.Rider) error {
	query := `
		INSERT INTO riders (id, name, phone, push_token, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.q.ExecContext(ctx, query,
		rider.ID,
		rider.Name,
		rider.Phone,
		nullString(rider.PushToken),
		rider.CreatedAt,
	)
	return err
}

// GetByID retrieves a rider by ID.
func (r *RiderRepository) GetByID(ctx context.Context, id string) (*domain.Rider, error) {
	query := `SELECT id, name, phone, push_token, created_at FROM riders WHERE id = $1`

	var rider domain.Rider
	var pushToken sql.NullString

	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&rider.ID,
		&rider.Name,
		&rider.Phone,
		&pushToken,
		&rider.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if pushToken.Valid {
		rider.PushToken = pushToken.String
	}

	return &rider, nil
}

// FleetRepository is a PostgreSQL implementation of repository.FleetRepository.
type FleetRepository struct {
	q Querier
}

// NewFleetRepository creates a new PostgreSQL fleet repository.
func NewFleetRepository(db *sql.DB) *FleetRepository {
	return &FleetRepository{q: db}
}

// GetByID retrieves a fleet by ID.
func (r *FleetRepository) GetByID(ctx context.Context, id string) (*domain.Fleet, error) {
	query := `
		SELECT id, name, commission_share_flat, commission_share_percent
		FROM fleets WHERE id = $1
	`

	var fleet domain.Fleet
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&fleet.ID,
		&fleet.Name,
		&fleet.CommissionShareFlat,
		&fleet.CommissionSharePercent,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &fleet, nil
}

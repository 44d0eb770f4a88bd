package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// ServiceRepository is a PostgreSQL implementation of repository.ServiceRepository.
type ServiceRepository struct {
	q Querier
}

// NewServiceRepository creates a new PostgreSQL tariff repository.
func NewServiceRepository(db *sql.DB) *ServiceRepository {
	return &ServiceRepository{q: db}
}

const serviceColumns = `id, region_id, name, flat_fee, per_hundred_meters, per_duration_second,
	minimum_fee, maximum_fee, provider_share_flat, provider_share_percent,
	cancellation_total_fee, cancellation_driver_share, search_radius,
	prepay_percent, maximum_destination_distance, payment_method`

// GetByID retrieves a tariff by ID.
func (r *ServiceRepository) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1`
	return scanService(r.q.QueryRowContext(ctx, query, id))
}

// ListByRegion retrieves all tariffs configured for a region.
func (r *ServiceRepository) ListByRegion(ctx context.Context, regionID string) ([]*domain.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE region_id = $1 ORDER BY name`
	rows, err := r.q.QueryContext(ctx, query, regionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []*domain.Service
	for rows.Next() {
		service, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, service)
	}
	return services, rows.Err()
}

func scanService(row rowScanner) (*domain.Service, error) {
	var s domain.Service
	err := row.Scan(
		&s.ID,
		&s.RegionID,
		&s.Name,
		&s.FlatFee,
		&s.PerHundredMeters,
		&s.PerDurationSecond,
		&s.MinimumFee,
		&s.MaximumFee,
		&s.ProviderShareFlat,
		&s.ProviderSharePercent,
		&s.CancellationTotalFee,
		&s.CancellationDriverShare,
		&s.SearchRadius,
		&s.PrepayPercent,
		&s.MaximumDestinationDistance,
		&s.PaymentMethod,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// RegionRepository is a PostgreSQL implementation of repository.RegionRepository.
type RegionRepository struct {
	q Querier
}

// NewRegionRepository creates a new PostgreSQL region repository.
func NewRegionRepository(db *sql.DB) *RegionRepository {
	return &RegionRepository{q: db}
}

// ListEnabled retrieves all enabled regions.
func (r *RegionRepository) ListEnabled(ctx context.Context) ([]*domain.Region, error) {
	query := `SELECT id, name, currency, enabled, polygon FROM regions WHERE enabled`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regions []*domain.Region
	for rows.Next() {
		var region domain.Region
		var polygon []byte
		if err := rows.Scan(&region.ID, &region.Name, &region.Currency, &region.Enabled, &polygon); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(polygon, &region.Polygon); err != nil {
			return nil, err
		}
		regions = append(regions, &region)
	}
	return regions, rows.Err()
}

package repository

import (
	"context"

	"dispatch/internal/domain"
)

// ServiceRepository defines the persistence operations for tariffs.
type ServiceRepository interface {
	// GetByID retrieves a tariff by ID.
	GetByID(ctx context.Context, id string) (*domain.Service, error)

	// ListByRegion retrieves all tariffs configured for a region.
	ListByRegion(ctx context.Context, regionID string) ([]*domain.Service, error)
}

// RegionRepository defines the persistence operations for regions.
type RegionRepository interface {
	// ListEnabled retrieves all enabled regions.
	ListEnabled(ctx context.Context) ([]*domain.Region, error)
}

// ActivityRepository appends to the trip audit trail. Entries are never
// mutated or deleted.
type ActivityRepository interface {
	Append(ctx context.Context, activity *domain.Activity) error
}

// FeedbackRepository defines the persistence operations for trip reviews.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *domain.Feedback) error
}

package postgres

import (
	"context"
	"database/sql"

	"dispatch/internal/domain"
)

// ActivityRepository is a PostgreSQL implementation of repository.ActivityRepository.
// Rows are insert-only.
type ActivityRepository struct {
	q Querier
}

// NewActivityRepository creates a new PostgreSQL activity repository.
func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{q: db}
}

// Append inserts one audit record.
func (r *ActivityRepository) Append(ctx context.Context, activity *domain.Activity) error {
	query := `
		INSERT INTO trip_activities (id, trip_id, type, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.q.ExecContext(ctx, query,
		activity.ID,
		activity.TripID,
		activity.Type,
		activity.CreatedAt,
	)
	return err
}

// FeedbackRepository is a PostgreSQL implementation of repository.FeedbackRepository.
type FeedbackRepository struct {
	q Querier
}

// NewFeedbackRepository creates a new PostgreSQL feedback repository.
func NewFeedbackRepository(db *sql.DB) *FeedbackRepository {
	return &FeedbackRepository{q: db}
}

// Create persists a trip review.
func (r *FeedbackRepository) Create(ctx context.Context, feedback *domain.Feedback) error {
	query := `
		INSERT INTO feedbacks (id, trip_id, driver_id, score, review, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.q.ExecContext(ctx, query,
		feedback.ID,
		feedback.TripID,
		feedback.DriverID,
		feedback.Score,
		feedback.Review,
		feedback.CreatedAt,
	)
	return err
}

package domain

import "time"

// Rider represents a rider in the system.
type Rider struct {
	ID        string
	Name      string
	Phone     string
	PushToken string
	CreatedAt time.Time
}

// Feedback is a rider's review of a finished trip.
type Feedback struct {
	ID        string
	TripID    string
	DriverID  string
	Score     int
	Review    string
	CreatedAt time.Time
}

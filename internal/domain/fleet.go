package domain

// Fleet is a company of drivers that takes a cut of the platform
// commission for trips served by its drivers.
type Fleet struct {
	ID                     string
	Name                   string
	CommissionShareFlat    float64
	CommissionSharePercent float64
}

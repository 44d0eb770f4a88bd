package domain

// DriverStatus represents the current presence status of a driver.
type DriverStatus string

const (
	DriverStatusOnline    DriverStatus = "ONLINE"
	DriverStatusInService DriverStatus = "IN_SERVICE"
	DriverStatusOffline   DriverStatus = "OFFLINE"
)

// Driver represents a driver in the system. Presence (coordinate and
// online status) lives in the geospatial index, not here.
type Driver struct {
	ID         string
	Name       string
	Phone      string
	FleetID    string   // empty when the driver is independent
	ServiceIDs []string // tariffs the driver serves
	PushToken  string
}

// Serves reports whether the driver serves the given tariff.
func (d *Driver) Serves(serviceID string) bool {
	for _, id := range d.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}

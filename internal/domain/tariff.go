package domain

// ServicePaymentMethod restricts how a tariff may be paid.
type ServicePaymentMethod string

const (
	PaymentMethodCashCredit ServicePaymentMethod = "CASH_CREDIT"
	PaymentMethodOnlyCredit ServicePaymentMethod = "ONLY_CREDIT"
)

// Service is a pricing and policy configuration (tariff) applicable to
// trips in a region. Immutable during a trip: the trip stores its own
// quoted cost, so tariff changes never affect in-flight trips.
type Service struct {
	ID                         string
	RegionID                   string
	Name                       string
	FlatFee                    float64
	PerHundredMeters           float64 // rate per 100m of distance
	PerDurationSecond          float64 // rate per second of travel
	MinimumFee                 float64 // 0 = no minimum
	MaximumFee                 float64 // 0 = no maximum
	ProviderShareFlat          float64
	ProviderSharePercent       float64
	CancellationTotalFee       float64
	CancellationDriverShare    float64
	SearchRadius               float64 // meters
	PrepayPercent              float64 // 0 = no prepayment required
	MaximumDestinationDistance float64 // meters, 0 = unlimited
	PaymentMethod              ServicePaymentMethod
}

// Region is a supported service area with its settlement currency.
type Region struct {
	ID       string
	Name     string
	Currency string
	Enabled  bool
	Polygon  []GeoPoint
}

package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"dispatch/internal/domain"
	"dispatch/internal/redis"
	"dispatch/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is a mock implementation of TripRepository.
type MockTripRepository struct {
	mu    sync.RWMutex
	trips map[string]*domain.Trip

	// Counters for verification
	CreateCallCount       int32
	AssignDriverCallCount int32
	UpdateStatusCallCount int32

	// Error injection
	CreateError       error
	AssignDriverError error
	UpdateStatusError error
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{
		trips: make(map[string]*domain.Trip),
	}
}

// AddTrip adds a trip to the mock repository.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
}

// GetTrip returns the stored trip for test assertions.
func (m *MockTripRepository) GetTrip(id string) *domain.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trips[id]
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
	return nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *trip
	return &copy, nil
}

func (m *MockTripRepository) GetActiveByRiderID(ctx context.Context, riderID string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.trips {
		if t.RiderID == riderID && !t.Status.IsTerminal() && t.Status != domain.TripStatusNotFound {
			copy := *t
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockTripRepository) GetLastByRiderID(ctx context.Context, riderID string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var last *domain.Trip
	for _, t := range m.trips {
		if t.RiderID != riderID {
			continue
		}
		if last == nil || t.CreatedAt.After(last.CreatedAt) {
			last = t
		}
	}
	if last == nil {
		return nil, repository.ErrNotFound
	}
	copy := *last
	return &copy, nil
}

// AssignDriver mirrors the conditional update of the real repository: the
// claim succeeds only while no driver is set and the status is allowed,
// and the check-and-set is atomic under the lock.
func (m *MockTripRepository) AssignDriver(ctx context.Context, tripID, driverID string, eta time.Time, allowed []domain.TripStatus) (bool, error) {
	atomic.AddInt32(&m.AssignDriverCallCount, 1)
	if m.AssignDriverError != nil {
		return false, m.AssignDriverError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[tripID]
	if !ok {
		return false, nil
	}
	if trip.DriverID != "" {
		return false, nil
	}
	allowedStatus := false
	for _, s := range allowed {
		if trip.Status == s {
			allowedStatus = true
			break
		}
	}
	if !allowedStatus {
		return false, nil
	}
	trip.DriverID = driverID
	trip.ETAPickup = eta
	trip.Status = domain.TripStatusDriverAccepted
	return true, nil
}

func (m *MockTripRepository) UpdateStatus(ctx context.Context, id string, status domain.TripStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[id]
	if !ok {
		return repository.ErrNotFound
	}
	trip.Status = status
	return nil
}

func (m *MockTripRepository) Cancel(ctx context.Context, id string, status domain.TripStatus, finishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[id]
	if !ok {
		return repository.ErrNotFound
	}
	trip.Status = status
	trip.CostAfterCoupon = 0
	trip.FinishedAt = finishedAt
	return nil
}

func (m *MockTripRepository) SetPaidAmount(ctx context.Context, id string, amount float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[id]
	if !ok {
		return repository.ErrNotFound
	}
	trip.PaidAmount = amount
	return nil
}

func (m *MockTripRepository) SetFinished(ctx context.Context, id string, status domain.TripStatus, finishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[id]
	if !ok {
		return repository.ErrNotFound
	}
	trip.Status = status
	trip.FinishedAt = finishedAt
	return nil
}

func (m *MockTripRepository) ListDispatchExpired(ctx context.Context, cutoff time.Time) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for _, t := range m.trips {
		if t.Status.IsDispatchPending() && t.ExpectedAt.Before(cutoff) {
			ids = append(ids, t.ID)
		}
	}
	return ids, nil
}

func (m *MockTripRepository) ExpireBatch(ctx context.Context, ids []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var expired []string
	for _, id := range ids {
		trip, ok := m.trips[id]
		if !ok || !trip.Status.IsDispatchPending() {
			continue
		}
		trip.Status = domain.TripStatusExpired
		expired = append(expired, id)
	}
	return expired, nil
}

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver

	CreateCallCount int32
	CreateError     error
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{
		drivers: make(map[string]*domain.Driver),
	}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *driver
	return &copy, nil
}

func (m *MockDriverRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Driver, 0, len(ids))
	for _, id := range ids {
		if d, ok := m.drivers[id]; ok {
			copy := *d
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockDriverRepository) GetByPhone(ctx context.Context, phone string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.drivers {
		if d.Phone == phone {
			copy := *d
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

// ──────────────────────────────────────────────
// MOCK TARIFF / REGION / FLEET REPOSITORIES
// ──────────────────────────────────────────────

// MockServiceRepository is a mock implementation of ServiceRepository.
type MockServiceRepository struct {
	mu       sync.RWMutex
	services map[string]*domain.Service
}

// NewMockServiceRepository creates a new mock tariff repository.
func NewMockServiceRepository() *MockServiceRepository {
	return &MockServiceRepository{
		services: make(map[string]*domain.Service),
	}
}

// AddService adds a tariff to the mock repository.
func (m *MockServiceRepository) AddService(service *domain.Service) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.services[service.ID] = service
}

func (m *MockServiceRepository) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	service, ok := m.services[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *service
	return &copy, nil
}

func (m *MockServiceRepository) ListByRegion(ctx context.Context, regionID string) ([]*domain.Service, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Service
	for _, s := range m.services {
		if s.RegionID == regionID {
			copy := *s
			result = append(result, &copy)
		}
	}
	return result, nil
}

// MockRegionRepository is a mock implementation of RegionRepository.
type MockRegionRepository struct {
	mu      sync.RWMutex
	regions []*domain.Region
}

// NewMockRegionRepository creates a new mock region repository.
func NewMockRegionRepository() *MockRegionRepository {
	return &MockRegionRepository{}
}

// AddRegion adds a region to the mock repository.
func (m *MockRegionRepository) AddRegion(region *domain.Region) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regions = append(m.regions, region)
}

func (m *MockRegionRepository) ListEnabled(ctx context.Context) ([]*domain.Region, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Region
	for _, r := range m.regions {
		if r.Enabled {
			result = append(result, r)
		}
	}
	return result, nil
}

// MockFleetRepository is a mock implementation of FleetRepository.
type MockFleetRepository struct {
	mu     sync.RWMutex
	fleets map[string]*domain.Fleet
}

// NewMockFleetRepository creates a new mock fleet repository.
func NewMockFleetRepository() *MockFleetRepository {
	return &MockFleetRepository{
		fleets: make(map[string]*domain.Fleet),
	}
}

// AddFleet adds a fleet to the mock repository.
func (m *MockFleetRepository) AddFleet(fleet *domain.Fleet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fleets[fleet.ID] = fleet
}

func (m *MockFleetRepository) GetByID(ctx context.Context, id string) (*domain.Fleet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fleet, ok := m.fleets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *fleet
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK ACTIVITY / FEEDBACK REPOSITORIES
// ──────────────────────────────────────────────

// MockActivityRepository is a mock implementation of ActivityRepository.
type MockActivityRepository struct {
	mu         sync.RWMutex
	activities []*domain.Activity

	AppendError error
}

// NewMockActivityRepository creates a new mock activity repository.
func NewMockActivityRepository() *MockActivityRepository {
	return &MockActivityRepository{}
}

func (m *MockActivityRepository) Append(ctx context.Context, activity *domain.Activity) error {
	if m.AppendError != nil {
		return m.AppendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activities = append(m.activities, activity)
	return nil
}

// Activities returns appended activities for test assertions.
func (m *MockActivityRepository) Activities() []*domain.Activity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Activity, len(m.activities))
	copy(result, m.activities)
	return result
}

// MockFeedbackRepository is a mock implementation of FeedbackRepository.
type MockFeedbackRepository struct {
	mu        sync.RWMutex
	feedbacks []*domain.Feedback

	CreateError error
}

// NewMockFeedbackRepository creates a new mock feedback repository.
func NewMockFeedbackRepository() *MockFeedbackRepository {
	return &MockFeedbackRepository{}
}

func (m *MockFeedbackRepository) Create(ctx context.Context, feedback *domain.Feedback) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feedbacks = append(m.feedbacks, feedback)
	return nil
}

// Feedbacks returns stored feedbacks for test assertions.
func (m *MockFeedbackRepository) Feedbacks() []*domain.Feedback {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Feedback, len(m.feedbacks))
	copy(result, m.feedbacks)
	return result
}

// ──────────────────────────────────────────────
// MOCK LEDGER REPOSITORY
// ──────────────────────────────────────────────

type walletKey struct {
	ownerType domain.WalletOwnerType
	ownerID   string
	currency  string
}

// MockLedgerRepository is a mock implementation of LedgerRepository. Post
// is atomic under the lock, like the real transactional implementation.
type MockLedgerRepository struct {
	mu           sync.RWMutex
	wallets      map[walletKey]*domain.Wallet
	transactions []*domain.Transaction

	PostCallCount int32
	PostError     error
}

// NewMockLedgerRepository creates a new mock ledger repository.
func NewMockLedgerRepository() *MockLedgerRepository {
	return &MockLedgerRepository{
		wallets: make(map[walletKey]*domain.Wallet),
	}
}

// SetBalance seeds a wallet balance.
func (m *MockLedgerRepository) SetBalance(ownerType domain.WalletOwnerType, ownerID, currency string, balance float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := walletKey{ownerType, ownerID, currency}
	m.wallets[key] = &domain.Wallet{
		ID:        string(ownerType) + ":" + ownerID + ":" + currency,
		OwnerType: ownerType,
		OwnerID:   ownerID,
		Currency:  currency,
		Balance:   balance,
	}
}

// Balance returns the current balance for test assertions (0 if absent).
func (m *MockLedgerRepository) Balance(ownerType domain.WalletOwnerType, ownerID, currency string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wallet, ok := m.wallets[walletKey{ownerType, ownerID, currency}]
	if !ok {
		return 0
	}
	return wallet.Balance
}

// Transactions returns posted transactions for test assertions.
func (m *MockLedgerRepository) Transactions() []*domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Transaction, len(m.transactions))
	copy(result, m.transactions)
	return result
}

func (m *MockLedgerRepository) Post(ctx context.Context, ownerType domain.WalletOwnerType, ownerID string, txn *domain.Transaction) (*domain.Wallet, error) {
	atomic.AddInt32(&m.PostCallCount, 1)
	if m.PostError != nil {
		return nil, m.PostError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := walletKey{ownerType, ownerID, txn.Currency}
	wallet, ok := m.wallets[key]
	if !ok {
		wallet = &domain.Wallet{
			ID:        string(ownerType) + ":" + ownerID + ":" + txn.Currency,
			OwnerType: ownerType,
			OwnerID:   ownerID,
			Currency:  txn.Currency,
		}
		m.wallets[key] = wallet
	}
	wallet.Balance += txn.Amount
	stored := *txn
	stored.WalletID = wallet.ID
	m.transactions = append(m.transactions, &stored)
	result := *wallet
	return &result, nil
}

func (m *MockLedgerRepository) GetWallet(ctx context.Context, ownerType domain.WalletOwnerType, ownerID, currency string) (*domain.Wallet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wallet, ok := m.wallets[walletKey{ownerType, ownerID, currency}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *wallet
	return &copy, nil
}

func (m *MockLedgerRepository) ListWallets(ctx context.Context, ownerType domain.WalletOwnerType, ownerID string) ([]*domain.Wallet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Wallet
	for key, w := range m.wallets {
		if key.ownerType == ownerType && key.ownerID == ownerID {
			copy := *w
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockLedgerRepository) ListTransactions(ctx context.Context, walletID string) ([]*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Transaction
	for _, t := range m.transactions {
		if t.WalletID == walletID {
			copy := *t
			result = append(result, &copy)
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK PRESENCE STORE
// ──────────────────────────────────────────────

// MockPresenceStore is a mock implementation of the presence index.
type MockPresenceStore struct {
	mu        sync.RWMutex
	positions map[string]domain.GeoPoint
	statuses  map[string]domain.DriverStatus

	SetStatusCallCount int32
	SetStatusError     error
}

// NewMockPresenceStore creates a new mock presence store.
func NewMockPresenceStore() *MockPresenceStore {
	return &MockPresenceStore{
		positions: make(map[string]domain.GeoPoint),
		statuses:  make(map[string]domain.DriverStatus),
	}
}

// SetDriver seeds a driver's position and status.
func (m *MockPresenceStore) SetDriver(driverID string, coord domain.GeoPoint, status domain.DriverStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[driverID] = coord
	m.statuses[driverID] = status
}

func (m *MockPresenceStore) RecordPosition(ctx context.Context, driverID string, coord domain.GeoPoint, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[driverID] = coord
	if m.statuses[driverID] != domain.DriverStatusInService {
		m.statuses[driverID] = domain.DriverStatusOnline
	}
	return nil
}

// FindOnlineWithin returns every seeded ONLINE driver. The mock ignores
// the radius; distance filtering belongs to the real geo index.
func (m *MockPresenceStore) FindOnlineWithin(ctx context.Context, point domain.GeoPoint, radiusMeters float64) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for id, status := range m.statuses {
		if status == domain.DriverStatusOnline {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *MockPresenceStore) Coordinate(ctx context.Context, driverID string) (domain.GeoPoint, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	coord, ok := m.positions[driverID]
	return coord, ok, nil
}

func (m *MockPresenceStore) Status(ctx context.Context, driverID string) (domain.DriverStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	status, ok := m.statuses[driverID]
	if !ok {
		return domain.DriverStatusOffline, nil
	}
	return status, nil
}

func (m *MockPresenceStore) SetStatus(ctx context.Context, driverID string, status domain.DriverStatus) error {
	atomic.AddInt32(&m.SetStatusCallCount, 1)
	if m.SetStatusError != nil {
		return m.SetStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if status == domain.DriverStatusOffline {
		delete(m.positions, driverID)
		delete(m.statuses, driverID)
		return nil
	}
	m.statuses[driverID] = status
	return nil
}

// DriverStatus returns the seeded status for test assertions.
func (m *MockPresenceStore) DriverStatus(driverID string) domain.DriverStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	status, ok := m.statuses[driverID]
	if !ok {
		return domain.DriverStatusOffline
	}
	return status
}

// ──────────────────────────────────────────────
// MOCK DISPATCH STORE
// ──────────────────────────────────────────────

// MockDispatchStore is a mock implementation of the dispatch bookkeeping.
type MockDispatchStore struct {
	mu       sync.RWMutex
	notified map[string][]string

	ExpireCallCount int32
}

// NewMockDispatchStore creates a new mock dispatch store.
func NewMockDispatchStore() *MockDispatchStore {
	return &MockDispatchStore{
		notified: make(map[string][]string),
	}
}

func (m *MockDispatchStore) MarkNotified(ctx context.Context, tripID, driverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notified[tripID] = append(m.notified[tripID], driverID)
	return nil
}

func (m *MockDispatchStore) Notified(ctx context.Context, tripID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]string, len(m.notified[tripID]))
	copy(result, m.notified[tripID])
	return result, nil
}

func (m *MockDispatchStore) Expire(ctx context.Context, tripIDs ...string) error {
	atomic.AddInt32(&m.ExpireCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range tripIDs {
		delete(m.notified, id)
	}
	return nil
}

// NotifiedCount returns how many drivers were notified for a trip.
func (m *MockDispatchStore) NotifiedCount(tripID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.notified[tripID])
}

// ──────────────────────────────────────────────
// MOCK BROADCASTER
// ──────────────────────────────────────────────

// MockBroadcaster is a mock implementation of the trip event publisher.
type MockBroadcaster struct {
	mu     sync.RWMutex
	events []redis.TripEvent

	PublishError error
}

// NewMockBroadcaster creates a new mock broadcaster.
func NewMockBroadcaster() *MockBroadcaster {
	return &MockBroadcaster{}
}

func (m *MockBroadcaster) Publish(ctx context.Context, event redis.TripEvent) error {
	if m.PublishError != nil {
		return m.PublishError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

// Events returns published events for test assertions.
func (m *MockBroadcaster) Events() []redis.TripEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]redis.TripEvent, len(m.events))
	copy(result, m.events)
	return result
}

// EventsNamed returns the published events with the given name.
func (m *MockBroadcaster) EventsNamed(name string) []redis.TripEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []redis.TripEvent
	for _, e := range m.events {
		if e.Name == name {
			result = append(result, e)
		}
	}
	return result
}

// ──────────────────────────────────────────────
// MOCK PUSH SENDER
// ──────────────────────────────────────────────

// MockPushSender is a mock implementation of PushSender.
type MockPushSender struct {
	NewRequestCallCount     int32
	PaymentSettledCallCount int32
}

// NewMockPushSender creates a new mock push sender.
func NewMockPushSender() *MockPushSender {
	return &MockPushSender{}
}

func (m *MockPushSender) NotifyNewRequest(ctx context.Context, drivers []*domain.Driver) {
	atomic.AddInt32(&m.NewRequestCallCount, 1)
}

func (m *MockPushSender) NotifyPaymentSettled(ctx context.Context, driver *domain.Driver) {
	atomic.AddInt32(&m.PaymentSettledCallCount, 1)
}

// ──────────────────────────────────────────────
// STUB ESTIMATOR
// ──────────────────────────────────────────────

// StubEstimator returns fixed route metrics.
type StubEstimator struct {
	Distance float64
	Duration int
	Err      error
}

func (s *StubEstimator) Metrics(ctx context.Context, points []domain.GeoPoint) (float64, int, error) {
	if s.Err != nil {
		return 0, 0, s.Err
	}
	return s.Distance, s.Duration, nil
}

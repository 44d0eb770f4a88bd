package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"dispatch/internal/domain"
	"dispatch/internal/redis"
	"dispatch/internal/repository"
)

// DefaultBookedThreshold is the pickup interval beyond which a trip is
// created as a booking instead of an immediate request.
const DefaultBookedThreshold = 30 * time.Minute

// DefaultDispatchWindow is how long a dispatch-pending trip may sit past
// its expected pickup before the sweep expires it. Immediate requests
// carry an expected pickup of "now", so the window is what keeps them
// open for acceptance.
const DefaultDispatchWindow = 5 * time.Minute

// TripService owns the trip state machine. Every status mutation goes
// through one of its guarded transitions; broadcasts and push
// notifications follow a committed transition and never fail it.
type TripService struct {
	tripRepo     repository.TripRepository
	driverRepo   repository.DriverRepository
	serviceRepo  repository.ServiceRepository
	fleetRepo    repository.FleetRepository
	activityRepo repository.ActivityRepository
	feedbackRepo repository.FeedbackRepository

	regionService *RegionService
	estimator     DistanceEstimator
	presence      redis.PresenceStoreInterface
	dispatch      redis.DispatchStoreInterface
	broadcaster   redis.BroadcasterInterface
	push          PushSender
	ledger        Ledger
	settlement    *SettlementService

	bookedThreshold time.Duration
	dispatchWindow  time.Duration
}

// TripServiceDeps contains the dependencies for a TripService.
type TripServiceDeps struct {
	TripRepo      repository.TripRepository
	DriverRepo    repository.DriverRepository
	ServiceRepo   repository.ServiceRepository
	FleetRepo     repository.FleetRepository
	ActivityRepo  repository.ActivityRepository
	FeedbackRepo  repository.FeedbackRepository
	RegionService *RegionService
	Estimator     DistanceEstimator
	Presence      redis.PresenceStoreInterface
	Dispatch      redis.DispatchStoreInterface
	Broadcaster   redis.BroadcasterInterface
	Push          PushSender
	Ledger        Ledger
	Settlement    *SettlementService

	// BookedThreshold defaults to DefaultBookedThreshold when zero.
	BookedThreshold time.Duration
	// DispatchWindow defaults to DefaultDispatchWindow when zero.
	DispatchWindow time.Duration
}

// NewTripService creates a new TripService.
func NewTripService(deps TripServiceDeps) *TripService {
	threshold := deps.BookedThreshold
	if threshold <= 0 {
		threshold = DefaultBookedThreshold
	}
	window := deps.DispatchWindow
	if window <= 0 {
		window = DefaultDispatchWindow
	}
	return &TripService{
		tripRepo:        deps.TripRepo,
		driverRepo:      deps.DriverRepo,
		serviceRepo:     deps.ServiceRepo,
		fleetRepo:       deps.FleetRepo,
		activityRepo:    deps.ActivityRepo,
		feedbackRepo:    deps.FeedbackRepo,
		regionService:   deps.RegionService,
		estimator:       deps.Estimator,
		presence:        deps.Presence,
		dispatch:        deps.Dispatch,
		broadcaster:     deps.Broadcaster,
		push:            deps.Push,
		ledger:          deps.Ledger,
		settlement:      deps.Settlement,
		bookedThreshold: threshold,
		dispatchWindow:  window,
	}
}

// CreateTripRequest contains the parameters for creating a trip.
type CreateTripRequest struct {
	RiderID         string
	ServiceID       string
	Points          []domain.GeoPoint
	Addresses       []string
	IntervalMinutes int
	OperatorID      string // set when staff create the trip on the rider's behalf
}

// CreateTripResponse contains the created trip and its candidate pool.
type CreateTripResponse struct {
	Trip      *domain.Trip
	DriverIDs []string
}

// CreateTrip validates the request, quotes the fare, persists the trip and
// dispatches it to candidate drivers. Booked trips (pickup interval beyond
// the threshold) are persisted without dispatch; the expiry sweep or a
// later acceptance picks them up.
func (s *TripService) CreateTrip(ctx context.Context, req CreateTripRequest) (*CreateTripResponse, error) {
	if req.RiderID == "" {
		return nil, ErrInvalidRiderID
	}
	if len(req.Points) < 2 {
		return nil, ErrInvalidPoints
	}
	for _, p := range req.Points {
		if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
			return nil, ErrInvalidPoints
		}
	}

	tariff, err := s.serviceRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}

	region, err := s.regionService.RegionWithPoint(ctx, req.Points[0])
	if err != nil {
		return nil, err
	}

	candidates, err := s.candidateDrivers(ctx, req.Points[0], tariff)
	if err != nil {
		return nil, err
	}

	var distance float64
	var duration int
	if tariff.PerHundredMeters > 0 {
		distance, duration, err = s.estimator.Metrics(ctx, req.Points)
		if err != nil {
			return nil, err
		}
	}
	if tariff.MaximumDestinationDistance > 0 && distance > tariff.MaximumDestinationDistance {
		return nil, ErrDistanceTooFar
	}

	cost := CalculateCost(tariff, distance, duration)

	if tariff.PrepayPercent > 0 {
		balance, err := s.ledger.Balance(ctx, domain.OwnerRider, req.RiderID, region.Currency)
		if err != nil {
			return nil, err
		}
		if balance < cost*tariff.PrepayPercent/100 {
			return nil, ErrInsufficientCredit
		}
	}

	now := time.Now()
	booked := time.Duration(req.IntervalMinutes)*time.Minute > s.bookedThreshold

	status := domain.TripStatusRequested
	if booked {
		status = domain.TripStatusBooked
	} else if len(candidates) == 0 {
		status = domain.TripStatusNoCloseFound
	}

	trip := &domain.Trip{
		ID:              uuid.New().String(),
		RiderID:         req.RiderID,
		ServiceID:       tariff.ID,
		Currency:        region.Currency,
		Points:          req.Points,
		Addresses:       req.Addresses,
		Status:          status,
		DistanceBest:    distance,
		DurationBest:    duration,
		CostBest:        cost,
		CostAfterCoupon: cost,
		ExpectedAt:      now.Add(time.Duration(req.IntervalMinutes) * time.Minute),
		OperatorID:      req.OperatorID,
		CreatedAt:       now,
	}

	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, err
	}

	if err := s.appendActivity(ctx, trip.ID, createActivityType(req)); err != nil {
		return nil, err
	}

	driverIDs := make([]string, 0, len(candidates))
	for _, d := range candidates {
		driverIDs = append(driverIDs, d.ID)
	}

	if !booked {
		for _, id := range driverIDs {
			if err := s.dispatch.MarkNotified(ctx, trip.ID, id); err != nil {
				log.Printf("dispatch bookkeeping failed: trip=%s driver=%s err=%v", trip.ID, id, err)
			}
		}
		s.broadcast(ctx, redis.TripEvent{Name: redis.EventOrderCreated, Trip: trip, DriverIDs: driverIDs})
		s.push.NotifyNewRequest(ctx, candidates)
	}

	return &CreateTripResponse{Trip: trip, DriverIDs: driverIDs}, nil
}

func createActivityType(req CreateTripRequest) domain.ActivityType {
	if req.IntervalMinutes > 0 {
		if req.OperatorID != "" {
			return domain.ActivityBookedByOperator
		}
		return domain.ActivityBookedByRider
	}
	if req.OperatorID != "" {
		return domain.ActivityRequestedByOperator
	}
	return domain.ActivityRequestedByRider
}

// candidateDrivers returns online drivers within the tariff's search
// radius that serve it.
func (s *TripService) candidateDrivers(ctx context.Context, pickup domain.GeoPoint, tariff *domain.Service) ([]*domain.Driver, error) {
	ids, err := s.presence.FindOnlineWithin(ctx, pickup, tariff.SearchRadius)
	if err != nil {
		return nil, err
	}
	drivers, err := s.driverRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	matching := drivers[:0]
	for _, d := range drivers {
		if d.Serves(tariff.ID) {
			matching = append(matching, d)
		}
	}
	return matching, nil
}

// AcceptTripRequest contains the parameters for a driver claiming a trip.
type AcceptTripRequest struct {
	TripID   string
	DriverID string
}

// AcceptTrip resolves the only contended transition: concurrent drivers
// racing for one trip. The conditional update in the repository admits
// exactly one winner; everyone else gets ErrAlreadyTaken.
func (s *TripService) AcceptTrip(ctx context.Context, req AcceptTripRequest) (*domain.Trip, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}

	trip, err := s.tripRepo.GetByID(ctx, req.TripID)
	if err != nil {
		return nil, err
	}
	if _, ok := NextStatus(trip.Status, EventAccept); !ok {
		return nil, ErrAlreadyTaken
	}

	eta := time.Now()
	if coord, ok, err := s.presence.Coordinate(ctx, req.DriverID); err == nil && ok {
		_, seconds, err := s.estimator.Metrics(ctx, []domain.GeoPoint{coord, trip.Pickup()})
		if err == nil {
			eta = eta.Add(time.Duration(seconds) * time.Second)
		}
	}

	claimed, err := s.tripRepo.AssignDriver(ctx, req.TripID, req.DriverID, eta, acceptAllowList)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrAlreadyTaken
	}

	if err := s.presence.SetStatus(ctx, req.DriverID, domain.DriverStatusInService); err != nil {
		log.Printf("presence update failed: driver=%s err=%v", req.DriverID, err)
	}
	if err := s.dispatch.Expire(ctx, req.TripID); err != nil {
		log.Printf("dispatch cleanup failed: trip=%s err=%v", req.TripID, err)
	}
	if err := s.appendActivity(ctx, trip.ID, domain.ActivityDriverAccepted); err != nil {
		return nil, err
	}

	trip.Status = domain.TripStatusDriverAccepted
	trip.DriverID = req.DriverID
	trip.ETAPickup = eta

	s.broadcast(ctx, redis.TripEvent{Name: redis.EventOrderUpdated, Trip: trip})
	// Losing candidates stop offering the trip; the winner keeps it.
	s.broadcast(ctx, redis.TripEvent{Name: redis.EventOrderRemoved, Trip: trip, ExcludeDriverID: req.DriverID})

	return trip, nil
}

// ProgressTripRequest contains the parameters for the Arrived and Started
// updates by the assigned driver.
type ProgressTripRequest struct {
	TripID   string
	DriverID string
}

// MarkArrived records that the assigned driver reached the pickup point.
func (s *TripService) MarkArrived(ctx context.Context, req ProgressTripRequest) (*domain.Trip, error) {
	return s.progress(ctx, req, EventArrive, domain.ActivityArrivedToPickupPoint)
}

// MarkStarted records that the trip departed the pickup point.
func (s *TripService) MarkStarted(ctx context.Context, req ProgressTripRequest) (*domain.Trip, error) {
	return s.progress(ctx, req, EventStart, domain.ActivityStarted)
}

func (s *TripService) progress(ctx context.Context, req ProgressTripRequest, event TripEvent, activity domain.ActivityType) (*domain.Trip, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}

	trip, err := s.tripRepo.GetByID(ctx, req.TripID)
	if err != nil {
		return nil, err
	}
	if trip.DriverID == "" || trip.DriverID != req.DriverID {
		return nil, ErrNotAssignedDriver
	}

	next, ok := NextStatus(trip.Status, event)
	if !ok {
		return nil, ErrTransitionNotAllowed
	}

	if err := s.tripRepo.UpdateStatus(ctx, trip.ID, next); err != nil {
		return nil, err
	}
	if err := s.appendActivity(ctx, trip.ID, activity); err != nil {
		return nil, err
	}

	trip.Status = next
	s.broadcast(ctx, redis.TripEvent{Name: redis.EventOrderUpdated, Trip: trip})
	return trip, nil
}

// CancelByDriverRequest contains the parameters for a driver cancel.
type CancelByDriverRequest struct {
	TripID   string
	DriverID string
}

// CancelByDriver cancels an accepted trip before it starts. The fare is
// zeroed, no money moves, and the driver goes back online.
func (s *TripService) CancelByDriver(ctx context.Context, req CancelByDriverRequest) (*domain.Trip, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}

	trip, err := s.tripRepo.GetByID(ctx, req.TripID)
	if err != nil {
		return nil, err
	}
	if trip.DriverID == "" || trip.DriverID != req.DriverID {
		return nil, ErrNotAssignedDriver
	}
	if _, ok := NextStatus(trip.Status, EventDriverCancel); !ok {
		return nil, ErrCancellationNotAllowed
	}

	now := time.Now()
	if err := s.tripRepo.Cancel(ctx, trip.ID, domain.TripStatusDriverCanceled, now); err != nil {
		return nil, err
	}
	if err := s.presence.SetStatus(ctx, trip.DriverID, domain.DriverStatusOnline); err != nil {
		log.Printf("presence update failed: driver=%s err=%v", trip.DriverID, err)
	}
	if err := s.appendActivity(ctx, trip.ID, domain.ActivityCanceledByDriver); err != nil {
		return nil, err
	}

	trip.Status = domain.TripStatusDriverCanceled
	trip.CostAfterCoupon = 0
	trip.FinishedAt = now

	s.broadcast(ctx, redis.TripEvent{Name: redis.EventOrderUpdated, Trip: trip})
	return trip, nil
}

// CancelByRiderRequest contains the parameters for a rider cancel.
type CancelByRiderRequest struct {
	RiderID string
}

// CancelByRider cancels the rider's current active trip. When a driver was
// already assigned and the tariff defines a cancellation fee, the fee is
// split into three linked postings: rider deduct, driver share, platform
// remainder. All three are attempted even if one fails.
func (s *TripService) CancelByRider(ctx context.Context, req CancelByRiderRequest) (*domain.Trip, error) {
	if req.RiderID == "" {
		return nil, ErrInvalidRiderID
	}

	trip, err := s.tripRepo.GetActiveByRiderID(ctx, req.RiderID)
	if err != nil {
		return nil, err
	}

	tariff, err := s.serviceRepo.GetByID(ctx, trip.ServiceID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.tripRepo.Cancel(ctx, trip.ID, domain.TripStatusRiderCanceled, now); err != nil {
		return nil, err
	}

	if trip.DriverID != "" && tariff.CancellationTotalFee > 0 {
		if err := s.postCancellationFee(ctx, trip, tariff); err != nil {
			return nil, err
		}
	}

	if trip.DriverID == "" {
		if err := s.dispatch.Expire(ctx, trip.ID); err != nil {
			log.Printf("dispatch cleanup failed: trip=%s err=%v", trip.ID, err)
		}
	} else if err := s.presence.SetStatus(ctx, trip.DriverID, domain.DriverStatusOnline); err != nil {
		log.Printf("presence update failed: driver=%s err=%v", trip.DriverID, err)
	}

	if err := s.appendActivity(ctx, trip.ID, domain.ActivityCanceledByRider); err != nil {
		return nil, err
	}

	trip.Status = domain.TripStatusRiderCanceled
	trip.CostAfterCoupon = 0
	trip.FinishedAt = now

	if trip.DriverID == "" {
		s.broadcast(ctx, redis.TripEvent{Name: redis.EventOrderRemoved, Trip: trip})
	} else {
		s.broadcast(ctx, redis.TripEvent{Name: redis.EventOrderUpdated, Trip: trip})
	}

	return trip, nil
}

// postCancellationFee posts the three linked cancellation transactions.
// Each posting is attempted regardless of earlier failures so a transient
// error cannot silently drop the tail of the split.
func (s *TripService) postCancellationFee(ctx context.Context, trip *domain.Trip, tariff *domain.Service) error {
	postings := []PostRequest{
		{
			OwnerType: domain.OwnerRider,
			OwnerID:   trip.RiderID,
			Currency:  trip.Currency,
			Action:    domain.ActionDeduct,
			Reason:    domain.ReasonCancellationFee,
			Amount:    -tariff.CancellationTotalFee,
			TripID:    trip.ID,
		},
		{
			OwnerType: domain.OwnerDriver,
			OwnerID:   trip.DriverID,
			Currency:  trip.Currency,
			Action:    domain.ActionRecharge,
			Reason:    domain.ReasonCancellationFee,
			Amount:    tariff.CancellationDriverShare,
			TripID:    trip.ID,
		},
		{
			OwnerType: domain.OwnerPlatform,
			Currency:  trip.Currency,
			Action:    domain.ActionRecharge,
			Reason:    domain.ReasonCancellationFee,
			Amount:    tariff.CancellationTotalFee - tariff.CancellationDriverShare,
			TripID:    trip.ID,
		},
	}

	var errs []error
	for _, posting := range postings {
		if posting.Amount == 0 {
			continue
		}
		if _, err := s.ledger.Post(ctx, posting); err != nil {
			log.Printf("cancellation fee posting failed: trip=%s owner=%s err=%v", trip.ID, posting.OwnerType, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FinishTripRequest contains the parameters for finishing a trip.
type FinishTripRequest struct {
	TripID     string
	DriverID   string
	CashAmount float64 // collected in person, kept by the driver
}

// FinishTrip settles a completed trip. When the rider's stored credit plus
// cash cannot cover the outstanding balance the finish is silently
// deferred: no error, no state change, retriable once credit arrives.
func (s *TripService) FinishTrip(ctx context.Context, req FinishTripRequest) (*domain.Trip, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}

	trip, err := s.tripRepo.GetByID(ctx, req.TripID)
	if err != nil {
		return nil, err
	}
	if trip.DriverID == "" || trip.DriverID != req.DriverID {
		return nil, ErrNotAssignedDriver
	}
	if _, ok := NextStatus(trip.Status, EventFinish); !ok {
		return nil, ErrTransitionNotAllowed
	}

	tariff, err := s.serviceRepo.GetByID(ctx, trip.ServiceID)
	if err != nil {
		return nil, err
	}
	if tariff.PaymentMethod == domain.PaymentMethodOnlyCredit && req.CashAmount > 0 {
		return nil, ErrCashNotAccepted
	}

	riderCredit, err := s.ledger.Balance(ctx, domain.OwnerRider, trip.RiderID, trip.Currency)
	if err != nil {
		return nil, err
	}

	if riderCredit+req.CashAmount < trip.UnpaidAmount() {
		log.Printf("finish deferred: trip=%s credit=%.2f cash=%.2f unpaid=%.2f", trip.ID, riderCredit, req.CashAmount, trip.UnpaidAmount())
		return trip, nil
	}

	driver, err := s.driverRepo.GetByID(ctx, trip.DriverID)
	if err != nil {
		return nil, err
	}

	var fleet *domain.Fleet
	if driver.FleetID != "" {
		fleet, err = s.fleetRepo.GetByID(ctx, driver.FleetID)
		if err != nil {
			return nil, err
		}
	}

	if err := s.settlement.Settle(ctx, trip, tariff, fleet, riderCredit, req.CashAmount); err != nil {
		return nil, err
	}

	if err := s.appendActivity(ctx, trip.ID, domain.ActivityArrivedToDestination); err != nil {
		return nil, err
	}

	if trip.PaidAmount < trip.CostAfterCoupon {
		if err := s.tripRepo.UpdateStatus(ctx, trip.ID, domain.TripStatusWaitingForPostPay); err != nil {
			return nil, err
		}
		trip.Status = domain.TripStatusWaitingForPostPay
	} else {
		now := time.Now()
		if err := s.tripRepo.SetFinished(ctx, trip.ID, domain.TripStatusWaitingForReview, now); err != nil {
			return nil, err
		}
		trip.Status = domain.TripStatusWaitingForReview
		trip.FinishedAt = now

		if err := s.appendActivity(ctx, trip.ID, domain.ActivityPaid); err != nil {
			return nil, err
		}
		if err := s.presence.SetStatus(ctx, trip.DriverID, domain.DriverStatusOnline); err != nil {
			log.Printf("presence update failed: driver=%s err=%v", trip.DriverID, err)
		}
		s.push.NotifyPaymentSettled(ctx, driver)
	}

	s.broadcast(ctx, redis.TripEvent{Name: redis.EventOrderUpdated, Trip: trip})
	return trip, nil
}

// ExpireTrips marks the given dispatch-pending trips expired and clears
// their bookkeeping. Trips that already left the dispatch window are
// skipped, so a repeated sweep is a no-op. No money moves.
func (s *TripService) ExpireTrips(ctx context.Context, tripIDs []string) ([]string, error) {
	if len(tripIDs) == 0 {
		return nil, nil
	}

	expired, err := s.tripRepo.ExpireBatch(ctx, tripIDs)
	if err != nil {
		return nil, err
	}
	if len(expired) == 0 {
		return nil, nil
	}

	if err := s.dispatch.Expire(ctx, expired...); err != nil {
		log.Printf("dispatch cleanup failed: trips=%v err=%v", expired, err)
	}
	for _, id := range expired {
		if err := s.appendActivity(ctx, id, domain.ActivityExpired); err != nil {
			return nil, err
		}
	}
	return expired, nil
}

// SweepExpired expires trips whose expected pickup lapsed past the
// dispatch window with no acceptance. Intended for a periodic scheduler;
// a freshly created immediate trip is never eligible.
func (s *TripService) SweepExpired(ctx context.Context) ([]string, error) {
	ids, err := s.tripRepo.ListDispatchExpired(ctx, time.Now().Add(-s.dispatchWindow))
	if err != nil {
		return nil, err
	}
	return s.ExpireTrips(ctx, ids)
}

// ReviewTripRequest contains the parameters for a rider review.
type ReviewTripRequest struct {
	RiderID string
	Score   int
	Review  string
}

// ReviewTrip records the rider's feedback on a trip awaiting review and
// closes the lifecycle.
func (s *TripService) ReviewTrip(ctx context.Context, req ReviewTripRequest) (*domain.Trip, error) {
	if req.RiderID == "" {
		return nil, ErrInvalidRiderID
	}

	trip, err := s.tripRepo.GetActiveByRiderID(ctx, req.RiderID)
	if err != nil {
		return nil, err
	}
	if _, ok := NextStatus(trip.Status, EventReview); !ok {
		return nil, ErrNotWaitingForReview
	}

	feedback := &domain.Feedback{
		ID:        uuid.New().String(),
		TripID:    trip.ID,
		DriverID:  trip.DriverID,
		Score:     req.Score,
		Review:    req.Review,
		CreatedAt: time.Now(),
	}
	if err := s.feedbackRepo.Create(ctx, feedback); err != nil {
		return nil, err
	}

	if err := s.tripRepo.UpdateStatus(ctx, trip.ID, domain.TripStatusFinished); err != nil {
		return nil, err
	}
	if err := s.appendActivity(ctx, trip.ID, domain.ActivityReviewed); err != nil {
		return nil, err
	}

	trip.Status = domain.TripStatusFinished
	return trip, nil
}

// GetTrip retrieves a trip by ID.
func (s *TripService) GetTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	return s.tripRepo.GetByID(ctx, tripID)
}

// CurrentTrip retrieves the rider's active trip.
func (s *TripService) CurrentTrip(ctx context.Context, riderID string) (*domain.Trip, error) {
	if riderID == "" {
		return nil, ErrInvalidRiderID
	}
	return s.tripRepo.GetActiveByRiderID(ctx, riderID)
}

// LastTrip retrieves the rider's most recent trip, active or not.
func (s *TripService) LastTrip(ctx context.Context, riderID string) (*domain.Trip, error) {
	if riderID == "" {
		return nil, ErrInvalidRiderID
	}
	return s.tripRepo.GetLastByRiderID(ctx, riderID)
}

func (s *TripService) appendActivity(ctx context.Context, tripID string, activityType domain.ActivityType) error {
	return s.activityRepo.Append(ctx, &domain.Activity{
		ID:        uuid.New().String(),
		TripID:    tripID,
		Type:      activityType,
		CreatedAt: time.Now(),
	})
}

// broadcast publishes a trip event. Best-effort: a failed publish is
// logged and never unwinds the transition it follows.
func (s *TripService) broadcast(ctx context.Context, event redis.TripEvent) {
	if err := s.broadcaster.Publish(ctx, event); err != nil {
		log.Printf("broadcast failed: event=%s trip=%s err=%v", event.Name, event.Trip.ID, err)
	}
}

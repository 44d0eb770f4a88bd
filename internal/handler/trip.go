package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"dispatch/internal/domain"
	"dispatch/internal/middleware"
	"dispatch/internal/service"
)

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	tripService *service.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// PointRequest is one coordinate in a request body.
type PointRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CreateTripRequest is the HTTP request body for creating a trip.
type CreateTripRequest struct {
	ServiceID       string         `json:"service_id"`
	Points          []PointRequest `json:"points"`
	Addresses       []string       `json:"addresses"`
	IntervalMinutes int            `json:"interval_minutes"`
	RiderID         string         `json:"rider_id"` // operator-created trips only
}

// FinishTripRequest is the HTTP request body for finishing a trip.
type FinishTripRequest struct {
	CashAmount float64 `json:"cash_amount"`
}

// ReviewTripRequest is the HTTP request body for reviewing a trip.
type ReviewTripRequest struct {
	Score  int    `json:"score"`
	Review string `json:"review"`
}

// ExpireTripsRequest is the HTTP request body for the operator expire call.
type ExpireTripsRequest struct {
	TripIDs []string `json:"trip_ids"`
}

// TripResponse is the HTTP response for trip operations.
type TripResponse struct {
	ID              string         `json:"id"`
	RiderID         string         `json:"rider_id"`
	DriverID        string         `json:"driver_id,omitempty"`
	ServiceID       string         `json:"service_id"`
	Currency        string         `json:"currency"`
	Points          []PointRequest `json:"points"`
	Addresses       []string       `json:"addresses,omitempty"`
	Status          string         `json:"status"`
	DistanceMeters  float64        `json:"distance_meters"`
	DurationSeconds int            `json:"duration_seconds"`
	Cost            float64        `json:"cost"`
	CostAfterCoupon float64        `json:"cost_after_coupon"`
	PaidAmount      float64        `json:"paid_amount"`
	ExpectedAt      string         `json:"expected_at"`
	ETAPickup       string         `json:"eta_pickup,omitempty"`
	FinishedAt      string         `json:"finished_at,omitempty"`
	CreatedAt       string         `json:"created_at"`
}

// CreateTripResponse is the HTTP response for trip creation.
type CreateTripResponse struct {
	Trip              TripResponse `json:"trip"`
	NotifiedDriverIDs []string     `json:"notified_driver_ids"`
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

func newTripResponse(trip *domain.Trip) TripResponse {
	points := make([]PointRequest, 0, len(trip.Points))
	for _, p := range trip.Points {
		points = append(points, PointRequest{Lat: p.Lat, Lng: p.Lng})
	}

	response := TripResponse{
		ID:              trip.ID,
		RiderID:         trip.RiderID,
		DriverID:        trip.DriverID,
		ServiceID:       trip.ServiceID,
		Currency:        trip.Currency,
		Points:          points,
		Addresses:       trip.Addresses,
		Status:          string(trip.Status),
		DistanceMeters:  trip.DistanceBest,
		DurationSeconds: trip.DurationBest,
		Cost:            trip.CostBest,
		CostAfterCoupon: trip.CostAfterCoupon,
		PaidAmount:      trip.PaidAmount,
		ExpectedAt:      trip.ExpectedAt.Format(timeLayout),
		CreatedAt:       trip.CreatedAt.Format(timeLayout),
	}
	if !trip.ETAPickup.IsZero() {
		response.ETAPickup = trip.ETAPickup.Format(timeLayout)
	}
	if !trip.FinishedAt.IsZero() {
		response.FinishedAt = trip.FinishedAt.Format(timeLayout)
	}
	return response
}

// Create handles POST /v1/trips
func (h *TripHandler) Create(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing actor"})
		return
	}

	var req CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	createReq := service.CreateTripRequest{
		RiderID:         actor.ID,
		ServiceID:       req.ServiceID,
		Addresses:       req.Addresses,
		IntervalMinutes: req.IntervalMinutes,
	}
	if actor.Role == middleware.RoleOperator {
		createReq.RiderID = req.RiderID
		createReq.OperatorID = actor.ID
	} else if actor.Role != middleware.RoleRider {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "riders and operators only"})
		return
	}
	for _, p := range req.Points {
		createReq.Points = append(createReq.Points, domain.GeoPoint{Lat: p.Lat, Lng: p.Lng})
	}

	result, err := h.tripService.CreateTrip(c.Request.Context(), createReq)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.TrackTripEvent("created")
	respondJSON(c, http.StatusCreated, CreateTripResponse{
		Trip:              newTripResponse(result.Trip),
		NotifiedDriverIDs: result.DriverIDs,
	})
}

// Get handles GET /v1/trips/:id
func (h *TripHandler) Get(c *gin.Context) {
	trip, err := h.tripService.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, newTripResponse(trip))
}

// Current handles GET /v1/trips/current
func (h *TripHandler) Current(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok || actor.Role != middleware.RoleRider {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "riders only"})
		return
	}

	trip, err := h.tripService.CurrentTrip(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, newTripResponse(trip))
}

// Last handles GET /v1/trips/last
func (h *TripHandler) Last(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok || actor.Role != middleware.RoleRider {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "riders only"})
		return
	}

	trip, err := h.tripService.LastTrip(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, newTripResponse(trip))
}

// Accept handles POST /v1/trips/:id/accept
func (h *TripHandler) Accept(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok || actor.Role != middleware.RoleDriver {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "drivers only"})
		return
	}

	trip, err := h.tripService.AcceptTrip(c.Request.Context(), service.AcceptTripRequest{
		TripID:   c.Param("id"),
		DriverID: actor.ID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.TrackTripEvent("accepted")
	respondJSON(c, http.StatusOK, newTripResponse(trip))
}

// Arrived handles POST /v1/trips/:id/arrived
func (h *TripHandler) Arrived(c *gin.Context) {
	h.progress(c, h.tripService.MarkArrived)
}

// Started handles POST /v1/trips/:id/started
func (h *TripHandler) Started(c *gin.Context) {
	h.progress(c, h.tripService.MarkStarted)
}

func (h *TripHandler) progress(c *gin.Context, update func(ctx context.Context, req service.ProgressTripRequest) (*domain.Trip, error)) {
	actor, ok := middleware.Actor(c)
	if !ok || actor.Role != middleware.RoleDriver {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "drivers only"})
		return
	}

	trip, err := update(c.Request.Context(), service.ProgressTripRequest{
		TripID:   c.Param("id"),
		DriverID: actor.ID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, newTripResponse(trip))
}

// Finish handles POST /v1/trips/:id/finish
func (h *TripHandler) Finish(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok || actor.Role != middleware.RoleDriver {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "drivers only"})
		return
	}

	var req FinishTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.tripService.FinishTrip(c.Request.Context(), service.FinishTripRequest{
		TripID:     c.Param("id"),
		DriverID:   actor.ID,
		CashAmount: req.CashAmount,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if trip.Status == domain.TripStatusWaitingForReview {
		middleware.TrackTripEvent("finished")
		middleware.SettlementsTotal.Inc()
	}
	respondJSON(c, http.StatusOK, newTripResponse(trip))
}

// CancelByDriver handles POST /v1/trips/:id/cancel
func (h *TripHandler) CancelByDriver(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok || actor.Role != middleware.RoleDriver {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "drivers only"})
		return
	}

	trip, err := h.tripService.CancelByDriver(c.Request.Context(), service.CancelByDriverRequest{
		TripID:   c.Param("id"),
		DriverID: actor.ID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.TrackTripEvent("canceled")
	respondJSON(c, http.StatusOK, newTripResponse(trip))
}

// CancelByRider handles POST /v1/trips/cancel
func (h *TripHandler) CancelByRider(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok || actor.Role != middleware.RoleRider {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "riders only"})
		return
	}

	trip, err := h.tripService.CancelByRider(c.Request.Context(), service.CancelByRiderRequest{
		RiderID: actor.ID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.TrackTripEvent("canceled")
	respondJSON(c, http.StatusOK, newTripResponse(trip))
}

// Review handles POST /v1/trips/review
func (h *TripHandler) Review(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok || actor.Role != middleware.RoleRider {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "riders only"})
		return
	}

	var req ReviewTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.tripService.ReviewTrip(c.Request.Context(), service.ReviewTripRequest{
		RiderID: actor.ID,
		Score:   req.Score,
		Review:  req.Review,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, newTripResponse(trip))
}

// Expire handles POST /v1/trips/expire
func (h *TripHandler) Expire(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok || actor.Role != middleware.RoleOperator {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "operators only"})
		return
	}

	var req ExpireTripsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	expired, err := h.tripService.ExpireTrips(c.Request.Context(), req.TripIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	for range expired {
		middleware.TrackTripEvent("expired")
	}
	respondJSON(c, http.StatusOK, gin.H{"expired_trip_ids": expired})
}

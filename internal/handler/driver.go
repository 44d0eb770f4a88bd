package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"dispatch/internal/domain"
	"dispatch/internal/middleware"
	"dispatch/internal/redis"
	"dispatch/internal/repository"
)

// DriverHandler handles HTTP requests for drivers.
type DriverHandler struct {
	driverRepo repository.DriverRepository
	presence   redis.PresenceStoreInterface
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(driverRepo repository.DriverRepository, presence redis.PresenceStoreInterface) *DriverHandler {
	return &DriverHandler{driverRepo: driverRepo, presence: presence}
}

// RegisterDriverRequest is the HTTP request body for driver registration.
type RegisterDriverRequest struct {
	Name       string   `json:"name"`
	Phone      string   `json:"phone"`
	FleetID    string   `json:"fleet_id"`
	ServiceIDs []string `json:"service_ids"`
	PushToken  string   `json:"push_token"`
}

// UpdateLocationRequest is the HTTP request body for a position heartbeat.
type UpdateLocationRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// UpdateStatusRequest is the HTTP request body for a status change.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// DriverResponse is the HTTP response for driver data.
type DriverResponse struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Phone      string   `json:"phone"`
	FleetID    string   `json:"fleet_id,omitempty"`
	ServiceIDs []string `json:"service_ids"`
	Status     string   `json:"status"`
}

// Register handles POST /v1/drivers/register
func (h *DriverHandler) Register(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Name == "" || req.Phone == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name and phone are required"})
		return
	}

	existing, err := h.driverRepo.GetByPhone(c.Request.Context(), req.Phone)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		respondError(c, err)
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{
			"message": "Driver already registered",
			"driver":  h.newDriverResponse(c, existing),
		})
		return
	}

	driver := &domain.Driver{
		ID:         uuid.New().String(),
		Name:       req.Name,
		Phone:      req.Phone,
		FleetID:    req.FleetID,
		ServiceIDs: req.ServiceIDs,
		PushToken:  req.PushToken,
	}

	if err := h.driverRepo.Create(c.Request.Context(), driver); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.newDriverResponse(c, driver))
}

// Get handles GET /v1/drivers/:id
func (h *DriverHandler) Get(c *gin.Context) {
	driver, err := h.driverRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, h.newDriverResponse(c, driver))
}

// UpdateLocation handles POST /v1/drivers/location
func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok || actor.Role != middleware.RoleDriver {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "drivers only"})
		return
	}

	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.Lat < -90 || req.Lat > 90 || req.Lng < -180 || req.Lng > 180 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid coordinates"})
		return
	}

	coord := domain.GeoPoint{Lat: req.Lat, Lng: req.Lng}
	if err := h.presence.RecordPosition(c.Request.Context(), actor.ID, coord, time.Now()); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UpdateStatus handles POST /v1/drivers/status
func (h *DriverHandler) UpdateStatus(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok || actor.Role != middleware.RoleDriver {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "drivers only"})
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	status := domain.DriverStatus(req.Status)
	switch status {
	case domain.DriverStatusOnline, domain.DriverStatusOffline:
	default:
		// IN_SERVICE is set by acceptance, never by the driver directly.
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "status must be ONLINE or OFFLINE"})
		return
	}

	if err := h.presence.SetStatus(c.Request.Context(), actor.ID, status); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *DriverHandler) newDriverResponse(c *gin.Context, driver *domain.Driver) DriverResponse {
	status, err := h.presence.Status(c.Request.Context(), driver.ID)
	if err != nil {
		status = domain.DriverStatusOffline
	}
	return DriverResponse{
		ID:         driver.ID,
		Name:       driver.Name,
		Phone:      driver.Phone,
		FleetID:    driver.FleetID,
		ServiceIDs: driver.ServiceIDs,
		Status:     string(status),
	}
}

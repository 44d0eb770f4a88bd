package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dispatch/internal/domain"
	"dispatch/internal/service"
)

// FareHandler handles HTTP requests for fare quotes.
type FareHandler struct {
	fareService *service.FareService
}

// NewFareHandler creates a new FareHandler.
func NewFareHandler(fareService *service.FareService) *FareHandler {
	return &FareHandler{fareService: fareService}
}

// QuoteRequest is the HTTP request body for a fare quote.
type QuoteRequest struct {
	Points []PointRequest `json:"points"`
}

// ServiceQuoteResponse is one priced tariff in a quote.
type ServiceQuoteResponse struct {
	ServiceID     string  `json:"service_id"`
	Name          string  `json:"name"`
	Cost          float64 `json:"cost"`
	PaymentMethod string  `json:"payment_method"`
	PrepayPercent float64 `json:"prepay_percent"`
}

// QuoteResponse is the HTTP response for a fare quote.
type QuoteResponse struct {
	Currency        string                 `json:"currency"`
	DistanceMeters  float64                `json:"distance_meters"`
	DurationSeconds int                    `json:"duration_seconds"`
	Services        []ServiceQuoteResponse `json:"services"`
}

// Quote handles POST /v1/fare
func (h *FareHandler) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	points := make([]domain.GeoPoint, 0, len(req.Points))
	for _, p := range req.Points {
		points = append(points, domain.GeoPoint{Lat: p.Lat, Lng: p.Lng})
	}

	result, err := h.fareService.Quote(c.Request.Context(), points)
	if err != nil {
		respondError(c, err)
		return
	}

	response := QuoteResponse{
		Currency:        result.Currency,
		DistanceMeters:  result.DistanceMeters,
		DurationSeconds: result.DurationSeconds,
		Services:        make([]ServiceQuoteResponse, 0, len(result.Quotes)),
	}
	for _, quote := range result.Quotes {
		response.Services = append(response.Services, ServiceQuoteResponse{
			ServiceID:     quote.Service.ID,
			Name:          quote.Service.Name,
			Cost:          quote.Cost,
			PaymentMethod: string(quote.Service.PaymentMethod),
			PrepayPercent: quote.Service.PrepayPercent,
		})
	}

	respondJSON(c, http.StatusOK, response)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dekut-devs/clearance-api/internal/models"
	"github.com/dekut-devs/clearance-api/internal/service"
	appErrors "github.com/dekut-devs/clearance-api/pkg/errors"
	"github.com/dekut-devs/clearance-api/pkg/response"
)

// BookingHandler exposes gown booking endpoints.
type BookingHandler struct {
	bookings *service.BookingService
}

// NewBookingHandler constructs BookingHandler.
func NewBookingHandler(bookings *service.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// Create godoc
// @Summary Book a graduation gown
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body service.CreateBookingPayload true "Booking payload"
// @Success 201 {object} response.Envelope
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	var payload service.CreateBookingPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	booking, err := h.bookings.Create(c.Request.Context(), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, booking)
}

// List godoc
// @Summary List gown bookings
// @Tags Bookings
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param requestId query string false "Filter by clearance request"
// @Success 200 {object} response.Envelope
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	filter := models.BookingFilter{
		StudentID: c.Query("studentId"),
		RequestID: c.Query("requestId"),
	}
	bookings, err := h.bookings.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bookings, nil)
}

// Get godoc
// @Summary Get a gown booking
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	booking, err := h.bookings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booking, nil)
}

// Update godoc
// @Summary Update a booking's status or fine
// @Description Fine state takes priority over an explicit status.
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param payload body service.UpdateBookingPayload true "Update payload"
// @Success 200 {object} response.Envelope
// @Router /bookings/{id} [patch]
func (h *BookingHandler) Update(c *gin.Context) {
	var payload service.UpdateBookingPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	booking, err := h.bookings.Update(c.Request.Context(), c.Param("id"), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booking, nil)
}

package controllers

import (
	"net/http"

	"fitbook/internal/models/request_models"
	"fitbook/internal/services"
	"fitbook/pkg/middleware"
	"fitbook/pkg/utils"

	"github.com/gin-gonic/gin"
)

type BookingController struct {
	bookingService services.BookingService
}

func NewBookingController(bookingService services.BookingService) *BookingController {
	return &BookingController{bookingService: bookingService}
}

// Create godoc
// @Summary Book a session
// @Description Requires a confirmed payment intent obtained from /create-payment-intent
// @Tags Bookings
// @Accept json
// @Produce json
// @Param request body request_models.CreateBookingRequest true "Booking"
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /bookings [post]
func (b *BookingController) Create(c *gin.Context) {
	var req request_models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	booking, err := b.bookingService.CreateBooking(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondCreated(c, booking, "Booking confirmed")
}

// ListMy godoc
// @Summary List the caller's bookings
// @Tags Bookings
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /bookings/my [get]
func (b *BookingController) ListMy(c *gin.Context) {
	list, err := b.bookingService.ListMy(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, list, "Bookings fetched successfully")
}

// UpdateStatus godoc
// @Summary Cancel or complete a booking
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body request_models.UpdateBookingStatusRequest true "Status"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /bookings/{id}/status [put]
func (b *BookingController) UpdateStatus(c *gin.Context) {
	var req request_models.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	booking, err := b.bookingService.UpdateStatus(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req.Status)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, booking, "Booking updated")
}

// CreateTrainerBooking godoc
// @Summary Book a personal trainer
// @Tags Trainer Bookings
// @Accept json
// @Produce json
// @Param request body request_models.CreateTrainerBookingRequest true "Trainer booking"
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /trainer-bookings [post]
func (b *BookingController) CreateTrainerBooking(c *gin.Context) {
	var req request_models.CreateTrainerBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	booking, err := b.bookingService.CreateTrainerBooking(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondCreated(c, booking, "Trainer booking confirmed")
}

// ListMyTrainerBookings godoc
// @Summary List the caller's trainer bookings
// @Tags Trainer Bookings
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /trainer-bookings/my [get]
func (b *BookingController) ListMyTrainerBookings(c *gin.Context) {
	list, err := b.bookingService.ListMyTrainerBookings(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, list, "Trainer bookings fetched successfully")
}

// UpdateTrainerBookingStatus godoc
// @Summary Cancel or complete a trainer booking
// @Tags Trainer Bookings
// @Accept json
// @Produce json
// @Param id path string true "Trainer booking ID"
// @Param request body request_models.UpdateBookingStatusRequest true "Status"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /trainer-bookings/{id}/status [put]
func (b *BookingController) UpdateTrainerBookingStatus(c *gin.Context) {
	var req request_models.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	booking, err := b.bookingService.UpdateTrainerBookingStatus(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req.Status)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, booking, "Trainer booking updated")
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carhive/api/internal/apperr"
	"carhive/api/internal/middleware"
	"carhive/api/internal/models"
	"carhive/api/internal/service"
)

type bookingResponse struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	UserName       string    `json:"userName"`
	UserEmail      string    `json:"userEmail"`
	CarID          string    `json:"carId"`
	CarName        string    `json:"carName"`
	CarType        string    `json:"carType"`
	CarPlateNumber string    `json:"carPlateNumber"`
	CarPricePerDay float64   `json:"carPricePerDay"`
	ProviderID     string    `json:"providerId"`
	ProviderName   string    `json:"providerName"`
	ProviderAddr   string    `json:"providerAddress"`
	ProviderPhone  string    `json:"providerTelephone"`
	PickupLocation string    `json:"pickupLocation"`
	ReturnLocation string    `json:"returnLocation"`
	PickupDate     time.Time `json:"pickupDate"`
	ReturnDate     time.Time `json:"returnDate"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

func toBookingResponse(d models.BookingDetail) bookingResponse {
	return bookingResponse{
		ID:             d.ID,
		UserID:         d.UserID,
		UserName:       d.UserName,
		UserEmail:      d.UserEmail,
		CarID:          d.CarID,
		CarName:        d.CarName,
		CarType:        d.CarType,
		CarPlateNumber: d.CarPlateNumber,
		CarPricePerDay: d.CarPricePerDay,
		ProviderID:     d.ProviderID,
		ProviderName:   d.ProviderName,
		ProviderAddr:   d.ProviderAddress,
		ProviderPhone:  d.ProviderTelephone,
		PickupLocation: d.PickupLocation,
		ReturnLocation: d.ReturnLocation,
		PickupDate:     d.PickupDate,
		ReturnDate:     d.ReturnDate,
		Status:         string(d.Status),
		CreatedAt:      d.CreatedAt,
	}
}

func (h HandlerSet) ListBookings(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		h.respondError(c, apperr.Unauthenticatedf("unauthenticated"))
		return
	}

	details, err := h.bookings.List(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	items := make([]bookingResponse, 0, len(details))
	for _, d := range details {
		items = append(items, toBookingResponse(d))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(items), "data": items})
}

type createBookingRequest struct {
	CarID          string    `json:"carId" binding:"required"`
	ProviderID     string    `json:"providerId" binding:"required"`
	PickupLocation string    `json:"pickupLocation" binding:"required"`
	ReturnLocation string    `json:"returnLocation" binding:"required"`
	PickupDate     time.Time `json:"pickupDate" binding:"required"`
	ReturnDate     time.Time `json:"returnDate" binding:"required"`
}

func (h HandlerSet) CreateBooking(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		h.respondError(c, apperr.Unauthenticatedf("unauthenticated"))
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Validationf("", "%s", err.Error()))
		return
	}

	detail, err := h.bookings.Create(c.Request.Context(), id, service.CreateBookingInput{
		CarID:          req.CarID,
		ProviderID:     req.ProviderID,
		PickupLocation: req.PickupLocation,
		ReturnLocation: req.ReturnLocation,
		PickupDate:     req.PickupDate,
		ReturnDate:     req.ReturnDate,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	respondData(c, http.StatusCreated, toBookingResponse(detail))
}

func (h HandlerSet) GetBooking(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		h.respondError(c, apperr.Unauthenticatedf("unauthenticated"))
		return
	}

	detail, err := h.bookings.Get(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, toBookingResponse(detail))
}

type updateBookingRequest struct {
	PickupLocation *string    `json:"pickupLocation"`
	ReturnLocation *string    `json:"returnLocation"`
	PickupDate     *time.Time `json:"pickupDate"`
	ReturnDate     *time.Time `json:"returnDate"`
	Status         *string    `json:"status"`
}

func (h HandlerSet) UpdateBooking(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		h.respondError(c, apperr.Unauthenticatedf("unauthenticated"))
		return
	}

	var req updateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Validationf("", "%s", err.Error()))
		return
	}

	patch := service.UpdateBookingInput{
		PickupLocation: req.PickupLocation,
		ReturnLocation: req.ReturnLocation,
		PickupDate:     req.PickupDate,
		ReturnDate:     req.ReturnDate,
	}
	if req.Status != nil {
		status := models.BookingStatus(*req.Status)
		patch.Status = &status
	}

	detail, err := h.bookings.Update(c.Request.Context(), id, c.Param("id"), patch)
	if err != nil {
		h.respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, toBookingResponse(detail))
}

func (h HandlerSet) DeleteBooking(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		h.respondError(c, apperr.Unauthenticatedf("unauthenticated"))
		return
	}

	if err := h.bookings.Delete(c.Request.Context(), id, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "booking deleted"})
}

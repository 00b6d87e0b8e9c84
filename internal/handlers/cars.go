package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carhive/api/internal/apperr"
	"carhive/api/internal/ids"
	"carhive/api/internal/models"
	"carhive/api/internal/repository"
)

type carResponse struct {
	ID                string    `json:"id"`
	ProviderID        string    `json:"providerId"`
	ProviderName      string    `json:"providerName,omitempty"`
	ProviderTelephone string    `json:"providerTelephone,omitempty"`
	Name              string    `json:"name"`
	Type              string    `json:"type"`
	PlateNumber       string    `json:"plateNumber"`
	PricePerDay       float64   `json:"pricePerDay"`
	Available         bool      `json:"available"`
	CreatedAt         time.Time `json:"createdAt"`
}

func toCarResponse(d models.CarDetail) carResponse {
	return carResponse{
		ID:                d.ID,
		ProviderID:        d.ProviderID,
		ProviderName:      d.ProviderName,
		ProviderTelephone: d.ProviderTelephone,
		Name:              d.Name,
		Type:              d.Type,
		PlateNumber:       d.PlateNumber,
		PricePerDay:       d.PricePerDay,
		Available:         d.Available,
		CreatedAt:         d.CreatedAt,
	}
}

func (h HandlerSet) ListCars(c *gin.Context) {
	cars, err := h.cars.List(c.Request.Context())
	if err != nil {
		h.respondError(c, apperr.Wrap(err, "could not list cars"))
		return
	}

	items := make([]carResponse, 0, len(cars))
	for _, car := range cars {
		items = append(items, toCarResponse(car))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(items), "data": items})
}

func (h HandlerSet) GetCar(c *gin.Context) {
	car, err := h.cars.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrCarNotFound) {
			h.respondError(c, apperr.NotFoundf("car_not_found", "car not found"))
			return
		}
		h.respondError(c, apperr.Wrap(err, "could not load car"))
		return
	}

	respondData(c, http.StatusOK, toCarResponse(car))
}

type carRequest struct {
	ProviderID  string  `json:"providerId" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Type        string  `json:"type" binding:"required"`
	PlateNumber string  `json:"plateNumber" binding:"required"`
	PricePerDay float64 `json:"pricePerDay" binding:"required,gt=0"`
	Available   *bool   `json:"available"`
}

func (h HandlerSet) CreateCar(c *gin.Context) {
	var req carRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Validationf("", "%s", err.Error()))
		return
	}

	providerExists, err := h.providers.Exists(c.Request.Context(), req.ProviderID)
	if err != nil {
		h.respondError(c, apperr.Wrap(err, "could not create car"))
		return
	}
	if !providerExists {
		h.respondError(c, apperr.NotFoundf("provider_not_found", "provider not found"))
		return
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	car := models.Car{
		ID:          ids.New(),
		ProviderID:  req.ProviderID,
		Name:        req.Name,
		Type:        req.Type,
		PlateNumber: req.PlateNumber,
		PricePerDay: req.PricePerDay,
		Available:   available,
	}

	if err := h.cars.Create(c.Request.Context(), car); err != nil {
		if errors.Is(err, repository.ErrDuplicatePlate) {
			h.respondError(c, apperr.Conflictf("plate_taken", "plate number already registered"))
			return
		}
		h.respondError(c, apperr.Wrap(err, "could not create car"))
		return
	}

	detail, err := h.cars.GetByID(c.Request.Context(), car.ID)
	if err != nil {
		h.respondError(c, apperr.Wrap(err, "could not load created car"))
		return
	}

	respondData(c, http.StatusCreated, toCarResponse(detail))
}

func (h HandlerSet) UpdateCar(c *gin.Context) {
	var req carRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Validationf("", "%s", err.Error()))
		return
	}

	existing, err := h.cars.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrCarNotFound) {
			h.respondError(c, apperr.NotFoundf("car_not_found", "car not found"))
			return
		}
		h.respondError(c, apperr.Wrap(err, "could not load car"))
		return
	}

	available := existing.Available
	if req.Available != nil {
		available = *req.Available
	}

	car := models.Car{
		ID:          existing.ID,
		ProviderID:  req.ProviderID,
		Name:        req.Name,
		Type:        req.Type,
		PlateNumber: req.PlateNumber,
		PricePerDay: req.PricePerDay,
		Available:   available,
	}

	if err := h.cars.Update(c.Request.Context(), car); err != nil {
		switch {
		case errors.Is(err, repository.ErrCarNotFound):
			h.respondError(c, apperr.NotFoundf("car_not_found", "car not found"))
		case errors.Is(err, repository.ErrDuplicatePlate):
			h.respondError(c, apperr.Conflictf("plate_taken", "plate number already registered"))
		default:
			h.respondError(c, apperr.Wrap(err, "could not update car"))
		}
		return
	}

	detail, err := h.cars.GetByID(c.Request.Context(), car.ID)
	if err != nil {
		h.respondError(c, apperr.Wrap(err, "could not load updated car"))
		return
	}

	respondData(c, http.StatusOK, toCarResponse(detail))
}

func (h HandlerSet) DeleteCar(c *gin.Context) {
	if err := h.cars.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrCarNotFound) {
			h.respondError(c, apperr.NotFoundf("car_not_found", "car not found"))
			return
		}
		h.respondError(c, apperr.Wrap(err, "could not delete car"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "car deleted"})
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"carhive/api/internal/apperr"
	"carhive/api/internal/ids"
	"carhive/api/internal/models"
	"carhive/api/internal/repository"
)

type addressPayload struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type providerResponse struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Telephone       string         `json:"telephone"`
	Address         addressPayload `json:"address"`
	Latitude        float64        `json:"latitude"`
	Longitude       float64        `json:"longitude"`
	PopularityScore int            `json:"popularityScore"`
	Income          float64        `json:"income"`
	Outcome         float64        `json:"outcome"`
	IsActive        bool           `json:"isActive"`
	CreatedAt       time.Time      `json:"createdAt"`
	Cars            []carResponse  `json:"cars,omitempty"`
}

func toProviderResponse(p models.Provider) providerResponse {
	return providerResponse{
		ID:        p.ID,
		Name:      p.Name,
		Telephone: p.Telephone,
		Address: addressPayload{
			Street:     p.Address.Street,
			City:       p.Address.City,
			State:      p.Address.State,
			PostalCode: p.Address.PostalCode,
			Country:    p.Address.Country,
		},
		Latitude:        p.Latitude,
		Longitude:       p.Longitude,
		PopularityScore: p.PopularityScore,
		Income:          p.Income,
		Outcome:         p.Outcome,
		IsActive:        p.IsActive,
		CreatedAt:       p.CreatedAt,
	}
}

func toPlainCarResponse(car models.Car) carResponse {
	return toCarResponse(models.CarDetail{Car: car})
}

func (h HandlerSet) ListProviders(c *gin.Context) {
	filter := repository.ProviderFilter{
		City:   c.Query("city"),
		SortBy: c.Query("sort"),
	}

	if active := c.Query("isActive"); active != "" {
		v, err := strconv.ParseBool(active)
		if err != nil {
			h.respondError(c, apperr.Validationf("isActive", "must be true or false"))
			return
		}
		filter.IsActive = &v
	}
	if page := c.Query("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil {
			filter.Page = v
		}
	}
	if limit := c.Query("limit"); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil {
			filter.Limit = v
		}
	}

	providers, total, err := h.providers.List(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, apperr.Wrap(err, "could not list providers"))
		return
	}

	items := make([]providerResponse, 0, len(providers))
	for _, p := range providers {
		items = append(items, toProviderResponse(p))
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 25
	}

	pagination := gin.H{}
	if page*limit < total {
		pagination["next"] = gin.H{"page": page + 1, "limit": limit}
	}
	if page > 1 {
		pagination["prev"] = gin.H{"page": page - 1, "limit": limit}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"count":      len(items),
		"total":      total,
		"data":       items,
		"pagination": pagination,
	})
}

type providerLocationResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Telephone string         `json:"telephone"`
	Address   addressPayload `json:"address"`
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
}

// ProviderLocations serves the map-pin projection of every provider.
func (h HandlerSet) ProviderLocations(c *gin.Context) {
	locations, err := h.providers.ListLocations(c.Request.Context())
	if err != nil {
		h.respondError(c, apperr.Wrap(err, "could not list provider locations"))
		return
	}

	items := make([]providerLocationResponse, 0, len(locations))
	for _, loc := range locations {
		items = append(items, providerLocationResponse{
			ID:        loc.ID,
			Name:      loc.Name,
			Telephone: loc.Telephone,
			Address: addressPayload{
				Street:     loc.Address.Street,
				City:       loc.Address.City,
				State:      loc.Address.State,
				PostalCode: loc.Address.PostalCode,
				Country:    loc.Address.Country,
			},
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(items), "data": items})
}

func (h HandlerSet) GetProvider(c *gin.Context) {
	provider, err := h.providers.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrProviderNotFound) {
			h.respondError(c, apperr.NotFoundf("provider_not_found", "provider not found"))
			return
		}
		h.respondError(c, apperr.Wrap(err, "could not load provider"))
		return
	}

	cars, err := h.cars.ListByProvider(c.Request.Context(), provider.ID, false)
	if err != nil {
		h.respondError(c, apperr.Wrap(err, "could not load provider cars"))
		return
	}

	resp := toProviderResponse(provider)
	resp.Cars = make([]carResponse, 0, len(cars))
	for _, car := range cars {
		resp.Cars = append(resp.Cars, toPlainCarResponse(car))
	}

	respondData(c, http.StatusOK, resp)
}

// ListProviderCars returns only the provider's currently available cars.
func (h HandlerSet) ListProviderCars(c *gin.Context) {
	providerID := c.Param("id")

	exists, err := h.providers.Exists(c.Request.Context(), providerID)
	if err != nil {
		h.respondError(c, apperr.Wrap(err, "could not load provider cars"))
		return
	}
	if !exists {
		h.respondError(c, apperr.NotFoundf("provider_not_found", "provider not found"))
		return
	}

	cars, err := h.cars.ListByProvider(c.Request.Context(), providerID, true)
	if err != nil {
		h.respondError(c, apperr.Wrap(err, "could not load provider cars"))
		return
	}

	items := make([]carResponse, 0, len(cars))
	for _, car := range cars {
		items = append(items, toPlainCarResponse(car))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(items), "data": items})
}

type providerRequest struct {
	Name      string         `json:"name" binding:"required"`
	Telephone string         `json:"telephone" binding:"required,max=10"`
	Address   addressPayload `json:"address"`
	Latitude  *float64       `json:"latitude" binding:"required"`
	Longitude *float64       `json:"longitude" binding:"required"`
	IsActive  *bool          `json:"isActive"`
}

func (h HandlerSet) CreateProvider(c *gin.Context) {
	var req providerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Validationf("", "%s", err.Error()))
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	provider := models.Provider{
		ID:        ids.New(),
		Name:      req.Name,
		Telephone: req.Telephone,
		Address: models.Address{
			Street:     req.Address.Street,
			City:       req.Address.City,
			State:      req.Address.State,
			PostalCode: req.Address.PostalCode,
			Country:    req.Address.Country,
		},
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		IsActive:  isActive,
	}

	if err := h.providers.Create(c.Request.Context(), provider); err != nil {
		h.respondError(c, apperr.Wrap(err, "could not create provider"))
		return
	}

	created, err := h.providers.GetByID(c.Request.Context(), provider.ID)
	if err != nil {
		h.respondError(c, apperr.Wrap(err, "could not load created provider"))
		return
	}

	respondData(c, http.StatusCreated, toProviderResponse(created))
}

func (h HandlerSet) UpdateProvider(c *gin.Context) {
	var req providerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Validationf("", "%s", err.Error()))
		return
	}

	existing, err := h.providers.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrProviderNotFound) {
			h.respondError(c, apperr.NotFoundf("provider_not_found", "provider not found"))
			return
		}
		h.respondError(c, apperr.Wrap(err, "could not load provider"))
		return
	}

	existing.Name = req.Name
	existing.Telephone = req.Telephone
	existing.Address = models.Address{
		Street:     req.Address.Street,
		City:       req.Address.City,
		State:      req.Address.State,
		PostalCode: req.Address.PostalCode,
		Country:    req.Address.Country,
	}
	existing.Latitude = *req.Latitude
	existing.Longitude = *req.Longitude
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}

	if err := h.providers.Update(c.Request.Context(), existing); err != nil {
		h.respondError(c, apperr.Wrap(err, "could not update provider"))
		return
	}

	respondData(c, http.StatusOK, toProviderResponse(existing))
}

// DeleteProvider removes the provider together with its cars.
func (h HandlerSet) DeleteProvider(c *gin.Context) {
	if err := h.providers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrProviderNotFound) {
			h.respondError(c, apperr.NotFoundf("provider_not_found", "provider not found"))
			return
		}
		h.respondError(c, apperr.Wrap(err, "could not delete provider"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "provider and its cars deleted"})
}

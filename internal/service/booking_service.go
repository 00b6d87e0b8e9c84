package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"carhive/api/internal/apperr"
	"carhive/api/internal/authz"
	"carhive/api/internal/ids"
	"carhive/api/internal/models"
	"carhive/api/internal/repository"
)

// maxActiveBookings is the per-account ceiling on bookings in pending or
// confirmed status.
const maxActiveBookings = 3

type BookingStore interface {
	CreateWithinQuota(ctx context.Context, booking models.Booking, maxActive int) error
	CountActiveByUser(ctx context.Context, userID string) (int, error)
	GetByID(ctx context.Context, id string) (models.Booking, error)
	GetDetailByID(ctx context.Context, id string) (models.BookingDetail, error)
	List(ctx context.Context, scope authz.BookingScope) ([]models.BookingDetail, error)
	Update(ctx context.Context, booking models.Booking) error
	Delete(ctx context.Context, id string) error
}

type CarFinder interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type ProviderFinder interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type BookingService struct {
	bookings  BookingStore
	cars      CarFinder
	providers ProviderFinder
	log       zerolog.Logger
}

func NewBookingService(bookings BookingStore, cars CarFinder, providers ProviderFinder, log zerolog.Logger) *BookingService {
	return &BookingService{
		bookings:  bookings,
		cars:      cars,
		providers: providers,
		log:       log,
	}
}

type CreateBookingInput struct {
	CarID          string
	ProviderID     string
	PickupLocation string
	ReturnLocation string
	PickupDate     time.Time
	ReturnDate     time.Time
}

func validateBookingFields(pickupLocation, returnLocation string, pickupDate, returnDate time.Time) error {
	if strings.TrimSpace(pickupLocation) == "" {
		return apperr.Validationf("pickupLocation", "pickup location is required")
	}
	if strings.TrimSpace(returnLocation) == "" {
		return apperr.Validationf("returnLocation", "return location is required")
	}
	if pickupDate.IsZero() {
		return apperr.Validationf("pickupDate", "pickup date is required")
	}
	if returnDate.IsZero() {
		return apperr.Validationf("returnDate", "return date is required")
	}
	if !returnDate.After(pickupDate) {
		return apperr.Validationf("returnDate", "return date must be after pickup date")
	}
	return nil
}

func (s *BookingService) Create(ctx context.Context, actor authz.Identity, in CreateBookingInput) (models.BookingDetail, error) {
	if err := validateBookingFields(in.PickupLocation, in.ReturnLocation, in.PickupDate, in.ReturnDate); err != nil {
		return models.BookingDetail{}, err
	}

	// The quota is checked before the reference lookups, so an account at the
	// cap hears about the cap even when the requested car does not exist.
	// CreateWithinQuota re-checks atomically at insert time.
	active, err := s.bookings.CountActiveByUser(ctx, actor.UserID)
	if err != nil {
		return models.BookingDetail{}, apperr.Wrap(err, "could not create booking")
	}
	if active >= maxActiveBookings {
		return models.BookingDetail{}, apperr.Quota("you have reached the maximum of 3 active bookings")
	}

	carExists, err := s.cars.Exists(ctx, in.CarID)
	if err != nil {
		return models.BookingDetail{}, apperr.Wrap(err, "could not create booking")
	}
	if !carExists {
		return models.BookingDetail{}, apperr.NotFoundf("car_not_found", "car not found")
	}

	providerExists, err := s.providers.Exists(ctx, in.ProviderID)
	if err != nil {
		return models.BookingDetail{}, apperr.Wrap(err, "could not create booking")
	}
	if !providerExists {
		return models.BookingDetail{}, apperr.NotFoundf("provider_not_found", "provider not found")
	}

	booking := models.Booking{
		ID:             ids.New(),
		UserID:         actor.UserID,
		CarID:          in.CarID,
		ProviderID:     in.ProviderID,
		PickupLocation: in.PickupLocation,
		ReturnLocation: in.ReturnLocation,
		PickupDate:     in.PickupDate,
		ReturnDate:     in.ReturnDate,
		Status:         models.BookingStatusPending,
		CreatedAt:      time.Now(),
	}

	if err := s.bookings.CreateWithinQuota(ctx, booking, maxActiveBookings); err != nil {
		if errors.Is(err, repository.ErrQuotaExceeded) {
			return models.BookingDetail{}, apperr.Quota("you have reached the maximum of 3 active bookings")
		}
		return models.BookingDetail{}, apperr.Wrap(err, "could not create booking")
	}

	detail, err := s.bookings.GetDetailByID(ctx, booking.ID)
	if err != nil {
		return models.BookingDetail{}, apperr.Wrap(err, "could not load created booking")
	}
	return detail, nil
}

// UpdateBookingInput is a partial patch; nil fields are left unchanged.
type UpdateBookingInput struct {
	PickupLocation *string
	ReturnLocation *string
	PickupDate     *time.Time
	ReturnDate     *time.Time
	Status         *models.BookingStatus
}

func (s *BookingService) Update(ctx context.Context, actor authz.Identity, bookingID string, patch UpdateBookingInput) (models.BookingDetail, error) {
	booking, err := s.loadOwned(ctx, actor, bookingID, "update")
	if err != nil {
		return models.BookingDetail{}, err
	}

	if patch.PickupLocation != nil {
		booking.PickupLocation = *patch.PickupLocation
	}
	if patch.ReturnLocation != nil {
		booking.ReturnLocation = *patch.ReturnLocation
	}
	if patch.PickupDate != nil {
		booking.PickupDate = *patch.PickupDate
	}
	if patch.ReturnDate != nil {
		booking.ReturnDate = *patch.ReturnDate
	}
	if patch.Status != nil {
		next := *patch.Status
		if !next.Valid() {
			return models.BookingDetail{}, apperr.Validationf("status", "unknown status %q", string(next))
		}
		if !booking.Status.CanTransitionTo(next) {
			return models.BookingDetail{}, apperr.Validationf("status", "cannot change status from %s to %s", booking.Status, next)
		}
		booking.Status = next
	}

	if err := validateBookingFields(booking.PickupLocation, booking.ReturnLocation, booking.PickupDate, booking.ReturnDate); err != nil {
		return models.BookingDetail{}, err
	}

	if err := s.bookings.Update(ctx, booking); err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return models.BookingDetail{}, apperr.NotFoundf("booking_not_found", "booking not found")
		}
		return models.BookingDetail{}, apperr.Wrap(err, "could not update booking")
	}

	detail, err := s.bookings.GetDetailByID(ctx, bookingID)
	if err != nil {
		return models.BookingDetail{}, apperr.Wrap(err, "could not load updated booking")
	}
	return detail, nil
}

func (s *BookingService) Delete(ctx context.Context, actor authz.Identity, bookingID string) error {
	if _, err := s.loadOwned(ctx, actor, bookingID, "delete"); err != nil {
		return err
	}

	if err := s.bookings.Delete(ctx, bookingID); err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return apperr.NotFoundf("booking_not_found", "booking not found")
		}
		return apperr.Wrap(err, "could not delete booking")
	}
	return nil
}

func (s *BookingService) List(ctx context.Context, actor authz.Identity) ([]models.BookingDetail, error) {
	details, err := s.bookings.List(ctx, authz.ScopeFor(actor))
	if err != nil {
		return nil, apperr.Wrap(err, "could not list bookings")
	}
	return details, nil
}

// Get returns one enriched booking. Reads are restricted to the owner or an
// admin, same as mutations.
func (s *BookingService) Get(ctx context.Context, actor authz.Identity, bookingID string) (models.BookingDetail, error) {
	detail, err := s.bookings.GetDetailByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return models.BookingDetail{}, apperr.NotFoundf("booking_not_found", "booking not found")
		}
		return models.BookingDetail{}, apperr.Wrap(err, "could not load booking")
	}

	if !authz.OwnerOrAdmin(actor, detail.UserID) {
		return models.BookingDetail{}, apperr.Forbiddenf("not authorized to view this booking")
	}
	return detail, nil
}

func (s *BookingService) loadOwned(ctx context.Context, actor authz.Identity, bookingID string, action string) (models.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return models.Booking{}, apperr.NotFoundf("booking_not_found", "booking not found")
		}
		return models.Booking{}, apperr.Wrap(err, "could not load booking")
	}

	if !authz.OwnerOrAdmin(actor, booking.UserID) {
		return models.Booking{}, apperr.Forbiddenf("not authorized to %s this booking", action)
	}
	return booking, nil
}

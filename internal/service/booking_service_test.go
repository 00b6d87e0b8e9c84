package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"carhive/api/internal/apperr"
	"carhive/api/internal/authz"
	"carhive/api/internal/models"
	"carhive/api/internal/repository"
)

type fakeBookingStore struct {
	bookings map[string]models.Booking
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{bookings: make(map[string]models.Booking)}
}

func (s *fakeBookingStore) CreateWithinQuota(_ context.Context, booking models.Booking, maxActive int) error {
	active := 0
	for _, b := range s.bookings {
		if b.UserID == booking.UserID && b.Status.Active() {
			active++
		}
	}
	if active >= maxActive {
		return repository.ErrQuotaExceeded
	}
	s.bookings[booking.ID] = booking
	return nil
}

func (s *fakeBookingStore) CountActiveByUser(_ context.Context, userID string) (int, error) {
	active := 0
	for _, b := range s.bookings {
		if b.UserID == userID && b.Status.Active() {
			active++
		}
	}
	return active, nil
}

func (s *fakeBookingStore) GetByID(_ context.Context, id string) (models.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return models.Booking{}, repository.ErrBookingNotFound
	}
	return b, nil
}

func (s *fakeBookingStore) GetDetailByID(ctx context.Context, id string) (models.BookingDetail, error) {
	b, err := s.GetByID(ctx, id)
	if err != nil {
		return models.BookingDetail{}, err
	}
	return s.detail(b), nil
}

func (s *fakeBookingStore) detail(b models.Booking) models.BookingDetail {
	return models.BookingDetail{
		Booking:      b,
		ProviderName: "provider-" + b.ProviderID,
		CarName:      "car-" + b.CarID,
	}
}

func (s *fakeBookingStore) List(_ context.Context, scope authz.BookingScope) ([]models.BookingDetail, error) {
	details := make([]models.BookingDetail, 0)
	for _, b := range s.bookings {
		if scope.UserID == "" || b.UserID == scope.UserID {
			details = append(details, s.detail(b))
		}
	}
	return details, nil
}

func (s *fakeBookingStore) Update(_ context.Context, booking models.Booking) error {
	if _, ok := s.bookings[booking.ID]; !ok {
		return repository.ErrBookingNotFound
	}
	s.bookings[booking.ID] = booking
	return nil
}

func (s *fakeBookingStore) Delete(_ context.Context, id string) error {
	if _, ok := s.bookings[id]; !ok {
		return repository.ErrBookingNotFound
	}
	delete(s.bookings, id)
	return nil
}

type fakeFinder struct {
	known map[string]bool
}

func (f *fakeFinder) Exists(_ context.Context, id string) (bool, error) {
	return f.known[id], nil
}

var (
	actorUser  = authz.Identity{UserID: "user-a", Role: models.UserRoleUser}
	actorOther = authz.Identity{UserID: "user-b", Role: models.UserRoleUser}
	actorAdmin = authz.Identity{UserID: "admin-1", Role: models.UserRoleAdmin}
)

func newTestBookingService(store *fakeBookingStore) *BookingService {
	cars := &fakeFinder{known: map[string]bool{"car-1": true}}
	providers := &fakeFinder{known: map[string]bool{"prov-1": true}}
	return NewBookingService(store, cars, providers, zerolog.Nop())
}

func validInput() CreateBookingInput {
	pickup := time.Now().Add(24 * time.Hour)
	return CreateBookingInput{
		CarID:          "car-1",
		ProviderID:     "prov-1",
		PickupLocation: "Bangkok",
		ReturnLocation: "Chiang Mai",
		PickupDate:     pickup,
		ReturnDate:     pickup.Add(48 * time.Hour),
	}
}

func mustCreate(t *testing.T, svc *BookingService, actor authz.Identity) models.BookingDetail {
	t.Helper()
	detail, err := svc.Create(context.Background(), actor, validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return detail
}

func TestCreateBookingDefaults(t *testing.T) {
	store := newFakeBookingStore()
	svc := newTestBookingService(store)

	detail := mustCreate(t, svc, actorUser)
	if detail.Status != models.BookingStatusPending {
		t.Errorf("new booking status = %q, want pending", detail.Status)
	}
	if detail.UserID != actorUser.UserID {
		t.Errorf("booking owner = %q, want %q", detail.UserID, actorUser.UserID)
	}
	if detail.ProviderName == "" || detail.CarName == "" {
		t.Error("created booking missing read-side enrichment")
	}
}

func TestCreateBookingMissingReferences(t *testing.T) {
	svc := newTestBookingService(newFakeBookingStore())

	in := validInput()
	in.CarID = "car-ghost"
	if _, err := svc.Create(context.Background(), actorUser, in); apperr.KindOf(err) != apperr.NotFound {
		t.Errorf("missing car: kind = %v, want NotFound", apperr.KindOf(err))
	}

	in = validInput()
	in.ProviderID = "prov-ghost"
	if _, err := svc.Create(context.Background(), actorUser, in); apperr.KindOf(err) != apperr.NotFound {
		t.Errorf("missing provider: kind = %v, want NotFound", apperr.KindOf(err))
	}
}

func TestCreateBookingValidation(t *testing.T) {
	svc := newTestBookingService(newFakeBookingStore())

	in := validInput()
	in.ReturnDate = in.PickupDate.Add(-time.Hour)
	if _, err := svc.Create(context.Background(), actorUser, in); apperr.KindOf(err) != apperr.Validation {
		t.Errorf("return before pickup: kind = %v, want Validation", apperr.KindOf(err))
	}

	in = validInput()
	in.PickupLocation = "  "
	if _, err := svc.Create(context.Background(), actorUser, in); apperr.KindOf(err) != apperr.Validation {
		t.Errorf("blank pickup location: kind = %v, want Validation", apperr.KindOf(err))
	}
}

func TestBookingQuota(t *testing.T) {
	store := newFakeBookingStore()
	svc := newTestBookingService(store)

	first := mustCreate(t, svc, actorUser)
	mustCreate(t, svc, actorUser)
	third := mustCreate(t, svc, actorUser)

	// Mix of statuses: pending, pending, confirmed all count as active.
	confirmed := models.BookingStatusConfirmed
	if _, err := svc.Update(context.Background(), actorUser, third.ID, UpdateBookingInput{Status: &confirmed}); err != nil {
		t.Fatalf("confirm third booking: %v", err)
	}

	if _, err := svc.Create(context.Background(), actorUser, validInput()); apperr.KindOf(err) != apperr.QuotaExceeded {
		t.Fatalf("4th booking: kind = %v, want QuotaExceeded", apperr.KindOf(err))
	}

	// Another account is unaffected by A's quota.
	mustCreate(t, svc, actorOther)

	// Cancelling one frees a slot.
	cancelled := models.BookingStatusCancelled
	if _, err := svc.Update(context.Background(), actorUser, first.ID, UpdateBookingInput{Status: &cancelled}); err != nil {
		t.Fatalf("cancel first booking: %v", err)
	}
	detail, err := svc.Create(context.Background(), actorUser, validInput())
	if err != nil {
		t.Fatalf("create after cancel: %v", err)
	}
	if detail.Status != models.BookingStatusPending {
		t.Errorf("status = %q, want pending", detail.Status)
	}
}

func TestBookingQuotaCheckedBeforeReferences(t *testing.T) {
	store := newFakeBookingStore()
	svc := newTestBookingService(store)

	mustCreate(t, svc, actorUser)
	mustCreate(t, svc, actorUser)
	mustCreate(t, svc, actorUser)

	// At the cap, a request for an unknown car reports the cap, not the car.
	in := validInput()
	in.CarID = "car-ghost"
	if _, err := svc.Create(context.Background(), actorUser, in); apperr.KindOf(err) != apperr.QuotaExceeded {
		t.Errorf("at cap with missing car: kind = %v, want QuotaExceeded", apperr.KindOf(err))
	}

	// Below the cap, the missing car is still reported.
	in = validInput()
	in.CarID = "car-ghost"
	if _, err := svc.Create(context.Background(), actorOther, in); apperr.KindOf(err) != apperr.NotFound {
		t.Errorf("below cap with missing car: kind = %v, want NotFound", apperr.KindOf(err))
	}
}

func TestBookingQuotaFreedByAdminDelete(t *testing.T) {
	store := newFakeBookingStore()
	svc := newTestBookingService(store)

	victim := mustCreate(t, svc, actorUser)
	mustCreate(t, svc, actorUser)
	mustCreate(t, svc, actorUser)

	if _, err := svc.Create(context.Background(), actorUser, validInput()); apperr.KindOf(err) != apperr.QuotaExceeded {
		t.Fatalf("4th booking: kind = %v, want QuotaExceeded", apperr.KindOf(err))
	}

	if err := svc.Delete(context.Background(), actorAdmin, victim.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}

	if _, err := svc.Create(context.Background(), actorUser, validInput()); err != nil {
		t.Errorf("create after admin delete: %v", err)
	}
}

func TestBookingOwnership(t *testing.T) {
	store := newFakeBookingStore()
	svc := newTestBookingService(store)
	booking := mustCreate(t, svc, actorUser)

	location := "Phuket"
	patch := UpdateBookingInput{PickupLocation: &location}

	if _, err := svc.Update(context.Background(), actorOther, booking.ID, patch); apperr.KindOf(err) != apperr.Forbidden {
		t.Errorf("stranger update: kind = %v, want Forbidden", apperr.KindOf(err))
	}
	if err := svc.Delete(context.Background(), actorOther, booking.ID); apperr.KindOf(err) != apperr.Forbidden {
		t.Errorf("stranger delete: kind = %v, want Forbidden", apperr.KindOf(err))
	}

	if _, err := svc.Update(context.Background(), actorUser, booking.ID, patch); err != nil {
		t.Errorf("owner update: %v", err)
	}
	if _, err := svc.Update(context.Background(), actorAdmin, booking.ID, patch); err != nil {
		t.Errorf("admin update: %v", err)
	}

	if err := svc.Delete(context.Background(), actorUser, booking.ID); err != nil {
		t.Errorf("owner delete: %v", err)
	}
}

func TestBookingStatusTransitions(t *testing.T) {
	store := newFakeBookingStore()
	svc := newTestBookingService(store)
	booking := mustCreate(t, svc, actorUser)

	cancelled := models.BookingStatusCancelled
	pending := models.BookingStatusPending
	unknown := models.BookingStatus("returned")

	if _, err := svc.Update(context.Background(), actorUser, booking.ID, UpdateBookingInput{Status: &cancelled}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := svc.Update(context.Background(), actorUser, booking.ID, UpdateBookingInput{Status: &pending}); apperr.KindOf(err) != apperr.Validation {
		t.Errorf("cancelled->pending: kind = %v, want Validation", apperr.KindOf(err))
	}
	if _, err := svc.Update(context.Background(), actorUser, booking.ID, UpdateBookingInput{Status: &unknown}); apperr.KindOf(err) != apperr.Validation {
		t.Errorf("unknown status: kind = %v, want Validation", apperr.KindOf(err))
	}
}

func TestListBookingsScope(t *testing.T) {
	store := newFakeBookingStore()
	svc := newTestBookingService(store)

	mustCreate(t, svc, actorUser)
	mustCreate(t, svc, actorUser)
	mustCreate(t, svc, actorOther)

	own, err := svc.List(context.Background(), actorUser)
	if err != nil {
		t.Fatalf("List as user: %v", err)
	}
	if len(own) != 2 {
		t.Errorf("user sees %d bookings, want 2", len(own))
	}
	for _, d := range own {
		if d.UserID != actorUser.UserID {
			t.Errorf("user sees foreign booking %s owned by %s", d.ID, d.UserID)
		}
	}

	all, err := svc.List(context.Background(), actorAdmin)
	if err != nil {
		t.Fatalf("List as admin: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("admin sees %d bookings, want 3", len(all))
	}
}

func TestGetBookingRestricted(t *testing.T) {
	store := newFakeBookingStore()
	svc := newTestBookingService(store)
	booking := mustCreate(t, svc, actorUser)

	if _, err := svc.Get(context.Background(), actorUser, booking.ID); err != nil {
		t.Errorf("owner get: %v", err)
	}
	if _, err := svc.Get(context.Background(), actorAdmin, booking.ID); err != nil {
		t.Errorf("admin get: %v", err)
	}
	if _, err := svc.Get(context.Background(), actorOther, booking.ID); apperr.KindOf(err) != apperr.Forbidden {
		t.Errorf("stranger get: kind = %v, want Forbidden", apperr.KindOf(err))
	}
	if _, err := svc.Get(context.Background(), actorUser, "missing"); apperr.KindOf(err) != apperr.NotFound {
		t.Errorf("missing booking: kind = %v, want NotFound", apperr.KindOf(err))
	}
}

func TestUpdateBookingNotFound(t *testing.T) {
	svc := newTestBookingService(newFakeBookingStore())
	location := "Phuket"
	if _, err := svc.Update(context.Background(), actorUser, "missing", UpdateBookingInput{PickupLocation: &location}); apperr.KindOf(err) != apperr.NotFound {
		t.Errorf("kind = %v, want NotFound", apperr.KindOf(err))
	}
}

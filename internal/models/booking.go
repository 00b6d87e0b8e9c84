package models

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled:
		return true
	}
	return false
}

// Active reports whether the booking counts toward the per-account quota.
func (s BookingStatus) Active() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

// CanTransitionTo enforces pending -> confirmed -> cancelled, with a direct
// pending -> cancelled shortcut. cancelled is terminal.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case BookingStatusPending:
		return next == BookingStatusConfirmed || next == BookingStatusCancelled
	case BookingStatusConfirmed:
		return next == BookingStatusCancelled
	}
	return false
}

type Booking struct {
	ID             string
	UserID         string
	CarID          string
	ProviderID     string
	PickupLocation string
	ReturnLocation string
	PickupDate     time.Time
	ReturnDate     time.Time
	Status         BookingStatus
	CreatedAt      time.Time
}

// BookingDetail is a booking joined with display fields from its provider and
// car. Built at read time, never stored.
type BookingDetail struct {
	Booking
	ProviderName      string
	ProviderAddress   string
	ProviderTelephone string
	CarName           string
	CarType           string
	CarPlateNumber    string
	CarPricePerDay    float64
	UserName          string
	UserEmail         string
}

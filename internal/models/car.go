package models

import "time"

type Car struct {
	ID          string
	ProviderID  string
	Name        string
	Type        string
	PlateNumber string
	PricePerDay float64
	Available   bool
	CreatedAt   time.Time
}

// CarDetail attaches the owning provider's contact summary.
type CarDetail struct {
	Car
	ProviderName      string
	ProviderTelephone string
}

package models

import "time"

type Address struct {
	Street     string
	City       string
	State      string
	PostalCode string
	Country    string
}

type Provider struct {
	ID              string
	Name            string
	Telephone       string
	Address         Address
	Latitude        float64
	Longitude       float64
	PopularityScore int
	Income          float64
	Outcome         float64
	IsActive        bool
	CreatedAt       time.Time
}

// ProviderDetail carries the provider's cars for single-provider reads.
type ProviderDetail struct {
	Provider
	Cars []Car
}

// ProviderLocation is the map-pin projection of a provider.
type ProviderLocation struct {
	ID        string
	Name      string
	Telephone string
	Address   Address
	Latitude  float64
	Longitude float64
}

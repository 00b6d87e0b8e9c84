package models

type ProviderBookingCount struct {
	ProviderID   string `json:"providerId"`
	ProviderName string `json:"providerName"`
	Bookings     int64  `json:"bookings"`
}

type CarTypeCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

// Dashboard is the admin aggregate view.
type Dashboard struct {
	TotalBookings int64                  `json:"totalBookings"`
	TopProviders  []ProviderBookingCount `json:"topProviders"`
	TopCarTypes   []CarTypeCount         `json:"topCarTypes"`
	TotalIncome   float64                `json:"totalIncome"`
	TotalOutcome  float64                `json:"totalOutcome"`
}

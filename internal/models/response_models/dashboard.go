package response_models

import "time"

type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	// "day" | "week" | "month"
	Interval string `json:"interval"`
	Timezone string `json:"timezone,omitempty"`
}

type SeriesPoint struct {
	Bucket time.Time `json:"bucket"`
	Value  int64     `json:"value"`
}

type RevenueSeries struct {
	Currency   string        `json:"currency"`
	Points     []SeriesPoint `json:"points"`
	TotalMinor int64         `json:"total_minor"`
}

type BusinessStats struct {
	Total          int64 `json:"total"`
	Pending        int64 `json:"pending"`
	Approved       int64 `json:"approved"`
	BookingEnabled int64 `json:"booking_enabled"`
}

type AdminStatsResponse struct {
	Users                 int64         `json:"users"`
	Businesses            BusinessStats `json:"businesses"`
	Sessions              int64         `json:"sessions"`
	PendingSessions       int64         `json:"pending_sessions"`
	Bookings              int64         `json:"bookings"`
	ConfirmedBookings     int64         `json:"confirmed_bookings"`
	Trainers              int64         `json:"trainers"`
	PendingTrainers       int64         `json:"pending_trainers"`
	PendingClaims         int64         `json:"pending_claims"`
	ConfirmedRevenueMinor int64         `json:"confirmed_revenue_minor"`
	Currency              string        `json:"currency"`
	Range                 TimeRange     `json:"range"`
	Revenue               RevenueSeries `json:"revenue"`
}

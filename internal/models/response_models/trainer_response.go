package response_models

import "github.com/google/uuid"

type TrainerResponse struct {
	ID              uuid.UUID `json:"id"`
	UserID          string    `json:"user_id"`
	Name            string    `json:"name"`
	Bio             string    `json:"bio"`
	Location        string    `json:"location"`
	Postcode        string    `json:"postcode"`
	Email           string    `json:"email,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	Specialties     []string  `json:"specialties"`
	Certifications  []string  `json:"certifications"`
	ExperienceYears int       `json:"experience_years"`
	HourlyRateMinor int64     `json:"hourly_rate_minor"`
	Currency        string    `json:"currency"`
	Approved        bool      `json:"approved"`
	BookingEnabled  bool      `json:"booking_enabled"`
	CreatedAt       int64     `json:"created_at"`
}

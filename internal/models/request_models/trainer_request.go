package request_models

type ApplyTrainerRequest struct {
	Name            string   `json:"name"`
	Bio             string   `json:"bio"`
	Location        string   `json:"location"`
	Postcode        string   `json:"postcode"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	Specialties     []string `json:"specialties"`
	Certifications  []string `json:"certifications"`
	ExperienceYears int      `json:"experience_years"`
	HourlyRateMinor int64    `json:"hourly_rate_minor"`
}

type TrainerSearchQuery struct {
	Search    string `form:"search"`
	Specialty string `form:"specialty"`
	Location  string `form:"location"`
	MaxRate   *int64 `form:"max_rate"`
}

type TrainerBookingToggleRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

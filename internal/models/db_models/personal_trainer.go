package db_models

import "github.com/lib/pq"

// PersonalTrainer is booked directly. A user has at most one profile. BookingEnabled is an admin toggle, not
// derived from a subscription.
type PersonalTrainer struct {
	BaseModel
	UserID   string `gorm:"size:128;not null;uniqueIndex"`
	Name     string `gorm:"not null"`
	Bio      string `gorm:"type:text"`
	Location string `gorm:"index"`
	Postcode string
	Email    string
	Phone    string

	Specialties     pq.StringArray `gorm:"type:text[]"`
	Certifications  pq.StringArray `gorm:"type:text[]"`
	ExperienceYears int
	HourlyRateMinor int64 `gorm:"not null"`

	Approved       bool `gorm:"not null;default:false;index"`
	BookingEnabled bool `gorm:"not null;default:false"`
}

func (t *PersonalTrainer) Bookable() bool { return t.Approved && t.BookingEnabled }

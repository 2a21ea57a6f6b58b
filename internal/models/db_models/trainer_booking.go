package db_models

import (
	"time"

	"github.com/google/uuid"
)

type TrainerBooking struct {
	BaseModel
	UserID          string        `gorm:"size:128;not null;index"`
	TrainerID       uuid.UUID     `gorm:"type:uuid;not null;index:idx_trainer_slot"`
	SessionDate     time.Time     `gorm:"type:date;not null;index:idx_trainer_slot"`
	StartTime       string        `gorm:"size:5;not null;index:idx_trainer_slot"`
	DurationMinutes int           `gorm:"not null"`
	Status          BookingStatus `gorm:"size:16;not null;index"`

	PaymentIntentRef *string `gorm:"index"`
	PriceMinor       int64
	PlatformFeeMinor int64
	TotalAmountMinor int64 `gorm:"not null"`
	Currency         string `gorm:"size:3"`

	Notes *string
}

package db_models

import (
	"time"

	"github.com/google/uuid"
)

type Booking struct {
	BaseModel
	UserID      string        `gorm:"size:128;not null;index"`
	SessionID   uuid.UUID     `gorm:"type:uuid;not null;index:idx_booking_session_date"`
	SessionDate time.Time     `gorm:"type:date;not null;index:idx_booking_session_date"`
	Status      BookingStatus `gorm:"size:16;not null;index"`

	PaymentIntentRef *string `gorm:"index"`
	PriceMinor       int64
	PlatformFeeMinor int64
	TotalAmountMinor int64 `gorm:"not null"`
	Currency         string `gorm:"size:3"`

	SpecialRequirements *string
}

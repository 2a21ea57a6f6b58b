package db_models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type PaymentPurpose string

const (
	PurposeSessionBooking PaymentPurpose = "session_booking"
	PurposeTrainerBooking PaymentPurpose = "trainer_booking"
)

type PaymentAuthStatus string

const (
	PaymentAuthPending  PaymentAuthStatus = "pending"
	PaymentAuthConsumed PaymentAuthStatus = "consumed"
	// Released: the booking was refused and the hold cancelled or refunded.
	PaymentAuthReleased PaymentAuthStatus = "released"
)

// PaymentAuthorization records a gateway payment intent issued for one
// booking target. A booking consumes it exactly once; a refused booking
// releases it.
type PaymentAuthorization struct {
	BaseModel
	UserID   string         `gorm:"size:128;not null;index"`
	Purpose  PaymentPurpose `gorm:"size:32;not null"`
	TargetID uuid.UUID      `gorm:"type:uuid;not null;index"`

	AmountMinor int64             `gorm:"not null"`
	Currency    string            `gorm:"size:3;not null"`
	Status      PaymentAuthStatus `gorm:"size:16;not null;index"`

	Provider         string `gorm:"size:32"`
	ProviderIntentID string `gorm:"uniqueIndex;not null"`

	ConsumedByID *uuid.UUID `gorm:"type:uuid"`
	ConsumedAt   *int64
	ReleasedAt   *int64

	Metadata datatypes.JSON `gorm:"type:jsonb"`
}

package db_models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type BusinessClaim struct {
	BaseModel
	BusinessID            uuid.UUID      `gorm:"type:uuid;not null;index"`
	UserID                string         `gorm:"size:128;not null;index"`
	ClaimMessage          string         `gorm:"type:text;not null"`
	VerificationDocuments pq.StringArray `gorm:"type:text[]"`
	Status                ClaimStatus    `gorm:"size:16;not null;default:pending;index"`
	AdminNotes            string
	ApprovedAt            *int64
	DecidedAt             *int64
}

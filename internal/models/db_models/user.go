package db_models

import "fitbook/internal/authz"

// User is keyed by the identity provider's stable subject.
type User struct {
	ID                 string     `gorm:"primaryKey;size:128"`
	Email              string     `gorm:"uniqueIndex;not null"`
	Name               string
	Role               authz.Role `gorm:"size:16;not null;default:user"`
	PaymentCustomerRef *string
	CreatedAt          int64 `gorm:"autoCreateTime"`
	UpdatedAt          int64 `gorm:"autoUpdateTime"`
}

package db_models

import "github.com/lib/pq"

type Business struct {
	BaseModel
	UserID       *string `gorm:"size:128;index"`
	Name         string  `gorm:"not null"`
	Description  string
	Address      string
	Postcode     string `gorm:"index"`
	City         string
	Phone        string
	Email        string
	Website      string
	BusinessType string

	Specialties      pq.StringArray `gorm:"type:text[]"`
	AgeRanges        pq.StringArray `gorm:"type:text[]"`
	DifficultyLevels pq.StringArray `gorm:"type:text[]"`
	Amenities        pq.StringArray `gorm:"type:text[]"`

	Approved      bool `gorm:"not null;default:false;index"`
	Claimed       bool `gorm:"not null;default:false"`
	ManuallyAdded bool `gorm:"not null;default:false;index"`

	SubscriptionTier SubscriptionTier `gorm:"size:16;not null;default:free"`
	// SubscriptionActive is what the payment side controls; bookability is
	// derived in BookingEnabled.
	SubscriptionActive      bool `gorm:"not null;default:false"`
	SubscriptionExpiry      *int64
	ExternalSubscriptionRef *string `gorm:"index"`
}

// BookingEnabled holds only for an approved business on an active paid tier.
func (b *Business) BookingEnabled() bool {
	return b.Approved && b.SubscriptionTier.Paid() && b.SubscriptionActive
}

func (b *Business) OwnedBy(userID string) bool {
	return userID != "" && b.UserID != nil && *b.UserID == userID
}

// Claimable is true for admin-seeded businesses nobody owns yet.
func (b *Business) Claimable() bool {
	return b.ManuallyAdded && !b.Claimed && b.UserID == nil
}

// Downgrade drops the business to the free tier.
func (b *Business) Downgrade() {
	b.SubscriptionTier = TierFree
	b.SubscriptionActive = false
	b.SubscriptionExpiry = nil
	b.ExternalSubscriptionRef = nil
}

package response_models

import (
	"time"

	"github.com/google/uuid"
)

type BusinessResponse struct {
	ID               uuid.UUID `json:"id"`
	UserID           *string   `json:"user_id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Address          string    `json:"address"`
	Postcode         string    `json:"postcode"`
	City             string    `json:"city"`
	Phone            string    `json:"phone"`
	Email            string    `json:"email"`
	Website          string    `json:"website"`
	BusinessType     string    `json:"business_type"`
	Specialties      []string  `json:"specialties"`
	AgeRanges        []string  `json:"age_ranges"`
	DifficultyLevels []string  `json:"difficulty_levels"`
	Amenities        []string  `json:"amenities"`

	Approved           bool       `json:"approved"`
	Claimed            bool       `json:"claimed"`
	ManuallyAdded      bool       `json:"manually_added"`
	SubscriptionTier   string     `json:"subscription_tier"`
	BookingEnabled     bool       `json:"booking_enabled"`
	SubscriptionExpiry *time.Time `json:"subscription_expiry"`
	CreatedAt          int64      `json:"created_at"`
}

// BusinessSummary is embedded in session views.
type BusinessSummary struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Address        string    `json:"address"`
	Postcode       string    `json:"postcode"`
	City           string    `json:"city"`
	BookingEnabled bool      `json:"booking_enabled"`
}

type UpgradeSubscriptionResponse struct {
	Business       BusinessResponse `json:"business"`
	SubscriptionID string           `json:"subscription_id,omitempty"`
	ClientSecret   string           `json:"client_secret,omitempty"`
}

type ClaimResponse struct {
	ID                    uuid.UUID  `json:"id"`
	BusinessID            uuid.UUID  `json:"business_id"`
	BusinessName          string     `json:"business_name,omitempty"`
	UserID                string     `json:"user_id"`
	ClaimMessage          string     `json:"claim_message"`
	VerificationDocuments []string   `json:"verification_documents"`
	Status                string     `json:"status"`
	AdminNotes            string     `json:"admin_notes"`
	ApprovedAt            *time.Time `json:"approved_at"`
	CreatedAt             int64      `json:"created_at"`
}

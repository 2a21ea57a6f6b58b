package response_models

import "github.com/google/uuid"

type PaymentIntentResponse struct {
	PaymentIntentID  string `json:"payment_intent_id"`
	ClientSecret     string `json:"client_secret"`
	PriceMinor       int64  `json:"price_minor"`
	PlatformFeeMinor int64  `json:"platform_fee_minor"`
	TotalAmountMinor int64  `json:"total_amount_minor"`
	Currency         string `json:"currency"`
}

type BookingResponse struct {
	ID                  uuid.UUID `json:"id"`
	UserID              string    `json:"user_id"`
	SessionID           uuid.UUID `json:"session_id"`
	SessionTitle        string    `json:"session_title,omitempty"`
	SessionDate         string    `json:"session_date"`
	Status              string    `json:"status"`
	PaymentIntentID     *string   `json:"payment_intent_id"`
	PriceMinor          int64     `json:"price_minor"`
	PlatformFeeMinor    int64     `json:"platform_fee_minor"`
	TotalAmountMinor    int64     `json:"total_amount_minor"`
	Currency            string    `json:"currency"`
	SpecialRequirements *string   `json:"special_requirements"`
	CreatedAt           int64     `json:"created_at"`
}

type TrainerBookingResponse struct {
	ID               uuid.UUID `json:"id"`
	UserID           string    `json:"user_id"`
	TrainerID        uuid.UUID `json:"trainer_id"`
	TrainerName      string    `json:"trainer_name,omitempty"`
	SessionDate      string    `json:"session_date"`
	StartTime        string    `json:"start_time"`
	DurationMinutes  int       `json:"duration_minutes"`
	Status           string    `json:"status"`
	PaymentIntentID  *string   `json:"payment_intent_id"`
	PriceMinor       int64     `json:"price_minor"`
	PlatformFeeMinor int64     `json:"platform_fee_minor"`
	TotalAmountMinor int64     `json:"total_amount_minor"`
	Currency         string    `json:"currency"`
	Notes            *string   `json:"notes"`
	CreatedAt        int64     `json:"created_at"`
}

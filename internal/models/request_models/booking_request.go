package request_models

// PaymentIntentRequest names what is being paid for: a session on a date,
// or a trainer slot when TrainerID is set.
type PaymentIntentRequest struct {
	SessionID       string `json:"session_id"`
	TrainerID       string `json:"trainer_id"`
	SessionDate     string `json:"session_date" binding:"required"`
	StartTime       string `json:"start_time"`
	DurationMinutes int    `json:"duration_minutes"`
}

type CreateBookingRequest struct {
	SessionID           string `json:"session_id" binding:"required"`
	SessionDate         string `json:"session_date" binding:"required"`
	PaymentIntentID     string `json:"payment_intent_id" binding:"required"`
	SpecialRequirements string `json:"special_requirements"`
}

type CreateTrainerBookingRequest struct {
	TrainerID       string `json:"trainer_id" binding:"required"`
	SessionDate     string `json:"session_date" binding:"required"`
	StartTime       string `json:"start_time" binding:"required"`
	DurationMinutes int    `json:"duration_minutes" binding:"required"`
	PaymentIntentID string `json:"payment_intent_id" binding:"required"`
	Notes           string `json:"notes"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

package response_models

import "github.com/google/uuid"

type SessionTypeResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

type ScheduleSlotResponse struct {
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type SessionResponse struct {
	ID              uuid.UUID              `json:"id"`
	BusinessID      uuid.UUID              `json:"business_id"`
	SessionTypeID   uuid.UUID              `json:"session_type_id"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	Difficulty      []string               `json:"difficulty"`
	AgeGroups       []string               `json:"age_groups"`
	GenderPolicy    string                 `json:"gender_policy"`
	PriceMinor      int64                  `json:"price_minor"`
	Currency        string                 `json:"currency"`
	DurationMinutes int                    `json:"duration_minutes"`
	MaxParticipants int                    `json:"max_participants"`
	Schedule        []ScheduleSlotResponse `json:"schedule"`
	Approved        bool                   `json:"approved"`
	CreatedAt       int64                  `json:"created_at"`

	Business    *BusinessSummary     `json:"business,omitempty"`
	SessionType *SessionTypeResponse `json:"session_type,omitempty"`
}

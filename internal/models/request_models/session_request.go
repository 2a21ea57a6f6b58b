package request_models

type ScheduleSlotRequest struct {
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type CreateSessionRequest struct {
	BusinessID      string                `json:"business_id"`
	SessionTypeID   string                `json:"session_type_id"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Difficulty      []string              `json:"difficulty"`
	AgeGroups       []string              `json:"age_groups"`
	GenderPolicy    string                `json:"gender_policy"`
	PriceMinor      int64                 `json:"price_minor"`
	DurationMinutes int                   `json:"duration_minutes"`
	MaxParticipants int                   `json:"max_participants"`
	Schedule        []ScheduleSlotRequest `json:"schedule"`
}

// SessionSearchQuery binds from the query string. Prices are minor units.
type SessionSearchQuery struct {
	Postcode    string `form:"postcode"`
	SessionType string `form:"session_type"`
	AgeGroup    string `form:"age_group"`
	Difficulty  string `form:"difficulty"`
	MinPrice    *int64 `form:"min_price"`
	MaxPrice    *int64 `form:"max_price"`
}

package db_models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type ScheduleSlot struct {
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type FitnessSession struct {
	BaseModel
	BusinessID    uuid.UUID `gorm:"type:uuid;not null;index"`
	SessionTypeID uuid.UUID `gorm:"type:uuid;not null;index"`
	Title         string    `gorm:"not null"`
	Description   string

	Difficulty   pq.StringArray `gorm:"type:text[]"`
	AgeGroups    pq.StringArray `gorm:"type:text[]"`
	GenderPolicy GenderPolicy   `gorm:"size:16;not null;default:mixed"`

	PriceMinor      int64 `gorm:"not null"`
	DurationMinutes int   `gorm:"not null"`
	MaxParticipants int   `gorm:"not null"`

	Schedule datatypes.JSONSlice[ScheduleSlot] `gorm:"type:jsonb"`
	Approved bool                              `gorm:"not null;default:false;index"`
}

// RunsOn reports whether any schedule slot falls on weekday (0 = Sunday).
func (s *FitnessSession) RunsOn(weekday int) bool {
	for _, slot := range s.Schedule {
		if slot.DayOfWeek == weekday {
			return true
		}
	}
	return false
}

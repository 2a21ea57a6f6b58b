package db_models

type SessionType struct {
	BaseModel
	Name        string `gorm:"uniqueIndex;not null"`
	Description string
}

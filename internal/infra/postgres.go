package infra

import (
	"time"

	"fitbook/internal/models/db_models"
	"fitbook/pkg/config"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func InitPostgresql(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	level := gormlogger.Warn
	if !cfg.IsProduction() {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		log.Error("error connecting to database", zap.Error(err))
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

func ClosePostgresql(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("error getting database instance", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("error closing database connection", zap.Error(err))
	} else {
		log.Info("postgres connection closed")
	}
}

// Entities lists every table owned by the application, in dependency order.
func Entities() []interface{} {
	return []interface{}{
		&db_models.User{},
		&db_models.Business{},
		&db_models.BusinessClaim{},
		&db_models.SessionType{},
		&db_models.FitnessSession{},
		&db_models.Booking{},
		&db_models.PersonalTrainer{},
		&db_models.TrainerBooking{},
		&db_models.PaymentAuthorization{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Entities()...)
}

package repositories

import (
	"context"
	"time"

	"fitbook/internal/models/db_models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TrainerBookingRepository interface {
	Create(ctx context.Context, booking *db_models.TrainerBooking) error
	Save(ctx context.Context, booking *db_models.TrainerBooking) error
	FindByID(ctx context.Context, id uuid.UUID) (*db_models.TrainerBooking, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*db_models.TrainerBooking, error)
	ListByUserID(ctx context.Context, userID string) ([]db_models.TrainerBooking, error)
	// CountOverlapping counts confirmed bookings on date whose slot intersects
	// [startMinute, endMinute), both in minutes after midnight.
	CountOverlapping(ctx context.Context, trainerID uuid.UUID, date time.Time, startMinute, endMinute int) (int64, error)
}

type trainerBookingRepository struct {
	db *gorm.DB
}

func NewTrainerBookingRepository(db *gorm.DB) TrainerBookingRepository {
	return &trainerBookingRepository{db: db}
}

func (r *trainerBookingRepository) Create(ctx context.Context, booking *db_models.TrainerBooking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *trainerBookingRepository) Save(ctx context.Context, booking *db_models.TrainerBooking) error {
	return r.db.WithContext(ctx).Save(booking).Error
}

func (r *trainerBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*db_models.TrainerBooking, error) {
	return first[db_models.TrainerBooking](r.db.WithContext(ctx), "id = ?", id)
}

func (r *trainerBookingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*db_models.TrainerBooking, error) {
	return first[db_models.TrainerBooking](forUpdate(r.db.WithContext(ctx)), "id = ?", id)
}

func (r *trainerBookingRepository) ListByUserID(ctx context.Context, userID string) ([]db_models.TrainerBooking, error) {
	var out []db_models.TrainerBooking
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("session_date DESC, start_time DESC").
		Find(&out).Error
	return out, err
}

// slotStartMinutes turns the stored HH:MM start into minutes after midnight.
const slotStartMinutes = "(EXTRACT(HOUR FROM start_time::time) * 60 + EXTRACT(MINUTE FROM start_time::time))"

func (r *trainerBookingRepository) CountOverlapping(ctx context.Context, trainerID uuid.UUID, date time.Time, startMinute, endMinute int) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&db_models.TrainerBooking{}).
		Where("trainer_id = ? AND session_date = ? AND status = ?", trainerID, date, db_models.BookingConfirmed).
		Where(slotStartMinutes+" < ? AND "+slotStartMinutes+" + duration_minutes > ?", endMinute, startMinute).
		Count(&n).Error
	return n, err
}

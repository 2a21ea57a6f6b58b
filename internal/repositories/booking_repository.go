package repositories

import (
	"context"
	"time"

	"fitbook/internal/models/db_models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *db_models.Booking) error
	Save(ctx context.Context, booking *db_models.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*db_models.Booking, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*db_models.Booking, error)
	ListByUserID(ctx context.Context, userID string) ([]db_models.Booking, error)
	// CountActiveForSessionDate counts confirmed bookings on one date.
	CountActiveForSessionDate(ctx context.Context, sessionID uuid.UUID, date time.Time) (int64, error)
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(ctx context.Context, booking *db_models.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepository) Save(ctx context.Context, booking *db_models.Booking) error {
	return r.db.WithContext(ctx).Save(booking).Error
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*db_models.Booking, error) {
	return first[db_models.Booking](r.db.WithContext(ctx), "id = ?", id)
}

func (r *bookingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*db_models.Booking, error) {
	return first[db_models.Booking](forUpdate(r.db.WithContext(ctx)), "id = ?", id)
}

func (r *bookingRepository) ListByUserID(ctx context.Context, userID string) ([]db_models.Booking, error) {
	var out []db_models.Booking
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("session_date DESC, created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *bookingRepository) CountActiveForSessionDate(ctx context.Context, sessionID uuid.UUID, date time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&db_models.Booking{}).
		Where("session_id = ? AND session_date = ? AND status = ?", sessionID, date, db_models.BookingConfirmed).
		Count(&n).Error
	return n, err
}

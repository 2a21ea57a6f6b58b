package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	dbm "fitbook/internal/models/db_models"
)

type DashboardRepository interface {
	CountUsers(ctx context.Context) (int64, error)
	CountBusinesses(ctx context.Context) (BusinessCounts, error)
	CountSessions(ctx context.Context) (total, pending int64, err error)
	CountBookings(ctx context.Context) (total, confirmed int64, err error)
	CountTrainers(ctx context.Context) (total, pending int64, err error)
	CountPendingClaims(ctx context.Context) (int64, error)

	// ConfirmedRevenue sums booking totals, trainer bookings included,
	// excluding cancellations.
	ConfirmedRevenue(ctx context.Context) (int64, error)
	RevenueSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]BucketSum, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

// ---------- Row helpers ----------
type BucketSum struct {
	Bucket time.Time `gorm:"column:bucket"`
	Sum    int64     `gorm:"column:sum"`
}

type BusinessCounts struct {
	Total          int64 `gorm:"column:total"`
	Pending        int64 `gorm:"column:pending"`
	Approved       int64 `gorm:"column:approved"`
	BookingEnabled int64 `gorm:"column:booking_enabled"`
}

// ---------- Helpers ----------
func dateTrunc(tz string, unixColumn string) string {
	// unixColumn holds UNIX seconds.
	if tz == "" {
		return "date_trunc(?, to_timestamp(" + unixColumn + "))"
	}
	return "date_trunc(?, timezone(?, to_timestamp(" + unixColumn + ")))"
}

func (r *dashboardRepository) countWhere(ctx context.Context, model interface{}, query string, args ...interface{}) (int64, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	err := q.Count(&n).Error
	return n, err
}

// ---------- Counts ----------
func (r *dashboardRepository) CountUsers(ctx context.Context) (int64, error) {
	return r.countWhere(ctx, &dbm.User{}, "")
}

func (r *dashboardRepository) CountBusinesses(ctx context.Context) (BusinessCounts, error) {
	var c BusinessCounts
	err := r.db.WithContext(ctx).
		Model(&dbm.Business{}).
		Select(`
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE NOT approved) AS pending,
			COUNT(*) FILTER (WHERE approved) AS approved,
			COUNT(*) FILTER (WHERE approved AND subscription_active AND subscription_tier <> ?) AS booking_enabled`,
			dbm.TierFree).
		Scan(&c).Error
	return c, err
}

func (r *dashboardRepository) CountSessions(ctx context.Context) (int64, int64, error) {
	total, err := r.countWhere(ctx, &dbm.FitnessSession{}, "")
	if err != nil {
		return 0, 0, err
	}
	pending, err := r.countWhere(ctx, &dbm.FitnessSession{}, "approved = ?", false)
	return total, pending, err
}

func (r *dashboardRepository) CountBookings(ctx context.Context) (int64, int64, error) {
	total, err := r.countWhere(ctx, &dbm.Booking{}, "")
	if err != nil {
		return 0, 0, err
	}
	confirmed, err := r.countWhere(ctx, &dbm.Booking{}, "status = ?", dbm.BookingConfirmed)
	return total, confirmed, err
}

func (r *dashboardRepository) CountTrainers(ctx context.Context) (int64, int64, error) {
	total, err := r.countWhere(ctx, &dbm.PersonalTrainer{}, "")
	if err != nil {
		return 0, 0, err
	}
	pending, err := r.countWhere(ctx, &dbm.PersonalTrainer{}, "approved = ?", false)
	return total, pending, err
}

func (r *dashboardRepository) CountPendingClaims(ctx context.Context) (int64, error) {
	return r.countWhere(ctx, &dbm.BusinessClaim{}, "status = ?", dbm.ClaimPending)
}

// ---------- Revenue ----------
func (r *dashboardRepository) ConfirmedRevenue(ctx context.Context) (int64, error) {
	var sessions, trainers int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Booking{}).
		Select("COALESCE(SUM(total_amount_minor), 0)").
		Where("status <> ?", dbm.BookingCancelled).
		Scan(&sessions).Error
	if err != nil {
		return 0, err
	}
	err = r.db.WithContext(ctx).
		Model(&dbm.TrainerBooking{}).
		Select("COALESCE(SUM(total_amount_minor), 0)").
		Where("status <> ?", dbm.BookingCancelled).
		Scan(&trainers).Error
	return sessions + trainers, err
}

func (r *dashboardRepository) RevenueSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]BucketSum, error) {
	var rows []BucketSum
	args := []interface{}{interval}
	if tz != "" {
		args = append(args, tz)
	}
	err := r.db.WithContext(ctx).
		Table("bookings").
		Select(dateTrunc(tz, "created_at")+" AS bucket, SUM(total_amount_minor) AS sum", args...).
		Where("status <> ?", dbm.BookingCancelled).
		Where("created_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Group("bucket").
		Order("bucket ASC").
		Find(&rows).Error
	return rows, err
}

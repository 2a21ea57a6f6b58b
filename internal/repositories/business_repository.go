package repositories

import (
	"context"

	"fitbook/internal/models/db_models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BusinessRepository interface {
	Create(ctx context.Context, business *db_models.Business) error
	Save(ctx context.Context, business *db_models.Business) error
	FindByID(ctx context.Context, id uuid.UUID) (*db_models.Business, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*db_models.Business, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]db_models.Business, error)
	FindBySubscriptionRef(ctx context.Context, ref string) (*db_models.Business, error)
	ListByUserID(ctx context.Context, userID string) ([]db_models.Business, error)
	ListUnclaimed(ctx context.Context) ([]db_models.Business, error)
	ListPending(ctx context.Context) ([]db_models.Business, error)
	// FindManual matches an admin-added business by name and postcode.
	FindManual(ctx context.Context, name, postcode string) (*db_models.Business, error)
}

type businessRepository struct {
	db *gorm.DB
}

func NewBusinessRepository(db *gorm.DB) BusinessRepository {
	return &businessRepository{db: db}
}

func (r *businessRepository) Create(ctx context.Context, business *db_models.Business) error {
	return r.db.WithContext(ctx).Create(business).Error
}

func (r *businessRepository) Save(ctx context.Context, business *db_models.Business) error {
	return r.db.WithContext(ctx).Save(business).Error
}

func (r *businessRepository) FindByID(ctx context.Context, id uuid.UUID) (*db_models.Business, error) {
	return first[db_models.Business](r.db.WithContext(ctx), "id = ?", id)
}

func (r *businessRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*db_models.Business, error) {
	return first[db_models.Business](forUpdate(r.db.WithContext(ctx)), "id = ?", id)
}

func (r *businessRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]db_models.Business, error) {
	var out []db_models.Business
	if len(ids) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

func (r *businessRepository) FindBySubscriptionRef(ctx context.Context, ref string) (*db_models.Business, error) {
	return first[db_models.Business](r.db.WithContext(ctx), "external_subscription_ref = ?", ref)
}

func (r *businessRepository) ListByUserID(ctx context.Context, userID string) ([]db_models.Business, error) {
	var out []db_models.Business
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *businessRepository) ListUnclaimed(ctx context.Context) ([]db_models.Business, error) {
	var out []db_models.Business
	err := r.db.WithContext(ctx).
		Where("manually_added = ? AND claimed = ? AND user_id IS NULL", true, false).
		Order("name ASC").
		Find(&out).Error
	return out, err
}

func (r *businessRepository) ListPending(ctx context.Context) ([]db_models.Business, error) {
	var out []db_models.Business
	err := r.db.WithContext(ctx).
		Where("approved = ?", false).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *businessRepository) FindManual(ctx context.Context, name, postcode string) (*db_models.Business, error) {
	return first[db_models.Business](r.db.WithContext(ctx).
		Where("manually_added = ? AND lower(name) = lower(?) AND postcode = ?", true, name, postcode))
}

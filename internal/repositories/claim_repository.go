package repositories

import (
	"context"

	"fitbook/internal/models/db_models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClaimRepository interface {
	Create(ctx context.Context, claim *db_models.BusinessClaim) error
	Save(ctx context.Context, claim *db_models.BusinessClaim) error
	FindByID(ctx context.Context, id uuid.UUID) (*db_models.BusinessClaim, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*db_models.BusinessClaim, error)
	HasPending(ctx context.Context, businessID uuid.UUID, userID string) (bool, error)
	ListPending(ctx context.Context) ([]db_models.BusinessClaim, error)
}

type claimRepository struct {
	db *gorm.DB
}

func NewClaimRepository(db *gorm.DB) ClaimRepository {
	return &claimRepository{db: db}
}

func (r *claimRepository) Create(ctx context.Context, claim *db_models.BusinessClaim) error {
	return r.db.WithContext(ctx).Create(claim).Error
}

func (r *claimRepository) Save(ctx context.Context, claim *db_models.BusinessClaim) error {
	return r.db.WithContext(ctx).Save(claim).Error
}

func (r *claimRepository) FindByID(ctx context.Context, id uuid.UUID) (*db_models.BusinessClaim, error) {
	return first[db_models.BusinessClaim](r.db.WithContext(ctx), "id = ?", id)
}

func (r *claimRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*db_models.BusinessClaim, error) {
	return first[db_models.BusinessClaim](forUpdate(r.db.WithContext(ctx)), "id = ?", id)
}

func (r *claimRepository) HasPending(ctx context.Context, businessID uuid.UUID, userID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&db_models.BusinessClaim{}).
		Where("business_id = ? AND user_id = ? AND status = ?", businessID, userID, db_models.ClaimPending).
		Count(&n).Error
	return n > 0, err
}

func (r *claimRepository) ListPending(ctx context.Context) ([]db_models.BusinessClaim, error) {
	var out []db_models.BusinessClaim
	err := r.db.WithContext(ctx).
		Where("status = ?", db_models.ClaimPending).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

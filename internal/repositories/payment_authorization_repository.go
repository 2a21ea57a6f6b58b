package repositories

import (
	"context"

	"fitbook/internal/models/db_models"

	"gorm.io/gorm"
)

type PaymentAuthorizationRepository interface {
	Create(ctx context.Context, auth *db_models.PaymentAuthorization) error
	Save(ctx context.Context, auth *db_models.PaymentAuthorization) error
	FindByIntentIDForUpdate(ctx context.Context, intentID string) (*db_models.PaymentAuthorization, error)
}

type paymentAuthorizationRepository struct {
	db *gorm.DB
}

func NewPaymentAuthorizationRepository(db *gorm.DB) PaymentAuthorizationRepository {
	return &paymentAuthorizationRepository{db: db}
}

func (r *paymentAuthorizationRepository) Create(ctx context.Context, auth *db_models.PaymentAuthorization) error {
	return r.db.WithContext(ctx).Create(auth).Error
}

func (r *paymentAuthorizationRepository) Save(ctx context.Context, auth *db_models.PaymentAuthorization) error {
	return r.db.WithContext(ctx).Save(auth).Error
}

func (r *paymentAuthorizationRepository) FindByIntentIDForUpdate(ctx context.Context, intentID string) (*db_models.PaymentAuthorization, error) {
	return first[db_models.PaymentAuthorization](forUpdate(r.db.WithContext(ctx)), "provider_intent_id = ?", intentID)
}

package repositories

import (
	"context"

	"fitbook/internal/authz"
	"fitbook/internal/models/db_models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Upsert(ctx context.Context, user *db_models.User) error
	FindByID(ctx context.Context, id string) (*db_models.User, error)
	FindByEmail(ctx context.Context, email string) (*db_models.User, error)
	UpdateRole(ctx context.Context, id string, role authz.Role) error
	SetPaymentCustomerRef(ctx context.Context, id, ref string) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Upsert inserts on first sign-in and otherwise refreshes the profile
// fields. Role and payment customer are never touched here.
func (u *userRepository) Upsert(ctx context.Context, user *db_models.User) error {
	return u.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "name", "updated_at"}),
	}).Create(user).Error
}

func (u *userRepository) FindByID(ctx context.Context, id string) (*db_models.User, error) {
	return first[db_models.User](u.db.WithContext(ctx), "id = ?", id)
}

func (u *userRepository) FindByEmail(ctx context.Context, email string) (*db_models.User, error) {
	return first[db_models.User](u.db.WithContext(ctx), "email = ?", email)
}

func (u *userRepository) UpdateRole(ctx context.Context, id string, role authz.Role) error {
	return u.db.WithContext(ctx).Model(&db_models.User{}).
		Where("id = ?", id).
		Update("role", role).Error
}

func (u *userRepository) SetPaymentCustomerRef(ctx context.Context, id, ref string) error {
	return u.db.WithContext(ctx).Model(&db_models.User{}).
		Where("id = ?", id).
		Update("payment_customer_ref", ref).Error
}

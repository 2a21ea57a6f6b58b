package repositories

import (
	"context"

	"fitbook/internal/models/db_models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionTypeRepository interface {
	List(ctx context.Context) ([]db_models.SessionType, error)
	FindByID(ctx context.Context, id uuid.UUID) (*db_models.SessionType, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]db_models.SessionType, error)
	FirstOrCreate(ctx context.Context, st *db_models.SessionType) error
}

type sessionTypeRepository struct {
	db *gorm.DB
}

func NewSessionTypeRepository(db *gorm.DB) SessionTypeRepository {
	return &sessionTypeRepository{db: db}
}

func (r *sessionTypeRepository) List(ctx context.Context) ([]db_models.SessionType, error) {
	var out []db_models.SessionType
	err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *sessionTypeRepository) FindByID(ctx context.Context, id uuid.UUID) (*db_models.SessionType, error) {
	return first[db_models.SessionType](r.db.WithContext(ctx), "id = ?", id)
}

func (r *sessionTypeRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]db_models.SessionType, error) {
	var out []db_models.SessionType
	if len(ids) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

// FirstOrCreate matches on name; st is filled with the stored row.
func (r *sessionTypeRepository) FirstOrCreate(ctx context.Context, st *db_models.SessionType) error {
	return r.db.WithContext(ctx).
		Where(db_models.SessionType{Name: st.Name}).
		Attrs(db_models.SessionType{Description: st.Description}).
		FirstOrCreate(st).Error
}

package repositories

import (
	"context"
	"strings"

	"fitbook/internal/models/db_models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TrainerFilter struct {
	Search       string
	Specialty    string
	Location     string
	MaxRateMinor *int64
}

type TrainerRepository interface {
	Create(ctx context.Context, trainer *db_models.PersonalTrainer) error
	Save(ctx context.Context, trainer *db_models.PersonalTrainer) error
	FindByID(ctx context.Context, id uuid.UUID) (*db_models.PersonalTrainer, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*db_models.PersonalTrainer, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]db_models.PersonalTrainer, error)
	ListByUserID(ctx context.Context, userID string) ([]db_models.PersonalTrainer, error)
	ListPending(ctx context.Context) ([]db_models.PersonalTrainer, error)
	Search(ctx context.Context, f TrainerFilter) ([]db_models.PersonalTrainer, error)
}

type trainerRepository struct {
	db *gorm.DB
}

func NewTrainerRepository(db *gorm.DB) TrainerRepository {
	return &trainerRepository{db: db}
}

// Create returns ErrDuplicate when the user already has a profile.
func (r *trainerRepository) Create(ctx context.Context, trainer *db_models.PersonalTrainer) error {
	return translateCreate(r.db.WithContext(ctx).Create(trainer).Error)
}

func (r *trainerRepository) Save(ctx context.Context, trainer *db_models.PersonalTrainer) error {
	return r.db.WithContext(ctx).Save(trainer).Error
}

func (r *trainerRepository) FindByID(ctx context.Context, id uuid.UUID) (*db_models.PersonalTrainer, error) {
	return first[db_models.PersonalTrainer](r.db.WithContext(ctx), "id = ?", id)
}

func (r *trainerRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*db_models.PersonalTrainer, error) {
	return first[db_models.PersonalTrainer](forUpdate(r.db.WithContext(ctx)), "id = ?", id)
}

func (r *trainerRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]db_models.PersonalTrainer, error) {
	var out []db_models.PersonalTrainer
	if len(ids) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

func (r *trainerRepository) ListByUserID(ctx context.Context, userID string) ([]db_models.PersonalTrainer, error) {
	var out []db_models.PersonalTrainer
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *trainerRepository) ListPending(ctx context.Context) ([]db_models.PersonalTrainer, error) {
	var out []db_models.PersonalTrainer
	err := r.db.WithContext(ctx).Where("approved = ?", false).Order("created_at ASC").Find(&out).Error
	return out, err
}

// Search only ever returns approved trainers.
func (r *trainerRepository) Search(ctx context.Context, f TrainerFilter) ([]db_models.PersonalTrainer, error) {
	q := r.db.WithContext(ctx).Where("approved = ?", true)

	if s := strings.TrimSpace(f.Search); s != "" {
		p := likePattern(s)
		q = q.Where("(name ILIKE ? OR bio ILIKE ?)", p, p)
	}
	if s := strings.TrimSpace(f.Specialty); s != "" {
		q = q.Where("? = ANY(specialties)", s)
	}
	if s := strings.TrimSpace(f.Location); s != "" {
		q = q.Where("location ILIKE ?", likePattern(s))
	}
	if f.MaxRateMinor != nil {
		q = q.Where("hourly_rate_minor <= ?", *f.MaxRateMinor)
	}

	var out []db_models.PersonalTrainer
	err := q.Order("created_at ASC").Find(&out).Error
	return out, err
}

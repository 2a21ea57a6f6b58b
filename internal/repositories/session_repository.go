package repositories

import (
	"context"
	"strings"

	"fitbook/internal/models/db_models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionFilter is AND-combined. Empty fields do not constrain.
type SessionFilter struct {
	Postcode      string
	SessionType   string
	AgeGroup      string
	Difficulty    string
	MinPriceMinor *int64
	MaxPriceMinor *int64
}

type SessionRepository interface {
	Create(ctx context.Context, session *db_models.FitnessSession) error
	Save(ctx context.Context, session *db_models.FitnessSession) error
	FindByID(ctx context.Context, id uuid.UUID) (*db_models.FitnessSession, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*db_models.FitnessSession, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]db_models.FitnessSession, error)
	ListByBusinessID(ctx context.Context, businessID uuid.UUID) ([]db_models.FitnessSession, error)
	ListPending(ctx context.Context) ([]db_models.FitnessSession, error)
	Search(ctx context.Context, f SessionFilter) ([]db_models.FitnessSession, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *db_models.FitnessSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) Save(ctx context.Context, session *db_models.FitnessSession) error {
	return r.db.WithContext(ctx).Save(session).Error
}

func (r *sessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*db_models.FitnessSession, error) {
	return first[db_models.FitnessSession](r.db.WithContext(ctx), "id = ?", id)
}

func (r *sessionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*db_models.FitnessSession, error) {
	return first[db_models.FitnessSession](forUpdate(r.db.WithContext(ctx)), "id = ?", id)
}

func (r *sessionRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]db_models.FitnessSession, error) {
	var out []db_models.FitnessSession
	if len(ids) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

func (r *sessionRepository) ListByBusinessID(ctx context.Context, businessID uuid.UUID) ([]db_models.FitnessSession, error) {
	var out []db_models.FitnessSession
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *sessionRepository) ListPending(ctx context.Context) ([]db_models.FitnessSession, error) {
	var out []db_models.FitnessSession
	err := r.db.WithContext(ctx).
		Where("approved = ?", false).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

// Search returns approved sessions of approved businesses, in storage order.
func (r *sessionRepository) Search(ctx context.Context, f SessionFilter) ([]db_models.FitnessSession, error) {
	q := r.db.WithContext(ctx).
		Model(&db_models.FitnessSession{}).
		Joins("JOIN businesses b ON b.id = fitness_sessions.business_id").
		Joins("JOIN session_types st ON st.id = fitness_sessions.session_type_id").
		Where("fitness_sessions.approved = ? AND b.approved = ?", true, true)

	if s := strings.TrimSpace(f.Postcode); s != "" {
		q = q.Where("b.postcode ILIKE ?", likePattern(s))
	}
	if s := strings.TrimSpace(f.SessionType); s != "" {
		q = q.Where("st.name ILIKE ?", likePattern(s))
	}
	if s := strings.TrimSpace(f.AgeGroup); s != "" {
		q = q.Where("? = ANY(fitness_sessions.age_groups)", s)
	}
	if s := strings.TrimSpace(f.Difficulty); s != "" {
		q = q.Where("? = ANY(fitness_sessions.difficulty)", s)
	}
	if f.MinPriceMinor != nil {
		q = q.Where("fitness_sessions.price_minor >= ?", *f.MinPriceMinor)
	}
	if f.MaxPriceMinor != nil {
		q = q.Where("fitness_sessions.price_minor <= ?", *f.MaxPriceMinor)
	}

	var out []db_models.FitnessSession
	err := q.Select("fitness_sessions.*").
		Order(clause.OrderByColumn{Column: clause.Column{Table: "fitness_sessions", Name: "created_at"}}).
		Find(&out).Error
	return out, err
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fitbook/internal/authz"
	"fitbook/internal/models/db_models"
	"fitbook/internal/models/request_models"
	"fitbook/internal/models/response_models"
	"fitbook/internal/repositories"
	"fitbook/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TrainerService interface {
	Apply(ctx context.Context, actor authz.Actor, req request_models.ApplyTrainerRequest) (*response_models.TrainerResponse, error)
	Approve(ctx context.Context, actor authz.Actor, id string, approved bool) (*response_models.TrainerResponse, error)
	SetBookingEnabled(ctx context.Context, actor authz.Actor, id string, enabled bool) (*response_models.TrainerResponse, error)
	Search(ctx context.Context, q request_models.TrainerSearchQuery) ([]response_models.TrainerResponse, error)
	Get(ctx context.Context, actor authz.Actor, id string) (*response_models.TrainerResponse, error)
	ListPending(ctx context.Context, actor authz.Actor) ([]response_models.TrainerResponse, error)
	ListMy(ctx context.Context, actor authz.Actor) ([]response_models.TrainerResponse, error)
}

type trainerService struct {
	store   repositories.Store
	market  MarketplaceConfig
	effects sideEffects
	now     func() time.Time
}

func NewTrainerService(store repositories.Store, notifier Notifier, events EventPublisher, market MarketplaceConfig, log *zap.Logger) TrainerService {
	return &trainerService{
		store:   store,
		market:  market,
		effects: sideEffects{notifier: notifier, events: events, log: log},
		now:     time.Now,
	}
}

type trainerEvent struct {
	TrainerID uuid.UUID `json:"trainer_id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Approved  bool      `json:"approved"`
	At        int64     `json:"at"`
}

func (s *trainerService) event(t *db_models.PersonalTrainer) trainerEvent {
	return trainerEvent{TrainerID: t.ID, UserID: t.UserID, Name: t.Name, Approved: t.Approved, At: s.now().Unix()}
}

// view drops contact details for callers other than the trainer and admins.
func (s *trainerService) view(actor authz.Actor, t *db_models.PersonalTrainer) response_models.TrainerResponse {
	resp := toTrainerResponse(t, s.market.Currency)
	if !actor.IsAdmin() && actor.UserID != t.UserID {
		resp.Email = ""
		resp.Phone = ""
	}
	return resp
}

func (s *trainerService) views(actor authz.Actor, list []db_models.PersonalTrainer) []response_models.TrainerResponse {
	out := make([]response_models.TrainerResponse, 0, len(list))
	for i := range list {
		out = append(out, s.view(actor, &list[i]))
	}
	return out
}

var errTrainerExists = utils.NewError(utils.ErrConflict, "you already have a trainer profile")

func (s *trainerService) Apply(ctx context.Context, actor authz.Actor, req request_models.ApplyTrainerRequest) (*response_models.TrainerResponse, error) {
	if err := authz.RequireAuthenticated(actor); err != nil {
		return nil, err
	}

	var v utils.Validator
	v.Required("name", req.Name)
	v.Required("location", req.Location)
	v.Check(req.HourlyRateMinor > 0, "hourly_rate_minor", "must be positive")
	v.Check(req.ExperienceYears >= 0, "experience_years", "must not be negative")
	v.Check(len(cleanList(req.Specialties)) > 0, "specialties", "at least one is required")
	if err := v.Err(); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		email = actor.Email
	}
	t := &db_models.PersonalTrainer{
		UserID:          actor.UserID,
		Name:            strings.TrimSpace(req.Name),
		Bio:             strings.TrimSpace(req.Bio),
		Location:        strings.TrimSpace(req.Location),
		Postcode:        strings.ToUpper(strings.TrimSpace(req.Postcode)),
		Email:           email,
		Phone:           strings.TrimSpace(req.Phone),
		Specialties:     cleanList(req.Specialties),
		Certifications:  cleanList(req.Certifications),
		ExperienceYears: req.ExperienceYears,
		HourlyRateMinor: req.HourlyRateMinor,
	}

	err := s.store.WithinTransaction(ctx, func(tx repositories.Store) error {
		existing, err := tx.Trainers().ListByUserID(ctx, actor.UserID)
		if err != nil {
			return utils.Database(err)
		}
		if len(existing) > 0 {
			return errTrainerExists
		}
		// A concurrent apply that passed the check above trips the unique index.
		if err := tx.Trainers().Create(ctx, t); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return errTrainerExists
			}
			return utils.Database(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.effects.notify(ctx, Message{
		To:       s.market.AdminEmail,
		Subject:  "New trainer application: " + t.Name,
		Body:     fmt.Sprintf("%s (%s) applied at %s per hour.", t.Name, t.Location, utils.FormatMinor(t.HourlyRateMinor, s.market.Currency)),
		CTAText:  "Review trainers",
		CTAURL:   s.market.link("/admin/trainers"),
		Category: EventTrainerApplied,
	})
	s.effects.publish(ctx, EventTrainerApplied, s.event(t))

	resp := s.view(actor, t)
	return &resp, nil
}

func (s *trainerService) Approve(ctx context.Context, actor authz.Actor, id string, approved bool) (*response_models.TrainerResponse, error) {
	if err := authz.RequireRole(actor, authz.RoleAdmin); err != nil {
		return nil, err
	}
	t, err := s.mutate(ctx, id, func(t *db_models.PersonalTrainer) error {
		t.Approved = approved
		return nil
	})
	if err != nil {
		return nil, err
	}

	subject, body := "Your trainer profile is approved", fmt.Sprintf("Hi %s, your profile is now visible to customers.", t.Name)
	if !approved {
		subject, body = "Your trainer profile was not approved", fmt.Sprintf("Hi %s, your profile is not visible to customers at the moment.", t.Name)
	}
	s.effects.notify(ctx, Message{
		To:       t.Email,
		Subject:  subject,
		Body:     body,
		Category: EventTrainerApproved,
	})
	s.effects.publish(ctx, EventTrainerApproved, s.event(t))

	resp := s.view(actor, t)
	return &resp, nil
}

// SetBookingEnabled is the admin toggle that opens a trainer for bookings.
// Only approved trainers can be opened.
func (s *trainerService) SetBookingEnabled(ctx context.Context, actor authz.Actor, id string, enabled bool) (*response_models.TrainerResponse, error) {
	if err := authz.RequireRole(actor, authz.RoleAdmin); err != nil {
		return nil, err
	}
	t, err := s.mutate(ctx, id, func(t *db_models.PersonalTrainer) error {
		if enabled && !t.Approved {
			return utils.NewError(utils.ErrConflict, "trainer must be approved before taking bookings")
		}
		t.BookingEnabled = enabled
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := s.view(actor, t)
	return &resp, nil
}

// mutate applies fn to the locked trainer row and saves it.
func (s *trainerService) mutate(ctx context.Context, id string, fn func(*db_models.PersonalTrainer) error) (*db_models.PersonalTrainer, error) {
	tid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	var t *db_models.PersonalTrainer
	err = s.store.WithinTransaction(ctx, func(tx repositories.Store) error {
		var err error
		t, err = tx.Trainers().FindByIDForUpdate(ctx, tid)
		if err != nil {
			return utils.Database(err)
		}
		if t == nil {
			return utils.NotFound("trainer")
		}
		if err := fn(t); err != nil {
			return err
		}
		if err := tx.Trainers().Save(ctx, t); err != nil {
			return utils.Database(err)
		}
		return nil
	})
	return t, err
}

func (s *trainerService) Search(ctx context.Context, q request_models.TrainerSearchQuery) ([]response_models.TrainerResponse, error) {
	list, err := s.store.Trainers().Search(ctx, repositories.TrainerFilter{
		Search:       q.Search,
		Specialty:    q.Specialty,
		Location:     q.Location,
		MaxRateMinor: q.MaxRate,
	})
	if err != nil {
		return nil, utils.Database(err)
	}
	return s.views(authz.Anonymous(), list), nil
}

func (s *trainerService) Get(ctx context.Context, actor authz.Actor, id string) (*response_models.TrainerResponse, error) {
	tid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	t, err := s.store.Trainers().FindByID(ctx, tid)
	if err != nil {
		return nil, utils.Database(err)
	}
	if t == nil || (!t.Approved && !actor.IsAdmin() && t.UserID != actor.UserID) {
		return nil, utils.NotFound("trainer")
	}
	resp := s.view(actor, t)
	return &resp, nil
}

func (s *trainerService) ListPending(ctx context.Context, actor authz.Actor) ([]response_models.TrainerResponse, error) {
	if err := authz.RequireRole(actor, authz.RoleAdmin); err != nil {
		return nil, err
	}
	list, err := s.store.Trainers().ListPending(ctx)
	if err != nil {
		return nil, utils.Database(err)
	}
	return s.views(actor, list), nil
}

func (s *trainerService) ListMy(ctx context.Context, actor authz.Actor) ([]response_models.TrainerResponse, error) {
	if err := authz.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	list, err := s.store.Trainers().ListByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, utils.Database(err)
	}
	return s.views(actor, list), nil
}

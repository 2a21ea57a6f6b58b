package services

import (
	"context"
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

type BusinessService interface {
	Register(ctx context.Context, actor authz.Actor, req request_models.BusinessRequest) (*response_models.BusinessResponse, error)
	AddManual(ctx context.Context, actor authz.Actor, req request_models.BusinessRequest) (*response_models.BusinessResponse, error)
	GetMy(ctx context.Context, actor authz.Actor) ([]response_models.BusinessResponse, error)
	Get(ctx context.Context, actor authz.Actor, id string) (*response_models.BusinessResponse, error)
	ListUnclaimed(ctx context.Context) ([]response_models.BusinessResponse, error)
	ListPending(ctx context.Context, actor authz.Actor) ([]response_models.BusinessResponse, error)
	Approve(ctx context.Context, actor authz.Actor, id string, approved bool) (*response_models.BusinessResponse, error)

	UpgradeSubscription(ctx context.Context, actor authz.Actor, id, tier string) (*response_models.UpgradeSubscriptionResponse, error)
	HandlePaymentWebhook(ctx context.Context, payload []byte, signature string) error

	Claim(ctx context.Context, actor authz.Actor, id string, req request_models.ClaimBusinessRequest) (*response_models.ClaimResponse, error)
	DecideClaim(ctx context.Context, actor authz.Actor, claimID string, approve bool, notes string) (*response_models.ClaimResponse, error)
	ListPendingClaims(ctx context.Context, actor authz.Actor) ([]response_models.ClaimResponse, error)
}

type businessService struct {
	store    repositories.Store
	payments PaymentGateway
	market   MarketplaceConfig
	effects  sideEffects
	log      *zap.Logger
	now      func() time.Time
}

func NewBusinessService(
	store repositories.Store,
	payments PaymentGateway,
	notifier Notifier,
	events EventPublisher,
	market MarketplaceConfig,
	log *zap.Logger,
) BusinessService {
	return &businessService{
		store:    store,
		payments: payments,
		market:   market,
		effects:  sideEffects{notifier: notifier, events: events, log: log},
		log:      log,
		now:      time.Now,
	}
}

type businessEvent struct {
	BusinessID uuid.UUID `json:"business_id"`
	UserID     *string   `json:"user_id,omitempty"`
	Name       string    `json:"name"`
	Approved   bool      `json:"approved"`
	Tier       string    `json:"subscription_tier"`
	At         int64     `json:"at"`
}

func (s *businessService) event(b *db_models.Business) businessEvent {
	return businessEvent{
		BusinessID: b.ID,
		UserID:     b.UserID,
		Name:       b.Name,
		Approved:   b.Approved,
		Tier:       string(b.SubscriptionTier),
		At:         s.now().Unix(),
	}
}

// validateBusiness reports every missing field. Manual entries only need
// enough to be found and claimed later.
func validateBusiness(req request_models.BusinessRequest, manual bool) error {
	var v utils.Validator
	v.Required("name", req.Name)
	v.Required("address", req.Address)
	v.Required("postcode", req.Postcode)
	if !manual {
		v.Required("phone", req.Phone)
		v.Required("business_type", req.BusinessType)
		v.Check(len(cleanList(req.Specialties)) > 0, "specialties", "at least one is required")
		v.Check(len(cleanList(req.AgeRanges)) > 0, "age_ranges", "at least one is required")
		v.Check(len(cleanList(req.DifficultyLevels)) > 0, "difficulty_levels", "at least one is required")
	}
	if req.Email != "" {
		v.Check(strings.Contains(req.Email, "@"), "email", "must be an email address")
	}
	return v.Err()
}

func newBusiness(req request_models.BusinessRequest) *db_models.Business {
	return &db_models.Business{
		Name:             strings.TrimSpace(req.Name),
		Description:      strings.TrimSpace(req.Description),
		Address:          strings.TrimSpace(req.Address),
		Postcode:         strings.ToUpper(strings.TrimSpace(req.Postcode)),
		City:             strings.TrimSpace(req.City),
		Phone:            strings.TrimSpace(req.Phone),
		Email:            strings.TrimSpace(req.Email),
		Website:          strings.TrimSpace(req.Website),
		BusinessType:     strings.TrimSpace(req.BusinessType),
		Specialties:      cleanList(req.Specialties),
		AgeRanges:        cleanList(req.AgeRanges),
		DifficultyLevels: cleanList(req.DifficultyLevels),
		Amenities:        cleanList(req.Amenities),
		SubscriptionTier: db_models.TierFree,
	}
}

func (s *businessService) Register(ctx context.Context, actor authz.Actor, req request_models.BusinessRequest) (*response_models.BusinessResponse, error) {
	if err := authz.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	if err := validateBusiness(req, false); err != nil {
		return nil, err
	}

	b := newBusiness(req)
	owner := actor.UserID
	b.UserID = &owner
	b.Claimed = true

	err := s.store.WithinTransaction(ctx, func(tx repositories.Store) error {
		if err := tx.Businesses().Create(ctx, b); err != nil {
			return utils.Database(err)
		}
		return promoteToBusiness(ctx, tx, actor.UserID)
	})
	if err != nil {
		return nil, err
	}

	s.effects.notify(ctx, Message{
		To:       s.market.AdminEmail,
		Subject:  "New business registration: " + b.Name,
		Body:     fmt.Sprintf("%s (%s, %s) registered and is waiting for approval.", b.Name, b.Address, b.Postcode),
		CTAText:  "Review businesses",
		CTAURL:   s.market.link("/admin/businesses"),
		Category: EventBusinessRegistered,
	})
	s.effects.publish(ctx, EventBusinessRegistered, s.event(b))

	resp := toBusinessResponse(b)
	return &resp, nil
}

func (s *businessService) AddManual(ctx context.Context, actor authz.Actor, req request_models.BusinessRequest) (*response_models.BusinessResponse, error) {
	if err := authz.RequireRole(actor, authz.RoleAdmin); err != nil {
		return nil, err
	}
	if err := validateBusiness(req, true); err != nil {
		return nil, err
	}

	b := newBusiness(req)
	b.ManuallyAdded = true
	b.Approved = true

	if err := s.store.Businesses().Create(ctx, b); err != nil {
		return nil, utils.Database(err)
	}
	resp := toBusinessResponse(b)
	return &resp, nil
}

func (s *businessService) GetMy(ctx context.Context, actor authz.Actor) ([]response_models.BusinessResponse, error) {
	if err := authz.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	list, err := s.store.Businesses().ListByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, utils.Database(err)
	}
	return toBusinessResponses(list), nil
}

// Get hides unapproved businesses from everyone but their owner and admins.
func (s *businessService) Get(ctx context.Context, actor authz.Actor, id string) (*response_models.BusinessResponse, error) {
	bid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	b, err := s.store.Businesses().FindByID(ctx, bid)
	if err != nil {
		return nil, utils.Database(err)
	}
	if b == nil || (!b.Approved && !actor.IsAdmin() && !b.OwnedBy(actor.UserID)) {
		return nil, utils.NotFound("business")
	}
	resp := toBusinessResponse(b)
	return &resp, nil
}

func (s *businessService) ListUnclaimed(ctx context.Context) ([]response_models.BusinessResponse, error) {
	list, err := s.store.Businesses().ListUnclaimed(ctx)
	if err != nil {
		return nil, utils.Database(err)
	}
	return toBusinessResponses(list), nil
}

func (s *businessService) ListPending(ctx context.Context, actor authz.Actor) ([]response_models.BusinessResponse, error) {
	if err := authz.RequireRole(actor, authz.RoleAdmin); err != nil {
		return nil, err
	}
	list, err := s.store.Businesses().ListPending(ctx)
	if err != nil {
		return nil, utils.Database(err)
	}
	return toBusinessResponses(list), nil
}

// Approve sets the approval flag only. Subscription state is left alone.
func (s *businessService) Approve(ctx context.Context, actor authz.Actor, id string, approved bool) (*response_models.BusinessResponse, error) {
	if err := authz.RequireRole(actor, authz.RoleAdmin); err != nil {
		return nil, err
	}
	bid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}

	var b *db_models.Business
	err = s.store.WithinTransaction(ctx, func(tx repositories.Store) error {
		var err error
		b, err = tx.Businesses().FindByIDForUpdate(ctx, bid)
		if err != nil {
			return utils.Database(err)
		}
		if b == nil {
			return utils.NotFound("business")
		}
		b.Approved = approved
		if err := tx.Businesses().Save(ctx, b); err != nil {
			return utils.Database(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if to := s.contactFor(ctx, b.UserID, b.Email); to != "" {
		subject, body := "Your business has been approved", fmt.Sprintf("%s is now live. Upgrade your plan to take bookings.", b.Name)
		if !approved {
			subject, body = "Your business listing was not approved", fmt.Sprintf("%s is not visible to customers at the moment.", b.Name)
		}
		s.effects.notify(ctx, Message{
			To:       to,
			Subject:  subject,
			Body:     body,
			CTAText:  "Open dashboard",
			CTAURL:   s.market.link("/business/dashboard"),
			Category: EventBusinessApproved,
		})
	}
	s.effects.publish(ctx, EventBusinessApproved, s.event(b))

	resp := toBusinessResponse(b)
	return &resp, nil
}

// contactFor prefers the owning user's address over the listing's.
func (s *businessService) contactFor(ctx context.Context, userID *string, fallback string) string {
	if userID != nil {
		u, err := s.store.Users().FindByID(ctx, *userID)
		if err != nil {
			s.log.Warn("owner lookup failed", zap.String("user_id", *userID), zap.Error(err))
		} else if u != nil && u.Email != "" {
			return u.Email
		}
	}
	return fallback
}

// promoteToBusiness lifts a plain user to the business role. Admins keep
// their role.
func promoteToBusiness(ctx context.Context, tx repositories.Store, userID string) error {
	u, err := tx.Users().FindByID(ctx, userID)
	if err != nil {
		return utils.Database(err)
	}
	if u == nil || u.Role != authz.RoleUser {
		return nil
	}
	if err := tx.Users().UpdateRole(ctx, userID, authz.RoleBusiness); err != nil {
		return utils.Database(err)
	}
	return nil
}

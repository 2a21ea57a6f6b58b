package services

import (
	"context"
	"errors"
	"strings"

	"fitbook/internal/authz"
	"fitbook/internal/models/db_models"
	"fitbook/internal/models/response_models"
	"fitbook/internal/repositories"
	"fitbook/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrWebhookSignature is returned by gateways for payloads that fail
// verification.
var ErrWebhookSignature = errors.New("webhook signature mismatch")

// UpgradeSubscription switches the business tier. A paid tier is marked
// active as soon as the gateway subscription exists; the webhook later
// reconciles it against the real payment outcome.
func (s *businessService) UpgradeSubscription(ctx context.Context, actor authz.Actor, id, tier string) (*response_models.UpgradeSubscriptionResponse, error) {
	if err := authz.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	bid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	t := db_models.SubscriptionTier(strings.ToLower(strings.TrimSpace(tier)))
	if !t.Valid() {
		return nil, &utils.ServiceError{
			Kind:    utils.ErrValidation,
			Message: "invalid input",
			Fields:  []utils.FieldError{{Field: "tier", Message: "must be free, basic or premium"}},
		}
	}

	b, err := s.store.Businesses().FindByID(ctx, bid)
	if err != nil {
		return nil, utils.Database(err)
	}
	if b == nil {
		return nil, utils.NotFound("business")
	}
	if !b.OwnedBy(actor.UserID) {
		return nil, utils.Forbidden("only the owner can change the subscription")
	}

	if t == db_models.TierFree {
		return s.downgrade(ctx, actor, bid)
	}

	priceRef := strings.TrimSpace(s.market.PlanPrices[t])
	if priceRef == "" {
		return nil, utils.NewError(utils.ErrPaymentGateway, "pricing for the %s plan is not configured", t)
	}

	customerRef, err := s.ensureCustomer(ctx, actor)
	if err != nil {
		return nil, err
	}
	sub, err := s.payments.CreateSubscription(ctx, customerRef, priceRef)
	if err != nil {
		return nil, utils.WrapError(utils.ErrPaymentGateway, err, "could not create subscription")
	}

	err = s.store.WithinTransaction(ctx, func(tx repositories.Store) error {
		locked, err := tx.Businesses().FindByIDForUpdate(ctx, bid)
		if err != nil {
			return utils.Database(err)
		}
		if locked == nil {
			return utils.NotFound("business")
		}
		if !locked.OwnedBy(actor.UserID) {
			return utils.Forbidden("only the owner can change the subscription")
		}
		locked.SubscriptionTier = t
		locked.SubscriptionActive = true
		ref := sub.ID
		locked.ExternalSubscriptionRef = &ref
		if !sub.PeriodEnd.IsZero() {
			end := sub.PeriodEnd.Unix()
			locked.SubscriptionExpiry = &end
		}
		if err := tx.Businesses().Save(ctx, locked); err != nil {
			return utils.Database(err)
		}
		b = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("subscription activated",
		zap.String("business_id", b.ID.String()),
		zap.String("tier", string(t)),
		zap.String("subscription", sub.ID),
		zap.String("gateway_status", sub.Status))
	s.effects.publish(ctx, EventSubscriptionChanged, s.event(b))

	return &response_models.UpgradeSubscriptionResponse{
		Business:       toBusinessResponse(b),
		SubscriptionID: sub.ID,
		ClientSecret:   sub.ClientSecret,
	}, nil
}

func (s *businessService) downgrade(ctx context.Context, actor authz.Actor, bid uuid.UUID) (*response_models.UpgradeSubscriptionResponse, error) {
	var b *db_models.Business
	err := s.store.WithinTransaction(ctx, func(tx repositories.Store) error {
		var err error
		b, err = tx.Businesses().FindByIDForUpdate(ctx, bid)
		if err != nil {
			return utils.Database(err)
		}
		if b == nil {
			return utils.NotFound("business")
		}
		if !b.OwnedBy(actor.UserID) {
			return utils.Forbidden("only the owner can change the subscription")
		}
		b.Downgrade()
		if err := tx.Businesses().Save(ctx, b); err != nil {
			return utils.Database(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.effects.publish(ctx, EventSubscriptionChanged, s.event(b))
	return &response_models.UpgradeSubscriptionResponse{Business: toBusinessResponse(b)}, nil
}

// ensureCustomer creates the gateway customer once and caches it on the user.
func (s *businessService) ensureCustomer(ctx context.Context, actor authz.Actor) (string, error) {
	u, err := s.store.Users().FindByID(ctx, actor.UserID)
	if err != nil {
		return "", utils.Database(err)
	}
	if u == nil {
		return "", utils.NotFound("user")
	}
	if u.PaymentCustomerRef != nil && *u.PaymentCustomerRef != "" {
		return *u.PaymentCustomerRef, nil
	}

	ref, err := s.payments.CreateCustomer(ctx, u.Email, u.Name)
	if err != nil {
		return "", utils.WrapError(utils.ErrPaymentGateway, err, "could not create payment customer")
	}
	if err := s.store.Users().SetPaymentCustomerRef(ctx, u.ID, ref); err != nil {
		return "", utils.Database(err)
	}
	return ref, nil
}

// HandlePaymentWebhook reconciles the optimistic activation with what the
// gateway reports for the subscription.
func (s *businessService) HandlePaymentWebhook(ctx context.Context, payload []byte, signature string) error {
	evt, err := s.payments.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, ErrWebhookSignature) {
			return utils.WrapError(utils.ErrAuthentication, err, "invalid webhook signature")
		}
		return utils.WrapError(utils.ErrValidation, err, "invalid webhook payload")
	}
	if evt == nil || evt.SubscriptionRef == "" {
		return nil
	}

	var changed *db_models.Business
	err = s.store.WithinTransaction(ctx, func(tx repositories.Store) error {
		found, err := tx.Businesses().FindBySubscriptionRef(ctx, evt.SubscriptionRef)
		if err != nil {
			return utils.Database(err)
		}
		if found == nil {
			s.log.Warn("webhook for unknown subscription", zap.String("subscription", evt.SubscriptionRef))
			return nil
		}
		b, err := tx.Businesses().FindByIDForUpdate(ctx, found.ID)
		if err != nil {
			return utils.Database(err)
		}
		if b == nil {
			return nil
		}

		switch evt.Status {
		case "canceled", "unpaid", "incomplete_expired":
			b.Downgrade()
		case "active", "trialing":
			b.SubscriptionActive = b.SubscriptionTier.Paid()
			if !evt.PeriodEnd.IsZero() {
				end := evt.PeriodEnd.Unix()
				b.SubscriptionExpiry = &end
			}
		default:
			s.log.Info("subscription status left as is",
				zap.String("subscription", evt.SubscriptionRef),
				zap.String("status", evt.Status))
			return nil
		}
		if err := tx.Businesses().Save(ctx, b); err != nil {
			return utils.Database(err)
		}
		changed = b
		return nil
	})
	if err != nil {
		return err
	}

	if changed != nil {
		s.log.Info("subscription reconciled",
			zap.String("business_id", changed.ID.String()),
			zap.String("status", evt.Status),
			zap.String("event", evt.EventID))
		s.effects.publish(ctx, EventSubscriptionChanged, s.event(changed))
	}
	return nil
}

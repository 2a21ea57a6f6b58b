package services

import (
	"context"
	"strings"

	"fitbook/internal/models/db_models"
	"fitbook/pkg/config"
	"fitbook/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MarketplaceConfig is the slice of configuration the lifecycle managers need.
type MarketplaceConfig struct {
	AdminEmail         string
	Currency           string
	PlatformFeePercent int64
	AppBaseURL         string
	PlanPrices         map[db_models.SubscriptionTier]string
}

func NewMarketplaceConfig(cfg *config.Config) MarketplaceConfig {
	return MarketplaceConfig{
		AdminEmail:         cfg.Market.AdminEmail,
		Currency:           cfg.Market.Currency,
		PlatformFeePercent: cfg.Market.PlatformFeePercent,
		AppBaseURL:         strings.TrimRight(cfg.AppBaseURL, "/"),
		PlanPrices: map[db_models.SubscriptionTier]string{
			db_models.TierBasic:   cfg.Stripe.PriceBasic,
			db_models.TierPremium: cfg.Stripe.PricePremium,
		},
	}
}

func (m MarketplaceConfig) link(path string) string {
	if m.AppBaseURL == "" {
		return ""
	}
	return m.AppBaseURL + path
}

// Pricing returns fee and total for a base price in minor units.
func (m MarketplaceConfig) Pricing(priceMinor int64) (fee, total int64) {
	fee = utils.PercentOf(priceMinor, m.PlatformFeePercent)
	return fee, priceMinor + fee
}

// Domain event routing keys.
const (
	EventBusinessRegistered    = "business.registered"
	EventBusinessApproved      = "business.approved"
	EventBusinessClaimed       = "business.claimed"
	EventClaimSubmitted        = "claim.submitted"
	EventClaimDecided          = "claim.decided"
	EventSubscriptionChanged   = "business.subscription_changed"
	EventSessionCreated        = "session.created"
	EventSessionApproved       = "session.approved"
	EventBookingCreated        = "booking.created"
	EventBookingStatusChanged  = "booking.status_changed"
	EventTrainerApplied        = "trainer.applied"
	EventTrainerApproved       = "trainer.approved"
	EventTrainerBookingCreated = "trainer_booking.created"
	EventTrainerBookingStatus  = "trainer_booking.status_changed"
)

// sideEffects runs the post-commit notification and event fan-out. Failures
// are logged and never returned.
type sideEffects struct {
	notifier Notifier
	events   EventPublisher
	log      *zap.Logger
}

func (s sideEffects) notify(ctx context.Context, msg Message) {
	if s.notifier == nil || strings.TrimSpace(msg.To) == "" {
		return
	}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.log.Warn("notification failed",
			zap.String("to", msg.To),
			zap.String("category", msg.Category),
			zap.Error(err))
	}
}

func (s sideEffects) publish(ctx context.Context, key string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishJSON(ctx, key, payload); err != nil {
		s.log.Warn("event publish failed", zap.String("routing_key", key), zap.Error(err))
	}
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, &utils.ServiceError{
			Kind:    utils.ErrValidation,
			Message: "invalid input",
			Fields:  []utils.FieldError{{Field: field, Message: "must be a valid id"}},
		}
	}
	return id, nil
}

// cleanList trims entries, drops blanks and duplicates, keeps order.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

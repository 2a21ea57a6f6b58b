package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"fitbook/pkg/config"

	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// StripeGateway is the PaymentGateway backed by Stripe. Every API call goes
// through one circuit breaker so a failing provider fails fast.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
	breaker       *gobreaker.CircuitBreaker[any]
	log           *zap.Logger
}

func NewStripeGateway(cfg config.StripeConfig, log *zap.Logger) (*StripeGateway, error) {
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, errors.New("missing stripe secret key")
	}
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)

	settings := gobreaker.Settings{
		Name:        "stripe",
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		// Declines and bad requests are the caller's problem, not an outage.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var se *stripe.Error
			return errors.As(err, &se) && se.HTTPStatusCode > 0 && se.HTTPStatusCode < 500
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &StripeGateway{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
		breaker:       gobreaker.NewCircuitBreaker[any](settings),
		log:           log,
	}, nil
}

func guarded[T any](g *StripeGateway, op string, fn func() (T, error)) (T, error) {
	var zero T
	start := time.Now()
	out, err := g.breaker.Execute(func() (any, error) {
		v, err := fn()
		return v, err
	})
	if err != nil {
		g.log.Warn("stripe call failed",
			zap.String("op", op),
			zap.Duration("took", time.Since(start)),
			zap.Error(err))
		return zero, err
	}
	return out.(T), nil
}

func (g *StripeGateway) Authorize(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(strings.ToLower(currency)),
		// Funds are only held until the booking row is written.
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := guarded(g, "payment_intent.create", func() (*stripe.PaymentIntent, error) {
		return g.api.PaymentIntents.New(params)
	})
	if err != nil {
		return nil, err
	}
	return &PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountMinor:  pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}

func (g *StripeGateway) PaymentStatus(ctx context.Context, intentID string) (*IntentStatus, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := guarded(g, "payment_intent.get", func() (*stripe.PaymentIntent, error) {
		return g.api.PaymentIntents.Get(intentID, params)
	})
	if err != nil {
		return nil, err
	}
	return &IntentStatus{
		Confirmed: pi.Status == stripe.PaymentIntentStatusSucceeded ||
			pi.Status == stripe.PaymentIntentStatusRequiresCapture,
		Captured:    pi.Status == stripe.PaymentIntentStatusSucceeded,
		Cancelled:   pi.Status == stripe.PaymentIntentStatusCanceled,
		Status:      string(pi.Status),
		AmountMinor: pi.Amount,
		Currency:    string(pi.Currency),
	}, nil
}

func (g *StripeGateway) Capture(ctx context.Context, intentID string) error {
	params := &stripe.PaymentIntentCaptureParams{}
	params.Context = ctx
	params.SetIdempotencyKey("capture-" + intentID)

	_, err := guarded(g, "payment_intent.capture", func() (*stripe.PaymentIntent, error) {
		return g.api.PaymentIntents.Capture(intentID, params)
	})
	return err
}

func (g *StripeGateway) Cancel(ctx context.Context, intentID string) error {
	params := &stripe.PaymentIntentCancelParams{
		CancellationReason: stripe.String(string(stripe.PaymentIntentCancellationReasonAbandoned)),
	}
	params.Context = ctx
	params.SetIdempotencyKey("cancel-" + intentID)

	_, err := guarded(g, "payment_intent.cancel", func() (*stripe.PaymentIntent, error) {
		return g.api.PaymentIntents.Cancel(intentID, params)
	})
	return err
}

func (g *StripeGateway) Refund(ctx context.Context, intentID string) error {
	params := &stripe.RefundParams{PaymentIntent: stripe.String(intentID)}
	params.Context = ctx
	params.SetIdempotencyKey("refund-" + intentID)

	_, err := guarded(g, "refund.create", func() (*stripe.Refund, error) {
		return g.api.Refunds.New(params)
	})
	return err
}

func (g *StripeGateway) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx

	c, err := guarded(g, "customer.create", func() (*stripe.Customer, error) {
		return g.api.Customers.New(params)
	})
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

// CreateSubscription leaves the first invoice unpaid so the client confirms
// it with the returned secret.
func (g *StripeGateway) CreateSubscription(ctx context.Context, customerRef, priceRef string) (*GatewaySubscription, error) {
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(customerRef),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(priceRef)},
		},
		PaymentBehavior: stripe.String("default_incomplete"),
	}
	params.Context = ctx
	params.AddExpand("latest_invoice.payment_intent")

	sub, err := guarded(g, "subscription.create", func() (*stripe.Subscription, error) {
		return g.api.Subscriptions.New(params)
	})
	if err != nil {
		return nil, err
	}

	out := &GatewaySubscription{
		ID:     sub.ID,
		Status: string(sub.Status),
	}
	if sub.CurrentPeriodEnd > 0 {
		out.PeriodEnd = time.Unix(sub.CurrentPeriodEnd, 0).UTC()
	}
	if sub.LatestInvoice != nil && sub.LatestInvoice.PaymentIntent != nil {
		out.ClientSecret = sub.LatestInvoice.PaymentIntent.ClientSecret
	}
	return out, nil
}

func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*SubscriptionEvent, error) {
	if g.webhookSecret == "" {
		return nil, fmt.Errorf("%w: webhook secret not configured", ErrWebhookSignature)
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWebhookSignature, err)
	}

	switch string(event.Type) {
	case "customer.subscription.created", "customer.subscription.updated", "customer.subscription.deleted":
	default:
		return nil, nil
	}

	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return nil, fmt.Errorf("decode subscription: %w", err)
	}
	out := &SubscriptionEvent{
		EventID:         event.ID,
		Type:            string(event.Type),
		SubscriptionRef: sub.ID,
		Status:          string(sub.Status),
	}
	if sub.CurrentPeriodEnd > 0 {
		out.PeriodEnd = time.Unix(sub.CurrentPeriodEnd, 0).UTC()
	}
	return out, nil
}

package services

import (
	"context"
	"time"
)

// PaymentIntent is what the client needs to confirm a payment in the browser.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	AmountMinor  int64
	Currency     string
}

// IntentStatus is the gateway's view of a payment intent. Confirmed covers
// captured and authorised-awaiting-capture.
type IntentStatus struct {
	Confirmed   bool
	Captured    bool
	Cancelled   bool
	Status      string
	AmountMinor int64
	Currency    string
}

type GatewaySubscription struct {
	ID           string
	Status       string
	PeriodEnd    time.Time
	ClientSecret string
}

// SubscriptionEvent is a verified subscription lifecycle webhook.
type SubscriptionEvent struct {
	EventID         string
	Type            string
	SubscriptionRef string
	Status          string
	PeriodEnd       time.Time
}

type PaymentGateway interface {
	Authorize(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*PaymentIntent, error)
	PaymentStatus(ctx context.Context, intentID string) (*IntentStatus, error)
	// Intents are authorised with manual capture: Capture takes the held
	// funds, Cancel drops the hold and Refund returns captured funds.
	Capture(ctx context.Context, intentID string) error
	Cancel(ctx context.Context, intentID string) error
	Refund(ctx context.Context, intentID string) error
	// CreateCustomer is called at most once per user; the ref is cached on the user.
	CreateCustomer(ctx context.Context, email, name string) (string, error)
	CreateSubscription(ctx context.Context, customerRef, priceRef string) (*GatewaySubscription, error)
	// ParseWebhook returns nil, nil for verified events it does not handle.
	ParseWebhook(payload []byte, signature string) (*SubscriptionEvent, error)
}

type Message struct {
	To       string
	Subject  string
	Body     string
	CTAText  string
	CTAURL   string
	Category string
}

type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// Identity is the verified caller as reported by the identity provider.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

type IdentityProvider interface {
	VerifyIDToken(ctx context.Context, rawIDToken string) (*Identity, error)
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*Identity, error)
}

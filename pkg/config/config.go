// Package config loads process configuration once at startup.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port       string `envconfig:"PORT" default:"8080"`
	AppEnv     string `envconfig:"APP_ENV" default:"development"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	AppBaseURL string `envconfig:"APP_BASE_URL" default:"http://localhost:5173"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	RedisURL    string `envconfig:"REDIS_URL"`
	RabbitMQURL string `envconfig:"RABBITMQ_URL"`

	Session SessionConfig
	Google  GoogleConfig
	Stripe  StripeConfig
	Mail    MailConfig
	Market  MarketConfig
}

// SessionConfig covers the signed session cookie issued after sign-in.
type SessionConfig struct {
	Secret       string        `envconfig:"SESSION_SECRET" required:"true"`
	TTL          time.Duration `envconfig:"SESSION_TTL" default:"168h"`
	CookieName   string        `envconfig:"SESSION_COOKIE" default:"fitbook_session"`
	CookieSecure bool          `envconfig:"COOKIE_SECURE" default:"false"`
}

type GoogleConfig struct {
	ClientID     string `envconfig:"GOOGLE_CLIENT_ID"`
	ClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET"`
	RedirectURL  string `envconfig:"GOOGLE_REDIRECT_URL" default:"http://localhost:8080/api/auth/google/callback"`
}

type StripeConfig struct {
	SecretKey     string `envconfig:"STRIPE_SECRET_KEY" required:"true"`
	WebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`
	PriceBasic    string `envconfig:"STRIPE_PRICE_BASIC"`
	PricePremium  string `envconfig:"STRIPE_PRICE_PREMIUM"`

	BreakerMaxRequests uint32        `envconfig:"PAYMENT_BREAKER_MAX_REQUESTS" default:"1"`
	BreakerInterval    time.Duration `envconfig:"PAYMENT_BREAKER_INTERVAL" default:"60s"`
	BreakerTimeout     time.Duration `envconfig:"PAYMENT_BREAKER_TIMEOUT" default:"30s"`
	BreakerFailures    uint32        `envconfig:"PAYMENT_BREAKER_FAILURES" default:"5"`
}

// MailConfig describes the outbound notification relay. The API key doubles
// as the SMTP password; when it is empty notifications are only logged.
type MailConfig struct {
	APIKey     string `envconfig:"NOTIFY_API_KEY"`
	Host       string `envconfig:"SMTP_HOST" default:"smtp.sendgrid.net"`
	Port       int    `envconfig:"SMTP_PORT" default:"587"`
	Username   string `envconfig:"SMTP_USERNAME" default:"apikey"`
	From       string `envconfig:"MAIL_FROM" default:"no-reply@fitbook.local"`
	FromName   string `envconfig:"MAIL_FROM_NAME" default:"FitBook"`
	UseSSL     bool   `envconfig:"SMTP_USE_SSL" default:"false"`
	RequireTLS bool   `envconfig:"SMTP_REQUIRE_TLS" default:"true"`
}

type MarketConfig struct {
	AdminEmail         string `envconfig:"ADMIN_EMAIL" default:"admin@fitbook.local"`
	Currency           string `envconfig:"CURRENCY" default:"gbp"`
	PlatformFeePercent int64  `envconfig:"PLATFORM_FEE_PERCENT" default:"10"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if strings.TrimSpace(cfg.Stripe.SecretKey) == "" {
		return nil, fmt.Errorf("load config: STRIPE_SECRET_KEY is required")
	}
	cfg.Market.Currency = strings.ToLower(cfg.Market.Currency)
	if cfg.Market.PlatformFeePercent < 0 {
		return nil, fmt.Errorf("load config: PLATFORM_FEE_PERCENT must not be negative")
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}
